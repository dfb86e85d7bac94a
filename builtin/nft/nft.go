// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package nft is a state-backed non-fungible token registry exposing the ERC-721
// subset the staking contract relies on for custody.
package nft

import (
	"github.com/pkg/errors"

	"github.com/vechain/rarity-staking/builtin/reverts"
	"github.com/vechain/rarity-staking/builtin/solidity"
	"github.com/vechain/rarity-staking/state"
	"github.com/vechain/rarity-staking/thor"
)

var (
	ErrNonexistentToken = reverts.New("nft: token does not exist")
	ErrTokenExists      = reverts.New("nft: token already minted")
	ErrIncorrectOwner   = reverts.New("nft: transfer from incorrect owner")
	ErrNotAuthorized    = reverts.New("nft: caller is not token owner or approved")
	ErrZeroAddress      = reverts.New("nft: zero address")
)

var (
	slotOwners    = nameToSlot("nft-owners")
	slotApprovals = nameToSlot("nft-token-approvals")
	slotOperators = nameToSlot("nft-operator-approvals")
)

func nameToSlot(name string) thor.Bytes32 {
	return thor.BytesToBytes32([]byte(name))
}

func operatorKey(owner, operator thor.Address) thor.Bytes32 {
	return thor.Blake2b(owner.Bytes(), operator.Bytes())
}

// NFT binds the token registry contract to a state.
type NFT struct {
	addr      thor.Address
	owners    *solidity.Mapping[thor.TokenID, thor.Address]
	approvals *solidity.Mapping[thor.TokenID, thor.Address]
	operators *solidity.Mapping[thor.Bytes32, bool]
}

func New(addr thor.Address, st *state.State) *NFT {
	ctx := solidity.NewContext(addr, st)
	return &NFT{
		addr:      addr,
		owners:    solidity.NewMapping[thor.TokenID, thor.Address](ctx, slotOwners),
		approvals: solidity.NewMapping[thor.TokenID, thor.Address](ctx, slotApprovals),
		operators: solidity.NewMapping[thor.Bytes32, bool](ctx, slotOperators),
	}
}

// Address returns the contract address.
func (n *NFT) Address() thor.Address {
	return n.addr
}

// OwnerOf returns the owner of id, or the zero address if it was never minted.
func (n *NFT) OwnerOf(id thor.TokenID) (thor.Address, error) {
	owner, err := n.owners.Get(id)
	if err != nil {
		return thor.Address{}, errors.Wrap(err, "failed to get owner")
	}
	return owner, nil
}

// Mint creates id owned by to. Only harnesses and dev mode call it.
func (n *NFT) Mint(to thor.Address, id thor.TokenID) error {
	if to.IsZero() {
		return ErrZeroAddress
	}
	owner, err := n.OwnerOf(id)
	if err != nil {
		return err
	}
	if !owner.IsZero() {
		return ErrTokenExists
	}
	return n.owners.Set(id, to)
}

// Approve lets to move id on behalf of its owner.
func (n *NFT) Approve(caller, to thor.Address, id thor.TokenID) error {
	owner, err := n.OwnerOf(id)
	if err != nil {
		return err
	}
	if owner.IsZero() {
		return ErrNonexistentToken
	}
	if caller != owner {
		ok, err := n.IsApprovedForAll(owner, caller)
		if err != nil {
			return err
		}
		if !ok {
			return ErrNotAuthorized
		}
	}
	return n.approvals.Set(id, to)
}

// GetApproved returns the per-token approved address.
func (n *NFT) GetApproved(id thor.TokenID) (thor.Address, error) {
	approved, err := n.approvals.Get(id)
	if err != nil {
		return thor.Address{}, errors.Wrap(err, "failed to get approval")
	}
	return approved, nil
}

// SetApprovalForAll grants or revokes operator rights over every token of owner.
func (n *NFT) SetApprovalForAll(owner, operator thor.Address, approved bool) error {
	if operator.IsZero() {
		return ErrZeroAddress
	}
	key := operatorKey(owner, operator)
	if !approved {
		n.operators.Delete(key)
		return nil
	}
	return n.operators.Set(key, true)
}

// IsApprovedForAll reports operator rights of operator over owner's tokens.
func (n *NFT) IsApprovedForAll(owner, operator thor.Address) (bool, error) {
	approved, err := n.operators.Get(operatorKey(owner, operator))
	if err != nil {
		return false, errors.Wrap(err, "failed to get operator approval")
	}
	return approved, nil
}

// IsApproved reports whether operator may transfer id: it owns it, holds the
// per-token approval, or is an operator of the owner.
func (n *NFT) IsApproved(operator thor.Address, id thor.TokenID) (bool, error) {
	owner, err := n.OwnerOf(id)
	if err != nil {
		return false, err
	}
	if owner.IsZero() {
		return false, nil
	}
	if owner == operator {
		return true, nil
	}
	approved, err := n.GetApproved(id)
	if err != nil {
		return false, err
	}
	if approved == operator {
		return true, nil
	}
	return n.IsApprovedForAll(owner, operator)
}

// TransferFrom moves id from from to to, executed by operator.
func (n *NFT) TransferFrom(operator, from, to thor.Address, id thor.TokenID) error {
	if to.IsZero() {
		return ErrZeroAddress
	}
	owner, err := n.OwnerOf(id)
	if err != nil {
		return err
	}
	if owner.IsZero() {
		return ErrNonexistentToken
	}
	if owner != from {
		return ErrIncorrectOwner
	}
	ok, err := n.IsApproved(operator, id)
	if err != nil {
		return err
	}
	if !ok {
		return ErrNotAuthorized
	}
	n.approvals.Delete(id)
	return n.owners.Set(id, to)
}
