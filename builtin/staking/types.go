// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package staking

import (
	"math/big"

	"github.com/pkg/errors"

	"github.com/vechain/rarity-staking/thor"
)

// NFT is the custody side of the collectible registry.
type NFT interface {
	OwnerOf(id thor.TokenID) (thor.Address, error)
	IsApproved(operator thor.Address, id thor.TokenID) (bool, error)
	TransferFrom(operator, from, to thor.Address, id thor.TokenID) error
}

// RewardToken is the fungible token rewards are paid in.
type RewardToken interface {
	BalanceOf(addr thor.Address) (*big.Int, error)
	Transfer(from, to thor.Address, amount *big.Int) error
}

// Env is the execution environment of one call.
type Env struct {
	Now  uint64
	Seed thor.Bytes32
}

// ClaimPolicy decides how a claim batch treats tokens not staked by the caller.
type ClaimPolicy uint8

const (
	// ClaimPolicyAtomic fails the whole batch.
	ClaimPolicyAtomic ClaimPolicy = iota
	// ClaimPolicySkipForeign skips such tokens and claims the rest.
	ClaimPolicySkipForeign
)

func ParseClaimPolicy(s string) (ClaimPolicy, error) {
	switch s {
	case "", "atomic":
		return ClaimPolicyAtomic, nil
	case "skip":
		return ClaimPolicySkipForeign, nil
	}
	return 0, errors.Errorf("unknown claim policy %q", s)
}

func (p ClaimPolicy) String() string {
	if p == ClaimPolicySkipForeign {
		return "skip"
	}
	return "atomic"
}

// EventKind names an emitted event.
type EventKind string

const (
	EventRarityInitialized   EventKind = "RarityInitialized"
	EventStaked              EventKind = "Staked"
	EventUnstaked            EventKind = "Unstaked"
	EventRewardClaimed       EventKind = "RewardClaimed"
	EventRaffleRolled        EventKind = "RaffleRolled"
	EventRewardRateUpdated   EventKind = "RewardRateUpdated"
	EventRaffleRewardUpdated EventKind = "RaffleRewardUpdated"
)

// Event is a record of a state change, emitted only by calls that succeed.
type Event struct {
	Kind    EventKind
	Token   *thor.TokenID
	Account thor.Address
	Amount  *big.Int
	Data    map[string]any
}
