// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package token is a state-backed fungible token used as the reward currency.
package token

import (
	"math/big"

	"github.com/pkg/errors"

	"github.com/vechain/rarity-staking/builtin/reverts"
	"github.com/vechain/rarity-staking/builtin/solidity"
	"github.com/vechain/rarity-staking/state"
	"github.com/vechain/rarity-staking/thor"
)

var (
	ErrInsufficientBalance = reverts.New("token: transfer amount exceeds balance")
	ErrInvalidAmount       = reverts.New("token: invalid amount")
)

var (
	slotBalances    = thor.BytesToBytes32([]byte("token-balances"))
	slotTotalSupply = thor.BytesToBytes32([]byte("token-total-supply"))
)

// Token binds the reward token contract to a state.
type Token struct {
	addr        thor.Address
	balances    *solidity.Mapping[thor.Address, *big.Int]
	totalSupply *solidity.Uint256
}

func New(addr thor.Address, st *state.State) *Token {
	ctx := solidity.NewContext(addr, st)
	return &Token{
		addr:        addr,
		balances:    solidity.NewMapping[thor.Address, *big.Int](ctx, slotBalances),
		totalSupply: solidity.NewUint256(ctx, slotTotalSupply),
	}
}

// Address returns the contract address.
func (t *Token) Address() thor.Address {
	return t.addr
}

// BalanceOf returns the balance of addr.
func (t *Token) BalanceOf(addr thor.Address) (*big.Int, error) {
	bal, err := t.balances.Get(addr)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get balance")
	}
	return bal, nil
}

// TotalSupply returns the minted amount.
func (t *Token) TotalSupply() (*big.Int, error) {
	return t.totalSupply.Get()
}

// Mint credits amount to to. Only harnesses and dev mode call it.
func (t *Token) Mint(to thor.Address, amount *big.Int) error {
	if amount.Sign() < 0 {
		return ErrInvalidAmount
	}
	bal, err := t.BalanceOf(to)
	if err != nil {
		return err
	}
	if err := t.totalSupply.Add(amount); err != nil {
		return err
	}
	return t.balances.Set(to, bal.Add(bal, amount))
}

// Transfer moves amount from from to to.
func (t *Token) Transfer(from, to thor.Address, amount *big.Int) error {
	if amount.Sign() < 0 {
		return ErrInvalidAmount
	}
	if amount.Sign() == 0 || from == to {
		return nil
	}
	fromBal, err := t.BalanceOf(from)
	if err != nil {
		return err
	}
	if fromBal.Cmp(amount) < 0 {
		return ErrInsufficientBalance
	}
	toBal, err := t.BalanceOf(to)
	if err != nil {
		return err
	}
	if err := t.balances.Set(from, fromBal.Sub(fromBal, amount)); err != nil {
		return err
	}
	return t.balances.Set(to, toBal.Add(toBal, amount))
}
