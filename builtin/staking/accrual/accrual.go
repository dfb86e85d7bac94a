// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package accrual computes staking rewards in checked 256-bit arithmetic.
package accrual

import (
	"math/big"

	"github.com/holiman/uint256"

	"github.com/vechain/rarity-staking/builtin/rarity"
	"github.com/vechain/rarity-staking/builtin/reverts"
)

var ErrOverflow = reverts.New("reward overflow")

var weightUnit = uint256.NewInt(rarity.WeightUnit)

// Elapsed returns now - since, or zero when the clock has not moved past since.
func Elapsed(now, since uint64) uint64 {
	if now <= since {
		return 0
	}
	return now - since
}

// Reward returns floor(elapsed * rate * weight / WeightUnit).
// The rate applies to the whole window.
func Reward(elapsed uint64, rate *big.Int, weight uint64) (*big.Int, error) {
	if rate.Sign() < 0 {
		return nil, ErrOverflow
	}
	r, overflow := uint256.FromBig(rate)
	if overflow {
		return nil, ErrOverflow
	}
	amount, overflow := new(uint256.Int).MulOverflow(r, uint256.NewInt(elapsed))
	if overflow {
		return nil, ErrOverflow
	}
	if _, overflow = amount.MulOverflow(amount, uint256.NewInt(weight)); overflow {
		return nil, ErrOverflow
	}
	return amount.Div(amount, weightUnit).ToBig(), nil
}
