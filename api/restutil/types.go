// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package restutil

import (
	"math/big"
	"strconv"

	"github.com/ethereum/go-ethereum/common/math"
	"github.com/pkg/errors"

	"github.com/vechain/rarity-staking/thor"
)

// TokenIDs is the body of the batch calls.
type TokenIDs struct {
	TokenIDs []thor.TokenID `json:"tokenIds"`
}

// Amount is the body of calls carrying a single amount, and the result of payouts.
type Amount struct {
	Amount *math.HexOrDecimal256 `json:"amount"`
}

// NewAmount wraps v for encoding. A nil v encodes as zero.
func NewAmount(v *big.Int) *Amount {
	if v == nil {
		v = new(big.Int)
	}
	return &Amount{Amount: (*math.HexOrDecimal256)(v)}
}

// Int returns the amount, or an error if it is missing.
func (a *Amount) Int() (*big.Int, error) {
	if a.Amount == nil {
		return nil, errors.New("amount: required")
	}
	return (*big.Int)(a.Amount), nil
}

// ParseTokenID parses a decimal token id from a path or query value.
func ParseTokenID(s string) (thor.TokenID, error) {
	v, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, err
	}
	return thor.TokenID(v), nil
}
