// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package logdb

import (
	"encoding/json"
	"math/big"

	"github.com/vechain/rarity-staking/thor"
)

// Event is a staking event as stored in db.
type Event struct {
	Call      uint32          `json:"call"`
	Index     uint32          `json:"index"`
	Timestamp uint64          `json:"timestamp"`
	Kind      string          `json:"kind"`
	Token     *thor.TokenID   `json:"tokenId,omitempty"`
	Account   thor.Address    `json:"account"`
	Amount    *big.Int        `json:"amount,omitempty"`
	Data      json.RawMessage `json:"data,omitempty"`
}

type Order string

const (
	ASC  Order = "asc"
	DESC Order = "desc"
)

// Cursor is the position of an event in the log.
type Cursor struct {
	Call  uint32
	Index uint32
}

// Filter selects events. Zero fields do not constrain the result.
// After keeps only events positioned after the cursor.
type Filter struct {
	After   *Cursor
	Kind    string
	Token   *thor.TokenID
	Account *thor.Address
	From    uint64
	To      uint64
	Order   Order
	Offset  uint64
	Limit   uint64
}
