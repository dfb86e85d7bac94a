// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package stakes

import (
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/common/math"

	"github.com/vechain/rarity-staking/builtin/rarity"
	"github.com/vechain/rarity-staking/builtin/staking/raffle"
	staked "github.com/vechain/rarity-staking/builtin/staking/stakes"
	"github.com/vechain/rarity-staking/thor"
)

type RarityBatch struct {
	Records []*rarity.Record `json:"records"`
}

type RarityEntry struct {
	TokenID thor.TokenID `json:"tokenId"`
	Score   uint64       `json:"score"`
	Weight  uint64       `json:"weight"`
}

type StakeInfo struct {
	TokenID      thor.TokenID `json:"tokenId"`
	Staked       bool         `json:"staked"`
	Owner        thor.Address `json:"owner"`
	StakedAt     uint64       `json:"stakedAt"`
	LastClaimAt  uint64       `json:"lastClaimAt"`
	LastRaffleAt uint64       `json:"lastRaffleAt"`
}

func convertRecord(id thor.TokenID, rec *staked.Record) *StakeInfo {
	return &StakeInfo{
		TokenID:      id,
		Staked:       !rec.IsEmpty(),
		Owner:        rec.Owner,
		StakedAt:     rec.StakedAt,
		LastClaimAt:  rec.LastClaimAt,
		LastRaffleAt: rec.LastRaffleAt,
	}
}

type Draw struct {
	TokenID thor.TokenID          `json:"tokenId"`
	Seed    thor.Bytes32          `json:"seed"`
	Entropy thor.Bytes32          `json:"entropy"`
	Proof   hexutil.Bytes         `json:"proof,omitempty"`
	Amount  *math.HexOrDecimal256 `json:"amount"`
}

func convertDraws(draws []*raffle.Draw) []*Draw {
	out := make([]*Draw, 0, len(draws))
	for _, d := range draws {
		out = append(out, &Draw{
			TokenID: d.Token,
			Seed:    d.Seed,
			Entropy: d.Entropy,
			Proof:   d.Proof,
			Amount:  (*math.HexOrDecimal256)(d.Amount),
		})
	}
	return out
}
