// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package raffle

import (
	"math/big"

	"github.com/pkg/errors"

	"github.com/vechain/rarity-staking/thor"
)

// Ready reports whether a token last rolled at last may roll again at now.
func Ready(now, last, cooldown uint64) bool {
	return now >= last && now-last >= cooldown
}

// Draw is the outcome of one roll. Seed and the roll time are the VRF input,
// Proof is set when the source attests its entropy.
type Draw struct {
	Token   thor.TokenID `json:"tokenId"`
	Seed    thor.Bytes32 `json:"seed"`
	Entropy thor.Bytes32 `json:"entropy"`
	Proof   []byte       `json:"proof,omitempty"`
	Amount  *big.Int     `json:"amount"`
}

// Policy decides the payout of a draw.
type Policy interface {
	Payout(entropy thor.Bytes32, reward *big.Int) *big.Int
}

// Guaranteed pays the full reward on every roll.
type Guaranteed struct{}

func (Guaranteed) Payout(_ thor.Bytes32, reward *big.Int) *big.Int {
	return new(big.Int).Set(reward)
}

// Odds pays the full reward when entropy mod Denominator falls below Numerator,
// and nothing otherwise.
type Odds struct {
	Numerator   uint64
	Denominator uint64
}

func (o Odds) Payout(entropy thor.Bytes32, reward *big.Int) *big.Int {
	if o.Denominator == 0 {
		return new(big.Int)
	}
	x := new(big.Int).SetBytes(entropy.Bytes())
	x.Mod(x, new(big.Int).SetUint64(o.Denominator))
	if x.Uint64() < o.Numerator {
		return new(big.Int).Set(reward)
	}
	return new(big.Int)
}

// PolicyConfig selects the policy from configuration.
type PolicyConfig struct {
	Kind        string `yaml:"kind"`
	Numerator   uint64 `yaml:"numerator"`
	Denominator uint64 `yaml:"denominator"`
}

func NewPolicy(cfg PolicyConfig) (Policy, error) {
	switch cfg.Kind {
	case "", "guaranteed":
		return Guaranteed{}, nil
	case "odds":
		if cfg.Denominator == 0 || cfg.Numerator > cfg.Denominator {
			return nil, errors.Errorf("invalid raffle odds %d/%d", cfg.Numerator, cfg.Denominator)
		}
		return Odds{Numerator: cfg.Numerator, Denominator: cfg.Denominator}, nil
	default:
		return nil, errors.Errorf("unknown raffle policy %q", cfg.Kind)
	}
}
