// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package rarity

import (
	"math/big"
	"sort"

	"github.com/pkg/errors"
)

// WeightUnit is the fixed-point weight meaning a 1.0x reward multiplier.
const WeightUnit uint64 = 10_000

// WeightPolicy derives the reward multiplier, in WeightUnit, from a rarity score.
type WeightPolicy interface {
	Weight(score uint64) uint64
}

// WeightFunc adapts a function to WeightPolicy.
type WeightFunc func(score uint64) uint64

func (f WeightFunc) Weight(score uint64) uint64 { return f(score) }

// InverseWeight maps lower scores (rarer tokens) to higher multipliers:
// weight = WeightUnit * Reference / score, clamped to [Min, Max].
// A score equal to Reference earns 1.0x.
type InverseWeight struct {
	Reference uint64
	Min       uint64
	Max       uint64
}

func (p InverseWeight) Weight(score uint64) uint64 {
	if score == 0 {
		return p.clamp(p.Max)
	}
	w := new(big.Int).SetUint64(WeightUnit)
	w.Mul(w, new(big.Int).SetUint64(p.Reference))
	w.Quo(w, new(big.Int).SetUint64(score))
	if !w.IsUint64() {
		return p.clamp(p.Max)
	}
	return p.clamp(w.Uint64())
}

func (p InverseWeight) clamp(w uint64) uint64 {
	return clamp(w, p.Min, p.Max)
}

// LinearWeight maps higher scores to higher multipliers:
// weight = WeightUnit * score / Reference, clamped to [Min, Max].
type LinearWeight struct {
	Reference uint64
	Min       uint64
	Max       uint64
}

func (p LinearWeight) Weight(score uint64) uint64 {
	if p.Reference == 0 {
		return clamp(WeightUnit, p.Min, p.Max)
	}
	w := new(big.Int).SetUint64(WeightUnit)
	w.Mul(w, new(big.Int).SetUint64(score))
	w.Quo(w, new(big.Int).SetUint64(p.Reference))
	if !w.IsUint64() {
		return clamp(p.Max, p.Min, p.Max)
	}
	return clamp(w.Uint64(), p.Min, p.Max)
}

// Tier assigns Weight to every score strictly below Below.
type Tier struct {
	Below  uint64 `yaml:"below"`
	Weight uint64 `yaml:"weight"`
}

// TieredWeight buckets scores. Tiers are checked in ascending Below order,
// scores above every tier get Default.
type TieredWeight struct {
	Tiers   []Tier
	Default uint64
}

func (p TieredWeight) Weight(score uint64) uint64 {
	for _, t := range p.Tiers {
		if score < t.Below {
			return t.Weight
		}
	}
	return p.Default
}

func clamp(w, lo, hi uint64) uint64 {
	if w < lo {
		return lo
	}
	if hi != 0 && w > hi {
		return hi
	}
	return w
}

// WeightConfig selects and parameterises a policy from configuration.
type WeightConfig struct {
	Kind      string `yaml:"kind"`
	Reference uint64 `yaml:"reference"`
	Min       uint64 `yaml:"min"`
	Max       uint64 `yaml:"max"`
	Tiers     []Tier `yaml:"tiers"`
	Default   uint64 `yaml:"default"`
}

// DefaultWeightConfig is an inverse curve centred on the median observed score,
// bounded to [0.25x, 10x].
var DefaultWeightConfig = WeightConfig{
	Kind:      "inverse",
	Reference: 500_000,
	Min:       WeightUnit / 4,
	Max:       WeightUnit * 10,
}

// NewWeightPolicy builds the policy described by cfg.
func NewWeightPolicy(cfg WeightConfig) (WeightPolicy, error) {
	if cfg.Min == 0 {
		cfg.Min = 1
	}
	if cfg.Max != 0 && cfg.Max < cfg.Min {
		return nil, errors.Errorf("weight max %d below min %d", cfg.Max, cfg.Min)
	}
	switch cfg.Kind {
	case "", "inverse":
		if cfg.Reference == 0 {
			return nil, errors.New("inverse weight requires a reference score")
		}
		return InverseWeight{Reference: cfg.Reference, Min: cfg.Min, Max: cfg.Max}, nil
	case "linear":
		if cfg.Reference == 0 {
			return nil, errors.New("linear weight requires a reference score")
		}
		return LinearWeight{Reference: cfg.Reference, Min: cfg.Min, Max: cfg.Max}, nil
	case "tiered":
		if len(cfg.Tiers) == 0 {
			return nil, errors.New("tiered weight requires at least one tier")
		}
		tiers := append([]Tier(nil), cfg.Tiers...)
		sort.Slice(tiers, func(i, j int) bool { return tiers[i].Below < tiers[j].Below })
		def := cfg.Default
		if def == 0 {
			def = WeightUnit
		}
		return TieredWeight{Tiers: tiers, Default: def}, nil
	default:
		return nil, errors.Errorf("unknown weight policy %q", cfg.Kind)
	}
}
