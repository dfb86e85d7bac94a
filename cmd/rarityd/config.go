// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	"io"
	"math/big"
	"os"

	"github.com/ethereum/go-ethereum/common/math"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/vechain/rarity-staking/builtin/rarity"
	"github.com/vechain/rarity-staking/builtin/staking/raffle"
	"github.com/vechain/rarity-staking/ledger"
	"github.com/vechain/rarity-staking/thor"
)

// fileConfig is the YAML form of a deployment. Omitted fields keep their defaults.
//
//	contracts:
//	  staking: 0x...
//	admin: 0x...
//	signer: 0x...
//	rewardRate: "11574074074074"
//	raffleReward: 0xde0b6b3a7640000
//	raffleCooldown: 43200
//	weight:
//	  kind: tiered
//	  tiers: [{below: 400000, weight: 20000}]
//	raffle: {kind: odds, numerator: 1, denominator: 10}
//	claimPolicy: skip
type fileConfig struct {
	Contracts struct {
		Staking string `yaml:"staking"`
		NFT     string `yaml:"nft"`
		Token   string `yaml:"token"`
	} `yaml:"contracts"`
	Admin          string               `yaml:"admin"`
	Signer         string               `yaml:"signer"`
	RewardRate     string               `yaml:"rewardRate"`
	RaffleReward   string               `yaml:"raffleReward"`
	RaffleCooldown *uint64              `yaml:"raffleCooldown"`
	Weight         *rarity.WeightConfig `yaml:"weight"`
	Raffle         *raffle.PolicyConfig `yaml:"raffle"`
	ClaimPolicy    string               `yaml:"claimPolicy"`
}

func parseFileConfig(r io.Reader) (*fileConfig, error) {
	var fc fileConfig
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&fc); err != nil && !errors.Is(err, io.EOF) {
		return nil, errors.Wrap(err, "decode config")
	}
	return &fc, nil
}

func loadFileConfig(path string) (*fileConfig, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return parseFileConfig(f)
}

func setAddress(dst *thor.Address, s, name string) error {
	if s == "" {
		return nil
	}
	addr, err := thor.ParseAddress(s)
	if err != nil {
		return errors.WithMessage(err, name)
	}
	*dst = addr
	return nil
}

func setAmount(dst **big.Int, s, name string) error {
	if s == "" {
		return nil
	}
	v, ok := math.ParseBig256(s)
	if !ok {
		return errors.Errorf("%s: invalid amount %q", name, s)
	}
	*dst = v
	return nil
}

// apply overlays the file on cfg.
func (fc *fileConfig) apply(cfg *ledger.Config) error {
	for _, f := range []struct {
		dst  *thor.Address
		val  string
		name string
	}{
		{&cfg.Staking, fc.Contracts.Staking, "contracts.staking"},
		{&cfg.NFT, fc.Contracts.NFT, "contracts.nft"},
		{&cfg.Token, fc.Contracts.Token, "contracts.token"},
		{&cfg.Admin, fc.Admin, "admin"},
		{&cfg.Signer, fc.Signer, "signer"},
	} {
		if err := setAddress(f.dst, f.val, f.name); err != nil {
			return err
		}
	}
	if err := setAmount(&cfg.RewardRate, fc.RewardRate, "rewardRate"); err != nil {
		return err
	}
	if err := setAmount(&cfg.RaffleReward, fc.RaffleReward, "raffleReward"); err != nil {
		return err
	}
	if fc.RaffleCooldown != nil {
		cfg.RaffleCooldown = *fc.RaffleCooldown
	}
	if fc.Weight != nil {
		cfg.Weight = *fc.Weight
	}
	if fc.Raffle != nil {
		cfg.Raffle = *fc.Raffle
	}
	if fc.ClaimPolicy != "" {
		cfg.ClaimPolicy = fc.ClaimPolicy
	}
	return nil
}
