// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package ledger

import (
	"math/big"

	"github.com/pkg/errors"

	"github.com/vechain/rarity-staking/builtin/rarity"
	"github.com/vechain/rarity-staking/builtin/staking"
	"github.com/vechain/rarity-staking/builtin/staking/raffle"
	"github.com/vechain/rarity-staking/thor"
)

// Config describes one deployment. Addresses bind the contracts at creation
// and cannot change afterwards.
type Config struct {
	Staking thor.Address
	NFT     thor.Address
	Token   thor.Address
	Admin   thor.Address
	Signer  thor.Address

	RewardRate     *big.Int
	RaffleReward   *big.Int
	RaffleCooldown uint64

	Weight      rarity.WeightConfig
	Raffle      raffle.PolicyConfig
	ClaimPolicy string
}

// DefaultConfig returns a configuration with the well-known contract addresses
// and the initial economics. Admin and Signer must still be set.
func DefaultConfig() Config {
	return Config{
		Staking:        thor.BytesToAddress([]byte("RarityStaking")),
		NFT:            thor.BytesToAddress([]byte("Collectible")),
		Token:          thor.BytesToAddress([]byte("RewardToken")),
		RewardRate:     new(big.Int).Set(thor.InitialRewardRate),
		RaffleReward:   new(big.Int).Set(thor.InitialRaffleReward),
		RaffleCooldown: thor.RaffleCooldown,
		Weight:         rarity.DefaultWeightConfig,
		Raffle:         raffle.PolicyConfig{Kind: "guaranteed"},
		ClaimPolicy:    staking.ClaimPolicyAtomic.String(),
	}
}

// Validate checks the configuration is usable.
func (c *Config) Validate() error {
	if c.Admin.IsZero() {
		return errors.New("admin address required")
	}
	if c.Signer.IsZero() {
		return errors.New("rarity signer address required")
	}
	if c.Staking.IsZero() || c.NFT.IsZero() || c.Token.IsZero() {
		return errors.New("contract addresses required")
	}
	if c.Staking == c.NFT || c.Staking == c.Token || c.NFT == c.Token {
		return errors.New("contract addresses must differ")
	}
	if c.RewardRate == nil || c.RaffleReward == nil {
		return errors.New("reward rate and raffle reward required")
	}
	return nil
}
