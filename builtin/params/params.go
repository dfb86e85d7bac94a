// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package params

import (
	"math/big"

	"github.com/pkg/errors"

	"github.com/vechain/rarity-staking/builtin/solidity"
	"github.com/vechain/rarity-staking/state"
	"github.com/vechain/rarity-staking/thor"
)

var slotParams = thor.BytesToBytes32([]byte("params"))

// Params binder of the staking configuration store.
type Params struct {
	values *solidity.Mapping[thor.Bytes32, *big.Int]
}

func New(addr thor.Address, state *state.State) *Params {
	ctx := solidity.NewContext(addr, state)
	return &Params{values: solidity.NewMapping[thor.Bytes32, *big.Int](ctx, slotParams)}
}

// Get native way to get param.
func (p *Params) Get(key thor.Bytes32) (*big.Int, error) {
	v, err := p.values.Get(key)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get param")
	}
	return v, nil
}

// Set native way to set param. Every write bumps the config version.
func (p *Params) Set(key thor.Bytes32, value *big.Int) error {
	if value == nil || value.Sign() < 0 {
		return errors.Errorf("invalid param value %v", value)
	}
	if err := p.values.Set(key, value); err != nil {
		return errors.Wrap(err, "failed to set param")
	}
	if key == thor.KeyConfigVersion {
		return nil
	}
	version, err := p.Get(thor.KeyConfigVersion)
	if err != nil {
		return err
	}
	return p.values.Set(thor.KeyConfigVersion, version.Add(version, big.NewInt(1)))
}

// Snapshot is the configuration in effect for one call. Version increases with
// every admin write, so a snapshot identifies the parameters a reward was computed with.
type Snapshot struct {
	RewardRate   *big.Int `json:"rewardRate"`
	RaffleReward *big.Int `json:"raffleReward"`
	Cooldown     uint64   `json:"raffleCooldown"`
	Version      uint64   `json:"version"`
}

// Snapshot reads the current configuration.
func (p *Params) Snapshot() (*Snapshot, error) {
	rate, err := p.Get(thor.KeyRewardRate)
	if err != nil {
		return nil, err
	}
	raffle, err := p.Get(thor.KeyRaffleReward)
	if err != nil {
		return nil, err
	}
	cooldown, err := p.Get(thor.KeyRaffleCooldown)
	if err != nil {
		return nil, err
	}
	version, err := p.Get(thor.KeyConfigVersion)
	if err != nil {
		return nil, err
	}
	return &Snapshot{
		RewardRate:   rate,
		RaffleReward: raffle,
		Cooldown:     cooldown.Uint64(),
		Version:      version.Uint64(),
	}, nil
}
