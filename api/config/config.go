// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package config

import (
	"bytes"
	"context"
	"math/big"
	"net/http"

	"github.com/ethereum/go-ethereum/common/math"
	"github.com/gorilla/mux"
	"github.com/pkg/errors"

	"github.com/vechain/rarity-staking/api/restutil"
	"github.com/vechain/rarity-staking/builtin/params"
	"github.com/vechain/rarity-staking/thor"
)

type Ledger interface {
	StakingConfig() (*params.Snapshot, error)
	UpdateRewards(ctx context.Context, caller thor.Address, rate *big.Int) error
	SetRaffleReward(ctx context.Context, caller thor.Address, amount *big.Int) error
}

// Info is the staking configuration as served.
type Info struct {
	RewardRate     *math.HexOrDecimal256 `json:"rewardRate"`
	RaffleReward   *math.HexOrDecimal256 `json:"raffleReward"`
	RaffleCooldown uint64                `json:"raffleCooldown"`
	Version        uint64                `json:"version"`
}

type Config struct {
	ledger Ledger
}

func New(ledger Ledger) *Config {
	return &Config{ledger}
}

func (c *Config) handleGetConfig(w http.ResponseWriter, _ *http.Request) error {
	snap, err := c.ledger.StakingConfig()
	if err != nil {
		return err
	}
	return restutil.WriteJSON(w, &Info{
		RewardRate:     (*math.HexOrDecimal256)(snap.RewardRate),
		RaffleReward:   (*math.HexOrDecimal256)(snap.RaffleReward),
		RaffleCooldown: snap.Cooldown,
		Version:        snap.Version,
	})
}

func (c *Config) handleSet(set func(ctx context.Context, caller thor.Address, v *big.Int) error) restutil.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) error {
		caller, body, err := restutil.Authenticate(req)
		if err != nil {
			return err
		}
		var amount restutil.Amount
		if err := restutil.ParseJSON(bytes.NewReader(body), &amount); err != nil {
			return restutil.BadRequest(errors.WithMessage(err, "body"))
		}
		v, err := amount.Int()
		if err != nil {
			return restutil.BadRequest(err)
		}
		if err := set(caller.Context(req.Context()), caller.Address, v); err != nil {
			return restutil.CallError(err)
		}
		return c.handleGetConfig(w, req)
	}
}

func (c *Config) Mount(root *mux.Router, pathPrefix string) {
	sub := root.PathPrefix(pathPrefix).Subrouter()

	sub.Path("").
		Methods(http.MethodGet).
		Name("config_get").
		HandlerFunc(restutil.WrapHandlerFunc(c.handleGetConfig))
	sub.Path("/reward-rate").
		Methods(http.MethodPut).
		Name("config_set_reward_rate").
		HandlerFunc(restutil.WrapHandlerFunc(c.handleSet(c.ledger.UpdateRewards)))
	sub.Path("/raffle-reward").
		Methods(http.MethodPut).
		Name("config_set_raffle_reward").
		HandlerFunc(restutil.WrapHandlerFunc(c.handleSet(c.ledger.SetRaffleReward)))
}
