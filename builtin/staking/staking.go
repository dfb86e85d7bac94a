// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package staking

import (
	"bytes"
	"math/big"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/pkg/errors"

	"github.com/vechain/rarity-staking/builtin/params"
	"github.com/vechain/rarity-staking/builtin/rarity"
	"github.com/vechain/rarity-staking/builtin/solidity"
	"github.com/vechain/rarity-staking/builtin/staking/accrual"
	"github.com/vechain/rarity-staking/builtin/staking/raffle"
	"github.com/vechain/rarity-staking/builtin/staking/stakes"
	"github.com/vechain/rarity-staking/log"
	"github.com/vechain/rarity-staking/state"
	"github.com/vechain/rarity-staking/thor"
)

var (
	logger = log.WithContext("pkg", "staking")

	slotAdmin = thor.BytesToBytes32([]byte("staking-admin"))
)

// Options carries the swappable policies of a deployment.
type Options struct {
	Source      raffle.Source
	Raffle      raffle.Policy
	ClaimPolicy ClaimPolicy
}

// Staking implements the rarity-weighted staking contract. A Staking is bound to one
// state and collects the events of the calls made on it.
type Staking struct {
	addr  thor.Address
	state *state.State
	nft   NFT
	token RewardToken

	registry *rarity.Registry
	stakes   *stakes.Repository
	params   *params.Params
	admin    *solidity.Address

	source      raffle.Source
	raffle      raffle.Policy
	claimPolicy ClaimPolicy

	events []*Event
}

// New binds the staking contract at addr. The registry and params must share st.
func New(
	addr thor.Address,
	st *state.State,
	nft NFT,
	token RewardToken,
	registry *rarity.Registry,
	params *params.Params,
	opts Options,
) *Staking {
	sctx := solidity.NewContext(addr, st)
	if opts.Source == nil {
		opts.Source = raffle.HashSource{}
	}
	if opts.Raffle == nil {
		opts.Raffle = raffle.Guaranteed{}
	}
	return &Staking{
		addr:        addr,
		state:       st,
		nft:         nft,
		token:       token,
		registry:    registry,
		stakes:      stakes.NewRepository(sctx),
		params:      params,
		admin:       solidity.NewAddress(sctx, slotAdmin),
		source:      opts.Source,
		raffle:      opts.Raffle,
		claimPolicy: opts.ClaimPolicy,
	}
}

// Address returns the custody address of the contract.
func (s *Staking) Address() thor.Address {
	return s.addr
}

// Events returns the events emitted by successful calls so far.
func (s *Staking) Events() []*Event {
	return s.events
}

// atomic runs fn in a state checkpoint. On error every write and event of fn is dropped.
func (s *Staking) atomic(fn func() error) error {
	cp := s.state.NewCheckpoint()
	n := len(s.events)
	if err := fn(); err != nil {
		s.state.RevertTo(cp)
		s.events = s.events[:n]
		return err
	}
	return nil
}

func (s *Staking) emit(kind EventKind, id *thor.TokenID, account thor.Address, amount *big.Int, data map[string]any) {
	s.events = append(s.events, &Event{
		Kind:    kind,
		Token:   id,
		Account: account,
		Amount:  amount,
		Data:    data,
	})
}

//
// Getters - no state change
//

// StakedInfo returns the stake record of id. The owner is zero if the token is not staked.
func (s *Staking) StakedInfo(id thor.TokenID) (*stakes.Record, error) {
	return s.stakes.Get(id)
}

// StakedCount returns the number of tokens in custody.
func (s *Staking) StakedCount() (uint64, error) {
	return s.stakes.Count()
}

// Config returns the configuration in effect.
func (s *Staking) Config() (*params.Snapshot, error) {
	return s.params.Snapshot()
}

// Admin returns the privileged identity.
func (s *Staking) Admin() (thor.Address, error) {
	return s.admin.Get()
}

// Registry exposes the rarity registry bound to the same state.
func (s *Staking) Registry() *rarity.Registry {
	return s.registry
}

// PendingReward returns what a claim of id would pay at now. Unstaked tokens owe nothing.
func (s *Staking) PendingReward(now uint64, id thor.TokenID) (*big.Int, error) {
	rec, err := s.stakes.Get(id)
	if err != nil {
		return nil, err
	}
	if rec.IsEmpty() {
		return new(big.Int), nil
	}
	cfg, err := s.params.Snapshot()
	if err != nil {
		return nil, err
	}
	return s.owed(now, id, rec, cfg)
}

func (s *Staking) owed(now uint64, id thor.TokenID, rec *stakes.Record, cfg *params.Snapshot) (*big.Int, error) {
	weight, err := s.registry.WeightOf(id)
	if err != nil {
		return nil, err
	}
	return accrual.Reward(accrual.Elapsed(now, rec.LastClaimAt), cfg.RewardRate, weight)
}

//
// Setters - state change
//

// Deploy sets the admin and the initial configuration. It can run once.
func (s *Staking) Deploy(admin thor.Address, rate, raffleReward *big.Int, cooldown uint64) error {
	return s.atomic(func() error {
		current, err := s.admin.Get()
		if err != nil {
			return err
		}
		if !current.IsZero() {
			return ErrAlreadyDeployed
		}
		if admin.IsZero() {
			return errors.WithMessage(ErrInvalidAmount, "zero admin")
		}
		if err := validAmount(rate); err != nil {
			return err
		}
		if err := validAmount(raffleReward); err != nil {
			return err
		}
		s.admin.Set(admin)
		if err := s.params.Set(thor.KeyRewardRate, rate); err != nil {
			return err
		}
		if err := s.params.Set(thor.KeyRaffleReward, raffleReward); err != nil {
			return err
		}
		if err := s.params.Set(thor.KeyRaffleCooldown, new(big.Int).SetUint64(cooldown)); err != nil {
			return err
		}
		logger.Info("staking deployed", "addr", s.addr, "admin", admin, "rate", rate, "raffle", raffleReward)
		return nil
	})
}

// InitializeRarity ingests a signed rarity batch. Any caller may submit one.
func (s *Staking) InitializeRarity(caller thor.Address, records []*rarity.Record) ([]*rarity.Entry, error) {
	if len(records) > thor.MaxBatchSize {
		return nil, ErrBatchTooLarge
	}
	var entries []*rarity.Entry
	err := s.atomic(func() error {
		var err error
		if entries, err = s.registry.Initialize(records); err != nil {
			return err
		}
		for i, rec := range records {
			id := rec.TokenID
			s.emit(EventRarityInitialized, &id, caller, nil, map[string]any{
				"score":  entries[i].Score,
				"weight": entries[i].Weight,
			})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	logger.Info("rarity initialized", "caller", caller, "tokens", len(records))
	return entries, nil
}

// StakeTokens moves every token of ids into custody on behalf of caller.
func (s *Staking) StakeTokens(env *Env, caller thor.Address, ids []thor.TokenID) error {
	if err := checkBatch(ids); err != nil {
		return err
	}
	err := s.atomic(func() error {
		ok, err := s.registry.IsInitialized()
		if err != nil {
			return err
		}
		if !ok {
			return ErrNotInitialized
		}
		for _, id := range ids {
			if err := s.stake(env, caller, id); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		logger.Debug("stake failed", "caller", caller, "error", err)
		return err
	}
	logger.Info("staked", "caller", caller, "tokens", len(ids))
	return nil
}

func (s *Staking) stake(env *Env, caller thor.Address, id thor.TokenID) error {
	rec, err := s.stakes.Get(id)
	if err != nil {
		return err
	}
	if !rec.IsEmpty() {
		return errors.WithMessagef(ErrAlreadyStaked, "token %v", id)
	}
	if _, err := s.registry.WeightOf(id); err != nil {
		return err
	}
	holder, err := s.nft.OwnerOf(id)
	if err != nil {
		return err
	}
	if holder != caller {
		return errors.WithMessagef(ErrNotTokenHolder, "token %v", id)
	}
	approved, err := s.nft.IsApproved(s.addr, id)
	if err != nil {
		return err
	}
	if !approved {
		return errors.WithMessagef(ErrNotApproved, "token %v", id)
	}
	if err := s.nft.TransferFrom(s.addr, caller, s.addr, id); err != nil {
		return errors.WithMessage(err, "take custody")
	}
	if err := s.stakes.Add(id, stakes.New(caller, env.Now)); err != nil {
		return err
	}
	s.emit(EventStaked, &id, caller, nil, nil)
	logger.Debug("token staked", "token", id, "owner", caller)
	return nil
}

// UnstakeTokens settles owed rewards and returns custody of ids to caller.
func (s *Staking) UnstakeTokens(env *Env, caller thor.Address, ids []thor.TokenID) (*big.Int, error) {
	if err := checkBatch(ids); err != nil {
		return nil, err
	}
	total := new(big.Int)
	err := s.atomic(func() error {
		cfg, err := s.params.Snapshot()
		if err != nil {
			return err
		}
		for _, id := range ids {
			rec, err := s.ownedRecord(caller, id)
			if err != nil {
				return err
			}
			paid, err := s.settle(env, caller, id, rec, cfg)
			if err != nil {
				return err
			}
			total.Add(total, paid)
			if err := s.nft.TransferFrom(s.addr, s.addr, caller, id); err != nil {
				return errors.WithMessage(err, "return custody")
			}
			if err := s.stakes.Remove(id); err != nil {
				return err
			}
			s.emit(EventUnstaked, &id, caller, nil, nil)
		}
		return nil
	})
	if err != nil {
		logger.Debug("unstake failed", "caller", caller, "error", err)
		return nil, err
	}
	logger.Info("unstaked", "caller", caller, "tokens", len(ids), "paid", total)
	return total, nil
}

// ClaimRewards pays caller what ids accrued since their last claim.
func (s *Staking) ClaimRewards(env *Env, caller thor.Address, ids []thor.TokenID) (*big.Int, error) {
	if err := checkBatch(ids); err != nil {
		return nil, err
	}
	total := new(big.Int)
	err := s.atomic(func() error {
		cfg, err := s.params.Snapshot()
		if err != nil {
			return err
		}
		for _, id := range ids {
			rec, err := s.ownedRecord(caller, id)
			if err != nil {
				if s.claimPolicy == ClaimPolicySkipForeign && errors.Is(err, ErrNotOwner) {
					logger.Debug("claim skipped foreign token", "token", id, "caller", caller)
					continue
				}
				return err
			}
			paid, err := s.settle(env, caller, id, rec, cfg)
			if err != nil {
				return err
			}
			total.Add(total, paid)
		}
		return nil
	})
	if err != nil {
		logger.Debug("claim failed", "caller", caller, "error", err)
		return nil, err
	}
	logger.Info("rewards claimed", "caller", caller, "tokens", len(ids), "paid", total)
	return total, nil
}

// settle pays the owed reward of id and advances its claim checkpoint.
// A zero reward leaves the checkpoint where it is.
func (s *Staking) settle(env *Env, caller thor.Address, id thor.TokenID, rec *stakes.Record, cfg *params.Snapshot) (*big.Int, error) {
	reward, err := s.owed(env.Now, id, rec, cfg)
	if err != nil {
		return nil, err
	}
	if reward.Sign() == 0 {
		return reward, nil
	}
	if err := s.pay(caller, reward); err != nil {
		return nil, err
	}
	rec.LastClaimAt = env.Now
	if err := s.stakes.Update(id, rec); err != nil {
		return nil, err
	}
	s.emit(EventRewardClaimed, &id, caller, reward, map[string]any{"configVersion": cfg.Version})
	logger.Debug("reward paid", "token", id, "to", caller, "amount", reward)
	return reward, nil
}

// RaffleRoll rolls every token of ids whose cooldown elapsed.
func (s *Staking) RaffleRoll(env *Env, caller thor.Address, ids []thor.TokenID) ([]*raffle.Draw, error) {
	if err := checkBatch(ids); err != nil {
		return nil, err
	}
	var draws []*raffle.Draw
	err := s.atomic(func() error {
		cfg, err := s.params.Snapshot()
		if err != nil {
			return err
		}
		for _, id := range ids {
			rec, err := s.ownedRecord(caller, id)
			if err != nil {
				return err
			}
			if !raffle.Ready(env.Now, rec.LastRaffleAt, cfg.Cooldown) {
				return errors.WithMessagef(ErrRollingTooSoon, "token %v", id)
			}
			entropy, proof, err := s.source.Draw(env.Seed, id, env.Now)
			if err != nil {
				return err
			}
			amount := s.raffle.Payout(entropy, cfg.RaffleReward)
			if amount.Sign() > 0 {
				if err := s.pay(caller, amount); err != nil {
					return err
				}
			}
			rec.LastRaffleAt = env.Now
			if err := s.stakes.Update(id, rec); err != nil {
				return err
			}
			draws = append(draws, &raffle.Draw{Token: id, Seed: env.Seed, Entropy: entropy, Proof: proof, Amount: amount})
			data := map[string]any{"seed": env.Seed.String(), "entropy": entropy.String()}
			if proof != nil {
				data["proof"] = hexutil.Encode(proof)
			}
			s.emit(EventRaffleRolled, &id, caller, amount, data)
		}
		return nil
	})
	if err != nil {
		logger.Debug("raffle failed", "caller", caller, "error", err)
		return nil, err
	}
	logger.Info("raffle rolled", "caller", caller, "tokens", len(ids))
	return draws, nil
}

// UpdateRewards sets the reward rate per second for a 1.0x weight.
// It applies to every pending window at its next settlement.
func (s *Staking) UpdateRewards(caller thor.Address, rate *big.Int) error {
	return s.setParam(caller, thor.KeyRewardRate, rate, EventRewardRateUpdated)
}

// SetRaffleReward sets the amount paid by a winning roll.
func (s *Staking) SetRaffleReward(caller thor.Address, amount *big.Int) error {
	return s.setParam(caller, thor.KeyRaffleReward, amount, EventRaffleRewardUpdated)
}

func (s *Staking) setParam(caller thor.Address, key thor.Bytes32, value *big.Int, kind EventKind) error {
	return s.atomic(func() error {
		admin, err := s.admin.Get()
		if err != nil {
			return err
		}
		if admin.IsZero() || caller != admin {
			return ErrNotAdmin
		}
		if err := validAmount(value); err != nil {
			return err
		}
		if err := s.params.Set(key, value); err != nil {
			return err
		}
		s.emit(kind, nil, caller, new(big.Int).Set(value), nil)
		logger.Info("config updated", "key", string(bytes.TrimLeft(key[:], "\x00")), "value", value)
		return nil
	})
}

func (s *Staking) ownedRecord(caller thor.Address, id thor.TokenID) (*stakes.Record, error) {
	rec, err := s.stakes.Get(id)
	if err != nil {
		return nil, err
	}
	if rec.IsEmpty() {
		return nil, errors.WithMessagef(ErrNotStaked, "token %v", id)
	}
	if rec.Owner != caller {
		return nil, errors.WithMessagef(ErrNotOwner, "token %v", id)
	}
	return rec, nil
}

func (s *Staking) pay(to thor.Address, amount *big.Int) error {
	pool, err := s.token.BalanceOf(s.addr)
	if err != nil {
		return err
	}
	if pool.Cmp(amount) < 0 {
		return errors.WithMessagef(ErrInsufficientRewardPool, "pool %v, owed %v", pool, amount)
	}
	return s.token.Transfer(s.addr, to, amount)
}

func checkBatch(ids []thor.TokenID) error {
	if len(ids) == 0 {
		return ErrEmptyBatch
	}
	if len(ids) > thor.MaxBatchSize {
		return ErrBatchTooLarge
	}
	return nil
}

func validAmount(v *big.Int) error {
	if v == nil || v.Sign() < 0 || v.Cmp(thor.MaxAmount) > 0 {
		return errors.WithMessagef(ErrInvalidAmount, "%v", v)
	}
	return nil
}
