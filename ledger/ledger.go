// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package ledger executes staking calls one at a time against persistent state.
// A call either commits all of its writes and events or leaves nothing behind.
package ledger

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"math/big"
	"sync"
	"time"

	"github.com/pkg/errors"

	"github.com/vechain/rarity-staking/builtin/nft"
	"github.com/vechain/rarity-staking/builtin/nonce"
	"github.com/vechain/rarity-staking/builtin/params"
	"github.com/vechain/rarity-staking/builtin/rarity"
	"github.com/vechain/rarity-staking/builtin/reverts"
	"github.com/vechain/rarity-staking/builtin/staking"
	"github.com/vechain/rarity-staking/builtin/staking/raffle"
	"github.com/vechain/rarity-staking/builtin/staking/stakes"
	"github.com/vechain/rarity-staking/builtin/token"
	"github.com/vechain/rarity-staking/kv"
	"github.com/vechain/rarity-staking/log"
	"github.com/vechain/rarity-staking/logdb"
	"github.com/vechain/rarity-staking/state"
	"github.com/vechain/rarity-staking/thor"
)

var logger = log.WithContext("pkg", "ledger")

var (
	keyLastNow = []byte("m-now")
	keySeed    = []byte("m-seed")
	keyCall    = []byte("m-call")
)

// Contracts are the contracts bound to the state of one call.
type Contracts struct {
	Staking *staking.Staking
	NFT     *nft.NFT
	Token   *token.Token
	Nonces  *nonce.Nonces
}

// Ledger serialises calls and persists their effects.
type Ledger struct {
	mu    sync.RWMutex
	db    kv.Store
	logs  *logdb.LogDB
	clock Clock
	cfg   Config

	verifier rarity.Verifier
	weight   rarity.WeightPolicy
	opts     staking.Options

	lastNow   uint64
	seed      thor.Bytes32
	call      uint32
	committed chan struct{}
}

// New opens the ledger over db and deploys the staking contract if the store is empty.
// source may be nil, in which case draws hash the environment seed.
func New(db kv.Store, logs *logdb.LogDB, clock Clock, cfg Config, source raffle.Source) (*Ledger, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	weight, err := rarity.NewWeightPolicy(cfg.Weight)
	if err != nil {
		return nil, err
	}
	rafflePolicy, err := raffle.NewPolicy(cfg.Raffle)
	if err != nil {
		return nil, err
	}
	claimPolicy, err := staking.ParseClaimPolicy(cfg.ClaimPolicy)
	if err != nil {
		return nil, err
	}

	l := &Ledger{
		db:       db,
		logs:     logs,
		clock:    clock,
		cfg:      cfg,
		verifier: rarity.NewSignerVerifier(cfg.Signer),
		weight:   weight,
		opts: staking.Options{
			Source:      source,
			Raffle:      rafflePolicy,
			ClaimPolicy: claimPolicy,
		},
		committed: make(chan struct{}),
	}
	if err := l.loadMeta(); err != nil {
		return nil, err
	}

	var admin thor.Address
	if err := l.View(func(_ uint64, c *Contracts) (err error) {
		admin, err = c.Staking.Admin()
		return
	}); err != nil {
		return nil, err
	}
	if admin.IsZero() {
		err := l.Exec(context.Background(), "deploy", thor.Address{}, func(_ *staking.Env, c *Contracts) error {
			return c.Staking.Deploy(cfg.Admin, cfg.RewardRate, cfg.RaffleReward, cfg.RaffleCooldown)
		})
		if err != nil {
			return nil, errors.Wrap(err, "deploy staking")
		}
	} else if admin != cfg.Admin {
		logger.Warn("configured admin differs from deployed admin, keeping deployed", "deployed", admin, "configured", cfg.Admin)
	}
	return l, nil
}

func (l *Ledger) loadMeta() error {
	get := func(key []byte) ([]byte, error) {
		v, err := l.db.Get(key)
		if err != nil {
			if l.db.IsNotFound(err) {
				return nil, nil
			}
			return nil, err
		}
		return v, nil
	}
	now, err := get(keyLastNow)
	if err != nil {
		return err
	}
	if len(now) == 8 {
		l.lastNow = binary.BigEndian.Uint64(now)
	}
	seed, err := get(keySeed)
	if err != nil {
		return err
	}
	if len(seed) == 32 {
		l.seed = thor.BytesToBytes32(seed)
	} else {
		l.seed = thor.Blake2b([]byte("rarity-staking"), l.cfg.Staking.Bytes())
	}
	call, err := get(keyCall)
	if err != nil {
		return err
	}
	if len(call) == 4 {
		l.call = binary.BigEndian.Uint32(call)
	}
	return nil
}

// Config returns the deployment configuration.
func (l *Ledger) Config() Config {
	return l.cfg
}

func (l *Ledger) bind(st *state.State) *Contracts {
	nftContract := nft.New(l.cfg.NFT, st)
	tokenContract := token.New(l.cfg.Token, st)
	registry := rarity.NewRegistry(l.cfg.Staking, st, l.verifier, l.weight)
	return &Contracts{
		Staking: staking.New(l.cfg.Staking, st, nftContract, tokenContract, registry, params.New(l.cfg.Staking, st), l.opts),
		NFT:     nftContract,
		Token:   tokenContract,
		Nonces:  nonce.New(l.cfg.Staking, st),
	}
}

// now returns the clock reading, never below the last committed call.
func (l *Ledger) now() uint64 {
	now := l.clock.Now()
	if now < l.lastNow {
		return l.lastNow
	}
	return now
}

// View runs fn against the committed state. Writes made by fn are discarded.
func (l *Ledger) View(fn func(now uint64, c *Contracts) error) error {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return fn(l.now(), l.bind(state.New(l.db)))
}

// Exec runs fn as one call by caller. On success the state changes, the ledger
// metadata and the emitted events are persisted; on error nothing is.
//
// If ctx carries a nonce.Ticket, the ticket is consumed for caller before fn runs.
// A reused or expired ticket rejects the call. A signed call rejected by a revert
// still consumes its ticket, so the same signature cannot be submitted again.
func (l *Ledger) Exec(ctx context.Context, op string, caller thor.Address, fn func(env *staking.Env, c *Contracts) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	start := time.Now()
	now := l.now()
	seed := thor.Blake2b(l.seed.Bytes(), uint64Bytes(now))
	env := &staking.Env{Now: now, Seed: seed}

	st := state.New(l.db)
	c := l.bind(st)

	ticket, signed := nonce.TicketFrom(ctx)
	if signed {
		if err := c.Nonces.Use(caller, ticket, now); err != nil {
			l.reject(op, caller, err)
			return err
		}
	}

	cp := st.NewCheckpoint()
	if err := fn(env, c); err != nil {
		l.reject(op, caller, err)
		if !signed || !reverts.IsRevertErr(err) {
			return err
		}
		st.RevertTo(cp)
		if _, cerr := l.commit(st, now, seed); cerr != nil {
			return cerr
		}
		return err
	}

	call, err := l.commit(st, now, seed)
	if err != nil {
		return err
	}

	events := c.Staking.Events()
	if l.logs != nil && len(events) > 0 {
		batch := l.logs.NewBatch(call, now)
		for _, ev := range events {
			var data []byte
			if ev.Data != nil {
				if data, err = json.Marshal(ev.Data); err != nil {
					return errors.Wrap(err, "encode event data")
				}
			}
			batch.Insert(string(ev.Kind), ev.Token, ev.Account, ev.Amount, data)
		}
		// state is already durable here, a failed index write only loses history
		if err := batch.Commit(); err != nil {
			logger.Error("failed to write events", "op", op, "call", call, "err", err)
		}
	}
	l.notify()

	metricCallsCount().AddWithLabel(1, map[string]string{"op": op, "result": "ok"})
	metricCallDuration().ObserveWithLabels(time.Since(start).Milliseconds(), map[string]string{"op": op})
	recordEventMetrics(events)
	if count, err := c.Staking.StakedCount(); err == nil {
		metricStakedTokens().Set(int64(count))
	}
	logger.Debug("call committed", "op", op, "caller", caller, "call", call, "now", now, "events", len(events))
	return nil
}

func (l *Ledger) reject(op string, caller thor.Address, err error) {
	result := "error"
	if reverts.IsRevertErr(err) {
		result = "revert"
	}
	metricCallsCount().AddWithLabel(1, map[string]string{"op": op, "result": result})
	logger.Debug("call rejected", "op", op, "caller", caller, "error", err)
}

// commit writes the dirty state of st with the ledger metadata in one batch and
// returns the number of the committed call.
func (l *Ledger) commit(st *state.State, now uint64, seed thor.Bytes32) (uint32, error) {
	call := l.call + 1
	bulk := l.db.Bulk()
	if err := bulk.Put(keyLastNow, uint64Bytes(now)); err != nil {
		return 0, err
	}
	if err := bulk.Put(keySeed, seed.Bytes()); err != nil {
		return 0, err
	}
	var callBytes [4]byte
	binary.BigEndian.PutUint32(callBytes[:], call)
	if err := bulk.Put(keyCall, callBytes[:]); err != nil {
		return 0, err
	}
	if err := st.Stage().Commit(bulk); err != nil {
		return 0, errors.Wrap(err, "commit state")
	}
	l.lastNow, l.seed, l.call = now, seed, call
	return call, nil
}

// notify wakes everyone waiting on Committed. The caller holds the write lock.
func (l *Ledger) notify() {
	close(l.committed)
	l.committed = make(chan struct{})
}

// Committed returns a channel closed once the next successful call is committed.
func (l *Ledger) Committed() <-chan struct{} {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.committed
}

// LastCall returns the number of the last committed call.
func (l *Ledger) LastCall() uint32 {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.call
}

// LastNonce returns the highest nonce caller has signed.
func (l *Ledger) LastNonce(caller thor.Address) (n uint64, err error) {
	err = l.View(func(_ uint64, c *Contracts) error {
		n, err = c.Nonces.Last(caller)
		return err
	})
	return
}

func uint64Bytes(v uint64) []byte {
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], v)
	return b[:]
}

//
// Typed calls
//

func (l *Ledger) InitializeRarity(ctx context.Context, caller thor.Address, records []*rarity.Record) (entries []*rarity.Entry, err error) {
	err = l.Exec(ctx, "initializeRarity", caller, func(_ *staking.Env, c *Contracts) error {
		entries, err = c.Staking.InitializeRarity(caller, records)
		return err
	})
	return
}

func (l *Ledger) StakeTokens(ctx context.Context, caller thor.Address, ids []thor.TokenID) error {
	return l.Exec(ctx, "stakeTokens", caller, func(env *staking.Env, c *Contracts) error {
		return c.Staking.StakeTokens(env, caller, ids)
	})
}

func (l *Ledger) UnstakeTokens(ctx context.Context, caller thor.Address, ids []thor.TokenID) (paid *big.Int, err error) {
	err = l.Exec(ctx, "unstakeTokens", caller, func(env *staking.Env, c *Contracts) error {
		paid, err = c.Staking.UnstakeTokens(env, caller, ids)
		return err
	})
	return
}

func (l *Ledger) ClaimRewards(ctx context.Context, caller thor.Address, ids []thor.TokenID) (paid *big.Int, err error) {
	err = l.Exec(ctx, "claimRewards", caller, func(env *staking.Env, c *Contracts) error {
		paid, err = c.Staking.ClaimRewards(env, caller, ids)
		return err
	})
	return
}

func (l *Ledger) RaffleRoll(ctx context.Context, caller thor.Address, ids []thor.TokenID) (draws []*raffle.Draw, err error) {
	err = l.Exec(ctx, "raffleRoll", caller, func(env *staking.Env, c *Contracts) error {
		draws, err = c.Staking.RaffleRoll(env, caller, ids)
		return err
	})
	return
}

func (l *Ledger) UpdateRewards(ctx context.Context, caller thor.Address, rate *big.Int) error {
	return l.Exec(ctx, "updateRewards", caller, func(_ *staking.Env, c *Contracts) error {
		return c.Staking.UpdateRewards(caller, rate)
	})
}

func (l *Ledger) SetRaffleReward(ctx context.Context, caller thor.Address, amount *big.Int) error {
	return l.Exec(ctx, "setRaffleReward", caller, func(_ *staking.Env, c *Contracts) error {
		return c.Staking.SetRaffleReward(caller, amount)
	})
}

func (l *Ledger) StakedInfo(id thor.TokenID) (rec *stakes.Record, err error) {
	err = l.View(func(_ uint64, c *Contracts) error {
		rec, err = c.Staking.StakedInfo(id)
		return err
	})
	return
}

func (l *Ledger) PendingReward(id thor.TokenID) (amount *big.Int, err error) {
	err = l.View(func(now uint64, c *Contracts) error {
		amount, err = c.Staking.PendingReward(now, id)
		return err
	})
	return
}

func (l *Ledger) StakingConfig() (snap *params.Snapshot, err error) {
	err = l.View(func(_ uint64, c *Contracts) error {
		snap, err = c.Staking.Config()
		return err
	})
	return
}

func (l *Ledger) BalanceOf(addr thor.Address) (balance *big.Int, err error) {
	err = l.View(func(_ uint64, c *Contracts) error {
		balance, err = c.Token.BalanceOf(addr)
		return err
	})
	return
}

func (l *Ledger) OwnerOf(id thor.TokenID) (owner thor.Address, err error) {
	err = l.View(func(_ uint64, c *Contracts) error {
		owner, err = c.NFT.OwnerOf(id)
		return err
	})
	return
}

// FilterEvents queries the event log.
func (l *Ledger) FilterEvents(ctx context.Context, filter *logdb.Filter) ([]*logdb.Event, error) {
	if l.logs == nil {
		return nil, nil
	}
	return l.logs.FilterEvents(ctx, filter)
}

//
// Harness calls, exposed only in dev mode
//

func (l *Ledger) MintNFT(ctx context.Context, to thor.Address, id thor.TokenID) error {
	return l.Exec(ctx, "mintNFT", to, func(_ *staking.Env, c *Contracts) error {
		return c.NFT.Mint(to, id)
	})
}

func (l *Ledger) MintToken(ctx context.Context, to thor.Address, amount *big.Int) error {
	return l.Exec(ctx, "mintToken", to, func(_ *staking.Env, c *Contracts) error {
		return c.Token.Mint(to, amount)
	})
}

// ApproveStaking lets the staking contract take custody of every token of owner.
func (l *Ledger) ApproveStaking(ctx context.Context, owner thor.Address, approved bool) error {
	return l.Exec(ctx, "approve", owner, func(_ *staking.Env, c *Contracts) error {
		return c.NFT.SetApprovalForAll(owner, l.cfg.Staking, approved)
	})
}
