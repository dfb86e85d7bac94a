// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package staking

import (
	"errors"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vechain/rarity-staking/builtin/rarity"
	"github.com/vechain/rarity-staking/builtin/reverts"
	"github.com/vechain/rarity-staking/builtin/staking/raffle"
	"github.com/vechain/rarity-staking/thor"
)

func TestStakeBeforeInitialize(t *testing.T) {
	e := newTestEnv(t, Options{})

	for id := thor.TokenID(1); id <= 4; id++ {
		err := e.staking.StakeTokens(e.env(), e.owner(id), []thor.TokenID{id})
		assert.True(t, errors.Is(err, ErrNotInitialized), "token %v: %v", id, err)
	}
	assert.Equal(t, alice, e.owner(1))
}

func TestEndToEnd(t *testing.T) {
	e := newTestEnv(t, Options{})
	e.initialize()

	require.NoError(t, e.staking.StakeTokens(e.env(), alice, []thor.TokenID{1, 2}))
	require.NoError(t, e.staking.StakeTokens(e.env(), bob, []thor.TokenID{3, 4}))
	for id := thor.TokenID(1); id <= 4; id++ {
		assert.Equal(t, stakingAddr, e.owner(id))
	}

	info, err := e.staking.StakedInfo(1)
	require.NoError(t, err)
	assert.Equal(t, alice, info.Owner)
	assert.Equal(t, e.now, info.StakedAt)
	assert.Equal(t, e.now, info.LastClaimAt)
	assert.Equal(t, e.now, info.LastRaffleAt)

	n, err := e.staking.StakedCount()
	require.NoError(t, err)
	assert.Equal(t, uint64(4), n)

	e.advance(day)

	aliceBefore := e.balance(alice)
	paid, err := e.staking.ClaimRewards(e.env(), alice, []thor.TokenID{1, 2})
	require.NoError(t, err)
	assert.Equal(t, 1, paid.Sign())
	assert.Equal(t, new(big.Int).Add(aliceBefore, paid), e.balance(alice))

	bobPaid, err := e.staking.ClaimRewards(e.env(), bob, []thor.TokenID{3, 4})
	require.NoError(t, err)
	assert.Equal(t, bobPaid, e.balance(bob))

	// 86400s * 1000/s * weight(571515) / unit, weight = 10000 * 500000 / 571515
	tokenOne, err := e.staking.Registry().WeightOf(1)
	require.NoError(t, err)
	assert.Equal(t, uint64(8748), tokenOne)

	e.advance(day)
	_, err = e.staking.UnstakeTokens(e.env(), alice, []thor.TokenID{1, 2})
	require.NoError(t, err)
	assert.Equal(t, alice, e.owner(1))
	assert.Equal(t, alice, e.owner(2))
	for _, id := range []thor.TokenID{1, 2} {
		info, err := e.staking.StakedInfo(id)
		require.NoError(t, err)
		assert.True(t, info.Owner.IsZero())
	}
	n, err = e.staking.StakedCount()
	require.NoError(t, err)
	assert.Equal(t, uint64(2), n)
}

func TestRewardAmount(t *testing.T) {
	e := newTestEnv(t, Options{})
	e.initialize()
	require.NoError(t, e.staking.StakeTokens(e.env(), alice, []thor.TokenID{1}))

	e.advance(day)
	pending, err := e.staking.PendingReward(e.now, 1)
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(75_582_720), pending)

	paid, err := e.staking.ClaimRewards(e.env(), alice, []thor.TokenID{1})
	require.NoError(t, err)
	assert.Equal(t, pending, paid)

	pending, err = e.staking.PendingReward(e.now, 1)
	require.NoError(t, err)
	assert.Equal(t, 0, pending.Sign())

	pending, err = e.staking.PendingReward(e.now, 99)
	require.NoError(t, err)
	assert.Equal(t, 0, pending.Sign())
}

func TestClaimIdempotent(t *testing.T) {
	e := newTestEnv(t, Options{})
	e.initialize()
	require.NoError(t, e.staking.StakeTokens(e.env(), alice, []thor.TokenID{1}))

	e.advance(3600)
	first, err := e.staking.ClaimRewards(e.env(), alice, []thor.TokenID{1})
	require.NoError(t, err)
	assert.Equal(t, 1, first.Sign())
	balance := e.balance(alice)

	second, err := e.staking.ClaimRewards(e.env(), alice, []thor.TokenID{1})
	require.NoError(t, err)
	assert.Equal(t, 0, second.Sign())
	assert.Equal(t, balance, e.balance(alice))

	// the same token twice in one batch pays once
	e.advance(3600)
	double, err := e.staking.ClaimRewards(e.env(), alice, []thor.TokenID{1, 1})
	require.NoError(t, err)
	assert.Equal(t, first, double)
}

func TestZeroRewardKeepsCheckpoint(t *testing.T) {
	e := newTestEnv(t, Options{})
	e.initialize()
	require.NoError(t, e.staking.StakeTokens(e.env(), alice, []thor.TokenID{1}))
	staked := e.now

	require.NoError(t, e.staking.UpdateRewards(adminAddr, big.NewInt(0)))
	e.advance(day)
	paid, err := e.staking.ClaimRewards(e.env(), alice, []thor.TokenID{1})
	require.NoError(t, err)
	assert.Equal(t, 0, paid.Sign())

	info, err := e.staking.StakedInfo(1)
	require.NoError(t, err)
	assert.Equal(t, staked, info.LastClaimAt)
}

func TestRateChangeAppliesToWholeWindow(t *testing.T) {
	e := newTestEnv(t, Options{})
	e.initialize()
	require.NoError(t, e.staking.StakeTokens(e.env(), alice, []thor.TokenID{1}))

	e.advance(day)
	require.NoError(t, e.staking.UpdateRewards(adminAddr, big.NewInt(2000)))
	e.advance(day)

	paid, err := e.staking.ClaimRewards(e.env(), alice, []thor.TokenID{1})
	require.NoError(t, err)
	// two days at the new rate of 2000/s
	assert.Equal(t, big.NewInt(2*75_582_720*2), paid)

	cfg, err := e.staking.Config()
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(2000), cfg.RewardRate)
	assert.Equal(t, uint64(4), cfg.Version)
}

func TestAuthorization(t *testing.T) {
	e := newTestEnv(t, Options{Source: fixedSource()})
	e.initialize()
	require.NoError(t, e.staking.StakeTokens(e.env(), alice, []thor.TokenID{1}))
	e.advance(day)

	_, err := e.staking.ClaimRewards(e.env(), bob, []thor.TokenID{1})
	assert.True(t, errors.Is(err, ErrNotOwner))
	_, err = e.staking.UnstakeTokens(e.env(), bob, []thor.TokenID{1})
	assert.True(t, errors.Is(err, ErrNotOwner))
	_, err = e.staking.RaffleRoll(e.env(), bob, []thor.TokenID{1})
	assert.True(t, errors.Is(err, ErrNotOwner))

	// a token that is not staked at all is reported as not owned too
	_, err = e.staking.ClaimRewards(e.env(), bob, []thor.TokenID{3})
	assert.True(t, errors.Is(err, ErrNotOwner))
	assert.True(t, errors.Is(err, ErrNotStaked))
	_, err = e.staking.UnstakeTokens(e.env(), bob, []thor.TokenID{42})
	assert.True(t, errors.Is(err, ErrNotOwner))

	// staking someone else's token
	err = e.staking.StakeTokens(e.env(), alice, []thor.TokenID{3})
	assert.True(t, errors.Is(err, ErrNotTokenHolder))
	assert.True(t, errors.Is(err, ErrNotOwner))

	assert.Equal(t, stakingAddr, e.owner(1))
	assert.Equal(t, 0, e.balance(bob).Sign())
}

func TestStakeRejections(t *testing.T) {
	e := newTestEnv(t, Options{})
	_, err := e.staking.InitializeRarity(alice, e.records(1, 3))
	require.NoError(t, err)

	err = e.staking.StakeTokens(e.env(), alice, []thor.TokenID{1, 2})
	assert.True(t, errors.Is(err, ErrTokenNotInitialized))
	assert.Equal(t, alice, e.owner(1), "failed batch must not take custody of earlier tokens")

	require.NoError(t, e.staking.StakeTokens(e.env(), alice, []thor.TokenID{1}))
	err = e.staking.StakeTokens(e.env(), alice, []thor.TokenID{1})
	assert.True(t, errors.Is(err, ErrAlreadyStaked))

	require.NoError(t, e.nft.SetApprovalForAll(bob, stakingAddr, false))
	err = e.staking.StakeTokens(e.env(), bob, []thor.TokenID{3})
	assert.True(t, errors.Is(err, ErrNotApproved))

	assert.True(t, errors.Is(e.staking.StakeTokens(e.env(), alice, nil), ErrEmptyBatch))
	oversized := make([]thor.TokenID, thor.MaxBatchSize+1)
	assert.True(t, errors.Is(e.staking.StakeTokens(e.env(), alice, oversized), ErrBatchTooLarge))
}

func TestRaffleCooldown(t *testing.T) {
	e := newTestEnv(t, Options{Source: fixedSource()})
	e.initialize()
	require.NoError(t, e.staking.StakeTokens(e.env(), alice, []thor.TokenID{1}))

	_, err := e.staking.RaffleRoll(e.env(), alice, []thor.TokenID{1})
	assert.True(t, errors.Is(err, ErrRollingTooSoon))

	e.advance(day)
	before := e.balance(alice)
	draws, err := e.staking.RaffleRoll(e.env(), alice, []thor.TokenID{1})
	require.NoError(t, err)
	require.Len(t, draws, 1)
	assert.Equal(t, thor.InitialRaffleReward, draws[0].Amount)
	assert.Equal(t, new(big.Int).Add(before, thor.InitialRaffleReward), e.balance(alice))

	e.advance(11 * 3600)
	balance := e.balance(alice)
	_, err = e.staking.RaffleRoll(e.env(), alice, []thor.TokenID{1})
	assert.True(t, errors.Is(err, ErrRollingTooSoon))
	assert.Equal(t, balance, e.balance(alice))

	e.advance(3600)
	_, err = e.staking.RaffleRoll(e.env(), alice, []thor.TokenID{1})
	require.NoError(t, err)
	assert.Equal(t, new(big.Int).Add(balance, thor.InitialRaffleReward), e.balance(alice))

	info, err := e.staking.StakedInfo(1)
	require.NoError(t, err)
	assert.Equal(t, e.now, info.LastRaffleAt)
}

func TestRaffleRecordsVRFProof(t *testing.T) {
	key, err := crypto.GenerateKey()
	require.NoError(t, err)
	source := raffle.NewVRFSource(key)
	e := newTestEnv(t, Options{Source: source})
	e.initialize()
	require.NoError(t, e.staking.StakeTokens(e.env(), alice, []thor.TokenID{1}))
	e.advance(day)

	env := e.env()
	draws, err := e.staking.RaffleRoll(env, alice, []thor.TokenID{1})
	require.NoError(t, err)
	require.Len(t, draws, 1)
	require.NotEmpty(t, draws[0].Proof)
	assert.Equal(t, env.Seed, draws[0].Seed)

	entropy, err := raffle.VerifyDraw(&key.PublicKey, draws[0].Seed, 1, env.Now, draws[0].Proof)
	require.NoError(t, err)
	assert.Equal(t, draws[0].Entropy, entropy)

	events := e.staking.Events()
	rolled := events[len(events)-1]
	require.Equal(t, EventRaffleRolled, rolled.Kind)
	assert.Equal(t, hexutil.Encode(draws[0].Proof), rolled.Data["proof"])
	assert.Equal(t, env.Seed.String(), rolled.Data["seed"])
}

func TestRaffleOddsAndReward(t *testing.T) {
	e := newTestEnv(t, Options{Source: fixedSource(), Raffle: raffle.Odds{Numerator: 1, Denominator: 2}})
	e.initialize()
	require.NoError(t, e.staking.StakeTokens(e.env(), alice, []thor.TokenID{1}))
	e.advance(day)

	// entropy 1 mod 2 misses; the cooldown still restarts
	draws, err := e.staking.RaffleRoll(e.env(), alice, []thor.TokenID{1})
	require.NoError(t, err)
	assert.Equal(t, 0, draws[0].Amount.Sign())
	_, err = e.staking.RaffleRoll(e.env(), alice, []thor.TokenID{1})
	assert.True(t, errors.Is(err, ErrRollingTooSoon))

	assert.True(t, errors.Is(e.staking.SetRaffleReward(alice, big.NewInt(5)), ErrNotAdmin))
	require.NoError(t, e.staking.SetRaffleReward(adminAddr, big.NewInt(5)))
	cfg, err := e.staking.Config()
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(5), cfg.RaffleReward)
}

func TestInsufficientRewardPool(t *testing.T) {
	e := newTestEnv(t, Options{})
	e.initialize()
	require.NoError(t, e.staking.StakeTokens(e.env(), alice, []thor.TokenID{1}))
	e.advance(day)

	pool := e.balance(stakingAddr)
	require.NoError(t, e.token.Transfer(stakingAddr, adminAddr, pool))

	_, err := e.staking.ClaimRewards(e.env(), alice, []thor.TokenID{1})
	assert.True(t, errors.Is(err, ErrInsufficientRewardPool))
	info, err := e.staking.StakedInfo(1)
	require.NoError(t, err)
	assert.Equal(t, info.StakedAt, info.LastClaimAt, "checkpoint must not advance")

	_, err = e.staking.UnstakeTokens(e.env(), alice, []thor.TokenID{1})
	assert.True(t, errors.Is(err, ErrInsufficientRewardPool))
	assert.Equal(t, stakingAddr, e.owner(1))

	// refunding the pool makes the same claim succeed with the full window
	require.NoError(t, e.token.Transfer(adminAddr, stakingAddr, pool))
	paid, err := e.staking.ClaimRewards(e.env(), alice, []thor.TokenID{1})
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(75_582_720), paid)
}

func TestClaimBatchPolicies(t *testing.T) {
	t.Run("atomic", func(t *testing.T) {
		e := newTestEnv(t, Options{})
		e.initialize()
		require.NoError(t, e.staking.StakeTokens(e.env(), alice, []thor.TokenID{1}))
		require.NoError(t, e.staking.StakeTokens(e.env(), bob, []thor.TokenID{3}))
		e.advance(day)

		_, err := e.staking.ClaimRewards(e.env(), alice, []thor.TokenID{1, 3})
		assert.True(t, errors.Is(err, ErrNotOwner))
		assert.Equal(t, 0, e.balance(alice).Sign())
		events := e.staking.Events()
		assert.Equal(t, EventStaked, events[len(events)-1].Kind)
	})
	t.Run("skip", func(t *testing.T) {
		e := newTestEnv(t, Options{ClaimPolicy: ClaimPolicySkipForeign})
		e.initialize()
		require.NoError(t, e.staking.StakeTokens(e.env(), alice, []thor.TokenID{1}))
		require.NoError(t, e.staking.StakeTokens(e.env(), bob, []thor.TokenID{3}))
		e.advance(day)

		paid, err := e.staking.ClaimRewards(e.env(), alice, []thor.TokenID{1, 3})
		require.NoError(t, err)
		assert.Equal(t, big.NewInt(75_582_720), paid)
		info, err := e.staking.StakedInfo(3)
		require.NoError(t, err)
		assert.Equal(t, info.StakedAt, info.LastClaimAt)
	})

	p, err := ParseClaimPolicy("skip")
	require.NoError(t, err)
	assert.Equal(t, ClaimPolicySkipForeign, p)
	assert.Equal(t, "skip", p.String())
	_, err = ParseClaimPolicy("lenient")
	assert.Error(t, err)
}

func TestAdmin(t *testing.T) {
	e := newTestEnv(t, Options{})

	admin, err := e.staking.Admin()
	require.NoError(t, err)
	assert.Equal(t, adminAddr, admin)

	assert.True(t, errors.Is(e.staking.Deploy(alice, big.NewInt(1), big.NewInt(1), 1), ErrAlreadyDeployed))
	assert.True(t, errors.Is(e.staking.UpdateRewards(alice, big.NewInt(1)), ErrNotAdmin))
	assert.True(t, errors.Is(e.staking.UpdateRewards(adminAddr, big.NewInt(-1)), ErrInvalidAmount))
	assert.True(t, errors.Is(e.staking.UpdateRewards(adminAddr, nil), ErrInvalidAmount))
	tooBig := new(big.Int).Add(thor.MaxAmount, big.NewInt(1))
	assert.True(t, errors.Is(e.staking.SetRaffleReward(adminAddr, tooBig), ErrInvalidAmount))
	assert.NoError(t, e.staking.UpdateRewards(adminAddr, thor.MaxAmount))

	cfg, err := e.staking.Config()
	require.NoError(t, err)
	assert.Equal(t, thor.MaxAmount, cfg.RewardRate)
	assert.Equal(t, thor.RaffleCooldown, cfg.Cooldown)
}

func TestInitializeRarityErrors(t *testing.T) {
	e := newTestEnv(t, Options{})

	forged := e.records(1, 2)
	forged[1].Score++
	_, err := e.staking.InitializeRarity(alice, forged)
	assert.True(t, errors.Is(err, ErrInvalidSignature))
	assert.True(t, reverts.IsRevertErr(err))
	assert.Empty(t, e.staking.Events())

	e.initialize()
	_, err = e.staking.InitializeRarity(alice, e.records(1))
	assert.True(t, errors.Is(err, ErrRarityAlreadySet))

	events := e.staking.Events()
	require.Len(t, events, 4)
	assert.Equal(t, EventRarityInitialized, events[0].Kind)
	assert.Equal(t, thor.TokenID(1), *events[0].Token)
	assert.Equal(t, scores[1], events[0].Data["score"])

	entry, err := e.staking.Registry().Entry(2)
	require.NoError(t, err)
	assert.Equal(t, &rarity.Entry{Score: scores[2], Weight: entry.Weight, Set: true}, entry)
}

func TestEvents(t *testing.T) {
	e := newTestEnv(t, Options{Source: fixedSource()})
	e.initialize()
	require.NoError(t, e.staking.StakeTokens(e.env(), alice, []thor.TokenID{1}))
	e.advance(day)
	_, err := e.staking.RaffleRoll(e.env(), alice, []thor.TokenID{1})
	require.NoError(t, err)
	_, err = e.staking.UnstakeTokens(e.env(), alice, []thor.TokenID{1})
	require.NoError(t, err)
	require.NoError(t, e.staking.UpdateRewards(adminAddr, big.NewInt(7)))

	var kinds []EventKind
	for _, ev := range e.staking.Events()[4:] {
		kinds = append(kinds, ev.Kind)
	}
	assert.Equal(t, []EventKind{
		EventStaked,
		EventRaffleRolled,
		EventRewardClaimed,
		EventUnstaked,
		EventRewardRateUpdated,
	}, kinds)
}
