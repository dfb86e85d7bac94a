// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package staking

import (
	"crypto/ecdsa"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/require"

	"github.com/vechain/rarity-staking/builtin/nft"
	"github.com/vechain/rarity-staking/builtin/params"
	"github.com/vechain/rarity-staking/builtin/rarity"
	"github.com/vechain/rarity-staking/builtin/staking/raffle"
	"github.com/vechain/rarity-staking/builtin/token"
	"github.com/vechain/rarity-staking/lvldb"
	"github.com/vechain/rarity-staking/state"
	"github.com/vechain/rarity-staking/thor"
)

const day = uint64(86400)

var (
	stakingAddr = thor.BytesToAddress([]byte("staking"))
	nftAddr     = thor.BytesToAddress([]byte("nft"))
	tokenAddr   = thor.BytesToAddress([]byte("token"))
	adminAddr   = thor.BytesToAddress([]byte("admin"))
	alice       = thor.BytesToAddress([]byte("alice"))
	bob         = thor.BytesToAddress([]byte("bob"))

	// scores observed in the reference deployment
	scores = map[thor.TokenID]uint64{
		1: 571515,
		2: 369299,
		3: 429135,
		4: 616637,
	}
)

type testEnv struct {
	t       *testing.T
	st      *state.State
	nft     *nft.NFT
	token   *token.Token
	staking *Staking
	key     *ecdsa.PrivateKey
	now     uint64
}

func newTestEnv(t *testing.T, opts Options) *testEnv {
	db, err := lvldb.NewMem()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	key, err := crypto.GenerateKey()
	require.NoError(t, err)
	signer := thor.Address(crypto.PubkeyToAddress(key.PublicKey))

	st := state.New(db)
	policy, err := rarity.NewWeightPolicy(rarity.DefaultWeightConfig)
	require.NoError(t, err)
	registry := rarity.NewRegistry(stakingAddr, st, rarity.NewSignerVerifier(signer), policy)

	e := &testEnv{
		t:     t,
		st:    st,
		nft:   nft.New(nftAddr, st),
		token: token.New(tokenAddr, st),
		key:   key,
		now:   1_700_000_000,
	}
	e.staking = New(stakingAddr, st, e.nft, e.token, registry, params.New(stakingAddr, st), opts)
	require.NoError(t, e.staking.Deploy(adminAddr, big.NewInt(1000), thor.InitialRaffleReward, thor.RaffleCooldown))

	// alice holds 1 and 2, bob holds 3 and 4; both approve the staking contract
	for id := thor.TokenID(1); id <= 4; id++ {
		owner := alice
		if id > 2 {
			owner = bob
		}
		require.NoError(t, e.nft.Mint(owner, id))
	}
	require.NoError(t, e.nft.SetApprovalForAll(alice, stakingAddr, true))
	require.NoError(t, e.nft.SetApprovalForAll(bob, stakingAddr, true))
	require.NoError(t, e.token.Mint(stakingAddr, new(big.Int).Mul(thor.Ether, big.NewInt(1_000_000))))
	return e
}

func (e *testEnv) env() *Env {
	return &Env{Now: e.now, Seed: thor.Blake2b([]byte("seed"), new(big.Int).SetUint64(e.now).Bytes())}
}

func (e *testEnv) advance(seconds uint64) {
	e.now += seconds
}

func (e *testEnv) records(ids ...thor.TokenID) []*rarity.Record {
	recs := make([]*rarity.Record, 0, len(ids))
	for _, id := range ids {
		r := &rarity.Record{TokenID: id, Score: scores[id]}
		require.NoError(e.t, rarity.Sign(r, e.key))
		recs = append(recs, r)
	}
	return recs
}

func (e *testEnv) initialize() {
	_, err := e.staking.InitializeRarity(alice, e.records(1, 2, 3, 4))
	require.NoError(e.t, err)
}

func (e *testEnv) balance(addr thor.Address) *big.Int {
	b, err := e.token.BalanceOf(addr)
	require.NoError(e.t, err)
	return b
}

func (e *testEnv) owner(id thor.TokenID) thor.Address {
	o, err := e.nft.OwnerOf(id)
	require.NoError(e.t, err)
	return o
}

func fixedSource() raffle.Source {
	return raffle.FixedSource{Value: thor.BytesToBytes32([]byte{1})}
}
