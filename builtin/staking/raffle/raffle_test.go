// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package raffle

import (
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vechain/rarity-staking/thor"
)

func TestReady(t *testing.T) {
	cooldown := thor.RaffleCooldown
	assert.False(t, Ready(100, 100, cooldown))
	assert.False(t, Ready(100+11*3600, 100, cooldown))
	assert.True(t, Ready(100+12*3600, 100, cooldown))
	assert.False(t, Ready(50, 100, 0))
	assert.True(t, Ready(100, 100, 0))
}

func TestPolicies(t *testing.T) {
	reward := big.NewInt(1000)

	got := Guaranteed{}.Payout(thor.Bytes32{}, reward)
	assert.Equal(t, reward, got)
	got.SetInt64(1)
	assert.Equal(t, big.NewInt(1000), reward, "payout must not alias the reward")

	odds := Odds{Numerator: 1, Denominator: 4}
	assert.Equal(t, reward, odds.Payout(thor.BytesToBytes32([]byte{8}), reward))
	assert.Equal(t, 0, odds.Payout(thor.BytesToBytes32([]byte{9}), reward).Sign())
	assert.Equal(t, 0, Odds{}.Payout(thor.Bytes32{}, reward).Sign())

	p, err := NewPolicy(PolicyConfig{})
	require.NoError(t, err)
	assert.IsType(t, Guaranteed{}, p)
	p, err = NewPolicy(PolicyConfig{Kind: "odds", Numerator: 1, Denominator: 2})
	require.NoError(t, err)
	assert.Equal(t, Odds{1, 2}, p)
	_, err = NewPolicy(PolicyConfig{Kind: "odds", Numerator: 3, Denominator: 2})
	assert.Error(t, err)
	_, err = NewPolicy(PolicyConfig{Kind: "lucky"})
	assert.Error(t, err)
}

func TestSources(t *testing.T) {
	seed := thor.Blake2b([]byte("seed"))

	a, proof, err := HashSource{}.Draw(seed, 1, 100)
	require.NoError(t, err)
	assert.Nil(t, proof)
	b, _, err := HashSource{}.Draw(seed, 2, 100)
	require.NoError(t, err)
	c, _, err := HashSource{}.Draw(seed, 1, 101)
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
	assert.NotEqual(t, a, c)

	fixed := FixedSource{Value: thor.BytesToBytes32([]byte{7})}
	v, _, err := fixed.Draw(seed, 9, 9)
	require.NoError(t, err)
	assert.Equal(t, fixed.Value, v)
}

func TestVRFSource(t *testing.T) {
	key, err := crypto.GenerateKey()
	require.NoError(t, err)
	src := NewVRFSource(key)
	seed := thor.Blake2b([]byte("seed"))

	beta, proof, err := src.Draw(seed, 1, 100)
	require.NoError(t, err)
	require.NotEmpty(t, proof)
	again, _, err := src.Draw(seed, 1, 100)
	require.NoError(t, err)
	assert.Equal(t, beta, again)

	verified, err := VerifyDraw(src.PublicKey(), seed, 1, 100, proof)
	require.NoError(t, err)
	assert.Equal(t, beta, verified)

	_, err = VerifyDraw(&key.PublicKey, seed, 2, 100, proof)
	assert.Error(t, err)
	_, err = VerifyDraw(&key.PublicKey, seed, 1, 101, proof)
	assert.Error(t, err)
}
