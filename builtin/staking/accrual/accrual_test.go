// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package accrual

import (
	"math/big"
	"testing"

	fuzz "github.com/google/gofuzz"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vechain/rarity-staking/builtin/rarity"
	"github.com/vechain/rarity-staking/thor"
)

func TestElapsed(t *testing.T) {
	assert.Equal(t, uint64(0), Elapsed(10, 10))
	assert.Equal(t, uint64(0), Elapsed(9, 10))
	assert.Equal(t, uint64(5), Elapsed(15, 10))
}

func TestReward(t *testing.T) {
	tests := []struct {
		name    string
		elapsed uint64
		rate    *big.Int
		weight  uint64
		want    *big.Int
	}{
		{"zero elapsed", 0, big.NewInt(1000), rarity.WeightUnit, big.NewInt(0)},
		{"unit weight", 86400, big.NewInt(10), rarity.WeightUnit, big.NewInt(864000)},
		{"double weight", 10, big.NewInt(3), 2 * rarity.WeightUnit, big.NewInt(60)},
		{"floors", 1, big.NewInt(1), rarity.WeightUnit - 1, big.NewInt(0)},
		{"zero rate", 100, big.NewInt(0), rarity.WeightUnit, big.NewInt(0)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Reward(tt.elapsed, tt.rate, tt.weight)
			require.NoError(t, err)
			assert.Equal(t, 0, tt.want.Cmp(got), "got %v", got)
		})
	}
}

func TestRewardOverflow(t *testing.T) {
	huge := new(big.Int).Lsh(big.NewInt(1), 250)
	_, err := Reward(1<<20, huge, rarity.WeightUnit)
	assert.ErrorIs(t, err, ErrOverflow)

	_, err = Reward(1, new(big.Int).Lsh(big.NewInt(1), 256), 1)
	assert.ErrorIs(t, err, ErrOverflow)

	_, err = Reward(1, big.NewInt(-1), 1)
	assert.ErrorIs(t, err, ErrOverflow)

	// the admin bound keeps a century of accrual at the maximum weight representable
	century := uint64(100 * 365 * 86400)
	_, err = Reward(century, thor.MaxAmount, 1<<32)
	assert.NoError(t, err)
}

func TestRewardMonotonic(t *testing.T) {
	f := fuzz.New().NilChance(0)
	for i := 0; i < 1000; i++ {
		var t1, t2 uint32
		var rate uint64
		var weight uint32
		f.Fuzz(&t1)
		f.Fuzz(&t2)
		f.Fuzz(&rate)
		f.Fuzz(&weight)
		if t1 > t2 {
			t1, t2 = t2, t1
		}
		r1, err := Reward(uint64(t1), new(big.Int).SetUint64(rate), uint64(weight))
		require.NoError(t, err)
		r2, err := Reward(uint64(t2), new(big.Int).SetUint64(rate), uint64(weight))
		require.NoError(t, err)
		assert.True(t, r2.Cmp(r1) >= 0, "reward(%d)=%v < reward(%d)=%v", t2, r2, t1, r1)
	}
}
