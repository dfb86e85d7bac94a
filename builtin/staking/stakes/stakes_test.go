// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package stakes

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vechain/rarity-staking/builtin/solidity"
	"github.com/vechain/rarity-staking/lvldb"
	"github.com/vechain/rarity-staking/state"
	"github.com/vechain/rarity-staking/thor"
)

func TestRepository(t *testing.T) {
	db, err := lvldb.NewMem()
	require.NoError(t, err)
	defer db.Close()

	repo := NewRepository(solidity.NewContext(thor.BytesToAddress([]byte("staking")), state.New(db)))
	owner := thor.BytesToAddress([]byte("owner"))

	rec, err := repo.Get(1)
	assert.NoError(t, err)
	assert.True(t, rec.IsEmpty())
	assert.True(t, (*Record)(nil).IsEmpty())

	require.NoError(t, repo.Add(1, New(owner, 100)))
	require.NoError(t, repo.Add(2, New(owner, 101)))
	n, err := repo.Count()
	assert.NoError(t, err)
	assert.Equal(t, uint64(2), n)

	rec, err = repo.Get(1)
	assert.NoError(t, err)
	assert.Equal(t, &Record{Owner: owner, StakedAt: 100, LastClaimAt: 100, LastRaffleAt: 100}, rec)

	rec.LastClaimAt = 200
	require.NoError(t, repo.Update(1, rec))
	rec, err = repo.Get(1)
	assert.NoError(t, err)
	assert.Equal(t, uint64(200), rec.LastClaimAt)
	assert.Equal(t, uint64(100), rec.StakedAt)

	require.NoError(t, repo.Remove(1))
	rec, err = repo.Get(1)
	assert.NoError(t, err)
	assert.True(t, rec.IsEmpty())
	assert.Equal(t, uint64(0), rec.LastClaimAt)
	n, err = repo.Count()
	assert.NoError(t, err)
	assert.Equal(t, uint64(1), n)
}
