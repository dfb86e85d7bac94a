// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package token

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vechain/rarity-staking/lvldb"
	"github.com/vechain/rarity-staking/state"
	"github.com/vechain/rarity-staking/thor"
)

func TestToken(t *testing.T) {
	db, err := lvldb.NewMem()
	require.NoError(t, err)
	defer db.Close()

	tk := New(thor.BytesToAddress([]byte("token")), state.New(db))
	owner := thor.BytesToAddress([]byte("owner"))
	pool := thor.BytesToAddress([]byte("pool"))

	bal, err := tk.BalanceOf(owner)
	assert.NoError(t, err)
	assert.Equal(t, 0, bal.Sign())

	require.NoError(t, tk.Mint(owner, big.NewInt(6000)))
	require.NoError(t, tk.Transfer(owner, pool, big.NewInt(5000)))

	bal, _ = tk.BalanceOf(owner)
	assert.Equal(t, big.NewInt(1000), bal)
	bal, _ = tk.BalanceOf(pool)
	assert.Equal(t, big.NewInt(5000), bal)

	supply, err := tk.TotalSupply()
	assert.NoError(t, err)
	assert.Equal(t, big.NewInt(6000), supply)

	assert.ErrorIs(t, tk.Transfer(pool, owner, big.NewInt(5001)), ErrInsufficientBalance)
	assert.ErrorIs(t, tk.Transfer(pool, owner, big.NewInt(-1)), ErrInvalidAmount)
	assert.ErrorIs(t, tk.Mint(owner, big.NewInt(-1)), ErrInvalidAmount)
	assert.NoError(t, tk.Transfer(pool, owner, big.NewInt(0)))
}
