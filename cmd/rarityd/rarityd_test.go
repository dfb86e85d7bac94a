// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	"bytes"
	"encoding/json"
	"math/big"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vechain/rarity-staking/builtin/rarity"
	"github.com/vechain/rarity-staking/ledger"
	"github.com/vechain/rarity-staking/thor"
)

func TestParseScores(t *testing.T) {
	records, err := parseScores(strings.NewReader("# id,score\n2859033, 123\n\n7,571515\n"))
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, thor.TokenID(2859033), records[0].TokenID)
	assert.Equal(t, uint64(123), records[0].Score)
	assert.Equal(t, uint64(571515), records[1].Score)

	_, err = parseScores(strings.NewReader("1;2\n"))
	assert.ErrorContains(t, err, "line 1")
	_, err = parseScores(strings.NewReader("1,2\nx,3\n"))
	assert.ErrorContains(t, err, "line 2")
}

func TestSignBatchVerifies(t *testing.T) {
	key, err := generateKey()
	require.NoError(t, err)
	signer := thor.Address(crypto.PubkeyToAddress(key.PublicKey))

	records, err := parseScores(strings.NewReader("1,571515\n2,369299\n"))
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, signBatch(&buf, records, key))

	var batch struct {
		Records []*rarity.Record `json:"records"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &batch))
	require.Len(t, batch.Records, 2)

	verifier := rarity.NewSignerVerifier(signer)
	for _, r := range batch.Records {
		assert.NoError(t, verifier.Verify(r))
	}
}

func TestFileConfig(t *testing.T) {
	fc, err := parseFileConfig(strings.NewReader(`
contracts:
  nft: 0x0000000000000000000000000000000000000abc
admin: 0x0000000000000000000000000000000000000001
signer: 0x0000000000000000000000000000000000000002
rewardRate: "1000"
raffleReward: 0x10
raffleCooldown: 60
weight:
  kind: tiered
  tiers:
    - below: 400000
      weight: 20000
  default: 10000
raffle:
  kind: odds
  numerator: 1
  denominator: 4
claimPolicy: skip
`))
	require.NoError(t, err)

	cfg := ledger.DefaultConfig()
	require.NoError(t, fc.apply(&cfg))
	assert.Equal(t, thor.MustParseAddress("0x0000000000000000000000000000000000000abc"), cfg.NFT)
	assert.Equal(t, ledger.DefaultConfig().Staking, cfg.Staking)
	assert.Equal(t, thor.MustParseAddress("0x0000000000000000000000000000000000000001"), cfg.Admin)
	assert.Equal(t, big.NewInt(1000), cfg.RewardRate)
	assert.Equal(t, big.NewInt(16), cfg.RaffleReward)
	assert.Equal(t, uint64(60), cfg.RaffleCooldown)
	assert.Equal(t, "tiered", cfg.Weight.Kind)
	require.Len(t, cfg.Weight.Tiers, 1)
	assert.Equal(t, uint64(20000), cfg.Weight.Tiers[0].Weight)
	assert.Equal(t, uint64(4), cfg.Raffle.Denominator)
	assert.Equal(t, "skip", cfg.ClaimPolicy)
	assert.NoError(t, cfg.Validate())

	_, err = parseFileConfig(strings.NewReader("unknown: 1\n"))
	assert.Error(t, err)

	fc, err = parseFileConfig(strings.NewReader("rewardRate: lots\n"))
	require.NoError(t, err)
	assert.Error(t, fc.apply(&cfg))

	fc, err = parseFileConfig(strings.NewReader(""))
	require.NoError(t, err)
	cfg = ledger.DefaultConfig()
	require.NoError(t, fc.apply(&cfg))
	assert.Equal(t, ledger.DefaultConfig(), cfg)
}

func TestDevAccountsAreStable(t *testing.T) {
	a, b := devAccounts(), devAccounts()
	require.Len(t, a, 4)
	for i := range a {
		assert.Equal(t, a[i].Address, b[i].Address)
	}
	assert.NotEqual(t, a[0].Address, a[1].Address)
}

func TestTimeoutHandlerLetsUpgradesThrough(t *testing.T) {
	ts := httptest.NewServer(timeoutHandler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := w.(http.Hijacker); !ok {
			time.Sleep(100 * time.Millisecond)
		}
		w.WriteHeader(http.StatusNoContent)
	}), 10*time.Millisecond))
	defer ts.Close()

	res, err := http.Get(ts.URL)
	require.NoError(t, err)
	res.Body.Close()
	assert.Equal(t, http.StatusServiceUnavailable, res.StatusCode)

	req, err := http.NewRequest(http.MethodGet, ts.URL, nil)
	require.NoError(t, err)
	req.Header.Set("Connection", "Upgrade")
	req.Header.Set("Upgrade", "websocket")
	res, err = http.DefaultClient.Do(req)
	require.NoError(t, err)
	res.Body.Close()
	assert.Equal(t, http.StatusNoContent, res.StatusCode)
}
