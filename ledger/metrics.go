// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package ledger

import (
	"github.com/vechain/rarity-staking/builtin/staking"
	"github.com/vechain/rarity-staking/metrics"
)

var (
	metricCallsCount   = metrics.LazyLoadCounterVec("ledger_calls_count", []string{"op", "result"})
	metricCallDuration = metrics.LazyLoadHistogramVec("ledger_call_duration_ms", []string{"op"}, metrics.BucketCallMs)
	metricPayouts      = metrics.LazyLoadCounterVec("staking_payouts_count", []string{"kind"})
	metricStakedTokens = metrics.LazyLoadGauge("staking_staked_tokens")
)

func recordEventMetrics(events []*staking.Event) {
	for _, ev := range events {
		switch ev.Kind {
		case staking.EventRewardClaimed, staking.EventRaffleRolled:
			if ev.Amount != nil && ev.Amount.Sign() > 0 {
				metricPayouts().AddWithLabel(1, map[string]string{"kind": string(ev.Kind)})
			}
		}
	}
}
