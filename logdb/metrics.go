// Copyright (c) 2024 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package logdb

import (
	"strings"

	"github.com/vechain/rarity-staking/metrics"
)

var (
	metricQueryParameters = metrics.LazyLoadCounterVec("logdb_query_parameters", []string{"parameters"})
	metricLimitBucket     = metrics.LazyLoadHistogramVec("logdb_query_limit_bucket", []string{"order"}, []int64{
		0, 5, 10, 25, 50, 100, 250, 500, 1000,
	})
	metricInsertedEvents = metrics.LazyLoadCounter("logdb_inserted_events")
)

func metricsHandleFilter(filter *Filter) {
	params := make([]string, 0, 4)
	if filter.Kind != "" {
		params = append(params, "kind")
	}
	if filter.Token != nil {
		params = append(params, "token")
	}
	if filter.Account != nil {
		params = append(params, "account")
	}
	if filter.From > 0 || filter.To > 0 {
		params = append(params, "range")
	}
	metricQueryParameters().AddWithLabel(1, map[string]string{"parameters": strings.Join(params, ",")})

	limit := filter.Limit
	if limit > 1000 {
		limit = 1001
	}
	order := string(filter.Order)
	if order == "" {
		order = string(ASC)
	}
	metricLimitBucket().ObserveWithLabels(int64(limit), map[string]string{"order": order})
}
