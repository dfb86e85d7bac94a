// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package subscriptions

import (
	"context"
	"math"

	"github.com/vechain/rarity-staking/logdb"
)

// eventReader pages through the log from a cursor, remembering the last event it returned.
type eventReader struct {
	ledger Ledger
	filter logdb.Filter
	cursor logdb.Cursor
}

// newEventReader starts after every event of call pos.
func newEventReader(ledger Ledger, pos uint32, filter logdb.Filter) *eventReader {
	return &eventReader{
		ledger: ledger,
		filter: filter,
		cursor: logdb.Cursor{Call: pos, Index: math.MaxInt32},
	}
}

// Read returns the next page of matching events and whether more may follow right away.
func (er *eventReader) Read(ctx context.Context) ([]*logdb.Event, bool, error) {
	filter := er.filter
	filter.After = &er.cursor
	filter.Order = logdb.ASC
	filter.Limit = pageSize
	events, err := er.ledger.FilterEvents(ctx, &filter)
	if err != nil {
		return nil, false, err
	}
	if n := len(events); n > 0 {
		er.cursor = logdb.Cursor{Call: events[n-1].Call, Index: events[n-1].Index}
	}
	return events, len(events) == pageSize, nil
}
