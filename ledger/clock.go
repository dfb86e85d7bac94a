// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package ledger

import (
	"context"
	"sync"
	"time"

	"github.com/beevik/ntp"
	"github.com/ethereum/go-ethereum/common"
)

// Clock supplies the unix time of a call in seconds.
type Clock interface {
	Now() uint64
}

// SystemClock reads the wall clock.
type SystemClock struct{}

func (SystemClock) Now() uint64 {
	return uint64(time.Now().Unix())
}

// ManualClock only moves when told to.
type ManualClock struct {
	mu  sync.Mutex
	now uint64
}

func NewManualClock(now uint64) *ManualClock {
	return &ManualClock{now: now}
}

func (c *ManualClock) Now() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// Set moves the clock to now, which may be in the past.
func (c *ManualClock) Set(now uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = now
}

// Advance moves the clock forward by d.
func (c *ManualClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now += uint64(d / time.Second)
}

// OffsetFunc reports how far the local clock is from a reference clock.
type OffsetFunc func() (time.Duration, error)

// NTPOffset measures the local clock against the NTP server host.
func NTPOffset(host string) OffsetFunc {
	return func() (time.Duration, error) {
		resp, err := ntp.QueryWithOptions(host, ntp.QueryOptions{Timeout: 5 * time.Second})
		if err != nil {
			return 0, err
		}
		if err := resp.Validate(); err != nil {
			return 0, err
		}
		return resp.ClockOffset, nil
	}
}

// CheckClockOffset warns when the local clock is off by more than tolerance, and
// reports whether it was within. An unreachable reference counts as within.
func CheckClockOffset(offset OffsetFunc, tolerance time.Duration) bool {
	d, err := offset()
	if err != nil {
		logger.Debug("failed to access NTP", "err", err)
		return true
	}
	if d > tolerance || d < -tolerance {
		logger.Warn("clock offset detected, call timestamps follow the local clock", "offset", common.PrettyDuration(d))
		return false
	}
	return true
}

// WatchClockOffset checks the clock offset now and then every interval until ctx is done.
func WatchClockOffset(ctx context.Context, offset OffsetFunc, tolerance, interval time.Duration) {
	CheckClockOffset(offset, tolerance)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			CheckClockOffset(offset, tolerance)
		}
	}
}
