// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package ledger

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestManualClock(t *testing.T) {
	c := NewManualClock(100)
	c.Advance(90 * time.Second)
	assert.Equal(t, uint64(190), c.Now())
	c.Set(10)
	assert.Equal(t, uint64(10), c.Now())
}

func TestCheckClockOffset(t *testing.T) {
	fixed := func(d time.Duration, err error) OffsetFunc {
		return func() (time.Duration, error) { return d, err }
	}
	tests := []struct {
		name   string
		offset OffsetFunc
		within bool
	}{
		{"in sync", fixed(0, nil), true},
		{"small drift", fixed(30*time.Second, nil), true},
		{"at tolerance", fixed(-time.Minute, nil), true},
		{"ahead", fixed(2*time.Minute, nil), false},
		{"behind", fixed(-90*time.Second, nil), false},
		{"unreachable", fixed(time.Hour, errors.New("i/o timeout")), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.within, CheckClockOffset(tt.offset, time.Minute))
		})
	}
}

func TestWatchClockOffset(t *testing.T) {
	var calls atomic.Int32
	offset := func() (time.Duration, error) {
		calls.Add(1)
		return 0, nil
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		WatchClockOffset(ctx, offset, time.Minute, 5*time.Millisecond)
		close(done)
	}()

	assert.Eventually(t, func() bool { return calls.Load() >= 3 }, time.Second, time.Millisecond)
	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("watch did not stop")
	}
}
