// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package stackedmap_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/vechain/rarity-staking/stackedmap"
)

func M(a ...any) []any {
	return a
}

func TestStackedMap(t *testing.T) {
	assert := assert.New(t)
	src := map[string]string{"foo": "bar"}

	sm := stackedmap.New(func(key string) (string, bool, error) {
		v, ok := src[key]
		return v, ok, nil
	})

	tests := []struct {
		f         func()
		depth     int
		putKey    string
		putValue  string
		getKey    string
		getReturn []any
	}{
		{func() {}, 1, "", "", "foo", M("bar", true, nil)},
		{func() { sm.Push() }, 2, "foo", "baz", "foo", M("baz", true, nil)},
		{func() {}, 2, "foo", "baz1", "foo", M("baz1", true, nil)},
		{func() { sm.Push() }, 3, "foo", "qux", "foo", M("qux", true, nil)},
		{func() { sm.Pop() }, 2, "", "", "foo", M("baz1", true, nil)},
		{func() { sm.Pop() }, 1, "", "", "foo", M("bar", true, nil)},
		{func() { sm.Push(); sm.Push() }, 3, "", "", "foo", M("bar", true, nil)},
		{func() { sm.PopTo(0) }, 1, "", "", "foo", M("bar", true, nil)},
	}

	for _, test := range tests {
		test.f()
		assert.Equal(test.depth, sm.Depth())
		if test.putKey != "" {
			sm.Put(test.putKey, test.putValue)
		}
		assert.Equal(test.getReturn, M(sm.Get(test.getKey)))
	}
}

func TestStackedMapJournal(t *testing.T) {
	sm := stackedmap.New(func(key int) (int, bool, error) {
		return 0, false, nil
	})

	sm.Put(1, 10)
	cp := sm.Push()
	sm.Put(2, 20)
	sm.Put(2, 21)
	assert.Len(t, sm.Journal(), 3)

	sm.PopTo(cp)
	journal := sm.Journal()
	assert.Len(t, journal, 1)
	assert.Equal(t, 1, journal[0].Key)
	assert.Equal(t, 10, journal[0].Value)

	v, ok, err := sm.Get(2)
	assert.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, 0, v)
}

func TestStackedMapSourceError(t *testing.T) {
	sm := stackedmap.New(func(key string) ([]byte, bool, error) {
		return nil, false, errors.New("broken")
	})
	_, _, err := sm.Get("any")
	assert.EqualError(t, err, "broken")

	sm.Put("any", []byte{1})
	v, ok, err := sm.Get("any")
	assert.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []byte{1}, v)
}
