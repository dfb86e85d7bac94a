// Copyright (c) 2024 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package log

import (
	"bytes"
	"testing"

	"github.com/ethereum/go-ethereum/log"
	"github.com/stretchr/testify/assert"
)

func TestWithContextFollowsRoot(t *testing.T) {
	prev := log.Root()
	defer log.SetDefault(prev)

	logger := WithContext("pkg", "test")

	var first bytes.Buffer
	Setup(&first, 3, true, false)
	logger.Info("hello", "n", 1)
	logger.Debug("hidden")
	assert.Contains(t, first.String(), `"pkg":"test"`)
	assert.Contains(t, first.String(), `"msg":"hello"`)
	assert.NotContains(t, first.String(), "hidden")

	var second bytes.Buffer
	Setup(&second, 4, true, false)
	logger.With("sub", "x").Debug("visible")
	assert.NotContains(t, first.String(), "visible")
	assert.Contains(t, second.String(), `"sub":"x"`)
	assert.Contains(t, second.String(), `"pkg":"test"`)
}

func TestTerminalSetup(t *testing.T) {
	prev := log.Root()
	defer log.SetDefault(prev)

	var buf bytes.Buffer
	Setup(&buf, 3, false, false)
	WithContext("pkg", "term").Warn("careful", "k", "v")
	assert.Contains(t, buf.String(), "careful")
	assert.Contains(t, buf.String(), "pkg=term")
}
