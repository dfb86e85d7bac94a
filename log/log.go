// Copyright (c) 2024 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package log provides package-level loggers on top of the go-ethereum root logger.
//
// Loggers created with go-ethereum's log.New bind to the root handler installed at
// creation, which for package variables is the discarding default. Loggers from
// WithContext follow whatever root handler is current when a record is written.
package log

import (
	"context"
	"io"
	"log/slog"
	"sync/atomic"

	"github.com/ethereum/go-ethereum/log"
)

// Logger is the go-ethereum logger interface.
type Logger = log.Logger

// WithContext returns a logger that attaches ctx to every record.
func WithContext(ctx ...any) Logger {
	return &lazyLogger{ctx: ctx}
}

type bound struct {
	root   log.Logger
	logger log.Logger
}

type lazyLogger struct {
	ctx   []any
	cache atomic.Pointer[bound]
}

func (l *lazyLogger) get() log.Logger {
	root := log.Root()
	if b := l.cache.Load(); b != nil && b.root == root {
		return b.logger
	}
	b := &bound{root: root, logger: root.With(l.ctx...)}
	l.cache.Store(b)
	return b.logger
}

func (l *lazyLogger) With(ctx ...any) Logger {
	return &lazyLogger{ctx: append(append([]any{}, l.ctx...), ctx...)}
}

func (l *lazyLogger) New(ctx ...any) Logger { return l.With(ctx...) }

func (l *lazyLogger) Log(level slog.Level, msg string, ctx ...any) { l.get().Log(level, msg, ctx...) }

func (l *lazyLogger) Trace(msg string, ctx ...any) { l.get().Trace(msg, ctx...) }

func (l *lazyLogger) Debug(msg string, ctx ...any) { l.get().Debug(msg, ctx...) }

func (l *lazyLogger) Info(msg string, ctx ...any) { l.get().Info(msg, ctx...) }

func (l *lazyLogger) Warn(msg string, ctx ...any) { l.get().Warn(msg, ctx...) }

func (l *lazyLogger) Error(msg string, ctx ...any) { l.get().Error(msg, ctx...) }

func (l *lazyLogger) Crit(msg string, ctx ...any) { l.get().Crit(msg, ctx...) }

func (l *lazyLogger) Write(level slog.Level, msg string, attrs ...any) {
	l.get().Write(level, msg, attrs...)
}

func (l *lazyLogger) Enabled(ctx context.Context, level slog.Level) bool {
	return l.get().Enabled(ctx, level)
}

func (l *lazyLogger) Handler() slog.Handler { return l.get().Handler() }

// Setup installs the root handler: human readable text, coloured if asked, or JSON.
// verbosity follows the legacy 0 (crit) to 5 (trace) scale.
func Setup(w io.Writer, verbosity int, json, color bool) {
	level := log.FromLegacyLevel(verbosity)

	var handler slog.Handler
	if json {
		handler = log.JSONHandlerWithLevel(w, level)
	} else {
		handler = log.NewTerminalHandlerWithLevel(w, level, color)
	}
	log.SetDefault(log.NewLogger(handler))
}
