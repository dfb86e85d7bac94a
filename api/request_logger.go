// Copyright (c) 2024 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package api

import (
	"bufio"
	"bytes"
	"errors"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/ethereum/go-ethereum/common"

	"github.com/vechain/rarity-staking/api/restutil"
	"github.com/vechain/rarity-staking/log"
)

const maxLoggedBody = 512

// statusWriter remembers the status written through it. It stays hijackable
// so that websocket upgrades pass.
type statusWriter struct {
	http.ResponseWriter
	status int
}

func newStatusWriter(w http.ResponseWriter) *statusWriter {
	return &statusWriter{w, http.StatusOK}
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

func (w *statusWriter) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	h, ok := w.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, errors.New("hijack not supported")
	}
	conn, rw, err := h.Hijack()
	if err == nil {
		w.status = http.StatusSwitchingProtocols
	}
	return conn, rw, err
}

func (w *statusWriter) Unwrap() http.ResponseWriter {
	return w.ResponseWriter
}

// RequestLoggerHandler logs every request once served, with its status and duration.
// Signed requests log their nonce and expiry; bodies are cut at maxLoggedBody bytes.
func RequestLoggerHandler(handler http.Handler, logger log.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body []byte
		if r.Body != nil && r.Body != http.NoBody {
			var err error
			if body, err = io.ReadAll(r.Body); err != nil {
				logger.Warn("unexpected body read error", "err", err)
				http.Error(w, "unreadable body", http.StatusBadRequest)
				return
			}
			r.Body = io.NopCloser(bytes.NewReader(body))
		}

		start := time.Now()
		sw := newStatusWriter(w)
		handler.ServeHTTP(sw, r)

		ctx := []any{
			"method", r.Method,
			"uri", r.URL.RequestURI(),
			"status", sw.status,
			"elapsed", common.PrettyDuration(time.Since(start)),
		}
		if r.Header.Get(restutil.SignatureHeader) != "" {
			ctx = append(ctx,
				"nonce", r.Header.Get(restutil.NonceHeader),
				"expiry", r.Header.Get(restutil.ExpiryHeader),
			)
		}
		if len(body) > maxLoggedBody {
			ctx = append(ctx, "body", string(body[:maxLoggedBody])+"…", "size", len(body))
		} else if len(body) > 0 {
			ctx = append(ctx, "body", string(body))
		}
		logger.Info("API request", ctx...)
	})
}
