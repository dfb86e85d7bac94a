// Copyright (c) 2024 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	"context"
	"net"
	"net/http"
	"time"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	"github.com/vechain/rarity-staking/metrics"
)

const (
	maxRequestBodySize = 1 << 20
	shutdownTimeout    = 5 * time.Second
	maxClockOffset     = time.Minute
)

// serve runs srv on listener inside group and shuts it down once ctx is done.
func serve(ctx context.Context, group *errgroup.Group, srv *http.Server, listener net.Listener) {
	group.Go(func() error {
		if err := srv.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	group.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
}

func startAPIServer(ctx context.Context, group *errgroup.Group, addr string, handler http.Handler, timeout time.Duration) (string, error) {
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return "", errors.Wrapf(err, "listen API addr [%v]", addr)
	}
	if timeout > 0 {
		handler = timeoutHandler(handler, timeout)
	}
	handler = http.MaxBytesHandler(handler, maxRequestBodySize)

	srv := &http.Server{Handler: handler, ReadHeaderTimeout: time.Second, ReadTimeout: 5 * time.Second}
	serve(ctx, group, srv, listener)
	logger.Info("API server started", "addr", listener.Addr())
	return "http://" + listener.Addr().String() + "/", nil
}

// timeoutHandler bounds plain requests to timeout. Websocket upgrades are long lived
// and need the hijackable writer, so they bypass it.
func timeoutHandler(handler http.Handler, timeout time.Duration) http.Handler {
	bounded := http.TimeoutHandler(handler, timeout, "request timed out")
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if websocket.IsWebSocketUpgrade(r) {
			handler.ServeHTTP(w, r)
			return
		}
		bounded.ServeHTTP(w, r)
	})
}

func startMetricsServer(ctx context.Context, group *errgroup.Group, addr string) (string, error) {
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return "", errors.Wrapf(err, "listen metrics API addr [%v]", addr)
	}

	router := mux.NewRouter()
	router.PathPrefix("/metrics").Handler(metrics.HTTPHandler())
	handler := handlers.CompressHandler(router)

	srv := &http.Server{Handler: handler, ReadHeaderTimeout: time.Second, ReadTimeout: 5 * time.Second}
	serve(ctx, group, srv, listener)
	return "http://" + listener.Addr().String() + "/metrics", nil
}
