// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package api

import (
	"net/http"
	"net/http/pprof"
	"strings"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"

	"github.com/vechain/rarity-staking/api/config"
	"github.com/vechain/rarity-staking/api/dev"
	"github.com/vechain/rarity-staking/api/events"
	"github.com/vechain/rarity-staking/api/restutil"
	"github.com/vechain/rarity-staking/api/stakes"
	"github.com/vechain/rarity-staking/api/subscriptions"
	"github.com/vechain/rarity-staking/log"
)

var logger = log.WithContext("pkg", "api")

// Ledger is everything the http surface needs from the ledger.
type Ledger interface {
	stakes.Ledger
	config.Ledger
	events.Ledger
	subscriptions.Ledger
	dev.Ledger
}

type Options struct {
	AllowedOrigins  string
	EventsLimit     uint64
	MaxBatch        int
	PprofOn         bool
	EnableReqLogger bool
	EnableMetrics   bool
	// DevMode mounts the collaborator routes under /dev.
	DevMode bool
}

// New return api router, and the function that closes the websocket connections it holds.
func New(ledger Ledger, opts Options) (http.Handler, func()) {
	origins := strings.Split(strings.TrimSpace(opts.AllowedOrigins), ",")
	for i, o := range origins {
		origins[i] = strings.ToLower(strings.TrimSpace(o))
	}
	if opts.EventsLimit == 0 {
		opts.EventsLimit = 1000
	}

	router := mux.NewRouter()

	stakes.New(ledger, opts.MaxBatch).
		Mount(router)
	config.New(ledger).
		Mount(router, "/config")
	events.New(ledger, opts.EventsLimit).
		Mount(router, "/events")
	subs := subscriptions.New(ledger, origins)
	subs.Mount(router, "/subscriptions")
	if opts.DevMode {
		dev.New(ledger).
			Mount(router, "/dev")
	}

	if opts.PprofOn {
		router.HandleFunc("/debug/pprof/cmdline", pprof.Cmdline)
		router.HandleFunc("/debug/pprof/profile", pprof.Profile)
		router.HandleFunc("/debug/pprof/symbol", pprof.Symbol)
		router.HandleFunc("/debug/pprof/trace", pprof.Trace)
		router.PathPrefix("/debug/pprof/").HandlerFunc(pprof.Index)
	}

	if opts.EnableMetrics {
		router.Use(metricsMiddleware)
	}

	handler := handlers.CompressHandler(router)
	handler = handlers.CORS(
		handlers.AllowedOrigins(origins),
		handlers.AllowedMethods([]string{http.MethodGet, http.MethodPost, http.MethodPut}),
		handlers.AllowedHeaders([]string{
			"content-type",
			strings.ToLower(restutil.SignatureHeader),
			strings.ToLower(restutil.NonceHeader),
			strings.ToLower(restutil.ExpiryHeader),
		}),
	)(handler)

	if opts.EnableReqLogger {
		handler = RequestLoggerHandler(handler, logger)
	}
	return handler, subs.Close // subscriptions handles hijacked conns, which need to be closed
}
