// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package subscriptions pushes committed staking events to websocket clients.
package subscriptions

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"github.com/pkg/errors"

	"github.com/vechain/rarity-staking/api/restutil"
	"github.com/vechain/rarity-staking/log"
	"github.com/vechain/rarity-staking/logdb"
	"github.com/vechain/rarity-staking/metrics"
	"github.com/vechain/rarity-staking/thor"
)

const (
	pageSize   = 100
	pingPeriod = 10 * time.Second
	pongWait   = 2 * pingPeriod
	writeWait  = 10 * time.Second
)

var (
	logger                    = log.WithContext("pkg", "subscriptions")
	metricActiveSubscriptions = metrics.LazyLoadGauge("api_active_websocket_count")
)

type Ledger interface {
	FilterEvents(ctx context.Context, filter *logdb.Filter) ([]*logdb.Event, error)
	Committed() <-chan struct{}
	LastCall() uint32
}

type Subscriptions struct {
	ledger   Ledger
	upgrader *websocket.Upgrader
	done     chan struct{}
	wg       sync.WaitGroup
	once     sync.Once
}

// New creates the subscription routes. Upgrades are accepted from the allowed
// origins, "*" allowing any, and from clients that send no Origin.
func New(ledger Ledger, allowedOrigins []string) *Subscriptions {
	return &Subscriptions{
		ledger: ledger,
		upgrader: &websocket.Upgrader{
			EnableCompression: true,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				if origin == "" {
					return true
				}
				for _, allowed := range allowedOrigins {
					if allowed == "*" || strings.EqualFold(allowed, origin) {
						return true
					}
				}
				return false
			},
		},
		done: make(chan struct{}),
	}
}

// parseEventQuery reads kind, tokenId, account and pos. pos defaults to lastCall.
func parseEventQuery(query url.Values, lastCall uint32) (logdb.Filter, uint32, error) {
	filter := logdb.Filter{Kind: query.Get("kind")}
	if s := query.Get("tokenId"); s != "" {
		id, err := restutil.ParseTokenID(s)
		if err != nil {
			return filter, 0, restutil.BadRequest(errors.WithMessage(err, "tokenId"))
		}
		filter.Token = &id
	}
	if s := query.Get("account"); s != "" {
		addr, err := thor.ParseAddress(s)
		if err != nil {
			return filter, 0, restutil.BadRequest(errors.WithMessage(err, "account"))
		}
		filter.Account = &addr
	}
	pos := lastCall
	if s := query.Get("pos"); s != "" {
		v, err := strconv.ParseUint(s, 10, 32)
		if err != nil {
			return filter, 0, restutil.BadRequest(errors.WithMessage(err, "pos"))
		}
		if uint32(v) > lastCall {
			return filter, 0, restutil.BadRequest(errors.New("pos: beyond the last call"))
		}
		pos = uint32(v)
	}
	return filter, pos, nil
}

func (s *Subscriptions) handleSubscribeEvents(w http.ResponseWriter, req *http.Request) error {
	filter, pos, err := parseEventQuery(req.URL.Query(), s.ledger.LastCall())
	if err != nil {
		return err
	}
	s.wg.Add(1)
	defer s.wg.Done()
	conn, err := s.upgrader.Upgrade(w, req, nil)
	// the upgrader has already replied to a failed handshake
	if err != nil {
		logger.Debug("upgrade failed", "err", err)
		return nil
	}

	metricActiveSubscriptions().Add(1)
	defer metricActiveSubscriptions().Add(-1)

	if err := s.pipe(conn, newEventReader(s.ledger, pos, filter)); err != nil {
		logger.Debug("subscription ended", "err", err)
	}
	return nil
}

// pipe sends events to conn until the client goes away or the subscriptions are closed.
func (s *Subscriptions) pipe(conn *websocket.Conn, reader *eventReader) error {
	defer conn.Close()

	closed := make(chan struct{})
	go func() {
		defer close(closed)
		conn.SetReadDeadline(time.Now().Add(pongWait))
		conn.SetPongHandler(func(string) error {
			return conn.SetReadDeadline(time.Now().Add(pongWait))
		})
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() {
		select {
		case <-closed:
			cancel()
		case <-ctx.Done():
		}
	}()

	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()
	for {
		committed := s.ledger.Committed()
		events, more, err := reader.Read(ctx)
		if err != nil {
			return err
		}
		for _, ev := range events {
			if err := conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				return err
			}
			if err := conn.WriteJSON(ev); err != nil {
				return err
			}
		}
		if more {
			continue
		}
		select {
		case <-committed:
		case <-ticker.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				return err
			}
		case <-closed:
			return nil
		case <-s.done:
			msg := websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down")
			return conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(writeWait))
		}
	}
}

// Close ends every open subscription and waits for them to finish.
// Hijacked connections are not tracked by http.Server.Shutdown.
func (s *Subscriptions) Close() {
	s.once.Do(func() {
		close(s.done)
	})
	s.wg.Wait()
}

func (s *Subscriptions) Mount(root *mux.Router, pathPrefix string) {
	sub := root.PathPrefix(pathPrefix).Subrouter()

	sub.Path("/events").
		Methods(http.MethodGet).
		Name("subscriptions_events").
		HandlerFunc(restutil.WrapHandlerFunc(s.handleSubscribeEvents))
}
