// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package events

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/pkg/errors"

	"github.com/vechain/rarity-staking/api/restutil"
	"github.com/vechain/rarity-staking/logdb"
	"github.com/vechain/rarity-staking/thor"
)

type Ledger interface {
	FilterEvents(ctx context.Context, filter *logdb.Filter) ([]*logdb.Event, error)
}

type Events struct {
	ledger Ledger
	limit  uint64
}

func New(ledger Ledger, limit uint64) *Events {
	return &Events{
		ledger,
		limit,
	}
}

func parseUint(query url.Values, name string) (uint64, error) {
	s := query.Get(name)
	if s == "" {
		return 0, nil
	}
	v, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, restutil.BadRequest(errors.WithMessage(err, name))
	}
	return v, nil
}

// parseFilter builds a filter from the query string:
// kind, tokenId, account, from, to, order (asc|desc), offset, limit.
func (e *Events) parseFilter(query url.Values) (*logdb.Filter, error) {
	filter := &logdb.Filter{
		Kind:  query.Get("kind"),
		Order: logdb.ASC,
	}
	if s := query.Get("tokenId"); s != "" {
		id, err := restutil.ParseTokenID(s)
		if err != nil {
			return nil, restutil.BadRequest(errors.WithMessage(err, "tokenId"))
		}
		filter.Token = &id
	}
	if s := query.Get("account"); s != "" {
		addr, err := thor.ParseAddress(s)
		if err != nil {
			return nil, restutil.BadRequest(errors.WithMessage(err, "account"))
		}
		filter.Account = &addr
	}
	switch order := logdb.Order(query.Get("order")); order {
	case "", logdb.ASC:
	case logdb.DESC:
		filter.Order = logdb.DESC
	default:
		return nil, restutil.BadRequest(fmt.Errorf("order: unsupported value %q", order))
	}

	var err error
	if filter.From, err = parseUint(query, "from"); err != nil {
		return nil, err
	}
	if filter.To, err = parseUint(query, "to"); err != nil {
		return nil, err
	}
	if filter.To > 0 && filter.From > filter.To {
		return nil, restutil.BadRequest(errors.New("to must be greater than or equal to from"))
	}
	if filter.Offset, err = parseUint(query, "offset"); err != nil {
		return nil, err
	}
	if filter.Limit, err = parseUint(query, "limit"); err != nil {
		return nil, err
	}
	if filter.Limit > e.limit {
		return nil, restutil.Forbidden(fmt.Errorf("limit exceeds the maximum allowed value of %d", e.limit))
	}
	if filter.Limit == 0 {
		filter.Limit = e.limit
	}
	return filter, nil
}

func (e *Events) handleFilter(w http.ResponseWriter, req *http.Request) error {
	filter, err := e.parseFilter(req.URL.Query())
	if err != nil {
		return err
	}
	events, err := e.ledger.FilterEvents(req.Context(), filter)
	if err != nil {
		return err
	}
	if events == nil {
		events = []*logdb.Event{}
	}
	return restutil.WriteJSON(w, events)
}

func (e *Events) Mount(root *mux.Router, pathPrefix string) {
	sub := root.PathPrefix(pathPrefix).Subrouter()

	sub.Path("").
		Methods(http.MethodGet).
		Name("events_filter").
		HandlerFunc(restutil.WrapHandlerFunc(e.handleFilter))
}
