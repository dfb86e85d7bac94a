// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package nonce keeps the replay guard of signed calls: every caller signs an
// increasing nonce and an expiry time along with the call.
package nonce

import (
	"context"

	"github.com/pkg/errors"

	"github.com/vechain/rarity-staking/builtin/reverts"
	"github.com/vechain/rarity-staking/builtin/solidity"
	"github.com/vechain/rarity-staking/state"
	"github.com/vechain/rarity-staking/thor"
)

var (
	ErrNonceUsed = reverts.New("nonce already used")
	ErrExpired   = reverts.New("signature expired")
)

var slotNonces = thor.BytesToBytes32([]byte("caller-nonces"))

// Ticket is the replay guard carried by one signed call.
type Ticket struct {
	Nonce  uint64
	Expiry uint64
}

type ticketKey struct{}

// WithTicket returns a copy of ctx that carries t to the ledger.
func WithTicket(ctx context.Context, t Ticket) context.Context {
	return context.WithValue(ctx, ticketKey{}, t)
}

// TicketFrom returns the ticket carried by ctx, if any.
func TicketFrom(ctx context.Context) (Ticket, bool) {
	t, ok := ctx.Value(ticketKey{}).(Ticket)
	return t, ok
}

// Nonces binds the last nonce used by each caller.
type Nonces struct {
	last *solidity.Mapping[thor.Address, uint64]
}

func New(addr thor.Address, state *state.State) *Nonces {
	ctx := solidity.NewContext(addr, state)
	return &Nonces{last: solidity.NewMapping[thor.Address, uint64](ctx, slotNonces)}
}

// Last returns the highest nonce caller has used, zero if none.
func (n *Nonces) Last(caller thor.Address) (uint64, error) {
	v, err := n.last.Get(caller)
	if err != nil {
		return 0, errors.Wrap(err, "failed to get nonce")
	}
	return v, nil
}

// Use consumes t for caller at now. A ticket is valid until its expiry second,
// and its nonce must be above every nonce the caller used before.
func (n *Nonces) Use(caller thor.Address, t Ticket, now uint64) error {
	if t.Expiry < now {
		return errors.WithMessagef(ErrExpired, "expiry %d, now %d", t.Expiry, now)
	}
	last, err := n.Last(caller)
	if err != nil {
		return err
	}
	if t.Nonce <= last {
		return errors.WithMessagef(ErrNonceUsed, "nonce %d, last %d", t.Nonce, last)
	}
	return n.last.Set(caller, t.Nonce)
}
