// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package stakes

import (
	"bytes"
	"context"
	"fmt"
	"math/big"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/pkg/errors"

	"github.com/vechain/rarity-staking/api/restutil"
	"github.com/vechain/rarity-staking/builtin/rarity"
	"github.com/vechain/rarity-staking/builtin/staking/raffle"
	staked "github.com/vechain/rarity-staking/builtin/staking/stakes"
	"github.com/vechain/rarity-staking/thor"
)

// Ledger is the part of the ledger serving token holders.
type Ledger interface {
	InitializeRarity(ctx context.Context, caller thor.Address, records []*rarity.Record) ([]*rarity.Entry, error)
	StakeTokens(ctx context.Context, caller thor.Address, ids []thor.TokenID) error
	UnstakeTokens(ctx context.Context, caller thor.Address, ids []thor.TokenID) (*big.Int, error)
	ClaimRewards(ctx context.Context, caller thor.Address, ids []thor.TokenID) (*big.Int, error)
	RaffleRoll(ctx context.Context, caller thor.Address, ids []thor.TokenID) ([]*raffle.Draw, error)
	StakedInfo(id thor.TokenID) (*staked.Record, error)
	PendingReward(id thor.TokenID) (*big.Int, error)
}

type Stakes struct {
	ledger   Ledger
	maxBatch int
}

func New(ledger Ledger, maxBatch int) *Stakes {
	return &Stakes{
		ledger,
		maxBatch,
	}
}

func (s *Stakes) handleInitializeRarity(w http.ResponseWriter, req *http.Request) error {
	caller, body, err := restutil.Authenticate(req)
	if err != nil {
		return err
	}
	var batch RarityBatch
	if err := restutil.ParseJSON(bytes.NewReader(body), &batch); err != nil {
		return restutil.BadRequest(errors.WithMessage(err, "body"))
	}
	if s.maxBatch > 0 && len(batch.Records) > s.maxBatch {
		return restutil.BadRequest(fmt.Errorf("records: at most %d allowed", s.maxBatch))
	}
	for i, rec := range batch.Records {
		if rec == nil {
			return restutil.BadRequest(fmt.Errorf("records[%d]: null not allowed", i))
		}
	}
	entries, err := s.ledger.InitializeRarity(caller.Context(req.Context()), caller.Address, batch.Records)
	if err != nil {
		return restutil.CallError(err)
	}
	out := make([]*RarityEntry, 0, len(entries))
	for i, e := range entries {
		out = append(out, &RarityEntry{
			TokenID: batch.Records[i].TokenID,
			Score:   e.Score,
			Weight:  e.Weight,
		})
	}
	return restutil.WriteJSON(w, out)
}

// parseBatch authenticates a batch call and decodes its token ids.
func (s *Stakes) parseBatch(req *http.Request) (*restutil.Caller, []thor.TokenID, error) {
	caller, body, err := restutil.Authenticate(req)
	if err != nil {
		return nil, nil, err
	}
	var ids restutil.TokenIDs
	if err := restutil.ParseJSON(bytes.NewReader(body), &ids); err != nil {
		return nil, nil, restutil.BadRequest(errors.WithMessage(err, "body"))
	}
	if s.maxBatch > 0 && len(ids.TokenIDs) > s.maxBatch {
		return nil, nil, restutil.BadRequest(fmt.Errorf("tokenIds: at most %d allowed", s.maxBatch))
	}
	return caller, ids.TokenIDs, nil
}

func (s *Stakes) handleStake(w http.ResponseWriter, req *http.Request) error {
	caller, ids, err := s.parseBatch(req)
	if err != nil {
		return err
	}
	if err := s.ledger.StakeTokens(caller.Context(req.Context()), caller.Address, ids); err != nil {
		return restutil.CallError(err)
	}
	return restutil.WriteJSON(w, &restutil.TokenIDs{TokenIDs: ids})
}

func (s *Stakes) handleUnstake(w http.ResponseWriter, req *http.Request) error {
	caller, ids, err := s.parseBatch(req)
	if err != nil {
		return err
	}
	paid, err := s.ledger.UnstakeTokens(caller.Context(req.Context()), caller.Address, ids)
	if err != nil {
		return restutil.CallError(err)
	}
	return restutil.WriteJSON(w, restutil.NewAmount(paid))
}

func (s *Stakes) handleClaim(w http.ResponseWriter, req *http.Request) error {
	caller, ids, err := s.parseBatch(req)
	if err != nil {
		return err
	}
	paid, err := s.ledger.ClaimRewards(caller.Context(req.Context()), caller.Address, ids)
	if err != nil {
		return restutil.CallError(err)
	}
	return restutil.WriteJSON(w, restutil.NewAmount(paid))
}

func (s *Stakes) handleRaffle(w http.ResponseWriter, req *http.Request) error {
	caller, ids, err := s.parseBatch(req)
	if err != nil {
		return err
	}
	draws, err := s.ledger.RaffleRoll(caller.Context(req.Context()), caller.Address, ids)
	if err != nil {
		return restutil.CallError(err)
	}
	return restutil.WriteJSON(w, convertDraws(draws))
}

func (s *Stakes) handleGetStake(w http.ResponseWriter, req *http.Request) error {
	id, err := restutil.ParseTokenID(mux.Vars(req)["id"])
	if err != nil {
		return restutil.BadRequest(errors.WithMessage(err, "id"))
	}
	rec, err := s.ledger.StakedInfo(id)
	if err != nil {
		return err
	}
	return restutil.WriteJSON(w, convertRecord(id, rec))
}

func (s *Stakes) handleGetPending(w http.ResponseWriter, req *http.Request) error {
	id, err := restutil.ParseTokenID(mux.Vars(req)["id"])
	if err != nil {
		return restutil.BadRequest(errors.WithMessage(err, "id"))
	}
	amount, err := s.ledger.PendingReward(id)
	if err != nil {
		return restutil.CallError(err)
	}
	return restutil.WriteJSON(w, restutil.NewAmount(amount))
}

// Mount registers the holder routes at the root of the router.
func (s *Stakes) Mount(root *mux.Router) {
	root.Path("/rarity").
		Methods(http.MethodPost).
		Name("rarity_initialize").
		HandlerFunc(restutil.WrapHandlerFunc(s.handleInitializeRarity))
	root.Path("/stakes").
		Methods(http.MethodPost).
		Name("stakes_stake").
		HandlerFunc(restutil.WrapHandlerFunc(s.handleStake))
	root.Path("/unstakes").
		Methods(http.MethodPost).
		Name("stakes_unstake").
		HandlerFunc(restutil.WrapHandlerFunc(s.handleUnstake))
	root.Path("/claims").
		Methods(http.MethodPost).
		Name("stakes_claim").
		HandlerFunc(restutil.WrapHandlerFunc(s.handleClaim))
	root.Path("/raffles").
		Methods(http.MethodPost).
		Name("stakes_raffle").
		HandlerFunc(restutil.WrapHandlerFunc(s.handleRaffle))
	root.Path("/stakes/{id:[0-9]+}").
		Methods(http.MethodGet).
		Name("stakes_get_stake").
		HandlerFunc(restutil.WrapHandlerFunc(s.handleGetStake))
	root.Path("/stakes/{id:[0-9]+}/pending").
		Methods(http.MethodGet).
		Name("stakes_get_pending").
		HandlerFunc(restutil.WrapHandlerFunc(s.handleGetPending))
}
