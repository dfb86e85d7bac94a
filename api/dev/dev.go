// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package dev serves the collaborator contracts to local deployments, where no
// real NFT registry or reward token exists.
package dev

import (
	"bytes"
	"context"
	"math/big"
	"net/http"

	"github.com/ethereum/go-ethereum/common/math"
	"github.com/gorilla/mux"
	"github.com/pkg/errors"

	"github.com/vechain/rarity-staking/api/restutil"
	"github.com/vechain/rarity-staking/thor"
)

type Ledger interface {
	MintNFT(ctx context.Context, to thor.Address, id thor.TokenID) error
	MintToken(ctx context.Context, to thor.Address, amount *big.Int) error
	ApproveStaking(ctx context.Context, owner thor.Address, approved bool) error
	BalanceOf(addr thor.Address) (*big.Int, error)
	OwnerOf(id thor.TokenID) (thor.Address, error)
}

type MintNFT struct {
	To      *thor.Address `json:"to"`
	TokenID thor.TokenID  `json:"tokenId"`
}

type MintToken struct {
	To     *thor.Address         `json:"to"`
	Amount *math.HexOrDecimal256 `json:"amount"`
}

type Approve struct {
	Approved bool `json:"approved"`
}

type Dev struct {
	ledger Ledger
}

func New(ledger Ledger) *Dev {
	return &Dev{ledger}
}

func (d *Dev) handleMintNFT(w http.ResponseWriter, req *http.Request) error {
	var body MintNFT
	if err := restutil.ParseJSON(req.Body, &body); err != nil {
		return restutil.BadRequest(errors.WithMessage(err, "body"))
	}
	if body.To == nil {
		return restutil.BadRequest(errors.New("to: required"))
	}
	if err := d.ledger.MintNFT(req.Context(), *body.To, body.TokenID); err != nil {
		return restutil.CallError(err)
	}
	return restutil.WriteJSON(w, &body)
}

func (d *Dev) handleMintToken(w http.ResponseWriter, req *http.Request) error {
	var body MintToken
	if err := restutil.ParseJSON(req.Body, &body); err != nil {
		return restutil.BadRequest(errors.WithMessage(err, "body"))
	}
	if body.To == nil || body.Amount == nil {
		return restutil.BadRequest(errors.New("to and amount: required"))
	}
	if err := d.ledger.MintToken(req.Context(), *body.To, (*big.Int)(body.Amount)); err != nil {
		return restutil.CallError(err)
	}
	balance, err := d.ledger.BalanceOf(*body.To)
	if err != nil {
		return err
	}
	return restutil.WriteJSON(w, restutil.NewAmount(balance))
}

func (d *Dev) handleApprove(w http.ResponseWriter, req *http.Request) error {
	caller, raw, err := restutil.Authenticate(req)
	if err != nil {
		return err
	}
	var body Approve
	if err := restutil.ParseJSON(bytes.NewReader(raw), &body); err != nil {
		return restutil.BadRequest(errors.WithMessage(err, "body"))
	}
	if err := d.ledger.ApproveStaking(caller.Context(req.Context()), caller.Address, body.Approved); err != nil {
		return restutil.CallError(err)
	}
	return restutil.WriteJSON(w, &body)
}

func (d *Dev) handleGetBalance(w http.ResponseWriter, req *http.Request) error {
	addr, err := thor.ParseAddress(mux.Vars(req)["address"])
	if err != nil {
		return restutil.BadRequest(errors.WithMessage(err, "address"))
	}
	balance, err := d.ledger.BalanceOf(addr)
	if err != nil {
		return err
	}
	return restutil.WriteJSON(w, restutil.NewAmount(balance))
}

func (d *Dev) handleGetOwner(w http.ResponseWriter, req *http.Request) error {
	id, err := restutil.ParseTokenID(mux.Vars(req)["id"])
	if err != nil {
		return restutil.BadRequest(errors.WithMessage(err, "id"))
	}
	owner, err := d.ledger.OwnerOf(id)
	if err != nil {
		return err
	}
	return restutil.WriteJSON(w, restutil.M{"owner": owner.String()})
}

func (d *Dev) Mount(root *mux.Router, pathPrefix string) {
	sub := root.PathPrefix(pathPrefix).Subrouter()

	sub.Path("/mint-nft").
		Methods(http.MethodPost).
		Name("dev_mint_nft").
		HandlerFunc(restutil.WrapHandlerFunc(d.handleMintNFT))
	sub.Path("/mint-token").
		Methods(http.MethodPost).
		Name("dev_mint_token").
		HandlerFunc(restutil.WrapHandlerFunc(d.handleMintToken))
	sub.Path("/approve").
		Methods(http.MethodPost).
		Name("dev_approve").
		HandlerFunc(restutil.WrapHandlerFunc(d.handleApprove))
	sub.Path("/balances/{address}").
		Methods(http.MethodGet).
		Name("dev_get_balance").
		HandlerFunc(restutil.WrapHandlerFunc(d.handleGetBalance))
	sub.Path("/owners/{id:[0-9]+}").
		Methods(http.MethodGet).
		Name("dev_get_owner").
		HandlerFunc(restutil.WrapHandlerFunc(d.handleGetOwner))
}
