// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package restutil

import (
	"context"
	"crypto/ecdsa"
	"encoding/binary"
	"io"
	"math/big"
	"net/http"
	"strconv"

	"github.com/ethereum/go-ethereum/accounts"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/pkg/errors"

	"github.com/vechain/rarity-staking/builtin/nonce"
	"github.com/vechain/rarity-staking/thor"
)

// Headers of a signed request. The nonce and expiry are decimal and covered by the signature.
const (
	SignatureHeader = "X-Signature"
	NonceHeader     = "X-Nonce"
	ExpiryHeader    = "X-Expiry"
)

const maxBodySize = 1 << 20

// Caller is the verified signer of a request and the ticket it signed.
type Caller struct {
	Address thor.Address
	Ticket  nonce.Ticket
}

// Context returns a copy of parent that carries the caller's ticket to the ledger.
func (c *Caller) Context(parent context.Context) context.Context {
	return nonce.WithTicket(parent, c.Ticket)
}

// RequestHash is the hash a caller signs:
// keccak256(method ‖ " " ‖ path ‖ nonce ‖ expiry ‖ keccak256(body)), integers 8-byte big endian.
func RequestHash(method, path string, t nonce.Ticket, body []byte) thor.Bytes32 {
	var ticket [16]byte
	binary.BigEndian.PutUint64(ticket[:8], t.Nonce)
	binary.BigEndian.PutUint64(ticket[8:], t.Expiry)
	bodyHash := thor.Keccak256(body)
	return thor.Keccak256([]byte(method), []byte(" "), []byte(path), ticket[:], bodyHash[:])
}

// SignRequest produces the X-Signature value for a request, in personal-message form.
func SignRequest(key *ecdsa.PrivateKey, method, path string, t nonce.Ticket, body []byte) (string, error) {
	hash := RequestHash(method, path, t, body)
	sig, err := crypto.Sign(accounts.TextHash(hash[:]), key)
	if err != nil {
		return "", err
	}
	sig[crypto.RecoveryIDOffset] += 27
	return hexutil.Encode(sig), nil
}

// Sign sets the signature headers of req, whose body must be body.
func Sign(req *http.Request, key *ecdsa.PrivateKey, t nonce.Ticket, body []byte) error {
	sig, err := SignRequest(key, req.Method, req.URL.Path, t, body)
	if err != nil {
		return err
	}
	req.Header.Set(SignatureHeader, sig)
	req.Header.Set(NonceHeader, strconv.FormatUint(t.Nonce, 10))
	req.Header.Set(ExpiryHeader, strconv.FormatUint(t.Expiry, 10))
	return nil
}

// Authenticate reads the request body and returns it with the caller that signed the request.
// Whether the ticket is still usable is decided by the ledger.
func Authenticate(req *http.Request) (*Caller, []byte, error) {
	body, err := io.ReadAll(io.LimitReader(req.Body, maxBodySize))
	if err != nil {
		return nil, nil, BadRequest(errors.WithMessage(err, "body"))
	}
	header := req.Header.Get(SignatureHeader)
	if header == "" {
		return nil, nil, Unauthorized(errors.New("missing " + SignatureHeader))
	}
	sig, err := hexutil.Decode(header)
	if err != nil {
		return nil, nil, Unauthorized(errors.WithMessage(err, SignatureHeader))
	}
	ticket, err := parseTicket(req.Header)
	if err != nil {
		return nil, nil, Unauthorized(err)
	}
	addr, err := recoverSigner(RequestHash(req.Method, req.URL.Path, ticket, body), sig)
	if err != nil {
		return nil, nil, Unauthorized(errors.WithMessage(err, SignatureHeader))
	}
	return &Caller{Address: addr, Ticket: ticket}, body, nil
}

func parseTicket(h http.Header) (nonce.Ticket, error) {
	parse := func(name string) (uint64, error) {
		v := h.Get(name)
		if v == "" {
			return 0, errors.New("missing " + name)
		}
		n, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			return 0, errors.WithMessage(err, name)
		}
		return n, nil
	}
	n, err := parse(NonceHeader)
	if err != nil {
		return nonce.Ticket{}, err
	}
	if n == 0 {
		return nonce.Ticket{}, errors.New(NonceHeader + ": must be positive")
	}
	expiry, err := parse(ExpiryHeader)
	if err != nil {
		return nonce.Ticket{}, err
	}
	return nonce.Ticket{Nonce: n, Expiry: expiry}, nil
}

func recoverSigner(hash thor.Bytes32, signature []byte) (thor.Address, error) {
	if len(signature) != crypto.SignatureLength {
		return thor.Address{}, errors.Errorf("invalid signature length %d", len(signature))
	}
	sig := make([]byte, crypto.SignatureLength)
	copy(sig, signature)
	if sig[crypto.RecoveryIDOffset] >= 27 {
		sig[crypto.RecoveryIDOffset] -= 27
	}
	r, s := new(big.Int).SetBytes(sig[:32]), new(big.Int).SetBytes(sig[32:64])
	if !crypto.ValidateSignatureValues(sig[crypto.RecoveryIDOffset], r, s, true) {
		return thor.Address{}, errors.New("invalid signature values")
	}
	pub, err := crypto.SigToPub(accounts.TextHash(hash[:]), sig)
	if err != nil {
		return thor.Address{}, err
	}
	return thor.Address(crypto.PubkeyToAddress(*pub)), nil
}
