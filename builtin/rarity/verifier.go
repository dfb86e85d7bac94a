// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package rarity

import (
	"math/big"

	"github.com/ethereum/go-ethereum/crypto"
	lru "github.com/hashicorp/golang-lru"
	"github.com/pkg/errors"

	"github.com/vechain/rarity-staking/thor"
)

const signerCacheSize = 1024

// Verifier checks that a record was attested by the trusted signer.
type Verifier interface {
	Verify(r *Record) error
}

// VerifierFunc adapts a function to Verifier.
type VerifierFunc func(r *Record) error

func (f VerifierFunc) Verify(r *Record) error { return f(r) }

// SignerVerifier recovers the secp256k1 signer of a record and compares it
// with a fixed trusted address.
type SignerVerifier struct {
	signer thor.Address
	cache  *lru.Cache
}

// NewSignerVerifier creates a verifier trusting signer.
func NewSignerVerifier(signer thor.Address) *SignerVerifier {
	cache, _ := lru.New(signerCacheSize)
	return &SignerVerifier{
		signer: signer,
		cache:  cache,
	}
}

// Signer returns the trusted address.
func (v *SignerVerifier) Signer() thor.Address {
	return v.signer
}

// Verify returns ErrInvalidSignature unless the record was signed by the trusted signer.
func (v *SignerVerifier) Verify(r *Record) error {
	signer, err := v.recover(r)
	if err != nil {
		return errors.WithMessagef(ErrInvalidSignature, "token %v: %v", r.TokenID, err)
	}
	if signer != v.signer {
		return errors.WithMessagef(ErrInvalidSignature, "token %v: signed by %v", r.TokenID, signer)
	}
	return nil
}

func (v *SignerVerifier) recover(r *Record) (thor.Address, error) {
	if len(r.Signature) != crypto.SignatureLength {
		return thor.Address{}, errors.Errorf("invalid signature length %d", len(r.Signature))
	}
	msg := r.MessageHash()
	key := thor.Keccak256(msg, r.Signature)
	if cached, ok := v.cache.Get(key); ok {
		return cached.(thor.Address), nil
	}

	sig := make([]byte, crypto.SignatureLength)
	copy(sig, r.Signature)
	if sig[crypto.RecoveryIDOffset] >= 27 {
		sig[crypto.RecoveryIDOffset] -= 27
	}
	// reject the upper range of s so one attestation has exactly one valid encoding
	rv, sv := new(big.Int).SetBytes(sig[:32]), new(big.Int).SetBytes(sig[32:64])
	if !crypto.ValidateSignatureValues(sig[crypto.RecoveryIDOffset], rv, sv, true) {
		return thor.Address{}, errors.New("invalid signature values")
	}
	pub, err := crypto.SigToPub(msg, sig)
	if err != nil {
		return thor.Address{}, err
	}
	addr := thor.Address(crypto.PubkeyToAddress(*pub))
	v.cache.Add(key, addr)
	return addr, nil
}
