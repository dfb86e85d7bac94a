// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package rarity

import (
	"crypto/ecdsa"
	"encoding/binary"

	"github.com/ethereum/go-ethereum/accounts"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"

	"github.com/vechain/rarity-staking/thor"
)

// Record is a signed rarity attestation for one token. It is consumed by
// Registry.Initialize and never stored; only the score survives.
type Record struct {
	TokenID   thor.TokenID  `json:"tokenId"`
	Score     uint64        `json:"score"`
	Signature hexutil.Bytes `json:"signature"`
}

// SigningHash is keccak256 over the packed uint256 words of token id and score.
func (r *Record) SigningHash() thor.Bytes32 {
	var score [32]byte
	binary.BigEndian.PutUint64(score[24:], r.Score)
	return thor.Keccak256(r.TokenID.Bytes(), score[:])
}

// MessageHash is the signing hash wrapped as an Ethereum signed message,
// which separates attestations from transaction signatures.
func (r *Record) MessageHash() []byte {
	h := r.SigningHash()
	return accounts.TextHash(h[:])
}

// Sign signs the record with key, producing a 65-byte [R || S || V] signature
// with V in {27, 28}.
func Sign(r *Record, key *ecdsa.PrivateKey) error {
	sig, err := crypto.Sign(r.MessageHash(), key)
	if err != nil {
		return err
	}
	sig[crypto.RecoveryIDOffset] += 27
	r.Signature = sig
	return nil
}
