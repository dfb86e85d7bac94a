// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package raffle

import (
	"crypto/ecdsa"
	"encoding/binary"

	"github.com/pkg/errors"
	"github.com/vechain/go-ecvrf"

	"github.com/vechain/rarity-staking/thor"
)

// Source yields the entropy of one draw. seed comes from the execution environment
// and is not known to the caller before the call is admitted. A source that can
// attest its output returns a proof, otherwise proof is nil.
type Source interface {
	Draw(seed thor.Bytes32, id thor.TokenID, now uint64) (entropy thor.Bytes32, proof []byte, err error)
}

// Alpha mixes the seed with the token and time into the VRF input.
func Alpha(seed thor.Bytes32, id thor.TokenID, now uint64) thor.Bytes32 {
	var ts [8]byte
	binary.BigEndian.PutUint64(ts[:], now)
	return thor.Blake2b(seed.Bytes(), id.Bytes(), ts[:])
}

// HashSource derives entropy by hashing the draw inputs.
type HashSource struct{}

func (HashSource) Draw(seed thor.Bytes32, id thor.TokenID, now uint64) (thor.Bytes32, []byte, error) {
	return Alpha(seed, id, now), nil, nil
}

// FixedSource always returns Value. Used to make draws reproducible.
type FixedSource struct {
	Value thor.Bytes32
}

func (s FixedSource) Draw(thor.Bytes32, thor.TokenID, uint64) (thor.Bytes32, []byte, error) {
	return s.Value, nil, nil
}

// VRFSource proves each draw with a secp256k1 VRF key held by the operator.
// The proof is recorded with the roll, so anyone holding the public key can
// check the entropy with VerifyDraw.
type VRFSource struct {
	key *ecdsa.PrivateKey
}

func NewVRFSource(key *ecdsa.PrivateKey) *VRFSource {
	return &VRFSource{key: key}
}

func (s *VRFSource) Draw(seed thor.Bytes32, id thor.TokenID, now uint64) (thor.Bytes32, []byte, error) {
	beta, pi, err := ecvrf.Secp256k1Sha256Tai.Prove(s.key, Alpha(seed, id, now).Bytes())
	if err != nil {
		return thor.Bytes32{}, nil, errors.Wrap(err, "vrf prove")
	}
	return thor.BytesToBytes32(beta), pi, nil
}

// PublicKey returns the key draws are verified against.
func (s *VRFSource) PublicKey() *ecdsa.PublicKey {
	return &s.key.PublicKey
}

// VerifyDraw checks a proof against the operator public key and returns the entropy it attests.
func VerifyDraw(pub *ecdsa.PublicKey, seed thor.Bytes32, id thor.TokenID, now uint64, proof []byte) (thor.Bytes32, error) {
	beta, err := ecvrf.Secp256k1Sha256Tai.Verify(pub, Alpha(seed, id, now).Bytes(), proof)
	if err != nil {
		return thor.Bytes32{}, errors.Wrap(err, "vrf verify")
	}
	return thor.BytesToBytes32(beta), nil
}
