// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package stakes

import (
	"math/big"

	"github.com/pkg/errors"

	"github.com/vechain/rarity-staking/builtin/solidity"
	"github.com/vechain/rarity-staking/thor"
)

var (
	slotRecords = thor.BytesToBytes32([]byte("stakes-records"))
	slotCount   = thor.BytesToBytes32([]byte("stakes-count"))
)

// Record is the custody record of one staked token. A record with a zero
// Owner means the token is not staked.
type Record struct {
	Owner        thor.Address `json:"owner"`
	StakedAt     uint64       `json:"stakedAt"`
	LastClaimAt  uint64       `json:"lastClaimAt"`
	LastRaffleAt uint64       `json:"lastRaffleAt"`
}

// New creates the record of a token staked by owner at now.
func New(owner thor.Address, now uint64) *Record {
	return &Record{
		Owner:        owner,
		StakedAt:     now,
		LastClaimAt:  now,
		LastRaffleAt: now,
	}
}

func (r *Record) IsEmpty() bool {
	return r == nil || r.Owner.IsZero()
}

// Repository stores records keyed by token id.
type Repository struct {
	records *solidity.Mapping[thor.TokenID, *Record]
	count   *solidity.Uint256
}

func NewRepository(sctx *solidity.Context) *Repository {
	return &Repository{
		records: solidity.NewMapping[thor.TokenID, *Record](sctx, slotRecords),
		count:   solidity.NewUint256(sctx, slotCount),
	}
}

// Get returns the record of id, or an empty record if the token is not staked.
func (r *Repository) Get(id thor.TokenID) (*Record, error) {
	rec, err := r.records.Get(id)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get stake")
	}
	return rec, nil
}

// Add stores a new record and increases the staked count.
func (r *Repository) Add(id thor.TokenID, rec *Record) error {
	if err := r.records.Set(id, rec); err != nil {
		return errors.Wrap(err, "failed to add stake")
	}
	return r.count.Add(big.NewInt(1))
}

// Update overwrites the checkpoints of an existing record.
func (r *Repository) Update(id thor.TokenID, rec *Record) error {
	if err := r.records.Set(id, rec); err != nil {
		return errors.Wrap(err, "failed to update stake")
	}
	return nil
}

// Remove deletes the record, clearing its owner.
func (r *Repository) Remove(id thor.TokenID) error {
	r.records.Delete(id)
	return r.count.Add(big.NewInt(-1))
}

// Count returns the number of staked tokens.
func (r *Repository) Count() (uint64, error) {
	n, err := r.count.Get()
	if err != nil {
		return 0, err
	}
	return n.Uint64(), nil
}
