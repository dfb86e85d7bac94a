// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package rarity

import (
	"math/big"

	"github.com/pkg/errors"

	"github.com/vechain/rarity-staking/builtin/solidity"
	"github.com/vechain/rarity-staking/log"
	"github.com/vechain/rarity-staking/state"
	"github.com/vechain/rarity-staking/thor"
)

var logger = log.WithContext("pkg", "rarity")

var (
	slotEntries     = nameToSlot("rarity-entries")
	slotInitialized = nameToSlot("rarity-initialized")
	slotCount       = nameToSlot("rarity-count")
)

func nameToSlot(name string) thor.Bytes32 {
	return thor.BytesToBytes32([]byte(name))
}

// Entry is the persisted rarity of a token. Once Set is true the entry never changes.
type Entry struct {
	Score  uint64
	Weight uint64
	Set    bool
}

// Registry keeps the immutable token id to rarity mapping.
type Registry struct {
	verifier    Verifier
	policy      WeightPolicy
	entries     *solidity.Mapping[thor.TokenID, *Entry]
	initialized *solidity.Bool
	count       *solidity.Uint256
}

// NewRegistry binds the registry stored under addr.
func NewRegistry(addr thor.Address, st *state.State, verifier Verifier, policy WeightPolicy) *Registry {
	ctx := solidity.NewContext(addr, st)
	return &Registry{
		verifier:    verifier,
		policy:      policy,
		entries:     solidity.NewMapping[thor.TokenID, *Entry](ctx, slotEntries),
		initialized: solidity.NewBool(ctx, slotInitialized),
		count:       solidity.NewUint256(ctx, slotCount),
	}
}

// IsInitialized reports whether at least one batch was ingested.
func (r *Registry) IsInitialized() (bool, error) {
	return r.initialized.Get()
}

// Count returns the number of tokens with a rarity entry.
func (r *Registry) Count() (uint64, error) {
	n, err := r.count.Get()
	if err != nil {
		return 0, err
	}
	return n.Uint64(), nil
}

// Entry returns the entry of id. An unset entry has Set == false.
func (r *Registry) Entry(id thor.TokenID) (*Entry, error) {
	e, err := r.entries.Get(id)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get rarity entry")
	}
	return e, nil
}

// WeightOf returns the reward weight of id.
func (r *Registry) WeightOf(id thor.TokenID) (uint64, error) {
	e, err := r.Entry(id)
	if err != nil {
		return 0, err
	}
	if !e.Set {
		return 0, errors.WithMessagef(ErrTokenNotInitialized, "token %v", id)
	}
	return e.Weight, nil
}

// Initialize ingests a signed batch. Every record is checked before anything is
// written, so a forged, duplicated or already-set record leaves the registry untouched.
func (r *Registry) Initialize(records []*Record) ([]*Entry, error) {
	if len(records) == 0 {
		return nil, ErrEmptyBatch
	}

	seen := make(map[thor.TokenID]struct{}, len(records))
	for _, rec := range records {
		if _, dup := seen[rec.TokenID]; dup {
			return nil, errors.WithMessagef(ErrRarityAlreadySet, "token %v repeated in batch", rec.TokenID)
		}
		seen[rec.TokenID] = struct{}{}

		if err := r.verifier.Verify(rec); err != nil {
			logger.Warn("rejected rarity batch", "token", rec.TokenID, "error", err)
			return nil, err
		}
		existing, err := r.Entry(rec.TokenID)
		if err != nil {
			return nil, err
		}
		if existing.Set {
			return nil, errors.WithMessagef(ErrRarityAlreadySet, "token %v", rec.TokenID)
		}
	}

	entries := make([]*Entry, 0, len(records))
	for _, rec := range records {
		entry := &Entry{
			Score:  rec.Score,
			Weight: r.policy.Weight(rec.Score),
			Set:    true,
		}
		if err := r.entries.Set(rec.TokenID, entry); err != nil {
			return nil, errors.Wrap(err, "failed to set rarity entry")
		}
		entries = append(entries, entry)
		logger.Debug("rarity set", "token", rec.TokenID, "score", entry.Score, "weight", entry.Weight)
	}
	if err := r.count.Add(new(big.Int).SetUint64(uint64(len(records)))); err != nil {
		return nil, err
	}
	r.initialized.Set(true)
	return entries, nil
}
