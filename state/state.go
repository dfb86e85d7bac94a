// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package state

import (
	"bytes"
	"fmt"

	"github.com/vechain/rarity-staking/kv"
	"github.com/vechain/rarity-staking/stackedmap"
	"github.com/vechain/rarity-staking/thor"
)

// storagePrefix prefixes every contract storage key persisted in the kv store.
const storagePrefix = "s"

// Error is the error caused by state access failure.
type Error struct {
	cause error
}

func (e *Error) Error() string {
	return fmt.Sprintf("state: %v", e.cause)
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.cause
}

type storageKey struct {
	addr thor.Address
	key  thor.Bytes32
}

func (k storageKey) dbKey() []byte {
	buf := make([]byte, 0, len(storagePrefix)+thor.AddressLength+32)
	buf = append(buf, storagePrefix...)
	buf = append(buf, k.addr[:]...)
	return append(buf, k.key[:]...)
}

// State manages per-contract storage on top of a kv store.
// Writes stay in memory until the stage is committed, and can be reverted
// to any checkpoint before that.
type State struct {
	db kv.Getter
	sm *stackedmap.StackedMap[storageKey, []byte]
}

// New create state object.
func New(db kv.Getter) *State {
	s := &State{db: db}
	s.sm = stackedmap.New(s.dbGetter)
	return s
}

// dbGetter implements stackedmap.MapGetter.
func (s *State) dbGetter(key storageKey) ([]byte, bool, error) {
	v, err := s.db.Get(key.dbKey())
	if err != nil {
		if s.db.IsNotFound(err) {
			return nil, true, nil
		}
		return nil, false, err
	}
	return v, true, nil
}

// GetRawStorage returns raw storage value for given address and key.
// An absent value is returned as nil.
func (s *State) GetRawStorage(addr thor.Address, key thor.Bytes32) ([]byte, error) {
	data, _, err := s.sm.Get(storageKey{addr, key})
	if err != nil {
		return nil, &Error{err}
	}
	return data, nil
}

// SetRawStorage set raw storage value. An empty value deletes the entry.
func (s *State) SetRawStorage(addr thor.Address, key thor.Bytes32, raw []byte) {
	if len(raw) == 0 {
		raw = nil
	}
	s.sm.Put(storageKey{addr, key}, raw)
}

// GetStorage returns storage word for the given address and key.
func (s *State) GetStorage(addr thor.Address, key thor.Bytes32) (thor.Bytes32, error) {
	raw, err := s.GetRawStorage(addr, key)
	if err != nil {
		return thor.Bytes32{}, err
	}
	return thor.BytesToBytes32(raw), nil
}

// SetStorage set storage word for the given address and key.
func (s *State) SetStorage(addr thor.Address, key, value thor.Bytes32) {
	s.SetRawStorage(addr, key, bytes.TrimLeft(value[:], "\x00"))
}

// EncodeStorage set storage value encoded by given enc method.
func (s *State) EncodeStorage(addr thor.Address, key thor.Bytes32, enc func() ([]byte, error)) error {
	raw, err := enc()
	if err != nil {
		return &Error{err}
	}
	s.SetRawStorage(addr, key, raw)
	return nil
}

// DecodeStorage get and decode storage value.
func (s *State) DecodeStorage(addr thor.Address, key thor.Bytes32, dec func([]byte) error) error {
	raw, err := s.GetRawStorage(addr, key)
	if err != nil {
		return err
	}
	if err := dec(raw); err != nil {
		return &Error{err}
	}
	return nil
}

// NewCheckpoint makes a checkpoint of current state.
// It returns revision of the checkpoint.
func (s *State) NewCheckpoint() int {
	return s.sm.Push()
}

// RevertTo revert to checkpoint specified by revision.
func (s *State) RevertTo(revision int) {
	s.sm.PopTo(revision)
}

// Stage collects the latest value of every key written since the state was created.
func (s *State) Stage() *Stage {
	changes := make(map[storageKey][]byte)
	for _, entry := range s.sm.Journal() {
		changes[entry.Key] = entry.Value
	}
	return &Stage{changes: changes}
}
