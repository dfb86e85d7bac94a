// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package logdb

import (
	"context"
	"database/sql"
	"math/big"

	sqlite3 "github.com/mattn/go-sqlite3"
	"github.com/pkg/errors"

	"github.com/vechain/rarity-staking/thor"
)

type LogDB struct {
	path          string
	db            *sql.DB
	driverVersion string
}

// New create or open log db at given path.
func New(path string) (logDB *LogDB, err error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}
	defer func() {
		if logDB == nil {
			db.Close()
		}
	}()
	// every connection to ":memory:" opens its own database
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(eventTableSchema); err != nil {
		return nil, errors.Wrap(err, "create schema")
	}

	driverVer, _, _ := sqlite3.Version()
	return &LogDB{
		path,
		db,
		driverVer,
	}, nil
}

// NewMem create a log db in ram.
func NewMem() (*LogDB, error) {
	return New(":memory:")
}

// Close close the log db.
func (db *LogDB) Close() error {
	return db.db.Close()
}

func (db *LogDB) Path() string {
	return db.path
}

// DriverVersion returns the sqlite library version.
func (db *LogDB) DriverVersion() string {
	return db.driverVersion
}

// LastCall returns the call number of the newest stored event, or zero.
func (db *LogDB) LastCall(ctx context.Context) (uint32, error) {
	var seq sql.NullInt64
	if err := db.db.QueryRowContext(ctx, "SELECT MAX(seq) FROM event").Scan(&seq); err != nil {
		return 0, err
	}
	if !seq.Valid {
		return 0, nil
	}
	return sequence(seq.Int64).Call(), nil
}

// NewBatch prepares the events of one call.
func (db *LogDB) NewBatch(call uint32, timestamp uint64) *Batch {
	return &Batch{
		db:        db.db,
		call:      call,
		timestamp: timestamp,
	}
}

func (db *LogDB) FilterEvents(ctx context.Context, filter *Filter) ([]*Event, error) {
	if filter == nil {
		return db.queryEvents(ctx, "SELECT seq, timestamp, kind, token, account, amount, data FROM event ORDER BY seq ASC")
	}
	metricsHandleFilter(filter)

	var args []any
	stmt := "SELECT seq, timestamp, kind, token, account, amount, data FROM event WHERE 1"
	if filter.After != nil {
		args = append(args, int64(newSequence(filter.After.Call, filter.After.Index)))
		stmt += " AND seq > ?"
	}
	if filter.Kind != "" {
		args = append(args, filter.Kind)
		stmt += " AND kind = ?"
	}
	if filter.Token != nil {
		args = append(args, int64(*filter.Token))
		stmt += " AND token = ?"
	}
	if filter.Account != nil {
		args = append(args, filter.Account.Bytes())
		stmt += " AND account = ?"
	}
	if filter.From > 0 {
		args = append(args, filter.From)
		stmt += " AND timestamp >= ?"
	}
	if filter.To > 0 && filter.To >= filter.From {
		args = append(args, filter.To)
		stmt += " AND timestamp <= ?"
	}
	if filter.Order == DESC {
		stmt += " ORDER BY seq DESC"
	} else {
		stmt += " ORDER BY seq ASC"
	}
	if filter.Limit > 0 {
		stmt += " LIMIT ?, ?"
		args = append(args, filter.Offset, filter.Limit)
	}
	return db.queryEvents(ctx, stmt, args...)
}

func (db *LogDB) queryEvents(ctx context.Context, stmt string, args ...any) ([]*Event, error) {
	rows, err := db.db.QueryContext(ctx, stmt, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []*Event
	for rows.Next() {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}
		var (
			seq       int64
			timestamp uint64
			kind      string
			token     sql.NullInt64
			account   []byte
			amount    []byte
			data      []byte
		)
		if err := rows.Scan(&seq, &timestamp, &kind, &token, &account, &amount, &data); err != nil {
			return nil, err
		}
		event := &Event{
			Call:      sequence(seq).Call(),
			Index:     sequence(seq).Index(),
			Timestamp: timestamp,
			Kind:      kind,
			Account:   thor.BytesToAddress(account),
			Data:      data,
		}
		if token.Valid {
			id := thor.TokenID(token.Int64)
			event.Token = &id
		}
		if amount != nil {
			event.Amount = new(big.Int).SetBytes(amount)
		}
		events = append(events, event)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return events, nil
}

// Batch collects the events of one call and writes them in a single transaction.
type Batch struct {
	db        *sql.DB
	call      uint32
	timestamp uint64
	events    []*Event
}

// Insert appends an event. data is stored as given and should be JSON.
func (b *Batch) Insert(kind string, token *thor.TokenID, account thor.Address, amount *big.Int, data []byte) *Batch {
	b.events = append(b.events, &Event{
		Call:      b.call,
		Index:     uint32(len(b.events)),
		Timestamp: b.timestamp,
		Kind:      kind,
		Token:     token,
		Account:   account,
		Amount:    amount,
		Data:      data,
	})
	return b
}

// Len returns the number of pending events.
func (b *Batch) Len() int {
	return len(b.events)
}

func (b *Batch) execInTx(proc func(*sql.Tx) error) error {
	tx, err := b.db.Begin()
	if err != nil {
		return err
	}
	if err := proc(tx); err != nil {
		tx.Rollback()
		return err
	}
	return tx.Commit()
}

// Commit writes all pending events.
func (b *Batch) Commit() error {
	if len(b.events) == 0 {
		return nil
	}
	err := b.execInTx(func(tx *sql.Tx) error {
		for _, ev := range b.events {
			var token any
			if ev.Token != nil {
				token = int64(*ev.Token)
			}
			var amount []byte
			if ev.Amount != nil {
				amount = ev.Amount.Bytes()
				if amount == nil {
					amount = []byte{}
				}
			}
			if _, err := tx.Exec("INSERT OR REPLACE INTO event(seq, timestamp, kind, token, account, amount, data) VALUES (?, ?, ?, ?, ?, ?, ?);",
				int64(newSequence(ev.Call, ev.Index)),
				ev.Timestamp,
				ev.Kind,
				token,
				ev.Account.Bytes(),
				amount,
				[]byte(ev.Data),
			); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return errors.Wrap(err, "commit events")
	}
	metricInsertedEvents().Add(int64(len(b.events)))
	return nil
}
