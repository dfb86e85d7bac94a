// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package logdb

const eventTableSchema = `
CREATE TABLE IF NOT EXISTS event (
	seq INTEGER PRIMARY KEY,
	timestamp INTEGER NOT NULL,
	kind TEXT NOT NULL,
	token INTEGER,
	account BLOB(20) NOT NULL,
	amount BLOB,
	data BLOB
);

CREATE INDEX IF NOT EXISTS eventTimestampIndex ON event(timestamp);
CREATE INDEX IF NOT EXISTS eventKindIndex ON event(kind);
CREATE INDEX IF NOT EXISTS eventTokenIndex ON event(token);
CREATE INDEX IF NOT EXISTS eventAccountIndex ON event(account);
`
