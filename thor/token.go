// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package thor

import (
	"encoding/binary"
	"strconv"
)

// TokenID identifies a non-fungible token in the external registry.
type TokenID uint64

// Bytes returns the 32-byte big-endian form, the layout of a uint256 word.
func (id TokenID) Bytes() []byte {
	var b [32]byte
	binary.BigEndian.PutUint64(b[24:], uint64(id))
	return b[:]
}

// String implements stringer.
func (id TokenID) String() string {
	return strconv.FormatUint(uint64(id), 10)
}
