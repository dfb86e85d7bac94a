// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package rarity

import "github.com/vechain/rarity-staking/builtin/reverts"

var (
	ErrInvalidSignature    = reverts.New("invalid rarity signature")
	ErrTokenNotInitialized = reverts.New("token rarity not initialized")
	ErrRarityAlreadySet    = reverts.New("token rarity already set")
	ErrEmptyBatch          = reverts.New("empty batch")
)
