// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package staking

import (
	"github.com/vechain/rarity-staking/builtin/rarity"
	"github.com/vechain/rarity-staking/builtin/reverts"
	"github.com/vechain/rarity-staking/builtin/staking/accrual"
)

var (
	ErrNotInitialized         = reverts.New("rarity not initialized")
	ErrNotOwner               = reverts.New("sender not owner")
	ErrNotStaked              = reverts.Refine(ErrNotOwner, "token not staked")
	ErrNotTokenHolder         = reverts.Refine(ErrNotOwner, "sender does not hold token")
	ErrAlreadyStaked          = reverts.New("token already staked")
	ErrNotApproved            = reverts.New("staking contract not approved for token")
	ErrRollingTooSoon         = reverts.New("rolling too soon")
	ErrInsufficientRewardPool = reverts.New("insufficient reward pool")
	ErrNotAdmin               = reverts.New("sender not admin")
	ErrInvalidAmount          = reverts.New("invalid amount")
	ErrBatchTooLarge          = reverts.New("batch too large")
	ErrAlreadyDeployed        = reverts.New("staking already deployed")

	ErrRewardOverflow      = accrual.ErrOverflow
	ErrEmptyBatch          = rarity.ErrEmptyBatch
	ErrInvalidSignature    = rarity.ErrInvalidSignature
	ErrTokenNotInitialized = rarity.ErrTokenNotInitialized
	ErrRarityAlreadySet    = rarity.ErrRarityAlreadySet
)
