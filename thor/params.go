// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package thor

import "math/big"

// Ledger-wide constants.
const (
	// RaffleCooldown is the minimum number of seconds between two rolls of the same token.
	RaffleCooldown uint64 = 12 * 3600

	// MaxBatchSize bounds the number of token ids accepted by one call.
	MaxBatchSize = 256
)

var (
	// Ether is 1e18 base units of the reward token.
	Ether = big.NewInt(1e18)

	// InitialRewardRate is the default reward per second for a weight of 1.0x.
	InitialRewardRate = new(big.Int).Div(Ether, big.NewInt(86400))

	// InitialRaffleReward is the default bonus paid per successful roll.
	InitialRaffleReward = new(big.Int).Set(Ether)

	// MaxAmount bounds admin-set amounts so accrual stays far from 256-bit overflow.
	MaxAmount = new(big.Int).Lsh(big.NewInt(1), 128)
)

// Keys of the admin-configurable parameters.
var (
	KeyRewardRate     = BytesToBytes32([]byte("reward-rate"))
	KeyRaffleReward   = BytesToBytes32([]byte("raffle-reward"))
	KeyRaffleCooldown = BytesToBytes32([]byte("raffle-cooldown"))
	KeyConfigVersion  = BytesToBytes32([]byte("config-version"))
)
