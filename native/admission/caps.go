package admission

import (
	"fmt"

	"safepump/native/common"
)

// SwapCap returns base * min(tierBps, configuredBps) / 10000.
func SwapCap(base, tierBps, configuredBps uint64) (uint64, error) {
	bps := tierBps
	if configuredBps < bps {
		bps = configuredBps
	}
	return common.ApplyBps(base, bps)
}

// CheckSwapCap bounds a single swap. Buys are measured against total supply,
// sells against the seller's balance.
func CheckSwapCap(dir common.Direction, amount, base, tierBps, configuredBps uint64) error {
	limit, err := SwapCap(base, tierBps, configuredBps)
	if err != nil {
		return err
	}
	if amount <= limit {
		return nil
	}
	if dir.IsBuy() {
		return fmt.Errorf("%w: %d > %d", common.ErrBuyCapExceeded, amount, limit)
	}
	return fmt.Errorf("%w: %d > %d", common.ErrSellCapExceeded, amount, limit)
}
