package admission

import (
	"fmt"

	"safepump/native/common"
)

// AntiSnipe blocks the very first swap until cooldown seconds after launch.
func AntiSnipe(swapCount uint64, launchedAt, now, cooldown int64) error {
	if swapCount > 0 {
		return nil
	}
	if now-launchedAt < cooldown {
		return fmt.Errorf("%w: %ds remaining", common.ErrAntiSnipeCooldown, cooldown-(now-launchedAt))
	}
	return nil
}

// SellCooldown requires cooldown seconds between a user's last swap and a sell.
func SellCooldown(dir common.Direction, lastSwapAt, now, cooldown int64) error {
	if dir.IsBuy() || lastSwapAt == 0 {
		return nil
	}
	if now-lastSwapAt < cooldown {
		return fmt.Errorf("%w: %ds remaining", common.ErrCooldownNotElapsed, cooldown-(now-lastSwapAt))
	}
	return nil
}
