// Package rewards flushes accumulated swapper and badge rewards once per
// distribution period.
package rewards

import (
	"fmt"

	"github.com/gagliardetto/solana-go"

	"safepump/native/common"
	"safepump/native/tax"
)

// DefaultPeriodSeconds is the minimum interval between two flushes.
const DefaultPeriodSeconds int64 = 86_400

// PayFunc transfers amount of the ledger's denomination to recipient.
type PayFunc func(recipient solana.PublicKey, amount uint64) error

// Summary describes one completed flush. Dust is the part of the badge pool
// that could not be split evenly; it is dropped with the pool, not carried
// forward.
type Summary struct {
	Recipients   uint64
	SwapperTotal uint64
	Holders      uint64
	PerHolder    uint64
	BadgeTotal   uint64
	Dust         uint64
}

// Ready reports whether period seconds have passed since the last flush.
func Ready(ledger *tax.RewardLedger, now, period int64) error {
	if now-ledger.LastFlush < period {
		return fmt.Errorf("%w: next flush at %d", common.ErrDistributionTooSoon, ledger.LastFlush+period)
	}
	return nil
}

// Distribute pays every pending swapper entry, splits the badge pool evenly
// across tracked holders and resets the ledger. Nothing is mutated when the
// period has not elapsed or a payment fails.
func Distribute(ledger *tax.RewardLedger, holders *tax.HolderTable, now, period int64, pay PayFunc) (Summary, error) {
	if err := Ready(ledger, now, period); err != nil {
		return Summary{}, err
	}
	var summary Summary
	for _, entry := range ledger.Slots {
		if entry.Amount == 0 {
			continue
		}
		if err := pay(entry.Recipient, entry.Amount); err != nil {
			return Summary{}, fmt.Errorf("rewards: pay swapper %s: %w", entry.Recipient, err)
		}
		total, err := common.CheckedAdd(summary.SwapperTotal, entry.Amount)
		if err != nil {
			return Summary{}, err
		}
		summary.SwapperTotal = total
		summary.Recipients++
	}

	if ledger.BadgePool > 0 && holders != nil && holders.Count() > 0 {
		summary.Holders = holders.Count()
		summary.PerHolder = ledger.BadgePool / summary.Holders
		summary.BadgeTotal = summary.PerHolder * summary.Holders
		summary.Dust = ledger.BadgePool - summary.BadgeTotal
		if summary.PerHolder > 0 {
			for _, h := range holders.Holders {
				if err := pay(h.Holder, summary.PerHolder); err != nil {
					return Summary{}, fmt.Errorf("rewards: pay holder %s: %w", h.Holder, err)
				}
			}
		}
	} else {
		summary.Dust = ledger.BadgePool
	}

	ledger.Reset(now)
	return summary, nil
}
