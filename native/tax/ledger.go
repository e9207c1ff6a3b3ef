package tax

import (
	"github.com/gagliardetto/solana-go"

	"safepump/native/common"
)

// Capacity bounds both the reward log and the badge holder table.
const Capacity = 1000

// RewardEntry is one pending swapper reward.
type RewardEntry struct {
	Recipient solana.PublicKey
	Amount    uint64
}

// RewardLedger is an append-only arena of pending swapper rewards plus the
// badge pool, denominated in a single mint. Slots are written at SwapCount;
// once SwapCount reaches Capacity further appends are dropped until the next
// flush. Entries for the same recipient are never merged.
type RewardLedger struct {
	Denomination solana.PublicKey
	Slots        []RewardEntry
	SwapCount    uint64
	BadgePool    uint64
	LastFlush    int64
}

// NewRewardLedger returns an empty ledger for denomination.
func NewRewardLedger(denomination solana.PublicKey) *RewardLedger {
	return &RewardLedger{Denomination: denomination}
}

// Full reports whether the arena has no free slot left.
func (l *RewardLedger) Full() bool { return l.SwapCount >= Capacity }

// Append records amount for recipient. It reports whether the entry was kept.
func (l *RewardLedger) Append(recipient solana.PublicKey, amount uint64) bool {
	if l.Full() {
		return false
	}
	idx := int(l.SwapCount)
	for len(l.Slots) <= idx {
		l.Slots = append(l.Slots, RewardEntry{})
	}
	l.Slots[idx] = RewardEntry{Recipient: recipient, Amount: amount}
	l.SwapCount++
	return true
}

// AddBadge grows the badge pool.
func (l *RewardLedger) AddBadge(amount uint64) error {
	pool, err := common.CheckedAdd(l.BadgePool, amount)
	if err != nil {
		return err
	}
	l.BadgePool = pool
	return nil
}

// Pending returns the sum of all unpaid swapper entries.
func (l *RewardLedger) Pending() (uint64, error) {
	var total uint64
	for _, e := range l.Slots {
		sum, err := common.CheckedAdd(total, e.Amount)
		if err != nil {
			return 0, err
		}
		total = sum
	}
	return total, nil
}

// Reset empties the arena after a flush at now.
func (l *RewardLedger) Reset(now int64) {
	l.Slots = nil
	l.SwapCount = 0
	l.BadgePool = 0
	l.LastFlush = now
}
