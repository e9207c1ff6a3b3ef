package tax

import "github.com/gagliardetto/solana-go"

// BadgeHolder counts the buys of one holder.
type BadgeHolder struct {
	Holder   solana.PublicKey
	BuyCount uint64
}

// HolderTable tracks at most Capacity distinct buyers in insertion order.
// Holders arriving after the table is full are silently ignored.
type HolderTable struct {
	Holders []BadgeHolder
}

// Count is the number of distinct tracked holders.
func (t *HolderTable) Count() uint64 { return uint64(len(t.Holders)) }

// Full reports whether new holders can still be inserted.
func (t *HolderTable) Full() bool { return len(t.Holders) >= Capacity }

// Find returns the slot index of holder or -1.
func (t *HolderTable) Find(holder solana.PublicKey) int {
	for i := range t.Holders {
		if t.Holders[i].Holder.Equals(holder) {
			return i
		}
	}
	return -1
}

// BuyCount returns the recorded buys of holder.
func (t *HolderTable) BuyCount(holder solana.PublicKey) uint64 {
	if idx := t.Find(holder); idx >= 0 {
		return t.Holders[idx].BuyCount
	}
	return 0
}

// RecordBuy increments holder's count, inserting it when there is room.
func (t *HolderTable) RecordBuy(holder solana.PublicKey) {
	if idx := t.Find(holder); idx >= 0 {
		t.Holders[idx].BuyCount++
		return
	}
	if t.Full() {
		return
	}
	t.Holders = append(t.Holders, BadgeHolder{Holder: holder, BuyCount: 1})
}
