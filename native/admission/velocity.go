// Package admission holds the pure gates every swap passes before tax is
// charged: per-slot velocity, per-swap caps, launch anti-snipe, sell cooldown
// and the delegation rate limit.
package admission

import (
	"fmt"

	"github.com/gagliardetto/solana-go"

	"safepump/native/common"
)

// Window accumulates buy volume for one slot.
type Window struct {
	Slot        uint64
	TotalBought uint64
}

// Admit applies amount to the window for slot. The window resets when the
// slot changes; only buys accumulate. On failure the input window is returned
// unchanged.
func Admit(prev Window, slot, limit, amount uint64, dir common.Direction) (Window, error) {
	next := prev
	if prev.Slot != slot {
		next = Window{Slot: slot}
	}
	if !dir.IsBuy() {
		return next, nil
	}
	total, err := common.CheckedAdd(next.TotalBought, amount)
	if err != nil {
		return prev, err
	}
	if total > limit {
		return prev, fmt.Errorf("%w: %d > %d in slot %d", common.ErrVelocityExceeded, total, limit, slot)
	}
	next.TotalBought = total
	return next, nil
}

// Storage abstracts the state transaction used to persist windows.
type Storage interface {
	KVGet(key []byte, out interface{}) (bool, error)
	KVPut(key []byte, value interface{}) error
}

var windowPrefix = []byte("admission/velocity/")

// GlobalScope is the window key of the protocol-wide coordinator window.
var GlobalScope = solana.PublicKey{}

func windowKey(scope solana.PublicKey) []byte {
	return append(append([]byte{}, windowPrefix...), scope[:]...)
}

// LoadWindow returns the stored window for scope, zero-valued when absent.
func LoadWindow(store Storage, scope solana.PublicKey) (Window, error) {
	var w Window
	if _, err := store.KVGet(windowKey(scope), &w); err != nil {
		return Window{}, err
	}
	return w, nil
}

func SaveWindow(store Storage, scope solana.PublicKey, w Window) error {
	return store.KVPut(windowKey(scope), w)
}
