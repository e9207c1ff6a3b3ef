package state

import (
	"fmt"

	"github.com/gagliardetto/solana-go"

	"safepump/core/events"
	"safepump/native/common"
)

var (
	balancePrefix = []byte("balance:")
	supplyPrefix  = []byte("supply:")
)

func balanceKey(account, mint solana.PublicKey) []byte {
	return prefixedKey(balancePrefix, mint[:], account[:])
}

func supplyKey(mint solana.PublicKey) []byte {
	return prefixedKey(supplyPrefix, mint[:])
}

func (tx *Tx) loadUint(key []byte) (uint64, error) {
	var value uint64
	if _, err := tx.KVGet(key, &value); err != nil {
		return 0, err
	}
	return value, nil
}

func (tx *Tx) storeUint(key []byte, value uint64) error {
	if value == 0 {
		return tx.KVDelete(key)
	}
	return tx.KVPut(key, value)
}

// Balance returns the amount of mint held by account.
func (tx *Tx) Balance(account, mint solana.PublicKey) (uint64, error) {
	return tx.loadUint(balanceKey(account, mint))
}

// Supply returns the outstanding amount of mint.
func (tx *Tx) Supply(mint solana.PublicKey) (uint64, error) {
	return tx.loadUint(supplyKey(mint))
}

// Transfer moves amount of mint between accounts.
func (tx *Tx) Transfer(from, to, mint solana.PublicKey, amount uint64) error {
	if amount == 0 {
		return nil
	}
	fromBal, err := tx.Balance(from, mint)
	if err != nil {
		return err
	}
	if fromBal < amount {
		return fmt.Errorf("%w: %s holds %d of %s, needs %d", common.ErrInsufficientBalance, from, fromBal, mint, amount)
	}
	if from.Equals(to) {
		return nil
	}
	toBal, err := tx.Balance(to, mint)
	if err != nil {
		return err
	}
	credited, err := common.CheckedAdd(toBal, amount)
	if err != nil {
		return err
	}
	if err := tx.storeUint(balanceKey(from, mint), fromBal-amount); err != nil {
		return err
	}
	return tx.storeUint(balanceKey(to, mint), credited)
}

// Mint credits newly issued units to account and grows the supply.
func (tx *Tx) Mint(to, mint solana.PublicKey, amount uint64) error {
	if amount == 0 {
		return nil
	}
	supply, err := tx.Supply(mint)
	if err != nil {
		return err
	}
	newSupply, err := common.CheckedAdd(supply, amount)
	if err != nil {
		return err
	}
	bal, err := tx.Balance(to, mint)
	if err != nil {
		return err
	}
	credited, err := common.CheckedAdd(bal, amount)
	if err != nil {
		return err
	}
	if err := tx.storeUint(supplyKey(mint), newSupply); err != nil {
		return err
	}
	if err := tx.storeUint(balanceKey(to, mint), credited); err != nil {
		return err
	}
	tx.Emit(events.TokenSupply{Mint: mint, Total: newSupply, Delta: amount, Reason: events.SupplyReasonMint})
	return nil
}

// Burn destroys amount of mint held by account.
func (tx *Tx) Burn(from, mint solana.PublicKey, amount uint64) error {
	if amount == 0 {
		return nil
	}
	bal, err := tx.Balance(from, mint)
	if err != nil {
		return err
	}
	if bal < amount {
		return fmt.Errorf("%w: %s holds %d of %s, burning %d", common.ErrInsufficientBalance, from, bal, mint, amount)
	}
	supply, err := tx.Supply(mint)
	if err != nil {
		return err
	}
	newSupply, err := common.CheckedSub(supply, amount)
	if err != nil {
		return err
	}
	if err := tx.storeUint(supplyKey(mint), newSupply); err != nil {
		return err
	}
	if err := tx.storeUint(balanceKey(from, mint), bal-amount); err != nil {
		return err
	}
	tx.Emit(events.TokenSupply{Mint: mint, Total: newSupply, Delta: amount, Reason: events.SupplyReasonBurn})
	return nil
}

var _ common.Ledger = (*Tx)(nil)
