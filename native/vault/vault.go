// Package vault holds the per-user replay-protection counter.
package vault

import (
	"errors"
	"fmt"

	"github.com/gagliardetto/solana-go"

	"safepump/crypto"
	"safepump/native/common"
)

var ErrVaultExists = errors.New("vault: already registered")

// Storage abstracts the state transaction used to persist vaults.
type Storage interface {
	KVGet(key []byte, out interface{}) (bool, error)
	KVPut(key []byte, value interface{}) error
}

var vaultPrefix = []byte("vault/")

func vaultKey(owner solana.PublicKey) []byte {
	return append(append([]byte{}, vaultPrefix...), owner[:]...)
}

// Vault is the replay counter of one user. The nonce only moves forward, by
// exactly one per committed swap.
type Vault struct {
	Owner      solana.PublicKey
	Nonce      uint64
	LastSigner crypto.PublicKey
}

// Check fails with ErrReplayRejected unless supplied equals the stored nonce.
func (v *Vault) Check(supplied uint64) error {
	if supplied != v.Nonce {
		return fmt.Errorf("%w: expected %d, got %d", common.ErrReplayRejected, v.Nonce, supplied)
	}
	return nil
}

// Advance consumes the current nonce. Callers invoke it only once every other
// step of the swap succeeded.
func (v *Vault) Advance(signer crypto.PublicKey) error {
	next, err := common.CheckedAdd(v.Nonce, 1)
	if err != nil {
		return err
	}
	v.Nonce = next
	v.LastSigner = signer
	return nil
}

// Load returns the vault owned by owner, if registered.
func Load(store Storage, owner solana.PublicKey) (*Vault, bool, error) {
	v := new(Vault)
	ok, err := store.KVGet(vaultKey(owner), v)
	if err != nil || !ok {
		return nil, ok, err
	}
	return v, true, nil
}

// MustLoad is Load that maps a missing vault onto ErrVaultNotRegistered.
func MustLoad(store Storage, owner solana.PublicKey) (*Vault, error) {
	v, ok, err := Load(store, owner)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("%w: %s", common.ErrVaultNotRegistered, owner)
	}
	return v, nil
}

func Save(store Storage, v *Vault) error {
	if v == nil {
		return errors.New("vault: nil vault")
	}
	return store.KVPut(vaultKey(v.Owner), v)
}

// Register creates a fresh vault at nonce zero.
func Register(store Storage, owner solana.PublicKey) (*Vault, error) {
	if _, ok, err := Load(store, owner); err != nil {
		return nil, err
	} else if ok {
		return nil, fmt.Errorf("%w: %s", ErrVaultExists, owner)
	}
	v := &Vault{Owner: owner}
	if err := Save(store, v); err != nil {
		return nil, err
	}
	return v, nil
}
