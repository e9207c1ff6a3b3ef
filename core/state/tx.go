package state

import (
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/rlp"

	"safepump/core/events"
	"safepump/storage"
)

// ErrTxClosed is returned when a transaction is used after Commit or Discard.
var ErrTxClosed = errors.New("state: transaction closed")

// Tx stages writes and events in memory. Nothing reaches the database or the
// emitter until Commit; Discard drops everything.
type Tx struct {
	mgr    *Manager
	writes map[string][]byte
	order  []string
	events []events.Event
	closed bool
}

func (tx *Tx) read(hashed []byte) ([]byte, error) {
	if staged, ok := tx.writes[string(hashed)]; ok {
		return staged, nil
	}
	return tx.mgr.read(hashed)
}

func (tx *Tx) stage(hashed []byte, value []byte) {
	k := string(hashed)
	if _, ok := tx.writes[k]; !ok {
		tx.order = append(tx.order, k)
	}
	tx.writes[k] = value
}

// KVGet decodes the value stored under key, preferring staged writes.
func (tx *Tx) KVGet(key []byte, out interface{}) (bool, error) {
	if tx.closed {
		return false, ErrTxClosed
	}
	if len(key) == 0 {
		return false, fmt.Errorf("kv: key must not be empty")
	}
	data, err := tx.read(kvKey(key))
	if err != nil {
		return false, err
	}
	return decodeInto(data, out)
}

// KVPut stages the RLP encoding of value under key.
func (tx *Tx) KVPut(key []byte, value interface{}) error {
	if tx.closed {
		return ErrTxClosed
	}
	if len(key) == 0 {
		return fmt.Errorf("kv: key must not be empty")
	}
	encoded, err := rlp.EncodeToBytes(value)
	if err != nil {
		return err
	}
	tx.stage(kvKey(key), encoded)
	return nil
}

// KVDelete stages the removal of key.
func (tx *Tx) KVDelete(key []byte) error {
	if tx.closed {
		return ErrTxClosed
	}
	if len(key) == 0 {
		return fmt.Errorf("kv: key must not be empty")
	}
	tx.stage(kvKey(key), nil)
	return nil
}

// Emit buffers an event until the transaction commits.
func (tx *Tx) Emit(e events.Event) {
	if tx.closed || e == nil {
		return
	}
	tx.events = append(tx.events, e)
}

// Events returns the events buffered so far.
func (tx *Tx) Events() []events.Event {
	return append([]events.Event(nil), tx.events...)
}

// Pending reports the number of staged writes.
func (tx *Tx) Pending() int { return len(tx.order) }

// Commit writes every staged change as one atomic batch and then hands the
// buffered events to emitter.
func (tx *Tx) Commit(emitter events.Emitter) error {
	if tx.closed {
		return ErrTxClosed
	}
	batch := new(storage.Batch)
	for _, k := range tx.order {
		value := tx.writes[k]
		if value == nil {
			batch.Delete([]byte(k))
			continue
		}
		batch.Put([]byte(k), value)
	}
	if err := tx.mgr.db.Write(batch); err != nil {
		return fmt.Errorf("state: commit: %w", err)
	}
	tx.closed = true
	if emitter != nil {
		for _, e := range tx.events {
			emitter.Emit(e)
		}
	}
	tx.events = nil
	return nil
}

// Discard drops all staged writes and events. It is safe to call after Commit.
func (tx *Tx) Discard() {
	tx.closed = true
	tx.writes = nil
	tx.order = nil
	tx.events = nil
}
