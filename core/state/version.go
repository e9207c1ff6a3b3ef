package state

import (
	"errors"
	"fmt"
	"math"
)

// SchemaVersion identifies the on-disk record layout of the gate. Increment it
// whenever a stored record changes shape.
const SchemaVersion uint32 = 1

var (
	schemaVersionKey = []byte("state/version")
	// ErrSchemaMismatch indicates the stored schema version does not match
	// the version supported by the current binary.
	ErrSchemaMismatch = errors.New("state: schema version mismatch")
)

// SchemaVersion returns the stored schema version and whether it was present.
func (m *Manager) SchemaVersion() (uint32, bool, error) {
	var stored uint64
	ok, err := m.KVGet(schemaVersionKey, &stored)
	if err != nil {
		return 0, false, err
	}
	if !ok {
		return 0, false, nil
	}
	if stored > uint64(math.MaxUint32) {
		return 0, false, fmt.Errorf("state: schema version overflow: %d", stored)
	}
	return uint32(stored), true, nil
}

// EnsureSchema stamps an empty database with SchemaVersion and rejects
// databases written by a different layout unless allowMigrate is set.
func (m *Manager) EnsureSchema(allowMigrate bool) error {
	version, ok, err := m.SchemaVersion()
	if err != nil {
		return err
	}
	if !ok {
		tx := m.Begin()
		if err := tx.KVPut(schemaVersionKey, uint64(SchemaVersion)); err != nil {
			tx.Discard()
			return err
		}
		return tx.Commit(nil)
	}
	if version == SchemaVersion || allowMigrate {
		return nil
	}
	return fmt.Errorf("%w: on-disk=%d expected=%d", ErrSchemaMismatch, version, SchemaVersion)
}
