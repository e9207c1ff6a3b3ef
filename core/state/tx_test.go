package state

import (
	"errors"
	"testing"

	"safepump/core/events"
	"safepump/storage"
)

type testEvent string

func (e testEvent) EventType() string { return string(e) }

func TestTxCommitAppliesWritesAndEvents(t *testing.T) {
	db := storage.NewMemDB()
	mgr := NewManager(db)

	tx := mgr.Begin()
	if err := tx.KVPut([]byte("counter"), uint64(7)); err != nil {
		t.Fatalf("put: %v", err)
	}
	tx.Emit(testEvent("counter.set"))

	var staged uint64
	if ok, err := tx.KVGet([]byte("counter"), &staged); err != nil || !ok || staged != 7 {
		t.Fatalf("expected staged read 7, got %d ok=%v err=%v", staged, ok, err)
	}
	if ok, _ := mgr.KVGet([]byte("counter"), nil); ok {
		t.Fatalf("staged write leaked into committed state")
	}

	recorder := &events.Recorder{}
	if len(recorder.Events()) != 0 {
		t.Fatalf("events emitted before commit")
	}
	if err := tx.Commit(recorder); err != nil {
		t.Fatalf("commit: %v", err)
	}
	var committed uint64
	if ok, err := mgr.KVGet([]byte("counter"), &committed); err != nil || !ok || committed != 7 {
		t.Fatalf("expected committed 7, got %d ok=%v err=%v", committed, ok, err)
	}
	if types := recorder.Types(); len(types) != 1 || types[0] != "counter.set" {
		t.Fatalf("unexpected events: %v", types)
	}
	if err := tx.KVPut([]byte("counter"), uint64(8)); !errors.Is(err, ErrTxClosed) {
		t.Fatalf("expected ErrTxClosed, got %v", err)
	}
}

func TestTxDiscardDropsEverything(t *testing.T) {
	mgr := NewManager(storage.NewMemDB())
	seed := mgr.Begin()
	if err := seed.KVPut([]byte("k"), uint64(1)); err != nil {
		t.Fatalf("put: %v", err)
	}
	if err := seed.Commit(nil); err != nil {
		t.Fatalf("commit: %v", err)
	}

	tx := mgr.Begin()
	if err := tx.KVPut([]byte("k"), uint64(2)); err != nil {
		t.Fatalf("put: %v", err)
	}
	if err := tx.KVDelete([]byte("k")); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if ok, _ := tx.KVGet([]byte("k"), nil); ok {
		t.Fatalf("staged delete not visible inside tx")
	}
	recorder := &events.Recorder{}
	tx.Emit(testEvent("dropped"))
	tx.Discard()
	if err := tx.Commit(recorder); !errors.Is(err, ErrTxClosed) {
		t.Fatalf("expected ErrTxClosed, got %v", err)
	}
	if len(recorder.Events()) != 0 {
		t.Fatalf("discarded events were emitted")
	}

	var value uint64
	if ok, err := mgr.KVGet([]byte("k"), &value); err != nil || !ok || value != 1 {
		t.Fatalf("expected original value 1, got %d ok=%v err=%v", value, ok, err)
	}
}

func TestEnsureSchema(t *testing.T) {
	mgr := NewManager(storage.NewMemDB())
	if err := mgr.EnsureSchema(false); err != nil {
		t.Fatalf("stamp schema: %v", err)
	}
	version, ok, err := mgr.SchemaVersion()
	if err != nil || !ok || version != SchemaVersion {
		t.Fatalf("unexpected schema %d ok=%v err=%v", version, ok, err)
	}

	tx := mgr.Begin()
	if err := tx.KVPut(schemaVersionKey, uint64(SchemaVersion+1)); err != nil {
		t.Fatalf("put: %v", err)
	}
	if err := tx.Commit(nil); err != nil {
		t.Fatalf("commit: %v", err)
	}
	if err := mgr.EnsureSchema(false); !errors.Is(err, ErrSchemaMismatch) {
		t.Fatalf("expected ErrSchemaMismatch, got %v", err)
	}
	if err := mgr.EnsureSchema(true); err != nil {
		t.Fatalf("migration override should pass: %v", err)
	}
}
