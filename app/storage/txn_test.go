package storage

import (
	"context"
	"errors"
	"testing"
)

func TestTxnReadsSeeStagedWrites(t *testing.T) {
	backend := NewMemory()
	txn := Begin(backend)

	txn.Set([]byte("k"), []byte("staged"))

	value, err := txn.Get(context.Background(), []byte("k"))
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if string(value) != "staged" {
		t.Fatalf("expected staged value, got %q", value)
	}

	has, err := txn.Has(context.Background(), []byte("k"))
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if !has {
		t.Fatal("expected staged key to be visible")
	}
}

func TestTxnDiscardLeavesBackendUntouched(t *testing.T) {
	backend := NewMemory()
	txn := Begin(backend)
	txn.Set([]byte("k"), []byte("v"))

	// no commit
	if _, err := backend.Get(context.Background(), []byte("k")); !errors.Is(err, ErrKeyNotFound) {
		t.Fatalf("expected ErrKeyNotFound, got %v", err)
	}
}

func TestTxnCommitAppliesAllWrites(t *testing.T) {
	backend := NewMemory()
	txn := Begin(backend)
	txn.Set([]byte("a"), []byte("1"))
	txn.Set([]byte("b"), []byte("2"))
	txn.Set([]byte("a"), []byte("3")) // overwrite keeps last value

	if err := txn.Commit(context.Background()); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	value, err := backend.Get(context.Background(), []byte("a"))
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if string(value) != "3" {
		t.Fatalf("expected last staged value, got %q", value)
	}
	if backend.Len() != 2 {
		t.Fatalf("expected 2 keys, got %d", backend.Len())
	}
}

func TestTxnFallsThroughToBackend(t *testing.T) {
	backend := NewMemory()
	if err := backend.ApplyBatch(context.Background(), []Write{{Key: []byte("k"), Value: []byte("v")}}); err != nil {
		t.Fatalf("seed failed: %v", err)
	}

	txn := Begin(backend)
	value, err := txn.Get(context.Background(), []byte("k"))
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if string(value) != "v" {
		t.Fatalf("expected backend value, got %q", value)
	}
}

func TestTxnEmptyCommitIsNoop(t *testing.T) {
	backend := NewMemory()
	if err := Begin(backend).Commit(context.Background()); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if backend.Len() != 0 {
		t.Fatalf("expected empty backend, got %d keys", backend.Len())
	}
}
