package storage

import (
	"context"
	"errors"
	"testing"

	"github.com/alicebob/miniredis/v2"
)

func setupRedisTest(t *testing.T) *Redis {
	t.Helper()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("failed to start miniredis: %v", err)
	}
	t.Cleanup(mr.Close)

	backend, err := NewRedis("redis://" + mr.Addr())
	if err != nil {
		t.Fatalf("failed to create redis backend: %v", err)
	}
	t.Cleanup(func() { _ = backend.Close() })

	return backend
}

func TestNewRedisRejectsBadURL(t *testing.T) {
	if _, err := NewRedis("not-a-url"); err == nil {
		t.Fatal("expected error for invalid URL")
	}
}

func TestRedisGetMissingKey(t *testing.T) {
	backend := setupRedisTest(t)
	if _, err := backend.Get(context.Background(), PlanCountKey()); !errors.Is(err, ErrKeyNotFound) {
		t.Fatalf("expected ErrKeyNotFound, got %v", err)
	}
}

func TestRedisApplyBatchAndReadBack(t *testing.T) {
	backend := setupRedisTest(t)

	writes := []Write{
		{Key: PlanCountKey(), Value: EncodeCount(1)},
		{Key: PlanKey(1), Value: []byte(`{"id":1}`)},
	}
	if err := backend.ApplyBatch(context.Background(), writes); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	n, err := ReadCount(context.Background(), backend, PlanCountKey())
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if n != 1 {
		t.Fatalf("expected count 1, got %d", n)
	}

	has, err := backend.Has(context.Background(), PlanKey(1))
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if !has {
		t.Fatal("expected plan_1 to exist")
	}
}

func TestRedisTxnCommit(t *testing.T) {
	backend := setupRedisTest(t)

	txn := Begin(backend)
	txn.Set(SubscriptionCountKey(), EncodeCount(3))
	if err := txn.Commit(context.Background()); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	n, err := ReadCount(context.Background(), backend, SubscriptionCountKey())
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if n != 3 {
		t.Fatalf("expected count 3, got %d", n)
	}
}
