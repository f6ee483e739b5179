package storage

import (
	"context"
	"errors"
)

var ErrKeyNotFound = errors.New("storage: key not found")

// Write is a single staged key/value mutation.
type Write struct {
	Key   []byte
	Value []byte
}

// Reader is the read side of the flat byte-key namespace. Both Backend and
// Txn satisfy it, so read accessors can run against either.
type Reader interface {
	Get(ctx context.Context, key []byte) ([]byte, error)
	Has(ctx context.Context, key []byte) (bool, error)
}

// Backend is a flat key-value store. ApplyBatch must apply all writes
// atomically: a batch is either fully visible or not at all.
type Backend interface {
	Reader
	ApplyBatch(ctx context.Context, writes []Write) error
}
