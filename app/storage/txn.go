package storage

import "context"

// Txn is a write-buffered view over a Backend. Reads see staged writes first
// and fall through to the backend; Set only stages. Commit applies every
// staged write as one atomic batch. Discarding a Txn (not committing) leaves
// the backend untouched, which is what gives each ledger entry point its
// all-or-nothing semantics.
type Txn struct {
	backend Backend
	staged  map[string][]byte
	order   []string
}

func Begin(backend Backend) *Txn {
	return &Txn{
		backend: backend,
		staged:  make(map[string][]byte),
	}
}

func (t *Txn) Get(ctx context.Context, key []byte) ([]byte, error) {
	if value, ok := t.staged[string(key)]; ok {
		return append([]byte(nil), value...), nil
	}
	return t.backend.Get(ctx, key)
}

func (t *Txn) Has(ctx context.Context, key []byte) (bool, error) {
	if _, ok := t.staged[string(key)]; ok {
		return true, nil
	}
	return t.backend.Has(ctx, key)
}

func (t *Txn) Set(key, value []byte) {
	k := string(key)
	if _, ok := t.staged[k]; !ok {
		t.order = append(t.order, k)
	}
	t.staged[k] = append([]byte(nil), value...)
}

func (t *Txn) Commit(ctx context.Context) error {
	if len(t.order) == 0 {
		return nil
	}
	writes := make([]Write, 0, len(t.order))
	for _, k := range t.order {
		writes = append(writes, Write{Key: []byte(k), Value: t.staged[k]})
	}
	return t.backend.ApplyBatch(ctx, writes)
}
