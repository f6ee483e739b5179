package scheduler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/vibast-solutions/ms-go-billing-ledger/app/storage"
)

// EntryPointExecutePayment is the only entry point the ledger ever arms.
const EntryPointExecutePayment = "executePayment"

// DeferredCall is one armed invocation of a ledger entry point. Records stay
// in storage after delivery, flagged rather than deleted.
type DeferredCall struct {
	ID             uint64 `json:"id"`
	EntryPoint     string `json:"entryPoint"`
	SubscriptionID uint64 `json:"subscriptionId"`
	Coins          uint64 `json:"coins"`
	NotBefore      uint64 `json:"notBefore"` // ms since epoch
	Delivered      bool   `json:"delivered"`
	DeliveredAt    uint64 `json:"deliveredAt,omitempty"`
	LastError      string `json:"lastError,omitempty"`
}

// Queue is the deferred-call table in the shared billing namespace. Arm
// stages through the caller's transaction, so an armed call commits, or not,
// together with the state change that armed it.
type Queue struct{}

func NewQueue() *Queue {
	return &Queue{}
}

func (q *Queue) Arm(ctx context.Context, txn *storage.Txn, entryPoint string, subscriptionID, coins, notBefore uint64) error {
	count, err := storage.ReadCount(ctx, txn, storage.DeferredCallCountKey())
	if err != nil {
		return err
	}
	count++

	call := &DeferredCall{
		ID:             count,
		EntryPoint:     entryPoint,
		SubscriptionID: subscriptionID,
		Coins:          coins,
		NotBefore:      notBefore,
	}
	record, err := json.Marshal(call)
	if err != nil {
		return fmt.Errorf("encode deferred call %d: %w", count, err)
	}
	txn.Set(storage.DeferredCallKey(count), record)
	txn.Set(storage.DeferredCallCountKey(), storage.EncodeCount(count))

	return nil
}

// Due returns undelivered calls whose NotBefore has passed, in arming order,
// at most limit of them (0 means no limit). The scan starts at a persisted
// head, the id of the oldest possibly-undelivered call; each pass moves the
// head past the delivered prefix so the growing table does not slow the
// dispatcher down.
func (q *Queue) Due(ctx context.Context, store storage.Backend, now uint64, limit int) ([]*DeferredCall, error) {
	count, err := storage.ReadCount(ctx, store, storage.DeferredCallCountKey())
	if err != nil {
		return nil, err
	}
	head, err := storage.ReadCount(ctx, store, storage.DeferredCallHeadKey())
	if err != nil {
		return nil, err
	}
	if head == 0 {
		head = 1
	}

	var due []*DeferredCall
	newHead := head
	prefix := true
	for id := head; id <= count; id++ {
		call, err := q.load(ctx, store, id)
		if err != nil {
			return nil, err
		}
		if call.Delivered {
			if prefix {
				newHead = id + 1
			}
			continue
		}
		prefix = false
		if call.NotBefore > now {
			continue
		}
		due = append(due, call)
		if limit > 0 && len(due) >= limit {
			break
		}
	}

	if newHead != head {
		err := store.ApplyBatch(ctx, []storage.Write{
			{Key: storage.DeferredCallHeadKey(), Value: storage.EncodeCount(newHead)},
		})
		if err != nil {
			return nil, err
		}
	}
	return due, nil
}

// MarkDelivered flags a call after an execution attempt. The flag is written
// after the attempt, so a crash in between yields a redelivery; the ledger's
// no-op on inactive subscriptions absorbs it.
func (q *Queue) MarkDelivered(ctx context.Context, store storage.Backend, call *DeferredCall, deliveredAt uint64, execErr error) error {
	call.Delivered = true
	call.DeliveredAt = deliveredAt
	if execErr != nil {
		call.LastError = execErr.Error()
	}

	record, err := json.Marshal(call)
	if err != nil {
		return fmt.Errorf("encode deferred call %d: %w", call.ID, err)
	}
	return store.ApplyBatch(ctx, []storage.Write{{Key: storage.DeferredCallKey(call.ID), Value: record}})
}

func (q *Queue) load(ctx context.Context, r storage.Reader, id uint64) (*DeferredCall, error) {
	data, err := r.Get(ctx, storage.DeferredCallKey(id))
	if errors.Is(err, storage.ErrKeyNotFound) {
		return nil, fmt.Errorf("deferred call %d missing from storage", id)
	} else if err != nil {
		return nil, err
	}

	call := &DeferredCall{}
	if err := json.Unmarshal(data, call); err != nil {
		return nil, fmt.Errorf("decode deferred call %d: %w", id, err)
	}
	return call, nil
}
