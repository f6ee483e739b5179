package scheduler

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/vibast-solutions/ms-go-billing-ledger/app/factory"
	"github.com/vibast-solutions/ms-go-billing-ledger/app/storage"
)

// Executor is the ledger surface the dispatcher delivers calls to.
type Executor interface {
	ExecutePayment(ctx context.Context, subID uint64) error
}

// Dispatcher is the host-runtime side of the deferred-call contract: it polls
// the queue and invokes due entry points at or after their requested time.
// Delivery is at-least-once; exact timing is best effort.
type Dispatcher struct {
	queue     *Queue
	store     storage.Backend
	executor  Executor
	interval  time.Duration
	batchSize int
	now       func() uint64
	logger    logrus.FieldLogger
}

func NewDispatcher(queue *Queue, store storage.Backend, executor Executor, interval time.Duration, batchSize int) *Dispatcher {
	return &Dispatcher{
		queue:     queue,
		store:     store,
		executor:  executor,
		interval:  interval,
		batchSize: batchSize,
		now:       func() uint64 { return uint64(time.Now().UnixMilli()) },
		logger:    factory.NewModuleLogger("dispatcher"),
	}
}

// Run polls until ctx is cancelled.
func (d *Dispatcher) Run(ctx context.Context) {
	ticker := time.NewTicker(d.interval)
	defer ticker.Stop()

	d.logger.WithField("interval", d.interval.String()).Info("Dispatcher started")
	for {
		select {
		case <-ctx.Done():
			d.logger.Info("Dispatcher stopped")
			return
		case <-ticker.C:
			if err := d.Tick(ctx); err != nil {
				d.logger.WithError(err).Error("dispatch_pass_failed")
			}
		}
	}
}

// Tick runs one delivery pass. Exported so the dispatch command and the tests
// can drive passes directly.
func (d *Dispatcher) Tick(ctx context.Context) error {
	now := d.now()
	due, err := d.queue.Due(ctx, d.store, now, d.batchSize)
	if err != nil {
		return err
	}

	for _, call := range due {
		execErr := d.deliver(ctx, call)
		if execErr != nil {
			d.logger.WithError(execErr).
				WithField("call_id", call.ID).
				WithField("subscription_id", call.SubscriptionID).
				Error("deferred_call_failed")
		}
		if err := d.queue.MarkDelivered(ctx, d.store, call, d.now(), execErr); err != nil {
			return err
		}
	}
	return nil
}

func (d *Dispatcher) deliver(ctx context.Context, call *DeferredCall) error {
	switch call.EntryPoint {
	case EntryPointExecutePayment:
		return d.executor.ExecutePayment(ctx, call.SubscriptionID)
	default:
		d.logger.WithField("entry_point", call.EntryPoint).Warn("unknown_entry_point")
		return nil
	}
}

// SetNowFunc overrides the dispatcher clock. Test hook.
func (d *Dispatcher) SetNowFunc(now func() uint64) {
	d.now = now
}
