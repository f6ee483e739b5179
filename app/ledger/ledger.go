package ledger

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/vibast-solutions/ms-go-billing-ledger/app/entity"
	"github.com/vibast-solutions/ms-go-billing-ledger/app/factory"
	"github.com/vibast-solutions/ms-go-billing-ledger/app/scheduler"
	"github.com/vibast-solutions/ms-go-billing-ledger/app/storage"
)

// Clock supplies the current time in milliseconds since epoch.
type Clock interface {
	Now() uint64
}

type SystemClock struct{}

func (SystemClock) Now() uint64 {
	return uint64(time.Now().UnixMilli())
}

// Armer schedules a future invocation of a ledger entry point. The armed call
// is staged through the caller's transaction so it commits, or not, together
// with the payment that armed it.
type Armer interface {
	Arm(ctx context.Context, txn *storage.Txn, entryPoint string, subscriptionID, coins, notBefore uint64) error
}

// Settler moves native value between addresses inside the caller's
// transaction. Transfer must fail when the source balance is insufficient.
type Settler interface {
	Transfer(ctx context.Context, txn *storage.Txn, from, to string, amount uint64) error
}

// Ledger is the billing state machine. Every public entry point runs as one
// atomic unit: all storage writes are staged on a transaction and committed at
// the end, and events buffered during the call are emitted only after the
// commit succeeds. Mutating calls are serialized, so ids are assigned in
// strictly increasing commit order.
type Ledger struct {
	mu      sync.Mutex
	store   storage.Backend
	armer   Armer
	settler Settler
	clock   Clock
	events  Sink
	logger  logrus.FieldLogger
}

func New(store storage.Backend, armer Armer, settler Settler, clock Clock, events Sink) *Ledger {
	return &Ledger{
		store:   store,
		armer:   armer,
		settler: settler,
		clock:   clock,
		events:  events,
		logger:  factory.NewModuleLogger("ledger"),
	}
}

// CreatePlan registers a new plan owned by caller and returns its id. Any
// account may create a plan; price and interval are taken as given, a zero
// interval included.
func (l *Ledger) CreatePlan(ctx context.Context, caller string, price, interval uint64, token string) (uint64, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	txn := storage.Begin(l.store)

	planCount, err := storage.ReadCount(ctx, txn, storage.PlanCountKey())
	if err != nil {
		return 0, err
	}
	planCount++

	plan := entity.NewPlan(planCount, caller, price, interval, token)
	record, err := encodePlan(plan)
	if err != nil {
		return 0, err
	}
	txn.Set(storage.PlanKey(planCount), record)
	txn.Set(storage.PlanCountKey(), storage.EncodeCount(planCount))

	if err := txn.Commit(ctx); err != nil {
		return 0, err
	}
	l.events.Emit(PlanCreatedEvent(plan))

	return planCount, nil
}

// DeactivatePlan flips a plan inactive. Only the plan's creator may do it.
// Already-inactive plans are left alone. Active subscriptions to the plan are
// not touched here; each one transitions on its next scheduled execution.
func (l *Ledger) DeactivatePlan(ctx context.Context, caller string, planID uint64) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	txn := storage.Begin(l.store)

	plan, err := l.loadPlan(ctx, txn, planID)
	if err != nil {
		return err
	}
	if plan.Creator != caller {
		return fmt.Errorf("%w: only the creator may deactivate plan %d", ErrUnauthorized, planID)
	}
	if !plan.IsActive {
		return nil
	}

	plan.IsActive = false
	record, err := encodePlan(plan)
	if err != nil {
		return err
	}
	txn.Set(storage.PlanKey(planID), record)

	if err := txn.Commit(ctx); err != nil {
		return err
	}
	l.events.Emit(PlanDeactivatedEvent(planID, caller))

	return nil
}

// Subscribe enrolls caller in a plan. A successful return means the first
// cycle has been paid and the next execution is armed; any failure, the
// settlement step included, discards every staged write.
func (l *Ledger) Subscribe(ctx context.Context, caller string, planID uint64) (uint64, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	txn := storage.Begin(l.store)

	plan, err := l.loadPlan(ctx, txn, planID)
	if err != nil {
		return 0, err
	}
	if !plan.IsActive {
		return 0, fmt.Errorf("%w: plan %d is not active", ErrInvalidState, planID)
	}

	subCount, err := storage.ReadCount(ctx, txn, storage.SubscriptionCountKey())
	if err != nil {
		return 0, err
	}
	subCount++

	now := l.clock.Now()
	sub := entity.NewSubscription(subCount, planID, caller, now+plan.Interval, now)
	record, err := encodeSubscription(sub)
	if err != nil {
		return 0, err
	}
	txn.Set(storage.SubscriptionKey(subCount), record)
	txn.Set(storage.SubscriptionCountKey(), storage.EncodeCount(subCount))

	if err := l.appendUserSubscription(ctx, txn, caller, subCount); err != nil {
		return 0, err
	}

	if err := l.armer.Arm(ctx, txn, scheduler.EntryPointExecutePayment, subCount, 0, sub.NextPaymentTime); err != nil {
		return 0, err
	}

	// First payment is settled immediately but does not count towards
	// PaymentCount.
	if err := l.processPayment(ctx, txn, plan, caller); err != nil {
		return 0, err
	}

	if err := txn.Commit(ctx); err != nil {
		return 0, err
	}
	l.events.Emit(SubscriptionCreatedEvent(sub))

	return subCount, nil
}

// ExecutePayment settles one billing cycle and re-arms the next. It is
// invoked by the dispatcher, never by end users. Inactive subscriptions make
// it an idempotent no-op, which is what keeps redundant or late deliveries
// safe.
func (l *Ledger) ExecutePayment(ctx context.Context, subID uint64) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	txn := storage.Begin(l.store)

	sub, err := l.loadSubscription(ctx, txn, subID)
	if err != nil {
		return err
	}
	if !sub.IsActive {
		return nil
	}

	plan, err := l.loadPlan(ctx, txn, sub.PlanID)
	if err != nil {
		return err
	}
	if !plan.IsActive {
		// Terminal transition, not an error: the plan went away under
		// the subscription. Same state change as a cancellation, no
		// charge, no reschedule.
		return l.deactivateSubscription(ctx, txn, sub, plan.Creator)
	}

	if err := l.processPayment(ctx, txn, plan, sub.Subscriber); err != nil {
		return err
	}

	now := l.clock.Now()
	sub.NextPaymentTime = now + plan.Interval
	sub.PaymentCount++
	record, err := encodeSubscription(sub)
	if err != nil {
		return err
	}
	txn.Set(storage.SubscriptionKey(subID), record)

	if err := l.armer.Arm(ctx, txn, scheduler.EntryPointExecutePayment, subID, 0, sub.NextPaymentTime); err != nil {
		return err
	}

	if err := txn.Commit(ctx); err != nil {
		return err
	}
	l.events.Emit(PaymentExecutedEvent(subID, plan.Price, now))

	return nil
}

// CancelSubscription flips a subscription inactive. Allowed for the
// subscriber and for the plan's creator. The already-armed execution is not
// unscheduled; it no-ops on delivery.
func (l *Ledger) CancelSubscription(ctx context.Context, caller string, subID uint64) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	txn := storage.Begin(l.store)

	sub, err := l.loadSubscription(ctx, txn, subID)
	if err != nil {
		return err
	}
	plan, err := l.loadPlan(ctx, txn, sub.PlanID)
	if err != nil {
		return err
	}
	if caller != sub.Subscriber && caller != plan.Creator {
		return fmt.Errorf("%w: caller may not cancel subscription %d", ErrUnauthorized, subID)
	}

	return l.deactivateSubscription(ctx, txn, sub, caller)
}

func (l *Ledger) GetPlan(ctx context.Context, planID uint64) (*entity.Plan, error) {
	return l.loadPlan(ctx, l.store, planID)
}

func (l *Ledger) GetSubscription(ctx context.Context, subID uint64) (*entity.Subscription, error) {
	return l.loadSubscription(ctx, l.store, subID)
}

// ListPlans walks the plan table in id order.
func (l *Ledger) ListPlans(ctx context.Context) ([]*entity.Plan, error) {
	count, err := storage.ReadCount(ctx, l.store, storage.PlanCountKey())
	if err != nil {
		return nil, err
	}

	plans := make([]*entity.Plan, 0, count)
	for id := uint64(1); id <= count; id++ {
		plan, err := l.loadPlan(ctx, l.store, id)
		if err != nil {
			return nil, err
		}
		plans = append(plans, plan)
	}
	return plans, nil
}

// GetUserSubscriptions returns every subscription the address ever created,
// cancelled ones included.
func (l *Ledger) GetUserSubscriptions(ctx context.Context, address string) ([]*entity.Subscription, error) {
	data, err := l.store.Get(ctx, storage.UserSubscriptionsKey(address))
	if errors.Is(err, storage.ErrKeyNotFound) {
		return []*entity.Subscription{}, nil
	} else if err != nil {
		return nil, err
	}

	ids, err := decodeIDList(data)
	if err != nil {
		return nil, err
	}

	subs := make([]*entity.Subscription, 0, len(ids))
	for _, id := range ids {
		sub, err := l.loadSubscription(ctx, l.store, id)
		if err != nil {
			return nil, err
		}
		subs = append(subs, sub)
	}
	return subs, nil
}

func (l *Ledger) PlanCount(ctx context.Context) (uint64, error) {
	return storage.ReadCount(ctx, l.store, storage.PlanCountKey())
}

func (l *Ledger) SubscriptionCount(ctx context.Context) (uint64, error) {
	return storage.ReadCount(ctx, l.store, storage.SubscriptionCountKey())
}

func (l *Ledger) loadPlan(ctx context.Context, r storage.Reader, planID uint64) (*entity.Plan, error) {
	data, err := r.Get(ctx, storage.PlanKey(planID))
	if errors.Is(err, storage.ErrKeyNotFound) {
		return nil, fmt.Errorf("%w: plan %d", ErrNotFound, planID)
	} else if err != nil {
		return nil, err
	}
	return decodePlan(data)
}

func (l *Ledger) loadSubscription(ctx context.Context, r storage.Reader, subID uint64) (*entity.Subscription, error) {
	data, err := r.Get(ctx, storage.SubscriptionKey(subID))
	if errors.Is(err, storage.ErrKeyNotFound) {
		return nil, fmt.Errorf("%w: subscription %d", ErrNotFound, subID)
	} else if err != nil {
		return nil, err
	}
	return decodeSubscription(data)
}

// deactivateSubscription is the shared terminal transition behind
// CancelSubscription and the plan-inactive path of ExecutePayment. It commits
// the transaction it is handed.
func (l *Ledger) deactivateSubscription(ctx context.Context, txn *storage.Txn, sub *entity.Subscription, actor string) error {
	sub.IsActive = false
	record, err := encodeSubscription(sub)
	if err != nil {
		return err
	}
	txn.Set(storage.SubscriptionKey(sub.ID), record)

	if err := txn.Commit(ctx); err != nil {
		return err
	}
	l.events.Emit(SubscriptionCancelledEvent(sub.ID, actor))

	return nil
}

// processPayment settles one cycle from subscriber to the plan's creator.
// Only the native asset is supported; plans denominated in anything else can
// be created and subscribed to, but every charge fails here.
func (l *Ledger) processPayment(ctx context.Context, txn *storage.Txn, plan *entity.Plan, subscriber string) error {
	if !entity.IsNativeToken(plan.Token) {
		return fmt.Errorf("%w: settlement in token %q", ErrUnimplemented, plan.Token)
	}
	return l.settler.Transfer(ctx, txn, subscriber, plan.Creator, plan.Price)
}

func (l *Ledger) appendUserSubscription(ctx context.Context, txn *storage.Txn, address string, subID uint64) error {
	key := storage.UserSubscriptionsKey(address)

	var ids []uint64
	data, err := txn.Get(ctx, key)
	if err == nil {
		if ids, err = decodeIDList(data); err != nil {
			return err
		}
	} else if !errors.Is(err, storage.ErrKeyNotFound) {
		return err
	}

	ids = append(ids, subID)
	encoded, err := encodeIDList(ids)
	if err != nil {
		return err
	}
	txn.Set(key, encoded)
	return nil
}
