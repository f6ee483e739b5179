package ledger

import (
	"fmt"
	"sync"

	"github.com/sirupsen/logrus"
	"github.com/vibast-solutions/ms-go-billing-ledger/app/entity"
	"github.com/vibast-solutions/ms-go-billing-ledger/app/factory"
)

// Sink receives the colon-delimited audit events the ledger emits. Events for
// a call are flushed only after the call's writes have committed.
type Sink interface {
	Emit(event string)
}

func PlanCreatedEvent(p *entity.Plan) string {
	return fmt.Sprintf("PlanCreated:%d:%s:%d:%d:%s", p.ID, p.Creator, p.Price, p.Interval, p.Token)
}

func PlanDeactivatedEvent(planID uint64, caller string) string {
	return fmt.Sprintf("PlanDeactivated:%d:%s", planID, caller)
}

func SubscriptionCreatedEvent(s *entity.Subscription) string {
	return fmt.Sprintf("SubscriptionCreated:%d:%d:%s:%d", s.ID, s.PlanID, s.Subscriber, s.NextPaymentTime)
}

func PaymentExecutedEvent(subID, price, timestamp uint64) string {
	return fmt.Sprintf("PaymentExecuted:%d:%d:%d", subID, price, timestamp)
}

func SubscriptionCancelledEvent(subID uint64, caller string) string {
	return fmt.Sprintf("SubscriptionCancelled:%d:%s", subID, caller)
}

// LogSink writes events to the service log.
type LogSink struct {
	logger logrus.FieldLogger
}

func NewLogSink() *LogSink {
	return &LogSink{logger: factory.NewModuleLogger("ledger-events")}
}

func (s *LogSink) Emit(event string) {
	s.logger.WithField("event", event).Info("ledger_event")
}

// Recorder keeps the most recent events in memory. It backs the /events
// endpoint and the tests.
type Recorder struct {
	mu       sync.Mutex
	events   []string
	capacity int
}

func NewRecorder(capacity int) *Recorder {
	if capacity <= 0 {
		capacity = 1024
	}
	return &Recorder{capacity: capacity}
}

func (r *Recorder) Emit(event string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
	if len(r.events) > r.capacity {
		r.events = r.events[len(r.events)-r.capacity:]
	}
}

func (r *Recorder) Events() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.events...)
}

// MultiSink fans an event out to several sinks.
type MultiSink []Sink

func (m MultiSink) Emit(event string) {
	for _, s := range m {
		s.Emit(event)
	}
}
