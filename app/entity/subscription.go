package entity

// Subscription is one subscriber's enrollment in one plan, carrying its own
// billing cursor.
type Subscription struct {
	ID              uint64 `json:"id"`
	PlanID          uint64 `json:"planId"`
	Subscriber      string `json:"subscriber"`
	IsActive        bool   `json:"isActive"`
	NextPaymentTime uint64 `json:"nextPaymentTime"` // ms since epoch
	CreatedAt       uint64 `json:"createdAt"`
	// PaymentCount counts scheduled executions only. The immediate payment
	// taken at subscribe time is settled but not counted.
	PaymentCount uint64 `json:"paymentCount"`
}

func NewSubscription(id, planID uint64, subscriber string, nextPaymentTime, createdAt uint64) *Subscription {
	return &Subscription{
		ID:              id,
		PlanID:          planID,
		Subscriber:      subscriber,
		IsActive:        true,
		NextPaymentTime: nextPaymentTime,
		CreatedAt:       createdAt,
		PaymentCount:    0,
	}
}
