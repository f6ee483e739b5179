package dto

type PlanResponse struct {
	ID       uint64 `json:"id"`
	Creator  string `json:"creator"`
	Price    uint64 `json:"price"`
	Interval uint64 `json:"interval"`
	Token    string `json:"token"`
	IsActive bool   `json:"isActive"`
}

type SubscriptionResponse struct {
	ID              uint64 `json:"id"`
	PlanID          uint64 `json:"planId"`
	Subscriber      string `json:"subscriber"`
	IsActive        bool   `json:"isActive"`
	NextPaymentTime uint64 `json:"nextPaymentTime"`
	CreatedAt       uint64 `json:"createdAt"`
	PaymentCount    uint64 `json:"paymentCount"`
}

type CreatePlanResponse struct {
	PlanID uint64 `json:"plan_id"`
}

type PlanEnvelopeResponse struct {
	Plan PlanResponse `json:"plan"`
}

type ListPlansResponse struct {
	Plans []PlanResponse `json:"plans"`
}

type SubscribeResponse struct {
	SubscriptionID uint64               `json:"subscription_id"`
	Subscription   SubscriptionResponse `json:"subscription"`
}

type SubscriptionEnvelopeResponse struct {
	Subscription SubscriptionResponse `json:"subscription"`
}

type ListSubscriptionsResponse struct {
	Subscriptions []SubscriptionResponse `json:"subscriptions"`
}

type CountsResponse struct {
	PlanCount         uint64 `json:"plan_count"`
	SubscriptionCount uint64 `json:"subscription_count"`
}

type BalanceResponse struct {
	Address string `json:"address"`
	Balance uint64 `json:"balance"`
}

type EventsResponse struct {
	Events []string `json:"events"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}

type HealthResponse struct {
	Status string `json:"status"`
}
