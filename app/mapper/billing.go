package mapper

import (
	"github.com/vibast-solutions/ms-go-billing-ledger/app/dto"
	"github.com/vibast-solutions/ms-go-billing-ledger/app/entity"
)

func PlanToResponse(item *entity.Plan) dto.PlanResponse {
	return dto.PlanResponse{
		ID:       item.ID,
		Creator:  item.Creator,
		Price:    item.Price,
		Interval: item.Interval,
		Token:    item.Token,
		IsActive: item.IsActive,
	}
}

func PlansToResponse(items []*entity.Plan) []dto.PlanResponse {
	result := make([]dto.PlanResponse, 0, len(items))
	for _, item := range items {
		result = append(result, PlanToResponse(item))
	}
	return result
}

func SubscriptionToResponse(item *entity.Subscription) dto.SubscriptionResponse {
	return dto.SubscriptionResponse{
		ID:              item.ID,
		PlanID:          item.PlanID,
		Subscriber:      item.Subscriber,
		IsActive:        item.IsActive,
		NextPaymentTime: item.NextPaymentTime,
		CreatedAt:       item.CreatedAt,
		PaymentCount:    item.PaymentCount,
	}
}

func SubscriptionsToResponse(items []*entity.Subscription) []dto.SubscriptionResponse {
	result := make([]dto.SubscriptionResponse, 0, len(items))
	for _, item := range items {
		result = append(result, SubscriptionToResponse(item))
	}
	return result
}
