package types

import (
	"errors"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
)

// CallerHeader carries the address the wallet bridge submits a call under.
const CallerHeader = "X-Caller-Address"

func callerFromContext(ctx echo.Context) string {
	return strings.TrimSpace(ctx.Request().Header.Get(CallerHeader))
}

func idFromParam(ctx echo.Context, name string) (uint64, error) {
	return strconv.ParseUint(ctx.Param(name), 10, 64)
}

type CreatePlanRequest struct {
	Caller   string `json:"-"`
	Price    uint64 `json:"price"`
	Interval uint64 `json:"interval"`
	Token    string `json:"token"`
}

func NewCreatePlanRequestFromContext(ctx echo.Context) (*CreatePlanRequest, error) {
	var body CreatePlanRequest
	if err := ctx.Bind(&body); err != nil {
		return nil, err
	}
	body.Caller = callerFromContext(ctx)
	body.Token = strings.TrimSpace(body.Token)
	return &body, nil
}

func (r *CreatePlanRequest) Validate() error {
	if r.Caller == "" {
		return errors.New("X-Caller-Address header is required")
	}
	return nil
}

type DeactivatePlanRequest struct {
	Caller string
	PlanID uint64
}

func NewDeactivatePlanRequestFromContext(ctx echo.Context) (*DeactivatePlanRequest, error) {
	id, err := idFromParam(ctx, "id")
	if err != nil {
		return nil, err
	}
	return &DeactivatePlanRequest{Caller: callerFromContext(ctx), PlanID: id}, nil
}

func (r *DeactivatePlanRequest) Validate() error {
	if r.Caller == "" {
		return errors.New("X-Caller-Address header is required")
	}
	if r.PlanID == 0 {
		return errors.New("invalid plan id")
	}
	return nil
}

type GetPlanRequest struct {
	PlanID uint64
}

func NewGetPlanRequestFromContext(ctx echo.Context) (*GetPlanRequest, error) {
	id, err := idFromParam(ctx, "id")
	if err != nil {
		return nil, err
	}
	return &GetPlanRequest{PlanID: id}, nil
}

func (r *GetPlanRequest) Validate() error {
	if r.PlanID == 0 {
		return errors.New("invalid plan id")
	}
	return nil
}

type SubscribeRequest struct {
	Caller string
	PlanID uint64
}

func NewSubscribeRequestFromContext(ctx echo.Context) (*SubscribeRequest, error) {
	id, err := idFromParam(ctx, "id")
	if err != nil {
		return nil, err
	}
	return &SubscribeRequest{Caller: callerFromContext(ctx), PlanID: id}, nil
}

func (r *SubscribeRequest) Validate() error {
	if r.Caller == "" {
		return errors.New("X-Caller-Address header is required")
	}
	if r.PlanID == 0 {
		return errors.New("invalid plan id")
	}
	return nil
}

type GetSubscriptionRequest struct {
	SubscriptionID uint64
}

func NewGetSubscriptionRequestFromContext(ctx echo.Context) (*GetSubscriptionRequest, error) {
	id, err := idFromParam(ctx, "id")
	if err != nil {
		return nil, err
	}
	return &GetSubscriptionRequest{SubscriptionID: id}, nil
}

func (r *GetSubscriptionRequest) Validate() error {
	if r.SubscriptionID == 0 {
		return errors.New("invalid subscription id")
	}
	return nil
}

type CancelSubscriptionRequest struct {
	Caller         string
	SubscriptionID uint64
}

func NewCancelSubscriptionRequestFromContext(ctx echo.Context) (*CancelSubscriptionRequest, error) {
	id, err := idFromParam(ctx, "id")
	if err != nil {
		return nil, err
	}
	return &CancelSubscriptionRequest{Caller: callerFromContext(ctx), SubscriptionID: id}, nil
}

func (r *CancelSubscriptionRequest) Validate() error {
	if r.Caller == "" {
		return errors.New("X-Caller-Address header is required")
	}
	if r.SubscriptionID == 0 {
		return errors.New("invalid subscription id")
	}
	return nil
}

type AccountRequest struct {
	Address string
}

func NewAccountRequestFromContext(ctx echo.Context) (*AccountRequest, error) {
	return &AccountRequest{Address: strings.TrimSpace(ctx.Param("address"))}, nil
}

func (r *AccountRequest) Validate() error {
	if r.Address == "" {
		return errors.New("invalid address")
	}
	return nil
}

type FaucetRequest struct {
	Address string `json:"address"`
	Amount  uint64 `json:"amount"`
}

func NewFaucetRequestFromContext(ctx echo.Context) (*FaucetRequest, error) {
	var body FaucetRequest
	if err := ctx.Bind(&body); err != nil {
		return nil, err
	}
	body.Address = strings.TrimSpace(body.Address)
	return &body, nil
}

func (r *FaucetRequest) Validate() error {
	if r.Address == "" {
		return errors.New("address is required")
	}
	if r.Amount == 0 {
		return errors.New("amount must be positive")
	}
	return nil
}
