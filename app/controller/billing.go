package controller

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
	"github.com/vibast-solutions/ms-go-billing-ledger/app/dto"
	"github.com/vibast-solutions/ms-go-billing-ledger/app/factory"
	"github.com/vibast-solutions/ms-go-billing-ledger/app/ledger"
	"github.com/vibast-solutions/ms-go-billing-ledger/app/mapper"
	"github.com/vibast-solutions/ms-go-billing-ledger/app/settlement"
	"github.com/vibast-solutions/ms-go-billing-ledger/app/storage"
	"github.com/vibast-solutions/ms-go-billing-ledger/app/types"
)

// BillingController exposes the ledger entry points over HTTP. It is a thin
// submission layer: the caller address comes from the X-Caller-Address header
// and all rules live in the ledger. executePayment is deliberately not
// routed; only the dispatcher delivers it.
type BillingController struct {
	ledger        *ledger.Ledger
	settler       *settlement.Native
	store         storage.Backend
	events        *ledger.Recorder
	faucetEnabled bool
	logger        logrus.FieldLogger
}

func NewBillingController(
	l *ledger.Ledger,
	settler *settlement.Native,
	store storage.Backend,
	events *ledger.Recorder,
	faucetEnabled bool,
) *BillingController {
	return &BillingController{
		ledger:        l,
		settler:       settler,
		store:         store,
		events:        events,
		faucetEnabled: faucetEnabled,
		logger:        factory.NewModuleLogger("billing-controller"),
	}
}

func (c *BillingController) Register(e *echo.Echo) {
	e.GET("/health", c.Health)

	plans := e.Group("/plans")
	plans.POST("", c.CreatePlan)
	plans.GET("", c.ListPlans)
	plans.GET("/:id", c.GetPlan)
	plans.POST("/:id/deactivate", c.DeactivatePlan)
	plans.POST("/:id/subscribe", c.Subscribe)

	subscriptions := e.Group("/subscriptions")
	subscriptions.GET("/:id", c.GetSubscription)
	subscriptions.POST("/:id/cancel", c.CancelSubscription)

	accounts := e.Group("/accounts")
	accounts.GET("/:address/subscriptions", c.UserSubscriptions)
	accounts.GET("/:address/balance", c.Balance)

	e.GET("/counts", c.Counts)
	e.GET("/events", c.Events)

	if c.faucetEnabled {
		e.POST("/faucet", c.Faucet)
	}
}

func (c *BillingController) Health(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, &dto.HealthResponse{Status: "ok"})
}

func (c *BillingController) CreatePlan(ctx echo.Context) error {
	req, err := types.NewCreatePlanRequestFromContext(ctx)
	if err != nil {
		return c.writeError(ctx, http.StatusBadRequest, "invalid request body")
	}
	if err := req.Validate(); err != nil {
		return c.writeError(ctx, http.StatusBadRequest, err.Error())
	}

	planID, err := c.ledger.CreatePlan(ctx.Request().Context(), req.Caller, req.Price, req.Interval, req.Token)
	if err != nil {
		return c.writeLedgerError(ctx, err, "Create plan failed")
	}

	return ctx.JSON(http.StatusCreated, &dto.CreatePlanResponse{PlanID: planID})
}

func (c *BillingController) ListPlans(ctx echo.Context) error {
	items, err := c.ledger.ListPlans(ctx.Request().Context())
	if err != nil {
		return c.writeLedgerError(ctx, err, "List plans failed")
	}
	return ctx.JSON(http.StatusOK, &dto.ListPlansResponse{Plans: mapper.PlansToResponse(items)})
}

func (c *BillingController) GetPlan(ctx echo.Context) error {
	req, err := types.NewGetPlanRequestFromContext(ctx)
	if err != nil {
		return c.writeError(ctx, http.StatusBadRequest, "invalid request")
	}
	if err := req.Validate(); err != nil {
		return c.writeError(ctx, http.StatusBadRequest, err.Error())
	}

	item, err := c.ledger.GetPlan(ctx.Request().Context(), req.PlanID)
	if err != nil {
		return c.writeLedgerError(ctx, err, "Get plan failed")
	}
	return ctx.JSON(http.StatusOK, &dto.PlanEnvelopeResponse{Plan: mapper.PlanToResponse(item)})
}

func (c *BillingController) DeactivatePlan(ctx echo.Context) error {
	req, err := types.NewDeactivatePlanRequestFromContext(ctx)
	if err != nil {
		return c.writeError(ctx, http.StatusBadRequest, "invalid request")
	}
	if err := req.Validate(); err != nil {
		return c.writeError(ctx, http.StatusBadRequest, err.Error())
	}

	if err := c.ledger.DeactivatePlan(ctx.Request().Context(), req.Caller, req.PlanID); err != nil {
		return c.writeLedgerError(ctx, err, "Deactivate plan failed")
	}
	return ctx.JSON(http.StatusOK, &dto.MessageResponse{Message: "plan deactivated"})
}

func (c *BillingController) Subscribe(ctx echo.Context) error {
	req, err := types.NewSubscribeRequestFromContext(ctx)
	if err != nil {
		return c.writeError(ctx, http.StatusBadRequest, "invalid request")
	}
	if err := req.Validate(); err != nil {
		return c.writeError(ctx, http.StatusBadRequest, err.Error())
	}

	subID, err := c.ledger.Subscribe(ctx.Request().Context(), req.Caller, req.PlanID)
	if err != nil {
		return c.writeLedgerError(ctx, err, "Subscribe failed")
	}

	item, err := c.ledger.GetSubscription(ctx.Request().Context(), subID)
	if err != nil {
		return c.writeLedgerError(ctx, err, "Load subscription failed")
	}
	return ctx.JSON(http.StatusCreated, &dto.SubscribeResponse{
		SubscriptionID: subID,
		Subscription:   mapper.SubscriptionToResponse(item),
	})
}

func (c *BillingController) GetSubscription(ctx echo.Context) error {
	req, err := types.NewGetSubscriptionRequestFromContext(ctx)
	if err != nil {
		return c.writeError(ctx, http.StatusBadRequest, "invalid request")
	}
	if err := req.Validate(); err != nil {
		return c.writeError(ctx, http.StatusBadRequest, err.Error())
	}

	item, err := c.ledger.GetSubscription(ctx.Request().Context(), req.SubscriptionID)
	if err != nil {
		return c.writeLedgerError(ctx, err, "Get subscription failed")
	}
	return ctx.JSON(http.StatusOK, &dto.SubscriptionEnvelopeResponse{Subscription: mapper.SubscriptionToResponse(item)})
}

func (c *BillingController) CancelSubscription(ctx echo.Context) error {
	req, err := types.NewCancelSubscriptionRequestFromContext(ctx)
	if err != nil {
		return c.writeError(ctx, http.StatusBadRequest, "invalid request")
	}
	if err := req.Validate(); err != nil {
		return c.writeError(ctx, http.StatusBadRequest, err.Error())
	}

	if err := c.ledger.CancelSubscription(ctx.Request().Context(), req.Caller, req.SubscriptionID); err != nil {
		return c.writeLedgerError(ctx, err, "Cancel subscription failed")
	}
	return ctx.JSON(http.StatusOK, &dto.MessageResponse{Message: "subscription cancelled"})
}

func (c *BillingController) UserSubscriptions(ctx echo.Context) error {
	req, err := types.NewAccountRequestFromContext(ctx)
	if err != nil {
		return c.writeError(ctx, http.StatusBadRequest, "invalid request")
	}
	if err := req.Validate(); err != nil {
		return c.writeError(ctx, http.StatusBadRequest, err.Error())
	}

	items, err := c.ledger.GetUserSubscriptions(ctx.Request().Context(), req.Address)
	if err != nil {
		return c.writeLedgerError(ctx, err, "List user subscriptions failed")
	}
	return ctx.JSON(http.StatusOK, &dto.ListSubscriptionsResponse{Subscriptions: mapper.SubscriptionsToResponse(items)})
}

func (c *BillingController) Balance(ctx echo.Context) error {
	req, err := types.NewAccountRequestFromContext(ctx)
	if err != nil {
		return c.writeError(ctx, http.StatusBadRequest, "invalid request")
	}
	if err := req.Validate(); err != nil {
		return c.writeError(ctx, http.StatusBadRequest, err.Error())
	}

	balance, err := c.settler.Balance(ctx.Request().Context(), c.store, req.Address)
	if err != nil {
		c.logger.WithError(err).Error("Balance lookup failed")
		return c.writeError(ctx, http.StatusInternalServerError, "internal server error")
	}
	return ctx.JSON(http.StatusOK, &dto.BalanceResponse{Address: req.Address, Balance: balance})
}

func (c *BillingController) Counts(ctx echo.Context) error {
	planCount, err := c.ledger.PlanCount(ctx.Request().Context())
	if err != nil {
		return c.writeLedgerError(ctx, err, "Plan count failed")
	}
	subCount, err := c.ledger.SubscriptionCount(ctx.Request().Context())
	if err != nil {
		return c.writeLedgerError(ctx, err, "Subscription count failed")
	}
	return ctx.JSON(http.StatusOK, &dto.CountsResponse{PlanCount: planCount, SubscriptionCount: subCount})
}

func (c *BillingController) Events(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, &dto.EventsResponse{Events: c.events.Events()})
}

func (c *BillingController) Faucet(ctx echo.Context) error {
	req, err := types.NewFaucetRequestFromContext(ctx)
	if err != nil {
		return c.writeError(ctx, http.StatusBadRequest, "invalid request body")
	}
	if err := req.Validate(); err != nil {
		return c.writeError(ctx, http.StatusBadRequest, err.Error())
	}

	if err := c.settler.Credit(ctx.Request().Context(), c.store, req.Address, req.Amount); err != nil {
		c.logger.WithError(err).Error("Faucet credit failed")
		return c.writeError(ctx, http.StatusInternalServerError, "internal server error")
	}
	return ctx.JSON(http.StatusOK, &dto.MessageResponse{Message: "credited"})
}

func (c *BillingController) writeLedgerError(ctx echo.Context, err error, logMessage string) error {
	switch {
	case errors.Is(err, ledger.ErrNotFound):
		return c.writeError(ctx, http.StatusNotFound, err.Error())
	case errors.Is(err, ledger.ErrInvalidState):
		return c.writeError(ctx, http.StatusConflict, err.Error())
	case errors.Is(err, ledger.ErrUnauthorized):
		return c.writeError(ctx, http.StatusForbidden, err.Error())
	case errors.Is(err, ledger.ErrUnimplemented):
		return c.writeError(ctx, http.StatusNotImplemented, err.Error())
	case errors.Is(err, settlement.ErrInsufficientBalance):
		return c.writeError(ctx, http.StatusPaymentRequired, err.Error())
	default:
		factory.LoggerWithContext(c.logger, ctx).WithError(err).Error(logMessage)
		return c.writeError(ctx, http.StatusInternalServerError, "internal server error")
	}
}

func (c *BillingController) writeError(ctx echo.Context, status int, message string) error {
	return ctx.JSON(status, &dto.ErrorResponse{Error: message})
}
