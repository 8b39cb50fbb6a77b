package handler

import (
	"io"
	"net/http"

	"github.com/deppfellow/guardian/internal/errs"
	"github.com/deppfellow/guardian/internal/middleware"
	"github.com/deppfellow/guardian/internal/model/billing"
	"github.com/deppfellow/guardian/internal/procedure"
	"github.com/deppfellow/guardian/internal/response"
	"github.com/deppfellow/guardian/internal/server"
	"github.com/deppfellow/guardian/internal/service"
	"github.com/labstack/echo/v4"
)

// maxWebhookBytes bounds a webhook body; payment provider events are far
// smaller.
const maxWebhookBytes = 1 << 20

func NewBillingController(p *procedure.Procedures) Controller {
	use := []procedure.Procedure{p.Billing}

	return Controller{
		Name:        "billing",
		Description: "Subscriptions and the billing portal",
		Path:        "/billing",
		Actions: []Action{
			Query("getSubscription", "/subscription", ActionConfig{
				Description: "Subscriptions of a reference, the caller by default",
				Use:         use,
			}, getSubscription),
			Mutation("upgradeSubscription", "/subscription/upgrade", ActionConfig{
				Description: "Start a checkout for a plan",
				Use:         use,
			}, upgradeSubscription),
			Mutation("cancelSubscription", "/subscription/cancel", ActionConfig{
				Description: "Cancel a subscription at period end",
				Use:         use,
			}, cancelSubscription),
			Mutation("restoreSubscription", "/subscription/restore", ActionConfig{
				Description: "Undo a pending cancellation",
				Use:         use,
			}, restoreSubscription),
			Mutation("createBillingPortal", "/portal", ActionConfig{
				Description: "Open a billing portal session",
				Use:         use,
			}, createBillingPortal),
		},
	}
}

func getSubscription(ctx *procedure.Context, req *billing.GetSubscriptionRequest) (response.Response, error) {
	repo, err := procedure.Get(ctx, procedure.BillingKey)
	if err != nil {
		return response.Response{}, err
	}

	subscriptions, err := repo.ListSubscriptions(ctx.Context(), req.ReferenceID)
	if err != nil {
		return response.Response{}, err
	}

	return response.Success(subscriptions), nil
}

func upgradeSubscription(ctx *procedure.Context, req *billing.UpgradeRequest) (response.Response, error) {
	repo, err := procedure.Get(ctx, procedure.BillingKey)
	if err != nil {
		return response.Response{}, err
	}

	redirect, err := repo.Upgrade(ctx.Context(), req)
	if err != nil {
		return response.Response{}, err
	}

	return response.Success(redirect), nil
}

func cancelSubscription(ctx *procedure.Context, req *billing.CancelRequest) (response.Response, error) {
	repo, err := procedure.Get(ctx, procedure.BillingKey)
	if err != nil {
		return response.Response{}, err
	}

	redirect, err := repo.Cancel(ctx.Context(), req)
	if err != nil {
		return response.Response{}, err
	}

	return response.Success(redirect), nil
}

func restoreSubscription(ctx *procedure.Context, req *billing.RestoreRequest) (response.Response, error) {
	repo, err := procedure.Get(ctx, procedure.BillingKey)
	if err != nil {
		return response.Response{}, err
	}

	subscription, err := repo.Restore(ctx.Context(), req)
	if err != nil {
		return response.Response{}, err
	}

	return response.Success(subscription), nil
}

func createBillingPortal(ctx *procedure.Context, req *billing.PortalRequest) (response.Response, error) {
	repo, err := procedure.Get(ctx, procedure.BillingKey)
	if err != nil {
		return response.Response{}, err
	}

	redirect, err := repo.Portal(ctx.Context(), req)
	if err != nil {
		return response.Response{}, err
	}

	return response.Success(redirect), nil
}

// WebhookHandler receives payment-provider events. The signature covers the
// exact bytes sent, so the body is read raw instead of going through the
// action pipeline's binder.
type WebhookHandler struct {
	Handler
	billing *service.BillingService
}

func NewWebhookHandler(s *server.Server, billing *service.BillingService) *WebhookHandler {
	return &WebhookHandler{
		Handler: NewHandler(s),
		billing: billing,
	}
}

func (h *WebhookHandler) HandleBillingWebhook(c echo.Context) error {
	logger := middleware.GetLogger(c).With().
		Str("operation", "billing_webhook").
		Logger()

	payload, err := io.ReadAll(io.LimitReader(c.Request().Body, maxWebhookBytes+1))
	if err != nil {
		logger.Warn().Err(err).Msg("failed to read webhook body")
		return errs.NewBadRequestError("Unable to read request body", false, nil, nil, nil)
	}
	if len(payload) > maxWebhookBytes {
		return echo.NewHTTPError(http.StatusRequestEntityTooLarge, "Webhook payload too large")
	}

	receipt, err := h.billing.HandleWebhook(c.Request().Context(), payload, c.Request().Header.Get("Stripe-Signature"))
	if err != nil {
		return err
	}

	return response.Write(c, response.Success(receipt))
}
