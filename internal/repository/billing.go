package repository

import (
	"context"
	"net/url"
	"strings"

	"github.com/deppfellow/guardian/internal/model/billing"
	"github.com/deppfellow/guardian/internal/provider"
)

type BillingRepository interface {
	ListSubscriptions(ctx context.Context, referenceID string) ([]billing.Subscription, error)
	Upgrade(ctx context.Context, req *billing.UpgradeRequest) (*billing.Redirect, error)
	Cancel(ctx context.Context, req *billing.CancelRequest) (*billing.Redirect, error)
	Restore(ctx context.Context, req *billing.RestoreRequest) (*billing.Subscription, error)
	Portal(ctx context.Context, req *billing.PortalRequest) (*billing.Redirect, error)
}

type billingRepository struct {
	provider *provider.Forwarder
}

func NewBillingRepository(f *provider.Forwarder) BillingRepository {
	return &billingRepository{provider: f}
}

func (r *billingRepository) ListSubscriptions(ctx context.Context, referenceID string) ([]billing.Subscription, error) {
	query := url.Values{}
	if referenceID != "" {
		query.Set("referenceId", referenceID)
	}

	subscriptions := []billing.Subscription{}
	if _, err := r.provider.Get(ctx, "/subscription/list", query, &subscriptions); err != nil {
		return nil, err
	}
	return subscriptions, nil
}

func (r *billingRepository) Upgrade(ctx context.Context, req *billing.UpgradeRequest) (*billing.Redirect, error) {
	// Plan names are configured lower-case on the provider side.
	payload := *req
	payload.Plan = strings.ToLower(req.Plan)

	var redirect billing.Redirect
	if _, err := r.provider.Post(ctx, "/subscription/upgrade", payload, &redirect); err != nil {
		return nil, err
	}
	return &redirect, nil
}

func (r *billingRepository) Cancel(ctx context.Context, req *billing.CancelRequest) (*billing.Redirect, error) {
	var redirect billing.Redirect
	if _, err := r.provider.Post(ctx, "/subscription/cancel", req, &redirect); err != nil {
		return nil, err
	}
	return &redirect, nil
}

func (r *billingRepository) Restore(ctx context.Context, req *billing.RestoreRequest) (*billing.Subscription, error) {
	var subscription billing.Subscription
	if _, err := r.provider.Post(ctx, "/subscription/restore", req, &subscription); err != nil {
		return nil, err
	}
	return &subscription, nil
}

func (r *billingRepository) Portal(ctx context.Context, req *billing.PortalRequest) (*billing.Redirect, error) {
	var redirect billing.Redirect
	if _, err := r.provider.Post(ctx, "/subscription/billing-portal", req, &redirect); err != nil {
		return nil, err
	}
	return &redirect, nil
}
