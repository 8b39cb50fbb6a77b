// Package payment wraps the Stripe API: webhook signature verification and
// customer lookups.
package payment

import (
	"context"
	"errors"
	"fmt"

	"github.com/deppfellow/guardian/internal/config"
	"github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/client"
	"github.com/stripe/stripe-go/v82/webhook"
)

var (
	// ErrWebhookNotConfigured is returned when no signing secret is set.
	ErrWebhookNotConfigured = errors.New("payment webhook secret is not configured")
	// ErrAPINotConfigured is returned when no secret key is set.
	ErrAPINotConfigured = errors.New("payment api key is not configured")
)

type Client struct {
	api           *client.API
	webhookSecret string
}

func NewClient(cfg *config.Config) *Client {
	c := &Client{webhookSecret: cfg.Billing.StripeWebhookSecret}
	if cfg.Billing.StripeSecretKey != "" {
		c.api = &client.API{}
		c.api.Init(cfg.Billing.StripeSecretKey, nil)
	}
	return c
}

// VerifyEvent checks the Stripe-Signature header against payload and decodes
// the event. Events from other API versions are accepted; only the fields the
// worker reads are relied on.
func (c *Client) VerifyEvent(payload []byte, signature string) (stripe.Event, error) {
	if c.webhookSecret == "" {
		return stripe.Event{}, ErrWebhookNotConfigured
	}

	return webhook.ConstructEventWithOptions(payload, signature, c.webhookSecret, webhook.ConstructEventOptions{
		IgnoreAPIVersionMismatch: true,
	})
}

// CustomerEmail looks up the e-mail address of a Stripe customer.
func (c *Client) CustomerEmail(ctx context.Context, customerID string) (string, error) {
	if c.api == nil {
		return "", ErrAPINotConfigured
	}

	params := &stripe.CustomerParams{}
	params.Context = ctx

	customer, err := c.api.Customers.Get(customerID, params)
	if err != nil {
		return "", fmt.Errorf("failed to get customer %s: %w", customerID, err)
	}

	return customer.Email, nil
}
