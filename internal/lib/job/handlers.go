package job

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/deppfellow/guardian/internal/lib/email"
	"github.com/deppfellow/guardian/internal/model/billing"
	"github.com/hibiken/asynq"
	"github.com/stripe/stripe-go/v82"
)

// Mailer sends the transactional e-mails background tasks produce.
type Mailer interface {
	SendWelcomeEmail(to, name string) error
	SendPaymentFailedEmail(to string, p email.PaymentFailed) error
}

// EventStore is the billing event ledger.
type EventStore interface {
	Get(ctx context.Context, id string) (*billing.Event, error)
	MarkProcessed(ctx context.Context, id string) (bool, error)
}

// CustomerLookup resolves payment-provider customers.
type CustomerLookup interface {
	CustomerEmail(ctx context.Context, customerID string) (string, error)
}

// HandlerDeps are the collaborators task handlers need.
type HandlerDeps struct {
	Mailer    Mailer
	Events    EventStore
	Customers CustomerLookup
}

func (j *JobService) InitHandlers(deps HandlerDeps) {
	j.mailer = deps.Mailer
	j.events = deps.Events
	j.customers = deps.Customers
}

func (j *JobService) handleWelcomeEmailTask(ctx context.Context, t *asynq.Task) error {
	var p WelcomeEmailPayload
	if err := json.Unmarshal(t.Payload(), &p); err != nil {
		return fmt.Errorf("failed to unmarshal welcome email payload: %w: %w", err, asynq.SkipRetry)
	}

	j.logger.Info().
		Str("type", "welcome").
		Str("to", p.To).
		Msg("processing welcome email task")

	if err := j.mailer.SendWelcomeEmail(p.To, p.Name); err != nil {
		j.logger.Error().
			Str("type", "welcome").
			Str("to", p.To).
			Err(err).
			Msg("failed to send welcome email")
		return err
	}

	j.logger.Info().
		Str("type", "welcome").
		Str("to", p.To).
		Msg("successfully sent welcome email")

	return nil
}

func (j *JobService) handleBillingEventTask(ctx context.Context, t *asynq.Task) error {
	var p BillingEventPayload
	if err := json.Unmarshal(t.Payload(), &p); err != nil {
		return fmt.Errorf("failed to unmarshal billing event payload: %w: %w", err, asynq.SkipRetry)
	}

	logger := j.logger.With().Str("event_id", p.EventID).Logger()

	stored, err := j.events.Get(ctx, p.EventID)
	if err != nil {
		return fmt.Errorf("failed to load billing event %s: %w", p.EventID, err)
	}

	if stored.ProcessedAt != nil {
		logger.Debug().Msg("billing event already processed")
		return nil
	}

	logger = logger.With().Str("event_type", stored.Type).Logger()
	logger.Info().Msg("processing billing event")

	switch stripe.EventType(stored.Type) {
	case stripe.EventTypeInvoicePaymentFailed:
		if err := j.notifyPaymentFailed(ctx, stored); err != nil {
			logger.Error().Err(err).Msg("failed to notify payment failure")
			return err
		}
	default:
		// Subscription state itself is kept by the identity provider's own
		// webhook; the ledger only needs the event recorded.
	}

	if _, err := j.events.MarkProcessed(ctx, stored.ID); err != nil {
		return fmt.Errorf("failed to mark billing event %s processed: %w", stored.ID, err)
	}

	logger.Info().Msg("billing event processed")
	return nil
}

func (j *JobService) notifyPaymentFailed(ctx context.Context, stored *billing.Event) error {
	var event stripe.Event
	if err := json.Unmarshal(stored.Payload, &event); err != nil {
		return fmt.Errorf("failed to decode event: %w: %w", err, asynq.SkipRetry)
	}
	if event.Data == nil {
		return fmt.Errorf("event %s has no data: %w", stored.ID, asynq.SkipRetry)
	}

	var invoice stripe.Invoice
	if err := json.Unmarshal(event.Data.Raw, &invoice); err != nil {
		return fmt.Errorf("failed to decode invoice: %w: %w", err, asynq.SkipRetry)
	}

	to := invoice.CustomerEmail
	if to == "" && invoice.Customer != nil && invoice.Customer.ID != "" {
		found, err := j.customers.CustomerEmail(ctx, invoice.Customer.ID)
		if err != nil {
			return err
		}
		to = found
	}
	if to == "" {
		j.logger.Warn().Str("event_id", stored.ID).Msg("payment failed for a customer without e-mail")
		return nil
	}

	return j.mailer.SendPaymentFailedEmail(to, email.PaymentFailed{
		Amount:     FormatAmount(invoice.AmountDue, string(invoice.Currency)),
		InvoiceURL: invoice.HostedInvoiceURL,
	})
}

// FormatAmount renders an amount in the currency's minor unit, e.g.
// 4900 "usd" becomes "49.00 USD".
func FormatAmount(minor int64, currency string) string {
	sign := ""
	if minor < 0 {
		sign, minor = "-", -minor
	}
	return fmt.Sprintf("%s%d.%02d %s", sign, minor/100, minor%100, strings.ToUpper(currency))
}
