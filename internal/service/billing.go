package service

import (
	"context"
	"errors"

	"github.com/deppfellow/guardian/internal/errs"
	"github.com/deppfellow/guardian/internal/lib/job"
	"github.com/deppfellow/guardian/internal/lib/payment"
	"github.com/deppfellow/guardian/internal/model/billing"
	"github.com/deppfellow/guardian/internal/sqlerr"
	"github.com/hibiken/asynq"
	"github.com/rs/zerolog"
	"github.com/stripe/stripe-go/v82"
)

// WebhookVerifier authenticates payment-provider webhook deliveries.
type WebhookVerifier interface {
	VerifyEvent(payload []byte, signature string) (stripe.Event, error)
}

// EventRecorder writes deliveries to the billing event ledger.
type EventRecorder interface {
	Record(ctx context.Context, event *billing.Event) (bool, error)
}

type BillingService struct {
	verifier WebhookVerifier
	events   EventRecorder
	tasks    TaskEnqueuer
}

func NewBillingService(verifier WebhookVerifier, events EventRecorder, tasks TaskEnqueuer) *BillingService {
	return &BillingService{verifier: verifier, events: events, tasks: tasks}
}

// HandleWebhook verifies a delivery, records it and queues its processing.
//
// Every delivery is queued, duplicates included: the task id is the event id
// and the worker skips processed events, so a delivery whose first enqueue
// failed is still processed on redelivery.
func (s *BillingService) HandleWebhook(ctx context.Context, payload []byte, signature string) (*billing.Receipt, error) {
	logger := zerolog.Ctx(ctx)

	event, err := s.verifier.VerifyEvent(payload, signature)
	if err != nil {
		if errors.Is(err, payment.ErrWebhookNotConfigured) {
			return nil, errs.NewServiceUnavailableError("Billing webhooks are not configured")
		}
		logger.Warn().Err(err).Msg("rejected billing webhook")
		code := "INVALID_SIGNATURE"
		return nil, errs.NewBadRequestError("Invalid webhook signature", true, &code, nil, nil)
	}

	inserted, err := s.events.Record(ctx, &billing.Event{
		ID:       event.ID,
		Type:     string(event.Type),
		Livemode: event.Livemode,
		Payload:  payload,
	})
	if err != nil {
		logger.Error().
			Err(err).
			Str("event_id", event.ID).
			Bool("retryable", sqlerr.Retryable(err)).
			Msg("failed to record billing event")
		return nil, sqlerr.HandleError(err)
	}

	task, err := job.NewBillingEventTask(event.ID)
	if err != nil {
		return nil, err
	}

	if _, err := s.tasks.EnqueueContext(ctx, task); err != nil && !errors.Is(err, asynq.ErrTaskIDConflict) {
		// Failing the delivery makes the payment provider retry it.
		logger.Error().Err(err).Str("event_id", event.ID).Msg("failed to enqueue billing event")
		return nil, err
	}

	logger.Info().
		Str("event_id", event.ID).
		Str("event_type", string(event.Type)).
		Bool("duplicate", !inserted).
		Msg("billing webhook received")

	return &billing.Receipt{Received: true, Duplicate: !inserted}, nil
}
