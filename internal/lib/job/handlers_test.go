package job

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/deppfellow/guardian/internal/lib/email"
	"github.com/deppfellow/guardian/internal/model/billing"
	"github.com/hibiken/asynq"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sentMail struct {
	to      string
	payment email.PaymentFailed
}

type fakeMailer struct {
	welcome []string
	failed  []sentMail
	err     error
}

func (m *fakeMailer) SendWelcomeEmail(to, _ string) error {
	m.welcome = append(m.welcome, to)
	return m.err
}

func (m *fakeMailer) SendPaymentFailedEmail(to string, p email.PaymentFailed) error {
	m.failed = append(m.failed, sentMail{to: to, payment: p})
	return m.err
}

type fakeEvents struct {
	events map[string]*billing.Event
}

func (f *fakeEvents) Get(_ context.Context, id string) (*billing.Event, error) {
	event, ok := f.events[id]
	if !ok {
		return nil, errors.New("not found")
	}
	return event, nil
}

func (f *fakeEvents) MarkProcessed(_ context.Context, id string) (bool, error) {
	now := time.Now()
	f.events[id].ProcessedAt = &now
	return true, nil
}

type fakeCustomers map[string]string

func (f fakeCustomers) CustomerEmail(_ context.Context, id string) (string, error) {
	return f[id], nil
}

func newTestJobService(mailer *fakeMailer, events *fakeEvents, customers fakeCustomers) *JobService {
	logger := zerolog.Nop()
	j := &JobService{logger: &logger}
	j.InitHandlers(HandlerDeps{Mailer: mailer, Events: events, Customers: customers})
	return j
}

func billingTask(t *testing.T, eventID string) *asynq.Task {
	t.Helper()
	task, err := NewBillingEventTask(eventID)
	require.NoError(t, err)
	return task
}

func TestHandleBillingEventTask_PaymentFailed(t *testing.T) {
	payload := json.RawMessage(`{
		"id": "evt_1",
		"type": "invoice.payment_failed",
		"data": {"object": {"id": "in_1", "amount_due": 4900, "currency": "usd", "customer": "cus_1", "hosted_invoice_url": "https://pay.example.com/in_1"}}
	}`)
	events := &fakeEvents{events: map[string]*billing.Event{
		"evt_1": {ID: "evt_1", Type: "invoice.payment_failed", Payload: payload},
	}}
	mailer := &fakeMailer{}
	j := newTestJobService(mailer, events, fakeCustomers{"cus_1": "owner@example.com"})

	err := j.handleBillingEventTask(context.Background(), billingTask(t, "evt_1"))

	require.NoError(t, err)
	require.Len(t, mailer.failed, 1)
	assert.Equal(t, "owner@example.com", mailer.failed[0].to)
	assert.Equal(t, "49.00 USD", mailer.failed[0].payment.Amount)
	assert.Equal(t, "https://pay.example.com/in_1", mailer.failed[0].payment.InvoiceURL)
	assert.NotNil(t, events.events["evt_1"].ProcessedAt)
}

func TestHandleBillingEventTask_SkipsProcessed(t *testing.T) {
	processed := time.Now()
	events := &fakeEvents{events: map[string]*billing.Event{
		"evt_1": {ID: "evt_1", Type: "invoice.payment_failed", ProcessedAt: &processed},
	}}
	mailer := &fakeMailer{}
	j := newTestJobService(mailer, events, nil)

	err := j.handleBillingEventTask(context.Background(), billingTask(t, "evt_1"))

	require.NoError(t, err)
	assert.Empty(t, mailer.failed)
}

func TestHandleBillingEventTask_OtherEventsMarkedProcessed(t *testing.T) {
	events := &fakeEvents{events: map[string]*billing.Event{
		"evt_2": {ID: "evt_2", Type: "customer.subscription.updated", Payload: json.RawMessage(`{}`)},
	}}
	mailer := &fakeMailer{}
	j := newTestJobService(mailer, events, nil)

	err := j.handleBillingEventTask(context.Background(), billingTask(t, "evt_2"))

	require.NoError(t, err)
	assert.Empty(t, mailer.failed)
	assert.NotNil(t, events.events["evt_2"].ProcessedAt)
}

func TestHandleBillingEventTask_MailFailureRetries(t *testing.T) {
	payload := json.RawMessage(`{"id":"evt_3","type":"invoice.payment_failed","data":{"object":{"customer_email":"a@example.com","amount_due":100,"currency":"eur"}}}`)
	events := &fakeEvents{events: map[string]*billing.Event{
		"evt_3": {ID: "evt_3", Type: "invoice.payment_failed", Payload: payload},
	}}
	j := newTestJobService(&fakeMailer{err: errors.New("smtp down")}, events, nil)

	err := j.handleBillingEventTask(context.Background(), billingTask(t, "evt_3"))

	require.Error(t, err)
	assert.NotErrorIs(t, err, asynq.SkipRetry)
	assert.Nil(t, events.events["evt_3"].ProcessedAt)
}

func TestHandleWelcomeEmailTask(t *testing.T) {
	mailer := &fakeMailer{}
	j := newTestJobService(mailer, nil, nil)
	task, err := NewWelcomeEmailTask("new@example.com", "New User")
	require.NoError(t, err)

	require.NoError(t, j.handleWelcomeEmailTask(context.Background(), task))
	assert.Equal(t, []string{"new@example.com"}, mailer.welcome)
}

func TestHandleWelcomeEmailTask_BadPayload(t *testing.T) {
	j := newTestJobService(&fakeMailer{}, nil, nil)

	err := j.handleWelcomeEmailTask(context.Background(), asynq.NewTask(TaskWelcome, []byte("{")))

	assert.ErrorIs(t, err, asynq.SkipRetry)
}

func TestFormatAmount(t *testing.T) {
	assert.Equal(t, "49.00 USD", FormatAmount(4900, "usd"))
	assert.Equal(t, "0.05 EUR", FormatAmount(5, "eur"))
	assert.Equal(t, "-12.30 GBP", FormatAmount(-1230, "gbp"))
}
