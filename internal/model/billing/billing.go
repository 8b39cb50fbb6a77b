package billing

import (
	"encoding/json"
	"time"

	"github.com/deppfellow/guardian/internal/validation"
)

// Subscription is the provider's record of a customer's plan.
type Subscription struct {
	ID                   string     `json:"id"`
	Plan                 string     `json:"plan"`
	ReferenceID          string     `json:"referenceId"`
	StripeCustomerID     *string    `json:"stripeCustomerId,omitempty"`
	StripeSubscriptionID *string    `json:"stripeSubscriptionId,omitempty"`
	Status               string     `json:"status"`
	PeriodStart          *time.Time `json:"periodStart,omitempty"`
	PeriodEnd            *time.Time `json:"periodEnd,omitempty"`
	CancelAtPeriodEnd    bool       `json:"cancelAtPeriodEnd"`
	Seats                *int       `json:"seats,omitempty"`
	TrialStart           *time.Time `json:"trialStart,omitempty"`
	TrialEnd             *time.Time `json:"trialEnd,omitempty"`
}

// Redirect is returned by checkout, cancel and portal sessions.
type Redirect struct {
	URL      string `json:"url"`
	Redirect bool   `json:"redirect"`
}

// Event is one payment-provider webhook delivery recorded in the ledger.
type Event struct {
	ID          string          `json:"id" db:"id"`
	Type        string          `json:"type" db:"type"`
	Livemode    bool            `json:"livemode" db:"livemode"`
	Payload     json.RawMessage `json:"payload" db:"payload"`
	ReceivedAt  time.Time       `json:"receivedAt" db:"received_at"`
	ProcessedAt *time.Time      `json:"processedAt,omitempty" db:"processed_at"`
}

// Receipt acknowledges a webhook delivery.
type Receipt struct {
	Received  bool `json:"received"`
	Duplicate bool `json:"duplicate"`
}

// ------------------------------------------------------------

type GetSubscriptionRequest struct {
	ReferenceID string `query:"referenceId"`
}

func (r *GetSubscriptionRequest) Validate() error {
	return validation.Struct(r)
}

type UpgradeRequest struct {
	Plan        string  `json:"plan" validate:"required,oneof=STARTER PROFESSIONAL ENTERPRISE"`
	ReferenceID *string `json:"referenceId,omitempty"`
	Annual      *bool   `json:"annual,omitempty"`
	Seats       *int    `json:"seats,omitempty" validate:"omitempty,min=1"`
	SuccessURL  *string `json:"successUrl,omitempty" validate:"omitempty,url"`
	CancelURL   *string `json:"cancelUrl,omitempty" validate:"omitempty,url"`
}

func (r *UpgradeRequest) Validate() error {
	return validation.Struct(r)
}

type CancelRequest struct {
	ReturnURL      string  `json:"returnUrl" validate:"required,url"`
	SubscriptionID *string `json:"subscriptionId,omitempty"`
	ReferenceID    *string `json:"referenceId,omitempty"`
}

func (r *CancelRequest) Validate() error {
	return validation.Struct(r)
}

type RestoreRequest struct {
	SubscriptionID *string `json:"subscriptionId,omitempty"`
	ReferenceID    *string `json:"referenceId,omitempty"`
}

func (r *RestoreRequest) Validate() error {
	return validation.Struct(r)
}

type PortalRequest struct {
	ReturnURL   string  `json:"returnUrl" validate:"required,url"`
	ReferenceID *string `json:"referenceId,omitempty"`
}

func (r *PortalRequest) Validate() error {
	return validation.Struct(r)
}
