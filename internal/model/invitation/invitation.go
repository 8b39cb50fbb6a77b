package invitation

import (
	"time"

	"github.com/deppfellow/guardian/internal/validation"
)

type Status string

const (
	StatusPending  Status = "pending"
	StatusAccepted Status = "accepted"
	StatusRejected Status = "rejected"
	StatusCanceled Status = "canceled"
	StatusExpired  Status = "expired"
)

// Invitation is a pending offer of membership sent to an e-mail address.
type Invitation struct {
	ID               string              `json:"id"`
	OrganizationID   string              `json:"organizationId"`
	OrganizationName *string             `json:"organizationName,omitempty"`
	Email            string              `json:"email"`
	Role             validation.RoleList `json:"role"`
	Status           Status              `json:"status"`
	TeamID           *string             `json:"teamId,omitempty"`
	ExpiresAt        time.Time           `json:"expiresAt"`
	InviterID        string              `json:"inviterId"`
	InviterEmail     *string             `json:"inviterEmail,omitempty"`
}

// Acceptance is returned when an invitation is accepted.
type Acceptance struct {
	Invitation Invitation      `json:"invitation"`
	Member     *AcceptedMember `json:"member"`
}

type AcceptedMember struct {
	ID             string              `json:"id"`
	OrganizationID string              `json:"organizationId"`
	UserID         string              `json:"userId"`
	Role           validation.RoleList `json:"role"`
	CreatedAt      time.Time           `json:"createdAt"`
}

// Rejection is returned when an invitation is rejected.
type Rejection struct {
	Invitation *Invitation `json:"invitation"`
	Member     any         `json:"member"`
}

// ------------------------------------------------------------

type SendRequest struct {
	Email          string              `json:"email" validate:"required,email"`
	Role           validation.RoleList `json:"role" validate:"required,min=1,dive,required,max=64"`
	OrganizationID *string             `json:"organizationId,omitempty"`
	TeamID         *string             `json:"teamId,omitempty"`
	// Resend re-issues an invitation that is still pending.
	Resend *bool `json:"resend,omitempty"`
}

func (r *SendRequest) ApplyDefaults() {
	r.Role = r.Role.OrDefault()
}

func (r *SendRequest) Validate() error {
	return validation.Struct(r)
}

type ListRequest struct {
	OrganizationID string `query:"organizationId"`
}

func (r *ListRequest) Validate() error {
	return validation.Struct(r)
}

// IDRequest is the payload of cancel, accept and reject.
type IDRequest struct {
	InvitationID string `json:"invitationId" validate:"required"`
}

func (r *IDRequest) Validate() error {
	return validation.Struct(r)
}

type GetRequest struct {
	ID string `query:"id" validate:"required"`
}

func (r *GetRequest) Validate() error {
	return validation.Struct(r)
}
