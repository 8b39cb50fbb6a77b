package member

import (
	"time"

	"github.com/deppfellow/guardian/internal/model/auth"
	"github.com/deppfellow/guardian/internal/validation"
)

// Member links a user to an organization with a non-empty role set.
type Member struct {
	ID             string              `json:"id"`
	OrganizationID string              `json:"organizationId"`
	UserID         string              `json:"userId"`
	Role           validation.RoleList `json:"role"`
	TeamID         *string             `json:"teamId,omitempty"`
	CreatedAt      time.Time           `json:"createdAt"`
	User           *auth.User          `json:"user,omitempty"`
}

type List struct {
	Members []Member `json:"members"`
	Total   int      `json:"total"`
}

// ------------------------------------------------------------

type ListRequest struct {
	OrganizationID string `query:"organizationId"`
}

func (r *ListRequest) Validate() error {
	return validation.Struct(r)
}

type AddRequest struct {
	UserID         string              `json:"userId" validate:"required"`
	Role           validation.RoleList `json:"role" validate:"required,min=1,dive,required,max=64"`
	OrganizationID *string             `json:"organizationId,omitempty"`
	TeamID         *string             `json:"teamId,omitempty"`
}

func (r *AddRequest) ApplyDefaults() {
	r.Role = r.Role.OrDefault()
}

func (r *AddRequest) Validate() error {
	return validation.Struct(r)
}

type UpdateRoleRequest struct {
	MemberID       string              `json:"memberId" validate:"required"`
	Role           validation.RoleList `json:"role" validate:"required,min=1,dive,required,max=64"`
	OrganizationID *string             `json:"organizationId,omitempty"`
}

func (r *UpdateRoleRequest) Validate() error {
	return validation.Struct(r)
}

// RemoveRequest accepts either the member id or the member's e-mail.
type RemoveRequest struct {
	MemberID       string  `json:"memberId" validate:"required"`
	OrganizationID *string `json:"organizationId,omitempty"`
}

func (r *RemoveRequest) Validate() error {
	return validation.Struct(r)
}
