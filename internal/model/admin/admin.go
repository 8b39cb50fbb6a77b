package admin

import (
	"time"

	"github.com/deppfellow/guardian/internal/model/auth"
	"github.com/deppfellow/guardian/internal/validation"
)

type UserList struct {
	Users  []auth.User `json:"users"`
	Total  int         `json:"total"`
	Limit  *int        `json:"limit,omitempty"`
	Offset *int        `json:"offset,omitempty"`
}

type UserResult struct {
	User auth.User `json:"user"`
}

type SessionList struct {
	Sessions []auth.Session `json:"sessions"`
}

type Result struct {
	Success bool `json:"success"`
}

// Impersonation is the session created for an admin acting as another user.
type Impersonation struct {
	Session auth.Session `json:"session"`
	User    auth.User    `json:"user"`
}

// ------------------------------------------------------------

type CreateUserRequest struct {
	Email    string              `json:"email" validate:"required,email"`
	Password string              `json:"password" validate:"required,min=8"`
	Name     *string             `json:"name,omitempty" validate:"omitempty,min=2"`
	Role     validation.RoleList `json:"role,omitempty" validate:"omitempty,dive,required,max=64"`
}

func (r *CreateUserRequest) Validate() error {
	return validation.Struct(r)
}

type ListUsersRequest struct {
	SearchValue string `query:"searchValue" validate:"omitempty,max=100"`
	SearchField string `query:"searchField" validate:"omitempty,oneof=email name"`
	Limit       int    `query:"limit" validate:"omitempty,min=1,max=100"`
	Offset      int    `query:"offset" validate:"omitempty,min=0"`
}

func (r *ListUsersRequest) Validate() error {
	return validation.Struct(r)
}

type BanUserRequest struct {
	UserID     string     `json:"userId" validate:"required"`
	Reason     *string    `json:"reason,omitempty" validate:"omitempty,max=500"`
	BanExpires *time.Time `json:"banExpires,omitempty"`
}

func (r *BanUserRequest) Validate() error {
	if err := validation.Struct(r); err != nil {
		return err
	}

	if r.BanExpires != nil && !r.BanExpires.After(time.Now()) {
		return validation.CustomValidationErrors{
			{Field: "banExpires", Message: "must be in the future"},
		}
	}

	return nil
}

// ExpiresIn converts the ban expiry into the seconds the provider expects.
func (r *BanUserRequest) ExpiresIn(now time.Time) *int64 {
	if r.BanExpires == nil {
		return nil
	}
	seconds := int64(r.BanExpires.Sub(now).Seconds())
	if seconds < 1 {
		seconds = 1
	}
	return &seconds
}

// UserRequest is the payload of actions that target one user.
type UserRequest struct {
	UserID string `json:"userId" validate:"required"`
}

func (r *UserRequest) Validate() error {
	return validation.Struct(r)
}

type UserQuery struct {
	UserID string `query:"userId" validate:"required"`
}

func (r *UserQuery) Validate() error {
	return validation.Struct(r)
}

type RevokeSessionRequest struct {
	SessionToken string `json:"sessionToken" validate:"required"`
}

func (r *RevokeSessionRequest) Validate() error {
	return validation.Struct(r)
}

type SetRoleRequest struct {
	UserID string              `json:"userId" validate:"required"`
	Role   validation.RoleList `json:"role" validate:"required,min=1,dive,required,max=64"`
}

func (r *SetRoleRequest) Validate() error {
	return validation.Struct(r)
}
