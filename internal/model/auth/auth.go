package auth

import (
	"time"

	"github.com/deppfellow/guardian/internal/validation"
)

type User struct {
	ID            string     `json:"id"`
	Email         string     `json:"email"`
	Name          string     `json:"name"`
	EmailVerified bool       `json:"emailVerified"`
	Image         *string    `json:"image,omitempty"`
	Role          *string    `json:"role,omitempty"`
	Banned        bool       `json:"banned"`
	BanReason     *string    `json:"banReason,omitempty"`
	BanExpires    *time.Time `json:"banExpires,omitempty"`
	CreatedAt     time.Time  `json:"createdAt"`
	UpdatedAt     time.Time  `json:"updatedAt"`
}

type Session struct {
	ID                   string    `json:"id"`
	UserID               string    `json:"userId"`
	Token                string    `json:"token"`
	ExpiresAt            time.Time `json:"expiresAt"`
	IPAddress            *string   `json:"ipAddress,omitempty"`
	UserAgent            *string   `json:"userAgent,omitempty"`
	ActiveOrganizationID *string   `json:"activeOrganizationId,omitempty"`
	ActiveTeamID         *string   `json:"activeTeamId,omitempty"`
	ImpersonatedBy       *string   `json:"impersonatedBy,omitempty"`
	CreatedAt            time.Time `json:"createdAt"`
	UpdatedAt            time.Time `json:"updatedAt"`
}

// CurrentSession is the provider's answer to a session lookup.
type CurrentSession struct {
	Session Session `json:"session"`
	User    User    `json:"user"`
}

// SessionResponse wraps the lookup so an absent session reads {"session": null}.
type SessionResponse struct {
	Session *CurrentSession `json:"session"`
}

// Result is returned by sign-in and sign-up.
type Result struct {
	Token    *string `json:"token"`
	Redirect bool    `json:"redirect,omitempty"`
	URL      *string `json:"url,omitempty"`
	User     *User   `json:"user,omitempty"`
}

type SignOutResult struct {
	Success bool `json:"success"`
}

// ------------------------------------------------------------

type SignInRequest struct {
	Email       string  `json:"email" validate:"required,email"`
	Password    string  `json:"password" validate:"required,min=6"`
	RememberMe  *bool   `json:"rememberMe,omitempty"`
	CallbackURL *string `json:"callbackURL,omitempty" validate:"omitempty,url"`
}

func (r *SignInRequest) Validate() error {
	return validation.Struct(r)
}

type SignUpRequest struct {
	Email       string  `json:"email" validate:"required,email"`
	Password    string  `json:"password" validate:"required,min=6"`
	Name        string  `json:"name" validate:"required,min=2"`
	Image       *string `json:"image,omitempty" validate:"omitempty,url"`
	CallbackURL *string `json:"callbackURL,omitempty" validate:"omitempty,url"`
}

func (r *SignUpRequest) Validate() error {
	return validation.Struct(r)
}
