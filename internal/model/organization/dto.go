package organization

import (
	"strings"

	"github.com/deppfellow/guardian/internal/validation"
)

type CreateRequest struct {
	Name       string         `json:"name" validate:"required,min=2,max=100"`
	Slug       *string        `json:"slug,omitempty" validate:"omitempty,min=2,max=100"`
	Logo       *string        `json:"logo,omitempty" validate:"omitempty,url"`
	Metadata   map[string]any `json:"metadata,omitempty"`
	Plan       *Plan          `json:"plan,omitempty" validate:"omitempty,oneof=TRIAL STARTER PROFESSIONAL ENTERPRISE"`
	SeatLimit  *int           `json:"seatLimit,omitempty" validate:"omitempty,min=1"`
	GroupLimit *int           `json:"groupLimit,omitempty" validate:"omitempty,min=1"`
	Settings   *Settings      `json:"settings,omitempty"`
}

// ApplyDefaults derives the slug from the name when none was sent
// ("Acme Corp" -> "acme-corp") and starts new organizations on the trial plan.
func (r *CreateRequest) ApplyDefaults() {
	if r.Slug == nil || strings.TrimSpace(*r.Slug) == "" {
		slug := Slugify(r.Name)
		r.Slug = &slug
	}
	if r.Plan == nil {
		plan := DefaultPlan
		r.Plan = &plan
	}
	if r.SeatLimit == nil {
		seats := DefaultSeatLimit
		r.SeatLimit = &seats
	}
	if r.GroupLimit == nil {
		groups := DefaultGroupLimit
		r.GroupLimit = &groups
	}
}

func (r *CreateRequest) Validate() error {
	return validation.Struct(r)
}

// Slugify lower-cases name and replaces runs of whitespace with '-'.
func Slugify(name string) string {
	return strings.Join(strings.Fields(strings.ToLower(name)), "-")
}

// UpdateRequest names the organization and the fields to change; every field
// other than organizationId is optional.
type UpdateRequest struct {
	OrganizationID     string         `json:"organizationId" validate:"required"`
	Name               *string        `json:"name,omitempty" validate:"omitempty,min=2,max=100"`
	Slug               *string        `json:"slug,omitempty" validate:"omitempty,min=2,max=100"`
	Logo               *string        `json:"logo,omitempty" validate:"omitempty,url"`
	Metadata           map[string]any `json:"metadata,omitempty"`
	Plan               *Plan          `json:"plan,omitempty" validate:"omitempty,oneof=TRIAL STARTER PROFESSIONAL ENTERPRISE"`
	SeatLimit          *int           `json:"seatLimit,omitempty" validate:"omitempty,min=1"`
	GroupLimit         *int           `json:"groupLimit,omitempty" validate:"omitempty,min=1"`
	Settings           *Settings      `json:"settings,omitempty"`
	OnboardingComplete *bool          `json:"onboardingComplete,omitempty"`
	ChannelConnected   *bool          `json:"channelConnected,omitempty"`
}

func (r *UpdateRequest) Validate() error {
	return validation.Struct(r)
}

// UpdateData is the provider's "data" object: only the fields that were sent.
type UpdateData struct {
	Name               *string        `json:"name,omitempty"`
	Slug               *string        `json:"slug,omitempty"`
	Logo               *string        `json:"logo,omitempty"`
	Metadata           map[string]any `json:"metadata,omitempty"`
	Plan               *Plan          `json:"plan,omitempty"`
	SeatLimit          *int           `json:"seatLimit,omitempty"`
	GroupLimit         *int           `json:"groupLimit,omitempty"`
	Settings           *Settings      `json:"settings,omitempty"`
	OnboardingComplete *bool          `json:"onboardingComplete,omitempty"`
	ChannelConnected   *bool          `json:"channelConnected,omitempty"`
}

func (r *UpdateRequest) Data() UpdateData {
	return UpdateData{
		Name:               r.Name,
		Slug:               r.Slug,
		Logo:               r.Logo,
		Metadata:           r.Metadata,
		Plan:               r.Plan,
		SeatLimit:          r.SeatLimit,
		GroupLimit:         r.GroupLimit,
		Settings:           r.Settings,
		OnboardingComplete: r.OnboardingComplete,
		ChannelConnected:   r.ChannelConnected,
	}
}

type SetActiveRequest struct {
	OrganizationID string `json:"organizationId" validate:"required"`
}

func (r *SetActiveRequest) Validate() error {
	return validation.Struct(r)
}

type DeleteRequest struct {
	OrganizationID string `json:"organizationId" validate:"required"`
}

func (r *DeleteRequest) Validate() error {
	return validation.Struct(r)
}

type LeaveRequest struct {
	OrganizationID *string `json:"organizationId,omitempty"`
}

func (r *LeaveRequest) Validate() error {
	return validation.Struct(r)
}

type CheckSlugRequest struct {
	Slug string `query:"slug" validate:"required,min=2,max=100"`
}

func (r *CheckSlugRequest) Validate() error {
	return validation.Struct(r)
}
