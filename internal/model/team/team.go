package team

import (
	"time"

	"github.com/deppfellow/guardian/internal/validation"
)

// Priority ranks alerts raised for a team.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityNormal Priority = "normal"
	PriorityHigh   Priority = "high"
	PriorityUrgent Priority = "urgent"
)

// TriggerRule raises an alert when any of its keywords shows up in a group
// assigned to the team.
type TriggerRule struct {
	Name     string    `json:"name" validate:"required,max=100"`
	Keywords []string  `json:"keywords" validate:"required,min=1,dive,required,max=100"`
	Priority *Priority `json:"priority,omitempty" validate:"omitempty,oneof=low normal high urgent"`
}

type Settings struct {
	CustomTriggers     []TriggerRule `json:"customTriggers,omitempty" validate:"omitempty,dive"`
	DefaultPriority    *Priority     `json:"defaultPriority,omitempty" validate:"omitempty,oneof=low normal high urgent"`
	ResponseSLAMinutes *int          `json:"responseSlaMinutes,omitempty" validate:"omitempty,min=1"`
	LeadUserID         *string       `json:"leadUserId,omitempty"`
}

type Team struct {
	ID             string     `json:"id"`
	Name           string     `json:"name"`
	OrganizationID string     `json:"organizationId"`
	CreatedAt      time.Time  `json:"createdAt"`
	UpdatedAt      *time.Time `json:"updatedAt,omitempty"`
	AssignedGroups []string   `json:"assignedGroups,omitempty"`
	Settings       *Settings  `json:"settings,omitempty"`
}

type Member struct {
	ID        string    `json:"id"`
	TeamID    string    `json:"teamId"`
	UserID    string    `json:"userId"`
	CreatedAt time.Time `json:"createdAt"`
}

// Active identifies the team the current session works in.
type Active struct {
	TeamID string `json:"teamId"`
}

// ------------------------------------------------------------

type CreateRequest struct {
	Name           string    `json:"name" validate:"required,min=2,max=100"`
	OrganizationID *string   `json:"organizationId,omitempty"`
	AssignedGroups []string  `json:"assignedGroups,omitempty" validate:"omitempty,dive,required"`
	Settings       *Settings `json:"settings,omitempty"`
}

func (r *CreateRequest) Validate() error {
	return validation.Struct(r)
}

type ListRequest struct {
	OrganizationID string `query:"organizationId"`
}

func (r *ListRequest) Validate() error {
	return validation.Struct(r)
}

// UpdateData holds the changeable fields; every field is optional.
type UpdateData struct {
	Name           *string   `json:"name,omitempty" validate:"omitempty,min=2,max=100"`
	AssignedGroups []string  `json:"assignedGroups,omitempty" validate:"omitempty,dive,required"`
	Settings       *Settings `json:"settings,omitempty"`
}

type UpdateRequest struct {
	TeamID string     `json:"teamId" validate:"required"`
	Data   UpdateData `json:"data"`
}

func (r *UpdateRequest) Validate() error {
	return validation.Struct(r)
}

type DeleteRequest struct {
	TeamID         string  `json:"teamId" validate:"required"`
	OrganizationID *string `json:"organizationId,omitempty"`
}

func (r *DeleteRequest) Validate() error {
	return validation.Struct(r)
}

// SetActiveRequest clears the active team when teamId is absent.
type SetActiveRequest struct {
	TeamID *string `json:"teamId"`
}

func (r *SetActiveRequest) Validate() error {
	return validation.Struct(r)
}

type MemberRequest struct {
	TeamID string `json:"teamId" validate:"required"`
	UserID string `json:"userId" validate:"required"`
}

func (r *MemberRequest) Validate() error {
	return validation.Struct(r)
}

type ListMembersRequest struct {
	TeamID string `query:"teamId" validate:"required"`
}

func (r *ListMembersRequest) Validate() error {
	return validation.Struct(r)
}
