package organization

import (
	"time"

	"github.com/deppfellow/guardian/internal/model/invitation"
	"github.com/deppfellow/guardian/internal/model/member"
	"github.com/deppfellow/guardian/internal/model/team"
)

// Plan is the subscription tier of an organization.
type Plan string

const (
	PlanTrial        Plan = "TRIAL"
	PlanStarter      Plan = "STARTER"
	PlanProfessional Plan = "PROFESSIONAL"
	PlanEnterprise   Plan = "ENTERPRISE"
)

const (
	DefaultPlan       = PlanTrial
	DefaultSeatLimit  = 5
	DefaultGroupLimit = 3
)

// MonitoringSchedule restricts alerting to a daily window.
type MonitoringSchedule struct {
	Timezone string   `json:"timezone" validate:"required,timezone"`
	Days     []string `json:"days" validate:"required,min=1,max=7,dive,oneof=mon tue wed thu fri sat sun"`
	Start    string   `json:"start" validate:"required,datetime=15:04"`
	End      string   `json:"end" validate:"required,datetime=15:04"`
}

// Settings configures monitoring for every group of the organization.
type Settings struct {
	DefaultAlertMinutes *int                `json:"defaultAlertMinutes,omitempty" validate:"omitempty,min=1,max=1440"`
	GlobalKeywords      []string            `json:"globalKeywords,omitempty" validate:"omitempty,max=500,dive,required,max=100"`
	MonitoringSchedule  *MonitoringSchedule `json:"monitoringSchedule,omitempty"`
	AIEnabled           bool                `json:"aiEnabled"`
	WebhookURL          *string             `json:"webhookUrl,omitempty" validate:"omitempty,url"`
}

type Organization struct {
	ID                 string         `json:"id"`
	Name               string         `json:"name"`
	Slug               *string        `json:"slug"`
	Logo               *string        `json:"logo"`
	Metadata           map[string]any `json:"metadata"`
	CreatedAt          time.Time      `json:"createdAt"`
	Plan               Plan           `json:"plan"`
	OnboardingComplete bool           `json:"onboardingComplete"`
	ChannelConnected   bool           `json:"channelConnected"`
	SeatLimit          int            `json:"seatLimit"`
	GroupLimit         int            `json:"groupLimit"`
	Settings           *Settings      `json:"settings,omitempty"`
}

// Full is an organization with its members, pending invitations and teams.
type Full struct {
	Organization
	Members     []member.Member         `json:"members"`
	Invitations []invitation.Invitation `json:"invitations"`
	Teams       []team.Team             `json:"teams"`
}

type SlugAvailability struct {
	Status bool `json:"status"`
}
