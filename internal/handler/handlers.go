package handler

import (
	"github.com/deppfellow/guardian/internal/procedure"
	"github.com/deppfellow/guardian/internal/server"
	"github.com/deppfellow/guardian/internal/service"
)

// Handlers groups everything the router mounts: the declared controllers and
// the plain handlers that live outside the action pipeline.
type Handlers struct {
	Health      *HealthHandler
	Webhook     *WebhookHandler
	Controllers map[string]Controller
}

func NewHandlers(s *server.Server, services *service.Services, procs *procedure.Procedures) *Handlers {
	return &Handlers{
		Health:      NewHealthHandler(s),
		Webhook:     NewWebhookHandler(s, services.Billing),
		Controllers: NewControllers(procs),
	}
}

// NewControllers declares every controller, keyed by name.
func NewControllers(procs *procedure.Procedures) map[string]Controller {
	controllers := []Controller{
		NewAuthController(procs),
		NewOrganizationController(procs),
		NewMemberController(procs),
		NewInvitationController(procs),
		NewTeamController(procs),
		NewAdminController(procs),
		NewBillingController(procs),
	}

	byName := make(map[string]Controller, len(controllers))
	for _, c := range controllers {
		byName[c.Name] = c
	}
	return byName
}
