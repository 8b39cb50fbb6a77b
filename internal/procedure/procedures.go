package procedure

import (
	"github.com/deppfellow/guardian/internal/errs"
	"github.com/deppfellow/guardian/internal/middleware"
	"github.com/deppfellow/guardian/internal/model/auth"
	"github.com/deppfellow/guardian/internal/provider"
	"github.com/deppfellow/guardian/internal/repository"
	"github.com/deppfellow/guardian/internal/service"
)

var (
	AuthKey         = NewKey[repository.AuthRepository]("auth")
	OrganizationKey = NewKey[repository.OrganizationRepository]("organization")
	MemberKey       = NewKey[repository.MemberRepository]("member")
	InvitationKey   = NewKey[repository.InvitationRepository]("invitation")
	TeamKey         = NewKey[repository.TeamRepository]("team")
	AdminKey        = NewKey[repository.AdminRepository]("admin")
	BillingKey      = NewKey[repository.BillingRepository]("billing")

	// SessionKey holds the caller's resolved session.
	SessionKey = NewKey[*auth.CurrentSession]("session")
)

// Procedures holds one procedure per feature. Each builds its repository
// from the provider client and the request's headers.
type Procedures struct {
	Auth           Procedure
	Organization   Procedure
	Member         Procedure
	Invitation     Procedure
	Team           Procedure
	Admin          Procedure
	Billing        Procedure
	RequireSession Procedure
}

func NewProcedures(client *provider.Client, services *service.Services) *Procedures {
	forward := func(ctx *Context) *provider.Forwarder {
		return client.Forward(ctx.Headers(), ctx.Logger())
	}

	return &Procedures{
		Auth: Provide("Auth", AuthKey, func(ctx *Context) (repository.AuthRepository, error) {
			return services.Auth.Repository(repository.NewAuthRepository(forward(ctx))), nil
		}),
		Organization: Provide("Organization", OrganizationKey, func(ctx *Context) (repository.OrganizationRepository, error) {
			return repository.NewOrganizationRepository(forward(ctx)), nil
		}),
		Member: Provide("Member", MemberKey, func(ctx *Context) (repository.MemberRepository, error) {
			return repository.NewMemberRepository(forward(ctx)), nil
		}),
		Invitation: Provide("Invitation", InvitationKey, func(ctx *Context) (repository.InvitationRepository, error) {
			return repository.NewInvitationRepository(forward(ctx)), nil
		}),
		Team: Provide("Team", TeamKey, func(ctx *Context) (repository.TeamRepository, error) {
			return repository.NewTeamRepository(forward(ctx)), nil
		}),
		Admin: Provide("Admin", AdminKey, func(ctx *Context) (repository.AdminRepository, error) {
			return repository.NewAdminRepository(forward(ctx)), nil
		}),
		Billing: Provide("Billing", BillingKey, func(ctx *Context) (repository.BillingRepository, error) {
			return repository.NewBillingRepository(forward(ctx)), nil
		}),
		RequireSession: Provide("RequireSession", SessionKey, func(ctx *Context) (*auth.CurrentSession, error) {
			return requireSession(ctx, repository.NewAuthRepository(forward(ctx)))
		}),
	}
}

// requireSession resolves the caller's session and tags the request with the
// user id; a request without a session is rejected.
func requireSession(ctx *Context, repo repository.AuthRepository) (*auth.CurrentSession, error) {
	session, err := repo.GetSession(ctx.Context())
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, errs.NewUnauthorizedError("Unauthorized", false)
	}

	middleware.SetUserID(ctx.echo, session.User.ID)
	logger := ctx.logger.With().Str("user_id", session.User.ID).Logger()
	ctx.logger = &logger

	return session, nil
}
