package repository

import (
	"context"
	"net/http"
	"net/url"

	"github.com/deppfellow/guardian/internal/model/auth"
	"github.com/deppfellow/guardian/internal/model/team"
	"github.com/deppfellow/guardian/internal/provider"
)

type TeamRepository interface {
	Create(ctx context.Context, req *team.CreateRequest) (*team.Team, error)
	List(ctx context.Context, organizationID string) ([]team.Team, error)
	Update(ctx context.Context, req *team.UpdateRequest) (*team.Team, error)
	Delete(ctx context.Context, req *team.DeleteRequest) error
	// SetActive makes teamID the session's active team; nil clears it.
	SetActive(ctx context.Context, teamID *string) (*team.Team, []*http.Cookie, error)
	// GetActive returns the session's active team, or nil when none is set.
	GetActive(ctx context.Context) (*team.Active, error)
	ListForUser(ctx context.Context) ([]team.Team, error)
	AddMember(ctx context.Context, req *team.MemberRequest) (*team.Member, error)
	RemoveMember(ctx context.Context, req *team.MemberRequest) error
	ListMembers(ctx context.Context, teamID string) ([]team.Member, error)
}

type teamRepository struct {
	provider *provider.Forwarder
}

func NewTeamRepository(f *provider.Forwarder) TeamRepository {
	return &teamRepository{provider: f}
}

func (r *teamRepository) Create(ctx context.Context, req *team.CreateRequest) (*team.Team, error) {
	var t team.Team
	if _, err := r.provider.Post(ctx, "/organization/create-team", req, &t); err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *teamRepository) List(ctx context.Context, organizationID string) ([]team.Team, error) {
	query := url.Values{}
	if organizationID != "" {
		query.Set("organizationId", organizationID)
	}

	teams := []team.Team{}
	if _, err := r.provider.Get(ctx, "/organization/list-teams", query, &teams); err != nil {
		return nil, err
	}
	return teams, nil
}

func (r *teamRepository) Update(ctx context.Context, req *team.UpdateRequest) (*team.Team, error) {
	var t team.Team
	if _, err := r.provider.Post(ctx, "/organization/update-team", req, &t); err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *teamRepository) Delete(ctx context.Context, req *team.DeleteRequest) error {
	_, err := r.provider.Post(ctx, "/organization/remove-team", req, nil)
	return err
}

func (r *teamRepository) SetActive(ctx context.Context, teamID *string) (*team.Team, []*http.Cookie, error) {
	body := map[string]any{"teamId": teamID}

	var t *team.Team
	reply, err := r.provider.Post(ctx, "/organization/set-active-team", body, &t)
	if err != nil {
		return nil, nil, err
	}
	return t, reply.Cookies(), nil
}

func (r *teamRepository) GetActive(ctx context.Context) (*team.Active, error) {
	var session *auth.CurrentSession
	if _, err := r.provider.Get(ctx, "/get-session", nil, &session); err != nil {
		return nil, err
	}
	if session == nil || session.Session.ActiveTeamID == nil || *session.Session.ActiveTeamID == "" {
		return nil, nil
	}
	return &team.Active{TeamID: *session.Session.ActiveTeamID}, nil
}

func (r *teamRepository) ListForUser(ctx context.Context) ([]team.Team, error) {
	teams := []team.Team{}
	if _, err := r.provider.Get(ctx, "/organization/list-user-teams", nil, &teams); err != nil {
		return nil, err
	}
	return teams, nil
}

func (r *teamRepository) AddMember(ctx context.Context, req *team.MemberRequest) (*team.Member, error) {
	var m team.Member
	if _, err := r.provider.Post(ctx, "/organization/add-team-member", req, &m); err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *teamRepository) RemoveMember(ctx context.Context, req *team.MemberRequest) error {
	_, err := r.provider.Post(ctx, "/organization/remove-team-member", req, nil)
	return err
}

func (r *teamRepository) ListMembers(ctx context.Context, teamID string) ([]team.Member, error) {
	members := []team.Member{}
	if _, err := r.provider.Get(ctx, "/organization/list-team-members", url.Values{"teamId": {teamID}}, &members); err != nil {
		return nil, err
	}
	return members, nil
}
