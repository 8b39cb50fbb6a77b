package repository

import (
	"context"
	"net/url"

	"github.com/deppfellow/guardian/internal/model/member"
	"github.com/deppfellow/guardian/internal/provider"
)

type MemberRepository interface {
	List(ctx context.Context, organizationID string) (*member.List, error)
	Add(ctx context.Context, req *member.AddRequest) (*member.Member, error)
	UpdateRole(ctx context.Context, req *member.UpdateRoleRequest) (*member.Member, error)
	Remove(ctx context.Context, req *member.RemoveRequest) (*member.Member, error)
	// GetActive returns the caller's membership in the active organization,
	// or nil when there is none.
	GetActive(ctx context.Context) (*member.Member, error)
}

type memberRepository struct {
	provider *provider.Forwarder
}

func NewMemberRepository(f *provider.Forwarder) MemberRepository {
	return &memberRepository{provider: f}
}

func (r *memberRepository) List(ctx context.Context, organizationID string) (*member.List, error) {
	query := url.Values{}
	if organizationID != "" {
		query.Set("organizationId", organizationID)
	}

	list := member.List{Members: []member.Member{}}
	if _, err := r.provider.Get(ctx, "/organization/list-members", query, &list); err != nil {
		return nil, err
	}
	return &list, nil
}

func (r *memberRepository) Add(ctx context.Context, req *member.AddRequest) (*member.Member, error) {
	var m member.Member
	if _, err := r.provider.Post(ctx, "/organization/add-member", req, &m); err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *memberRepository) UpdateRole(ctx context.Context, req *member.UpdateRoleRequest) (*member.Member, error) {
	var m member.Member
	if _, err := r.provider.Post(ctx, "/organization/update-member-role", req, &m); err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *memberRepository) Remove(ctx context.Context, req *member.RemoveRequest) (*member.Member, error) {
	body := map[string]any{"memberIdOrEmail": req.MemberID}
	if req.OrganizationID != nil {
		body["organizationId"] = *req.OrganizationID
	}

	var removed struct {
		Member *member.Member `json:"member"`
	}
	if _, err := r.provider.Post(ctx, "/organization/remove-member", body, &removed); err != nil {
		return nil, err
	}
	return removed.Member, nil
}

func (r *memberRepository) GetActive(ctx context.Context) (*member.Member, error) {
	var m *member.Member
	if _, err := r.provider.Get(ctx, "/organization/get-active-member", nil, &m); err != nil {
		return nil, err
	}
	return m, nil
}
