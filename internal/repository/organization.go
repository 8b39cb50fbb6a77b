package repository

import (
	"context"
	"net/http"

	"github.com/deppfellow/guardian/internal/model/member"
	"github.com/deppfellow/guardian/internal/model/organization"
	"github.com/deppfellow/guardian/internal/provider"
)

type OrganizationRepository interface {
	Create(ctx context.Context, req *organization.CreateRequest) (*organization.Organization, error)
	ListForUser(ctx context.Context) ([]organization.Organization, error)
	// GetActive returns nil when the session has no active organization.
	GetActive(ctx context.Context) (*organization.Full, error)
	SetActive(ctx context.Context, organizationID string) (*organization.Full, []*http.Cookie, error)
	Update(ctx context.Context, req *organization.UpdateRequest) (*organization.Organization, error)
	Delete(ctx context.Context, organizationID string) error
	Leave(ctx context.Context, organizationID *string) (*member.Member, error)
	CheckSlug(ctx context.Context, slug string) (*organization.SlugAvailability, error)
}

type organizationRepository struct {
	provider *provider.Forwarder
}

func NewOrganizationRepository(f *provider.Forwarder) OrganizationRepository {
	return &organizationRepository{provider: f}
}

func (r *organizationRepository) Create(ctx context.Context, req *organization.CreateRequest) (*organization.Organization, error) {
	var org organization.Organization
	if _, err := r.provider.Post(ctx, "/organization/create", req, &org); err != nil {
		return nil, err
	}
	return &org, nil
}

func (r *organizationRepository) ListForUser(ctx context.Context) ([]organization.Organization, error) {
	orgs := []organization.Organization{}
	if _, err := r.provider.Get(ctx, "/organization/list", nil, &orgs); err != nil {
		return nil, err
	}
	return orgs, nil
}

func (r *organizationRepository) GetActive(ctx context.Context) (*organization.Full, error) {
	var org *organization.Full
	if _, err := r.provider.Get(ctx, "/organization/get-full-organization", nil, &org); err != nil {
		return nil, err
	}
	return org, nil
}

func (r *organizationRepository) SetActive(ctx context.Context, organizationID string) (*organization.Full, []*http.Cookie, error) {
	body := map[string]any{"organizationId": organizationID}

	var org *organization.Full
	reply, err := r.provider.Post(ctx, "/organization/set-active", body, &org)
	if err != nil {
		return nil, nil, err
	}
	return org, reply.Cookies(), nil
}

func (r *organizationRepository) Update(ctx context.Context, req *organization.UpdateRequest) (*organization.Organization, error) {
	body := map[string]any{
		"organizationId": req.OrganizationID,
		"data":           req.Data(),
	}

	var org organization.Organization
	if _, err := r.provider.Post(ctx, "/organization/update", body, &org); err != nil {
		return nil, err
	}
	return &org, nil
}

func (r *organizationRepository) Delete(ctx context.Context, organizationID string) error {
	body := map[string]any{"organizationId": organizationID}
	_, err := r.provider.Post(ctx, "/organization/delete", body, nil)
	return err
}

func (r *organizationRepository) Leave(ctx context.Context, organizationID *string) (*member.Member, error) {
	body := map[string]any{}
	if organizationID != nil {
		body["organizationId"] = *organizationID
	}

	var m member.Member
	if _, err := r.provider.Post(ctx, "/organization/leave", body, &m); err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *organizationRepository) CheckSlug(ctx context.Context, slug string) (*organization.SlugAvailability, error) {
	body := map[string]any{"slug": slug}

	var availability organization.SlugAvailability
	if _, err := r.provider.Post(ctx, "/organization/check-slug", body, &availability); err != nil {
		return nil, err
	}
	return &availability, nil
}
