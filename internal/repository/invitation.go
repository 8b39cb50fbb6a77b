package repository

import (
	"context"
	"net/url"

	"github.com/deppfellow/guardian/internal/model/invitation"
	"github.com/deppfellow/guardian/internal/provider"
)

type InvitationRepository interface {
	Send(ctx context.Context, req *invitation.SendRequest) (*invitation.Invitation, error)
	List(ctx context.Context, organizationID string) ([]invitation.Invitation, error)
	Get(ctx context.Context, id string) (*invitation.Invitation, error)
	Cancel(ctx context.Context, id string) (*invitation.Invitation, error)
	Accept(ctx context.Context, id string) (*invitation.Acceptance, error)
	Reject(ctx context.Context, id string) (*invitation.Rejection, error)
}

type invitationRepository struct {
	provider *provider.Forwarder
}

func NewInvitationRepository(f *provider.Forwarder) InvitationRepository {
	return &invitationRepository{provider: f}
}

func (r *invitationRepository) Send(ctx context.Context, req *invitation.SendRequest) (*invitation.Invitation, error) {
	var inv invitation.Invitation
	if _, err := r.provider.Post(ctx, "/organization/invite-member", req, &inv); err != nil {
		return nil, err
	}
	return &inv, nil
}

func (r *invitationRepository) List(ctx context.Context, organizationID string) ([]invitation.Invitation, error) {
	query := url.Values{}
	if organizationID != "" {
		query.Set("organizationId", organizationID)
	}

	invitations := []invitation.Invitation{}
	if _, err := r.provider.Get(ctx, "/organization/list-invitations", query, &invitations); err != nil {
		return nil, err
	}
	return invitations, nil
}

func (r *invitationRepository) Get(ctx context.Context, id string) (*invitation.Invitation, error) {
	var inv *invitation.Invitation
	if _, err := r.provider.Get(ctx, "/organization/get-invitation", url.Values{"id": {id}}, &inv); err != nil {
		return nil, err
	}
	return inv, nil
}

func (r *invitationRepository) Cancel(ctx context.Context, id string) (*invitation.Invitation, error) {
	var inv *invitation.Invitation
	if _, err := r.provider.Post(ctx, "/organization/cancel-invitation", invitationBody(id), &inv); err != nil {
		return nil, err
	}
	return inv, nil
}

func (r *invitationRepository) Accept(ctx context.Context, id string) (*invitation.Acceptance, error) {
	var acceptance invitation.Acceptance
	if _, err := r.provider.Post(ctx, "/organization/accept-invitation", invitationBody(id), &acceptance); err != nil {
		return nil, err
	}
	return &acceptance, nil
}

func (r *invitationRepository) Reject(ctx context.Context, id string) (*invitation.Rejection, error) {
	var rejection invitation.Rejection
	if _, err := r.provider.Post(ctx, "/organization/reject-invitation", invitationBody(id), &rejection); err != nil {
		return nil, err
	}
	return &rejection, nil
}

func invitationBody(id string) map[string]any {
	return map[string]any{"invitationId": id}
}
