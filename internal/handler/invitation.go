package handler

import (
	"net/http"

	"github.com/deppfellow/guardian/internal/model/invitation"
	"github.com/deppfellow/guardian/internal/procedure"
	"github.com/deppfellow/guardian/internal/response"
)

func NewInvitationController(p *procedure.Procedures) Controller {
	use := []procedure.Procedure{p.Invitation}

	return Controller{
		Name:        "invitation",
		Description: "Invitations to join an organization",
		Path:        "/invitations",
		Actions: []Action{
			Mutation("send", "/send", ActionConfig{
				Description: "Invite an e-mail address",
				Use:         use,
			}, sendInvitation),
			Query("listByOrganization", "/organization", ActionConfig{
				Description: "Invitations of an organization, the active one by default",
				Use:         use,
			}, listInvitations),
			Query("get", "/get", ActionConfig{
				Description: "One invitation by id",
				Use:         use,
			}, getInvitation),
			Mutation("cancel", "/cancel", ActionConfig{
				Description: "Cancel a pending invitation",
				Method:      http.MethodDelete,
				Use:         use,
			}, cancelInvitation),
			Mutation("accept", "/accept", ActionConfig{
				Description: "Accept an invitation addressed to the caller",
				Use:         use,
			}, acceptInvitation),
			Mutation("reject", "/reject", ActionConfig{
				Description: "Reject an invitation addressed to the caller",
				Use:         use,
			}, rejectInvitation),
		},
	}
}

func sendInvitation(ctx *procedure.Context, req *invitation.SendRequest) (response.Response, error) {
	repo, err := procedure.Get(ctx, procedure.InvitationKey)
	if err != nil {
		return response.Response{}, err
	}

	inv, err := repo.Send(ctx.Context(), req)
	if err != nil {
		return response.Response{}, err
	}

	return response.Created(inv), nil
}

func listInvitations(ctx *procedure.Context, req *invitation.ListRequest) (response.Response, error) {
	repo, err := procedure.Get(ctx, procedure.InvitationKey)
	if err != nil {
		return response.Response{}, err
	}

	invitations, err := repo.List(ctx.Context(), req.OrganizationID)
	if err != nil {
		return response.Response{}, err
	}

	return response.Success(invitations), nil
}

func getInvitation(ctx *procedure.Context, req *invitation.GetRequest) (response.Response, error) {
	repo, err := procedure.Get(ctx, procedure.InvitationKey)
	if err != nil {
		return response.Response{}, err
	}

	inv, err := repo.Get(ctx.Context(), req.ID)
	if err != nil {
		return response.Response{}, err
	}

	return response.Found(inv, "Invitation not found"), nil
}

func cancelInvitation(ctx *procedure.Context, req *invitation.IDRequest) (response.Response, error) {
	repo, err := procedure.Get(ctx, procedure.InvitationKey)
	if err != nil {
		return response.Response{}, err
	}

	if _, err := repo.Cancel(ctx.Context(), req.InvitationID); err != nil {
		return response.Response{}, err
	}

	return response.NoContent(), nil
}

func acceptInvitation(ctx *procedure.Context, req *invitation.IDRequest) (response.Response, error) {
	repo, err := procedure.Get(ctx, procedure.InvitationKey)
	if err != nil {
		return response.Response{}, err
	}

	acceptance, err := repo.Accept(ctx.Context(), req.InvitationID)
	if err != nil {
		return response.Response{}, err
	}

	return response.Success(acceptance), nil
}

func rejectInvitation(ctx *procedure.Context, req *invitation.IDRequest) (response.Response, error) {
	repo, err := procedure.Get(ctx, procedure.InvitationKey)
	if err != nil {
		return response.Response{}, err
	}

	rejection, err := repo.Reject(ctx.Context(), req.InvitationID)
	if err != nil {
		return response.Response{}, err
	}

	return response.Success(rejection), nil
}
