package handler

import (
	"net/http"

	"github.com/deppfellow/guardian/internal/model/organization"
	"github.com/deppfellow/guardian/internal/procedure"
	"github.com/deppfellow/guardian/internal/response"
	"github.com/deppfellow/guardian/internal/validation"
)

func NewOrganizationController(p *procedure.Procedures) Controller {
	use := []procedure.Procedure{p.Organization}

	return Controller{
		Name:        "organization",
		Description: "Organizations the caller belongs to",
		Path:        "/organizations",
		Actions: []Action{
			Mutation("createOrganization", "/create-org", ActionConfig{
				Description: "Create an organization; the slug defaults to the name",
				Use:         use,
			}, createOrganization),
			Query("listUserOrganizations", "/user-orgs", ActionConfig{
				Description: "Organizations the caller is a member of",
				Use:         use,
			}, listUserOrganizations),
			Query("getActive", "/active", ActionConfig{
				Description: "The session's active organization with members, invitations and teams",
				Use:         use,
			}, getActiveOrganization),
			Mutation("setActive", "/set-active", ActionConfig{
				Description: "Make an organization the session's active one",
				Use:         use,
			}, setActiveOrganization),
			Mutation("updateOrganization", "/update-org", ActionConfig{
				Description: "Change an organization's profile, plan or settings",
				Method:      http.MethodPut,
				Use:         use,
			}, updateOrganization),
			Mutation("deleteOrganization", "/delete-org", ActionConfig{
				Description: "Delete an organization",
				Method:      http.MethodDelete,
				Use:         use,
			}, deleteOrganization),
			Mutation("leave", "/leave", ActionConfig{
				Description: "Leave an organization, the active one by default",
				Use:         use,
			}, leaveOrganization),
			Query("checkSlug", "/check-slug", ActionConfig{
				Description: "Whether a slug is still available",
				Use:         use,
			}, checkSlug),
		},
	}
}

func createOrganization(ctx *procedure.Context, req *organization.CreateRequest) (response.Response, error) {
	repo, err := procedure.Get(ctx, procedure.OrganizationKey)
	if err != nil {
		return response.Response{}, err
	}

	org, err := repo.Create(ctx.Context(), req)
	if err != nil {
		return response.Response{}, err
	}

	return response.Created(org), nil
}

func listUserOrganizations(ctx *procedure.Context, _ *validation.EmptyRequest) (response.Response, error) {
	repo, err := procedure.Get(ctx, procedure.OrganizationKey)
	if err != nil {
		return response.Response{}, err
	}

	orgs, err := repo.ListForUser(ctx.Context())
	if err != nil {
		return response.Response{}, err
	}

	return response.Success(orgs), nil
}

func getActiveOrganization(ctx *procedure.Context, _ *validation.EmptyRequest) (response.Response, error) {
	repo, err := procedure.Get(ctx, procedure.OrganizationKey)
	if err != nil {
		return response.Response{}, err
	}

	org, err := repo.GetActive(ctx.Context())
	if err != nil {
		return response.Response{}, err
	}

	return response.Found(org, "No active organization"), nil
}

func setActiveOrganization(ctx *procedure.Context, req *organization.SetActiveRequest) (response.Response, error) {
	repo, err := procedure.Get(ctx, procedure.OrganizationKey)
	if err != nil {
		return response.Response{}, err
	}

	org, cookies, err := repo.SetActive(ctx.Context(), req.OrganizationID)
	if err != nil {
		return response.Response{}, err
	}

	return response.Success(org).WithCookies(cookies...), nil
}

func updateOrganization(ctx *procedure.Context, req *organization.UpdateRequest) (response.Response, error) {
	repo, err := procedure.Get(ctx, procedure.OrganizationKey)
	if err != nil {
		return response.Response{}, err
	}

	org, err := repo.Update(ctx.Context(), req)
	if err != nil {
		return response.Response{}, err
	}

	return response.Success(org), nil
}

func deleteOrganization(ctx *procedure.Context, req *organization.DeleteRequest) (response.Response, error) {
	repo, err := procedure.Get(ctx, procedure.OrganizationKey)
	if err != nil {
		return response.Response{}, err
	}

	if err := repo.Delete(ctx.Context(), req.OrganizationID); err != nil {
		return response.Response{}, err
	}

	return response.NoContent(), nil
}

func leaveOrganization(ctx *procedure.Context, req *organization.LeaveRequest) (response.Response, error) {
	repo, err := procedure.Get(ctx, procedure.OrganizationKey)
	if err != nil {
		return response.Response{}, err
	}

	m, err := repo.Leave(ctx.Context(), req.OrganizationID)
	if err != nil {
		return response.Response{}, err
	}

	return response.Success(m), nil
}

func checkSlug(ctx *procedure.Context, req *organization.CheckSlugRequest) (response.Response, error) {
	repo, err := procedure.Get(ctx, procedure.OrganizationKey)
	if err != nil {
		return response.Response{}, err
	}

	availability, err := repo.CheckSlug(ctx.Context(), req.Slug)
	if err != nil {
		return response.Response{}, err
	}

	return response.Success(availability), nil
}
