package handler

import (
	"net/http"

	"github.com/deppfellow/guardian/internal/model/member"
	"github.com/deppfellow/guardian/internal/procedure"
	"github.com/deppfellow/guardian/internal/response"
	"github.com/deppfellow/guardian/internal/validation"
)

func NewMemberController(p *procedure.Procedures) Controller {
	use := []procedure.Procedure{p.Member}

	return Controller{
		Name:        "member",
		Description: "Organization memberships",
		Path:        "/members",
		Actions: []Action{
			Query("listByOrganization", "/organization", ActionConfig{
				Description: "Members of an organization, the active one by default",
				Use:         use,
			}, listMembers),
			Mutation("addToOrganization", "/organization/add", ActionConfig{
				Description: "Add a user to an organization",
				Use:         use,
			}, addMember),
			Mutation("updateRole", "/organization/update-role", ActionConfig{
				Description: "Replace a member's roles",
				Method:      http.MethodPut,
				Use:         use,
			}, updateMemberRole),
			Mutation("removeFromOrganization", "/organization/remove", ActionConfig{
				Description: "Remove a member by id or e-mail",
				Method:      http.MethodDelete,
				Use:         use,
			}, removeMember),
			Query("getActiveMember", "/active", ActionConfig{
				Description: "The caller's membership in the active organization",
				Use:         use,
			}, getActiveMember),
		},
	}
}

func listMembers(ctx *procedure.Context, req *member.ListRequest) (response.Response, error) {
	repo, err := procedure.Get(ctx, procedure.MemberKey)
	if err != nil {
		return response.Response{}, err
	}

	members, err := repo.List(ctx.Context(), req.OrganizationID)
	if err != nil {
		return response.Response{}, err
	}

	return response.Success(members), nil
}

func addMember(ctx *procedure.Context, req *member.AddRequest) (response.Response, error) {
	repo, err := procedure.Get(ctx, procedure.MemberKey)
	if err != nil {
		return response.Response{}, err
	}

	m, err := repo.Add(ctx.Context(), req)
	if err != nil {
		return response.Response{}, err
	}

	return response.Created(m), nil
}

func updateMemberRole(ctx *procedure.Context, req *member.UpdateRoleRequest) (response.Response, error) {
	repo, err := procedure.Get(ctx, procedure.MemberKey)
	if err != nil {
		return response.Response{}, err
	}

	m, err := repo.UpdateRole(ctx.Context(), req)
	if err != nil {
		return response.Response{}, err
	}

	return response.Success(m), nil
}

func removeMember(ctx *procedure.Context, req *member.RemoveRequest) (response.Response, error) {
	repo, err := procedure.Get(ctx, procedure.MemberKey)
	if err != nil {
		return response.Response{}, err
	}

	if _, err := repo.Remove(ctx.Context(), req); err != nil {
		return response.Response{}, err
	}

	return response.NoContent(), nil
}

func getActiveMember(ctx *procedure.Context, _ *validation.EmptyRequest) (response.Response, error) {
	repo, err := procedure.Get(ctx, procedure.MemberKey)
	if err != nil {
		return response.Response{}, err
	}

	m, err := repo.GetActive(ctx.Context())
	if err != nil {
		return response.Response{}, err
	}

	return response.Found(m, "No active member"), nil
}
