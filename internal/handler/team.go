package handler

import (
	"net/http"

	"github.com/deppfellow/guardian/internal/model/team"
	"github.com/deppfellow/guardian/internal/procedure"
	"github.com/deppfellow/guardian/internal/response"
	"github.com/deppfellow/guardian/internal/validation"
)

func NewTeamController(p *procedure.Procedures) Controller {
	use := []procedure.Procedure{p.Team}

	return Controller{
		Name:        "team",
		Description: "Teams inside an organization",
		Path:        "/teams",
		Actions: []Action{
			Mutation("create", "/create", ActionConfig{
				Description: "Create a team",
				Use:         use,
			}, createTeam),
			Query("list", "/list", ActionConfig{
				Description: "Teams of an organization, the active one by default",
				Use:         use,
			}, listTeams),
			Mutation("update", "/update", ActionConfig{
				Description: "Change a team's name, groups or settings",
				Method:      http.MethodPut,
				Use:         use,
			}, updateTeam),
			Mutation("delete", "/delete", ActionConfig{
				Description: "Delete a team",
				Method:      http.MethodDelete,
				Use:         use,
			}, deleteTeam),
			Mutation("setActive", "/set-active", ActionConfig{
				Description: "Set or clear the session's active team",
				Use:         use,
			}, setActiveTeam),
			Query("getActive", "/active", ActionConfig{
				Description: "The session's active team",
				Use:         use,
			}, getActiveTeam),
			Query("listUserTeams", "/user-teams", ActionConfig{
				Description: "Teams the caller belongs to",
				Use:         use,
			}, listUserTeams),
			Mutation("addMember", "/add-member", ActionConfig{
				Description: "Add a user to a team",
				Use:         use,
			}, addTeamMember),
			Mutation("removeMember", "/remove-member", ActionConfig{
				Description: "Remove a user from a team",
				Method:      http.MethodDelete,
				Use:         use,
			}, removeTeamMember),
			Query("listMembers", "/members", ActionConfig{
				Description: "Members of a team",
				Use:         use,
			}, listTeamMembers),
		},
	}
}

func createTeam(ctx *procedure.Context, req *team.CreateRequest) (response.Response, error) {
	repo, err := procedure.Get(ctx, procedure.TeamKey)
	if err != nil {
		return response.Response{}, err
	}

	t, err := repo.Create(ctx.Context(), req)
	if err != nil {
		return response.Response{}, err
	}

	return response.Created(t), nil
}

func listTeams(ctx *procedure.Context, req *team.ListRequest) (response.Response, error) {
	repo, err := procedure.Get(ctx, procedure.TeamKey)
	if err != nil {
		return response.Response{}, err
	}

	teams, err := repo.List(ctx.Context(), req.OrganizationID)
	if err != nil {
		return response.Response{}, err
	}

	return response.Success(teams), nil
}

func updateTeam(ctx *procedure.Context, req *team.UpdateRequest) (response.Response, error) {
	repo, err := procedure.Get(ctx, procedure.TeamKey)
	if err != nil {
		return response.Response{}, err
	}

	t, err := repo.Update(ctx.Context(), req)
	if err != nil {
		return response.Response{}, err
	}

	return response.Success(t), nil
}

func deleteTeam(ctx *procedure.Context, req *team.DeleteRequest) (response.Response, error) {
	repo, err := procedure.Get(ctx, procedure.TeamKey)
	if err != nil {
		return response.Response{}, err
	}

	if err := repo.Delete(ctx.Context(), req); err != nil {
		return response.Response{}, err
	}

	return response.NoContent(), nil
}

func setActiveTeam(ctx *procedure.Context, req *team.SetActiveRequest) (response.Response, error) {
	repo, err := procedure.Get(ctx, procedure.TeamKey)
	if err != nil {
		return response.Response{}, err
	}

	t, cookies, err := repo.SetActive(ctx.Context(), req.TeamID)
	if err != nil {
		return response.Response{}, err
	}

	return response.Success(t).WithCookies(cookies...), nil
}

func getActiveTeam(ctx *procedure.Context, _ *validation.EmptyRequest) (response.Response, error) {
	repo, err := procedure.Get(ctx, procedure.TeamKey)
	if err != nil {
		return response.Response{}, err
	}

	active, err := repo.GetActive(ctx.Context())
	if err != nil {
		return response.Response{}, err
	}

	return response.Found(active, "No active team"), nil
}

func listUserTeams(ctx *procedure.Context, _ *validation.EmptyRequest) (response.Response, error) {
	repo, err := procedure.Get(ctx, procedure.TeamKey)
	if err != nil {
		return response.Response{}, err
	}

	teams, err := repo.ListForUser(ctx.Context())
	if err != nil {
		return response.Response{}, err
	}

	return response.Success(teams), nil
}

func addTeamMember(ctx *procedure.Context, req *team.MemberRequest) (response.Response, error) {
	repo, err := procedure.Get(ctx, procedure.TeamKey)
	if err != nil {
		return response.Response{}, err
	}

	m, err := repo.AddMember(ctx.Context(), req)
	if err != nil {
		return response.Response{}, err
	}

	return response.Created(m), nil
}

func removeTeamMember(ctx *procedure.Context, req *team.MemberRequest) (response.Response, error) {
	repo, err := procedure.Get(ctx, procedure.TeamKey)
	if err != nil {
		return response.Response{}, err
	}

	if err := repo.RemoveMember(ctx.Context(), req); err != nil {
		return response.Response{}, err
	}

	return response.NoContent(), nil
}

func listTeamMembers(ctx *procedure.Context, req *team.ListMembersRequest) (response.Response, error) {
	repo, err := procedure.Get(ctx, procedure.TeamKey)
	if err != nil {
		return response.Response{}, err
	}

	members, err := repo.ListMembers(ctx.Context(), req.TeamID)
	if err != nil {
		return response.Response{}, err
	}

	return response.Success(members), nil
}
