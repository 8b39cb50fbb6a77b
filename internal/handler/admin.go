package handler

import (
	"net/http"

	"github.com/deppfellow/guardian/internal/model/admin"
	"github.com/deppfellow/guardian/internal/procedure"
	"github.com/deppfellow/guardian/internal/response"
	"github.com/deppfellow/guardian/internal/validation"
)

// NewAdminController declares the user administration actions. They resolve
// the caller's session first, so an anonymous request fails with 401 before
// the admin endpoint is called.
func NewAdminController(p *procedure.Procedures) Controller {
	use := []procedure.Procedure{p.RequireSession, p.Admin}

	return Controller{
		Name:        "admin",
		Description: "User administration",
		Path:        "/admin",
		Actions: []Action{
			Mutation("createUser", "/create-user", ActionConfig{
				Description: "Create a user account",
				Use:         use,
			}, createUser),
			Query("listUsers", "/users", ActionConfig{
				Description: "Search users by e-mail or name",
				Use:         use,
			}, listUsers),
			Mutation("banUser", "/ban-user", ActionConfig{
				Description: "Ban a user, optionally until a point in time",
				Use:         use,
			}, banUser),
			Mutation("unbanUser", "/unban-user", ActionConfig{
				Description: "Lift a ban",
				Use:         use,
			}, unbanUser),
			Mutation("removeUser", "/remove-user", ActionConfig{
				Description: "Delete a user account",
				Method:      http.MethodDelete,
				Use:         use,
			}, removeUser),
			Query("listUserSessions", "/user-sessions", ActionConfig{
				Description: "Sessions of a user",
				Use:         use,
			}, listUserSessions),
			Mutation("revokeSession", "/revoke-session", ActionConfig{
				Description: "Revoke one session by token",
				Use:         use,
			}, revokeSession),
			Mutation("revokeUserSessions", "/revoke-user-sessions", ActionConfig{
				Description: "Revoke every session of a user",
				Use:         use,
			}, revokeUserSessions),
			Mutation("impersonateUser", "/impersonate", ActionConfig{
				Description: "Start a session as another user",
				Use:         use,
			}, impersonateUser),
			Mutation("stopImpersonating", "/stop-impersonating", ActionConfig{
				Description: "Return to the admin's own session",
				Use:         use,
			}, stopImpersonating),
			Mutation("setRole", "/set-role", ActionConfig{
				Description: "Replace a user's roles",
				Use:         use,
			}, setUserRole),
		},
	}
}

func createUser(ctx *procedure.Context, req *admin.CreateUserRequest) (response.Response, error) {
	repo, err := procedure.Get(ctx, procedure.AdminKey)
	if err != nil {
		return response.Response{}, err
	}

	result, err := repo.CreateUser(ctx.Context(), req)
	if err != nil {
		return response.Response{}, err
	}

	return response.Created(result), nil
}

func listUsers(ctx *procedure.Context, req *admin.ListUsersRequest) (response.Response, error) {
	repo, err := procedure.Get(ctx, procedure.AdminKey)
	if err != nil {
		return response.Response{}, err
	}

	users, err := repo.ListUsers(ctx.Context(), req)
	if err != nil {
		return response.Response{}, err
	}

	return response.Success(users), nil
}

func banUser(ctx *procedure.Context, req *admin.BanUserRequest) (response.Response, error) {
	repo, err := procedure.Get(ctx, procedure.AdminKey)
	if err != nil {
		return response.Response{}, err
	}

	result, err := repo.BanUser(ctx.Context(), req)
	if err != nil {
		return response.Response{}, err
	}

	return response.Success(result), nil
}

func unbanUser(ctx *procedure.Context, req *admin.UserRequest) (response.Response, error) {
	repo, err := procedure.Get(ctx, procedure.AdminKey)
	if err != nil {
		return response.Response{}, err
	}

	result, err := repo.UnbanUser(ctx.Context(), req.UserID)
	if err != nil {
		return response.Response{}, err
	}

	return response.Success(result), nil
}

func removeUser(ctx *procedure.Context, req *admin.UserRequest) (response.Response, error) {
	repo, err := procedure.Get(ctx, procedure.AdminKey)
	if err != nil {
		return response.Response{}, err
	}

	result, err := repo.RemoveUser(ctx.Context(), req.UserID)
	if err != nil {
		return response.Response{}, err
	}

	return response.Success(result), nil
}

func listUserSessions(ctx *procedure.Context, req *admin.UserQuery) (response.Response, error) {
	repo, err := procedure.Get(ctx, procedure.AdminKey)
	if err != nil {
		return response.Response{}, err
	}

	sessions, err := repo.ListUserSessions(ctx.Context(), req.UserID)
	if err != nil {
		return response.Response{}, err
	}

	return response.Success(sessions), nil
}

func revokeSession(ctx *procedure.Context, req *admin.RevokeSessionRequest) (response.Response, error) {
	repo, err := procedure.Get(ctx, procedure.AdminKey)
	if err != nil {
		return response.Response{}, err
	}

	result, err := repo.RevokeSession(ctx.Context(), req.SessionToken)
	if err != nil {
		return response.Response{}, err
	}

	return response.Success(result), nil
}

func revokeUserSessions(ctx *procedure.Context, req *admin.UserRequest) (response.Response, error) {
	repo, err := procedure.Get(ctx, procedure.AdminKey)
	if err != nil {
		return response.Response{}, err
	}

	result, err := repo.RevokeSessions(ctx.Context(), req.UserID)
	if err != nil {
		return response.Response{}, err
	}

	return response.Success(result), nil
}

func impersonateUser(ctx *procedure.Context, req *admin.UserRequest) (response.Response, error) {
	repo, err := procedure.Get(ctx, procedure.AdminKey)
	if err != nil {
		return response.Response{}, err
	}

	result, cookies, err := repo.Impersonate(ctx.Context(), req.UserID)
	if err != nil {
		return response.Response{}, err
	}

	return response.Success(result).WithCookies(cookies...), nil
}

func stopImpersonating(ctx *procedure.Context, _ *validation.EmptyRequest) (response.Response, error) {
	repo, err := procedure.Get(ctx, procedure.AdminKey)
	if err != nil {
		return response.Response{}, err
	}

	result, cookies, err := repo.StopImpersonating(ctx.Context())
	if err != nil {
		return response.Response{}, err
	}

	return response.Success(result).WithCookies(cookies...), nil
}

func setUserRole(ctx *procedure.Context, req *admin.SetRoleRequest) (response.Response, error) {
	repo, err := procedure.Get(ctx, procedure.AdminKey)
	if err != nil {
		return response.Response{}, err
	}

	result, err := repo.SetRole(ctx.Context(), req)
	if err != nil {
		return response.Response{}, err
	}

	return response.Success(result), nil
}
