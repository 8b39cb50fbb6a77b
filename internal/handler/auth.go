package handler

import (
	"github.com/deppfellow/guardian/internal/model/auth"
	"github.com/deppfellow/guardian/internal/procedure"
	"github.com/deppfellow/guardian/internal/response"
	"github.com/deppfellow/guardian/internal/validation"
)

func NewAuthController(p *procedure.Procedures) Controller {
	use := []procedure.Procedure{p.Auth}

	return Controller{
		Name:        "auth",
		Description: "Sign-in, sign-up and session management",
		Path:        "/auth",
		Actions: []Action{
			Mutation("signIn", "/sign-in", ActionConfig{
				Description: "Sign in with e-mail and password",
				Use:         use,
			}, signIn),
			Mutation("signUp", "/sign-up", ActionConfig{
				Description: "Create an account with e-mail and password",
				Use:         use,
			}, signUp),
			Query("session", "/session", ActionConfig{
				Description: "Current session, or null",
				Use:         use,
			}, getSession),
			Mutation("signOut", "/sign-out", ActionConfig{
				Description: "End the current session",
				Use:         use,
			}, signOut),
		},
	}
}

func signIn(ctx *procedure.Context, req *auth.SignInRequest) (response.Response, error) {
	repo, err := procedure.Get(ctx, procedure.AuthKey)
	if err != nil {
		return response.Response{}, err
	}

	result, cookies, err := repo.SignIn(ctx.Context(), req)
	if err != nil {
		return response.Response{}, err
	}

	return response.Success(result).WithCookies(cookies...), nil
}

func signUp(ctx *procedure.Context, req *auth.SignUpRequest) (response.Response, error) {
	repo, err := procedure.Get(ctx, procedure.AuthKey)
	if err != nil {
		return response.Response{}, err
	}

	result, cookies, err := repo.SignUp(ctx.Context(), req)
	if err != nil {
		return response.Response{}, err
	}

	return response.Success(result).WithCookies(cookies...), nil
}

func getSession(ctx *procedure.Context, _ *validation.EmptyRequest) (response.Response, error) {
	repo, err := procedure.Get(ctx, procedure.AuthKey)
	if err != nil {
		return response.Response{}, err
	}

	session, err := repo.GetSession(ctx.Context())
	if err != nil {
		return response.Response{}, err
	}

	return response.Success(auth.SessionResponse{Session: session}), nil
}

func signOut(ctx *procedure.Context, _ *validation.EmptyRequest) (response.Response, error) {
	repo, err := procedure.Get(ctx, procedure.AuthKey)
	if err != nil {
		return response.Response{}, err
	}

	result, cookies, err := repo.SignOut(ctx.Context())
	if err != nil {
		return response.Response{}, err
	}

	return response.Success(result).WithCookies(cookies...), nil
}
