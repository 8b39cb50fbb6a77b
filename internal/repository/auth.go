package repository

import (
	"context"
	"errors"
	"net/http"

	"github.com/deppfellow/guardian/internal/model/auth"
	"github.com/deppfellow/guardian/internal/provider"
)

// AuthRepository signs callers in and out and resolves their session.
// Operations that change the session return the cookies the provider issued.
type AuthRepository interface {
	SignIn(ctx context.Context, req *auth.SignInRequest) (*auth.Result, []*http.Cookie, error)
	SignUp(ctx context.Context, req *auth.SignUpRequest) (*auth.Result, []*http.Cookie, error)
	// GetSession returns nil when the caller has no valid session.
	GetSession(ctx context.Context) (*auth.CurrentSession, error)
	SignOut(ctx context.Context) (*auth.SignOutResult, []*http.Cookie, error)
}

type authRepository struct {
	provider *provider.Forwarder
}

func NewAuthRepository(f *provider.Forwarder) AuthRepository {
	return &authRepository{provider: f}
}

func (r *authRepository) SignIn(ctx context.Context, req *auth.SignInRequest) (*auth.Result, []*http.Cookie, error) {
	var result auth.Result
	reply, err := r.provider.Post(ctx, "/sign-in/email", req, &result)
	if err != nil {
		return nil, nil, err
	}
	return &result, reply.Cookies(), nil
}

func (r *authRepository) SignUp(ctx context.Context, req *auth.SignUpRequest) (*auth.Result, []*http.Cookie, error) {
	var result auth.Result
	reply, err := r.provider.Post(ctx, "/sign-up/email", req, &result)
	if err != nil {
		return nil, nil, err
	}
	return &result, reply.Cookies(), nil
}

func (r *authRepository) GetSession(ctx context.Context) (*auth.CurrentSession, error) {
	var session *auth.CurrentSession
	if _, err := r.provider.Get(ctx, "/get-session", nil, &session); err != nil {
		// A rejected lookup means "no session"; only an unreachable or
		// failing provider is an error.
		var perr *provider.Error
		if errors.As(err, &perr) && perr.Status >= 400 && perr.Status < 500 {
			return nil, nil
		}
		return nil, err
	}
	return session, nil
}

func (r *authRepository) SignOut(ctx context.Context) (*auth.SignOutResult, []*http.Cookie, error) {
	var result auth.SignOutResult
	reply, err := r.provider.Post(ctx, "/sign-out", nil, &result)
	if err != nil {
		return nil, nil, err
	}
	return &result, reply.Cookies(), nil
}
