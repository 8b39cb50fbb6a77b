package repository

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/deppfellow/guardian/internal/model/admin"
	"github.com/deppfellow/guardian/internal/model/auth"
	"github.com/deppfellow/guardian/internal/provider"
)

type AdminRepository interface {
	CreateUser(ctx context.Context, req *admin.CreateUserRequest) (*admin.UserResult, error)
	ListUsers(ctx context.Context, req *admin.ListUsersRequest) (*admin.UserList, error)
	BanUser(ctx context.Context, req *admin.BanUserRequest) (*admin.UserResult, error)
	UnbanUser(ctx context.Context, userID string) (*admin.UserResult, error)
	RemoveUser(ctx context.Context, userID string) (*admin.Result, error)
	ListUserSessions(ctx context.Context, userID string) (*admin.SessionList, error)
	RevokeSession(ctx context.Context, sessionToken string) (*admin.Result, error)
	RevokeSessions(ctx context.Context, userID string) (*admin.Result, error)
	Impersonate(ctx context.Context, userID string) (*admin.Impersonation, []*http.Cookie, error)
	StopImpersonating(ctx context.Context) (*admin.Result, []*http.Cookie, error)
	SetRole(ctx context.Context, req *admin.SetRoleRequest) (*admin.UserResult, error)
}

type adminRepository struct {
	provider *provider.Forwarder
	now      func() time.Time
}

func NewAdminRepository(f *provider.Forwarder) AdminRepository {
	return &adminRepository{provider: f, now: time.Now}
}

func (r *adminRepository) CreateUser(ctx context.Context, req *admin.CreateUserRequest) (*admin.UserResult, error) {
	var result admin.UserResult
	if _, err := r.provider.Post(ctx, "/admin/create-user", req, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (r *adminRepository) ListUsers(ctx context.Context, req *admin.ListUsersRequest) (*admin.UserList, error) {
	query := url.Values{}
	if req.SearchValue != "" {
		query.Set("searchValue", req.SearchValue)
		query.Set("searchOperator", "contains")
		field := req.SearchField
		if field == "" {
			field = "email"
		}
		query.Set("searchField", field)
	}
	if req.Limit > 0 {
		query.Set("limit", strconv.Itoa(req.Limit))
	}
	if req.Offset > 0 {
		query.Set("offset", strconv.Itoa(req.Offset))
	}

	list := admin.UserList{Users: []auth.User{}}
	if _, err := r.provider.Get(ctx, "/admin/list-users", query, &list); err != nil {
		return nil, err
	}
	return &list, nil
}

func (r *adminRepository) BanUser(ctx context.Context, req *admin.BanUserRequest) (*admin.UserResult, error) {
	body := map[string]any{"userId": req.UserID}
	if req.Reason != nil {
		body["banReason"] = *req.Reason
	}
	if expiresIn := req.ExpiresIn(r.now()); expiresIn != nil {
		body["banExpiresIn"] = *expiresIn
	}

	var result admin.UserResult
	if _, err := r.provider.Post(ctx, "/admin/ban-user", body, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (r *adminRepository) UnbanUser(ctx context.Context, userID string) (*admin.UserResult, error) {
	var result admin.UserResult
	if _, err := r.provider.Post(ctx, "/admin/unban-user", userBody(userID), &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (r *adminRepository) RemoveUser(ctx context.Context, userID string) (*admin.Result, error) {
	var result admin.Result
	if _, err := r.provider.Post(ctx, "/admin/remove-user", userBody(userID), &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (r *adminRepository) ListUserSessions(ctx context.Context, userID string) (*admin.SessionList, error) {
	list := admin.SessionList{Sessions: []auth.Session{}}
	if _, err := r.provider.Post(ctx, "/admin/list-user-sessions", userBody(userID), &list); err != nil {
		return nil, err
	}
	return &list, nil
}

func (r *adminRepository) RevokeSession(ctx context.Context, sessionToken string) (*admin.Result, error) {
	body := map[string]any{"sessionToken": sessionToken}

	var result admin.Result
	if _, err := r.provider.Post(ctx, "/admin/revoke-user-session", body, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (r *adminRepository) RevokeSessions(ctx context.Context, userID string) (*admin.Result, error) {
	var result admin.Result
	if _, err := r.provider.Post(ctx, "/admin/revoke-user-sessions", userBody(userID), &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (r *adminRepository) Impersonate(ctx context.Context, userID string) (*admin.Impersonation, []*http.Cookie, error) {
	var result admin.Impersonation
	reply, err := r.provider.Post(ctx, "/admin/impersonate-user", userBody(userID), &result)
	if err != nil {
		return nil, nil, err
	}
	return &result, reply.Cookies(), nil
}

func (r *adminRepository) StopImpersonating(ctx context.Context) (*admin.Result, []*http.Cookie, error) {
	var result admin.Result
	reply, err := r.provider.Post(ctx, "/admin/stop-impersonating", nil, &result)
	if err != nil {
		return nil, nil, err
	}
	// The provider answers with the restored admin session rather than a flag.
	result.Success = true
	return &result, reply.Cookies(), nil
}

func (r *adminRepository) SetRole(ctx context.Context, req *admin.SetRoleRequest) (*admin.UserResult, error) {
	var result admin.UserResult
	if _, err := r.provider.Post(ctx, "/admin/set-role", req, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func userBody(userID string) map[string]any {
	return map[string]any{"userId": userID}
}
