package router

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/deppfellow/guardian/internal/config"
	"github.com/deppfellow/guardian/internal/errs"
	"github.com/deppfellow/guardian/internal/handler"
	"github.com/deppfellow/guardian/internal/model/billing"
	"github.com/deppfellow/guardian/internal/procedure"
	"github.com/deppfellow/guardian/internal/provider"
	"github.com/deppfellow/guardian/internal/provider/providertest"
	"github.com/deppfellow/guardian/internal/server"
	"github.com/deppfellow/guardian/internal/service"
	"github.com/hibiken/asynq"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stripe/stripe-go/v82"
)

type recordingEnqueuer struct {
	tasks []*asynq.Task
}

func (e *recordingEnqueuer) EnqueueContext(_ context.Context, task *asynq.Task, _ ...asynq.Option) (*asynq.TaskInfo, error) {
	e.tasks = append(e.tasks, task)
	return &asynq.TaskInfo{ID: task.Type()}, nil
}

type rejectingVerifier struct{}

func (rejectingVerifier) VerifyEvent([]byte, string) (stripe.Event, error) {
	return stripe.Event{}, assert.AnError
}

type nopRecorder struct{}

func (nopRecorder) Record(context.Context, *billing.Event) (bool, error) {
	return true, nil
}

type testAPI struct {
	echo     *echo.Echo
	provider *providertest.Server
	tasks    *recordingEnqueuer
}

func newTestAPI(t *testing.T, configure ...func(*config.Config)) *testAPI {
	t.Helper()

	fake := providertest.New(t)
	logger := zerolog.Nop()

	cfg := &config.Config{
		Primary: config.Primary{Env: "test"},
		Server: config.ServerConfig{
			BasePath:           "/api/v1",
			CORSAllowedOrigins: []string{"http://localhost:3000"},
		},
		Provider: config.ProviderConfig{
			BaseURL:       fake.URL,
			SessionCookie: providertest.SessionCookie,
		},
		Observability: config.DefaultObservabilityConfig(),
	}
	for _, fn := range configure {
		fn(cfg)
	}

	s := &server.Server{
		Config:   cfg,
		Logger:   &logger,
		Provider: provider.NewClient(fake.URL, 0),
	}

	tasks := &recordingEnqueuer{}
	services := &service.Services{
		Auth:    service.NewAuthService(tasks),
		Billing: service.NewBillingService(rejectingVerifier{}, nopRecorder{}, tasks),
	}

	procs := procedure.NewProcedures(s.Provider, services)
	e, err := NewRouter(s, handler.NewHandlers(s, services, procs))
	require.NoError(t, err)

	return &testAPI{echo: e, provider: fake, tasks: tasks}
}

func (a *testAPI) do(t *testing.T, method, path string, body any, token string) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	if token != "" {
		req.AddCookie(&http.Cookie{Name: providertest.SessionCookie, Value: token})
	}

	rec := httptest.NewRecorder()
	a.echo.ServeHTTP(rec, req)
	return rec
}

type envelope struct {
	Data  json.RawMessage `json:"data"`
	Error *errs.HTTPError `json:"error"`
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env), rec.Body.String())
	return env
}

func TestNewAppRouter_RejectsDuplicateRoutes(t *testing.T) {
	a := handler.Controller{Name: "a", Path: "/things", Actions: []handler.Action{
		{Name: "list", Method: http.MethodGet, Path: "/list"},
	}}
	b := handler.Controller{Name: "b", Path: "/things", Actions: []handler.Action{
		{Name: "all", Method: http.MethodGet, Path: "/list"},
	}}

	_, err := NewAppRouter("/api/v1", map[string]handler.Controller{"a": a, "b": b})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "GET /api/v1/things/list")
	assert.Contains(t, err.Error(), "a.list")
	assert.Contains(t, err.Error(), "b.all")
}

func TestNewAppRouter_SamePathDifferentMethod(t *testing.T) {
	c := handler.Controller{Name: "c", Path: "/things", Actions: []handler.Action{
		{Name: "get", Method: http.MethodGet, Path: "/item"},
		{Name: "remove", Method: http.MethodDelete, Path: "/item"},
	}}

	r, err := NewAppRouter("/api/v1/", map[string]handler.Controller{"c": c})
	require.NoError(t, err)

	ops := r.Operations()
	require.Len(t, ops, 2)
	assert.Equal(t, "/api/v1/things/item", ops[0].Path)
	assert.Equal(t, http.MethodDelete, ops[1].Method)
}

func TestOperations_CoverEveryController(t *testing.T) {
	api := newTestAPI(t)

	rec := api.do(t, http.MethodGet, "/operations", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)

	var ops []handler.Operation
	require.NoError(t, json.Unmarshal(decodeEnvelope(t, rec).Data, &ops))

	byName := map[string]handler.Operation{}
	for _, op := range ops {
		byName[op.Controller+"."+op.Action] = op
	}

	signIn := byName["auth.signIn"]
	assert.Equal(t, http.MethodPost, signIn.Method)
	assert.Equal(t, "/api/v1/auth/sign-in", signIn.Path)
	assert.Equal(t, "auth.SignInRequest", signIn.Input)
	assert.Equal(t, []string{"Auth"}, signIn.Procedures)

	assert.Equal(t, []string{"RequireSession", "Admin"}, byName["admin.banUser"].Procedures)
	assert.Equal(t, http.MethodPut, byName["organization.updateOrganization"].Method)
	assert.Equal(t, http.MethodDelete, byName["team.delete"].Method)

	for _, name := range []string{"auth", "organization", "member", "invitation", "team", "admin", "billing"} {
		found := false
		for _, op := range ops {
			if op.Controller == name {
				found = true
				break
			}
		}
		assert.True(t, found, "controller %s has no operations", name)
	}
}

func TestUnknownRoute_NotFoundEnvelope(t *testing.T) {
	api := newTestAPI(t)

	for _, tc := range []struct {
		method, path string
	}{
		{http.MethodGet, "/api/v1/nope"},
		{http.MethodGet, "/api/v1/teams/unknown"},
		{http.MethodPatch, "/api/v1/auth/sign-in"},
	} {
		rec := api.do(t, tc.method, tc.path, nil, "")
		require.Equal(t, http.StatusNotFound, rec.Code, "%s %s", tc.method, tc.path)

		env := decodeEnvelope(t, rec)
		require.NotNil(t, env.Error)
		assert.Equal(t, "Route not found", env.Error.Message)
		assert.Equal(t, "NOT_FOUND", env.Error.Code)
	}
	assert.Empty(t, api.provider.Requests())
}

func TestValidationFailure_NeverCallsProvider(t *testing.T) {
	api := newTestAPI(t)

	rec := api.do(t, http.MethodPost, "/api/v1/auth/sign-in", map[string]any{
		"email":    "not-an-email",
		"password": "123",
	}, "")

	require.Equal(t, http.StatusBadRequest, rec.Code)
	env := decodeEnvelope(t, rec)
	require.NotNil(t, env.Error)
	assert.Equal(t, "BAD_REQUEST", env.Error.Code)

	fields := map[string]string{}
	for _, fe := range env.Error.Errors {
		fields[fe.Field] = fe.Error
	}
	assert.Equal(t, "must be a valid email address", fields["email"])
	assert.Equal(t, "must be at least 6 characters", fields["password"])

	assert.Empty(t, api.provider.Requests())
}

func TestProtectedController_RequiresCredentials(t *testing.T) {
	api := newTestAPI(t)

	rec := api.do(t, http.MethodGet, "/api/v1/organizations/user-orgs", nil, "")

	require.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "UNAUTHORIZED", decodeEnvelope(t, rec).Error.Code)
	assert.Empty(t, api.provider.Requests())
}

func TestSignUpThenSession(t *testing.T) {
	api := newTestAPI(t)

	rec := api.do(t, http.MethodPost, "/api/v1/auth/sign-up", map[string]any{
		"email":    "ada@example.com",
		"password": "secret-pw",
		"name":     "Ada",
	}, "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var token string
	for _, cookie := range rec.Result().Cookies() {
		if cookie.Name == providertest.SessionCookie {
			token = cookie.Value
		}
	}
	require.NotEmpty(t, token, "provider session cookie is passed through")

	require.Len(t, api.tasks.tasks, 1)
	assert.Equal(t, "email:welcome", api.tasks.tasks[0].Type())

	rec = api.do(t, http.MethodGet, "/api/v1/auth/session", nil, token)
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Session *struct {
			User struct {
				Email string `json:"email"`
			} `json:"user"`
		} `json:"session"`
	}
	require.NoError(t, json.Unmarshal(decodeEnvelope(t, rec).Data, &body))
	require.NotNil(t, body.Session)
	assert.Equal(t, "ada@example.com", body.Session.User.Email)
}

func TestSession_NullWithoutCredentials(t *testing.T) {
	api := newTestAPI(t)

	rec := api.do(t, http.MethodGet, "/api/v1/auth/session", nil, "")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"session": null}`, string(decodeEnvelope(t, rec).Data))
}

func TestSignIn_ProviderRejectionPassesThrough(t *testing.T) {
	api := newTestAPI(t)

	rec := api.do(t, http.MethodPost, "/api/v1/auth/sign-in", map[string]any{
		"email":    "ghost@example.com",
		"password": "whatever",
	}, "")

	require.Equal(t, http.StatusUnauthorized, rec.Code)
	env := decodeEnvelope(t, rec)
	assert.Equal(t, "INVALID_EMAIL_OR_PASSWORD", env.Error.Code)
	assert.Equal(t, "Invalid email or password", env.Error.Message)
	assert.True(t, env.Error.Override)
}

func TestProviderFailure_BadGateway(t *testing.T) {
	api := newTestAPI(t)
	_, token := api.provider.CreateUser("ada@example.com", "secret-pw", "Ada")
	api.provider.Fail("/organization/list", http.StatusInternalServerError)

	rec := api.do(t, http.MethodGet, "/api/v1/organizations/user-orgs", nil, token)

	require.Equal(t, http.StatusBadGateway, rec.Code)
	env := decodeEnvelope(t, rec)
	assert.Equal(t, errs.CodeProviderUnavailable, env.Error.Code)
	assert.False(t, env.Error.Override)
}

func TestHeadersAreForwarded(t *testing.T) {
	api := newTestAPI(t)
	_, token := api.provider.CreateUser("ada@example.com", "secret-pw", "Ada")

	req := httptest.NewRequest(http.MethodGet, "/api/v1/organizations/user-orgs", nil)
	req.AddCookie(&http.Cookie{Name: providertest.SessionCookie, Value: token})
	req.Header.Set("User-Agent", "guardian-test")
	req.Header.Set("X-Forwarded-For", "203.0.113.7")
	rec := httptest.NewRecorder()
	api.echo.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	forwarded, ok := api.provider.Last("/organization/list")
	require.True(t, ok)
	assert.Contains(t, forwarded.Header.Get("Cookie"), providertest.SessionCookie+"="+token)
	assert.Equal(t, "guardian-test", forwarded.Header.Get("User-Agent"))
	assert.Equal(t, "203.0.113.7", forwarded.Header.Get("X-Forwarded-For"))
}

func TestCreateOrganization_DefaultsSlugAndAnswersCreated(t *testing.T) {
	api := newTestAPI(t)
	_, token := api.provider.CreateUser("ada@example.com", "secret-pw", "Ada")

	rec := api.do(t, http.MethodPost, "/api/v1/organizations/create-org", map[string]any{
		"name": "Acme Support Desk",
	}, token)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	sent, ok := api.provider.Last("/organization/create")
	require.True(t, ok)
	assert.Equal(t, "acme-support-desk", sent.Body["slug"])
	assert.Equal(t, "TRIAL", sent.Body["plan"])
}

func TestGetActiveOrganization_Idempotent(t *testing.T) {
	api := newTestAPI(t)
	_, token := api.provider.CreateUser("ada@example.com", "secret-pw", "Ada")

	rec := api.do(t, http.MethodGet, "/api/v1/organizations/active", nil, token)
	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "No active organization", decodeEnvelope(t, rec).Error.Message)

	rec = api.do(t, http.MethodPost, "/api/v1/organizations/create-org", map[string]any{"name": "Acme"}, token)
	require.Equal(t, http.StatusCreated, rec.Code)

	first := api.do(t, http.MethodGet, "/api/v1/organizations/active", nil, token)
	second := api.do(t, http.MethodGet, "/api/v1/organizations/active", nil, token)

	require.Equal(t, http.StatusOK, first.Code)
	require.Equal(t, http.StatusOK, second.Code)
	assert.JSONEq(t, first.Body.String(), second.Body.String())
}

func TestCreatedTeamIsListed(t *testing.T) {
	api := newTestAPI(t)
	_, token := api.provider.CreateUser("ada@example.com", "secret-pw", "Ada")

	rec := api.do(t, http.MethodPost, "/api/v1/organizations/create-org", map[string]any{"name": "Acme"}, token)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = api.do(t, http.MethodPost, "/api/v1/teams/create", map[string]any{"name": "Night shift"}, token)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var created struct {
		ID string `json:"id"`
	}
	require.NoError(t, json.Unmarshal(decodeEnvelope(t, rec).Data, &created))

	rec = api.do(t, http.MethodGet, "/api/v1/teams/list", nil, token)
	require.Equal(t, http.StatusOK, rec.Code)

	var teams []struct {
		ID   string `json:"id"`
		Name string `json:"name"`
	}
	require.NoError(t, json.Unmarshal(decodeEnvelope(t, rec).Data, &teams))
	require.Len(t, teams, 1)
	assert.Equal(t, created.ID, teams[0].ID)
	assert.Equal(t, "Night shift", teams[0].Name)
}

func TestGetActiveTeam_NotFoundWhenUnset(t *testing.T) {
	api := newTestAPI(t)
	_, token := api.provider.CreateUser("ada@example.com", "secret-pw", "Ada")

	rec := api.do(t, http.MethodGet, "/api/v1/teams/active", nil, token)

	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "No active team", decodeEnvelope(t, rec).Error.Message)
}

func TestAddMember_DefaultsRole(t *testing.T) {
	api := newTestAPI(t)
	_, token := api.provider.CreateUser("ada@example.com", "secret-pw", "Ada")
	bobID, _ := api.provider.CreateUser("bob@example.com", "secret-pw", "Bob")

	rec := api.do(t, http.MethodPost, "/api/v1/organizations/create-org", map[string]any{"name": "Acme"}, token)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = api.do(t, http.MethodPost, "/api/v1/members/organization/add", map[string]any{"userId": bobID}, token)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	sent, ok := api.provider.Last("/organization/add-member")
	require.True(t, ok)
	assert.Equal(t, []any{"member"}, sent.Body["role"])
}

func TestAcceptInvitationTwice(t *testing.T) {
	api := newTestAPI(t)
	_, adaToken := api.provider.CreateUser("ada@example.com", "secret-pw", "Ada")
	_, bobToken := api.provider.CreateUser("bob@example.com", "secret-pw", "Bob")

	rec := api.do(t, http.MethodPost, "/api/v1/organizations/create-org", map[string]any{"name": "Acme"}, adaToken)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = api.do(t, http.MethodPost, "/api/v1/invitations/send", map[string]any{
		"email": "bob@example.com",
		"role":  "admin,member",
	}, adaToken)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var inv struct {
		ID   string   `json:"id"`
		Role []string `json:"role"`
	}
	require.NoError(t, json.Unmarshal(decodeEnvelope(t, rec).Data, &inv))
	assert.Equal(t, []string{"admin", "member"}, inv.Role)

	rec = api.do(t, http.MethodPost, "/api/v1/invitations/accept", map[string]any{"invitationId": inv.ID}, bobToken)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = api.do(t, http.MethodPost, "/api/v1/invitations/accept", map[string]any{"invitationId": inv.ID}, bobToken)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "INVITATION_NOT_FOUND", decodeEnvelope(t, rec).Error.Code)
}

func TestBanUser_UnknownUser(t *testing.T) {
	api := newTestAPI(t)
	_, token := api.provider.CreateUser("admin@example.com", "secret-pw", "Admin")

	rec := api.do(t, http.MethodPost, "/api/v1/admin/ban-user", map[string]any{
		"userId": "user_missing",
		"reason": "spam",
	}, token)

	require.Equal(t, http.StatusNotFound, rec.Code)
	env := decodeEnvelope(t, rec)
	assert.Equal(t, "USER_NOT_FOUND", env.Error.Code)
	assert.Equal(t, 1, api.provider.Count("/get-session"), "session is resolved before the admin call")
}

func TestAdmin_StaleSessionIsUnauthorized(t *testing.T) {
	api := newTestAPI(t)

	rec := api.do(t, http.MethodPost, "/api/v1/admin/unban-user", map[string]any{"userId": "user_1"}, "stale-token")

	require.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Zero(t, api.provider.Count("/admin/unban-user"))
}

func TestDeleteTeam_NoContent(t *testing.T) {
	api := newTestAPI(t)
	_, token := api.provider.CreateUser("ada@example.com", "secret-pw", "Ada")

	rec := api.do(t, http.MethodPost, "/api/v1/organizations/create-org", map[string]any{"name": "Acme"}, token)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = api.do(t, http.MethodPost, "/api/v1/teams/create", map[string]any{"name": "Night shift"}, token)
	require.Equal(t, http.StatusCreated, rec.Code)

	var created struct {
		ID string `json:"id"`
	}
	require.NoError(t, json.Unmarshal(decodeEnvelope(t, rec).Data, &created))

	rec = api.do(t, http.MethodDelete, "/api/v1/teams/delete", map[string]any{"teamId": created.ID}, token)
	require.Equal(t, http.StatusNoContent, rec.Code)
	assert.Empty(t, rec.Body.String())

	rec = api.do(t, http.MethodDelete, "/api/v1/teams/delete", map[string]any{"teamId": created.ID}, token)
	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "TEAM_NOT_FOUND", decodeEnvelope(t, rec).Error.Code)
}

func TestBillingWebhook_InvalidSignature(t *testing.T) {
	api := newTestAPI(t)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/billing/webhook", strings.NewReader(`{"id":"evt_1"}`))
	req.Header.Set("Stripe-Signature", "t=1,v1=bad")
	rec := httptest.NewRecorder()
	api.echo.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "INVALID_SIGNATURE", decodeEnvelope(t, rec).Error.Code)
	assert.Empty(t, api.tasks.tasks)
}

func TestStatus_ReportsProvider(t *testing.T) {
	api := newTestAPI(t)

	rec := api.do(t, http.MethodGet, "/status", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)

	var report handler.HealthReport
	require.NoError(t, json.Unmarshal(decodeEnvelope(t, rec).Data, &report))
	assert.Equal(t, "healthy", report.Status)
	assert.Equal(t, "healthy", report.Checks["provider"].Status)

	api.provider.Fail("/ok", http.StatusServiceUnavailable)
	rec = api.do(t, http.MethodGet, "/status", nil, "")
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
}
