package handler

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/deppfellow/guardian/internal/errs"
	"github.com/deppfellow/guardian/internal/procedure"
	"github.com/deppfellow/guardian/internal/response"
	"github.com/deppfellow/guardian/internal/validation"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type greetRequest struct {
	Name string `json:"name" validate:"required,min=2"`
}

func (r *greetRequest) Validate() error {
	return validation.Struct(r)
}

var greeterKey = procedure.NewKey[string]("greeter")

type countingProcedure struct {
	calls int
	err   error
}

func (p *countingProcedure) Name() string { return "Greeter" }

func (p *countingProcedure) Handle(*procedure.Context) (procedure.Capabilities, error) {
	p.calls++
	if p.err != nil {
		return nil, p.err
	}
	return procedure.Capabilities{greeterKey.Name(): "hello"}, nil
}

func greet(ctx *procedure.Context, req *greetRequest) (response.Response, error) {
	greeting, err := procedure.Get(ctx, greeterKey)
	if err != nil {
		return response.Response{}, err
	}
	return response.Success(map[string]string{"message": greeting + " " + req.Name}), nil
}

func serve(t *testing.T, action Action, body string) (*httptest.ResponseRecorder, error) {
	t.Helper()

	e := echo.New()
	req := httptest.NewRequest(action.Method, "/greet", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()

	err := action.HandlerFunc("greeter")(e.NewContext(req, rec))
	return rec, err
}

func TestAction_Success(t *testing.T) {
	proc := &countingProcedure{}
	action := Mutation("greet", "/greet", ActionConfig{Use: []procedure.Procedure{proc}}, greet)

	rec, err := serve(t, action, `{"name":"Ada"}`)

	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"data":{"message":"hello Ada"},"error":null}`, rec.Body.String())
	assert.Equal(t, 1, proc.calls)
}

func TestAction_ValidationSkipsProcedures(t *testing.T) {
	proc := &countingProcedure{}
	action := Mutation("greet", "/greet", ActionConfig{Use: []procedure.Procedure{proc}}, greet)

	_, err := serve(t, action, `{"name":"A"}`)

	var httpErr *errs.HTTPError
	require.ErrorAs(t, err, &httpErr)
	assert.Equal(t, http.StatusBadRequest, httpErr.Status)
	require.Len(t, httpErr.Errors, 1)
	assert.Equal(t, "name", httpErr.Errors[0].Field)
	assert.Zero(t, proc.calls)
}

func TestAction_MalformedBody(t *testing.T) {
	action := Mutation("greet", "/greet", ActionConfig{}, greet)

	_, err := serve(t, action, `{"name":`)

	var httpErr *errs.HTTPError
	require.ErrorAs(t, err, &httpErr)
	assert.Equal(t, http.StatusBadRequest, httpErr.Status)
}

func TestAction_ProcedureFailureSkipsHandler(t *testing.T) {
	proc := &countingProcedure{err: errs.NewUnauthorizedError("Unauthorized", false)}
	called := false
	action := Mutation("greet", "/greet", ActionConfig{Use: []procedure.Procedure{proc}},
		func(*procedure.Context, *greetRequest) (response.Response, error) {
			called = true
			return response.NoContent(), nil
		})

	_, err := serve(t, action, `{"name":"Ada"}`)

	require.Error(t, err)
	assert.False(t, called)
}

func TestAction_UndeclaredCapability(t *testing.T) {
	action := Mutation("greet", "/greet", ActionConfig{}, greet)

	_, err := serve(t, action, `{"name":"Ada"}`)

	require.Error(t, err)
	assert.Contains(t, err.Error(), `"greeter"`)
}

func TestAction_EmptyResponseBecomesServerError(t *testing.T) {
	action := Mutation("greet", "/greet", ActionConfig{},
		func(*procedure.Context, *greetRequest) (response.Response, error) {
			return response.Response{}, nil
		})

	rec, err := serve(t, action, `{"name":"Ada"}`)

	require.NoError(t, err)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestAction_HandlerErrorIsReturned(t *testing.T) {
	boom := errors.New("boom")
	action := Mutation("greet", "/greet", ActionConfig{},
		func(*procedure.Context, *greetRequest) (response.Response, error) {
			return response.Response{}, boom
		})

	_, err := serve(t, action, `{"name":"Ada"}`)

	assert.ErrorIs(t, err, boom)
}

func TestActionDeclarations(t *testing.T) {
	proc := &countingProcedure{}

	query := Query("greet", "/greet", ActionConfig{Method: http.MethodPost, Use: []procedure.Procedure{proc}}, greet)
	assert.Equal(t, http.MethodGet, query.Method)
	assert.Equal(t, "handler.greetRequest", query.Input)
	assert.Equal(t, []string{"Greeter"}, query.ProcedureNames())

	mutation := Mutation("greet", "/greet", ActionConfig{}, greet)
	assert.Equal(t, http.MethodPost, mutation.Method)

	put := Mutation("greet", "/greet", ActionConfig{Method: http.MethodPut}, greet)
	assert.Equal(t, http.MethodPut, put.Method)
}
