package response

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/deppfellow/guardian/internal/errs"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func write(t *testing.T, r Response) *httptest.ResponseRecorder {
	t.Helper()

	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)

	require.NoError(t, Write(c, r))
	return rec
}

func TestWrite(t *testing.T) {
	tests := []struct {
		name     string
		response Response
		status   int
		body     string
	}{
		{
			name:     "success",
			response: Success(map[string]int{"n": 1}),
			status:   http.StatusOK,
			body:     `{"data":{"n":1},"error":null}`,
		},
		{
			name:     "created",
			response: Created([]string{"a"}),
			status:   http.StatusCreated,
			body:     `{"data":["a"],"error":null}`,
		},
		{
			name:     "success with null data",
			response: Success(nil),
			status:   http.StatusOK,
			body:     `{"data":null,"error":null}`,
		},
		{
			name:     "not found",
			response: NotFound("No active team"),
			status:   http.StatusNotFound,
			body: `{"data":null,"error":{"code":"NOT_FOUND","message":"No active team","status":404,
				"override":true,"errors":null,"action":null}}`,
		},
		{
			name:     "server error",
			response: ServerError(),
			status:   http.StatusInternalServerError,
			body: `{"data":null,"error":{"code":"INTERNAL_SERVER_ERROR","message":"Internal Server Error",
				"status":500,"override":false,"errors":null,"action":null}}`,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			rec := write(t, tc.response)
			assert.Equal(t, tc.status, rec.Code)
			assert.JSONEq(t, tc.body, rec.Body.String())
		})
	}
}

func TestWrite_NoContentHasNoBody(t *testing.T) {
	rec := write(t, NoContent())

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Empty(t, rec.Body.Bytes())
}

func TestClientError_Outcome(t *testing.T) {
	assert.Equal(t, OutcomeNotFound, ClientError(errs.NewNotFoundError("gone", true, nil)).Outcome)
	assert.Equal(t, OutcomeClientError, ClientError(errs.NewForbiddenError("no", true)).Outcome)
}

func TestFound(t *testing.T) {
	var missing *struct{ ID string }
	assert.Equal(t, http.StatusNotFound, Found(missing, "missing").Status)

	present := &struct{ ID string }{ID: "x"}
	r := Found(present, "missing")
	assert.Equal(t, http.StatusOK, r.Status)
	assert.Same(t, present, r.Data)
}

func TestWithCookies_DoesNotMutate(t *testing.T) {
	base := Success("ok")
	withOne := base.WithCookies(&http.Cookie{Name: "a", Value: "1"})
	withTwo := withOne.WithCookies(&http.Cookie{Name: "b", Value: "2"})

	assert.Empty(t, base.Cookies)
	assert.Len(t, withOne.Cookies, 1)
	assert.Len(t, withTwo.Cookies, 2)

	rec := write(t, withTwo)
	assert.Len(t, rec.Result().Cookies(), 2)
}
