// Package response builds the uniform envelope every endpoint answers with.
//
// Handlers never write to echo directly. They return a Response built with one
// of the helpers below (Success, Created, NoContent, NotFound, ...) and the
// handler pipeline writes it. Errors returned instead of a Response are
// rendered into the same envelope by the global error handler.
package response

import (
	"net/http"

	"github.com/deppfellow/guardian/internal/errs"
	"github.com/labstack/echo/v4"
)

// Outcome classifies a Response independently of its status code.
type Outcome string

const (
	OutcomeSuccess     Outcome = "success"
	OutcomeCreated     Outcome = "created"
	OutcomeNoContent   Outcome = "no_content"
	OutcomeNotFound    Outcome = "not_found"
	OutcomeClientError Outcome = "client_error"
	OutcomeServerError Outcome = "server_error"
)

// Envelope is the JSON body of every response that carries one.
//
//	{"data": {...}, "error": null}
//	{"data": null, "error": {"code": "NOT_FOUND", ...}}
type Envelope struct {
	Data  any             `json:"data"`
	Error *errs.HTTPError `json:"error"`
}

// Response is the value a handler returns. It is immutable: helpers and
// WithCookies always return a new value.
type Response struct {
	Outcome Outcome
	Status  int
	Data    any
	Err     *errs.HTTPError
	Cookies []*http.Cookie
}

func Success(data any) Response {
	return Response{Outcome: OutcomeSuccess, Status: http.StatusOK, Data: data}
}

func Created(data any) Response {
	return Response{Outcome: OutcomeCreated, Status: http.StatusCreated, Data: data}
}

// NoContent answers 204 with no body.
func NoContent() Response {
	return Response{Outcome: OutcomeNoContent, Status: http.StatusNoContent}
}

func NotFound(message string) Response {
	return ClientError(errs.NewNotFoundError(message, true, nil))
}

// ClientError wraps a 4xx error into a response.
func ClientError(err *errs.HTTPError) Response {
	outcome := OutcomeClientError
	if err.Status == http.StatusNotFound {
		outcome = OutcomeNotFound
	}
	return Response{Outcome: outcome, Status: err.Status, Err: err}
}

// ServerError answers a generic 500.
func ServerError() Response {
	err := errs.NewInternalServerError()
	return Response{Outcome: OutcomeServerError, Status: err.Status, Err: err}
}

// Found answers Success with *v, or NotFound with message when v is nil.
func Found[T any](v *T, message string) Response {
	if v == nil {
		return NotFound(message)
	}
	return Success(v)
}

// WithCookies returns a copy of r that also sets cookies on the client.
// Used to propagate session cookies issued by the identity provider.
func (r Response) WithCookies(cookies ...*http.Cookie) Response {
	merged := make([]*http.Cookie, 0, len(r.Cookies)+len(cookies))
	merged = append(merged, r.Cookies...)
	merged = append(merged, cookies...)
	r.Cookies = merged
	return r
}

// Envelope renders the body of r.
func (r Response) Envelope() Envelope {
	if r.Err != nil {
		return Envelope{Error: r.Err}
	}
	return Envelope{Data: r.Data}
}

// Write sends r through echo.
func Write(c echo.Context, r Response) error {
	for _, cookie := range r.Cookies {
		c.SetCookie(cookie)
	}

	if r.Status == http.StatusNoContent {
		return c.NoContent(r.Status)
	}

	return c.JSON(r.Status, r.Envelope())
}

// WriteError renders err as an error envelope.
func WriteError(c echo.Context, err *errs.HTTPError) error {
	return c.JSON(err.Status, Envelope{Error: err})
}
