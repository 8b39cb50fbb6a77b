package provider

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/deppfellow/guardian/internal/errs"
)

// Error is a failed provider call.
//
// Status is zero when the provider could not be reached at all; Err then holds
// the transport error.
type Error struct {
	Method  string
	Path    string
	Status  int
	Code    string
	Message string
	Err     error
}

func (e *Error) Error() string {
	switch {
	case e.Err != nil && e.Status == 0:
		return fmt.Sprintf("provider %s %s: %v", e.Method, e.Path, e.Err)
	case e.Err != nil:
		return fmt.Sprintf("provider %s %s: status %d: %v", e.Method, e.Path, e.Status, e.Err)
	default:
		return fmt.Sprintf("provider %s %s: status %d: %s %s", e.Method, e.Path, e.Status, e.Code, e.Message)
	}
}

func (e *Error) Unwrap() error {
	return e.Err
}

// HTTPError maps the failure onto the client-facing error.
func (e *Error) HTTPError() *errs.HTTPError {
	if e.Err != nil {
		return errs.NewProviderError(http.StatusBadGateway, "", "")
	}
	return errs.NewProviderError(e.Status, e.Code, e.Message)
}

// IsNotFound reports whether the provider answered 404.
func (e *Error) IsNotFound() bool {
	return e.Status == http.StatusNotFound
}

type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	// Some endpoints nest the details under "error".
	Error *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func decodeError(method, path string, status int, raw []byte) *Error {
	perr := &Error{Method: method, Path: path, Status: status}

	var body errorBody
	if err := json.Unmarshal(raw, &body); err == nil {
		perr.Code, perr.Message = body.Code, body.Message
		if body.Error != nil {
			if perr.Code == "" {
				perr.Code = body.Error.Code
			}
			if perr.Message == "" {
				perr.Message = body.Error.Message
			}
		}
	}

	if perr.Message == "" {
		perr.Message = http.StatusText(status)
	}

	return perr
}
