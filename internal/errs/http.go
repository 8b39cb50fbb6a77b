package errs

import (
	"net/http"
)

func NewUnauthorizedError(message string, override bool) *HTTPError {
	return &HTTPError{
		Code:     MakeUpperCaseWithUnderscores(http.StatusText(http.StatusUnauthorized)),
		Message:  message,
		Status:   http.StatusUnauthorized,
		Override: override,
	}
}

func NewForbiddenError(message string, override bool) *HTTPError {
	return &HTTPError{
		Code:     MakeUpperCaseWithUnderscores(http.StatusText(http.StatusForbidden)),
		Message:  message,
		Status:   http.StatusForbidden,
		Override: override,
	}
}

// NewBadRequestError builds a 400. code replaces the default BAD_REQUEST when
// set; errors carries per-field validation failures.
func NewBadRequestError(message string, override bool, code *string, errors []FieldError, action *Action) *HTTPError {
	formattedCode := MakeUpperCaseWithUnderscores(http.StatusText(http.StatusBadRequest))
	if code != nil {
		formattedCode = *code
	}

	return &HTTPError{
		Code:     formattedCode,
		Message:  message,
		Status:   http.StatusBadRequest,
		Override: override,
		Errors:   errors,
		Action:   action,
	}
}

func NewNotFoundError(message string, override bool, code *string) *HTTPError {
	formattedCode := MakeUpperCaseWithUnderscores(http.StatusText(http.StatusNotFound))
	if code != nil {
		formattedCode = *code
	}

	return &HTTPError{
		Code:     formattedCode,
		Message:  message,
		Status:   http.StatusNotFound,
		Override: override,
	}
}

// NewInternalServerError never carries the underlying error's text.
func NewInternalServerError() *HTTPError {
	return &HTTPError{
		Code:     MakeUpperCaseWithUnderscores(http.StatusText(http.StatusInternalServerError)),
		Message:  http.StatusText(http.StatusInternalServerError),
		Status:   http.StatusInternalServerError,
		Override: false,
	}
}

func NewTooManyRequestsError(message string) *HTTPError {
	return &HTTPError{
		Code:     MakeUpperCaseWithUnderscores(http.StatusText(http.StatusTooManyRequests)),
		Message:  message,
		Status:   http.StatusTooManyRequests,
		Override: true,
	}
}

func NewServiceUnavailableError(message string) *HTTPError {
	return &HTTPError{
		Code:     MakeUpperCaseWithUnderscores(http.StatusText(http.StatusServiceUnavailable)),
		Message:  message,
		Status:   http.StatusServiceUnavailable,
		Override: false,
	}
}

// CodeProviderUnavailable is reported when the identity provider answered
// with a server error or could not be reached.
const CodeProviderUnavailable = "PROVIDER_UNAVAILABLE"

// NewProviderError translates a failed identity provider call.
//
// Client errors (4xx) keep the provider's status, code and message so the
// caller sees the real reason (user not found, invitation already accepted).
// Anything else becomes a 502 without leaking provider details.
func NewProviderError(status int, code, message string) *HTTPError {
	if status < http.StatusBadRequest || status >= http.StatusInternalServerError {
		return &HTTPError{
			Code:     CodeProviderUnavailable,
			Message:  "Identity provider unavailable",
			Status:   http.StatusBadGateway,
			Override: false,
		}
	}

	if code == "" {
		code = http.StatusText(status)
	}
	if message == "" {
		message = http.StatusText(status)
	}

	return &HTTPError{
		Code:     MakeUpperCaseWithUnderscores(code),
		Message:  message,
		Status:   status,
		Override: true,
	}
}
