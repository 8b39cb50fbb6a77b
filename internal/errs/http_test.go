package errs

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewProviderError(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		code     string
		message  string
		want     int
		wantCode string
		override bool
	}{
		{"client error passes through", http.StatusUnauthorized, "INVALID_EMAIL_OR_PASSWORD", "Invalid email or password", http.StatusUnauthorized, "INVALID_EMAIL_OR_PASSWORD", true},
		{"lower case code is normalised", http.StatusBadRequest, "slug is taken", "Slug is taken", http.StatusBadRequest, "SLUG_IS_TAKEN", true},
		{"missing code uses status text", http.StatusNotFound, "", "", http.StatusNotFound, "NOT_FOUND", true},
		{"server error is hidden", http.StatusInternalServerError, "DB_DOWN", "pq: connection refused", http.StatusBadGateway, CodeProviderUnavailable, false},
		{"network failure", 0, "", "", http.StatusBadGateway, CodeProviderUnavailable, false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := NewProviderError(tc.status, tc.code, tc.message)

			assert.Equal(t, tc.want, err.Status)
			assert.Equal(t, tc.wantCode, err.Code)
			assert.Equal(t, tc.override, err.Override)
			if tc.want == http.StatusBadGateway && tc.message != "" {
				assert.NotContains(t, err.Message, tc.message)
			}
		})
	}
}

func TestNewBadRequestError_CustomCode(t *testing.T) {
	code := "INVALID_SIGNATURE"
	err := NewBadRequestError("Invalid webhook signature", true, &code, nil, nil)

	assert.Equal(t, "INVALID_SIGNATURE", err.Code)
	assert.Equal(t, http.StatusBadRequest, err.Status)
	assert.Equal(t, "Invalid webhook signature", err.Error())
}

func TestWithMessage_Copies(t *testing.T) {
	base := NewForbiddenError("Forbidden", false)
	changed := base.WithMessage("Admins only")

	assert.Equal(t, "Forbidden", base.Message)
	assert.Equal(t, "Admins only", changed.Message)
	assert.Equal(t, base.Code, changed.Code)
}
