package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIPExtractor(t *testing.T) {
	tests := []struct {
		name           string
		trustedProxies []string
		remoteAddr     string
		forwardedFor   string
		want           string
	}{
		{"no proxies ignores header", nil, "10.0.0.1:5000", "203.0.113.9", "10.0.0.1"},
		{"private peer is not trusted by default", nil, "192.168.1.10:5000", "203.0.113.9", "192.168.1.10"},
		{"trusted proxy forwards client", []string{"10.0.0.0/24"}, "10.0.0.1:5000", "203.0.113.9", "203.0.113.9"},
		{"untrusted peer ignores header", []string{"10.0.0.0/24"}, "10.0.1.1:5000", "203.0.113.9", "10.0.1.1"},
		{"spoofed hop before proxy chain", []string{"10.0.0.0/24"}, "10.0.0.1:5000", "1.2.3.4, 203.0.113.9", "203.0.113.9"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			extract, err := IPExtractor(tc.trustedProxies)
			require.NoError(t, err)

			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = tc.remoteAddr
			req.Header.Set("X-Forwarded-For", tc.forwardedFor)

			assert.Equal(t, tc.want, extract(req))
		})
	}
}

func TestIPExtractor_InvalidCIDR(t *testing.T) {
	_, err := IPExtractor([]string{"10.0.0.0/24", "not-a-cidr"})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "not-a-cidr")
}
