package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/deppfellow/guardian/internal/config"
	"github.com/deppfellow/guardian/internal/provider"
	"github.com/deppfellow/guardian/internal/server"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newHealthHandler(settings config.HealthChecksConfig, checks ...dependencyCheck) *HealthHandler {
	logger := zerolog.Nop()
	s := &server.Server{
		Config: &config.Config{Primary: config.Primary{Env: "test"}},
		Logger: &logger,
	}
	return &HealthHandler{Handler: NewHandler(s), settings: settings, checks: checks}
}

func pingOK(context.Context) error { return nil }

func pingFailing(context.Context) error { return errors.New("connection refused") }

func serveHealth(t *testing.T, h *HealthHandler) (*httptest.ResponseRecorder, HealthReport) {
	t.Helper()
	rec := httptest.NewRecorder()
	c := echo.New().NewContext(httptest.NewRequest(http.MethodGet, "/status", nil), rec)
	require.NoError(t, h.CheckHealth(c))

	var env struct {
		Data HealthReport `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	return rec, env.Data
}

var enabled = config.HealthChecksConfig{Enabled: true, Timeout: time.Second}

func TestCheckHealth_OptionalFailureStaysHealthy(t *testing.T) {
	h := newHealthHandler(enabled,
		dependencyCheck{name: "database", required: true, ping: pingOK},
		dependencyCheck{name: "redis", ping: pingFailing},
	)

	rec, report := serveHealth(t, h)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "healthy", report.Status)
	assert.Equal(t, "unhealthy", report.Checks["redis"].Status)
	assert.Equal(t, "unavailable", report.Checks["redis"].Error)
	assert.True(t, report.Checks["database"].Required)
}

func TestCheckHealth_RequiredFailure(t *testing.T) {
	h := newHealthHandler(enabled,
		dependencyCheck{name: "provider", required: true, ping: pingFailing},
	)

	rec, report := serveHealth(t, h)

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, "unhealthy", report.Status)
}

func TestCheckHealth_HidesDependencyErrors(t *testing.T) {
	h := newHealthHandler(enabled,
		dependencyCheck{name: "database", required: true, ping: func(context.Context) error {
			return errors.New("dial tcp db.internal:5432: connect: connection refused")
		}},
	)

	rec, report := serveHealth(t, h)

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, "unavailable", report.Checks["database"].Error)
	assert.NotContains(t, rec.Body.String(), "db.internal")
	assert.NotContains(t, rec.Body.String(), "connection refused")
}

func TestCheckHealth_Disabled(t *testing.T) {
	h := newHealthHandler(config.HealthChecksConfig{},
		dependencyCheck{name: "provider", required: true, ping: pingFailing},
	)

	rec, report := serveHealth(t, h)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, report.Checks)
}

func TestCheckHealth_Timeout(t *testing.T) {
	h := newHealthHandler(config.HealthChecksConfig{Enabled: true, Timeout: 10 * time.Millisecond},
		dependencyCheck{name: "provider", required: true, ping: func(ctx context.Context) error {
			<-ctx.Done()
			return ctx.Err()
		}},
	)

	rec, report := serveHealth(t, h)

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, "timed out", report.Checks["provider"].Error)
}

func TestNewHealthHandler_FiltersChecks(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	t.Cleanup(upstream.Close)

	logger := zerolog.Nop()
	obs := config.DefaultObservabilityConfig()
	obs.HealthChecks.Checks = []string{"database"}
	s := &server.Server{
		Config:   &config.Config{Observability: obs},
		Logger:   &logger,
		Provider: provider.NewClient(upstream.URL, 0),
	}

	assert.Empty(t, NewHealthHandler(s).checks)

	obs.HealthChecks.Checks = nil
	checks := NewHealthHandler(s).checks
	require.Len(t, checks, 1)
	assert.Equal(t, "provider", checks[0].name)
	assert.NoError(t, checks[0].ping(context.Background()))
}
