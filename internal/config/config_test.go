package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequiredEnv(t *testing.T) {
	t.Helper()
	t.Setenv("GUARDIAN_PRIMARY__ENV", "test")
	t.Setenv("GUARDIAN_DATABASE__HOST", "localhost")
	t.Setenv("GUARDIAN_DATABASE__USER", "guardian")
	t.Setenv("GUARDIAN_DATABASE__PASSWORD", "secret")
	t.Setenv("GUARDIAN_DATABASE__NAME", "guardian")
	t.Setenv("GUARDIAN_PROVIDER__BASE_URL", "http://localhost:3001/api/auth")
}

func TestLoadConfig_Defaults(t *testing.T) {
	setRequiredEnv(t)

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, "/api/v1", cfg.Server.BasePath)
	assert.Equal(t, 5432, cfg.Database.Port)
	assert.Equal(t, "better-auth.session_token", cfg.Provider.SessionCookie)
	assert.Equal(t, "20-M", cfg.RateLimit.Auth)
	require.NotNil(t, cfg.Observability)
	assert.Equal(t, ServiceName, cfg.Observability.ServiceName)
	assert.Equal(t, "test", cfg.Observability.Environment)
}

func TestLoadConfig_EnvOverrides(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("GUARDIAN_SERVER__PORT", "9090")
	t.Setenv("GUARDIAN_DATABASE__PORT", "6543")
	t.Setenv("GUARDIAN_RATE_LIMIT__AUTH", "5-S")
	t.Setenv("GUARDIAN_BILLING__STRIPE_WEBHOOK_SECRET", "whsec_x")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Server.Port)
	assert.Equal(t, 6543, cfg.Database.Port)
	assert.Equal(t, "5-S", cfg.RateLimit.Auth)
	assert.Equal(t, "whsec_x", cfg.Billing.StripeWebhookSecret)
}

func TestLoadConfig_MissingRequired(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("GUARDIAN_PROVIDER__BASE_URL", "")

	_, err := LoadConfig()

	assert.ErrorContains(t, err, "config validation failed")
}

func TestLoadConfig_InvalidBasePath(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("GUARDIAN_SERVER__BASE_PATH", "api")

	_, err := LoadConfig()

	assert.Error(t, err)
}

func TestLoadConfig_TrustedProxies(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("GUARDIAN_SERVER__TRUSTED_PROXIES", "10.0.0.0/8")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, []string{"10.0.0.0/8"}, cfg.Server.TrustedProxies)

	t.Setenv("GUARDIAN_SERVER__TRUSTED_PROXIES", "10.0.0.1")
	_, err = LoadConfig()
	assert.ErrorContains(t, err, "TrustedProxies")
}

func TestEnvKey(t *testing.T) {
	assert.Equal(t, "server.cors_allowed_origins", envKey("GUARDIAN_SERVER__CORS_ALLOWED_ORIGINS"))
	assert.Equal(t, "observability.logging.level", envKey("GUARDIAN_OBSERVABILITY__LOGGING__LEVEL"))
}

func TestObservabilityConfig_Validate(t *testing.T) {
	cfg := DefaultObservabilityConfig()
	require.NoError(t, cfg.Validate())

	cfg.Logging.Level = "verbose"
	assert.ErrorContains(t, cfg.Validate(), "invalid logging level")

	cfg = DefaultObservabilityConfig()
	cfg.Logging.Format = "xml"
	assert.ErrorContains(t, cfg.Validate(), "invalid logging format")
}

func TestObservabilityConfig_GetLogLevel(t *testing.T) {
	cfg := DefaultObservabilityConfig()
	cfg.Logging.Level = ""

	cfg.Environment = "production"
	assert.Equal(t, "info", cfg.GetLogLevel())

	cfg.Environment = "development"
	assert.Equal(t, "debug", cfg.GetLogLevel())

	cfg.Logging.Level = "warn"
	assert.Equal(t, "warn", cfg.GetLogLevel())
}
