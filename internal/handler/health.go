package handler

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"slices"
	"time"

	"github.com/deppfellow/guardian/internal/config"
	"github.com/deppfellow/guardian/internal/middleware"
	"github.com/deppfellow/guardian/internal/response"
	"github.com/deppfellow/guardian/internal/server"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
)

// HealthHandler reports whether the service and its dependencies are
// reachable. Database and provider failures make the service unhealthy;
// Redis only degrades rate limiting and background jobs, and pending
// migrations only warn, so both are reported without failing the check.
type HealthHandler struct {
	Handler
	settings config.HealthChecksConfig
	checks   []dependencyCheck
}

type dependencyCheck struct {
	name     string
	required bool
	ping     func(ctx context.Context) error
}

// CheckResult is the outcome of one dependency check. Error is a fixed
// summary; the dependency's own error text only goes to the logs.
type CheckResult struct {
	Status       string `json:"status"`
	Required     bool   `json:"required"`
	ResponseTime string `json:"response_time"`
	Error        string `json:"error,omitempty"`
}

type HealthReport struct {
	Status      string                 `json:"status"`
	Timestamp   time.Time              `json:"timestamp"`
	Environment string                 `json:"environment"`
	Checks      map[string]CheckResult `json:"checks"`
}

func (r HealthReport) Healthy() bool {
	return r.Status == "healthy"
}

func NewHealthHandler(s *server.Server) *HealthHandler {
	h := &HealthHandler{Handler: NewHandler(s)}
	if s.Config.Observability != nil {
		h.settings = s.Config.Observability.HealthChecks
	} else {
		h.settings = config.DefaultObservabilityConfig().HealthChecks
	}

	var available []dependencyCheck
	if s.DB != nil {
		available = append(available,
			dependencyCheck{name: "database", required: true, ping: s.DB.Ping},
			dependencyCheck{name: "migrations", ping: func(ctx context.Context) error {
				pending, err := s.DB.PendingMigrations(ctx)
				if err != nil {
					return err
				}
				if pending > 0 {
					return fmt.Errorf("%d pending migrations", pending)
				}
				return nil
			}},
		)
	}
	if s.Redis != nil {
		available = append(available, dependencyCheck{name: "redis", ping: func(ctx context.Context) error {
			return s.Redis.Ping(ctx).Err()
		}})
	}
	if s.Provider != nil {
		available = append(available, dependencyCheck{name: "provider", required: true, ping: s.Provider.Ping})
	}

	for _, check := range available {
		if len(h.settings.Checks) == 0 || slices.Contains(h.settings.Checks, check.name) {
			h.checks = append(h.checks, check)
		}
	}

	return h
}

func (h *HealthHandler) CheckHealth(c echo.Context) error {
	logger := middleware.GetLogger(c).With().
		Str("operation", "health_check").
		Logger()

	report := h.run(c.Request().Context(), &logger)
	if !report.Healthy() {
		return c.JSON(http.StatusServiceUnavailable, response.Envelope{Data: report})
	}

	return response.Write(c, response.Success(report))
}

// Monitor runs the checks every health_checks.interval until ctx is done, so
// failures reach the logs and New Relic without anyone polling /status.
func (h *HealthHandler) Monitor(ctx context.Context) {
	if !h.settings.Enabled || h.settings.Interval <= 0 {
		return
	}

	logger := h.server.Logger.With().Str("operation", "health_monitor").Logger()
	ticker := time.NewTicker(h.settings.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			h.run(ctx, &logger)
		}
	}
}

func (h *HealthHandler) run(ctx context.Context, logger *zerolog.Logger) HealthReport {
	start := time.Now()

	report := HealthReport{
		Status:      "healthy",
		Timestamp:   start.UTC(),
		Environment: h.server.Config.Primary.Env,
		Checks:      make(map[string]CheckResult, len(h.checks)),
	}
	if !h.settings.Enabled {
		return report
	}

	for _, check := range h.checks {
		result, err := h.runCheck(ctx, check)
		report.Checks[check.name] = result

		if err == nil {
			logger.Debug().Str("check", check.name).Str("response_time", result.ResponseTime).Msg("health check passed")
			continue
		}

		if check.required {
			report.Status = "unhealthy"
		}

		logger.Error().
			Err(err).
			Str("check", check.name).
			Bool("required", check.required).
			Str("response_time", result.ResponseTime).
			Msg("health check failed")

		h.recordHealthCheckError(map[string]any{
			"check_type":    check.name,
			"required":      check.required,
			"error_type":    check.name + "_unhealthy",
			"error_message": err.Error(),
		})
	}

	if !report.Healthy() {
		logger.Warn().Dur("total_duration", time.Since(start)).Msg("service unhealthy")
		h.recordHealthCheckError(map[string]any{
			"check_type":        "overall",
			"error_type":        "overall_unhealthy",
			"total_duration_ms": time.Since(start).Milliseconds(),
		})
	}

	return report
}

func (h *HealthHandler) runCheck(ctx context.Context, check dependencyCheck) (CheckResult, error) {
	timeout := h.settings.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	checkStart := time.Now()
	err := check.ping(ctx)

	result := CheckResult{
		Status:       "healthy",
		Required:     check.required,
		ResponseTime: time.Since(checkStart).String(),
	}
	if err != nil {
		result.Status = "unhealthy"
		result.Error = publicCheckError(err)
	}
	return result, err
}

func publicCheckError(err error) string {
	if errors.Is(err, context.DeadlineExceeded) {
		return "timed out"
	}
	return "unavailable"
}

func (h *HealthHandler) recordHealthCheckError(attrs map[string]any) {
	if h.server.LoggerService == nil || h.server.LoggerService.GetApplication() == nil {
		return
	}
	h.server.LoggerService.GetApplication().RecordCustomEvent("HealthCheckError", attrs)
}
