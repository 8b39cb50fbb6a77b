package router

import (
	"github.com/deppfellow/guardian/internal/handler"
	"github.com/labstack/echo/v4"
)

// registerSystemRoutes registers the endpoints that are not actions.
func registerSystemRoutes(r *echo.Echo, h *handler.Handlers, manifest *handler.ManifestHandler) {
	r.GET("/status", h.Health.CheckHealth)

	r.GET("/operations", manifest.ServeOperations)
}
