// Package router mounts the declared controllers on echo, under the API base
// path, behind the global middleware chain.
package router

import (
	"fmt"
	"sort"
	"strings"

	"github.com/deppfellow/guardian/internal/handler"
	"github.com/deppfellow/guardian/internal/middleware"
	"github.com/deppfellow/guardian/internal/server"
	"github.com/labstack/echo/v4"
)

// AppRouter resolves every action of every controller to one method and path.
type AppRouter struct {
	basePath    string
	controllers []handler.Controller
}

// NewAppRouter fails when two actions share a method and path, since a
// request could then not be dispatched to exactly one action.
func NewAppRouter(basePath string, controllers map[string]handler.Controller) (*AppRouter, error) {
	r := &AppRouter{basePath: strings.TrimRight(basePath, "/")}

	names := make([]string, 0, len(controllers))
	for name := range controllers {
		names = append(names, name)
	}
	sort.Strings(names)

	seen := make(map[string]string)
	for _, name := range names {
		controller := controllers[name]
		for _, action := range controller.Actions {
			route := action.Method + " " + r.fullPath(controller, action)
			owner := controller.Name + "." + action.Name
			if prev, ok := seen[route]; ok {
				return nil, fmt.Errorf("duplicate route %s: %s and %s", route, prev, owner)
			}
			seen[route] = owner
		}
		r.controllers = append(r.controllers, controller)
	}

	return r, nil
}

func (r *AppRouter) fullPath(controller handler.Controller, action handler.Action) string {
	return r.basePath + controller.Path + action.Path
}

// Operations lists every action in a stable order: controllers by name,
// actions as declared.
func (r *AppRouter) Operations() []handler.Operation {
	var ops []handler.Operation
	for _, controller := range r.controllers {
		for _, action := range controller.Actions {
			ops = append(ops, handler.Operation{
				Controller:  controller.Name,
				Action:      action.Name,
				Description: action.Description,
				Method:      action.Method,
				Path:        r.fullPath(controller, action),
				Input:       action.Input,
				Procedures:  action.ProcedureNames(),
			})
		}
	}
	return ops
}

// Mount registers every action on e. middlewareFor supplies the middleware
// that runs in front of a controller's actions.
//
// Middleware is attached per route rather than per group: a group with
// middleware catches unknown paths below its prefix, which would answer 401
// instead of 404.
func (r *AppRouter) Mount(e *echo.Echo, middlewareFor func(handler.Controller) []echo.MiddlewareFunc) {
	for _, controller := range r.controllers {
		var m []echo.MiddlewareFunc
		if middlewareFor != nil {
			m = middlewareFor(controller)
		}
		for _, action := range controller.Actions {
			e.Add(action.Method, r.fullPath(controller, action), action.HandlerFunc(controller.Name), m...)
		}
	}
}

func NewRouter(s *server.Server, h *handler.Handlers) (*echo.Echo, error) {
	app, err := NewAppRouter(s.Config.Server.BasePath, h.Controllers)
	if err != nil {
		return nil, err
	}

	ipExtractor, err := middleware.IPExtractor(s.Config.Server.TrustedProxies)
	if err != nil {
		return nil, err
	}

	middlewares := middleware.NewMiddlewares(s)

	router := echo.New()
	router.HideBanner = true
	router.HidePort = true
	router.IPExtractor = ipExtractor
	router.HTTPErrorHandler = middlewares.Global.GlobalErrorHandler

	router.Use(
		middlewares.Global.CORS(),
		middlewares.Global.Secure(),
		middleware.RequestID(),
		middlewares.Tracing.NewRelicMiddleware(),
		middlewares.Tracing.EnhanceTracing(),
		middlewares.ContextEnhancer.EnhanceContext(),
		middlewares.Global.RequestLogger(),
		middlewares.Global.Recover(),
	)

	registerSystemRoutes(router, h, handler.NewManifestHandler(app.Operations()))

	app.Mount(router, func(c handler.Controller) []echo.MiddlewareFunc {
		// Signing in must work without credentials; it is rate limited
		// per client instead.
		if c.Name == "auth" {
			return []echo.MiddlewareFunc{middlewares.RateLimit.Limit("auth")}
		}
		return []echo.MiddlewareFunc{middlewares.Auth.RequireCredentials}
	})

	// Called by the payment provider, authenticated by its signature.
	router.POST(strings.TrimRight(s.Config.Server.BasePath, "/")+"/billing/webhook", h.Webhook.HandleBillingWebhook)

	return router, nil
}
