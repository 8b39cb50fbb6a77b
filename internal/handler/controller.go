package handler

import (
	"net/http"
	"reflect"

	"github.com/deppfellow/guardian/internal/procedure"
	"github.com/deppfellow/guardian/internal/response"
	"github.com/deppfellow/guardian/internal/validation"
	"github.com/labstack/echo/v4"
)

// Controller groups the actions of one feature under a path.
type Controller struct {
	Name        string
	Description string
	Path        string
	Actions     []Action
}

// Action is one endpoint: its method and path below the controller, the
// type its input binds into and the procedures it needs.
type Action struct {
	Name        string
	Description string
	Method      string
	Path        string
	Input       string
	Use         []procedure.Procedure

	run func(c echo.Context, controller string, action *Action) error
}

// ActionConfig holds the optional parts of an action declaration.
type ActionConfig struct {
	Description string
	// Method overrides the default (POST) of a mutation, e.g. PUT or DELETE.
	Method string
	Use    []procedure.Procedure
}

// Query declares a GET action.
func Query[T any, PT interface {
	*T
	validation.Validatable
}](name, path string, cfg ActionConfig, handler func(ctx *procedure.Context, req PT) (response.Response, error)) Action {
	cfg.Method = http.MethodGet
	return newAction[T](name, path, cfg, handler)
}

// Mutation declares a state-changing action, POST unless cfg.Method says
// otherwise.
func Mutation[T any, PT interface {
	*T
	validation.Validatable
}](name, path string, cfg ActionConfig, handler func(ctx *procedure.Context, req PT) (response.Response, error)) Action {
	if cfg.Method == "" {
		cfg.Method = http.MethodPost
	}
	return newAction[T](name, path, cfg, handler)
}

func newAction[T any, PT interface {
	*T
	validation.Validatable
}](name, path string, cfg ActionConfig, handler func(ctx *procedure.Context, req PT) (response.Response, error)) Action {
	return Action{
		Name:        name,
		Description: cfg.Description,
		Method:      cfg.Method,
		Path:        path,
		Input:       reflect.TypeOf((*T)(nil)).Elem().String(),
		Use:         cfg.Use,
		run: func(c echo.Context, controller string, action *Action) error {
			return handleAction[T, PT](c, controller, action, handler)
		},
	}
}

// HandlerFunc binds the action to its controller as an echo handler.
func (a Action) HandlerFunc(controller string) echo.HandlerFunc {
	return func(c echo.Context) error {
		return a.run(c, controller, &a)
	}
}

// ProcedureNames lists the names of the action's procedures in order.
func (a Action) ProcedureNames() []string {
	names := make([]string, 0, len(a.Use))
	for _, p := range a.Use {
		names = append(names, p.Name())
	}
	return names
}

// Operation is the published description of one action.
type Operation struct {
	Controller  string   `json:"controller"`
	Action      string   `json:"action"`
	Description string   `json:"description,omitempty"`
	Method      string   `json:"method"`
	Path        string   `json:"path"`
	Input       string   `json:"input"`
	Procedures  []string `json:"procedures"`
}
