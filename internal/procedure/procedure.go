// Package procedure injects typed capabilities into action handlers.
//
// A Procedure runs before an action's handler and contributes named values
// (usually a provider-backed repository) to the request's Context. Handlers
// read them back with Get and a typed Key, so an action can only use the
// capabilities it declared:
//
//	var OrganizationKey = procedure.NewKey[repository.OrganizationRepository]("organization")
//
//	orgs, err := procedure.Get(ctx, OrganizationKey)
package procedure

import (
	"context"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
)

// Context is the per-request execution context handed to procedures and
// handlers.
type Context struct {
	echo    echo.Context
	headers http.Header
	logger  *zerolog.Logger
	values  Capabilities
}

func NewContext(c echo.Context, logger *zerolog.Logger) *Context {
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	return &Context{
		echo:    c,
		headers: c.Request().Header.Clone(),
		logger:  logger,
		values:  Capabilities{},
	}
}

// Context returns the request's context.Context.
func (c *Context) Context() context.Context {
	return c.echo.Request().Context()
}

// Headers returns a copy of the inbound request headers; changes to it do
// not reach later procedures.
func (c *Context) Headers() http.Header {
	return c.headers.Clone()
}

func (c *Context) Logger() *zerolog.Logger {
	return c.logger
}

func (c *Context) Echo() echo.Context {
	return c.echo
}

// Capabilities maps capability names to values.
type Capabilities map[string]any

type Procedure interface {
	Name() string
	Handle(ctx *Context) (Capabilities, error)
}

// Key names a capability of type T.
type Key[T any] struct {
	name string
}

func NewKey[T any](name string) Key[T] {
	return Key[T]{name: name}
}

func (k Key[T]) Name() string {
	return k.name
}

// Provide builds a procedure contributing the value factory returns under key.
func Provide[T any](name string, key Key[T], factory func(ctx *Context) (T, error)) Procedure {
	return &provided[T]{name: name, key: key, factory: factory}
}

type provided[T any] struct {
	name    string
	key     Key[T]
	factory func(ctx *Context) (T, error)
}

func (p *provided[T]) Name() string {
	return p.name
}

func (p *provided[T]) Handle(ctx *Context) (Capabilities, error) {
	value, err := p.factory(ctx)
	if err != nil {
		return nil, err
	}
	return Capabilities{p.key.name: value}, nil
}

// Run executes procs in order and merges their capabilities into ctx. The
// first failing procedure aborts the run.
func Run(ctx *Context, procs []Procedure) error {
	for _, p := range procs {
		capabilities, err := p.Handle(ctx)
		if err != nil {
			return err
		}

		for name, value := range capabilities {
			if _, exists := ctx.values[name]; exists {
				return fmt.Errorf("procedure %s: capability %q is already provided", p.Name(), name)
			}
			ctx.values[name] = value
		}
	}
	return nil
}

// Get returns the capability stored under key. It fails when no procedure of
// the running action provided it.
func Get[T any](ctx *Context, key Key[T]) (T, error) {
	var zero T

	value, ok := ctx.values[key.name]
	if !ok {
		return zero, fmt.Errorf("capability %q was not provided; declare its procedure on the action", key.name)
	}

	typed, ok := value.(T)
	if !ok {
		return zero, fmt.Errorf("capability %q has type %T, want %T", key.name, value, zero)
	}

	return typed, nil
}
