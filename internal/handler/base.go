package handler

import (
	"time"

	"github.com/deppfellow/guardian/internal/middleware"
	"github.com/deppfellow/guardian/internal/procedure"
	"github.com/deppfellow/guardian/internal/response"
	"github.com/deppfellow/guardian/internal/server"
	"github.com/deppfellow/guardian/internal/validation"
	"github.com/labstack/echo/v4"
	"github.com/newrelic/go-agent/v3/integrations/nrpkgerrors"
	"github.com/newrelic/go-agent/v3/newrelic"
)

// Handler holds shared application dependencies for handlers that are not
// actions (health, webhook).
type Handler struct {
	server *server.Server
}

func NewHandler(s *server.Server) Handler {
	return Handler{server: s}
}

// handleAction is the pipeline every action runs through:
//
//  1. bind the request into a fresh Req and validate it
//  2. run the action's procedures in order
//  3. call the handler
//  4. write the response envelope
//
// A failure in any phase skips the ones after it.
func handleAction[T any, PT interface {
	*T
	validation.Validatable
}](c echo.Context, controller string, action *Action, handler func(ctx *procedure.Context, req PT) (response.Response, error)) error {
	start := time.Now()

	txn := newrelic.FromContext(c.Request().Context())
	if txn != nil {
		txn.AddAttribute("handler.name", controller+"."+action.Name)
		txn.AddAttribute("handler.controller", controller)
	}

	logger := middleware.GetLogger(c).With().
		Str("operation", "action").
		Str("controller", controller).
		Str("action", action.Name).
		Str("route", c.Path()).
		Logger()

	logger.Info().Msg("handling request")

	// ---------------- Validation phase ---------------------------------------
	validationStart := time.Now()

	req := PT(new(T))
	if err := validation.BindAndValidate(c, req); err != nil {
		validationDuration := time.Since(validationStart)

		logger.Warn().
			Err(err).
			Dur("validation_duration", validationDuration).
			Msg("request validation failed")

		if txn != nil {
			txn.NoticeError(nrpkgerrors.Wrap(err))
			txn.AddAttribute("validation.status", "failed")
			txn.AddAttribute("validation.duration_ms", validationDuration.Milliseconds())
		}

		return err
	}

	validationDuration := time.Since(validationStart)
	if txn != nil {
		txn.AddAttribute("validation.status", "success")
		txn.AddAttribute("validation.duration_ms", validationDuration.Milliseconds())
	}

	logger.Debug().
		Dur("validation_duration", validationDuration).
		Msg("request validation successful")

	// ---------------- Procedure phase ----------------------------------------
	procedureStart := time.Now()

	ctx := procedure.NewContext(c, &logger)
	if err := procedure.Run(ctx, action.Use); err != nil {
		procedureDuration := time.Since(procedureStart)

		ctx.Logger().Warn().
			Err(err).
			Dur("procedure_duration", procedureDuration).
			Msg("procedure failed")

		if txn != nil {
			txn.NoticeError(nrpkgerrors.Wrap(err))
			txn.AddAttribute("procedure.status", "failed")
			txn.AddAttribute("procedure.duration_ms", procedureDuration.Milliseconds())
		}

		return err
	}

	procedureDuration := time.Since(procedureStart)
	if txn != nil {
		txn.AddAttribute("procedure.status", "success")
		txn.AddAttribute("procedure.duration_ms", procedureDuration.Milliseconds())
	}

	// ---------------- Handler execution phase --------------------------------
	handlerStart := time.Now()
	res, err := handler(ctx, req)
	handlerDuration := time.Since(handlerStart)

	if err != nil {
		totalDuration := time.Since(start)

		ctx.Logger().Error().
			Err(err).
			Dur("handler_duration", handlerDuration).
			Dur("total_duration", totalDuration).
			Msg("handler execution failed")

		if txn != nil {
			txn.NoticeError(nrpkgerrors.Wrap(err))
			txn.AddAttribute("handler.status", "error")
			txn.AddAttribute("handler.duration_ms", handlerDuration.Milliseconds())
			txn.AddAttribute("total.duration_ms", totalDuration.Milliseconds())
		}
		return err
	}

	if res.Status == 0 {
		ctx.Logger().Error().Msg("handler returned an empty response")
		res = response.ServerError()
	}

	totalDuration := time.Since(start)

	if txn != nil {
		txn.AddAttribute("handler.status", "success")
		txn.AddAttribute("handler.outcome", string(res.Outcome))
		txn.AddAttribute("handler.duration_ms", handlerDuration.Milliseconds())
		txn.AddAttribute("total.duration_ms", totalDuration.Milliseconds())
	}

	ctx.Logger().Info().
		Str("outcome", string(res.Outcome)).
		Dur("handler_duration", handlerDuration).
		Dur("procedure_duration", procedureDuration).
		Dur("validation_duration", validationDuration).
		Dur("total_duration", totalDuration).
		Msg("request completed successfully")

	return response.Write(c, res)
}
