package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/deppfellow/guardian/internal/config"
	"github.com/deppfellow/guardian/internal/database"
	"github.com/deppfellow/guardian/internal/handler"
	"github.com/deppfellow/guardian/internal/lib/email"
	"github.com/deppfellow/guardian/internal/lib/job"
	"github.com/deppfellow/guardian/internal/lib/payment"
	"github.com/deppfellow/guardian/internal/logger"
	"github.com/deppfellow/guardian/internal/procedure"
	"github.com/deppfellow/guardian/internal/repository"
	"github.com/deppfellow/guardian/internal/router"
	"github.com/deppfellow/guardian/internal/server"
	"github.com/deppfellow/guardian/internal/service"
)

const shutdownTimeout = 30 * time.Second

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	loggerService := logger.NewLoggerService(cfg.Observability)
	defer loggerService.Shutdown()

	log := logger.NewLoggerWithService(cfg.Observability, loggerService)

	if cfg.Primary.Env != "local" {
		if err := database.Migrate(context.Background(), &log, cfg); err != nil {
			log.Fatal().Err(err).Msg("failed to migrate database")
		}
	}

	srv, err := server.New(cfg, &log, loggerService)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize server")
	}

	repos := repository.NewRepositories(srv)
	payments := payment.NewClient(cfg)
	services := service.NewServices(srv, repos, payments)

	srv.Job.InitHandlers(job.HandlerDeps{
		Mailer:    email.NewClient(cfg, &log),
		Events:    repos.BillingEvents,
		Customers: payments,
	})
	if err := srv.Job.Start(); err != nil {
		log.Fatal().Err(err).Msg("failed to start job server")
	}

	procs := procedure.NewProcedures(srv.Provider, services)
	handlers := handler.NewHandlers(srv, services, procs)

	r, err := router.NewRouter(srv, handlers)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to build router")
	}

	srv.SetupHTTPServer(r)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go handlers.Health.Monitor(ctx)

	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("failed to start server")
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
	}

	log.Info().Msg("server exited properly")
}
