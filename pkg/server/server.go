package server

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/de-tools/grc-admin/pkg/auth"
	"github.com/de-tools/grc-admin/pkg/metrics"
	"github.com/de-tools/grc-admin/pkg/services/assetcontrol"
	"github.com/de-tools/grc-admin/pkg/services/audit"
	"github.com/de-tools/grc-admin/pkg/services/bulkdata"
	"github.com/de-tools/grc-admin/pkg/services/controls"
	"github.com/de-tools/grc-admin/pkg/services/domains"
	"github.com/de-tools/grc-admin/pkg/services/exceptions"
	"github.com/de-tools/grc-admin/pkg/services/frameworks"
	"github.com/de-tools/grc-admin/pkg/services/obligations"
	"github.com/de-tools/grc-admin/pkg/services/policies"
	"github.com/de-tools/grc-admin/pkg/services/reports"
	"github.com/de-tools/grc-admin/pkg/services/sops"
	"github.com/de-tools/grc-admin/pkg/services/workflow"
)

const defaultShutdownTimeout = 10 * time.Second

// HealthChecker reports whether the database is reachable.
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

type WebAPI struct {
	router *chi.Mux
	logger *zerolog.Logger
	server *http.Server

	shutdownTimeout time.Duration
}

type Dependencies struct {
	DB         HealthChecker
	Tokens     *auth.Tokens
	Authorizer *auth.Authorizer
	Metrics    *metrics.Metrics

	Audit        audit.Service
	Controls     controls.Service
	AssetControl assetcontrol.Service
	Frameworks   frameworks.Service
	Domains      domains.Service
	SOPs         sops.Service
	Policies     policies.Service
	Exceptions   exceptions.Service
	Obligations  obligations.Service
	Reports      reports.Service
	BulkData     bulkdata.Service
	Workflow     workflow.Controller
}

type Config struct {
	Addr            string
	ShutdownTimeout time.Duration
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	Dependencies    Dependencies
}

func NewWebAPI(logger zerolog.Logger, config Config) *WebAPI {
	router := newRouter(&logger, config.Dependencies)

	timeout := config.ShutdownTimeout
	if timeout <= 0 {
		timeout = defaultShutdownTimeout
	}
	return &WebAPI{
		router: router,
		logger: &logger,
		server: &http.Server{
			Addr:              config.Addr,
			Handler:           otelhttp.NewHandler(router, "grc-admin"),
			ReadTimeout:       config.ReadTimeout,
			ReadHeaderTimeout: 10 * time.Second,
			WriteTimeout:      config.WriteTimeout,
		},
		shutdownTimeout: timeout,
	}
}

// Handler is the instrumented root handler.
func (w *WebAPI) Handler() http.Handler {
	return w.server.Handler
}

// Start serves until ctx is done or SIGINT/SIGTERM arrives, then shuts down
// within the configured timeout.
func (w *WebAPI) Start(ctx context.Context) error {
	serverErrors := make(chan error, 1)
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(shutdown)

	go func() {
		w.logger.Info().Str("addr", w.server.Addr).Msg("starting server")
		serverErrors <- w.server.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-shutdown:
	case <-ctx.Done():
	}
	w.logger.Info().Msg("shutdown initiated")

	// Give outstanding requests a deadline for completion.
	shutdownCtx, cancel := context.WithTimeout(context.Background(), w.shutdownTimeout)
	defer cancel()

	err := w.server.Shutdown(shutdownCtx)
	if err != nil {
		w.logger.Error().Err(err).Msg("graceful shutdown failed")
		err = w.server.Close()
	}
	return err
}
