package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/mohammed-shakir/eodata-query/internal/core/config"
	"github.com/mohammed-shakir/eodata-query/internal/core/health"
	middleware "github.com/mohammed-shakir/eodata-query/internal/core/middleware"
	"github.com/mohammed-shakir/eodata-query/internal/core/router"
)

type Deps struct {
	Handlers *router.Handlers
	Metrics  http.Handler
	Ready    health.Status
}

// NewRouter wires the public routes; split out of Run so tests can drive it.
func NewRouter(logger *slog.Logger, d Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recover(logger))
	r.Use(middleware.Logging(logger))
	r.Use(middleware.CORS())

	r.Get("/healthz", health.Liveness())
	r.Get("/readyz", health.Readiness(d.Ready))
	if d.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", d.Metrics)
	}

	h := d.Handlers
	r.Get("/product-types", router.Instrument("/product-types", h.ProductTypes))
	r.Get("/filter", router.Instrument("/filter", h.Filter))
	r.Get("/query", router.Instrument("/query", h.Query))
	r.Get("/download", router.Instrument("/download", h.Download))
	r.Post("/export", router.Instrument("/export", h.Export))
	return r
}

// sets up http and starts serving
func Run(ctx context.Context, cfg config.Config, logger *slog.Logger, d Deps) error {
	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           NewRouter(logger, d),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		// upstream timeout plus rendering headroom
		WriteTimeout: cfg.CatalogTimeout + 30*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("http listen", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
		return nil
	case err := <-errCh:
		return err
	}
}
