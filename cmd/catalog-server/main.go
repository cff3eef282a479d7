package main

import (
	"context"
	"errors"
	"flag"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/mohammed-shakir/eodata-query/internal/catalog"
	"github.com/mohammed-shakir/eodata-query/internal/core/config"
	"github.com/mohammed-shakir/eodata-query/internal/core/executor"
	"github.com/mohammed-shakir/eodata-query/internal/core/health"
	"github.com/mohammed-shakir/eodata-query/internal/core/httpclient"
	"github.com/mohammed-shakir/eodata-query/internal/core/odata"
	"github.com/mohammed-shakir/eodata-query/internal/core/router"
	"github.com/mohammed-shakir/eodata-query/internal/core/server"
	"github.com/mohammed-shakir/eodata-query/internal/export"
	"github.com/mohammed-shakir/eodata-query/internal/logger"
	"github.com/mohammed-shakir/eodata-query/internal/metrics"
)

var Version = "dev"

func main() {
	os.Exit(run())
}

func run() int {
	addrFlag := flag.String("addr", "", "listen address (overrides ADDR)")
	envDir := flag.String("env-dir", ".", "directory holding .env files")
	flag.Parse()

	envErr := config.LoadEnvFiles(*envDir)
	cfg := config.FromEnv()
	if *addrFlag != "" {
		cfg.Addr = strings.TrimSpace(*addrFlag)
	}

	zl := logger.Build(logger.Config{
		Level:     cfg.LogLevel,
		Console:   cfg.LogConsole,
		SampleN:   cfg.LogSampleN,
		Component: "catalog-server",
		Version:   Version,
	}, os.Stdout)
	appLog := logger.NewSlog(&zl)
	if envErr != nil {
		appLog.Warn("env files not loaded", "err", envErr)
	}

	appLog.Info("starting catalog server",
		"addr", cfg.Addr,
		"version", Version,
		"catalogue", cfg.CatalogURL,
		"timeout", cfg.CatalogTimeout.String(),
		"page_size", cfg.PageSize)

	provider := metrics.Init(metrics.BuildInfo{
		Version:   Version,
		Revision:  os.Getenv("BUILD_REVISION"),
		BuildDate: os.Getenv("BUILD_DATE"),
	})

	exec, err := executor.New(appLog, httpclient.NewOutbound(cfg.CatalogTimeout), odata.ProductsEndpoint(cfg.CatalogURL))
	if err != nil {
		appLog.Error("failed to initialize executor", "err", err)
		return 1
	}
	svc := catalog.New(appLog, exec, cfg.PageSize)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var sink export.Sink
	s3Sink, err := export.NewS3Sink(ctx, cfg.Export, appLog)
	switch {
	case errors.Is(err, export.ErrDisabled):
		appLog.Info("listing export disabled")
	case err != nil:
		appLog.Error("failed to initialize export sink", "err", err)
		return 1
	default:
		sink = s3Sink
	}

	deps := server.Deps{
		Handlers: router.New(appLog, svc, sink),
		Metrics:  provider.Handler(),
		Ready:    health.Status{Catalogue: cfg.CatalogURL, ExportEnabled: sink != nil},
	}
	if err := server.Run(ctx, cfg, appLog, deps); err != nil {
		appLog.Error("server exited with error", "err", err)
		return 1
	}
	appLog.Info("server stopped")
	return 0
}
