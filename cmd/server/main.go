package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/nulzo/butler/internal/auth"
	"github.com/nulzo/butler/internal/cli"
	"github.com/nulzo/butler/internal/config"
	"github.com/nulzo/butler/internal/gateway"
	"github.com/nulzo/butler/internal/platform/logger"
	"github.com/nulzo/butler/internal/platform/otel"
	"github.com/nulzo/butler/internal/server"
	"go.uber.org/zap"

	// adapters register their factories in init()
	_ "github.com/nulzo/butler/internal/llm/anthropic"
	_ "github.com/nulzo/butler/internal/llm/google"
	_ "github.com/nulzo/butler/internal/llm/openai"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s failed to load config: %v\n", cli.CrossMark(), err)
		os.Exit(1)
	}

	logger.Initialize(logger.NewConfig(cfg.Log.Level, cfg.Log.Format))
	defer logger.Sync()

	log := logger.With(zap.String("service", cfg.App.Name))

	if cfg.Telemetry.Enabled {
		shutdown, err := otel.InitTracer(cfg.Telemetry.ServiceName, cfg.App.Version, log, os.Stdout)
		if err != nil {
			logger.Fatal("Failed to initialize tracer", zap.Error(err))
		}
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := shutdown(ctx); err != nil {
				logger.Error("Failed to shutdown tracer", zap.Error(err))
			}
		}()
	}

	verifier, err := auth.NewVerifier(cfg.Auth.Secret, cfg.Auth.Algorithm, cfg.Auth.TTL())
	if err != nil {
		logger.Fatal("Failed to build token verifier", zap.Error(err))
	}

	directory, err := auth.NewDirectory(cfg.Auth.Directory)
	if err != nil {
		logger.Fatal("Failed to build subject directory", zap.Error(err))
	}

	if cfg.App.Debug && cfg.Server.Env == "production" {
		logger.Warn("Debug mode is on: internal error details are returned to clients")
	}

	providers := gateway.BootstrapProviders(cfg.Providers, log)
	service := gateway.NewService(log, providers, cfg.Gateway.RequestTimeout)

	srv := server.New(cfg, log, verifier, directory, service)

	httpServer := &http.Server{
		Addr:              cfg.Server.Addr(),
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info(fmt.Sprintf("%s %s %s",
			cli.CheckMark(),
			cli.Stylize(cfg.App.Name, cli.Blue),
			cli.Stylize("listening on "+httpServer.Addr, cli.Black),
		),
			zap.String("version", cfg.App.Version),
			zap.String("env", cfg.Server.Env),
			zap.Int("providers", len(providers)),
		)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(ctx); err != nil {
		logger.Error("Server forced to shutdown", zap.Error(err))
	}

	logger.Info("Server exited")
}
