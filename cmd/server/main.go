package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jithinio/brillo-sub004/internal/app"
	"github.com/jithinio/brillo-sub004/internal/config"
	grpcServer "github.com/jithinio/brillo-sub004/internal/infrastructure/grpc"
	httpServer "github.com/jithinio/brillo-sub004/internal/infrastructure/http"
	"github.com/jithinio/brillo-sub004/pkg/logger"
	"go.uber.org/zap"
)

const shutdownTimeout = 15 * time.Second

func main() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Initialize logger
	zapLogger, err := logger.NewZapLogger(cfg.Log)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer zapLogger.Sync()

	zapLogger = zapLogger.With(
		zap.String("service", cfg.Service.Name),
		zap.String("environment", cfg.Service.Environment),
	)

	application, err := app.New(cfg, zapLogger)
	if err != nil {
		zapLogger.Fatal("Failed to initialize application", zap.Error(err))
	}
	defer application.Close()

	deps := httpServer.Dependencies{
		Sync:     application.Sync,
		Webhooks: application.Webhooks,
	}
	if client := application.Factory.PolarClient(); client != nil {
		deps.PolarProducts = client
	}

	httpSrv := httpServer.NewServer(cfg, zapLogger, deps)
	var grpcSrv *grpcServer.Server
	if !cfg.Server.GRPC.Disabled {
		grpcSrv = grpcServer.NewServer(cfg, zapLogger)
	}

	// Start servers
	errChan := make(chan error, 2)
	if grpcSrv != nil {
		go func() {
			if err := grpcSrv.Start(); err != nil {
				errChan <- err
			}
		}()
	}
	go func() {
		if err := httpSrv.Start(); err != nil {
			errChan <- err
		}
	}()

	// Wait for interrupt signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigChan:
		zapLogger.Info("Received shutdown signal", zap.String("signal", sig.String()))
	case err := <-errChan:
		zapLogger.Error("Server failed", zap.Error(err))
	}

	zapLogger.Info("Shutting down servers...")

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if grpcSrv != nil {
		if err := grpcSrv.Shutdown(ctx); err != nil {
			zapLogger.Error("Failed to shutdown gRPC server", zap.Error(err))
		}
	}
	if err := httpSrv.Shutdown(ctx); err != nil {
		zapLogger.Error("Failed to shutdown HTTP server", zap.Error(err))
	}

	zapLogger.Info("Servers shut down successfully")
}
