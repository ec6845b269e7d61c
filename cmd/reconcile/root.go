package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/jithinio/brillo-sub004/internal/app"
	"github.com/jithinio/brillo-sub004/internal/config"
	"github.com/jithinio/brillo-sub004/internal/domain/entity"
	"github.com/jithinio/brillo-sub004/pkg/logger"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var rootCmd = &cobra.Command{
	Use:           "reconcile",
	Short:         "Reconcile Brillo subscription state with Stripe and Polar",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.AddCommand(syncCmd)
	rootCmd.AddCommand(customerCmd)
}

// withApp loads config, builds the application and runs fn with a context
// that is canceled on SIGINT/SIGTERM.
func withApp(fn func(ctx context.Context, a *app.App) error) error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	zapLogger, err := logger.NewZapLogger(cfg.Log)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer zapLogger.Sync()

	a, err := app.New(cfg, zapLogger.With(zap.String("command", "reconcile")))
	if err != nil {
		return err
	}
	defer a.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return fn(ctx, a)
}

func parseProviderFlag(value string) (entity.ProviderName, error) {
	if value == "" {
		return "", nil
	}
	name, ok := entity.ParseProvider(value)
	if !ok {
		return "", fmt.Errorf("unknown provider %q (want stripe or polar)", value)
	}
	return name, nil
}
