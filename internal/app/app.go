// Package app wires configuration, storage, providers and services into
// the object graph shared by the server and the reconcile CLI.
package app

import (
	"fmt"

	"github.com/go-redis/redis/v8"
	"github.com/jithinio/brillo-sub004/internal/config"
	"github.com/jithinio/brillo-sub004/internal/domain/entity"
	domainRepo "github.com/jithinio/brillo-sub004/internal/domain/repository"
	"github.com/jithinio/brillo-sub004/internal/infrastructure/cache"
	"github.com/jithinio/brillo-sub004/internal/infrastructure/database"
	"github.com/jithinio/brillo-sub004/internal/infrastructure/provider"
	"github.com/jithinio/brillo-sub004/internal/usecase"
	"github.com/jithinio/brillo-sub004/pkg/messaging"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type App struct {
	Config    *config.Config
	Logger    *zap.Logger
	DB        *gorm.DB
	Repos     *database.Repositories
	Providers usecase.Providers
	Factory   *provider.Factory

	Reconciler *usecase.Reconciler
	Sync       *usecase.SyncService
	Webhooks   *usecase.WebhookService

	redis *redis.Client
}

// New connects to the database (and Redis when configured), optionally runs
// migrations and builds the services.
func New(cfg *config.Config, logger *zap.Logger) (*App, error) {
	db, err := database.NewConnection(&cfg.Database, logger)
	if err != nil {
		return nil, err
	}

	if cfg.Database.AutoMigrate {
		opts := database.MigrateOptions{Profiles: cfg.Database.AutoMigrateProfiles}
		if err := database.Migrate(db, opts, logger); err != nil {
			_ = database.Close(db, logger)
			return nil, fmt.Errorf("failed to run database migrations: %w", err)
		}
	}

	a := &App{
		Config: cfg,
		Logger: logger,
		DB:     db,
		Repos:  database.NewRepositories(db, logger),
	}

	var (
		statusCache domainRepo.StatusCache
		publisher   messaging.Publisher = messaging.NoopPublisher{}
	)
	if cfg.Redis.Enabled() {
		client, err := messaging.NewRedisClient(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			// Redis is optional; fall back to the in-process cache
			logger.Warn("Redis unavailable, using in-memory status cache", zap.Error(err))
			statusCache = cache.NewMemoryStatusCache(cfg.Cache.StatusTTL)
		} else {
			a.redis = client
			statusCache = cache.NewRedisStatusCache(client, cfg.Cache.StatusTTL, logger)
			publisher = messaging.NewRedisPublisher(client)
		}
	} else {
		statusCache = cache.NewMemoryStatusCache(cfg.Cache.StatusTTL)
	}

	a.Factory = provider.NewFactory(cfg, logger)
	a.Providers = a.Factory.Providers()
	a.build(statusCache, publisher)
	return a, nil
}

func (a *App) build(statusCache domainRepo.StatusCache, publisher messaging.Publisher) {
	events := usecase.NewEventLog(a.Repos.SubscriptionEvent, a.Logger)

	opts := []usecase.ReconcilerOption{usecase.WithStatusCache(statusCache)}
	if a.Config.Redis.PlanChannel != "" {
		opts = append(opts, usecase.WithPlanNotifier(publisher, a.Config.Redis.PlanChannel))
	}
	a.Reconciler = usecase.NewReconciler(a.Repos.Profile, events, a.Factory.PlanMappers(), a.Logger, opts...)

	defaultProvider, _ := entity.ParseProvider(a.Config.Service.DefaultProvider)
	a.Sync = usecase.NewSyncService(a.Providers, defaultProvider, a.Repos.Profile, a.Reconciler, statusCache, a.Logger)
	a.Webhooks = usecase.NewWebhookService(a.Providers, a.Repos.Profile, a.Reconciler, events, a.Logger)

	a.Logger.Info("Billing services ready",
		zap.Int("providers", len(a.Providers)),
		zap.String("default_provider", string(defaultProvider)))
}

// Close releases the Redis and database connections.
func (a *App) Close() {
	if a.redis != nil {
		if err := a.redis.Close(); err != nil {
			a.Logger.Error("Failed to close Redis client", zap.Error(err))
		}
	}
	if err := database.Close(a.DB, a.Logger); err != nil {
		a.Logger.Error("Failed to close database connection", zap.Error(err))
	}
}
