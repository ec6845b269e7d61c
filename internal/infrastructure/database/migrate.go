package database

import (
	"github.com/jithinio/brillo-sub004/internal/domain/model"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// MigrateOptions selects the tables owned by this service.
type MigrateOptions struct {
	// Profiles also migrates the profiles table. In Supabase the table is
	// owned by the onboarding schema; this is for local databases only.
	Profiles bool
}

// Migrate runs database migrations
func Migrate(db *gorm.DB, opts MigrateOptions, logger *zap.Logger) error {
	logger.Info("Running database migrations...")

	if err := db.Exec(`CREATE EXTENSION IF NOT EXISTS "pgcrypto"`).Error; err != nil {
		logger.Error("Failed to create extensions", zap.Error(err))
		return err
	}

	models := []interface{}{&model.SubscriptionEvent{}}
	if opts.Profiles {
		models = append([]interface{}{&model.Profile{}}, models...)
	}

	if err := db.AutoMigrate(models...); err != nil {
		logger.Error("Failed to run migrations", zap.Error(err))
		return err
	}

	if err := createCustomIndexes(db); err != nil {
		logger.Error("Failed to create custom indexes", zap.Error(err))
		return err
	}

	logger.Info("Database migrations completed successfully", zap.Bool("profiles", opts.Profiles))
	return nil
}

// createCustomIndexes creates indexes that GORM doesn't handle automatically
func createCustomIndexes(db *gorm.DB) error {
	if err := db.Exec(`ALTER TABLE subscription_events ALTER COLUMN id SET DEFAULT gen_random_uuid()`).Error; err != nil {
		return err
	}
	return db.Exec(`CREATE INDEX IF NOT EXISTS idx_subscription_events_user_created ON subscription_events (user_id, created_at DESC)`).Error
}
