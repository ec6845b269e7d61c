package config

import (
	"fmt"
	"time"
)

const (
	defaultConnMaxLifetime = time.Hour
	defaultConnMaxIdleTime = 10 * time.Minute
)

// DatabaseConfig holds database connection configuration
type DatabaseConfig struct {
	// URL is a full postgres:// connection string (the Supabase
	// "connection string"); when set it takes precedence over the fields below.
	URL string `yaml:"url"`

	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Name     string `yaml:"name"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	SSLMode  string `yaml:"sslmode"`

	// AutoMigrate creates the subscription_events table on start.
	AutoMigrate bool `yaml:"auto_migrate"`
	// AutoMigrateProfiles also creates profiles; only for local databases,
	// in Supabase the table belongs to the onboarding schema.
	AutoMigrateProfiles bool `yaml:"auto_migrate_profiles"`

	// Connection pool settings
	MaxOpenConns    int           `yaml:"max_open_conns"`
	MaxIdleConns    int           `yaml:"max_idle_conns"`
	ConnMaxLifetime time.Duration `yaml:"conn_max_lifetime"`
	ConnMaxIdleTime time.Duration `yaml:"conn_max_idle_time"`
}

// DSN returns the database connection string
func (c *DatabaseConfig) DSN() string {
	if c.URL != "" {
		return c.URL
	}
	sslMode := c.SSLMode
	if sslMode == "" {
		sslMode = "require"
	}
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Name, sslMode)
}
