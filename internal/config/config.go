package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/jithinio/brillo-sub004/pkg/logger"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// EnvPrefix is the prefix of environment variables overriding YAML values,
// e.g. BRILLO_STRIPE_SECRET_KEY overrides stripe.secret_key.
const EnvPrefix = "BRILLO"

type Config struct {
	Service   ServiceConfig   `yaml:"service"`
	Stripe    StripeConfig    `yaml:"stripe"`
	Polar     PolarConfig     `yaml:"polar"`
	Database  DatabaseConfig  `yaml:"database"`
	Server    ServerConfig    `yaml:"server"`
	Redis     RedisConfig     `yaml:"redis"`
	Cache     CacheConfig     `yaml:"cache"`
	RateLimit RateLimitConfig `yaml:"rate_limit"`
	Log       logger.Config   `yaml:"log"`
}

// LoadConfig reads .env (if present), the YAML file at CONFIG_PATH
// (default ./configs/billing.yaml) and BRILLO_* environment overrides.
// A missing YAML file is not an error; env-only deployments are supported.
func LoadConfig() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env file: %w", err)
	}

	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "./configs/billing.yaml"
	}

	cfg := Default()
	if err := loadFile(configPath, cfg); err != nil {
		return nil, err
	}

	applyEnvOverrides(cfg, EnvPrefix)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func loadFile(path string, cfg *Config) error {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("failed to get absolute path: %w", err)
	}

	data, err := os.ReadFile(absPath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("failed to unmarshal config: %w", err)
	}
	return nil
}

// Default returns the configuration used before the file and env are applied.
func Default() *Config {
	return &Config{
		Service: ServiceConfig{
			Name:        "brillo-billing",
			Environment: "development",
		},
		Polar: PolarConfig{
			Server:  "production",
			Timeout: defaultPolarTimeout,
		},
		Database: DatabaseConfig{
			Port:            5432,
			SSLMode:         "require",
			MaxOpenConns:    10,
			MaxIdleConns:    5,
			ConnMaxLifetime: defaultConnMaxLifetime,
			ConnMaxIdleTime: defaultConnMaxIdleTime,
		},
		Server: ServerConfig{
			HTTP: HTTPConfig{Host: "0.0.0.0", Port: 8080},
			GRPC: GRPCConfig{Host: "0.0.0.0", Port: 9090},
		},
		Cache: CacheConfig{
			StatusTTL: defaultStatusTTL,
		},
		RateLimit: RateLimitConfig{
			Rate:      1,
			Burst:     5,
			ExpiresIn: defaultRateLimitExpiry,
		},
		Log: logger.Config{
			Level:  "info",
			Format: "json",
			Output: "stdout",
		},
	}
}

// Validate checks the settings the process cannot start without.
// Billing provider settings are optional: an unconfigured provider
// is reported per request as "not configured".
func (c *Config) Validate() error {
	if c.Database.URL == "" {
		if c.Database.Host == "" {
			return errors.New("database.host or database.url is required")
		}
		if c.Database.Name == "" {
			return errors.New("database.name is required")
		}
		if c.Database.User == "" {
			return errors.New("database.user is required")
		}
	}
	if c.Service.Supabase.JWTSecret == "" {
		return errors.New("service.supabase.jwt_secret is required")
	}
	switch c.Service.DefaultProvider {
	case "", "stripe", "polar":
	default:
		return fmt.Errorf("service.default_provider must be stripe or polar, got %q", c.Service.DefaultProvider)
	}
	return nil
}
