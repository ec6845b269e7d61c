package config

import "time"

const (
	defaultPolarTimeout    = 15 * time.Second
	defaultStatusTTL       = 5 * time.Minute
	defaultRateLimitExpiry = 3 * time.Minute
)

type ServiceConfig struct {
	Name        string `yaml:"name"`
	Environment string `yaml:"environment"`
	Version     string `yaml:"version"`
	ClientURL   string `yaml:"client_url"`
	// DefaultProvider is used by /subscription/sync when the request does not name one.
	DefaultProvider string `yaml:"default_provider"`
	// AdminUserIDs may call operator endpoints such as /debug-polar.
	AdminUserIDs []string       `yaml:"admin_user_ids"`
	Supabase     SupabaseConfig `yaml:"supabase"`
}

type SupabaseConfig struct {
	JWTSecret  string `yaml:"jwt_secret"`
	ProjectURL string `yaml:"project_url"`
}

type StripeConfig struct {
	SecretKey      string `yaml:"secret_key"`
	WebhookSecret  string `yaml:"webhook_secret"`
	MonthlyPriceID string `yaml:"monthly_price_id"`
	YearlyPriceID  string `yaml:"yearly_price_id"`
}

// Configured reports whether the Stripe API can be called.
func (c StripeConfig) Configured() bool {
	return c.SecretKey != ""
}

type PolarConfig struct {
	AccessToken      string        `yaml:"access_token"`
	WebhookSecret    string        `yaml:"webhook_secret"`
	Server           string        `yaml:"server"` // production | sandbox
	MonthlyProductID string        `yaml:"monthly_product_id"`
	YearlyProductID  string        `yaml:"yearly_product_id"`
	Timeout          time.Duration `yaml:"timeout"`
}

// Configured reports whether the Polar API can be called.
func (c PolarConfig) Configured() bool {
	return c.AccessToken != ""
}

type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	// PlanChannel receives a message for every plan change written by the reconciler.
	PlanChannel string `yaml:"plan_channel"`
}

// Enabled reports whether a Redis server is configured.
func (c RedisConfig) Enabled() bool {
	return c.Addr != ""
}

type CacheConfig struct {
	StatusTTL time.Duration `yaml:"status_ttl"`
}

type RateLimitConfig struct {
	// Rate is the number of sync requests per second allowed per client IP.
	Rate      float64       `yaml:"rate"`
	Burst     int           `yaml:"burst"`
	ExpiresIn time.Duration `yaml:"expires_in"`
}
