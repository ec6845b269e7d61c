package config

import (
	"time"

	pkgconfig "github.com/jithinio/brillo-sub004/pkg/config"
)

// applyEnvOverrides copies every set PREFIX_* variable over the file values.
// Secrets are normally supplied this way rather than in YAML.
func applyEnvOverrides(cfg *Config, prefix string) {
	env := pkgconfig.FromEnv(prefix)

	str := func(key string, dst *string) {
		if env.IsSet(key) {
			*dst = env.GetString(key)
		}
	}
	num := func(key string, dst *int) {
		if env.IsSet(key) {
			*dst = env.GetInt(key)
		}
	}
	flag := func(key string, dst *bool) {
		if env.IsSet(key) {
			*dst = env.GetBool(key)
		}
	}
	dur := func(key string, dst *time.Duration) {
		if !env.IsSet(key) {
			return
		}
		if d, err := time.ParseDuration(env.GetString(key)); err == nil {
			*dst = d
		}
	}

	str("service.environment", &cfg.Service.Environment)
	str("service.client_url", &cfg.Service.ClientURL)
	str("service.default_provider", &cfg.Service.DefaultProvider)
	str("service.supabase.jwt_secret", &cfg.Service.Supabase.JWTSecret)
	str("service.supabase.project_url", &cfg.Service.Supabase.ProjectURL)
	if env.IsSet("service.admin_user_ids") {
		cfg.Service.AdminUserIDs = env.GetStringSlice("service.admin_user_ids")
	}

	str("stripe.secret_key", &cfg.Stripe.SecretKey)
	str("stripe.webhook_secret", &cfg.Stripe.WebhookSecret)
	str("stripe.monthly_price_id", &cfg.Stripe.MonthlyPriceID)
	str("stripe.yearly_price_id", &cfg.Stripe.YearlyPriceID)

	str("polar.access_token", &cfg.Polar.AccessToken)
	str("polar.webhook_secret", &cfg.Polar.WebhookSecret)
	str("polar.server", &cfg.Polar.Server)
	str("polar.monthly_product_id", &cfg.Polar.MonthlyProductID)
	str("polar.yearly_product_id", &cfg.Polar.YearlyProductID)
	dur("polar.timeout", &cfg.Polar.Timeout)

	str("database.url", &cfg.Database.URL)
	str("database.host", &cfg.Database.Host)
	num("database.port", &cfg.Database.Port)
	str("database.name", &cfg.Database.Name)
	str("database.user", &cfg.Database.User)
	str("database.password", &cfg.Database.Password)
	str("database.sslmode", &cfg.Database.SSLMode)
	flag("database.auto_migrate", &cfg.Database.AutoMigrate)
	flag("database.auto_migrate_profiles", &cfg.Database.AutoMigrateProfiles)

	num("server.http.port", &cfg.Server.HTTP.Port)
	num("server.grpc.port", &cfg.Server.GRPC.Port)
	flag("server.grpc.disabled", &cfg.Server.GRPC.Disabled)

	str("redis.addr", &cfg.Redis.Addr)
	str("redis.password", &cfg.Redis.Password)
	num("redis.db", &cfg.Redis.DB)
	str("redis.plan_channel", &cfg.Redis.PlanChannel)

	dur("cache.status_ttl", &cfg.Cache.StatusTTL)

	if env.IsSet("rate_limit.rate") {
		cfg.RateLimit.Rate = env.GetFloat64("rate_limit.rate")
	}
	num("rate_limit.burst", &cfg.RateLimit.Burst)

	str("log.level", &cfg.Log.Level)
	str("log.format", &cfg.Log.Format)
}
