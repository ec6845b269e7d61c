package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testYAML = `
service:
  name: brillo-billing
  default_provider: stripe
  admin_user_ids: ["admin-1"]
  supabase:
    jwt_secret: file-secret
stripe:
  monthly_price_id: price_month
  yearly_price_id: price_year
polar:
  server: sandbox
  monthly_product_id: prod_month
database:
  host: localhost
  name: brillo
  user: postgres
cache:
  status_ttl: 30s
`

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "billing.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadConfig_FileAndEnv(t *testing.T) {
	t.Setenv("CONFIG_PATH", writeConfig(t, testYAML))
	t.Setenv("BRILLO_STRIPE_SECRET_KEY", "sk_test_123")
	t.Setenv("BRILLO_POLAR_TIMEOUT", "3s")
	t.Setenv("BRILLO_SERVICE_ADMIN_USER_IDS", "a, b")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "stripe", cfg.Service.DefaultProvider)
	assert.Equal(t, "file-secret", cfg.Service.Supabase.JWTSecret)
	assert.Equal(t, "sk_test_123", cfg.Stripe.SecretKey)
	assert.True(t, cfg.Stripe.Configured())
	assert.False(t, cfg.Polar.Configured())
	assert.Equal(t, "price_year", cfg.Stripe.YearlyPriceID)
	assert.Equal(t, "sandbox", cfg.Polar.Server)
	assert.Equal(t, 3*time.Second, cfg.Polar.Timeout)
	assert.Equal(t, 30*time.Second, cfg.Cache.StatusTTL)
	assert.Equal(t, []string{"a", "b"}, cfg.Service.AdminUserIDs)
	assert.Equal(t, 5432, cfg.Database.Port)
	assert.Equal(t, 8080, cfg.Server.HTTP.Port)
}

func TestLoadConfig_MissingFileUsesEnv(t *testing.T) {
	t.Setenv("CONFIG_PATH", filepath.Join(t.TempDir(), "absent.yaml"))
	t.Setenv("BRILLO_DATABASE_HOST", "db")
	t.Setenv("BRILLO_DATABASE_NAME", "brillo")
	t.Setenv("BRILLO_DATABASE_USER", "svc")
	t.Setenv("BRILLO_SERVICE_SUPABASE_JWT_SECRET", "secret")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "db", cfg.Database.Host)
	assert.Equal(t, "production", cfg.Polar.Server)
}

func TestValidate(t *testing.T) {
	cfg := Default()
	assert.Error(t, cfg.Validate())

	cfg.Database.Host = "db"
	cfg.Database.Name = "brillo"
	cfg.Database.User = "svc"
	cfg.Service.Supabase.JWTSecret = "secret"
	assert.NoError(t, cfg.Validate())

	cfg.Service.DefaultProvider = "paddle"
	assert.Error(t, cfg.Validate())

	urlOnly := Default()
	urlOnly.Database.Host = ""
	urlOnly.Database.URL = "postgres://svc@db/brillo"
	urlOnly.Service.Supabase.JWTSecret = "secret"
	assert.NoError(t, urlOnly.Validate())
}

func TestDatabaseDSN(t *testing.T) {
	c := DatabaseConfig{Host: "h", Port: 5432, User: "u", Password: "p", Name: "n"}
	assert.Equal(t, "host=h port=5432 user=u password=p dbname=n sslmode=require", c.DSN())

	c.URL = "postgres://u:p@db.example.supabase.co:6543/postgres"
	assert.Equal(t, c.URL, c.DSN())
}
