package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFromEnv(t *testing.T) {
	t.Setenv("BRILLOTEST_STRIPE_SECRET_KEY", "sk_test_123")
	t.Setenv("BRILLOTEST_SERVER_HTTP_PORT", "8088")
	t.Setenv("BRILLOTEST_SERVICE_ADMIN_USER_IDS", "a, b ,c")
	t.Setenv("BRILLOTEST_DATABASE_AUTO_MIGRATE", "true")

	cfg := FromEnv("brillotest")

	assert.Equal(t, "sk_test_123", cfg.GetString("stripe.secret_key"))
	assert.Equal(t, 8088, cfg.GetInt("server.http.port"))
	assert.Equal(t, []string{"a", "b", "c"}, cfg.GetStringSlice("service.admin_user_ids"))
	assert.True(t, cfg.GetBool("database.auto_migrate"))
	assert.True(t, cfg.IsSet("stripe.secret_key"))
	assert.False(t, cfg.IsSet("polar.access_token"))
}
