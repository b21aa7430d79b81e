package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("STORE_DRIVER", "")
	t.Setenv("MAIL_TRANSPORT", "")
	t.Setenv("APP_ENV", "")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, StoreMongo, cfg.Store.Driver)
	assert.Equal(t, MailLog, cfg.Notify.Transport)
	assert.Equal(t, 5*time.Second, cfg.Notify.Timeout)
	assert.Equal(t, 8*time.Hour, cfg.Auth.SessionTTL)
	assert.Equal(t, "@every 15m", cfg.Worker.ReconcileSchedule)
	assert.Equal(t, 2*time.Minute, cfg.Worker.ReconcileGrace)
}

func TestLoad_FromEnv(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("CORS_ORIGINS", "https://a.example, https://b.example ,")
	t.Setenv("STORE_DRIVER", "memory")
	t.Setenv("NOTIFY_TIMEOUT", "750ms")
	t.Setenv("RECONCILE_GRACE", "30s")
	t.Setenv("REGISTER_RATE_PER_MIN", "30")
	t.Setenv("SESSION_TTL", "not-a-duration")
	t.Setenv("DB_PORT", "abc")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "9090", cfg.Server.Port)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.Server.CORSOrigins)
	assert.Equal(t, StoreMemory, cfg.Store.Driver)
	assert.Equal(t, 750*time.Millisecond, cfg.Notify.Timeout)
	assert.Equal(t, 30*time.Second, cfg.Worker.ReconcileGrace)
	assert.Equal(t, 30, cfg.RateLimit.RegisterPerMinute)
	assert.Equal(t, 8*time.Hour, cfg.Auth.SessionTTL)
	assert.Equal(t, 5432, cfg.Database.Port)
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			Server:    ServerConfig{Port: "8080"},
			App:       AppConfig{Environment: "development"},
			Store:     StoreConfig{Driver: StoreMemory},
			Notify:    NotifyConfig{Transport: MailLog},
			RateLimit: RateLimitConfig{RegisterPerMinute: 10, RegisterBurst: 5},
		}
	}

	require.NoError(t, valid().Validate())

	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"missing port", func(c *Config) { c.Server.Port = "" }, "PORT"},
		{"unknown store", func(c *Config) { c.Store.Driver = "sqlite" }, "STORE_DRIVER"},
		{"mongo without uri", func(c *Config) { c.Store.Driver = StoreMongo }, "MONGO_URI"},
		{"postgres without dsn", func(c *Config) { c.Store.Driver = StorePostgres }, "DB_DSN"},
		{"unknown transport", func(c *Config) { c.Notify.Transport = "smtp" }, "MAIL_TRANSPORT"},
		{"webhook without url", func(c *Config) { c.Notify.Transport = MailWebhook }, "MAIL_WEBHOOK_URL"},
		{"production without secret", func(c *Config) { c.App.Environment = "production" }, "SESSION_SECRET"},
		{"production without credentials", func(c *Config) {
			c.App.Environment = "production"
			c.Auth.SessionSecret = "s3cret"
		}, "ADMIN_PASSWORD_HASH"},
		{"zero burst", func(c *Config) { c.RateLimit.RegisterBurst = 0 }, "REGISTER_BURST"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := valid()
			tt.mutate(c)
			err := c.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}
