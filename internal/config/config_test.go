package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "dev", cfg.Env)
	assert.Equal(t, ":8000", cfg.HTTPAddr)
	assert.Equal(t, "memory", cfg.Database.Type)
	assert.Equal(t, "memory", cfg.Session.Backend)
	assert.Equal(t, 336*time.Hour, cfg.Session.TTL)
	assert.Equal(t, 10, cfg.Security.LoginRateLimit)
	assert.Contains(t, cfg.Security.CORSAllowedOrigins, "http://localhost:5173")
	assert.True(t, cfg.IsDev())
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("BLOG_DB_TYPE", "SQLite")
	t.Setenv("BLOG_DB_DSN", "blog.db")
	t.Setenv("BLOG_SESSION_TTL", "1h")
	t.Setenv("BLOG_COOKIE_SECURE", "true")
	t.Setenv("BLOG_CORS_ALLOWED_ORIGINS", "https://blog.example.com, https://admin.example.com")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "sqlite", cfg.Database.Type)
	assert.Equal(t, "blog.db", cfg.Database.DSN)
	assert.Equal(t, time.Hour, cfg.Session.TTL)
	assert.True(t, cfg.Session.CookieSecure)
	assert.Equal(t, []string{"https://blog.example.com", "https://admin.example.com"}, cfg.Security.CORSAllowedOrigins)
}

func TestLoadValidation(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{"unknown db", map[string]string{"BLOG_DB_TYPE": "oracle"}},
		{"sql without dsn", map[string]string{"BLOG_DB_TYPE": "postgres"}},
		{"redis without url", map[string]string{"BLOG_SESSION_BACKEND": "redis"}},
		{"unknown session backend", map[string]string{"BLOG_SESSION_BACKEND": "memcached"}},
		{"prod with dev secret", map[string]string{"BLOG_ENV": "prod"}},
		{"prod with short secret", map[string]string{"BLOG_ENV": "prod", "BLOG_SESSION_SECRET": "short"}},
		{"prod with fixtures", map[string]string{"BLOG_ENV": "prod", "BLOG_SESSION_SECRET": "0123456789abcdef0123456789abcdef", "BLOG_SEED_FIXTURES": "true"}},
		{"bad env", map[string]string{"BLOG_ENV": "staging"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := Load()
			assert.Error(t, err)
		})
	}
}

func TestLoadProd(t *testing.T) {
	t.Setenv("BLOG_ENV", "prod")
	t.Setenv("BLOG_SESSION_SECRET", "0123456789abcdef0123456789abcdef")

	cfg, err := Load()
	require.NoError(t, err)
	assert.True(t, cfg.IsProd())
}
