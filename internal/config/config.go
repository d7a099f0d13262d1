package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
	"github.com/subosito/gotenv"
)

// DevSessionSecret is the default signing key; it is rejected in prod.
const DevSessionSecret = "dev-only-session-secret-change-me"

type Config struct {
	Env          string `mapstructure:"BLOG_ENV"`
	HTTPAddr     string `mapstructure:"BLOG_HTTP_ADDR"`
	LogLevel     string `mapstructure:"BLOG_LOG_LEVEL"`
	SeedFixtures bool   `mapstructure:"BLOG_SEED_FIXTURES"`

	Database DBConfig       `mapstructure:",squash"`
	Session  SessionConfig  `mapstructure:",squash"`
	Security SecurityConfig `mapstructure:",squash"`
	Authz    AuthzConfig    `mapstructure:",squash"`
}

type DBConfig struct {
	Type         string `mapstructure:"BLOG_DB_TYPE"` // "memory", "postgres", "sqlite"
	DSN          string `mapstructure:"BLOG_DB_DSN"`
	MaxOpenConns int    `mapstructure:"BLOG_DB_MAX_OPEN_CONNS"`
}

type SessionConfig struct {
	Backend      string        `mapstructure:"BLOG_SESSION_BACKEND"` // "memory", "redis"
	RedisURL     string        `mapstructure:"BLOG_REDIS_URL"`
	Secret       string        `mapstructure:"BLOG_SESSION_SECRET"`
	TTL          time.Duration `mapstructure:"BLOG_SESSION_TTL"`
	CookieSecure bool          `mapstructure:"BLOG_COOKIE_SECURE"`
}

type SecurityConfig struct {
	RateLimitRPM       int      `mapstructure:"BLOG_RATE_LIMIT_RPM"`
	LoginRateLimit     int      `mapstructure:"BLOG_LOGIN_RATE_LIMIT"` // attempts per minute per IP
	CORSAllowedOrigins []string `mapstructure:"BLOG_CORS_ALLOWED_ORIGINS"`
}

// AuthzConfig points at policy files that replace the embedded defaults.
type AuthzConfig struct {
	ModelPath  string `mapstructure:"BLOG_AUTHZ_MODEL_PATH"`
	PolicyPath string `mapstructure:"BLOG_AUTHZ_POLICY_PATH"`
}

func loadDotEnvFiles() {
	candidates := []string{
		".env",
		filepath.Join("..", ".env"),
	}

	seen := make(map[string]struct{})
	for _, path := range candidates {
		abs := path
		if resolved, err := filepath.Abs(path); err == nil {
			abs = resolved
		}
		if _, ok := seen[abs]; ok {
			continue
		}
		seen[abs] = struct{}{}

		if _, err := os.Stat(path); err == nil {
			_ = gotenv.Load(path) // ignore errors; env vars already set take precedence
		}
	}
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("BLOG_ENV", "dev")
	v.SetDefault("BLOG_HTTP_ADDR", ":8000")
	v.SetDefault("BLOG_LOG_LEVEL", "")
	v.SetDefault("BLOG_SEED_FIXTURES", false)
	v.SetDefault("BLOG_DB_TYPE", "memory")
	v.SetDefault("BLOG_DB_DSN", "")
	v.SetDefault("BLOG_DB_MAX_OPEN_CONNS", 10)
	v.SetDefault("BLOG_SESSION_BACKEND", "memory")
	v.SetDefault("BLOG_REDIS_URL", "")
	v.SetDefault("BLOG_SESSION_SECRET", DevSessionSecret)
	v.SetDefault("BLOG_SESSION_TTL", "336h") // two weeks
	v.SetDefault("BLOG_COOKIE_SECURE", false)
	v.SetDefault("BLOG_RATE_LIMIT_RPM", 600)
	v.SetDefault("BLOG_LOGIN_RATE_LIMIT", 10)
	v.SetDefault("BLOG_CORS_ALLOWED_ORIGINS", "http://localhost:3000,http://localhost:5173,http://localhost:8080")
	v.SetDefault("BLOG_AUTHZ_MODEL_PATH", "")
	v.SetDefault("BLOG_AUTHZ_POLICY_PATH", "")
}

// Load reads configuration from .env files and the environment
func Load() (*Config, error) {
	loadDotEnvFiles()

	v := viper.New()
	v.SetConfigType("env")
	v.AutomaticEnv()
	setDefaults(v)

	// Handle array parsing for comma-separated values
	if origins := v.GetString("BLOG_CORS_ALLOWED_ORIGINS"); origins != "" {
		v.Set("BLOG_CORS_ALLOWED_ORIGINS", splitList(origins))
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	cfg.Database.Type = strings.ToLower(strings.TrimSpace(cfg.Database.Type))
	cfg.Session.Backend = strings.ToLower(strings.TrimSpace(cfg.Session.Backend))

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func (c *Config) validate() error {
	switch c.Env {
	case "dev", "prod", "test":
	default:
		return fmt.Errorf("invalid BLOG_ENV %q (must be dev, prod or test)", c.Env)
	}

	switch c.Database.Type {
	case "memory":
	case "postgres", "sqlite":
		if c.Database.DSN == "" {
			return fmt.Errorf("BLOG_DB_DSN is required when BLOG_DB_TYPE is %s", c.Database.Type)
		}
	default:
		return fmt.Errorf("invalid BLOG_DB_TYPE %q (must be memory, postgres or sqlite)", c.Database.Type)
	}

	switch c.Session.Backend {
	case "memory":
	case "redis":
		if c.Session.RedisURL == "" {
			return fmt.Errorf("BLOG_REDIS_URL is required when BLOG_SESSION_BACKEND is redis")
		}
	default:
		return fmt.Errorf("invalid BLOG_SESSION_BACKEND %q (must be memory or redis)", c.Session.Backend)
	}

	if c.Session.TTL <= 0 {
		return fmt.Errorf("BLOG_SESSION_TTL must be positive")
	}
	if c.IsProd() && (len(c.Session.Secret) < 32 || c.Session.Secret == DevSessionSecret) {
		return fmt.Errorf("BLOG_SESSION_SECRET must be set to at least 32 characters in prod")
	}
	if c.IsProd() && c.SeedFixtures {
		return fmt.Errorf("BLOG_SEED_FIXTURES creates a demo account and is not allowed in prod")
	}
	if c.Security.LoginRateLimit <= 0 {
		return fmt.Errorf("BLOG_LOGIN_RATE_LIMIT must be positive")
	}
	return nil
}

func (c *Config) IsDev() bool {
	return c.Env == "dev"
}

func (c *Config) IsProd() bool {
	return c.Env == "prod"
}
