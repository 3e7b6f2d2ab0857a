package config

import (
	"fmt"
	"net"
	"net/url"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

const Production = "release"

type DatabaseOptions struct {
	Host     string `env:"DB_HOST" envDefault:"localhost"`
	Port     string `env:"DB_PORT" envDefault:"5432"`
	User     string `env:"DB_USER" envDefault:"postgres"`
	Password string `env:"DB_PASSWORD" envDefault:"postgres"`
	Name     string `env:"DB_NAME" envDefault:"postgres"`
	SSLMode  string `env:"DB_SSLMODE" envDefault:"disable"`
}

type LogOptions struct {
	Level  string `env:"LOG_LEVEL" envDefault:"info"`
	Format string `env:"LOG_FORMAT" envDefault:"json"` // json or text
}

type CacheOptions struct {
	// Lifetime of a division's raw work-item snapshot.
	WorkItemTTL time.Duration `env:"WORKITEM_CACHE_TTL" envDefault:"30m"`
	// Clear the sender division's snapshot after an accepted request rewrote an assignment date.
	InvalidateOnAccept bool `env:"INVALIDATE_ON_ACCEPT" envDefault:"true"`
}

type Config struct {
	Database DatabaseOptions
	Log      LogOptions
	Cache    CacheOptions

	Port        string   `env:"PORT" envDefault:"8080"`
	GinMode     string   `env:"GIN_MODE" envDefault:"debug"`
	JWTSecret   string   `env:"JWT_SECRET"`
	CORSOrigins []string `env:"CORS_ORIGINS" envSeparator:"," envDefault:"http://localhost:5173,http://127.0.0.1:5173"`
	PageSize    int      `env:"PAGE_SIZE" envDefault:"20"`
	MaxPageSize int      `env:"MAX_PAGE_SIZE" envDefault:"100"`
}

// Load reads the optional env files and parses the process environment.
func Load(envFiles ...string) (*Config, error) {
	existing := make([]string, 0, len(envFiles))
	for _, f := range envFiles {
		if _, err := os.Stat(f); err == nil {
			existing = append(existing, f)
		}
	}
	if len(existing) > 0 {
		if err := godotenv.Load(existing...); err != nil {
			return nil, fmt.Errorf("failed to load env files: %w", err)
		}
	}

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse environment: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	if c.GinMode == Production && c.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is required in %s mode", Production)
	}
	if c.Cache.WorkItemTTL <= 0 {
		return fmt.Errorf("WORKITEM_CACHE_TTL must be positive, got %s", c.Cache.WorkItemTTL)
	}
	if c.PageSize < 1 || c.MaxPageSize < c.PageSize {
		return fmt.Errorf("invalid page sizes: PAGE_SIZE=%d MAX_PAGE_SIZE=%d", c.PageSize, c.MaxPageSize)
	}
	return nil
}

func (c *Config) IsProduction() bool {
	return c.GinMode == Production
}

// Secret returns the JWT signing key, falling back to a development key outside release mode.
func (c *Config) Secret() []byte {
	if c.JWTSecret == "" {
		return []byte("default_super_secret_key")
	}
	return []byte(c.JWTSecret)
}

// DSN builds the postgres URL; credentials are escaped.
func (d DatabaseOptions) DSN() string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(d.User, d.Password),
		Host:     net.JoinHostPort(d.Host, d.Port),
		Path:     "/" + d.Name,
		RawQuery: url.Values{"sslmode": {d.SSLMode}}.Encode(),
	}
	return u.String()
}
