package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// Storage driver names accepted in STORAGE_DRIVER.
const (
	DriverPostgres = "postgres"
	DriverMongo    = "mongo"
	DriverSQLite   = "sqlite"
)

// Config holds runtime configuration sourced from env vars.
type Config struct {
	Port string `env:"PORT" env-default:"8080"`

	StorageDriver    string `env:"STORAGE_DRIVER" env-default:"postgres"`
	DatabaseURL      string `env:"DATABASE_URL" env-default:""`
	MongoURI         string `env:"MONGO_URI" env-default:""`
	MongoDB          string `env:"MONGO_DB" env-default:"campuslink"`
	SQLitePath       string `env:"SQLITE_PATH" env-default:"campuslink.db"`
	UniqueGroupNames bool   `env:"GROUP_NAMES_UNIQUE" env-default:"false"`

	JWTSecret     string `env:"JWT_SECRET" env-required:"true"`
	JWTIssuer     string `env:"JWT_ISSUER" env-default:"campuslink-backend"`
	JWTTTLMinutes int    `env:"JWT_TTL_MINUTES" env-default:"60"`

	RedisAddr     string        `env:"REDIS_ADDR" env-default:""`
	RedisPassword string        `env:"REDIS_PASSWORD" env-default:""`
	RedisDB       int           `env:"REDIS_DB" env-default:"0"`
	CacheTTL      time.Duration `env:"CACHE_TTL" env-default:"30s"`

	CORSOriginsRaw string `env:"CORS_ALLOWED_ORIGINS" env-default:"*"`
}

// Load reads configuration from the environment and validates the pieces the
// selected storage driver needs.
func Load() (Config, error) {
	var cfg Config
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return Config{}, fmt.Errorf("read env: %w", err)
	}

	switch cfg.StorageDriver {
	case DriverPostgres:
		if strings.TrimSpace(cfg.DatabaseURL) == "" {
			return Config{}, fmt.Errorf("DATABASE_URL is required for the postgres driver")
		}
	case DriverMongo:
		if strings.TrimSpace(cfg.MongoURI) == "" {
			return Config{}, fmt.Errorf("MONGO_URI is required for the mongo driver")
		}
	case DriverSQLite:
		if strings.TrimSpace(cfg.SQLitePath) == "" {
			return Config{}, fmt.Errorf("SQLITE_PATH is required for the sqlite driver")
		}
	default:
		return Config{}, fmt.Errorf("unknown STORAGE_DRIVER %q", cfg.StorageDriver)
	}

	if cfg.JWTTTLMinutes <= 0 {
		cfg.JWTTTLMinutes = 60
	}
	return cfg, nil
}

// HTTPAddress returns the host:port pair for the HTTP server to bind to.
func (c Config) HTTPAddress() string {
	return fmt.Sprintf(":%s", c.Port)
}

// JWTTTL returns the token lifetime as a duration.
func (c Config) JWTTTL() time.Duration {
	return time.Duration(c.JWTTTLMinutes) * time.Minute
}

// CORSOrigins returns the allowed origins parsed from the comma-separated
// env value.
func (c Config) CORSOrigins() []string {
	parts := strings.Split(c.CORSOriginsRaw, ",")
	var out []string
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	if len(out) == 0 {
		return []string{"*"}
	}
	return out
}

// CacheEnabled reports whether the Redis group cache should be wired up.
func (c Config) CacheEnabled() bool {
	return strings.TrimSpace(c.RedisAddr) != ""
}
