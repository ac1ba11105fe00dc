package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// DefaultConfigFile is the path checked for YAML configuration.
const DefaultConfigFile = "cartforge.yaml"

// Load returns a Config using the hierarchy: defaults < YAML < ENV.
// YAML file is optional; missing file is not an error.
func Load() (*Config, error) {
	return LoadFrom(DefaultConfigFile)
}

// LoadFrom returns a Config loaded from the given YAML path using the
// hierarchy: defaults < YAML < ENV. The YAML file is optional.
func LoadFrom(yamlPath string) (*Config, error) {
	_ = godotenv.Load(".env")

	cfg := Defaults()

	if err := loadYAML(&cfg, yamlPath); err != nil {
		return nil, fmt.Errorf("config yaml: %w", err)
	}

	loadEnv(&cfg)

	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("config validate: %w", err)
	}

	return &cfg, nil
}

// loadYAML reads the YAML file and unmarshals it over cfg.
// Returns nil if the file does not exist.
func loadYAML(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("read %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}

	return nil
}

// loadEnv overlays environment variables onto cfg.
// Only non-empty env values override the current config.
func loadEnv(cfg *Config) {
	setString(&cfg.Server.Port, "CARTFORGE_PORT")
	setString(&cfg.Server.CORSOrigin, "CARTFORGE_CORS_ORIGIN")
	setString(&cfg.Postgres.DSN, "DATABASE_URL")
	setInt32(&cfg.Postgres.MaxConns, "CARTFORGE_PG_MAX_CONNS")
	setInt32(&cfg.Postgres.MinConns, "CARTFORGE_PG_MIN_CONNS")
	setDuration(&cfg.Postgres.MaxConnLifetime, "CARTFORGE_PG_MAX_CONN_LIFETIME")
	setDuration(&cfg.Postgres.MaxConnIdleTime, "CARTFORGE_PG_MAX_CONN_IDLE_TIME")
	setDuration(&cfg.Postgres.HealthCheck, "CARTFORGE_PG_HEALTH_CHECK")
	setString(&cfg.Redis.URL, "REDIS_URL")
	setBool(&cfg.Redis.Enabled, "CARTFORGE_REDIS_ENABLED")
	setString(&cfg.NATS.URL, "NATS_URL")
	setBool(&cfg.NATS.Enabled, "CARTFORGE_NATS_ENABLED")
	setString(&cfg.NATS.IdempotencyBucket, "CARTFORGE_IDEMPOTENCY_BUCKET")
	setDuration(&cfg.NATS.IdempotencyTTL, "CARTFORGE_IDEMPOTENCY_TTL")
	setString(&cfg.Logging.Level, "CARTFORGE_LOG_LEVEL")
	setString(&cfg.Logging.Service, "CARTFORGE_LOG_SERVICE")
	setString(&cfg.Auth.JWTSecret, "CARTFORGE_JWT_SECRET")
	setDuration(&cfg.Auth.AccessTokenExpiry, "CARTFORGE_ACCESS_TOKEN_EXPIRY")
	setInt(&cfg.Auth.BcryptCost, "CARTFORGE_BCRYPT_COST")
	setString(&cfg.Access.Policy, "CARTFORGE_ACCESS_POLICY")
	setBool(&cfg.Access.IncludeUntenanted, "CARTFORGE_INCLUDE_UNTENANTED")
	setBool(&cfg.Carts.AllowGuest, "CARTFORGE_ALLOW_GUEST_CARTS")
	setBool(&cfg.Carts.RequireTenant, "CARTFORGE_REQUIRE_TENANT")
	setString(&cfg.Carts.DefaultCurrency, "CARTFORGE_DEFAULT_CURRENCY")
	setDuration(&cfg.Carts.AbandonAfter, "CARTFORGE_ABANDON_AFTER")
	setInt64(&cfg.Cache.L1MaxBytes, "CARTFORGE_CACHE_L1_MAX_BYTES")
	setDuration(&cfg.Cache.L1TTL, "CARTFORGE_CACHE_L1_TTL")
	setDuration(&cfg.Cache.TenantTTL, "CARTFORGE_CACHE_TENANT_TTL")
	setFloat64(&cfg.Rate.RequestsPerSecond, "CARTFORGE_RATE_RPS")
	setInt(&cfg.Rate.Burst, "CARTFORGE_RATE_BURST")
	setBool(&cfg.Sweep.Enabled, "CARTFORGE_SWEEP_ENABLED")
	setString(&cfg.Sweep.Schedule, "CARTFORGE_SWEEP_SCHEDULE")
	setInt(&cfg.Sweep.Batch, "CARTFORGE_SWEEP_BATCH")
	setString(&cfg.Otel.Endpoint, "OTEL_EXPORTER_OTLP_ENDPOINT")
}

// validate checks cross-field constraints that defaults cannot guarantee.
func validate(cfg *Config) error {
	if cfg.Postgres.DSN == "" {
		return errors.New("postgres dsn is required")
	}
	switch cfg.Access.Policy {
	case "tenant-admin-first", "global-admin-gate":
	default:
		return fmt.Errorf("unknown access policy %q", cfg.Access.Policy)
	}
	if cfg.Auth.JWTSecret == "" {
		return errors.New("jwt secret is required (CARTFORGE_JWT_SECRET)")
	}
	if cfg.Carts.DefaultCurrency == "" {
		return errors.New("default currency is required")
	}
	if cfg.Sweep.Enabled && cfg.Sweep.Schedule == "" {
		return errors.New("sweep schedule is required when sweep is enabled")
	}
	return nil
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			*dst = parsed
		}
	}
}

func setInt32(dst *int32, key string) {
	if v := os.Getenv(key); v != "" {
		if parsed, err := strconv.ParseInt(v, 10, 32); err == nil {
			*dst = int32(parsed)
		}
	}
}

func setInt64(dst *int64, key string) {
	if v := os.Getenv(key); v != "" {
		if parsed, err := strconv.ParseInt(v, 10, 64); err == nil {
			*dst = parsed
		}
	}
}

func setFloat64(dst *float64, key string) {
	if v := os.Getenv(key); v != "" {
		if parsed, err := strconv.ParseFloat(v, 64); err == nil {
			*dst = parsed
		}
	}
}

func setBool(dst *bool, key string) {
	if v := os.Getenv(key); v != "" {
		if parsed, err := strconv.ParseBool(v); err == nil {
			*dst = parsed
		}
	}
}

func setDuration(dst *time.Duration, key string) {
	if v := os.Getenv(key); v != "" {
		if parsed, err := time.ParseDuration(v); err == nil {
			*dst = parsed
		}
	}
}
