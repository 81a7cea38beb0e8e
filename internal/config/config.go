package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/hashicorp/go-multierror"
	"github.com/joho/godotenv"
)

type AppConfig struct {
	Port      string
	LogLevel  string
	LogFormat string
}

type PostgresConfig struct {
	Host            string
	Port            string
	User            string
	Password        string
	DBName          string
	SSLMode         string
	MaxConns        int32
	MinConns        int32
	MaxConnLifetime time.Duration
	MigrationsPath  string
}

type RedisConfig struct {
	Addr       string
	Password   string
	DB         int
	SessionTTL time.Duration
}

type MinioConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
	URLTTL    time.Duration
}

// MaxPresignTTL is the longest lifetime S3 accepts for a presigned URL.
const MaxPresignTTL = 7 * 24 * time.Hour

type TelemetryConfig struct {
	Enabled  bool
	Endpoint string
}

type Config struct {
	App       AppConfig
	Postgres  PostgresConfig
	Redis     RedisConfig
	Minio     MinioConfig
	Telemetry TelemetryConfig
	FAQPath   string
}

// NewConfig reads .env (if present) and the process environment.
func NewConfig() (*Config, error) {
	return Load(".env")
}

func Load(envPath string) (*Config, error) {
	if envPath != "" {
		if err := godotenv.Load(envPath); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("config: failed to load %s: %w", envPath, err)
		}
	}

	r := &reader{}
	cfg := &Config{
		App: AppConfig{
			Port:      r.str("APP_PORT", "8080"),
			LogLevel:  r.str("LOG_LEVEL", "info"),
			LogFormat: r.str("LOG_FORMAT", "json"),
		},
		Postgres: PostgresConfig{
			Host:            r.required("DB_HOST"),
			Port:            r.str("DB_PORT", "5432"),
			User:            r.required("DB_USER"),
			Password:        r.str("DB_PASSWORD", ""),
			DBName:          r.required("DB_NAME"),
			SSLMode:         r.str("DB_SSLMODE", "disable"),
			MaxConns:        int32(r.integer("DB_MAX_CONNS", 10)),
			MinConns:        int32(r.integer("DB_MIN_CONNS", 2)),
			MaxConnLifetime: r.duration("DB_MAX_CONN_LIFETIME", 30*time.Minute),
			MigrationsPath:  r.str("DB_MIGRATIONS_PATH", "migrations"),
		},
		Redis: RedisConfig{
			Addr:       r.str("REDIS_ADDR", "localhost:6379"),
			Password:   r.str("REDIS_PASSWORD", ""),
			DB:         r.integer("REDIS_DB", 0),
			SessionTTL: r.duration("SESSION_TTL", 7*24*time.Hour),
		},
		Minio: MinioConfig{
			Endpoint:  r.str("MINIO_ENDPOINT", "localhost:9000"),
			AccessKey: r.str("MINIO_ACCESS_KEY", ""),
			SecretKey: r.str("MINIO_SECRET_KEY", ""),
			Bucket:    r.str("MINIO_BUCKET", "bookstore-images"),
			UseSSL:    r.boolean("MINIO_USE_SSL", false),
			URLTTL:    r.duration("UPLOAD_URL_TTL", MaxPresignTTL),
		},
		Telemetry: TelemetryConfig{
			Enabled:  r.boolean("OTEL_ENABLED", false),
			Endpoint: r.str("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4318"),
		},
		FAQPath: r.str("FAQ_PATH", ""),
	}

	if err := r.errs.ErrorOrNil(); err != nil {
		return nil, err
	}

	if cfg.Postgres.MinConns > cfg.Postgres.MaxConns {
		return nil, fmt.Errorf("config: DB_MIN_CONNS (%d) exceeds DB_MAX_CONNS (%d)", cfg.Postgres.MinConns, cfg.Postgres.MaxConns)
	}

	if cfg.Minio.URLTTL <= 0 || cfg.Minio.URLTTL > MaxPresignTTL {
		return nil, fmt.Errorf("config: UPLOAD_URL_TTL must be between 1s and %s, got %s", MaxPresignTTL, cfg.Minio.URLTTL)
	}

	return cfg, nil
}

// reader collects every bad key so Load reports them together.
type reader struct {
	errs *multierror.Error
}

func (r *reader) fail(err error) {
	r.errs = multierror.Append(r.errs, err)
}

func (r *reader) str(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func (r *reader) required(key string) string {
	v := os.Getenv(key)
	if v == "" {
		r.fail(fmt.Errorf("config: %s is required", key))
	}
	return v
}

func (r *reader) integer(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		r.fail(fmt.Errorf("config: %s must be an integer: %w", key, err))
		return def
	}
	return n
}

func (r *reader) duration(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		r.fail(fmt.Errorf("config: %s must be a duration: %w", key, err))
		return def
	}
	return d
}

func (r *reader) boolean(key string, def bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		r.fail(fmt.Errorf("config: %s must be a boolean: %w", key, err))
		return def
	}
	return b
}
