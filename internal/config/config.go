package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	App       AppConfig
	Database  DatabaseConfig
	Auth      AuthConfig
	Cache     CacheConfig
	Matching  MatchingConfig
	Embedding EmbeddingConfig
}

type AppConfig struct {
	AppName     string
	Environment string
	HTTPPort    string
}

type DatabaseConfig struct {
	DBHost     string
	DBPort     string
	DBName     string
	DBUser     string
	DBPassword string
	DBSSLMode  string

	PoolMaxConns   int32
	ConnectTimeout time.Duration
}

// Enabled reports whether enough settings are present to open a connection.
func (c DatabaseConfig) Enabled() bool {
	return c.DBHost != "" && c.DBName != ""
}

type AuthConfig struct {
	AccessSecret string
	AccessTTL    time.Duration
}

type CacheConfig struct {
	Driver        string
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	BadgerDir     string
	GCSchedule    string
}

type MatchingConfig struct {
	CacheTTL      time.Duration
	Deadline      time.Duration
	Workers       int
	CandidatePool int
}

type EmbeddingConfig struct {
	Provider string
	BaseURL  string
	APIKey   string
	Model    string
	Timeout  time.Duration
}

const (
	CacheDriverRedis  = "redis"
	CacheDriverBadger = "badger"
	CacheDriverNone   = "none"
)

var (
	errMissingRequiredEnv = errors.New("missing required environment variables")
	errInvalidEnv         = errors.New("invalid environment variables")
)

// Load reads an optional .env file, then the process environment. Values already set
// in the environment win over the file.
func Load() (Config, error) {
	_ = godotenv.Load()
	return load(os.Getenv)
}

func load(getenv func(string) string) (Config, error) {
	cfg := Config{}

	var missing, invalid []string
	req := func(key string) string {
		v := strings.TrimSpace(getenv(key))
		if v == "" {
			missing = append(missing, key)
		}
		return v
	}
	opt := func(key, def string) string {
		v := strings.TrimSpace(getenv(key))
		if v == "" {
			return def
		}
		return v
	}
	optInt := func(key string, def int) int {
		raw := strings.TrimSpace(getenv(key))
		if raw == "" {
			return def
		}
		v, err := strconv.Atoi(raw)
		if err != nil || v < 0 {
			invalid = append(invalid, key)
			return def
		}
		return v
	}
	optDuration := func(key string, def time.Duration) time.Duration {
		raw := strings.TrimSpace(getenv(key))
		if raw == "" {
			return def
		}
		v, err := time.ParseDuration(raw)
		if err != nil || v <= 0 {
			invalid = append(invalid, key)
			return def
		}
		return v
	}

	cfg.App = AppConfig{
		AppName:     req("APP_NAME"),
		Environment: req("APP_ENV"),
		HTTPPort:    req("HTTP_PORT"),
	}

	cfg.Database = DatabaseConfig{
		DBHost:         opt("DB_HOST", ""),
		DBPort:         opt("DB_PORT", "5432"),
		DBName:         opt("DB_NAME", ""),
		DBUser:         opt("DB_USER", ""),
		DBPassword:     strings.TrimSpace(getenv("DB_PASSWORD")),
		DBSSLMode:      opt("DB_SSL_MODE", "disable"),
		PoolMaxConns:   int32(optInt("DB_POOL_MAX_CONNS", 10)),
		ConnectTimeout: optDuration("DB_CONNECT_TIMEOUT", 5*time.Second),
	}

	cfg.Auth = AuthConfig{
		AccessSecret: req("JWT_ACCESS_SECRET"),
		AccessTTL:    optDuration("JWT_ACCESS_TTL", 15*time.Minute),
	}

	cfg.Cache = CacheConfig{
		Driver:        strings.ToLower(opt("CACHE_DRIVER", CacheDriverRedis)),
		RedisAddr:     opt("REDIS_ADDR", "localhost:6379"),
		RedisPassword: strings.TrimSpace(getenv("REDIS_PASSWORD")),
		RedisDB:       optInt("REDIS_DB", 0),
		BadgerDir:     opt("BADGER_DIR", ""),
		GCSchedule:    opt("BADGER_GC_SCHEDULE", "@every 10m"),
	}
	switch cfg.Cache.Driver {
	case CacheDriverRedis, CacheDriverBadger, CacheDriverNone:
	default:
		invalid = append(invalid, "CACHE_DRIVER")
	}

	cfg.Matching = MatchingConfig{
		CacheTTL:      optDuration("MATCH_CACHE_TTL", 24*time.Hour),
		Deadline:      optDuration("MATCH_DEADLINE", 10*time.Second),
		Workers:       optInt("MATCH_WORKERS", 16),
		CandidatePool: optInt("MATCH_CANDIDATE_POOL", 100),
	}
	if cfg.Matching.Workers == 0 {
		invalid = append(invalid, "MATCH_WORKERS")
	}
	if cfg.Matching.CandidatePool == 0 {
		invalid = append(invalid, "MATCH_CANDIDATE_POOL")
	}

	cfg.Embedding = EmbeddingConfig{
		Provider: strings.ToLower(opt("EMBEDDING_PROVIDER", "none")),
		BaseURL:  opt("EMBEDDING_BASE_URL", ""),
		APIKey:   strings.TrimSpace(getenv("EMBEDDING_API_KEY")),
		Model:    opt("EMBEDDING_MODEL", ""),
		Timeout:  optDuration("EMBEDDING_TIMEOUT", 10*time.Second),
	}

	if len(missing) > 0 {
		return Config{}, fmt.Errorf("%w: %s", errMissingRequiredEnv, strings.Join(missing, ", "))
	}
	if len(invalid) > 0 {
		return Config{}, fmt.Errorf("%w: %s", errInvalidEnv, strings.Join(invalid, ", "))
	}

	return cfg, nil
}
