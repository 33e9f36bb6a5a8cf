package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/gommon/log"
)

type Config struct {
	Port           string
	AllowedOrigins []string
	LogLevel       log.Lvl

	Database  DatabaseConfig
	Auth      AuthConfig
	RateLimit RateLimitConfig
	Redis     RedisConfig
}

type DatabaseConfig struct {
	URL            string
	SSL            bool
	ConnectTimeout time.Duration
	MaxOpenConns   int
	MaxIdleConns   int
	IdleTimeout    time.Duration
	AcquireTimeout time.Duration
}

type AuthConfig struct {
	JWTSecret         string
	TokenTTL          time.Duration
	AdminUsername     string
	AdminPasswordHash string
}

type RateLimitConfig struct {
	RPS   float64
	Burst int
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	StatsTTL time.Duration
}

// Load reads .env when present and then the process environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}
	return FromEnv(os.Getenv)
}

// FromEnv builds the configuration from getenv, applying defaults and
// rejecting unparsable or missing required values.
func FromEnv(getenv func(string) string) (*Config, error) {
	p := parser{getenv: getenv}

	cfg := &Config{
		Port:           p.str("PORT", "3000"),
		AllowedOrigins: p.list("ALLOWED_ORIGINS", []string{"*"}),
		LogLevel:       p.level("LOG_LEVEL", log.INFO),
		Database: DatabaseConfig{
			URL:            p.str("DATABASE_URL", "file:atendimentos.db"),
			SSL:            p.boolean("DB_SSL", false),
			ConnectTimeout: p.duration("DB_CONNECT_TIMEOUT", 10*time.Second),
			MaxOpenConns:   p.integer("DB_MAX_OPEN_CONNS", 20),
			MaxIdleConns:   p.integer("DB_MAX_IDLE_CONNS", 5),
			IdleTimeout:    p.duration("DB_IDLE_TIMEOUT", 30*time.Second),
			AcquireTimeout: p.duration("DB_ACQUIRE_TIMEOUT", 5*time.Second),
		},
		Auth: AuthConfig{
			JWTSecret:         p.required("JWT_SECRET"),
			TokenTTL:          p.duration("JWT_EXPIRES_IN", 8*time.Hour),
			AdminUsername:     p.required("ADMIN_USERNAME"),
			AdminPasswordHash: p.required("ADMIN_PASSWORD_HASH"),
		},
		RateLimit: RateLimitConfig{
			RPS:   p.float("RATE_LIMIT_RPS", 10),
			Burst: p.integer("RATE_LIMIT_BURST", 30),
		},
		Redis: RedisConfig{
			Addr:     p.str("REDIS_ADDR", ""),
			Password: p.str("REDIS_PASSWORD", ""),
			DB:       p.integer("REDIS_DB", 0),
			StatsTTL: p.duration("STATS_CACHE_TTL", time.Minute),
		},
	}

	if len(p.errs) > 0 {
		return nil, errors.Join(p.errs...)
	}
	return cfg, nil
}

type parser struct {
	getenv func(string) string
	errs   []error
}

func (p *parser) lookup(key string) (string, bool) {
	v := strings.TrimSpace(p.getenv(key))
	return v, v != ""
}

func (p *parser) str(key, def string) string {
	if v, ok := p.lookup(key); ok {
		return v
	}
	return def
}

func (p *parser) required(key string) string {
	v, ok := p.lookup(key)
	if !ok {
		p.errs = append(p.errs, fmt.Errorf("%s is required", key))
	}
	return v
}

func (p *parser) list(key string, def []string) []string {
	v, ok := p.lookup(key)
	if !ok {
		return def
	}
	var out []string
	for _, item := range strings.Split(v, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	if len(out) == 0 {
		return def
	}
	return out
}

func (p *parser) boolean(key string, def bool) bool {
	v, ok := p.lookup(key)
	if !ok {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		p.errs = append(p.errs, fmt.Errorf("%s: %w", key, err))
	}
	return b
}

func (p *parser) integer(key string, def int) int {
	v, ok := p.lookup(key)
	if !ok {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		p.errs = append(p.errs, fmt.Errorf("%s: %w", key, err))
	}
	return n
}

func (p *parser) float(key string, def float64) float64 {
	v, ok := p.lookup(key)
	if !ok {
		return def
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		p.errs = append(p.errs, fmt.Errorf("%s: %w", key, err))
	}
	return f
}

func (p *parser) duration(key string, def time.Duration) time.Duration {
	v, ok := p.lookup(key)
	if !ok {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		p.errs = append(p.errs, fmt.Errorf("%s: %w", key, err))
	}
	return d
}

func (p *parser) level(key string, def log.Lvl) log.Lvl {
	v, ok := p.lookup(key)
	if !ok {
		return def
	}
	switch strings.ToLower(v) {
	case "debug":
		return log.DEBUG
	case "info":
		return log.INFO
	case "warn":
		return log.WARN
	case "error":
		return log.ERROR
	case "off":
		return log.OFF
	default:
		p.errs = append(p.errs, fmt.Errorf("%s: unknown level %q", key, v))
		return def
	}
}
