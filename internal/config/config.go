// Package config loads service configuration from a .env file and the
// environment.
package config

import (
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/kirin765/naver-smartstore/internal/models"
)

type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	JWT       JWTConfig
	Argon2    Argon2Config
	Credits   CreditsConfig
	Generator GeneratorConfig
	RateLimit RateLimitConfig
}

type ServerConfig struct {
	Port           string
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	IdleTimeout    time.Duration
	AllowedOrigins []string
}

// DatabaseConfig selects the store. Driver "memory" skips Postgres entirely.
type DatabaseConfig struct {
	Driver          string
	Host            string
	Port            string
	User            string
	Password        string
	Name            string
	SSLMode         string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

func (c RedisConfig) Addr() string {
	return c.Host + ":" + c.Port
}

type JWTConfig struct {
	SecretKey   string
	ExpiryHours int
}

type Argon2Config struct {
	Time       uint32
	Memory     uint32
	Threads    uint8
	KeyLength  uint32
	SaltLength int
}

type CreditsConfig struct {
	SignupGrant    int64
	ReservationTTL time.Duration
	SweepInterval  time.Duration
	Packages       []models.CreditPackage

	// AllowUnpaidPurchase lets /credits/purchase add credits without a
	// payment. Only for local and staging deployments.
	AllowUnpaidPurchase bool
}

type GeneratorConfig struct {
	Provider    string
	BaseURL     string
	APIKey      string
	Model       string
	FullModel   string
	Temperature float64
	Timeout     time.Duration
}

// RateLimitConfig caps generation calls per user. Zero disables the limit.
type RateLimitConfig struct {
	GeneratePerWindow int
	Window            time.Duration
}

var envBindings = map[string]string{
	"server.port":                   "PORT",
	"server.allowed_origins":        "ALLOWED_ORIGINS",
	"database.driver":               "DATABASE_DRIVER",
	"database.host":                 "DATABASE_HOST",
	"database.port":                 "DATABASE_PORT",
	"database.user":                 "DATABASE_USER",
	"database.password":             "DATABASE_PASSWORD",
	"database.name":                 "DATABASE_NAME",
	"database.ssl_mode":             "DATABASE_SSL_MODE",
	"redis.host":                    "REDIS_HOST",
	"redis.port":                    "REDIS_PORT",
	"redis.password":                "REDIS_PASSWORD",
	"redis.db":                      "REDIS_DB",
	"jwt.secret_key":                "JWT_SECRET_KEY",
	"jwt.expiry_hours":              "JWT_EXPIRY_HOURS",
	"argon2.time":                   "ARGON2_TIME",
	"argon2.memory":                 "ARGON2_MEMORY",
	"argon2.threads":                "ARGON2_THREADS",
	"argon2.key_length":             "ARGON2_KEY_LENGTH",
	"argon2.salt_length":            "ARGON2_SALT_LENGTH",
	"credits.signup_grant":          "CREDITS_SIGNUP_GRANT",
	"credits.reservation_ttl":       "CREDITS_RESERVATION_TTL",
	"credits.sweep_interval":        "CREDITS_SWEEP_INTERVAL",
	"credits.allow_unpaid_purchase": "CREDITS_ALLOW_UNPAID_PURCHASE",
	"generator.provider":            "GENERATOR_PROVIDER",
	"generator.base_url":            "OPENAI_BASE_URL",
	"generator.api_key":             "OPENAI_API_KEY",
	"generator.model":               "GENERATOR_MODEL",
	"generator.full_model":          "GENERATOR_FULL_MODEL",
	"generator.temperature":         "GENERATOR_TEMPERATURE",
	"generator.timeout":             "GENERATOR_TIMEOUT",
	"ratelimit.generate_per_window": "RATELIMIT_GENERATE_PER_WINDOW",
	"ratelimit.window":              "RATELIMIT_WINDOW",
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.read_timeout", 15*time.Second)
	// generation calls can take most of a minute
	v.SetDefault("server.write_timeout", 90*time.Second)
	v.SetDefault("server.idle_timeout", 60*time.Second)
	v.SetDefault("server.allowed_origins", "https://*,http://*")

	v.SetDefault("database.driver", "postgres")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", "5432")
	v.SetDefault("database.user", "postgres")
	v.SetDefault("database.password", "password")
	v.SetDefault("database.name", "smartstore")
	v.SetDefault("database.ssl_mode", "disable")
	v.SetDefault("database.max_open_conns", 25)
	v.SetDefault("database.max_idle_conns", 5)
	v.SetDefault("database.conn_max_lifetime", 5*time.Minute)

	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", "6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)

	v.SetDefault("jwt.expiry_hours", 24)

	v.SetDefault("argon2.time", 1)
	v.SetDefault("argon2.memory", 64*1024)
	v.SetDefault("argon2.threads", 4)
	v.SetDefault("argon2.key_length", 32)
	v.SetDefault("argon2.salt_length", 16)

	v.SetDefault("credits.signup_grant", 10)
	v.SetDefault("credits.reservation_ttl", 10*time.Minute)
	v.SetDefault("credits.sweep_interval", time.Minute)
	v.SetDefault("credits.allow_unpaid_purchase", false)

	v.SetDefault("generator.provider", "openai")
	v.SetDefault("generator.base_url", "https://api.openai.com/v1")
	v.SetDefault("generator.model", "gpt-4o-mini")
	v.SetDefault("generator.full_model", "gpt-4o")
	v.SetDefault("generator.temperature", 0.7)
	v.SetDefault("generator.timeout", 60*time.Second)

	v.SetDefault("ratelimit.generate_per_window", 30)
	v.SetDefault("ratelimit.window", time.Minute)
}

// DefaultPackages is the credit catalog used when none is configured.
func DefaultPackages() []models.CreditPackage {
	return []models.CreditPackage{
		{ID: "starter", Name: "스타터", Credits: 50, PriceKRW: 4900, Active: true},
		{ID: "basic", Name: "베이직", Credits: 120, PriceKRW: 9900, Active: true},
		{ID: "pro", Name: "프로", Credits: 400, PriceKRW: 29000, Active: true},
	}
}

// Load reads path (usually ".env") if it exists, then applies environment
// overrides and defaults. A missing file is not an error.
func Load(path string) (*Config, error) {
	v := viper.New()
	if path != "" {
		v.SetConfigFile(path)
	}
	v.AutomaticEnv()
	for key, env := range envBindings {
		if err := v.BindEnv(key, env); err != nil {
			return nil, fmt.Errorf("bind %s: %w", key, err)
		}
	}
	setDefaults(v)

	if path != "" {
		if err := v.ReadInConfig(); err != nil {
			log.Printf("[CONFIG] Config file not found, using defaults: %v", err)
		}
	}

	cfg := &Config{
		Server: ServerConfig{
			Port:           v.GetString("server.port"),
			ReadTimeout:    v.GetDuration("server.read_timeout"),
			WriteTimeout:   v.GetDuration("server.write_timeout"),
			IdleTimeout:    v.GetDuration("server.idle_timeout"),
			AllowedOrigins: splitList(v.GetString("server.allowed_origins")),
		},
		Database: DatabaseConfig{
			Driver:          strings.ToLower(v.GetString("database.driver")),
			Host:            v.GetString("database.host"),
			Port:            v.GetString("database.port"),
			User:            v.GetString("database.user"),
			Password:        v.GetString("database.password"),
			Name:            v.GetString("database.name"),
			SSLMode:         v.GetString("database.ssl_mode"),
			MaxOpenConns:    v.GetInt("database.max_open_conns"),
			MaxIdleConns:    v.GetInt("database.max_idle_conns"),
			ConnMaxLifetime: v.GetDuration("database.conn_max_lifetime"),
		},
		Redis: RedisConfig{
			Host:     v.GetString("redis.host"),
			Port:     v.GetString("redis.port"),
			Password: v.GetString("redis.password"),
			DB:       v.GetInt("redis.db"),
		},
		JWT: JWTConfig{
			SecretKey:   v.GetString("jwt.secret_key"),
			ExpiryHours: v.GetInt("jwt.expiry_hours"),
		},
		Argon2: Argon2Config{
			Time:       v.GetUint32("argon2.time"),
			Memory:     v.GetUint32("argon2.memory"),
			Threads:    uint8(v.GetUint("argon2.threads")),
			KeyLength:  v.GetUint32("argon2.key_length"),
			SaltLength: v.GetInt("argon2.salt_length"),
		},
		Credits: CreditsConfig{
			SignupGrant:    v.GetInt64("credits.signup_grant"),
			ReservationTTL: v.GetDuration("credits.reservation_ttl"),
			SweepInterval:  v.GetDuration("credits.sweep_interval"),

			AllowUnpaidPurchase: v.GetBool("credits.allow_unpaid_purchase"),
		},
		Generator: GeneratorConfig{
			Provider:    strings.ToLower(v.GetString("generator.provider")),
			BaseURL:     strings.TrimRight(v.GetString("generator.base_url"), "/"),
			APIKey:      v.GetString("generator.api_key"),
			Model:       v.GetString("generator.model"),
			FullModel:   v.GetString("generator.full_model"),
			Temperature: v.GetFloat64("generator.temperature"),
			Timeout:     v.GetDuration("generator.timeout"),
		},
		RateLimit: RateLimitConfig{
			GeneratePerWindow: v.GetInt("ratelimit.generate_per_window"),
			Window:            v.GetDuration("ratelimit.window"),
		},
	}

	if v.IsSet("credits.packages") {
		if err := v.UnmarshalKey("credits.packages", &cfg.Credits.Packages); err != nil {
			return nil, fmt.Errorf("parse credits.packages: %w", err)
		}
	} else {
		cfg.Credits.Packages = DefaultPackages()
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate reports the first missing or out of range setting.
func (c *Config) Validate() error {
	if c.JWT.SecretKey == "" {
		return errors.New("JWT_SECRET_KEY is required")
	}
	switch c.Database.Driver {
	case "postgres", "memory":
	default:
		return fmt.Errorf("unsupported database driver %q", c.Database.Driver)
	}
	switch c.Generator.Provider {
	case "openai":
		if c.Generator.APIKey == "" {
			return errors.New("OPENAI_API_KEY is required when generator provider is openai")
		}
	case "static":
	default:
		return fmt.Errorf("unsupported generator provider %q", c.Generator.Provider)
	}
	if c.Generator.Timeout <= 0 {
		return errors.New("generator timeout must be positive")
	}
	if c.Credits.SignupGrant < 0 {
		return errors.New("credits signup grant must not be negative")
	}
	if c.Credits.ReservationTTL <= c.Generator.Timeout {
		return fmt.Errorf("credits reservation ttl (%s) must exceed generator timeout (%s)",
			c.Credits.ReservationTTL, c.Generator.Timeout)
	}
	for _, p := range c.Credits.Packages {
		if p.ID == "" || p.Credits <= 0 {
			return fmt.Errorf("invalid credit package %q", p.ID)
		}
	}
	return nil
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
