package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

var validate = validator.New()

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port           string `validate:"required,numeric"`
	Env            string `validate:"oneof=development production test"`
	AllowedOrigins string
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level string `validate:"oneof=debug info warn error"`
}

// AIConfig holds the OpenAI settings. An empty APIKey disables the live analyst.
type AIConfig struct {
	APIKey string
	Model  string `validate:"required"`
}

// AuthConfig holds the JWT secret guarding the AI routes.
// An empty secret leaves those routes open.
type AuthConfig struct {
	JWTSecret string `validate:"omitempty,min=16"`
}

// RedisConfig holds the insights cache connection. An empty Addr selects the
// in-process cache.
type RedisConfig struct {
	Addr     string `validate:"omitempty,hostname_port"`
	Password string
	DB       int `validate:"gte=0,lte=15"`
}

// GeneratorConfig controls dataset generation. A nil Seed draws a random one.
type GeneratorConfig struct {
	Seed *uint64
}

// Config holds all configuration for the dashboard binaries.
type Config struct {
	ServiceName   string `validate:"required"`
	Server        ServerConfig
	Log           LogConfig
	AI            AIConfig
	Auth          AuthConfig
	Redis         RedisConfig
	Generator     GeneratorConfig
	InsightsTTL   time.Duration `validate:"gt=0"`
	DatabaseURL   string
	MetricsPrefix string `validate:"required,excludesall=-. "`
}

// Load reads configuration from the environment. Callers load .env first
// with godotenv so file values and real env vars are treated the same.
func Load(serviceName string) (*Config, error) {
	seed, err := getEnvAsSeed("GENERATOR_SEED")
	if err != nil {
		return nil, err
	}
	ttl, err := getEnvAsDuration("INSIGHTS_TTL", 10*time.Minute)
	if err != nil {
		return nil, err
	}
	redisDB, err := getEnvAsInt("REDIS_DB", 0)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		ServiceName: serviceName,
		Server: ServerConfig{
			Port:           getEnv("SERVER_PORT", "8080"),
			Env:            getEnv("APP_ENV", "development"),
			AllowedOrigins: os.Getenv("ALLOWED_ORIGINS"),
		},
		Log: LogConfig{
			Level: strings.ToLower(getEnv("LOG_LEVEL", "info")),
		},
		AI: AIConfig{
			APIKey: os.Getenv("OPENAI_API_KEY"),
			Model:  getEnv("OPENAI_MODEL", "gpt-4o"),
		},
		Auth: AuthConfig{
			JWTSecret: os.Getenv("DASHBOARD_JWT_SECRET"),
		},
		Redis: RedisConfig{
			Addr:     os.Getenv("REDIS_ADDR"),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       redisDB,
		},
		Generator:     GeneratorConfig{Seed: seed},
		InsightsTTL:   ttl,
		DatabaseURL:   os.Getenv("DATABASE_URL"),
		MetricsPrefix: getEnv("METRICS_PREFIX", "dashboard"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks struct tags and reports every failing field in one error.
func (c *Config) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("invalid config: %w", err)
	}
	fields := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, fmt.Sprintf("%s (%s=%v)", fe.Namespace(), fe.Tag(), fe.Value()))
	}
	return fmt.Errorf("invalid config: %s", strings.Join(fields, ", "))
}

// AIEnabled reports whether an OpenAI key is configured.
func (c *Config) AIEnabled() bool {
	return c.AI.APIKey != ""
}

// LogFields returns the non-secret settings for a startup log line.
func (c *Config) LogFields() []zap.Field {
	return []zap.Field{
		zap.String("service", c.ServiceName),
		zap.String("environment", c.Server.Env),
		zap.String("server_port", c.Server.Port),
		zap.String("openai_model", c.AI.Model),
		zap.Bool("ai_enabled", c.AIEnabled()),
		zap.Bool("auth_enabled", c.Auth.JWTSecret != ""),
		zap.String("redis_addr", c.Redis.Addr),
		zap.Duration("insights_ttl", c.InsightsTTL),
		zap.Bool("database_configured", c.DatabaseURL != ""),
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return n, nil
}

func getEnvAsDuration(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return d, nil
}

func getEnvAsSeed(key string) (*uint64, error) {
	v := os.Getenv(key)
	if v == "" {
		return nil, nil
	}
	n, err := strconv.ParseUint(v, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", key, err)
	}
	return &n, nil
}
