package config

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

const (
	ProviderOpenAI = "openai"
	ProviderGemini = "gemini"

	EnvDevelopment = "development"
)

type Config struct {
	AppEnv     string `env:"APP_ENV" envDefault:"development"`
	ServerAddr string `env:"SERVER_ADDR" envDefault:":8080"`
	FEBaseURL  string `env:"FE_BASE_URL" envDefault:"http://localhost:3000"`
	LogLevel   string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat  string `env:"LOG_FORMAT" envDefault:"json"`

	DatabaseURL string `env:"DATABASE_URL"`
	RedisURL    string `env:"REDIS_URL"`

	GenerationProvider string        `env:"GENERATION_PROVIDER" envDefault:"openai"`
	OpenAIAPIKey       string        `env:"OPENAI_API_KEY"`
	OpenAIBaseURL      string        `env:"OPENAI_BASE_URL" envDefault:"https://api.openai.com/v1"`
	OpenAIModel        string        `env:"OPENAI_MODEL" envDefault:"gpt-3.5-turbo"`
	OpenAITimeout      time.Duration `env:"OPENAI_TIMEOUT" envDefault:"60s"`
	GeminiAPIKey       string        `env:"GEMINI_API_KEY"`
	GeminiModel        string        `env:"GEMINI_MODEL" envDefault:"gemini-2.0-flash"`

	JWKSURL             string        `env:"JWKS_URL"`
	JWTAudience         string        `env:"JWT_AUDIENCE"`
	SessionSecret       string        `env:"SESSION_SECRET"`
	SessionCookieName   string        `env:"SESSION_COOKIE_NAME" envDefault:"teachermail_session"`
	SessionTokenCookie  string        `env:"SESSION_TOKEN_COOKIE" envDefault:"session_token"`
	SessionTokenTTL     time.Duration `env:"SESSION_TOKEN_TTL" envDefault:"720h"`
	DefaultTokens       int           `env:"DEFAULT_TOKENS" envDefault:"5"`
	ShutdownGracePeriod time.Duration `env:"SHUTDOWN_GRACE_PERIOD" envDefault:"30s"`
}

func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		slog.Info("No .env file found, using environment variables")
	}

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// IsDevelopment reports whether the in-memory user store may stand in for postgres.
func (c *Config) IsDevelopment() bool {
	return c.AppEnv == EnvDevelopment
}

func validate(cfg *Config) error {
	if cfg.DatabaseURL == "" && !cfg.IsDevelopment() {
		return errors.New("DATABASE_URL is required outside development")
	}

	switch cfg.GenerationProvider {
	case ProviderOpenAI:
		if cfg.OpenAIAPIKey == "" {
			return errors.New("OPENAI_API_KEY is required for the openai provider")
		}
	case ProviderGemini:
		if cfg.GeminiAPIKey == "" {
			return errors.New("GEMINI_API_KEY is required for the gemini provider")
		}
	default:
		return fmt.Errorf("unknown GENERATION_PROVIDER %q", cfg.GenerationProvider)
	}

	if cfg.JWKSURL == "" && cfg.SessionSecret == "" && cfg.RedisURL == "" {
		return errors.New("at least one of JWKS_URL, SESSION_SECRET or REDIS_URL is required")
	}

	if cfg.SessionSecret != "" && len(cfg.SessionSecret) < 32 {
		return errors.New("SESSION_SECRET must be at least 32 characters")
	}

	if cfg.DefaultTokens < 0 {
		return errors.New("DEFAULT_TOKENS must not be negative")
	}

	return nil
}
