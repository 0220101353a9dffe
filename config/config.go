package config

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config holds all settings for the try-on server.
type Config struct {
	Port   string `env:"PORT" envDefault:"8080"`
	Env    string `env:"APP_ENV" envDefault:"development"`
	DBName string `env:"DB_NAME" envDefault:"fitly"`

	MongoURI string `env:"MONGO_URI" envDefault:"mongodb://localhost:27017/"`
	RedisURL string `env:"REDIS_URL"`

	// Browser origins allowed to call the API with the session cookie
	AllowedOrigins []string `env:"ALLOWED_ORIGINS" envSeparator:"," envDefault:"http://localhost:3000"`

	Auth      AuthConfig
	Storage   StorageConfig
	Scrape    ScrapeConfig
	Inference InferenceConfig

	MaxPhotoDimension int `env:"MAX_PHOTO_DIMENSION" envDefault:"1536"`
}

type AuthConfig struct {
	JWTSecret         string `env:"JWT_SECRET"`
	SessionCookieName string `env:"SESSION_COOKIE_NAME" envDefault:"sb-access-token"`
}

type StorageConfig struct {
	Region          string `env:"AWS_REGION" envDefault:"us-east-1"`
	BucketName      string `env:"AWS_BUCKET_NAME"`
	EndpointURL     string `env:"S3_ENDPOINT_URL"`
	AccessKeyID     string `env:"AWS_ACCESS_KEY_ID"`
	SecretAccessKey string `env:"AWS_SECRET_ACCESS_KEY"`
	PublicBaseURL   string `env:"PUBLIC_BASE_URL"`
}

type ScrapeConfig struct {
	CacheTTL     time.Duration `env:"SCRAPE_CACHE_TTL" envDefault:"24h"`
	RatePerHost  float64       `env:"SCRAPE_RATE_PER_HOST" envDefault:"1"`
	Burst        int           `env:"SCRAPE_BURST" envDefault:"2"`
	Renderer     string        `env:"SCRAPE_RENDERER" envDefault:"none"`
	FetchTimeout time.Duration `env:"FETCH_TIMEOUT" envDefault:"30s"`
}

type InferenceConfig struct {
	Provider        string        `env:"INFERENCE_PROVIDER" envDefault:"gradio"`
	TryOnSpaceURL   string        `env:"TRYON_SPACE_URL" envDefault:"https://yisol-idm-vton.hf.space"`
	TryOnEndpoint   string        `env:"TRYON_ENDPOINT" envDefault:"tryon"`
	SegmentSpaceURL string        `env:"SEGMENT_SPACE_URL" envDefault:"https://not-lain-background-removal.hf.space"`
	SegmentEndpoint string        `env:"SEGMENT_ENDPOINT" envDefault:"image"`
	HFToken         string        `env:"HF_TOKEN"`
	GeminiAPIKey    string        `env:"GEMINI_API_KEY"`
	GeminiModel     string        `env:"GEMINI_MODEL" envDefault:"gemini-2.5-flash-image"`
	Timeout         time.Duration `env:"INFERENCE_TIMEOUT" envDefault:"5m"`
}

var validRenderers = map[string]bool{
	"none":     true,
	"chromedp": true,
	"selenium": true,
}

var validProviders = map[string]bool{
	"gradio": true,
	"gemini": true,
}

// LoadConfig loads environment variables (optionally from a .env file) into a validated Config.
func LoadConfig() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		slog.Info("No .env file found, using default values or system environment variables")
	}

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse environment: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if c.Auth.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is required")
	}
	if c.Storage.BucketName == "" {
		return fmt.Errorf("AWS_BUCKET_NAME is required")
	}
	if !validRenderers[c.Scrape.Renderer] {
		return fmt.Errorf("SCRAPE_RENDERER must be one of none, chromedp, selenium; got %q", c.Scrape.Renderer)
	}
	if !validProviders[c.Inference.Provider] {
		return fmt.Errorf("INFERENCE_PROVIDER must be one of gradio, gemini; got %q", c.Inference.Provider)
	}
	if c.Inference.Provider == "gemini" && c.Inference.GeminiAPIKey == "" {
		return fmt.Errorf("GEMINI_API_KEY is required when INFERENCE_PROVIDER is gemini")
	}
	for name, u := range map[string]string{
		"TRYON_SPACE_URL":   c.Inference.TryOnSpaceURL,
		"SEGMENT_SPACE_URL": c.Inference.SegmentSpaceURL,
	} {
		if !strings.HasPrefix(u, "http://") && !strings.HasPrefix(u, "https://") {
			return fmt.Errorf("%s must start with http:// or https://, got %q", name, u)
		}
	}
	for _, o := range c.AllowedOrigins {
		if o == "*" {
			return fmt.Errorf("ALLOWED_ORIGINS must list explicit origins, \"*\" cannot be used with cookies")
		}
	}
	if c.Scrape.RatePerHost <= 0 {
		return fmt.Errorf("SCRAPE_RATE_PER_HOST must be positive, got %v", c.Scrape.RatePerHost)
	}
	if c.MaxPhotoDimension < 0 {
		return fmt.Errorf("MAX_PHOTO_DIMENSION must not be negative, got %d", c.MaxPhotoDimension)
	}
	return nil
}
