package config

import (
	"encoding/json"
	"fmt"
	"os"
	"time"
)

type Config struct {
	Server       ServerConfig         `json:"server"`
	Redis        RedisConfig          `json:"redis"`
	Database     DatabaseConfig       `json:"database"`
	Auth         AuthConfig           `json:"auth"`
	Security     SecurityConfig       `json:"security"`
	RateLimits   map[string]RateLimit `json:"rate_limits"`
	Integrations IntegrationsConfig   `json:"integrations"`
}

type ServerConfig struct {
	Port        string `json:"port"`
	Environment string `json:"environment"`
}

type RedisConfig struct {
	Host     string `json:"host"`
	Port     string `json:"port"`
	Password string `json:"-"`
	DB       int    `json:"db"`
}

func (r RedisConfig) Addr() string {
	return r.Host + ":" + r.Port
}

type DatabaseConfig struct {
	DSN string `json:"-"`
}

type AuthConfig struct {
	JWTSecret   string `json:"-"`
	ExpiryHours int    `json:"expiry_hours"`
}

type SecurityConfig struct {
	AllowedOrigins       []string `json:"allowed_origins"`
	BotBlockMinutes      int      `json:"bot_block_minutes"`
	SuspiciousBlockHours int      `json:"suspicious_block_hours"`
}

func (s SecurityConfig) BotBlockDuration() time.Duration {
	return time.Duration(s.BotBlockMinutes) * time.Minute
}

func (s SecurityConfig) SuspiciousBlockDuration() time.Duration {
	return time.Duration(s.SuspiciousBlockHours) * time.Hour
}

// Per-action fixed-window rate limit rule. WindowMs is milliseconds.
type RateLimit struct {
	MaxRequests int   `json:"max_requests"`
	WindowMs    int64 `json:"window_ms"`
}

func (r RateLimit) Window() time.Duration {
	return time.Duration(r.WindowMs) * time.Millisecond
}

type IntegrationsConfig struct {
	Telegram TelegramConfig `json:"telegram"`
	Webhook  WebhookConfig  `json:"webhook"`
	Email    EmailConfig    `json:"email"`
	Calendar CalendarConfig `json:"calendar"`
	Billing  BillingConfig  `json:"billing"`
}

type TelegramConfig struct {
	BotToken string `json:"-"`
	ChatID   string `json:"chat_id"`
}

type WebhookConfig struct {
	URL    string `json:"url"`
	Secret string `json:"-"`
}

type EmailConfig struct {
	BaseURL string `json:"base_url"`
	APIKey  string `json:"-"`
	From    string `json:"from"`
}

type CalendarConfig struct {
	BaseURL    string `json:"base_url"`
	CalendarID string `json:"calendar_id"`
	Token      string `json:"-"`
}

type BillingConfig struct {
	BaseURL     string `json:"base_url"`
	APIKey      string `json:"-"`
	PaymentLink string `json:"payment_link"`
}

// Loads configuration from a JSON file, with secrets taken from the
// environment so they never live in the config file.
func Load(path string) (*Config, error) {
	file, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	config := defaults()
	if err := json.Unmarshal(file, config); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	config.Database.DSN = os.Getenv("DATABASE_URL")
	config.Redis.Password = os.Getenv("REDIS_PASSWORD")
	config.Auth.JWTSecret = os.Getenv("JWT_SECRET")
	config.Integrations.Telegram.BotToken = os.Getenv("TELEGRAM_BOT_TOKEN")
	config.Integrations.Webhook.Secret = os.Getenv("WEBHOOK_SECRET")
	config.Integrations.Email.APIKey = os.Getenv("EMAIL_API_KEY")
	config.Integrations.Calendar.Token = os.Getenv("CALENDAR_TOKEN")
	config.Integrations.Billing.APIKey = os.Getenv("BILLING_API_KEY")

	if config.Database.DSN == "" {
		return nil, fmt.Errorf("DATABASE_URL is not set")
	}
	if config.Auth.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is not set")
	}

	return config, nil
}

func defaults() *Config {
	return &Config{
		Server: ServerConfig{
			Port:        "8080",
			Environment: "development",
		},
		Redis: RedisConfig{
			Host: "localhost",
			Port: "6379",
		},
		Auth: AuthConfig{
			ExpiryHours: 24,
		},
		Security: SecurityConfig{
			BotBlockMinutes:      60,
			SuspiciousBlockHours: 24,
		},
		RateLimits: DefaultRateLimits(),
	}
}

// Per-action limits applied when the config file does not override them.
// The "default" action covers every route without a dedicated rule.
func DefaultRateLimits() map[string]RateLimit {
	return map[string]RateLimit{
		"quote":           {MaxRequests: 5, WindowMs: 3600000},
		"job-application": {MaxRequests: 3, WindowMs: 86400000},
		"feedback":        {MaxRequests: 5, WindowMs: 3600000},
		"default":         {MaxRequests: 30, WindowMs: 60000},
	}
}
