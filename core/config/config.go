package config

import (
	"fmt"
	"strings"
)

// Config holds all application configuration in a structured way. It is loaded
// once at startup and treated as immutable afterwards; provider adapters get
// their credential sections injected at construction and never read the
// process environment themselves.
type Config struct {
	App      AppConfig
	Database DatabaseConfig
	Provider ProviderConfig
	Twilio   TwilioConfig
	Meta     MetaConfig
}

type AppConfig struct {
	Version            string
	Port               string
	Debug              bool
	BasePath           string
	CorsAllowedOrigins []string
}

type DatabaseConfig struct {
	Driver   string
	Host     string
	Port     int
	User     string
	Password string
	Name     string // file path for SQLite, database name for Postgres
}

// ProviderConfig selects which upstream provider outbound sends go through.
// Both webhook endpoints stay mounted regardless, so a provider switch never
// strands in-flight status callbacks from the previous one.
type ProviderConfig struct {
	Active string // "twilio" or "meta"
}

type TwilioConfig struct {
	AccountSID     string
	AuthToken      string
	WhatsappNumber string
	TemplateSID    string
	BaseURL        string
}

type MetaConfig struct {
	PhoneNumberID string
	AccessToken   string
	APIVersion    string
	VerifyToken   string
	BaseURL       string
}

// Global provides access to the loaded configuration (set once by cmd).
var Global *Config

// LoadConfig loads configuration from environment variables or defaults.
// Secrets have no defaults: an unset credential leaves its provider
// unconfigured and sends through it short-circuit to a soft failure.
func LoadConfig() (*Config, error) {
	cfg := &Config{
		App: AppConfig{
			Version:            "v1.2.0",
			Port:               getEnv("APP_PORT", "3000"),
			Debug:              getEnvBool("APP_DEBUG", false),
			BasePath:           getEnv("APP_BASE_PATH", ""),
			CorsAllowedOrigins: getEnvList("APP_CORS_ALLOWED_ORIGINS", []string{"http://localhost:3000", "http://localhost:5173"}),
		},
		Database: DatabaseConfig{
			Driver:   getEnv("DB_DRIVER", "sqlite"),
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnvInt("DB_PORT", 5432),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", ""),
			Name:     getEnv("DB_NAME", "storages/wadesk.db"),
		},
		Provider: ProviderConfig{
			Active: strings.ToLower(getEnv("PROVIDER", "twilio")),
		},
		Twilio: TwilioConfig{
			AccountSID:     getEnv("TWILIO_ACCOUNT_SID", ""),
			AuthToken:      getEnv("TWILIO_AUTH_TOKEN", ""),
			WhatsappNumber: getEnv("TWILIO_WHATSAPP_NUMBER", ""),
			TemplateSID:    getEnv("TWILIO_TEMPLATE_SID", ""),
			BaseURL:        getEnv("TWILIO_BASE_URL", "https://api.twilio.com"),
		},
		Meta: MetaConfig{
			PhoneNumberID: getEnv("META_PHONE_NUMBER_ID", ""),
			AccessToken:   getEnv("META_ACCESS_TOKEN", ""),
			APIVersion:    getEnv("META_API_VERSION", "v21.0"),
			VerifyToken:   getEnv("META_VERIFY_TOKEN", ""),
			BaseURL:       getEnv("META_BASE_URL", "https://graph.facebook.com"),
		},
	}

	switch cfg.Provider.Active {
	case "twilio", "meta":
	default:
		return nil, fmt.Errorf("unsupported PROVIDER value: %q (expected twilio or meta)", cfg.Provider.Active)
	}

	return cfg, nil
}
