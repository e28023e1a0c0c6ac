// Package config loads server configuration from the environment.
package config

import (
	"os"

	"github.com/joho/godotenv"
)

// Config holds all server settings.
type Config struct {
	Port      string
	DBPath    string
	JWTSecret string
	BaseURL   string
	DevMode   bool

	// Directory where uploaded property images are stored.
	UploadDir string

	Mpesa MpesaConfig
	SMTP  SMTPConfig
}

// MpesaConfig holds Daraja API credentials for STK push.
type MpesaConfig struct {
	ConsumerKey    string
	ConsumerSecret string
	Shortcode      string
	Passkey        string
	CallbackURL    string
	BaseURL        string
}

// IsConfigured returns true if STK push credentials are present.
func (c MpesaConfig) IsConfigured() bool {
	return c.ConsumerKey != "" && c.ConsumerSecret != "" && c.Shortcode != ""
}

// SMTPConfig holds settings for payment-confirmation mail.
type SMTPConfig struct {
	Host string
	Port string
	User string
	Pass string
	From string
}

// IsConfigured returns true if SMTP settings are present.
func (c SMTPConfig) IsConfigured() bool {
	return c.Host != "" && c.From != ""
}

// Load reads configuration from a .env file (if present) and the environment.
func Load() Config {
	_ = godotenv.Load()

	return Config{
		Port:      envOrDefault("NYUMBA_PORT", "8080"),
		DBPath:    os.Getenv("NYUMBA_DB"),
		JWTSecret: envOrDefault("NYUMBA_JWT_SECRET", "dev-secret-key"),
		BaseURL:   envOrDefault("NYUMBA_BASE_URL", "http://localhost:8080"),
		DevMode:   os.Getenv("NYUMBA_DEV_MODE") == "true",
		UploadDir: envOrDefault("NYUMBA_UPLOAD_DIR", "uploads"),
		Mpesa: MpesaConfig{
			ConsumerKey:    os.Getenv("MPESA_CONSUMER_KEY"),
			ConsumerSecret: os.Getenv("MPESA_CONSUMER_SECRET"),
			Shortcode:      os.Getenv("MPESA_SHORTCODE"),
			Passkey:        os.Getenv("MPESA_PASSKEY"),
			CallbackURL:    os.Getenv("MPESA_CALLBACK_URL"),
			BaseURL:        envOrDefault("MPESA_BASE_URL", "https://sandbox.safaricom.co.ke"),
		},
		SMTP: SMTPConfig{
			Host: os.Getenv("NYUMBA_SMTP_HOST"),
			Port: envOrDefault("NYUMBA_SMTP_PORT", "587"),
			User: os.Getenv("NYUMBA_SMTP_USER"),
			Pass: os.Getenv("NYUMBA_SMTP_PASS"),
			From: os.Getenv("NYUMBA_SMTP_FROM"),
		},
	}
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
