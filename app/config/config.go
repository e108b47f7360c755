package config

import (
	"os"

	// this will automatically load your .env file:
	_ "github.com/joho/godotenv/autoload"
)

type Config struct {
	Port   string
	DB     PostgresConfig
	Gemini GeminiConfig
	Stripe StripeConfig
}

type PostgresConfig struct {
	Username string
	Password string
	URL      string
	Port     string
	Name     string
	SSLMode  string
}

type GeminiConfig struct {
	APIKey string
	Model  string
}

type StripeConfig struct {
	SecretKey         string
	WebhookSecret     string
	PriceIDProMonthly string
	FrontendURL       string
}

func LoadConfig() (*Config, error) {
	cfg := &Config{
		Port: getenvDefault("PORT", "8080"),
		DB: PostgresConfig{
			Username: os.Getenv("POSTGRES_USER"),
			Password: os.Getenv("POSTGRES_PWD"),
			URL:      os.Getenv("POSTGRES_URL"),
			Port:     getenvDefault("POSTGRES_PORT", "5432"),
			Name:     getenvDefault("POSTGRES_DB", "arguewell"),
			SSLMode:  getenvDefault("POSTGRES_SSLMODE", "disable"),
		},
		Gemini: GeminiConfig{
			APIKey: os.Getenv("GEMINI_API_KEY"),
			Model:  getenvDefault("GEMINI_MODEL", "gemini-1.5-flash"),
		},
		Stripe: StripeConfig{
			SecretKey:         os.Getenv("STRIPE_SECRET_KEY"),
			WebhookSecret:     os.Getenv("STRIPE_WEBHOOK_SECRET"),
			PriceIDProMonthly: os.Getenv("STRIPE_PRICE_ID_PRO_MONTHLY"),
			FrontendURL:       os.Getenv("FRONTEND_URL"),
		},
	}

	return cfg, nil
}

func getenvDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
