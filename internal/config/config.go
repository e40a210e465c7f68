package config

import (
	"log"
	"os"

	"github.com/joho/godotenv"
)

// Config holds application configuration values.
type Config struct {
	BotToken         string
	AdminAPIBaseURL  string
	OTPAPIBaseURL    string
	ServiceAuthToken string
	DeviceName       string
	AppPort          string
	UseMemoryStore   bool
}

// Load reads environment variables and returns a populated Config.
// Secrets have no defaults: missing ones abort startup.
func Load() *Config {
	_ = godotenv.Load()

	cfg := &Config{
		BotToken:         getEnv("BOT_TOKEN", ""),
		AdminAPIBaseURL:  getEnv("ADMIN_API_BASE_URL", "https://bi1.wyzo.shop/api/v1/admin"),
		OTPAPIBaseURL:    getEnv("OTP_API_BASE_URL", "https://bi1.wyzo.shop/api"),
		ServiceAuthToken: getEnv("SERVICE_AUTH_TOKEN", ""),
		DeviceName:       getEnv("DEVICE_NAME", "pc"),
		AppPort:          getEnv("PORT", "8080"),
		UseMemoryStore:   getEnv("USE_MEMORY_STORE", "false") == "true",
	}

	if cfg.BotToken == "" {
		log.Fatal("BOT_TOKEN must be set")
	}

	if cfg.ServiceAuthToken == "" {
		log.Fatal("SERVICE_AUTH_TOKEN must be set")
	}

	return cfg
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}
