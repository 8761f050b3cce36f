package config

import (
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port    string
	GinMode string

	MongoURI string
	DBName   string

	JWTSecret string

	TxTimeout     time.Duration
	NotifyTimeout time.Duration

	SMTPHost        string
	SMTPPort        int
	SMTPUser        string
	SMTPPass        string
	FromEmail       string
	FromName        string
	OrderRecipients []string

	BreakerMaxFailures int
	BreakerOpen        time.Duration
}

// Load reads an optional .env file and then the process environment.
func Load() Config {
	if err := godotenv.Load(); err != nil {
		log.Println(".env not loaded:", err)
	}
	return FromEnv()
}

func FromEnv() Config {
	return Config{
		Port:               getEnvOrDefault("PORT", "8080"),
		GinMode:            getEnvOrDefault("GIN_MODE", "release"),
		MongoURI:           getEnvOrDefault("MONGO_URI", ""),
		DBName:             getEnvOrDefault("DB_NAME", "vegorder"),
		JWTSecret:          getEnvOrDefault("JWT_SECRET", ""),
		TxTimeout:          getDurationEnv("TX_TIMEOUT_SECONDS", 10, time.Second),
		NotifyTimeout:      getDurationEnv("NOTIFY_TIMEOUT_SECONDS", 10, time.Second),
		SMTPHost:           getEnvOrDefault("SMTP_HOST", ""),
		SMTPPort:           getIntEnv("SMTP_PORT", 587),
		SMTPUser:           getEnvOrDefault("SMTP_USER", ""),
		SMTPPass:           getEnvOrDefault("SMTP_PASS", ""),
		FromEmail:          getEnvOrDefault("FROM_EMAIL", ""),
		FromName:           getEnvOrDefault("FROM_NAME", "Vegetable Orders"),
		OrderRecipients:    getListEnv("ORDER_EMAIL_RECIPIENTS"),
		BreakerMaxFailures: getIntEnv("BREAKER_MAX_FAILURES", 5),
		BreakerOpen:        getDurationEnv("BREAKER_OPEN_SECONDS", 60, time.Second),
	}
}

// Validate reports every missing required setting at once. Mail settings
// are optional: without them notifications fail softly.
func (c Config) Validate() error {
	var missing []string
	if c.MongoURI == "" {
		missing = append(missing, "MONGO_URI")
	}
	if c.JWTSecret == "" {
		missing = append(missing, "JWT_SECRET")
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required environment: %s", strings.Join(missing, ", "))
	}
	if c.SMTPPort <= 0 || c.SMTPPort > 65535 {
		return errors.New("SMTP_PORT must be between 1 and 65535")
	}
	if c.BreakerMaxFailures < 1 {
		return errors.New("BREAKER_MAX_FAILURES must be at least 1")
	}
	return nil
}

func (c Config) MailConfigured() bool {
	return c.SMTPHost != "" && c.FromEmail != "" && len(c.OrderRecipients) > 0
}
