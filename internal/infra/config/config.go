package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

// AppConfig holds all configuration for the application.
type AppConfig struct {
	// EndpointAddress is the PDS base address. Scheme normalization happens in
	// the prober, so a bare host is accepted here.
	EndpointAddress string `validate:"required"`
	Handle          string `validate:"required"`
	Password        string `validate:"required"`
	// AccountDID is optional; when empty the DID returned at login is used.
	AccountDID   string
	SchedulePath string `validate:"required"`
	UpdateBanner bool
	CronSpec     string `validate:"required"`
	LogLevel     string
	Environment  string
}

// Load reads configuration from environment variables and .env file (if present).
func Load() (*AppConfig, error) {
	// godotenv.Load will not override variables already set in the environment.
	_ = godotenv.Load()

	cfg := &AppConfig{
		EndpointAddress: os.Getenv("ENDPOINT"),
		Handle:          os.Getenv("HANDLE"),
		Password:        os.Getenv("PASSWORD"),
		AccountDID:      os.Getenv("ACCOUNT_DID"),
		SchedulePath:    os.Getenv("SCHEDULE_PATH"),
	}

	if raw := os.Getenv("UPDATE_BANNER"); raw != "" {
		val, err := strconv.ParseBool(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid UPDATE_BANNER value %q: %w", raw, err)
		}
		cfg.UpdateBanner = val
	}

	cfg.CronSpec = os.Getenv("CRON_SPEC")
	if cfg.CronSpec == "" {
		cfg.CronSpec = "0 * * * *" // Default: top of every hour
	}

	cfg.LogLevel = strings.ToLower(os.Getenv("LOG_LEVEL"))
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}

	cfg.Environment = strings.ToLower(os.Getenv("ENVIRONMENT"))
	if cfg.Environment == "" {
		cfg.Environment = "development"
	}

	if err := validator.New().Struct(cfg); err != nil {
		if errs, ok := err.(validator.ValidationErrors); ok {
			var missing []string
			for _, fe := range errs {
				missing = append(missing, envNameFor(fe.Field()))
			}
			return nil, fmt.Errorf("missing required configuration: %s", strings.Join(missing, ", "))
		}
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

func envNameFor(field string) string {
	switch field {
	case "EndpointAddress":
		return "ENDPOINT"
	case "Handle":
		return "HANDLE"
	case "Password":
		return "PASSWORD"
	case "SchedulePath":
		return "SCHEDULE_PATH"
	case "CronSpec":
		return "CRON_SPEC"
	}
	return field
}
