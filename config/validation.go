package config

import (
	"fmt"
	"strings"
)

// ValidationError represents a configuration validation error
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Validate checks that the configuration meets the requirements for the
// current environment. Development and test run fine on defaults; production
// must supply real database credentials and a session secret.
func Validate(cfg *Config) error {
	var errors []string

	if cfg.ServerPort == "" {
		errors = append(errors, "SERVER_PORT must not be empty")
	}

	if IsProduction() {
		if cfg.DBHost == "" {
			errors = append(errors, "DB_HOST is required in production")
		}
		if cfg.DBPassword == "" {
			errors = append(errors, "DB_PASSWORD is required in production")
		}
		if cfg.SessionSecret == "" || cfg.SessionSecret == "it's a secret" {
			errors = append(errors, "SESSION_SECRET must be set to a real secret in production")
		}
	}

	if len(errors) > 0 {
		return fmt.Errorf("%s", strings.Join(errors, "\n"))
	}

	return nil
}
