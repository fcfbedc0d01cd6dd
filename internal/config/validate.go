package config

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"
)

// Validate checks Config for production-critical problems.
// It collects all errors into a single joined error.
func (c *Config) Validate() error {
	var errs []string

	// JWT secret
	if len(c.JWT.AccessSecret) < 32 {
		errs = append(errs, "JWT_ACCESS_SECRET must be at least 32 characters")
	}

	// DB password
	if c.DB.Password == "" {
		errs = append(errs, "DB_PASSWORD is required")
	}

	// Port ranges
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Sprintf("SERVER_PORT must be 1-65535, got %d", c.Server.Port))
	}
	if c.DB.Port < 1 || c.DB.Port > 65535 {
		errs = append(errs, fmt.Sprintf("DB_PORT must be 1-65535, got %d", c.DB.Port))
	}
	if c.Redis.Port < 1 || c.Redis.Port > 65535 {
		errs = append(errs, fmt.Sprintf("REDIS_PORT must be 1-65535, got %d", c.Redis.Port))
	}

	// Quota bounds
	if c.Quota.WeeklyLimit < 1 {
		errs = append(errs, fmt.Sprintf("QUOTA_WEEKLY_LIMIT must be positive, got %d", c.Quota.WeeklyLimit))
	}
	if c.Quota.Window < time.Hour {
		errs = append(errs, fmt.Sprintf("QUOTA_WINDOW must be at least 1h, got %s", c.Quota.Window))
	}

	// Generation input bounds
	if c.Generation.MinDescriptionLen < 1 || c.Generation.MinDescriptionLen > c.Generation.MaxDescriptionLen {
		errs = append(errs, "GENERATION_MIN_DESCRIPTION_LEN must be positive and not exceed the max")
	}
	if c.Generation.MinTasks < 1 || c.Generation.MinTasks > c.Generation.MaxTasks {
		errs = append(errs, "GENERATION_MIN_TASKS must be positive and not exceed the max")
	}

	// AI timeout
	if c.AI.Timeout < time.Second {
		errs = append(errs, fmt.Sprintf("AI_TIMEOUT must be at least 1s, got %s", c.AI.Timeout))
	}

	// Missing provider key: warn only, generation requests fail fast instead
	if c.AI.APIKey == "" {
		slog.Warn("AI_API_KEY is empty, project generation is unavailable")
	}

	if len(errs) > 0 {
		return errors.New("config validation failed:\n  " + strings.Join(errs, "\n  "))
	}
	return nil
}
