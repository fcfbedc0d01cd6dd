package config

import (
	"strings"
	"testing"
	"time"
)

func validConfig() *Config {
	return &Config{
		Server: ServerConfig{Host: "0.0.0.0", Port: 8080},
		DB: DBConfig{
			Host: "localhost", Port: 5432, User: "taskweave",
			Password: "secret", Name: "taskweave", SSLMode: "disable", MaxConns: 25,
		},
		Redis: RedisConfig{Host: "localhost", Port: 6379},
		JWT: JWTConfig{
			AccessSecret: "access-secret-that-is-at-least-32-chars!",
			AccessExpiry: 15 * time.Minute,
		},
		AI: AIConfig{
			APIKey:  "sk-test",
			BaseURL: "https://api.openai.com/v1/chat/completions",
			Model:   "gpt-4o-mini",
			Timeout: 60 * time.Second,
		},
		Quota: QuotaConfig{WeeklyLimit: 10, Window: 168 * time.Hour, CacheTTL: 10 * time.Minute},
		Generation: GenerationConfig{
			MinDescriptionLen: 10, MaxDescriptionLen: 5000,
			MinTasks: 1, MaxTasks: 20,
		},
	}
}

func TestValidate_ValidConfig(t *testing.T) {
	cfg := validConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}
}

func TestValidate_JWTAccessSecretTooShort(t *testing.T) {
	cfg := validConfig()
	cfg.JWT.AccessSecret = "short"
	err := cfg.Validate()
	if err == nil || !strings.Contains(err.Error(), "JWT_ACCESS_SECRET") {
		t.Fatalf("expected JWT_ACCESS_SECRET error, got: %v", err)
	}
}

func TestValidate_DBPasswordRequired(t *testing.T) {
	cfg := validConfig()
	cfg.DB.Password = ""
	err := cfg.Validate()
	if err == nil || !strings.Contains(err.Error(), "DB_PASSWORD") {
		t.Fatalf("expected DB_PASSWORD error, got: %v", err)
	}
}

func TestValidate_InvalidPorts(t *testing.T) {
	cfg := validConfig()
	cfg.Server.Port = 0
	cfg.DB.Port = 99999
	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected port validation errors")
	}
	if !strings.Contains(err.Error(), "SERVER_PORT") {
		t.Errorf("expected SERVER_PORT error in: %v", err)
	}
	if !strings.Contains(err.Error(), "DB_PORT") {
		t.Errorf("expected DB_PORT error in: %v", err)
	}
}

func TestValidate_QuotaBounds(t *testing.T) {
	cfg := validConfig()
	cfg.Quota.WeeklyLimit = 0
	cfg.Quota.Window = time.Minute
	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected quota validation errors")
	}
	if !strings.Contains(err.Error(), "QUOTA_WEEKLY_LIMIT") {
		t.Errorf("expected QUOTA_WEEKLY_LIMIT error in: %v", err)
	}
	if !strings.Contains(err.Error(), "QUOTA_WINDOW") {
		t.Errorf("expected QUOTA_WINDOW error in: %v", err)
	}
}

func TestValidate_GenerationBoundsInverted(t *testing.T) {
	cfg := validConfig()
	cfg.Generation.MinTasks = 30
	err := cfg.Validate()
	if err == nil || !strings.Contains(err.Error(), "GENERATION_MIN_TASKS") {
		t.Fatalf("expected GENERATION_MIN_TASKS error, got: %v", err)
	}
}

func TestValidate_MultipleErrors(t *testing.T) {
	cfg := &Config{
		Server:     ServerConfig{Port: 0},
		DB:         DBConfig{Port: 5432},
		Redis:      RedisConfig{Port: 6379},
		Quota:      QuotaConfig{WeeklyLimit: 10, Window: 168 * time.Hour},
		Generation: GenerationConfig{MinDescriptionLen: 10, MaxDescriptionLen: 5000, MinTasks: 1, MaxTasks: 20},
		AI:         AIConfig{Timeout: time.Minute},
	}
	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected multiple validation errors")
	}
	errStr := err.Error()
	for _, substr := range []string{"JWT_ACCESS_SECRET", "DB_PASSWORD", "SERVER_PORT"} {
		if !strings.Contains(errStr, substr) {
			t.Errorf("expected %q in error: %s", substr, errStr)
		}
	}
}
