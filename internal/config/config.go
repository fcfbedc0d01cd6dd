package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/dotenv"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

type Config struct {
	Server     ServerConfig
	DB         DBConfig
	Redis      RedisConfig
	JWT        JWTConfig
	AI         AIConfig
	Quota      QuotaConfig
	Generation GenerationConfig
	NATS       NATSConfig
	Log        LogConfig
}

type ServerConfig struct {
	Host        string
	Port        int
	CORSOrigins []string
}

type DBConfig struct {
	Host           string
	Port           int
	User           string
	Password       string
	Name           string
	SSLMode        string
	MaxConns       int32
	MigrationsPath string
}

func (c DBConfig) DSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.User, c.Password, c.Host, c.Port, c.Name, c.SSLMode)
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

func (c RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

type JWTConfig struct {
	AccessSecret string
	AccessExpiry time.Duration
}

// AIConfig holds the generative model endpoint settings. An empty APIKey is
// tolerated at startup; the generation endpoint fails fast with an
// "unconfigured" error instead of making a network call.
type AIConfig struct {
	APIKey  string
	BaseURL string
	Model   string
	Timeout time.Duration
}

// QuotaConfig bounds how often a user may invoke the generative model.
type QuotaConfig struct {
	WeeklyLimit int
	Window      time.Duration
	CacheTTL    time.Duration
}

// GenerationConfig bounds the user-supplied generation input.
type GenerationConfig struct {
	MinDescriptionLen int
	MaxDescriptionLen int
	MinTasks          int
	MaxTasks          int
}

type NATSConfig struct {
	URL string
}

type LogConfig struct {
	Level  string
	Format string
}

func Load() (*Config, error) {
	k := koanf.New(".")

	// Load .env file if it exists (ignore error if missing)
	_ = k.Load(file.Provider(".env"), dotenv.Parser())

	// Load environment variables (override .env)
	err := k.Load(env.Provider("", ".", func(s string) string {
		return strings.ToLower(strings.ReplaceAll(s, "_", "."))
	}), nil)
	if err != nil {
		return nil, fmt.Errorf("loading env vars: %w", err)
	}

	cfg := &Config{
		Server: ServerConfig{
			Host:        k.String("server.host"),
			Port:        k.Int("server.port"),
			CORSOrigins: splitList(k.String("server.cors.origins")),
		},
		DB: DBConfig{
			Host:           k.String("db.host"),
			Port:           k.Int("db.port"),
			User:           k.String("db.user"),
			Password:       k.String("db.password"),
			Name:           k.String("db.name"),
			SSLMode:        k.String("db.sslmode"),
			MaxConns:       int32(k.Int("db.max.conns")),
			MigrationsPath: k.String("db.migrations.path"),
		},
		Redis: RedisConfig{
			Host:     k.String("redis.host"),
			Port:     k.Int("redis.port"),
			Password: k.String("redis.password"),
			DB:       k.Int("redis.db"),
		},
		JWT: JWTConfig{
			AccessSecret: k.String("jwt.access.secret"),
		},
		AI: AIConfig{
			APIKey:  k.String("ai.api.key"),
			BaseURL: k.String("ai.base.url"),
			Model:   k.String("ai.model"),
		},
		Quota: QuotaConfig{
			WeeklyLimit: k.Int("quota.weekly.limit"),
		},
		Generation: GenerationConfig{
			MinDescriptionLen: k.Int("generation.min.description.len"),
			MaxDescriptionLen: k.Int("generation.max.description.len"),
			MinTasks:          k.Int("generation.min.tasks"),
			MaxTasks:          k.Int("generation.max.tasks"),
		},
		NATS: NATSConfig{
			URL: k.String("nats.url"),
		},
		Log: LogConfig{
			Level:  k.String("log.level"),
			Format: k.String("log.format"),
		},
	}

	// Apply defaults
	if cfg.Server.Host == "" {
		cfg.Server.Host = "0.0.0.0"
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.DB.Host == "" {
		cfg.DB.Host = "localhost"
	}
	if cfg.DB.Port == 0 {
		cfg.DB.Port = 5432
	}
	if cfg.DB.User == "" {
		cfg.DB.User = "taskweave"
	}
	if cfg.DB.Name == "" {
		cfg.DB.Name = "taskweave"
	}
	if cfg.DB.SSLMode == "" {
		cfg.DB.SSLMode = "disable"
	}
	if cfg.DB.MaxConns == 0 {
		cfg.DB.MaxConns = 25
	}
	if cfg.DB.MigrationsPath == "" {
		cfg.DB.MigrationsPath = "migrations"
	}
	if cfg.Redis.Host == "" {
		cfg.Redis.Host = "localhost"
	}
	if cfg.Redis.Port == 0 {
		cfg.Redis.Port = 6379
	}
	if cfg.AI.BaseURL == "" {
		cfg.AI.BaseURL = "https://api.openai.com/v1/chat/completions"
	}
	if cfg.AI.Model == "" {
		cfg.AI.Model = "gpt-4o-mini"
	}
	if cfg.Quota.WeeklyLimit == 0 {
		cfg.Quota.WeeklyLimit = 10
	}
	if cfg.Generation.MinDescriptionLen == 0 {
		cfg.Generation.MinDescriptionLen = 10
	}
	if cfg.Generation.MaxDescriptionLen == 0 {
		cfg.Generation.MaxDescriptionLen = 5000
	}
	if cfg.Generation.MinTasks == 0 {
		cfg.Generation.MinTasks = 1
	}
	if cfg.Generation.MaxTasks == 0 {
		cfg.Generation.MaxTasks = 20
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "text"
	}

	// Parse durations
	accessExpStr := k.String("jwt.access.expiry")
	if accessExpStr == "" {
		accessExpStr = "15m"
	}
	cfg.JWT.AccessExpiry, err = time.ParseDuration(accessExpStr)
	if err != nil {
		return nil, fmt.Errorf("parsing jwt access expiry: %w", err)
	}

	aiTimeoutStr := k.String("ai.timeout")
	if aiTimeoutStr == "" {
		aiTimeoutStr = "60s"
	}
	cfg.AI.Timeout, err = time.ParseDuration(aiTimeoutStr)
	if err != nil {
		return nil, fmt.Errorf("parsing ai timeout: %w", err)
	}

	windowStr := k.String("quota.window")
	if windowStr == "" {
		windowStr = "168h"
	}
	cfg.Quota.Window, err = time.ParseDuration(windowStr)
	if err != nil {
		return nil, fmt.Errorf("parsing quota window: %w", err)
	}

	cacheTTLStr := k.String("quota.cache.ttl")
	if cacheTTLStr == "" {
		cacheTTLStr = "10m"
	}
	cfg.Quota.CacheTTL, err = time.ParseDuration(cacheTTLStr)
	if err != nil {
		return nil, fmt.Errorf("parsing quota cache ttl: %w", err)
	}

	return cfg, nil
}

func splitList(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
