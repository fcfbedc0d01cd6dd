package main

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/taskweave/taskweave/internal/api"
	"github.com/taskweave/taskweave/internal/auth"
	"github.com/taskweave/taskweave/internal/config"
	"github.com/taskweave/taskweave/internal/database"
	"github.com/taskweave/taskweave/internal/genai"
	"github.com/taskweave/taskweave/internal/middleware"
	inats "github.com/taskweave/taskweave/internal/nats"
	"github.com/taskweave/taskweave/internal/projects"
	iredis "github.com/taskweave/taskweave/internal/redis"
	"github.com/taskweave/taskweave/internal/server"
	"github.com/taskweave/taskweave/internal/usage"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("loading config", "error", err)
		os.Exit(1)
	}

	setupLogger(cfg.Log)

	if err := cfg.Validate(); err != nil {
		slog.Error("validating config", "error", err)
		os.Exit(1)
	}

	ctx := context.Background()

	// PostgreSQL
	pool, err := database.Connect(ctx, cfg.DB)
	if err != nil {
		slog.Error("connecting to postgres", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	if err := database.Migrate(cfg.DB.DSN(), cfg.DB.MigrationsPath); err != nil {
		slog.Error("migrating schema", "error", err)
		os.Exit(1)
	}

	// Redis
	redisClient, err := iredis.Connect(ctx, cfg.Redis)
	if err != nil {
		slog.Error("connecting to redis", "error", err)
		os.Exit(1)
	}
	defer redisClient.Close()

	// NATS (optional)
	var natsClient *inats.Client
	if cfg.NATS.URL != "" {
		natsClient, err = inats.NewClient(ctx, cfg.NATS)
		if err != nil {
			slog.Error("connecting to nats", "error", err)
			os.Exit(1)
		}
		defer natsClient.Close()
	}
	publisher := inats.NewPublisher(natsClient)

	// Auth
	jwtManager := auth.NewJWTManager(cfg.JWT.AccessSecret, cfg.JWT.AccessExpiry)

	// Usage ledger
	usageRepo := usage.NewRepository(pool)
	usageCache := usage.NewCache(redisClient, cfg.Quota.CacheTTL)
	ledger := usage.NewLedger(usageRepo, usageCache, cfg.Quota)

	// Projects
	projectRepo := projects.NewRepository(pool)
	projectSvc := projects.NewService(projectRepo)

	// Generation pipeline
	inputValidator := genai.NewInputValidator(cfg.Generation)
	modelClient := genai.NewModelClient(cfg.AI)
	genSvc := genai.NewService(inputValidator, ledger, modelClient, projectSvc, publisher)
	genHandler := genai.NewHandler(genSvc)

	// Router
	generateLimiter := middleware.NewRateLimiter(redisClient, "rl:generate:", 5, time.Minute)
	router := api.NewRouter(pool, natsClient, api.RouterConfig{
		CORSAllowedOrigins:  cfg.Server.CORSOrigins,
		GenerateRateLimiter: generateLimiter.Middleware,
	}, api.HandlerSet{
		GenerateProject:    genHandler.Generate,
		GetGenerationUsage: genHandler.Usage,
		AuthMiddleware:     auth.Middleware(jwtManager),
	})

	// Start server
	srv := server.New(cfg.Server, router)
	if err := srv.Run(); err != nil {
		slog.Error("server error", "error", err)
		os.Exit(1)
	}
}

func setupLogger(cfg config.LogConfig) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler = slog.NewTextHandler(os.Stdout, opts)
	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	}
	slog.SetDefault(slog.New(handler))
}
