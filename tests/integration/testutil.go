//go:build integration

package integration

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/taskweave/taskweave/internal/api"
	"github.com/taskweave/taskweave/internal/auth"
	"github.com/taskweave/taskweave/internal/config"
	"github.com/taskweave/taskweave/internal/genai"
	"github.com/taskweave/taskweave/internal/projects"
	"github.com/taskweave/taskweave/internal/usage"
)

type TestEnv struct {
	Pool        *pgxpool.Pool
	RedisClient *redis.Client
	Server      *httptest.Server
	JWTManager  *auth.JWTManager
	ModelStub   *ModelStub
}

// ModelStub stands in for the chat-completions endpoint. Reply and Status
// can be swapped between requests to script upstream behavior.
type ModelStub struct {
	srv    *httptest.Server
	Reply  string
	Status int
}

func (m *ModelStub) URL() string { return m.srv.URL }

func newModelStub(t *testing.T) *ModelStub {
	t.Helper()
	stub := &ModelStub{Status: http.StatusOK}
	stub.srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if stub.Status != http.StatusOK {
			w.WriteHeader(stub.Status)
			w.Write([]byte(`{"error":"scripted failure"}`))
			return
		}
		resp := map[string]any{
			"choices": []map[string]any{
				{"message": map[string]string{"content": stub.Reply}},
			},
		}
		json.NewEncoder(w).Encode(resp)
	}))
	t.Cleanup(stub.srv.Close)
	return stub
}

var testEnv *TestEnv

func SetupTestEnv(t *testing.T) *TestEnv {
	t.Helper()
	if testEnv != nil {
		return testEnv
	}

	ctx := context.Background()

	// Start PostgreSQL container
	pgContainer, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "postgres:16-alpine",
			ExposedPorts: []string{"5432/tcp"},
			Env: map[string]string{
				"POSTGRES_USER":     "test",
				"POSTGRES_PASSWORD": "test",
				"POSTGRES_DB":       "taskweave_test",
			},
			WaitingFor: wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60 * time.Second),
		},
		Started: true,
	})
	if err != nil {
		t.Fatalf("starting postgres container: %v", err)
	}
	t.Cleanup(func() { pgContainer.Terminate(ctx) })

	pgHost, _ := pgContainer.Host(ctx)
	pgPort, _ := pgContainer.MappedPort(ctx, "5432")

	// Start Redis container
	redisContainer, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "redis:7-alpine",
			ExposedPorts: []string{"6379/tcp"},
			WaitingFor:   wait.ForLog("Ready to accept connections").WithStartupTimeout(30 * time.Second),
		},
		Started: true,
	})
	if err != nil {
		t.Fatalf("starting redis container: %v", err)
	}
	t.Cleanup(func() { redisContainer.Terminate(ctx) })

	redisHost, _ := redisContainer.Host(ctx)
	redisPort, _ := redisContainer.MappedPort(ctx, "6379")

	// Connect to PostgreSQL
	dsn := fmt.Sprintf("postgres://test:test@%s:%s/taskweave_test?sslmode=disable", pgHost, pgPort.Port())
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		t.Fatalf("connecting to postgres: %v", err)
	}
	t.Cleanup(func() { pool.Close() })

	_, err = pool.Exec(ctx, `CREATE EXTENSION IF NOT EXISTS "uuid-ossp";`)
	if err != nil {
		t.Fatalf("enabling extensions: %v", err)
	}

	// Run migrations
	migrationsPath := getMigrationsPath()
	m, err := migrate.New(
		fmt.Sprintf("file://%s", migrationsPath),
		dsn,
	)
	if err != nil {
		t.Fatalf("creating migrator: %v", err)
	}
	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		t.Fatalf("running migrations: %v", err)
	}

	// Connect to Redis
	redisClient := redis.NewClient(&redis.Options{
		Addr: fmt.Sprintf("%s:%s", redisHost, redisPort.Port()),
	})
	t.Cleanup(func() { redisClient.Close() })

	modelStub := newModelStub(t)

	// Setup services
	quotaCfg := config.QuotaConfig{
		WeeklyLimit: 10,
		Window:      7 * 24 * time.Hour,
		CacheTTL:    10 * time.Minute,
	}
	genCfg := config.GenerationConfig{
		MinDescriptionLen: 10,
		MaxDescriptionLen: 5000,
		MinTasks:          1,
		MaxTasks:          20,
	}
	aiCfg := config.AIConfig{
		APIKey:  "test-key",
		BaseURL: modelStub.URL(),
		Model:   "stub-model",
		Timeout: 10 * time.Second,
	}

	jwtManager := auth.NewJWTManager("test-access-secret-32-chars-long!!", 15*time.Minute)

	usageRepo := usage.NewRepository(pool)
	usageCache := usage.NewCache(redisClient, quotaCfg.CacheTTL)
	ledger := usage.NewLedger(usageRepo, usageCache, quotaCfg)

	projectRepo := projects.NewRepository(pool)
	projectSvc := projects.NewService(projectRepo)

	genSvc := genai.NewService(
		genai.NewInputValidator(genCfg),
		ledger,
		genai.NewModelClient(aiCfg),
		projectSvc,
		nil,
	)
	genHandler := genai.NewHandler(genSvc)

	router := api.NewRouter(pool, nil, api.RouterConfig{}, api.HandlerSet{
		GenerateProject:    genHandler.Generate,
		GetGenerationUsage: genHandler.Usage,
		AuthMiddleware:     auth.Middleware(jwtManager),
	})

	server := httptest.NewServer(router)
	t.Cleanup(func() { server.Close() })

	testEnv = &TestEnv{
		Pool:        pool,
		RedisClient: redisClient,
		Server:      server,
		JWTManager:  jwtManager,
		ModelStub:   modelStub,
	}

	return testEnv
}

func getMigrationsPath() string {
	// Try relative paths from test directory
	paths := []string{
		"../../migrations",
		"../../../migrations",
	}
	for _, p := range paths {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	log.Fatal("migrations directory not found")
	return ""
}

// Helper functions

func TokenFor(t *testing.T, env *TestEnv, userID uuid.UUID) string {
	t.Helper()
	token, err := env.JWTManager.Mint(userID.String(), "user@example.com")
	if err != nil {
		t.Fatalf("minting token: %v", err)
	}
	return token
}

func DoRequest(t *testing.T, env *TestEnv, method, path string, body any, token string) *http.Response {
	t.Helper()
	var bodyReader io.Reader
	if body != nil {
		b, _ := json.Marshal(body)
		bodyReader = bytes.NewReader(b)
	}

	req, err := http.NewRequest(method, env.Server.URL+path, bodyReader)
	if err != nil {
		t.Fatalf("creating request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("doing request: %v", err)
	}
	return resp
}

func ParseResponse(t *testing.T, resp *http.Response) map[string]any {
	t.Helper()
	defer resp.Body.Close()
	var result map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		t.Fatalf("parsing response: %v", err)
	}
	return result
}
