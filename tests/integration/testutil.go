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
	"sync"
	"testing"
	"time"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/garagem-ai/garagem/internal/api"
	"github.com/garagem-ai/garagem/internal/auth"
	"github.com/garagem-ai/garagem/internal/config"
	"github.com/garagem-ai/garagem/internal/conversation"
	"github.com/garagem-ai/garagem/internal/extractor"
	"github.com/garagem-ai/garagem/internal/guardrails"
	"github.com/garagem-ai/garagem/internal/inventory"
	"github.com/garagem-ai/garagem/internal/lead"
	inats "github.com/garagem-ai/garagem/internal/nats"
	"github.com/garagem-ai/garagem/internal/privacy"
	"github.com/garagem-ai/garagem/internal/provider"
	"github.com/garagem-ai/garagem/internal/webhook"
)

const (
	testOperatorUser = "gerente"
	testOperatorPass = "senha-muito-secreta"
)

type TestEnv struct {
	Pool        *pgxpool.Pool
	RedisClient *redis.Client
	Server      *httptest.Server
	Engine      *conversation.Engine
	Vehicles    inventory.Repository
	Bus         *CaptureBus
}

// CaptureBus records everything the pipeline would publish to JetStream, so
// tests can assert on leads, audit events and queued messages without a
// broker container.
type CaptureBus struct {
	mu       sync.Mutex
	Inbound  []inats.InboundMessage
	Outbound []inats.OutboundMessage
	Leads    []inats.LeadEvent
	Audits   []inats.AuditEvent
}

func (b *CaptureBus) PublishInboundMessage(_ context.Context, msg inats.InboundMessage) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.Inbound = append(b.Inbound, msg)
	return nil
}

func (b *CaptureBus) PublishOutboundMessage(_ context.Context, msg inats.OutboundMessage) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.Outbound = append(b.Outbound, msg)
	return nil
}

func (b *CaptureBus) PublishLead(_ context.Context, lead inats.LeadEvent) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.Leads = append(b.Leads, lead)
	return nil
}

func (b *CaptureBus) PublishAuditEvent(_ context.Context, event inats.AuditEvent) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.Audits = append(b.Audits, event)
	return nil
}

// stubChat keeps provider calls offline: free-form questions get a canned
// reply, extraction calls get an empty delta.
type stubChat struct{}

func (stubChat) ChatCompletion(_ context.Context, _ []provider.Message, opts provider.Options) (string, error) {
	if opts.JSONOutput {
		return "{}", nil
	}
	return "Posso ajudar com mais alguma coisa sobre os veículos?", nil
}

var (
	testEnv  *TestEnv
	teardown []func()
)

// TestMain builds one shared environment for the whole package. The
// containers come up once; individual tests use distinct identities to stay
// isolated from each other.
func TestMain(m *testing.M) {
	if err := buildTestEnv(); err != nil {
		log.Fatalf("setting up integration environment: %v", err)
	}
	code := m.Run()
	for i := len(teardown) - 1; i >= 0; i-- {
		teardown[i]()
	}
	os.Exit(code)
}

func SetupTestEnv(t *testing.T) *TestEnv {
	t.Helper()
	return testEnv
}

func buildTestEnv() error {
	ctx := context.Background()

	// Start PostgreSQL container (pgvector build, the schema needs the extension)
	pgContainer, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "pgvector/pgvector:0.8.1-pg16",
			ExposedPorts: []string{"5432/tcp"},
			Env: map[string]string{
				"POSTGRES_USER":     "test",
				"POSTGRES_PASSWORD": "test",
				"POSTGRES_DB":       "garagem_test",
			},
			WaitingFor: wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60 * time.Second),
		},
		Started: true,
	})
	if err != nil {
		return fmt.Errorf("starting postgres container: %w", err)
	}
	teardown = append(teardown, func() { pgContainer.Terminate(ctx) })

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
		return fmt.Errorf("starting redis container: %w", err)
	}
	teardown = append(teardown, func() { redisContainer.Terminate(ctx) })

	redisHost, _ := redisContainer.Host(ctx)
	redisPort, _ := redisContainer.MappedPort(ctx, "6379")

	// Connect to PostgreSQL
	dsn := fmt.Sprintf("postgres://test:test@%s:%s/garagem_test?sslmode=disable", pgHost, pgPort.Port())
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return fmt.Errorf("connecting to postgres: %w", err)
	}
	teardown = append(teardown, pool.Close)

	// Run migrations
	m, err := migrate.New(fmt.Sprintf("file://%s", getMigrationsPath()), dsn)
	if err != nil {
		return fmt.Errorf("creating migrator: %w", err)
	}
	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		return fmt.Errorf("running migrations: %w", err)
	}

	// Connect to Redis
	redisClient := redis.NewClient(&redis.Options{
		Addr: fmt.Sprintf("%s:%s", redisHost, redisPort.Port()),
	})
	teardown = append(teardown, func() { redisClient.Close() })

	bus := &CaptureBus{}

	// Conversation pipeline against the real stores
	store := conversation.NewPostgresStore(pool)
	transcript := conversation.NewRedisTranscript(redisClient, 20, time.Hour)
	vehicleRepo := inventory.NewRepository(pool)
	leadRepo := lead.NewRepository(pool)
	guard := guardrails.NewService(
		guardrails.NewRateLimiter(1000, time.Minute),
		config.GuardrailsConfig{RateLimitMax: 1000, RateLimitWindow: time.Minute, MaxOutputChars: 4096},
	)
	chat := stubChat{}
	engine := conversation.NewEngine(conversation.EngineDeps{
		Store:      store,
		Transcript: transcript,
		Search:     vehicleRepo,
		Leads:      lead.NewSink(leadRepo, bus),
		Privacy:    privacy.NewService(store, transcript, leadRepo, bus),
		Guard:      guard,
		Router:     chat,
		Extractor:  extractor.New(chat),
	}, config.PipelineConfig{
		ErrorCeiling:      3,
		LoopCeiling:       5,
		InterestThreshold: 0.7,
		TranscriptMaxMsgs: 20,
	})

	// HTTP API with the single operator account
	hash, err := auth.HashPassword(testOperatorPass)
	if err != nil {
		return fmt.Errorf("hashing operator password: %w", err)
	}
	jwtManager := auth.NewJWTManager("test-jwt-secret-32-chars-long!!!!", time.Hour)
	authSvc := auth.NewService(jwtManager, config.OperatorConfig{
		Username:     testOperatorUser,
		PasswordHash: hash,
	})
	authHandler := auth.NewHandler(authSvc)
	webhookHandler := webhook.NewHandler(bus)
	inventoryHandler := inventory.NewHandler(vehicleRepo)
	conversationHandler := conversation.NewHandler(store)
	leadHandler := lead.NewHandler(leadRepo)

	router := api.NewRouter(pool, nil, api.RouterConfig{}, api.HandlerSet{
		WebhookMessage:    webhookHandler.Message,
		OperatorLogin:     authHandler.Login,
		CreateVehicle:     inventoryHandler.Create,
		SearchVehicles:    inventoryHandler.Search,
		GetConversation:   conversationHandler.Get,
		ListLeads:         leadHandler.List,
		AuthMiddleware:    auth.Middleware(authSvc),
		DispatcherHealthy: func() bool { return true },
	})

	server := httptest.NewServer(router)
	teardown = append(teardown, server.Close)

	testEnv = &TestEnv{
		Pool:        pool,
		RedisClient: redisClient,
		Server:      server,
		Engine:      engine,
		Vehicles:    vehicleRepo,
		Bus:         bus,
	}
	return nil
}

func getMigrationsPath() string {
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

func LoginOperator(t *testing.T, env *TestEnv) string {
	t.Helper()
	body := map[string]string{"username": testOperatorUser, "password": testOperatorPass}
	resp := DoRequest(t, env, "POST", "/api/v1/auth/login", body, "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("login failed: status %d", resp.StatusCode)
	}
	result := ParseResponse(t, resp)
	data, _ := result["data"].(map[string]any)
	token, _ := data["access_token"].(string)
	if token == "" {
		t.Fatal("login response missing access_token")
	}
	return token
}

func DoRequest(t *testing.T, env *TestEnv, method, path string, body any, token string) *http.Response {
	t.Helper()

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshaling request body: %v", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, env.Server.URL+path, reader)
	if err != nil {
		t.Fatalf("creating request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("executing request: %v", err)
	}
	return resp
}

func ParseResponse(t *testing.T, resp *http.Response) map[string]any {
	t.Helper()
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("reading response body: %v", err)
	}

	var result map[string]any
	if len(data) > 0 {
		if err := json.Unmarshal(data, &result); err != nil {
			t.Fatalf("parsing response %q: %v", data, err)
		}
	}
	return result
}
