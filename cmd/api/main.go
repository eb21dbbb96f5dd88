package main

import (
	"context"
	"log/slog"
	"os"
	"sync/atomic"
	"time"

	"github.com/garagem-ai/garagem/internal/api"
	"github.com/garagem-ai/garagem/internal/auth"
	"github.com/garagem-ai/garagem/internal/config"
	"github.com/garagem-ai/garagem/internal/conversation"
	"github.com/garagem-ai/garagem/internal/database"
	"github.com/garagem-ai/garagem/internal/dispatch"
	"github.com/garagem-ai/garagem/internal/extractor"
	"github.com/garagem-ai/garagem/internal/guardrails"
	"github.com/garagem-ai/garagem/internal/inventory"
	"github.com/garagem-ai/garagem/internal/lead"
	"github.com/garagem-ai/garagem/internal/middleware"
	inats "github.com/garagem-ai/garagem/internal/nats"
	"github.com/garagem-ai/garagem/internal/privacy"
	"github.com/garagem-ai/garagem/internal/provider"
	iredis "github.com/garagem-ai/garagem/internal/redis"
	"github.com/garagem-ai/garagem/internal/server"
	"github.com/garagem-ai/garagem/internal/webhook"
	"github.com/garagem-ai/garagem/internal/xmpp"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("loading config", "error", err)
		os.Exit(1)
	}

	setupLogger(cfg.Log)

	ctx := context.Background()

	// PostgreSQL
	if err := database.RunMigrations(cfg.DB.DSN(), "migrations"); err != nil {
		slog.Error("running migrations", "error", err)
		os.Exit(1)
	}
	pool, err := database.NewPostgresPool(ctx, cfg.DB)
	if err != nil {
		slog.Error("connecting to postgres", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	// Redis
	redisClient, err := iredis.NewClient(ctx, cfg.Redis)
	if err != nil {
		slog.Error("connecting to redis", "error", err)
		os.Exit(1)
	}
	defer redisClient.Close()

	// NATS JetStream
	natsClient, err := inats.NewClient(ctx, cfg.NATS)
	if err != nil {
		slog.Error("connecting to nats", "error", err)
		os.Exit(1)
	}
	defer natsClient.Close()
	publisher := inats.NewPublisher(natsClient.JetStream())
	consumerMgr := inats.NewConsumerManager(natsClient.JetStream())

	// Guardrails
	guard := guardrails.NewService(
		guardrails.NewRateLimiter(cfg.Guardrails.RateLimitMax, cfg.Guardrails.RateLimitWindow),
		cfg.Guardrails,
	)

	// Language-model providers behind a circuit breaker
	breaker := provider.NewBreaker(cfg.Breaker.FailureThreshold, cfg.Breaker.Cooldown)
	router := provider.NewRouter(breaker, cfg.Providers.CallTimeout, buildProviders(ctx, cfg.Providers)...)

	// Conversation engine
	store := conversation.NewPostgresStore(pool)
	transcript := conversation.NewRedisTranscript(redisClient, cfg.Pipeline.TranscriptMaxMsgs, transcriptTTL(cfg.Pipeline))
	vehicleRepo := inventory.NewRepository(pool)
	leadRepo := lead.NewRepository(pool)
	privacySvc := privacy.NewService(store, transcript, leadRepo, publisher)
	engine := conversation.NewEngine(conversation.EngineDeps{
		Store:      store,
		Transcript: transcript,
		Search:     vehicleRepo,
		Leads:      lead.NewSink(leadRepo, publisher),
		Privacy:    privacySvc,
		Guard:      guard,
		Router:     router,
		Extractor:  extractor.New(router),
	}, cfg.Pipeline)

	// Dispatcher: per-identity serialized message processing
	bgCtx, bgCancel := context.WithCancel(ctx)
	defer bgCancel()

	var dispatcherUp atomic.Bool
	dispatcher := dispatch.NewDispatcher(engine, publisher, consumerMgr,
		cfg.Pipeline.DispatchBufferSize, cfg.Pipeline.DispatchIdleTTL)
	go func() {
		dispatcherUp.Store(true)
		defer dispatcherUp.Store(false)
		if err := dispatcher.Start(bgCtx); err != nil {
			slog.Error("dispatcher stopped", "error", err)
		}
	}()

	// XMPP gateway, optional: only when a component secret is configured
	var xmppComponent *xmpp.Component
	if cfg.XMPP.ComponentSecret != "" {
		xmppHandler := xmpp.NewHandler(publisher, cfg.XMPP.BotJID)
		xmppComponent, err = xmpp.NewComponent(cfg.XMPP, xmppHandler)
		if err != nil {
			slog.Error("creating XMPP component", "error", err)
			os.Exit(1)
		}
		go func() {
			if err := xmppComponent.Start(bgCtx); err != nil {
				slog.Error("XMPP component stopped", "error", err)
			}
		}()
		go func() {
			relay := xmpp.NewOutboundRelay(xmppHandler, xmppComponent.Sender(), consumerMgr)
			if err := relay.Start(bgCtx); err != nil {
				slog.Error("outbound relay stopped", "error", err)
			}
		}()
	} else {
		slog.Info("XMPP gateway disabled, no component secret configured")
	}

	// Auth
	jwtManager := auth.NewJWTManager(cfg.JWT.Secret, cfg.JWT.Expiry)
	authSvc := auth.NewService(jwtManager, cfg.Operator)
	authHandler := auth.NewHandler(authSvc)

	// HTTP handlers
	webhookHandler := webhook.NewHandler(publisher)
	inventoryHandler := inventory.NewHandler(vehicleRepo)
	conversationHandler := conversation.NewHandler(store)
	leadHandler := lead.NewHandler(leadRepo)

	httpRouter := api.NewRouter(pool, natsClient, api.RouterConfig{
		CORSAllowedOrigins: cfg.Server.CORSAllowedOrigins,
		WebhookRateLimiter: middleware.NewRateLimiter(redisClient, "webhook", 60, 60).Middleware,
		LoginRateLimiter:   middleware.NewRateLimiter(redisClient, "login", 10, 60).Middleware,
	}, api.HandlerSet{
		WebhookMessage: webhookHandler.Message,

		OperatorLogin:   authHandler.Login,
		CreateVehicle:   inventoryHandler.Create,
		SearchVehicles:  inventoryHandler.Search,
		GetConversation: conversationHandler.Get,
		ListLeads:       leadHandler.List,

		AuthMiddleware:    auth.Middleware(authSvc),
		DispatcherHealthy: dispatcherUp.Load,
	})

	srv := server.New(cfg.Server, httpRouter)
	if err := srv.Start(func() {
		bgCancel()
		if xmppComponent != nil {
			xmppComponent.Stop()
		}
	}); err != nil {
		slog.Error("server error", "error", err)
		os.Exit(1)
	}
}

// buildProviders constructs the enabled providers. A provider that fails to
// construct is skipped rather than aborting startup; the router falls back
// to the remaining ones or the offline responder.
func buildProviders(ctx context.Context, cfg config.ProvidersConfig) []provider.Provider {
	var providers []provider.Provider

	if cfg.Gemini.Enabled {
		p, err := provider.NewGeminiProvider(ctx, cfg.Gemini)
		if err != nil {
			slog.Error("initializing gemini provider", "error", err)
		} else {
			providers = append(providers, p)
		}
	}
	if cfg.OpenAI.Enabled {
		p, err := provider.NewOpenAIProvider(cfg.OpenAI)
		if err != nil {
			slog.Error("initializing openai provider", "error", err)
		} else {
			providers = append(providers, p)
		}
	}

	if len(providers) == 0 {
		slog.Warn("no language-model providers enabled, running offline only")
	}
	return providers
}

func transcriptTTL(cfg config.PipelineConfig) time.Duration {
	return time.Duration(cfg.TranscriptTTLSec) * time.Second
}

func setupLogger(cfg config.LogConfig) {
	var handler slog.Handler

	opts := &slog.HandlerOptions{}
	switch cfg.Level {
	case "debug":
		opts.Level = slog.LevelDebug
	case "info":
		opts.Level = slog.LevelInfo
	case "warn":
		opts.Level = slog.LevelWarn
	case "error":
		opts.Level = slog.LevelError
	default:
		opts.Level = slog.LevelInfo
	}

	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}

	slog.SetDefault(slog.New(handler))
}
