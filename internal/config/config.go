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
	NATS       NATSConfig
	XMPP       XMPPConfig
	JWT        JWTConfig
	Operator   OperatorConfig
	Guardrails GuardrailsConfig
	Providers  ProvidersConfig
	Breaker    BreakerConfig
	Pipeline   PipelineConfig
	Log        LogConfig
}

type ServerConfig struct {
	Host               string
	Port               int
	CORSAllowedOrigins []string
}

type DBConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Name     string
	SSLMode  string
	MaxConns int32
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

type NATSConfig struct {
	URL string
}

type XMPPConfig struct {
	ComponentName   string
	ComponentHost   string
	ComponentPort   int
	ComponentSecret string
	BotJID          string
}

func (c XMPPConfig) ComponentAddr() string {
	return fmt.Sprintf("%s:%d", c.ComponentHost, c.ComponentPort)
}

type JWTConfig struct {
	Secret string
	Expiry time.Duration
}

// OperatorConfig holds the single operator account used by the dashboard API.
// PasswordHash is a bcrypt hash; the plaintext never appears in config.
type OperatorConfig struct {
	Username     string
	PasswordHash string
}

type GuardrailsConfig struct {
	RateLimitMax    int
	RateLimitWindow time.Duration
	MaxOutputChars  int
}

// ProviderConfig describes one language-model provider. Lower Priority is
// tried first.
type ProviderConfig struct {
	Enabled  bool
	Priority int
	APIKey   string
	Model    string
	BaseURL  string
}

type ProvidersConfig struct {
	Gemini      ProviderConfig
	OpenAI      ProviderConfig
	CallTimeout time.Duration
}

type BreakerConfig struct {
	FailureThreshold int
	Cooldown         time.Duration
}

// PipelineConfig holds conversation-engine tunables. The interest threshold
// and ceilings are hand-tuned; treat them as knobs, not constants.
type PipelineConfig struct {
	ErrorCeiling       int
	LoopCeiling        int
	InterestThreshold  float64
	TranscriptMaxMsgs  int
	TranscriptTTLSec   int
	DispatchBufferSize int
	DispatchIdleTTL    time.Duration
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
			Host:               k.String("server.host"),
			Port:               k.Int("server.port"),
			CORSAllowedOrigins: k.Strings("server.cors.origins"),
		},
		DB: DBConfig{
			Host:     k.String("db.host"),
			Port:     k.Int("db.port"),
			User:     k.String("db.user"),
			Password: k.String("db.password"),
			Name:     k.String("db.name"),
			SSLMode:  k.String("db.sslmode"),
			MaxConns: int32(k.Int("db.max.conns")),
		},
		Redis: RedisConfig{
			Host:     k.String("redis.host"),
			Port:     k.Int("redis.port"),
			Password: k.String("redis.password"),
			DB:       k.Int("redis.db"),
		},
		NATS: NATSConfig{
			URL: k.String("nats.url"),
		},
		XMPP: XMPPConfig{
			ComponentName:   k.String("xmpp.component.name"),
			ComponentHost:   k.String("xmpp.component.host"),
			ComponentPort:   k.Int("xmpp.component.port"),
			ComponentSecret: k.String("xmpp.component.secret"),
			BotJID:          k.String("xmpp.bot.jid"),
		},
		JWT: JWTConfig{
			Secret: k.String("jwt.secret"),
		},
		Operator: OperatorConfig{
			Username:     k.String("operator.username"),
			PasswordHash: k.String("operator.password.hash"),
		},
		Guardrails: GuardrailsConfig{
			RateLimitMax:   k.Int("guardrails.ratelimit.max"),
			MaxOutputChars: k.Int("guardrails.output.max.chars"),
		},
		Providers: ProvidersConfig{
			Gemini: ProviderConfig{
				Enabled:  k.Bool("providers.gemini.enabled"),
				Priority: k.Int("providers.gemini.priority"),
				APIKey:   k.String("providers.gemini.api.key"),
				Model:    k.String("providers.gemini.model"),
			},
			OpenAI: ProviderConfig{
				Enabled:  k.Bool("providers.openai.enabled"),
				Priority: k.Int("providers.openai.priority"),
				APIKey:   k.String("providers.openai.api.key"),
				Model:    k.String("providers.openai.model"),
				BaseURL:  k.String("providers.openai.base.url"),
			},
		},
		Breaker: BreakerConfig{
			FailureThreshold: k.Int("breaker.failure.threshold"),
		},
		Pipeline: PipelineConfig{
			ErrorCeiling:       k.Int("pipeline.error.ceiling"),
			LoopCeiling:        k.Int("pipeline.loop.ceiling"),
			InterestThreshold:  k.Float64("pipeline.interest.threshold"),
			TranscriptMaxMsgs:  k.Int("pipeline.transcript.max.msgs"),
			TranscriptTTLSec:   k.Int("pipeline.transcript.ttl.sec"),
			DispatchBufferSize: k.Int("pipeline.dispatch.buffer"),
		},
		Log: LogConfig{
			Level:  k.String("log.level"),
			Format: k.String("log.format"),
		},
	}

	applyDefaults(cfg)

	// Parse durations
	cfg.JWT.Expiry, err = parseDuration(k.String("jwt.expiry"), "1h")
	if err != nil {
		return nil, fmt.Errorf("parsing jwt expiry: %w", err)
	}
	cfg.Guardrails.RateLimitWindow, err = parseDuration(k.String("guardrails.ratelimit.window"), "60s")
	if err != nil {
		return nil, fmt.Errorf("parsing guardrails rate limit window: %w", err)
	}
	cfg.Providers.CallTimeout, err = parseDuration(k.String("providers.call.timeout"), "20s")
	if err != nil {
		return nil, fmt.Errorf("parsing provider call timeout: %w", err)
	}
	cfg.Breaker.Cooldown, err = parseDuration(k.String("breaker.cooldown"), "60s")
	if err != nil {
		return nil, fmt.Errorf("parsing breaker cooldown: %w", err)
	}
	cfg.Pipeline.DispatchIdleTTL, err = parseDuration(k.String("pipeline.dispatch.idle.ttl"), "5m")
	if err != nil {
		return nil, fmt.Errorf("parsing dispatch idle ttl: %w", err)
	}

	return cfg, nil
}

func parseDuration(s, def string) (time.Duration, error) {
	if s == "" {
		s = def
	}
	return time.ParseDuration(s)
}

func applyDefaults(cfg *Config) {
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
		cfg.DB.User = "garagem"
	}
	if cfg.DB.Name == "" {
		cfg.DB.Name = "garagem"
	}
	if cfg.DB.SSLMode == "" {
		cfg.DB.SSLMode = "disable"
	}
	if cfg.DB.MaxConns == 0 {
		cfg.DB.MaxConns = 25
	}
	if cfg.Redis.Host == "" {
		cfg.Redis.Host = "localhost"
	}
	if cfg.Redis.Port == 0 {
		cfg.Redis.Port = 6379
	}
	if cfg.NATS.URL == "" {
		cfg.NATS.URL = "nats://localhost:4222"
	}
	if cfg.XMPP.ComponentName == "" {
		cfg.XMPP.ComponentName = "bot.garagem.local"
	}
	if cfg.XMPP.ComponentHost == "" {
		cfg.XMPP.ComponentHost = "localhost"
	}
	if cfg.XMPP.ComponentPort == 0 {
		cfg.XMPP.ComponentPort = 5347
	}
	if cfg.XMPP.BotJID == "" {
		cfg.XMPP.BotJID = "atendimento@" + cfg.XMPP.ComponentName
	}
	if cfg.Guardrails.RateLimitMax == 0 {
		cfg.Guardrails.RateLimitMax = 10
	}
	if cfg.Guardrails.MaxOutputChars == 0 {
		cfg.Guardrails.MaxOutputChars = 4096
	}
	if cfg.Providers.Gemini.Model == "" {
		cfg.Providers.Gemini.Model = "gemini-2.0-flash"
	}
	if cfg.Providers.Gemini.Priority == 0 {
		cfg.Providers.Gemini.Priority = 1
	}
	if cfg.Providers.OpenAI.Model == "" {
		cfg.Providers.OpenAI.Model = "gpt-4o-mini"
	}
	if cfg.Providers.OpenAI.BaseURL == "" {
		cfg.Providers.OpenAI.BaseURL = "https://api.openai.com/v1"
	}
	if cfg.Providers.OpenAI.Priority == 0 {
		cfg.Providers.OpenAI.Priority = 2
	}
	if cfg.Breaker.FailureThreshold == 0 {
		cfg.Breaker.FailureThreshold = 3
	}
	if cfg.Pipeline.ErrorCeiling == 0 {
		cfg.Pipeline.ErrorCeiling = 3
	}
	if cfg.Pipeline.LoopCeiling == 0 {
		cfg.Pipeline.LoopCeiling = 5
	}
	if cfg.Pipeline.InterestThreshold == 0 {
		cfg.Pipeline.InterestThreshold = 0.7
	}
	if cfg.Pipeline.TranscriptMaxMsgs == 0 {
		cfg.Pipeline.TranscriptMaxMsgs = 40
	}
	if cfg.Pipeline.TranscriptTTLSec == 0 {
		cfg.Pipeline.TranscriptTTLSec = 86400
	}
	if cfg.Pipeline.DispatchBufferSize == 0 {
		cfg.Pipeline.DispatchBufferSize = 16
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "text"
	}
}
