package config

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
)

// Validate checks Config for production-critical problems.
// It collects all errors into a single joined error.
func (c *Config) Validate() error {
	var errs []string

	if len(c.JWT.Secret) < 32 {
		errs = append(errs, "JWT_SECRET must be at least 32 characters")
	}
	if c.Operator.Username == "" {
		errs = append(errs, "OPERATOR_USERNAME is required")
	}
	if c.Operator.PasswordHash == "" {
		errs = append(errs, "OPERATOR_PASSWORD_HASH is required")
	} else if !strings.HasPrefix(c.Operator.PasswordHash, "$2") {
		errs = append(errs, "OPERATOR_PASSWORD_HASH must be a bcrypt hash")
	}

	if c.DB.Password == "" {
		errs = append(errs, "DB_PASSWORD is required")
	}

	// Port ranges
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Sprintf("SERVER_PORT must be 1–65535, got %d", c.Server.Port))
	}
	if c.DB.Port < 1 || c.DB.Port > 65535 {
		errs = append(errs, fmt.Sprintf("DB_PORT must be 1–65535, got %d", c.DB.Port))
	}
	if c.Redis.Port < 1 || c.Redis.Port > 65535 {
		errs = append(errs, fmt.Sprintf("REDIS_PORT must be 1–65535, got %d", c.Redis.Port))
	}
	if c.XMPP.ComponentPort < 1 || c.XMPP.ComponentPort > 65535 {
		errs = append(errs, fmt.Sprintf("XMPP_COMPONENT_PORT must be 1–65535, got %d", c.XMPP.ComponentPort))
	}

	if !c.Providers.Gemini.Enabled && !c.Providers.OpenAI.Enabled {
		slog.Warn("no model provider enabled — router will serve offline fallbacks only")
	}
	if c.Providers.Gemini.Enabled && c.Providers.Gemini.APIKey == "" {
		errs = append(errs, "PROVIDERS_GEMINI_API_KEY is required when the Gemini provider is enabled")
	}
	if c.Providers.OpenAI.Enabled && c.Providers.OpenAI.APIKey == "" {
		errs = append(errs, "PROVIDERS_OPENAI_API_KEY is required when the OpenAI provider is enabled")
	}

	if c.Guardrails.RateLimitMax < 1 {
		errs = append(errs, "GUARDRAILS_RATELIMIT_MAX must be positive")
	}
	if c.Pipeline.InterestThreshold < 0 || c.Pipeline.InterestThreshold > 1 {
		errs = append(errs, "PIPELINE_INTEREST_THRESHOLD must be between 0 and 1")
	}

	// Component secret: warn only, local dev runs without one
	if c.XMPP.ComponentSecret == "" {
		slog.Warn("XMPP_COMPONENT_SECRET is empty — XMPP component has no authentication")
	}

	if len(errs) > 0 {
		return errors.New("config validation failed:\n  " + strings.Join(errs, "\n  "))
	}
	return nil
}
