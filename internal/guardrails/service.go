package guardrails

import (
	"strings"

	"github.com/garagem-ai/garagem/internal/config"
	"github.com/garagem-ai/garagem/internal/metrics"
)

// Canned user-facing rejection texts. Deliberately generic: a rejection never
// reveals which pattern fired.
const (
	MsgTooFast         = "Você está enviando mensagens rápido demais. Aguarde um instante e tente novamente. 🙏"
	MsgCannotProcess   = "Não consegui processar sua mensagem. Pode escrever de outra forma?"
	MsgResponseBlocked = "Tive um problema ao montar a resposta. Pode repetir a última mensagem?"
)

// Verdict is the outcome of a guardrail check. Guardrails never return
// errors; every path ends in an explicit allow/deny record.
type Verdict struct {
	Allowed   bool
	Sanitized string
	Reason    string
}

// Service composes the rate limiter, sanitizer, and detectors into the two
// pipeline checkpoints, ValidateInput and ValidateOutput.
type Service struct {
	limiter        *RateLimiter
	maxOutputChars int
}

// NewService creates a guardrails service around an injected rate limiter.
func NewService(limiter *RateLimiter, cfg config.GuardrailsConfig) *Service {
	return &Service{
		limiter:        limiter,
		maxOutputChars: cfg.MaxOutputChars,
	}
}

// ValidateInput runs the inbound checks in order: rate limit, sanitize,
// injection detection. A rate-limited message is neither sanitized nor
// inspected.
func (s *Service) ValidateInput(identity, raw string) Verdict {
	if !s.limiter.Allow(identity) {
		metrics.GuardrailBlocksTotal.WithLabelValues("input", "rate_limit").Inc()
		return Verdict{Allowed: false, Reason: MsgTooFast}
	}

	sanitized := Sanitize(raw)
	if DetectInjection(strings.ToLower(sanitized)) {
		metrics.GuardrailBlocksTotal.WithLabelValues("input", "injection").Inc()
		return Verdict{Allowed: false, Reason: MsgCannotProcess}
	}

	return Verdict{Allowed: true, Sanitized: sanitized}
}

// ValidateOutput checks a candidate response before it may be sent: size
// ceiling, prompt-leak phrases, CPF-shaped digits, stack-trace text. Allowed
// text passes through unchanged.
func (s *Service) ValidateOutput(candidate string) Verdict {
	if len([]rune(candidate)) > s.maxOutputChars {
		metrics.GuardrailBlocksTotal.WithLabelValues("output", "too_long").Inc()
		return Verdict{Allowed: false, Reason: MsgResponseBlocked}
	}
	if DetectLeak(candidate) {
		metrics.GuardrailBlocksTotal.WithLabelValues("output", "leak").Inc()
		return Verdict{Allowed: false, Reason: MsgResponseBlocked}
	}
	return Verdict{Allowed: true, Sanitized: candidate}
}
