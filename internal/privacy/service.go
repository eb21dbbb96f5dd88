package privacy

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/garagem-ai/garagem/internal/conversation"
	"github.com/garagem-ai/garagem/internal/nats"
)

// StateStore is the slice of the conversation store the privacy flow needs.
type StateStore interface {
	Load(ctx context.Context, identity string) (*conversation.State, error)
	Delete(ctx context.Context, identity string) error
}

// LeadEraser removes captured leads during data erasure.
type LeadEraser interface {
	DeleteByIdentity(ctx context.Context, identity string) error
}

// AuditPublisher records privacy operations for compliance.
type AuditPublisher interface {
	PublishAuditEvent(ctx context.Context, event nats.AuditEvent) error
}

// Service handles LGPD data-rights requests: export and erasure. It is
// invoked from the conversation engine's global interceptor, bypassing node
// dispatch entirely.
type Service struct {
	store      StateStore
	transcript conversation.Transcript
	leads      LeadEraser
	audit      AuditPublisher
}

// NewService creates the privacy service. leads may be nil when lead
// persistence is not configured.
func NewService(store StateStore, transcript conversation.Transcript, leads LeadEraser, audit AuditPublisher) *Service {
	return &Service{store: store, transcript: transcript, leads: leads, audit: audit}
}

// DeleteData erases everything held for the identity: the conversation row,
// the transcript cache and any captured leads.
func (s *Service) DeleteData(ctx context.Context, identity string) error {
	if err := s.store.Delete(ctx, identity); err != nil {
		return fmt.Errorf("deleting conversation data: %w", err)
	}
	if s.transcript != nil {
		if err := s.transcript.Clear(ctx, identity); err != nil {
			return fmt.Errorf("clearing transcript: %w", err)
		}
	}
	if s.leads != nil {
		if err := s.leads.DeleteByIdentity(ctx, identity); err != nil {
			return fmt.Errorf("deleting captured leads: %w", err)
		}
	}
	s.publishAudit(ctx, identity, "data_deleted")
	slog.Info("personal data deleted", "identity", identity)
	return nil
}

// ExportData renders a human-readable summary of the stored data. The text
// goes straight back to the customer as a chat message, so it must not
// contain long digit runs that the output guardrail treats as document
// numbers.
func (s *Service) ExportData(ctx context.Context, identity string) (string, error) {
	st, err := s.store.Load(ctx, identity)
	if err != nil {
		return "", fmt.Errorf("loading conversation data: %w", err)
	}

	var b strings.Builder
	b.WriteString("Aqui está o que guardamos sobre você:\n")
	if st == nil {
		b.WriteString("Nenhum dado armazenado no momento.")
		s.publishAudit(ctx, identity, "data_exported")
		return b.String(), nil
	}

	if st.Profile != nil && st.Profile.CustomerName != "" {
		fmt.Fprintf(&b, "Nome informado: %s\n", st.Profile.CustomerName)
	} else if name := st.Quiz.Answers["customerName"]; name != "" {
		fmt.Fprintf(&b, "Nome informado: %s\n", name)
	}
	if usage := st.Quiz.Answers["usage"]; usage != "" {
		fmt.Fprintf(&b, "Uso pretendido: %s\n", usage)
	}
	if body := st.Quiz.Answers["bodyType"]; body != "" {
		fmt.Fprintf(&b, "Carroceria preferida: %s\n", body)
	}
	fmt.Fprintf(&b, "Conversa iniciada em: %s\n", st.CreatedAt.Format("02/01/2006"))

	if s.transcript != nil {
		entries, err := s.transcript.Recent(ctx, identity, 100)
		if err == nil {
			fmt.Fprintf(&b, "Mensagens recentes guardadas: %d\n", len(entries))
		}
	}
	b.WriteString("Para remover tudo, é só pedir para apagar seus dados.")

	s.publishAudit(ctx, identity, "data_exported")
	return b.String(), nil
}

func (s *Service) publishAudit(ctx context.Context, identity, eventType string) {
	if s.audit == nil {
		return
	}
	event := nats.AuditEvent{
		Identity:  identity,
		EventType: eventType,
		Severity:  "info",
		Details:   "data-rights request handled",
		Timestamp: time.Now().UTC(),
	}
	if err := s.audit.PublishAuditEvent(ctx, event); err != nil {
		slog.Warn("publishing privacy audit event failed", "identity", identity, "error", err)
	}
}
