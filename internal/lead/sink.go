package lead

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/garagem-ai/garagem/internal/conversation"
	"github.com/garagem-ai/garagem/internal/nats"
)

// Publisher is the slice of the NATS publisher the sink needs.
type Publisher interface {
	PublishLead(ctx context.Context, lead nats.LeadEvent) error
}

// Sink records captured leads in Postgres and announces them on the leads
// stream, where the sales team's tooling picks them up. JetStream gives
// at-least-once delivery; the conversation engine guarantees the sink is
// called at most once per conversation.
type Sink struct {
	repo      Repository
	publisher Publisher
}

// NewSink creates the lead delivery channel. repo may be nil, in which case
// leads are only published.
func NewSink(repo Repository, publisher Publisher) *Sink {
	return &Sink{repo: repo, publisher: publisher}
}

// Deliver persists the lead and publishes it.
func (s *Sink) Deliver(ctx context.Context, lead conversation.Lead) error {
	if s.repo != nil {
		rec := Record{
			Identity:     lead.Identity,
			CustomerName: lead.CustomerName,
			Vehicle:      lead.Vehicle,
			VehicleID:    lead.VehicleID,
			Budget:       lead.Budget,
			Confidence:   lead.Confidence,
			CapturedAt:   lead.CapturedAt,
		}
		if err := s.repo.Create(ctx, &rec); err != nil {
			return fmt.Errorf("recording lead for %s: %w", lead.Identity, err)
		}
	}

	event := nats.LeadEvent{
		Identity:     lead.Identity,
		CustomerName: lead.CustomerName,
		Vehicle:      lead.Vehicle,
		VehicleID:    lead.VehicleID,
		Budget:       lead.Budget,
		Confidence:   lead.Confidence,
		CapturedAt:   lead.CapturedAt,
	}
	if err := s.publisher.PublishLead(ctx, event); err != nil {
		return fmt.Errorf("delivering lead for %s: %w", lead.Identity, err)
	}
	slog.Info("lead delivered", "identity", lead.Identity, "vehicle", lead.Vehicle)
	return nil
}
