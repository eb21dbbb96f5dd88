package conversation

import (
	"context"
	"time"

	"github.com/garagem-ai/garagem/internal/extractor"
	"github.com/garagem-ai/garagem/internal/inventory"
	"github.com/garagem-ai/garagem/internal/provider"
)

// Store persists conversation state. Reads are idempotent; saves are
// last-write-wins per identity.
type Store interface {
	Load(ctx context.Context, identity string) (*State, error)
	Save(ctx context.Context, state *State) error
}

// Transcript keeps the recent message history used as chat context.
type Transcript interface {
	Append(ctx context.Context, identity, role, content string) error
	Recent(ctx context.Context, identity string, limit int) ([]TranscriptEntry, error)
	Clear(ctx context.Context, identity string) error
}

// TranscriptEntry is one stored message turn.
type TranscriptEntry struct {
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// Searcher finds inventory candidates for a criteria set.
type Searcher interface {
	Search(ctx context.Context, c inventory.Criteria) ([]inventory.Vehicle, error)
}

// Lead is a qualified purchase intent handed to the sales team.
type Lead struct {
	Identity     string    `json:"identity"`
	CustomerName string    `json:"customer_name"`
	Vehicle      string    `json:"vehicle"`
	VehicleID    string    `json:"vehicle_id,omitempty"`
	Budget       float64   `json:"budget"`
	Confidence   float64   `json:"confidence"`
	CapturedAt   time.Time `json:"captured_at"`
}

// LeadSink delivers captured leads. Delivery guarantees past at-least-once
// are the sink's problem; the engine calls it at most once per conversation.
type LeadSink interface {
	Deliver(ctx context.Context, lead Lead) error
}

// Privacy handles data-rights requests outside the state machine.
type Privacy interface {
	ExportData(ctx context.Context, identity string) (string, error)
	DeleteData(ctx context.Context, identity string) error
}

// ChatRouter is the slice of the provider router the engine needs.
type ChatRouter interface {
	ChatCompletion(ctx context.Context, msgs []provider.Message, opts provider.Options) (string, error)
}

// PreferenceExtractor turns free text into preference deltas.
type PreferenceExtractor interface {
	Extract(ctx context.Context, text string) (extractor.Delta, error)
}
