package lead

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/garagem-ai/garagem/internal/conversation"
	"github.com/garagem-ai/garagem/internal/nats"
)

type stubPublisher struct {
	events []nats.LeadEvent
	err    error
}

func (s *stubPublisher) PublishLead(_ context.Context, lead nats.LeadEvent) error {
	if s.err != nil {
		return s.err
	}
	s.events = append(s.events, lead)
	return nil
}

type stubRepo struct {
	records []Record
	err     error
}

func (s *stubRepo) Create(_ context.Context, rec *Record) error {
	if s.err != nil {
		return s.err
	}
	s.records = append(s.records, *rec)
	return nil
}

func (s *stubRepo) List(_ context.Context, _ int) ([]Record, error) { return s.records, nil }

func (s *stubRepo) DeleteByIdentity(_ context.Context, _ string) error { return nil }

func TestDeliverRecordsAndPublishes(t *testing.T) {
	pub := &stubPublisher{}
	repo := &stubRepo{}
	sink := NewSink(repo, pub)

	lead := conversation.Lead{
		Identity:     "551199990000",
		CustomerName: "João",
		Vehicle:      "Fiat Pulse 2023",
		Budget:       95000,
		Confidence:   1.0,
		CapturedAt:   time.Now().UTC(),
	}
	require.NoError(t, sink.Deliver(context.Background(), lead))

	require.Len(t, pub.events, 1)
	assert.Equal(t, "551199990000", pub.events[0].Identity)
	assert.Equal(t, "Fiat Pulse 2023", pub.events[0].Vehicle)
	assert.Equal(t, 95000.0, pub.events[0].Budget)

	require.Len(t, repo.records, 1)
	assert.Equal(t, "551199990000", repo.records[0].Identity)
}

func TestDeliverWithoutRepositoryOnlyPublishes(t *testing.T) {
	pub := &stubPublisher{}
	sink := NewSink(nil, pub)

	require.NoError(t, sink.Deliver(context.Background(), conversation.Lead{Identity: "x"}))
	assert.Len(t, pub.events, 1)
}

func TestDeliverPropagatesPublishFailure(t *testing.T) {
	pub := &stubPublisher{err: errors.New("stream unavailable")}
	sink := NewSink(nil, pub)

	err := sink.Deliver(context.Background(), conversation.Lead{Identity: "x"})
	assert.Error(t, err)
}

func TestDeliverDoesNotPublishWhenRecordFails(t *testing.T) {
	pub := &stubPublisher{}
	repo := &stubRepo{err: errors.New("db down")}
	sink := NewSink(repo, pub)

	err := sink.Deliver(context.Background(), conversation.Lead{Identity: "x"})
	assert.Error(t, err)
	assert.Empty(t, pub.events)
}
