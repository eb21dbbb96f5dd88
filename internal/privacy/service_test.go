package privacy

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

type stubStore struct {
	state   *conversation.State
	deleted []string
	err     error
}

func (s *stubStore) Load(_ context.Context, _ string) (*conversation.State, error) {
	return s.state, s.err
}

func (s *stubStore) Delete(_ context.Context, identity string) error {
	if s.err != nil {
		return s.err
	}
	s.deleted = append(s.deleted, identity)
	return nil
}

type stubTranscript struct {
	cleared []string
	entries []conversation.TranscriptEntry
}

func (s *stubTranscript) Append(_ context.Context, _, _, _ string) error { return nil }

func (s *stubTranscript) Recent(_ context.Context, _ string, _ int) ([]conversation.TranscriptEntry, error) {
	return s.entries, nil
}

func (s *stubTranscript) Clear(_ context.Context, identity string) error {
	s.cleared = append(s.cleared, identity)
	return nil
}

type stubLeads struct {
	deleted []string
}

func (s *stubLeads) DeleteByIdentity(_ context.Context, identity string) error {
	s.deleted = append(s.deleted, identity)
	return nil
}

type stubAudit struct {
	events []nats.AuditEvent
}

func (s *stubAudit) PublishAuditEvent(_ context.Context, event nats.AuditEvent) error {
	s.events = append(s.events, event)
	return nil
}

func TestDeleteDataRemovesStateTranscriptAndLeads(t *testing.T) {
	store := &stubStore{}
	transcript := &stubTranscript{}
	leads := &stubLeads{}
	audit := &stubAudit{}
	svc := NewService(store, transcript, leads, audit)

	require.NoError(t, svc.DeleteData(context.Background(), "551199990000"))

	assert.Equal(t, []string{"551199990000"}, store.deleted)
	assert.Equal(t, []string{"551199990000"}, transcript.cleared)
	assert.Equal(t, []string{"551199990000"}, leads.deleted)
	require.Len(t, audit.events, 1)
	assert.Equal(t, "data_deleted", audit.events[0].EventType)
}

func TestDeleteDataPropagatesStoreFailure(t *testing.T) {
	svc := NewService(&stubStore{err: errors.New("db down")}, nil, nil, nil)
	assert.Error(t, svc.DeleteData(context.Background(), "x"))
}

func TestExportDataSummarizesStoredData(t *testing.T) {
	st := conversation.NewState("551199990000")
	st.Quiz.Answers["customerName"] = "João"
	st.Quiz.Answers["usage"] = "cidade"
	st.CreatedAt = time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)

	transcript := &stubTranscript{entries: []conversation.TranscriptEntry{
		{Role: "user", Content: "oi"},
		{Role: "assistant", Content: "olá!"},
	}}
	svc := NewService(&stubStore{state: st}, transcript, nil, &stubAudit{})

	export, err := svc.ExportData(context.Background(), "551199990000")
	require.NoError(t, err)

	assert.Contains(t, export, "João")
	assert.Contains(t, export, "cidade")
	assert.Contains(t, export, "01/08/2026")
	assert.Contains(t, export, "Mensagens recentes guardadas: 2")
	assert.NotContains(t, export, "551199990000",
		"export text must not echo the identity digits")
}

func TestExportDataWithNoStoredState(t *testing.T) {
	svc := NewService(&stubStore{}, nil, nil, nil)

	export, err := svc.ExportData(context.Background(), "x")
	require.NoError(t, err)
	assert.Contains(t, export, "Nenhum dado armazenado")
}
