package webhook

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	inats "github.com/garagem-ai/garagem/internal/nats"
)

type stubPublisher struct {
	published []inats.InboundMessage
	err       error
}

func (s *stubPublisher) PublishInboundMessage(_ context.Context, msg inats.InboundMessage) error {
	if s.err != nil {
		return s.err
	}
	s.published = append(s.published, msg)
	return nil
}

func postMessage(h *Handler, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/webhook/messages", strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.Message(rec, req)
	return rec
}

func TestMessageAcceptsValidPayload(t *testing.T) {
	pub := &stubPublisher{}
	h := NewHandler(pub)

	rec := postMessage(h, `{"identity": "551199990000", "message": "oi"}`)

	assert.Equal(t, http.StatusAccepted, rec.Code)
	require.Len(t, pub.published, 1)
	assert.Equal(t, "551199990000", pub.published[0].Identity)
	assert.Equal(t, "oi", pub.published[0].Body)
	assert.Equal(t, "webhook", pub.published[0].Channel)
	assert.NotEmpty(t, pub.published[0].ID)
}

func TestMessageRejectsInvalidPayloads(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"malformed json", `{`},
		{"missing identity", `{"message": "oi"}`},
		{"non-numeric identity", `{"identity": "abc", "message": "oi"}`},
		{"identity too short", `{"identity": "123", "message": "oi"}`},
		{"empty message", `{"identity": "551199990000", "message": ""}`},
		{"message too long", `{"identity": "551199990000", "message": "` + strings.Repeat("a", 5000) + `"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pub := &stubPublisher{}
			rec := postMessage(NewHandler(pub), tt.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Empty(t, pub.published)
		})
	}
}

func TestMessageReportsPublishFailure(t *testing.T) {
	pub := &stubPublisher{err: errors.New("stream down")}
	rec := postMessage(NewHandler(pub), `{"identity": "551199990000", "message": "oi"}`)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}
