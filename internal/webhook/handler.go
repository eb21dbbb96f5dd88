package webhook

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/garagem-ai/garagem/internal/api"
	inats "github.com/garagem-ai/garagem/internal/nats"
)

// InboundPublisher enqueues customer messages for the dispatcher.
type InboundPublisher interface {
	PublishInboundMessage(ctx context.Context, msg inats.InboundMessage) error
}

// Handler receives customer messages over HTTP (the webhook channel) and
// hands them to the message bus. Processing is asynchronous: the reply goes
// out through the outbound stream, not this HTTP response.
type Handler struct {
	publisher InboundPublisher
	validate  *validator.Validate
}

// NewHandler creates the webhook HTTP handler.
func NewHandler(publisher InboundPublisher) *Handler {
	return &Handler{publisher: publisher, validate: validator.New()}
}

type messageRequest struct {
	Identity string `json:"identity" validate:"required,numeric,min=10,max=15"`
	Message  string `json:"message" validate:"required,min=1,max=4096"`
	ReplyTo  string `json:"reply_to,omitempty" validate:"omitempty,url"`
}

type messageResponse struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

// Message handles POST /api/v1/webhook/messages.
func (h *Handler) Message(w http.ResponseWriter, r *http.Request) {
	var req messageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.HandleError(w, api.ErrBadRequest)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		api.HandleError(w, api.NewValidationError("identity must be numeric and message must be 1-4096 chars"))
		return
	}

	msg := inats.InboundMessage{
		ID:         uuid.NewString(),
		Identity:   req.Identity,
		Channel:    "webhook",
		ReplyTo:    req.ReplyTo,
		Body:       req.Message,
		ReceivedAt: time.Now().UTC(),
	}
	if err := h.publisher.PublishInboundMessage(r.Context(), msg); err != nil {
		api.HandleError(w, api.ErrInternalServer)
		return
	}

	api.JSON(w, http.StatusAccepted, messageResponse{ID: msg.ID, Status: "queued"})
}
