package conversation

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/garagem-ai/garagem/internal/api"
)

// Handler serves the operator conversation view.
type Handler struct {
	store Store
}

// NewHandler creates the conversation HTTP handler.
func NewHandler(store Store) *Handler {
	return &Handler{store: store}
}

// Get handles GET /api/v1/conversations/{identity}.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	identity := chi.URLParam(r, "identity")
	if identity == "" {
		api.HandleError(w, api.ErrBadRequest)
		return
	}

	st, err := h.store.Load(r.Context(), identity)
	if err != nil {
		api.HandleError(w, err)
		return
	}
	if st == nil {
		api.HandleError(w, api.NewNotFoundError("conversation not found"))
		return
	}

	api.JSON(w, http.StatusOK, st)
}
