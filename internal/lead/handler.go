package lead

import (
	"net/http"
	"strconv"

	"github.com/garagem-ai/garagem/internal/api"
)

// Handler serves the operator leads view.
type Handler struct {
	repo Repository
}

// NewHandler creates the lead HTTP handler.
func NewHandler(repo Repository) *Handler {
	return &Handler{repo: repo}
}

// List handles GET /api/v1/leads, newest first.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	records, err := h.repo.List(r.Context(), limit)
	if err != nil {
		api.HandleError(w, err)
		return
	}
	if records == nil {
		records = []Record{}
	}

	api.JSON(w, http.StatusOK, records)
}
