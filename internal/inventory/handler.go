package inventory

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/garagem-ai/garagem/internal/api"
)

// Handler serves the operator inventory endpoints.
type Handler struct {
	repo     Repository
	validate *validator.Validate
}

// NewHandler creates the inventory HTTP handler.
func NewHandler(repo Repository) *Handler {
	return &Handler{repo: repo, validate: validator.New()}
}

type createVehicleRequest struct {
	Brand        string  `json:"brand" validate:"required,min=2,max=40"`
	Model        string  `json:"model" validate:"required,min=1,max=60"`
	Year         int     `json:"year" validate:"required,min=1990,max=2100"`
	Price        float64 `json:"price" validate:"required,gt=0"`
	BodyType     string  `json:"body_type" validate:"required,oneof=hatch sedan suv picape minivan"`
	FuelType     string  `json:"fuel_type" validate:"omitempty,oneof=flex gasolina diesel elétrico híbrido"`
	Transmission string  `json:"transmission" validate:"omitempty,oneof=manual automático"`
	Mileage      int     `json:"mileage" validate:"min=0"`
	Color        string  `json:"color" validate:"omitempty,max=30"`
}

// Create handles POST /api/v1/vehicles.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req createVehicleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.HandleError(w, api.ErrBadRequest)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		api.HandleError(w, api.ErrValidation)
		return
	}

	v := &Vehicle{
		Brand:        req.Brand,
		Model:        req.Model,
		Year:         req.Year,
		Price:        req.Price,
		BodyType:     req.BodyType,
		FuelType:     req.FuelType,
		Transmission: req.Transmission,
		Mileage:      req.Mileage,
		Color:        req.Color,
		Available:    true,
	}
	if err := h.repo.Create(r.Context(), v); err != nil {
		api.HandleError(w, err)
		return
	}

	api.JSON(w, http.StatusCreated, v)
}

// Search handles GET /api/v1/vehicles with query-string filters.
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	c := Criteria{
		FuelType:     q.Get("fuel_type"),
		Transmission: q.Get("transmission"),
	}
	if v := q.Get("budget_min"); v != "" {
		c.BudgetMin, _ = strconv.ParseFloat(v, 64)
	}
	if v := q.Get("budget_max"); v != "" {
		c.BudgetMax, _ = strconv.ParseFloat(v, 64)
	}
	if v := q.Get("body_types"); v != "" {
		c.BodyTypes = strings.Split(v, ",")
	}
	if v := q.Get("brands"); v != "" {
		c.Brands = strings.Split(v, ",")
	}
	if v := q.Get("limit"); v != "" {
		c.Limit, _ = strconv.Atoi(v)
	}

	vehicles, err := h.repo.Search(r.Context(), c)
	if err != nil {
		api.HandleError(w, err)
		return
	}
	if vehicles == nil {
		vehicles = []Vehicle{}
	}

	api.JSON(w, http.StatusOK, vehicles)
}
