package inventory

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// Vehicle is one car in the dealership inventory.
type Vehicle struct {
	ID           uuid.UUID `json:"id"`
	Brand        string    `json:"brand"`
	Model        string    `json:"model"`
	Year         int       `json:"year"`
	Price        float64   `json:"price"`
	BodyType     string    `json:"body_type"`
	FuelType     string    `json:"fuel_type"`
	Transmission string    `json:"transmission"`
	Mileage      int       `json:"mileage"`
	Color        string    `json:"color"`
	Available    bool      `json:"available"`
}

// Label is the short human-readable form used in chat replies and leads.
func (v Vehicle) Label() string {
	return fmt.Sprintf("%s %s %d", v.Brand, v.Model, v.Year)
}

// Criteria filters an inventory search. Zero values mean "no restriction".
type Criteria struct {
	BudgetMin    float64
	BudgetMax    float64
	BodyTypes    []string
	Brands       []string
	FuelType     string
	Transmission string
	Limit        int
}

// Normalize lowercases the string filters so matching is case-insensitive
// end to end.
func (c *Criteria) Normalize() {
	for i, b := range c.BodyTypes {
		c.BodyTypes[i] = strings.ToLower(strings.TrimSpace(b))
	}
	for i, b := range c.Brands {
		c.Brands[i] = strings.ToLower(strings.TrimSpace(b))
	}
	c.FuelType = strings.ToLower(strings.TrimSpace(c.FuelType))
	c.Transmission = strings.ToLower(strings.TrimSpace(c.Transmission))
	if c.Limit <= 0 {
		c.Limit = 5
	}
}
