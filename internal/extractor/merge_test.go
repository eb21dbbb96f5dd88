package extractor

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func strPtr(s string) *string   { return &s }
func f64Ptr(f float64) *float64 { return &f }

func TestApplyFillsEmptyFields(t *testing.T) {
	p := Preferences{}
	p.Apply(Delta{
		Budget:    f64Ptr(50000),
		UsageType: strPtr("cidade"),
		BodyTypes: []string{"suv"},
	})

	assert.Equal(t, 50000.0, p.Budget)
	assert.Equal(t, "cidade", p.UsageType)
	assert.Equal(t, []string{"suv"}, p.BodyTypes)
}

func TestApplyNeverClearsFields(t *testing.T) {
	p := Preferences{Budget: 50000, UsageType: "cidade", BodyTypes: []string{"suv"}}
	p.Apply(Delta{})
	p.Apply(Delta{UsageType: strPtr(""), BodyTypes: []string{}})

	assert.Equal(t, 50000.0, p.Budget)
	assert.Equal(t, "cidade", p.UsageType)
	assert.Equal(t, []string{"suv"}, p.BodyTypes)
}

func TestApplyScalarReplacedOnlyByRefinement(t *testing.T) {
	p := Preferences{UsageType: "cidade"}

	p.Apply(Delta{UsageType: strPtr("estrada")})
	assert.Equal(t, "cidade", p.UsageType, "unrelated value must not replace")

	p.Apply(Delta{UsageType: strPtr("cidade e trabalho")})
	assert.Equal(t, "cidade e trabalho", p.UsageType, "refinement must replace")
}

func TestApplyBudgetSetOnce(t *testing.T) {
	p := Preferences{Budget: 50000}
	p.Apply(Delta{Budget: f64Ptr(80000)})

	assert.Equal(t, 50000.0, p.Budget)
}

func TestApplyArraysUnionWithoutDuplicates(t *testing.T) {
	p := Preferences{BodyTypes: []string{"suv"}, Brands: []string{"Fiat"}}
	p.Apply(Delta{
		BodyTypes: []string{"SUV", "sedan"},
		Brands:    []string{"fiat", "Honda", "honda"},
	})

	assert.Equal(t, []string{"suv", "sedan"}, p.BodyTypes)
	assert.Equal(t, []string{"Fiat", "Honda"}, p.Brands)
}

func TestDeltaEmpty(t *testing.T) {
	assert.True(t, Delta{}.Empty())
	assert.False(t, Delta{Budget: f64Ptr(1)}.Empty())
	assert.False(t, Delta{Features: []string{"teto solar"}}.Empty())
}
