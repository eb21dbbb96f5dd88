package conversation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateBudget(t *testing.T) {
	tests := []struct {
		in    string
		want  string
		valid bool
	}{
		{"50000", "50000", true},
		{"R$ 50.000", "50000", true},
		{"50 mil", "50000", true},
		{"uns 80k", "80000", true},
		{"tenho 45,5 mil guardados", "45500", true},
		{"não sei ainda", "", false},
		{"100", "", false},
		{"999999999999", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := validateBudget(tt.in)
			assert.Equal(t, tt.valid, ok)
			if tt.valid {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}

func TestValidateName(t *testing.T) {
	valid := []string{"João", "Ana Maria", "José da Silva"}
	for _, name := range valid {
		got, ok := validateName(name)
		assert.True(t, ok, name)
		assert.Equal(t, name, got)
	}

	invalid := []string{"", "a", "12345", "  1  "}
	for _, name := range invalid {
		_, ok := validateName(name)
		assert.False(t, ok, name)
	}
}

func TestValidateUsageAndBodyType(t *testing.T) {
	usage, ok := validateUsage("mais na cidade mesmo")
	require.True(t, ok)
	assert.Equal(t, "cidade", usage)

	usage, ok = validateUsage("viagens longas com a família")
	require.True(t, ok)
	assert.NotEmpty(t, usage)

	_, ok = validateUsage("hmm")
	assert.False(t, ok)

	body, ok := validateBodyType("um SUV seria ótimo")
	require.True(t, ok)
	assert.Equal(t, "suv", body)

	body, ok = validateBodyType("uma caminhonete")
	require.True(t, ok)
	assert.Equal(t, "picape", body)

	_, ok = validateBodyType("qualquer um")
	assert.False(t, ok)
}

func TestBuildProfileDerivesBudgetBand(t *testing.T) {
	q := Quiz{Answers: map[string]string{
		"customerName": "João",
		"budget":       "100000",
		"usage":        "cidade",
		"bodyType":     "suv",
	}}

	p := buildProfile(q)
	assert.Equal(t, "João", p.CustomerName)
	assert.InDelta(t, 100000, p.Budget, 0.01)
	assert.InDelta(t, 80000, p.BudgetMin, 0.01)
	assert.InDelta(t, 120000, p.BudgetMax, 0.01)
	assert.Equal(t, "cidade", p.Preferences.UsageType)
	assert.Equal(t, []string{"suv"}, p.Preferences.BodyTypes)
}
