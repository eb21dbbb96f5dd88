package conversation

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDetectInterest(t *testing.T) {
	tests := []struct {
		name       string
		message    string
		confidence float64
		index      int
	}{
		{"strong with word ordinal", "quero comprar o segundo", 1.0, 1},
		{"strong with digit ordinal", "vou levar o 3", 1.0, 2},
		{"strong without reference", "tenho interesse", 0.8, -1},
		{"weak without reference", "gostei bastante", 0.5, -1},
		{"weak with reference", "gostei do primeiro", 0.7, 0},
		{"english strong", "i'll take the second one", 1.0, 1},
		{"no interest", "qual o consumo do motor?", 0.0, -1},
		{"large number is not an ordinal", "meu orçamento é 50000", 0.0, -1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sig := DetectInterest(tt.message)
			assert.InDelta(t, tt.confidence, sig.Confidence, 0.001)
			assert.Equal(t, tt.index, sig.VehicleIndex)
		})
	}
}
