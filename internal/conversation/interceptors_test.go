package conversation

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIntercept(t *testing.T) {
	tests := []struct {
		name    string
		message string
		want    Interception
	}{
		{"exit pt", "sair", InterceptExit},
		{"exit en", "quit", InterceptExit},
		{"restart pt", "recomeçar", InterceptRestart},
		{"restart en", "start over", InterceptRestart},
		{"greeting pt", "oi", InterceptGreeting},
		{"greeting punctuated", "olá!", InterceptGreeting},
		{"greeting time of day", "bom dia", InterceptGreeting},
		{"delete data", "quero apagar meus dados por favor", InterceptDeleteData},
		{"delete data en", "please delete my data", InterceptDeleteData},
		{"export data", "pode exportar meus dados?", InterceptExportData},
		{"plain question", "tem suv automático?", InterceptNone},
		{"greeting with content passes through", "oi, quero um carro barato", InterceptNone},
		{"exit word inside sentence passes through", "como faço para sair do financiamento?", InterceptNone},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Intercept(tt.message))
		})
	}
}

func TestInterceptDataRightsWinOverExit(t *testing.T) {
	assert.Equal(t, InterceptDeleteData, Intercept("sair e apagar meus dados"))
}
