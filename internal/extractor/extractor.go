package extractor

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/garagem-ai/garagem/internal/provider"
)

const systemPrompt = `Você extrai preferências de compra de carro de mensagens de clientes.
Responda SOMENTE com um objeto JSON. Omita campos não mencionados na mensagem.
Campos reconhecidos:
  "budget": número, orçamento em reais
  "usage_type": string ("cidade", "estrada", "trabalho", "familia", "misto")
  "body_types": lista de strings ("hatch", "sedan", "suv", "picape", "minivan")
  "brands": lista de strings, marcas citadas
  "features": lista de strings, itens desejados (ex: "ar condicionado", "câmbio automático")
  "fuel_type": string ("flex", "gasolina", "diesel", "elétrico", "híbrido")
  "transmission": string ("manual", "automático")
Nunca invente valores. Se a mensagem não contém preferências, responda {}.`

// Extractor turns free customer text into a typed preference delta using
// the provider router's JSON mode.
type Extractor struct {
	router ChatRouter
}

// ChatRouter is the slice of the provider router the extractor needs.
type ChatRouter interface {
	ChatCompletion(ctx context.Context, msgs []provider.Message, opts provider.Options) (string, error)
}

// New creates a preference extractor.
func New(router ChatRouter) *Extractor {
	return &Extractor{router: router}
}

// Extract asks the model for a preference delta. Provider unavailability
// surfaces as an error; the caller treats it as a collaborator failure and
// the conversation continues without the delta.
func (e *Extractor) Extract(ctx context.Context, text string) (Delta, error) {
	msgs := []provider.Message{
		{Role: provider.RoleSystem, Content: systemPrompt},
		{Role: provider.RoleUser, Content: text},
	}

	raw, err := e.router.ChatCompletion(ctx, msgs, provider.Options{
		Temperature: 0.1,
		MaxTokens:   512,
		JSONOutput:  true,
	})
	if err != nil {
		return Delta{}, fmt.Errorf("extracting preferences: %w", err)
	}

	var d Delta
	if err := json.Unmarshal([]byte(stripFences(raw)), &d); err != nil {
		return Delta{}, fmt.Errorf("parsing extraction response: %w", err)
	}
	return d, nil
}

// stripFences removes a markdown code fence some models wrap JSON in.
func stripFences(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```json")
		s = strings.TrimPrefix(s, "```")
		s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	}
	return strings.TrimSpace(s)
}
