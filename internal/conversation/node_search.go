package conversation

import (
	"context"
	"fmt"
	"strings"

	"github.com/garagem-ai/garagem/internal/inventory"
)

const maxRecommendations = 5

// handleSearch turns the profile into search criteria and queries the
// inventory. Zero results produce concrete broadening suggestions and leave
// the recommendation list empty; hits are stored and presented.
func (e *Engine) handleSearch(ctx context.Context, st *State, _ string) (nodeResult, error) {
	if st.Profile == nil {
		// Can only happen with hand-edited state; restart the quiz.
		st.GraphState.CurrentStep = 0
		return nodeResult{reply: msgGreeting, next: NodeDiscovery, progressed: true}, nil
	}

	criteria := criteriaFromProfile(st.Profile)
	results, err := e.search.Search(ctx, criteria)
	if err != nil {
		return nodeResult{}, fmt.Errorf("searching inventory: %w", err)
	}

	if len(results) == 0 {
		st.Recommendations = nil
		return nodeResult{
			reply:      broadenMessage(st.Profile),
			next:       NodeFollowUp,
			progressed: true,
		}, nil
	}

	if len(results) > maxRecommendations {
		results = results[:maxRecommendations]
	}
	st.Recommendations = results
	return nodeResult{
		reply:      recommendationMessage(st.Profile, results),
		next:       NodeRecommendation,
		progressed: true,
	}, nil
}

func criteriaFromProfile(p *Profile) inventory.Criteria {
	return inventory.Criteria{
		BudgetMin:    p.BudgetMin,
		BudgetMax:    p.BudgetMax,
		BodyTypes:    p.Preferences.BodyTypes,
		Brands:       p.Preferences.Brands,
		FuelType:     p.Preferences.FuelType,
		Transmission: p.Preferences.Transmission,
		Limit:        maxRecommendations,
	}
}

// broadenMessage proposes concrete, profile-derived ways to widen the
// search when nothing matched.
func broadenMessage(p *Profile) string {
	var b strings.Builder
	b.WriteString("Não encontrei carros que combinem com tudo o que você pediu. 😕 ")
	b.WriteString("Algumas ideias para ampliar a busca:\n")

	n := 1
	if p.BudgetMax > 0 {
		fmt.Fprintf(&b, "%d. Aumentar o orçamento para até %s\n",
			n, formatBRL(p.BudgetMax*(1+budgetFlexibility)))
		n++
	}
	if len(p.Preferences.BodyTypes) > 0 {
		fmt.Fprintf(&b, "%d. Considerar outras carrocerias além de %s\n",
			n, strings.Join(p.Preferences.BodyTypes, " e "))
		n++
	}
	if len(p.Preferences.Brands) > 0 {
		fmt.Fprintf(&b, "%d. Abrir para outras marcas além de %s\n",
			n, strings.Join(p.Preferences.Brands, " e "))
		n++
	}
	if n == 1 {
		b.WriteString("1. Me contar mais detalhes do que você procura\n")
	}
	b.WriteString("Quer ajustar algum desses pontos?")
	return b.String()
}

func recommendationMessage(p *Profile, vehicles []inventory.Vehicle) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s, encontrei %d opções que combinam com o que você procura:\n",
		p.CustomerName, len(vehicles))
	for i, v := range vehicles {
		fmt.Fprintf(&b, "%d. %s - %s", i+1, v.Label(), formatBRL(v.Price))
		if v.Mileage > 0 {
			fmt.Fprintf(&b, " (%d km)", v.Mileage)
		}
		b.WriteString("\n")
	}
	b.WriteString("Alguma delas chamou sua atenção?")
	return b.String()
}
