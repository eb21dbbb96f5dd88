package conversation

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"unicode"
)

// budgetFlexibility widens the budget into a band in both directions.
const budgetFlexibility = 0.20

type quizStep struct {
	field    string
	validate func(answer string) (string, bool)
	prompt   func(st *State, recorded string) string
	errMsg   string
}

var discoverySteps = []quizStep{
	{
		field:    "customerName",
		validate: validateName,
		prompt: func(_ *State, name string) string {
			return fmt.Sprintf(msgAskBudget, name)
		},
		errMsg: msgInvalidName,
	},
	{
		field:    "budget",
		validate: validateBudget,
		prompt: func(_ *State, _ string) string {
			return msgAskUsage
		},
		errMsg: msgInvalidBudget,
	},
	{
		field:    "usage",
		validate: validateUsage,
		prompt: func(_ *State, _ string) string {
			return msgAskBodyType
		},
		errMsg: msgInvalidUsage,
	},
	{
		field:    "bodyType",
		validate: validateBodyType,
		prompt:   nil, // last step, discovery completes
		errMsg:   msgInvalidBodyType,
	},
}

// handleDiscovery validates the answer to the current quiz step. Invalid
// answers re-prompt without advancing; the final valid answer builds the
// profile and chains into search.
func (e *Engine) handleDiscovery(_ context.Context, st *State, msg string) (nodeResult, error) {
	step := st.GraphState.CurrentStep
	if step < 0 || step >= len(discoverySteps) {
		// Persisted state from an older flow shape; restart the quiz.
		st.GraphState.CurrentStep = 0
		step = 0
	}
	qs := discoverySteps[step]

	value, ok := qs.validate(msg)
	if !ok {
		return nodeResult{reply: qs.errMsg, next: NodeDiscovery, progressed: false}, nil
	}

	st.Quiz.Answers[qs.field] = value
	st.GraphState.CurrentStep = step + 1

	if qs.prompt != nil {
		return nodeResult{
			reply:      qs.prompt(st, value),
			next:       NodeDiscovery,
			progressed: true,
		}, nil
	}

	st.Profile = buildProfile(st.Quiz)
	return nodeResult{next: NodeSearch, progressed: true}, nil
}

// buildProfile consolidates the quiz answers, deriving the budget band.
func buildProfile(q Quiz) *Profile {
	budget, _ := strconv.ParseFloat(q.Answers["budget"], 64)
	p := &Profile{
		CustomerName: q.Answers["customerName"],
		Budget:       budget,
		BudgetMin:    budget * (1 - budgetFlexibility),
		BudgetMax:    budget * (1 + budgetFlexibility),
	}
	p.Preferences.UsageType = q.Answers["usage"]
	if bt := q.Answers["bodyType"]; bt != "" {
		p.Preferences.BodyTypes = []string{bt}
	}
	return p
}

func validateName(answer string) (string, bool) {
	name := strings.TrimSpace(answer)
	if len([]rune(name)) < 2 || len([]rune(name)) > 60 {
		return "", false
	}
	hasLetter := false
	for _, r := range name {
		if unicode.IsLetter(r) {
			hasLetter = true
			break
		}
	}
	if !hasLetter {
		return "", false
	}
	return name, true
}

var budgetNumberPattern = regexp.MustCompile(`(\d{1,3}(?:\.\d{3})+|\d+(?:,\d+)?)\s*(mil|k)?`)

// validateBudget accepts "50000", "50.000", "R$ 50.000", "50 mil" and "50k".
func validateBudget(answer string) (string, bool) {
	lowered := strings.ToLower(answer)
	m := budgetNumberPattern.FindStringSubmatch(lowered)
	if m == nil {
		return "", false
	}

	num := strings.ReplaceAll(m[1], ".", "")
	num = strings.ReplaceAll(num, ",", ".")
	value, err := strconv.ParseFloat(num, 64)
	if err != nil {
		return "", false
	}
	if m[2] != "" {
		value *= 1000
	}
	if value < 1000 || value > 10_000_000 {
		return "", false
	}
	return strconv.FormatFloat(value, 'f', -1, 64), true
}

var usageKeywords = map[string]string{
	"cidade": "cidade", "urbano": "cidade", "city": "cidade",
	"estrada": "estrada", "viagem": "estrada", "viagens": "estrada", "highway": "estrada",
	"trabalho": "trabalho", "trabalhar": "trabalho", "work": "trabalho",
	"família": "familia", "familia": "familia", "family": "familia", "filhos": "familia",
	"misto": "misto", "tudo": "misto", "both": "misto",
}

func validateUsage(answer string) (string, bool) {
	return matchKeyword(answer, usageKeywords)
}

var bodyTypeKeywords = map[string]string{
	"hatch": "hatch", "hatchback": "hatch", "compacto": "hatch",
	"sedan": "sedan", "sedã": "sedan",
	"suv": "suv", "utilitário": "suv", "utilitario": "suv",
	"picape": "picape", "pickup": "picape", "caminhonete": "picape",
	"minivan": "minivan", "van": "minivan",
}

func validateBodyType(answer string) (string, bool) {
	return matchKeyword(answer, bodyTypeKeywords)
}

func matchKeyword(answer string, table map[string]string) (string, bool) {
	lowered := strings.ToLower(answer)
	for _, word := range strings.FieldsFunc(lowered, func(r rune) bool {
		return !unicode.IsLetter(r)
	}) {
		if canonical, ok := table[word]; ok {
			return canonical, true
		}
	}
	return "", false
}
