package conversation

import (
	"context"
	"fmt"
	"log/slog"
	"reflect"
	"strings"

	"github.com/garagem-ai/garagem/internal/extractor"
	"github.com/garagem-ai/garagem/internal/metrics"
	"github.com/garagem-ai/garagem/internal/provider"
)

// handleFollowUp serves both the recommendation and follow-up nodes: it
// watches for purchase interest, folds new preferences back into the
// profile, and otherwise answers free-form questions about the options.
func (e *Engine) handleFollowUp(ctx context.Context, st *State, msg string) (nodeResult, error) {
	lowered := strings.ToLower(msg)

	if sig := DetectInterest(lowered); sig.Confidence >= e.interestThreshold && len(st.Recommendations) > 0 {
		return e.captureLead(ctx, st, sig)
	}

	// New preferences mid-conversation trigger a fresh search.
	if e.extract != nil {
		delta, err := e.extract.Extract(ctx, msg)
		if err != nil {
			slog.Debug("preference extraction unavailable", "error", err)
		} else if !delta.Empty() && st.Profile != nil {
			before := st.Profile.Preferences
			st.Profile.Preferences.Apply(delta)
			if delta.Budget != nil && *delta.Budget > 0 {
				st.Profile.Budget = *delta.Budget
				st.Profile.BudgetMin = *delta.Budget * (1 - budgetFlexibility)
				st.Profile.BudgetMax = *delta.Budget * (1 + budgetFlexibility)
				return nodeResult{next: NodeSearch, progressed: true}, nil
			}
			if !preferencesEqual(before, st.Profile.Preferences) {
				return nodeResult{next: NodeSearch, progressed: true}, nil
			}
		}
	}

	reply, err := e.freeFormReply(ctx, st, msg)
	if err != nil {
		return nodeResult{}, err
	}
	return nodeResult{reply: reply, next: NodeFollowUp, progressed: true}, nil
}

// captureLead invokes the lead channel at most once per conversation. The
// write-once flag is raised before delivery, so even a failed delivery can
// never be retried into a duplicate.
func (e *Engine) captureLead(ctx context.Context, st *State, sig InterestSignal) (nodeResult, error) {
	if st.Flags.Has(FlagLeadCaptured) {
		return nodeResult{reply: msgLeadAlreadyCaptured, next: NodeFollowUp, progressed: true}, nil
	}
	st.Flags.Set(FlagLeadCaptured)
	// The raised flag is persisted before delivery so that no later failure
	// in this turn can lose it and open the door to a duplicate capture.
	st.UpdatedAt = e.now().UTC()
	if err := e.store.Save(ctx, st); err != nil {
		return nodeResult{}, fmt.Errorf("persisting lead capture flag: %w", err)
	}

	idx := sig.VehicleIndex
	if idx < 0 || idx >= len(st.Recommendations) {
		idx = 0
	}
	vehicle := st.Recommendations[idx]

	lead := Lead{
		Identity:   st.Identity,
		Vehicle:    vehicle.Label(),
		VehicleID:  vehicle.ID.String(),
		Confidence: sig.Confidence,
		CapturedAt: e.now(),
	}
	if st.Profile != nil {
		lead.CustomerName = st.Profile.CustomerName
		lead.Budget = st.Profile.Budget
	}

	if err := e.leads.Deliver(ctx, lead); err != nil {
		return nodeResult{}, fmt.Errorf("delivering lead: %w", err)
	}

	metrics.LeadsCapturedTotal.Inc()
	slog.Info("lead captured", "identity", st.Identity, "vehicle", lead.Vehicle, "confidence", sig.Confidence)
	return nodeResult{
		reply:      fmt.Sprintf(msgLeadCaptured, vehicle.Label()),
		next:       NodeFollowUp,
		progressed: true,
	}, nil
}

const assistantPersona = "Você é um assistente de vendas de uma loja de carros chamada Garagem. " +
	"Seja simpático, direto e responda em português brasileiro. " +
	"Responda dúvidas sobre os carros apresentados e ajude o cliente a decidir. " +
	"Nunca invente dados de carros que não estão na lista."

func (e *Engine) freeFormReply(ctx context.Context, st *State, msg string) (string, error) {
	msgs := []provider.Message{{Role: provider.RoleSystem, Content: e.personaContext(st)}}

	if e.transcript != nil {
		recent, err := e.transcript.Recent(ctx, st.Identity, e.transcriptLimit)
		if err != nil {
			slog.Warn("loading transcript failed", "identity", st.Identity, "error", err)
		}
		for _, entry := range recent {
			msgs = append(msgs, provider.Message{Role: entry.Role, Content: entry.Content})
		}
	}
	msgs = append(msgs, provider.Message{Role: provider.RoleUser, Content: msg})

	// Free-form chat has the offline tier behind it; this only errors on
	// context cancellation.
	return e.router.ChatCompletion(ctx, msgs, provider.Options{Temperature: 0.7, MaxTokens: 1024})
}

func (e *Engine) personaContext(st *State) string {
	var b strings.Builder
	b.WriteString(assistantPersona)
	if len(st.Recommendations) > 0 {
		b.WriteString("\nCarros apresentados ao cliente:\n")
		for i, v := range st.Recommendations {
			fmt.Fprintf(&b, "%d. %s - %s\n", i+1, v.Label(), formatBRL(v.Price))
		}
	}
	return b.String()
}

func preferencesEqual(a, b extractor.Preferences) bool {
	return reflect.DeepEqual(a, b)
}
