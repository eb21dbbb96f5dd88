package conversation

import (
	"time"

	"github.com/garagem-ai/garagem/internal/extractor"
	"github.com/garagem-ai/garagem/internal/inventory"
)

// NodeID identifies one node of the conversation graph. Values are stored
// in the persisted state, so they are stable strings, not iota.
type NodeID string

const (
	NodeGreeting       NodeID = "greeting"
	NodeDiscovery      NodeID = "discovery"
	NodeSearch         NodeID = "search"
	NodeRecommendation NodeID = "recommendation"
	NodeFollowUp       NodeID = "follow_up"
	NodeHandoff        NodeID = "handoff"
	NodeClosed         NodeID = "closed"
)

// GraphState is the state machine's own bookkeeping. NodeHistory records the
// transitions taken, newest last, capped so the persisted state stays small.
type GraphState struct {
	CurrentNode  NodeID   `json:"current_node"`
	PreviousNode NodeID   `json:"previous_node,omitempty"`
	NodeHistory  []NodeID `json:"node_history,omitempty"`
	CurrentStep  int      `json:"current_step"`
	ErrorCount   int      `json:"error_count"`
	LoopCount    int      `json:"loop_count"`
}

// Quiz holds the discovery questionnaire progress. Answers are keyed by
// field name (customerName, budget, usage, bodyType).
type Quiz struct {
	Answers map[string]string `json:"answers"`
}

// Profile is the consolidated customer preference record built once the
// mandatory quiz answers are in. The budget band carries a fixed 20%
// flexibility in both directions.
type Profile struct {
	CustomerName string                `json:"customer_name"`
	Budget       float64               `json:"budget"`
	BudgetMin    float64               `json:"budget_min"`
	BudgetMax    float64               `json:"budget_max"`
	Preferences  extractor.Preferences `json:"preferences"`
}

// State is everything the pipeline knows about one conversation. It is
// persisted as a whole per turn; last write wins.
type State struct {
	Identity        string              `json:"identity"`
	GraphState      GraphState          `json:"graph_state"`
	Quiz            Quiz                `json:"quiz"`
	Profile         *Profile            `json:"profile,omitempty"`
	Recommendations []inventory.Vehicle `json:"recommendations,omitempty"`
	Flags           Flags               `json:"flags"`
	CreatedAt       time.Time           `json:"created_at"`
	UpdatedAt       time.Time           `json:"updated_at"`
}

// NewState creates a fresh conversation for an identity.
func NewState(identity string) *State {
	now := time.Now().UTC()
	return &State{
		Identity:   identity,
		GraphState: GraphState{CurrentNode: NodeGreeting},
		Quiz:       Quiz{Answers: make(map[string]string)},
		Flags:      make(Flags),
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

// Reset clears quiz, profile, recommendations and graph bookkeeping back to
// initial values. Flags survive a reset: a captured lead stays captured.
func (s *State) Reset() {
	s.GraphState = GraphState{CurrentNode: NodeGreeting}
	s.Quiz = Quiz{Answers: make(map[string]string)}
	s.Profile = nil
	s.Recommendations = nil
}

// Renew replaces the state with a brand-new conversation for the same
// identity. Unlike Reset, nothing survives, write-once flags included.
func (s *State) Renew() {
	*s = *NewState(s.Identity)
}

// Clone returns a deep copy of the state. The engine snapshots a state
// before running a turn so a blocked reply can roll the turn back.
func (s *State) Clone() *State {
	cp := *s
	cp.GraphState.NodeHistory = append([]NodeID(nil), s.GraphState.NodeHistory...)
	cp.Quiz.Answers = make(map[string]string, len(s.Quiz.Answers))
	for k, v := range s.Quiz.Answers {
		cp.Quiz.Answers[k] = v
	}
	if s.Profile != nil {
		p := *s.Profile
		p.Preferences.BodyTypes = append([]string(nil), s.Profile.Preferences.BodyTypes...)
		p.Preferences.Brands = append([]string(nil), s.Profile.Preferences.Brands...)
		p.Preferences.Features = append([]string(nil), s.Profile.Preferences.Features...)
		cp.Profile = &p
	}
	cp.Recommendations = append([]inventory.Vehicle(nil), s.Recommendations...)
	cp.Flags = make(Flags, len(s.Flags))
	for name := range s.Flags {
		cp.Flags[name] = true
	}
	return &cp
}
