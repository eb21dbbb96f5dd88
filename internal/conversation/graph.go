package conversation

import "context"

// nodeResult is a handler's output: the reply to send (empty means "no
// reply yet, continue at next"), the node to transition to, and whether the
// turn made forward progress. Edges are computed here, not declared in a
// static graph.
type nodeResult struct {
	reply      string
	next       NodeID
	progressed bool
}

type handlerFunc func(ctx context.Context, st *State, msg string) (nodeResult, error)

// handlers builds the dispatch table keyed by NodeID.
func (e *Engine) buildHandlers() map[NodeID]handlerFunc {
	return map[NodeID]handlerFunc{
		NodeGreeting:       e.handleGreeting,
		NodeDiscovery:      e.handleDiscovery,
		NodeSearch:         e.handleSearch,
		NodeRecommendation: e.handleFollowUp,
		NodeFollowUp:       e.handleFollowUp,
		NodeHandoff:        e.handleHandoff,
		NodeClosed:         e.handleClosed,
	}
}

func (e *Engine) handleGreeting(_ context.Context, st *State, _ string) (nodeResult, error) {
	st.GraphState.CurrentStep = 0
	return nodeResult{reply: msgGreeting, next: NodeDiscovery, progressed: true}, nil
}

func (e *Engine) handleHandoff(_ context.Context, _ *State, _ string) (nodeResult, error) {
	return nodeResult{reply: msgHandoff, next: NodeHandoff, progressed: true}, nil
}

// handleClosed renews the conversation: a closed one is over, so any new
// message from the same identity starts fresh and falls through to greeting.
func (e *Engine) handleClosed(_ context.Context, st *State, _ string) (nodeResult, error) {
	st.Renew()
	return nodeResult{next: NodeGreeting, progressed: true}, nil
}
