package conversation

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/garagem-ai/garagem/internal/config"
	"github.com/garagem-ai/garagem/internal/guardrails"
	"github.com/garagem-ai/garagem/internal/metrics"
	"github.com/garagem-ai/garagem/internal/provider"
)

// maxChainedHops bounds how many nodes one inbound message can traverse
// (e.g. discovery completing and chaining straight into search).
const maxChainedHops = 3

// maxNodeHistory caps the transition log kept in the persisted state.
const maxNodeHistory = 20

// Engine is the conversation state machine. One Handle call processes one
// inbound message end to end: guardrails in, interceptors, node dispatch,
// guardrails out, persistence. Callers must serialize Handle per identity.
type Engine struct {
	store      Store
	transcript Transcript
	search     Searcher
	leads      LeadSink
	privacy    Privacy
	guard      *guardrails.Service
	router     ChatRouter
	extract    PreferenceExtractor

	handlers          map[NodeID]handlerFunc
	errorCeiling      int
	loopCeiling       int
	interestThreshold float64
	transcriptLimit   int
	now               func() time.Time
}

// EngineDeps bundles the engine's collaborators.
type EngineDeps struct {
	Store      Store
	Transcript Transcript
	Search     Searcher
	Leads      LeadSink
	Privacy    Privacy
	Guard      *guardrails.Service
	Router     ChatRouter
	Extractor  PreferenceExtractor
}

// NewEngine creates the state machine with its collaborators and ceilings.
func NewEngine(deps EngineDeps, cfg config.PipelineConfig) *Engine {
	e := &Engine{
		store:             deps.Store,
		transcript:        deps.Transcript,
		search:            deps.Search,
		leads:             deps.Leads,
		privacy:           deps.Privacy,
		guard:             deps.Guard,
		router:            deps.Router,
		extract:           deps.Extractor,
		errorCeiling:      cfg.ErrorCeiling,
		loopCeiling:       cfg.LoopCeiling,
		interestThreshold: cfg.InterestThreshold,
		transcriptLimit:   cfg.TranscriptMaxMsgs,
		now:               time.Now,
	}
	e.handlers = e.buildHandlers()
	return e
}

// Handle processes one inbound message and returns the reply text. It never
// returns a raw error to the caller as the reply; every failure path ends
// in a pre-authored message.
func (e *Engine) Handle(ctx context.Context, identity, raw string) string {
	verdict := e.guard.ValidateInput(identity, raw)
	if !verdict.Allowed {
		metrics.MessagesProcessedTotal.WithLabelValues("blocked_input").Inc()
		return verdict.Reason
	}
	msg := verdict.Sanitized
	lowered := strings.ToLower(msg)

	st, err := e.store.Load(ctx, identity)
	if err != nil {
		slog.Error("loading conversation state failed", "identity", identity, "error", err)
		metrics.MessagesProcessedTotal.WithLabelValues("store_error").Inc()
		return msgDegraded
	}
	if st == nil {
		st = NewState(identity)
	}

	snapshot := st.Clone()
	reply, persist := e.process(ctx, st, msg, lowered)

	outVerdict := e.guard.ValidateOutput(reply)
	if !outVerdict.Allowed {
		// A blocked reply never advances the conversation: restore the
		// pre-turn state and skip persistence. Write-once flags stay
		// raised, the side effects they guard already ran.
		flags := st.Flags
		*st = *snapshot
		st.Flags = flags
		metrics.MessagesProcessedTotal.WithLabelValues("blocked_output").Inc()
		return guardrails.MsgResponseBlocked
	}

	if persist {
		st.UpdatedAt = e.now().UTC()
		if err := e.store.Save(ctx, st); err != nil {
			slog.Error("saving conversation state failed", "identity", identity, "error", err)
		}
		e.appendTranscript(ctx, identity, msg, reply)
	}

	metrics.MessagesProcessedTotal.WithLabelValues("handled").Inc()
	return reply
}

// process runs interceptors and node dispatch. The second return reports
// whether the state should be persisted (data deletion must not re-save).
func (e *Engine) process(ctx context.Context, st *State, msg, lowered string) (string, bool) {
	switch Intercept(lowered) {
	case InterceptDeleteData:
		return e.deleteData(ctx, st.Identity), false
	case InterceptExportData:
		return e.exportData(ctx, st.Identity), true
	case InterceptExit:
		st.GraphState.CurrentNode = NodeClosed
		return msgFarewell, true
	case InterceptRestart:
		if st.GraphState.CurrentNode == NodeClosed {
			st.Renew()
		} else {
			st.Reset()
		}
		return msgRestart + e.dispatch(ctx, st, msg), true
	case InterceptGreeting:
		switch {
		case st.GraphState.CurrentNode == NodeClosed:
			// Any message after close opens a brand-new conversation.
			st.Renew()
		case st.GraphState.CurrentNode != NodeGreeting:
			// A greeting mid-flow is an implicit restart.
			st.Reset()
		}
	}
	return e.dispatch(ctx, st, msg), true
}

// dispatch runs the current node's handler, following chained transitions
// until a reply is produced, and enforces the error and loop ceilings.
func (e *Engine) dispatch(ctx context.Context, st *State, msg string) string {
	for hop := 0; hop < maxChainedHops; hop++ {
		current := st.GraphState.CurrentNode
		handler, ok := e.handlers[current]
		if !ok {
			slog.Error("unknown conversation node", "node", current, "identity", st.Identity)
			st.Reset()
			handler = e.handlers[NodeGreeting]
			current = NodeGreeting
		}

		res, err := handler(ctx, st, msg)
		if err != nil {
			st.GraphState.ErrorCount++
			slog.Warn("node handler failed",
				"node", current, "identity", st.Identity,
				"error", err, "error_count", st.GraphState.ErrorCount)
			if st.GraphState.ErrorCount >= e.errorCeiling {
				return e.forceHandoff(st, "error_ceiling")
			}
			return msgDegraded
		}

		if res.next == current && !res.progressed {
			st.GraphState.LoopCount++
			if st.GraphState.LoopCount >= e.loopCeiling {
				return e.forceHandoff(st, "loop_ceiling")
			}
		} else {
			st.GraphState.LoopCount = 0
		}
		if res.next != current {
			st.GraphState.PreviousNode = current
			st.GraphState.NodeHistory = append(st.GraphState.NodeHistory, res.next)
			if len(st.GraphState.NodeHistory) > maxNodeHistory {
				st.GraphState.NodeHistory = st.GraphState.NodeHistory[len(st.GraphState.NodeHistory)-maxNodeHistory:]
			}
		}
		st.GraphState.CurrentNode = res.next

		if res.reply != "" {
			return res.reply
		}
	}

	slog.Error("node chain exceeded hop limit", "identity", st.Identity,
		"node", st.GraphState.CurrentNode)
	return msgDegraded
}

func (e *Engine) forceHandoff(st *State, cause string) string {
	st.GraphState.PreviousNode = st.GraphState.CurrentNode
	st.GraphState.CurrentNode = NodeHandoff
	st.GraphState.NodeHistory = append(st.GraphState.NodeHistory, NodeHandoff)
	metrics.HandoffsTotal.WithLabelValues(cause).Inc()
	slog.Info("conversation handed off", "identity", st.Identity, "cause", cause)
	return msgHandoff
}

func (e *Engine) deleteData(ctx context.Context, identity string) string {
	if err := e.privacy.DeleteData(ctx, identity); err != nil {
		slog.Error("data deletion failed", "identity", identity, "error", err)
		return msgDataDeleteFailed
	}
	return msgDataDeleted
}

func (e *Engine) exportData(ctx context.Context, identity string) string {
	export, err := e.privacy.ExportData(ctx, identity)
	if err != nil {
		slog.Error("data export failed", "identity", identity, "error", err)
		return msgDataExportFailed
	}
	return export
}

func (e *Engine) appendTranscript(ctx context.Context, identity, userMsg, reply string) {
	if e.transcript == nil {
		return
	}
	if err := e.transcript.Append(ctx, identity, provider.RoleUser, userMsg); err != nil {
		slog.Warn("appending user message to transcript failed", "identity", identity, "error", err)
	}
	if err := e.transcript.Append(ctx, identity, provider.RoleAssistant, reply); err != nil {
		slog.Warn("appending reply to transcript failed", "identity", identity, "error", err)
	}
}
