package provider

import "context"

// Chat roles.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is one chat turn sent to a model provider.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Options tunes a single generation call.
type Options struct {
	Temperature float64
	MaxTokens   int

	// JSONOutput asks the provider for a bare JSON object. Calls with
	// JSONOutput set have no offline substitute: structured extraction
	// cannot be faked with canned text.
	JSONOutput bool
}

// Provider is implemented by each model backend. Generate is stateless and
// may fail or time out; the router owns retries and failover.
type Provider interface {
	Name() string
	Priority() int
	Generate(ctx context.Context, msgs []Message, opts Options) (string, error)
}
