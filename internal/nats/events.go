package nats

import "time"

// FetchTimeout is the default timeout for batch fetching messages from consumers.
const FetchTimeout = 2 * time.Second

// Stream names.
const (
	StreamMessages = "GARAGEM_MESSAGES"
	StreamLeads    = "GARAGEM_LEADS"
	StreamEvents   = "GARAGEM_EVENTS"
)

// Subject constants.
const (
	SubjectInboundMessage  = "garagem.messages.inbound"
	SubjectOutboundMessage = "garagem.messages.outbound"
	SubjectLeadCaptured    = "garagem.leads.captured"
	SubjectAuditEvent      = "garagem.events.audit"
)

// InboundMessage is published when a customer message arrives on any channel
// (webhook or XMPP) and consumed by the dispatcher.
type InboundMessage struct {
	ID         string    `json:"id"`
	Identity   string    `json:"identity"`
	Channel    string    `json:"channel"` // "webhook" or "xmpp"
	ReplyTo    string    `json:"reply_to,omitempty"`
	Body       string    `json:"body"`
	ReceivedAt time.Time `json:"received_at"`
}

// OutboundMessage is published to send a reply back through the channel the
// customer used.
type OutboundMessage struct {
	ID        string `json:"id"`
	Identity  string `json:"identity"`
	Channel   string `json:"channel"`
	ReplyTo   string `json:"reply_to,omitempty"`
	Body      string `json:"body"`
	InReplyTo string `json:"in_reply_to,omitempty"`
}

// LeadEvent is published when the conversation engine captures a qualified
// purchase intent. The sales team's tooling consumes the leads stream.
type LeadEvent struct {
	Identity     string    `json:"identity"`
	CustomerName string    `json:"customer_name"`
	Vehicle      string    `json:"vehicle"`
	VehicleID    string    `json:"vehicle_id,omitempty"`
	Budget       float64   `json:"budget"`
	Confidence   float64   `json:"confidence"`
	CapturedAt   time.Time `json:"captured_at"`
}

// AuditEvent is published for compliance logging (privacy requests, blocked
// messages, handoffs).
type AuditEvent struct {
	Identity  string    `json:"identity"`
	EventType string    `json:"event_type"`
	Severity  string    `json:"severity"` // info, warn, error
	Details   string    `json:"details"`
	Timestamp time.Time `json:"timestamp"`
}
