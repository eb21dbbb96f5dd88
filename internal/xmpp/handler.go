package xmpp

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"gosrc.io/xmpp"
	"gosrc.io/xmpp/stanza"

	inats "github.com/garagem-ai/garagem/internal/nats"
)

// Handler bridges XMPP stanzas to the message bus. Customers reach the bot
// through a gateway JID whose local part is their phone number, e.g.
// 551199990000@bot.garagem.local.
type Handler struct {
	publisher *inats.Publisher
	botJID    string
}

// NewHandler creates a new XMPP stanza handler. botJID is the From address
// used on replies and presence responses.
func NewHandler(publisher *inats.Publisher, botJID string) *Handler {
	return &Handler{publisher: publisher, botJID: botJID}
}

// HandleMessage processes incoming <message> stanzas and publishes them as
// inbound pipeline messages.
func (h *Handler) HandleMessage(s xmpp.Sender, p stanza.Packet) {
	msg, ok := p.(stanza.Message)
	if !ok {
		return
	}

	if msg.Body == "" {
		return
	}

	identity := IdentityFromJID(msg.From)
	if identity == "" {
		slog.Warn("XMPP message from JID without numeric local part", "from", msg.From)
		return
	}

	slog.Debug("XMPP message received",
		"from", msg.From,
		"identity", identity,
		"type", string(msg.Type),
	)

	inbound := inats.InboundMessage{
		ID:         uuid.New().String(),
		Identity:   identity,
		Channel:    "xmpp",
		ReplyTo:    msg.From,
		Body:       msg.Body,
		ReceivedAt: time.Now().UTC(),
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := h.publisher.PublishInboundMessage(ctx, inbound); err != nil {
		slog.Error("publishing inbound message", "error", err, "from", msg.From)
		h.sendError(s, msg.From, "Estamos com instabilidade no momento. Tente novamente em instantes.")
		return
	}
}

// HandlePresence processes incoming <presence> stanzas, auto-approving
// subscribe requests so customers can add the bot without friction.
func (h *Handler) HandlePresence(s xmpp.Sender, p stanza.Packet) {
	pres, ok := p.(stanza.Presence)
	if !ok {
		return
	}

	slog.Debug("XMPP presence received",
		"from", pres.From,
		"type", string(pres.Type),
	)

	if pres.Type == "subscribe" {
		reply := stanza.Presence{
			Attrs: stanza.Attrs{
				From: h.botJID,
				To:   pres.From,
				Type: "subscribed",
			},
		}
		if err := s.Send(reply); err != nil {
			slog.Error("sending presence subscribed reply", "error", err)
		}
	}
}

// HandleIQ processes incoming <iq> stanzas.
func (h *Handler) HandleIQ(_ xmpp.Sender, p stanza.Packet) {
	iq, ok := p.(*stanza.IQ)
	if !ok {
		return
	}
	slog.Debug("XMPP IQ received", "from", iq.From, "type", string(iq.Type))
}

// SendOutboundMessage delivers a pipeline reply as a <message> stanza. The
// destination is the ReplyTo JID recorded on the inbound message.
func (h *Handler) SendOutboundMessage(s xmpp.Sender, outbound inats.OutboundMessage) error {
	msg := stanza.Message{
		Attrs: stanza.Attrs{
			From: h.botJID,
			To:   outbound.ReplyTo,
			Type: "chat",
			Id:   outbound.ID,
		},
		Body: outbound.Body,
	}
	return s.Send(msg)
}

func (h *Handler) sendError(s xmpp.Sender, to, body string) {
	msg := stanza.Message{
		Attrs: stanza.Attrs{
			From: h.botJID,
			To:   to,
			Type: "chat",
		},
		Body: body,
	}
	if err := s.Send(msg); err != nil {
		slog.Error("sending error reply", "error", err, "to", to)
	}
}

// IdentityFromJID extracts the customer identity from a JID local part. The
// local part must be purely numeric (a phone number in E.164 digits); any
// resource suffix is ignored. Returns "" when the JID does not carry one.
func IdentityFromJID(jid string) string {
	bare := jid
	if i := strings.Index(bare, "/"); i >= 0 {
		bare = bare[:i]
	}
	local, _, found := strings.Cut(bare, "@")
	if !found || local == "" {
		return ""
	}
	for _, r := range local {
		if r < '0' || r > '9' {
			return ""
		}
	}
	return local
}
