package dispatch

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go/jetstream"

	inats "github.com/garagem-ai/garagem/internal/nats"
)

// Handler processes one inbound message and returns the reply text.
type Handler interface {
	Handle(ctx context.Context, identity, message string) string
}

// OutboundPublisher sends replies back through the message bus.
type OutboundPublisher interface {
	PublishOutboundMessage(ctx context.Context, msg inats.OutboundMessage) error
}

// ConsumerSource creates durable JetStream consumers.
type ConsumerSource interface {
	EnsureConsumer(ctx context.Context, stream, name, filterSubject string) (jetstream.Consumer, error)
}

// mailbox is one identity's serialized message queue. A single goroutine
// drains it, so a conversation's turns are always processed in arrival
// order with no concurrent state mutation.
type mailbox struct {
	ch       chan inboundWork
	lastUsed time.Time
}

type inboundWork struct {
	msg inats.InboundMessage
	ack func()
}

// Dispatcher consumes inbound messages from NATS and fans them out to
// per-identity mailboxes. Conversation processing is concurrent across
// identities but strictly sequential within one.
type Dispatcher struct {
	handler     Handler
	publisher   OutboundPublisher
	consumerMgr ConsumerSource
	bufferSize  int
	idleTTL     time.Duration

	mu        sync.Mutex
	mailboxes map[string]*mailbox
	wg        sync.WaitGroup
}

// NewDispatcher creates the per-identity dispatcher.
func NewDispatcher(handler Handler, publisher OutboundPublisher, consumerMgr ConsumerSource, bufferSize int, idleTTL time.Duration) *Dispatcher {
	if bufferSize <= 0 {
		bufferSize = 16
	}
	if idleTTL <= 0 {
		idleTTL = 10 * time.Minute
	}
	return &Dispatcher{
		handler:     handler,
		publisher:   publisher,
		consumerMgr: consumerMgr,
		bufferSize:  bufferSize,
		idleTTL:     idleTTL,
		mailboxes:   make(map[string]*mailbox),
	}
}

// Start runs the consume and idle-reaper loops until the context is done.
func (d *Dispatcher) Start(ctx context.Context) error {
	consumer, err := d.consumerMgr.EnsureConsumer(ctx, inats.StreamMessages,
		"message-dispatcher", inats.SubjectInboundMessage)
	if err != nil {
		return err
	}

	slog.Info("message dispatcher started", "buffer_size", d.bufferSize, "idle_ttl", d.idleTTL)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		d.consume(ctx, consumer)
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		d.reapIdle(ctx)
	}()

	wg.Wait()
	d.drain()
	return nil
}

func (d *Dispatcher) consume(ctx context.Context, consumer jetstream.Consumer) {
	for {
		msgs, err := consumer.Fetch(10, jetstream.FetchMaxWait(inats.FetchTimeout))
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			slog.Debug("dispatcher: fetching messages", "error", err)
			continue
		}

		for msg := range msgs.Messages() {
			d.route(ctx, msg)
		}

		if ctx.Err() != nil {
			return
		}
	}
}

func (d *Dispatcher) route(ctx context.Context, msg jetstream.Msg) {
	var inbound inats.InboundMessage
	if err := json.Unmarshal(msg.Data(), &inbound); err != nil {
		slog.Error("dispatcher: unmarshaling inbound message", "error", err)
		_ = msg.Nak()
		return
	}
	if inbound.Identity == "" {
		slog.Warn("dispatcher: inbound message without identity", "id", inbound.ID)
		_ = msg.Ack()
		return
	}

	work := inboundWork{msg: inbound, ack: func() { _ = msg.Ack() }}
	d.Submit(ctx, work)
}

// Submit enqueues work on the identity's mailbox, creating it (and its
// worker goroutine) on first use. A full mailbox drops the message rather
// than blocking the consume loop; JetStream will redeliver the un-acked
// message later.
func (d *Dispatcher) Submit(ctx context.Context, work inboundWork) {
	d.mu.Lock()
	mb, ok := d.mailboxes[work.msg.Identity]
	if !ok {
		mb = &mailbox{ch: make(chan inboundWork, d.bufferSize)}
		d.mailboxes[work.msg.Identity] = mb
		d.wg.Add(1)
		go d.run(ctx, work.msg.Identity, mb)
	}
	mb.lastUsed = time.Now()

	// The send stays under the mutex so the idle reaper can never close the
	// channel between lookup and send. It cannot block: it is non-blocking.
	select {
	case mb.ch <- work:
	default:
		slog.Warn("dispatcher: mailbox full, leaving message for redelivery",
			"identity", work.msg.Identity)
	}
	d.mu.Unlock()
}

func (d *Dispatcher) run(ctx context.Context, identity string, mb *mailbox) {
	defer d.wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case work, ok := <-mb.ch:
			if !ok {
				return
			}
			d.handleOne(ctx, work)
		}
	}
}

func (d *Dispatcher) handleOne(ctx context.Context, work inboundWork) {
	in := work.msg
	reply := d.handler.Handle(ctx, in.Identity, in.Body)

	out := inats.OutboundMessage{
		ID:        uuid.NewString(),
		Identity:  in.Identity,
		Channel:   in.Channel,
		ReplyTo:   in.ReplyTo,
		Body:      reply,
		InReplyTo: in.ID,
	}
	if err := d.publisher.PublishOutboundMessage(ctx, out); err != nil {
		slog.Error("dispatcher: publishing reply", "identity", in.Identity, "error", err)
	}
	if work.ack != nil {
		work.ack()
	}
}

// reapIdle closes mailboxes that have not seen traffic for idleTTL, so the
// goroutine count tracks active conversations, not historical ones.
func (d *Dispatcher) reapIdle(ctx context.Context) {
	ticker := time.NewTicker(d.idleTTL / 2)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			d.mu.Lock()
			for identity, mb := range d.mailboxes {
				if now.Sub(mb.lastUsed) >= d.idleTTL && len(mb.ch) == 0 {
					close(mb.ch)
					delete(d.mailboxes, identity)
				}
			}
			d.mu.Unlock()
		}
	}
}

func (d *Dispatcher) drain() {
	d.mu.Lock()
	for identity, mb := range d.mailboxes {
		close(mb.ch)
		delete(d.mailboxes, identity)
	}
	d.mu.Unlock()
	d.wg.Wait()
}

// ActiveMailboxes reports how many identities currently have a live worker.
func (d *Dispatcher) ActiveMailboxes() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.mailboxes)
}
