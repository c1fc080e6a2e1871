// Package webspeech bridges the assistant engine to a browser running the
// Web Speech API. The browser connects over a websocket and relays
// recognition events upstream; the server sends capture, synthesis,
// navigation, and form-prefill commands downstream as JSON messages.
//
// A Bridge implements [platform.Platform] and also acts as the engine's
// navigator, transfer-prefill, and notice sink, so a single websocket client
// carries the entire interaction loop.
package webspeech

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"

	"github.com/dhvanibank/dhvani/internal/intent"
	"github.com/dhvanibank/dhvani/internal/observe"
	"github.com/dhvanibank/dhvani/pkg/platform"
)

// writeTimeout bounds every outbound websocket write.
const writeTimeout = 5 * time.Second

// captureBuffer sizes each capture's event channel. Events beyond the buffer
// block the read loop, which in turn applies backpressure to the client.
const captureBuffer = 8

// Option is a functional option for configuring the Bridge.
type Option func(*Bridge)

// WithMetrics attaches metric instruments for connection tracking.
func WithMetrics(m *observe.Metrics) Option {
	return func(b *Bridge) {
		b.metrics = m
	}
}

// WithOriginPatterns sets the allowed websocket origin patterns. Default
// accepts only same-origin requests.
func WithOriginPatterns(patterns ...string) Option {
	return func(b *Bridge) {
		b.originPatterns = patterns
	}
}

// Bridge is a websocket endpoint carrying the speech protocol for at most one
// browser client at a time. A new connection replaces the previous one; all
// captures bound to the old connection end immediately.
type Bridge struct {
	metrics        *observe.Metrics
	originPatterns []string

	mu       sync.Mutex
	conn     *websocket.Conn
	writeMu  sync.Mutex
	voices   []platform.Voice
	changed  chan struct{}
	captures map[uint64]*capture
	nextID   uint64
}

// NewBridge creates a Bridge with no client attached. Until a client
// connects, Start returns [platform.ErrUnsupported] and Speak drops the
// utterance.
func NewBridge(opts ...Option) *Bridge {
	b := &Bridge{
		changed:  make(chan struct{}),
		captures: make(map[uint64]*capture),
	}
	for _, o := range opts {
		o(b)
	}
	return b
}

// Recognizer returns the bridge's capture capability. Never nil: capability
// presence is decided per Start call based on whether a client is attached.
func (b *Bridge) Recognizer() platform.Recognizer { return (*recognizer)(b) }

// Synthesizer returns the bridge's synthesis capability.
func (b *Bridge) Synthesizer() platform.Synthesizer { return (*synthesizer)(b) }

// ServeHTTP upgrades the request to a websocket and serves the speech
// protocol until the client disconnects.
func (b *Bridge) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: b.originPatterns,
	})
	if err != nil {
		slog.Warn("websocket accept failed", "remote", r.RemoteAddr, "err", err)
		return
	}
	b.attach(conn)
	slog.Info("speech client connected", "remote", r.RemoteAddr)
	if b.metrics != nil {
		b.metrics.ActiveBridges.Add(r.Context(), 1)
		defer b.metrics.ActiveBridges.Add(context.Background(), -1)
	}

	b.readLoop(r.Context(), conn)

	b.detach(conn)
	conn.Close(websocket.StatusNormalClosure, "done")
	slog.Info("speech client disconnected", "remote", r.RemoteAddr)
}

// attach installs conn as the active client, displacing any previous one.
func (b *Bridge) attach(conn *websocket.Conn) {
	b.mu.Lock()
	old := b.conn
	b.conn = conn
	b.failCapturesLocked(errors.New("webspeech: client replaced"))
	b.mu.Unlock()

	if old != nil {
		old.Close(websocket.StatusPolicyViolation, "replaced by new client")
	}
}

// detach clears conn if it is still the active client and ends its captures.
func (b *Bridge) detach(conn *websocket.Conn) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.conn != conn {
		return
	}
	b.conn = nil
	b.failCapturesLocked(errors.New("webspeech: client disconnected"))
}

// failCapturesLocked ends every open capture. The caller holds b.mu.
func (b *Bridge) failCapturesLocked(err error) {
	for id, c := range b.captures {
		c.push(platform.Event{Kind: platform.EventError, Err: err})
		c.close()
		delete(b.captures, id)
	}
}

// readLoop decodes inbound messages until the connection fails.
func (b *Bridge) readLoop(ctx context.Context, conn *websocket.Conn) {
	for {
		var msg inbound
		if err := wsjson.Read(ctx, conn, &msg); err != nil {
			return
		}
		b.dispatch(msg)
	}
}

// dispatch routes one inbound message.
func (b *Bridge) dispatch(msg inbound) {
	switch msg.Type {
	case msgVoices:
		b.setVoices(msg.Voices)

	case msgReady:
		b.captureEvent(msg.ID, platform.Event{Kind: platform.EventReady}, false)

	case msgTranscript:
		b.captureEvent(msg.ID, platform.Event{Kind: platform.EventTranscript, Transcript: msg.Text}, true)

	case msgError:
		b.captureEvent(msg.ID, platform.Event{
			Kind: platform.EventError,
			Err:  fmt.Errorf("webspeech: %s", msg.Message),
		}, true)

	case msgEnded:
		b.captureEvent(msg.ID, platform.Event{Kind: platform.EventEnded}, true)

	default:
		slog.Debug("unknown speech message", "type", msg.Type)
	}
}

// captureEvent delivers an event to the capture with the given ID. Terminal
// events also close and remove the capture. Events for unknown IDs (already
// stopped captures) are dropped.
func (b *Bridge) captureEvent(id uint64, ev platform.Event, terminal bool) {
	b.mu.Lock()
	c, ok := b.captures[id]
	if ok && terminal {
		delete(b.captures, id)
	}
	b.mu.Unlock()
	if !ok {
		return
	}
	c.push(ev)
	if terminal {
		c.close()
	}
}

// setVoices replaces the voice list and wakes every VoicesChanged waiter.
func (b *Bridge) setVoices(voices []platform.Voice) {
	b.mu.Lock()
	b.voices = voices
	close(b.changed)
	b.changed = make(chan struct{})
	b.mu.Unlock()
	slog.Debug("voice list updated", "count", len(voices))
}

// send writes one outbound message to the active connection. Writes are
// serialized; a write failure is returned but the connection teardown is left
// to the read loop.
func (b *Bridge) send(msg outbound) error {
	b.mu.Lock()
	conn := b.conn
	b.mu.Unlock()
	if conn == nil {
		return platform.ErrUnsupported
	}

	b.writeMu.Lock()
	defer b.writeMu.Unlock()
	ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
	defer cancel()
	if err := wsjson.Write(ctx, conn, msg); err != nil {
		return fmt.Errorf("webspeech: send %s: %w", msg.Type, err)
	}
	return nil
}

// Navigate sends a navigation command to the client. Implements the engine's
// navigator collaborator.
func (b *Bridge) Navigate(target string) {
	if err := b.send(outbound{Type: msgNavigate, Target: target}); err != nil {
		slog.Warn("navigate send failed", "target", target, "err", err)
	}
}

// PrefillTransfer sends extracted transfer parameters to the client so the
// send-money form can pre-populate.
func (b *Bridge) PrefillTransfer(cmd intent.TransferCommand) {
	if err := b.send(outbound{
		Type:      msgPrefillTransfer,
		Amount:    cmd.Amount,
		AmountRaw: cmd.AmountRaw,
		Recipient: cmd.RecipientName,
		Account:   cmd.RecipientAccount,
	}); err != nil {
		slog.Warn("prefill send failed", "err", err)
	}
}

// Notify sends short status text for the client to display.
func (b *Bridge) Notify(text string) {
	if err := b.send(outbound{Type: msgNotice, Text: text}); err != nil {
		slog.Warn("notice send failed", "err", err)
	}
}

// ---- recognizer ----

// recognizer adapts Bridge to [platform.Recognizer].
type recognizer Bridge

// Start opens a capture on the connected client. Returns
// [platform.ErrUnsupported] when no client is attached.
func (r *recognizer) Start(ctx context.Context, languageTag string) (platform.Capture, error) {
	b := (*Bridge)(r)

	b.mu.Lock()
	if b.conn == nil {
		b.mu.Unlock()
		return nil, platform.ErrUnsupported
	}
	b.nextID++
	c := &capture{
		id:     b.nextID,
		bridge: b,
		events: make(chan platform.Event, captureBuffer),
	}
	b.captures[c.id] = c
	b.mu.Unlock()

	if err := b.send(outbound{Type: msgStart, ID: c.id, Lang: languageTag}); err != nil {
		b.mu.Lock()
		delete(b.captures, c.id)
		b.mu.Unlock()
		c.close()
		return nil, err
	}
	return c, nil
}

// ---- synthesizer ----

// synthesizer adapts Bridge to [platform.Synthesizer].
type synthesizer Bridge

func (s *synthesizer) Voices() []platform.Voice {
	b := (*Bridge)(s)
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]platform.Voice, len(b.voices))
	copy(out, b.voices)
	return out
}

func (s *synthesizer) VoicesChanged() <-chan struct{} {
	b := (*Bridge)(s)
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.changed
}

// Speak forwards the utterance to the client's speech synthesis.
func (s *synthesizer) Speak(u platform.Utterance) error {
	return (*Bridge)(s).send(outbound{
		Type:  msgSpeak,
		Text:  u.Text,
		Lang:  u.LanguageTag,
		Voice: u.VoiceName,
	})
}

// Cancel discards any in-progress client-side utterance.
func (s *synthesizer) Cancel() {
	b := (*Bridge)(s)
	if err := b.send(outbound{Type: msgCancelSpeech}); err != nil && !errors.Is(err, platform.ErrUnsupported) {
		slog.Warn("cancel send failed", "err", err)
	}
}

// ---- capture ----

// capture is one client-side recognition attempt.
type capture struct {
	id     uint64
	bridge *Bridge
	events chan platform.Event

	mu     sync.Mutex
	closed bool
}

func (c *capture) Events() <-chan platform.Event { return c.events }

// Stop tells the client to abort recognition and closes the event stream.
// Idempotent.
func (c *capture) Stop() error {
	b := c.bridge
	b.mu.Lock()
	_, open := b.captures[c.id]
	delete(b.captures, c.id)
	b.mu.Unlock()

	if !open {
		return nil
	}
	err := b.send(outbound{Type: msgStop, ID: c.id})
	c.close()
	if errors.Is(err, platform.ErrUnsupported) {
		// Client already gone, nothing left to abort.
		return nil
	}
	return err
}

// push delivers an event unless the capture is already closed.
func (c *capture) push(ev platform.Event) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.events <- ev
}

func (c *capture) close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.closed {
		c.closed = true
		close(c.events)
	}
}
