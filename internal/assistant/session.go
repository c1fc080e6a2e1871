package assistant

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/dhvanibank/dhvani/pkg/platform"
)

// State is the engine's recognition lifecycle state.
type State int

const (
	StateIdle State = iota
	StateStarting
	StateListening
)

// String returns the lowercase state label used in logs and the status API.
func (s State) String() string {
	switch s {
	case StateStarting:
		return "starting"
	case StateListening:
		return "listening"
	default:
		return "idle"
	}
}

// sessionKind distinguishes the primary capture from the one-shot fallback
// capture spawned after an unmatched under-resourced transcript.
type sessionKind int

const (
	sessionPrimary sessionKind = iota
	sessionFallback
)

func (k sessionKind) String() string {
	if k == sessionFallback {
		return "fallback"
	}
	return "primary"
}

// session is the engine's single-owner capture slot. The generation number
// is the engine's defence against stale callbacks: every event is tagged
// with the generation of the session that produced it, and events whose
// generation no longer matches the live slot are dropped. Stopping,
// switching locale, or finishing a capture all bump the generation, so a
// transcript that arrives after stop() can never trigger a second dispatch
// cycle.
type session struct {
	gen       uint64
	kind      sessionKind
	capture   platform.Capture
	ctx       context.Context
	startedAt time.Time
}

// startCaptureLocked opens a capture on the recognizer and installs it as
// the current session. Any previous session must already be stopped. The
// caller holds e.mu.
func (e *Engine) startCaptureLocked(ctx context.Context, languageTag string, kind sessionKind) error {
	rec := e.platform.Recognizer()
	if rec == nil {
		return platform.ErrUnsupported
	}

	e.gen++
	capture, err := rec.Start(ctx, languageTag)
	if err != nil {
		e.state = StateIdle
		e.current = nil
		return fmt.Errorf("assistant: start %s capture (%s): %w", kind, languageTag, err)
	}

	s := &session{
		gen:       e.gen,
		kind:      kind,
		capture:   capture,
		ctx:       ctx,
		startedAt: time.Now(),
	}
	e.current = s
	e.state = StateStarting

	slog.Debug("capture started", "kind", kind.String(), "lang", languageTag, "gen", s.gen)

	go e.pump(s)
	return nil
}

// pump forwards capture events into the engine until the event stream
// closes. It runs once per capture; serialization happens inside
// handleEvent under the engine mutex.
func (e *Engine) pump(s *session) {
	for ev := range s.capture.Events() {
		e.handleEvent(s, ev)
	}
	e.handleStreamClosed(s)
}

// stopLocked discards the current session, if any. Idempotent: calling it
// with no live session is a silent no-op. The caller holds e.mu.
func (e *Engine) stopLocked() {
	if e.current == nil {
		e.state = StateIdle
		return
	}
	if err := e.current.capture.Stop(); err != nil {
		slog.Warn("capture stop error", "gen", e.current.gen, "err", err)
	}
	e.finishSessionLocked()
}

// finishSessionLocked clears the session slot and invalidates outstanding
// callbacks by bumping the generation. The caller holds e.mu.
func (e *Engine) finishSessionLocked() {
	e.current = nil
	e.gen++
	e.state = StateIdle
}

// handleEvent processes one capture event. Events from a superseded session
// generation are dropped without side effects.
func (e *Engine) handleEvent(s *session, ev platform.Event) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.current == nil || e.current.gen != s.gen {
		slog.Debug("dropping stale capture event", "kind", ev.Kind.String(), "gen", s.gen)
		return
	}

	switch ev.Kind {
	case platform.EventReady:
		e.state = StateListening

	case platform.EventTranscript:
		e.stats.RecordRecognition(time.Since(s.startedAt))
		e.recordRecognition(time.Since(s.startedAt), s.kind)
		e.finishSessionLocked()
		e.handleTranscriptLocked(s.kind, s.ctx, ev.Transcript)

	case platform.EventError:
		slog.Warn("recognition error", "kind", s.kind.String(), "err", ev.Err)
		e.stats.IncrErrors()
		e.recordError(s.kind)
		e.finishSessionLocked()
		e.notify("Voice recognition error. Please try again.")

	case platform.EventEnded:
		e.finishSessionLocked()
	}
}

// handleStreamClosed treats an event stream that closed without a terminal
// event as an ended capture.
func (e *Engine) handleStreamClosed(s *session) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.current != nil && e.current.gen == s.gen {
		e.finishSessionLocked()
	}
}
