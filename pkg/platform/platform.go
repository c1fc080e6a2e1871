// Package platform defines the capability-provider abstraction between the
// Dhvani assistant engine and whatever actually captures and synthesizes
// speech. The engine never touches a concrete device or browser API; it is
// constructed against [Recognizer] and [Synthesizer] and can therefore run
// against the production websocket bridge (pkg/platform/webspeech) or a fake
// provider in tests.
//
// Capture is event-driven: an open [Capture] emits a serialized stream of
// [Event] values (ready, transcript, error, ended) on a single channel, so
// ordering between lifecycle signals and results is preserved by
// construction. Implementations must be safe for concurrent use.
package platform

import (
	"context"
	"errors"
)

// ErrUnsupported is returned when the platform lacks a capability the caller
// asked for (no speech capture, or capture requested while no device is
// attached).
var ErrUnsupported = errors.New("platform: capability not supported")

// EventKind discriminates the values emitted on a capture's event channel.
type EventKind int

const (
	// EventReady signals the capture device has begun listening.
	EventReady EventKind = iota + 1

	// EventTranscript carries a final transcript. The capture is done after
	// emitting it.
	EventTranscript

	// EventError carries a recoverable capture failure.
	EventError

	// EventEnded signals the capture finished without a transcript (user
	// silence, device closed).
	EventEnded
)

// String returns a short label for logging.
func (k EventKind) String() string {
	switch k {
	case EventReady:
		return "ready"
	case EventTranscript:
		return "transcript"
	case EventError:
		return "error"
	case EventEnded:
		return "ended"
	default:
		return "unknown"
	}
}

// Event is one capture lifecycle notification.
type Event struct {
	Kind EventKind

	// Transcript is the raw utterance text. Set only for EventTranscript.
	Transcript string

	// Err describes the failure. Set only for EventError.
	Err error
}

// Capture is one live speech-to-text attempt bound to a language. The
// channel returned by Events is closed when the capture ends for any reason.
//
// Stop must be idempotent and safe to call in any state; stopping a capture
// that already finished is a silent no-op.
type Capture interface {
	Events() <-chan Event
	Stop() error
}

// Recognizer opens one-shot capture sessions. A nil Recognizer on a
// [Platform] means the host has no speech capture capability at all.
type Recognizer interface {
	// Start opens a capture for the given BCP-47 language tag. The capture
	// is not yet listening when Start returns; it reports EventReady once the
	// underlying device confirms. Returns [ErrUnsupported] when no capture
	// device is currently attached.
	Start(ctx context.Context, languageTag string) (Capture, error)
}

// Voice describes one synthesis voice reported by the platform.
type Voice struct {
	Name    string `json:"name"`
	Lang    string `json:"lang"`
	Default bool   `json:"default,omitempty"`
}

// Utterance is one synthesis request.
type Utterance struct {
	// Text is what to say.
	Text string

	// LanguageTag hints the synthesis language (BCP-47).
	LanguageTag string

	// VoiceName selects a specific platform voice. Empty lets the platform
	// pick its default for LanguageTag.
	VoiceName string
}

// Synthesizer speaks text through the platform's text-to-speech capability.
//
// Voice enumeration is asynchronous on some platforms: Voices may return an
// empty list right after construction and fill in later. VoicesChanged
// returns a channel that is closed when the list next changes; callers grab
// a fresh channel each time they need to wait.
type Synthesizer interface {
	Voices() []Voice
	VoicesChanged() <-chan struct{}

	// Speak queues the utterance. Implementations begin speaking as soon as
	// possible; any previously queued utterance keeps playing unless Cancel
	// is called first.
	Speak(u Utterance) error

	// Cancel discards any in-progress or queued utterance. Safe to call when
	// nothing is speaking.
	Cancel()
}

// Platform bundles the two capabilities a host exposes. Either accessor may
// return nil when the capability is absent; callers must treat a nil
// Recognizer as [ErrUnsupported] and a nil Synthesizer as "stay silent".
type Platform interface {
	Recognizer() Recognizer
	Synthesizer() Synthesizer
}
