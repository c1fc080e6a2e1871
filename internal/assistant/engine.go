// Package assistant implements the Dhvani voice command engine: it owns the
// recognition session lifecycle, runs transcripts through the intent
// matcher, dispatches navigation and transfer-prefill notifications, and
// speaks localized confirmations through the platform synthesizer.
//
// The engine is event-driven. All mutable state is guarded by a single
// mutex and every capture callback is tagged with a session generation, so
// work triggered by one utterance runs to completion before the next event
// is processed and stale callbacks are discarded rather than replayed.
package assistant

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/dhvanibank/dhvani/internal/intent"
	"github.com/dhvanibank/dhvani/internal/observe"
	"github.com/dhvanibank/dhvani/pkg/platform"
)

const (
	// defaultSpeakDelay leaves the navigation transition enough time that it
	// does not truncate the start of the confirmation utterance.
	defaultSpeakDelay = 150 * time.Millisecond

	// defaultVoiceWait bounds how long the feedback path waits for platforms
	// that enumerate synthesis voices asynchronously.
	defaultVoiceWait = 300 * time.Millisecond

	statsWindow = 100
)

// Navigator receives the navigation decision for a matched route. Execution
// of the navigation itself is outside the engine.
type Navigator interface {
	Navigate(target string)
}

// TransferPrefillFunc receives the parameters extracted from a spoken
// transfer command so the send-money form can pre-populate and open its
// confirmation step. The listener may be absent.
type TransferPrefillFunc func(intent.TransferCommand)

// Notices receives short user-visible status text (the toast equivalent).
type Notices interface {
	Notify(text string)
}

// Config tunes the engine.
type Config struct {
	// Locale is the initial interpretation locale.
	Locale intent.Locale

	// Routes overrides the built-in route table. Nil uses
	// [intent.DefaultRoutes].
	Routes []intent.Route

	// SpeakDelay postpones the spoken confirmation after navigating.
	// Zero uses the default; negative speaks inline (used by tests).
	SpeakDelay time.Duration

	// VoiceWait bounds the wait for asynchronous voice enumeration.
	// Zero uses the default.
	VoiceWait time.Duration

	// PhoneticAssist enables the second-chance phonetic keyword match on
	// transcripts that failed exact matching on their terminal attempt.
	PhoneticAssist bool
}

// Deps holds the engine's collaborators. Platform and Navigator are
// required; the rest may be nil.
type Deps struct {
	Platform  platform.Platform
	Navigator Navigator
	Prefill   TransferPrefillFunc
	Notices   Notices
	Metrics   *observe.Metrics
}

// Engine interprets voice transcripts into navigation decisions. Safe for
// concurrent use; see the package comment for the serialization model.
type Engine struct {
	platform platform.Platform
	nav      Navigator
	prefill  TransferPrefillFunc
	notices  Notices
	metrics  *observe.Metrics

	table    *intent.Table
	phonetic *intent.PhoneticMatcher

	speakDelay time.Duration
	voiceWait  time.Duration
	stats      *Stats

	mu                sync.Mutex
	locale            intent.Locale
	state             State
	current           *session
	gen               uint64
	fallbackTried     bool
	unsupportedWarned bool

	lastTranscript string
	lastTarget     string
	lastKeyword    string
}

// New creates an Engine. The route table and its keyword index are built
// once here and never mutated afterwards.
func New(cfg Config, deps Deps) *Engine {
	routes := cfg.Routes
	if routes == nil {
		routes = intent.DefaultRoutes()
	}
	locale := cfg.Locale
	if !locale.IsValid() {
		locale = intent.LocaleEnglish
	}
	speakDelay := cfg.SpeakDelay
	switch {
	case speakDelay == 0:
		speakDelay = defaultSpeakDelay
	case speakDelay < 0:
		speakDelay = 0
	}
	voiceWait := cfg.VoiceWait
	if voiceWait <= 0 {
		voiceWait = defaultVoiceWait
	}

	e := &Engine{
		platform:   deps.Platform,
		nav:        deps.Navigator,
		prefill:    deps.Prefill,
		notices:    deps.Notices,
		metrics:    deps.Metrics,
		table:      intent.NewTable(routes),
		speakDelay: speakDelay,
		voiceWait:  voiceWait,
		stats:      NewStats(statsWindow),
		locale:     locale,
	}
	if cfg.PhoneticAssist {
		e.phonetic = intent.NewPhoneticMatcher()
	}
	return e
}

// SetLocale switches the interpretation locale. Any live capture was bound
// to the old locale's recognition model and is discarded; stale-language
// sessions are never reused.
func (e *Engine) SetLocale(l intent.Locale) {
	if !l.IsValid() {
		return
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if l == e.locale {
		return
	}
	e.locale = l
	e.stopLocked()
	slog.Info("locale changed", "locale", string(l))
}

// Locale returns the current interpretation locale.
func (e *Engine) Locale() intent.Locale {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.locale
}

// StartListening begins a primary capture for the current locale. A capture
// already in flight is stopped first, so at most one session captures audio
// at a time. Returns [platform.ErrUnsupported] when the host has no speech
// capture capability; the failure is surfaced to the user once.
func (e *Engine) StartListening(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.platform.Recognizer() == nil {
		if !e.unsupportedWarned {
			e.unsupportedWarned = true
			e.notifyLocked("Voice recognition is not supported on this device")
		}
		return platform.ErrUnsupported
	}

	e.stopLocked()
	e.fallbackTried = false

	if err := e.startCaptureLocked(ctx, e.locale.RecognitionTag(), sessionPrimary); err != nil {
		e.notifyLocked("Could not start voice recognition")
		return err
	}
	return nil
}

// StopListening discards any in-flight capture. Safe to call at any time
// and in any state; a transcript that arrives after StopListening returns
// is ignored.
func (e *Engine) StopListening() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.stopLocked()
}

// Voices returns the synthesis voices the platform currently reports. Empty
// until the platform has enumerated them.
func (e *Engine) Voices() []platform.Voice {
	synth := e.platform.Synthesizer()
	if synth == nil {
		return nil
	}
	return synth.Voices()
}

// Status is a point-in-time view of the engine for debug display.
type Status struct {
	State          string        `json:"state"`
	Locale         intent.Locale `json:"locale"`
	LastTranscript string        `json:"last_transcript,omitempty"`
	LastTarget     string        `json:"last_target,omitempty"`
	LastKeyword    string        `json:"last_keyword,omitempty"`
	Stats          StatsSnapshot `json:"stats"`
}

// Status returns the engine's current status snapshot.
func (e *Engine) Status() Status {
	e.mu.Lock()
	defer e.mu.Unlock()
	return Status{
		State:          e.state.String(),
		Locale:         e.locale,
		LastTranscript: e.lastTranscript,
		LastTarget:     e.lastTarget,
		LastKeyword:    e.lastKeyword,
		Stats:          e.stats.Snapshot(),
	}
}

// handleTranscriptLocked runs the interpretation pipeline for one raw
// transcript. The caller holds e.mu and has already returned the session
// slot to idle.
func (e *Engine) handleTranscriptLocked(kind sessionKind, ctx context.Context, raw string) {
	e.lastTranscript = raw
	slog.Info("transcript received", "kind", kind.String(), "locale", string(e.locale), "text", raw)

	res := e.table.MatchCommand(raw)

	// Terminal attempts get the phonetic second chance: the fallback pass
	// for the under-resourced locale, the primary pass everywhere else.
	terminal := kind == sessionFallback || !e.locale.UnderResourced() || e.fallbackTried
	if !res.Matched() && terminal && e.phonetic != nil {
		res = e.phonetic.Match(e.table, raw)
	}

	if res.Matched() {
		e.dispatchLocked(raw, res)
		return
	}

	// Primary miss under the under-resourced locale: one secondary capture
	// with the related high-resource recognition model, never more than one
	// per listening cycle.
	if kind == sessionPrimary && e.locale.UnderResourced() && !e.fallbackTried {
		e.fallbackTried = true
		e.stats.IncrFallbacks()
		e.recordFallback()
		if err := e.startCaptureLocked(ctx, e.locale.FallbackRecognitionTag(), sessionFallback); err != nil {
			slog.Warn("fallback capture failed", "err", err)
			e.failLocked()
		}
		return
	}

	e.failLocked()
}

// dispatchLocked turns a match into the outward-facing actions: cancel any
// speech in progress, navigate, notify the transfer form when applicable,
// and schedule the spoken confirmation.
func (e *Engine) dispatchLocked(raw string, res intent.MatchResult) {
	route := res.Route
	e.lastTarget = route.Target
	e.lastKeyword = res.Keyword
	e.stats.IncrMatched()
	e.recordMatch(route.Target, res.Method)

	slog.Info("intent matched",
		"target", route.Target,
		"keyword", res.Keyword,
		"method", res.Method,
		"locale", string(e.locale),
	)

	if synth := e.platform.Synthesizer(); synth != nil {
		synth.Cancel()
	}

	if e.nav != nil {
		e.nav.Navigate(route.Target)
	}

	if route.Target == intent.TargetSendMoney && e.prefill != nil {
		e.prefill(intent.ParseTransfer(raw))
	}

	e.scheduleSpeak(route.Message(e.locale), route.Romanized, e.locale)
}

// failLocked ends an utterance cycle that matched nothing: one localized
// "not understood" utterance, no navigation, no notification.
func (e *Engine) failLocked() {
	e.lastTarget = ""
	e.lastKeyword = ""
	e.stats.IncrNoMatch()
	e.recordNoMatch()
	slog.Info("no intent matched", "locale", string(e.locale))
	e.scheduleSpeak(e.locale.NotUnderstood(), e.locale.NotUnderstoodRomanized(), e.locale)
}

// scheduleSpeak defers the utterance by the configured delay so the
// navigation transition does not cut it off. The synthesis path can block on
// voice enumeration and the synthesizer write, so it must run off the engine
// mutex; a zero delay speaks inline, which keeps tests deterministic.
func (e *Engine) scheduleSpeak(text, romanized string, loc intent.Locale) {
	if e.speakDelay <= 0 {
		e.speakFeedback(text, romanized, loc)
		return
	}
	time.AfterFunc(e.speakDelay, func() {
		e.speakFeedback(text, romanized, loc)
	})
}

// notify forwards user-visible status text to the notices collaborator.
func (e *Engine) notify(text string) {
	if e.notices != nil {
		e.notices.Notify(text)
	}
}

// notifyLocked is notify for callers already holding e.mu. The collaborator
// is called with the lock held; implementations must not call back into the
// engine.
func (e *Engine) notifyLocked(text string) {
	if e.notices != nil {
		e.notices.Notify(text)
	}
}

// --- metrics helpers (no-ops when metrics are not configured) ---

func (e *Engine) recordMatch(target, method string) {
	if e.metrics == nil {
		return
	}
	e.metrics.RecordIntentMatch(context.Background(), target, method, string(e.locale))
}

func (e *Engine) recordNoMatch() {
	if e.metrics == nil {
		return
	}
	e.metrics.RecordIntentNoMatch(context.Background(), string(e.locale))
}

func (e *Engine) recordFallback() {
	if e.metrics == nil {
		return
	}
	e.metrics.RecordFallbackAttempt(context.Background(), string(e.locale))
}

func (e *Engine) recordRecognition(d time.Duration, kind sessionKind) {
	if e.metrics == nil {
		return
	}
	e.metrics.RecordRecognitionDuration(context.Background(), d, kind.String(), string(e.locale))
}

func (e *Engine) recordError(kind sessionKind) {
	if e.metrics == nil {
		return
	}
	e.metrics.RecordRecognitionError(context.Background(), kind.String())
}
