// Package mock provides fake platform capabilities for testing the
// assistant engine without a browser attached. Captures are driven manually
// by the test via the Emit helpers.
package mock

import (
	"context"
	"sync"

	"github.com/dhvanibank/dhvani/pkg/platform"
)

// Platform bundles a mock recognizer and synthesizer. Leave a field nil to
// simulate a host without that capability.
type Platform struct {
	Rec   *Recognizer
	Synth *Synthesizer
}

func (p *Platform) Recognizer() platform.Recognizer {
	if p.Rec == nil {
		return nil
	}
	return p.Rec
}

func (p *Platform) Synthesizer() platform.Synthesizer {
	if p.Synth == nil {
		return nil
	}
	return p.Synth
}

// Recognizer records Start calls and hands out manually-driven captures.
type Recognizer struct {
	mu sync.Mutex

	// StartErr, when set, is returned by every Start call.
	StartErr error

	// Captures holds every capture created, in Start order.
	Captures []*Capture

	// StartLangs records the language tag of each Start call.
	StartLangs []string
}

// Start opens a new mock capture. The test drives it with the Emit helpers.
func (r *Recognizer) Start(_ context.Context, languageTag string) (platform.Capture, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.StartErr != nil {
		return nil, r.StartErr
	}
	c := &Capture{events: make(chan platform.Event, 8)}
	r.Captures = append(r.Captures, c)
	r.StartLangs = append(r.StartLangs, languageTag)
	return c, nil
}

// Len returns the number of captures started so far.
func (r *Recognizer) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.Captures)
}

// Langs returns a copy of the language tags passed to Start, in order.
func (r *Recognizer) Langs() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.StartLangs...)
}

// Last returns the most recently started capture, or nil.
func (r *Recognizer) Last() *Capture {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.Captures) == 0 {
		return nil
	}
	return r.Captures[len(r.Captures)-1]
}

// Capture is a manually-driven capture session.
type Capture struct {
	mu     sync.Mutex
	events chan platform.Event
	closed bool

	// StopCalls counts Stop invocations.
	StopCalls int
}

func (c *Capture) Events() <-chan platform.Event { return c.events }

// Stop marks the capture stopped and closes the event stream. Idempotent.
func (c *Capture) Stop() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.StopCalls++
	c.closeLocked()
	return nil
}

// EmitReady reports the capture as listening.
func (c *Capture) EmitReady() {
	c.send(platform.Event{Kind: platform.EventReady})
}

// EmitTranscript delivers a final transcript and ends the capture.
func (c *Capture) EmitTranscript(text string) {
	c.send(platform.Event{Kind: platform.EventTranscript, Transcript: text})
	c.end()
}

// EmitError delivers a capture failure and ends the capture.
func (c *Capture) EmitError(err error) {
	c.send(platform.Event{Kind: platform.EventError, Err: err})
	c.end()
}

// EmitEnded ends the capture without a transcript.
func (c *Capture) EmitEnded() {
	c.send(platform.Event{Kind: platform.EventEnded})
	c.end()
}

func (c *Capture) send(ev platform.Event) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.events <- ev
}

func (c *Capture) end() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closeLocked()
}

func (c *Capture) closeLocked() {
	if !c.closed {
		c.closed = true
		close(c.events)
	}
}

// Synthesizer records spoken utterances and lets tests control the voice
// list, including late voice arrival via SetVoices.
type Synthesizer struct {
	mu      sync.Mutex
	voices  []platform.Voice
	changed chan struct{}

	// SpeakErr, when set, is returned by every Speak call.
	SpeakErr error

	// Spoken holds every utterance passed to Speak, in order.
	Spoken []platform.Utterance

	// CancelCalls counts Cancel invocations.
	CancelCalls int
}

// NewSynthesizer returns a Synthesizer advertising the given voices.
func NewSynthesizer(voices ...platform.Voice) *Synthesizer {
	return &Synthesizer{
		voices:  voices,
		changed: make(chan struct{}),
	}
}

func (s *Synthesizer) Voices() []platform.Voice {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]platform.Voice, len(s.voices))
	copy(out, s.voices)
	return out
}

func (s *Synthesizer) VoicesChanged() <-chan struct{} {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.changed
}

// SetVoices replaces the voice list and signals every VoicesChanged waiter.
func (s *Synthesizer) SetVoices(voices ...platform.Voice) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.voices = voices
	close(s.changed)
	s.changed = make(chan struct{})
}

func (s *Synthesizer) Speak(u platform.Utterance) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.SpeakErr != nil {
		return s.SpeakErr
	}
	s.Spoken = append(s.Spoken, u)
	return nil
}

func (s *Synthesizer) Cancel() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.CancelCalls++
}

// SpokenTexts returns just the text of each recorded utterance.
func (s *Synthesizer) SpokenTexts() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.Spoken))
	for i, u := range s.Spoken {
		out[i] = u.Text
	}
	return out
}
