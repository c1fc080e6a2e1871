package assistant

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/dhvanibank/dhvani/internal/intent"
	"github.com/dhvanibank/dhvani/pkg/platform"
)

// speakFeedback voices one confirmation or failure message. It issues exactly
// one Speak call per invocation no matter how voice enumeration behaves: if
// the platform has not reported voices yet it waits for one change
// notification or the configured timeout, then speaks with whatever is
// available. A host without a synthesizer stays silent.
//
// Only immutable engine fields are read here, so callers may hold e.mu or not.
func (e *Engine) speakFeedback(text, romanized string, loc intent.Locale) {
	synth := e.platform.Synthesizer()
	if synth == nil {
		return
	}

	voices := e.awaitVoices(synth)
	utt := buildUtterance(voices, text, romanized, loc)

	synth.Cancel()
	if err := synth.Speak(utt); err != nil {
		slog.Warn("speech synthesis failed", "lang", utt.LanguageTag, "err", err)
		e.recordSynthesis(false)
		return
	}
	e.recordSynthesis(true)
}

// awaitVoices returns the synthesizer's voice list, waiting at most
// e.voiceWait for platforms that enumerate voices asynchronously. The changed
// channel is taken before the first read so a list that fills in between the
// two cannot be missed.
func (e *Engine) awaitVoices(synth platform.Synthesizer) []platform.Voice {
	changed := synth.VoicesChanged()
	if voices := synth.Voices(); len(voices) > 0 {
		return voices
	}
	select {
	case <-changed:
	case <-time.After(e.voiceWait):
	}
	return synth.Voices()
}

// buildUtterance resolves the voice for a locale. When an under-resourced
// locale has no matching voice and a romanized transliteration exists, the
// romanized text is spoken through an English voice instead of feeding native
// script to a voice that cannot pronounce it. Other locales keep their native
// text even when only a foreign voice is installed: the transliterations on
// the route table are Kannada and must never stand in for a Hindi or English
// confirmation.
func buildUtterance(voices []platform.Voice, text, romanized string, loc intent.Locale) platform.Utterance {
	if v, ok := voiceForLocale(voices, loc); ok {
		return platform.Utterance{Text: text, LanguageTag: loc.VoiceTag(), VoiceName: v.Name}
	}

	if romanized != "" && loc.UnderResourced() {
		u := platform.Utterance{Text: romanized, LanguageTag: intent.LocaleEnglish.VoiceTag()}
		if v, ok := voiceForLocale(voices, intent.LocaleEnglish); ok {
			u.VoiceName = v.Name
		}
		return u
	}

	// No voice matched and no transliteration available. Hand the native text
	// to the platform default and let it do its best.
	u := platform.Utterance{Text: text, LanguageTag: loc.VoiceTag()}
	if v, ok := defaultVoice(voices); ok {
		u.VoiceName = v.Name
	}
	return u
}

// voiceForLocale picks the best voice for a locale: an exact BCP-47 tag match
// first, then any voice whose language subtag matches.
func voiceForLocale(voices []platform.Voice, loc intent.Locale) (platform.Voice, bool) {
	tag := loc.VoiceTag()
	for _, v := range voices {
		if strings.EqualFold(normalizeTag(v.Lang), tag) {
			return v, true
		}
	}
	prefix := loc.LanguagePrefix()
	for _, v := range voices {
		lang := strings.ToLower(normalizeTag(v.Lang))
		if lang == prefix || strings.HasPrefix(lang, prefix+"-") {
			return v, true
		}
	}
	return platform.Voice{}, false
}

// defaultVoice returns the platform's flagged default voice, or the first
// voice in the list.
func defaultVoice(voices []platform.Voice) (platform.Voice, bool) {
	for _, v := range voices {
		if v.Default {
			return v, true
		}
	}
	if len(voices) > 0 {
		return voices[0], true
	}
	return platform.Voice{}, false
}

// normalizeTag maps underscore-separated tags (en_US) to the hyphenated form
// some platforms report.
func normalizeTag(tag string) string {
	return strings.ReplaceAll(tag, "_", "-")
}

func (e *Engine) recordSynthesis(ok bool) {
	if e.metrics == nil {
		return
	}
	e.metrics.RecordSynthesis(context.Background(), ok)
}
