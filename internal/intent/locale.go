// Package intent implements the language-aware interpretation core of the
// Dhvani voice assistant: transcript normalization, the ordered route table
// with its precomputed keyword index, first-match intent resolution, transfer
// parameter extraction, and an optional phonetic second-chance matcher for
// romanized transcripts.
//
// Everything in this package is pure and synchronous — no I/O, no goroutines.
// A [Table] is immutable after construction and safe for concurrent use.
package intent

// Locale identifies one of the assistant's supported spoken/written languages.
type Locale string

const (
	LocaleEnglish Locale = "en"
	LocaleHindi   Locale = "hi"
	LocaleKannada Locale = "kn"
)

// Locales lists all supported locales in keyword evaluation order. The order
// matters: a route's normalized keyword index is flattened locale by locale
// in this sequence.
var Locales = []Locale{LocaleEnglish, LocaleHindi, LocaleKannada}

// IsValid reports whether l is a supported locale.
func (l Locale) IsValid() bool {
	switch l {
	case LocaleEnglish, LocaleHindi, LocaleKannada:
		return true
	}
	return false
}

// RecognitionTag returns the BCP-47 language tag handed to the speech
// recognizer for this locale.
func (l Locale) RecognitionTag() string {
	switch l {
	case LocaleHindi:
		return "hi-IN"
	case LocaleKannada:
		return "kn-IN"
	default:
		return "en-US"
	}
}

// VoiceTag returns the BCP-47 language tag used to select a synthesis voice.
// Recognition and voice tags happen to coincide for the current locales but
// are kept separate because platforms report them at different granularity.
func (l Locale) VoiceTag() string {
	return l.RecognitionTag()
}

// LanguagePrefix returns the bare language subtag ("en", "hi", "kn") used for
// prefix-matching against platform voice tags.
func (l Locale) LanguagePrefix() string {
	return string(l)
}

// UnderResourced reports whether platform text-to-speech coverage for this
// locale is known to be unreliable. Kannada voices are missing on most
// devices, which drives both the hi-IN fallback recognition pass and the
// romanized-text voice substitution.
func (l Locale) UnderResourced() bool {
	return l == LocaleKannada
}

// FallbackRecognitionTag returns the recognition tag for the secondary
// capture pass, or "" when this locale has no fallback. Hindi is
// linguistically close enough to transcribe romanized Kannada speech more
// reliably than the kn-IN model does.
func (l Locale) FallbackRecognitionTag() string {
	if l == LocaleKannada {
		return LocaleHindi.RecognitionTag()
	}
	return ""
}

// NotUnderstood returns the localized "command not recognized" message.
func (l Locale) NotUnderstood() string {
	switch l {
	case LocaleHindi:
		return "आदेश पहचाना नहीं गया। कृपया फिर से कहें।"
	case LocaleKannada:
		return "ಆಜ್ಞೆಯನ್ನು ಗುರುತಿಸಲಾಗಲಿಲ್ಲ. ದಯವಿಟ್ಟು ಮತ್ತೆ ಪ್ರಯತ್ನಿಸಿ."
	default:
		return "Command not recognized. Please try again."
	}
}

// NotUnderstoodRomanized returns a Latin transliteration of the
// "not recognized" message for locales whose native script would be
// unintelligible through a default voice. Empty for well-resourced locales.
func (l Locale) NotUnderstoodRomanized() string {
	if l == LocaleKannada {
		return "aagnyeyannu gurutisalagilla. dayavittu matte prayatnisiri"
	}
	return ""
}
