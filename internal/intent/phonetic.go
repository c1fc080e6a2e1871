package intent

import (
	"strings"

	"github.com/antzucaro/matchr"
)

const (
	defaultPhoneticThreshold = 0.70
	defaultFuzzyThreshold    = 0.85
)

// PhoneticOption is a functional option for configuring a [PhoneticMatcher].
type PhoneticOption func(*PhoneticMatcher)

// WithPhoneticThreshold sets the minimum Jaro-Winkler score required for a
// phonetically-overlapping keyword to be accepted. Default: 0.70.
func WithPhoneticThreshold(threshold float64) PhoneticOption {
	return func(m *PhoneticMatcher) {
		m.phoneticThreshold = threshold
	}
}

// WithFuzzyThreshold sets the minimum Jaro-Winkler score required when no
// phonetic overlap exists and the matcher falls back to pure string
// similarity. Default: 0.85.
func WithFuzzyThreshold(threshold float64) PhoneticOption {
	return func(m *PhoneticMatcher) {
		m.fuzzyThreshold = threshold
	}
}

// PhoneticMatcher gives mangled transcripts a second chance against the
// route table. The hi-IN fallback recognizer frequently garbles romanized
// Kannada ("kaluhisi" heard as "kalu he see"); exact matching misses those,
// but Double Metaphone codes plus Jaro-Winkler ranking recover them.
//
// The algorithm runs in two stages per keyword: phonetic candidate filtering
// (any Double Metaphone code of an utterance token overlaps any code of a
// keyword token), then Jaro-Winkler ranking over the candidates. Keywords in
// non-Latin scripts produce no Metaphone codes and no meaningful similarity
// scores, so the matcher naturally only considers romanized vocabulary.
//
// Read-only after construction and safe for concurrent use.
type PhoneticMatcher struct {
	phoneticThreshold float64
	fuzzyThreshold    float64
}

// NewPhoneticMatcher returns a PhoneticMatcher configured with the supplied
// options.
func NewPhoneticMatcher(opts ...PhoneticOption) *PhoneticMatcher {
	m := &PhoneticMatcher{
		phoneticThreshold: defaultPhoneticThreshold,
		fuzzyThreshold:    defaultFuzzyThreshold,
	}
	for _, o := range opts {
		o(m)
	}
	return m
}

// Match scans the table for the keyword most phonetically similar to the
// utterance. Ties on score keep the earlier route, preserving the table's
// priority order. Returns a zero MatchResult when nothing clears the
// thresholds.
func (m *PhoneticMatcher) Match(t *Table, utterance string) MatchResult {
	norm := Normalize(utterance)
	if norm == "" {
		return MatchResult{}
	}
	tokens := strings.Fields(norm)
	inputCodes := codesForTokens(tokens)

	var (
		best         MatchResult
		bestScore    float64
		bestPhonetic bool
	)

	for i, patterns := range t.index {
		for _, kp := range patterns {
			kwTokens := strings.Fields(kp.text)
			phonetic := codesOverlap(inputCodes, codesForTokens(kwTokens))
			score := bestSimilarity(tokens, kwTokens, norm, kp.text)

			switch {
			case phonetic && score >= m.phoneticThreshold:
				if !bestPhonetic || score > bestScore {
					best = MatchResult{Route: &t.routes[i], Keyword: kp.text, Method: MethodPhonetic}
					bestScore = score
					bestPhonetic = true
				}
			case !phonetic && !bestPhonetic && score >= m.fuzzyThreshold && score > bestScore:
				best = MatchResult{Route: &t.routes[i], Keyword: kp.text, Method: MethodPhonetic}
				bestScore = score
			}
		}
	}
	return best
}

// codesForTokens returns the union of Double Metaphone codes for the tokens.
// Tokens outside the Latin script yield no codes and are skipped.
func codesForTokens(tokens []string) map[string]struct{} {
	codes := make(map[string]struct{}, len(tokens)*2)
	for _, tok := range tokens {
		p, s := matchr.DoubleMetaphone(tok)
		if p != "" {
			codes[p] = struct{}{}
		}
		if s != "" {
			codes[s] = struct{}{}
		}
	}
	return codes
}

// codesOverlap reports whether the two code sets share at least one code.
func codesOverlap(a, b map[string]struct{}) bool {
	if len(a) > len(b) {
		a, b = b, a
	}
	for code := range a {
		if _, ok := b[code]; ok {
			return true
		}
	}
	return false
}

// bestSimilarity computes the highest Jaro-Winkler score between utterance
// and keyword using three comparisons: the full strings, the space-stripped
// concatenations, and the best pairwise token score. The concatenated form
// handles recognizers that split one word into several ("kalu he see" vs
// "kaluhisi").
func bestSimilarity(inputTokens, kwTokens []string, inputFull, kwFull string) float64 {
	score := matchr.JaroWinkler(inputFull, kwFull, false)

	if len(inputTokens) > 1 || len(kwTokens) > 1 {
		concatIn := strings.Join(inputTokens, "")
		concatKw := strings.Join(kwTokens, "")
		if s := matchr.JaroWinkler(concatIn, concatKw, false); s > score {
			score = s
		}
	}

	for _, it := range inputTokens {
		for _, kt := range kwTokens {
			if s := matchr.JaroWinkler(it, kt, false); s > score {
				score = s
			}
		}
	}
	return score
}
