package intent

import (
	"regexp"
	"strings"
)

// Match methods, well-known values for [MatchResult.Method].
const (
	MethodExact    = "exact"
	MethodPhonetic = "phonetic"
)

// MatchResult is the outcome of matching one utterance against the table.
// A nil Route means no intent was recognized — that is a normal terminal
// outcome, not an error.
type MatchResult struct {
	Route   *Route
	Keyword string
	Method  string
}

// Matched reports whether a route was found.
func (r MatchResult) Matched() bool { return r.Route != nil }

// politenessPrefixes are leading courtesy phrases stripped before matching.
var politenessPrefixes = []string{
	"please ",
	"could you ",
	"can you ",
}

// courtesyVerbs removes imperative navigation verbs anywhere in the
// utterance. Longer alternatives come first so "show me" is not left as a
// dangling "me".
var courtesyVerbs = regexp.MustCompile(`\b(take me to|go to|show me|open|show|dikhao|dikhavel|dikhai)\b`)

// StripCourtesy removes leading politeness phrases and imperative navigation
// verbs from an already lower-cased utterance, e.g. "please show me my
// balance" becomes "my balance".
func StripCourtesy(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	for _, p := range politenessPrefixes {
		if strings.HasPrefix(s, p) {
			s = s[len(p):]
			break
		}
	}
	s = courtesyVerbs.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}

// Match normalizes utterance once and scans routes in table order, keywords
// in index order. Each keyword is tried as a whole-word match first and as a
// plain substring second; the substring fallback is what lets keywords in
// scripts that RE2 does not treat as word characters (Devanagari, Kannada)
// match at all. The first hit wins — there is no scoring and no longest-match
// preference, because route order already encodes priority.
func (t *Table) Match(utterance string) MatchResult {
	norm := Normalize(utterance)
	if norm == "" {
		return MatchResult{}
	}
	for i, patterns := range t.index {
		for _, kp := range patterns {
			if kp.word.MatchString(norm) || strings.Contains(norm, kp.text) {
				return MatchResult{Route: &t.routes[i], Keyword: kp.text, Method: MethodExact}
			}
		}
	}
	return MatchResult{}
}

// MatchCommand applies the caller-side courtesy stripping described in the
// matching contract: try the stripped utterance first, then retry with the
// original in case a keyword itself contains one of the stripped phrases.
func (t *Table) MatchCommand(utterance string) MatchResult {
	if res := t.Match(StripCourtesy(utterance)); res.Matched() {
		return res
	}
	return t.Match(utterance)
}
