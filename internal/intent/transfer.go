package intent

import (
	"regexp"
	"strconv"
	"strings"
)

// TransferCommand holds the parameters extracted from a spoken transfer
// instruction. Every field is optional — a field is absent when its zero
// value / empty string is present, and absence is an expected outcome that
// downstream forms must tolerate, never an error.
type TransferCommand struct {
	// Amount is the parsed decimal amount. Only meaningful when AmountRaw is
	// non-empty.
	Amount float64 `json:"amount,omitempty"`

	// AmountRaw is the amount token exactly as spoken, separators included.
	AmountRaw string `json:"amount_raw,omitempty"`

	// RecipientName is the trimmed free-text recipient, when one was found.
	RecipientName string `json:"recipient_name,omitempty"`

	// RecipientAccount is the digit string of the target account.
	RecipientAccount string `json:"recipient_account,omitempty"`
}

// HasAmount reports whether an amount was extracted.
func (c TransferCommand) HasAmount() bool { return c.AmountRaw != "" }

// Empty reports whether nothing at all could be extracted.
func (c TransferCommand) Empty() bool {
	return c.AmountRaw == "" && c.RecipientName == "" && c.RecipientAccount == ""
}

var (
	// amountPattern finds the first numeric token: digits with optional
	// thousands separators and an optional decimal part. A following
	// currency word ("rupees", "rs") is irrelevant to the capture.
	amountPattern = regexp.MustCompile(`(\d{1,3}(?:[,\s\d]*\d)?(?:[.,]\d+)?)`)

	// accountPattern prefers digits that directly follow the word "account",
	// optionally with a "number"/"no." qualifier.
	accountPattern = regexp.MustCompile(`(?i)\baccount(?: number| no\.?| no)?\s*(\d{4,})`)

	// longDigitsPattern is the looser fallback: any standalone run of six or
	// more digits.
	longDigitsPattern = regexp.MustCompile(`\b(\d{6,})\b`)

	// recipientPattern captures the recipient after a transfer preposition
	// (or a language-equivalent send verb) up to the word "account", the next
	// digit, or end of input. RE2 has no lookahead, so the terminator is a
	// consumed alternation rather than an assertion; only the capture group
	// is used.
	recipientPattern = regexp.MustCompile(`(?i)\b(?:pay to|to|for|bhejo|kaluhisi)\s+([\p{L}][\p{L} .'-]{0,98}?)(?:\s+account\b|\s*\d|$)`)

	// recipientLoosePattern is the permissive fallback: alphabetic words
	// after "to"/"for".
	recipientLoosePattern = regexp.MustCompile(`(?i)\b(?:to|for)\s+([A-Za-z][A-Za-z ]{0,48})`)

	amountSeparators = strings.NewReplacer(",", "", " ", "", "\t", "")
)

// ParseTransfer extracts amount, recipient name, and recipient account
// number from a raw (un-normalized) transfer utterance. The three
// extractions are attempted independently and each is best-effort: a missing
// or unparseable value is simply omitted. ParseTransfer never fails.
func ParseTransfer(utterance string) TransferCommand {
	var cmd TransferCommand

	if m := amountPattern.FindStringSubmatch(utterance); m != nil {
		cleaned := amountSeparators.Replace(m[1])
		if amount, err := strconv.ParseFloat(cleaned, 64); err == nil {
			cmd.Amount = amount
			cmd.AmountRaw = m[1]
		}
	}

	if m := accountPattern.FindStringSubmatch(utterance); m != nil {
		cmd.RecipientAccount = m[1]
	} else if m := longDigitsPattern.FindStringSubmatch(utterance); m != nil {
		cmd.RecipientAccount = m[1]
	}

	if m := recipientPattern.FindStringSubmatch(utterance); m != nil {
		cmd.RecipientName = strings.TrimSpace(m[1])
	} else if m := recipientLoosePattern.FindStringSubmatch(utterance); m != nil {
		cmd.RecipientName = strings.TrimSpace(m[1])
	}

	return cmd
}
