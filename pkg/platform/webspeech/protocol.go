package webspeech

import "github.com/dhvanibank/dhvani/pkg/platform"

// Wire message types sent from the server to the browser client.
const (
	msgStart           = "start"
	msgStop            = "stop"
	msgSpeak           = "speak"
	msgCancelSpeech    = "cancel_speech"
	msgNavigate        = "navigate"
	msgPrefillTransfer = "prefill_transfer"
	msgNotice          = "notice"
)

// Wire message types sent from the browser client to the server.
const (
	msgVoices     = "voices"
	msgReady      = "ready"
	msgTranscript = "transcript"
	msgError      = "error"
	msgEnded      = "ended"
)

// outbound is a server-to-client message. Fields are populated per type:
//
//	start            — ID, Lang
//	stop             — ID
//	speak            — Text, Lang, Voice
//	cancel_speech    — (no payload)
//	navigate         — Target
//	prefill_transfer — Amount, AmountRaw, Recipient, Account
//	notice           — Text
type outbound struct {
	Type      string  `json:"type"`
	ID        uint64  `json:"id,omitempty"`
	Lang      string  `json:"lang,omitempty"`
	Text      string  `json:"text,omitempty"`
	Voice     string  `json:"voice,omitempty"`
	Target    string  `json:"target,omitempty"`
	Amount    float64 `json:"amount,omitempty"`
	AmountRaw string  `json:"amount_raw,omitempty"`
	Recipient string  `json:"recipient,omitempty"`
	Account   string  `json:"account,omitempty"`
}

// inbound is a client-to-server message. Fields are populated per type:
//
//	voices     — Voices
//	ready      — ID
//	transcript — ID, Text
//	error      — ID, Message
//	ended      — ID
type inbound struct {
	Type    string           `json:"type"`
	ID      uint64           `json:"id,omitempty"`
	Text    string           `json:"text,omitempty"`
	Message string           `json:"message,omitempty"`
	Voices  []platform.Voice `json:"voices,omitempty"`
}
