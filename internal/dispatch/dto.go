package dispatch

import (
	"github.com/google/uuid"

	"github.com/rotaops/fleetline-backend/pkg/enums"
)

// InboundMessage is the normalized message record produced by provider
// webhook normalization.
type InboundMessage struct {
	TenantID          uuid.UUID
	ProviderMessageID string
	RawPhone          string
	Kind              enums.MessageKind
	Text              *string
	MediaURL          *string
	Caption           *string
	Lat               *float64
	Lng               *float64
}

// Outcome labels how a message was handled; it feeds metrics and the webhook
// acknowledgment.
type Outcome string

const (
	OutcomeApplied   Outcome = "applied"
	OutcomeDuplicate Outcome = "duplicate"
	OutcomeIgnored   Outcome = "ignored"
	OutcomeRefused   Outcome = "refused"
	OutcomeAmbiguous Outcome = "ambiguous"
	OutcomeNotFound  Outcome = "not_found"
	OutcomeInfo      Outcome = "info"
	OutcomeHelp      Outcome = "help"
)

func (o Outcome) String() string {
	return string(o)
}

// text returns the message text, preferring the caption for media messages.
func (m InboundMessage) text() string {
	if m.Text != nil {
		return *m.Text
	}
	if m.Caption != nil {
		return *m.Caption
	}
	return ""
}
