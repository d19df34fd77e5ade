package intents

import (
	"context"

	"github.com/google/uuid"

	"github.com/rotaops/fleetline-backend/pkg/enums"
)

// Intent is the classified purpose of one inbound message plus whatever
// free-text signals the classifier extracted.
type Intent struct {
	Type       enums.IntentType
	Identifier *string
	Reason     *string
}

// ClassifyInput carries the inbound message content to classify.
type ClassifyInput struct {
	TenantID uuid.UUID
	DriverID uuid.UUID
	Kind     enums.MessageKind
	Text     *string
	MediaURL *string
	Caption  *string
}

// Classifier is the port to the external intent classifier. Implementations
// may be slow or unavailable; callers treat any error as an unknown intent
// rather than failing the message.
type Classifier interface {
	Classify(ctx context.Context, input ClassifyInput) (Intent, error)
}
