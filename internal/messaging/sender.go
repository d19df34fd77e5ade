package messaging

import (
	"context"

	"github.com/rotaops/fleetline-backend/pkg/enums"
)

// Sender is the outbound reply port. Implementations deliver to the phone
// number the inbound message arrived from; the core never rolls back business
// state when a send fails.
type Sender interface {
	Provider() enums.ProviderKind
	SendText(ctx context.Context, phone, text string) error
	SendImage(ctx context.Context, phone, mediaURL string, caption *string) error
	SendLocation(ctx context.Context, phone string, lat, lng float64) error
	Close() error
}
