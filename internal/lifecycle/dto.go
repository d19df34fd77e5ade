package lifecycle

import (
	"github.com/google/uuid"

	"github.com/rotaops/fleetline-backend/pkg/db/models"
	"github.com/rotaops/fleetline-backend/pkg/enums"
)

// ResolveInput carries a terminal outcome for one delivery.
type ResolveInput struct {
	RouteID    uuid.UUID
	DeliveryID uuid.UUID
	Outcome    enums.DeliveryStatus
	Reason     *string
	ProofRef   *string
}

// ResolveResult reports how a resolution attempt landed. Applied is false when
// the delivery was already terminal; CurrentStatus then holds what was already
// recorded so the caller can echo it back instead of re-applying.
type ResolveResult struct {
	Applied        bool
	CurrentStatus  enums.DeliveryStatus
	RouteCompleted bool
	OpenRemaining  int64
}

// FinishResult reports a finish-route attempt. Applied is true when this call
// completed the route; OpenCount is nonzero when unresolved deliveries blocked
// it.
type FinishResult struct {
	Applied   bool
	OpenCount int64
}

// UndoInput targets a resolution to revert. When DeliveryID is nil the most
// recently resolved delivery on the route is chosen.
type UndoInput struct {
	RouteID    uuid.UUID
	DeliveryID *uuid.UUID
}

// UndoResult reports an undo attempt.
type UndoResult struct {
	Applied       bool
	Delivery      *models.Delivery
	RouteReopened bool
}
