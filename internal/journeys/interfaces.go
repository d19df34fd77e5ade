package journeys

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/rotaops/fleetline-backend/pkg/db/models"
	"github.com/rotaops/fleetline-backend/pkg/enums"
)

// Repository exposes persistence helpers for the journey event log and the
// driver's cached status projection.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	FindDriver(ctx context.Context, driverID uuid.UUID) (*models.Driver, error)
	AppendEvent(ctx context.Context, event *models.DriverJourneyEvent) error
	// UpdateDriverStatus moves the cached status from one value to another and
	// reports rows affected; zero means another event won the race.
	UpdateDriverStatus(ctx context.Context, driverID uuid.UUID, from, to enums.JourneyStatus, now time.Time) (int64, error)
}
