package journeys

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/rotaops/fleetline-backend/pkg/db/models"
	"github.com/rotaops/fleetline-backend/pkg/enums"
)

type repositoryImpl struct {
	db *gorm.DB
}

// NewRepository returns a journeys repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repositoryImpl{db: db}
}

func (r *repositoryImpl) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repositoryImpl{db: tx}
}

func (r *repositoryImpl) FindDriver(ctx context.Context, driverID uuid.UUID) (*models.Driver, error) {
	var driver models.Driver
	if err := r.db.WithContext(ctx).Where("id = ?", driverID).First(&driver).Error; err != nil {
		return nil, err
	}
	return &driver, nil
}

func (r *repositoryImpl) AppendEvent(ctx context.Context, event *models.DriverJourneyEvent) error {
	return r.db.WithContext(ctx).Create(event).Error
}

func (r *repositoryImpl) UpdateDriverStatus(ctx context.Context, driverID uuid.UUID, from, to enums.JourneyStatus, now time.Time) (int64, error) {
	// COALESCE treats the never-started NULL status as off_journey so the
	// predicate stays a single conditional write.
	result := r.db.WithContext(ctx).
		Model(&models.Driver{}).
		Where("id = ? AND COALESCE(current_journey_status, ?) = ?", driverID, enums.JourneyStatusOffJourney, from).
		Updates(map[string]any{
			"current_journey_status": to,
			"last_journey_event_at":  now,
		})
	return result.RowsAffected, result.Error
}
