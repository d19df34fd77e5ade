package identity

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/rotaops/fleetline-backend/pkg/db/models"
)

// Repository defines persistence operations for driver identity lookup.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	FindByPhoneCandidates(ctx context.Context, tenantID uuid.UUID, candidates []string) (*models.Driver, error)
	FindDriver(ctx context.Context, driverID uuid.UUID) (*models.Driver, error)
}
