package occurrences

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/rotaops/fleetline-backend/pkg/db/models"
)

// Repository persists incident records. Occurrences are write-once; there is
// no update path.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, occurrence *models.Occurrence) error
	ListForRoute(ctx context.Context, routeID uuid.UUID) ([]models.Occurrence, error)
}

type repositoryImpl struct {
	db *gorm.DB
}

// NewRepository returns an occurrences repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repositoryImpl{db: db}
}

func (r *repositoryImpl) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repositoryImpl{db: tx}
}

func (r *repositoryImpl) Create(ctx context.Context, occurrence *models.Occurrence) error {
	return r.db.WithContext(ctx).Create(occurrence).Error
}

func (r *repositoryImpl) ListForRoute(ctx context.Context, routeID uuid.UUID) ([]models.Occurrence, error) {
	var occurrences []models.Occurrence
	err := r.db.WithContext(ctx).
		Where("route_id = ?", routeID).
		Order("created_at ASC").
		Find(&occurrences).Error
	if err != nil {
		return nil, err
	}
	return occurrences, nil
}
