package identity

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/rotaops/fleetline-backend/pkg/db/models"
)

type repository struct {
	db *gorm.DB
}

// NewRepository builds an identity repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) FindByPhoneCandidates(ctx context.Context, tenantID uuid.UUID, candidates []string) (*models.Driver, error) {
	if len(candidates) == 0 {
		return nil, gorm.ErrRecordNotFound
	}
	var driver models.Driver
	err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND phone IN ?", tenantID, candidates).
		Order("created_at ASC").
		First(&driver).Error
	if err != nil {
		return nil, err
	}
	return &driver, nil
}

func (r *repository) FindDriver(ctx context.Context, driverID uuid.UUID) (*models.Driver, error) {
	var driver models.Driver
	err := r.db.WithContext(ctx).
		Where("id = ?", driverID).
		First(&driver).Error
	if err != nil {
		return nil, err
	}
	return &driver, nil
}
