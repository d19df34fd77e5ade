package intents

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/rotaops/fleetline-backend/pkg/db"
	"github.com/rotaops/fleetline-backend/pkg/db/models"
)

// reviewIntent marks a learning-sink row as awaiting human curation.
const reviewIntent = "REVISAR"

// SinkRepository records phrases the classifier could not place. Recording
// must never block the reply path, so duplicates are swallowed.
type SinkRepository interface {
	WithTx(tx *gorm.DB) SinkRepository
	Record(ctx context.Context, tenantID uuid.UUID, phrase string) error
}

type sinkRepositoryImpl struct {
	db *gorm.DB
}

// NewSinkRepository returns a learning sink bound to the provided database.
func NewSinkRepository(db *gorm.DB) SinkRepository {
	return &sinkRepositoryImpl{db: db}
}

func (r *sinkRepositoryImpl) WithTx(tx *gorm.DB) SinkRepository {
	if tx == nil {
		return r
	}
	return &sinkRepositoryImpl{db: tx}
}

func (r *sinkRepositoryImpl) Record(ctx context.Context, tenantID uuid.UUID, phrase string) error {
	trimmed := strings.TrimSpace(phrase)
	if trimmed == "" {
		return nil
	}
	row := &models.UnknownPhrase{
		ID:       uuid.New(),
		TenantID: tenantID,
		Phrase:   trimmed,
		Intent:   reviewIntent,
		IsActive: false,
	}
	if err := r.db.WithContext(ctx).Create(row).Error; err != nil {
		if db.IsUniqueViolation(err, "") {
			return nil
		}
		return err
	}
	return nil
}
