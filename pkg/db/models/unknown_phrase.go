package models

import (
	"time"

	"github.com/google/uuid"
)

// UnknownPhrase is a learning-sink row for input the classifier could not
// place. Rows stay inactive until a human curates them.
type UnknownPhrase struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	TenantID  uuid.UUID `gorm:"column:tenant_id;type:uuid;not null;uniqueIndex:idx_unknown_phrases_tenant_phrase"`
	Phrase    string    `gorm:"column:phrase;not null;uniqueIndex:idx_unknown_phrases_tenant_phrase"`
	Intent    string    `gorm:"column:intent;not null;default:'REVISAR'"`
	IsActive  bool      `gorm:"column:is_active;not null;default:false"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
}
