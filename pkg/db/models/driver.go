package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/rotaops/fleetline-backend/pkg/enums"
)

// Driver is a fleet driver reachable over chat. Phone is a lookup key, not a
// unique column: legacy records store the same physical number under several
// textual encodings, so lookups enumerate equivalent candidates instead of
// relying on exact match.
type Driver struct {
	ID                   uuid.UUID            `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	TenantID             uuid.UUID            `gorm:"column:tenant_id;type:uuid;not null;index"`
	Name                 string               `gorm:"column:name;not null"`
	Phone                string               `gorm:"column:phone;not null;index"`
	CurrentJourneyStatus *enums.JourneyStatus `gorm:"column:current_journey_status;type:text"`
	LastJourneyEventAt   *time.Time           `gorm:"column:last_journey_event_at"`
	CreatedAt            time.Time            `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt            time.Time            `gorm:"column:updated_at;autoUpdateTime"`
}

// JourneyStatusOrDefault returns the cached journey status, treating an unset
// column as off-journey.
func (d *Driver) JourneyStatusOrDefault() enums.JourneyStatus {
	if d == nil || d.CurrentJourneyStatus == nil {
		return enums.JourneyStatusOffJourney
	}
	return *d.CurrentJourneyStatus
}
