package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/rotaops/fleetline-backend/pkg/enums"
)

// DriverJourneyEvent is an immutable, append-only shift/break log entry.
// Rows are never updated or deleted; the driver's cached status is a derived
// projection of this log.
type DriverJourneyEvent struct {
	ID        uuid.UUID              `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	DriverID  uuid.UUID              `gorm:"column:driver_id;type:uuid;not null;index"`
	Type      enums.JourneyEventType `gorm:"column:type;type:text;not null"`
	Lat       *float64               `gorm:"column:lat"`
	Lng       *float64               `gorm:"column:lng"`
	Note      *string                `gorm:"column:note"`
	CreatedAt time.Time              `gorm:"column:created_at;autoCreateTime"`
}
