package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/rotaops/fleetline-backend/pkg/enums"
)

// Occurrence is an incident record (accident, theft, breakdown). Created once
// per reported incident and never mutated afterward.
type Occurrence struct {
	ID          uuid.UUID            `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	TenantID    uuid.UUID            `gorm:"column:tenant_id;type:uuid;not null;index"`
	DriverID    uuid.UUID            `gorm:"column:driver_id;type:uuid;not null;index"`
	RouteID     *uuid.UUID           `gorm:"column:route_id;type:uuid"`
	Type        enums.OccurrenceType `gorm:"column:type;type:text;not null"`
	Description string               `gorm:"column:description;not null"`
	CreatedAt   time.Time            `gorm:"column:created_at;autoCreateTime"`
}
