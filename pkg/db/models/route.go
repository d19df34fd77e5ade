package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/rotaops/fleetline-backend/pkg/enums"
)

// Route is a driver's planned set of deliveries for one calendar day. Routes
// are created fully populated; deliveries attach in the same transaction, so
// a partially constructed route is never observable.
type Route struct {
	ID          uuid.UUID         `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	TenantID    uuid.UUID         `gorm:"column:tenant_id;type:uuid;not null;index"`
	DriverID    *uuid.UUID        `gorm:"column:driver_id;type:uuid;index"`
	VehicleID   *uuid.UUID        `gorm:"column:vehicle_id;type:uuid"`
	Name        string            `gorm:"column:name;not null"`
	ServiceDate time.Time         `gorm:"column:service_date;type:date;not null;index"`
	Status      enums.RouteStatus `gorm:"column:status;type:text;not null;default:'planned'"`
	StartedAt   *time.Time        `gorm:"column:started_at"`
	EndedAt     *time.Time        `gorm:"column:ended_at"`
	Deliveries  []Delivery        `gorm:"foreignKey:RouteID;constraint:OnDelete:CASCADE"`
	CreatedAt   time.Time         `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time         `gorm:"column:updated_at;autoUpdateTime"`
}

// OpenDeliveries returns the preloaded deliveries still awaiting an outcome,
// in creation order.
func (r *Route) OpenDeliveries() []Delivery {
	var open []Delivery
	for _, d := range r.Deliveries {
		if d.Status.IsOpen() {
			open = append(open, d)
		}
	}
	return open
}
