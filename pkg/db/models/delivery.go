package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/rotaops/fleetline-backend/pkg/enums"
)

// Delivery is one invoice/shipment within a route.
type Delivery struct {
	ID                 uuid.UUID            `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	RouteID            uuid.UUID            `gorm:"column:route_id;type:uuid;not null;index"`
	CustomerID         uuid.UUID            `gorm:"column:customer_id;type:uuid;not null"`
	Customer           *Customer            `gorm:"foreignKey:CustomerID"`
	InvoiceNumber      string               `gorm:"column:invoice_number;not null;index"`
	WeightKg           decimal.Decimal      `gorm:"column:weight_kg;type:numeric(12,3);not null;default:0"`
	VolumeM3           decimal.Decimal      `gorm:"column:volume_m3;type:numeric(12,3);not null;default:0"`
	ValueAmount        decimal.Decimal      `gorm:"column:value_amount;type:numeric(14,2);not null;default:0"`
	Status             enums.DeliveryStatus `gorm:"column:status;type:text;not null;default:'pending'"`
	FailureReason      *string              `gorm:"column:failure_reason"`
	ProofOfDeliveryRef *string              `gorm:"column:proof_of_delivery_ref"`
	ArrivedAt          *time.Time           `gorm:"column:arrived_at"`
	UnloadingStartedAt *time.Time           `gorm:"column:unloading_started_at"`
	UnloadingEndedAt   *time.Time           `gorm:"column:unloading_ended_at"`
	ResolvedAt         *time.Time           `gorm:"column:resolved_at"`
	CreatedAt          time.Time            `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt          time.Time            `gorm:"column:updated_at;autoUpdateTime"`
}

// CustomerName returns the preloaded customer name or an empty string.
func (d *Delivery) CustomerName() string {
	if d == nil || d.Customer == nil {
		return ""
	}
	return d.Customer.Name
}
