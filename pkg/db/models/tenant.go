package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/rotaops/fleetline-backend/pkg/enums"
)

// Tenant is a fleet operator account. The core reads its messaging
// configuration; account management itself lives elsewhere.
type Tenant struct {
	ID                uuid.UUID          `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Name              string             `gorm:"column:name;not null"`
	MessagingProvider enums.ProviderKind `gorm:"column:messaging_provider;type:text;not null;default:'whatsapp'"`
	GreetingTemplate  *string            `gorm:"column:greeting_template"`
	SupervisorPhone   *string            `gorm:"column:supervisor_phone"`
	SalespersonPhone  *string            `gorm:"column:salesperson_phone"`
	CreatedAt         time.Time          `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt         time.Time          `gorm:"column:updated_at;autoUpdateTime"`
}
