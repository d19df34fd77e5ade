package lifecycle

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/rotaops/fleetline-backend/pkg/db/models"
	"github.com/rotaops/fleetline-backend/pkg/enums"
)

// Repository exposes persistence helpers for routes and deliveries. Every
// status-changing method is a conditional update scoped by the current state
// and reports rows affected so callers can distinguish first application from
// a duplicate retry.
type Repository interface {
	WithTx(tx *gorm.DB) Repository

	FindRoute(ctx context.Context, tenantID, routeID uuid.UUID) (*models.Route, error)
	FindOpenRoutesForDay(ctx context.Context, tenantID, driverID uuid.UUID, day time.Time) ([]models.Route, error)
	FindCompletedRouteForDay(ctx context.Context, tenantID, driverID uuid.UUID, day time.Time) (*models.Route, error)
	HasOtherActiveRoute(ctx context.Context, driverID, excludeRouteID uuid.UUID) (bool, error)
	LockRoute(ctx context.Context, routeID uuid.UUID) error

	ActivateRoute(ctx context.Context, routeID uuid.UUID, now time.Time) (int64, error)
	MarkDeliveriesInTransit(ctx context.Context, routeID uuid.UUID) (int64, error)
	RevertRouteToPlanned(ctx context.Context, routeID uuid.UUID) (int64, error)
	RevertDeliveriesToPending(ctx context.Context, routeID uuid.UUID) (int64, error)
	CompleteRoute(ctx context.Context, routeID uuid.UUID, now time.Time) (int64, error)
	ReopenRoute(ctx context.Context, routeID uuid.UUID) (int64, error)

	FindDelivery(ctx context.Context, deliveryID uuid.UUID) (*models.Delivery, error)
	FindLastResolvedDelivery(ctx context.Context, routeID uuid.UUID) (*models.Delivery, error)
	ResolveDelivery(ctx context.Context, deliveryID uuid.UUID, outcome enums.DeliveryStatus, reason, proofRef *string, now time.Time) (int64, error)
	UndoDeliveryResolution(ctx context.Context, deliveryID uuid.UUID) (int64, error)
	StampWorkflowStep(ctx context.Context, deliveryID uuid.UUID, step enums.WorkflowStep, now time.Time) (int64, error)
	CountOpenDeliveries(ctx context.Context, routeID uuid.UUID) (int64, error)
	CountResolvedDeliveries(ctx context.Context, routeID uuid.UUID) (int64, error)
}
