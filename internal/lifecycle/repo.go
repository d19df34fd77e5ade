package lifecycle

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/rotaops/fleetline-backend/pkg/db/models"
	"github.com/rotaops/fleetline-backend/pkg/enums"
)

type repositoryImpl struct {
	db *gorm.DB
}

// NewRepository returns a lifecycle repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repositoryImpl{db: db}
}

func (r *repositoryImpl) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repositoryImpl{db: tx}
}

func (r *repositoryImpl) FindRoute(ctx context.Context, tenantID, routeID uuid.UUID) (*models.Route, error) {
	var route models.Route
	err := r.db.WithContext(ctx).
		Preload("Deliveries", func(db *gorm.DB) *gorm.DB { return db.Order("created_at ASC") }).
		Preload("Deliveries.Customer").
		Where("id = ? AND tenant_id = ?", routeID, tenantID).
		First(&route).Error
	if err != nil {
		return nil, err
	}
	return &route, nil
}

func (r *repositoryImpl) FindOpenRoutesForDay(ctx context.Context, tenantID, driverID uuid.UUID, day time.Time) ([]models.Route, error) {
	from, to := dayBounds(day)
	var routes []models.Route
	err := r.db.WithContext(ctx).
		Preload("Deliveries", func(db *gorm.DB) *gorm.DB { return db.Order("created_at ASC") }).
		Preload("Deliveries.Customer").
		Where("tenant_id = ? AND driver_id = ?", tenantID, driverID).
		Where("service_date >= ? AND service_date < ?", from, to).
		Where("status IN ?", []enums.RouteStatus{enums.RouteStatusPlanned, enums.RouteStatusActive}).
		Order("created_at ASC").
		Find(&routes).Error
	if err != nil {
		return nil, err
	}
	return routes, nil
}

func (r *repositoryImpl) FindCompletedRouteForDay(ctx context.Context, tenantID, driverID uuid.UUID, day time.Time) (*models.Route, error) {
	from, to := dayBounds(day)
	var route models.Route
	err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND driver_id = ?", tenantID, driverID).
		Where("service_date >= ? AND service_date < ?", from, to).
		Where("status = ?", enums.RouteStatusCompleted).
		Order("ended_at DESC").
		First(&route).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &route, nil
}

// LockRoute takes the route row lock for the rest of the transaction so
// delivery counts and the auto-complete check serialize against concurrent
// resolvers. Under READ COMMITTED two resolvers finishing the last two
// deliveries would otherwise each count the other's row as still open and
// neither would complete the route. sqlite has a single writer, so the
// locking clause is skipped there.
func (r *repositoryImpl) LockRoute(ctx context.Context, routeID uuid.UUID) error {
	q := r.db.WithContext(ctx)
	if r.db.Dialector.Name() != "sqlite" {
		q = q.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	var route models.Route
	return q.Select("id").Where("id = ?", routeID).Take(&route).Error
}

func (r *repositoryImpl) HasOtherActiveRoute(ctx context.Context, driverID, excludeRouteID uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Route{}).
		Where("driver_id = ? AND status = ? AND id <> ?", driverID, enums.RouteStatusActive, excludeRouteID).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *repositoryImpl) ActivateRoute(ctx context.Context, routeID uuid.UUID, now time.Time) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&models.Route{}).
		Where("id = ? AND status = ?", routeID, enums.RouteStatusPlanned).
		Updates(map[string]any{
			"status":     enums.RouteStatusActive,
			"started_at": now,
		})
	return result.RowsAffected, result.Error
}

func (r *repositoryImpl) MarkDeliveriesInTransit(ctx context.Context, routeID uuid.UUID) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&models.Delivery{}).
		Where("route_id = ? AND status = ?", routeID, enums.DeliveryStatusPending).
		UpdateColumn("status", enums.DeliveryStatusInTransit)
	return result.RowsAffected, result.Error
}

func (r *repositoryImpl) RevertRouteToPlanned(ctx context.Context, routeID uuid.UUID) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&models.Route{}).
		Where("id = ? AND status = ?", routeID, enums.RouteStatusActive).
		Updates(map[string]any{
			"status":     enums.RouteStatusPlanned,
			"started_at": nil,
		})
	return result.RowsAffected, result.Error
}

func (r *repositoryImpl) RevertDeliveriesToPending(ctx context.Context, routeID uuid.UUID) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&models.Delivery{}).
		Where("route_id = ? AND status = ?", routeID, enums.DeliveryStatusInTransit).
		UpdateColumn("status", enums.DeliveryStatusPending)
	return result.RowsAffected, result.Error
}

func (r *repositoryImpl) CompleteRoute(ctx context.Context, routeID uuid.UUID, now time.Time) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&models.Route{}).
		Where("id = ? AND status = ?", routeID, enums.RouteStatusActive).
		Updates(map[string]any{
			"status":   enums.RouteStatusCompleted,
			"ended_at": now,
		})
	return result.RowsAffected, result.Error
}

func (r *repositoryImpl) ReopenRoute(ctx context.Context, routeID uuid.UUID) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&models.Route{}).
		Where("id = ? AND status = ?", routeID, enums.RouteStatusCompleted).
		Updates(map[string]any{
			"status":   enums.RouteStatusActive,
			"ended_at": nil,
		})
	return result.RowsAffected, result.Error
}

func (r *repositoryImpl) FindDelivery(ctx context.Context, deliveryID uuid.UUID) (*models.Delivery, error) {
	var delivery models.Delivery
	err := r.db.WithContext(ctx).
		Preload("Customer").
		Where("id = ?", deliveryID).
		First(&delivery).Error
	if err != nil {
		return nil, err
	}
	return &delivery, nil
}

func (r *repositoryImpl) FindLastResolvedDelivery(ctx context.Context, routeID uuid.UUID) (*models.Delivery, error) {
	var delivery models.Delivery
	err := r.db.WithContext(ctx).
		Preload("Customer").
		Where("route_id = ? AND resolved_at IS NOT NULL", routeID).
		Where("status IN ?", []enums.DeliveryStatus{enums.DeliveryStatusDelivered, enums.DeliveryStatusFailed}).
		Order("resolved_at DESC").
		First(&delivery).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &delivery, nil
}

func (r *repositoryImpl) ResolveDelivery(ctx context.Context, deliveryID uuid.UUID, outcome enums.DeliveryStatus, reason, proofRef *string, now time.Time) (int64, error) {
	updates := map[string]any{
		"status":      outcome,
		"resolved_at": now,
	}
	if reason != nil {
		updates["failure_reason"] = *reason
	}
	if proofRef != nil {
		updates["proof_of_delivery_ref"] = *proofRef
	}
	result := r.db.WithContext(ctx).
		Model(&models.Delivery{}).
		Where("id = ? AND status IN ?", deliveryID, []enums.DeliveryStatus{enums.DeliveryStatusPending, enums.DeliveryStatusInTransit}).
		Updates(updates)
	return result.RowsAffected, result.Error
}

func (r *repositoryImpl) UndoDeliveryResolution(ctx context.Context, deliveryID uuid.UUID) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&models.Delivery{}).
		Where("id = ? AND status IN ?", deliveryID, []enums.DeliveryStatus{enums.DeliveryStatusDelivered, enums.DeliveryStatusFailed}).
		Updates(map[string]any{
			"status":                enums.DeliveryStatusInTransit,
			"failure_reason":        nil,
			"proof_of_delivery_ref": nil,
			"resolved_at":           nil,
		})
	return result.RowsAffected, result.Error
}

func (r *repositoryImpl) StampWorkflowStep(ctx context.Context, deliveryID uuid.UUID, step enums.WorkflowStep, now time.Time) (int64, error) {
	column, ok := workflowStepColumns[step]
	if !ok {
		return 0, errors.New("unknown workflow step")
	}
	result := r.db.WithContext(ctx).
		Model(&models.Delivery{}).
		Where("id = ?", deliveryID).
		UpdateColumn(column, now)
	return result.RowsAffected, result.Error
}

func (r *repositoryImpl) CountOpenDeliveries(ctx context.Context, routeID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Delivery{}).
		Where("route_id = ? AND status IN ?", routeID, []enums.DeliveryStatus{enums.DeliveryStatusPending, enums.DeliveryStatusInTransit}).
		Count(&count).Error
	return count, err
}

func (r *repositoryImpl) CountResolvedDeliveries(ctx context.Context, routeID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Delivery{}).
		Where("route_id = ? AND status IN ?", routeID, []enums.DeliveryStatus{enums.DeliveryStatusDelivered, enums.DeliveryStatusFailed, enums.DeliveryStatusReturned}).
		Count(&count).Error
	return count, err
}

var workflowStepColumns = map[enums.WorkflowStep]string{
	enums.WorkflowStepArrived:          "arrived_at",
	enums.WorkflowStepUnloadingStarted: "unloading_started_at",
	enums.WorkflowStepUnloadingEnded:   "unloading_ended_at",
}

func dayBounds(day time.Time) (time.Time, time.Time) {
	from := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, time.UTC)
	return from, from.AddDate(0, 0, 1)
}
