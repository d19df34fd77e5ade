package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/rotaops/fleetline-backend/pkg/db"
	"github.com/rotaops/fleetline-backend/pkg/db/models"
	"github.com/rotaops/fleetline-backend/pkg/enums"
	pkgerrors "github.com/rotaops/fleetline-backend/pkg/errors"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Service owns the legal transitions for route and delivery status. Messages
// on state-conflict errors are written for the driver and may be relayed
// verbatim.
type Service interface {
	Route(ctx context.Context, tenantID, routeID uuid.UUID) (*models.Route, error)
	OpenRoutesForDay(ctx context.Context, tenantID, driverID uuid.UUID, day time.Time) ([]models.Route, error)
	CompletedRouteForDay(ctx context.Context, tenantID, driverID uuid.UUID, day time.Time) (*models.Route, error)

	StartRoute(ctx context.Context, route *models.Route) error
	ExitRoute(ctx context.Context, route *models.Route) error
	ResolveDelivery(ctx context.Context, input ResolveInput) (ResolveResult, error)
	RecordWorkflowStep(ctx context.Context, deliveryID uuid.UUID, step enums.WorkflowStep) error
	FinishRoute(ctx context.Context, routeID uuid.UUID) (FinishResult, error)
	UndoResolution(ctx context.Context, input UndoInput) (UndoResult, error)
}

type service struct {
	repo Repository
	tx   txRunner
	now  func() time.Time
}

// NewService wires the lifecycle service.
func NewService(repo Repository, tx txRunner) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("lifecycle repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	return &service{repo: repo, tx: tx, now: func() time.Time { return time.Now().UTC() }}, nil
}

func (s *service) Route(ctx context.Context, tenantID, routeID uuid.UUID) (*models.Route, error) {
	route, err := s.repo.FindRoute(ctx, tenantID, routeID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "route not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load route")
	}
	return route, nil
}

func (s *service) OpenRoutesForDay(ctx context.Context, tenantID, driverID uuid.UUID, day time.Time) ([]models.Route, error) {
	routes, err := s.repo.FindOpenRoutesForDay(ctx, tenantID, driverID, day)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load routes for day")
	}
	return routes, nil
}

func (s *service) CompletedRouteForDay(ctx context.Context, tenantID, driverID uuid.UUID, day time.Time) (*models.Route, error) {
	route, err := s.repo.FindCompletedRouteForDay(ctx, tenantID, driverID, day)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load completed route for day")
	}
	return route, nil
}

func (s *service) StartRoute(ctx context.Context, route *models.Route) error {
	if route == nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "route required")
	}
	switch route.Status {
	case enums.RouteStatusActive:
		return pkgerrors.New(pkgerrors.CodeStateConflict, fmt.Sprintf("route %q is already active", route.Name))
	case enums.RouteStatusCompleted:
		return pkgerrors.New(pkgerrors.CodeStateConflict, fmt.Sprintf("route %q is already completed", route.Name))
	}

	if route.DriverID != nil {
		active, err := s.repo.HasOtherActiveRoute(ctx, *route.DriverID, route.ID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check active route")
		}
		if active {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "another route is already active, finish or exit it first")
		}
	}

	now := s.now()
	return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		rows, err := repo.ActivateRoute(ctx, route.ID, now)
		if err != nil {
			// The HasOtherActiveRoute check above runs outside this
			// transaction, so a concurrent start of a different route can
			// slip past it and trip the one-active-route-per-driver index.
			if db.IsUniqueViolation(err, "idx_routes_driver_active") {
				return pkgerrors.New(pkgerrors.CodeStateConflict, "another route is already active, finish or exit it first")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "activate route")
		}
		if rows == 0 {
			return pkgerrors.New(pkgerrors.CodeStateConflict, fmt.Sprintf("route %q is already active", route.Name))
		}
		if _, err := repo.MarkDeliveriesInTransit(ctx, route.ID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "mark deliveries in transit")
		}
		return nil
	})
}

func (s *service) ExitRoute(ctx context.Context, route *models.Route) error {
	if route == nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "route required")
	}
	return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if err := lockRoute(ctx, repo, route.ID); err != nil {
			return err
		}
		resolved, err := repo.CountResolvedDeliveries(ctx, route.ID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count resolved deliveries")
		}
		if resolved > 0 {
			return pkgerrors.New(pkgerrors.CodeStateConflict,
				fmt.Sprintf("cannot exit route %q, %d deliveries were already processed", route.Name, resolved))
		}
		rows, err := repo.RevertRouteToPlanned(ctx, route.ID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "revert route")
		}
		if rows == 0 {
			return pkgerrors.New(pkgerrors.CodeStateConflict, fmt.Sprintf("route %q is not active", route.Name))
		}
		if _, err := repo.RevertDeliveriesToPending(ctx, route.ID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "revert deliveries")
		}
		return nil
	})
}

func (s *service) ResolveDelivery(ctx context.Context, input ResolveInput) (ResolveResult, error) {
	if input.Outcome != enums.DeliveryStatusDelivered && input.Outcome != enums.DeliveryStatusFailed {
		return ResolveResult{}, pkgerrors.New(pkgerrors.CodeValidation, "outcome must be delivered or failed")
	}

	now := s.now()
	var result ResolveResult
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if err := lockRoute(ctx, repo, input.RouteID); err != nil {
			return err
		}
		rows, err := repo.ResolveDelivery(ctx, input.DeliveryID, input.Outcome, input.Reason, input.ProofRef, now)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "resolve delivery")
		}
		if rows == 0 {
			delivery, err := repo.FindDelivery(ctx, input.DeliveryID)
			if err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return pkgerrors.New(pkgerrors.CodeNotFound, "delivery not found")
				}
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load delivery")
			}
			result = ResolveResult{Applied: false, CurrentStatus: delivery.Status}
			return nil
		}

		result = ResolveResult{Applied: true, CurrentStatus: input.Outcome}
		open, err := repo.CountOpenDeliveries(ctx, input.RouteID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count open deliveries")
		}
		result.OpenRemaining = open
		if open == 0 {
			completed, err := repo.CompleteRoute(ctx, input.RouteID, now)
			if err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "complete route")
			}
			result.RouteCompleted = completed > 0
		}
		return nil
	})
	if err != nil {
		return ResolveResult{}, err
	}
	return result, nil
}

// lockRoute pins the route row for the rest of the transaction so delivery
// counts and route status checks observe concurrent resolvers in order.
func lockRoute(ctx context.Context, repo Repository, routeID uuid.UUID) error {
	if err := repo.LockRoute(ctx, routeID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "route not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lock route")
	}
	return nil
}

func (s *service) RecordWorkflowStep(ctx context.Context, deliveryID uuid.UUID, step enums.WorkflowStep) error {
	if !step.IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("unknown workflow step %q", step))
	}
	rows, err := s.repo.StampWorkflowStep(ctx, deliveryID, step, s.now())
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "stamp workflow step")
	}
	if rows == 0 {
		return pkgerrors.New(pkgerrors.CodeNotFound, "delivery not found")
	}
	return nil
}

func (s *service) FinishRoute(ctx context.Context, routeID uuid.UUID) (FinishResult, error) {
	now := s.now()
	var result FinishResult
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if err := lockRoute(ctx, repo, routeID); err != nil {
			return err
		}
		open, err := repo.CountOpenDeliveries(ctx, routeID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count open deliveries")
		}
		if open > 0 {
			result = FinishResult{Applied: false, OpenCount: open}
			return nil
		}
		rows, err := repo.CompleteRoute(ctx, routeID, now)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "complete route")
		}
		result = FinishResult{Applied: rows > 0}
		return nil
	})
	if err != nil {
		return FinishResult{}, err
	}
	return result, nil
}

func (s *service) UndoResolution(ctx context.Context, input UndoInput) (UndoResult, error) {
	var result UndoResult
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if err := lockRoute(ctx, repo, input.RouteID); err != nil {
			return err
		}

		var delivery *models.Delivery
		var err error
		if input.DeliveryID != nil {
			delivery, err = repo.FindDelivery(ctx, *input.DeliveryID)
			if err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return pkgerrors.New(pkgerrors.CodeNotFound, "delivery not found")
				}
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load delivery")
			}
		} else {
			delivery, err = repo.FindLastResolvedDelivery(ctx, input.RouteID)
			if err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load last resolved delivery")
			}
			if delivery == nil {
				return pkgerrors.New(pkgerrors.CodeNotFound, "nothing to undo on this route")
			}
		}

		rows, err := repo.UndoDeliveryResolution(ctx, delivery.ID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "undo delivery resolution")
		}
		result = UndoResult{Applied: rows > 0, Delivery: delivery}
		if rows == 0 {
			return nil
		}

		reopened, err := repo.ReopenRoute(ctx, input.RouteID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reopen route")
		}
		result.RouteReopened = reopened > 0
		return nil
	})
	if err != nil {
		return UndoResult{}, err
	}
	return result, nil
}
