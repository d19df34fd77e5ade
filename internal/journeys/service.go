package journeys

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/rotaops/fleetline-backend/pkg/db/models"
	"github.com/rotaops/fleetline-backend/pkg/enums"
	pkgerrors "github.com/rotaops/fleetline-backend/pkg/errors"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// EventInput carries one shift/break marker to record.
type EventInput struct {
	DriverID uuid.UUID
	Type     enums.JourneyEventType
	Lat      *float64
	Lng      *float64
	Note     *string
}

// Service enforces the journey transition graph. Accepted events append to
// the immutable log and update the driver's cached status in one transaction.
// State-conflict messages are written for the driver and relayed verbatim.
type Service interface {
	RecordEvent(ctx context.Context, input EventInput) (*models.DriverJourneyEvent, error)
	CurrentStatus(ctx context.Context, driverID uuid.UUID) (enums.JourneyStatus, error)
}

type service struct {
	repo Repository
	tx   txRunner
	now  func() time.Time
}

// NewService wires the journeys service.
func NewService(repo Repository, tx txRunner) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("journeys repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	return &service{repo: repo, tx: tx, now: func() time.Time { return time.Now().UTC() }}, nil
}

func (s *service) CurrentStatus(ctx context.Context, driverID uuid.UUID) (enums.JourneyStatus, error) {
	driver, err := s.repo.FindDriver(ctx, driverID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", pkgerrors.New(pkgerrors.CodeNotFound, "driver not found")
		}
		return "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load driver")
	}
	return driver.JourneyStatusOrDefault(), nil
}

func (s *service) RecordEvent(ctx context.Context, input EventInput) (*models.DriverJourneyEvent, error) {
	if !input.Type.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("unknown journey event %q", input.Type))
	}

	driver, err := s.repo.FindDriver(ctx, input.DriverID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "driver not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load driver")
	}

	current := driver.JourneyStatusOrDefault()
	next, err := nextStatus(current, input.Type)
	if err != nil {
		return nil, err
	}

	event := &models.DriverJourneyEvent{
		ID:       uuid.New(),
		DriverID: input.DriverID,
		Type:     input.Type,
		Lat:      input.Lat,
		Lng:      input.Lng,
		Note:     input.Note,
	}
	now := s.now()
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		rows, err := repo.UpdateDriverStatus(ctx, input.DriverID, current, next, now)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update driver status")
		}
		if rows == 0 {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "your shift status just changed, send that again")
		}
		if err := repo.AppendEvent(ctx, event); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "append journey event")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return event, nil
}

// nextStatus validates a transition against the current cached status and
// returns the status the driver lands in. The graph is strict: one open break
// at a time, ends must match their starts, and a shift cannot end mid-break.
func nextStatus(current enums.JourneyStatus, event enums.JourneyEventType) (enums.JourneyStatus, error) {
	invalid := func(message string) (enums.JourneyStatus, error) {
		return "", pkgerrors.New(pkgerrors.CodeStateConflict, message)
	}

	switch event {
	case enums.JourneyEventJourneyStart:
		if current != enums.JourneyStatusOffJourney {
			return invalid("your shift is already running")
		}
		return enums.JourneyStatusOnJourney, nil

	case enums.JourneyEventJourneyEnd:
		switch current {
		case enums.JourneyStatusOnJourney:
			return enums.JourneyStatusOffJourney, nil
		case enums.JourneyStatusOffJourney:
			return invalid("your shift has not started yet")
		default:
			return invalid("finish your break before ending the shift")
		}

	case enums.JourneyEventMealStart, enums.JourneyEventWaitStart, enums.JourneyEventRestStart:
		switch current {
		case enums.JourneyStatusOnJourney:
			return breakStatusFor(event), nil
		case enums.JourneyStatusOffJourney:
			return invalid("start your shift before taking a break")
		default:
			return invalid("you already have a break open, finish it first")
		}

	case enums.JourneyEventMealEnd:
		if current != enums.JourneyStatusMealBreak {
			return invalid("no meal break is open")
		}
		return enums.JourneyStatusOnJourney, nil
	case enums.JourneyEventWaitEnd:
		if current != enums.JourneyStatusWaitBreak {
			return invalid("no wait break is open")
		}
		return enums.JourneyStatusOnJourney, nil
	case enums.JourneyEventRestEnd:
		if current != enums.JourneyStatusRestBreak {
			return invalid("no rest break is open")
		}
		return enums.JourneyStatusOnJourney, nil
	}
	return invalid(fmt.Sprintf("unsupported journey event %q", event))
}

func breakStatusFor(event enums.JourneyEventType) enums.JourneyStatus {
	switch event {
	case enums.JourneyEventWaitStart:
		return enums.JourneyStatusWaitBreak
	case enums.JourneyEventRestStart:
		return enums.JourneyStatusRestBreak
	default:
		return enums.JourneyStatusMealBreak
	}
}
