package dispatch

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/rotaops/fleetline-backend/internal/identity"
	"github.com/rotaops/fleetline-backend/internal/intents"
	"github.com/rotaops/fleetline-backend/internal/journeys"
	"github.com/rotaops/fleetline-backend/internal/lifecycle"
	"github.com/rotaops/fleetline-backend/internal/messaging"
	"github.com/rotaops/fleetline-backend/internal/occurrences"
	"github.com/rotaops/fleetline-backend/pkg/config"
	"github.com/rotaops/fleetline-backend/pkg/db/models"
	"github.com/rotaops/fleetline-backend/pkg/enums"
	pkgerrors "github.com/rotaops/fleetline-backend/pkg/errors"
	"github.com/rotaops/fleetline-backend/pkg/logger"
	"github.com/rotaops/fleetline-backend/pkg/metrics"
	redispkg "github.com/rotaops/fleetline-backend/pkg/redis"

	"github.com/google/uuid"
)

// senderRegistry narrows the messaging registry to what the dispatcher needs.
type senderRegistry interface {
	ForTenant(tenant *models.Tenant) (messaging.Sender, error)
}

// Params collects the dispatcher's collaborators.
type Params struct {
	Repo        Repository
	Identity    identity.Resolver
	Classifier  intents.Classifier
	Sink        intents.SinkRepository
	Lifecycle   lifecycle.Service
	Journeys    journeys.Service
	Occurrences occurrences.Repository
	Senders     senderRegistry
	Dedupe      redispkg.IdempotencyStore
	Logger      *logger.Logger
	Metrics     *metrics.MessageMetrics
	Config      config.DispatchConfig
}

// Dispatcher orchestrates one inbound message end to end: identity, intent,
// route/delivery/journey transitions, and exactly one reply. Ambiguity policy
// lives here and nowhere else.
type Dispatcher struct {
	repo        Repository
	identity    identity.Resolver
	classifier  intents.Classifier
	sink        intents.SinkRepository
	lifecycle   lifecycle.Service
	journeys    journeys.Service
	occurrences occurrences.Repository
	senders     senderRegistry
	dedupe      redispkg.IdempotencyStore
	logg        *logger.Logger
	metrics     *metrics.MessageMetrics
	cfg         config.DispatchConfig
	now         func() time.Time
}

// NewDispatcher validates and wires the dispatcher.
func NewDispatcher(p Params) (*Dispatcher, error) {
	switch {
	case p.Repo == nil:
		return nil, fmt.Errorf("dispatch repository required")
	case p.Identity == nil:
		return nil, fmt.Errorf("identity resolver required")
	case p.Classifier == nil:
		return nil, fmt.Errorf("intent classifier required")
	case p.Sink == nil:
		return nil, fmt.Errorf("learning sink required")
	case p.Lifecycle == nil:
		return nil, fmt.Errorf("lifecycle service required")
	case p.Journeys == nil:
		return nil, fmt.Errorf("journeys service required")
	case p.Occurrences == nil:
		return nil, fmt.Errorf("occurrences repository required")
	case p.Senders == nil:
		return nil, fmt.Errorf("sender registry required")
	case p.Logger == nil:
		return nil, fmt.Errorf("logger required")
	}

	cfg := p.Config
	if cfg.ClassifyTimeout <= 0 {
		cfg.ClassifyTimeout = 10 * time.Second
	}
	if cfg.SendTimeout <= 0 {
		cfg.SendTimeout = 8 * time.Second
	}
	if cfg.DedupeTTL <= 0 {
		cfg.DedupeTTL = 24 * time.Hour
	}

	return &Dispatcher{
		repo:        p.Repo,
		identity:    p.Identity,
		classifier:  p.Classifier,
		sink:        p.Sink,
		lifecycle:   p.Lifecycle,
		journeys:    p.Journeys,
		occurrences: p.Occurrences,
		senders:     p.Senders,
		dedupe:      p.Dedupe,
		logg:        p.Logger,
		metrics:     p.Metrics,
		cfg:         cfg,
		now:         func() time.Time { return time.Now().UTC() },
	}, nil
}

// Handle processes one inbound message. It never propagates user-facing
// conditions as errors; the returned error is an infrastructure fault that
// was already converted into the safest reply (or a silent drop).
func (d *Dispatcher) Handle(ctx context.Context, msg InboundMessage) (Outcome, error) {
	started := d.now()
	outcome, intentType, err := d.process(ctx, msg)
	if d.metrics != nil {
		d.metrics.ObserveDuration(time.Since(started))
		d.metrics.IncProcessed(string(intentType), outcome.String())
	}
	return outcome, err
}

func (d *Dispatcher) process(ctx context.Context, msg InboundMessage) (Outcome, enums.IntentType, error) {
	const noIntent = enums.IntentType("none")

	ctx = d.logg.WithTenantID(ctx, msg.TenantID.String())

	if dup, err := d.alreadySeen(ctx, msg); err != nil {
		// A dead dedupe store must not block the pipeline; conditional
		// updates downstream still guarantee at-most-once effects.
		d.logg.Warn(ctx, fmt.Sprintf("dedupe store unavailable: %v", err))
	} else if dup {
		return OutcomeDuplicate, noIntent, nil
	}

	tenant, err := d.repo.FindTenant(ctx, msg.TenantID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			d.logg.Warn(ctx, "message for unknown tenant dropped")
			return OutcomeIgnored, noIntent, nil
		}
		return OutcomeIgnored, noIntent, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load tenant")
	}

	driver, err := d.identity.Resolve(ctx, tenant.ID, msg.RawPhone)
	if err != nil {
		if pkgerrors.HasCode(err, pkgerrors.CodeNotFound) {
			// No driver, no known locale: silent no-op.
			d.logg.Info(ctx, "message from unknown phone dropped")
			return OutcomeIgnored, noIntent, nil
		}
		return OutcomeIgnored, noIntent, err
	}
	ctx = d.logg.WithDriverID(ctx, driver.ID.String())

	sender, err := d.senders.ForTenant(tenant)
	if err != nil {
		d.logg.Error(ctx, "no sender for tenant", err)
		sender = nil
	}

	routes, err := d.lifecycle.OpenRoutesForDay(ctx, tenant.ID, driver.ID, d.now())
	if err != nil {
		d.sendText(ctx, sender, msg.RawPhone, replyInternalError())
		return OutcomeIgnored, noIntent, err
	}

	intent := d.classify(ctx, tenant.ID, driver, msg)
	if intent.Type == enums.IntentUnknown {
		if sinkErr := d.sink.Record(ctx, tenant.ID, msg.text()); sinkErr != nil {
			d.logg.Warn(ctx, fmt.Sprintf("learning sink write failed: %v", sinkErr))
		}
		d.sendText(ctx, sender, msg.RawPhone, replyUnknown())
		return OutcomeHelp, enums.IntentUnknown, nil
	}

	if len(routes) == 0 {
		outcome := d.handleNoOpenRoutes(ctx, tenant, driver, msg, intent, sender)
		return outcome, intent.Type, nil
	}

	outcome := d.handleIntent(ctx, tenant, driver, msg, intent, routes, sender)
	return outcome, intent.Type, nil
}

func (d *Dispatcher) alreadySeen(ctx context.Context, msg InboundMessage) (bool, error) {
	if d.dedupe == nil || strings.TrimSpace(msg.ProviderMessageID) == "" {
		return false, nil
	}
	key := d.dedupe.IdempotencyKey("msg:"+msg.TenantID.String(), msg.ProviderMessageID)
	fresh, err := d.dedupe.SetNX(ctx, key, 1, d.cfg.DedupeTTL)
	if err != nil {
		return false, err
	}
	return !fresh, nil
}

func (d *Dispatcher) classify(ctx context.Context, tenantID uuid.UUID, driver *models.Driver, msg InboundMessage) intents.Intent {
	cctx, cancel := context.WithTimeout(ctx, d.cfg.ClassifyTimeout)
	defer cancel()

	intent, err := d.classifier.Classify(cctx, intents.ClassifyInput{
		TenantID: tenantID,
		DriverID: driver.ID,
		Kind:     msg.Kind,
		Text:     msg.Text,
		MediaURL: msg.MediaURL,
		Caption:  msg.Caption,
	})
	if err != nil {
		d.logg.Warn(ctx, fmt.Sprintf("classifier unavailable, degrading to unknown: %v", err))
		return intents.Intent{Type: enums.IntentUnknown}
	}
	return intent
}

// handleNoOpenRoutes covers the day with nothing planned or everything done.
// Undo still works against the day's completed route; everything else gets a
// status reply.
func (d *Dispatcher) handleNoOpenRoutes(ctx context.Context, tenant *models.Tenant, driver *models.Driver, msg InboundMessage, intent intents.Intent, sender messaging.Sender) Outcome {
	completed, err := d.lifecycle.CompletedRouteForDay(ctx, tenant.ID, driver.ID, d.now())
	if err != nil {
		d.logg.Error(ctx, "load completed route", err)
		d.sendText(ctx, sender, msg.RawPhone, replyInternalError())
		return OutcomeIgnored
	}

	if intent.Type == enums.IntentUndo && completed != nil {
		return d.handleUndo(ctx, tenant, driver, msg, completed, sender)
	}

	if completed != nil {
		d.sendText(ctx, sender, msg.RawPhone, replyAlreadyFinishedToday(completed))
	} else {
		d.sendText(ctx, sender, msg.RawPhone, replyNothingScheduled())
	}
	return OutcomeInfo
}

func (d *Dispatcher) handleIntent(ctx context.Context, tenant *models.Tenant, driver *models.Driver, msg InboundMessage, intent intents.Intent, routes []models.Route, sender messaging.Sender) Outcome {
	switch intent.Type {
	case enums.IntentStartRoute:
		return d.handleStartRoute(ctx, msg, intent, routes, sender)

	case enums.IntentDeliver:
		return d.handleResolve(ctx, msg, intent, routes, sender, enums.DeliveryStatusDelivered)
	case enums.IntentFail:
		return d.handleResolve(ctx, msg, intent, routes, sender, enums.DeliveryStatusFailed)

	case enums.IntentArrived:
		return d.handleWorkflowStep(ctx, msg, intent, routes, sender, enums.WorkflowStepArrived)
	case enums.IntentUnloadingStarted:
		return d.handleWorkflowStep(ctx, msg, intent, routes, sender, enums.WorkflowStepUnloadingStarted)
	case enums.IntentUnloadingEnded:
		return d.handleWorkflowStep(ctx, msg, intent, routes, sender, enums.WorkflowStepUnloadingEnded)

	case enums.IntentStartShift:
		return d.handleJourney(ctx, msg, driver, sender, enums.JourneyEventJourneyStart)
	case enums.IntentEndShift:
		return d.handleJourney(ctx, msg, driver, sender, enums.JourneyEventJourneyEnd)
	case enums.IntentPauseBreak:
		return d.handleJourney(ctx, msg, driver, sender, enums.GuessBreakKind(msg.text()).StartEvent())
	case enums.IntentResume:
		return d.handleResume(ctx, msg, driver, sender)

	case enums.IntentFinish:
		route, outcome := d.requireRoute(ctx, msg, intent, routes, sender)
		if route == nil {
			return outcome
		}
		result, err := d.lifecycle.FinishRoute(ctx, route.ID)
		if err != nil {
			return d.replyForError(ctx, msg, sender, err)
		}
		d.sendText(ctx, sender, msg.RawPhone, replyFinish(route, result))
		if result.Applied {
			return OutcomeApplied
		}
		if result.OpenCount > 0 {
			return OutcomeRefused
		}
		return OutcomeDuplicate

	case enums.IntentExitRoute:
		route, outcome := d.requireRoute(ctx, msg, intent, routes, sender)
		if route == nil {
			return outcome
		}
		if err := d.lifecycle.ExitRoute(ctx, route); err != nil {
			return d.replyForError(ctx, msg, sender, err)
		}
		d.sendText(ctx, sender, msg.RawPhone, replyRouteExited(route))
		return OutcomeApplied

	case enums.IntentUndo:
		route, outcome := d.requireRoute(ctx, msg, intent, routes, sender)
		if route == nil {
			return outcome
		}
		return d.handleUndo(ctx, tenant, driver, msg, route, sender)

	case enums.IntentSummary:
		route, outcome := d.requireRoute(ctx, msg, intent, routes, sender)
		if route == nil {
			return outcome
		}
		journeyStatus, err := d.journeys.CurrentStatus(ctx, driver.ID)
		if err != nil {
			return d.replyForError(ctx, msg, sender, err)
		}
		d.sendText(ctx, sender, msg.RawPhone, replySummary(route, journeyStatus))
		return OutcomeInfo

	case enums.IntentListPending:
		route, outcome := d.requireRoute(ctx, msg, intent, routes, sender)
		if route == nil {
			return outcome
		}
		d.sendText(ctx, sender, msg.RawPhone, replyListPending(route))
		return OutcomeInfo

	case enums.IntentDetails:
		route, outcome := d.requireRoute(ctx, msg, intent, routes, sender)
		if route == nil {
			return outcome
		}
		delivery := targetDelivery(route, intent.Identifier, true)
		if delivery == nil {
			d.sendText(ctx, sender, msg.RawPhone, replyDeliveryNotFound(identifierText(intent.Identifier)))
			return OutcomeNotFound
		}
		d.sendText(ctx, sender, msg.RawPhone, replyDetails(delivery))
		return OutcomeInfo

	case enums.IntentNavigate:
		route, outcome := d.requireRoute(ctx, msg, intent, routes, sender)
		if route == nil {
			return outcome
		}
		delivery := targetDelivery(route, intent.Identifier, true)
		if delivery == nil {
			d.sendText(ctx, sender, msg.RawPhone, replyDeliveryNotFound(identifierText(intent.Identifier)))
			return OutcomeNotFound
		}
		if delivery.Customer != nil && delivery.Customer.Lat != nil && delivery.Customer.Lng != nil {
			d.sendLocation(ctx, sender, msg.RawPhone, *delivery.Customer.Lat, *delivery.Customer.Lng)
			return OutcomeInfo
		}
		d.sendText(ctx, sender, msg.RawPhone, replyNoLocationOnFile(delivery))
		return OutcomeNotFound

	case enums.IntentContact:
		lines := []string{
			replyContact("Supervisor", tenant.SupervisorPhone),
			replyContact("Salesperson", tenant.SalespersonPhone),
		}
		d.sendText(ctx, sender, msg.RawPhone, strings.Join(lines, "\n"))
		return OutcomeInfo
	case enums.IntentAskSupervisor:
		d.sendText(ctx, sender, msg.RawPhone, replyContact("Supervisor", tenant.SupervisorPhone))
		return OutcomeInfo
	case enums.IntentAskSalesperson:
		d.sendText(ctx, sender, msg.RawPhone, replyContact("Salesperson", tenant.SalespersonPhone))
		return OutcomeInfo

	case enums.IntentIncident:
		return d.handleIncident(ctx, tenant, driver, msg, intent, routes, sender)

	case enums.IntentDelay:
		d.sendText(ctx, sender, msg.RawPhone, replyDelay())
		return OutcomeInfo
	case enums.IntentGreeting:
		d.sendText(ctx, sender, msg.RawPhone, replyGreeting(tenant, driver))
		return OutcomeInfo
	case enums.IntentHelp:
		d.sendText(ctx, sender, msg.RawPhone, replyHelp())
		return OutcomeHelp
	default:
		d.sendText(ctx, sender, msg.RawPhone, replyUnknown())
		return OutcomeInfo
	}
}

func (d *Dispatcher) handleStartRoute(ctx context.Context, msg InboundMessage, intent intents.Intent, routes []models.Route, sender messaging.Sender) Outcome {
	if active := activeRoute(routes); active != nil {
		d.sendText(ctx, sender, msg.RawPhone, fmt.Sprintf("Route %q is already active.", active.Name))
		return OutcomeRefused
	}

	route, choices := selectPlannedRoute(routes, intent.Identifier)
	if route == nil {
		d.sendText(ctx, sender, msg.RawPhone, replyRouteList(choices))
		return OutcomeAmbiguous
	}

	if err := d.lifecycle.StartRoute(ctx, route); err != nil {
		return d.replyForError(ctx, msg, sender, err)
	}
	d.sendText(ctx, sender, msg.RawPhone, replyRouteStarted(route, len(route.Deliveries)))
	return OutcomeApplied
}

func (d *Dispatcher) handleResolve(ctx context.Context, msg InboundMessage, intent intents.Intent, routes []models.Route, sender messaging.Sender, outcome enums.DeliveryStatus) Outcome {
	route, routeOutcome := d.requireRoute(ctx, msg, intent, routes, sender)
	if route == nil {
		return routeOutcome
	}
	if route.Status == enums.RouteStatusPlanned {
		d.sendText(ctx, sender, msg.RawPhone, replyStartRouteFirst(route.Name))
		return OutcomeRefused
	}

	delivery := targetDelivery(route, intent.Identifier, false)
	if delivery == nil {
		d.sendText(ctx, sender, msg.RawPhone, replyDeliveryNotFound(identifierText(intent.Identifier)))
		return OutcomeNotFound
	}

	var proofRef *string
	if msg.Kind == enums.MessageKindImage && msg.MediaURL != nil {
		proofRef = msg.MediaURL
	}
	result, err := d.lifecycle.ResolveDelivery(ctx, lifecycle.ResolveInput{
		RouteID:    route.ID,
		DeliveryID: delivery.ID,
		Outcome:    outcome,
		Reason:     intent.Reason,
		ProofRef:   proofRef,
	})
	if err != nil {
		return d.replyForError(ctx, msg, sender, err)
	}
	if !result.Applied {
		d.sendText(ctx, sender, msg.RawPhone, replyAlreadyRecorded(delivery, result.CurrentStatus))
		return OutcomeDuplicate
	}
	d.sendText(ctx, sender, msg.RawPhone, replyDeliveryRecorded(delivery, outcome, result))
	return OutcomeApplied
}

func (d *Dispatcher) handleWorkflowStep(ctx context.Context, msg InboundMessage, intent intents.Intent, routes []models.Route, sender messaging.Sender, step enums.WorkflowStep) Outcome {
	route, routeOutcome := d.requireRoute(ctx, msg, intent, routes, sender)
	if route == nil {
		return routeOutcome
	}
	if route.Status == enums.RouteStatusPlanned {
		d.sendText(ctx, sender, msg.RawPhone, replyStartRouteFirst(route.Name))
		return OutcomeRefused
	}

	delivery := targetDelivery(route, intent.Identifier, true)
	if delivery == nil {
		d.sendText(ctx, sender, msg.RawPhone, replyDeliveryNotFound(identifierText(intent.Identifier)))
		return OutcomeNotFound
	}

	if err := d.lifecycle.RecordWorkflowStep(ctx, delivery.ID, step); err != nil {
		return d.replyForError(ctx, msg, sender, err)
	}
	d.sendText(ctx, sender, msg.RawPhone, replyWorkflowStep(delivery, step))
	return OutcomeApplied
}

func (d *Dispatcher) handleJourney(ctx context.Context, msg InboundMessage, driver *models.Driver, sender messaging.Sender, eventType enums.JourneyEventType) Outcome {
	var note *string
	if text := strings.TrimSpace(msg.text()); text != "" {
		note = &text
	}
	_, err := d.journeys.RecordEvent(ctx, journeys.EventInput{
		DriverID: driver.ID,
		Type:     eventType,
		Lat:      msg.Lat,
		Lng:      msg.Lng,
		Note:     note,
	})
	if err != nil {
		return d.replyForError(ctx, msg, sender, err)
	}
	d.sendText(ctx, sender, msg.RawPhone, replyShiftEvent(eventType))
	return OutcomeApplied
}

func (d *Dispatcher) handleResume(ctx context.Context, msg InboundMessage, driver *models.Driver, sender messaging.Sender) Outcome {
	status, err := d.journeys.CurrentStatus(ctx, driver.ID)
	if err != nil {
		return d.replyForError(ctx, msg, sender, err)
	}
	var kind enums.BreakKind
	switch status {
	case enums.JourneyStatusMealBreak:
		kind = enums.BreakMeal
	case enums.JourneyStatusWaitBreak:
		kind = enums.BreakWait
	case enums.JourneyStatusRestBreak:
		kind = enums.BreakRest
	default:
		d.sendText(ctx, sender, msg.RawPhone, replyNoBreakOpen())
		return OutcomeRefused
	}
	return d.handleJourney(ctx, msg, driver, sender, kind.EndEvent())
}

func (d *Dispatcher) handleUndo(ctx context.Context, tenant *models.Tenant, driver *models.Driver, msg InboundMessage, route *models.Route, sender messaging.Sender) Outcome {
	result, err := d.lifecycle.UndoResolution(ctx, lifecycle.UndoInput{RouteID: route.ID})
	if err != nil {
		return d.replyForError(ctx, msg, sender, err)
	}
	if result.Applied {
		// Audit trail for the supervisor: a terminal outcome was reverted.
		note := &models.Occurrence{
			ID:          uuid.New(),
			TenantID:    tenant.ID,
			DriverID:    driver.ID,
			RouteID:     &route.ID,
			Type:        enums.OccurrenceOther,
			Description: fmt.Sprintf("delivery %s outcome undone via chat", result.Delivery.InvoiceNumber),
		}
		if auditErr := d.occurrences.Create(ctx, note); auditErr != nil {
			d.logg.Warn(ctx, fmt.Sprintf("undo audit note failed: %v", auditErr))
		}
	}
	d.sendText(ctx, sender, msg.RawPhone, replyUndo(result))
	if result.Applied {
		return OutcomeApplied
	}
	return OutcomeRefused
}

func (d *Dispatcher) handleIncident(ctx context.Context, tenant *models.Tenant, driver *models.Driver, msg InboundMessage, intent intents.Intent, routes []models.Route, sender messaging.Sender) Outcome {
	description := strings.TrimSpace(msg.text())
	if description == "" && intent.Reason != nil {
		description = *intent.Reason
	}
	if description == "" {
		description = "incident reported via chat"
	}

	occurrence := &models.Occurrence{
		ID:          uuid.New(),
		TenantID:    tenant.ID,
		DriverID:    driver.ID,
		Type:        enums.GuessOccurrenceType(description),
		Description: description,
	}
	// An incident does not depend on route selection; attach the active
	// route when there is one.
	if active := activeRoute(routes); active != nil {
		occurrence.RouteID = &active.ID
	}
	if err := d.occurrences.Create(ctx, occurrence); err != nil {
		return d.replyForError(ctx, msg, sender, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "record occurrence"))
	}
	d.sendText(ctx, sender, msg.RawPhone, replyIncident(occurrence.Type))
	return OutcomeApplied
}

// requireRoute applies the ambiguity policy: an active route wins, a single
// planned route is used as-is, and anything else is prompted, never guessed.
func (d *Dispatcher) requireRoute(ctx context.Context, msg InboundMessage, intent intents.Intent, routes []models.Route, sender messaging.Sender) (*models.Route, Outcome) {
	if active := activeRoute(routes); active != nil {
		return active, ""
	}
	route, choices := selectPlannedRoute(routes, intent.Identifier)
	if route == nil {
		d.sendText(ctx, sender, msg.RawPhone, replyRouteList(choices))
		return nil, OutcomeAmbiguous
	}
	return route, ""
}

func (d *Dispatcher) replyForError(ctx context.Context, msg InboundMessage, sender messaging.Sender, err error) Outcome {
	if appErr := pkgerrors.As(err); appErr != nil {
		switch appErr.Code() {
		case pkgerrors.CodeStateConflict:
			d.sendText(ctx, sender, msg.RawPhone, appErr.Message())
			return OutcomeRefused
		case pkgerrors.CodeNotFound:
			d.sendText(ctx, sender, msg.RawPhone, appErr.Message())
			return OutcomeNotFound
		case pkgerrors.CodeValidation, pkgerrors.CodeAmbiguous:
			d.sendText(ctx, sender, msg.RawPhone, appErr.Message())
			return OutcomeRefused
		}
	}
	d.logg.Error(ctx, "message processing failed", err)
	d.sendText(ctx, sender, msg.RawPhone, replyInternalError())
	return OutcomeIgnored
}

func (d *Dispatcher) sendText(ctx context.Context, sender messaging.Sender, phone, text string) {
	if sender == nil {
		d.logg.Warn(ctx, "reply dropped, no sender configured")
		return
	}
	sctx, cancel := context.WithTimeout(ctx, d.cfg.SendTimeout)
	defer cancel()
	if err := sender.SendText(sctx, phone, text); err != nil {
		// Never roll back committed state over a lost notification.
		d.logg.Warn(ctx, fmt.Sprintf("reply send failed: %v", err))
		if d.metrics != nil {
			d.metrics.IncReplyFailed(sender.Provider().String())
		}
	}
}

func (d *Dispatcher) sendLocation(ctx context.Context, sender messaging.Sender, phone string, lat, lng float64) {
	if sender == nil {
		d.logg.Warn(ctx, "reply dropped, no sender configured")
		return
	}
	sctx, cancel := context.WithTimeout(ctx, d.cfg.SendTimeout)
	defer cancel()
	if err := sender.SendLocation(sctx, phone, lat, lng); err != nil {
		d.logg.Warn(ctx, fmt.Sprintf("location send failed: %v", err))
		if d.metrics != nil {
			d.metrics.IncReplyFailed(sender.Provider().String())
		}
	}
}

func activeRoute(routes []models.Route) *models.Route {
	for i := range routes {
		if routes[i].Status == enums.RouteStatusActive {
			return &routes[i]
		}
	}
	return nil
}

// selectPlannedRoute picks among planned routes: a single one is unambiguous,
// otherwise the identifier must narrow the list to exactly one name by
// case-insensitive substring match.
func selectPlannedRoute(routes []models.Route, identifier *string) (*models.Route, []models.Route) {
	var planned []models.Route
	for _, route := range routes {
		if route.Status == enums.RouteStatusPlanned {
			planned = append(planned, route)
		}
	}
	if len(planned) == 1 {
		return &planned[0], nil
	}
	if len(planned) == 0 {
		return nil, nil
	}
	if identifier != nil {
		needle := strings.ToLower(strings.TrimSpace(*identifier))
		if needle != "" {
			var matches []*models.Route
			for i := range planned {
				if strings.Contains(strings.ToLower(planned[i].Name), needle) {
					matches = append(matches, &planned[i])
				}
			}
			if len(matches) == 1 {
				return matches[0], nil
			}
		}
	}
	return nil, planned
}

// targetDelivery resolves a delivery on the route: exact invoice or customer
// name first, then substring, preferring open deliveries. With no identifier
// it falls back to the next open delivery when allowed, or to a single open
// delivery otherwise.
func targetDelivery(route *models.Route, identifier *string, defaultToNext bool) *models.Delivery {
	open := route.OpenDeliveries()

	if identifier == nil || strings.TrimSpace(*identifier) == "" {
		if defaultToNext && len(open) > 0 {
			return &open[0]
		}
		if len(open) == 1 {
			return &open[0]
		}
		return nil
	}

	needle := strings.ToLower(strings.TrimSpace(*identifier))
	for i := range route.Deliveries {
		d := &route.Deliveries[i]
		if strings.EqualFold(d.InvoiceNumber, needle) || strings.EqualFold(d.CustomerName(), needle) {
			return d
		}
	}

	match := substringMatch(open, needle)
	if match != nil {
		return match
	}
	return substringMatch(route.Deliveries, needle)
}

func substringMatch(deliveries []models.Delivery, needle string) *models.Delivery {
	for i := range deliveries {
		d := &deliveries[i]
		if strings.Contains(strings.ToLower(d.InvoiceNumber), needle) ||
			strings.Contains(strings.ToLower(d.CustomerName()), needle) {
			return d
		}
	}
	return nil
}

func identifierText(identifier *string) string {
	if identifier == nil {
		return ""
	}
	return strings.TrimSpace(*identifier)
}
