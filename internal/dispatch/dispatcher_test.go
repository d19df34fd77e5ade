package dispatch

import (
	"context"
	"fmt"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

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
)

type stubTenantRepo struct {
	tenant *models.Tenant
}

func (r *stubTenantRepo) FindTenant(ctx context.Context, tenantID uuid.UUID) (*models.Tenant, error) {
	if r.tenant != nil && r.tenant.ID == tenantID {
		return r.tenant, nil
	}
	return nil, gorm.ErrRecordNotFound
}

type stubResolver struct {
	driver *models.Driver
	phone  string
}

func (r *stubResolver) Resolve(ctx context.Context, tenantID uuid.UUID, rawPhone string) (*models.Driver, error) {
	if r.driver != nil && rawPhone == r.phone {
		return r.driver, nil
	}
	return nil, pkgerrors.New(pkgerrors.CodeNotFound, "no driver for phone")
}

type stubClassifier struct {
	intent intents.Intent
	err    error
	calls  int
}

func (c *stubClassifier) Classify(ctx context.Context, input intents.ClassifyInput) (intents.Intent, error) {
	c.calls++
	if c.err != nil {
		return intents.Intent{}, c.err
	}
	return c.intent, nil
}

type stubSink struct {
	phrases []string
}

func (s *stubSink) WithTx(tx *gorm.DB) intents.SinkRepository { return s }

func (s *stubSink) Record(ctx context.Context, tenantID uuid.UUID, phrase string) error {
	s.phrases = append(s.phrases, phrase)
	return nil
}

type stubLifecycleService struct {
	routes    []models.Route
	completed *models.Route

	started       []uuid.UUID
	startErr      error
	exited        []uuid.UUID
	resolveCalls  []lifecycle.ResolveInput
	resolveResult lifecycle.ResolveResult
	workflowCalls []uuid.UUID
	workflowSteps []enums.WorkflowStep
	finishResult  lifecycle.FinishResult
	undoCalls     []lifecycle.UndoInput
	undoResult    lifecycle.UndoResult
	undoErr       error
}

func (s *stubLifecycleService) Route(ctx context.Context, tenantID, routeID uuid.UUID) (*models.Route, error) {
	for i := range s.routes {
		if s.routes[i].ID == routeID {
			return &s.routes[i], nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *stubLifecycleService) OpenRoutesForDay(ctx context.Context, tenantID, driverID uuid.UUID, day time.Time) ([]models.Route, error) {
	return s.routes, nil
}

func (s *stubLifecycleService) CompletedRouteForDay(ctx context.Context, tenantID, driverID uuid.UUID, day time.Time) (*models.Route, error) {
	return s.completed, nil
}

func (s *stubLifecycleService) StartRoute(ctx context.Context, route *models.Route) error {
	if s.startErr != nil {
		return s.startErr
	}
	s.started = append(s.started, route.ID)
	return nil
}

func (s *stubLifecycleService) ExitRoute(ctx context.Context, route *models.Route) error {
	s.exited = append(s.exited, route.ID)
	return nil
}

func (s *stubLifecycleService) ResolveDelivery(ctx context.Context, input lifecycle.ResolveInput) (lifecycle.ResolveResult, error) {
	s.resolveCalls = append(s.resolveCalls, input)
	return s.resolveResult, nil
}

func (s *stubLifecycleService) RecordWorkflowStep(ctx context.Context, deliveryID uuid.UUID, step enums.WorkflowStep) error {
	s.workflowCalls = append(s.workflowCalls, deliveryID)
	s.workflowSteps = append(s.workflowSteps, step)
	return nil
}

func (s *stubLifecycleService) FinishRoute(ctx context.Context, routeID uuid.UUID) (lifecycle.FinishResult, error) {
	return s.finishResult, nil
}

func (s *stubLifecycleService) UndoResolution(ctx context.Context, input lifecycle.UndoInput) (lifecycle.UndoResult, error) {
	s.undoCalls = append(s.undoCalls, input)
	if s.undoErr != nil {
		return lifecycle.UndoResult{}, s.undoErr
	}
	return s.undoResult, nil
}

type stubJourneyService struct {
	status enums.JourneyStatus
	events []enums.JourneyEventType
}

func (s *stubJourneyService) RecordEvent(ctx context.Context, input journeys.EventInput) (*models.DriverJourneyEvent, error) {
	s.events = append(s.events, input.Type)
	return &models.DriverJourneyEvent{ID: uuid.New(), DriverID: input.DriverID, Type: input.Type}, nil
}

func (s *stubJourneyService) CurrentStatus(ctx context.Context, driverID uuid.UUID) (enums.JourneyStatus, error) {
	if s.status == "" {
		return enums.JourneyStatusOffJourney, nil
	}
	return s.status, nil
}

type stubOccurrenceRepo struct {
	created []*models.Occurrence
}

func (r *stubOccurrenceRepo) WithTx(tx *gorm.DB) occurrences.Repository { return r }

func (r *stubOccurrenceRepo) Create(ctx context.Context, occurrence *models.Occurrence) error {
	r.created = append(r.created, occurrence)
	return nil
}

func (r *stubOccurrenceRepo) ListForRoute(ctx context.Context, routeID uuid.UUID) ([]models.Occurrence, error) {
	return nil, nil
}

type fakeSender struct {
	texts     []string
	locations [][2]float64
	sendErr   error
}

func (s *fakeSender) Provider() enums.ProviderKind { return enums.ProviderWhatsApp }

func (s *fakeSender) SendText(ctx context.Context, phone, text string) error {
	if s.sendErr != nil {
		return s.sendErr
	}
	s.texts = append(s.texts, text)
	return nil
}

func (s *fakeSender) SendImage(ctx context.Context, phone, mediaURL string, caption *string) error {
	return nil
}

func (s *fakeSender) SendLocation(ctx context.Context, phone string, lat, lng float64) error {
	s.locations = append(s.locations, [2]float64{lat, lng})
	return nil
}

func (s *fakeSender) Close() error { return nil }

type fakeRegistry struct {
	sender messaging.Sender
}

func (r *fakeRegistry) ForTenant(tenant *models.Tenant) (messaging.Sender, error) {
	if r.sender == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "no sender")
	}
	return r.sender, nil
}

type stubDedupe struct {
	mu   sync.Mutex
	seen map[string]bool
}

func (s *stubDedupe) SetNX(ctx context.Context, key string, value any, ttl time.Duration) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.seen == nil {
		s.seen = map[string]bool{}
	}
	if s.seen[key] {
		return false, nil
	}
	s.seen[key] = true
	return true, nil
}

func (s *stubDedupe) IdempotencyKey(scope, id string) string {
	return fmt.Sprintf("fleetline:idempotency:%s:%s", scope, id)
}

func (s *stubDedupe) Del(ctx context.Context, keys ...string) error { return nil }

type fixture struct {
	dispatcher *Dispatcher
	tenant     *models.Tenant
	driver     *models.Driver
	lifecycle  *stubLifecycleService
	journeys   *stubJourneyService
	occ        *stubOccurrenceRepo
	sink       *stubSink
	classifier *stubClassifier
	sender     *fakeSender
	dedupe     *stubDedupe
}

const driverPhone = "5511999998888"

func newFixture(t *testing.T) *fixture {
	t.Helper()

	tenantID := uuid.New()
	supervisor := "5511900000001"
	tenant := &models.Tenant{
		ID:                tenantID,
		Name:              "Distribuidora Aurora",
		MessagingProvider: enums.ProviderWhatsApp,
		SupervisorPhone:   &supervisor,
	}
	driver := &models.Driver{ID: uuid.New(), TenantID: tenantID, Name: "Carlos", Phone: driverPhone}

	f := &fixture{
		tenant:     tenant,
		driver:     driver,
		lifecycle:  &stubLifecycleService{},
		journeys:   &stubJourneyService{},
		occ:        &stubOccurrenceRepo{},
		sink:       &stubSink{},
		classifier: &stubClassifier{},
		sender:     &fakeSender{},
		dedupe:     &stubDedupe{},
	}

	dispatcher, err := NewDispatcher(Params{
		Repo:        &stubTenantRepo{tenant: tenant},
		Identity:    &stubResolver{driver: driver, phone: driverPhone},
		Classifier:  f.classifier,
		Sink:        f.sink,
		Lifecycle:   f.lifecycle,
		Journeys:    f.journeys,
		Occurrences: f.occ,
		Senders:     &fakeRegistry{sender: f.sender},
		Dedupe:      f.dedupe,
		Logger:      logger.New(logger.Options{Output: io.Discard}),
		Config:      config.DispatchConfig{},
	})
	require.NoError(t, err)
	dispatcher.now = func() time.Time { return time.Date(2025, 3, 10, 14, 0, 0, 0, time.UTC) }
	f.dispatcher = dispatcher
	return f
}

func (f *fixture) message(kind enums.MessageKind, text string) InboundMessage {
	return InboundMessage{
		TenantID:          f.tenant.ID,
		ProviderMessageID: uuid.NewString(),
		RawPhone:          driverPhone,
		Kind:              kind,
		Text:              &text,
	}
}

func plannedRoute(tenantID, driverID uuid.UUID, name string, invoices ...string) models.Route {
	route := models.Route{
		ID:          uuid.New(),
		TenantID:    tenantID,
		DriverID:    &driverID,
		Name:        name,
		ServiceDate: time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC),
		Status:      enums.RouteStatusPlanned,
	}
	for _, invoice := range invoices {
		route.Deliveries = append(route.Deliveries, models.Delivery{
			ID:            uuid.New(),
			RouteID:       route.ID,
			InvoiceNumber: invoice,
			Status:        enums.DeliveryStatusPending,
			Customer:      &models.Customer{ID: uuid.New(), Name: "Mercado " + invoice},
		})
	}
	return route
}

func activeTestRoute(tenantID, driverID uuid.UUID, name string, invoices ...string) models.Route {
	route := plannedRoute(tenantID, driverID, name, invoices...)
	route.Status = enums.RouteStatusActive
	for i := range route.Deliveries {
		route.Deliveries[i].Status = enums.DeliveryStatusInTransit
	}
	return route
}

func TestStartRouteListsWhenNoIdentifierNarrows(t *testing.T) {
	f := newFixture(t)
	f.lifecycle.routes = []models.Route{
		plannedRoute(f.tenant.ID, f.driver.ID, "Zona Sul", "NF-100"),
		plannedRoute(f.tenant.ID, f.driver.ID, "Centro", "NF-200"),
	}
	f.classifier.intent = intents.Intent{Type: enums.IntentStartRoute}

	outcome, err := f.dispatcher.Handle(context.Background(), f.message(enums.MessageKindText, "bom dia, começando"))

	require.NoError(t, err)
	assert.Equal(t, OutcomeAmbiguous, outcome)
	assert.Empty(t, f.lifecycle.started)
	require.Len(t, f.sender.texts, 1)
	assert.Contains(t, f.sender.texts[0], "Zona Sul")
	assert.Contains(t, f.sender.texts[0], "Centro")
}

func TestStartRouteByIdentifierSubstring(t *testing.T) {
	f := newFixture(t)
	zonaSul := plannedRoute(f.tenant.ID, f.driver.ID, "Zona Sul", "NF-100", "NF-101")
	f.lifecycle.routes = []models.Route{zonaSul, plannedRoute(f.tenant.ID, f.driver.ID, "Centro", "NF-200")}
	identifier := "zona"
	f.classifier.intent = intents.Intent{Type: enums.IntentStartRoute, Identifier: &identifier}

	outcome, err := f.dispatcher.Handle(context.Background(), f.message(enums.MessageKindText, "começar a zona sul"))

	require.NoError(t, err)
	assert.Equal(t, OutcomeApplied, outcome)
	require.Len(t, f.lifecycle.started, 1)
	assert.Equal(t, zonaSul.ID, f.lifecycle.started[0])
	require.Len(t, f.sender.texts, 1)
	assert.Contains(t, f.sender.texts[0], "Zona Sul")
}

func TestDeliverUnknownInvoiceRepliesNotFound(t *testing.T) {
	f := newFixture(t)
	f.lifecycle.routes = []models.Route{activeTestRoute(f.tenant.ID, f.driver.ID, "Zona Sul", "NF-100", "NF-200")}
	identifier := "NF-999"
	f.classifier.intent = intents.Intent{Type: enums.IntentDeliver, Identifier: &identifier}

	outcome, err := f.dispatcher.Handle(context.Background(), f.message(enums.MessageKindText, "entreguei a NF-999"))

	require.NoError(t, err)
	assert.Equal(t, OutcomeNotFound, outcome)
	assert.Empty(t, f.lifecycle.resolveCalls)
	require.Len(t, f.sender.texts, 1)
	assert.Contains(t, f.sender.texts[0], "NF-999")
}

func TestDeliverWithImageAttachesProof(t *testing.T) {
	f := newFixture(t)
	route := activeTestRoute(f.tenant.ID, f.driver.ID, "Zona Sul", "NF-100", "NF-200")
	f.lifecycle.routes = []models.Route{route}
	f.lifecycle.resolveResult = lifecycle.ResolveResult{Applied: true, CurrentStatus: enums.DeliveryStatusDelivered, OpenRemaining: 1}
	identifier := "nf-100"
	f.classifier.intent = intents.Intent{Type: enums.IntentDeliver, Identifier: &identifier}

	msg := f.message(enums.MessageKindImage, "")
	msg.Text = nil
	mediaURL := "https://media.example/proof.jpg"
	caption := "entregue NF-100"
	msg.MediaURL = &mediaURL
	msg.Caption = &caption

	outcome, err := f.dispatcher.Handle(context.Background(), msg)

	require.NoError(t, err)
	assert.Equal(t, OutcomeApplied, outcome)
	require.Len(t, f.lifecycle.resolveCalls, 1)
	call := f.lifecycle.resolveCalls[0]
	assert.Equal(t, route.Deliveries[0].ID, call.DeliveryID)
	assert.Equal(t, enums.DeliveryStatusDelivered, call.Outcome)
	require.NotNil(t, call.ProofRef)
	assert.Equal(t, mediaURL, *call.ProofRef)
}

func TestDeliverDuplicateRepliesAlreadyRecorded(t *testing.T) {
	f := newFixture(t)
	route := activeTestRoute(f.tenant.ID, f.driver.ID, "Zona Sul", "NF-100", "NF-200")
	route.Deliveries[0].Status = enums.DeliveryStatusDelivered
	f.lifecycle.routes = []models.Route{route}
	f.lifecycle.resolveResult = lifecycle.ResolveResult{Applied: false, CurrentStatus: enums.DeliveryStatusDelivered}
	identifier := "NF-100"
	f.classifier.intent = intents.Intent{Type: enums.IntentDeliver, Identifier: &identifier}

	outcome, err := f.dispatcher.Handle(context.Background(), f.message(enums.MessageKindText, "entreguei a NF-100"))

	require.NoError(t, err)
	assert.Equal(t, OutcomeDuplicate, outcome)
	require.Len(t, f.sender.texts, 1)
	assert.Contains(t, f.sender.texts[0], "already")
}

func TestUnknownPhoneIsSilentlyIgnored(t *testing.T) {
	f := newFixture(t)
	f.lifecycle.routes = []models.Route{activeTestRoute(f.tenant.ID, f.driver.ID, "Zona Sul", "NF-100")}

	msg := f.message(enums.MessageKindText, "entreguei tudo")
	msg.RawPhone = "5511000000000"

	outcome, err := f.dispatcher.Handle(context.Background(), msg)

	require.NoError(t, err)
	assert.Equal(t, OutcomeIgnored, outcome)
	assert.Empty(t, f.sender.texts)
	assert.Zero(t, f.classifier.calls)
}

func TestClassifierFailureRecordsPhraseAndSendsHint(t *testing.T) {
	f := newFixture(t)
	f.lifecycle.routes = []models.Route{activeTestRoute(f.tenant.ID, f.driver.ID, "Zona Sul", "NF-100")}
	f.classifier.err = pkgerrors.New(pkgerrors.CodeDependency, "classifier timeout")

	outcome, err := f.dispatcher.Handle(context.Background(), f.message(enums.MessageKindText, "me perdi na estrada"))

	require.NoError(t, err)
	assert.Equal(t, OutcomeHelp, outcome)
	require.Len(t, f.sink.phrases, 1)
	assert.Equal(t, "me perdi na estrada", f.sink.phrases[0])
	require.Len(t, f.sender.texts, 1)
	assert.Empty(t, f.lifecycle.resolveCalls)
}

func TestDuplicateProviderMessageIsDropped(t *testing.T) {
	f := newFixture(t)
	f.lifecycle.routes = []models.Route{activeTestRoute(f.tenant.ID, f.driver.ID, "Zona Sul", "NF-100")}
	identifier := "NF-100"
	f.classifier.intent = intents.Intent{Type: enums.IntentDeliver, Identifier: &identifier}
	f.lifecycle.resolveResult = lifecycle.ResolveResult{Applied: true, CurrentStatus: enums.DeliveryStatusDelivered}

	msg := f.message(enums.MessageKindText, "entreguei a NF-100")

	first, err := f.dispatcher.Handle(context.Background(), msg)
	require.NoError(t, err)
	assert.Equal(t, OutcomeApplied, first)

	second, err := f.dispatcher.Handle(context.Background(), msg)
	require.NoError(t, err)
	assert.Equal(t, OutcomeDuplicate, second)

	assert.Equal(t, 1, f.classifier.calls)
	assert.Len(t, f.lifecycle.resolveCalls, 1)
	assert.Len(t, f.sender.texts, 1)
}

func TestNoRoutesRepliesNothingScheduled(t *testing.T) {
	f := newFixture(t)
	f.classifier.intent = intents.Intent{Type: enums.IntentDeliver}

	outcome, err := f.dispatcher.Handle(context.Background(), f.message(enums.MessageKindText, "entreguei"))

	require.NoError(t, err)
	assert.Equal(t, OutcomeInfo, outcome)
	require.Len(t, f.sender.texts, 1)
	assert.Contains(t, f.sender.texts[0], "no route scheduled")
}

func TestUndoReachesCompletedRouteAfterDayIsDone(t *testing.T) {
	f := newFixture(t)
	completed := activeTestRoute(f.tenant.ID, f.driver.ID, "Zona Sul", "NF-100")
	completed.Status = enums.RouteStatusCompleted
	f.lifecycle.completed = &completed
	f.classifier.intent = intents.Intent{Type: enums.IntentUndo}
	f.lifecycle.undoResult = lifecycle.UndoResult{
		Applied:       true,
		Delivery:      &completed.Deliveries[0],
		RouteReopened: true,
	}

	outcome, err := f.dispatcher.Handle(context.Background(), f.message(enums.MessageKindText, "desfazer a última"))

	require.NoError(t, err)
	assert.Equal(t, OutcomeApplied, outcome)
	require.Len(t, f.lifecycle.undoCalls, 1)
	assert.Equal(t, completed.ID, f.lifecycle.undoCalls[0].RouteID)

	// An applied undo leaves an audit note for the supervisor.
	require.Len(t, f.occ.created, 1)
	assert.Contains(t, f.occ.created[0].Description, "NF-100")
	require.NotNil(t, f.occ.created[0].RouteID)
	assert.Equal(t, completed.ID, *f.occ.created[0].RouteID)
}

func TestAnythingElseAfterDayIsDoneGetsFinishedReply(t *testing.T) {
	f := newFixture(t)
	completed := activeTestRoute(f.tenant.ID, f.driver.ID, "Zona Sul", "NF-100")
	completed.Status = enums.RouteStatusCompleted
	f.lifecycle.completed = &completed
	identifier := "NF-100"
	f.classifier.intent = intents.Intent{Type: enums.IntentDeliver, Identifier: &identifier}

	outcome, err := f.dispatcher.Handle(context.Background(), f.message(enums.MessageKindText, "entreguei a NF-100"))

	require.NoError(t, err)
	assert.Equal(t, OutcomeInfo, outcome)
	assert.Empty(t, f.lifecycle.resolveCalls)
	require.Len(t, f.sender.texts, 1)
	assert.Contains(t, f.sender.texts[0], "already finished")
}

func TestResumeWithoutOpenBreakIsRefused(t *testing.T) {
	f := newFixture(t)
	f.lifecycle.routes = []models.Route{activeTestRoute(f.tenant.ID, f.driver.ID, "Zona Sul", "NF-100")}
	f.journeys.status = enums.JourneyStatusOnJourney
	f.classifier.intent = intents.Intent{Type: enums.IntentResume}

	outcome, err := f.dispatcher.Handle(context.Background(), f.message(enums.MessageKindText, "voltei"))

	require.NoError(t, err)
	assert.Equal(t, OutcomeRefused, outcome)
	assert.Empty(t, f.journeys.events)
}

func TestResumeClosesTheOpenMealBreak(t *testing.T) {
	f := newFixture(t)
	f.lifecycle.routes = []models.Route{activeTestRoute(f.tenant.ID, f.driver.ID, "Zona Sul", "NF-100")}
	f.journeys.status = enums.JourneyStatusMealBreak
	f.classifier.intent = intents.Intent{Type: enums.IntentResume}

	outcome, err := f.dispatcher.Handle(context.Background(), f.message(enums.MessageKindText, "voltei do almoço"))

	require.NoError(t, err)
	assert.Equal(t, OutcomeApplied, outcome)
	require.Len(t, f.journeys.events, 1)
	assert.Equal(t, enums.JourneyEventMealEnd, f.journeys.events[0])
}

func TestStateConflictMessageIsRelayedVerbatim(t *testing.T) {
	f := newFixture(t)
	f.lifecycle.routes = []models.Route{plannedRoute(f.tenant.ID, f.driver.ID, "Zona Sul", "NF-100")}
	f.lifecycle.startErr = pkgerrors.New(pkgerrors.CodeStateConflict, "another route is already active, finish or exit it first")
	f.classifier.intent = intents.Intent{Type: enums.IntentStartRoute}

	outcome, err := f.dispatcher.Handle(context.Background(), f.message(enums.MessageKindText, "começar rota"))

	require.NoError(t, err)
	assert.Equal(t, OutcomeRefused, outcome)
	require.Len(t, f.sender.texts, 1)
	assert.Equal(t, "another route is already active, finish or exit it first", f.sender.texts[0])
}

func TestWorkflowStepDefaultsToNextOpenDelivery(t *testing.T) {
	f := newFixture(t)
	route := activeTestRoute(f.tenant.ID, f.driver.ID, "Zona Sul", "NF-100", "NF-200")
	route.Deliveries[0].Status = enums.DeliveryStatusDelivered
	f.lifecycle.routes = []models.Route{route}
	f.classifier.intent = intents.Intent{Type: enums.IntentArrived}

	outcome, err := f.dispatcher.Handle(context.Background(), f.message(enums.MessageKindText, "cheguei"))

	require.NoError(t, err)
	assert.Equal(t, OutcomeApplied, outcome)
	require.Len(t, f.lifecycle.workflowCalls, 1)
	assert.Equal(t, route.Deliveries[1].ID, f.lifecycle.workflowCalls[0])
	assert.Equal(t, enums.WorkflowStepArrived, f.lifecycle.workflowSteps[0])
}

func TestDeliverOnPlannedRouteIsRefused(t *testing.T) {
	f := newFixture(t)
	f.lifecycle.routes = []models.Route{plannedRoute(f.tenant.ID, f.driver.ID, "Zona Sul", "NF-100")}
	identifier := "NF-100"
	f.classifier.intent = intents.Intent{Type: enums.IntentDeliver, Identifier: &identifier}

	outcome, err := f.dispatcher.Handle(context.Background(), f.message(enums.MessageKindText, "entreguei a NF-100"))

	require.NoError(t, err)
	assert.Equal(t, OutcomeRefused, outcome)
	assert.Empty(t, f.lifecycle.resolveCalls)
	require.Len(t, f.sender.texts, 1)
	assert.Contains(t, f.sender.texts[0], "start route")
}

func TestSendFailureDoesNotFailProcessing(t *testing.T) {
	f := newFixture(t)
	route := activeTestRoute(f.tenant.ID, f.driver.ID, "Zona Sul", "NF-100")
	f.lifecycle.routes = []models.Route{route}
	f.lifecycle.resolveResult = lifecycle.ResolveResult{Applied: true, CurrentStatus: enums.DeliveryStatusDelivered}
	identifier := "NF-100"
	f.classifier.intent = intents.Intent{Type: enums.IntentDeliver, Identifier: &identifier}
	f.sender.sendErr = pkgerrors.New(pkgerrors.CodeDependency, "gateway down")

	outcome, err := f.dispatcher.Handle(context.Background(), f.message(enums.MessageKindText, "entreguei a NF-100"))

	require.NoError(t, err)
	assert.Equal(t, OutcomeApplied, outcome)
	assert.Len(t, f.lifecycle.resolveCalls, 1)
}

func TestIncidentRecordsOccurrenceOnActiveRoute(t *testing.T) {
	f := newFixture(t)
	route := activeTestRoute(f.tenant.ID, f.driver.ID, "Zona Sul", "NF-100")
	f.lifecycle.routes = []models.Route{route}
	f.classifier.intent = intents.Intent{Type: enums.IntentIncident}

	outcome, err := f.dispatcher.Handle(context.Background(), f.message(enums.MessageKindText, "furou o pneu na marginal"))

	require.NoError(t, err)
	assert.Equal(t, OutcomeApplied, outcome)
	require.Len(t, f.occ.created, 1)
	created := f.occ.created[0]
	assert.Equal(t, "furou o pneu na marginal", created.Description)
	require.NotNil(t, created.RouteID)
	assert.Equal(t, route.ID, *created.RouteID)
}

func TestNavigateSendsCustomerLocation(t *testing.T) {
	f := newFixture(t)
	route := activeTestRoute(f.tenant.ID, f.driver.ID, "Zona Sul", "NF-100")
	lat, lng := -23.5505, -46.6333
	route.Deliveries[0].Customer.Lat = &lat
	route.Deliveries[0].Customer.Lng = &lng
	f.lifecycle.routes = []models.Route{route}
	f.classifier.intent = intents.Intent{Type: enums.IntentNavigate}

	outcome, err := f.dispatcher.Handle(context.Background(), f.message(enums.MessageKindText, "como chego lá"))

	require.NoError(t, err)
	assert.Equal(t, OutcomeInfo, outcome)
	require.Len(t, f.sender.locations, 1)
	assert.Equal(t, [2]float64{lat, lng}, f.sender.locations[0])
	assert.Empty(t, f.sender.texts)
}
