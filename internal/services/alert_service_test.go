package services

import (
	"context"
	stderrors "errors"
	"sync"
	"testing"

	"github.com/pratik-mahalle/petalert/internal/domain/alert"
	"github.com/pratik-mahalle/petalert/internal/domain/pet"
	"github.com/pratik-mahalle/petalert/internal/pkg/errors"
	"github.com/pratik-mahalle/petalert/internal/pkg/logger"
	"github.com/pratik-mahalle/petalert/internal/testutil"
)

type alertFixture struct {
	pets       *testutil.MockPetRepository
	events     *testutil.MockEventRepository
	alerts     *testutil.MockAlertRepository
	subsRepo   *testutil.MockSubscriptionRepository
	dispatcher *testutil.MockDispatcher
	sink       *testutil.MockEventSink
	service    alert.Service
	petID      int64
}

func newAlertFixture(t *testing.T) *alertFixture {
	t.Helper()
	log := logger.New(logger.Config{Level: "error", Format: "json"})

	f := &alertFixture{
		pets:       testutil.NewMockPetRepository(),
		events:     testutil.NewMockEventRepository(),
		subsRepo:   testutil.NewMockSubscriptionRepository(),
		dispatcher: &testutil.MockDispatcher{},
		sink:       &testutil.MockEventSink{},
	}
	f.alerts = testutil.NewMockAlertRepository(f.events)
	subs := NewSubscriptionService(f.subsRepo, f.alerts, log)
	f.service = NewAlertService(f.alerts, f.events, f.pets, subs, f.dispatcher, f.sink, log)

	p := &pet.Pet{OwnerID: 1, Name: "Rex", Species: "dog"}
	if err := f.pets.Create(context.Background(), p); err != nil {
		t.Fatalf("failed to seed pet: %v", err)
	}
	f.petID = p.ID
	return f
}

func (f *alertFixture) create(t *testing.T) *alert.Alert {
	t.Helper()
	a, err := f.service.Create(context.Background(), 1, alert.CreateInput{PetID: f.petID, Title: "Lost beagle", Description: "Brown collar"})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	return a
}

func TestAlertService_Create(t *testing.T) {
	f := newAlertFixture(t)
	ctx := context.Background()

	a := f.create(t)

	if a.ID == 0 {
		t.Fatal("Create() returned alert without ID")
	}
	if a.Status != alert.StatusOpened || a.Version != 1 || a.OwnerID != 1 {
		t.Errorf("Create() = %+v", a)
	}

	history, err := f.service.History(ctx, a.ID)
	if err != nil {
		t.Fatalf("History() error = %v", err)
	}
	if len(history) != 1 || history[0].Kind != alert.EventCreated {
		t.Errorf("history = %+v, want one creation event", history)
	}

	ok, err := f.subsRepo.ExistsFor(ctx, a.ID, 1)
	if err != nil || !ok {
		t.Errorf("reporter not subscribed: ok=%v err=%v", ok, err)
	}
	if len(f.sink.Events) != 1 {
		t.Errorf("streamed %d events, want 1", len(f.sink.Events))
	}
	if len(f.dispatcher.Calls()) != 0 {
		t.Error("creation must not dispatch notifications")
	}
}

func TestAlertService_CreateValidation(t *testing.T) {
	f := newAlertFixture(t)
	ctx := context.Background()

	tests := []struct {
		name string
		in   alert.CreateInput
		code string
	}{
		{name: "empty title", in: alert.CreateInput{PetID: f.petID, Title: "  "}, code: errors.ErrCodeValidation},
		{name: "unknown pet", in: alert.CreateInput{PetID: 999, Title: "Lost"}, code: errors.ErrCodeNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.service.Create(ctx, 1, tt.in)
			appErr, ok := errors.As(err)
			if !ok || appErr.Code != tt.code {
				t.Errorf("Create() error = %v, want code %s", err, tt.code)
			}
		})
	}

	if len(f.events.Events) != 0 {
		t.Errorf("rejected creates recorded %d events", len(f.events.Events))
	}
}

func TestAlertService_OneActiveAlertPerPet(t *testing.T) {
	f := newAlertFixture(t)
	ctx := context.Background()
	a := f.create(t)

	_, err := f.service.Create(ctx, 1, alert.CreateInput{PetID: f.petID, Title: "Again"})
	if !stderrors.Is(err, alert.ErrActiveAlertExists) {
		t.Fatalf("second Create() error = %v, want ErrActiveAlertExists", err)
	}

	if _, err := f.service.MarkAsClosed(ctx, 1, a.ID, alert.ClosureCancelled); err != nil {
		t.Fatalf("MarkAsClosed() error = %v", err)
	}
	if _, err := f.service.Create(ctx, 1, alert.CreateInput{PetID: f.petID, Title: "Lost again"}); err != nil {
		t.Errorf("Create() after close error = %v", err)
	}
}

func TestAlertService_AutoSubscribeIsBestEffort(t *testing.T) {
	f := newAlertFixture(t)
	f.subsRepo.SaveError = errors.DatabaseError("Failed to save subscription", stderrors.New("disk full"))

	a := f.create(t)

	if a.ID == 0 {
		t.Error("alert should be created even if the subscription fails")
	}
}

func TestAlertService_ChangeStatus(t *testing.T) {
	f := newAlertFixture(t)
	ctx := context.Background()
	a := f.create(t)

	loc := &alert.Location{Latitude: 52.52, Longitude: 13.405}
	seen, err := f.service.MarkAsSeen(ctx, 2, a.ID, loc)
	if err != nil {
		t.Fatalf("MarkAsSeen() error = %v", err)
	}
	if seen.Status != alert.StatusSeen || seen.Version != 2 {
		t.Errorf("MarkAsSeen() = status %s version %d", seen.Status, seen.Version)
	}

	latest, err := f.service.LatestEvent(ctx, a.ID)
	if err != nil {
		t.Fatalf("LatestEvent() error = %v", err)
	}
	if latest.PreviousStatus != alert.StatusOpened || latest.NewStatus != alert.StatusSeen || latest.ActorID != 2 {
		t.Errorf("latest event = %+v", latest)
	}
	if latest.Location == nil || latest.Location.Latitude != 52.52 {
		t.Errorf("latest location = %+v", latest.Location)
	}

	calls := f.dispatcher.Calls()
	if len(calls) != 1 {
		t.Fatalf("dispatch calls = %d, want 1", len(calls))
	}
	if calls[0].AlertEventID != latest.ID || calls[0].NewStatus != alert.StatusSeen || calls[0].PetID != f.petID {
		t.Errorf("dispatched change = %+v", calls[0])
	}
}

func TestAlertService_RejectedTransitionLeavesNoTrace(t *testing.T) {
	f := newAlertFixture(t)
	ctx := context.Background()
	a := f.create(t)

	if _, err := f.service.MarkAsSafe(ctx, 1, a.ID, nil); err != nil {
		t.Fatalf("MarkAsSafe() error = %v", err)
	}
	before := len(f.events.Events)

	tests := []struct {
		name    string
		cmd     alert.TransitionCommand
		wantErr error
	}{
		{name: "safe to seen", cmd: alert.TransitionCommand{Target: alert.StatusSeen}, wantErr: alert.ErrInvalidTransition},
		{name: "safe to safe", cmd: alert.TransitionCommand{Target: alert.StatusSafe}, wantErr: alert.ErrInvalidTransition},
		{name: "close without reason", cmd: alert.TransitionCommand{Target: alert.StatusClosed}, wantErr: alert.ErrMissingClosureReason},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.service.ChangeStatus(ctx, a.ID, tt.cmd)
			if !stderrors.Is(err, tt.wantErr) {
				t.Errorf("ChangeStatus() error = %v, want %v", err, tt.wantErr)
			}
		})
	}

	stored, _ := f.service.GetByID(ctx, a.ID)
	if stored.Status != alert.StatusSafe {
		t.Errorf("status = %s, want SAFE", stored.Status)
	}
	if len(f.events.Events) != before {
		t.Errorf("events = %d, want %d", len(f.events.Events), before)
	}
	if len(f.dispatcher.Calls()) != 1 {
		t.Errorf("dispatch calls = %d, want 1", len(f.dispatcher.Calls()))
	}
}

func TestAlertService_DispatchFailureDoesNotFailTransition(t *testing.T) {
	f := newAlertFixture(t)
	f.dispatcher.Err = stderrors.New("broker down")
	a := f.create(t)

	got, err := f.service.MarkAsSeen(context.Background(), 1, a.ID, nil)
	if err != nil {
		t.Fatalf("MarkAsSeen() error = %v", err)
	}
	if got.Status != alert.StatusSeen {
		t.Errorf("status = %s, want SEEN", got.Status)
	}
}

func TestAlertService_Edit(t *testing.T) {
	f := newAlertFixture(t)
	ctx := context.Background()
	a := f.create(t)

	title := "Lost beagle near the park"
	desc := "Red collar, answers to Rex"
	edited, err := f.service.Edit(ctx, 1, a.ID, alert.EditInput{Title: &title, Description: &desc})
	if err != nil {
		t.Fatalf("Edit() error = %v", err)
	}
	if edited.Title != title || edited.Description != desc || edited.Version != 2 {
		t.Errorf("Edit() = %+v", edited)
	}

	history, _ := f.service.History(ctx, a.ID)
	if len(history) != 3 {
		t.Fatalf("history length = %d, want 3", len(history))
	}
	if len(f.dispatcher.Calls()) != 0 {
		t.Error("edits must not notify subscribers")
	}

	if _, err := f.service.Edit(ctx, 1, a.ID, alert.EditInput{}); err == nil {
		t.Error("Edit() with no fields should fail")
	}

	if _, err := f.service.MarkAsSeen(ctx, 1, a.ID, nil); err != nil {
		t.Fatalf("MarkAsSeen() error = %v", err)
	}
	_, err = f.service.Edit(ctx, 1, a.ID, alert.EditInput{Title: &title})
	if !stderrors.Is(err, alert.ErrModificationNotAllowed) {
		t.Errorf("Edit() on SEEN error = %v, want ErrModificationNotAllowed", err)
	}
}

func TestAlertService_EditIsAllOrNothing(t *testing.T) {
	f := newAlertFixture(t)
	ctx := context.Background()
	a := f.create(t)

	title := "Lost beagle near the park"
	sameDesc := a.Description
	_, err := f.service.Edit(ctx, 1, a.ID, alert.EditInput{Title: &title, Description: &sameDesc})
	if err == nil {
		t.Fatal("Edit() with an unchanged description should fail")
	}

	stored, err := f.service.GetByID(ctx, a.ID)
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if stored.Title != a.Title || stored.Version != a.Version {
		t.Errorf("stored alert = %+v, want title %q at version %d", stored, a.Title, a.Version)
	}

	history, _ := f.service.History(ctx, a.ID)
	if len(history) != 1 {
		t.Errorf("history length = %d, want only the creation event", len(history))
	}
	if len(f.sink.Events) != 1 {
		t.Errorf("streamed %d events, want only the creation event", len(f.sink.Events))
	}
}

func TestAlertService_NotFound(t *testing.T) {
	f := newAlertFixture(t)
	ctx := context.Background()

	if _, err := f.service.MarkAsSeen(ctx, 1, 404, nil); !errors.IsNotFound(err) {
		t.Errorf("MarkAsSeen() error = %v, want not found", err)
	}
	if _, err := f.service.History(ctx, 404); !errors.IsNotFound(err) {
		t.Errorf("History() error = %v, want not found", err)
	}
}

// barrierRepo holds every GetByID until both racing requests have read
// the same version of the alert.
type barrierRepo struct {
	*testutil.MockAlertRepository
	reads *sync.WaitGroup
}

func (b *barrierRepo) GetByID(ctx context.Context, id int64) (*alert.Alert, error) {
	a, err := b.MockAlertRepository.GetByID(ctx, id)
	b.reads.Done()
	b.reads.Wait()
	return a, err
}

func TestAlertService_ConcurrentSafeAndClose(t *testing.T) {
	f := newAlertFixture(t)
	ctx := context.Background()
	a := f.create(t)
	log := logger.New(logger.Config{Level: "error", Format: "json"})

	reads := &sync.WaitGroup{}
	reads.Add(2)
	racing := NewAlertService(&barrierRepo{MockAlertRepository: f.alerts, reads: reads}, f.events, f.pets,
		NewSubscriptionService(f.subsRepo, f.alerts, log), f.dispatcher, nil, log)

	cmds := []alert.TransitionCommand{
		{Target: alert.StatusSafe, ActorID: 1},
		{Target: alert.StatusClosed, ActorID: 1, ClosureReason: alert.ClosureFounded},
	}
	results := make([]*alert.Alert, len(cmds))
	errs := make([]error, len(cmds))

	var wg sync.WaitGroup
	for i, cmd := range cmds {
		wg.Add(1)
		go func(i int, cmd alert.TransitionCommand) {
			defer wg.Done()
			results[i], errs[i] = racing.ChangeStatus(ctx, a.ID, cmd)
		}(i, cmd)
	}
	wg.Wait()

	winners := 0
	var stale *alert.StaleStateError
	for i := range cmds {
		switch {
		case errs[i] == nil:
			winners++
		case stderrors.As(errs[i], &stale):
			if !stderrors.Is(errs[i], alert.ErrConcurrentModification) {
				t.Errorf("stale error does not match ErrConcurrentModification")
			}
		default:
			t.Errorf("unexpected error: %v", errs[i])
		}
	}
	if winners != 1 || stale == nil {
		t.Fatalf("winners = %d, stale = %v; want exactly one of each", winners, stale)
	}

	stored, _ := f.alerts.GetByID(ctx, a.ID)
	if stale.Current == nil || stale.Current.Status != stored.Status {
		t.Errorf("stale error current = %+v, stored status = %s", stale.Current, stored.Status)
	}

	history, _ := f.events.HistoryFor(ctx, a.ID)
	statusEvents := 0
	for _, ev := range history {
		if ev.IsStatusEvent() {
			statusEvents++
		}
	}
	if statusEvents != 1 {
		t.Errorf("status events = %d, want exactly 1", statusEvents)
	}
	if len(f.dispatcher.Calls()) != 1 {
		t.Errorf("dispatch calls = %d, want 1", len(f.dispatcher.Calls()))
	}
}

func TestAlertService_ListByPet(t *testing.T) {
	f := newAlertFixture(t)
	ctx := context.Background()
	a := f.create(t)
	if _, err := f.service.MarkAsClosed(ctx, 1, a.ID, alert.ClosureDuplicated); err != nil {
		t.Fatalf("MarkAsClosed() error = %v", err)
	}
	f.create(t)

	alerts, err := f.service.ListByPet(ctx, f.petID)
	if err != nil {
		t.Fatalf("ListByPet() error = %v", err)
	}
	if len(alerts) != 2 {
		t.Errorf("ListByPet() = %d alerts, want 2", len(alerts))
	}

	list, total, err := f.service.List(ctx, alert.Filter{Status: alert.StatusOpened}, 10, 0)
	if err != nil || total != 1 || len(list) != 1 {
		t.Errorf("List(OPENED) = %d/%d, err %v", len(list), total, err)
	}
}
