package postgres

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/pratik-mahalle/petalert/internal/domain/alert"
	"github.com/pratik-mahalle/petalert/internal/testutil"
)

func createAlert(t *testing.T, repo alert.Repository, petID, ownerID int64) (*alert.Alert, *alert.Event) {
	t.Helper()
	a, ev := alert.New(petID, ownerID, "Lost dog", "Black lab", time.Now().UTC())
	if err := repo.Create(context.Background(), &a, &ev); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	return &a, &ev
}

func TestAlertRepository_Create(t *testing.T) {
	db := testutil.NewTestDB(t)
	defer testutil.CleanupDB(db)

	owner := testutil.SeedUser(t, db, "owner@example.com")
	petID := testutil.SeedPet(t, db, owner, "Rex")

	repo := NewAlertRepository(db)
	events := NewEventRepository(db)
	ctx := context.Background()

	a, ev := createAlert(t, repo, petID, owner)
	if a.ID == 0 {
		t.Fatal("Create() did not set alert ID")
	}
	if ev.AlertID != a.ID {
		t.Errorf("event AlertID = %d, want %d", ev.AlertID, a.ID)
	}

	got, err := repo.GetByID(ctx, a.ID)
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if got.Status != alert.StatusOpened || got.Version != 1 || got.Title != "Lost dog" {
		t.Errorf("GetByID() = %+v", got)
	}

	history, err := events.HistoryFor(ctx, a.ID)
	if err != nil {
		t.Fatalf("HistoryFor() error = %v", err)
	}
	if len(history) != 1 || history[0].Kind != alert.EventCreated {
		t.Errorf("history = %+v, want one created event", history)
	}
}

func TestAlertRepository_OneActivePerPet(t *testing.T) {
	db := testutil.NewTestDB(t)
	defer testutil.CleanupDB(db)

	owner := testutil.SeedUser(t, db, "owner@example.com")
	petID := testutil.SeedPet(t, db, owner, "Rex")
	repo := NewAlertRepository(db)
	ctx := context.Background()

	first, _ := createAlert(t, repo, petID, owner)

	second, ev := alert.New(petID, owner, "Again", "", time.Now().UTC())
	if err := repo.Create(ctx, &second, &ev); !errors.Is(err, alert.ErrActiveAlertExists) {
		t.Fatalf("Create() error = %v, want ErrActiveAlertExists", err)
	}

	closed, closeEv, err := alert.Transition(*first, alert.TransitionCommand{
		Target: alert.StatusClosed, ClosureReason: alert.ClosureCancelled, ActorID: owner, At: time.Now().UTC(),
	})
	if err != nil {
		t.Fatalf("Transition() error = %v", err)
	}
	closed.Version = first.Version + 1
	if err := repo.Update(ctx, &closed, first.Version, &closeEv); err != nil {
		t.Fatalf("Update() error = %v", err)
	}

	third, ev3 := alert.New(petID, owner, "Lost again", "", time.Now().UTC())
	if err := repo.Create(ctx, &third, &ev3); err != nil {
		t.Fatalf("Create() after close error = %v", err)
	}

	active, err := repo.ExistsActiveForPet(ctx, petID)
	if err != nil || !active {
		t.Errorf("ExistsActiveForPet() = %v, %v; want true", active, err)
	}

	all, err := repo.ListByPet(ctx, petID)
	if err != nil {
		t.Fatalf("ListByPet() error = %v", err)
	}
	if len(all) != 2 {
		t.Errorf("ListByPet() returned %d alerts, want 2", len(all))
	}
}

func TestAlertRepository_UpdateStaleVersion(t *testing.T) {
	db := testutil.NewTestDB(t)
	defer testutil.CleanupDB(db)

	owner := testutil.SeedUser(t, db, "owner@example.com")
	petID := testutil.SeedPet(t, db, owner, "Rex")
	repo := NewAlertRepository(db)
	events := NewEventRepository(db)
	ctx := context.Background()

	a, _ := createAlert(t, repo, petID, owner)
	loc := &alert.Location{Latitude: 52.52, Longitude: 13.40}

	seen, seenEv, _ := alert.Transition(*a, alert.TransitionCommand{Target: alert.StatusSeen, ActorID: owner, Location: loc, At: time.Now().UTC()})
	seen.Version = a.Version + 1
	if err := repo.Update(ctx, &seen, a.Version, &seenEv); err != nil {
		t.Fatalf("Update() error = %v", err)
	}

	// a second writer still holding version 1
	safe, safeEv, _ := alert.Transition(*a, alert.TransitionCommand{Target: alert.StatusSafe, ActorID: owner, At: time.Now().UTC()})
	safe.Version = a.Version + 1
	err := repo.Update(ctx, &safe, a.Version, &safeEv)

	var stale *alert.StaleStateError
	if !errors.As(err, &stale) {
		t.Fatalf("Update() error = %v, want StaleStateError", err)
	}
	if !errors.Is(err, alert.ErrConcurrentModification) {
		t.Error("StaleStateError does not unwrap to ErrConcurrentModification")
	}
	if stale.Current.Status != alert.StatusSeen || stale.Current.Version != 2 {
		t.Errorf("Current = %+v, want SEEN at version 2", stale.Current)
	}

	history, _ := events.HistoryFor(ctx, a.ID)
	if len(history) != 2 {
		t.Fatalf("history has %d events, want 2", len(history))
	}
	if history[0].Kind != alert.EventStatusChanged || history[0].NewStatus != alert.StatusSeen {
		t.Errorf("latest event = %+v", history[0])
	}
	if history[0].Location == nil || history[0].Location.Latitude != 52.52 {
		t.Errorf("location = %+v", history[0].Location)
	}
	if history[1].Location != nil {
		t.Errorf("created event has location %+v", history[1].Location)
	}

	latest, err := events.LatestFor(ctx, a.ID)
	if err != nil || latest.ID != seenEv.ID {
		t.Errorf("LatestFor() = %+v, %v", latest, err)
	}
}

func TestAlertRepository_List(t *testing.T) {
	db := testutil.NewTestDB(t)
	defer testutil.CleanupDB(db)

	owner := testutil.SeedUser(t, db, "owner@example.com")
	repo := NewAlertRepository(db)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		petID := testutil.SeedPet(t, db, owner, fmt.Sprintf("pet-%d", i))
		createAlert(t, repo, petID, owner)
	}

	alerts, total, err := repo.List(ctx, alert.Filter{Status: alert.StatusOpened}, 2, 0)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if total != 3 || len(alerts) != 2 {
		t.Errorf("List() = %d alerts, total %d; want 2, 3", len(alerts), total)
	}

	_, total, _ = repo.List(ctx, alert.Filter{Status: alert.StatusClosed}, 10, 0)
	if total != 0 {
		t.Errorf("closed total = %d, want 0", total)
	}
}

func TestAlertRepository_GetByIDNotFound(t *testing.T) {
	db := testutil.NewTestDB(t)
	defer testutil.CleanupDB(db)

	if _, err := NewAlertRepository(db).GetByID(context.Background(), 999); err == nil {
		t.Error("GetByID() expected error for missing alert")
	}
	if _, err := NewEventRepository(db).LatestFor(context.Background(), 999); err == nil {
		t.Error("LatestFor() expected error for alert without events")
	}
}

func TestAlertRepository_CreateRollsBackOnEventFailure(t *testing.T) {
	mockDB, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New() error = %v", err)
	}
	defer mockDB.Close()

	db := sqlx.NewDb(mockDB, "sqlmock")
	repo := NewAlertRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery("INSERT INTO alerts").WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(5))
	mock.ExpectExec("INSERT INTO alert_events").WillReturnError(fmt.Errorf("disk full"))
	mock.ExpectRollback()

	a, ev := alert.New(1, 1, "Lost", "", time.Now().UTC())
	if err := repo.Create(context.Background(), &a, &ev); err == nil {
		t.Fatal("Create() expected error")
	}
	if a.ID != 0 {
		t.Errorf("alert ID = %d after rollback, want 0", a.ID)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestAlertRepository_UpdateWritesAllEvents(t *testing.T) {
	db := testutil.NewTestDB(t)
	defer testutil.CleanupDB(db)

	owner := testutil.SeedUser(t, db, "owner@example.com")
	petID := testutil.SeedPet(t, db, owner, "Rex")
	repo := NewAlertRepository(db)
	events := NewEventRepository(db)
	ctx := context.Background()

	a, _ := createAlert(t, repo, petID, owner)
	at := time.Now().UTC()

	titled, titleEv, err := alert.EditTitle(*a, "Lost beagle near the park", owner, at)
	if err != nil {
		t.Fatalf("EditTitle() error = %v", err)
	}
	edited, descEv, err := alert.EditDescription(titled, "Red collar", owner, at)
	if err != nil {
		t.Fatalf("EditDescription() error = %v", err)
	}
	edited.Version = a.Version + 1

	if err := repo.Update(ctx, &edited, a.Version, &titleEv, &descEv); err != nil {
		t.Fatalf("Update() error = %v", err)
	}

	stored, _ := repo.GetByID(ctx, a.ID)
	if stored.Title != "Lost beagle near the park" || stored.Description != "Red collar" || stored.Version != 2 {
		t.Errorf("stored = %+v", stored)
	}
	history, err := events.HistoryFor(ctx, a.ID)
	if err != nil {
		t.Fatalf("HistoryFor() error = %v", err)
	}
	if len(history) != 3 {
		t.Errorf("history length = %d, want 3", len(history))
	}
}
