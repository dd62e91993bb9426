package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/pratik-mahalle/petalert/internal/domain/subscription"
	apperrors "github.com/pratik-mahalle/petalert/internal/pkg/errors"
	"github.com/pratik-mahalle/petalert/internal/testutil"
)

func TestSubscriptionRepository(t *testing.T) {
	db := testutil.NewTestDB(t)
	defer testutil.CleanupDB(db)

	owner := testutil.SeedUser(t, db, "owner@example.com")
	watcher := testutil.SeedUser(t, db, "watcher@example.com")
	petID := testutil.SeedPet(t, db, owner, "Rex")
	a, _ := createAlert(t, NewAlertRepository(db), petID, owner)

	repo := NewSubscriptionRepository(db)
	ctx := context.Background()
	now := time.Now().UTC()

	s := &subscription.Subscription{AlertID: a.ID, UserID: watcher, Active: true, SubscribedAt: now, UpdatedAt: now}
	if err := repo.Save(ctx, s); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if s.ID == 0 {
		t.Fatal("Save() did not set ID")
	}

	dup := &subscription.Subscription{AlertID: a.ID, UserID: watcher, Active: true, SubscribedAt: now, UpdatedAt: now}
	if err := repo.Save(ctx, dup); !errors.Is(err, subscription.ErrAlreadySubscribed) {
		t.Errorf("duplicate Save() error = %v, want ErrAlreadySubscribed", err)
	}

	exists, err := repo.ExistsFor(ctx, a.ID, watcher)
	if err != nil || !exists {
		t.Errorf("ExistsFor() = %v, %v; want true", exists, err)
	}

	s.Active = false
	if err := repo.Save(ctx, s); err != nil {
		t.Fatalf("Save() deactivate error = %v", err)
	}

	active, err := repo.FindActiveByAlert(ctx, a.ID)
	if err != nil {
		t.Fatalf("FindActiveByAlert() error = %v", err)
	}
	if len(active) != 0 {
		t.Errorf("FindActiveByAlert() = %d rows, want 0", len(active))
	}

	row, err := repo.FindFor(ctx, a.ID, watcher)
	if err != nil {
		t.Fatalf("FindFor() error = %v", err)
	}
	if row.Active || row.ID != s.ID {
		t.Errorf("FindFor() = %+v", row)
	}

	all, _ := repo.FindByUser(ctx, watcher)
	if len(all) != 1 {
		t.Errorf("FindByUser() = %d rows, want 1", len(all))
	}

	if _, err := repo.FindFor(ctx, a.ID, owner); !apperrors.IsNotFound(err) {
		t.Errorf("FindFor() missing error = %v, want not found", err)
	}
}
