package postgres

import (
	"context"
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pratik-mahalle/petalert/internal/domain/alert"
	"github.com/pratik-mahalle/petalert/internal/pkg/errors"
)

const eventColumns = `id, alert_id, kind, previous_status, new_status, old_value, new_value,
	latitude, longitude, closure_reason, actor_id, created_at`

type eventRow struct {
	ID             string          `db:"id"`
	AlertID        int64           `db:"alert_id"`
	Kind           string          `db:"kind"`
	PreviousStatus string          `db:"previous_status"`
	NewStatus      string          `db:"new_status"`
	OldValue       string          `db:"old_value"`
	NewValue       string          `db:"new_value"`
	Latitude       sql.NullFloat64 `db:"latitude"`
	Longitude      sql.NullFloat64 `db:"longitude"`
	ClosureReason  string          `db:"closure_reason"`
	ActorID        int64           `db:"actor_id"`
	CreatedAt      time.Time       `db:"created_at"`
}

func (row *eventRow) toEvent() *alert.Event {
	ev := &alert.Event{
		ID:             row.ID,
		AlertID:        row.AlertID,
		Kind:           alert.EventKind(row.Kind),
		PreviousStatus: alert.Status(row.PreviousStatus),
		NewStatus:      alert.Status(row.NewStatus),
		OldValue:       row.OldValue,
		NewValue:       row.NewValue,
		ClosureReason:  alert.ClosureReason(row.ClosureReason),
		ActorID:        row.ActorID,
		CreatedAt:      row.CreatedAt,
	}
	if row.Latitude.Valid && row.Longitude.Valid {
		ev.Location = &alert.Location{Latitude: row.Latitude.Float64, Longitude: row.Longitude.Float64}
	}
	return ev
}

// EventRepository is the append-only alert event log.
// There is deliberately no update or delete.
type EventRepository struct {
	db *sqlx.DB
}

func NewEventRepository(db *sqlx.DB) alert.EventRepository {
	return &EventRepository{db: db}
}

func (r *EventRepository) Append(ctx context.Context, ev *alert.Event) error {
	return insertEvent(ctx, r.db, ev)
}

func (r *EventRepository) HistoryFor(ctx context.Context, alertID int64) ([]*alert.Event, error) {
	var rows []eventRow
	query := r.db.Rebind(`SELECT ` + eventColumns + ` FROM alert_events WHERE alert_id = ? ORDER BY created_at DESC, seq DESC`)
	if err := r.db.SelectContext(ctx, &rows, query, alertID); err != nil {
		return nil, errors.DatabaseError("Failed to load alert history", err)
	}

	events := make([]*alert.Event, 0, len(rows))
	for i := range rows {
		events = append(events, rows[i].toEvent())
	}
	return events, nil
}

func (r *EventRepository) LatestFor(ctx context.Context, alertID int64) (*alert.Event, error) {
	var row eventRow
	query := r.db.Rebind(`SELECT ` + eventColumns + ` FROM alert_events WHERE alert_id = ? ORDER BY created_at DESC, seq DESC LIMIT 1`)
	err := r.db.GetContext(ctx, &row, query, alertID)
	if err == sql.ErrNoRows {
		return nil, errors.NotFound("Alert event")
	}
	if err != nil {
		return nil, errors.DatabaseError("Failed to load latest alert event", err)
	}
	return row.toEvent(), nil
}

func insertEvent(ctx context.Context, ext sqlx.ExtContext, ev *alert.Event) error {
	var lat, lng sql.NullFloat64
	if ev.Location != nil {
		lat = sql.NullFloat64{Float64: ev.Location.Latitude, Valid: true}
		lng = sql.NullFloat64{Float64: ev.Location.Longitude, Valid: true}
	}

	query := ext.Rebind(`
		INSERT INTO alert_events (id, alert_id, kind, previous_status, new_status, old_value, new_value,
			latitude, longitude, closure_reason, actor_id, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)

	_, err := ext.ExecContext(ctx, query,
		ev.ID, ev.AlertID, string(ev.Kind), string(ev.PreviousStatus), string(ev.NewStatus), ev.OldValue, ev.NewValue,
		lat, lng, string(ev.ClosureReason), ev.ActorID, ev.CreatedAt,
	)
	if err != nil {
		return errors.DatabaseError("Failed to append alert event", err)
	}
	return nil
}
