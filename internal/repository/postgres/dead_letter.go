package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pratik-mahalle/petalert/internal/domain/notification"
	"github.com/pratik-mahalle/petalert/internal/pkg/errors"
)

const failedColumns = `id, event_id, channel, user_id, alert_id, reason, last_error, retry_count, payload, failed_at`

type failedRow struct {
	ID         int64     `db:"id"`
	EventID    string    `db:"event_id"`
	Channel    string    `db:"channel"`
	UserID     int64     `db:"user_id"`
	AlertID    int64     `db:"alert_id"`
	Reason     string    `db:"reason"`
	LastError  string    `db:"last_error"`
	RetryCount int       `db:"retry_count"`
	Payload    string    `db:"payload"`
	FailedAt   time.Time `db:"failed_at"`
}

func (row *failedRow) toModel() *notification.FailedNotification {
	f := &notification.FailedNotification{
		ID:         row.ID,
		EventID:    row.EventID,
		Channel:    notification.Channel(row.Channel),
		UserID:     row.UserID,
		AlertID:    row.AlertID,
		Reason:     notification.FailureReason(row.Reason),
		LastError:  row.LastError,
		RetryCount: row.RetryCount,
		FailedAt:   row.FailedAt,
	}
	if row.Payload != "" {
		f.Payload = json.RawMessage(row.Payload)
	}
	return f
}

// DeadLetterRepository implements notification.DeadLetterRepository
type DeadLetterRepository struct {
	db *sqlx.DB
}

func NewDeadLetterRepository(db *sqlx.DB) notification.DeadLetterRepository {
	return &DeadLetterRepository{db: db}
}

// Save inserts f unless an entry with the same event id exists.
// Redelivered dead letters therefore produce a single row.
func (r *DeadLetterRepository) Save(ctx context.Context, f *notification.FailedNotification) (bool, error) {
	query := r.db.Rebind(`
		INSERT INTO failed_notifications (event_id, channel, user_id, alert_id, reason, last_error, retry_count, payload, failed_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (event_id) DO NOTHING
	`)

	result, err := r.db.ExecContext(ctx, query,
		f.EventID, string(f.Channel), f.UserID, f.AlertID, string(f.Reason), f.LastError, f.RetryCount, string(f.Payload), f.FailedAt,
	)
	if err != nil {
		return false, errors.DatabaseError("Failed to save failed notification", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return false, errors.DatabaseError("Failed to get affected rows", err)
	}
	return rows > 0, nil
}

func (r *DeadLetterRepository) GetByEventID(ctx context.Context, eventID string) (*notification.FailedNotification, error) {
	var row failedRow
	query := r.db.Rebind(`SELECT ` + failedColumns + ` FROM failed_notifications WHERE event_id = ?`)
	err := r.db.GetContext(ctx, &row, query, eventID)
	if err == sql.ErrNoRows {
		return nil, errors.NotFound("Failed notification")
	}
	if err != nil {
		return nil, errors.DatabaseError("Failed to get failed notification", err)
	}
	return row.toModel(), nil
}

func (r *DeadLetterRepository) List(ctx context.Context, filter notification.DeadLetterFilter, limit, offset int) ([]*notification.FailedNotification, int64, error) {
	where := []string{"1 = 1"}
	args := []interface{}{}

	if filter.Channel != "" {
		where = append(where, "channel = ?")
		args = append(args, string(filter.Channel))
	}
	if filter.AlertID != 0 {
		where = append(where, "alert_id = ?")
		args = append(args, filter.AlertID)
	}
	whereClause := strings.Join(where, " AND ")

	var total int64
	if err := r.db.GetContext(ctx, &total, r.db.Rebind("SELECT COUNT(*) FROM failed_notifications WHERE "+whereClause), args...); err != nil {
		return nil, 0, errors.DatabaseError("Failed to count failed notifications", err)
	}

	query := r.db.Rebind(`SELECT ` + failedColumns + ` FROM failed_notifications WHERE ` + whereClause +
		` ORDER BY failed_at DESC, id DESC LIMIT ? OFFSET ?`)
	args = append(args, limit, offset)

	var rows []failedRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, 0, errors.DatabaseError("Failed to list failed notifications", err)
	}

	out := make([]*notification.FailedNotification, 0, len(rows))
	for i := range rows {
		out = append(out, rows[i].toModel())
	}
	return out, total, nil
}

func (r *DeadLetterRepository) CountByChannel(ctx context.Context) (map[notification.Channel]int64, error) {
	var rows []struct {
		Channel string `db:"channel"`
		Count   int64  `db:"count"`
	}
	if err := r.db.SelectContext(ctx, &rows, `SELECT channel, COUNT(*) AS count FROM failed_notifications GROUP BY channel`); err != nil {
		return nil, errors.DatabaseError("Failed to count failed notifications", err)
	}

	counts := make(map[notification.Channel]int64, len(notification.Channels))
	for _, ch := range notification.Channels {
		counts[ch] = 0
	}
	for _, row := range rows {
		counts[notification.Channel(row.Channel)] = row.Count
	}
	return counts, nil
}
