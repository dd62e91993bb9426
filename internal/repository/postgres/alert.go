package postgres

import (
	"context"
	"database/sql"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/pratik-mahalle/petalert/internal/domain/alert"
	"github.com/pratik-mahalle/petalert/internal/pkg/errors"
)

const alertColumns = `id, pet_id, owner_id, title, description, status, version, created_at, updated_at`

type AlertRepository struct {
	db *sqlx.DB
}

func NewAlertRepository(db *sqlx.DB) alert.Repository {
	return &AlertRepository{db: db}
}

// Create inserts the alert and its creation event in one transaction
func (r *AlertRepository) Create(ctx context.Context, a *alert.Alert, ev *alert.Event) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return errors.DatabaseError("Failed to begin transaction", err)
	}
	defer tx.Rollback()

	query := tx.Rebind(`
		INSERT INTO alerts (pet_id, owner_id, title, description, status, version, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		RETURNING id
	`)

	var id int64
	err = tx.QueryRowxContext(ctx, query,
		a.PetID, a.OwnerID, a.Title, a.Description, string(a.Status), a.Version, a.CreatedAt, a.UpdatedAt,
	).Scan(&id)
	if err != nil {
		if isUniqueViolation(err) {
			return alert.ErrActiveAlertExists
		}
		return errors.DatabaseError("Failed to create alert", err)
	}

	ev.AlertID = id
	if err := insertEvent(ctx, tx, ev); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return errors.DatabaseError("Failed to commit alert", err)
	}

	a.ID = id
	return nil
}

// Update writes a and its events only if the stored version still equals
// expectedVersion. The stored version becomes a.Version.
func (r *AlertRepository) Update(ctx context.Context, a *alert.Alert, expectedVersion int64, events ...*alert.Event) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return errors.DatabaseError("Failed to begin transaction", err)
	}
	defer tx.Rollback()

	query := tx.Rebind(`
		UPDATE alerts SET title = ?, description = ?, status = ?, version = ?, updated_at = ?
		WHERE id = ? AND version = ?
	`)

	result, err := tx.ExecContext(ctx, query,
		a.Title, a.Description, string(a.Status), a.Version, a.UpdatedAt, a.ID, expectedVersion,
	)
	if err != nil {
		return errors.DatabaseError("Failed to update alert", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return errors.DatabaseError("Failed to get affected rows", err)
	}
	if rows == 0 {
		current, err := getAlert(ctx, tx, a.ID)
		if err != nil {
			return err
		}
		return &alert.StaleStateError{Current: current}
	}

	for _, ev := range events {
		if err := insertEvent(ctx, tx, ev); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return errors.DatabaseError("Failed to commit alert update", err)
	}
	return nil
}

func (r *AlertRepository) GetByID(ctx context.Context, id int64) (*alert.Alert, error) {
	return getAlert(ctx, r.db, id)
}

func getAlert(ctx context.Context, q sqlx.ExtContext, id int64) (*alert.Alert, error) {
	var a alert.Alert
	err := sqlx.GetContext(ctx, q, &a, q.Rebind(`SELECT `+alertColumns+` FROM alerts WHERE id = ?`), id)
	if err == sql.ErrNoRows {
		return nil, errors.NotFound("Alert")
	}
	if err != nil {
		return nil, errors.DatabaseError("Failed to get alert", err)
	}
	return &a, nil
}

func (r *AlertRepository) ListByPet(ctx context.Context, petID int64) ([]*alert.Alert, error) {
	alerts := []*alert.Alert{}
	query := r.db.Rebind(`SELECT ` + alertColumns + ` FROM alerts WHERE pet_id = ? ORDER BY created_at DESC, id DESC`)
	if err := r.db.SelectContext(ctx, &alerts, query, petID); err != nil {
		return nil, errors.DatabaseError("Failed to list alerts for pet", err)
	}
	return alerts, nil
}

func (r *AlertRepository) ExistsActiveForPet(ctx context.Context, petID int64) (bool, error) {
	var count int64
	query := r.db.Rebind(`SELECT COUNT(*) FROM alerts WHERE pet_id = ? AND status <> ?`)
	if err := r.db.GetContext(ctx, &count, query, petID, string(alert.StatusClosed)); err != nil {
		return false, errors.DatabaseError("Failed to check active alerts", err)
	}
	return count > 0, nil
}

func (r *AlertRepository) List(ctx context.Context, filter alert.Filter, limit, offset int) ([]*alert.Alert, int64, error) {
	where := []string{"1 = 1"}
	args := []interface{}{}

	if filter.PetID != 0 {
		where = append(where, "pet_id = ?")
		args = append(args, filter.PetID)
	}
	if filter.OwnerID != 0 {
		where = append(where, "owner_id = ?")
		args = append(args, filter.OwnerID)
	}
	if filter.Status != "" {
		where = append(where, "status = ?")
		args = append(args, string(filter.Status))
	}
	whereClause := strings.Join(where, " AND ")

	var total int64
	countQuery := r.db.Rebind("SELECT COUNT(*) FROM alerts WHERE " + whereClause)
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, errors.DatabaseError("Failed to count alerts", err)
	}

	query := r.db.Rebind(`SELECT ` + alertColumns + ` FROM alerts WHERE ` + whereClause +
		` ORDER BY created_at DESC, id DESC LIMIT ? OFFSET ?`)
	args = append(args, limit, offset)

	alerts := []*alert.Alert{}
	if err := r.db.SelectContext(ctx, &alerts, query, args...); err != nil {
		return nil, 0, errors.DatabaseError("Failed to list alerts", err)
	}

	return alerts, total, nil
}
