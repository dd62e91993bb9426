package postgres

import (
	"context"
	"database/sql"

	"github.com/jmoiron/sqlx"
	"github.com/pratik-mahalle/petalert/internal/domain/pet"
	"github.com/pratik-mahalle/petalert/internal/pkg/errors"
)

// PetRepository implements pet.Repository
type PetRepository struct {
	db *sqlx.DB
}

func NewPetRepository(db *sqlx.DB) pet.Repository {
	return &PetRepository{db: db}
}

func (r *PetRepository) Create(ctx context.Context, p *pet.Pet) error {
	query := r.db.Rebind(`
		INSERT INTO pets (owner_id, name, species, photo_key, created_at)
		VALUES (?, ?, ?, ?, ?)
		RETURNING id
	`)
	if err := r.db.QueryRowxContext(ctx, query, p.OwnerID, p.Name, p.Species, p.PhotoKey, p.CreatedAt).Scan(&p.ID); err != nil {
		return errors.DatabaseError("Failed to create pet", err)
	}
	return nil
}

func (r *PetRepository) GetByID(ctx context.Context, id int64) (*pet.Pet, error) {
	var p pet.Pet
	query := r.db.Rebind(`SELECT id, owner_id, name, species, photo_key, created_at FROM pets WHERE id = ?`)
	err := r.db.GetContext(ctx, &p, query, id)
	if err == sql.ErrNoRows {
		return nil, errors.NotFound("Pet")
	}
	if err != nil {
		return nil, errors.DatabaseError("Failed to get pet", err)
	}
	return &p, nil
}

func (r *PetRepository) ListByOwner(ctx context.Context, ownerID int64) ([]*pet.Pet, error) {
	pets := []*pet.Pet{}
	query := r.db.Rebind(`SELECT id, owner_id, name, species, photo_key, created_at FROM pets WHERE owner_id = ? ORDER BY name`)
	if err := r.db.SelectContext(ctx, &pets, query, ownerID); err != nil {
		return nil, errors.DatabaseError("Failed to list pets", err)
	}
	return pets, nil
}
