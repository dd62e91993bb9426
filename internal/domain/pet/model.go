package pet

import (
	"context"
	"time"
)

// Pet is the animal an alert is raised for
type Pet struct {
	ID        int64     `json:"id" db:"id"`
	OwnerID   int64     `json:"owner_id" db:"owner_id"`
	Name      string    `json:"name" db:"name"`
	Species   string    `json:"species" db:"species"`
	PhotoKey  string    `json:"photo_key,omitempty" db:"photo_key"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// Directory resolves pets for message formatting
type Directory interface {
	GetByID(ctx context.Context, id int64) (*Pet, error)
}

// Repository defines the interface for pet data access
type Repository interface {
	Directory
	Create(ctx context.Context, p *Pet) error
	ListByOwner(ctx context.Context, ownerID int64) ([]*Pet, error)
}

// Service defines the interface for pet business logic
type Service interface {
	Directory
	Register(ctx context.Context, ownerID int64, name, species, photoKey string) (*Pet, error)
	ListByOwner(ctx context.Context, ownerID int64) ([]*Pet, error)
}
