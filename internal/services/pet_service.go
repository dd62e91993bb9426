package services

import (
	"context"
	"strings"
	"time"

	"github.com/pratik-mahalle/petalert/internal/domain/pet"
	"github.com/pratik-mahalle/petalert/internal/pkg/errors"
	"github.com/pratik-mahalle/petalert/internal/pkg/logger"
)

// PetService registers pets and looks them up for their owners
type PetService struct {
	repo   pet.Repository
	logger *logger.Logger
}

// NewPetService creates a new pet service
func NewPetService(repo pet.Repository, log *logger.Logger) pet.Service {
	return &PetService{repo: repo, logger: log}
}

// Register adds a pet owned by ownerID
func (s *PetService) Register(ctx context.Context, ownerID int64, name, species, photoKey string) (*pet.Pet, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, errors.ValidationError("Pet name must not be empty", map[string]string{"name": "required"})
	}

	p := &pet.Pet{
		OwnerID:   ownerID,
		Name:      name,
		Species:   strings.TrimSpace(species),
		PhotoKey:  strings.TrimSpace(photoKey),
		CreatedAt: time.Now().UTC(),
	}
	if err := s.repo.Create(ctx, p); err != nil {
		s.logger.ErrorWithErr(err, "Failed to register pet")
		return nil, err
	}

	s.logger.WithFields(map[string]interface{}{
		"pet_id":   p.ID,
		"owner_id": ownerID,
	}).Info("Pet registered")

	return p, nil
}

// GetByID retrieves a pet by ID
func (s *PetService) GetByID(ctx context.Context, id int64) (*pet.Pet, error) {
	return s.repo.GetByID(ctx, id)
}

// ListByOwner returns the pets of a user
func (s *PetService) ListByOwner(ctx context.Context, ownerID int64) ([]*pet.Pet, error) {
	return s.repo.ListByOwner(ctx, ownerID)
}
