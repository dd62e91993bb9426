package dto

import (
	"time"

	"github.com/pratik-mahalle/petalert/internal/domain/pet"
)

// PetDTO represents a pet in API responses
type PetDTO struct {
	ID        int64     `json:"id"`
	OwnerID   int64     `json:"ownerId"`
	Name      string    `json:"name"`
	Species   string    `json:"species,omitempty"`
	PhotoKey  string    `json:"photoKey,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// CreatePetRequest registers a pet
type CreatePetRequest struct {
	Name     string `json:"name" validate:"required,max=100"`
	Species  string `json:"species,omitempty" validate:"max=50"`
	PhotoKey string `json:"photoKey,omitempty" validate:"max=512"`
}

// ToPetDTO converts a domain pet
func ToPetDTO(p *pet.Pet) PetDTO {
	return PetDTO{
		ID:        p.ID,
		OwnerID:   p.OwnerID,
		Name:      p.Name,
		Species:   p.Species,
		PhotoKey:  p.PhotoKey,
		CreatedAt: p.CreatedAt,
	}
}
