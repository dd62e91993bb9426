package client

import (
	"context"
	"fmt"
)

// PetService handles pet-related API calls
type PetService struct {
	client *Client
}

// CreatePetRequest registers a pet
type CreatePetRequest struct {
	Name     string `json:"name"`
	Species  string `json:"species,omitempty"`
	PhotoKey string `json:"photoKey,omitempty"`
}

// Create registers a pet owned by the caller
func (s *PetService) Create(ctx context.Context, req CreatePetRequest) (*Pet, error) {
	var pet Pet
	if err := s.client.doRequest(ctx, "POST", "/api/v1/pets", req, &pet); err != nil {
		return nil, err
	}
	return &pet, nil
}

// List returns the caller's pets
func (s *PetService) List(ctx context.Context) ([]Pet, error) {
	var pets []Pet
	if err := s.client.doRequest(ctx, "GET", "/api/v1/pets", nil, &pets); err != nil {
		return nil, err
	}
	return pets, nil
}

// Get retrieves a pet by ID
func (s *PetService) Get(ctx context.Context, id int64) (*Pet, error) {
	var pet Pet
	if err := s.client.doRequest(ctx, "GET", fmt.Sprintf("/api/v1/pets/%d", id), nil, &pet); err != nil {
		return nil, err
	}
	return &pet, nil
}
