package handlers

import (
	"net/http"

	"github.com/pratik-mahalle/petalert/internal/api/dto"
	"github.com/pratik-mahalle/petalert/internal/api/middleware"
	"github.com/pratik-mahalle/petalert/internal/domain/pet"
	"github.com/pratik-mahalle/petalert/internal/pkg/logger"
	"github.com/pratik-mahalle/petalert/internal/pkg/utils"
	"github.com/pratik-mahalle/petalert/internal/pkg/validator"
)

type PetHandler struct {
	service   pet.Service
	logger    *logger.Logger
	validator *validator.Validator
}

func NewPetHandler(service pet.Service, log *logger.Logger, val *validator.Validator) *PetHandler {
	return &PetHandler{service: service, logger: log, validator: val}
}

// Create registers a pet owned by the caller
// @Summary Register a pet
// @Tags Pets
// @Accept json
// @Produce json
// @Param request body dto.CreatePetRequest true "Pet details"
// @Success 201 {object} dto.PetDTO "Pet"
// @Failure 400 {object} utils.ErrorResponse "Validation error"
// @Security BearerAuth
// @Router /pets [post]
func (h *PetHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.GetUserID(r)

	var req dto.CreatePetRequest
	if appErr := decode(r, h.validator, &req); appErr != nil {
		utils.WriteError(w, appErr)
		return
	}

	p, err := h.service.Register(r.Context(), userID, req.Name, req.Species, req.PhotoKey)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	utils.WriteSuccess(w, http.StatusCreated, dto.ToPetDTO(p))
}

// List returns the caller's pets
// @Summary My pets
// @Tags Pets
// @Produce json
// @Success 200 {array} dto.PetDTO "Pets"
// @Security BearerAuth
// @Router /pets [get]
func (h *PetHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.GetUserID(r)

	pets, err := h.service.ListByOwner(r.Context(), userID)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	out := make([]dto.PetDTO, len(pets))
	for i, p := range pets {
		out[i] = dto.ToPetDTO(p)
	}
	utils.WriteSuccess(w, http.StatusOK, out)
}

// Get returns a pet
// @Summary Get pet by ID
// @Tags Pets
// @Produce json
// @Param id path int true "Pet ID"
// @Success 200 {object} dto.PetDTO "Pet"
// @Failure 404 {object} utils.ErrorResponse "Pet not found"
// @Security BearerAuth
// @Router /pets/{id} [get]
func (h *PetHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, appErr := pathID(r, "id")
	if appErr != nil {
		utils.WriteError(w, appErr)
		return
	}

	p, err := h.service.GetByID(r.Context(), id)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	utils.WriteSuccess(w, http.StatusOK, dto.ToPetDTO(p))
}
