package handlers

import (
	"net/http"

	"github.com/pratik-mahalle/petalert/internal/api/dto"
	"github.com/pratik-mahalle/petalert/internal/api/middleware"
	"github.com/pratik-mahalle/petalert/internal/domain/alert"
	"github.com/pratik-mahalle/petalert/internal/pkg/errors"
	"github.com/pratik-mahalle/petalert/internal/pkg/logger"
	"github.com/pratik-mahalle/petalert/internal/pkg/utils"
	"github.com/pratik-mahalle/petalert/internal/pkg/validator"
)

type AlertHandler struct {
	service   alert.Service
	logger    *logger.Logger
	validator *validator.Validator
}

func NewAlertHandler(service alert.Service, log *logger.Logger, val *validator.Validator) *AlertHandler {
	return &AlertHandler{service: service, logger: log, validator: val}
}

// List returns alerts with pagination and filtering
// @Summary List alerts
// @Description Get a paginated list of alerts, newest first
// @Tags Alerts
// @Produce json
// @Param pet_id query int false "Filter by pet"
// @Param owner_id query int false "Filter by owner"
// @Param status query string false "Filter by status (OPENED, SEEN, SAFE, CLOSED)"
// @Param page query int false "Page number (default: 1)"
// @Param page_size query int false "Page size (default: 20, max: 100)"
// @Success 200 {object} utils.Page[dto.AlertDTO] "List of alerts"
// @Failure 400 {object} utils.ErrorResponse "Invalid filter"
// @Security BearerAuth
// @Router /alerts [get]
func (h *AlertHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	var filter alert.Filter

	if raw := q.Get("status"); raw != "" {
		status, ok := alert.ParseStatus(raw)
		if !ok {
			utils.WriteError(w, errors.BadRequest("Unknown status filter"))
			return
		}
		filter.Status = status
	}
	var err error
	if filter.PetID, err = utils.QueryID(q, "pet_id"); err != nil {
		writeError(w, h.logger, err)
		return
	}
	if filter.OwnerID, err = utils.QueryID(q, "owner_id"); err != nil {
		writeError(w, h.logger, err)
		return
	}
	window, err := utils.WindowFromQuery(q)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	alerts, total, err := h.service.List(r.Context(), filter, window.PageSize, window.Offset())
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	utils.WriteSuccess(w, http.StatusOK, utils.NewPage(dto.ToAlertDTOs(alerts), window, total))
}

// Get returns a single alert by ID
// @Summary Get alert by ID
// @Tags Alerts
// @Produce json
// @Param id path int true "Alert ID"
// @Success 200 {object} dto.AlertDTO "Alert details"
// @Failure 404 {object} utils.ErrorResponse "Alert not found"
// @Security BearerAuth
// @Router /alerts/{id} [get]
func (h *AlertHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, appErr := pathID(r, "id")
	if appErr != nil {
		utils.WriteError(w, appErr)
		return
	}

	a, err := h.service.GetByID(r.Context(), id)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	utils.WriteSuccess(w, http.StatusOK, dto.ToAlertDTO(a))
}

// Create reports a lost pet
// @Summary Report a lost pet
// @Description Opens an alert for a pet and subscribes the reporter to it
// @Tags Alerts
// @Accept json
// @Produce json
// @Param request body dto.CreateAlertRequest true "Alert details"
// @Success 201 {object} dto.AlertDTO "Alert created"
// @Failure 400 {object} utils.ErrorResponse "Validation error"
// @Failure 404 {object} utils.ErrorResponse "Pet not found"
// @Failure 409 {object} utils.ErrorResponse "Pet already has an active alert"
// @Security BearerAuth
// @Router /alerts [post]
func (h *AlertHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.GetUserID(r)

	var req dto.CreateAlertRequest
	if appErr := decode(r, h.validator, &req); appErr != nil {
		utils.WriteError(w, appErr)
		return
	}

	a, err := h.service.Create(r.Context(), userID, alert.CreateInput{
		PetID:       req.PetID,
		Title:       req.Title,
		Description: req.Description,
	})
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	utils.WriteSuccess(w, http.StatusCreated, dto.ToAlertDTO(a))
}

// Update edits the title or description of an OPENED alert
// @Summary Edit alert
// @Tags Alerts
// @Accept json
// @Produce json
// @Param id path int true "Alert ID"
// @Param request body dto.UpdateAlertRequest true "Fields to change"
// @Success 200 {object} dto.AlertDTO "Updated alert"
// @Failure 403 {object} utils.ErrorResponse "Not the owner"
// @Failure 409 {object} utils.ErrorResponse "Alert is no longer opened"
// @Security BearerAuth
// @Router /alerts/{id} [patch]
func (h *AlertHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.GetUserID(r)
	id, appErr := pathID(r, "id")
	if appErr != nil {
		utils.WriteError(w, appErr)
		return
	}

	var req dto.UpdateAlertRequest
	if appErr := decode(r, h.validator, &req); appErr != nil {
		utils.WriteError(w, appErr)
		return
	}

	if !h.authorize(w, r, id) {
		return
	}

	a, err := h.service.Edit(r.Context(), userID, id, alert.EditInput{Title: req.Title, Description: req.Description})
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	utils.WriteSuccess(w, http.StatusOK, dto.ToAlertDTO(a))
}

// ChangeStatus moves an alert to SEEN, SAFE or CLOSED
// @Summary Change alert status
// @Description Anyone may report a sighting or that the pet is safe; only the owner or an admin may close
// @Tags Alerts
// @Accept json
// @Produce json
// @Param id path int true "Alert ID"
// @Param request body dto.ChangeStatusRequest true "Target status"
// @Success 200 {object} dto.AlertDTO "Updated alert"
// @Failure 400 {object} utils.ErrorResponse "Missing or unexpected closure reason"
// @Failure 403 {object} utils.ErrorResponse "Not the owner"
// @Failure 409 {object} utils.ErrorResponse "Transition not allowed or lost to a concurrent change"
// @Security BearerAuth
// @Router /alerts/{id}/status [post]
func (h *AlertHandler) ChangeStatus(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.GetUserID(r)
	id, appErr := pathID(r, "id")
	if appErr != nil {
		utils.WriteError(w, appErr)
		return
	}

	var req dto.ChangeStatusRequest
	if appErr := decode(r, h.validator, &req); appErr != nil {
		utils.WriteError(w, appErr)
		return
	}
	target, _ := alert.ParseStatus(req.Status)

	if target == alert.StatusClosed && !h.authorize(w, r, id) {
		return
	}

	cmd := alert.TransitionCommand{
		Target:        target,
		ActorID:       userID,
		ClosureReason: alert.ClosureReason(req.ClosureReason),
	}
	if req.Location != nil {
		cmd.Location = &alert.Location{Latitude: req.Location.Latitude, Longitude: req.Location.Longitude}
	}

	a, err := h.service.ChangeStatus(r.Context(), id, cmd)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	utils.WriteSuccess(w, http.StatusOK, dto.ToAlertDTO(a))
}

// History returns the audit trail of an alert
// @Summary Alert history
// @Tags Alerts
// @Produce json
// @Param id path int true "Alert ID"
// @Success 200 {array} dto.EventDTO "Events, newest first"
// @Failure 404 {object} utils.ErrorResponse "Alert not found"
// @Security BearerAuth
// @Router /alerts/{id}/events [get]
func (h *AlertHandler) History(w http.ResponseWriter, r *http.Request) {
	id, appErr := pathID(r, "id")
	if appErr != nil {
		utils.WriteError(w, appErr)
		return
	}

	events, err := h.service.History(r.Context(), id)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	utils.WriteSuccess(w, http.StatusOK, dto.ToEventDTOs(events))
}

// LatestEvent returns the most recent event of an alert
// @Summary Latest alert event
// @Tags Alerts
// @Produce json
// @Param id path int true "Alert ID"
// @Success 200 {object} dto.EventDTO "Latest event"
// @Failure 404 {object} utils.ErrorResponse "Alert not found"
// @Security BearerAuth
// @Router /alerts/{id}/events/latest [get]
func (h *AlertHandler) LatestEvent(w http.ResponseWriter, r *http.Request) {
	id, appErr := pathID(r, "id")
	if appErr != nil {
		utils.WriteError(w, appErr)
		return
	}

	ev, err := h.service.LatestEvent(r.Context(), id)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	utils.WriteSuccess(w, http.StatusOK, dto.ToEventDTO(ev))
}

// authorize writes an error and returns false unless the caller owns alert id or is an admin
func (h *AlertHandler) authorize(w http.ResponseWriter, r *http.Request, id int64) bool {
	a, err := h.service.GetByID(r.Context(), id)
	if err != nil {
		writeError(w, h.logger, err)
		return false
	}
	if !isOwnerOrAdmin(r, a.OwnerID) {
		utils.WriteError(w, errors.Forbidden("Only the owner can change this alert"))
		return false
	}
	return true
}
