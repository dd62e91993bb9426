package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/pratik-mahalle/petalert/internal/api/dto"
	"github.com/pratik-mahalle/petalert/internal/domain/notification"
	"github.com/pratik-mahalle/petalert/internal/pkg/errors"
	"github.com/pratik-mahalle/petalert/internal/pkg/logger"
	"github.com/pratik-mahalle/petalert/internal/pkg/utils"
)

// DeadLetterHandler exposes failed notifications to admins
type DeadLetterHandler struct {
	service notification.DeadLetterService
	logger  *logger.Logger
}

// NewDeadLetterHandler creates a new dead letter handler
func NewDeadLetterHandler(service notification.DeadLetterService, log *logger.Logger) *DeadLetterHandler {
	return &DeadLetterHandler{service: service, logger: log}
}

// List returns failed notifications
// @Summary List dead letters
// @Tags Dead Letters
// @Produce json
// @Param channel query string false "Filter by channel (email, chat)"
// @Param alert_id query int false "Filter by alert"
// @Param page query int false "Page number (default: 1)"
// @Param page_size query int false "Page size (default: 20, max: 100)"
// @Success 200 {object} utils.Page[dto.DeadLetterDTO] "Failed notifications"
// @Failure 403 {object} utils.ErrorResponse "Admin only"
// @Security BearerAuth
// @Router /dead-letters [get]
func (h *DeadLetterHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	var filter notification.DeadLetterFilter
	if raw := q.Get("channel"); raw != "" {
		ch, ok := notification.ParseChannel(raw)
		if !ok {
			utils.WriteError(w, errors.BadRequest("Unknown channel"))
			return
		}
		filter.Channel = ch
	}
	var err error
	if filter.AlertID, err = utils.QueryID(q, "alert_id"); err != nil {
		writeError(w, h.logger, err)
		return
	}
	window, err := utils.WindowFromQuery(q)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	items, total, err := h.service.List(r.Context(), filter, window.PageSize, window.Offset())
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	out := make([]dto.DeadLetterDTO, len(items))
	for i, f := range items {
		out[i] = dto.ToDeadLetterDTO(f)
	}
	utils.WriteSuccess(w, http.StatusOK, utils.NewPage(out, window, total))
}

// Get returns one failed notification
// @Summary Get dead letter
// @Tags Dead Letters
// @Produce json
// @Param eventId path string true "Job event ID"
// @Success 200 {object} dto.DeadLetterDTO "Failed notification"
// @Failure 404 {object} utils.ErrorResponse "Not found"
// @Security BearerAuth
// @Router /dead-letters/{eventId} [get]
func (h *DeadLetterHandler) Get(w http.ResponseWriter, r *http.Request) {
	f, err := h.service.Get(r.Context(), chi.URLParam(r, "eventId"))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	utils.WriteSuccess(w, http.StatusOK, dto.ToDeadLetterDTO(f))
}
