package handlers

import (
	"net/http"

	"github.com/pratik-mahalle/petalert/internal/api/dto"
	"github.com/pratik-mahalle/petalert/internal/api/middleware"
	"github.com/pratik-mahalle/petalert/internal/domain/alert"
	"github.com/pratik-mahalle/petalert/internal/domain/subscription"
	"github.com/pratik-mahalle/petalert/internal/pkg/errors"
	"github.com/pratik-mahalle/petalert/internal/pkg/logger"
	"github.com/pratik-mahalle/petalert/internal/pkg/utils"
)

// SubscriptionHandler lets users follow alerts
type SubscriptionHandler struct {
	service subscription.Service
	alerts  alert.Service
	logger  *logger.Logger
}

// NewSubscriptionHandler creates a new subscription handler
func NewSubscriptionHandler(service subscription.Service, alerts alert.Service, log *logger.Logger) *SubscriptionHandler {
	return &SubscriptionHandler{service: service, alerts: alerts, logger: log}
}

// Subscribe follows an alert
// @Summary Subscribe to an alert
// @Tags Subscriptions
// @Produce json
// @Param id path int true "Alert ID"
// @Success 201 {object} dto.SubscriptionDTO "Subscription"
// @Failure 404 {object} utils.ErrorResponse "Alert not found"
// @Failure 409 {object} utils.ErrorResponse "Already subscribed or alert closed"
// @Security BearerAuth
// @Router /alerts/{id}/subscription [post]
func (h *SubscriptionHandler) Subscribe(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.GetUserID(r)
	alertID, appErr := pathID(r, "id")
	if appErr != nil {
		utils.WriteError(w, appErr)
		return
	}

	sub, err := h.service.Subscribe(r.Context(), alertID, userID)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	utils.WriteSuccess(w, http.StatusCreated, dto.ToSubscriptionDTO(sub))
}

// Unsubscribe stops following an alert
// @Summary Unsubscribe from an alert
// @Tags Subscriptions
// @Produce json
// @Param id path int true "Alert ID"
// @Success 200 {object} utils.SuccessResponse "Unsubscribed"
// @Failure 404 {object} utils.ErrorResponse "No active subscription"
// @Security BearerAuth
// @Router /alerts/{id}/subscription [delete]
func (h *SubscriptionHandler) Unsubscribe(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.GetUserID(r)
	alertID, appErr := pathID(r, "id")
	if appErr != nil {
		utils.WriteError(w, appErr)
		return
	}

	if err := h.service.Unsubscribe(r.Context(), alertID, userID); err != nil {
		writeError(w, h.logger, err)
		return
	}

	utils.WriteSuccessWithMessage(w, http.StatusOK, "Unsubscribed", nil)
}

// Subscribers lists the users following an alert. Owner or admin only.
// @Summary List alert subscribers
// @Tags Subscriptions
// @Produce json
// @Param id path int true "Alert ID"
// @Success 200 {object} dto.SubscribersDTO "Subscriber ids"
// @Failure 403 {object} utils.ErrorResponse "Not the owner"
// @Security BearerAuth
// @Router /alerts/{id}/subscribers [get]
func (h *SubscriptionHandler) Subscribers(w http.ResponseWriter, r *http.Request) {
	alertID, appErr := pathID(r, "id")
	if appErr != nil {
		utils.WriteError(w, appErr)
		return
	}

	a, err := h.alerts.GetByID(r.Context(), alertID)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	if !isOwnerOrAdmin(r, a.OwnerID) {
		utils.WriteError(w, errors.Forbidden("Only the owner can list subscribers"))
		return
	}

	ids, err := h.service.ActiveSubscribers(r.Context(), alertID)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	utils.WriteSuccess(w, http.StatusOK, dto.SubscribersDTO{AlertID: alertID, UserIDs: ids})
}

// Mine lists the caller's subscriptions
// @Summary My subscriptions
// @Tags Subscriptions
// @Produce json
// @Success 200 {array} dto.SubscriptionDTO "Subscriptions"
// @Security BearerAuth
// @Router /subscriptions [get]
func (h *SubscriptionHandler) Mine(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.GetUserID(r)

	subs, err := h.service.ListForUser(r.Context(), userID)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	out := make([]dto.SubscriptionDTO, len(subs))
	for i, s := range subs {
		out[i] = dto.ToSubscriptionDTO(s)
	}
	utils.WriteSuccess(w, http.StatusOK, out)
}
