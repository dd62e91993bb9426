package handlers

import (
	"encoding/json"
	stderrors "errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/pratik-mahalle/petalert/internal/api/dto"
	"github.com/pratik-mahalle/petalert/internal/api/middleware"
	"github.com/pratik-mahalle/petalert/internal/domain/alert"
	"github.com/pratik-mahalle/petalert/internal/domain/user"
	"github.com/pratik-mahalle/petalert/internal/pkg/errors"
	"github.com/pratik-mahalle/petalert/internal/pkg/logger"
	"github.com/pratik-mahalle/petalert/internal/pkg/utils"
	"github.com/pratik-mahalle/petalert/internal/pkg/validator"
)

// pathID parses a numeric URL parameter
func pathID(r *http.Request, name string) (int64, *errors.AppError) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil || id <= 0 {
		return 0, errors.BadRequest("Invalid " + name)
	}
	return id, nil
}

// decode reads a JSON body into req and validates it
func decode(r *http.Request, val *validator.Validator, req interface{}) *errors.AppError {
	if err := json.NewDecoder(r.Body).Decode(req); err != nil {
		return errors.BadRequest("Invalid request body")
	}
	if errs := val.Validate(req); len(errs) > 0 {
		return errors.ValidationError("Validation failed", errs)
	}
	return nil
}

// isOwnerOrAdmin reports whether the caller may manage a resource owned by ownerID
func isOwnerOrAdmin(r *http.Request, ownerID int64) bool {
	if role, _ := middleware.GetUserRole(r); role == user.RoleAdmin {
		return true
	}
	userID, ok := middleware.GetUserID(r)
	return ok && userID == ownerID
}

// writeError maps service errors to responses. Lost races and rejected
// transitions carry the state the caller should reconcile with.
func writeError(w http.ResponseWriter, log *logger.Logger, err error) {
	var stale *alert.StaleStateError
	if stderrors.As(err, &stale) && stale.Current != nil {
		utils.WriteError(w, alert.ErrConcurrentModification.WithDetails(dto.ToAlertDTO(stale.Current)))
		return
	}

	var invalid *alert.TransitionError
	if stderrors.As(err, &invalid) {
		utils.WriteError(w, alert.ErrInvalidTransition.WithDetails(map[string]interface{}{
			"from":    invalid.From,
			"to":      invalid.To,
			"allowed": alert.AllowedTargets(invalid.From),
		}))
		return
	}

	if appErr, ok := errors.As(err); ok {
		if appErr.StatusCode >= http.StatusInternalServerError {
			log.ErrorWithErr(err, "Request failed")
		}
		utils.WriteError(w, appErr)
		return
	}

	log.ErrorWithErr(err, "Unhandled error")
	utils.WriteServiceError(w, err)
}
