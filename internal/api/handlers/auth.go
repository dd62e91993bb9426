package handlers

import (
	"net/http"

	"github.com/pratik-mahalle/petalert/internal/api/dto"
	"github.com/pratik-mahalle/petalert/internal/api/middleware"
	"github.com/pratik-mahalle/petalert/internal/auth"
	"github.com/pratik-mahalle/petalert/internal/config"
	"github.com/pratik-mahalle/petalert/internal/domain/user"
	"github.com/pratik-mahalle/petalert/internal/pkg/errors"
	"github.com/pratik-mahalle/petalert/internal/pkg/logger"
	"github.com/pratik-mahalle/petalert/internal/pkg/utils"
	"github.com/pratik-mahalle/petalert/internal/pkg/validator"
)

const accessTokenCookie = "accessToken"

// AuthHandler handles authentication-related requests
type AuthHandler struct {
	userService user.Service
	config      *config.Config
	logger      *logger.Logger
	validator   *validator.Validator
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(
	userService user.Service,
	cfg *config.Config,
	log *logger.Logger,
	val *validator.Validator,
) *AuthHandler {
	return &AuthHandler{
		userService: userService,
		config:      cfg,
		logger:      log,
		validator:   val,
	}
}

// Login handles user login
// @Summary User login
// @Description Authenticate user with email and password
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body dto.LoginRequest true "Login credentials"
// @Success 200 {object} dto.AuthResponse "Successfully authenticated"
// @Failure 400 {object} utils.ErrorResponse "Invalid request"
// @Failure 401 {object} utils.ErrorResponse "Invalid credentials"
// @Router /auth/login [post]
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req dto.LoginRequest
	if appErr := decode(r, h.validator, &req); appErr != nil {
		utils.WriteError(w, appErr)
		return
	}

	u, err := h.userService.Authenticate(r.Context(), req.Email, req.Password)
	if err != nil {
		h.logger.With("email", req.Email).Warn("Authentication failed")
		writeError(w, h.logger, err)
		return
	}

	h.issueToken(w, u, http.StatusOK)
}

// Register handles user registration
// @Summary User registration
// @Description Register a new account; email notifications are on by default
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body dto.RegisterRequest true "Registration details"
// @Success 201 {object} dto.AuthResponse "User successfully registered"
// @Failure 400 {object} utils.ErrorResponse "Invalid request or validation error"
// @Failure 409 {object} utils.ErrorResponse "Email already registered"
// @Router /auth/register [post]
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req dto.RegisterRequest
	if appErr := decode(r, h.validator, &req); appErr != nil {
		utils.WriteError(w, appErr)
		return
	}

	u, err := h.userService.Register(r.Context(), req.Email, req.Password, req.FullName)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	h.issueToken(w, u, http.StatusCreated)
}

// Logout clears the session cookie
// @Summary User logout
// @Tags Auth
// @Success 200 {object} utils.SuccessResponse
// @Router /auth/logout [post]
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     accessTokenCookie,
		Value:    "",
		HttpOnly: true,
		Secure:   h.config.Server.Environment == "production",
		SameSite: http.SameSiteStrictMode,
		Path:     "/",
		MaxAge:   -1,
	})

	utils.WriteSuccessWithMessage(w, http.StatusOK, "Logged out successfully", nil)
}

// Me returns the current user's information
// @Summary Get current user
// @Tags Auth
// @Produce json
// @Success 200 {object} dto.UserDTO "User information"
// @Failure 401 {object} utils.ErrorResponse "Unauthorized"
// @Security BearerAuth
// @Router /auth/me [get]
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r)
	if !ok {
		utils.WriteError(w, errors.Unauthorized("User not authenticated"))
		return
	}

	u, err := h.userService.GetByID(r.Context(), userID)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	utils.WriteSuccess(w, http.StatusOK, dto.ToUserDTO(u))
}

// UpdatePreferences changes the caller's notification settings
// @Summary Update notification preferences
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body dto.UpdatePreferencesRequest true "Preferences"
// @Success 200 {object} dto.UserDTO "Updated user"
// @Failure 400 {object} utils.ErrorResponse "Chat enabled without chat id"
// @Security BearerAuth
// @Router /auth/me/preferences [put]
func (h *AuthHandler) UpdatePreferences(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.GetUserID(r)

	var req dto.UpdatePreferencesRequest
	if appErr := decode(r, h.validator, &req); appErr != nil {
		utils.WriteError(w, appErr)
		return
	}

	u, err := h.userService.UpdatePreferences(r.Context(), userID, user.Preferences{
		EmailNotifications: req.EmailNotifications,
		ChatEnabled:        req.ChatEnabled,
		ChatID:             req.ChatID,
	})
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	utils.WriteSuccess(w, http.StatusOK, dto.ToUserDTO(u))
}

func (h *AuthHandler) issueToken(w http.ResponseWriter, u *user.User, status int) {
	token, expiresAt, err := auth.MintAccessToken(u.ID, u.Email, u.Role, h.config.Auth.JWTSecret, h.config.Auth.AccessTokenExpiry)
	if err != nil {
		h.logger.ErrorWithErr(err, "Failed to generate token")
		utils.WriteError(w, errors.Internal("Failed to generate token", err))
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     accessTokenCookie,
		Value:    token,
		HttpOnly: true,
		Secure:   h.config.Server.Environment == "production",
		SameSite: http.SameSiteStrictMode,
		Path:     "/",
		Expires:  expiresAt,
	})

	h.logger.With("user_id", u.ID).Info("Access token issued")
	utils.WriteSuccess(w, status, dto.AuthResponse{
		AccessToken: token,
		ExpiresAt:   expiresAt,
		User:        dto.ToUserDTO(u),
	})
}
