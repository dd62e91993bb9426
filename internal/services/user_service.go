package services

import (
	"context"
	"net/mail"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/pratik-mahalle/petalert/internal/domain/user"
	"github.com/pratik-mahalle/petalert/internal/pkg/errors"
	"github.com/pratik-mahalle/petalert/internal/pkg/logger"
)

const minPasswordLength = 8

// UserService implements user.Service
type UserService struct {
	repo       user.Repository
	bcryptCost int
	logger     *logger.Logger
}

// NewUserService creates a new user service
func NewUserService(repo user.Repository, bcryptCost int, log *logger.Logger) user.Service {
	if bcryptCost < bcrypt.MinCost || bcryptCost > bcrypt.MaxCost {
		bcryptCost = bcrypt.DefaultCost
	}
	return &UserService{
		repo:       repo,
		bcryptCost: bcryptCost,
		logger:     log,
	}
}

// Register creates an account with email notifications switched on
func (s *UserService) Register(ctx context.Context, email, password, fullName string) (*user.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, errors.ValidationError("Invalid email address", map[string]string{"email": "email"})
	}
	if len(password) < minPasswordLength {
		return nil, errors.ValidationError("Password is too short", map[string]string{"password": "min=8"})
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		return nil, errors.Internal("Failed to hash password", err)
	}

	now := time.Now().UTC()
	u := &user.User{
		Email:              email,
		FullName:           strings.TrimSpace(fullName),
		PasswordHash:       string(hash),
		Role:               user.RoleUser,
		EmailNotifications: true,
		CreatedAt:          now,
		UpdatedAt:          now,
	}

	if err := s.repo.Create(ctx, u); err != nil {
		if appErr, ok := errors.As(err); !ok || appErr.Code != errors.ErrCodeConflict {
			s.logger.ErrorWithErr(err, "Failed to create user")
		}
		return nil, err
	}

	s.logger.WithFields(map[string]interface{}{
		"user_id": u.ID,
		"email":   u.Email,
	}).Info("User registered")

	return u, nil
}

// Authenticate checks credentials. Unknown emails and wrong passwords fail the same way.
func (s *UserService) Authenticate(ctx context.Context, email, password string) (*user.User, error) {
	u, err := s.repo.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if errors.IsNotFound(err) {
			return nil, errors.Unauthorized("Invalid email or password")
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return nil, errors.Unauthorized("Invalid email or password")
	}

	return u, nil
}

// GetByID retrieves a user by ID
func (s *UserService) GetByID(ctx context.Context, id int64) (*user.User, error) {
	return s.repo.GetByID(ctx, id)
}

// UpdatePreferences changes notification settings. Enabling chat requires a chat id.
func (s *UserService) UpdatePreferences(ctx context.Context, id int64, prefs user.Preferences) (*user.User, error) {
	u, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if prefs.EmailNotifications != nil {
		u.EmailNotifications = *prefs.EmailNotifications
	}
	if prefs.ChatID != nil {
		u.ChatID = strings.TrimSpace(*prefs.ChatID)
	}
	if prefs.ChatEnabled != nil {
		u.ChatEnabled = *prefs.ChatEnabled
	}
	if u.ChatEnabled && u.ChatID == "" {
		return nil, errors.ValidationError("A chat id is required to enable chat notifications", map[string]string{"chat_id": "required"})
	}

	u.UpdatedAt = time.Now().UTC()
	if err := s.repo.Update(ctx, u); err != nil {
		s.logger.ErrorWithErr(err, "Failed to update preferences")
		return nil, err
	}

	s.logger.WithFields(map[string]interface{}{
		"user_id":             u.ID,
		"email_notifications": u.EmailNotifications,
		"chat_enabled":        u.ChatEnabled,
	}).Info("Notification preferences updated")

	return u, nil
}
