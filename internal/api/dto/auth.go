package dto

import (
	"time"

	"github.com/pratik-mahalle/petalert/internal/domain/user"
)

// LoginRequest represents a login request
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// RegisterRequest represents a registration request
type RegisterRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
	FullName string `json:"fullName,omitempty" validate:"max=100"`
}

// AuthResponse represents an authentication response
type AuthResponse struct {
	AccessToken string    `json:"accessToken"`
	ExpiresAt   time.Time `json:"expiresAt"`
	User        UserDTO   `json:"user"`
}

// UserDTO represents a user in API responses
type UserDTO struct {
	ID                 int64     `json:"id"`
	Email              string    `json:"email"`
	FullName           string    `json:"fullName,omitempty"`
	Role               string    `json:"role"`
	EmailNotifications bool      `json:"emailNotifications"`
	ChatEnabled        bool      `json:"chatEnabled"`
	ChatID             string    `json:"chatId,omitempty"`
	CreatedAt          time.Time `json:"createdAt"`
}

// UpdatePreferencesRequest changes notification settings
type UpdatePreferencesRequest struct {
	EmailNotifications *bool   `json:"emailNotifications,omitempty"`
	ChatEnabled        *bool   `json:"chatEnabled,omitempty"`
	ChatID             *string `json:"chatId,omitempty" validate:"omitempty,max=64"`
}

// ToUserDTO converts a domain user
func ToUserDTO(u *user.User) UserDTO {
	return UserDTO{
		ID:                 u.ID,
		Email:              u.Email,
		FullName:           u.FullName,
		Role:               u.Role,
		EmailNotifications: u.EmailNotifications,
		ChatEnabled:        u.ChatEnabled,
		ChatID:             u.ChatID,
		CreatedAt:          u.CreatedAt,
	}
}
