package services

import (
	"context"
	"testing"

	"golang.org/x/crypto/bcrypt"

	"github.com/pratik-mahalle/petalert/internal/domain/user"
	"github.com/pratik-mahalle/petalert/internal/pkg/errors"
	"github.com/pratik-mahalle/petalert/internal/pkg/logger"
	"github.com/pratik-mahalle/petalert/internal/testutil"
)

func newUserService() (user.Service, *testutil.MockUserRepository) {
	mockRepo := testutil.NewMockUserRepository()
	log := logger.New(logger.Config{Level: "error", Format: "json"})
	return NewUserService(mockRepo, bcrypt.MinCost, log), mockRepo
}

func TestUserService_Register(t *testing.T) {
	service, _ := newUserService()
	ctx := context.Background()

	tests := []struct {
		name     string
		email    string
		password string
		wantCode string
	}{
		{
			name:     "successful registration",
			email:    "Owner@Example.com",
			password: "correct-horse",
		},
		{
			name:     "duplicate email",
			email:    "owner@example.com",
			password: "correct-horse",
			wantCode: errors.ErrCodeConflict,
		},
		{
			name:     "invalid email",
			email:    "not-an-email",
			password: "correct-horse",
			wantCode: errors.ErrCodeValidation,
		},
		{
			name:     "short password",
			email:    "other@example.com",
			password: "short",
			wantCode: errors.ErrCodeValidation,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			u, err := service.Register(ctx, tt.email, tt.password, "Pet Owner")

			if tt.wantCode != "" {
				appErr, ok := errors.As(err)
				if !ok || appErr.Code != tt.wantCode {
					t.Errorf("Register() error = %v, want code %s", err, tt.wantCode)
				}
				return
			}
			if err != nil {
				t.Fatalf("Register() error = %v", err)
			}
			if u.Email != "owner@example.com" {
				t.Errorf("Register() email = %v, want lowercased", u.Email)
			}
			if u.Role != user.RoleUser {
				t.Errorf("Register() role = %v, want %v", u.Role, user.RoleUser)
			}
			if !u.EmailNotifications || u.ChatEnabled {
				t.Errorf("Register() preferences = email %v chat %v", u.EmailNotifications, u.ChatEnabled)
			}
			if u.PasswordHash == tt.password || u.PasswordHash == "" {
				t.Error("Register() did not hash the password")
			}
		})
	}
}

func TestUserService_Authenticate(t *testing.T) {
	service, _ := newUserService()
	ctx := context.Background()

	if _, err := service.Register(ctx, "owner@example.com", "correct-horse", ""); err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	tests := []struct {
		name     string
		email    string
		password string
		wantErr  bool
	}{
		{name: "valid credentials", email: "owner@example.com", password: "correct-horse", wantErr: false},
		{name: "case insensitive email", email: "OWNER@example.com", password: "correct-horse", wantErr: false},
		{name: "wrong password", email: "owner@example.com", password: "battery-staple", wantErr: true},
		{name: "unknown email", email: "ghost@example.com", password: "correct-horse", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			u, err := service.Authenticate(ctx, tt.email, tt.password)

			if (err != nil) != tt.wantErr {
				t.Errorf("Authenticate() error = %v, wantErr %v", err, tt.wantErr)
				return
			}
			if tt.wantErr {
				appErr, ok := errors.As(err)
				if !ok || appErr.Code != errors.ErrCodeUnauthorized {
					t.Errorf("Authenticate() error = %v, want unauthorized", err)
				}
				return
			}
			if u == nil {
				t.Error("Authenticate() returned nil user")
			}
		})
	}
}

func TestUserService_GetByID(t *testing.T) {
	service, mockRepo := newUserService()
	ctx := context.Background()
	created := mockRepo.AddUser(&user.User{Email: "test@example.com", Role: user.RoleUser})

	if _, err := service.GetByID(ctx, created.ID); err != nil {
		t.Errorf("GetByID() error = %v", err)
	}
	if _, err := service.GetByID(ctx, 999); !errors.IsNotFound(err) {
		t.Errorf("GetByID() error = %v, want not found", err)
	}
}

func TestUserService_UpdatePreferences(t *testing.T) {
	service, mockRepo := newUserService()
	ctx := context.Background()
	u := mockRepo.AddUser(&user.User{Email: "test@example.com", Role: user.RoleUser, EmailNotifications: true})

	off, on := false, true
	chatID := " 424242 "

	tests := []struct {
		name      string
		prefs     user.Preferences
		wantErr   bool
		wantEmail bool
		wantChat  bool
	}{
		{
			name:    "enable chat without id",
			prefs:   user.Preferences{ChatEnabled: &on},
			wantErr: true,
		},
		{
			name:      "link chat",
			prefs:     user.Preferences{ChatEnabled: &on, ChatID: &chatID},
			wantEmail: true,
			wantChat:  true,
		},
		{
			name:      "mute email",
			prefs:     user.Preferences{EmailNotifications: &off},
			wantEmail: false,
			wantChat:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := service.UpdatePreferences(ctx, u.ID, tt.prefs)

			if (err != nil) != tt.wantErr {
				t.Fatalf("UpdatePreferences() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			if got.EmailEligible() != tt.wantEmail || got.ChatEligible() != tt.wantChat {
				t.Errorf("eligibility = email %v chat %v, want %v %v", got.EmailEligible(), got.ChatEligible(), tt.wantEmail, tt.wantChat)
			}
			if got.ChatID != "424242" {
				t.Errorf("chat id = %q, want trimmed", got.ChatID)
			}
		})
	}
}
