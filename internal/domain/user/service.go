package user

import "context"

// Service defines the interface for account operations
type Service interface {
	Register(ctx context.Context, email, password, fullName string) (*User, error)
	Authenticate(ctx context.Context, email, password string) (*User, error)
	GetByID(ctx context.Context, id int64) (*User, error)
	UpdatePreferences(ctx context.Context, id int64, prefs Preferences) (*User, error)
}
