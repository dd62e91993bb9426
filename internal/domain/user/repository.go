package user

import "context"

// Directory resolves notification preferences and contact addresses
type Directory interface {
	GetByID(ctx context.Context, id int64) (*User, error)
}

// Repository defines the interface for user data access
type Repository interface {
	Directory

	// Create creates a new user
	Create(ctx context.Context, user *User) error

	// GetByEmail retrieves a user by email
	GetByEmail(ctx context.Context, email string) (*User, error)

	// Update updates a user
	Update(ctx context.Context, user *User) error
}
