package user

import "time"

// User roles
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// User is an account together with its notification preferences
type User struct {
	ID                 int64     `json:"id" db:"id"`
	Email              string    `json:"email" db:"email"`
	FullName           string    `json:"full_name" db:"full_name"`
	PasswordHash       string    `json:"-" db:"password_hash"`
	Role               string    `json:"role" db:"role"`
	EmailNotifications bool      `json:"email_notifications" db:"email_notifications"`
	ChatEnabled        bool      `json:"chat_enabled" db:"chat_enabled"`
	ChatID             string    `json:"chat_id,omitempty" db:"chat_id"`
	CreatedAt          time.Time `json:"created_at" db:"created_at"`
	UpdatedAt          time.Time `json:"updated_at" db:"updated_at"`
}

// EmailEligible reports whether the user can receive email notifications
func (u *User) EmailEligible() bool {
	return u.EmailNotifications && u.Email != ""
}

// ChatEligible reports whether the user has a linked, enabled chat identity
func (u *User) ChatEligible() bool {
	return u.ChatEnabled && u.ChatID != ""
}

// Preferences are the notification settings a user can change
type Preferences struct {
	EmailNotifications *bool
	ChatEnabled        *bool
	ChatID             *string
}
