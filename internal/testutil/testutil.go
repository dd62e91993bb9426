package testutil

import (
	"io/fs"
	"sort"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pratik-mahalle/petalert/migrations"
	_ "modernc.org/sqlite"
)

// NewTestDB creates an in-memory SQLite database with the production schema
func NewTestDB(t *testing.T) *sqlx.DB {
	t.Helper()

	db, err := sqlx.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}

	// every connection gets its own in-memory database
	db.SetMaxOpenConns(1)
	db.SetConnMaxLifetime(0)

	if _, err := db.Exec("PRAGMA foreign_keys=ON;"); err != nil {
		t.Fatalf("Failed to enable foreign keys: %v", err)
	}

	schema, err := migrations.GetFS("sqlite")
	if err != nil {
		t.Fatalf("Failed to load migrations: %v", err)
	}
	files, err := fs.Glob(schema, "*.sql")
	if err != nil {
		t.Fatalf("Failed to list migrations: %v", err)
	}
	sort.Strings(files)

	for _, name := range files {
		content, err := fs.ReadFile(schema, name)
		if err != nil {
			t.Fatalf("Failed to read migration %s: %v", name, err)
		}
		if _, err := db.Exec(string(content)); err != nil {
			t.Fatalf("Failed to apply migration %s: %v", name, err)
		}
	}

	return db
}

// CleanupDB closes the test database
func CleanupDB(db *sqlx.DB) {
	if db != nil {
		db.Close()
	}
}

// SeedUser inserts a user with notification defaults and returns its ID
func SeedUser(t *testing.T, db *sqlx.DB, email string) int64 {
	t.Helper()

	now := time.Now().UTC()
	var id int64
	err := db.QueryRowx(db.Rebind(`
		INSERT INTO users (email, full_name, password_hash, role, email_notifications, chat_enabled, chat_id, created_at, updated_at)
		VALUES (?, '', 'x', 'user', ?, ?, '', ?, ?)
		RETURNING id
	`), email, true, false, now, now).Scan(&id)
	if err != nil {
		t.Fatalf("Failed to seed user: %v", err)
	}
	return id
}

// SeedPet inserts a pet owned by ownerID and returns its ID
func SeedPet(t *testing.T, db *sqlx.DB, ownerID int64, name string) int64 {
	t.Helper()

	var id int64
	err := db.QueryRowx(db.Rebind(`
		INSERT INTO pets (owner_id, name, species, photo_key, created_at)
		VALUES (?, ?, 'dog', '', ?)
		RETURNING id
	`), ownerID, name, time.Now().UTC()).Scan(&id)
	if err != nil {
		t.Fatalf("Failed to seed pet: %v", err)
	}
	return id
}
