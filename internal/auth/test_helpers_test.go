package auth

import (
	"context"
	"database/sql"
	"os"
	"testing"

	_ "github.com/mattn/go-sqlite3"

	"github.com/classkit/classkit/internal/infrastructure/logging"
)

// fastParams keeps Argon2id cheap in tests. Never use these in production.
var fastParams = Argon2Params{Time: 1, Memory: 1024, Threads: 1}

// testDB creates a temporary SQLite database with the identities schema applied.
// The database file is cleaned up when the test completes.
func testDB(t *testing.T) *sql.DB {
	t.Helper()

	// Use a temp file so WAL mode works (in-memory doesn't support it)
	f, err := os.CreateTemp("", "auth-test-*.db")
	if err != nil {
		t.Fatalf("creating temp db: %v", err)
	}
	dbPath := f.Name()
	f.Close()
	t.Cleanup(func() { os.Remove(dbPath) })

	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_foreign_keys=ON")
	if err != nil {
		t.Fatalf("opening test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	migrationSQL := `
		CREATE TABLE identities (
			id TEXT PRIMARY KEY,
			email TEXT NOT NULL,
			name TEXT NOT NULL,
			password_hash TEXT NOT NULL,
			created_at TEXT NOT NULL,
			updated_at TEXT NOT NULL
		) STRICT;

		CREATE UNIQUE INDEX idx_identities_email ON identities(email);
	`
	if _, err := db.Exec(migrationSQL); err != nil {
		t.Fatalf("applying identities migration: %v", err)
	}

	return db
}

// testService wires a Service against a temp database with cheap hashing.
func testService(t *testing.T) (*Service, *SQLiteIdentityRepository) {
	t.Helper()

	repo := NewIdentityRepository(testDB(t))
	tokens := NewTokenService("test-secret-key-at-least-32-characters-long", testAccessTTL, testRefreshTTL)

	svc, err := NewService(repo, NewHasher(fastParams), tokens, logging.Discard(), 2)
	if err != nil {
		t.Fatalf("NewService() error = %v", err)
	}
	return svc, repo
}

// seedIdentity registers an account directly through the repository.
func seedIdentity(t *testing.T, repo *SQLiteIdentityRepository, email, password string) *Identity {
	t.Helper()

	hash, err := NewHasher(fastParams).Hash(password)
	if err != nil {
		t.Fatalf("hashing password: %v", err)
	}

	identity := &Identity{
		Email:        email,
		Name:         "Test Teacher",
		PasswordHash: hash,
	}
	if err := repo.Create(context.Background(), identity); err != nil {
		t.Fatalf("creating test identity %s: %v", email, err)
	}
	return identity
}
