package auth

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// IdentityRepository defines the interface for account persistence.
type IdentityRepository interface {
	Create(ctx context.Context, identity *Identity) error
	GetByID(ctx context.Context, id string) (*Identity, error)
	GetByEmail(ctx context.Context, email string) (*Identity, error)
	UpdatePasswordHash(ctx context.Context, id, passwordHash string) error
}

// NormalizeEmail lowercases and trims an email address. All lookups and
// stores go through this so "Teacher@School.edu" and "teacher@school.edu"
// are the same account.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// SQLiteIdentityRepository implements IdentityRepository using SQLite.
type SQLiteIdentityRepository struct {
	db *sql.DB
}

// NewIdentityRepository creates a new SQLite-backed identity repository.
func NewIdentityRepository(db *sql.DB) *SQLiteIdentityRepository {
	return &SQLiteIdentityRepository{db: db}
}

// Create inserts a new identity. The ID is generated if empty and the email
// is normalized before storage. Returns ErrEmailExists if the email is taken.
func (r *SQLiteIdentityRepository) Create(ctx context.Context, identity *Identity) error {
	if identity.ID == "" {
		identity.ID = uuid.NewString()
	}
	identity.Email = NormalizeEmail(identity.Email)

	now := time.Now().UTC().Format(time.RFC3339)
	identity.CreatedAt, _ = time.Parse(time.RFC3339, now) //nolint:errcheck // format is controlled
	identity.UpdatedAt = identity.CreatedAt

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO identities (id, email, name, password_hash, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		identity.ID, identity.Email, identity.Name, identity.PasswordHash, now, now,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrEmailExists
		}
		return fmt.Errorf("creating identity: %w", err)
	}

	return nil
}

// GetByID retrieves an identity by its unique ID.
func (r *SQLiteIdentityRepository) GetByID(ctx context.Context, id string) (*Identity, error) {
	return r.getIdentity(ctx,
		"SELECT id, email, name, password_hash, created_at, updated_at FROM identities WHERE id = ?", id)
}

// GetByEmail retrieves an identity by email. The lookup is normalized the
// same way Create normalizes on insert.
func (r *SQLiteIdentityRepository) GetByEmail(ctx context.Context, email string) (*Identity, error) {
	return r.getIdentity(ctx,
		"SELECT id, email, name, password_hash, created_at, updated_at FROM identities WHERE email = ?",
		NormalizeEmail(email))
}

// UpdatePasswordHash replaces an identity's password hash.
func (r *SQLiteIdentityRepository) UpdatePasswordHash(ctx context.Context, id, passwordHash string) error {
	now := time.Now().UTC().Format(time.RFC3339)

	result, err := r.db.ExecContext(ctx,
		`UPDATE identities SET password_hash = ?, updated_at = ? WHERE id = ?`,
		passwordHash, now, id,
	)
	if err != nil {
		return fmt.Errorf("updating password hash: %w", err)
	}

	rows, _ := result.RowsAffected() //nolint:errcheck // always succeeds on SQLite
	if rows == 0 {
		return ErrIdentityNotFound
	}
	return nil
}

// getIdentity executes a query and scans a single identity result.
func (r *SQLiteIdentityRepository) getIdentity(ctx context.Context, query string, args ...any) (*Identity, error) {
	var ident Identity
	var createdAt, updatedAt string

	err := r.db.QueryRowContext(ctx, query, args...).Scan(
		&ident.ID, &ident.Email, &ident.Name, &ident.PasswordHash, &createdAt, &updatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrIdentityNotFound
		}
		return nil, fmt.Errorf("scanning identity: %w", err)
	}

	ident.CreatedAt, _ = time.Parse(time.RFC3339, createdAt) //nolint:errcheck // format is controlled
	ident.UpdatedAt, _ = time.Parse(time.RFC3339, updatedAt) //nolint:errcheck // format is controlled

	return &ident, nil
}

// isUniqueViolation checks if a SQLite error is a UNIQUE constraint violation.
func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint")
}
