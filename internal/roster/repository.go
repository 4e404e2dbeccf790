package roster

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/classkit/classkit/internal/resource"
)

// Repository defines tenant-scoped roster persistence. Every method takes
// the caller's tenant ID and returns resource.ErrNotFound for rosters that
// are absent or owned by another tenant, with no distinction between the two.
type Repository interface {
	Create(ctx context.Context, r *Roster) error
	Get(ctx context.Context, tenantID, id string) (*Roster, error)
	List(ctx context.Context, tenantID string) ([]Roster, error)
	Update(ctx context.Context, tenantID, id string, upd Update) (*Roster, error)
	Delete(ctx context.Context, tenantID, id string) error
}

// SQLiteRepository implements Repository using SQLite.
type SQLiteRepository struct {
	db *sql.DB
}

// NewRepository creates a new SQLite-backed roster repository.
func NewRepository(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

const rosterColumns = "id, tenant_id, created_by, name, ciphertext, nonce, created_at, updated_at"

// Create inserts a new roster. The ID is generated if empty.
func (r *SQLiteRepository) Create(ctx context.Context, roster *Roster) error {
	if roster.ID == "" {
		roster.ID = resource.NewID()
	}

	now := time.Now().UTC().Format(time.RFC3339)
	roster.CreatedAt, _ = time.Parse(time.RFC3339, now) //nolint:errcheck // format is controlled
	roster.UpdatedAt = roster.CreatedAt

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO rosters (id, tenant_id, created_by, name, ciphertext, nonce, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		roster.ID, roster.TenantID, roster.CreatedBy, roster.Name,
		roster.Ciphertext, roster.Nonce, now, now,
	)
	if err != nil {
		return fmt.Errorf("creating roster: %w", err)
	}
	return nil
}

// Get retrieves a roster by ID within the tenant's scope.
func (r *SQLiteRepository) Get(ctx context.Context, tenantID, id string) (*Roster, error) {
	row := r.db.QueryRowContext(ctx,
		"SELECT "+rosterColumns+" FROM rosters WHERE id = ? AND tenant_id = ?", id, tenantID)

	roster, err := scanRoster(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, resource.ErrNotFound
		}
		return nil, err
	}
	return roster, nil
}

// List returns all of the tenant's rosters, oldest first. The (created_at, id)
// ordering is stable even when timestamps collide.
func (r *SQLiteRepository) List(ctx context.Context, tenantID string) ([]Roster, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT "+rosterColumns+" FROM rosters WHERE tenant_id = ? ORDER BY created_at ASC, id ASC", tenantID)
	if err != nil {
		return nil, fmt.Errorf("listing rosters: %w", err)
	}
	defer rows.Close()

	rosters := []Roster{}
	for rows.Next() {
		roster, err := scanRoster(rows)
		if err != nil {
			return nil, err
		}
		rosters = append(rosters, *roster)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating rosters: %w", err)
	}
	return rosters, nil
}

// Update applies a partial update within the tenant's scope and returns the
// updated roster. Omitted fields keep their stored values.
func (r *SQLiteRepository) Update(ctx context.Context, tenantID, id string, upd Update) (*Roster, error) {
	now := time.Now().UTC().Format(time.RFC3339)

	result, err := r.db.ExecContext(ctx,
		`UPDATE rosters SET
			name = COALESCE(?, name),
			ciphertext = COALESCE(?, ciphertext),
			nonce = COALESCE(?, nonce),
			updated_at = ?
		 WHERE id = ? AND tenant_id = ?`,
		nullable(upd.Name), nullable(upd.Ciphertext), nullable(upd.Nonce), now, id, tenantID,
	)
	if err != nil {
		return nil, fmt.Errorf("updating roster: %w", err)
	}

	rows, _ := result.RowsAffected() //nolint:errcheck // always succeeds on SQLite
	if rows == 0 {
		return nil, resource.ErrNotFound
	}
	return r.Get(ctx, tenantID, id)
}

// Delete removes a roster within the tenant's scope.
func (r *SQLiteRepository) Delete(ctx context.Context, tenantID, id string) error {
	result, err := r.db.ExecContext(ctx,
		"DELETE FROM rosters WHERE id = ? AND tenant_id = ?", id, tenantID)
	if err != nil {
		return fmt.Errorf("deleting roster: %w", err)
	}

	rows, _ := result.RowsAffected() //nolint:errcheck // always succeeds on SQLite
	if rows == 0 {
		return resource.ErrNotFound
	}
	return nil
}

// scanner is an interface for sql.Row and sql.Rows Scan methods.
type scanner interface {
	Scan(dest ...any) error
}

func scanRoster(s scanner) (*Roster, error) {
	var roster Roster
	var createdAt, updatedAt string

	err := s.Scan(&roster.ID, &roster.TenantID, &roster.CreatedBy, &roster.Name,
		&roster.Ciphertext, &roster.Nonce, &createdAt, &updatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scanning roster: %w", err)
	}

	roster.CreatedAt, _ = time.Parse(time.RFC3339, createdAt) //nolint:errcheck // format is controlled
	roster.UpdatedAt, _ = time.Parse(time.RFC3339, updatedAt) //nolint:errcheck // format is controlled

	return &roster, nil
}

func nullable(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}
