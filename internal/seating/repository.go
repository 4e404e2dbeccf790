package seating

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/classkit/classkit/internal/resource"
)

// Repository defines tenant-scoped seating chart persistence. Absent and
// cross-tenant charts both surface as resource.ErrNotFound.
type Repository interface {
	Create(ctx context.Context, c *Chart) error
	Get(ctx context.Context, tenantID, id string) (*Chart, error)
	List(ctx context.Context, tenantID, rosterID string) ([]Chart, error)
	Update(ctx context.Context, tenantID, id string, upd Update) (*Chart, error)
	Delete(ctx context.Context, tenantID, id string) error
}

// SQLiteRepository implements Repository using SQLite.
type SQLiteRepository struct {
	db *sql.DB
}

// NewRepository creates a new SQLite-backed seating chart repository.
func NewRepository(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

const chartColumns = "id, tenant_id, created_by, name, roster_id, layout, ciphertext, nonce, created_at, updated_at"

// Create inserts a new chart. The ID is generated if empty. Callers are
// responsible for verifying the roster reference is in the same tenant.
func (r *SQLiteRepository) Create(ctx context.Context, chart *Chart) error {
	if chart.ID == "" {
		chart.ID = resource.NewID()
	}

	layout, err := json.Marshal(chart.Layout)
	if err != nil {
		return fmt.Errorf("encoding layout: %w", err)
	}

	now := time.Now().UTC().Format(time.RFC3339)
	chart.CreatedAt, _ = time.Parse(time.RFC3339, now) //nolint:errcheck // format is controlled
	chart.UpdatedAt = chart.CreatedAt

	_, err = r.db.ExecContext(ctx,
		`INSERT INTO seating_charts (id, tenant_id, created_by, name, roster_id, layout, ciphertext, nonce, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		chart.ID, chart.TenantID, chart.CreatedBy, chart.Name, chart.RosterID,
		string(layout), chart.Ciphertext, chart.Nonce, now, now,
	)
	if err != nil {
		return fmt.Errorf("creating seating chart: %w", err)
	}
	return nil
}

// Get retrieves a chart by ID within the tenant's scope.
func (r *SQLiteRepository) Get(ctx context.Context, tenantID, id string) (*Chart, error) {
	row := r.db.QueryRowContext(ctx,
		"SELECT "+chartColumns+" FROM seating_charts WHERE id = ? AND tenant_id = ?", id, tenantID)

	chart, err := scanChart(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, resource.ErrNotFound
		}
		return nil, err
	}
	return chart, nil
}

// List returns the tenant's charts, oldest first. A non-empty rosterID
// filters to charts for that roster.
func (r *SQLiteRepository) List(ctx context.Context, tenantID, rosterID string) ([]Chart, error) {
	query := "SELECT " + chartColumns + " FROM seating_charts WHERE tenant_id = ?"
	args := []any{tenantID}
	if rosterID != "" {
		query += " AND roster_id = ?"
		args = append(args, rosterID)
	}
	query += " ORDER BY created_at ASC, id ASC"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing seating charts: %w", err)
	}
	defer rows.Close()

	charts := []Chart{}
	for rows.Next() {
		chart, err := scanChart(rows)
		if err != nil {
			return nil, err
		}
		charts = append(charts, *chart)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating seating charts: %w", err)
	}
	return charts, nil
}

// Update applies a partial update within the tenant's scope and returns the
// updated chart. Omitted fields keep their stored values.
func (r *SQLiteRepository) Update(ctx context.Context, tenantID, id string, upd Update) (*Chart, error) {
	var layout sql.NullString
	if upd.Layout != nil {
		encoded, err := json.Marshal(upd.Layout)
		if err != nil {
			return nil, fmt.Errorf("encoding layout: %w", err)
		}
		layout = sql.NullString{String: string(encoded), Valid: true}
	}

	now := time.Now().UTC().Format(time.RFC3339)

	result, err := r.db.ExecContext(ctx,
		`UPDATE seating_charts SET
			name = COALESCE(?, name),
			layout = COALESCE(?, layout),
			ciphertext = COALESCE(?, ciphertext),
			nonce = COALESCE(?, nonce),
			updated_at = ?
		 WHERE id = ? AND tenant_id = ?`,
		nullable(upd.Name), layout, nullable(upd.Ciphertext), nullable(upd.Nonce), now, id, tenantID,
	)
	if err != nil {
		return nil, fmt.Errorf("updating seating chart: %w", err)
	}

	rows, _ := result.RowsAffected() //nolint:errcheck // always succeeds on SQLite
	if rows == 0 {
		return nil, resource.ErrNotFound
	}
	return r.Get(ctx, tenantID, id)
}

// Delete removes a chart within the tenant's scope.
func (r *SQLiteRepository) Delete(ctx context.Context, tenantID, id string) error {
	result, err := r.db.ExecContext(ctx,
		"DELETE FROM seating_charts WHERE id = ? AND tenant_id = ?", id, tenantID)
	if err != nil {
		return fmt.Errorf("deleting seating chart: %w", err)
	}

	rows, _ := result.RowsAffected() //nolint:errcheck // always succeeds on SQLite
	if rows == 0 {
		return resource.ErrNotFound
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanChart(s scanner) (*Chart, error) {
	var chart Chart
	var layout, createdAt, updatedAt string

	err := s.Scan(&chart.ID, &chart.TenantID, &chart.CreatedBy, &chart.Name, &chart.RosterID,
		&layout, &chart.Ciphertext, &chart.Nonce, &createdAt, &updatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scanning seating chart: %w", err)
	}

	if err := json.Unmarshal([]byte(layout), &chart.Layout); err != nil {
		return nil, fmt.Errorf("decoding layout: %w", err)
	}

	chart.CreatedAt, _ = time.Parse(time.RFC3339, createdAt) //nolint:errcheck // format is controlled
	chart.UpdatedAt, _ = time.Parse(time.RFC3339, updatedAt) //nolint:errcheck // format is controlled

	return &chart, nil
}

func nullable(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}
