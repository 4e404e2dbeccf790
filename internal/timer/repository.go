package timer

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/classkit/classkit/internal/resource"
)

// Repository defines tenant-scoped preset persistence.
type Repository interface {
	Create(ctx context.Context, p *Preset) error
	List(ctx context.Context, tenantID string) ([]Preset, error)
	Get(ctx context.Context, tenantID, id string) (*Preset, error)
	Delete(ctx context.Context, tenantID, id string) error
}

// SQLiteRepository implements Repository using SQLite.
type SQLiteRepository struct {
	db *sql.DB
}

// NewRepository creates a new SQLite-backed preset repository.
func NewRepository(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

const presetColumns = "id, tenant_id, created_by, name, duration_seconds, theme, sound, auto_start, created_at"

// Create inserts a new preset. The ID is generated if empty.
func (r *SQLiteRepository) Create(ctx context.Context, p *Preset) error {
	if p.ID == "" {
		p.ID = resource.NewID()
	}

	now := time.Now().UTC().Format(time.RFC3339)
	p.CreatedAt, _ = time.Parse(time.RFC3339, now) //nolint:errcheck // format is controlled

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO timer_presets (id, tenant_id, created_by, name, duration_seconds, theme, sound, auto_start, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		p.ID, p.TenantID, p.CreatedBy, p.Name, p.DurationSeconds, p.Theme,
		nullString(p.Sound), boolToInt(p.AutoStart), now,
	)
	if err != nil {
		return fmt.Errorf("creating preset: %w", err)
	}
	return nil
}

// List returns the tenant's presets, oldest first.
func (r *SQLiteRepository) List(ctx context.Context, tenantID string) ([]Preset, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT "+presetColumns+" FROM timer_presets WHERE tenant_id = ? ORDER BY created_at ASC, id ASC", tenantID)
	if err != nil {
		return nil, fmt.Errorf("listing presets: %w", err)
	}
	defer rows.Close()

	presets := []Preset{}
	for rows.Next() {
		p, err := scanPreset(rows)
		if err != nil {
			return nil, err
		}
		presets = append(presets, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating presets: %w", err)
	}
	return presets, nil
}

// Get retrieves a preset by ID within the tenant's scope.
func (r *SQLiteRepository) Get(ctx context.Context, tenantID, id string) (*Preset, error) {
	row := r.db.QueryRowContext(ctx,
		"SELECT "+presetColumns+" FROM timer_presets WHERE id = ? AND tenant_id = ?", id, tenantID)

	p, err := scanPreset(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrPresetNotFound
		}
		return nil, err
	}
	return p, nil
}

// Delete removes a preset within the tenant's scope.
func (r *SQLiteRepository) Delete(ctx context.Context, tenantID, id string) error {
	result, err := r.db.ExecContext(ctx,
		"DELETE FROM timer_presets WHERE id = ? AND tenant_id = ?", id, tenantID)
	if err != nil {
		return fmt.Errorf("deleting preset: %w", err)
	}

	rows, _ := result.RowsAffected() //nolint:errcheck // always succeeds on SQLite
	if rows == 0 {
		return ErrPresetNotFound
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanPreset(s scanner) (*Preset, error) {
	var p Preset
	var sound sql.NullString
	var autoStart int
	var createdAt string

	err := s.Scan(&p.ID, &p.TenantID, &p.CreatedBy, &p.Name, &p.DurationSeconds,
		&p.Theme, &sound, &autoStart, &createdAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scanning preset: %w", err)
	}

	if sound.Valid {
		p.Sound = sound.String
	}
	p.AutoStart = autoStart != 0
	p.CreatedAt, _ = time.Parse(time.RFC3339, createdAt) //nolint:errcheck // format is controlled

	return &p, nil
}

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
