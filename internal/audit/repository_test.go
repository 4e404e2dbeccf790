package audit

import (
	"context"
	"database/sql"
	"os"
	"testing"

	_ "github.com/mattn/go-sqlite3"
)

func testDB(t *testing.T) *sql.DB {
	t.Helper()

	f, err := os.CreateTemp("", "audit-test-*.db")
	if err != nil {
		t.Fatalf("creating temp db: %v", err)
	}
	dbPath := f.Name()
	f.Close()
	t.Cleanup(func() { os.Remove(dbPath) })

	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL")
	if err != nil {
		t.Fatalf("opening test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	migrationSQL := `
		CREATE TABLE audit_log (
			id TEXT PRIMARY KEY,
			tenant_id TEXT NOT NULL,
			subject TEXT NOT NULL,
			action TEXT NOT NULL,
			entity_type TEXT NOT NULL,
			entity_id TEXT,
			details TEXT,
			created_at TEXT NOT NULL
		) STRICT;

		CREATE INDEX idx_audit_log_tenant ON audit_log(tenant_id, created_at);
	`
	if _, err := db.Exec(migrationSQL); err != nil {
		t.Fatalf("applying audit_log migration: %v", err)
	}

	return db
}

func record(t *testing.T, repo *SQLiteRepository, tenantID, action, entityType string) {
	t.Helper()
	err := repo.Record(context.Background(), &Entry{
		TenantID:   tenantID,
		Subject:    tenantID,
		Action:     action,
		EntityType: entityType,
		EntityID:   "entity-1",
	})
	if err != nil {
		t.Fatalf("Record() error = %v", err)
	}
}

func TestRepository_RecordAndList(t *testing.T) {
	repo := NewRepository(testDB(t))

	err := repo.Record(context.Background(), &Entry{
		TenantID:   "tenant-a",
		Subject:    "tenant-a",
		Action:     "create",
		EntityType: "roster",
		EntityID:   "roster-1",
		Details:    map[string]any{"name": "Period 1"},
	})
	if err != nil {
		t.Fatalf("Record() error = %v", err)
	}

	result, err := repo.List(context.Background(), Filter{TenantID: "tenant-a"})
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if result.Total != 1 || len(result.Entries) != 1 {
		t.Fatalf("List() total = %d, entries = %d, want 1 each", result.Total, len(result.Entries))
	}

	entry := result.Entries[0]
	if entry.Action != "create" || entry.EntityType != "roster" || entry.EntityID != "roster-1" {
		t.Errorf("entry did not round-trip: %+v", entry)
	}
	if entry.Details["name"] != "Period 1" {
		t.Errorf("details = %v, want name=Period 1", entry.Details)
	}
	if entry.CreatedAt.IsZero() {
		t.Error("entry should have a timestamp")
	}
}

func TestRepository_TenantIsolation(t *testing.T) {
	repo := NewRepository(testDB(t))

	record(t, repo, "tenant-a", "create", "roster")
	record(t, repo, "tenant-b", "delete", "roster")

	result, err := repo.List(context.Background(), Filter{TenantID: "tenant-a"})
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if result.Total != 1 {
		t.Fatalf("List() total = %d, want 1", result.Total)
	}
	if result.Entries[0].TenantID != "tenant-a" {
		t.Errorf("List() leaked entry from tenant %q", result.Entries[0].TenantID)
	}

	// Listing without a tenant is refused outright.
	if _, err := repo.List(context.Background(), Filter{}); err == nil {
		t.Error("List() without tenant should fail")
	}
}

func TestRepository_Filters(t *testing.T) {
	repo := NewRepository(testDB(t))

	record(t, repo, "tenant-a", "create", "roster")
	record(t, repo, "tenant-a", "update", "roster")
	record(t, repo, "tenant-a", "create", "seating_chart")

	byAction, err := repo.List(context.Background(), Filter{TenantID: "tenant-a", Action: "create"})
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if byAction.Total != 2 {
		t.Errorf("List(action=create) total = %d, want 2", byAction.Total)
	}

	byType, err := repo.List(context.Background(), Filter{TenantID: "tenant-a", EntityType: "seating_chart"})
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if byType.Total != 1 {
		t.Errorf("List(entity_type=seating_chart) total = %d, want 1", byType.Total)
	}
}

func TestRepository_LimitClamping(t *testing.T) {
	repo := NewRepository(testDB(t))

	for i := 0; i < 5; i++ {
		record(t, repo, "tenant-a", "create", "roster")
	}

	result, err := repo.List(context.Background(), Filter{TenantID: "tenant-a", Limit: 2})
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(result.Entries) != 2 {
		t.Errorf("List(limit=2) returned %d entries, want 2", len(result.Entries))
	}
	if result.Total != 5 {
		t.Errorf("List() total = %d, want 5", result.Total)
	}

	clamped, err := repo.List(context.Background(), Filter{TenantID: "tenant-a", Limit: 10000})
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if clamped.Limit != 200 {
		t.Errorf("limit should clamp to 200, got %d", clamped.Limit)
	}
}
