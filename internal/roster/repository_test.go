package roster

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"testing"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/classkit/classkit/internal/resource"
)

func testDB(t *testing.T) *sql.DB {
	t.Helper()

	f, err := os.CreateTemp("", "roster-test-*.db")
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
		CREATE TABLE rosters (
			id TEXT PRIMARY KEY,
			tenant_id TEXT NOT NULL,
			created_by TEXT NOT NULL,
			name TEXT NOT NULL,
			ciphertext TEXT NOT NULL,
			nonce TEXT NOT NULL,
			created_at TEXT NOT NULL,
			updated_at TEXT NOT NULL
		) STRICT;

		CREATE INDEX idx_rosters_tenant ON rosters(tenant_id);
	`
	if _, err := db.Exec(migrationSQL); err != nil {
		t.Fatalf("applying rosters migration: %v", err)
	}

	return db
}

func seedRoster(t *testing.T, repo *SQLiteRepository, tenantID, name string) *Roster {
	t.Helper()

	r := &Roster{
		TenantID:  tenantID,
		CreatedBy: tenantID,
		Name:      name,
		Blob:      resource.Blob{Ciphertext: "b64-ciphertext", Nonce: "b64-nonce"},
	}
	if err := repo.Create(context.Background(), r); err != nil {
		t.Fatalf("creating roster %s: %v", name, err)
	}
	return r
}

func TestRepository_CreateAndGet(t *testing.T) {
	repo := NewRepository(testDB(t))

	r := seedRoster(t, repo, "tenant-a", "Period 1")
	if r.ID == "" {
		t.Fatal("Create() should assign an ID")
	}

	got, err := repo.Get(context.Background(), "tenant-a", r.ID)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got.Name != "Period 1" {
		t.Errorf("name = %q, want Period 1", got.Name)
	}
	if got.Ciphertext != "b64-ciphertext" || got.Nonce != "b64-nonce" {
		t.Error("blob should round-trip unchanged")
	}
}

func TestRepository_TenantIsolation(t *testing.T) {
	repo := NewRepository(testDB(t))
	r := seedRoster(t, repo, "tenant-a", "Period 1")

	// Another tenant's roster and a missing roster are the same error.
	_, crossTenant := repo.Get(context.Background(), "tenant-b", r.ID)
	_, missing := repo.Get(context.Background(), "tenant-a", "no-such-id")

	if !errors.Is(crossTenant, resource.ErrNotFound) {
		t.Errorf("cross-tenant Get() error = %v, want ErrNotFound", crossTenant)
	}
	if !errors.Is(missing, resource.ErrNotFound) {
		t.Errorf("missing Get() error = %v, want ErrNotFound", missing)
	}
	if crossTenant.Error() != missing.Error() {
		t.Errorf("errors differ: %q vs %q", crossTenant.Error(), missing.Error())
	}

	// Same for update and delete.
	if _, err := repo.Update(context.Background(), "tenant-b", r.ID, Update{}); !errors.Is(err, resource.ErrNotFound) {
		t.Errorf("cross-tenant Update() error = %v, want ErrNotFound", err)
	}
	if err := repo.Delete(context.Background(), "tenant-b", r.ID); !errors.Is(err, resource.ErrNotFound) {
		t.Errorf("cross-tenant Delete() error = %v, want ErrNotFound", err)
	}

	// The roster is untouched.
	if _, err := repo.Get(context.Background(), "tenant-a", r.ID); err != nil {
		t.Errorf("owner Get() after cross-tenant attempts error = %v", err)
	}
}

func TestRepository_List(t *testing.T) {
	repo := NewRepository(testDB(t))

	seedRoster(t, repo, "tenant-a", "Period 1")
	seedRoster(t, repo, "tenant-a", "Period 2")
	seedRoster(t, repo, "tenant-b", "Other Class")

	rosters, err := repo.List(context.Background(), "tenant-a")
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(rosters) != 2 {
		t.Fatalf("List() returned %d rosters, want 2", len(rosters))
	}
	for _, r := range rosters {
		if r.TenantID != "tenant-a" {
			t.Errorf("List() leaked roster from tenant %q", r.TenantID)
		}
	}

	empty, err := repo.List(context.Background(), "tenant-c")
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if empty == nil || len(empty) != 0 {
		t.Errorf("List() for empty tenant = %v, want empty slice", empty)
	}
}

func TestRepository_PartialUpdate(t *testing.T) {
	repo := NewRepository(testDB(t))
	r := seedRoster(t, repo, "tenant-a", "Period 1")

	newName := "Period 1 (Fall)"
	got, err := repo.Update(context.Background(), "tenant-a", r.ID, Update{Name: &newName})
	if err != nil {
		t.Fatalf("Update() error = %v", err)
	}

	if got.Name != newName {
		t.Errorf("name = %q, want %q", got.Name, newName)
	}
	// Omitted fields keep their stored values.
	if got.Ciphertext != "b64-ciphertext" || got.Nonce != "b64-nonce" {
		t.Error("omitted blob fields should be unchanged")
	}
	if got.UpdatedAt.Before(r.UpdatedAt) {
		t.Error("updated_at should never move backwards")
	}
	if got.CreatedAt != r.CreatedAt {
		t.Error("created_at should be immutable")
	}

	newCipher := "new-ciphertext"
	newNonce := "new-nonce"
	got, err = repo.Update(context.Background(), "tenant-a", r.ID, Update{Ciphertext: &newCipher, Nonce: &newNonce})
	if err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	if got.Ciphertext != newCipher || got.Nonce != newNonce {
		t.Error("blob update should apply")
	}
	if got.Name != newName {
		t.Errorf("name should be unchanged, got %q", got.Name)
	}
}

func TestRepository_Delete(t *testing.T) {
	repo := NewRepository(testDB(t))
	r := seedRoster(t, repo, "tenant-a", "Period 1")

	if err := repo.Delete(context.Background(), "tenant-a", r.ID); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if _, err := repo.Get(context.Background(), "tenant-a", r.ID); !errors.Is(err, resource.ErrNotFound) {
		t.Errorf("Get() after delete error = %v, want ErrNotFound", err)
	}
	// Deleting again is the same not-found.
	if err := repo.Delete(context.Background(), "tenant-a", r.ID); !errors.Is(err, resource.ErrNotFound) {
		t.Errorf("second Delete() error = %v, want ErrNotFound", err)
	}
}

func TestRepository_ListOrder(t *testing.T) {
	repo := NewRepository(testDB(t))

	// Insert rows with identical timestamps; order falls back to ID.
	now := time.Now().UTC().Format(time.RFC3339)
	for _, id := range []string{"id-b", "id-a", "id-c"} {
		_, err := repo.db.ExecContext(context.Background(),
			`INSERT INTO rosters (id, tenant_id, created_by, name, ciphertext, nonce, created_at, updated_at)
			 VALUES (?, 'tenant-a', 'tenant-a', ?, 'c', 'n', ?, ?)`, id, id, now, now)
		if err != nil {
			t.Fatalf("inserting roster: %v", err)
		}
	}

	rosters, err := repo.List(context.Background(), "tenant-a")
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	want := []string{"id-a", "id-b", "id-c"}
	for i, r := range rosters {
		if r.ID != want[i] {
			t.Errorf("List()[%d].ID = %q, want %q", i, r.ID, want[i])
		}
	}
}
