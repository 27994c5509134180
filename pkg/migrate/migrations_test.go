package migrate

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestValidateDirAcceptsRepositoryMigrations(t *testing.T) {
	count, err := ValidateDir("migrations")
	if err != nil {
		t.Fatalf("validate migrations: %v", err)
	}
	if count != 4 {
		t.Fatalf("expected 4 migrations, got %d", count)
	}
}

func TestCartSlotMigrationMatchesDurableLayout(t *testing.T) {
	matches, err := filepath.Glob(filepath.Join("migrations", "*_create_cart_slots_table.sql"))
	if err != nil || len(matches) != 1 {
		t.Fatalf("expected one cart slot migration, got %v (err=%v)", matches, err)
	}
	data, err := os.ReadFile(matches[0])
	if err != nil {
		t.Fatalf("read migration: %v", err)
	}
	for _, sub := range []string{"slot_key TEXT PRIMARY KEY", "payload TEXT NOT NULL", "schema_version INTEGER NOT NULL"} {
		if !strings.Contains(string(data), sub) {
			t.Errorf("missing expected column %q", sub)
		}
	}
}

func TestValidateDirRejectsBadFiles(t *testing.T) {
	dir := t.TempDir()
	if _, err := ValidateDir(dir); err == nil {
		t.Fatalf("empty dir should fail")
	}

	if err := os.WriteFile(filepath.Join(dir, "bad-name.sql"), []byte("-- +goose Up\n-- +goose Down\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := ValidateDir(dir); err == nil {
		t.Fatalf("invalid filename should fail")
	}

	dir = t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "20260101000000_no_down.sql"), []byte("-- +goose Up\nSELECT 1;\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := ValidateDir(dir); err == nil {
		t.Fatalf("missing down marker should fail")
	}
}
