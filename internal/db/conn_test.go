package db

import (
	"os"
	"path/filepath"
	"testing"
)

func TestRebind(t *testing.T) {
	query := `SELECT id FROM tasks WHERE user_id = ? AND date = ? LIMIT ?`

	pg := &Conn{Driver: DriverPostgres}
	got := pg.Rebind(query)
	want := `SELECT id FROM tasks WHERE user_id = $1 AND date = $2 LIMIT $3`
	if got != want {
		t.Fatalf("postgres rebind mismatch:\n got %s\nwant %s", got, want)
	}

	lite := &Conn{Driver: DriverSQLite}
	if lite.Rebind(query) != query {
		t.Fatalf("sqlite rebind should not change the query")
	}
}

func TestOpenRejectsUnknownDriver(t *testing.T) {
	if _, err := Open("mysql", "whatever"); err == nil {
		t.Fatal("expected error for unsupported driver")
	}
}

func TestRunMigrationsIsIdempotent(t *testing.T) {
	conn, err := OpenSQLite(filepath.Join(t.TempDir(), "nested", "test.db"))
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() {
		_ = conn.Close()
	})

	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "0001_widgets.sql"), []byte(`
		CREATE TABLE widgets (id TEXT PRIMARY KEY);
		INSERT INTO widgets (id) VALUES ('a');
	`), 0o644); err != nil {
		t.Fatalf("write migration: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "README.txt"), []byte("not sql"), 0o644); err != nil {
		t.Fatalf("write readme: %v", err)
	}

	for i := 0; i < 2; i++ {
		if err := RunMigrations(conn, dir); err != nil {
			t.Fatalf("run migrations (pass %d): %v", i+1, err)
		}
	}

	var count int
	if err := conn.QueryRow(`SELECT COUNT(1) FROM widgets`).Scan(&count); err != nil {
		t.Fatalf("count widgets: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected migration applied once, got %d rows", count)
	}
}
