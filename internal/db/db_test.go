package db

import (
	"path/filepath"
	"testing"
	"testing/fstest"

	"github.com/robalobadob/runner/assets"
)

func TestMigrateEmbeddedIsIdempotent(t *testing.T) {
	conn, err := Open(MemoryDSN)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { conn.Close() })

	for i := 0; i < 2; i++ {
		if err := Migrate(conn, assets.Migrations()); err != nil {
			t.Fatalf("Migrate pass %d: %v", i, err)
		}
	}

	var n int
	if err := conn.QueryRow(`SELECT COUNT(*) FROM _migrations`).Scan(&n); err != nil {
		t.Fatalf("count migrations: %v", err)
	}
	if n != 1 {
		t.Fatalf("expected 1 recorded migration, got %d", n)
	}
	for _, table := range []string{"users", "games", "leaderboard"} {
		var name string
		err := conn.QueryRow(`SELECT name FROM sqlite_master WHERE type='table' AND name=?`, table).Scan(&name)
		if err != nil {
			t.Fatalf("expected table %s: %v", table, err)
		}
	}
}

func TestMigrateOrderAndFailure(t *testing.T) {
	conn, err := Open(MemoryDSN)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { conn.Close() })

	fsys := fstest.MapFS{
		"002_seed.sql":  {Data: []byte(`INSERT INTO things(v) VALUES (1);`)},
		"001_table.sql": {Data: []byte(`CREATE TABLE things (v INTEGER);`)},
		"notes.txt":     {Data: []byte(`ignored`)},
	}
	if err := Migrate(conn, fsys); err != nil {
		t.Fatalf("Migrate: %v", err)
	}
	var v int
	if err := conn.QueryRow(`SELECT v FROM things`).Scan(&v); err != nil || v != 1 {
		t.Fatalf("expected seeded row, got %d (%v)", v, err)
	}

	bad := fstest.MapFS{"003_bad.sql": {Data: []byte(`NOT SQL AT ALL;`)}}
	if err := Migrate(conn, bad); err == nil {
		t.Fatalf("expected error for invalid migration")
	}
	var recorded int
	_ = conn.QueryRow(`SELECT COUNT(*) FROM _migrations WHERE name='003_bad.sql'`).Scan(&recorded)
	if recorded != 0 {
		t.Fatalf("failed migration must not be recorded")
	}
}

func TestOpenCreatesParentDir(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "runner.db")
	conn, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer conn.Close()
	if err := conn.Ping(); err != nil {
		t.Fatalf("Ping: %v", err)
	}
}
