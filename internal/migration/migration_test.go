package migration

import (
	"database/sql"
	"path/filepath"
	"strings"
	"testing"
	"testing/fstest"

	_ "modernc.org/sqlite"
)

func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := sql.Open("sqlite", filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func migrationFS(files map[string]string) fstest.MapFS {
	m := fstest.MapFS{}
	for name, content := range files {
		m[name] = &fstest.MapFile{Data: []byte(content)}
	}
	return m
}

func tableExists(t *testing.T, db *sql.DB, name string) bool {
	t.Helper()
	var count int
	err := db.QueryRow(
		"SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name=?", name).Scan(&count)
	if err != nil {
		t.Fatalf("failed to query sqlite_master: %v", err)
	}
	return count == 1
}

func TestApplyFromScratch(t *testing.T) {
	db := setupTestDB(t)
	runner := NewRunner(db, migrationFS(map[string]string{
		"001_init.sql":  "CREATE TABLE habits (id TEXT PRIMARY KEY, name TEXT);",
		"002_users.sql": "CREATE TABLE user_settings (user_id INTEGER PRIMARY KEY);",
	}))

	version, err := runner.CurrentVersion()
	if err != nil {
		t.Fatalf("CurrentVersion failed: %v", err)
	}
	if version != 0 {
		t.Errorf("fresh database reports version %d, want 0", version)
	}

	applied, err := runner.Apply(nil)
	if err != nil {
		t.Fatalf("Apply failed: %v", err)
	}
	if applied != 2 {
		t.Errorf("applied %d migrations, want 2", applied)
	}

	version, err = runner.CurrentVersion()
	if err != nil {
		t.Fatalf("CurrentVersion failed: %v", err)
	}
	if version != 2 {
		t.Errorf("got version %d after apply, want 2", version)
	}
	if !tableExists(t, db, "habits") || !tableExists(t, db, "user_settings") {
		t.Error("migrated tables missing")
	}
}

func TestApplyIsIdempotent(t *testing.T) {
	db := setupTestDB(t)
	runner := NewRunner(db, migrationFS(map[string]string{
		"001_init.sql": "CREATE TABLE habits (id TEXT PRIMARY KEY);",
	}))

	if _, err := runner.Apply(nil); err != nil {
		t.Fatalf("first Apply failed: %v", err)
	}
	applied, err := runner.Apply(nil)
	if err != nil {
		t.Fatalf("second Apply failed: %v", err)
	}
	if applied != 0 {
		t.Errorf("second Apply ran %d migrations, want 0", applied)
	}
}

func TestApplyRollsBackOnError(t *testing.T) {
	db := setupTestDB(t)
	runner := NewRunner(db, migrationFS(map[string]string{
		"001_init.sql": `
			CREATE TABLE habits (id TEXT PRIMARY KEY);
			THIS IS NOT SQL;
		`,
	}))

	if _, err := runner.Apply(nil); err == nil {
		t.Fatal("Apply should have failed on invalid SQL")
	}

	version, err := runner.CurrentVersion()
	if err != nil {
		t.Fatalf("CurrentVersion failed: %v", err)
	}
	if version != 0 {
		t.Errorf("version advanced to %d despite failure, want 0", version)
	}
	if tableExists(t, db, "habits") {
		t.Error("table survived a rolled-back migration")
	}
}

func TestApplyLogsEachMigration(t *testing.T) {
	db := setupTestDB(t)
	runner := NewRunner(db, migrationFS(map[string]string{
		"001_init.sql": "CREATE TABLE habits (id TEXT PRIMARY KEY);",
	}))

	var logged []string
	if _, err := runner.Apply(func(msg string) { logged = append(logged, msg) }); err != nil {
		t.Fatalf("Apply failed: %v", err)
	}
	if len(logged) != 1 || !strings.Contains(logged[0], "init") {
		t.Errorf("unexpected log output %v", logged)
	}
}

func TestInvalidFilenames(t *testing.T) {
	tests := []struct {
		name    string
		files   map[string]string
		wantErr string
	}{
		{
			name:    "missing underscore",
			files:   map[string]string{"001init.sql": "CREATE TABLE t (id INTEGER);"},
			wantErr: "invalid migration filename",
		},
		{
			name:    "zero version",
			files:   map[string]string{"000_init.sql": "CREATE TABLE t (id INTEGER);"},
			wantErr: "invalid version",
		},
		{
			name: "duplicate version",
			files: map[string]string{
				"001_init.sql":  "CREATE TABLE a (id INTEGER);",
				"001_other.sql": "CREATE TABLE b (id INTEGER);",
			},
			wantErr: "duplicate migration version",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db := setupTestDB(t)
			runner := NewRunner(db, migrationFS(tt.files))

			_, err := runner.Apply(nil)
			if err == nil {
				t.Fatal("Apply should have failed")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("got error %q, want it to contain %q", err, tt.wantErr)
			}
		})
	}
}

func TestValidateVersion(t *testing.T) {
	db := setupTestDB(t)
	fsys := migrationFS(map[string]string{
		"001_init.sql": "CREATE TABLE habits (id TEXT PRIMARY KEY);",
	})
	runner := NewRunner(db, fsys)

	// Behind: fresh database against one known migration.
	if err := runner.ValidateVersion(); err == nil {
		t.Error("ValidateVersion should fail for a database behind the latest version")
	}

	if _, err := runner.Apply(nil); err != nil {
		t.Fatalf("Apply failed: %v", err)
	}
	if err := runner.ValidateVersion(); err != nil {
		t.Errorf("ValidateVersion failed on an up-to-date database: %v", err)
	}

	// Ahead: the database was migrated by a newer binary.
	if _, err := db.Exec("UPDATE schema_version SET version = 10"); err != nil {
		t.Fatal(err)
	}
	if err := runner.ValidateVersion(); err == nil {
		t.Error("ValidateVersion should fail for a database ahead of the latest version")
	}
	if _, err := runner.Apply(nil); err == nil {
		t.Error("Apply should refuse a database ahead of the latest version")
	}
}
