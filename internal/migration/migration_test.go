package migration

import (
	"database/sql"
	"errors"
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

func files(m map[string]string) fstest.MapFS {
	out := fstest.MapFS{}
	for name, content := range m {
		out[name] = &fstest.MapFile{Data: []byte(content)}
	}
	return out
}

func tableExists(t *testing.T, db *sql.DB, name string) bool {
	t.Helper()
	var count int
	if err := db.QueryRow("SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name=?", name).Scan(&count); err != nil {
		t.Fatalf("query failed: %v", err)
	}
	return count == 1
}

func TestCurrentVersion(t *testing.T) {
	db := setupTestDB(t)
	runner := NewRunner(db, files(map[string]string{"001_test.sql": "CREATE TABLE test (id INTEGER);"}))

	version, err := runner.CurrentVersion()
	if err != nil {
		t.Fatalf("CurrentVersion failed: %v", err)
	}
	if version != 0 {
		t.Errorf("expected version 0, got %d", version)
	}

	if err := runner.SetVersion(5); err != nil {
		t.Fatalf("SetVersion failed: %v", err)
	}
	version, err = runner.CurrentVersion()
	if err != nil {
		t.Fatalf("CurrentVersion failed: %v", err)
	}
	if version != 5 {
		t.Errorf("expected version 5, got %d", version)
	}
}

func TestMigrationsSorted(t *testing.T) {
	runner := NewRunner(setupTestDB(t), files(map[string]string{
		"003_another.sql": "CREATE TABLE test2 (id INTEGER);",
		"001_init.sql":    "CREATE TABLE test1 (id INTEGER);",
		"002_update.sql":  "ALTER TABLE test1 ADD COLUMN name TEXT;",
		"README.md":       "ignored",
	}))

	migrations, err := runner.Migrations()
	if err != nil {
		t.Fatalf("Migrations failed: %v", err)
	}
	if len(migrations) != 3 {
		t.Fatalf("expected 3 migrations, got %d", len(migrations))
	}
	for i, name := range []string{"init", "update", "another"} {
		if migrations[i].Version != i+1 || migrations[i].Name != name {
			t.Errorf("migration %d = %d/%s, want %d/%s", i, migrations[i].Version, migrations[i].Name, i+1, name)
		}
	}
}

func TestApplyFromScratchAndIncremental(t *testing.T) {
	db := setupTestDB(t)
	fsys := files(map[string]string{
		"001_init.sql": "CREATE TABLE users (id INTEGER PRIMARY KEY, name TEXT);",
	})

	var logged []string
	runner := NewRunner(db, fsys, WithLogger(func(s string) { logged = append(logged, s) }))

	count, err := runner.Apply()
	if err != nil {
		t.Fatalf("Apply failed: %v", err)
	}
	if count != 1 {
		t.Errorf("expected 1 migration applied, got %d", count)
	}
	if len(logged) == 0 {
		t.Error("expected progress messages")
	}

	fsys["002_posts.sql"] = &fstest.MapFile{Data: []byte("CREATE TABLE posts (id INTEGER PRIMARY KEY, user_id INTEGER);")}
	count, err = runner.Apply()
	if err != nil {
		t.Fatalf("Apply (2nd) failed: %v", err)
	}
	if count != 1 {
		t.Errorf("expected 1 more migration applied, got %d", count)
	}

	version, _ := runner.CurrentVersion()
	if version != 2 {
		t.Errorf("expected version 2, got %d", version)
	}
	if !tableExists(t, db, "users") || !tableExists(t, db, "posts") {
		t.Error("expected both tables to exist")
	}

	count, err = runner.Apply()
	if err != nil || count != 0 {
		t.Errorf("re-running Apply = %d, %v; want 0, nil", count, err)
	}
}

func TestApplyRollsBackOnError(t *testing.T) {
	db := setupTestDB(t)
	runner := NewRunner(db, files(map[string]string{
		"001_init.sql": `
			CREATE TABLE users (id INTEGER PRIMARY KEY);
			THIS IS INVALID SQL;
		`,
	}))

	if _, err := runner.Apply(); err == nil {
		t.Fatal("Apply should have failed with invalid SQL")
	}

	version, err := runner.CurrentVersion()
	if err != nil {
		t.Fatalf("CurrentVersion failed: %v", err)
	}
	if version != 0 {
		t.Errorf("expected version 0 after failed migration, got %d", version)
	}
	if tableExists(t, db, "users") {
		t.Error("table should not exist after failed migration")
	}
}

func TestValidateVersionNewerDatabase(t *testing.T) {
	runner := NewRunner(setupTestDB(t), files(map[string]string{"001_init.sql": "CREATE TABLE users (id INTEGER PRIMARY KEY);"}))

	if err := runner.SetVersion(10); err != nil {
		t.Fatalf("SetVersion failed: %v", err)
	}
	if err := runner.ValidateVersion(); !errors.Is(err, ErrSchemaTooNew) {
		t.Fatalf("ValidateVersion() = %v, want ErrSchemaTooNew", err)
	}
	if _, err := runner.Apply(); !errors.Is(err, ErrSchemaTooNew) {
		t.Fatalf("Apply() = %v, want ErrSchemaTooNew", err)
	}
}

func TestLatestVersion(t *testing.T) {
	runner := NewRunner(setupTestDB(t), files(map[string]string{
		"001_init.sql":   "CREATE TABLE users (id INTEGER);",
		"003_posts.sql":  "CREATE TABLE posts (id INTEGER);",
		"002_update.sql": "ALTER TABLE users ADD COLUMN name TEXT;",
	}))

	latest, err := runner.LatestVersion()
	if err != nil {
		t.Fatalf("LatestVersion failed: %v", err)
	}
	if latest != 3 {
		t.Errorf("expected latest version 3, got %d", latest)
	}
}

func TestMigrationFilenameValidation(t *testing.T) {
	tests := []struct {
		name    string
		files   map[string]string
		wantErr string
	}{
		{"missing underscore", map[string]string{"001init.sql": "SELECT 1;"}, "invalid migration filename"},
		{"zero version", map[string]string{"000_init.sql": "SELECT 1;"}, "version must be at least 1"},
		{"non numeric", map[string]string{"abc_init.sql": "SELECT 1;"}, "invalid version number"},
		{"duplicate", map[string]string{"001_init.sql": "SELECT 1;", "001_other.sql": "SELECT 1;"}, "duplicate migration version"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewRunner(setupTestDB(t), files(tt.files)).Migrations()
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Migrations() error = %v, want containing %q", err, tt.wantErr)
			}
		})
	}
}

func TestPlaceholders(t *testing.T) {
	if QuestionPlaceholder(3) != "?" {
		t.Error("QuestionPlaceholder should always be ?")
	}
	if DollarPlaceholder(3) != "$3" {
		t.Errorf("DollarPlaceholder(3) = %s", DollarPlaceholder(3))
	}
}
