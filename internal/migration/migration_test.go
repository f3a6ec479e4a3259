package migration

import (
	"context"
	"database/sql"
	"io/fs"
	"path/filepath"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"

	"github.com/julianstephens/habitgrid/migrations"
)

func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func mapFS(files map[string]string) fstest.MapFS {
	out := fstest.MapFS{}
	for name, content := range files {
		out[name] = &fstest.MapFile{Data: []byte(content)}
	}
	return out
}

func TestGetCurrentVersion(t *testing.T) {
	ctx := context.Background()
	runner := NewRunner(setupTestDB(t), mapFS(map[string]string{
		"001_test.sql": "CREATE TABLE test (id INTEGER);",
	}), DialectSQLite)

	version, err := runner.GetCurrentVersion(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, version)

	require.NoError(t, runner.SetVersion(ctx, 5))

	version, err = runner.GetCurrentVersion(ctx)
	require.NoError(t, err)
	assert.Equal(t, 5, version)

	require.NoError(t, runner.SetVersion(ctx, 6))
	version, err = runner.GetCurrentVersion(ctx)
	require.NoError(t, err)
	assert.Equal(t, 6, version, "SetVersion replaces the previous row")
}

func TestReadMigrationFiles(t *testing.T) {
	runner := NewRunner(setupTestDB(t), mapFS(map[string]string{
		"001_init.sql":    "CREATE TABLE test1 (id INTEGER);",
		"002_update.sql":  "ALTER TABLE test1 ADD COLUMN name TEXT;",
		"003_another.sql": "CREATE TABLE test2 (id INTEGER);",
		"README.md":       "ignored",
	}), DialectSQLite)

	got, err := runner.ReadMigrationFiles()
	require.NoError(t, err)
	require.Len(t, got, 3)

	assert.Equal(t, 1, got[0].Version)
	assert.Equal(t, "init", got[0].Name)
	assert.Equal(t, 2, got[1].Version)
	assert.Equal(t, "update", got[1].Name)
	assert.Equal(t, 3, got[2].Version)
	assert.Equal(t, "another", got[2].Name)
}

func TestApplyMigrationsFromScratch(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	runner := NewRunner(db, mapFS(map[string]string{
		"001_init.sql":  `CREATE TABLE users (id INTEGER PRIMARY KEY, name TEXT);`,
		"002_posts.sql": `CREATE TABLE posts (id INTEGER PRIMARY KEY, user_id INTEGER, content TEXT);`,
	}), DialectSQLite)

	var logged []string
	count, err := runner.ApplyMigrations(ctx, func(s string) { logged = append(logged, s) })
	require.NoError(t, err)
	assert.Equal(t, 2, count)
	assert.NotEmpty(t, logged)

	version, err := runner.GetCurrentVersion(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, version)

	for _, table := range []string{"users", "posts"} {
		var n int
		require.NoError(t, db.QueryRow("SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name=?", table).Scan(&n))
		assert.Equal(t, 1, n, "table %s should exist", table)
	}
}

func TestApplyMigrationsIncremental(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	files := mapFS(map[string]string{
		"001_init.sql": `CREATE TABLE users (id INTEGER PRIMARY KEY, name TEXT);`,
	})
	runner := NewRunner(db, files, DialectSQLite)

	count, err := runner.ApplyMigrations(ctx, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	files["002_posts.sql"] = &fstest.MapFile{Data: []byte(`CREATE TABLE posts (id INTEGER PRIMARY KEY, user_id INTEGER);`)}

	count, err = runner.ApplyMigrations(ctx, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	version, err := runner.GetCurrentVersion(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, version)
}

func TestApplyMigrationsNoOp(t *testing.T) {
	ctx := context.Background()
	runner := NewRunner(setupTestDB(t), mapFS(map[string]string{
		"001_init.sql": `CREATE TABLE users (id INTEGER PRIMARY KEY);`,
	}), DialectSQLite)

	_, err := runner.ApplyMigrations(ctx, nil)
	require.NoError(t, err)

	count, err := runner.ApplyMigrations(ctx, nil)
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestMigrationRollbackOnError(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	runner := NewRunner(db, mapFS(map[string]string{
		"001_init.sql": `
			CREATE TABLE users (id INTEGER PRIMARY KEY);
			THIS IS INVALID SQL;
		`,
	}), DialectSQLite)

	_, err := runner.ApplyMigrations(ctx, nil)
	require.Error(t, err)

	version, err := runner.GetCurrentVersion(ctx)
	require.NoError(t, err)
	assert.Zero(t, version)

	var n int
	require.NoError(t, db.QueryRow("SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name='users'").Scan(&n))
	assert.Zero(t, n, "table should not exist after failed migration")
}

func TestValidateVersion(t *testing.T) {
	ctx := context.Background()
	runner := NewRunner(setupTestDB(t), mapFS(map[string]string{
		"001_init.sql": `CREATE TABLE users (id INTEGER PRIMARY KEY);`,
	}), DialectSQLite)

	err := runner.ValidateVersion(ctx)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "is behind")

	_, err = runner.ApplyMigrations(ctx, nil)
	require.NoError(t, err)
	require.NoError(t, runner.ValidateVersion(ctx))

	require.NoError(t, runner.SetVersion(ctx, 10))
	require.Error(t, runner.ValidateVersion(ctx))

	_, err = runner.ApplyMigrations(ctx, nil)
	require.Error(t, err, "newer database version must be rejected")
}

func TestGetLatestVersion(t *testing.T) {
	runner := NewRunner(setupTestDB(t), mapFS(map[string]string{
		"001_init.sql":   `CREATE TABLE users (id INTEGER);`,
		"003_posts.sql":  `CREATE TABLE posts (id INTEGER);`,
		"002_update.sql": `ALTER TABLE users ADD COLUMN name TEXT;`,
	}), DialectSQLite)

	latest, err := runner.GetLatestVersion()
	require.NoError(t, err)
	assert.Equal(t, 3, latest)
}

func TestReadMigrationFilesRejectsBadNames(t *testing.T) {
	tests := []struct {
		name    string
		files   map[string]string
		wantErr string
	}{
		{
			name:    "missing underscore",
			files:   map[string]string{"001init.sql": `CREATE TABLE users (id INTEGER);`},
			wantErr: "invalid migration filename format",
		},
		{
			name:    "zero version",
			files:   map[string]string{"000_init.sql": `CREATE TABLE users (id INTEGER);`},
			wantErr: "version must be at least 1",
		},
		{
			name:    "non numeric version",
			files:   map[string]string{"abc_init.sql": `CREATE TABLE users (id INTEGER);`},
			wantErr: "invalid version number",
		},
		{
			name: "duplicate version",
			files: map[string]string{
				"001_init.sql":  `CREATE TABLE users (id INTEGER);`,
				"001_other.sql": `CREATE TABLE posts (id INTEGER);`,
			},
			wantErr: "duplicate migration version",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			runner := NewRunner(setupTestDB(t), mapFS(tt.files), DialectSQLite)
			_, err := runner.ReadMigrationFiles()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestEmbeddedSQLiteMigrations(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)

	sub, err := fs.Sub(migrations.FS, "sqlite")
	require.NoError(t, err)

	runner := NewRunner(db, sub, DialectSQLite)
	count, err := runner.ApplyMigrations(ctx, nil)
	require.NoError(t, err)
	assert.Positive(t, count)
	require.NoError(t, runner.ValidateVersion(ctx))

	for _, table := range []string{"habits", "habit_entries"} {
		var n int
		require.NoError(t, db.QueryRow("SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name=?", table).Scan(&n))
		assert.Equal(t, 1, n, "table %s should exist", table)
	}
}

func TestEmbeddedPostgresMigrationsParse(t *testing.T) {
	sub, err := fs.Sub(migrations.FS, "postgres")
	require.NoError(t, err)

	runner := NewRunner(nil, sub, DialectPostgres)
	got, err := runner.ReadMigrationFiles()
	require.NoError(t, err)
	require.NotEmpty(t, got)
	assert.Equal(t, 1, got[0].Version)
}
