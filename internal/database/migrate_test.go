package database

import (
	"context"
	"testing"
	"testing/fstest"

	"pulse/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sqliteMigrations() fstest.MapFS {
	return fstest.MapFS{
		"m/000001_widgets.up.sql":       {Data: []byte("CREATE TABLE widgets (id INTEGER PRIMARY KEY, name TEXT NOT NULL);")},
		"m/000001_widgets.down.sql":     {Data: []byte("DROP TABLE widgets;")},
		"m/000002_widget_name.up.sql":   {Data: []byte("CREATE INDEX idx_widgets_name ON widgets (name);")},
		"m/000002_widget_name.down.sql": {Data: []byte("DROP INDEX idx_widgets_name;")},
		"m/README.md":                   {Data: []byte("not a migration")},
	}
}

func TestEmbeddedMigrations(t *testing.T) {
	migrations, err := Migrations()
	require.NoError(t, err)
	require.GreaterOrEqual(t, len(migrations), 2)

	assert.Equal(t, 1, migrations[0].Version)
	assert.Equal(t, "init_schema", migrations[0].Name)
	assert.Contains(t, migrations[0].UpScript, "CREATE TABLE")
	assert.Contains(t, migrations[0].DownScript, "DROP TABLE")
	for i := 1; i < len(migrations); i++ {
		assert.Less(t, migrations[i-1].Version, migrations[i].Version)
	}
}

func TestLoadMigrations(t *testing.T) {
	migrations, err := LoadMigrations(sqliteMigrations(), "m")
	require.NoError(t, err)
	require.Len(t, migrations, 2)
	assert.Equal(t, "000001_widgets", migrations[0].String())
	assert.Equal(t, "000002_widget_name", migrations[1].String())
}

func TestLoadMigrations_Errors(t *testing.T) {
	t.Run("missing down script", func(t *testing.T) {
		fsys := fstest.MapFS{
			"m/000001_a.up.sql": {Data: []byte("SELECT 1;")},
		}
		_, err := LoadMigrations(fsys, "m")
		assert.ErrorContains(t, err, "down migration")
	})

	t.Run("duplicate version", func(t *testing.T) {
		fsys := fstest.MapFS{
			"m/000001_a.up.sql":   {Data: []byte("SELECT 1;")},
			"m/000001_a.down.sql": {Data: []byte("SELECT 1;")},
			"m/1_b.up.sql":        {Data: []byte("SELECT 1;")},
			"m/1_b.down.sql":      {Data: []byte("SELECT 1;")},
		}
		_, err := LoadMigrations(fsys, "m")
		assert.ErrorContains(t, err, "duplicate migration version 1")
	})

	t.Run("invalid names are skipped", func(t *testing.T) {
		fsys := fstest.MapFS{
			"m/init.up.sql":    {Data: []byte("SELECT 1;")},
			"m/x_init.up.sql":  {Data: []byte("SELECT 1;")},
			"m/000003_.up.sql": {Data: []byte("SELECT 1;")},
		}
		migrations, err := LoadMigrations(fsys, "m")
		require.NoError(t, err)
		assert.Empty(t, migrations)
	})
}

func TestMigrator_UpDown(t *testing.T) {
	ctx := context.Background()
	db := openMemory(t)
	migrations, err := LoadMigrations(sqliteMigrations(), "m")
	require.NoError(t, err)
	m := NewMigrator(db, migrations)

	require.NoError(t, m.Up(ctx))
	applied, err := m.Applied(ctx)
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2}, applied)
	assert.True(t, db.Migrator().HasTable("widgets"))

	// A second run is a no-op.
	require.NoError(t, m.Up(ctx))
	pending, err := m.Pending(ctx)
	require.NoError(t, err)
	assert.Empty(t, pending)

	rolled, err := m.Down(ctx)
	require.NoError(t, err)
	assert.True(t, rolled)
	applied, err = m.Applied(ctx)
	require.NoError(t, err)
	assert.Equal(t, []int{1}, applied)

	rolled, err = m.Down(ctx)
	require.NoError(t, err)
	assert.True(t, rolled)
	assert.False(t, db.Migrator().HasTable("widgets"))

	rolled, err = m.Down(ctx)
	require.NoError(t, err)
	assert.False(t, rolled)
}

func TestMigrator_FailedMigrationIsNotRecorded(t *testing.T) {
	ctx := context.Background()
	db := openMemory(t)
	m := NewMigrator(db, []Migration{
		{Version: 1, Name: "broken", UpScript: "CREATE TABLEE nope (id INTEGER);", DownScript: "SELECT 1;"},
	})

	err := m.Up(ctx)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "000001_broken")

	applied, err := m.Applied(ctx)
	require.NoError(t, err)
	assert.Empty(t, applied)
}

func TestMigrator_UnknownAppliedVersion(t *testing.T) {
	ctx := context.Background()
	db := openMemory(t)
	m := NewMigrator(db, nil)
	require.NoError(t, m.ensureLedger(ctx))
	require.NoError(t, db.Create(&SchemaMigration{Version: 42, Name: "ghost"}).Error)

	_, err := m.Pending(ctx)
	assert.ErrorContains(t, err, "000042")
}

func TestSchemaPolicy(t *testing.T) {
	tests := []struct {
		name    string
		cfg     config.Config
		wantSQL bool
		wantErr bool
	}{
		{name: "hybrid postgres", cfg: config.Config{DBDriver: "postgres", DBSchemaMode: "hybrid"}, wantSQL: true},
		{name: "hybrid sqlite", cfg: config.Config{DBDriver: "sqlite", DBSchemaMode: "hybrid"}, wantSQL: false},
		{name: "empty mode defaults to hybrid", cfg: config.Config{DBDriver: "postgres"}, wantSQL: true},
		{name: "sql postgres", cfg: config.Config{DBDriver: "postgres", DBSchemaMode: "sql"}, wantSQL: true},
		{name: "sql sqlite refused", cfg: config.Config{DBDriver: "sqlite", DBSchemaMode: "sql"}, wantErr: true},
		{name: "auto development", cfg: config.Config{DBDriver: "postgres", DBSchemaMode: "auto", Env: "development"}, wantSQL: false},
		{name: "auto production refused", cfg: config.Config{DBDriver: "postgres", DBSchemaMode: "auto", Env: "production"}, wantErr: true},
		{name: "unknown mode", cfg: config.Config{DBDriver: "postgres", DBSchemaMode: "yolo"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			useSQL, err := schemaPolicy(&tt.cfg)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantSQL, useSQL)
		})
	}
}

func TestApplySchema_SQLiteAutoMigrates(t *testing.T) {
	db := openMemory(t)
	cfg := &config.Config{DBDriver: "sqlite", DBSchemaMode: "hybrid", Env: "test"}

	require.NoError(t, ApplySchema(context.Background(), db, cfg))
	for _, table := range []string{"users", "posts", "comments", "likes", "follows"} {
		assert.True(t, db.Migrator().HasTable(table), table)
	}
}
