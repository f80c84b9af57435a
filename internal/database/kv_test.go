package database

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := NewDB(DriverSQLite, filepath.Join(t.TempDir(), "nested", "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestKV(t *testing.T) {
	ctx := context.Background()
	kv := NewKV(newTestDB(t))

	t.Run("Absent", func(t *testing.T) {
		data, ok, err := kv.Get(ctx, "savedRecipes")
		require.NoError(t, err)
		assert.False(t, ok)
		assert.Nil(t, data)
	})

	t.Run("PutThenGet", func(t *testing.T) {
		require.NoError(t, kv.Put(ctx, "savedRecipes", []byte(`[{"id":1}]`)))

		data, ok, err := kv.Get(ctx, "savedRecipes")
		require.NoError(t, err)
		assert.True(t, ok)
		assert.JSONEq(t, `[{"id":1}]`, string(data))
	})

	t.Run("PutReplaces", func(t *testing.T) {
		require.NoError(t, kv.Put(ctx, "mealPlans", []byte(`{"a":1}`)))
		require.NoError(t, kv.Put(ctx, "mealPlans", []byte(`{}`)))

		data, ok, err := kv.Get(ctx, "mealPlans")
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, `{}`, string(data))

		var rows int
		require.NoError(t, kv.db.SQL.Get(&rows, `SELECT COUNT(*) FROM collections WHERE name = 'mealPlans'`))
		assert.Equal(t, 1, rows)
	})
}

func TestNewDB(t *testing.T) {
	t.Run("UnsupportedDriver", func(t *testing.T) {
		_, err := NewDB("mysql", "whatever")
		assert.Error(t, err)
	})

	t.Run("MigrationsAreIdempotent", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "twice.db")
		first, err := NewDB(DriverSQLite, path)
		require.NoError(t, err)
		require.NoError(t, first.Close())

		second, err := NewDB(DriverSQLite, path)
		require.NoError(t, err)
		defer second.Close()
	})
}

func TestMigrationURL(t *testing.T) {
	assert.Equal(t, "sqlite://data/app.db", migrationURL(DriverSQLite, "data/app.db"))
	assert.Equal(t, "postgres://u:p@localhost/db", migrationURL(DriverPostgres, "postgres://u:p@localhost/db"))
	assert.Equal(t, "postgresql://localhost/db", migrationURL(DriverPostgres, "postgresql://localhost/db"))
}
