package sqlite_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/fwojciec/locrag"
	"github.com/fwojciec/locrag/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDB_Open(t *testing.T) {
	t.Parallel()

	t.Run("in-memory database starts with no settings", func(t *testing.T) {
		t.Parallel()

		db := openDB(t, sqlite.MemoryPath)

		var n int
		require.NoError(t, db.QueryRowContext(context.Background(), `SELECT COUNT(*) FROM settings`).Scan(&n))
		assert.Zero(t, n)
	})

	t.Run("missing directory is an io error", func(t *testing.T) {
		t.Parallel()

		db := sqlite.NewDB(filepath.Join(t.TempDir(), "missing", "locrag.db"))
		err := db.Open()

		require.Error(t, err)
		assert.Equal(t, locrag.EIO, locrag.ErrorCode(err))
		assert.Equal(t, "open database", locrag.ErrorOp(err))
	})

	t.Run("file database uses write-ahead logging", func(t *testing.T) {
		t.Parallel()

		db := openDB(t, filepath.Join(t.TempDir(), "locrag.db"))

		var mode string
		require.NoError(t, db.QueryRowContext(context.Background(), `PRAGMA journal_mode`).Scan(&mode))
		assert.Equal(t, "wal", mode)
	})

	t.Run("close before open is a no-op", func(t *testing.T) {
		t.Parallel()

		assert.NoError(t, sqlite.NewDB(sqlite.MemoryPath).Close())
	})
}
