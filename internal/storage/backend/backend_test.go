package backend

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmynk/myfestival/internal/config"
	"github.com/mmynk/myfestival/internal/storage/sqlite"
)

func TestOpen_SQLite(t *testing.T) {
	store, err := Open(context.Background(), config.Storage{
		Driver: config.DriverSQLite,
		Path:   filepath.Join(t.TempDir(), "nested", "festival.db"),
	})
	require.NoError(t, err)
	defer store.Close()

	assert.IsType(t, &sqlite.SQLiteStore{}, store)
}

func TestOpen_UnknownDriver(t *testing.T) {
	_, err := Open(context.Background(), config.Storage{Driver: "mysql"})
	assert.Error(t, err)
}
