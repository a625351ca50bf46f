package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/commune-qc/internal/config"
)

func TestOpenSQLite(t *testing.T) {
	s, err := Open(context.Background(), config.StoreConfig{
		Driver:      "sqlite",
		DatabaseURL: filepath.Join(t.TempDir(), "open.db"),
	})
	require.NoError(t, err)
	defer s.Close() //nolint:errcheck

	assert.IsType(t, &SQLiteStore{}, s)
}

func TestOpenDefaultsToSQLite(t *testing.T) {
	s, err := Open(context.Background(), config.StoreConfig{
		DatabaseURL: filepath.Join(t.TempDir(), "default.db"),
	})
	require.NoError(t, err)
	defer s.Close() //nolint:errcheck

	assert.IsType(t, &SQLiteStore{}, s)
}

func TestOpenPostgresRequiresURL(t *testing.T) {
	_, err := Open(context.Background(), config.StoreConfig{Driver: "postgres"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "database_url")
}

func TestOpenUnknownDriver(t *testing.T) {
	_, err := Open(context.Background(), config.StoreConfig{Driver: "mongodb"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown driver")
}
