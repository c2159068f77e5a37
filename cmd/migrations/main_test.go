package main

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var migrationsDir = filepath.Join("..", "..", "internal", "adapters", "repository", "postgres", "migrations")

func TestMigrationFilePath(t *testing.T) {
	name, err := migrationFilePath(migrationsDir, "device_settings.up")
	require.NoError(t, err)
	assert.Equal(t, "000001_device_settings.up.sql", name)

	name, err = migrationFilePath(migrationsDir, "device_settings.down")
	require.NoError(t, err)
	assert.Equal(t, "000001_device_settings.down.sql", name)

	_, err = migrationFilePath(migrationsDir, "polls.up")
	assert.EqualError(t, err, "migration file not found")

	_, err = migrationFilePath(t.TempDir()+"/missing", "device_settings.up")
	assert.Error(t, err)
}

func TestMigrationFileContent(t *testing.T) {
	content, err := migrationFileContent(migrationsDir, "device_settings.up")
	require.NoError(t, err)
	assert.Contains(t, string(content), "CREATE TABLE IF NOT EXISTS device_settings")
}
