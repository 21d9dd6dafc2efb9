package database

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/studyaid/core/internal/config"
	"github.com/studyaid/core/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConnectNotConfigured(t *testing.T) {
	cfg := &config.AppConfig{}

	db, err := Connect(cfg, true)
	assert.Nil(t, db)
	assert.ErrorIs(t, err, config.ErrDatabaseNotConfigured)
}

func TestConnectSQLiteCreatesPostsTable(t *testing.T) {
	cfg := &config.AppConfig{Database: config.DatabaseRuntimeConfig{
		Driver: config.DriverSQLite,
		Name:   filepath.Join(t.TempDir(), "study.db"),
	}}

	db, err := Connect(cfg, true)
	require.NoError(t, err)
	t.Cleanup(func() { _ = Close(db) })

	require.NoError(t, Ping(context.Background(), db))
	assert.True(t, db.Migrator().HasTable("posts"))
	assert.True(t, db.Migrator().HasColumn(&models.StudyProjectModel{}, "studyMaterial"))
}
