// Package testutil provides shared test doubles and fixtures for backend tests.
package testutil

import (
	"context"
	"testing"

	"amizades/internal/database"
	"amizades/internal/models"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewTestDB returns an in-memory SQLite database with the full schema applied.
// The pool is pinned to one connection: every connection to :memory: is a separate database.
func NewTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, database.ApplySchema(context.Background(), db))
	return db
}

// SeedProfiles inserts directory profiles for tests.
func SeedProfiles(t *testing.T, db *gorm.DB, profiles ...models.Profile) {
	t.Helper()
	if len(profiles) == 0 {
		return
	}
	require.NoError(t, db.Create(&profiles).Error)
}

// Profile builds a directory profile with predictable display fields.
func Profile(id, username string) models.Profile {
	return models.Profile{
		ID:        id,
		Username:  username,
		FullName:  username + " Tester",
		Email:     username + "@example.com",
		AvatarURL: "https://cdn.example.com/" + username + ".png",
	}
}
