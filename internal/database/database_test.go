package database

import (
	"testing"

	"amizades/internal/config"
	"amizades/internal/middleware"
	"amizades/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: NewGormLogger(middleware.Logger).LogMode(logger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	return db
}

func TestApplySchema_CreatesTablesAndIsIdempotent(t *testing.T) {
	db := openTestDB(t)

	require.NoError(t, ApplySchema(t.Context(), db))
	require.NoError(t, ApplySchema(t.Context(), db))

	for _, table := range []string{"profiles", "friend_requests", "friendships", "migration_logs"} {
		assert.True(t, db.Migrator().HasTable(table), table)
	}
	assert.True(t, db.Migrator().HasIndex(&models.FriendRequest{}, models.PendingPairIndex))

	status, err := GetSchemaStatus(t.Context(), db)
	require.NoError(t, err)
	assert.Equal(t, "sqlite", status.Dialect)
	assert.Empty(t, status.PendingMigrations)
	assert.Equal(t, []int{4}, status.AppliedVersions)
}

func TestApplySchema_PendingPairIndexAllowsHistory(t *testing.T) {
	db := openTestDB(t)
	require.NoError(t, ApplySchema(t.Context(), db))

	require.NoError(t, db.Create(&models.FriendRequest{SenderID: "a", ReceiverID: "b"}).Error)
	err := db.Create(&models.FriendRequest{SenderID: "b", ReceiverID: "a"}).Error
	require.Error(t, err, "reverse direction shares the canonical pair")

	require.NoError(t, db.Model(&models.FriendRequest{}).
		Where("sender_id = ? AND receiver_id = ?", "a", "b").
		Update("status", models.RequestStatusAccepted).Error)
	assert.NoError(t, db.Create(&models.FriendRequest{SenderID: "b", ReceiverID: "a"}).Error)
}

func TestMigration_AppliesTo(t *testing.T) {
	all := GetMigrations()
	require.GreaterOrEqual(t, len(all), 4)

	pgOnly := all[0]
	assert.Equal(t, 1, pgOnly.Version)
	assert.True(t, pgOnly.AppliesTo("postgres"))
	assert.False(t, pgOnly.AppliesTo("sqlite"))
	assert.Equal(t, "000001_friendships_canonical_order", pgOnly.String())

	last := all[3]
	assert.Equal(t, 4, last.Version)
	assert.True(t, last.AppliesTo("sqlite"))
}

func TestValidateAppliedVersions(t *testing.T) {
	assert.NoError(t, validateAppliedVersions([]int{1, 2}, migrations))
	err := validateAppliedVersions([]int{1, 42}, migrations)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "000042")
}

func TestDSN(t *testing.T) {
	cfg := &config.Config{DBHost: "db", DBPort: "5432", DBUser: "u", DBPassword: "p", DBName: "n"}
	assert.Equal(t, "host=db port=5432 user=u password=p dbname=n sslmode=disable", DSN(cfg))
	cfg.DBSSLMode = "require"
	assert.Contains(t, DSN(cfg), "sslmode=require")
}

func TestConfigurePool(t *testing.T) {
	db := openTestDB(t)
	require.NoError(t, configurePool(db))
	sqlDB, err := db.DB()
	require.NoError(t, err)
	assert.Equal(t, 25, sqlDB.Stats().MaxOpenConnections)
}
