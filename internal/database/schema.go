package database

import (
	"context"
	"fmt"
	"log/slog"

	"amizades/internal/middleware"

	"gorm.io/gorm"
)

// SchemaStatus describes the migration state of a database.
type SchemaStatus struct {
	Dialect           string
	AppliedVersions   []int
	PendingMigrations []Migration
}

// ApplySchema creates or updates the tables for every persistent model and then
// applies the dialect-specific migrations on top.
func ApplySchema(ctx context.Context, db *gorm.DB) error {
	middleware.Logger.InfoContext(ctx, "Running GORM AutoMigrate", slog.String("dialect", db.Dialector.Name()))
	if err := db.WithContext(ctx).AutoMigrate(PersistentModels()...); err != nil {
		return fmt.Errorf("auto-migrate: %w", err)
	}
	if err := RunMigrations(ctx, db); err != nil {
		return fmt.Errorf("run sql migrations: %w", err)
	}
	return nil
}

// GetSchemaStatus reports which migrations are applied and which are pending.
func GetSchemaStatus(ctx context.Context, db *gorm.DB) (*SchemaStatus, error) {
	status := &SchemaStatus{Dialect: db.Dialector.Name()}

	applied, err := NewMigrationStore(db).GetAppliedMigrations(ctx)
	if err != nil {
		return nil, err
	}
	status.AppliedVersions = applied

	appliedSet := make(map[int]bool, len(applied))
	for _, version := range applied {
		appliedSet[version] = true
	}
	for _, m := range GetMigrations() {
		if !appliedSet[m.Version] && m.AppliesTo(status.Dialect) {
			status.PendingMigrations = append(status.PendingMigrations, m)
		}
	}
	return status, nil
}
