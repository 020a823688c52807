package database

import "amizades/internal/models"

// PersistentModels returns the authoritative set of schema-managed GORM models.
func PersistentModels() []any {
	return []any{
		&models.Profile{},
		&models.FriendRequest{},
		&models.Friendship{},
		&MigrationLog{},
	}
}
