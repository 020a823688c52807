package database

import (
	"fmt"
	"slices"
)

// Migration is a schema change AutoMigrate cannot express from struct tags.
// An empty Dialects list applies everywhere.
type Migration struct {
	Version  int
	Name     string
	Dialects []string
	UpScript string
}

// migrations must stay sorted by Version.
var migrations = []Migration{
	{
		Version:  1,
		Name:     "friendships_canonical_order",
		Dialects: []string{"postgres"},
		// Byte-wise ordering so the constraint agrees with models.CanonicalPair regardless of database collation.
		UpScript: `ALTER TABLE friendships ADD CONSTRAINT chk_friendships_canonical CHECK (user1_id COLLATE "C" < user2_id COLLATE "C")`,
	},
	{
		Version:  2,
		Name:     "friend_requests_not_self",
		Dialects: []string{"postgres"},
		UpScript: `ALTER TABLE friend_requests ADD CONSTRAINT chk_friend_requests_not_self CHECK (sender_id <> receiver_id)`,
	},
	{
		Version:  3,
		Name:     "friend_requests_pair_order",
		Dialects: []string{"postgres"},
		UpScript: `ALTER TABLE friend_requests ADD CONSTRAINT chk_friend_requests_pair CHECK (pair_lo COLLATE "C" < pair_hi COLLATE "C")`,
	},
	{
		Version:  4,
		Name:     "profiles_search_lower_username",
		UpScript: `CREATE INDEX IF NOT EXISTS idx_profiles_lower_username ON profiles (LOWER(username))`,
	},
}

// GetMigrations returns the registered migrations in version order.
func GetMigrations() []Migration {
	return migrations
}

// AppliesTo reports whether the migration runs on the named gorm dialect.
func (m *Migration) AppliesTo(dialect string) bool {
	return len(m.Dialects) == 0 || slices.Contains(m.Dialects, dialect)
}

func (m *Migration) String() string {
	return fmt.Sprintf("%06d_%s", m.Version, m.Name)
}
