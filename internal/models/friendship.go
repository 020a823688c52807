// Package models contains data structures for the relationship domain.
package models

import (
	"strings"
	"time"

	"gorm.io/gorm"
)

// Friendship is a confirmed, undirected edge stored once with User1ID < User2ID.
type Friendship struct {
	User1ID   string    `gorm:"primaryKey;type:varchar(64)" json:"user1_id"`
	User2ID   string    `gorm:"primaryKey;type:varchar(64);index:idx_friendships_user2" json:"user2_id"`
	CreatedAt time.Time `json:"created_at"`
}

// TableName specifies the table name for GORM
func (Friendship) TableName() string {
	return "friendships"
}

// BeforeCreate ensures User1ID < User2ID for consistent ordering
func (f *Friendship) BeforeCreate(_ *gorm.DB) error {
	if f.User1ID == f.User2ID {
		return NewValidationError("Cannot befriend yourself")
	}
	f.User1ID, f.User2ID = CanonicalPair(f.User1ID, f.User2ID)
	return nil
}

// CanonicalPair orders two ids byte-wise so an undirected pair has one representation.
func CanonicalPair(a, b string) (lo, hi string) {
	if strings.Compare(a, b) <= 0 {
		return a, b
	}
	return b, a
}

// NewFriendship returns the canonical edge for a and b.
func NewFriendship(a, b string) *Friendship {
	lo, hi := CanonicalPair(a, b)
	return &Friendship{User1ID: lo, User2ID: hi}
}

// Other returns the member of the edge that is not userID.
func (f Friendship) Other(userID string) string {
	if f.User1ID == userID {
		return f.User2ID
	}
	return f.User1ID
}
