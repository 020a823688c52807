package models

import (
	"time"

	"gorm.io/gorm"
)

// RequestStatus represents the status of a friend request.
type RequestStatus string

const (
	// RequestStatusPending indicates a request awaiting the receiver's decision.
	RequestStatusPending RequestStatus = "pending"
	// RequestStatusAccepted indicates an accepted request; the row is kept as history.
	RequestStatusAccepted RequestStatus = "accepted"
)

// PendingPairIndex is the partial unique index allowing one pending request per unordered pair.
const PendingPairIndex = "idx_friend_requests_pending_pair"

// FriendRequest is a directed proposal from SenderID to ReceiverID.
// Rejected requests are deleted rather than stored.
type FriendRequest struct {
	ID         uint          `gorm:"primaryKey" json:"id"`
	SenderID   string        `gorm:"type:varchar(64);not null;index:idx_friend_requests_direction" json:"sender_id"`
	ReceiverID string        `gorm:"type:varchar(64);not null;index:idx_friend_requests_direction;index:idx_friend_requests_receiver_status" json:"receiver_id"`
	Status     RequestStatus `gorm:"type:varchar(20);not null;default:'pending';index:idx_friend_requests_receiver_status" json:"status"`
	PairLo     string        `gorm:"type:varchar(64);not null;uniqueIndex:idx_friend_requests_pending_pair,where:status = 'pending'" json:"-"`
	PairHi     string        `gorm:"type:varchar(64);not null;uniqueIndex:idx_friend_requests_pending_pair,where:status = 'pending'" json:"-"`
	CreatedAt  time.Time     `json:"created_at"`
	UpdatedAt  time.Time     `json:"updated_at"`
}

// TableName specifies the table name for GORM
func (FriendRequest) TableName() string {
	return "friend_requests"
}

// BeforeCreate rejects self-requests and stamps the canonical pair used by the pending index.
func (r *FriendRequest) BeforeCreate(_ *gorm.DB) error {
	if r.SenderID == r.ReceiverID {
		return NewValidationError("Cannot send friend request to yourself")
	}
	if r.Status == "" {
		r.Status = RequestStatusPending
	}
	r.PairLo, r.PairHi = CanonicalPair(r.SenderID, r.ReceiverID)
	return nil
}

// FriendStatus is the relationship between two users as seen from the first one.
type FriendStatus string

const (
	FriendStatusNone            FriendStatus = "none"
	FriendStatusPendingSent     FriendStatus = "pending_sent"
	FriendStatusPendingReceived FriendStatus = "pending_received"
	FriendStatusFriends         FriendStatus = "friends"
)
