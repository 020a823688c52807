// Package notifications publishes per-user notification payloads over Redis pub/sub.
package notifications

import (
	"context"
	"errors"

	"github.com/redis/go-redis/v9"
)

// ErrEmptyUserID is returned when a payload has no recipient.
var ErrEmptyUserID = errors.New("notifications: empty user id")

// Notifier provides helpers to publish notifications into Redis channels
type Notifier struct {
	rdb *redis.Client
}

// NewNotifier creates a new Notifier instance using the provided Redis client.
func NewNotifier(rdb *redis.Client) *Notifier {
	return &Notifier{rdb: rdb}
}

// Enabled reports whether publishes reach Redis.
func (n *Notifier) Enabled() bool {
	return n != nil && n.rdb != nil
}

// PublishUser sends a notification payload to a user's channel.
// Without a Redis client it is a no-op.
func (n *Notifier) PublishUser(ctx context.Context, userID string, payload []byte) error {
	if !n.Enabled() {
		return nil
	}
	if userID == "" {
		return ErrEmptyUserID
	}
	return n.rdb.Publish(ctx, UserChannel(userID), payload).Err()
}

// UserChannel derives the Redis channel name for a user.
func UserChannel(userID string) string {
	return "notifications:user:" + userID
}
