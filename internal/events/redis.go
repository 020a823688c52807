package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"amizades/internal/notifications"
)

// RedisPublisher delivers each event to both parties' notification channels.
type RedisPublisher struct {
	notifier *notifications.Notifier
}

// NewRedisPublisher wraps n. It returns nil when n has no Redis client.
func NewRedisPublisher(n *notifications.Notifier) *RedisPublisher {
	if !n.Enabled() {
		return nil
	}
	return &RedisPublisher{notifier: n}
}

func (p *RedisPublisher) Name() string { return "redis" }

func (p *RedisPublisher) Publish(ctx context.Context, e Event) error {
	payload, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	return errors.Join(
		p.notifier.PublishUser(ctx, e.SenderID, payload),
		p.notifier.PublishUser(ctx, e.ReceiverID, payload),
	)
}
