package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const notifyTTL = 24 * time.Hour

// NotificationDedup suppresses repeat access-granted mails backed by Redis.
// Re-running a bulk import within the TTL upserts records again (harmless)
// but must not mail every client a second time.
// Key format: notify:<email>
type NotificationDedup struct {
	client *redis.Client
}

// NewNotificationDedup creates a NotificationDedup wrapping the given client.
func NewNotificationDedup(client *redis.Client) *NotificationDedup {
	return &NotificationDedup{client: client}
}

// Seen reports whether this recipient was already notified within the TTL.
func (d *NotificationDedup) Seen(ctx context.Context, email string) (bool, error) {
	n, err := d.client.Exists(ctx, d.key(email)).Result()
	if err != nil {
		return false, fmt.Errorf("notify dedup check: %w", err)
	}
	return n > 0, nil
}

// Mark records that this recipient has been notified (expires after notifyTTL).
func (d *NotificationDedup) Mark(ctx context.Context, email string) error {
	return d.client.Set(ctx, d.key(email), "1", notifyTTL).Err()
}

func (d *NotificationDedup) key(email string) string {
	return "notify:" + email
}
