package dedupe

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

// refundMarkerTTL bounds how long a refund marker suppresses duplicates.
// Concurrent deliveries of the same refund land well inside this window;
// anything later is caught by the permanent webhook event log.
const refundMarkerTTL = 300 * time.Second

type RedisMarkerStore struct {
	client *redis.Client
}

func NewRedisMarkerStore(client *redis.Client) *RedisMarkerStore {
	return &RedisMarkerStore{client: client}
}

// SeenOrMark atomically records the refund marker and reports whether it
// already existed. SETNX makes the check-and-set race free across replicas.
func (s *RedisMarkerStore) SeenOrMark(ctx context.Context, orderID int64, refundID string) (bool, error) {
	key := markerKey(orderID, refundID)
	set, err := s.client.SetNX(ctx, key, "1", refundMarkerTTL).Result()
	if err != nil {
		return false, fmt.Errorf("failed to set refund marker: %w", err)
	}
	return !set, nil
}

func markerKey(orderID int64, refundID string) string {
	return fmt.Sprintf("refund_marker:%d:%s", orderID, refundID)
}
