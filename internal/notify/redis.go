package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"menuely/internal/model"

	"github.com/redis/go-redis/v9"
)

// RedisOrderStream publishes order summaries on a per-restaurant channel.
// Subscribers that are not connected miss the message.
type RedisOrderStream struct {
	client *redis.Client
	prefix string
}

// NewRedisOrderStream creates a stream on client; channels are prefix+restaurantID.
func NewRedisOrderStream(client *redis.Client, prefix string) *RedisOrderStream {
	return &RedisOrderStream{client: client, prefix: prefix}
}

// Channel returns the channel of a restaurant.
func (s *RedisOrderStream) Channel(restaurantID int64) string {
	return s.prefix + strconv.FormatInt(restaurantID, 10)
}

// PublishOrder publishes the summary as JSON.
func (s *RedisOrderStream) PublishOrder(ctx context.Context, restaurantID int64, summary model.OrderSummary) error {
	payload, err := json.Marshal(summary)
	if err != nil {
		return fmt.Errorf("failed to marshal order summary: %w", err)
	}

	if err := s.client.Publish(ctx, s.Channel(restaurantID), payload).Err(); err != nil {
		return fmt.Errorf("failed to publish order: %w", err)
	}

	return nil
}
