package consumer

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/go-redis/redis/v8"
	"github.com/rs/zerolog/log"
	"github.com/segmentio/kafka-go"

	"cafe-order-service/internal/entity"
)

// NotificationConsumer keeps per-user notification counts and the staff
// pending-order gauge in Redis, fed from the order event topic. It is the
// push-count collaborator the UIs subscribe to; nothing in the core lifecycle
// depends on it.
type NotificationConsumer struct {
	reader *kafka.Reader
	rdb    *redis.Client
}

func NewNotificationConsumer(reader *kafka.Reader, rdb *redis.Client) *NotificationConsumer {
	return &NotificationConsumer{reader: reader, rdb: rdb}
}

// Start consumes order events until ctx is cancelled.
func (c *NotificationConsumer) Start(ctx context.Context) {
	for {
		msg, err := c.reader.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			log.Error().Msgf("Error reading message: %v", err)
			continue
		}

		c.processMessage(ctx, msg)
	}
}

func (c *NotificationConsumer) processMessage(ctx context.Context, msg kafka.Message) {
	var order entity.Order
	if err := json.Unmarshal(msg.Value, &order); err != nil {
		log.Error().Msgf("Error unmarshalling message: %v", err)
		return
	}

	// key -> "order-created-1", "order-verified-1", ...
	parts := strings.Split(string(msg.Key), "-")
	if len(parts) < 3 {
		log.Error().Msgf("Unexpected event key: %s", string(msg.Key))
		return
	}
	event := parts[1]

	switch event {
	case "created":
		if err := c.rdb.Incr(ctx, openOrdersKey).Err(); err != nil {
			log.Error().Msgf("Error updating open-orders gauge: %v", err)
		}
	case string(entity.StatusVerified):
		if err := c.rdb.Incr(ctx, notificationKey(order.UserID)).Err(); err != nil {
			log.Error().Msgf("Error updating notification count for user %d: %v", order.UserID, err)
		}
	case string(entity.StatusCompleted), string(entity.StatusCancelled):
		// Terminal states are reached exactly once per order, so the
		// gauge stays consistent without knowing the prior status.
		if err := c.rdb.Decr(ctx, openOrdersKey).Err(); err != nil {
			log.Error().Msgf("Error updating open-orders gauge: %v", err)
		}
		if err := c.rdb.Incr(ctx, notificationKey(order.UserID)).Err(); err != nil {
			log.Error().Msgf("Error updating notification count for user %d: %v", order.UserID, err)
		}
	default:
		log.Error().Msgf("Unknown order event: %s", event)
	}
}

const openOrdersKey = "orders:open"

func notificationKey(userID int) string {
	return fmt.Sprintf("notifications:%d", userID)
}
