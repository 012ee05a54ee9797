package notifier

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/srgjo27/ticket_inventory/internal/core/domain"
	"github.com/srgjo27/ticket_inventory/internal/core/ports"
)

const globalChannel = "inventory.events"

// RedisNotifier fans events out across processes over redis pub/sub. Each
// event is published on the global channel and on a per-event channel so
// subscribers can scope what they receive.
type RedisNotifier struct {
	rdb    *redis.Client
	logger *slog.Logger
}

var _ ports.Notifier = (*RedisNotifier)(nil)

func NewRedisNotifier(rdb *redis.Client, logger *slog.Logger) *RedisNotifier {
	return &RedisNotifier{rdb: rdb, logger: logger}
}

func eventChannel(eventID uuid.UUID) string {
	return globalChannel + "." + eventID.String()
}

func (n *RedisNotifier) Publish(ctx context.Context, ev domain.InventoryEvent) error {
	payload, err := json.Marshal(ev)
	if err != nil {
		return err
	}

	if err := n.rdb.Publish(ctx, globalChannel, payload).Err(); err != nil {
		return err
	}
	if err := n.rdb.Publish(ctx, eventChannel(ev.EventID), payload).Err(); err != nil {
		return err
	}

	return nil
}

func (n *RedisNotifier) Subscribe(eventID uuid.UUID) (<-chan domain.InventoryEvent, func()) {
	channel := globalChannel
	if eventID != uuid.Nil {
		channel = eventChannel(eventID)
	}

	pubsub := n.rdb.Subscribe(context.Background(), channel)
	out := make(chan domain.InventoryEvent, subscriberBuffer)

	go func() {
		defer close(out)
		for msg := range pubsub.Channel() {
			var ev domain.InventoryEvent
			if err := json.Unmarshal([]byte(msg.Payload), &ev); err != nil {
				n.logger.Warn("notifier: dropping malformed event", "channel", channel, "error", err)
				continue
			}
			select {
			case out <- ev:
			default:
				// Slow subscriber; at-most-once delivery allows the drop.
			}
		}
	}()

	cancel := func() {
		_ = pubsub.Close()
	}

	return out, cancel
}
