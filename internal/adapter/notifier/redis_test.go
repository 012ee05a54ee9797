package notifier

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/srgjo27/ticket_inventory/internal/core/domain"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestRedisNotifier_PublishesGlobalAndScopedChannels(t *testing.T) {
	rdb, mockRedis := redismock.NewClientMock()
	n := NewRedisNotifier(rdb, testLogger())

	ev := domain.InventoryEvent{
		Type:              domain.EventHoldCreated,
		EventID:           uuid.New(),
		TicketTypeID:      uuid.New(),
		HoldID:            uuid.New(),
		Quantity:          2,
		AvailableQuantity: 8,
		OccurredAt:        time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
	}
	payload, err := json.Marshal(ev)
	require.NoError(t, err)

	mockRedis.ExpectPublish(globalChannel, payload).SetVal(1)
	mockRedis.ExpectPublish(globalChannel+"."+ev.EventID.String(), payload).SetVal(1)

	require.NoError(t, n.Publish(context.Background(), ev))
	assert.NoError(t, mockRedis.ExpectationsWereMet())
}

func TestRedisNotifier_PublishErrorSurfaces(t *testing.T) {
	rdb, mockRedis := redismock.NewClientMock()
	n := NewRedisNotifier(rdb, testLogger())

	ev := domain.InventoryEvent{Type: domain.EventInventoryUpdated, EventID: uuid.New()}
	payload, err := json.Marshal(ev)
	require.NoError(t, err)

	mockRedis.ExpectPublish(globalChannel, payload).SetErr(errors.New("connection reset"))

	err = n.Publish(context.Background(), ev)
	assert.Error(t, err)
}
