package services_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/srgjo27/ticket_inventory/internal/core/domain"
	"github.com/srgjo27/ticket_inventory/internal/core/services"
)

func TestSweeper_ReclaimsOnSchedule(t *testing.T) {
	f := newFixture(t, 10)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	hold, err := f.hold(t, "session-a", 4)
	require.NoError(t, err)
	f.clock.Advance(16 * time.Minute)

	sweeper := services.NewSweeper(f.engine, 5*time.Millisecond, testLogger())

	done := make(chan struct{})
	go func() {
		sweeper.Run(ctx)
		close(done)
	}()

	require.Eventually(t, func() bool {
		got, err := f.store.GetHold(context.Background(), hold.ID)
		return err == nil && got.Status == domain.HoldExpired
	}, time.Second, 5*time.Millisecond)

	assert.Equal(t, 10, f.available(t))

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("sweeper did not stop on context cancel")
	}
}

func TestSweeper_KeepsRunningAfterFailedTick(t *testing.T) {
	engine, _, holdRepo, _ := newEngine(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	calls := make(chan struct{}, 4)
	holdRepo.On("FindExpired", ctx, testTime, 100).
		Return(nil, errors.New("store unavailable")).
		Run(func(mock.Arguments) {
			select {
			case calls <- struct{}{}:
			default:
			}
		})

	sweeper := services.NewSweeper(engine, 5*time.Millisecond, testLogger())
	go sweeper.Run(ctx)

	// Two observed scans prove the first failure did not kill the loop.
	for i := 0; i < 2; i++ {
		select {
		case <-calls:
		case <-time.After(time.Second):
			t.Fatal("sweeper stopped scanning after a failure")
		}
	}
}
