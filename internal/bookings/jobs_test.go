package bookings

import (
	"context"
	"sync"
	"testing"
	"time"

	"showtix/internal/notifications"

	"github.com/google/uuid"
)

type countingService struct {
	mu     sync.Mutex
	sweeps int
}

func (c *countingService) SetProducer(notifications.Producer) {}

func (c *countingService) AttemptBooking(context.Context, BookSeatsRequest) (*BookingAttemptResponse, error) {
	return nil, nil
}

func (c *countingService) GetBooking(context.Context, uuid.UUID) (*BookingResponse, error) {
	return nil, ErrBookingNotFound
}

func (c *countingService) ReclaimExpired(context.Context) ([]BookingResponse, error) {
	c.mu.Lock()
	c.sweeps++
	c.mu.Unlock()
	return nil, nil
}

func (c *countingService) sweepCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sweeps
}

func TestJobProcessorSweepsImmediatelyOnStart(t *testing.T) {
	svc := &countingService{}
	jp := NewJobProcessor(svc, &JobConfig{Interval: time.Hour})

	jp.Start(context.Background())
	defer jp.Stop()

	deadline := time.Now().Add(2 * time.Second)
	for svc.sweepCount() == 0 {
		if time.Now().After(deadline) {
			t.Fatalf("no sweep ran after start")
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestJobProcessorStopIsIdempotent(t *testing.T) {
	jp := NewJobProcessor(&countingService{}, nil)
	jp.Start(context.Background())

	jp.Stop()
	jp.Stop() // must not panic
}

func TestJobProcessorStopsOnContextCancel(t *testing.T) {
	svc := &countingService{}
	jp := NewJobProcessor(svc, &JobConfig{Interval: 10 * time.Millisecond})

	ctx, cancel := context.WithCancel(context.Background())
	jp.Start(ctx)

	deadline := time.Now().Add(2 * time.Second)
	for svc.sweepCount() < 2 {
		if time.Now().After(deadline) {
			t.Fatalf("ticker sweeps never ran")
		}
		time.Sleep(5 * time.Millisecond)
	}

	cancel()
	time.Sleep(50 * time.Millisecond)

	before := svc.sweepCount()
	time.Sleep(50 * time.Millisecond)
	if after := svc.sweepCount(); after != before {
		t.Fatalf("sweeps continued after cancel: %d -> %d", before, after)
	}
}
