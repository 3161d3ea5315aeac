package bookings

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"showtix/internal/shows"
	"showtix/pkg/cache"

	"github.com/google/uuid"
)

// fakeShowService records cache invalidations; the booking service only
// touches that one method on the happy paths.
type fakeShowService struct {
	mu            sync.Mutex
	invalidations int
}

func (f *fakeShowService) SetCacheService(cache.Service) {}

func (f *fakeShowService) CreateShow(context.Context, shows.CreateShowRequest) (*shows.ShowResponse, error) {
	return nil, errors.New("not implemented")
}

func (f *fakeShowService) GetShowByID(context.Context, uuid.UUID) (*shows.ShowResponse, error) {
	return nil, errors.New("not implemented")
}

func (f *fakeShowService) ListShows(context.Context) ([]shows.ShowResponse, error) {
	return nil, errors.New("not implemented")
}

func (f *fakeShowService) InvalidateListCache(context.Context) {
	f.mu.Lock()
	f.invalidations++
	f.mu.Unlock()
}

type fakeLedger struct {
	total  int
	booked int
}

// fakeRepo reimplements the store contract in memory: the mutex stands in
// for the show's row lock, and status transitions honor the same
// PENDING-only guard the SQL layer enforces.
type fakeRepo struct {
	mu       sync.Mutex
	ledgers  map[uuid.UUID]*fakeLedger
	bookings map[uuid.UUID]*Booking

	confirmErr           error
	resolveBeforeConfirm bool
	releaseCalls         int
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		ledgers:  make(map[uuid.UUID]*fakeLedger),
		bookings: make(map[uuid.UUID]*Booking),
	}
}

func (f *fakeRepo) addShow(totalSeats int) uuid.UUID {
	id := uuid.New()
	f.ledgers[id] = &fakeLedger{total: totalSeats}
	return id
}

func (f *fakeRepo) bookedSeats(showID uuid.UUID) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.ledgers[showID].booked
}

func (f *fakeRepo) HoldSeats(_ context.Context, showID uuid.UUID, seatCount int) (*Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	ledger, ok := f.ledgers[showID]
	if !ok {
		return nil, shows.ErrShowNotFound
	}

	booking := &Booking{
		ID:        uuid.New(),
		ShowID:    showID,
		SeatCount: seatCount,
		Status:    StatusPending,
		CreatedAt: time.Now(),
	}

	if ledger.total-ledger.booked >= seatCount {
		ledger.booked += seatCount
	} else {
		booking.Status = StatusFailed
	}

	f.bookings[booking.ID] = booking
	copied := *booking
	return &copied, nil
}

func (f *fakeRepo) ConfirmHold(_ context.Context, bookingID uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	booking, ok := f.bookings[bookingID]
	if !ok {
		return ErrBookingNotFound
	}

	if f.resolveBeforeConfirm {
		// A reclaim sweep beat the finalize step to the row.
		booking.Status = StatusFailed
		f.ledgers[booking.ShowID].booked -= booking.SeatCount
		return ErrHoldAlreadyResolved
	}
	if f.confirmErr != nil {
		return f.confirmErr
	}

	if booking.Status != StatusPending {
		return ErrHoldAlreadyResolved
	}
	booking.Status = StatusConfirmed
	return nil
}

func (f *fakeRepo) ReleaseHold(_ context.Context, booking *Booking) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.releaseCalls++

	stored, ok := f.bookings[booking.ID]
	if !ok || stored.Status != StatusPending {
		return nil
	}
	stored.Status = StatusFailed
	f.ledgers[stored.ShowID].booked -= stored.SeatCount
	return nil
}

func (f *fakeRepo) ReclaimExpired(_ context.Context, olderThan time.Time) ([]Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var reclaimed []Booking
	for _, b := range f.bookings {
		if b.Status == StatusPending && b.CreatedAt.Before(olderThan) {
			b.Status = StatusFailed
			f.ledgers[b.ShowID].booked -= b.SeatCount
			reclaimed = append(reclaimed, *b)
		}
	}
	return reclaimed, nil
}

func (f *fakeRepo) GetByID(_ context.Context, id uuid.UUID) (*Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	booking, ok := f.bookings[id]
	if !ok {
		return nil, ErrBookingNotFound
	}
	copied := *booking
	return &copied, nil
}

func (f *fakeRepo) ListByShow(_ context.Context, showID uuid.UUID) ([]Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var result []Booking
	for _, b := range f.bookings {
		if b.ShowID == showID {
			result = append(result, *b)
		}
	}
	return result, nil
}

func TestAttemptBookingConfirmsWhenCapacityAllows(t *testing.T) {
	repo := newFakeRepo()
	showID := repo.addShow(10)
	svc := NewService(repo, &fakeShowService{}, 2*time.Minute)

	resp, err := svc.AttemptBooking(context.Background(), BookSeatsRequest{
		ShowID:    showID.String(),
		SeatCount: 7,
	})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if resp.Booking.Status != StatusConfirmed {
		t.Fatalf("expected CONFIRMED, got %s", resp.Booking.Status)
	}
	if resp.Message != "Booking CONFIRMED" {
		t.Fatalf("unexpected message: %q", resp.Message)
	}
	if got := repo.bookedSeats(showID); got != 7 {
		t.Fatalf("booked_seats = %d, want 7", got)
	}
}

func TestAttemptBookingFailsOnOversell(t *testing.T) {
	repo := newFakeRepo()
	showID := repo.addShow(10)
	showSvc := &fakeShowService{}
	svc := NewService(repo, showSvc, 2*time.Minute)
	ctx := context.Background()

	first, err := svc.AttemptBooking(ctx, BookSeatsRequest{ShowID: showID.String(), SeatCount: 7})
	if err != nil {
		t.Fatalf("first attempt: %v", err)
	}
	if first.Booking.Status != StatusConfirmed {
		t.Fatalf("first attempt should confirm, got %s", first.Booking.Status)
	}

	// 5 > the 3 remaining seats: recorded as FAILED, no error, ledger untouched.
	second, err := svc.AttemptBooking(ctx, BookSeatsRequest{ShowID: showID.String(), SeatCount: 5})
	if err != nil {
		t.Fatalf("second attempt: %v", err)
	}
	if second.Booking.Status != StatusFailed {
		t.Fatalf("second attempt should fail, got %s", second.Booking.Status)
	}
	if second.Message != "Booking FAILED" {
		t.Fatalf("unexpected message: %q", second.Message)
	}
	if got := repo.bookedSeats(showID); got != 7 {
		t.Fatalf("booked_seats = %d, want 7 after oversell", got)
	}

	// Exact remaining capacity still goes through.
	third, err := svc.AttemptBooking(ctx, BookSeatsRequest{ShowID: showID.String(), SeatCount: 3})
	if err != nil {
		t.Fatalf("third attempt: %v", err)
	}
	if third.Booking.Status != StatusConfirmed {
		t.Fatalf("third attempt should confirm, got %s", third.Booking.Status)
	}
	if got := repo.bookedSeats(showID); got != 10 {
		t.Fatalf("booked_seats = %d, want 10", got)
	}
}

func TestAttemptBookingValidation(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo, &fakeShowService{}, 2*time.Minute)
	ctx := context.Background()

	_, err := svc.AttemptBooking(ctx, BookSeatsRequest{ShowID: "not-a-uuid", SeatCount: 1})
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for bad show id, got %v", err)
	}

	_, err = svc.AttemptBooking(ctx, BookSeatsRequest{ShowID: uuid.NewString(), SeatCount: 0})
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for zero seats, got %v", err)
	}

	if len(repo.bookings) != 0 {
		t.Fatalf("invalid input must not reach the store")
	}
}

func TestAttemptBookingShowNotFound(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo, &fakeShowService{}, 2*time.Minute)

	_, err := svc.AttemptBooking(context.Background(), BookSeatsRequest{
		ShowID:    uuid.NewString(),
		SeatCount: 1,
	})
	if !errors.Is(err, shows.ErrShowNotFound) {
		t.Fatalf("expected ErrShowNotFound, got %v", err)
	}
}

func TestAttemptBookingReleasesHoldOnConfirmFailure(t *testing.T) {
	repo := newFakeRepo()
	showID := repo.addShow(10)
	repo.confirmErr = errors.New("connection reset")
	svc := NewService(repo, &fakeShowService{}, 2*time.Minute)

	_, err := svc.AttemptBooking(context.Background(), BookSeatsRequest{
		ShowID:    showID.String(),
		SeatCount: 4,
	})
	if !errors.Is(err, ErrTransactionFailed) {
		t.Fatalf("expected ErrTransactionFailed, got %v", err)
	}
	if repo.releaseCalls != 1 {
		t.Fatalf("expected 1 release call, got %d", repo.releaseCalls)
	}
	if got := repo.bookedSeats(showID); got != 0 {
		t.Fatalf("booked_seats = %d, want 0 after release", got)
	}
}

func TestAttemptBookingToleratesReclaimRace(t *testing.T) {
	repo := newFakeRepo()
	showID := repo.addShow(10)
	repo.resolveBeforeConfirm = true
	svc := NewService(repo, &fakeShowService{}, 2*time.Minute)

	// The sweep resolved the hold between insert and confirm; the attempt
	// still succeeds and reports the terminal state truthfully.
	resp, err := svc.AttemptBooking(context.Background(), BookSeatsRequest{
		ShowID:    showID.String(),
		SeatCount: 4,
	})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if resp.Booking.Status != StatusFailed {
		t.Fatalf("expected FAILED after reclaim race, got %s", resp.Booking.Status)
	}
	if repo.releaseCalls != 0 {
		t.Fatalf("release must not run when the hold was already resolved")
	}
}

func TestReclaimExpired(t *testing.T) {
	repo := newFakeRepo()
	showID := repo.addShow(10)
	showSvc := &fakeShowService{}
	svc := NewService(repo, showSvc, 2*time.Minute)
	ctx := context.Background()

	// Plant a stale hold the way a crashed finalize step would leave it.
	stale := &Booking{
		ID:        uuid.New(),
		ShowID:    showID,
		SeatCount: 6,
		Status:    StatusPending,
		CreatedAt: time.Now().Add(-10 * time.Minute),
	}
	repo.bookings[stale.ID] = stale
	repo.ledgers[showID].booked = 6

	// A fresh hold must survive the sweep.
	fresh := &Booking{
		ID:        uuid.New(),
		ShowID:    showID,
		SeatCount: 2,
		Status:    StatusPending,
		CreatedAt: time.Now(),
	}
	repo.bookings[fresh.ID] = fresh
	repo.ledgers[showID].booked += 2

	reclaimed, err := svc.ReclaimExpired(ctx)
	if err != nil {
		t.Fatalf("reclaim: %v", err)
	}
	if len(reclaimed) != 1 {
		t.Fatalf("expected 1 reclaimed booking, got %d", len(reclaimed))
	}
	if reclaimed[0].ID != stale.ID.String() {
		t.Fatalf("reclaimed the wrong booking")
	}
	if reclaimed[0].Status != StatusFailed {
		t.Fatalf("reclaimed booking should be FAILED, got %s", reclaimed[0].Status)
	}
	if got := repo.bookedSeats(showID); got != 2 {
		t.Fatalf("booked_seats = %d, want 2 after reclaim", got)
	}
	if fresh.Status != StatusPending {
		t.Fatalf("fresh hold must not be reclaimed")
	}

	// A second sweep finds nothing; terminal rows stay terminal.
	again, err := svc.ReclaimExpired(ctx)
	if err != nil {
		t.Fatalf("second reclaim: %v", err)
	}
	if len(again) != 0 {
		t.Fatalf("second sweep should reclaim nothing, got %d", len(again))
	}
}

func TestConcurrentBookingsNeverOversell(t *testing.T) {
	const capacity = 10
	const attempts = 50

	repo := newFakeRepo()
	showID := repo.addShow(capacity)
	svc := NewService(repo, &fakeShowService{}, 2*time.Minute)

	var wg sync.WaitGroup
	results := make(chan Status, attempts)

	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			resp, err := svc.AttemptBooking(context.Background(), BookSeatsRequest{
				ShowID:    showID.String(),
				SeatCount: 1,
			})
			if err != nil {
				t.Errorf("attempt failed: %v", err)
				return
			}
			results <- resp.Booking.Status
		}()
	}
	wg.Wait()
	close(results)

	confirmed, failed := 0, 0
	for status := range results {
		switch status {
		case StatusConfirmed:
			confirmed++
		case StatusFailed:
			failed++
		default:
			t.Fatalf("unexpected terminal status %s", status)
		}
	}

	if confirmed != capacity {
		t.Fatalf("confirmed = %d, want exactly %d", confirmed, capacity)
	}
	if failed != attempts-capacity {
		t.Fatalf("failed = %d, want %d", failed, attempts-capacity)
	}
	if got := repo.bookedSeats(showID); got != capacity {
		t.Fatalf("booked_seats = %d, want %d", got, capacity)
	}
}

func TestTwoRacingAttemptsGetOneSeatBlock(t *testing.T) {
	repo := newFakeRepo()
	showID := repo.addShow(10)
	svc := NewService(repo, &fakeShowService{}, 2*time.Minute)

	var wg sync.WaitGroup
	statuses := make(chan Status, 2)

	// Both want 6 of 10 seats; exactly one can win.
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			resp, err := svc.AttemptBooking(context.Background(), BookSeatsRequest{
				ShowID:    showID.String(),
				SeatCount: 6,
			})
			if err != nil {
				t.Errorf("attempt failed: %v", err)
				return
			}
			statuses <- resp.Booking.Status
		}()
	}
	wg.Wait()
	close(statuses)

	confirmed, failed := 0, 0
	for status := range statuses {
		if status == StatusConfirmed {
			confirmed++
		} else {
			failed++
		}
	}

	if confirmed != 1 || failed != 1 {
		t.Fatalf("got %d confirmed / %d failed, want exactly 1 / 1", confirmed, failed)
	}
	if got := repo.bookedSeats(showID); got != 6 {
		t.Fatalf("booked_seats = %d, want 6", got)
	}
}

func TestGetBooking(t *testing.T) {
	repo := newFakeRepo()
	showID := repo.addShow(5)
	svc := NewService(repo, &fakeShowService{}, 2*time.Minute)
	ctx := context.Background()

	resp, err := svc.AttemptBooking(ctx, BookSeatsRequest{ShowID: showID.String(), SeatCount: 2})
	if err != nil {
		t.Fatalf("attempt: %v", err)
	}

	id, err := uuid.Parse(resp.Booking.ID)
	if err != nil {
		t.Fatalf("response carries a malformed id: %v", err)
	}

	got, err := svc.GetBooking(ctx, id)
	if err != nil {
		t.Fatalf("get booking: %v", err)
	}
	if got.Status != StatusConfirmed || got.SeatCount != 2 {
		t.Fatalf("unexpected booking: %+v", got)
	}

	if _, err := svc.GetBooking(ctx, uuid.New()); !errors.Is(err, ErrBookingNotFound) {
		t.Fatalf("expected ErrBookingNotFound, got %v", err)
	}
}
