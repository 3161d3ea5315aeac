package bookings

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"showtix/internal/notifications"
	"showtix/internal/shows"
	"showtix/pkg/logger"

	"github.com/google/uuid"
)

// Service is the Reservation Engine contract exposed to the presentation
// layer and the expiry job.
type Service interface {
	// SetProducer injects the optional booking-event producer.
	SetProducer(producer notifications.Producer)

	// AttemptBooking runs one booking attempt end to end and returns the
	// terminal reservation record. An oversell is a successful call whose
	// booking is FAILED, not an error.
	AttemptBooking(ctx context.Context, req BookSeatsRequest) (*BookingAttemptResponse, error)

	GetBooking(ctx context.Context, bookingID uuid.UUID) (*BookingResponse, error)

	// ReclaimExpired fails every stale PENDING booking and returns its
	// seats to the ledger. Invoked by the background job; also safe to call
	// directly.
	ReclaimExpired(ctx context.Context) ([]BookingResponse, error)
}

type service struct {
	repo         Repository
	showService  shows.Service
	producer     notifications.Producer
	reclaimAfter time.Duration
	log          *logger.Logger
}

// NewService creates the booking service. reclaimAfter is the staleness
// threshold after which an unfinalized hold is considered abandoned.
func NewService(repo Repository, showService shows.Service, reclaimAfter time.Duration) Service {
	return &service{
		repo:         repo,
		showService:  showService,
		reclaimAfter: reclaimAfter,
		log:          logger.GetDefault(),
	}
}

func (s *service) SetProducer(producer notifications.Producer) {
	s.producer = producer
}

func (s *service) AttemptBooking(ctx context.Context, req BookSeatsRequest) (*BookingAttemptResponse, error) {
	// Validation fails fast, before any store access.
	showID, err := uuid.Parse(req.ShowID)
	if err != nil {
		return nil, fmt.Errorf("%w: show_id must be a valid UUID", ErrInvalidInput)
	}
	if req.SeatCount <= 0 {
		return nil, fmt.Errorf("%w: seat_count must be greater than zero", ErrInvalidInput)
	}

	booking, err := s.repo.HoldSeats(ctx, showID, req.SeatCount)
	if err != nil {
		if errors.Is(err, shows.ErrShowNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", ErrTransactionFailed, err)
	}

	if booking.Status == StatusPending {
		if err := s.finalize(ctx, booking); err != nil {
			return nil, err
		}
	}

	// Reload so the caller sees the committed terminal record.
	final, err := s.repo.GetByID(ctx, booking.ID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTransactionFailed, err)
	}

	s.showService.InvalidateListCache(ctx)
	s.publishOutcome(ctx, final)

	s.log.LogBookingAttempt(ctx, final.ID.String(), final.ShowID.String(), final.SeatCount, final.Status.String())

	resp := final.ToAttemptResponse()
	return &resp, nil
}

// finalize moves a held booking to CONFIRMED. When confirmation cannot be
// committed the hold is released so the seats return to availability; if
// even the release fails, the expiry reclaimer repairs it on a later tick.
func (s *service) finalize(ctx context.Context, booking *Booking) error {
	err := s.repo.ConfirmHold(ctx, booking.ID)
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrHoldAlreadyResolved) {
		// The reclaimer raced us and failed the hold; the reload below
		// reports the terminal state truthfully.
		return nil
	}

	if releaseErr := s.repo.ReleaseHold(ctx, booking); releaseErr != nil {
		s.log.ErrorContext(ctx, "failed to release hold after confirm failure",
			slog.String("booking_id", booking.ID.String()),
			slog.Any("error", releaseErr),
		)
	}
	return fmt.Errorf("%w: %v", ErrTransactionFailed, err)
}

func (s *service) GetBooking(ctx context.Context, bookingID uuid.UUID) (*BookingResponse, error) {
	booking, err := s.repo.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	resp := booking.ToResponse()
	return &resp, nil
}

func (s *service) ReclaimExpired(ctx context.Context) ([]BookingResponse, error) {
	olderThan := time.Now().Add(-s.reclaimAfter)

	reclaimed, err := s.repo.ReclaimExpired(ctx, olderThan)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTransactionFailed, err)
	}
	if len(reclaimed) == 0 {
		return nil, nil
	}

	s.showService.InvalidateListCache(ctx)

	responses := make([]BookingResponse, 0, len(reclaimed))
	for i := range reclaimed {
		b := &reclaimed[i]
		s.publish(ctx, notifications.NewBookingEvent(notifications.BookingEventReclaimed, b.ShowID, b.ID, b.SeatCount))
		s.log.LogSeatsReclaimed(ctx, b.ID.String(), b.ShowID.String(), b.SeatCount)
		responses = append(responses, b.ToResponse())
	}
	return responses, nil
}

func (s *service) publishOutcome(ctx context.Context, booking *Booking) {
	eventType := notifications.BookingEventFailed
	if booking.IsConfirmed() {
		eventType = notifications.BookingEventConfirmed
	}
	s.publish(ctx, notifications.NewBookingEvent(eventType, booking.ShowID, booking.ID, booking.SeatCount))
}

// publish is best effort: a broker outage never turns a committed booking
// into an API error.
func (s *service) publish(ctx context.Context, event *notifications.BookingEvent) {
	if s.producer == nil {
		return
	}
	if err := s.producer.PublishBookingEvent(ctx, event); err != nil {
		s.log.WarnContext(ctx, "failed to publish booking event",
			slog.String("event_type", string(event.Type)),
			slog.String("booking_id", event.BookingID.String()),
			slog.Any("error", err),
		)
	}
}
