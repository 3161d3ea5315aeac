package bookings

import (
	"context"
	"errors"
	"fmt"
	"time"

	"showtix/internal/shows"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Repository is the Reservation Store plus the transactional engine steps.
// HoldSeats, ConfirmHold, ReleaseHold and ReclaimExpired each run as one
// database transaction; every booked_seats adjustment happens under the
// show's FOR UPDATE row lock, which is the only cross-process coordination
// point in the system.
type Repository interface {
	// HoldSeats runs the hold transaction: lock the show, record the
	// attempt, and when capacity allows take the optimistic hold (PENDING
	// row plus booked_seats increment, atomically). When capacity is
	// insufficient the attempt is recorded directly as FAILED and the
	// ledger is untouched.
	HoldSeats(ctx context.Context, showID uuid.UUID, seatCount int) (*Booking, error)

	// ConfirmHold finalizes a held booking, PENDING to CONFIRMED only.
	// Returns ErrHoldAlreadyResolved when the row is no longer PENDING.
	ConfirmHold(ctx context.Context, bookingID uuid.UUID) error

	// ReleaseHold returns a held booking's seats to the ledger and marks it
	// FAILED. A no-op when the booking was already resolved.
	ReleaseHold(ctx context.Context, booking *Booking) error

	// ReclaimExpired fails every PENDING booking created before olderThan
	// and returns its seats, all inside a single transaction.
	ReclaimExpired(ctx context.Context, olderThan time.Time) ([]Booking, error)

	GetByID(ctx context.Context, id uuid.UUID) (*Booking, error)
	ListByShow(ctx context.Context, showID uuid.UUID) ([]Booking, error)
}

type repository struct {
	db          *gorm.DB
	showRepo    shows.Repository
	lockTimeout time.Duration
}

// NewRepository creates the booking repository. lockTimeout bounds how long
// a transaction waits on a contended show row before failing as retryable;
// zero disables the bound.
func NewRepository(db *gorm.DB, showRepo shows.Repository, lockTimeout time.Duration) Repository {
	return &repository{db: db, showRepo: showRepo, lockTimeout: lockTimeout}
}

func (r *repository) HoldSeats(ctx context.Context, showID uuid.UUID, seatCount int) (*Booking, error) {
	var booking *Booking

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := r.applyLockTimeout(tx); err != nil {
			return err
		}

		show, err := r.showRepo.GetByIDForUpdate(tx, showID)
		if err != nil {
			return err
		}

		attempt := &Booking{
			ShowID:    showID,
			SeatCount: seatCount,
			Status:    StatusPending,
		}

		if show.AvailableSeats() >= seatCount {
			// Capacity check passed under the lock: the hold is the
			// PENDING row and the counter bump, committed together.
			if err := r.insertReservation(tx, attempt); err != nil {
				return err
			}
			if err := r.showRepo.AdjustBookedSeats(tx, showID, seatCount); err != nil {
				return err
			}
		} else {
			// Oversell: recorded, not silently dropped.
			attempt.Status = StatusFailed
			if err := r.insertReservation(tx, attempt); err != nil {
				return err
			}
		}

		booking = attempt
		return nil
	})
	if err != nil {
		return nil, err
	}
	return booking, nil
}

func (r *repository) ConfirmHold(ctx context.Context, bookingID uuid.UUID) error {
	res, err := r.updateStatus(r.db.WithContext(ctx), bookingID, StatusPending, StatusConfirmed)
	if err != nil {
		return err
	}
	if res == 0 {
		return ErrHoldAlreadyResolved
	}
	return nil
}

func (r *repository) ReleaseHold(ctx context.Context, booking *Booking) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := r.applyLockTimeout(tx); err != nil {
			return err
		}

		if _, err := r.showRepo.GetByIDForUpdate(tx, booking.ShowID); err != nil {
			return err
		}

		updated, err := r.updateStatus(tx, booking.ID, StatusPending, StatusFailed)
		if err != nil {
			return err
		}
		if updated == 0 {
			// Already resolved (reclaimer got there first); the seats were
			// returned by whoever resolved it.
			return nil
		}

		return r.showRepo.AdjustBookedSeats(tx, booking.ShowID, -booking.SeatCount)
	})
}

func (r *repository) ReclaimExpired(ctx context.Context, olderThan time.Time) ([]Booking, error) {
	var reclaimed []Booking

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := r.applyLockTimeout(tx); err != nil {
			return err
		}

		stale, err := r.findStaleReservations(tx, olderThan)
		if err != nil {
			return err
		}

		for i := range stale {
			b := &stale[i]

			// Same per-show exclusive access as the booking path, so a
			// sweep cannot race a concurrent attempt on the same show.
			if _, err := r.showRepo.GetByIDForUpdate(tx, b.ShowID); err != nil {
				return fmt.Errorf("reclaim: %w", err)
			}
			if err := r.showRepo.AdjustBookedSeats(tx, b.ShowID, -b.SeatCount); err != nil {
				return fmt.Errorf("reclaim: %w", err)
			}
			if _, err := r.updateStatus(tx, b.ID, StatusPending, StatusFailed); err != nil {
				return fmt.Errorf("reclaim: %w", err)
			}
			b.Status = StatusFailed
		}

		reclaimed = stale
		return nil
	})
	if err != nil {
		return nil, err
	}
	return reclaimed, nil
}

func (r *repository) GetByID(ctx context.Context, id uuid.UUID) (*Booking, error) {
	var booking Booking
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&booking).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBookingNotFound
		}
		return nil, fmt.Errorf("failed to get booking: %w", err)
	}
	return &booking, nil
}

func (r *repository) ListByShow(ctx context.Context, showID uuid.UUID) ([]Booking, error) {
	var result []Booking
	err := r.db.WithContext(ctx).
		Where("show_id = ?", showID).
		Order("created_at ASC").
		Find(&result).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list bookings: %w", err)
	}
	return result, nil
}

// insertReservation records one attempt row inside the enclosing transaction.
func (r *repository) insertReservation(tx *gorm.DB, booking *Booking) error {
	if err := tx.Create(booking).Error; err != nil {
		return fmt.Errorf("failed to insert reservation: %w", err)
	}
	return nil
}

// updateStatus transitions a booking and returns the affected row count.
// The WHERE guard on the current status enforces terminal immutability at
// the store level: a row that already left `from` is never touched.
func (r *repository) updateStatus(tx *gorm.DB, id uuid.UUID, from, to Status) (int64, error) {
	if !from.CanTransitionTo(to) {
		return 0, fmt.Errorf("illegal status transition %s -> %s", from, to)
	}

	res := tx.Model(&Booking{}).
		Where("id = ? AND status = ?", id, from).
		Updates(map[string]interface{}{
			"status":     to,
			"updated_at": time.Now(),
		})
	if res.Error != nil {
		return 0, fmt.Errorf("failed to update reservation status: %w", res.Error)
	}
	return res.RowsAffected, nil
}

// findStaleReservations locks and returns PENDING rows older than the
// threshold, oldest first.
func (r *repository) findStaleReservations(tx *gorm.DB, olderThan time.Time) ([]Booking, error) {
	var stale []Booking
	err := tx.
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("status = ? AND created_at < ?", StatusPending, olderThan).
		Order("created_at ASC").
		Find(&stale).Error
	if err != nil {
		return nil, fmt.Errorf("failed to find stale reservations: %w", err)
	}
	return stale, nil
}

// applyLockTimeout bounds FOR UPDATE waits for this transaction only.
func (r *repository) applyLockTimeout(tx *gorm.DB) error {
	if r.lockTimeout <= 0 {
		return nil
	}
	stmt := fmt.Sprintf("SET LOCAL lock_timeout = '%dms'", r.lockTimeout.Milliseconds())
	if err := tx.Exec(stmt).Error; err != nil {
		return fmt.Errorf("failed to set lock timeout: %w", err)
	}
	return nil
}
