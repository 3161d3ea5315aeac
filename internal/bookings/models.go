package bookings

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Booking is one reservation attempt against a show. A durable PENDING row
// always has its seats already counted in the show's booked_seats (the
// optimistic hold); the finalize step or the expiry reclaimer resolves it.
type Booking struct {
	ID        uuid.UUID `json:"id" gorm:"type:uuid;default:uuid_generate_v4();primaryKey"`
	ShowID    uuid.UUID `json:"show_id" gorm:"type:uuid;index;not null"`
	SeatCount int       `json:"seat_count" gorm:"not null;check:seat_count > 0"`
	Status    Status    `json:"status" gorm:"type:varchar(20);not null;check:status IN ('PENDING', 'CONFIRMED', 'FAILED');default:'PENDING'"`
	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime;index"`
	UpdatedAt time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

// TableName specifies the table name for GORM
func (Booking) TableName() string {
	return "bookings"
}

// IsConfirmed reports whether the booking holds its seats permanently.
func (b *Booking) IsConfirmed() bool {
	return b.Status == StatusConfirmed
}

// Age returns how long ago the attempt was created.
func (b *Booking) Age(now time.Time) time.Duration {
	return now.Sub(b.CreatedAt)
}

type BookSeatsRequest struct {
	ShowID    string `json:"show_id" binding:"required" validate:"required,uuid"`
	SeatCount int    `json:"seat_count" binding:"required" validate:"required,min=1"`
}

type BookingResponse struct {
	ID        string    `json:"id"`
	ShowID    string    `json:"show_id"`
	SeatCount int       `json:"seat_count"`
	Status    Status    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// BookingAttemptResponse is the result of one booking attempt: an oversell
// is a normal response carrying a FAILED booking, not an API error.
type BookingAttemptResponse struct {
	Message string          `json:"message"`
	Booking BookingResponse `json:"booking"`
}

// ToResponse converts a Booking row to its API shape.
func (b *Booking) ToResponse() BookingResponse {
	return BookingResponse{
		ID:        b.ID.String(),
		ShowID:    b.ShowID.String(),
		SeatCount: b.SeatCount,
		Status:    b.Status,
		CreatedAt: b.CreatedAt,
		UpdatedAt: b.UpdatedAt,
	}
}

// ToAttemptResponse wraps the booking with the outcome message the
// presentation layer shows verbatim.
func (b *Booking) ToAttemptResponse() BookingAttemptResponse {
	return BookingAttemptResponse{
		Message: fmt.Sprintf("Booking %s", b.Status),
		Booking: b.ToResponse(),
	}
}
