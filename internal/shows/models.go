package shows

import (
	"time"

	"github.com/google/uuid"
)

// Show is the durable ledger row for one bookable show. TotalSeats is fixed
// at creation; BookedSeats is mutated only inside the booking and reclaim
// transactions.
type Show struct {
	ID          uuid.UUID `json:"id" gorm:"type:uuid;default:uuid_generate_v4();primaryKey"`
	Name        string    `json:"name" gorm:"not null;size:255"`
	StartTime   time.Time `json:"start_time" gorm:"not null"`
	TotalSeats  int       `json:"total_seats" gorm:"not null;check:total_seats > 0"`
	BookedSeats int       `json:"booked_seats" gorm:"not null;default:0;check:chk_booked_seats_range,booked_seats >= 0 AND booked_seats <= total_seats"`
	CreatedAt   time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt   time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

// TableName specifies the table name for GORM
func (Show) TableName() string {
	return "shows"
}

// AvailableSeats returns the seats still open for booking.
func (s *Show) AvailableSeats() int {
	available := s.TotalSeats - s.BookedSeats
	if available < 0 {
		available = 0
	}
	return available
}

type CreateShowRequest struct {
	Name       string    `json:"name" binding:"required" validate:"required,min=1,max=255"`
	StartTime  time.Time `json:"start_time" binding:"required" validate:"required"`
	TotalSeats int       `json:"total_seats" binding:"required" validate:"required,min=1,max=1000000"`
}

type ShowResponse struct {
	ID             string    `json:"id"`
	Name           string    `json:"name"`
	StartTime      time.Time `json:"start_time"`
	TotalSeats     int       `json:"total_seats"`
	BookedSeats    int       `json:"booked_seats"`
	AvailableSeats int       `json:"available_seats"`
	CreatedAt      time.Time `json:"created_at"`
}

// ToResponse converts a Show row to its API shape.
func (s *Show) ToResponse() ShowResponse {
	return ShowResponse{
		ID:             s.ID.String(),
		Name:           s.Name,
		StartTime:      s.StartTime,
		TotalSeats:     s.TotalSeats,
		BookedSeats:    s.BookedSeats,
		AvailableSeats: s.AvailableSeats(),
		CreatedAt:      s.CreatedAt,
	}
}
