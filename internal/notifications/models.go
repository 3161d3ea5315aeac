package notifications

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// BookingEventType labels the booking lifecycle transitions published to Kafka.
type BookingEventType string

const (
	BookingEventConfirmed BookingEventType = "BOOKING_CONFIRMED"
	BookingEventFailed    BookingEventType = "BOOKING_FAILED"
	BookingEventReclaimed BookingEventType = "SEATS_RECLAIMED"
)

// BookingEvent is the wire payload for one booking lifecycle transition.
// Consumers (mailers, dashboards) are outside this service.
type BookingEvent struct {
	ID        uuid.UUID        `json:"id"`
	Type      BookingEventType `json:"type"`
	ShowID    uuid.UUID        `json:"show_id"`
	BookingID uuid.UUID        `json:"booking_id"`
	SeatCount int              `json:"seat_count"`
	CreatedAt time.Time        `json:"created_at"`
}

// NewBookingEvent builds an event for one booking transition.
func NewBookingEvent(eventType BookingEventType, showID, bookingID uuid.UUID, seatCount int) *BookingEvent {
	return &BookingEvent{
		ID:        uuid.New(),
		Type:      eventType,
		ShowID:    showID,
		BookingID: bookingID,
		SeatCount: seatCount,
		CreatedAt: time.Now(),
	}
}

// ToJSON serializes the event for the message value.
func (e *BookingEvent) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

// PartitionKey routes all events of one show to the same partition, so
// consumers see a show's transitions in order.
func (e *BookingEvent) PartitionKey() string {
	return e.ShowID.String()
}
