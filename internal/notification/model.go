package notification

import (
	"time"

	"github.com/google/uuid"
)

// Notification is one entry in a user's dashboard feed. Data carries
// type-specific extras (booking id, visit date) the UI may link through.
type Notification struct {
	ID        uuid.UUID      `json:"id"`
	UserID    uuid.UUID      `json:"user_id"`
	Type      string         `json:"type"`
	Title     string         `json:"title"`
	Message   string         `json:"message"`
	Read      bool           `json:"read"`
	Data      map[string]any `json:"data,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
}

// Well-known notification types.
const (
	TypeBookingReceived = "booking_received"
	TypeBookingApproved = "booking_approved"
	TypeBookingDeclined = "booking_declined"
	TypeVisitReminder   = "visit_reminder"
)
