package booking

import (
	"context"

	"github.com/google/uuid"
)

// Repository contains all DB interactions needed by the booking service.
type Repository interface {
	CreateBooking(ctx context.Context, b *Booking) (*Booking, error)
	GetBooking(ctx context.Context, id uuid.UUID) (*Booking, error)
	ListBookingsByPatient(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]Booking, error)

	// For double-booking checks inside the slot lock.
	GetActiveBookingForSlot(ctx context.Context, specialistID uuid.UUID, date, timeValue string) (*Booking, error)

	UpdateBookingStatus(ctx context.Context, id uuid.UUID, from, to BookingStatus) (*Booking, error)

	// Reminder worker: approved bookings whose visit date is the given day.
	ListApprovedForDate(ctx context.Context, date string) ([]Booking, error)
}
