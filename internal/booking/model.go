package booking

import (
	"time"

	"github.com/google/uuid"

	"github.com/clinicdesk/clinic-booking/internal/availability"
	"github.com/clinicdesk/clinic-booking/internal/clinic"
)

type BookingStatus string

const (
	StatusPendingApproval BookingStatus = "pending_approval"
	StatusApproved        BookingStatus = "approved"
	StatusDeclined        BookingStatus = "declined"
)

// SessionState is derived from which selection fields are populated, so it
// can never disagree with the selection itself.
type SessionState string

const (
	StateEmpty              SessionState = "empty"
	StateTypeSelected       SessionState = "type_selected"
	StateSpecialistSelected SessionState = "specialist_selected"
	StateDateSelected       SessionState = "date_selected"
	StateTimeSelected       SessionState = "time_selected"
)

// Selection is the mutable value a patient builds up while filling in the
// booking form. Price is maintained by the session transitions, never set
// directly.
type Selection struct {
	AppointmentTypeID   *uuid.UUID           `json:"appointment_type_id,omitempty"`
	AppointmentTypeCode string               `json:"appointment_type_code,omitempty"`
	SpecialistID        *uuid.UUID           `json:"specialist_id,omitempty"`
	SpecialistKind      clinic.SpecialistKind `json:"specialist_kind,omitempty"`
	Date                string               `json:"date,omitempty"` // YYYY-MM-DD
	Time                string               `json:"time,omitempty"` // HH:MM
	ChiefComplaint      string               `json:"chief_complaint,omitempty"`
	Notes               string               `json:"notes,omitempty"`
	Price               int                  `json:"price"`
}

// Session is one in-progress booking form, stored in Redis between
// requests. Slots holds the last availability resolution applied to the
// session and SlotsKey the (specialist, date) pair it was resolved for;
// a resolution whose key no longer matches the live selection is stale and
// must be dropped, not applied.
type Session struct {
	ID         uuid.UUID               `json:"id"`
	PatientID  uuid.UUID               `json:"patient_id"`
	Selection  Selection               `json:"selection"`
	Slots      []availability.TimeSlot `json:"slots,omitempty"`
	SlotsKey   string                  `json:"slots_key,omitempty"`
	Processing bool                    `json:"processing"`
	CreatedAt  time.Time               `json:"created_at"`
	UpdatedAt  time.Time               `json:"updated_at"`
}

// Booking is a submitted, persisted appointment request.
type Booking struct {
	ID                uuid.UUID
	PatientID         uuid.UUID
	AppointmentTypeID uuid.UUID
	SpecialistID      uuid.UUID
	SpecialistKind    clinic.SpecialistKind
	Date              string
	Time              string
	ChiefComplaint    string
	Notes             string
	Price             int
	Status            BookingStatus
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// FieldErrors is the per-field validation error map returned by a failed
// submit, keyed by selection field name.
type FieldErrors map[string]string

func (fe FieldErrors) Any() bool { return len(fe) > 0 }
