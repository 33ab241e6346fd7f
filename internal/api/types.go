package api

import (
	"time"

	"github.com/google/uuid"

	"github.com/clinicdesk/clinic-booking/internal/availability"
	"github.com/clinicdesk/clinic-booking/internal/booking"
	"github.com/clinicdesk/clinic-booking/internal/clinic"
	"github.com/clinicdesk/clinic-booking/internal/notification"
)

type StartSessionRequest struct {
	PatientID string `json:"patient_id"`
}

type SelectTypeRequest struct {
	AppointmentTypeID string `json:"appointment_type_id"`
}

type SelectSpecialistRequest struct {
	SpecialistID string `json:"specialist_id"`
}

type SelectDateRequest struct {
	Date string `json:"date"`
}

type SelectTimeRequest struct {
	Time string `json:"time"`
}

type DetailsRequest struct {
	ChiefComplaint string `json:"chief_complaint"`
	Notes          string `json:"notes"`
}

type AppointmentTypeResponse struct {
	ID        uuid.UUID `json:"id"`
	Code      string    `json:"code"`
	Name      string    `json:"name"`
	BasePrice int       `json:"base_price"`
}

type SpecialistResponse struct {
	ID              uuid.UUID `json:"id"`
	Name            string    `json:"name"`
	Specialization  *string   `json:"specialization,omitempty"`
	ConsultationFee int       `json:"consultation_fee"`
	Kind            string    `json:"kind"`
}

type BookingOptionsResponse struct {
	AppointmentTypes []AppointmentTypeResponse `json:"appointment_types"`
	Doctors          []SpecialistResponse      `json:"doctors"`
	Medtechs         []SpecialistResponse      `json:"medtechs"`
}

type SessionResponse struct {
	ID        uuid.UUID               `json:"id"`
	PatientID uuid.UUID               `json:"patient_id"`
	State     string                  `json:"state"`
	Selection booking.Selection       `json:"selection"`
	Slots     []availability.TimeSlot `json:"slots"`
	UpdatedAt time.Time               `json:"updated_at"`
}

type BookingResponse struct {
	ID                uuid.UUID `json:"id"`
	PatientID         uuid.UUID `json:"patient_id"`
	AppointmentTypeID uuid.UUID `json:"appointment_type_id"`
	SpecialistID      uuid.UUID `json:"specialist_id"`
	SpecialistKind    string    `json:"specialist_kind"`
	Date              string    `json:"date"`
	Time              string    `json:"time"`
	ChiefComplaint    string    `json:"chief_complaint,omitempty"`
	Notes             string    `json:"notes,omitempty"`
	Price             int       `json:"price"`
	Status            string    `json:"status"`
	CreatedAt         time.Time `json:"created_at"`
}

type SnapshotResponse struct {
	Notifications []notification.Notification `json:"notifications"`
	UnreadCount   int                         `json:"unread_count"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

type FieldErrorResponse struct {
	Error  string            `json:"error"`
	Fields map[string]string `json:"fields"`
}

func toTypeResponse(t clinic.AppointmentType) AppointmentTypeResponse {
	return AppointmentTypeResponse{
		ID:        t.ID,
		Code:      t.Code,
		Name:      t.Name,
		BasePrice: t.BasePrice,
	}
}

func toSpecialistResponses(specialists []clinic.Specialist) []SpecialistResponse {
	out := make([]SpecialistResponse, 0, len(specialists))
	for _, s := range specialists {
		out = append(out, SpecialistResponse{
			ID:              s.ID,
			Name:            s.Name,
			Specialization:  s.Specialization,
			ConsultationFee: s.ConsultationFee,
			Kind:            string(s.Kind),
		})
	}
	return out
}

func toSessionResponse(s *booking.Session) SessionResponse {
	slots := s.Slots
	if slots == nil {
		slots = []availability.TimeSlot{}
	}
	return SessionResponse{
		ID:        s.ID,
		PatientID: s.PatientID,
		State:     string(s.State()),
		Selection: s.Selection,
		Slots:     slots,
		UpdatedAt: s.UpdatedAt,
	}
}

func toBookingResponse(b *booking.Booking) BookingResponse {
	return BookingResponse{
		ID:                b.ID,
		PatientID:         b.PatientID,
		AppointmentTypeID: b.AppointmentTypeID,
		SpecialistID:      b.SpecialistID,
		SpecialistKind:    string(b.SpecialistKind),
		Date:              b.Date,
		Time:              b.Time,
		ChiefComplaint:    b.ChiefComplaint,
		Notes:             b.Notes,
		Price:             b.Price,
		Status:            string(b.Status),
		CreatedAt:         b.CreatedAt,
	}
}
