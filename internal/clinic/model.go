package clinic

import (
	"time"

	"github.com/google/uuid"
)

type SpecialistKind string

const (
	KindDoctor  SpecialistKind = "doctor"
	KindMedtech SpecialistKind = "medtech"
)

// AppointmentType is immutable reference data loaded once per session.
// Code is the stable identity used by the eligibility table; BasePrice is
// in whole pesos.
type AppointmentType struct {
	ID        uuid.UUID
	Code      string
	Name      string
	BasePrice int
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Specialist is a doctor or medical technologist who can be assigned to an
// appointment. Kind determines which roster the specialist belongs to.
type Specialist struct {
	ID              uuid.UUID
	Name            string
	Specialization  *string
	ConsultationFee int
	IsAvailable     bool
	Kind            SpecialistKind
	CreatedAt       time.Time
	UpdatedAt       time.Time
}
