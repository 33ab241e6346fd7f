package clinic

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

var (
	ErrAppointmentTypeNotFound = errors.New("appointment type not found")
	ErrSpecialistNotFound      = errors.New("specialist not found")
)

// Repository serves the immutable reference data the booking flow needs.
type Repository interface {
	ListAppointmentTypes(ctx context.Context) ([]AppointmentType, error)
	GetAppointmentType(ctx context.Context, id uuid.UUID) (*AppointmentType, error)

	// Rosters in backend insertion order; the filter must not re-sort.
	ListSpecialists(ctx context.Context, kind SpecialistKind) ([]Specialist, error)
	GetSpecialist(ctx context.Context, id uuid.UUID) (*Specialist, error)
}
