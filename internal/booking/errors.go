package booking

import "errors"

var (
	ErrSessionNotFound       = errors.New("booking session not found")
	ErrNoTypeSelected        = errors.New("no appointment type selected")
	ErrNoDateSelected        = errors.New("specialist and date must be selected first")
	ErrSlotsNotResolved      = errors.New("slots not resolved for the current specialist and date")
	ErrTimeNotAvailable      = errors.New("time is not among the available slots")
	ErrSpecialistNotEligible = errors.New("specialist is not eligible for the appointment type")
	ErrSubmitInFlight        = errors.New("submit already in progress")
	ErrSlotTaken             = errors.New("slot was booked by someone else, pick another time")
	ErrBookingNotFound       = errors.New("booking not found")
	ErrInvalidStatusChange   = errors.New("invalid booking status change")
)

// ValidationError carries the per-field error map of a rejected submit so
// handlers can render inline messages without losing entered data.
type ValidationError struct {
	Fields FieldErrors
}

func (e *ValidationError) Error() string { return "booking selection is incomplete" }
