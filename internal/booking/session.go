package booking

import (
	"time"

	"github.com/google/uuid"

	"github.com/clinicdesk/clinic-booking/internal/availability"
	"github.com/clinicdesk/clinic-booking/internal/clinic"
)

// NewSession starts an empty booking form for a patient.
func NewSession(patientID uuid.UUID) *Session {
	now := time.Now().UTC()
	return &Session{
		ID:        uuid.New(),
		PatientID: patientID,
		Selection: Selection{},
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// State reports how far the form has progressed.
func (s *Session) State() SessionState {
	sel := s.Selection
	switch {
	case sel.AppointmentTypeID == nil:
		return StateEmpty
	case sel.SpecialistID == nil:
		return StateTypeSelected
	case sel.Date == "":
		return StateSpecialistSelected
	case sel.Time == "":
		return StateDateSelected
	default:
		return StateTimeSelected
	}
}

// ApplyType records the chosen appointment type. A new type may change the
// eligible roster, so every downstream selection (specialist, date, time,
// resolved slots) is invalidated and the price falls back to the base price.
func (s *Session) ApplyType(t *clinic.AppointmentType) {
	id := t.ID
	s.Selection.AppointmentTypeID = &id
	s.Selection.AppointmentTypeCode = t.Code
	s.Selection.SpecialistID = nil
	s.Selection.SpecialistKind = ""
	s.Selection.Date = ""
	s.Selection.Time = ""
	s.Selection.Price = ComputePrice(t, nil)
	s.dropSlots()
	s.touch()
}

// ApplySpecialist records the chosen specialist and recomputes the price.
// The date survives a specialist change, but any resolved slots belong to
// the old specialist and are dropped so the next date interaction
// re-resolves. The chosen time is specialist-relative and is cleared.
func (s *Session) ApplySpecialist(t *clinic.AppointmentType, sp *clinic.Specialist) error {
	if s.Selection.AppointmentTypeID == nil {
		return ErrNoTypeSelected
	}

	required, ok := clinic.KindFor(t.Code)
	if !ok || sp.Kind != required {
		return ErrSpecialistNotEligible
	}
	if !sp.IsAvailable {
		return ErrSpecialistNotEligible
	}

	id := sp.ID
	s.Selection.SpecialistID = &id
	s.Selection.SpecialistKind = sp.Kind
	s.Selection.Time = ""
	s.Selection.Price = ComputePrice(t, sp)
	s.dropSlots()
	s.touch()
	return nil
}

// ApplyDate records the visit date and clears the chosen time, which was
// only valid for the previous (specialist, date) pair.
func (s *Session) ApplyDate(date string) error {
	if s.Selection.AppointmentTypeID == nil {
		return ErrNoTypeSelected
	}

	s.Selection.Date = date
	s.Selection.Time = ""
	s.dropSlots()
	s.touch()
	return nil
}

// ApplyTime records the chosen slot. The time must come from the slots
// resolved for the current (specialist, date) pair.
func (s *Session) ApplyTime(value string) error {
	if s.Selection.SpecialistID == nil || s.Selection.Date == "" {
		return ErrNoDateSelected
	}
	if s.SlotsKey != s.slotKey() {
		return ErrSlotsNotResolved
	}

	for _, slot := range s.Slots {
		if slot.Value == value {
			s.Selection.Time = value
			s.touch()
			return nil
		}
	}
	return ErrTimeNotAvailable
}

// ApplyDetails records the free-text fields; no downstream resets.
func (s *Session) ApplyDetails(chiefComplaint, notes string) {
	s.Selection.ChiefComplaint = chiefComplaint
	s.Selection.Notes = notes
	s.touch()
}

// ApplySlots attaches a slot resolution to the session. Resolutions carry
// the (specialist, date) key they were requested for; if the selection has
// moved on since the request was issued the resolution is stale and is
// discarded (last request wins by key, not by arrival order).
func (s *Session) ApplySlots(key string, slots []availability.TimeSlot) bool {
	if key != s.slotKey() {
		return false
	}
	s.Slots = slots
	s.SlotsKey = key
	s.touch()
	return true
}

// slotKey is the cache/guard key for the current (specialist, date) pair,
// empty when either half is missing.
func (s *Session) slotKey() string {
	if s.Selection.SpecialistID == nil || s.Selection.Date == "" {
		return ""
	}
	return availability.Key(*s.Selection.SpecialistID, s.Selection.Date)
}

// SlotKey exposes the current resolution key for the resolver call.
func (s *Session) SlotKey() (specialistID uuid.UUID, date string, ok bool) {
	if s.Selection.SpecialistID == nil || s.Selection.Date == "" {
		return uuid.Nil, "", false
	}
	return *s.Selection.SpecialistID, s.Selection.Date, true
}

// Validate reports the per-field problems that block submission.
func (s *Session) Validate() FieldErrors {
	fe := FieldErrors{}
	sel := s.Selection

	if sel.AppointmentTypeID == nil {
		fe["appointment_type_id"] = "appointment type is required"
	}
	if sel.SpecialistID == nil {
		fe["specialist_id"] = "specialist is required"
	}
	if sel.Date == "" {
		fe["date"] = "date is required"
	}
	if sel.Time == "" {
		fe["time"] = "time is required"
	}
	if sel.ChiefComplaint == "" {
		fe["chief_complaint"] = "chief complaint is required"
	}

	return fe
}

// Reset returns the session to the empty state after a successful submit.
// Entered data survives a failed submit; only success clears it.
func (s *Session) Reset() {
	s.Selection = Selection{}
	s.Processing = false
	s.dropSlots()
	s.touch()
}

func (s *Session) dropSlots() {
	s.Slots = nil
	s.SlotsKey = ""
}

func (s *Session) touch() {
	s.UpdatedAt = time.Now().UTC()
}
