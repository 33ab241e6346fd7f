package booking

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clinicdesk/clinic-booking/internal/availability"
	"github.com/clinicdesk/clinic-booking/internal/clinic"
)

var (
	testConsultation = &clinic.AppointmentType{ID: uuid.New(), Code: "consultation", Name: "Consultation", BasePrice: 500}
	testLabTest      = &clinic.AppointmentType{ID: uuid.New(), Code: "lab_test", Name: "Lab Test", BasePrice: 300}
)

func testDoctor(fee int) *clinic.Specialist {
	return &clinic.Specialist{ID: uuid.New(), Name: "Dr. Cruz", Kind: clinic.KindDoctor, ConsultationFee: fee, IsAvailable: true}
}

func testMedtech(fee int) *clinic.Specialist {
	return &clinic.Specialist{ID: uuid.New(), Name: "MT Reyes", Kind: clinic.KindMedtech, ConsultationFee: fee, IsAvailable: true}
}

// advance walks a session to the time-selected state.
func advance(t *testing.T, sess *Session, at *clinic.AppointmentType, sp *clinic.Specialist, date, timeValue string) {
	t.Helper()

	sess.ApplyType(at)
	require.NoError(t, sess.ApplySpecialist(at, sp))
	require.NoError(t, sess.ApplyDate(date))

	key := availability.Key(sp.ID, date)
	require.True(t, sess.ApplySlots(key, []availability.TimeSlot{{Value: timeValue, Label: timeValue}}))
	require.NoError(t, sess.ApplyTime(timeValue))
}

func TestNewSessionIsEmpty(t *testing.T) {
	sess := NewSession(uuid.New())

	assert.Equal(t, StateEmpty, sess.State())
	assert.Equal(t, 0, sess.Selection.Price)
	assert.False(t, sess.Processing)
}

func TestApplyTypeSetsBasePrice(t *testing.T) {
	sess := NewSession(uuid.New())
	sess.ApplyType(testConsultation)

	assert.Equal(t, StateTypeSelected, sess.State())
	assert.Equal(t, 500, sess.Selection.Price)
	assert.Equal(t, "consultation", sess.Selection.AppointmentTypeCode)
}

func TestApplySpecialistAddsFee(t *testing.T) {
	sess := NewSession(uuid.New())
	sess.ApplyType(testConsultation)

	doc := testDoctor(200)
	require.NoError(t, sess.ApplySpecialist(testConsultation, doc))

	assert.Equal(t, 700, sess.Selection.Price)
	assert.Equal(t, clinic.KindDoctor, sess.Selection.SpecialistKind)
}

func TestApplySpecialistRejectsWrongKind(t *testing.T) {
	sess := NewSession(uuid.New())
	sess.ApplyType(testLabTest)

	err := sess.ApplySpecialist(testLabTest, testDoctor(200))
	assert.ErrorIs(t, err, ErrSpecialistNotEligible)

	require.NoError(t, sess.ApplySpecialist(testLabTest, testMedtech(100)))
	assert.Equal(t, 400, sess.Selection.Price)
}

func TestApplySpecialistRejectsUnavailable(t *testing.T) {
	sess := NewSession(uuid.New())
	sess.ApplyType(testConsultation)

	doc := testDoctor(200)
	doc.IsAvailable = false
	assert.ErrorIs(t, sess.ApplySpecialist(testConsultation, doc), ErrSpecialistNotEligible)
}

// Changing the appointment type always resets specialist, date, and time,
// no matter how far along the form was.
func TestApplyTypeResetsDownstream(t *testing.T) {
	sess := NewSession(uuid.New())
	advance(t, sess, testConsultation, testDoctor(200), "2025-06-02", "09:00")
	require.Equal(t, StateTimeSelected, sess.State())

	sess.ApplyType(testLabTest)

	assert.Nil(t, sess.Selection.SpecialistID)
	assert.Empty(t, sess.Selection.SpecialistKind)
	assert.Empty(t, sess.Selection.Date)
	assert.Empty(t, sess.Selection.Time)
	assert.Empty(t, sess.Slots)
	assert.Equal(t, 300, sess.Selection.Price)
	assert.Equal(t, StateTypeSelected, sess.State())
}

func TestApplyDateClearsTime(t *testing.T) {
	sess := NewSession(uuid.New())
	sp := testDoctor(200)
	advance(t, sess, testConsultation, sp, "2025-06-02", "09:00")

	require.NoError(t, sess.ApplyDate("2025-06-03"))

	assert.Empty(t, sess.Selection.Time)
	assert.Empty(t, sess.Slots, "slots from the old date must not survive")
	assert.Equal(t, StateDateSelected, sess.State())
}

func TestApplySpecialistKeepsDateDropsSlots(t *testing.T) {
	sess := NewSession(uuid.New())
	advance(t, sess, testConsultation, testDoctor(200), "2025-06-02", "09:00")

	require.NoError(t, sess.ApplySpecialist(testConsultation, testDoctor(300)))

	assert.Equal(t, "2025-06-02", sess.Selection.Date)
	assert.Empty(t, sess.Selection.Time)
	assert.Empty(t, sess.Slots, "old specialist's slots must be re-resolved")
	assert.Equal(t, 800, sess.Selection.Price)
}

// A resolution for a pair the user has already moved past must be dropped,
// regardless of when it arrives.
func TestApplySlotsRejectsStaleKey(t *testing.T) {
	sess := NewSession(uuid.New())
	sp := testDoctor(200)
	sess.ApplyType(testConsultation)
	require.NoError(t, sess.ApplySpecialist(testConsultation, sp))
	require.NoError(t, sess.ApplyDate("2025-06-02"))

	staleKey := availability.Key(sp.ID, "2025-06-01")
	applied := sess.ApplySlots(staleKey, []availability.TimeSlot{{Value: "10:00", Label: "10:00 AM"}})

	assert.False(t, applied)
	assert.Empty(t, sess.Slots)

	currentKey := availability.Key(sp.ID, "2025-06-02")
	assert.True(t, sess.ApplySlots(currentKey, []availability.TimeSlot{{Value: "11:00", Label: "11:00 AM"}}))
	assert.Len(t, sess.Slots, 1)
}

func TestApplyTimeRequiresResolvedSlot(t *testing.T) {
	sess := NewSession(uuid.New())
	sp := testDoctor(200)
	sess.ApplyType(testConsultation)
	require.NoError(t, sess.ApplySpecialist(testConsultation, sp))
	require.NoError(t, sess.ApplyDate("2025-06-02"))

	assert.ErrorIs(t, sess.ApplyTime("09:00"), ErrSlotsNotResolved)

	key := availability.Key(sp.ID, "2025-06-02")
	require.True(t, sess.ApplySlots(key, []availability.TimeSlot{{Value: "09:00", Label: "9:00 AM"}}))

	assert.ErrorIs(t, sess.ApplyTime("09:30"), ErrTimeNotAvailable)
	assert.NoError(t, sess.ApplyTime("09:00"))
	assert.Equal(t, StateTimeSelected, sess.State())
}

func TestValidateReportsMissingFields(t *testing.T) {
	sess := NewSession(uuid.New())

	fe := sess.Validate()
	assert.True(t, fe.Any())
	assert.Contains(t, fe, "appointment_type_id")
	assert.Contains(t, fe, "specialist_id")
	assert.Contains(t, fe, "date")
	assert.Contains(t, fe, "time")
	assert.Contains(t, fe, "chief_complaint")

	advance(t, sess, testConsultation, testDoctor(200), "2025-06-02", "09:00")
	sess.ApplyDetails("fever and cough", "")

	assert.False(t, sess.Validate().Any())
}

func TestResetReturnsToEmpty(t *testing.T) {
	sess := NewSession(uuid.New())
	advance(t, sess, testConsultation, testDoctor(200), "2025-06-02", "09:00")
	sess.ApplyDetails("fever", "three days now")
	sess.Processing = true

	sess.Reset()

	assert.Equal(t, StateEmpty, sess.State())
	assert.Equal(t, Selection{}, sess.Selection)
	assert.False(t, sess.Processing)
	assert.Empty(t, sess.Slots)
}
