package clinic

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func makeRoster(kind SpecialistKind, available ...bool) []Specialist {
	roster := make([]Specialist, 0, len(available))
	for i, a := range available {
		roster = append(roster, Specialist{
			ID:          uuid.New(),
			Name:        string(kind) + "-" + string(rune('a'+i)),
			Kind:        kind,
			IsAvailable: a,
		})
	}
	return roster
}

func TestKindForKnownTypes(t *testing.T) {
	for _, code := range []string{"consultation", "checkup", "xray", "ultrasound"} {
		kind, ok := KindFor(code)
		assert.True(t, ok, code)
		assert.Equal(t, KindDoctor, kind, code)
	}
	for _, code := range []string{"fecalysis", "cbc", "urinalysis", "lab_test"} {
		kind, ok := KindFor(code)
		assert.True(t, ok, code)
		assert.Equal(t, KindMedtech, kind, code)
	}
}

func TestKindForUnknownType(t *testing.T) {
	_, ok := KindFor("massage")
	assert.False(t, ok)
}

func TestEligibleSpecialistsDoctorType(t *testing.T) {
	doctors := makeRoster(KindDoctor, true, false, true)
	medtechs := makeRoster(KindMedtech, true)

	consultation := &AppointmentType{ID: uuid.New(), Code: "consultation", Name: "Consultation", BasePrice: 500}
	eligible := EligibleSpecialists(consultation, doctors, medtechs)

	assert.Len(t, eligible, 2)
	assert.Equal(t, doctors[0].ID, eligible[0].ID)
	assert.Equal(t, doctors[2].ID, eligible[1].ID)
	for _, s := range eligible {
		assert.Equal(t, KindDoctor, s.Kind)
		assert.True(t, s.IsAvailable)
	}
}

func TestEligibleSpecialistsLabType(t *testing.T) {
	doctors := makeRoster(KindDoctor, true, true)
	medtechs := makeRoster(KindMedtech, false, true, true)

	labTest := &AppointmentType{ID: uuid.New(), Code: "lab_test", Name: "Lab Test", BasePrice: 300}
	eligible := EligibleSpecialists(labTest, doctors, medtechs)

	assert.Len(t, eligible, 2)
	for _, s := range eligible {
		assert.Equal(t, KindMedtech, s.Kind)
		assert.True(t, s.IsAvailable)
	}
}

func TestEligibleSpecialistsPreservesRosterOrder(t *testing.T) {
	doctors := makeRoster(KindDoctor, true, true, true, true)

	consultation := &AppointmentType{Code: "consultation"}
	eligible := EligibleSpecialists(consultation, doctors, nil)

	for i := range eligible {
		assert.Equal(t, doctors[i].ID, eligible[i].ID)
	}
}

// An appointment type the table does not know yields nobody. The empty
// result is deliberate: the form shows no candidates instead of guessing a
// roster.
func TestEligibleSpecialistsUnknownTypeIsEmpty(t *testing.T) {
	doctors := makeRoster(KindDoctor, true, true)
	medtechs := makeRoster(KindMedtech, true)

	unknown := &AppointmentType{ID: uuid.New(), Code: "acupuncture"}
	assert.Empty(t, EligibleSpecialists(unknown, doctors, medtechs))
	assert.Empty(t, EligibleSpecialists(nil, doctors, medtechs))
}
