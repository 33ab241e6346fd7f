package clinic

// kindForType is the single source of truth for which roster serves each
// appointment type. Both the eligibility filter and the booking session
// consult this table; there is deliberately no second copy anywhere.
var kindForType = map[string]SpecialistKind{
	"consultation": KindDoctor,
	"checkup":      KindDoctor,
	"xray":         KindDoctor,
	"ultrasound":   KindDoctor,
	"fecalysis":    KindMedtech,
	"cbc":          KindMedtech,
	"urinalysis":   KindMedtech,
	"lab_test":     KindMedtech,
}

// KindFor returns the specialist kind required by an appointment type code.
// Unknown codes report ok=false; callers must treat that as "no eligible
// specialists", not as a doctor fallback.
func KindFor(code string) (SpecialistKind, bool) {
	k, ok := kindForType[code]
	return k, ok
}

// EligibleSpecialists returns the specialists allowed to serve the given
// appointment type: the roster the type maps to, minus anyone currently
// unavailable. Roster order is preserved. A nil type or a code missing from
// the table yields an empty slice.
func EligibleSpecialists(t *AppointmentType, doctors, medtechs []Specialist) []Specialist {
	if t == nil {
		return nil
	}

	kind, ok := KindFor(t.Code)
	if !ok {
		return nil
	}

	var roster []Specialist
	switch kind {
	case KindDoctor:
		roster = doctors
	case KindMedtech:
		roster = medtechs
	}

	eligible := make([]Specialist, 0, len(roster))
	for _, s := range roster {
		if s.IsAvailable {
			eligible = append(eligible, s)
		}
	}
	return eligible
}
