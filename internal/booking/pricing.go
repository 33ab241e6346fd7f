package booking

import "github.com/clinicdesk/clinic-booking/internal/clinic"

// ComputePrice returns the total charge for a selection: base price of the
// appointment type plus the chosen specialist's consultation fee. Either
// operand may be nil and counts as zero, so the price is always defined no
// matter how far the form has progressed.
func ComputePrice(t *clinic.AppointmentType, s *clinic.Specialist) int {
	price := 0
	if t != nil {
		price += t.BasePrice
	}
	if s != nil {
		price += s.ConsultationFee
	}
	return price
}
