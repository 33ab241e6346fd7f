package booking

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/clinicdesk/clinic-booking/internal/clinic"
)

func TestComputePrice(t *testing.T) {
	consultation := &clinic.AppointmentType{Code: "consultation", BasePrice: 500}
	doctor := &clinic.Specialist{Kind: clinic.KindDoctor, ConsultationFee: 200}

	assert.Equal(t, 700, ComputePrice(consultation, doctor))
	assert.Equal(t, 500, ComputePrice(consultation, nil))
	assert.Equal(t, 200, ComputePrice(nil, doctor))
	assert.Equal(t, 0, ComputePrice(nil, nil))
}

func TestComputePriceIsSumForAnyPair(t *testing.T) {
	bases := []int{0, 150, 500, 1200}
	fees := []int{0, 50, 200, 1000}

	for _, base := range bases {
		for _, fee := range fees {
			tp := &clinic.AppointmentType{BasePrice: base}
			sp := &clinic.Specialist{ConsultationFee: fee}
			assert.Equal(t, base+fee, ComputePrice(tp, sp))
		}
	}
}
