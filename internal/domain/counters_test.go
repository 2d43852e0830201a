package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoanCounters_RecordClassified(t *testing.T) {
	tests := []struct {
		status  PaymentStatus
		onTime  int
		late    int
		partial int
	}{
		{status: PaymentStatusOnTime, onTime: 1},
		{status: PaymentStatusLate, late: 1},
		{status: PaymentStatusPartial, partial: 1},
		{status: PaymentStatusLateAndPartial, late: 1, partial: 1},
		{status: PaymentStatusOutOfTime},
		{status: PaymentStatusOutOfTimeAndPartial, partial: 1},
	}

	for _, tt := range tests {
		t.Run(string(tt.status), func(t *testing.T) {
			var c LoanCounters
			c.RecordClassified(tt.status)

			assert.Equal(t, tt.onTime, c.PaymentsOnTime)
			assert.Equal(t, tt.late, c.PaymentsLate)
			assert.Equal(t, tt.partial, c.PaymentsPartial)
			// a partial payment never counts as on time
			if tt.status.IsPartial() {
				assert.Zero(t, c.PaymentsOnTime)
			}
		})
	}
}

func TestLoanCounters_RecordOnTimeN(t *testing.T) {
	var c LoanCounters
	c.RecordOnTimeN(4)
	c.RecordOnTimeN(-1)
	assert.Equal(t, 4, c.PaymentsOnTime)
}

func TestArrearsState(t *testing.T) {
	installment := dec("1000")
	var a ArrearsState

	a.RecordMiss(installment)
	a.RecordMiss(installment)
	a.RecordMiss(installment)
	assert.Equal(t, 3, a.UnpaidArrearsCount)
	assert.Equal(t, 3, a.ConsecutiveArrearsWeeks)
	assert.True(t, a.UnpaidArrearsAmount.Equal(dec("3000")))

	assert.Equal(t, 2, a.Clear(2, installment))
	assert.Equal(t, 1, a.UnpaidArrearsCount)
	assert.Equal(t, 3, a.ConsecutiveArrearsWeeks)
	assert.True(t, a.UnpaidArrearsAmount.Equal(dec("1000")))

	a.ResolveOne(installment)
	assert.False(t, a.HasArrears())
	assert.Equal(t, 0, a.ConsecutiveArrearsWeeks)
	assert.True(t, a.UnpaidArrearsAmount.IsZero())

	// floors at zero
	a.ResolveOne(installment)
	assert.Equal(t, 0, a.UnpaidArrearsCount)
	assert.True(t, a.UnpaidArrearsAmount.IsZero())
	assert.Equal(t, 0, a.Clear(5, installment))
}

func TestComposeStatus(t *testing.T) {
	assert.Equal(t, PaymentStatusOnTime, ComposeStatus(false, false, false))
	assert.Equal(t, PaymentStatusLate, ComposeStatus(true, false, false))
	assert.Equal(t, PaymentStatusPartial, ComposeStatus(false, false, true))
	assert.Equal(t, PaymentStatusLateAndPartial, ComposeStatus(true, false, true))
	assert.Equal(t, PaymentStatusOutOfTime, ComposeStatus(true, true, false))
	assert.Equal(t, PaymentStatusOutOfTimeAndPartial, ComposeStatus(false, true, true))
}
