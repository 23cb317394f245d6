package orders

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatusIsFinal(t *testing.T) {
	assert.True(t, StatusDelivered.IsFinal())
	assert.True(t, StatusCancelled.IsFinal())

	for _, s := range []Status{StatusPending, StatusConfirmed, StatusProcessing, StatusShipped} {
		assert.False(t, s.IsFinal(), "status %s", s)
	}
}

func TestValidStatus(t *testing.T) {
	assert.True(t, ValidStatus(StatusPending))
	assert.True(t, ValidStatus(StatusCancelled))
	assert.False(t, ValidStatus(Status("UNKNOWN")))
	assert.False(t, ValidStatus(Status("")))
}

func TestValidPaymentStatus(t *testing.T) {
	assert.True(t, ValidPaymentStatus(PaymentPending))
	assert.True(t, ValidPaymentStatus(PaymentRefunded))
	assert.False(t, ValidPaymentStatus(PaymentStatus("PAID")))
}
