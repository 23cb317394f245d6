package orders

type Status string

const (
	StatusPending    Status = "PENDING"
	StatusConfirmed  Status = "CONFIRMED"
	StatusProcessing Status = "PROCESSING"
	StatusShipped    Status = "SHIPPED"
	StatusDelivered  Status = "DELIVERED"
	StatusCancelled  Status = "CANCELLED"
)

var validStatus = map[Status]bool{
	StatusPending:    true,
	StatusConfirmed:  true,
	StatusProcessing: true,
	StatusShipped:    true,
	StatusDelivered:  true,
	StatusCancelled:  true,
}

func ValidStatus(s Status) bool { return validStatus[s] }

// IsFinal: DELIVERED dan CANCELLED adalah status absorbing; order tidak
// boleh dimutasi lagi, termasuk oleh transisi pelunasan otomatis.
func (s Status) IsFinal() bool {
	return s == StatusDelivered || s == StatusCancelled
}

type PaymentStatus string

const (
	PaymentPending   PaymentStatus = "PENDING"
	PaymentCompleted PaymentStatus = "COMPLETED"
	PaymentFailed    PaymentStatus = "FAILED"
	PaymentRefunded  PaymentStatus = "REFUNDED"
)

var validPaymentStatus = map[PaymentStatus]bool{
	PaymentPending:   true,
	PaymentCompleted: true,
	PaymentFailed:    true,
	PaymentRefunded:  true,
}

func ValidPaymentStatus(s PaymentStatus) bool { return validPaymentStatus[s] }
