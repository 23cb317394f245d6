package orders

import "strconv"

const (
	TopicOrderCreated     = "order.created"
	TopicPaymentCompleted = "order.payment.completed"
	TopicOrderSettled     = "order.settled"
)

// Partition key = order_id, supaya event untuk satu order tetap berurutan.
func PartitionKey(orderID int64) []byte {
	return []byte(strconv.FormatInt(orderID, 10))
}
