package orders

import (
	"time"

	"github.com/google/uuid"
	kafkago "github.com/segmentio/kafka-go"

	kafkax "github.com/ariefcatur/sparepart-backend/internal/kafka"
)

// Publisher mem-publish event lifecycle order. Nil Publisher berarti
// event dimatikan; semua method aman dipanggil pada nil receiver.
type Publisher struct {
	Created   *kafkax.Producer
	Completed *kafkax.Producer
	Settled   *kafkax.Producer
	Service   string
}

func (p *Publisher) publish(prod *kafkax.Producer, orderID int64, eventType string, payload any) {
	if p == nil || prod == nil {
		return
	}
	ev := Envelope{
		EventID:       uuid.NewString(),
		EventType:     eventType,
		EventVersion:  1,
		OccurredAt:    time.Now().UTC(),
		Producer:      p.Service,
		CorrelationID: string(PartitionKey(orderID)),
		Payload:       kafkax.MustMarshal(payload),
	}
	prod.Publish(PartitionKey(orderID), kafkax.MustMarshal(ev),
		kafkago.Header{Key: "x-event-type", Value: []byte(eventType)},
		kafkago.Header{Key: "x-event-version", Value: []byte("1")},
	)
}

func (p *Publisher) OrderCreated(o *OrderWithDetails) {
	lines := make([]ItemLine, 0, len(o.Items))
	for _, it := range o.Items {
		lines = append(lines, ItemLine{
			ProductID: it.ProductID,
			Quantity:  it.Quantity,
			Price:     it.Price,
			Subtotal:  it.Subtotal,
		})
	}
	p.publish(p.Created, o.ID, EventOrderCreated, OrderCreatedPayload{
		OrderID:      o.ID,
		OrderNumber:  o.OrderNumber,
		CustomerName: o.CustomerName,
		TotalAmount:  o.TotalAmount,
		Items:        lines,
	})
}

func (p *Publisher) PaymentCompleted(pay *Payment) {
	p.publish(p.Completed, pay.OrderID, EventPaymentCompleted, PaymentCompletedPayload{
		PaymentID: pay.ID,
		OrderID:   pay.OrderID,
		Method:    pay.PaymentMethod,
		Amount:    pay.Amount,
	})
}

func (p *Publisher) OrderSettled(o *Order) {
	p.publish(p.Settled, o.ID, EventOrderSettled, OrderSettledPayload{
		OrderID:     o.ID,
		OrderNumber: o.OrderNumber,
		TotalAmount: o.TotalAmount,
	})
}
