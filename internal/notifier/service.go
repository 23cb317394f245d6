package notifier

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	kafkago "github.com/segmentio/kafka-go"

	kafkax "github.com/ariefcatur/sparepart-backend/internal/kafka"
	"github.com/ariefcatur/sparepart-backend/internal/orders"
	"github.com/ariefcatur/sparepart-backend/internal/redisx"
)

// Service mendengarkan event lifecycle order dan mencatat notifikasi
// pelanggan. Dedup per event_id via Redis supaya redelivery Kafka tidak
// menghasilkan notifikasi dobel.
type Service struct {
	Redis       *redis.Client
	ServiceName string
}

func (s *Service) Handle(ctx context.Context, m kafkago.Message) error {
	var env orders.Envelope
	if err := json.Unmarshal(m.Value, &env); err != nil {
		return err
	}

	dkey := fmt.Sprintf(redisx.KeyDedup, "notifier", env.EventID)
	if exists, _ := redisx.Exists(ctx, s.Redis, dkey); exists {
		return nil
	}
	_ = s.Redis.Set(ctx, dkey, "1", redisx.TTLDedup).Err()

	switch env.EventType {
	case orders.EventOrderCreated:
		p, err := kafkax.UnwrapPayload[orders.OrderCreatedPayload](env.Payload)
		if err != nil {
			return err
		}
		log.Info().
			Int64("order_id", p.OrderID).
			Str("order_number", p.OrderNumber).
			Int64("total", p.TotalAmount).
			Int("items", len(p.Items)).
			Msgf("notifikasi: order baru untuk %s", p.CustomerName)

	case orders.EventPaymentCompleted:
		p, err := kafkax.UnwrapPayload[orders.PaymentCompletedPayload](env.Payload)
		if err != nil {
			return err
		}
		log.Info().
			Int64("order_id", p.OrderID).
			Int64("payment_id", p.PaymentID).
			Int64("amount", p.Amount).
			Str("method", p.Method).
			Msg("notifikasi: pembayaran diterima")

	case orders.EventOrderSettled:
		p, err := kafkax.UnwrapPayload[orders.OrderSettledPayload](env.Payload)
		if err != nil {
			return err
		}
		log.Info().
			Int64("order_id", p.OrderID).
			Str("order_number", p.OrderNumber).
			Int64("total", p.TotalAmount).
			Msg("notifikasi: order lunas, siap diproses")

	default:
		// event lain bukan urusan notifier
	}
	return nil
}
