package redisx

import "time"

const (
	// Cache detail produk: product:{id} -> JSON produk (termasuk images)
	KeyProduct = "product:%d"

	// Cache status order: order_status:{order_id} -> {"status": "..."}
	KeyOrderStatus = "order_status:%d"

	// Dedup event di consumer: dedup:{service}:{event_id}
	KeyDedup = "dedup:%s:%s"
)

var (
	TTLProductCache = 5 * time.Minute
	TTLStatusCache  = 5 * time.Minute
	TTLDedup        = 48 * time.Hour
)
