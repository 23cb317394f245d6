package orders

import (
	"time"

	"github.com/ariefcatur/sparepart-backend/internal/catalog"
)

type Order struct {
	ID              int64     `json:"id"`
	OrderNumber     string    `json:"orderNumber"`
	CustomerName    string    `json:"customerName"`
	CustomerPhone   string    `json:"customerPhone"`
	CustomerAddress string    `json:"customerAddress"`
	TotalAmount     int64     `json:"totalAmount"`
	Status          Status    `json:"status"`
	Notes           *string   `json:"notes"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
}

// OrderItem: harga adalah snapshot saat order dibuat, bukan referensi
// ke harga produk sekarang. Immutable setelah dibuat.
type OrderItem struct {
	ID        int64 `json:"id"`
	OrderID   int64 `json:"orderId"`
	ProductID int64 `json:"productId"`
	Quantity  int   `json:"quantity"`
	Price     int64 `json:"price"`
	Subtotal  int64 `json:"subtotal"`
}

type OrderItemDetail struct {
	OrderItem
	Product catalog.Product `json:"product"`
}

type Payment struct {
	ID            int64         `json:"id"`
	OrderID       int64         `json:"orderId"`
	PaymentMethod string        `json:"paymentMethod"`
	Amount        int64         `json:"amount"`
	Status        PaymentStatus `json:"status"`
	Reference     *string       `json:"reference"`
	PaymentDate   *time.Time    `json:"paymentDate"`
	CreatedAt     time.Time     `json:"createdAt"`
}

type OrderWithDetails struct {
	Order
	Items    []OrderItemDetail `json:"items"`
	Payments []Payment         `json:"payments"`
}

type ItemInput struct {
	ProductID int64 `json:"productId"`
	Quantity  int   `json:"quantity"`
}

type CreateOrderInput struct {
	CustomerName    string      `json:"customerName"`
	CustomerPhone   string      `json:"customerPhone"`
	CustomerAddress string      `json:"customerAddress"`
	Items           []ItemInput `json:"items"`
	Notes           *string     `json:"notes"`
}

// UpdateOrderInput: partial update, field nil tidak diubah.
type UpdateOrderInput struct {
	CustomerName    *string `json:"customerName"`
	CustomerPhone   *string `json:"customerPhone"`
	CustomerAddress *string `json:"customerAddress"`
	Status          *Status `json:"status"`
	Notes           *string `json:"notes"`
}

type AddPaymentInput struct {
	PaymentMethod string  `json:"paymentMethod"`
	Amount        int64   `json:"amount"`
	Reference     *string `json:"reference"`
}

type ListFilter struct {
	Search string
	Status string
	Page   int
	Limit  int
}
