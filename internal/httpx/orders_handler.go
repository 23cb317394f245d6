package httpx

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/ariefcatur/sparepart-backend/internal/orders"
	"github.com/ariefcatur/sparepart-backend/internal/redisx"
)

type OrdersHandler struct {
	Repo   *orders.Repo
	Events *orders.Publisher
	Redis  *redis.Client
}

func (h *OrdersHandler) Register(r *chi.Mux) {
	r.Get("/orders", h.list)
	r.Get("/orders/{id}", h.get)
	r.Post("/orders", h.create)
	r.Put("/orders/{id}", h.update)
	r.Post("/orders/{id}/payment", h.addPayment)
	r.Put("/orders/{id}/payment/{paymentId}", h.updatePaymentStatus)
}

func (h *OrdersHandler) list(w http.ResponseWriter, r *http.Request) {
	page, limit := parsePagination(r)
	f := orders.ListFilter{
		Search: r.URL.Query().Get("search"),
		Status: r.URL.Query().Get("status"),
		Page:   page,
		Limit:  limit,
	}

	list, total, err := h.Repo.List(r.Context(), f)
	if err != nil {
		log.Error().Err(err).Msg("list orders")
		writeError(w, http.StatusInternalServerError, "Internal Server Error", "Gagal mengambil daftar order", nil)
		return
	}
	if list == nil {
		list = []orders.OrderWithDetails{}
	}
	writePage(w, list, page, limit, total)
}

func (h *OrdersHandler) get(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(r, "id")
	if !ok {
		writeError(w, http.StatusBadRequest, "", "ID order tidak valid", nil)
		return
	}

	order, err := h.Repo.GetByID(r.Context(), id)
	if err != nil {
		h.writeErr(w, err, "Gagal mengambil order")
		return
	}
	writeJSON(w, http.StatusOK, order)
}

func (h *OrdersHandler) create(w http.ResponseWriter, r *http.Request) {
	var in orders.CreateOrderInput
	if !decodeBody(w, r, &in) {
		return
	}

	order, err := h.Repo.Create(r.Context(), in)
	if err != nil {
		h.writeErr(w, err, "Gagal membuat order")
		return
	}

	h.cacheStatus(r, order.ID, order.Status)
	h.Events.OrderCreated(order)

	writeMessage(w, "Order berhasil dibuat", order)
}

func (h *OrdersHandler) update(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(r, "id")
	if !ok {
		writeError(w, http.StatusBadRequest, "", "ID order tidak valid", nil)
		return
	}

	var in orders.UpdateOrderInput
	if !decodeBody(w, r, &in) {
		return
	}

	order, err := h.Repo.Update(r.Context(), id, in)
	if err != nil {
		h.writeErr(w, err, "Gagal mengupdate order")
		return
	}

	h.cacheStatus(r, order.ID, order.Status)
	writeMessage(w, "Order berhasil diupdate", order)
}

type addPaymentResponse struct {
	Message         string          `json:"message"`
	Data            *orders.Payment `json:"data"`
	RemainingAmount int64           `json:"remainingAmount"`
}

func (h *OrdersHandler) addPayment(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(r, "id")
	if !ok {
		writeError(w, http.StatusBadRequest, "", "ID order tidak valid", nil)
		return
	}

	var in orders.AddPaymentInput
	if !decodeBody(w, r, &in) {
		return
	}

	payment, remaining, err := h.Repo.AddPayment(r.Context(), id, in)
	if err != nil {
		h.writeErr(w, err, "Gagal menambahkan pembayaran")
		return
	}

	writeJSON(w, http.StatusOK, addPaymentResponse{
		Message:         "Pembayaran berhasil ditambahkan",
		Data:            payment,
		RemainingAmount: remaining,
	})
}

type updatePaymentRequest struct {
	Status orders.PaymentStatus `json:"status"`
}

func (h *OrdersHandler) updatePaymentStatus(w http.ResponseWriter, r *http.Request) {
	paymentID, ok := parseID(r, "paymentId")
	if !ok {
		writeError(w, http.StatusBadRequest, "", "ID pembayaran tidak valid", nil)
		return
	}

	var req updatePaymentRequest
	if !decodeBody(w, r, &req) {
		return
	}

	payment, settled, err := h.Repo.UpdatePaymentStatus(r.Context(), paymentID, req.Status)
	if err != nil {
		h.writeErr(w, err, "Gagal mengupdate status pembayaran")
		return
	}

	if payment.Status == orders.PaymentCompleted {
		h.Events.PaymentCompleted(payment)
	}
	if settled != nil {
		h.cacheStatus(r, settled.ID, settled.Status)
		h.Events.OrderSettled(settled)
	}

	writeMessage(w, "Status pembayaran berhasil diupdate", payment)
}

func (h *OrdersHandler) cacheStatus(r *http.Request, orderID int64, status orders.Status) {
	if h.Redis == nil {
		return
	}
	key := fmt.Sprintf(redisx.KeyOrderStatus, orderID)
	val := fmt.Sprintf(`{"status":%q}`, status)
	if err := h.Redis.Set(r.Context(), key, val, redisx.TTLStatusCache).Err(); err != nil {
		log.Warn().Err(err).Int64("order_id", orderID).Msg("cache order status")
	}
}

func (h *OrdersHandler) writeErr(w http.ResponseWriter, err error, fallback string) {
	switch {
	case errors.Is(err, orders.ErrOrderNotFound):
		writeError(w, http.StatusNotFound, "", "Order tidak ditemukan", nil)
	case errors.Is(err, orders.ErrPaymentNotFound):
		writeError(w, http.StatusNotFound, "", "Pembayaran tidak ditemukan", nil)
	case errors.Is(err, orders.ErrProductNotFound),
		errors.Is(err, orders.ErrInsufficientStock),
		errors.Is(err, orders.ErrOrderFinalized),
		errors.Is(err, orders.ErrAlreadySettled),
		errors.Is(err, orders.ErrInvalidInput):
		writeError(w, http.StatusBadRequest, "", err.Error(), nil)
	default:
		log.Error().Err(err).Msg("order handler")
		writeError(w, http.StatusInternalServerError, "Internal Server Error", fallback, nil)
	}
}
