package orders

import "errors"

var (
	ErrOrderNotFound     = errors.New("order tidak ditemukan")
	ErrPaymentNotFound   = errors.New("pembayaran tidak ditemukan")
	ErrProductNotFound   = errors.New("produk tidak ditemukan")
	ErrInsufficientStock = errors.New("stock tidak cukup")
	ErrOrderFinalized    = errors.New("order tidak bisa diupdate karena sudah selesai atau dibatalkan")
	ErrAlreadySettled    = errors.New("order sudah lunas")
	ErrInvalidInput      = errors.New("input tidak valid")
)
