package httpx

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/ariefcatur/sparepart-backend/internal/catalog"
	"github.com/ariefcatur/sparepart-backend/internal/redisx"
)

type ProductsHandler struct {
	Repo  *catalog.Repo
	Redis *redis.Client
}

func (h *ProductsHandler) Register(r *chi.Mux) {
	r.Get("/products", h.list)
	r.Get("/products/{id}", h.get)
	r.Post("/products", h.create)
	r.Put("/products/{id}", h.update)
	r.Delete("/products/{id}", h.delete)
}

func (h *ProductsHandler) list(w http.ResponseWriter, r *http.Request) {
	page, limit := parsePagination(r)
	f := catalog.ListFilter{
		Search:    r.URL.Query().Get("search"),
		Kategori:  r.URL.Query().Get("kategori"),
		MerkMotor: r.URL.Query().Get("merkMotor"),
		Page:      page,
		Limit:     limit,
	}

	products, total, err := h.Repo.List(r.Context(), f)
	if err != nil {
		log.Error().Err(err).Msg("list products")
		writeError(w, http.StatusInternalServerError, "Internal Server Error", "Gagal mengambil daftar produk", nil)
		return
	}
	if products == nil {
		products = []catalog.Product{}
	}
	writePage(w, products, page, limit, total)
}

func (h *ProductsHandler) get(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(r, "id")
	if !ok {
		writeError(w, http.StatusBadRequest, "", "ID produk tidak valid", nil)
		return
	}

	// cache read-through; miss atau redis error lanjut ke DB
	key := fmt.Sprintf(redisx.KeyProduct, id)
	if h.Redis != nil {
		if s, err := h.Redis.Get(r.Context(), key).Result(); err == nil && s != "" {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte(s))
			return
		}
	}

	product, err := h.Repo.GetByID(r.Context(), id)
	if err != nil {
		h.writeErr(w, err, "Gagal mengambil produk")
		return
	}

	if h.Redis != nil {
		if b, err := json.Marshal(product); err == nil {
			_ = h.Redis.Set(r.Context(), key, b, redisx.TTLProductCache).Err()
		}
	}
	writeJSON(w, http.StatusOK, product)
}

func (h *ProductsHandler) create(w http.ResponseWriter, r *http.Request) {
	var p catalog.Product
	if !decodeBody(w, r, &p) {
		return
	}

	if err := h.Repo.Create(r.Context(), &p); err != nil {
		h.writeErr(w, err, "Gagal menambahkan produk")
		return
	}
	writeMessage(w, "Produk berhasil ditambahkan", p)
}

func (h *ProductsHandler) update(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(r, "id")
	if !ok {
		writeError(w, http.StatusBadRequest, "", "ID produk tidak valid", nil)
		return
	}

	var in catalog.UpdateProductInput
	if !decodeBody(w, r, &in) {
		return
	}

	product, err := h.Repo.Update(r.Context(), id, in)
	if err != nil {
		h.writeErr(w, err, "Gagal mengupdate produk")
		return
	}

	h.invalidate(r, id)
	writeMessage(w, "Produk berhasil diupdate", product)
}

func (h *ProductsHandler) delete(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(r, "id")
	if !ok {
		writeError(w, http.StatusBadRequest, "", "ID produk tidak valid", nil)
		return
	}

	if err := h.Repo.Delete(r.Context(), id); err != nil {
		h.writeErr(w, err, "Gagal menghapus produk")
		return
	}

	h.invalidate(r, id)
	writeJSON(w, http.StatusOK, apiMessage{Message: "Produk berhasil dihapus"})
}

func (h *ProductsHandler) invalidate(r *http.Request, id int64) {
	if h.Redis == nil {
		return
	}
	if err := h.Redis.Del(r.Context(), fmt.Sprintf(redisx.KeyProduct, id)).Err(); err != nil {
		log.Warn().Err(err).Int64("product_id", id).Msg("invalidate product cache")
	}
}

func (h *ProductsHandler) writeErr(w http.ResponseWriter, err error, fallback string) {
	switch {
	case errors.Is(err, catalog.ErrNotFound):
		writeError(w, http.StatusNotFound, "", "Produk tidak ditemukan", nil)
	case errors.Is(err, catalog.ErrDuplicateCode):
		writeError(w, http.StatusBadRequest, "", "Kode produk sudah digunakan", nil)
	case errors.Is(err, catalog.ErrInvalidInput):
		writeError(w, http.StatusBadRequest, "", err.Error(), nil)
	default:
		log.Error().Err(err).Msg("product handler")
		writeError(w, http.StatusInternalServerError, "Internal Server Error", fallback, nil)
	}
}
