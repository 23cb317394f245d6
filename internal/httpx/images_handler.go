package httpx

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/ariefcatur/sparepart-backend/internal/catalog"
	"github.com/ariefcatur/sparepart-backend/internal/images"
)

type ImagesHandler struct {
	Repo  *catalog.Repo
	Store *images.Store
}

func (h *ImagesHandler) Register(r *chi.Mux) {
	r.Post("/images/upload/{productId}", h.upload)
	r.Get("/images/product/{productId}", h.listByProduct)
	r.Put("/images/{id}/primary", h.setPrimary)
	r.Delete("/images/{id}", h.delete)
}

type uploadRequest struct {
	ImageData string `json:"imageData"`
	FileName  string `json:"fileName"`
	AltText   string `json:"altText"`
}

func (h *ImagesHandler) upload(w http.ResponseWriter, r *http.Request) {
	productID, ok := parseID(r, "productId")
	if !ok {
		writeError(w, http.StatusBadRequest, "", "ID produk tidak valid", nil)
		return
	}

	product, err := h.Repo.GetByID(r.Context(), productID)
	if err != nil {
		if errors.Is(err, catalog.ErrNotFound) {
			writeError(w, http.StatusNotFound, "", "Produk tidak ditemukan", nil)
			return
		}
		log.Error().Err(err).Msg("upload image: get product")
		writeError(w, http.StatusInternalServerError, "Internal Server Error", "Gagal mengupload gambar", nil)
		return
	}

	var req uploadRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.ImageData == "" || req.FileName == "" {
		writeError(w, http.StatusBadRequest, "", "imageData dan fileName diperlukan", nil)
		return
	}

	url, err := h.Store.Save(req.ImageData, req.FileName)
	if err != nil {
		switch {
		case errors.Is(err, images.ErrUnsupportedType),
			errors.Is(err, images.ErrTooLarge),
			errors.Is(err, images.ErrInvalidPayload):
			writeError(w, http.StatusBadRequest, "", err.Error(), nil)
		default:
			log.Error().Err(err).Msg("save image file")
			writeError(w, http.StatusInternalServerError, "Internal Server Error", "Gagal mengupload gambar", nil)
		}
		return
	}

	altText := req.AltText
	if altText == "" {
		altText = product.Nama
	}
	img := catalog.ProductImage{
		ProductID: productID,
		ImageURL:  url,
		AltText:   &altText,
	}
	if err := h.Repo.InsertImage(r.Context(), &img); err != nil {
		log.Error().Err(err).Msg("insert image")
		writeError(w, http.StatusInternalServerError, "Internal Server Error", "Gagal mengupload gambar", nil)
		return
	}

	writeMessage(w, "Gambar berhasil diupload", img)
}

func (h *ImagesHandler) listByProduct(w http.ResponseWriter, r *http.Request) {
	productID, ok := parseID(r, "productId")
	if !ok {
		writeError(w, http.StatusBadRequest, "", "ID produk tidak valid", nil)
		return
	}

	imgs, err := h.Repo.ListImages(r.Context(), productID)
	if err != nil {
		log.Error().Err(err).Msg("list images")
		writeError(w, http.StatusInternalServerError, "Internal Server Error", "Gagal mengambil daftar gambar", nil)
		return
	}
	if imgs == nil {
		imgs = []catalog.ProductImage{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"data": imgs})
}

func (h *ImagesHandler) setPrimary(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(r, "id")
	if !ok {
		writeError(w, http.StatusBadRequest, "", "ID gambar tidak valid", nil)
		return
	}

	img, err := h.Repo.SetPrimary(r.Context(), id)
	if err != nil {
		if errors.Is(err, catalog.ErrImageNotFound) {
			writeError(w, http.StatusNotFound, "", "Gambar tidak ditemukan", nil)
			return
		}
		log.Error().Err(err).Msg("set primary image")
		writeError(w, http.StatusInternalServerError, "Internal Server Error", "Gagal mengupdate gambar utama", nil)
		return
	}
	writeMessage(w, "Gambar utama berhasil diupdate", img)
}

func (h *ImagesHandler) delete(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(r, "id")
	if !ok {
		writeError(w, http.StatusBadRequest, "", "ID gambar tidak valid", nil)
		return
	}

	// TODO: hapus juga file fisiknya dari upload dir
	if err := h.Repo.DeleteImage(r.Context(), id); err != nil {
		if errors.Is(err, catalog.ErrImageNotFound) {
			writeError(w, http.StatusNotFound, "", "Gambar tidak ditemukan", nil)
			return
		}
		log.Error().Err(err).Msg("delete image")
		writeError(w, http.StatusInternalServerError, "Internal Server Error", "Gagal menghapus gambar", nil)
		return
	}
	writeJSON(w, http.StatusOK, apiMessage{Message: "Gambar berhasil dihapus"})
}
