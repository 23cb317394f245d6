package httpx

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
)

type apiMessage struct {
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

type apiError struct {
	Error   string `json:"error,omitempty"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

type pagination struct {
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	Total      int `json:"total"`
	TotalPages int `json:"totalPages"`
}

type paginated struct {
	Data       any        `json:"data"`
	Pagination pagination `json:"pagination"`
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeMessage(w http.ResponseWriter, message string, data any) {
	writeJSON(w, http.StatusOK, apiMessage{Message: message, Data: data})
}

func writeError(w http.ResponseWriter, code int, errCode, message string, details any) {
	writeJSON(w, code, apiError{Error: errCode, Message: message, Details: details})
}

func writePage(w http.ResponseWriter, data any, page, limit, total int) {
	totalPages := 0
	if limit > 0 {
		totalPages = (total + limit - 1) / limit
	}
	if data == nil {
		data = []any{}
	}
	writeJSON(w, http.StatusOK, paginated{
		Data:       data,
		Pagination: pagination{Page: page, Limit: limit, Total: total, TotalPages: totalPages},
	})
}

// parsePagination: default page=1 limit=10, nilai tidak valid di-ignore.
func parsePagination(r *http.Request) (int, int) {
	page, limit := 1, 10
	if v, err := strconv.Atoi(r.URL.Query().Get("page")); err == nil && v > 0 {
		page = v
	}
	if v, err := strconv.Atoi(r.URL.Query().Get("limit")); err == nil && v > 0 {
		limit = v
	}
	return page, limit
}

func parseID(r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	return id, err == nil && id > 0
}

func decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, 8<<20) // gambar base64 bisa besar
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeError(w, http.StatusBadRequest, "Validation Error", "Data yang dikirim tidak valid", err.Error())
		return false
	}
	return true
}
