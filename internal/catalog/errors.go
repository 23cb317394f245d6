package catalog

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

var (
	ErrNotFound      = errors.New("produk tidak ditemukan")
	ErrImageNotFound = errors.New("gambar tidak ditemukan")
	ErrDuplicateCode = errors.New("kode produk sudah digunakan")
	ErrInvalidInput  = errors.New("input tidak valid")
)

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
