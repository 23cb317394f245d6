package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/ariefcatur/sparepart-backend/internal/postgres"
)

const productCols = `id, kode_produk, nama, kategori, merk_motor, stok, harga, deskripsi, created_at, updated_at`

type Repo struct{ db postgres.DB }

func NewRepo(db postgres.DB) *Repo { return &Repo{db: db} }

func (r *Repo) Create(ctx context.Context, p *Product) error {
	if p.KodeProduk == "" || p.Nama == "" || p.Kategori == "" || p.MerkMotor == "" {
		return fmt.Errorf("%w: kodeProduk, nama, kategori dan merkMotor wajib diisi", ErrInvalidInput)
	}
	if p.Stok < 0 || p.Harga < 0 {
		return fmt.Errorf("%w: stok dan harga tidak boleh negatif", ErrInvalidInput)
	}

	err := r.db.QueryRow(ctx, `
		INSERT INTO products (kode_produk, nama, kategori, merk_motor, stok, harga, deskripsi)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at, updated_at`,
		p.KodeProduk, p.Nama, p.Kategori, p.MerkMotor, p.Stok, p.Harga, p.Deskripsi,
	).Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicateCode
		}
		return fmt.Errorf("create product: %w", err)
	}
	return nil
}

func (r *Repo) GetByID(ctx context.Context, id int64) (*Product, error) {
	var p Product
	err := r.db.QueryRow(ctx, `SELECT `+productCols+` FROM products WHERE id=$1`, id).Scan(
		&p.ID, &p.KodeProduk, &p.Nama, &p.Kategori, &p.MerkMotor,
		&p.Stok, &p.Harga, &p.Deskripsi, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get product %d: %w", id, err)
	}

	images, err := r.ListImages(ctx, p.ID)
	if err != nil {
		return nil, err
	}
	p.Images = images
	return &p, nil
}

// List: pagination + filter (search di nama/kode/deskripsi, kategori dan
// merk motor case-insensitive contains). Return total untuk pagination.
func (r *Repo) List(ctx context.Context, f ListFilter) ([]Product, int, error) {
	where, args := buildProductFilter(f)

	var total int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM products`+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count products: %w", err)
	}

	offset := (f.Page - 1) * f.Limit
	args = append(args, f.Limit, offset)
	q := fmt.Sprintf(`SELECT %s FROM products%s ORDER BY created_at DESC LIMIT $%d OFFSET $%d`,
		productCols, where, len(args)-1, len(args))

	rows, err := r.db.Query(ctx, q, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list products: %w", err)
	}
	defer rows.Close()

	var products []Product
	for rows.Next() {
		var p Product
		if err := rows.Scan(&p.ID, &p.KodeProduk, &p.Nama, &p.Kategori, &p.MerkMotor,
			&p.Stok, &p.Harga, &p.Deskripsi, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, 0, fmt.Errorf("scan product: %w", err)
		}
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	if err := r.attachImages(ctx, products); err != nil {
		return nil, 0, err
	}
	return products, total, nil
}

func buildProductFilter(f ListFilter) (string, []any) {
	var conds []string
	var args []any
	if f.Search != "" {
		args = append(args, "%"+f.Search+"%")
		n := len(args)
		conds = append(conds, fmt.Sprintf("(nama ILIKE $%d OR kode_produk ILIKE $%d OR deskripsi ILIKE $%d)", n, n, n))
	}
	if f.Kategori != "" {
		args = append(args, "%"+f.Kategori+"%")
		conds = append(conds, fmt.Sprintf("kategori ILIKE $%d", len(args)))
	}
	if f.MerkMotor != "" {
		args = append(args, "%"+f.MerkMotor+"%")
		conds = append(conds, fmt.Sprintf("merk_motor ILIKE $%d", len(args)))
	}
	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

func (r *Repo) attachImages(ctx context.Context, products []Product) error {
	if len(products) == 0 {
		return nil
	}
	ids := make([]int64, 0, len(products))
	byID := make(map[int64]*Product, len(products))
	for i := range products {
		ids = append(ids, products[i].ID)
		byID[products[i].ID] = &products[i]
	}

	rows, err := r.db.Query(ctx, `
		SELECT id, product_id, image_url, alt_text, is_primary, created_at
		FROM product_images WHERE product_id = ANY($1)
		ORDER BY is_primary DESC, created_at ASC`, ids)
	if err != nil {
		return fmt.Errorf("list images: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var img ProductImage
		if err := rows.Scan(&img.ID, &img.ProductID, &img.ImageURL, &img.AltText, &img.IsPrimary, &img.CreatedAt); err != nil {
			return fmt.Errorf("scan image: %w", err)
		}
		if p, ok := byID[img.ProductID]; ok {
			p.Images = append(p.Images, img)
		}
	}
	return rows.Err()
}

func (r *Repo) Update(ctx context.Context, id int64, in UpdateProductInput) (*Product, error) {
	var p Product
	err := r.db.QueryRow(ctx, `
		UPDATE products SET
			kode_produk = COALESCE($2, kode_produk),
			nama        = COALESCE($3, nama),
			kategori    = COALESCE($4, kategori),
			merk_motor  = COALESCE($5, merk_motor),
			stok        = COALESCE($6, stok),
			harga       = COALESCE($7, harga),
			deskripsi   = COALESCE($8, deskripsi),
			updated_at  = now()
		WHERE id = $1
		RETURNING `+productCols,
		id, in.KodeProduk, in.Nama, in.Kategori, in.MerkMotor, in.Stok, in.Harga, in.Deskripsi,
	).Scan(
		&p.ID, &p.KodeProduk, &p.Nama, &p.Kategori, &p.MerkMotor,
		&p.Stok, &p.Harga, &p.Deskripsi, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		if isUniqueViolation(err) {
			return nil, ErrDuplicateCode
		}
		return nil, fmt.Errorf("update product %d: %w", id, err)
	}
	return &p, nil
}

func (r *Repo) Delete(ctx context.Context, id int64) error {
	ct, err := r.db.Exec(ctx, `DELETE FROM products WHERE id=$1`, id)
	if err != nil {
		return fmt.Errorf("delete product %d: %w", id, err)
	}
	if ct.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
