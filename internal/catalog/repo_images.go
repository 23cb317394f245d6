package catalog

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
)

// InsertImage menyimpan record gambar. Gambar pertama untuk sebuah produk
// otomatis menjadi primary; cek + insert berjalan dalam satu transaksi.
func (r *Repo) InsertImage(ctx context.Context, img *ProductImage) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback(ctx)

	var existing int
	if err := tx.QueryRow(ctx,
		`SELECT COUNT(*) FROM product_images WHERE product_id=$1`, img.ProductID,
	).Scan(&existing); err != nil {
		return fmt.Errorf("count images: %w", err)
	}
	img.IsPrimary = existing == 0

	err = tx.QueryRow(ctx, `
		INSERT INTO product_images (product_id, image_url, alt_text, is_primary)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at`,
		img.ProductID, img.ImageURL, img.AltText, img.IsPrimary,
	).Scan(&img.ID, &img.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert image: %w", err)
	}

	return tx.Commit(ctx)
}

func (r *Repo) ListImages(ctx context.Context, productID int64) ([]ProductImage, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, product_id, image_url, alt_text, is_primary, created_at
		FROM product_images WHERE product_id=$1
		ORDER BY is_primary DESC, created_at ASC`, productID)
	if err != nil {
		return nil, fmt.Errorf("list images: %w", err)
	}
	defer rows.Close()

	var images []ProductImage
	for rows.Next() {
		var img ProductImage
		if err := rows.Scan(&img.ID, &img.ProductID, &img.ImageURL, &img.AltText, &img.IsPrimary, &img.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan image: %w", err)
		}
		images = append(images, img)
	}
	return images, rows.Err()
}

// SetPrimary: reset semua gambar produk jadi non-primary, lalu set target.
// Dua langkah dalam satu transaksi supaya invariant satu-primary terjaga.
func (r *Repo) SetPrimary(ctx context.Context, imageID int64) (*ProductImage, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback(ctx)

	var productID int64
	err = tx.QueryRow(ctx, `SELECT product_id FROM product_images WHERE id=$1 FOR UPDATE`, imageID).Scan(&productID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrImageNotFound
		}
		return nil, fmt.Errorf("get image %d: %w", imageID, err)
	}

	if _, err := tx.Exec(ctx,
		`UPDATE product_images SET is_primary=FALSE WHERE product_id=$1`, productID); err != nil {
		return nil, fmt.Errorf("reset primary: %w", err)
	}

	var img ProductImage
	err = tx.QueryRow(ctx, `
		UPDATE product_images SET is_primary=TRUE WHERE id=$1
		RETURNING id, product_id, image_url, alt_text, is_primary, created_at`, imageID,
	).Scan(&img.ID, &img.ProductID, &img.ImageURL, &img.AltText, &img.IsPrimary, &img.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("set primary %d: %w", imageID, err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return &img, nil
}

func (r *Repo) DeleteImage(ctx context.Context, imageID int64) error {
	ct, err := r.db.Exec(ctx, `DELETE FROM product_images WHERE id=$1`, imageID)
	if err != nil {
		return fmt.Errorf("delete image %d: %w", imageID, err)
	}
	if ct.RowsAffected() == 0 {
		return ErrImageNotFound
	}
	return nil
}
