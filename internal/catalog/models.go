package catalog

import "time"

type Product struct {
	ID         int64          `json:"id"`
	KodeProduk string         `json:"kodeProduk"`
	Nama       string         `json:"nama"`
	Kategori   string         `json:"kategori"`
	MerkMotor  string         `json:"merkMotor"`
	Stok       int            `json:"stok"`
	Harga      int64          `json:"harga"`
	Deskripsi  *string        `json:"deskripsi"`
	CreatedAt  time.Time      `json:"createdAt"`
	UpdatedAt  time.Time      `json:"updatedAt"`
	Images     []ProductImage `json:"images,omitempty"`
}

type ProductImage struct {
	ID        int64     `json:"id"`
	ProductID int64     `json:"productId"`
	ImageURL  string    `json:"imageUrl"`
	AltText   *string   `json:"altText"`
	IsPrimary bool      `json:"isPrimary"`
	CreatedAt time.Time `json:"createdAt"`
}

// ListFilter: filter list produk, semua field opsional.
type ListFilter struct {
	Search    string
	Kategori  string
	MerkMotor string
	Page      int
	Limit     int
}

// UpdateProductInput: partial update, field nil tidak diubah.
type UpdateProductInput struct {
	KodeProduk *string `json:"kodeProduk"`
	Nama       *string `json:"nama"`
	Kategori   *string `json:"kategori"`
	MerkMotor  *string `json:"merkMotor"`
	Stok       *int    `json:"stok"`
	Harga      *int64  `json:"harga"`
	Deskripsi  *string `json:"deskripsi"`
}
