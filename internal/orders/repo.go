package orders

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/ariefcatur/sparepart-backend/internal/catalog"
	"github.com/ariefcatur/sparepart-backend/internal/postgres"
)

const orderCols = `id, order_number, customer_name, customer_phone, customer_address, total_amount, status, notes, created_at, updated_at`
const paymentCols = `id, order_id, payment_method, amount, status, reference, payment_date, created_at`

type Repo struct{ db postgres.DB }

func NewRepo(db postgres.DB) *Repo { return &Repo{db: db} }

type querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// Create menjalankan seluruh pembuatan order dalam satu transaksi:
// insert order + order_items + payment pertama, dan kurangi stok tiap
// produk. Kalau ada yang gagal, semuanya di-rollback.
//
// Stok dikunci lewat SELECT ... FOR UPDATE lalu dikurangi dengan guard
// stok >= quantity, jadi dua order concurrent terhadap produk yang sama
// tidak mungkin sama-sama lolos menembus stok negatif.
func (r *Repo) Create(ctx context.Context, in CreateOrderInput) (*OrderWithDetails, error) {
	if in.CustomerName == "" || in.CustomerPhone == "" || in.CustomerAddress == "" {
		return nil, fmt.Errorf("%w: customerName, customerPhone dan customerAddress wajib diisi", ErrInvalidInput)
	}
	if len(in.Items) == 0 {
		return nil, fmt.Errorf("%w: minimal harus ada 1 item", ErrInvalidInput)
	}
	for _, it := range in.Items {
		if it.Quantity < 1 {
			return nil, fmt.Errorf("%w: quantity minimal 1", ErrInvalidInput)
		}
	}

	orderNumber := NewOrderNumber(time.Now())

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback(ctx)

	var total int64
	items := make([]OrderItemDetail, 0, len(in.Items))
	for _, it := range in.Items {
		var p catalog.Product
		err := tx.QueryRow(ctx, `
			SELECT id, kode_produk, nama, kategori, merk_motor, stok, harga, deskripsi, created_at, updated_at
			FROM products WHERE id=$1 FOR UPDATE`, it.ProductID,
		).Scan(&p.ID, &p.KodeProduk, &p.Nama, &p.Kategori, &p.MerkMotor,
			&p.Stok, &p.Harga, &p.Deskripsi, &p.CreatedAt, &p.UpdatedAt)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return nil, fmt.Errorf("%w: produk dengan ID %d", ErrProductNotFound, it.ProductID)
			}
			return nil, fmt.Errorf("get product %d: %w", it.ProductID, err)
		}
		if p.Stok < it.Quantity {
			return nil, fmt.Errorf("%w untuk produk %s", ErrInsufficientStock, p.Nama)
		}

		subtotal := p.Harga * int64(it.Quantity)
		total += subtotal
		items = append(items, OrderItemDetail{
			OrderItem: OrderItem{
				ProductID: p.ID,
				Quantity:  it.Quantity,
				Price:     p.Harga,
				Subtotal:  subtotal,
			},
			Product: p,
		})
	}

	order := Order{
		OrderNumber:     orderNumber,
		CustomerName:    in.CustomerName,
		CustomerPhone:   in.CustomerPhone,
		CustomerAddress: in.CustomerAddress,
		TotalAmount:     total,
		Status:          StatusPending,
		Notes:           in.Notes,
	}
	err = tx.QueryRow(ctx, `
		INSERT INTO orders (order_number, customer_name, customer_phone, customer_address, total_amount, status, notes)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at, updated_at`,
		order.OrderNumber, order.CustomerName, order.CustomerPhone, order.CustomerAddress,
		order.TotalAmount, order.Status, order.Notes,
	).Scan(&order.ID, &order.CreatedAt, &order.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("insert order: %w", err)
	}

	for i := range items {
		items[i].OrderID = order.ID
		err = tx.QueryRow(ctx, `
			INSERT INTO order_items (order_id, product_id, quantity, price, subtotal)
			VALUES ($1, $2, $3, $4, $5)
			RETURNING id`,
			order.ID, items[i].ProductID, items[i].Quantity, items[i].Price, items[i].Subtotal,
		).Scan(&items[i].OrderItem.ID)
		if err != nil {
			return nil, fmt.Errorf("insert order item: %w", err)
		}

		// guard stok >= quantity tetap dipasang walau row sudah di-lock,
		// supaya write path lain tidak bisa bikin stok negatif
		ct, err := tx.Exec(ctx, `
			UPDATE products SET stok = stok - $2, updated_at = now()
			WHERE id = $1 AND stok >= $2`,
			items[i].ProductID, items[i].Quantity)
		if err != nil {
			return nil, fmt.Errorf("decrement stock %d: %w", items[i].ProductID, err)
		}
		if ct.RowsAffected() != 1 {
			return nil, fmt.Errorf("%w untuk produk %s", ErrInsufficientStock, items[i].Product.Nama)
		}
		items[i].Product.Stok -= items[i].Quantity
	}

	payment := Payment{
		OrderID:       order.ID,
		PaymentMethod: "MANUAL_TRANSFER",
		Amount:        total,
		Status:        PaymentPending,
	}
	err = tx.QueryRow(ctx, `
		INSERT INTO payments (order_id, payment_method, amount, status)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at`,
		payment.OrderID, payment.PaymentMethod, payment.Amount, payment.Status,
	).Scan(&payment.ID, &payment.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("insert payment: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}

	return &OrderWithDetails{Order: order, Items: items, Payments: []Payment{payment}}, nil
}

func (r *Repo) GetByID(ctx context.Context, id int64) (*OrderWithDetails, error) {
	var o Order
	err := r.db.QueryRow(ctx, `SELECT `+orderCols+` FROM orders WHERE id=$1`, id).Scan(
		&o.ID, &o.OrderNumber, &o.CustomerName, &o.CustomerPhone, &o.CustomerAddress,
		&o.TotalAmount, &o.Status, &o.Notes, &o.CreatedAt, &o.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("get order %d: %w", id, err)
	}

	details := OrderWithDetails{Order: o}
	itemsByOrder, err := r.loadItems(ctx, r.db, []int64{o.ID})
	if err != nil {
		return nil, err
	}
	paymentsByOrder, err := r.loadPayments(ctx, r.db, []int64{o.ID})
	if err != nil {
		return nil, err
	}
	details.Items = itemsByOrder[o.ID]
	details.Payments = paymentsByOrder[o.ID]
	return &details, nil
}

func (r *Repo) List(ctx context.Context, f ListFilter) ([]OrderWithDetails, int, error) {
	where, args := buildOrderFilter(f)

	var total int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM orders`+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count orders: %w", err)
	}

	offset := (f.Page - 1) * f.Limit
	args = append(args, f.Limit, offset)
	q := fmt.Sprintf(`SELECT %s FROM orders%s ORDER BY created_at DESC LIMIT $%d OFFSET $%d`,
		orderCols, where, len(args)-1, len(args))

	rows, err := r.db.Query(ctx, q, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list orders: %w", err)
	}
	defer rows.Close()

	var out []OrderWithDetails
	var ids []int64
	for rows.Next() {
		var o Order
		if err := rows.Scan(&o.ID, &o.OrderNumber, &o.CustomerName, &o.CustomerPhone, &o.CustomerAddress,
			&o.TotalAmount, &o.Status, &o.Notes, &o.CreatedAt, &o.UpdatedAt); err != nil {
			return nil, 0, fmt.Errorf("scan order: %w", err)
		}
		out = append(out, OrderWithDetails{Order: o})
		ids = append(ids, o.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	if len(ids) > 0 {
		itemsByOrder, err := r.loadItems(ctx, r.db, ids)
		if err != nil {
			return nil, 0, err
		}
		paymentsByOrder, err := r.loadPayments(ctx, r.db, ids)
		if err != nil {
			return nil, 0, err
		}
		for i := range out {
			out[i].Items = itemsByOrder[out[i].ID]
			out[i].Payments = paymentsByOrder[out[i].ID]
		}
	}
	return out, total, nil
}

func buildOrderFilter(f ListFilter) (string, []any) {
	var conds []string
	var args []any
	if f.Status != "" {
		args = append(args, f.Status)
		conds = append(conds, fmt.Sprintf("status = $%d", len(args)))
	}
	if f.Search != "" {
		args = append(args, "%"+f.Search+"%")
		n := len(args)
		conds = append(conds, fmt.Sprintf("(customer_name ILIKE $%d OR customer_phone ILIKE $%d OR order_number ILIKE $%d)", n, n, n))
	}
	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

func (r *Repo) loadItems(ctx context.Context, q querier, orderIDs []int64) (map[int64][]OrderItemDetail, error) {
	rows, err := q.Query(ctx, `
		SELECT oi.id, oi.order_id, oi.product_id, oi.quantity, oi.price, oi.subtotal,
		       p.id, p.kode_produk, p.nama, p.kategori, p.merk_motor, p.stok, p.harga, p.deskripsi, p.created_at, p.updated_at
		FROM order_items oi
		JOIN products p ON p.id = oi.product_id
		WHERE oi.order_id = ANY($1)
		ORDER BY oi.id`, orderIDs)
	if err != nil {
		return nil, fmt.Errorf("load order items: %w", err)
	}
	defer rows.Close()

	out := make(map[int64][]OrderItemDetail)
	for rows.Next() {
		var d OrderItemDetail
		if err := rows.Scan(
			&d.OrderItem.ID, &d.OrderID, &d.ProductID, &d.Quantity, &d.Price, &d.Subtotal,
			&d.Product.ID, &d.Product.KodeProduk, &d.Product.Nama, &d.Product.Kategori, &d.Product.MerkMotor,
			&d.Product.Stok, &d.Product.Harga, &d.Product.Deskripsi, &d.Product.CreatedAt, &d.Product.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan order item: %w", err)
		}
		out[d.OrderID] = append(out[d.OrderID], d)
	}
	return out, rows.Err()
}

func (r *Repo) loadPayments(ctx context.Context, q querier, orderIDs []int64) (map[int64][]Payment, error) {
	rows, err := q.Query(ctx, `
		SELECT `+paymentCols+` FROM payments WHERE order_id = ANY($1) ORDER BY id`, orderIDs)
	if err != nil {
		return nil, fmt.Errorf("load payments: %w", err)
	}
	defer rows.Close()

	out := make(map[int64][]Payment)
	for rows.Next() {
		var p Payment
		if err := rows.Scan(&p.ID, &p.OrderID, &p.PaymentMethod, &p.Amount, &p.Status,
			&p.Reference, &p.PaymentDate, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan payment: %w", err)
		}
		out[p.OrderID] = append(out[p.OrderID], p)
	}
	return out, rows.Err()
}

// Update menerapkan partial update; field nil dibiarkan. Order yang sudah
// DELIVERED atau CANCELLED ditolak sebelum ada perubahan apa pun.
func (r *Repo) Update(ctx context.Context, id int64, in UpdateOrderInput) (*OrderWithDetails, error) {
	if in.Status != nil && !ValidStatus(*in.Status) {
		return nil, fmt.Errorf("%w: status %s tidak dikenal", ErrInvalidInput, *in.Status)
	}

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback(ctx)

	var current Status
	err = tx.QueryRow(ctx, `SELECT status FROM orders WHERE id=$1 FOR UPDATE`, id).Scan(&current)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("get order %d: %w", id, err)
	}
	if current.IsFinal() {
		return nil, ErrOrderFinalized
	}

	var o Order
	err = tx.QueryRow(ctx, `
		UPDATE orders SET
			customer_name    = COALESCE($2, customer_name),
			customer_phone   = COALESCE($3, customer_phone),
			customer_address = COALESCE($4, customer_address),
			status           = COALESCE($5, status),
			notes            = COALESCE($6, notes),
			updated_at       = now()
		WHERE id = $1
		RETURNING `+orderCols,
		id, in.CustomerName, in.CustomerPhone, in.CustomerAddress, in.Status, in.Notes,
	).Scan(&o.ID, &o.OrderNumber, &o.CustomerName, &o.CustomerPhone, &o.CustomerAddress,
		&o.TotalAmount, &o.Status, &o.Notes, &o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("update order %d: %w", id, err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}

	details := OrderWithDetails{Order: o}
	itemsByOrder, err := r.loadItems(ctx, r.db, []int64{o.ID})
	if err != nil {
		return nil, err
	}
	paymentsByOrder, err := r.loadPayments(ctx, r.db, []int64{o.ID})
	if err != nil {
		return nil, err
	}
	details.Items = itemsByOrder[o.ID]
	details.Payments = paymentsByOrder[o.ID]
	return &details, nil
}

// AddPayment membuat payment PENDING baru. remainingAmount adalah sisa
// tagihan sebelum payment baru ini dihitung. Overpayment tidak ditolak;
// nominal disimpan apa adanya.
func (r *Repo) AddPayment(ctx context.Context, orderID int64, in AddPaymentInput) (*Payment, int64, error) {
	if in.PaymentMethod == "" {
		return nil, 0, fmt.Errorf("%w: paymentMethod wajib diisi", ErrInvalidInput)
	}
	if in.Amount < 0 {
		return nil, 0, fmt.Errorf("%w: amount tidak boleh negatif", ErrInvalidInput)
	}

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, 0, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback(ctx)

	var totalAmount int64
	err = tx.QueryRow(ctx, `SELECT total_amount FROM orders WHERE id=$1`, orderID).Scan(&totalAmount)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, 0, ErrOrderNotFound
		}
		return nil, 0, fmt.Errorf("get order %d: %w", orderID, err)
	}

	var totalPaid int64
	err = tx.QueryRow(ctx,
		`SELECT COALESCE(SUM(amount), 0) FROM payments WHERE order_id=$1 AND status=$2`,
		orderID, PaymentCompleted,
	).Scan(&totalPaid)
	if err != nil {
		return nil, 0, fmt.Errorf("sum payments: %w", err)
	}

	remaining := totalAmount - totalPaid
	if remaining <= 0 {
		return nil, 0, ErrAlreadySettled
	}

	p := Payment{
		OrderID:       orderID,
		PaymentMethod: in.PaymentMethod,
		Amount:        in.Amount,
		Status:        PaymentPending,
		Reference:     in.Reference,
	}
	err = tx.QueryRow(ctx, `
		INSERT INTO payments (order_id, payment_method, amount, status, reference)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at`,
		p.OrderID, p.PaymentMethod, p.Amount, p.Status, p.Reference,
	).Scan(&p.ID, &p.CreatedAt)
	if err != nil {
		return nil, 0, fmt.Errorf("insert payment: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, 0, fmt.Errorf("commit: %w", err)
	}
	return &p, remaining, nil
}

// UpdatePaymentStatus set status payment; paymentDate diisi hanya saat
// COMPLETED dan dikosongkan lagi untuk transisi lain. Kalau transisi
// COMPLETED bikin totalPaid >= totalAmount, order dinaikkan ke CONFIRMED —
// kecuali order sudah final (DELIVERED/CANCELLED tidak boleh di-reset).
// Return order yang baru lunas, nil kalau tidak ada perubahan status order.
func (r *Repo) UpdatePaymentStatus(ctx context.Context, paymentID int64, status PaymentStatus) (*Payment, *Order, error) {
	if !ValidPaymentStatus(status) {
		return nil, nil, fmt.Errorf("%w: status %s tidak dikenal", ErrInvalidInput, status)
	}

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback(ctx)

	var p Payment
	err = tx.QueryRow(ctx, `SELECT `+paymentCols+` FROM payments WHERE id=$1 FOR UPDATE`, paymentID).Scan(
		&p.ID, &p.OrderID, &p.PaymentMethod, &p.Amount, &p.Status,
		&p.Reference, &p.PaymentDate, &p.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil, ErrPaymentNotFound
		}
		return nil, nil, fmt.Errorf("get payment %d: %w", paymentID, err)
	}

	var paymentDate *time.Time
	if status == PaymentCompleted {
		now := time.Now()
		paymentDate = &now
	}
	err = tx.QueryRow(ctx, `
		UPDATE payments SET status=$2, payment_date=$3 WHERE id=$1
		RETURNING payment_date`,
		paymentID, status, paymentDate,
	).Scan(&p.PaymentDate)
	if err != nil {
		return nil, nil, fmt.Errorf("update payment %d: %w", paymentID, err)
	}
	p.Status = status

	var settled *Order
	if status == PaymentCompleted {
		// baca order + total pembayaran dalam transaksi yang sama supaya
		// tidak ada completed payment concurrent yang kelewat
		var o Order
		err = tx.QueryRow(ctx, `SELECT `+orderCols+` FROM orders WHERE id=$1 FOR UPDATE`, p.OrderID).Scan(
			&o.ID, &o.OrderNumber, &o.CustomerName, &o.CustomerPhone, &o.CustomerAddress,
			&o.TotalAmount, &o.Status, &o.Notes, &o.CreatedAt, &o.UpdatedAt,
		)
		if err != nil {
			return nil, nil, fmt.Errorf("get order %d: %w", p.OrderID, err)
		}

		var totalPaid int64
		err = tx.QueryRow(ctx,
			`SELECT COALESCE(SUM(amount), 0) FROM payments WHERE order_id=$1 AND status=$2`,
			p.OrderID, PaymentCompleted,
		).Scan(&totalPaid)
		if err != nil {
			return nil, nil, fmt.Errorf("sum payments: %w", err)
		}

		if totalPaid >= o.TotalAmount && !o.Status.IsFinal() {
			err = tx.QueryRow(ctx, `
				UPDATE orders SET status=$2, updated_at=now() WHERE id=$1
				RETURNING updated_at`,
				o.ID, StatusConfirmed,
			).Scan(&o.UpdatedAt)
			if err != nil {
				return nil, nil, fmt.Errorf("confirm order %d: %w", o.ID, err)
			}
			o.Status = StatusConfirmed
			settled = &o
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, nil, fmt.Errorf("commit: %w", err)
	}
	return &p, settled, nil
}
