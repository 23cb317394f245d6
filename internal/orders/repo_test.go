package orders

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	pgxmock "github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	productColNames = []string{"id", "kode_produk", "nama", "kategori", "merk_motor", "stok", "harga", "deskripsi", "created_at", "updated_at"}
	orderColNames   = []string{"id", "order_number", "customer_name", "customer_phone", "customer_address", "total_amount", "status", "notes", "created_at", "updated_at"}
	paymentColNames = []string{"id", "order_id", "payment_method", "amount", "status", "reference", "payment_date", "created_at"}
)

func newMock(t *testing.T) pgxmock.PgxPoolIface {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)
	return mock
}

func validInput() CreateOrderInput {
	return CreateOrderInput{
		CustomerName:    "Budi Santoso",
		CustomerPhone:   "081234567890",
		CustomerAddress: "Jl. Mawar No. 1, Jakarta",
		Items:           []ItemInput{{ProductID: 1, Quantity: 2}},
	}
}

func TestCreateOrder(t *testing.T) {
	mock := newMock(t)
	repo := NewRepo(mock)
	now := time.Now()

	mock.ExpectBegin()
	mock.ExpectQuery(`FROM products WHERE id=\$1 FOR UPDATE`).
		WithArgs(int64(1)).
		WillReturnRows(pgxmock.NewRows(productColNames).
			AddRow(int64(1), "BRK-001", "Kampas Rem Depan", "Rem", "Honda", 5, int64(50000), nil, now, now))
	mock.ExpectQuery(`INSERT INTO orders`).
		WillReturnRows(pgxmock.NewRows([]string{"id", "created_at", "updated_at"}).AddRow(int64(10), now, now))
	mock.ExpectQuery(`INSERT INTO order_items`).
		WithArgs(int64(10), int64(1), 2, int64(50000), int64(100000)).
		WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow(int64(100)))
	mock.ExpectExec(`UPDATE products SET stok = stok - \$2`).
		WithArgs(int64(1), 2).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectQuery(`INSERT INTO payments`).
		WillReturnRows(pgxmock.NewRows([]string{"id", "created_at"}).AddRow(int64(55), now))
	mock.ExpectCommit()

	out, err := repo.Create(context.Background(), validInput())
	require.NoError(t, err)

	assert.Equal(t, int64(100000), out.TotalAmount)
	assert.Equal(t, StatusPending, out.Status)
	assert.Contains(t, out.OrderNumber, "ORD-")

	require.Len(t, out.Items, 1)
	assert.Equal(t, int64(50000), out.Items[0].Price)
	assert.Equal(t, int64(100000), out.Items[0].Subtotal)
	assert.Equal(t, 3, out.Items[0].Product.Stok)

	require.Len(t, out.Payments, 1)
	assert.Equal(t, "MANUAL_TRANSFER", out.Payments[0].PaymentMethod)
	assert.Equal(t, int64(100000), out.Payments[0].Amount)
	assert.Equal(t, PaymentPending, out.Payments[0].Status)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateOrderInsufficientStock(t *testing.T) {
	mock := newMock(t)
	repo := NewRepo(mock)
	now := time.Now()

	mock.ExpectBegin()
	mock.ExpectQuery(`FROM products WHERE id=\$1 FOR UPDATE`).
		WithArgs(int64(1)).
		WillReturnRows(pgxmock.NewRows(productColNames).
			AddRow(int64(1), "BRK-001", "Kampas Rem Depan", "Rem", "Honda", 0, int64(50000), nil, now, now))
	mock.ExpectRollback()

	in := validInput()
	in.Items = []ItemInput{{ProductID: 1, Quantity: 1}}
	_, err := repo.Create(context.Background(), in)
	assert.ErrorIs(t, err, ErrInsufficientStock)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateOrderProductNotFound(t *testing.T) {
	mock := newMock(t)
	repo := NewRepo(mock)

	mock.ExpectBegin()
	mock.ExpectQuery(`FROM products WHERE id=\$1 FOR UPDATE`).
		WithArgs(int64(99)).
		WillReturnError(pgx.ErrNoRows)
	mock.ExpectRollback()

	in := validInput()
	in.Items = []ItemInput{{ProductID: 99, Quantity: 1}}
	_, err := repo.Create(context.Background(), in)
	assert.ErrorIs(t, err, ErrProductNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateOrderValidation(t *testing.T) {
	mock := newMock(t)
	repo := NewRepo(mock)

	in := validInput()
	in.Items = nil
	_, err := repo.Create(context.Background(), in)
	assert.ErrorIs(t, err, ErrInvalidInput)

	in = validInput()
	in.Items = []ItemInput{{ProductID: 1, Quantity: 0}}
	_, err = repo.Create(context.Background(), in)
	assert.ErrorIs(t, err, ErrInvalidInput)

	in = validInput()
	in.CustomerName = ""
	_, err = repo.Create(context.Background(), in)
	assert.ErrorIs(t, err, ErrInvalidInput)

	// tidak ada satu pun statement yang boleh sampai ke DB
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateOrderFinalized(t *testing.T) {
	mock := newMock(t)
	repo := NewRepo(mock)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT status FROM orders WHERE id=\$1 FOR UPDATE`).
		WithArgs(int64(7)).
		WillReturnRows(pgxmock.NewRows([]string{"status"}).AddRow(StatusDelivered))
	mock.ExpectRollback()

	name := "Nama Baru"
	_, err := repo.Update(context.Background(), 7, UpdateOrderInput{CustomerName: &name})
	assert.ErrorIs(t, err, ErrOrderFinalized)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateOrderPartial(t *testing.T) {
	mock := newMock(t)
	repo := NewRepo(mock)
	now := time.Now()

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT status FROM orders WHERE id=\$1 FOR UPDATE`).
		WithArgs(int64(7)).
		WillReturnRows(pgxmock.NewRows([]string{"status"}).AddRow(StatusPending))
	mock.ExpectQuery(`UPDATE orders SET`).
		WillReturnRows(pgxmock.NewRows(orderColNames).
			AddRow(int64(7), "ORD-1-ABCDEF123", "Budi Santoso", "081234567890", "Jl. Mawar No. 1", int64(100000), StatusShipped, nil, now, now))
	mock.ExpectCommit()
	mock.ExpectQuery(`FROM order_items oi`).
		WillReturnRows(pgxmock.NewRows([]string{"id", "order_id", "product_id", "quantity", "price", "subtotal",
			"p_id", "kode_produk", "nama", "kategori", "merk_motor", "stok", "harga", "deskripsi", "created_at", "updated_at"}))
	mock.ExpectQuery(`FROM payments WHERE order_id = ANY`).
		WillReturnRows(pgxmock.NewRows(paymentColNames))

	status := StatusShipped
	out, err := repo.Update(context.Background(), 7, UpdateOrderInput{Status: &status})
	require.NoError(t, err)
	assert.Equal(t, StatusShipped, out.Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAddPayment(t *testing.T) {
	mock := newMock(t)
	repo := NewRepo(mock)
	now := time.Now()

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT total_amount FROM orders WHERE id=\$1`).
		WithArgs(int64(10)).
		WillReturnRows(pgxmock.NewRows([]string{"total_amount"}).AddRow(int64(100000)))
	mock.ExpectQuery(`SELECT COALESCE\(SUM\(amount\), 0\) FROM payments`).
		WillReturnRows(pgxmock.NewRows([]string{"sum"}).AddRow(int64(40000)))
	mock.ExpectQuery(`INSERT INTO payments`).
		WillReturnRows(pgxmock.NewRows([]string{"id", "created_at"}).AddRow(int64(56), now))
	mock.ExpectCommit()

	p, remaining, err := repo.AddPayment(context.Background(), 10, AddPaymentInput{
		PaymentMethod: "CASH",
		Amount:        60000,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(60000), remaining)
	assert.Equal(t, PaymentPending, p.Status)
	assert.Equal(t, int64(60000), p.Amount)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAddPaymentAlreadySettled(t *testing.T) {
	mock := newMock(t)
	repo := NewRepo(mock)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT total_amount FROM orders WHERE id=\$1`).
		WithArgs(int64(10)).
		WillReturnRows(pgxmock.NewRows([]string{"total_amount"}).AddRow(int64(100000)))
	mock.ExpectQuery(`SELECT COALESCE\(SUM\(amount\), 0\) FROM payments`).
		WillReturnRows(pgxmock.NewRows([]string{"sum"}).AddRow(int64(100000)))
	mock.ExpectRollback()

	_, _, err := repo.AddPayment(context.Background(), 10, AddPaymentInput{
		PaymentMethod: "CASH",
		Amount:        5000,
	})
	assert.ErrorIs(t, err, ErrAlreadySettled)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAddPaymentOrderNotFound(t *testing.T) {
	mock := newMock(t)
	repo := NewRepo(mock)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT total_amount FROM orders WHERE id=\$1`).
		WithArgs(int64(404)).
		WillReturnError(pgx.ErrNoRows)
	mock.ExpectRollback()

	_, _, err := repo.AddPayment(context.Background(), 404, AddPaymentInput{PaymentMethod: "CASH"})
	assert.ErrorIs(t, err, ErrOrderNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdatePaymentStatusCompletesOrder(t *testing.T) {
	mock := newMock(t)
	repo := NewRepo(mock)
	now := time.Now()

	mock.ExpectBegin()
	mock.ExpectQuery(`FROM payments WHERE id=\$1 FOR UPDATE`).
		WithArgs(int64(5)).
		WillReturnRows(pgxmock.NewRows(paymentColNames).
			AddRow(int64(5), int64(10), "MANUAL_TRANSFER", int64(100000), PaymentPending, nil, nil, now))
	mock.ExpectQuery(`UPDATE payments SET status=\$2, payment_date=\$3`).
		WillReturnRows(pgxmock.NewRows([]string{"payment_date"}).AddRow(&now))
	mock.ExpectQuery(`FROM orders WHERE id=\$1 FOR UPDATE`).
		WithArgs(int64(10)).
		WillReturnRows(pgxmock.NewRows(orderColNames).
			AddRow(int64(10), "ORD-1-ABCDEF123", "Budi Santoso", "081234567890", "Jl. Mawar No. 1", int64(100000), StatusPending, nil, now, now))
	mock.ExpectQuery(`SELECT COALESCE\(SUM\(amount\), 0\) FROM payments`).
		WillReturnRows(pgxmock.NewRows([]string{"sum"}).AddRow(int64(100000)))
	mock.ExpectQuery(`UPDATE orders SET status=\$2`).
		WillReturnRows(pgxmock.NewRows([]string{"updated_at"}).AddRow(now))
	mock.ExpectCommit()

	p, settled, err := repo.UpdatePaymentStatus(context.Background(), 5, PaymentCompleted)
	require.NoError(t, err)
	assert.Equal(t, PaymentCompleted, p.Status)
	assert.NotNil(t, p.PaymentDate)
	require.NotNil(t, settled)
	assert.Equal(t, StatusConfirmed, settled.Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// Order yang sudah final tidak boleh di-reset ke CONFIRMED oleh pelunasan
// yang datang belakangan.
func TestUpdatePaymentStatusFinalizedGuard(t *testing.T) {
	mock := newMock(t)
	repo := NewRepo(mock)
	now := time.Now()

	mock.ExpectBegin()
	mock.ExpectQuery(`FROM payments WHERE id=\$1 FOR UPDATE`).
		WithArgs(int64(5)).
		WillReturnRows(pgxmock.NewRows(paymentColNames).
			AddRow(int64(5), int64(10), "MANUAL_TRANSFER", int64(100000), PaymentPending, nil, nil, now))
	mock.ExpectQuery(`UPDATE payments SET status=\$2, payment_date=\$3`).
		WillReturnRows(pgxmock.NewRows([]string{"payment_date"}).AddRow(&now))
	mock.ExpectQuery(`FROM orders WHERE id=\$1 FOR UPDATE`).
		WithArgs(int64(10)).
		WillReturnRows(pgxmock.NewRows(orderColNames).
			AddRow(int64(10), "ORD-1-ABCDEF123", "Budi Santoso", "081234567890", "Jl. Mawar No. 1", int64(100000), StatusDelivered, nil, now, now))
	mock.ExpectQuery(`SELECT COALESCE\(SUM\(amount\), 0\) FROM payments`).
		WillReturnRows(pgxmock.NewRows([]string{"sum"}).AddRow(int64(100000)))
	mock.ExpectCommit()

	p, settled, err := repo.UpdatePaymentStatus(context.Background(), 5, PaymentCompleted)
	require.NoError(t, err)
	assert.Equal(t, PaymentCompleted, p.Status)
	assert.Nil(t, settled)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdatePaymentStatusClearsDate(t *testing.T) {
	mock := newMock(t)
	repo := NewRepo(mock)
	now := time.Now()
	completedAt := now.Add(-time.Hour)

	mock.ExpectBegin()
	mock.ExpectQuery(`FROM payments WHERE id=\$1 FOR UPDATE`).
		WithArgs(int64(5)).
		WillReturnRows(pgxmock.NewRows(paymentColNames).
			AddRow(int64(5), int64(10), "MANUAL_TRANSFER", int64(100000), PaymentCompleted, nil, &completedAt, now))
	mock.ExpectQuery(`UPDATE payments SET status=\$2, payment_date=\$3`).
		WillReturnRows(pgxmock.NewRows([]string{"payment_date"}).AddRow(nil))
	mock.ExpectCommit()

	p, settled, err := repo.UpdatePaymentStatus(context.Background(), 5, PaymentRefunded)
	require.NoError(t, err)
	assert.Equal(t, PaymentRefunded, p.Status)
	assert.Nil(t, p.PaymentDate)
	assert.Nil(t, settled)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdatePaymentStatusNotFound(t *testing.T) {
	mock := newMock(t)
	repo := NewRepo(mock)

	mock.ExpectBegin()
	mock.ExpectQuery(`FROM payments WHERE id=\$1 FOR UPDATE`).
		WithArgs(int64(404)).
		WillReturnError(pgx.ErrNoRows)
	mock.ExpectRollback()

	_, _, err := repo.UpdatePaymentStatus(context.Background(), 404, PaymentCompleted)
	assert.ErrorIs(t, err, ErrPaymentNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdatePaymentStatusInvalid(t *testing.T) {
	mock := newMock(t)
	repo := NewRepo(mock)

	_, _, err := repo.UpdatePaymentStatus(context.Background(), 5, PaymentStatus("PAID"))
	assert.ErrorIs(t, err, ErrInvalidInput)
	assert.NoError(t, mock.ExpectationsWereMet())
}
