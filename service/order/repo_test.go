package order

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rafata1/storefront/model"
)

func newMockRepo(t *testing.T) (IRepo, sqlmock.Sqlmock) {
	t.Helper()
	raw, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = raw.Close() })
	return NewRepo(sqlx.NewDb(raw, "mysql")), mock
}

func Test_Repo_DecrementStock(t *testing.T) {
	ctx := context.Background()
	r, mock := newMockRepo(t)

	mock.ExpectExec(regexp.QuoteMeta(decrementStockQuery)).
		WithArgs(2, "p-1", 2).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta(decrementStockQuery)).
		WithArgs(9, "p-1", 9).
		WillReturnResult(sqlmock.NewResult(0, 0))

	ok, err := r.DecrementStock(ctx, "p-1", 2)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = r.DecrementStock(ctx, "p-1", 9)
	require.NoError(t, err)
	assert.False(t, ok)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func Test_Repo_CreateOrderInTransaction(t *testing.T) {
	ctx := context.Background()
	r, mock := newMockRepo(t)
	now := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO orders").
		WithArgs("o-1", "user_a", sqlmock.AnyArg(), "pending", sqlmock.AnyArg(), nil, nil, now, now).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO order_items").
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec(regexp.QuoteMeta(clearCartQuery)).
		WithArgs("user_a").
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectCommit()

	err := r.Transact(ctx, func(ctx context.Context) error {
		err := r.CreateOrder(ctx, model.Order{
			ID:          "o-1",
			OwnerID:     "user_a",
			TotalAmount: decimal.NewFromInt(20000),
			Status:      model.OrderPending,
			CreatedAt:   now,
			UpdatedAt:   now,
		})
		if err != nil {
			return err
		}
		err = r.CreateOrderItems(ctx, []model.OrderItem{
			{ID: "i-1", OrderID: "o-1", LineNo: 1, ProductID: "p-1", ProductName: "A", Quantity: 1, Price: decimal.NewFromInt(10000), CreatedAt: now},
			{ID: "i-2", OrderID: "o-1", LineNo: 2, ProductID: "p-2", ProductName: "B", Quantity: 1, Price: decimal.NewFromInt(10000), CreatedAt: now},
		})
		if err != nil {
			return err
		}
		return r.ClearCart(ctx, "user_a")
	})

	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func Test_Repo_GetPendingOutboxAndMarkDone(t *testing.T) {
	ctx := context.Background()
	r, mock := newMockRepo(t)

	rows := sqlmock.NewRows([]string{"id", "aggregate_id", "content", "status", "created_at", "updated_at"}).
		AddRow(int64(1), "o-1", []byte(`{}`), 1, time.Now(), time.Now()).
		AddRow(int64(2), "o-2", []byte(`{}`), 1, time.Now(), time.Now())
	mock.ExpectQuery(regexp.QuoteMeta(getPendingOutboxQuery)).
		WithArgs(model.OutboxPending, 10).
		WillReturnRows(rows)
	mock.ExpectExec(regexp.QuoteMeta("UPDATE outboxes SET status = ?, updated_at = CURRENT_TIMESTAMP WHERE id IN (?, ?)")).
		WithArgs(model.OutboxCompleted, int64(1), int64(2)).
		WillReturnResult(sqlmock.NewResult(0, 2))

	outboxes, err := r.GetPendingOutbox(ctx, 10)
	require.NoError(t, err)
	require.Len(t, outboxes, 2)
	assert.Equal(t, "o-2", outboxes[1].AggregateID)

	require.NoError(t, r.MarkDoneOutboxes(ctx, extractIDs(outboxes)))
	require.NoError(t, r.MarkDoneOutboxes(ctx, nil))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func Test_Repo_GetOrderScansAddress(t *testing.T) {
	ctx := context.Background()
	r, mock := newMockRepo(t)

	rows := sqlmock.NewRows([]string{
		"id", "owner_id", "total_amount", "status", "shipping_address", "order_note", "payment_reference", "created_at", "updated_at",
	}).AddRow(
		"o-1", "user_a", []byte("20000.00"), "confirmed",
		[]byte(`{"recipient_name":"Kim","phone":"010","postal_code":"06236","address":"A","detail_address":"B"}`),
		nil, "pay_1", time.Now(), time.Now(),
	)
	mock.ExpectQuery(regexp.QuoteMeta(getOrderQuery)).WithArgs("o-1", "user_a").WillReturnRows(rows)

	order, err := r.GetOrder(ctx, "user_a", "o-1")
	require.NoError(t, err)
	assert.Equal(t, model.OrderConfirmed, order.Status)
	assert.Equal(t, "Kim", order.ShippingAddress.RecipientName)
	assert.True(t, decimal.NewFromInt(20000).Equal(order.TotalAmount))
	assert.Nil(t, order.OrderNote)
	require.NotNil(t, order.PaymentReference)
	assert.Equal(t, "pay_1", *order.PaymentReference)
	assert.NoError(t, mock.ExpectationsWereMet())
}
