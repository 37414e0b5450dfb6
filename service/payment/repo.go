package payment

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/rafata1/storefront/database"
	"github.com/rafata1/storefront/model"
)

type IRepo interface {
	Transact(ctx context.Context, fn func(ctx context.Context) error) error
	GetOrder(ctx context.Context, ownerID string, id string) (model.Order, error)
	TransitionStatus(ctx context.Context, ownerID string, id string, from model.OrderStatus, to model.OrderStatus, paymentRef string) (bool, error)
	ListOrderItems(ctx context.Context, orderID string) ([]model.OrderItem, error)
	CreateOutbox(ctx context.Context, outbox model.Outbox) error
}

type repo struct {
	db *sqlx.DB
}

func NewRepo(db *sqlx.DB) IRepo {
	return &repo{
		db: db,
	}
}

func (r repo) Transact(ctx context.Context, fn func(ctx context.Context) error) error {
	return database.Transact(ctx, r.db, fn)
}

var getOrderQuery = "SELECT * FROM orders WHERE id = ? AND owner_id = ?"

func (r repo) GetOrder(ctx context.Context, ownerID string, id string) (model.Order, error) {
	ext := database.Ext(ctx, r.db)
	var res model.Order
	err := sqlx.GetContext(ctx, ext, &res, ext.Rebind(getOrderQuery), id, ownerID)
	return res, err
}

var (
	transitionStatusQuery = "UPDATE orders SET status = ?, updated_at = CURRENT_TIMESTAMP " +
		"WHERE id = ? AND owner_id = ? AND status = ?"
	transitionStatusWithReferenceQuery = "UPDATE orders SET status = ?, payment_reference = ?, updated_at = CURRENT_TIMESTAMP " +
		"WHERE id = ? AND owner_id = ? AND status = ?"
)

// TransitionStatus moves the order from one status to another only if it is still in from.
// It reports whether the row changed.
func (r repo) TransitionStatus(
	ctx context.Context, ownerID string, id string, from model.OrderStatus, to model.OrderStatus, paymentRef string,
) (bool, error) {
	ext := database.Ext(ctx, r.db)

	query, args := transitionStatusQuery, []interface{}{to, id, ownerID, from}
	if paymentRef != "" {
		query, args = transitionStatusWithReferenceQuery, []interface{}{to, paymentRef, id, ownerID, from}
	}

	res, err := ext.ExecContext(ctx, ext.Rebind(query), args...)
	if err != nil {
		return false, err
	}
	affected, err := res.RowsAffected()
	return affected == 1, err
}

var listOrderItemsQuery = "SELECT * FROM order_items WHERE order_id = ? ORDER BY line_no"

func (r repo) ListOrderItems(ctx context.Context, orderID string) ([]model.OrderItem, error) {
	ext := database.Ext(ctx, r.db)
	res := []model.OrderItem{}
	err := sqlx.SelectContext(ctx, ext, &res, ext.Rebind(listOrderItemsQuery), orderID)
	return res, err
}

var createOutboxQuery = "INSERT INTO outboxes (aggregate_id, content, status) VALUES (:aggregate_id, :content, :status)"

func (r repo) CreateOutbox(ctx context.Context, outbox model.Outbox) error {
	_, err := sqlx.NamedExecContext(ctx, database.Ext(ctx, r.db), createOutboxQuery, outbox)
	return err
}
