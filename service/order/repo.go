package order

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/rafata1/storefront/database"
	"github.com/rafata1/storefront/model"
)

type IRepo interface {
	Transact(ctx context.Context, fn func(ctx context.Context) error) error
	ListCartLines(ctx context.Context, ownerID string) ([]model.CartLine, error)
	GetProduct(ctx context.Context, id string) (model.Product, error)
	LockProductForUpdate(ctx context.Context, id string) (model.Product, error)
	DecrementStock(ctx context.Context, productID string, quantity int) (bool, error)
	CreateOrder(ctx context.Context, order model.Order) error
	CreateOrderItems(ctx context.Context, items []model.OrderItem) error
	ClearCart(ctx context.Context, ownerID string) error
	CreateOutbox(ctx context.Context, outbox model.Outbox) error
	GetOrder(ctx context.Context, ownerID string, id string) (model.Order, error)
	ListOrderItems(ctx context.Context, orderID string) ([]model.OrderItem, error)
	ListOrders(ctx context.Context, ownerID string) ([]model.Order, error)
	GetPendingOutbox(ctx context.Context, limit int) ([]model.Outbox, error)
	MarkDoneOutboxes(ctx context.Context, ids []int64) error
}

func NewRepo(db *sqlx.DB) IRepo {
	return &repo{
		db: db,
	}
}

type repo struct {
	db *sqlx.DB
}

func (r repo) Transact(ctx context.Context, fn func(ctx context.Context) error) error {
	return database.Transact(ctx, r.db, fn)
}

var listCartLinesQuery = "SELECT ci.*, " +
	"p.id AS p_id, p.name AS p_name, p.description AS p_description, p.price AS p_price, " +
	"p.category AS p_category, p.stock_quantity AS p_stock_quantity, p.is_active AS p_is_active, " +
	"p.created_at AS p_created_at, p.updated_at AS p_updated_at " +
	"FROM cart_items ci LEFT JOIN products p ON p.id = ci.product_id " +
	"WHERE ci.owner_id = ? ORDER BY ci.created_at DESC, ci.id"

func (r repo) ListCartLines(ctx context.Context, ownerID string) ([]model.CartLine, error) {
	ext := database.Ext(ctx, r.db)
	var rows []model.CartLineRow
	err := sqlx.SelectContext(ctx, ext, &rows, ext.Rebind(listCartLinesQuery), ownerID)
	if err != nil {
		return nil, err
	}

	res := make([]model.CartLine, 0, len(rows))
	for _, row := range rows {
		res = append(res, row.Line())
	}
	return res, nil
}

var getProductQuery = "SELECT * FROM products WHERE id = ?"

func (r repo) GetProduct(ctx context.Context, id string) (model.Product, error) {
	ext := database.Ext(ctx, r.db)
	var res model.Product
	err := sqlx.GetContext(ctx, ext, &res, ext.Rebind(getProductQuery), id)
	return res, err
}

var lockProductForUpdateQuery = "SELECT * FROM products WHERE id = ? FOR UPDATE"

func (r repo) LockProductForUpdate(ctx context.Context, id string) (model.Product, error) {
	ext := database.Ext(ctx, r.db)
	var res model.Product
	err := sqlx.GetContext(ctx, ext, &res, ext.Rebind(lockProductForUpdateQuery), id)
	return res, err
}

var decrementStockQuery = "UPDATE products SET stock_quantity = stock_quantity - ?, updated_at = CURRENT_TIMESTAMP " +
	"WHERE id = ? AND stock_quantity >= ?"

// DecrementStock reports false when the product does not have quantity units left.
func (r repo) DecrementStock(ctx context.Context, productID string, quantity int) (bool, error) {
	ext := database.Ext(ctx, r.db)
	res, err := ext.ExecContext(ctx, ext.Rebind(decrementStockQuery), quantity, productID, quantity)
	if err != nil {
		return false, err
	}
	affected, err := res.RowsAffected()
	return affected == 1, err
}

var createOrderQuery = "INSERT INTO orders " +
	"(id, owner_id, total_amount, status, shipping_address, order_note, payment_reference, created_at, updated_at) " +
	"VALUES (:id, :owner_id, :total_amount, :status, :shipping_address, :order_note, :payment_reference, :created_at, :updated_at)"

func (r repo) CreateOrder(ctx context.Context, order model.Order) error {
	_, err := sqlx.NamedExecContext(ctx, database.Ext(ctx, r.db), createOrderQuery, order)
	return err
}

var createOrderItemsQuery = "INSERT INTO order_items " +
	"(id, order_id, line_no, product_id, product_name, quantity, price, created_at) " +
	"VALUES (:id, :order_id, :line_no, :product_id, :product_name, :quantity, :price, :created_at)"

func (r repo) CreateOrderItems(ctx context.Context, items []model.OrderItem) error {
	if len(items) == 0 {
		return nil
	}
	_, err := sqlx.NamedExecContext(ctx, database.Ext(ctx, r.db), createOrderItemsQuery, items)
	return err
}

var clearCartQuery = "DELETE FROM cart_items WHERE owner_id = ?"

func (r repo) ClearCart(ctx context.Context, ownerID string) error {
	ext := database.Ext(ctx, r.db)
	_, err := ext.ExecContext(ctx, ext.Rebind(clearCartQuery), ownerID)
	return err
}

var createOutboxQuery = "INSERT INTO outboxes (aggregate_id, content, status) VALUES (:aggregate_id, :content, :status)"

func (r repo) CreateOutbox(ctx context.Context, outbox model.Outbox) error {
	_, err := sqlx.NamedExecContext(ctx, database.Ext(ctx, r.db), createOutboxQuery, outbox)
	return err
}

var getOrderQuery = "SELECT * FROM orders WHERE id = ? AND owner_id = ?"

func (r repo) GetOrder(ctx context.Context, ownerID string, id string) (model.Order, error) {
	ext := database.Ext(ctx, r.db)
	var res model.Order
	err := sqlx.GetContext(ctx, ext, &res, ext.Rebind(getOrderQuery), id, ownerID)
	return res, err
}

var listOrderItemsQuery = "SELECT * FROM order_items WHERE order_id = ? ORDER BY line_no"

func (r repo) ListOrderItems(ctx context.Context, orderID string) ([]model.OrderItem, error) {
	ext := database.Ext(ctx, r.db)
	res := []model.OrderItem{}
	err := sqlx.SelectContext(ctx, ext, &res, ext.Rebind(listOrderItemsQuery), orderID)
	return res, err
}

var listOrdersQuery = "SELECT * FROM orders WHERE owner_id = ? ORDER BY created_at DESC, id"

func (r repo) ListOrders(ctx context.Context, ownerID string) ([]model.Order, error) {
	ext := database.Ext(ctx, r.db)
	res := []model.Order{}
	err := sqlx.SelectContext(ctx, ext, &res, ext.Rebind(listOrdersQuery), ownerID)
	return res, err
}

var getPendingOutboxQuery = "SELECT * FROM outboxes WHERE status = ? ORDER BY id LIMIT ?"

func (r repo) GetPendingOutbox(ctx context.Context, limit int) ([]model.Outbox, error) {
	ext := database.Ext(ctx, r.db)
	var res []model.Outbox
	err := sqlx.SelectContext(ctx, ext, &res, ext.Rebind(getPendingOutboxQuery), model.OutboxPending, limit)
	return res, err
}

var markDoneOutboxesQuery = "UPDATE outboxes SET status = ?, updated_at = CURRENT_TIMESTAMP WHERE id IN (?)"

func (r repo) MarkDoneOutboxes(ctx context.Context, ids []int64) error {
	if len(ids) == 0 {
		return nil
	}

	query, args, err := sqlx.In(markDoneOutboxesQuery, model.OutboxCompleted, ids)
	if err != nil {
		return err
	}

	ext := database.Ext(ctx, r.db)
	_, err = ext.ExecContext(ctx, ext.Rebind(query), args...)
	return err
}
