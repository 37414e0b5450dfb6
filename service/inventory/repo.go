package inventory

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/rafata1/storefront/database"
)

type IRepo interface {
	Transact(ctx context.Context, fn func(ctx context.Context) error) error
	IsProcessed(ctx context.Context, orderID string) (bool, error)
	MarkProcessedOrder(ctx context.Context, orderID string) error
	IncrementStock(ctx context.Context, productID string, quantity int) error
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

var isProcessedQuery = "SELECT count(*) FROM processed_orders WHERE order_id = ?"

func (r repo) IsProcessed(ctx context.Context, orderID string) (bool, error) {
	ext := database.Ext(ctx, r.db)
	var res int
	err := sqlx.GetContext(ctx, ext, &res, ext.Rebind(isProcessedQuery), orderID)
	return res > 0, err
}

var markProcessedOrderQuery = "INSERT INTO processed_orders (order_id) VALUES (?)"

func (r repo) MarkProcessedOrder(ctx context.Context, orderID string) error {
	ext := database.Ext(ctx, r.db)
	_, err := ext.ExecContext(ctx, ext.Rebind(markProcessedOrderQuery), orderID)
	return err
}

var incrementStockQuery = "UPDATE products SET stock_quantity = stock_quantity + ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?"

func (r repo) IncrementStock(ctx context.Context, productID string, quantity int) error {
	ext := database.Ext(ctx, r.db)
	_, err := ext.ExecContext(ctx, ext.Rebind(incrementStockQuery), quantity, productID)
	return err
}
