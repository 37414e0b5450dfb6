package cart

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/rafata1/storefront/database"
	"github.com/rafata1/storefront/model"
)

type IRepo interface {
	Transact(ctx context.Context, fn func(ctx context.Context) error) error
	GetProduct(ctx context.Context, id string) (model.Product, error)
	LockProductForUpdate(ctx context.Context, id string) (model.Product, error)
	LockCartItemForUpdate(ctx context.Context, ownerID string, id string) (model.CartItem, error)
	LockCartItemByProduct(ctx context.Context, ownerID string, productID string) (model.CartItem, error)
	InsertCartItem(ctx context.Context, item model.CartItem) error
	UpdateCartItemQuantity(ctx context.Context, ownerID string, id string, quantity int) error
	DeleteCartItem(ctx context.Context, ownerID string, id string) (int64, error)
	ClearCart(ctx context.Context, ownerID string) error
	ListCartLines(ctx context.Context, ownerID string) ([]model.CartLine, error)
	CountCartItems(ctx context.Context, ownerID string) (int, error)
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

var lockCartItemForUpdateQuery = "SELECT * FROM cart_items WHERE id = ? AND owner_id = ? FOR UPDATE"

func (r repo) LockCartItemForUpdate(ctx context.Context, ownerID string, id string) (model.CartItem, error) {
	ext := database.Ext(ctx, r.db)
	var res model.CartItem
	err := sqlx.GetContext(ctx, ext, &res, ext.Rebind(lockCartItemForUpdateQuery), id, ownerID)
	return res, err
}

var lockCartItemByProductQuery = "SELECT * FROM cart_items WHERE owner_id = ? AND product_id = ? FOR UPDATE"

func (r repo) LockCartItemByProduct(ctx context.Context, ownerID string, productID string) (model.CartItem, error) {
	ext := database.Ext(ctx, r.db)
	var res model.CartItem
	err := sqlx.GetContext(ctx, ext, &res, ext.Rebind(lockCartItemByProductQuery), ownerID, productID)
	return res, err
}

var insertCartItemQuery = "INSERT INTO cart_items (id, owner_id, product_id, quantity, created_at, updated_at) " +
	"VALUES (:id, :owner_id, :product_id, :quantity, :created_at, :updated_at)"

func (r repo) InsertCartItem(ctx context.Context, item model.CartItem) error {
	_, err := sqlx.NamedExecContext(ctx, database.Ext(ctx, r.db), insertCartItemQuery, item)
	return err
}

var updateCartItemQuantityQuery = "UPDATE cart_items SET quantity = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ? AND owner_id = ?"

func (r repo) UpdateCartItemQuantity(ctx context.Context, ownerID string, id string, quantity int) error {
	ext := database.Ext(ctx, r.db)
	_, err := ext.ExecContext(ctx, ext.Rebind(updateCartItemQuantityQuery), quantity, id, ownerID)
	return err
}

var deleteCartItemQuery = "DELETE FROM cart_items WHERE id = ? AND owner_id = ?"

func (r repo) DeleteCartItem(ctx context.Context, ownerID string, id string) (int64, error) {
	ext := database.Ext(ctx, r.db)
	res, err := ext.ExecContext(ctx, ext.Rebind(deleteCartItemQuery), id, ownerID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

var clearCartQuery = "DELETE FROM cart_items WHERE owner_id = ?"

func (r repo) ClearCart(ctx context.Context, ownerID string) error {
	ext := database.Ext(ctx, r.db)
	_, err := ext.ExecContext(ctx, ext.Rebind(clearCartQuery), ownerID)
	return err
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

var countCartItemsQuery = "SELECT count(*) FROM cart_items WHERE owner_id = ?"

func (r repo) CountCartItems(ctx context.Context, ownerID string) (int, error) {
	ext := database.Ext(ctx, r.db)
	var res int
	err := sqlx.GetContext(ctx, ext, &res, ext.Rebind(countCartItemsQuery), ownerID)
	return res, err
}
