package product

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/rafata1/storefront/database"
	"github.com/rafata1/storefront/model"
)

type IRepo interface {
	ListProducts(ctx context.Context, filter model.ProductFilter) ([]model.Product, int, error)
	GetProduct(ctx context.Context, id string) (model.Product, error)
}

type repo struct {
	db *sqlx.DB
}

func NewRepo(db *sqlx.DB) IRepo {
	return &repo{
		db: db,
	}
}

var orderByClauses = map[model.ProductSort]string{
	model.SortCreatedAtDesc: "created_at DESC, id",
	model.SortCreatedAtAsc:  "created_at ASC, id",
	model.SortPriceAsc:      "price ASC, id",
	model.SortPriceDesc:     "price DESC, id",
	model.SortNameAsc:       "name ASC, id",
}

var countProductsQuery = "SELECT count(*) FROM products WHERE is_active = ? AND (? = '' OR category = ?)"

var listProductsQuery = "SELECT * FROM products WHERE is_active = ? AND (? = '' OR category = ?) ORDER BY %s LIMIT ? OFFSET ?"

// ListProducts expects a normalized filter.
func (r repo) ListProducts(ctx context.Context, filter model.ProductFilter) ([]model.Product, int, error) {
	ext := database.Ext(ctx, r.db)

	var total int
	err := sqlx.GetContext(ctx, ext, &total, ext.Rebind(countProductsQuery), true, filter.Category, filter.Category)
	if err != nil {
		return nil, 0, err
	}

	orderBy, ok := orderByClauses[filter.Sort]
	if !ok {
		orderBy = orderByClauses[model.SortCreatedAtDesc]
	}
	query := ext.Rebind(fmt.Sprintf(listProductsQuery, orderBy))

	res := []model.Product{}
	err = sqlx.SelectContext(ctx, ext, &res, query, true, filter.Category, filter.Category, filter.PageSize, filter.Offset())
	return res, total, err
}

var getProductQuery = "SELECT * FROM products WHERE id = ?"

func (r repo) GetProduct(ctx context.Context, id string) (model.Product, error) {
	ext := database.Ext(ctx, r.db)
	var res model.Product
	err := sqlx.GetContext(ctx, ext, &res, ext.Rebind(getProductQuery), id)
	return res, err
}
