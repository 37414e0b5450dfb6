package product

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rafata1/storefront/model"
)

func Test_Repo_ListProducts(t *testing.T) {
	raw, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer raw.Close()
	r := NewRepo(sqlx.NewDb(raw, "mysql"))
	now := time.Now()

	mock.ExpectQuery(regexp.QuoteMeta(countProductsQuery)).
		WithArgs(true, "books", "books").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(7))
	mock.ExpectQuery(regexp.QuoteMeta("ORDER BY price ASC, id LIMIT ? OFFSET ?")).
		WithArgs(true, "books", "books", 5, 5).
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "name", "description", "price", "category", "stock_quantity", "is_active", "created_at", "updated_at",
		}).AddRow("p-1", "Go", nil, []byte("30.00"), "books", 3, true, now, now))

	filter := model.ProductFilter{Category: "books", Sort: model.SortPriceAsc, Page: 2, PageSize: 5}.Normalize()
	items, total, err := r.ListProducts(context.Background(), filter)
	require.NoError(t, err)
	assert.Equal(t, 7, total)
	require.Len(t, items, 1)
	assert.Equal(t, "Go", items[0].Name)
	assert.NoError(t, mock.ExpectationsWereMet())
}
