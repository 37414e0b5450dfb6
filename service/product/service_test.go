package product

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/rafata1/storefront/apperror"
	"github.com/rafata1/storefront/memstore"
	"github.com/rafata1/storefront/model"
)

func seedCatalog(store *memstore.Store) []model.Product {
	books, toys := "books", "toys"
	base := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	products := []model.Product{
		{ID: uuid.NewString(), Name: "Gopher Book", Price: decimal.NewFromInt(30), Category: &books, StockQuantity: 3, IsActive: true, CreatedAt: base},
		{ID: uuid.NewString(), Name: "Alpha Book", Price: decimal.NewFromInt(10), Category: &books, StockQuantity: 3, IsActive: true, CreatedAt: base.Add(time.Hour)},
		{ID: uuid.NewString(), Name: "Yo-yo", Price: decimal.NewFromInt(20), Category: &toys, StockQuantity: 3, IsActive: true, CreatedAt: base.Add(2 * time.Hour)},
		{ID: uuid.NewString(), Name: "Retired", Price: decimal.NewFromInt(5), Category: &books, StockQuantity: 3, IsActive: false, CreatedAt: base.Add(3 * time.Hour)},
	}
	for _, p := range products {
		store.PutProduct(p)
	}
	return products
}

func names(items []model.Product) []string {
	var res []string
	for _, p := range items {
		res = append(res, p.Name)
	}
	return res
}

func Test_ListProducts(t *testing.T) {
	ctx := context.Background()
	store := memstore.New()
	seedCatalog(store)
	svc := NewService(store, zap.NewNop())

	page, err := svc.ListProducts(ctx, model.ProductFilter{})
	require.NoError(t, err)
	assert.Equal(t, []string{"Yo-yo", "Alpha Book", "Gopher Book"}, names(page.Items))
	assert.Equal(t, 3, page.Total)
	assert.Equal(t, 1, page.TotalPages)
	assert.Equal(t, model.DefaultPageSize, page.PageSize)

	page, err = svc.ListProducts(ctx, model.ProductFilter{Category: "books", Sort: model.SortPriceDesc})
	require.NoError(t, err)
	assert.Equal(t, []string{"Gopher Book", "Alpha Book"}, names(page.Items))

	page, err = svc.ListProducts(ctx, model.ProductFilter{Category: "all", Sort: model.SortNameAsc, Page: 2, PageSize: 2})
	require.NoError(t, err)
	assert.Equal(t, []string{"Yo-yo"}, names(page.Items))
	assert.Equal(t, 2, page.TotalPages)

	_, err = svc.ListProducts(ctx, model.ProductFilter{Sort: "popular"})
	assert.True(t, apperror.Is(err, apperror.ValidationFailed))
}

func Test_ListProducts_StoreFailure(t *testing.T) {
	store := memstore.New()
	store.FailOn("ListProducts", errors.New("gone"))
	svc := NewService(store, zap.NewNop())

	_, err := svc.ListProducts(context.Background(), model.ProductFilter{})
	assert.True(t, apperror.Is(err, apperror.Internal))
}

func Test_GetProduct(t *testing.T) {
	ctx := context.Background()
	store := memstore.New()
	products := seedCatalog(store)
	svc := NewService(store, zap.NewNop())

	p, err := svc.GetProduct(ctx, products[0].ID)
	require.NoError(t, err)
	assert.Equal(t, "Gopher Book", p.Name)

	_, err = svc.GetProduct(ctx, products[3].ID)
	assert.True(t, apperror.Is(err, apperror.NotFound))

	_, err = svc.GetProduct(ctx, uuid.NewString())
	assert.True(t, apperror.Is(err, apperror.NotFound))

	_, err = svc.GetProduct(ctx, "nope")
	assert.True(t, apperror.Is(err, apperror.NotFound))
}
