package model

import (
	"database/sql"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_SummarizeCart(t *testing.T) {
	lines := []CartLine{
		{CartItem: CartItem{Quantity: 2}, Product: &Product{Price: decimal.NewFromInt(10000)}},
		{CartItem: CartItem{Quantity: 3}, Product: &Product{Price: decimal.RequireFromString("1.50")}},
		{CartItem: CartItem{Quantity: 1}},
	}

	summary := SummarizeCart(lines)

	assert.Equal(t, 6, summary.TotalQuantity)
	assert.Equal(t, 3, summary.ItemCount)
	assert.True(t, decimal.RequireFromString("20004.50").Equal(summary.TotalAmount))
}

func Test_ShippingAddress_RoundTrip(t *testing.T) {
	in := ShippingAddress{
		RecipientName: "Kim",
		Phone:         "010-1234-5678",
		PostalCode:    "06236",
		Address:       "Teheran-ro 123",
		DetailAddress: "4F",
	}

	v, err := in.Value()
	require.NoError(t, err)

	var out ShippingAddress
	require.NoError(t, out.Scan([]byte(v.(string))))
	assert.Equal(t, in, out)

	require.NoError(t, out.Scan(nil))
	assert.Equal(t, ShippingAddress{}, out)

	assert.Error(t, out.Scan(42))
}

func Test_AmountMatches(t *testing.T) {
	total := decimal.NewFromInt(20000)

	assert.True(t, AmountMatches(total, decimal.NewFromInt(20000)))
	assert.True(t, AmountMatches(total, decimal.RequireFromString("20000.01")))
	assert.True(t, AmountMatches(total, decimal.RequireFromString("19999.99")))
	assert.False(t, AmountMatches(total, decimal.RequireFromString("20000.02")))
	assert.False(t, AmountMatches(total, decimal.NewFromInt(19000)))
}

func Test_ProductFilter_Normalize(t *testing.T) {
	f := ProductFilter{Category: "all"}.Normalize()

	assert.Equal(t, ProductFilter{Sort: SortCreatedAtDesc, Page: 1, PageSize: DefaultPageSize}, f)
	assert.Equal(t, 0, f.Offset())

	f = ProductFilter{Category: "books", Sort: SortPriceAsc, Page: 3, PageSize: 5}.Normalize()
	assert.Equal(t, "books", f.Category)
	assert.Equal(t, 10, f.Offset())
}

func Test_OrderItem_LineTotal(t *testing.T) {
	item := OrderItem{Quantity: 3, Price: decimal.RequireFromString("9.99")}
	assert.True(t, decimal.RequireFromString("29.97").Equal(item.LineTotal()))
}

func Test_CartLineRow_Line(t *testing.T) {
	item := CartItem{ID: "c-1", OwnerID: "user_a", ProductID: "p-1", Quantity: 2}

	orphan := CartLineRow{CartItem: item}.Line()
	assert.Equal(t, item, orphan.CartItem)
	assert.Nil(t, orphan.Product)

	joined := CartLineRow{
		CartItem:       item,
		PID:            sql.NullString{String: "p-1", Valid: true},
		PName:          sql.NullString{String: "Keyboard", Valid: true},
		PPrice:         decimal.NullDecimal{Decimal: decimal.NewFromInt(10000), Valid: true},
		PStockQuantity: sql.NullInt64{Int64: 4, Valid: true},
		PIsActive:      sql.NullBool{Bool: true, Valid: true},
	}.Line()
	require.NotNil(t, joined.Product)
	assert.Equal(t, "Keyboard", joined.Product.Name)
	assert.Equal(t, 4, joined.Product.StockQuantity)
	assert.True(t, joined.Product.IsActive)
	assert.True(t, decimal.NewFromInt(10000).Equal(joined.Product.Price))
}
