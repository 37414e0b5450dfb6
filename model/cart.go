package model

import (
	"database/sql"
	"time"

	"github.com/shopspring/decimal"
)

const MaxCartQuantity = 999

type CartItem struct {
	ID        string    `db:"id" json:"id"`
	OwnerID   string    `db:"owner_id" json:"owner_id"`
	ProductID string    `db:"product_id" json:"product_id"`
	Quantity  int       `db:"quantity" json:"quantity"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// CartLine is a cart item joined with the current product row.
// Product is nil when the product no longer exists.
type CartLine struct {
	CartItem
	Product *Product `json:"product"`
}

type CartSummary struct {
	TotalQuantity int             `json:"total_quantity"`
	TotalAmount   decimal.Decimal `json:"total_amount"`
	ItemCount     int             `json:"item_count"`
}

// SummarizeCart adds up quantities and line totals. Lines without a product only count quantity.
func SummarizeCart(lines []CartLine) CartSummary {
	summary := CartSummary{TotalAmount: decimal.Zero, ItemCount: len(lines)}
	for _, line := range lines {
		summary.TotalQuantity += line.Quantity
		if line.Product != nil {
			summary.TotalAmount = summary.TotalAmount.Add(line.Product.Price.Mul(decimal.NewFromInt(int64(line.Quantity))))
		}
	}
	return summary
}

type AddToCartInput struct {
	ProductID string `json:"product_id" validate:"required,uuid"`
	Quantity  int    `json:"quantity" validate:"gte=1,lte=999"`
}

type UpdateCartQuantityInput struct {
	CartItemID string `json:"cart_item_id" validate:"required,uuid"`
	Quantity   int    `json:"quantity" validate:"gte=1,lte=999"`
}

type RemoveFromCartInput struct {
	CartItemID string `json:"cart_item_id" validate:"required,uuid"`
}

// CartLineRow is a cart_items row left-joined with products. Product columns are prefixed with p_.
type CartLineRow struct {
	CartItem
	PID            sql.NullString      `db:"p_id"`
	PName          sql.NullString      `db:"p_name"`
	PDescription   *string             `db:"p_description"`
	PPrice         decimal.NullDecimal `db:"p_price"`
	PCategory      *string             `db:"p_category"`
	PStockQuantity sql.NullInt64       `db:"p_stock_quantity"`
	PIsActive      sql.NullBool        `db:"p_is_active"`
	PCreatedAt     sql.NullTime        `db:"p_created_at"`
	PUpdatedAt     sql.NullTime        `db:"p_updated_at"`
}

func (r CartLineRow) Line() CartLine {
	line := CartLine{CartItem: r.CartItem}
	if !r.PID.Valid {
		return line
	}
	line.Product = &Product{
		ID:            r.PID.String,
		Name:          r.PName.String,
		Description:   r.PDescription,
		Price:         r.PPrice.Decimal,
		Category:      r.PCategory,
		StockQuantity: int(r.PStockQuantity.Int64),
		IsActive:      r.PIsActive.Bool,
		CreatedAt:     r.PCreatedAt.Time,
		UpdatedAt:     r.PUpdatedAt.Time,
	}
	return line
}
