package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type Product struct {
	ID            string          `db:"id" json:"id"`
	Name          string          `db:"name" json:"name"`
	Description   *string         `db:"description" json:"description"`
	Price         decimal.Decimal `db:"price" json:"price"`
	Category      *string         `db:"category" json:"category"`
	StockQuantity int             `db:"stock_quantity" json:"stock_quantity"`
	IsActive      bool            `db:"is_active" json:"is_active"`
	CreatedAt     time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time       `db:"updated_at" json:"updated_at"`
}

type ProductSort string

const (
	SortCreatedAtDesc ProductSort = "created_at_desc"
	SortCreatedAtAsc  ProductSort = "created_at_asc"
	SortPriceAsc      ProductSort = "price_asc"
	SortPriceDesc     ProductSort = "price_desc"
	SortNameAsc       ProductSort = "name_asc"
)

const (
	DefaultPageSize = 12
	MaxPageSize     = 100
)

// ProductFilter selects active catalog products. Zero values mean defaults.
type ProductFilter struct {
	Category string      `json:"category"`
	Sort     ProductSort `json:"sort" validate:"omitempty,oneof=created_at_desc created_at_asc price_asc price_desc name_asc"`
	Page     int         `json:"page" validate:"gte=0"`
	PageSize int         `json:"page_size" validate:"gte=0,lte=100"`
}

// Normalize fills defaults. "all" is treated as no category.
func (f ProductFilter) Normalize() ProductFilter {
	if f.Category == "all" {
		f.Category = ""
	}
	if f.Sort == "" {
		f.Sort = SortCreatedAtDesc
	}
	if f.Page < 1 {
		f.Page = 1
	}
	if f.PageSize < 1 {
		f.PageSize = DefaultPageSize
	}
	return f
}

func (f ProductFilter) Offset() int {
	return (f.Page - 1) * f.PageSize
}

type ProductPage struct {
	Items      []Product `json:"items"`
	Total      int       `json:"total"`
	Page       int       `json:"page"`
	PageSize   int       `json:"page_size"`
	TotalPages int       `json:"total_pages"`
}
