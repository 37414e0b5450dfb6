package model

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

type OrderStatus string

const (
	OrderPending   OrderStatus = "pending"
	OrderConfirmed OrderStatus = "confirmed"
	OrderShipped   OrderStatus = "shipped"
	OrderDelivered OrderStatus = "delivered"
	OrderCancelled OrderStatus = "cancelled"
)

func (s OrderStatus) IsPending() bool {
	return s == OrderPending
}

type ShippingAddress struct {
	RecipientName string `json:"recipient_name" validate:"required,max=50"`
	Phone         string `json:"phone" validate:"required,digits_hyphens,max=20"`
	PostalCode    string `json:"postal_code" validate:"required,digits_hyphens,max=10"`
	Address       string `json:"address" validate:"required,max=200"`
	DetailAddress string `json:"detail_address" validate:"required,max=200"`
}

// Value stores the address as a JSON document. A string is returned so that both
// MySQL JSON and Postgres JSONB columns accept it.
func (a ShippingAddress) Value() (driver.Value, error) {
	b, err := json.Marshal(a)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (a *ShippingAddress) Scan(src interface{}) error {
	switch v := src.(type) {
	case nil:
		*a = ShippingAddress{}
		return nil
	case []byte:
		return json.Unmarshal(v, a)
	case string:
		return json.Unmarshal([]byte(v), a)
	default:
		return fmt.Errorf("shipping address: unsupported source type %T", src)
	}
}

type Order struct {
	ID               string          `db:"id" json:"id"`
	OwnerID          string          `db:"owner_id" json:"owner_id"`
	TotalAmount      decimal.Decimal `db:"total_amount" json:"total_amount"`
	Status           OrderStatus     `db:"status" json:"status"`
	ShippingAddress  ShippingAddress `db:"shipping_address" json:"shipping_address"`
	OrderNote        *string         `db:"order_note" json:"order_note"`
	PaymentReference *string         `db:"payment_reference" json:"payment_reference,omitempty"`
	CreatedAt        time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt        time.Time       `db:"updated_at" json:"updated_at"`
}

// OrderItem is the frozen line snapshot of an order: name and price are captured
// at creation time and never re-joined with the live product.
type OrderItem struct {
	ID          string          `db:"id" json:"id"`
	OrderID     string          `db:"order_id" json:"order_id"`
	LineNo      int             `db:"line_no" json:"-"`
	ProductID   string          `db:"product_id" json:"product_id"`
	ProductName string          `db:"product_name" json:"product_name"`
	Quantity    int             `db:"quantity" json:"quantity"`
	Price       decimal.Decimal `db:"price" json:"price"`
	CreatedAt   time.Time       `db:"created_at" json:"created_at"`
}

func (i OrderItem) LineTotal() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

type OrderDetail struct {
	Order
	Items []OrderItem `json:"items"`
}

type CreateOrderInput struct {
	ShippingAddress ShippingAddress `json:"shipping_address"`
	OrderNote       string          `json:"order_note" validate:"max=500"`
}

type CreateOrderResult struct {
	OrderID     string          `json:"order_id"`
	TotalAmount decimal.Decimal `json:"total_amount"`
	Status      OrderStatus     `json:"status"`
}

type OrderIDInput struct {
	OrderID string `json:"order_id" validate:"required,uuid"`
}
