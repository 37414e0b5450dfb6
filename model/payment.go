package model

import "github.com/shopspring/decimal"

// AmountTolerance is the largest accepted difference between a paid amount and the order total.
var AmountTolerance = decimal.New(1, -2)

type ConfirmPaymentInput struct {
	OrderID          string          `json:"order_id" validate:"required,uuid"`
	PaymentReference string          `json:"payment_reference" validate:"required,max=200"`
	Amount           decimal.Decimal `json:"amount" validate:"gt=0"`
}

type CancelPaymentInput struct {
	OrderID string `json:"order_id" validate:"required,uuid"`
}

// AmountMatches reports whether paid is within AmountTolerance of total.
func AmountMatches(total, paid decimal.Decimal) bool {
	return total.Sub(paid).Abs().LessThanOrEqual(AmountTolerance)
}
