// Package validation checks operation inputs before any store access.
// Only the first failing field is reported.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"github.com/rafata1/storefront/apperror"
)

var digitsHyphens = regexp.MustCompile(`^[0-9-]+$`)

var messages = map[string]string{
	"product_id.required":        "Invalid product ID format",
	"product_id.uuid":            "Invalid product ID format",
	"cart_item_id.required":      "Invalid cart item ID format",
	"cart_item_id.uuid":          "Invalid cart item ID format",
	"order_id.required":          "Invalid order ID format",
	"order_id.uuid":              "Invalid order ID format",
	"quantity.gte":               "Quantity must be at least 1",
	"quantity.lte":               "Quantity must be 999 or less",
	"recipient_name.required":    "Please enter the recipient name",
	"recipient_name.max":         "Recipient name must be 50 characters or less",
	"phone.required":             "Please enter a phone number",
	"phone.digits_hyphens":       "Invalid phone number format",
	"phone.max":                  "Phone number must be 20 characters or less",
	"postal_code.required":       "Please enter a postal code",
	"postal_code.digits_hyphens": "Invalid postal code format",
	"postal_code.max":            "Postal code must be 10 characters or less",
	"address.required":           "Please enter an address",
	"address.max":                "Address must be 200 characters or less",
	"detail_address.required":    "Please enter the detail address",
	"detail_address.max":         "Detail address must be 200 characters or less",
	"order_note.max":             "Order note must be 500 characters or less",
	"payment_reference.required": "Payment reference is required",
	"payment_reference.max":      "Payment reference must be 200 characters or less",
	"amount.gt":                  "Payment amount must be greater than 0",
	"sort.oneof":                 "Unknown sort option",
	"page.gte":                   "Page must be 1 or greater",
	"page_size.gte":              "Page size must be 1 or greater",
	"page_size.lte":              "Page size must be 100 or less",
}

var (
	once     sync.Once
	instance *validator.Validate
)

func get() *validator.Validate {
	once.Do(func() {
		v := validator.New(validator.WithRequiredStructEnabled())
		v.RegisterTagNameFunc(func(field reflect.StructField) string {
			name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
			if name == "" || name == "-" {
				return field.Name
			}
			return name
		})
		v.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
			if d, ok := field.Interface().(decimal.Decimal); ok {
				f, _ := d.Float64()
				return f
			}
			return nil
		}, decimal.Decimal{})
		_ = v.RegisterValidation("digits_hyphens", func(fl validator.FieldLevel) bool {
			return digitsHyphens.MatchString(fl.Field().String())
		})
		instance = v
	})
	return instance
}

// Validate returns nil or an *apperror.Error of kind ValidationFailed naming the first bad field.
func Validate(input interface{}) error {
	err := get().Struct(input)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return apperror.Wrap(apperror.Internal, apperror.ErrMsgInvalidInput, err)
	}

	first := fieldErrs[0]
	return apperror.NewValidation(first.Field(), message(first))
}

func message(fe validator.FieldError) string {
	if msg, ok := messages[fe.Field()+"."+fe.Tag()]; ok {
		return msg
	}
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", fe.Field())
	case "max", "lte":
		return fmt.Sprintf("%s must be at most %s", fe.Field(), fe.Param())
	case "gte", "min":
		return fmt.Sprintf("%s must be at least %s", fe.Field(), fe.Param())
	default:
		return fmt.Sprintf("%s is invalid", fe.Field())
	}
}
