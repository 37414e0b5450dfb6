package apperror

// Caller-facing messages.
const (
	ErrMsgUnknown           = "An unexpected error occurred"
	ErrMsgUnauthenticated   = "Authentication is required. Please sign in"
	ErrMsgInvalidInput      = "Input is invalid"
	ErrMsgProductNotFound   = "Product not found"
	ErrMsgProductInactive   = "Product is no longer on sale"
	ErrMsgOutOfStock        = "Not enough stock (available: %d)"
	ErrMsgCartItemNotFound  = "Cart item not found"
	ErrMsgCartEmpty         = "Cart is empty"
	ErrMsgCartLineMissing   = "Product %q could not be found"
	ErrMsgCartLineInactive  = "Product %q is no longer on sale"
	ErrMsgCartLineStock     = "Not enough stock for %q (requested: %d, available: %d)"
	ErrMsgCartLinePrice     = "The price of %q has changed. Please review your cart"
	ErrMsgOrderNotFound     = "Order not found"
	ErrMsgOrderCreateFailed = "Failed to create the order"
	ErrMsgAlreadyProcessed  = "Order has already been processed (status: %s)"
	ErrMsgAmountMismatch    = "Payment amount does not match the order total"
	ErrMsgSchemaMissing     = "Database tables are missing. Run `storefront migrate-up` to create them"
	ErrMsgCartUpdateFailed  = "Failed to update the cart"
	ErrMsgPaymentFailed     = "Failed to update the order status"
)
