package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/rafata1/storefront/apperror"
	"github.com/rafata1/storefront/model"
	"github.com/rafata1/storefront/service/cart"
	"github.com/rafata1/storefront/service/order"
	"github.com/rafata1/storefront/service/payment"
	"github.com/rafata1/storefront/service/product"
)

type Handler struct {
	products    product.IService
	cart        cart.IService
	orders      order.IService
	payments    payment.IService
	ownerHeader string
	logger      *zap.Logger
}

func NewHandler(
	products product.IService,
	cart cart.IService,
	orders order.IService,
	payments payment.IService,
	ownerHeader string,
	logger *zap.Logger,
) *Handler {
	return &Handler{
		products:    products,
		cart:        cart,
		orders:      orders,
		payments:    payments,
		ownerHeader: ownerHeader,
		logger:      logger,
	}
}

// MutationResponse is the outcome of every state-changing call.
type MutationResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

type ErrorResponse struct {
	Success   bool   `json:"success"`
	Message   string `json:"message"`
	Kind      string `json:"kind"`
	Field     string `json:"field,omitempty"`
	Available *int   `json:"available,omitempty"`
	Status    string `json:"status,omitempty"`
}

type CartResponse struct {
	Items   []model.CartLine  `json:"items"`
	Summary model.CartSummary `json:"summary"`
}

type CountResponse struct {
	Count int `json:"count"`
}

type setQuantityRequest struct {
	Quantity int `json:"quantity"`
}

type confirmPaymentRequest struct {
	PaymentReference string          `json:"payment_reference"`
	Amount           json.RawMessage `json:"amount"`
}

func (h *Handler) owner(r *http.Request) string {
	return r.Header.Get(h.ownerHeader)
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, err error) {
	var appErr *apperror.Error
	if !errors.As(err, &appErr) {
		appErr = apperror.New(apperror.Internal, apperror.ErrMsgUnknown)
	}

	res := ErrorResponse{
		Message: appErr.Message,
		Kind:    appErr.Kind.String(),
		Field:   appErr.Field,
		Status:  appErr.Status,
	}
	if appErr.Kind == apperror.InsufficientStock {
		available := appErr.Available
		res.Available = &available
	}
	writeJSON(w, statusOf(appErr.Kind), res)
}

func statusOf(kind apperror.Kind) int {
	switch kind {
	case apperror.Unauthenticated:
		return http.StatusUnauthorized
	case apperror.ValidationFailed:
		return http.StatusBadRequest
	case apperror.NotFound, apperror.ProductMissing:
		return http.StatusNotFound
	case apperror.Inactive, apperror.InsufficientStock, apperror.PriceChanged, apperror.EmptyCart, apperror.AmountMismatch:
		return http.StatusUnprocessableEntity
	case apperror.AlreadyProcessed:
		return http.StatusConflict
	case apperror.SchemaMissing:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func decode(r *http.Request, dest interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(dest); err != nil {
		return apperror.Wrap(apperror.ValidationFailed, apperror.ErrMsgInvalidInput, err)
	}
	return nil
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
