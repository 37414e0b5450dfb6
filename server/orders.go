package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/rafata1/storefront/apperror"
	"github.com/rafata1/storefront/model"
)

func (h *Handler) ValidateCheckout(w http.ResponseWriter, r *http.Request) {
	lines, err := h.orders.ValidateCartForOrder(r.Context(), h.owner(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, CartResponse{Items: lines, Summary: model.SummarizeCart(lines)})
}

func (h *Handler) CreateOrder(w http.ResponseWriter, r *http.Request) {
	var input model.CreateOrderInput
	if err := decode(r, &input); err != nil {
		writeError(w, err)
		return
	}
	res, err := h.orders.CreateOrder(r.Context(), h.owner(r), input)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, res)
}

func (h *Handler) ListOrders(w http.ResponseWriter, r *http.Request) {
	orders, err := h.orders.ListOrders(r.Context(), h.owner(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, orders)
}

func (h *Handler) GetOrder(w http.ResponseWriter, r *http.Request) {
	detail, err := h.orders.GetOrderByID(r.Context(), h.owner(r), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	if detail == nil {
		writeError(w, apperror.New(apperror.NotFound, apperror.ErrMsgOrderNotFound))
		return
	}
	writeJSON(w, http.StatusOK, detail)
}

func (h *Handler) ConfirmPayment(w http.ResponseWriter, r *http.Request) {
	var req confirmPaymentRequest
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}

	var amount decimal.Decimal
	if len(req.Amount) > 0 {
		if err := amount.UnmarshalJSON(req.Amount); err != nil {
			writeError(w, apperror.NewValidation("amount", "Payment amount must be a number"))
			return
		}
	}

	input := model.ConfirmPaymentInput{
		OrderID:          chi.URLParam(r, "id"),
		PaymentReference: req.PaymentReference,
		Amount:           amount,
	}
	if err := h.payments.ConfirmPayment(r.Context(), h.owner(r), input); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, MutationResponse{Success: true, Message: "Payment confirmed"})
}

func (h *Handler) CancelPayment(w http.ResponseWriter, r *http.Request) {
	input := model.CancelPaymentInput{OrderID: chi.URLParam(r, "id")}
	if err := h.payments.CancelPayment(r.Context(), h.owner(r), input); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, MutationResponse{Success: true, Message: "Payment cancelled"})
}
