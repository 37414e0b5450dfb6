package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/rafata1/storefront/model"
)

func (h *Handler) GetCart(w http.ResponseWriter, r *http.Request) {
	lines, err := h.cart.ListItems(r.Context(), h.owner(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, CartResponse{Items: lines, Summary: model.SummarizeCart(lines)})
}

func (h *Handler) CountCart(w http.ResponseWriter, r *http.Request) {
	count, err := h.cart.CountItems(r.Context(), h.owner(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, CountResponse{Count: count})
}

func (h *Handler) AddCartItem(w http.ResponseWriter, r *http.Request) {
	var input model.AddToCartInput
	if err := decode(r, &input); err != nil {
		writeError(w, err)
		return
	}
	if err := h.cart.AddItem(r.Context(), h.owner(r), input); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, MutationResponse{Success: true, Message: "Added to cart"})
}

func (h *Handler) SetCartItemQuantity(w http.ResponseWriter, r *http.Request) {
	var req setQuantityRequest
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}
	input := model.UpdateCartQuantityInput{CartItemID: chi.URLParam(r, "id"), Quantity: req.Quantity}
	if err := h.cart.SetQuantity(r.Context(), h.owner(r), input); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, MutationResponse{Success: true, Message: "Quantity updated"})
}

func (h *Handler) RemoveCartItem(w http.ResponseWriter, r *http.Request) {
	input := model.RemoveFromCartInput{CartItemID: chi.URLParam(r, "id")}
	if err := h.cart.RemoveItem(r.Context(), h.owner(r), input); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, MutationResponse{Success: true, Message: "Removed from cart"})
}

func (h *Handler) ClearCart(w http.ResponseWriter, r *http.Request) {
	if err := h.cart.ClearCart(r.Context(), h.owner(r)); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, MutationResponse{Success: true, Message: "Cart cleared"})
}
