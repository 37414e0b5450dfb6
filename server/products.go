package server

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/rafata1/storefront/apperror"
	"github.com/rafata1/storefront/model"
)

func (h *Handler) ListProducts(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	filter := model.ProductFilter{
		Category: query.Get("category"),
		Sort:     model.ProductSort(query.Get("sort")),
	}

	var err error
	if filter.Page, err = intParam(query.Get("page"), "page"); err != nil {
		writeError(w, err)
		return
	}
	if filter.PageSize, err = intParam(query.Get("page_size"), "page_size"); err != nil {
		writeError(w, err)
		return
	}

	page, err := h.products.ListProducts(r.Context(), filter)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, page)
}

func intParam(raw string, field string) (int, error) {
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, apperror.NewValidation(field, field+" must be a number")
	}
	return n, nil
}

func (h *Handler) GetProduct(w http.ResponseWriter, r *http.Request) {
	p, err := h.products.GetProduct(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}
