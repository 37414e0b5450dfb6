package main

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/rafata1/storefront/memstore"
	"github.com/rafata1/storefront/model"
)

func seedDemoCatalog(store *memstore.Store) {
	electronics, books := "electronics", "books"
	now := time.Now().UTC()
	demo := []struct {
		name     string
		price    string
		category *string
		stock    int
	}{
		{"Mechanical Keyboard", "89000", &electronics, 12},
		{"Wireless Mouse", "25000", &electronics, 30},
		{"USB-C Hub", "39000", &electronics, 0},
		{"The Go Programming Language", "42000", &books, 8},
		{"Designing Data-Intensive Applications", "48000", &books, 5},
	}
	for i, d := range demo {
		store.PutProduct(model.Product{
			ID:            uuid.NewString(),
			Name:          d.name,
			Price:         decimal.RequireFromString(d.price),
			Category:      d.category,
			StockQuantity: d.stock,
			IsActive:      true,
			CreatedAt:     now.Add(time.Duration(i) * time.Second),
			UpdatedAt:     now,
		})
	}
}
