package memstore

import (
	"context"
	"database/sql"
	"sort"

	"github.com/rafata1/storefront/model"
)

func (s *Store) LockCartItemForUpdate(ctx context.Context, ownerID string, id string) (model.CartItem, error) {
	defer s.lock(ctx)()
	if err := s.failure("LockCartItemForUpdate"); err != nil {
		return model.CartItem{}, err
	}
	row, ok := s.state.cartItems[id]
	if !ok || row.OwnerID != ownerID {
		return model.CartItem{}, sql.ErrNoRows
	}
	return row.CartItem, nil
}

func (s *Store) LockCartItemByProduct(ctx context.Context, ownerID string, productID string) (model.CartItem, error) {
	defer s.lock(ctx)()
	if err := s.failure("LockCartItemByProduct"); err != nil {
		return model.CartItem{}, err
	}
	for _, row := range s.state.cartItems {
		if row.OwnerID == ownerID && row.ProductID == productID {
			return row.CartItem, nil
		}
	}
	return model.CartItem{}, sql.ErrNoRows
}

func (s *Store) InsertCartItem(ctx context.Context, item model.CartItem) error {
	defer s.lock(ctx)()
	if err := s.failure("InsertCartItem"); err != nil {
		return err
	}
	s.state.cartItems[item.ID] = cartRow{CartItem: item, seq: s.state.next()}
	return nil
}

func (s *Store) UpdateCartItemQuantity(ctx context.Context, ownerID string, id string, quantity int) error {
	defer s.lock(ctx)()
	if err := s.failure("UpdateCartItemQuantity"); err != nil {
		return err
	}
	row, ok := s.state.cartItems[id]
	if !ok || row.OwnerID != ownerID {
		return nil
	}
	row.Quantity = quantity
	s.state.cartItems[id] = row
	return nil
}

func (s *Store) DeleteCartItem(ctx context.Context, ownerID string, id string) (int64, error) {
	defer s.lock(ctx)()
	if err := s.failure("DeleteCartItem"); err != nil {
		return 0, err
	}
	row, ok := s.state.cartItems[id]
	if !ok || row.OwnerID != ownerID {
		return 0, nil
	}
	delete(s.state.cartItems, id)
	return 1, nil
}

func (s *Store) ClearCart(ctx context.Context, ownerID string) error {
	defer s.lock(ctx)()
	if err := s.failure("ClearCart"); err != nil {
		return err
	}
	for id, row := range s.state.cartItems {
		if row.OwnerID == ownerID {
			delete(s.state.cartItems, id)
		}
	}
	return nil
}

func (s *Store) ListCartLines(ctx context.Context, ownerID string) ([]model.CartLine, error) {
	defer s.lock(ctx)()
	if err := s.failure("ListCartLines"); err != nil {
		return nil, err
	}
	var rows []cartRow
	for _, row := range s.state.cartItems {
		if row.OwnerID == ownerID {
			rows = append(rows, row)
		}
	}
	sort.Slice(rows, func(i, j int) bool {
		if !rows[i].CreatedAt.Equal(rows[j].CreatedAt) {
			return rows[i].CreatedAt.After(rows[j].CreatedAt)
		}
		return rows[i].seq > rows[j].seq
	})

	res := make([]model.CartLine, 0, len(rows))
	for _, row := range rows {
		line := model.CartLine{CartItem: row.CartItem}
		if p, ok := s.state.products[row.ProductID]; ok {
			p := p
			line.Product = &p
		}
		res = append(res, line)
	}
	return res, nil
}

func (s *Store) CountCartItems(ctx context.Context, ownerID string) (int, error) {
	defer s.lock(ctx)()
	if err := s.failure("CountCartItems"); err != nil {
		return 0, err
	}
	n := 0
	for _, row := range s.state.cartItems {
		if row.OwnerID == ownerID {
			n++
		}
	}
	return n, nil
}
