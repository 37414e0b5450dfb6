// Package memstore keeps every storefront table in memory. It satisfies the repository
// interfaces of all services and backs the demo server and the service tests.
package memstore

import (
	"context"
	"database/sql"
	"sort"
	"sync"

	"github.com/rafata1/storefront/model"
)

type txKey struct{}

type state struct {
	products  map[string]model.Product
	cartItems map[string]cartRow
	orders    map[string]orderRow
	items     map[string][]model.OrderItem
	outboxes  []model.Outbox
	processed map[string]model.ProcessedOrder
	seq       int64
	outboxSeq int64
}

type cartRow struct {
	model.CartItem
	seq int64
}

type orderRow struct {
	model.Order
	seq int64
}

type Store struct {
	mu    sync.Mutex
	state state
	fail  map[string]error
}

func New() *Store {
	return &Store{
		state: state{
			products:  map[string]model.Product{},
			cartItems: map[string]cartRow{},
			orders:    map[string]orderRow{},
			items:     map[string][]model.OrderItem{},
			processed: map[string]model.ProcessedOrder{},
		},
		fail: map[string]error{},
	}
}

// FailOn makes the named repository method return err until cleared with a nil err.
func (s *Store) FailOn(method string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err == nil {
		delete(s.fail, method)
		return
	}
	s.fail[method] = err
}

// Transact serializes fn against every other store call and restores the previous
// state when fn fails or panics.
func (s *Store) Transact(ctx context.Context, fn func(ctx context.Context) error) (err error) {
	if ctx.Value(txKey{}) != nil {
		return fn(ctx)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	snapshot := s.state.clone()
	defer func() {
		if r := recover(); r != nil {
			s.state = snapshot
			panic(r)
		} else if err != nil {
			s.state = snapshot
		}
	}()

	return fn(context.WithValue(ctx, txKey{}, true))
}

func (s *Store) lock(ctx context.Context) func() {
	if ctx.Value(txKey{}) != nil {
		return func() {}
	}
	s.mu.Lock()
	return s.mu.Unlock
}

func (s *Store) failure(method string) error {
	return s.fail[method]
}

func (st state) clone() state {
	res := state{
		products:  make(map[string]model.Product, len(st.products)),
		cartItems: make(map[string]cartRow, len(st.cartItems)),
		orders:    make(map[string]orderRow, len(st.orders)),
		items:     make(map[string][]model.OrderItem, len(st.items)),
		outboxes:  append([]model.Outbox(nil), st.outboxes...),
		processed: make(map[string]model.ProcessedOrder, len(st.processed)),
		seq:       st.seq,
		outboxSeq: st.outboxSeq,
	}
	for k, v := range st.products {
		res.products[k] = v
	}
	for k, v := range st.cartItems {
		res.cartItems[k] = v
	}
	for k, v := range st.orders {
		res.orders[k] = v
	}
	for k, v := range st.items {
		res.items[k] = append([]model.OrderItem(nil), v...)
	}
	for k, v := range st.processed {
		res.processed[k] = v
	}
	return res
}

func (st *state) next() int64 {
	st.seq++
	return st.seq
}

// Products

// PutProduct inserts or replaces a catalog row.
func (s *Store) PutProduct(p model.Product) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.products[p.ID] = p
}

// DeleteProduct removes a catalog row, leaving cart lines that reference it.
func (s *Store) DeleteProduct(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.state.products, id)
}

func (s *Store) GetProduct(ctx context.Context, id string) (model.Product, error) {
	defer s.lock(ctx)()
	if err := s.failure("GetProduct"); err != nil {
		return model.Product{}, err
	}
	p, ok := s.state.products[id]
	if !ok {
		return model.Product{}, sql.ErrNoRows
	}
	return p, nil
}

func (s *Store) LockProductForUpdate(ctx context.Context, id string) (model.Product, error) {
	defer s.lock(ctx)()
	if err := s.failure("LockProductForUpdate"); err != nil {
		return model.Product{}, err
	}
	p, ok := s.state.products[id]
	if !ok {
		return model.Product{}, sql.ErrNoRows
	}
	return p, nil
}

func (s *Store) ListProducts(ctx context.Context, filter model.ProductFilter) ([]model.Product, int, error) {
	defer s.lock(ctx)()
	if err := s.failure("ListProducts"); err != nil {
		return nil, 0, err
	}

	var matched []model.Product
	for _, p := range s.state.products {
		if !p.IsActive {
			continue
		}
		if filter.Category != "" && (p.Category == nil || *p.Category != filter.Category) {
			continue
		}
		matched = append(matched, p)
	}
	sort.Slice(matched, func(i, j int) bool {
		a, b := matched[i], matched[j]
		switch filter.Sort {
		case model.SortCreatedAtAsc:
			if !a.CreatedAt.Equal(b.CreatedAt) {
				return a.CreatedAt.Before(b.CreatedAt)
			}
		case model.SortPriceAsc:
			if !a.Price.Equal(b.Price) {
				return a.Price.LessThan(b.Price)
			}
		case model.SortPriceDesc:
			if !a.Price.Equal(b.Price) {
				return a.Price.GreaterThan(b.Price)
			}
		case model.SortNameAsc:
			if a.Name != b.Name {
				return a.Name < b.Name
			}
		default:
			if !a.CreatedAt.Equal(b.CreatedAt) {
				return a.CreatedAt.After(b.CreatedAt)
			}
		}
		return a.ID < b.ID
	})

	total := len(matched)
	start := filter.Offset()
	if start > total {
		start = total
	}
	end := start + filter.PageSize
	if end > total {
		end = total
	}
	return append([]model.Product{}, matched[start:end]...), total, nil
}

func (s *Store) DecrementStock(ctx context.Context, productID string, qty int) (bool, error) {
	defer s.lock(ctx)()
	if err := s.failure("DecrementStock"); err != nil {
		return false, err
	}
	p, ok := s.state.products[productID]
	if !ok || p.StockQuantity < qty {
		return false, nil
	}
	p.StockQuantity -= qty
	s.state.products[productID] = p
	return true, nil
}

func (s *Store) IncrementStock(ctx context.Context, productID string, qty int) error {
	defer s.lock(ctx)()
	if err := s.failure("IncrementStock"); err != nil {
		return err
	}
	if p, ok := s.state.products[productID]; ok {
		p.StockQuantity += qty
		s.state.products[productID] = p
	}
	return nil
}
