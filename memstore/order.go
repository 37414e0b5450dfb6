package memstore

import (
	"context"
	"database/sql"
	"sort"
	"time"

	"github.com/rafata1/storefront/model"
)

func (s *Store) CreateOrder(ctx context.Context, order model.Order) error {
	defer s.lock(ctx)()
	if err := s.failure("CreateOrder"); err != nil {
		return err
	}
	s.state.orders[order.ID] = orderRow{Order: order, seq: s.state.next()}
	return nil
}

func (s *Store) CreateOrderItems(ctx context.Context, items []model.OrderItem) error {
	defer s.lock(ctx)()
	if err := s.failure("CreateOrderItems"); err != nil {
		return err
	}
	for _, item := range items {
		s.state.items[item.OrderID] = append(s.state.items[item.OrderID], item)
	}
	return nil
}

func (s *Store) GetOrder(ctx context.Context, ownerID string, id string) (model.Order, error) {
	defer s.lock(ctx)()
	if err := s.failure("GetOrder"); err != nil {
		return model.Order{}, err
	}
	row, ok := s.state.orders[id]
	if !ok || row.OwnerID != ownerID {
		return model.Order{}, sql.ErrNoRows
	}
	return row.Order, nil
}

func (s *Store) ListOrderItems(ctx context.Context, orderID string) ([]model.OrderItem, error) {
	defer s.lock(ctx)()
	if err := s.failure("ListOrderItems"); err != nil {
		return nil, err
	}
	res := append([]model.OrderItem{}, s.state.items[orderID]...)
	sort.Slice(res, func(i, j int) bool { return res[i].LineNo < res[j].LineNo })
	return res, nil
}

func (s *Store) ListOrders(ctx context.Context, ownerID string) ([]model.Order, error) {
	defer s.lock(ctx)()
	if err := s.failure("ListOrders"); err != nil {
		return nil, err
	}
	var rows []orderRow
	for _, row := range s.state.orders {
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
	res := make([]model.Order, 0, len(rows))
	for _, row := range rows {
		res = append(res, row.Order)
	}
	return res, nil
}

func (s *Store) TransitionStatus(
	ctx context.Context, ownerID string, id string, from model.OrderStatus, to model.OrderStatus, paymentRef string,
) (bool, error) {
	defer s.lock(ctx)()
	if err := s.failure("TransitionStatus"); err != nil {
		return false, err
	}
	row, ok := s.state.orders[id]
	if !ok || row.OwnerID != ownerID || row.Status != from {
		return false, nil
	}
	row.Status = to
	if paymentRef != "" {
		ref := paymentRef
		row.PaymentReference = &ref
	}
	row.UpdatedAt = time.Now().UTC()
	s.state.orders[id] = row
	return true, nil
}

func (s *Store) CreateOutbox(ctx context.Context, outbox model.Outbox) error {
	defer s.lock(ctx)()
	if err := s.failure("CreateOutbox"); err != nil {
		return err
	}
	s.state.outboxSeq++
	outbox.ID = s.state.outboxSeq
	outbox.Status = model.OutboxPending
	now := time.Now().UTC()
	outbox.CreatedAt, outbox.UpdatedAt = now, now
	s.state.outboxes = append(s.state.outboxes, outbox)
	return nil
}

func (s *Store) GetPendingOutbox(ctx context.Context, limit int) ([]model.Outbox, error) {
	defer s.lock(ctx)()
	if err := s.failure("GetPendingOutbox"); err != nil {
		return nil, err
	}
	var res []model.Outbox
	for _, outbox := range s.state.outboxes {
		if len(res) == limit {
			break
		}
		if outbox.Status == model.OutboxPending {
			res = append(res, outbox)
		}
	}
	return res, nil
}

func (s *Store) MarkDoneOutboxes(ctx context.Context, ids []int64) error {
	defer s.lock(ctx)()
	if err := s.failure("MarkDoneOutboxes"); err != nil {
		return err
	}
	done := make(map[int64]bool, len(ids))
	for _, id := range ids {
		done[id] = true
	}
	for i := range s.state.outboxes {
		if done[s.state.outboxes[i].ID] {
			s.state.outboxes[i].Status = model.OutboxCompleted
		}
	}
	return nil
}

// Outboxes returns every outbox row in insertion order.
func (s *Store) Outboxes() []model.Outbox {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]model.Outbox{}, s.state.outboxes...)
}

func (s *Store) IsProcessed(ctx context.Context, orderID string) (bool, error) {
	defer s.lock(ctx)()
	if err := s.failure("IsProcessed"); err != nil {
		return false, err
	}
	_, ok := s.state.processed[orderID]
	return ok, nil
}

func (s *Store) MarkProcessedOrder(ctx context.Context, orderID string) error {
	defer s.lock(ctx)()
	if err := s.failure("MarkProcessedOrder"); err != nil {
		return err
	}
	s.state.processed[orderID] = model.ProcessedOrder{OrderID: orderID, CreatedAt: time.Now().UTC()}
	return nil
}
