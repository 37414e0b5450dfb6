package order

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/rafata1/storefront/apperror"
	"github.com/rafata1/storefront/cache"
	"github.com/rafata1/storefront/database"
	"github.com/rafata1/storefront/kafka"
	"github.com/rafata1/storefront/model"
	"github.com/rafata1/storefront/validation"
)

var errNoProducer = errors.New("order events producer is not configured")

type IService interface {
	ValidateCartForOrder(ctx context.Context, ownerID string) ([]model.CartLine, error)
	CreateOrder(ctx context.Context, ownerID string, input model.CreateOrderInput) (model.CreateOrderResult, error)
	GetOrderByID(ctx context.Context, ownerID string, orderID string) (*model.OrderDetail, error)
	ListOrders(ctx context.Context, ownerID string) ([]model.Order, error)
	RelayMessage(ctx context.Context, limit int) error
}

func NewService(
	repo IRepo,
	producer kafka.IProducer,
	cache cache.ICache,
	logger *zap.Logger,
) IService {
	return &service{
		repo:     repo,
		producer: producer,
		cache:    cache,
		logger:   logger,
	}
}

type service struct {
	repo     IRepo
	producer kafka.IProducer
	cache    cache.ICache
	logger   *zap.Logger
}

// ValidateCartForOrder checks every cart line against the live product and returns the lines unchanged.
func (s service) ValidateCartForOrder(ctx context.Context, ownerID string) ([]model.CartLine, error) {
	if err := apperror.RequireOwner(ownerID); err != nil {
		return nil, err
	}

	lines, err := s.validatedCart(ctx, ownerID, s.repo.GetProduct)
	if err != nil {
		s.log("validate cart", ownerID, err)
		return nil, apperror.FromStore(err, apperror.Internal, apperror.ErrMsgUnknown)
	}
	return lines, nil
}

// CreateOrder turns the validated cart into a pending order. Order, lines, stock, cart
// and the created event are written in one transaction.
func (s service) CreateOrder(ctx context.Context, ownerID string, input model.CreateOrderInput) (model.CreateOrderResult, error) {
	if err := apperror.RequireOwner(ownerID); err != nil {
		return model.CreateOrderResult{}, err
	}
	if err := validation.Validate(input); err != nil {
		return model.CreateOrderResult{}, err
	}

	var result model.CreateOrderResult
	err := s.repo.Transact(ctx, func(ctx context.Context) error {
		lines, err := s.validatedCart(ctx, ownerID, s.repo.LockProductForUpdate)
		if err != nil {
			return err
		}

		now := time.Now().UTC()
		order := model.Order{
			ID:              uuid.NewString(),
			OwnerID:         ownerID,
			TotalAmount:     cartTotal(lines),
			Status:          model.OrderPending,
			ShippingAddress: input.ShippingAddress,
			CreatedAt:       now,
			UpdatedAt:       now,
		}
		if input.OrderNote != "" {
			note := input.OrderNote
			order.OrderNote = &note
		}
		if err := s.repo.CreateOrder(ctx, order); err != nil {
			return err
		}

		items := make([]model.OrderItem, 0, len(lines))
		for i, line := range lines {
			items = append(items, model.OrderItem{
				ID:          uuid.NewString(),
				OrderID:     order.ID,
				LineNo:      i + 1,
				ProductID:   line.ProductID,
				ProductName: line.Product.Name,
				Quantity:    line.Quantity,
				Price:       line.Product.Price,
				CreatedAt:   now,
			})
		}
		if err := s.repo.CreateOrderItems(ctx, items); err != nil {
			return err
		}

		for _, line := range lines {
			ok, err := s.repo.DecrementStock(ctx, line.ProductID, line.Quantity)
			if err != nil {
				return err
			}
			if !ok {
				return apperror.NewInsufficientStock(
					fmt.Sprintf(apperror.ErrMsgCartLineStock, line.Product.Name, line.Quantity, line.Product.StockQuantity),
					line.Product.StockQuantity,
				)
			}
		}

		if err := s.repo.ClearCart(ctx, ownerID); err != nil {
			return err
		}

		outbox, err := createdEvent(order, items).Outbox()
		if err != nil {
			return err
		}
		if err := s.repo.CreateOutbox(ctx, outbox); err != nil {
			return err
		}

		result = model.CreateOrderResult{
			OrderID:     order.ID,
			TotalAmount: order.TotalAmount,
			Status:      order.Status,
		}
		return nil
	})
	if err != nil {
		s.log("create order", ownerID, err)
		return model.CreateOrderResult{}, apperror.FromStore(err, apperror.OrderCreationFailed, apperror.ErrMsgOrderCreateFailed)
	}

	s.invalidate(ctx, ownerID, cache.CartCountKey(ownerID), cache.OrderListKey(ownerID))
	s.logger.Info("order created",
		zap.String("owner_id", ownerID),
		zap.String("order_id", result.OrderID),
		zap.String("total_amount", result.TotalAmount.String()),
	)
	return result, nil
}

// GetOrderByID returns nil when the order does not exist or belongs to someone else.
func (s service) GetOrderByID(ctx context.Context, ownerID string, orderID string) (*model.OrderDetail, error) {
	if err := apperror.RequireOwner(ownerID); err != nil {
		return nil, err
	}
	if _, err := uuid.Parse(orderID); err != nil {
		return nil, nil
	}

	order, err := s.repo.GetOrder(ctx, ownerID, orderID)
	if database.IsNoRows(err) {
		return nil, nil
	}
	if err != nil {
		s.log("get order", ownerID, err, zap.String("order_id", orderID))
		return nil, apperror.FromStore(err, apperror.Internal, apperror.ErrMsgUnknown)
	}

	items, err := s.repo.ListOrderItems(ctx, orderID)
	if err != nil {
		s.log("list order items", ownerID, err, zap.String("order_id", orderID))
		return nil, apperror.FromStore(err, apperror.Internal, apperror.ErrMsgUnknown)
	}
	return &model.OrderDetail{Order: order, Items: items}, nil
}

// ListOrders returns the owner's orders newest first.
func (s service) ListOrders(ctx context.Context, ownerID string) ([]model.Order, error) {
	if err := apperror.RequireOwner(ownerID); err != nil {
		return nil, err
	}

	key := cache.OrderListKey(ownerID)
	var orders []model.Order
	err := s.cache.Get(ctx, key, &orders)
	if err == nil {
		return orders, nil
	}
	if !errors.Is(err, cache.ErrMiss) {
		s.logger.Warn("read order list cache", zap.String("key", key), zap.Error(err))
	}

	orders, err = s.repo.ListOrders(ctx, ownerID)
	if err != nil {
		s.log("list orders", ownerID, err)
		return nil, apperror.FromStore(err, apperror.Internal, apperror.ErrMsgUnknown)
	}

	if err := s.cache.Set(ctx, key, orders); err != nil {
		s.logger.Warn("write order list cache", zap.String("key", key), zap.Error(err))
	}
	return orders, nil
}

// RelayMessage pushes up to limit pending outbox events to kafka and marks them done.
func (s service) RelayMessage(ctx context.Context, limit int) error {
	if s.producer == nil {
		return errNoProducer
	}
	outboxes, err := s.repo.GetPendingOutbox(ctx, limit)
	if err != nil {
		return err
	}
	if len(outboxes) == 0 {
		return nil
	}

	err = s.producer.Push(toMessages(outboxes))
	if err != nil {
		return err
	}

	err = s.repo.MarkDoneOutboxes(ctx, extractIDs(outboxes))
	if err != nil {
		return err
	}
	s.logger.Debug("relayed order events", zap.Int("count", len(outboxes)))
	return nil
}

type productReader func(ctx context.Context, id string) (model.Product, error)

func (s service) validatedCart(ctx context.Context, ownerID string, read productReader) ([]model.CartLine, error) {
	lines, err := s.repo.ListCartLines(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	if len(lines) == 0 {
		return nil, apperror.New(apperror.EmptyCart, apperror.ErrMsgCartEmpty)
	}

	live, err := liveProducts(ctx, lines, read)
	if err != nil {
		return nil, err
	}
	if err := checkCart(lines, live); err != nil {
		return nil, err
	}
	return lines, nil
}

// liveProducts re-reads every product referenced by lines in id order so concurrent
// checkouts lock rows in the same sequence. Missing products are left out of the map.
func liveProducts(ctx context.Context, lines []model.CartLine, read productReader) (map[string]model.Product, error) {
	ids := make([]string, 0, len(lines))
	for _, line := range lines {
		ids = append(ids, line.ProductID)
	}
	sort.Strings(ids)

	res := make(map[string]model.Product, len(ids))
	for _, id := range ids {
		if _, ok := res[id]; ok {
			continue
		}
		product, err := read(ctx, id)
		if database.IsNoRows(err) {
			continue
		}
		if err != nil {
			return nil, err
		}
		res[id] = product
	}
	return res, nil
}

// checkCart reports the first line, in cart order, that cannot be ordered.
func checkCart(lines []model.CartLine, live map[string]model.Product) error {
	for _, line := range lines {
		product, ok := live[line.ProductID]
		if line.Product == nil || !ok {
			return apperror.Newf(apperror.ProductMissing, apperror.ErrMsgCartLineMissing, line.ProductID)
		}
		if !product.IsActive {
			return apperror.Newf(apperror.ProductInactive, apperror.ErrMsgCartLineInactive, product.Name)
		}
		if product.StockQuantity < line.Quantity {
			return apperror.NewInsufficientStock(
				fmt.Sprintf(apperror.ErrMsgCartLineStock, product.Name, line.Quantity, product.StockQuantity),
				product.StockQuantity,
			)
		}
		if !product.Price.Equal(line.Product.Price) {
			return apperror.Newf(apperror.PriceChanged, apperror.ErrMsgCartLinePrice, product.Name)
		}
	}
	return nil
}

func cartTotal(lines []model.CartLine) decimal.Decimal {
	total := decimal.Zero
	for _, line := range lines {
		total = total.Add(line.Product.Price.Mul(decimal.NewFromInt(int64(line.Quantity))))
	}
	return total
}

func (s service) invalidate(ctx context.Context, ownerID string, keys ...string) {
	if err := s.cache.Delete(ctx, keys...); err != nil {
		s.logger.Warn("invalidate cache", zap.String("owner_id", ownerID), zap.Strings("keys", keys), zap.Error(err))
	}
}

func (s service) log(op string, ownerID string, err error, fields ...zap.Field) {
	fields = append(fields,
		zap.String("owner_id", ownerID),
		zap.Stringer("kind", apperror.KindOf(err)),
		zap.Error(err),
	)
	if apperror.KindOf(err) == apperror.Internal {
		s.logger.Error(op, fields...)
		return
	}
	s.logger.Info(op, fields...)
}
