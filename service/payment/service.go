package payment

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/rafata1/storefront/apperror"
	"github.com/rafata1/storefront/cache"
	"github.com/rafata1/storefront/database"
	"github.com/rafata1/storefront/model"
	"github.com/rafata1/storefront/saga_event"
	"github.com/rafata1/storefront/validation"
)

type IService interface {
	ConfirmPayment(ctx context.Context, ownerID string, input model.ConfirmPaymentInput) error
	CancelPayment(ctx context.Context, ownerID string, input model.CancelPaymentInput) error
}

type service struct {
	repo   IRepo
	cache  cache.ICache
	logger *zap.Logger
}

func NewService(repo IRepo, cache cache.ICache, logger *zap.Logger) IService {
	return &service{
		repo:   repo,
		cache:  cache,
		logger: logger,
	}
}

// ConfirmPayment moves a pending order to confirmed when the paid amount matches its total.
func (s service) ConfirmPayment(ctx context.Context, ownerID string, input model.ConfirmPaymentInput) error {
	if err := apperror.RequireOwner(ownerID); err != nil {
		return err
	}
	if err := validation.Validate(input); err != nil {
		return err
	}

	err := s.repo.Transact(ctx, func(ctx context.Context) error {
		order, err := s.pendingOrder(ctx, ownerID, input.OrderID)
		if err != nil {
			return err
		}
		if !model.AmountMatches(order.TotalAmount, input.Amount) {
			return apperror.New(apperror.AmountMismatch, apperror.ErrMsgAmountMismatch)
		}

		if err := s.transition(ctx, order, model.OrderConfirmed, input.PaymentReference); err != nil {
			return err
		}
		return s.publish(ctx, order, saga_event.OrderConfirmed, model.OrderConfirmed, nil)
	})
	if err != nil {
		return s.fail("confirm payment", ownerID, input.OrderID, err)
	}

	s.invalidate(ctx, ownerID)
	s.logger.Info("payment confirmed",
		zap.String("owner_id", ownerID),
		zap.String("order_id", input.OrderID),
		zap.String("payment_reference", input.PaymentReference),
	)
	return nil
}

// CancelPayment moves a pending order to cancelled. The cancelled event carries the lines so
// their stock can be released.
func (s service) CancelPayment(ctx context.Context, ownerID string, input model.CancelPaymentInput) error {
	if err := apperror.RequireOwner(ownerID); err != nil {
		return err
	}
	if err := validation.Validate(input); err != nil {
		return err
	}

	err := s.repo.Transact(ctx, func(ctx context.Context) error {
		order, err := s.pendingOrder(ctx, ownerID, input.OrderID)
		if err != nil {
			return err
		}
		if err := s.transition(ctx, order, model.OrderCancelled, ""); err != nil {
			return err
		}

		items, err := s.repo.ListOrderItems(ctx, order.ID)
		if err != nil {
			return err
		}
		return s.publish(ctx, order, saga_event.OrderCancelled, model.OrderCancelled, items)
	})
	if err != nil {
		return s.fail("cancel payment", ownerID, input.OrderID, err)
	}

	s.invalidate(ctx, ownerID)
	s.logger.Info("payment cancelled", zap.String("owner_id", ownerID), zap.String("order_id", input.OrderID))
	return nil
}

func (s service) pendingOrder(ctx context.Context, ownerID string, orderID string) (model.Order, error) {
	order, err := s.repo.GetOrder(ctx, ownerID, orderID)
	if database.IsNoRows(err) {
		return model.Order{}, apperror.New(apperror.NotFound, apperror.ErrMsgOrderNotFound)
	}
	if err != nil {
		return model.Order{}, err
	}
	if !order.Status.IsPending() {
		return model.Order{}, apperror.NewAlreadyProcessed(string(order.Status))
	}
	return order, nil
}

// transition applies the status change only if the order is still pending. Losing the race
// reports the status the winner wrote.
func (s service) transition(ctx context.Context, order model.Order, to model.OrderStatus, paymentRef string) error {
	changed, err := s.repo.TransitionStatus(ctx, order.OwnerID, order.ID, model.OrderPending, to, paymentRef)
	if err != nil {
		return err
	}
	if changed {
		return nil
	}

	current, err := s.repo.GetOrder(ctx, order.OwnerID, order.ID)
	if database.IsNoRows(err) {
		return apperror.New(apperror.NotFound, apperror.ErrMsgOrderNotFound)
	}
	if err != nil {
		return err
	}
	return apperror.NewAlreadyProcessed(string(current.Status))
}

func (s service) publish(
	ctx context.Context, order model.Order, eventType saga_event.EventType, status model.OrderStatus, items []model.OrderItem,
) error {
	event := saga_event.OrderEvent{
		Type:        eventType,
		OrderID:     order.ID,
		OwnerID:     order.OwnerID,
		Status:      status,
		TotalAmount: order.TotalAmount,
		OccurredAt:  time.Now().UTC(),
	}
	if items != nil {
		event.Items = saga_event.ItemsFromOrder(items)
	}

	outbox, err := event.Outbox()
	if err != nil {
		return err
	}
	return s.repo.CreateOutbox(ctx, outbox)
}

func (s service) invalidate(ctx context.Context, ownerID string) {
	if err := s.cache.Delete(ctx, cache.OrderListKey(ownerID)); err != nil {
		s.logger.Warn("invalidate order list cache", zap.String("owner_id", ownerID), zap.Error(err))
	}
}

func (s service) fail(op string, ownerID string, orderID string, err error) error {
	fields := []zap.Field{
		zap.String("owner_id", ownerID),
		zap.String("order_id", orderID),
		zap.Stringer("kind", apperror.KindOf(err)),
		zap.Error(err),
	}
	if apperror.KindOf(err) == apperror.Internal {
		s.logger.Error(op, fields...)
	} else {
		s.logger.Info(op, fields...)
	}
	return apperror.FromStore(err, apperror.Internal, apperror.ErrMsgPaymentFailed)
}
