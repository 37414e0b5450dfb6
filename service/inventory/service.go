package inventory

import (
	"context"
	"encoding/json"

	"go.uber.org/zap"

	"github.com/rafata1/storefront/kafka"
	"github.com/rafata1/storefront/saga_event"
)

type IService interface {
	ConsumeOrderEvents(ctx context.Context)
	RestoreStock(ctx context.Context, event saga_event.OrderEvent) error
}

type service struct {
	consumer kafka.IConsumer
	repo     IRepo
	logger   *zap.Logger
}

func NewService(repo IRepo, consumer kafka.IConsumer, logger *zap.Logger) IService {
	return &service{
		consumer: consumer,
		repo:     repo,
		logger:   logger,
	}
}

// ConsumeOrderEvents handles order events until ctx is done. Only cancellations touch stock.
func (s service) ConsumeOrderEvents(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-s.consumer.Messages():
			if !ok {
				return
			}
			logger := s.logger.With(
				zap.String("topic", msg.Topic),
				zap.Int32("partition", msg.Partition),
				zap.Int64("offset", msg.Offset),
				zap.ByteString("key", msg.Key),
			)

			var event saga_event.OrderEvent
			if err := json.Unmarshal(msg.Value, &event); err != nil {
				logger.Error("decode order event", zap.Error(err))
				continue
			}
			if event.Type != saga_event.OrderCancelled {
				logger.Debug("skip order event", zap.String("type", string(event.Type)))
				continue
			}
			if err := s.RestoreStock(ctx, event); err != nil {
				logger.Error("restore stock", zap.String("order_id", event.OrderID), zap.Error(err))
			}
		case err, ok := <-s.consumer.Errors():
			if !ok {
				return
			}
			s.logger.Error("consume order events", zap.Error(err))
		}
	}
}

// RestoreStock returns the units of a cancelled order to the catalog once per order.
func (s service) RestoreStock(ctx context.Context, event saga_event.OrderEvent) error {
	return s.repo.Transact(ctx, func(ctx context.Context) error {
		isOrderProcessed, err := s.repo.IsProcessed(ctx, event.OrderID)
		if err != nil {
			return err
		}

		// redelivered event
		if isOrderProcessed {
			return nil
		}

		for _, item := range event.Items {
			if err := s.repo.IncrementStock(ctx, item.ProductID, item.Quantity); err != nil {
				return err
			}
		}

		err = s.repo.MarkProcessedOrder(ctx, event.OrderID)
		if err != nil {
			return err
		}
		s.logger.Info("stock restored", zap.String("order_id", event.OrderID), zap.Int("lines", len(event.Items)))
		return nil
	})
}
