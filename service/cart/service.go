package cart

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/rafata1/storefront/apperror"
	"github.com/rafata1/storefront/cache"
	"github.com/rafata1/storefront/database"
	"github.com/rafata1/storefront/model"
	"github.com/rafata1/storefront/validation"
)

type IService interface {
	AddItem(ctx context.Context, ownerID string, input model.AddToCartInput) error
	SetQuantity(ctx context.Context, ownerID string, input model.UpdateCartQuantityInput) error
	RemoveItem(ctx context.Context, ownerID string, input model.RemoveFromCartInput) error
	ClearCart(ctx context.Context, ownerID string) error
	ListItems(ctx context.Context, ownerID string) ([]model.CartLine, error)
	CountItems(ctx context.Context, ownerID string) (int, error)
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

// AddItem adds quantity units of a product, accumulating onto an existing line.
// A zero quantity means one unit.
func (s service) AddItem(ctx context.Context, ownerID string, input model.AddToCartInput) error {
	if err := apperror.RequireOwner(ownerID); err != nil {
		return err
	}
	if input.Quantity == 0 {
		input.Quantity = 1
	}
	if err := validation.Validate(input); err != nil {
		return err
	}

	err := s.repo.Transact(ctx, func(ctx context.Context) error {
		product, err := s.lockSellableProduct(ctx, input.ProductID)
		if err != nil {
			return err
		}

		existing, err := s.repo.LockCartItemByProduct(ctx, ownerID, input.ProductID)
		if err != nil && !database.IsNoRows(err) {
			return err
		}
		found := err == nil

		quantity := input.Quantity
		if found {
			quantity += existing.Quantity
		}
		if err := checkQuantity(product, quantity); err != nil {
			return err
		}

		if found {
			return s.repo.UpdateCartItemQuantity(ctx, ownerID, existing.ID, quantity)
		}
		now := time.Now().UTC()
		return s.repo.InsertCartItem(ctx, model.CartItem{
			ID:        uuid.NewString(),
			OwnerID:   ownerID,
			ProductID: input.ProductID,
			Quantity:  quantity,
			CreatedAt: now,
			UpdatedAt: now,
		})
	})
	if err != nil {
		return s.fail("add cart item", ownerID, err, zap.String("product_id", input.ProductID))
	}

	s.invalidate(ctx, ownerID)
	return nil
}

func (s service) SetQuantity(ctx context.Context, ownerID string, input model.UpdateCartQuantityInput) error {
	if err := apperror.RequireOwner(ownerID); err != nil {
		return err
	}
	if err := validation.Validate(input); err != nil {
		return err
	}

	err := s.repo.Transact(ctx, func(ctx context.Context) error {
		item, err := s.repo.LockCartItemForUpdate(ctx, ownerID, input.CartItemID)
		if database.IsNoRows(err) {
			return apperror.New(apperror.NotFound, apperror.ErrMsgCartItemNotFound)
		}
		if err != nil {
			return err
		}

		product, err := s.lockSellableProduct(ctx, item.ProductID)
		if err != nil {
			return err
		}
		if err := checkQuantity(product, input.Quantity); err != nil {
			return err
		}
		return s.repo.UpdateCartItemQuantity(ctx, ownerID, item.ID, input.Quantity)
	})
	if err != nil {
		return s.fail("set cart quantity", ownerID, err, zap.String("cart_item_id", input.CartItemID))
	}

	s.invalidate(ctx, ownerID)
	return nil
}

func (s service) RemoveItem(ctx context.Context, ownerID string, input model.RemoveFromCartInput) error {
	if err := apperror.RequireOwner(ownerID); err != nil {
		return err
	}
	if err := validation.Validate(input); err != nil {
		return err
	}

	deleted, err := s.repo.DeleteCartItem(ctx, ownerID, input.CartItemID)
	if err != nil {
		return s.fail("remove cart item", ownerID, err, zap.String("cart_item_id", input.CartItemID))
	}
	if deleted == 0 {
		return apperror.New(apperror.NotFound, apperror.ErrMsgCartItemNotFound)
	}

	s.invalidate(ctx, ownerID)
	return nil
}

func (s service) ClearCart(ctx context.Context, ownerID string) error {
	if err := apperror.RequireOwner(ownerID); err != nil {
		return err
	}
	if err := s.repo.ClearCart(ctx, ownerID); err != nil {
		return s.fail("clear cart", ownerID, err)
	}

	s.invalidate(ctx, ownerID)
	return nil
}

// ListItems returns the owner's lines newest first. Lines whose product row is gone keep a nil Product.
func (s service) ListItems(ctx context.Context, ownerID string) ([]model.CartLine, error) {
	if err := apperror.RequireOwner(ownerID); err != nil {
		return nil, err
	}

	lines, err := s.repo.ListCartLines(ctx, ownerID)
	if err != nil {
		s.logger.Error("list cart items", zap.String("owner_id", ownerID), zap.Error(err))
		return nil, apperror.FromStore(err, apperror.Internal, apperror.ErrMsgUnknown)
	}
	for _, line := range lines {
		if line.Product == nil {
			s.logger.Warn("cart line references a missing product",
				zap.String("owner_id", ownerID),
				zap.String("cart_item_id", line.ID),
				zap.String("product_id", line.ProductID),
			)
		}
	}
	return lines, nil
}

// CountItems returns the number of lines, not the quantity sum.
func (s service) CountItems(ctx context.Context, ownerID string) (int, error) {
	if err := apperror.RequireOwner(ownerID); err != nil {
		return 0, err
	}

	key := cache.CartCountKey(ownerID)
	var count int
	err := s.cache.Get(ctx, key, &count)
	if err == nil {
		return count, nil
	}
	if !errors.Is(err, cache.ErrMiss) {
		s.logger.Warn("read cart count cache", zap.String("key", key), zap.Error(err))
	}

	count, err = s.repo.CountCartItems(ctx, ownerID)
	if err != nil {
		s.logger.Error("count cart items", zap.String("owner_id", ownerID), zap.Error(err))
		return 0, apperror.FromStore(err, apperror.Internal, apperror.ErrMsgUnknown)
	}

	if err := s.cache.Set(ctx, key, count); err != nil {
		s.logger.Warn("write cart count cache", zap.String("key", key), zap.Error(err))
	}
	return count, nil
}

func (s service) lockSellableProduct(ctx context.Context, productID string) (model.Product, error) {
	product, err := s.repo.LockProductForUpdate(ctx, productID)
	if database.IsNoRows(err) {
		return model.Product{}, apperror.New(apperror.NotFound, apperror.ErrMsgProductNotFound)
	}
	if err != nil {
		return model.Product{}, err
	}
	if !product.IsActive {
		return model.Product{}, apperror.New(apperror.ProductInactive, apperror.ErrMsgProductInactive)
	}
	return product, nil
}

func checkQuantity(product model.Product, quantity int) error {
	if quantity > product.StockQuantity {
		return apperror.NewInsufficientStock(
			fmt.Sprintf(apperror.ErrMsgOutOfStock, product.StockQuantity), product.StockQuantity,
		)
	}
	if quantity > model.MaxCartQuantity {
		return apperror.NewValidation("quantity", "Quantity must be 999 or less")
	}
	return nil
}

func (s service) invalidate(ctx context.Context, ownerID string) {
	if err := s.cache.Delete(ctx, cache.CartCountKey(ownerID)); err != nil {
		s.logger.Warn("invalidate cart count cache", zap.String("owner_id", ownerID), zap.Error(err))
	}
}

func (s service) fail(op string, ownerID string, err error, fields ...zap.Field) error {
	fields = append(fields, zap.String("owner_id", ownerID), zap.Error(err))
	if apperror.KindOf(err) == apperror.Internal {
		s.logger.Error(op, fields...)
	} else {
		s.logger.Info(op, fields...)
	}
	return apperror.FromStore(err, apperror.Internal, apperror.ErrMsgCartUpdateFailed)
}
