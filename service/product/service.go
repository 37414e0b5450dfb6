package product

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/rafata1/storefront/apperror"
	"github.com/rafata1/storefront/database"
	"github.com/rafata1/storefront/model"
	"github.com/rafata1/storefront/validation"
)

type IService interface {
	ListProducts(ctx context.Context, filter model.ProductFilter) (model.ProductPage, error)
	GetProduct(ctx context.Context, id string) (model.Product, error)
}

type service struct {
	repo   IRepo
	logger *zap.Logger
}

func NewService(repo IRepo, logger *zap.Logger) IService {
	return &service{
		repo:   repo,
		logger: logger,
	}
}

func (s service) ListProducts(ctx context.Context, filter model.ProductFilter) (model.ProductPage, error) {
	if err := validation.Validate(filter); err != nil {
		return model.ProductPage{}, err
	}
	filter = filter.Normalize()

	items, total, err := s.repo.ListProducts(ctx, filter)
	if err != nil {
		s.logger.Error("list products", zap.String("category", filter.Category), zap.Error(err))
		return model.ProductPage{}, apperror.FromStore(err, apperror.Internal, apperror.ErrMsgUnknown)
	}

	return model.ProductPage{
		Items:      items,
		Total:      total,
		Page:       filter.Page,
		PageSize:   filter.PageSize,
		TotalPages: (total + filter.PageSize - 1) / filter.PageSize,
	}, nil
}

// GetProduct hides inactive products behind NotFound.
func (s service) GetProduct(ctx context.Context, id string) (model.Product, error) {
	if _, err := uuid.Parse(id); err != nil {
		return model.Product{}, apperror.New(apperror.NotFound, apperror.ErrMsgProductNotFound)
	}

	product, err := s.repo.GetProduct(ctx, id)
	if database.IsNoRows(err) {
		return model.Product{}, apperror.New(apperror.NotFound, apperror.ErrMsgProductNotFound)
	}
	if err != nil {
		s.logger.Error("get product", zap.String("product_id", id), zap.Error(err))
		return model.Product{}, apperror.FromStore(err, apperror.Internal, apperror.ErrMsgUnknown)
	}
	if !product.IsActive {
		return model.Product{}, apperror.New(apperror.NotFound, apperror.ErrMsgProductNotFound)
	}
	return product, nil
}
