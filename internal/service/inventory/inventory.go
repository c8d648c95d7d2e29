package inventory

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"

	"github.com/mamadbah2/shopms/internal/domain/models"
	"github.com/mamadbah2/shopms/internal/repository"
)

// Service manages the product catalogue.
type Service struct {
	products repository.ProductStore
	logger   *zap.Logger
}

// NewService wires the inventory service.
func NewService(products repository.ProductStore, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{products: products, logger: logger}
}

// List returns every product ordered by name.
func (s *Service) List(ctx context.Context) ([]models.Product, error) {
	products, err := s.products.List(ctx)
	if err != nil {
		return nil, wrap("list products", err)
	}
	return products, nil
}

// Get returns one product.
func (s *Service) Get(ctx context.Context, id string) (models.Product, error) {
	if strings.TrimSpace(id) == "" {
		return models.Product{}, models.NewValidationError("id", "product id is required")
	}
	product, err := s.products.Get(ctx, id)
	if err != nil {
		return models.Product{}, wrap("load product", err)
	}
	return product, nil
}

// Create validates and stores a new product. Any caller supplied id is ignored.
func (s *Service) Create(ctx context.Context, product models.Product) (models.Product, error) {
	product.ID = ""
	product.Name = strings.TrimSpace(product.Name)
	product.Category = strings.TrimSpace(product.Category)
	if err := product.Validate(); err != nil {
		return models.Product{}, err
	}

	created, err := s.products.Create(ctx, product)
	if err != nil {
		return models.Product{}, wrap("create product", err)
	}
	s.logger.Info("product created",
		zap.String("product_id", created.ID),
		zap.String("name", created.Name),
		zap.Int("stock", created.Stock))
	return created, nil
}

// Update replaces the editable fields of product id.
func (s *Service) Update(ctx context.Context, id string, product models.Product) (models.Product, error) {
	if strings.TrimSpace(id) == "" {
		return models.Product{}, models.NewValidationError("id", "product id is required")
	}
	product.ID = id
	product.Name = strings.TrimSpace(product.Name)
	product.Category = strings.TrimSpace(product.Category)
	if err := product.Validate(); err != nil {
		return models.Product{}, err
	}

	updated, err := s.products.Update(ctx, product)
	if err != nil {
		return models.Product{}, wrap("update product", err)
	}
	s.logger.Info("product updated", zap.String("product_id", updated.ID), zap.Int("stock", updated.Stock))
	return updated, nil
}

// Delete removes a product. Sales that reference it keep their snapshots.
func (s *Service) Delete(ctx context.Context, id string) error {
	if strings.TrimSpace(id) == "" {
		return models.NewValidationError("id", "product id is required")
	}
	if err := s.products.Delete(ctx, id); err != nil {
		return wrap("delete product", err)
	}
	s.logger.Info("product deleted", zap.String("product_id", id))
	return nil
}

func wrap(op string, err error) error {
	if errors.Is(err, models.ErrNotFound) || errors.Is(err, models.ErrStorage) {
		return err
	}
	return models.NewStorageError(op, err)
}
