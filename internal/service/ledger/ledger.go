package ledger

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/mamadbah2/shopms/internal/domain/models"
	"github.com/mamadbah2/shopms/internal/repository"
)

// Service keeps recorded sales and product stock consistent.
type Service struct {
	products repository.ProductStore
	sales    repository.SaleStore
	tx       repository.Transactor
	logger   *zap.Logger
	now      func() time.Time
}

// NewService wires the ledger to its stores. A nil transactor runs without rollback.
func NewService(products repository.ProductStore, sales repository.SaleStore, tx repository.Transactor, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	if tx == nil {
		tx = repository.NoopTransactor{}
	}
	return &Service{
		products: products,
		sales:    sales,
		tx:       tx,
		logger:   logger,
		now:      time.Now,
	}
}

// CreateSale validates every line against current stock, then deducts stock,
// snapshots cost prices and records the sale.
func (s *Service) CreateSale(ctx context.Context, buyerName string, items []models.SaleItemInput) (models.Sale, error) {
	buyerName = strings.TrimSpace(buyerName)
	if err := validateInput(buyerName, items); err != nil {
		return models.Sale{}, err
	}

	var created models.Sale
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		j := s.newJournal()

		priced, err := s.applyItems(ctx, items, j)
		if err != nil {
			return s.abort(ctx, j, err)
		}

		sale := models.Sale{BuyerName: buyerName, Date: s.now()}
		setItems(&sale, priced)

		created, err = s.sales.Insert(ctx, sale)
		if err != nil {
			return s.abort(ctx, j, models.NewStorageError("insert sale", err))
		}
		return nil
	})
	if err != nil {
		return models.Sale{}, err
	}

	s.logger.Info("sale created",
		zap.String("sale_id", created.ID),
		zap.String("buyer", created.BuyerName),
		zap.Int("items", len(created.Items)),
		zap.String("total_amount", created.TotalAmount.String()),
		zap.String("total_profit", created.TotalProfit.String()))
	return created, nil
}

// UpdateSale returns the stock held by the existing sale, then applies the new
// lines exactly as CreateSale would. On failure no stock change survives.
func (s *Service) UpdateSale(ctx context.Context, id, buyerName string, items []models.SaleItemInput) (models.Sale, error) {
	buyerName = strings.TrimSpace(buyerName)
	if err := validateInput(buyerName, items); err != nil {
		return models.Sale{}, err
	}

	var updated models.Sale
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		existing, err := s.getSale(ctx, id)
		if err != nil {
			return err
		}

		j := s.newJournal()
		if err := s.revertItems(ctx, existing, j); err != nil {
			return s.abort(ctx, j, err)
		}

		priced, err := s.applyItems(ctx, items, j)
		if err != nil {
			return s.abort(ctx, j, err)
		}

		existing.BuyerName = buyerName
		existing.Date = s.now()
		setItems(&existing, priced)

		if err := s.sales.Update(ctx, existing); err != nil {
			return s.abort(ctx, j, storageOr("update sale", err))
		}
		updated = existing
		return nil
	})
	if err != nil {
		return models.Sale{}, err
	}

	s.logger.Info("sale updated",
		zap.String("sale_id", updated.ID),
		zap.Int("items", len(updated.Items)),
		zap.String("total_amount", updated.TotalAmount.String()))
	return updated, nil
}

// DeleteSale returns the sale's stock to the shelf and removes the record.
func (s *Service) DeleteSale(ctx context.Context, id string) error {
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		existing, err := s.getSale(ctx, id)
		if err != nil {
			return err
		}

		j := s.newJournal()
		if err := s.revertItems(ctx, existing, j); err != nil {
			return s.abort(ctx, j, err)
		}

		if err := s.sales.Delete(ctx, id); err != nil {
			return s.abort(ctx, j, storageOr("delete sale", err))
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.logger.Info("sale deleted and stock reverted", zap.String("sale_id", id))
	return nil
}

// ListSales returns every sale newest first, with item names refreshed from the
// current product records where those still exist.
func (s *Service) ListSales(ctx context.Context) ([]models.Sale, error) {
	sales, err := s.sales.List(ctx, nil)
	if err != nil {
		return nil, storageOr("list sales", err)
	}
	if err := s.joinProducts(ctx, sales); err != nil {
		return nil, err
	}
	return sales, nil
}

// GetSale returns one sale with item names refreshed like ListSales.
func (s *Service) GetSale(ctx context.Context, id string) (models.Sale, error) {
	sale, err := s.getSale(ctx, id)
	if err != nil {
		return models.Sale{}, err
	}
	batch := []models.Sale{sale}
	if err := s.joinProducts(ctx, batch); err != nil {
		return models.Sale{}, err
	}
	return batch[0], nil
}

func (s *Service) getSale(ctx context.Context, id string) (models.Sale, error) {
	if strings.TrimSpace(id) == "" {
		return models.Sale{}, models.NewValidationError("id", "Sale id is required.")
	}
	sale, err := s.sales.Get(ctx, id)
	if err != nil {
		return models.Sale{}, storageOr("load sale", err)
	}
	return sale, nil
}

// applyItems resolves and checks every line before the first stock write.
func (s *Service) applyItems(ctx context.Context, items []models.SaleItemInput, j *journal) ([]models.SaleItem, error) {
	ids := make([]string, 0, len(items))
	for _, item := range items {
		ids = append(ids, item.ProductID)
	}

	products, err := s.products.Find(ctx, ids)
	if err != nil {
		return nil, storageOr("load products", err)
	}

	needed := make(map[string]int, len(items))
	for _, item := range items {
		product, ok := products[item.ProductID]
		if !ok {
			return nil, models.NewNotFoundError("Product", item.ProductID)
		}
		needed[item.ProductID] += item.Quantity
		if product.Stock < needed[item.ProductID] {
			return nil, &models.InsufficientStockError{
				ProductID:   product.ID,
				ProductName: product.Name,
				Available:   product.Stock,
				Requested:   needed[item.ProductID],
			}
		}
	}

	priced := make([]models.SaleItem, 0, len(items))
	for _, item := range items {
		if err := j.adjust(ctx, item.ProductID, -item.Quantity); err != nil {
			return nil, storageOr("deduct stock", err)
		}
		priced = append(priced, models.NewSaleItem(products[item.ProductID], item.Quantity, item.SalePrice))
	}
	return priced, nil
}

// revertItems puts back the stock deducted by sale. Lines whose product has since
// been deleted are skipped.
func (s *Service) revertItems(ctx context.Context, sale models.Sale, j *journal) error {
	for _, item := range sale.Items {
		err := j.adjust(ctx, item.ProductID, item.Quantity)
		if errors.Is(err, models.ErrNotFound) {
			s.logger.Warn("skipping stock reversal for deleted product",
				zap.String("sale_id", sale.ID),
				zap.String("product_id", item.ProductID),
				zap.Int("quantity", item.Quantity))
			continue
		}
		if err != nil {
			return storageOr("revert stock", err)
		}
	}
	return nil
}

func (s *Service) joinProducts(ctx context.Context, sales []models.Sale) error {
	seen := make(map[string]struct{})
	var ids []string
	for _, sale := range sales {
		for _, item := range sale.Items {
			if _, ok := seen[item.ProductID]; ok {
				continue
			}
			seen[item.ProductID] = struct{}{}
			ids = append(ids, item.ProductID)
		}
	}
	if len(ids) == 0 {
		return nil
	}

	products, err := s.products.Find(ctx, ids)
	if err != nil {
		return storageOr("load products", err)
	}
	for i := range sales {
		for k := range sales[i].Items {
			if product, ok := products[sales[i].Items[k].ProductID]; ok {
				sales[i].Items[k].ProductName = product.Name
			}
		}
	}
	return nil
}

// abort undoes recorded stock writes when the store cannot roll them back itself.
func (s *Service) abort(ctx context.Context, j *journal, cause error) error {
	if s.tx.Atomic() {
		return cause
	}
	if err := j.revert(ctx); err != nil {
		s.logger.Error("stock compensation incomplete", zap.Error(err), zap.NamedError("cause", cause))
		return fmt.Errorf("%w (stock compensation failed: %v)", cause, err)
	}
	return cause
}

func setItems(sale *models.Sale, items []models.SaleItem) {
	sale.Items = items
	sale.TotalAmount = decimal.Zero
	sale.TotalProfit = decimal.Zero
	for _, item := range items {
		sale.TotalAmount = sale.TotalAmount.Add(item.Amount)
		sale.TotalProfit = sale.TotalProfit.Add(item.Profit)
	}
}

func validateInput(buyerName string, items []models.SaleItemInput) error {
	if buyerName == "" {
		return models.NewValidationError("buyerName", "Buyer name is required.")
	}
	if len(items) == 0 {
		return models.NewValidationError("items", "At least one sale item is required.")
	}
	for i, item := range items {
		switch {
		case strings.TrimSpace(item.ProductID) == "":
			return models.NewValidationError(fmt.Sprintf("items[%d].productId", i), "Each item must include productId, quantity, and salePrice.")
		case item.Quantity < 1:
			return models.NewValidationError(fmt.Sprintf("items[%d].quantity", i), "Item quantity must be at least 1.")
		case item.SalePrice.IsNegative():
			return models.NewValidationError(fmt.Sprintf("items[%d].salePrice", i), "Item sale price cannot be negative.")
		}
	}
	return nil
}

// storageOr passes domain errors through and wraps anything else as a StorageError.
func storageOr(op string, err error) error {
	if err == nil {
		return nil
	}
	for _, domain := range []error{models.ErrNotFound, models.ErrValidation, models.ErrInsufficientStock, models.ErrStorage} {
		if errors.Is(err, domain) {
			return err
		}
	}
	return models.NewStorageError(op, err)
}
