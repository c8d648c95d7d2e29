package ledger

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/mamadbah2/shopms/internal/repository"
)

type stockEntry struct {
	productID string
	delta     int
}

// journal records applied stock adjustments so they can be undone in reverse order.
type journal struct {
	products repository.ProductStore
	logger   *zap.Logger
	entries  []stockEntry
}

func (s *Service) newJournal() *journal {
	return &journal{products: s.products, logger: s.logger}
}

func (j *journal) adjust(ctx context.Context, productID string, delta int) error {
	if err := j.products.AdjustStock(ctx, productID, delta); err != nil {
		return err
	}
	j.entries = append(j.entries, stockEntry{productID: productID, delta: delta})
	return nil
}

func (j *journal) revert(ctx context.Context) error {
	var errs []error
	for i := len(j.entries) - 1; i >= 0; i-- {
		entry := j.entries[i]
		if err := j.products.AdjustStock(ctx, entry.productID, -entry.delta); err != nil {
			errs = append(errs, fmt.Errorf("product %s delta %d: %w", entry.productID, -entry.delta, err))
			continue
		}
		j.logger.Warn("stock adjustment compensated",
			zap.String("product_id", entry.productID),
			zap.Int("delta", -entry.delta))
	}
	j.entries = nil
	return errors.Join(errs...)
}
