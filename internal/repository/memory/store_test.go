package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mamadbah2/shopms/internal/domain/models"
)

var errAbort = errors.New("abort")

func seedProduct(t *testing.T, s *Store, id string, stock int) {
	t.Helper()
	_, err := s.Products().Create(context.Background(), models.Product{ID: id, Name: id, Stock: stock, Price: decimal.NewFromInt(10)})
	require.NoError(t, err)
}

func stockOf(t *testing.T, s *Store, id string) int {
	t.Helper()
	p, err := s.Products().Get(context.Background(), id)
	require.NoError(t, err)
	return p.Stock
}

func TestWithinTransactionRollsBackOwnWrites(t *testing.T) {
	s := New()
	ctx := context.Background()
	seedProduct(t, s, "p1", 10)
	existing, err := s.Sales().Insert(ctx, models.Sale{BuyerName: "Ali", Date: time.Now()})
	require.NoError(t, err)

	err = s.WithinTransaction(ctx, func(ctx context.Context) error {
		require.NoError(t, s.Products().AdjustStock(ctx, "p1", -4))
		_, err := s.Sales().Insert(ctx, models.Sale{ID: "s-new", BuyerName: "Sara", Date: time.Now()})
		require.NoError(t, err)
		require.NoError(t, s.Sales().Delete(ctx, existing.ID))
		require.NoError(t, s.Products().Delete(ctx, "p1"))
		return errAbort
	})
	require.ErrorIs(t, err, errAbort)

	assert.Equal(t, 10, stockOf(t, s, "p1"))
	_, err = s.Sales().Get(ctx, "s-new")
	assert.ErrorIs(t, err, models.ErrNotFound)
	_, err = s.Sales().Get(ctx, existing.ID)
	assert.NoError(t, err)
}

func TestWithinTransactionKeepsWritesFromOtherContexts(t *testing.T) {
	s := New()
	seedProduct(t, s, "p1", 10)

	outside := context.Background()
	err := s.WithinTransaction(context.Background(), func(ctx context.Context) error {
		require.NoError(t, s.Products().AdjustStock(ctx, "p1", -2))

		// A concurrent request writes while the unit of work is open.
		done := make(chan struct{})
		go func() {
			defer close(done)
			_, err := s.Products().Create(outside, models.Product{ID: "other", Name: "Other", Stock: 3})
			assert.NoError(t, err)
			assert.NoError(t, s.Products().AdjustStock(outside, "p1", 5))
		}()
		<-done
		return errAbort
	})
	require.ErrorIs(t, err, errAbort)

	assert.Equal(t, 3, stockOf(t, s, "other"))
	assert.Equal(t, 15, stockOf(t, s, "p1"))
}

func TestWithinTransactionCommitAndNesting(t *testing.T) {
	s := New()
	seedProduct(t, s, "p1", 10)

	err := s.WithinTransaction(context.Background(), func(ctx context.Context) error {
		require.NoError(t, s.Products().AdjustStock(ctx, "p1", -1))
		return s.WithinTransaction(ctx, func(ctx context.Context) error {
			return s.Products().AdjustStock(ctx, "p1", -1)
		})
	})
	require.NoError(t, err)
	assert.Equal(t, 8, stockOf(t, s, "p1"))

	err = s.WithinTransaction(context.Background(), func(ctx context.Context) error {
		require.NoError(t, s.Products().AdjustStock(ctx, "p1", -3))
		return s.WithinTransaction(ctx, func(ctx context.Context) error {
			require.NoError(t, s.Products().AdjustStock(ctx, "p1", -3))
			return errAbort
		})
	})
	require.ErrorIs(t, err, errAbort)
	assert.Equal(t, 8, stockOf(t, s, "p1"))
}

func TestAdjustStockRejectsOverdraw(t *testing.T) {
	s := New()
	seedProduct(t, s, "p1", 2)

	err := s.Products().AdjustStock(context.Background(), "p1", -3)
	var stockErr *models.InsufficientStockError
	require.ErrorAs(t, err, &stockErr)
	assert.Equal(t, 2, stockErr.Available)
	assert.Equal(t, 2, stockOf(t, s, "p1"))
}
