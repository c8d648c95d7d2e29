package mongodb

import (
	"context"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mamadbah2/shopms/internal/domain/models"
)

func newTestRepository(t *testing.T) *MongoDBRepository {
	t.Helper()
	uri := os.Getenv("MONGODB_TEST_URI")
	if uri == "" {
		t.Skip("MONGODB_TEST_URI not set")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	dbName := "shopms_test_" + strings.ReplaceAll(uuid.NewString(), "-", "")[:12]
	repo, err := NewMongoDBRepository(ctx, uri, dbName)
	require.NoError(t, err)
	require.NoError(t, repo.EnsureIndexes(ctx))

	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = repo.db.Drop(ctx)
		_ = repo.Close(ctx)
	})
	return repo
}

func TestProductStockAdjustments(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()
	products := repo.Products()

	created, err := products.Create(ctx, models.Product{Name: "Bulb", Stock: 5, Price: decimal.RequireFromString("80.25")})
	require.NoError(t, err)

	require.NoError(t, products.AdjustStock(ctx, created.ID, -3))
	err = products.AdjustStock(ctx, created.ID, -3)
	assert.ErrorIs(t, err, models.ErrInsufficientStock)
	require.NoError(t, products.AdjustStock(ctx, created.ID, 1))

	got, err := products.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, got.Stock)
	assert.Equal(t, "80.25", got.Price.String())

	assert.ErrorIs(t, products.AdjustStock(ctx, "not-an-id", 1), models.ErrNotFound)
}

func TestConcurrentDecrementsNeverOversell(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()
	products := repo.Products()

	created, err := products.Create(ctx, models.Product{Name: "Fan", Stock: 4})
	require.NoError(t, err)

	var wg sync.WaitGroup
	var mu sync.Mutex
	succeeded := 0
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if products.AdjustStock(ctx, created.ID, -1) == nil {
				mu.Lock()
				succeeded++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	got, err := products.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, 4, succeeded)
	assert.Equal(t, 0, got.Stock)
}

func TestSalesListWithinRangeNewestFirst(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()
	product, err := repo.Products().Create(ctx, models.Product{Name: "Cable", Stock: 10})
	require.NoError(t, err)

	base := time.Date(2026, 2, 1, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		_, err := repo.Sales().Insert(ctx, models.Sale{
			BuyerName:   "buyer",
			Date:        base.AddDate(0, 0, i),
			TotalAmount: decimal.NewFromInt(int64(100 * (i + 1))),
			Items: []models.SaleItem{{
				ProductID: product.ID,
				Quantity:  1,
				SalePrice: decimal.NewFromInt(int64(100 * (i + 1))),
			}},
		})
		require.NoError(t, err)
	}

	sales, err := repo.Sales().List(ctx, &models.DateRange{From: base.AddDate(0, 0, 1), To: base.AddDate(0, 0, 2)})
	require.NoError(t, err)
	require.Len(t, sales, 2)
	assert.Equal(t, "300", sales[0].TotalAmount.String())
	assert.Equal(t, product.ID, sales[0].Items[0].ProductID)
}

func TestUsersRejectDuplicateUsername(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	_, err := repo.Users().Create(ctx, models.AdminUser{Username: "admin", PasswordHash: "x", Role: models.RoleAdmin, CreatedAt: time.Now()})
	require.NoError(t, err)
	_, err = repo.Users().Create(ctx, models.AdminUser{Username: "admin", PasswordHash: "y", Role: models.RoleAdmin})
	assert.ErrorIs(t, err, models.ErrConflict)

	admin, err := repo.Users().FindAdmin(ctx)
	require.NoError(t, err)
	assert.Equal(t, "admin", admin.Username)
}
