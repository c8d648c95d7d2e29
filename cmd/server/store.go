package main

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/mamadbah2/shopms/internal/config"
	"github.com/mamadbah2/shopms/internal/repository"
	"github.com/mamadbah2/shopms/internal/repository/memory"
	"github.com/mamadbah2/shopms/internal/repository/mongodb"
	"github.com/mamadbah2/shopms/internal/repository/postgres"
)

// backend is the set of stores every driver provides.
type backend interface {
	Products() repository.ProductStore
	Sales() repository.SaleStore
	Expenses() repository.ExpenseStore
	Users() repository.UserStore
	Reports() repository.ReportStore
	Transactor() repository.Transactor
}

// openBackend connects the driver selected by STORE_DRIVER and prepares its
// schema. The returned func releases the connection.
func openBackend(ctx context.Context, cfg *config.Config, logger *zap.Logger) (backend, func(), error) {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	switch cfg.Store.Driver {
	case config.DriverMongoDB:
		repo, err := mongodb.NewMongoDBRepository(ctx, cfg.MongoDB.URI, cfg.MongoDB.DBName,
			mongodb.WithTransactions(cfg.MongoDB.Transactions),
			mongodb.WithLogger(logger.Named("repo.mongodb")))
		if err != nil {
			return nil, nil, fmt.Errorf("connect mongodb: %w", err)
		}
		if err := repo.EnsureIndexes(ctx); err != nil {
			_ = repo.Close(context.Background())
			return nil, nil, fmt.Errorf("ensure mongodb indexes: %w", err)
		}
		closeFn := func() {
			if err := repo.Close(context.Background()); err != nil {
				logger.Error("failed to close mongodb connection", zap.Error(err))
			}
		}
		return repo, closeFn, nil

	case config.DriverPostgres:
		pool, err := postgres.NewPool(ctx, cfg.Postgres.URL)
		if err != nil {
			return nil, nil, fmt.Errorf("connect postgres: %w", err)
		}
		store := postgres.New(pool, logger.Named("repo.postgres"))
		if err := store.Migrate(ctx); err != nil {
			store.Close()
			return nil, nil, fmt.Errorf("migrate postgres: %w", err)
		}
		return store, store.Close, nil

	case config.DriverMemory:
		logger.Warn("using in-memory store, data is lost on restart")
		return memory.New(), func() {}, nil
	}
	return nil, nil, fmt.Errorf("unsupported store driver %q", cfg.Store.Driver)
}
