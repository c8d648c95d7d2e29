// Package repository declares the storage contracts shared by every backend.
package repository

import (
	"context"

	"github.com/mamadbah2/shopms/internal/domain/models"
)

// ProductStore persists products and their stock levels.
type ProductStore interface {
	Get(ctx context.Context, id string) (models.Product, error)
	// Find resolves ids in one round trip. Unknown ids are absent from the result.
	Find(ctx context.Context, ids []string) (map[string]models.Product, error)
	// AdjustStock adds delta to the product stock. A negative delta is applied only
	// when the current stock covers it; otherwise an InsufficientStockError is returned
	// and nothing changes.
	AdjustStock(ctx context.Context, id string, delta int) error
	List(ctx context.Context) ([]models.Product, error)
	Create(ctx context.Context, product models.Product) (models.Product, error)
	Update(ctx context.Context, product models.Product) (models.Product, error)
	Delete(ctx context.Context, id string) error
}

// SaleStore persists sale records.
type SaleStore interface {
	Insert(ctx context.Context, sale models.Sale) (models.Sale, error)
	Get(ctx context.Context, id string) (models.Sale, error)
	Update(ctx context.Context, sale models.Sale) error
	Delete(ctx context.Context, id string) error
	// List returns sales newest first, optionally restricted to a date range.
	List(ctx context.Context, within *models.DateRange) ([]models.Sale, error)
}

// ExpenseStore persists expenses.
type ExpenseStore interface {
	Create(ctx context.Context, expense models.Expense) (models.Expense, error)
	Get(ctx context.Context, id string) (models.Expense, error)
	Delete(ctx context.Context, id string) error
	// List returns expenses newest first, optionally restricted to a date range.
	List(ctx context.Context, within *models.DateRange) ([]models.Expense, error)
}

// UserStore persists admin accounts.
type UserStore interface {
	FindByUsername(ctx context.Context, username string) (models.AdminUser, error)
	FindAdmin(ctx context.Context) (models.AdminUser, error)
	Create(ctx context.Context, user models.AdminUser) (models.AdminUser, error)
	UpdatePassword(ctx context.Context, id, passwordHash string) error
}

// ReportStore defines the interface for report storage.
type ReportStore interface {
	SaveDailyReport(ctx context.Context, report models.DailyReport) error
}

// Transactor runs a unit of work against the store.
type Transactor interface {
	// WithinTransaction runs fn. Store calls made with the ctx passed to fn join the
	// same unit of work.
	WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error
	// Atomic reports whether a failed fn leaves no trace. When false, callers must
	// compensate their own partial writes.
	Atomic() bool
}

// NoopTransactor runs fn directly with no rollback.
type NoopTransactor struct{}

func (NoopTransactor) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

func (NoopTransactor) Atomic() bool { return false }
