package expenses

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/mamadbah2/shopms/internal/domain/models"
	"github.com/mamadbah2/shopms/internal/repository"
)

// Input carries the writable fields of an expense. A nil Amount means it was omitted.
type Input struct {
	Type        models.ExpenseType
	Description string
	Amount      *decimal.Decimal
	ExpenseDate *time.Time
}

// Service records operating costs.
type Service struct {
	expenses repository.ExpenseStore
	logger   *zap.Logger
	now      func() time.Time
}

// NewService wires the expense service.
func NewService(expenses repository.ExpenseStore, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{expenses: expenses, logger: logger, now: time.Now}
}

// List returns expenses newest first, restricted to within when it is non-nil.
func (s *Service) List(ctx context.Context, within *models.DateRange) ([]models.Expense, error) {
	if within != nil && within.To.Before(within.From) {
		return nil, models.NewValidationError("to", "end date is before start date")
	}
	expenses, err := s.expenses.List(ctx, within)
	if err != nil {
		return nil, wrap("list expenses", err)
	}
	return expenses, nil
}

// Create validates and stores an expense. ExpenseDate defaults to now.
func (s *Service) Create(ctx context.Context, in Input) (models.Expense, error) {
	if in.Type == "" || in.Amount == nil {
		return models.Expense{}, models.NewValidationError("type", "Type and amount are required")
	}
	if !in.Type.Valid() {
		return models.Expense{}, models.NewValidationError("type", "Invalid expense type")
	}
	if in.Amount.IsNegative() {
		return models.Expense{}, models.NewValidationError("amount", "Amount cannot be negative")
	}

	expense := models.Expense{
		Type:        in.Type,
		Description: strings.TrimSpace(in.Description),
		Amount:      *in.Amount,
		ExpenseDate: s.now(),
	}
	if in.ExpenseDate != nil && !in.ExpenseDate.IsZero() {
		expense.ExpenseDate = *in.ExpenseDate
	}

	created, err := s.expenses.Create(ctx, expense)
	if err != nil {
		return models.Expense{}, wrap("create expense", err)
	}
	s.logger.Info("expense recorded",
		zap.String("expense_id", created.ID),
		zap.String("type", string(created.Type)),
		zap.String("amount", created.Amount.String()))
	return created, nil
}

// Delete removes an expense.
func (s *Service) Delete(ctx context.Context, id string) error {
	if strings.TrimSpace(id) == "" {
		return models.NewValidationError("id", "expense id is required")
	}
	if err := s.expenses.Delete(ctx, id); err != nil {
		return wrap("delete expense", err)
	}
	s.logger.Info("expense deleted", zap.String("expense_id", id))
	return nil
}

func wrap(op string, err error) error {
	if errors.Is(err, models.ErrNotFound) || errors.Is(err, models.ErrStorage) {
		return err
	}
	return models.NewStorageError(op, err)
}
