package postgres

import (
	"context"

	"github.com/google/uuid"

	"github.com/mamadbah2/shopms/internal/domain/models"
)

type expenseStore struct{ s *Store }

func (r *expenseStore) Create(ctx context.Context, expense models.Expense) (models.Expense, error) {
	expense.ID = uuid.NewString()
	_, err := r.s.q(ctx).Exec(ctx, `
		INSERT INTO expenses (id, type, description, amount, expense_date) VALUES ($1, $2, $3, $4, $5)
	`, expense.ID, string(expense.Type), expense.Description, expense.Amount, expense.ExpenseDate)
	if err != nil {
		return models.Expense{}, models.NewStorageError("insert expense", err)
	}
	return expense, nil
}

func (r *expenseStore) Get(ctx context.Context, id string) (models.Expense, error) {
	var expense models.Expense
	var kind string
	err := r.s.q(ctx).QueryRow(ctx,
		"SELECT id, type, description, amount, expense_date FROM expenses WHERE id = $1", id,
	).Scan(&expense.ID, &kind, &expense.Description, &expense.Amount, &expense.ExpenseDate)
	if err != nil {
		return models.Expense{}, notFoundOr(err, "Expense", id, "find expense")
	}
	expense.Type = models.ExpenseType(kind)
	return expense, nil
}

func (r *expenseStore) Delete(ctx context.Context, id string) error {
	tag, err := r.s.q(ctx).Exec(ctx, "DELETE FROM expenses WHERE id = $1", id)
	if err != nil {
		return models.NewStorageError("delete expense", err)
	}
	if tag.RowsAffected() == 0 {
		return models.NewNotFoundError("Expense", id)
	}
	return nil
}

func (r *expenseStore) List(ctx context.Context, within *models.DateRange) ([]models.Expense, error) {
	query := "SELECT id, type, description, amount, expense_date FROM expenses"
	var args []any
	if within != nil {
		query += " WHERE expense_date >= $1 AND expense_date <= $2"
		args = append(args, within.From, within.To)
	}
	query += " ORDER BY expense_date DESC"

	rows, err := r.s.q(ctx).Query(ctx, query, args...)
	if err != nil {
		return nil, models.NewStorageError("list expenses", err)
	}
	defer rows.Close()

	expenses := []models.Expense{}
	for rows.Next() {
		var expense models.Expense
		var kind string
		if err := rows.Scan(&expense.ID, &kind, &expense.Description, &expense.Amount, &expense.ExpenseDate); err != nil {
			return nil, models.NewStorageError("scan expense", err)
		}
		expense.Type = models.ExpenseType(kind)
		expenses = append(expenses, expense)
	}
	if err := rows.Err(); err != nil {
		return nil, models.NewStorageError("list expenses", err)
	}
	return expenses, nil
}
