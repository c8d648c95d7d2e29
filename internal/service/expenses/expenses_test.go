package expenses

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mamadbah2/shopms/internal/domain/models"
	"github.com/mamadbah2/shopms/internal/repository/memory"
)

var fixedNow = time.Date(2026, 3, 14, 10, 30, 0, 0, time.UTC)

func newService() *Service {
	svc := NewService(memory.New().Expenses(), nil)
	svc.now = func() time.Time { return fixedNow }
	return svc
}

func amount(v string) *decimal.Decimal {
	d := decimal.RequireFromString(v)
	return &d
}

func TestCreateDefaultsDate(t *testing.T) {
	svc := newService()

	created, err := svc.Create(context.Background(), Input{Type: models.ExpenseRent, Amount: amount("15000"), Description: " March "})
	require.NoError(t, err)
	assert.Equal(t, fixedNow, created.ExpenseDate)
	assert.Equal(t, "March", created.Description)
	assert.NotEmpty(t, created.ID)
}

func TestCreateKeepsExplicitDate(t *testing.T) {
	svc := newService()
	when := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	created, err := svc.Create(context.Background(), Input{Type: models.ExpenseOther, Amount: amount("0"), ExpenseDate: &when})
	require.NoError(t, err)
	assert.Equal(t, when, created.ExpenseDate)
}

func TestCreateValidation(t *testing.T) {
	svc := newService()

	tests := []struct {
		name string
		in   Input
		msg  string
	}{
		{"missing type", Input{Amount: amount("1")}, "Type and amount are required"},
		{"missing amount", Input{Type: models.ExpenseRent}, "Type and amount are required"},
		{"unknown type", Input{Type: "Snacks", Amount: amount("1")}, "Invalid expense type"},
		{"negative amount", Input{Type: models.ExpenseRent, Amount: amount("-1")}, "Amount cannot be negative"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Create(context.Background(), tt.in)
			require.ErrorIs(t, err, models.ErrValidation)
			assert.EqualError(t, err, tt.msg)
		})
	}
}

func TestListWithinRange(t *testing.T) {
	svc := newService()
	ctx := context.Background()
	for _, day := range []int{1, 5, 10} {
		when := time.Date(2026, 3, day, 12, 0, 0, 0, time.UTC)
		_, err := svc.Create(ctx, Input{Type: models.ExpenseElectricityBill, Amount: amount("100"), ExpenseDate: &when})
		require.NoError(t, err)
	}

	all, err := svc.List(ctx, nil)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, 10, all[0].ExpenseDate.Day())

	within, err := svc.List(ctx, &models.DateRange{
		From: time.Date(2026, 3, 5, 0, 0, 0, 0, time.UTC),
		To:   time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	assert.Len(t, within, 2)

	_, err = svc.List(ctx, &models.DateRange{From: fixedNow, To: fixedNow.Add(-time.Hour)})
	assert.ErrorIs(t, err, models.ErrValidation)
}

func TestDelete(t *testing.T) {
	svc := newService()
	ctx := context.Background()

	created, err := svc.Create(ctx, Input{Type: models.ExpenseWorkerSalary, Amount: amount("20000")})
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, created.ID))
	assert.ErrorIs(t, svc.Delete(ctx, created.ID), models.ErrNotFound)
}
