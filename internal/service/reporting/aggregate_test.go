package reporting

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mamadbah2/shopms/internal/domain/models"
)

func money(v string) decimal.Decimal { return decimal.RequireFromString(v) }

func saleAt(at time.Time, amount, profit string, qty ...int) models.Sale {
	sale := models.Sale{Date: at, TotalAmount: money(amount), TotalProfit: money(profit)}
	for _, q := range qty {
		sale.Items = append(sale.Items, models.SaleItem{Quantity: q})
	}
	return sale
}

func TestDayWindowBoundaries(t *testing.T) {
	loc := time.FixedZone("PKT", 5*60*60)
	w := DayWindow(time.Date(2026, 5, 10, 14, 0, 0, 0, loc), loc)

	assert.Equal(t, time.Date(2026, 5, 10, 0, 0, 0, 0, loc), w.Start)
	assert.Equal(t, time.Date(2026, 5, 10, 23, 59, 59, 999000000, loc), w.End)
	assert.True(t, w.Contains(w.Start))
	assert.True(t, w.Contains(w.End))
	assert.False(t, w.Contains(w.End.Add(time.Millisecond)))
	assert.False(t, w.Contains(w.Start.Add(-time.Millisecond)))
}

func TestDayWindowUsesLocalCalendarDay(t *testing.T) {
	loc := time.FixedZone("PKT", 5*60*60)
	// 21:00 UTC on the 9th is already the 10th in PKT.
	w := DayWindow(time.Date(2026, 5, 9, 21, 0, 0, 0, time.UTC), loc)
	assert.Equal(t, 10, w.Start.Day())
}

func TestSummarize_Scenario(t *testing.T) {
	loc := time.UTC
	day := time.Date(2026, 2, 1, 12, 0, 0, 0, loc)
	w := DayWindow(day, loc)

	sales := []models.Sale{
		saleAt(day.Add(-time.Hour), "100", "30", 1, 2),
		saleAt(day.Add(time.Hour), "250", "70", 4),
		saleAt(day.AddDate(0, 0, 1), "999", "500", 9),
	}
	expenses := []models.Expense{
		{Type: models.ExpenseRent, Amount: money("50"), ExpenseDate: day},
		{Type: models.ExpenseRent, Amount: money("400"), ExpenseDate: day.AddDate(0, 0, -3)},
	}

	summary := Summarize(sales, expenses, w)

	assert.True(t, summary.TotalSales.Equal(money("350")))
	assert.True(t, summary.GrossProfit.Equal(money("100")))
	assert.True(t, summary.Expenses.Equal(money("50")))
	assert.True(t, summary.TotalProfit.Equal(money("50")), "got %s", summary.TotalProfit)
	assert.Equal(t, 7, summary.TotalItems)
	assert.Equal(t, 2, summary.SalesCount)
}

func TestSummarize_EmptyWindow(t *testing.T) {
	w := DayWindow(time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC), time.UTC)
	summary := Summarize(nil, nil, w)

	assert.True(t, summary.TotalSales.IsZero())
	assert.True(t, summary.TotalProfit.IsZero())
	assert.Zero(t, summary.TotalItems)
}

func TestSummarize_ExpensesCanMakeProfitNegative(t *testing.T) {
	day := time.Date(2026, 2, 1, 9, 0, 0, 0, time.UTC)
	w := DayWindow(day, time.UTC)

	summary := Summarize(
		[]models.Sale{saleAt(day, "100", "20", 1)},
		[]models.Expense{{Amount: money("75.50"), ExpenseDate: day}},
		w,
	)

	assert.Equal(t, "-55.5", summary.TotalProfit.String())
}

func TestParseDay(t *testing.T) {
	loc := time.FixedZone("PKT", 5*60*60)
	got, err := ParseDay("2026-04-01T10:00:00Z", loc)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 4, 1, 0, 0, 0, 0, loc), got)

	_, err = ParseDay("", loc)
	assert.Error(t, err)
	_, err = ParseDay("01/04/2026", loc)
	assert.Error(t, err)
}
