package reporting

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/mamadbah2/shopms/internal/domain/models"
)

const dateLayout = "2006-01-02"

// Window is an inclusive time interval in a given location.
type Window struct {
	Start time.Time
	End   time.Time
}

// StartOfDay returns 00:00:00.000 of t's calendar day in loc.
func StartOfDay(t time.Time, loc *time.Location) time.Time {
	t = t.In(loc)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
}

// EndOfDay returns 23:59:59.999 of t's calendar day in loc.
func EndOfDay(t time.Time, loc *time.Location) time.Time {
	t = t.In(loc)
	return time.Date(t.Year(), t.Month(), t.Day(), 23, 59, 59, int(999*time.Millisecond), loc)
}

// NewWindow spans from the start of start's day to the end of end's day.
func NewWindow(start, end time.Time, loc *time.Location) Window {
	return Window{Start: StartOfDay(start, loc), End: EndOfDay(end, loc)}
}

// DayWindow covers the single calendar day containing t.
func DayWindow(t time.Time, loc *time.Location) Window {
	return NewWindow(t, t, loc)
}

// Contains reports whether t lies in the window, both endpoints included.
func (w Window) Contains(t time.Time) bool {
	return !t.Before(w.Start) && !t.After(w.End)
}

// Range converts the window to a store query range.
func (w Window) Range() *models.DateRange {
	return &models.DateRange{From: w.Start, To: w.End}
}

// Summary aggregates sales and expenses over a window.
type Summary struct {
	Start       time.Time       `json:"start"`
	End         time.Time       `json:"end"`
	TotalSales  decimal.Decimal `json:"totalSales"`
	GrossProfit decimal.Decimal `json:"grossProfit"`
	Expenses    decimal.Decimal `json:"expenses"`
	// TotalProfit is GrossProfit minus Expenses.
	TotalProfit decimal.Decimal `json:"totalProfit"`
	TotalItems  int             `json:"totalItems"`
	SalesCount  int             `json:"salesCount"`
}

// Summarize totals the sales and expenses that fall inside w.
func Summarize(sales []models.Sale, expenses []models.Expense, w Window) Summary {
	summary := Summary{
		Start:       w.Start,
		End:         w.End,
		TotalSales:  decimal.Zero,
		GrossProfit: decimal.Zero,
		Expenses:    decimal.Zero,
	}

	for _, sale := range sales {
		if !w.Contains(sale.Date) {
			continue
		}
		summary.TotalSales = summary.TotalSales.Add(sale.TotalAmount)
		summary.GrossProfit = summary.GrossProfit.Add(sale.TotalProfit)
		summary.TotalItems += sale.ItemCount()
		summary.SalesCount++
	}

	for _, expense := range expenses {
		if !w.Contains(expense.ExpenseDate) {
			continue
		}
		summary.Expenses = summary.Expenses.Add(expense.Amount)
	}

	summary.TotalProfit = summary.GrossProfit.Sub(summary.Expenses)
	return summary
}

// ParseDay parses a YYYY-MM-DD value in loc.
func ParseDay(value string, loc *time.Location) (time.Time, error) {
	if value == "" {
		return time.Time{}, fmt.Errorf("empty date")
	}
	if len(value) > 10 {
		value = value[:10]
	}
	return time.ParseInLocation(dateLayout, value, loc)
}
