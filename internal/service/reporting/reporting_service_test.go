package reporting

import (
	"context"
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mamadbah2/shopms/internal/domain/models"
	"github.com/mamadbah2/shopms/internal/repository/memory"
)

func setupService(t *testing.T, now time.Time) (*Service, *memory.Store) {
	t.Helper()
	store := memory.New()
	svc := NewService(store.Sales(), store.Expenses(), store.Reports(), time.UTC, "PKR", nil)
	svc.now = func() time.Time { return now }
	return svc, store
}

func seedSale(t *testing.T, store *memory.Store, at time.Time, amount, profit string, qty int) {
	t.Helper()
	_, err := store.Sales().Insert(context.Background(), models.Sale{
		BuyerName:   "buyer",
		Date:        at,
		TotalAmount: money(amount),
		TotalProfit: money(profit),
		Items:       []models.SaleItem{{ProductID: "p", Quantity: qty}},
	})
	require.NoError(t, err)
}

func seedExpense(t *testing.T, store *memory.Store, at time.Time, amount string) {
	t.Helper()
	_, err := store.Expenses().Create(context.Background(), models.Expense{
		Type:        models.ExpenseOther,
		Amount:      money(amount),
		ExpenseDate: at,
	})
	require.NoError(t, err)
}

func TestDashboardWindows(t *testing.T) {
	now := time.Date(2026, 6, 15, 18, 0, 0, 0, time.UTC)
	svc, store := setupService(t, now)

	seedSale(t, store, now.Add(-2*time.Hour), "100", "40", 1)
	seedSale(t, store, now.AddDate(0, 0, -3), "200", "50", 2)
	seedSale(t, store, now.AddDate(0, 0, -20), "300", "60", 3)
	seedSale(t, store, now.AddDate(0, -2, 0), "999", "99", 9)
	seedExpense(t, store, now.Add(-time.Hour), "10")
	seedExpense(t, store, now.AddDate(0, 0, -10), "25")

	dash, err := svc.Dashboard(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "100", dash.Today.TotalSales.String())
	assert.Equal(t, "30", dash.Today.TotalProfit.String())
	assert.Equal(t, 1, dash.Today.TotalItems)

	assert.Equal(t, "300", dash.Week.TotalSales.String())
	assert.Equal(t, "80", dash.Week.TotalProfit.String())

	assert.Equal(t, "600", dash.Month.TotalSales.String())
	assert.Equal(t, "115", dash.Month.TotalProfit.String())
	assert.Equal(t, 6, dash.Month.TotalItems)

	require.Len(t, dash.RecentSales, 4)
	assert.Equal(t, "100", dash.RecentSales[0].TotalAmount.String())
}

func TestDashboardLimitsRecentSales(t *testing.T) {
	now := time.Date(2026, 6, 15, 18, 0, 0, 0, time.UTC)
	svc, store := setupService(t, now)
	for i := 0; i < 8; i++ {
		seedSale(t, store, now.Add(-time.Duration(i)*time.Minute), "1", "1", 1)
	}

	dash, err := svc.Dashboard(context.Background())
	require.NoError(t, err)
	assert.Len(t, dash.RecentSales, recentSalesLimit)
}

func TestTrendWeekBuckets(t *testing.T) {
	now := time.Date(2026, 6, 15, 18, 0, 0, 0, time.UTC)
	svc, store := setupService(t, now)
	seedSale(t, store, now.Add(-time.Hour), "100", "10", 1)
	seedSale(t, store, time.Date(2026, 6, 13, 0, 0, 0, 0, time.UTC), "40", "4", 1)
	seedSale(t, store, now.AddDate(0, 0, -30), "999", "9", 1)

	points, err := svc.Trend(context.Background(), PeriodWeek)
	require.NoError(t, err)
	require.Len(t, points, 7)

	assert.Equal(t, time.Date(2026, 6, 9, 0, 0, 0, 0, time.UTC), points[0].Start)
	assert.Equal(t, "100", points[6].Sales.String())
	assert.Equal(t, "40", points[4].Sales.String())
	total := decimal.Zero
	for _, p := range points {
		total = total.Add(p.Sales)
	}
	assert.Equal(t, "140", total.String())
}

func TestTrendDayAndMonthSizes(t *testing.T) {
	now := time.Date(2026, 6, 15, 18, 30, 0, 0, time.UTC)
	svc, _ := setupService(t, now)

	day, err := svc.Trend(context.Background(), PeriodDay)
	require.NoError(t, err)
	assert.Len(t, day, 24)
	assert.Equal(t, "18:00", day[23].Label)

	month, err := svc.Trend(context.Background(), PeriodMonth)
	require.NoError(t, err)
	assert.Len(t, month, 30)
	assert.Equal(t, "15", month[29].Label)

	_, err = svc.Trend(context.Background(), Period("year"))
	assert.ErrorIs(t, err, models.ErrValidation)
}

func TestTrendDayBucketsFollowLocalHours(t *testing.T) {
	kolkata, err := time.LoadLocation("Asia/Kolkata")
	require.NoError(t, err)

	now := time.Date(2026, 6, 15, 18, 45, 0, 0, kolkata)
	svc, store := setupService(t, now)
	svc.loc = kolkata
	seedSale(t, store, time.Date(2026, 6, 15, 18, 10, 0, 0, kolkata), "40", "10", 1)

	day, err := svc.Trend(context.Background(), PeriodDay)
	require.NoError(t, err)
	require.Len(t, day, 24)

	last := day[23]
	assert.Equal(t, "18:00", last.Label)
	assert.Equal(t, 0, last.Start.In(kolkata).Minute())
	assert.Equal(t, "40", last.Sales.String())
	assert.True(t, day[22].Sales.IsZero())
}

func TestSaveDailyReport(t *testing.T) {
	now := time.Date(2026, 6, 15, 23, 55, 0, 0, time.UTC)
	svc, store := setupService(t, now)
	seedSale(t, store, now.Add(-time.Hour), "500", "120", 3)
	seedExpense(t, store, now.Add(-2*time.Hour), "20")

	report, err := svc.SaveDailyReport(context.Background(), now)
	require.NoError(t, err)

	assert.Equal(t, time.Date(2026, 6, 15, 0, 0, 0, 0, time.UTC), report.Date)
	assert.Equal(t, "100", report.NetProfit.String())
	assert.Equal(t, 3, report.ItemsSold)
	require.Len(t, store.DailyReports(), 1)

	msg := svc.FormatDailyReport(report)
	assert.Contains(t, msg, "2026-06-15")
	assert.Contains(t, msg, "net profit PKR 100.00")
}

func TestFormatDailyReportEmptyDay(t *testing.T) {
	svc, _ := setupService(t, time.Now())
	msg := svc.FormatDailyReport(models.DailyReport{Date: time.Date(2026, 1, 2, 0, 0, 0, 0, time.UTC), Expenses: decimal.Zero})
	assert.Equal(t, "Daily report (2026-01-02): no sales or expenses recorded.", msg)
}
