package reporting

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/mamadbah2/shopms/internal/domain/models"
	"github.com/mamadbah2/shopms/internal/repository"
)

const recentSalesLimit = 5

// Period selects the granularity of a trend series.
type Period string

const (
	PeriodDay   Period = "day"
	PeriodWeek  Period = "week"
	PeriodMonth Period = "month"
)

// Dashboard is the landing page payload.
type Dashboard struct {
	Today       Summary       `json:"today"`
	Week        Summary       `json:"week"`
	Month       Summary       `json:"month"`
	RecentSales []models.Sale `json:"recentSales"`
}

// TrendPoint is one bucket of a sales/profit chart.
type TrendPoint struct {
	Label  string          `json:"label"`
	Start  time.Time       `json:"start"`
	Sales  decimal.Decimal `json:"sales"`
	Profit decimal.Decimal `json:"profit"`
}

// Service exposes lightweight analytics over sales and expenses.
type Service struct {
	sales    repository.SaleStore
	expenses repository.ExpenseStore
	reports  repository.ReportStore
	loc      *time.Location
	currency string
	logger   *zap.Logger
	now      func() time.Time
}

// NewService wires a new reporting service instance.
func NewService(sales repository.SaleStore, expenses repository.ExpenseStore, reports repository.ReportStore, loc *time.Location, currency string, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	if loc == nil {
		loc = time.Local
	}
	return &Service{
		sales:    sales,
		expenses: expenses,
		reports:  reports,
		loc:      loc,
		currency: currency,
		logger:   logger,
		now:      time.Now,
	}
}

// Location returns the timezone used for day boundaries.
func (s *Service) Location() *time.Location { return s.loc }

// Summary aggregates sales and expenses inside w.
func (s *Service) Summary(ctx context.Context, w Window) (Summary, error) {
	sales, err := s.sales.List(ctx, w.Range())
	if err != nil {
		return Summary{}, fmt.Errorf("load sales: %w", err)
	}
	expenses, err := s.expenses.List(ctx, w.Range())
	if err != nil {
		return Summary{}, fmt.Errorf("load expenses: %w", err)
	}
	return Summarize(sales, expenses, w), nil
}

// Dashboard returns today, last-7-days and last-month summaries plus the newest sales.
func (s *Service) Dashboard(ctx context.Context) (Dashboard, error) {
	now := s.now().In(s.loc)
	today := StartOfDay(now, s.loc)

	todayWindow := DayWindow(now, s.loc)
	weekWindow := NewWindow(today.AddDate(0, 0, -7), now, s.loc)
	monthWindow := NewWindow(today.AddDate(0, -1, 0), now, s.loc)

	sales, err := s.sales.List(ctx, nil)
	if err != nil {
		return Dashboard{}, fmt.Errorf("load sales: %w", err)
	}
	expenses, err := s.expenses.List(ctx, monthWindow.Range())
	if err != nil {
		return Dashboard{}, fmt.Errorf("load expenses: %w", err)
	}

	recent := sales
	if len(recent) > recentSalesLimit {
		recent = recent[:recentSalesLimit]
	}

	return Dashboard{
		Today:       Summarize(sales, expenses, todayWindow),
		Week:        Summarize(sales, expenses, weekWindow),
		Month:       Summarize(sales, expenses, monthWindow),
		RecentSales: recent,
	}, nil
}

// Trend buckets sales and gross profit by hour (day) or by calendar day (week, month).
func (s *Service) Trend(ctx context.Context, period Period) ([]TrendPoint, error) {
	now := s.now().In(s.loc)

	var points []TrendPoint
	var step func(time.Time) time.Time
	switch period {
	case PeriodDay:
		first := time.Date(now.Year(), now.Month(), now.Day(), now.Hour(), 0, 0, 0, s.loc).Add(-23 * time.Hour)
		for i := 0; i < 24; i++ {
			start := first.Add(time.Duration(i) * time.Hour)
			points = append(points, TrendPoint{Label: fmt.Sprintf("%d:00", start.Hour()), Start: start})
		}
		step = func(t time.Time) time.Time { return t.Add(time.Hour) }
	case PeriodWeek, PeriodMonth:
		count := 7
		if period == PeriodMonth {
			count = 30
		}
		first := StartOfDay(now, s.loc).AddDate(0, 0, -(count - 1))
		for i := 0; i < count; i++ {
			start := first.AddDate(0, 0, i)
			label := start.Format("Mon")
			if period == PeriodMonth {
				label = fmt.Sprintf("%d", start.Day())
			}
			points = append(points, TrendPoint{Label: label, Start: start})
		}
		step = func(t time.Time) time.Time { return t.AddDate(0, 0, 1) }
	default:
		return nil, models.NewValidationError("period", fmt.Sprintf("unsupported period %q", period))
	}

	for i := range points {
		points[i].Sales = decimal.Zero
		points[i].Profit = decimal.Zero
	}

	window := Window{Start: points[0].Start, End: step(points[len(points)-1].Start).Add(-time.Nanosecond)}
	sales, err := s.sales.List(ctx, window.Range())
	if err != nil {
		return nil, fmt.Errorf("load sales: %w", err)
	}

	for _, sale := range sales {
		for i := len(points) - 1; i >= 0; i-- {
			if sale.Date.Before(points[i].Start) {
				continue
			}
			points[i].Sales = points[i].Sales.Add(sale.TotalAmount)
			points[i].Profit = points[i].Profit.Add(sale.TotalProfit)
			break
		}
	}
	return points, nil
}

// BuildDailyReport aggregates the calendar day containing day.
func (s *Service) BuildDailyReport(ctx context.Context, day time.Time) (models.DailyReport, error) {
	w := DayWindow(day, s.loc)
	summary, err := s.Summary(ctx, w)
	if err != nil {
		return models.DailyReport{}, err
	}
	return models.DailyReport{
		Date:        w.Start,
		TotalSales:  summary.TotalSales,
		GrossProfit: summary.GrossProfit,
		Expenses:    summary.Expenses,
		NetProfit:   summary.TotalProfit,
		ItemsSold:   summary.TotalItems,
		SalesCount:  summary.SalesCount,
		CreatedAt:   s.now(),
	}, nil
}

// SaveDailyReport builds and persists the report for day.
func (s *Service) SaveDailyReport(ctx context.Context, day time.Time) (models.DailyReport, error) {
	report, err := s.BuildDailyReport(ctx, day)
	if err != nil {
		return models.DailyReport{}, err
	}
	if err := s.reports.SaveDailyReport(ctx, report); err != nil {
		return models.DailyReport{}, fmt.Errorf("save daily report: %w", err)
	}
	s.logger.Info("daily report saved",
		zap.String("date", report.Date.Format(dateLayout)),
		zap.Int("sales", report.SalesCount),
		zap.String("net_profit", report.NetProfit.String()))
	return report, nil
}

// FormatDailyReport renders report as a short text message.
func (s *Service) FormatDailyReport(report models.DailyReport) string {
	if report.SalesCount == 0 && report.Expenses.IsZero() {
		return fmt.Sprintf("Daily report (%s): no sales or expenses recorded.", report.Date.Format(dateLayout))
	}
	return fmt.Sprintf("Daily report (%s): %d sales, %d items, sales %s %s, gross profit %s %s, expenses %s %s, net profit %s %s.",
		report.Date.Format(dateLayout),
		report.SalesCount, report.ItemsSold,
		s.currency, report.TotalSales.StringFixed(2),
		s.currency, report.GrossProfit.StringFixed(2),
		s.currency, report.Expenses.StringFixed(2),
		s.currency, report.NetProfit.StringFixed(2))
}
