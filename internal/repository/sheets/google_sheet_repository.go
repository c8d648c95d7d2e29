package sheets

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"google.golang.org/api/option"
	sheetsapi "google.golang.org/api/sheets/v4"

	"github.com/mamadbah2/shopms/internal/config"
	"github.com/mamadbah2/shopms/internal/domain/models"
)

const dateLayout = "2006-01-02"

// Appender is the slice of the Sheets API the exporter needs.
type Appender interface {
	WriteRow(ctx context.Context, sheetRange string, values []interface{}) error
}

// GoogleSheetRepository appends rows through the official Google Sheets API.
type GoogleSheetRepository struct {
	service       *sheetsapi.Service
	spreadsheetID string
	logger        *zap.Logger
}

// NewGoogleSheetRepository builds a Google Sheets backed repository instance.
func NewGoogleSheetRepository(ctx context.Context, cfg config.SheetsConfig, logger *zap.Logger) (*GoogleSheetRepository, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	service, err := sheetsapi.NewService(ctx, option.WithCredentialsFile(cfg.CredentialsPath), option.WithScopes(sheetsapi.SpreadsheetsScope))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize sheets client: %w", err)
	}

	return &GoogleSheetRepository{
		service:       service,
		spreadsheetID: cfg.SpreadsheetID,
		logger:        logger,
	}, nil
}

// WriteRow appends the provided values to the supplied sheet range.
func (r *GoogleSheetRepository) WriteRow(ctx context.Context, sheetRange string, values []interface{}) error {
	if sheetRange == "" {
		return fmt.Errorf("sheetRange must not be empty")
	}

	payload := &sheetsapi.ValueRange{Values: [][]interface{}{values}}

	call := r.service.Spreadsheets.Values.Append(r.spreadsheetID, sheetRange, payload).
		ValueInputOption("USER_ENTERED").
		InsertDataOption("INSERT_ROWS").
		Context(ctx)

	if _, err := call.Do(); err != nil {
		return fmt.Errorf("append row into range %s: %w", sheetRange, err)
	}

	r.logger.Debug("row appended to sheet", zap.String("range", sheetRange))
	return nil
}

// ReportExporter writes one row per daily report.
type ReportExporter struct {
	sheet      Appender
	sheetRange string
}

// NewReportExporter exports reports into sheetRange of sheet.
func NewReportExporter(sheet Appender, sheetRange string) *ReportExporter {
	return &ReportExporter{sheet: sheet, sheetRange: sheetRange}
}

// ExportDailyReport appends report as
// date, sales count, items sold, total sales, gross profit, expenses, net profit, created at.
func (e *ReportExporter) ExportDailyReport(ctx context.Context, report models.DailyReport) error {
	return e.sheet.WriteRow(ctx, e.sheetRange, ReportRow(report))
}

// ReportRow flattens report into sheet cells.
func ReportRow(report models.DailyReport) []interface{} {
	return []interface{}{
		report.Date.Format(dateLayout),
		report.SalesCount,
		report.ItemsSold,
		report.TotalSales.StringFixed(2),
		report.GrossProfit.StringFixed(2),
		report.Expenses.StringFixed(2),
		report.NetProfit.StringFixed(2),
		report.CreatedAt.Format("2006-01-02 15:04:05"),
	}
}
