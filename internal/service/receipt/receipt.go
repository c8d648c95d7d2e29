// Package receipt renders printable sale receipts.
package receipt

import (
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/go-pdf/fpdf"
	"github.com/shopspring/decimal"

	"github.com/mamadbah2/shopms/internal/domain/models"
)

// Shop holds the header and footer printed on every receipt.
type Shop struct {
	Name     string
	Address  string
	Phone    string
	Footer   string
	Currency string
	Location *time.Location
}

// Filename is the download name used for a sale's receipt.
func Filename(saleID string) string {
	return fmt.Sprintf("receipt-%s.pdf", saleID)
}

// Render writes an A4 receipt for sale to w.
func Render(w io.Writer, sale models.Sale, shop Shop) error {
	loc := shop.Location
	if loc == nil {
		loc = time.Local
	}

	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(14, 20, 14)
	pdf.SetTitle(Filename(sale.ID), true)
	pdf.AddPage()
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pageWidth, _ := pdf.GetPageSize()
	left, _, right, _ := pdf.GetMargins()
	width := pageWidth - left - right

	pdf.SetFont("Helvetica", "B", 16)
	pdf.CellFormat(width, 8, tr(shop.Name), "", 1, "C", false, 0, "")
	pdf.SetFont("Helvetica", "", 10)
	if shop.Address != "" {
		pdf.CellFormat(width, 5, tr(shop.Address), "", 1, "C", false, 0, "")
	}
	if shop.Phone != "" {
		pdf.CellFormat(width, 5, tr("Phone: "+shop.Phone), "", 1, "C", false, 0, "")
	}
	pdf.Ln(6)

	half := width / 2
	pdf.SetFont("Helvetica", "", 11)
	pdf.CellFormat(half, 6, tr("Receipt #"+sale.ID), "", 0, "L", false, 0, "")
	pdf.CellFormat(half, 6, sale.Date.In(loc).Format("02 Jan 2006 15:04"), "", 1, "R", false, 0, "")
	pdf.CellFormat(width, 6, tr("Buyer: "+sale.BuyerName), "", 1, "L", false, 0, "")
	pdf.Ln(4)

	cols := []struct {
		title string
		width float64
		align string
	}{
		{"Item", width * 0.46, "L"},
		{"Qty", width * 0.12, "C"},
		{"Price", width * 0.21, "R"},
		{"Total", width * 0.21, "R"},
	}

	pdf.SetFont("Helvetica", "B", 11)
	pdf.SetFillColor(238, 238, 238)
	for _, col := range cols {
		pdf.CellFormat(col.width, 7, col.title, "1", 0, col.align, true, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Helvetica", "", 10)
	for _, item := range sale.Items {
		name := item.ProductName
		if name == "" {
			name = "N/A"
		}
		amount := item.Amount
		if amount.IsZero() {
			amount = item.SalePrice.Mul(decimal.NewFromInt(int64(item.Quantity)))
		}
		cells := []string{
			tr(name),
			strconv.Itoa(item.Quantity),
			money(shop.Currency, item.SalePrice),
			money(shop.Currency, amount),
		}
		for i, col := range cols {
			pdf.CellFormat(col.width, 7, cells[i], "1", 0, col.align, false, 0, "")
		}
		pdf.Ln(-1)
	}

	pdf.SetFont("Helvetica", "B", 11)
	labelWidth := cols[0].width + cols[1].width + cols[2].width
	pdf.CellFormat(labelWidth, 8, "Grand Total", "1", 0, "R", false, 0, "")
	pdf.CellFormat(cols[3].width, 8, money(shop.Currency, sale.TotalAmount), "1", 1, "R", false, 0, "")

	pdf.Ln(12)
	pdf.SetFont("Helvetica", "I", 9)
	pdf.CellFormat(width, 5, "Thank you for your purchase!", "", 1, "C", false, 0, "")
	if shop.Footer != "" {
		pdf.CellFormat(width, 5, tr(shop.Footer), "", 1, "C", false, 0, "")
	}

	if err := pdf.Error(); err != nil {
		return fmt.Errorf("failed to build receipt: %w", err)
	}
	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("failed to write receipt: %w", err)
	}
	return nil
}

func money(currency string, amount decimal.Decimal) string {
	if currency == "" {
		return amount.StringFixed(2)
	}
	return currency + " " + amount.StringFixed(2)
}
