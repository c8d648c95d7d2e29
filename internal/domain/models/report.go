package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// DailyReport is the end-of-day snapshot persisted by the scheduler.
type DailyReport struct {
	Date        time.Time       `bson:"date" json:"date"`
	TotalSales  decimal.Decimal `bson:"total_sales" json:"total_sales"`
	GrossProfit decimal.Decimal `bson:"gross_profit" json:"gross_profit"`
	Expenses    decimal.Decimal `bson:"expenses" json:"expenses"`
	NetProfit   decimal.Decimal `bson:"net_profit" json:"net_profit"`
	ItemsSold   int             `bson:"items_sold" json:"items_sold"`
	SalesCount  int             `bson:"sales_count" json:"sales_count"`
	CreatedAt   time.Time       `bson:"created_at" json:"created_at"`
}
