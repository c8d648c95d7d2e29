package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// SaleItem is one product line of a sale. CostPrice is the product price captured
// when the line was recorded and never changes afterwards.
type SaleItem struct {
	ProductID   string          `bson:"productId" json:"productId"`
	ProductName string          `bson:"productName" json:"productName"`
	Quantity    int             `bson:"quantity" json:"quantity"`
	SalePrice   decimal.Decimal `bson:"salePrice" json:"salePrice"`
	CostPrice   decimal.Decimal `bson:"costPrice" json:"costPrice"`
	Amount      decimal.Decimal `bson:"amount" json:"amount"`
	Profit      decimal.Decimal `bson:"profit" json:"profit"`
}

// Sale is a single buyer transaction.
type Sale struct {
	ID          string          `bson:"_id" json:"id"`
	BuyerName   string          `bson:"buyerName" json:"buyerName"`
	Items       []SaleItem      `bson:"items" json:"items"`
	TotalAmount decimal.Decimal `bson:"totalAmount" json:"totalAmount"`
	TotalProfit decimal.Decimal `bson:"totalProfit" json:"totalProfit"`
	Date        time.Time       `bson:"date" json:"date"`
}

// ItemCount returns the number of units sold across all lines.
func (s Sale) ItemCount() int {
	n := 0
	for _, item := range s.Items {
		n += item.Quantity
	}
	return n
}

// SaleItemInput is a requested line before it is priced against the product store.
type SaleItemInput struct {
	ProductID string
	Quantity  int
	SalePrice decimal.Decimal
}

// NewSaleItem prices a line against the product as it is right now.
func NewSaleItem(product Product, quantity int, salePrice decimal.Decimal) SaleItem {
	qty := decimal.NewFromInt(int64(quantity))
	return SaleItem{
		ProductID:   product.ID,
		ProductName: product.Name,
		Quantity:    quantity,
		SalePrice:   salePrice,
		CostPrice:   product.Price,
		Amount:      qty.Mul(salePrice),
		Profit:      qty.Mul(salePrice.Sub(product.Price)),
	}
}
