package models

import "github.com/shopspring/decimal"

// Product is an inventory entry. Price is the unit cost used for profit accounting.
type Product struct {
	ID       string          `bson:"_id" json:"id"`
	Name     string          `bson:"name" json:"name"`
	Category string          `bson:"category,omitempty" json:"category,omitempty"`
	Stock    int             `bson:"stock" json:"stock"`
	Price    decimal.Decimal `bson:"price" json:"price"`
}

// Validate checks the product fields that every write must satisfy.
func (p Product) Validate() error {
	switch {
	case p.Name == "":
		return NewValidationError("name", "product name is required")
	case p.Stock < 0:
		return NewValidationError("stock", "stock cannot be negative")
	case p.Price.IsNegative():
		return NewValidationError("price", "price cannot be negative")
	}
	return nil
}
