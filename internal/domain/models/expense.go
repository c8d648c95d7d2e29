package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// ExpenseType enumerates the supported expense categories.
type ExpenseType string

const (
	ExpenseWorkerSalary    ExpenseType = "Worker Salary"
	ExpenseElectricityBill ExpenseType = "Electricity Bill"
	ExpenseRent            ExpenseType = "Rent"
	ExpenseOther           ExpenseType = "Other"
)

// Valid reports whether t is one of the known expense categories.
func (t ExpenseType) Valid() bool {
	switch t {
	case ExpenseWorkerSalary, ExpenseElectricityBill, ExpenseRent, ExpenseOther:
		return true
	}
	return false
}

// Expense is an operating cost deducted from profit on the dashboard.
type Expense struct {
	ID          string          `bson:"_id" json:"id"`
	Type        ExpenseType     `bson:"type" json:"type"`
	Description string          `bson:"description,omitempty" json:"description,omitempty"`
	Amount      decimal.Decimal `bson:"amount" json:"amount"`
	ExpenseDate time.Time       `bson:"expenseDate" json:"expenseDate"`
}

// DateRange bounds a query on both ends, inclusive.
type DateRange struct {
	From time.Time
	To   time.Time
}

// Contains reports whether t falls inside the range, endpoints included.
func (r DateRange) Contains(t time.Time) bool {
	return !t.Before(r.From) && !t.After(r.To)
}
