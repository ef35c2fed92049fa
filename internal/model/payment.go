package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// PaymentKind classifies money rows that affect a party balance.
type PaymentKind string

const (
	PaymentPayment    PaymentKind = "payment"     // settles a balance
	PaymentOpeningDue PaymentKind = "opening_due" // balance carried in from before the ledger
	PaymentAdvance    PaymentKind = "advance"     // paid ahead of goods
)

func (k PaymentKind) Valid() bool {
	switch k {
	case PaymentPayment, PaymentOpeningDue, PaymentAdvance:
		return true
	}
	return false
}

// Payment is an append-only money row tied to exactly one customer or supplier.
type Payment struct {
	ID         int64           `gorm:"primaryKey;autoIncrement" json:"id"`
	TS         time.Time       `gorm:"column:ts;not null;index" json:"ts"`
	Kind       PaymentKind     `gorm:"type:varchar(16);not null" json:"kind"`
	CustomerID *int64          `gorm:"index" json:"customer_id"`
	SupplierID *int64          `gorm:"index" json:"supplier_id"`
	Amount     decimal.Decimal `gorm:"type:decimal(14,2);not null" json:"amount"`
	Notes      string          `gorm:"not null;default:''" json:"notes"`
}

func (Payment) TableName() string { return "payments" }
