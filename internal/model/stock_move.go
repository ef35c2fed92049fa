package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// MoveKind is the direction of a stock move.
type MoveKind string

const (
	MovePurchase MoveKind = "purchase"
	MoveSale     MoveKind = "sale"
)

func (k MoveKind) Valid() bool { return k == MovePurchase || k == MoveSale }

// StockMove is one append-only ledger row. Qty is signed:
// positive = stock in (purchase), negative = stock out (sale).
// Sales carry CustomerID, purchases carry SupplierID.
type StockMove struct {
	ID           int64               `gorm:"primaryKey;autoIncrement" json:"id"`
	TS           time.Time           `gorm:"column:ts;not null;index" json:"ts"`
	Kind         MoveKind            `gorm:"type:varchar(16);not null" json:"kind"`
	ProductID    int64               `gorm:"not null;index" json:"product_id"`
	Qty          decimal.Decimal     `gorm:"type:decimal(14,3);not null" json:"qty"`
	PricePerUnit decimal.NullDecimal `gorm:"type:decimal(14,2)" json:"price_per_unit"`
	CustomerID   *int64              `gorm:"index" json:"customer_id"`
	SupplierID   *int64              `gorm:"index" json:"supplier_id"`
	Notes        string              `gorm:"not null;default:''" json:"notes"`
}

func (StockMove) TableName() string { return "stock_moves" }

// PartyID returns the party the move is tied to: the customer of a sale or
// the supplier of a purchase.
func (m StockMove) PartyID() *int64 {
	if m.Kind == MoveSale {
		return m.CustomerID
	}
	return m.SupplierID
}

// Amount is |qty| × price; a missing price counts as zero.
func (m StockMove) Amount() decimal.Decimal {
	if !m.PricePerUnit.Valid {
		return decimal.Zero
	}
	return m.Qty.Abs().Mul(m.PricePerUnit.Decimal)
}
