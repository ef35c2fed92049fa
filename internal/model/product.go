package model

import (
	"github.com/shopspring/decimal"
)

// Product is a catalog item identified for find-or-create purposes by
// (name, size, unit). Current stock is never stored: it is folded from
// OpeningStock and the StockMove history at read time.
type Product struct {
	ID           int64           `gorm:"primaryKey;autoIncrement" json:"id"`
	Name         string          `gorm:"not null;index" json:"name"`
	Material     string          `gorm:"not null;default:''" json:"material"`
	Size         string          `gorm:"not null;default:''" json:"size"`
	Unit         string          `gorm:"not null;default:''" json:"unit"`
	OpeningStock decimal.Decimal `gorm:"type:decimal(14,3);not null;default:0" json:"opening_stock"`
}

func (Product) TableName() string { return "products" }
