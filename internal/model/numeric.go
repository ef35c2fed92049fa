package model

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Stored scale of quantities and of money. The gorm column types use the same
// scales, so values are rounded to them before they are written.
const (
	QtyPlaces   int32 = 3
	MoneyPlaces int32 = 2
)

// RoundQty rounds a quantity to its stored scale.
func RoundQty(d decimal.Decimal) decimal.Decimal { return d.Round(QtyPlaces) }

// RoundMoney rounds a price or an amount to its stored scale.
func RoundMoney(d decimal.Decimal) decimal.Decimal { return d.Round(MoneyPlaces) }

// ParseDecimal parses numeric text such as typed form input or a sheet cell.
// Thousands separators are ignored; blank or invalid text is zero.
func ParseDecimal(s string) decimal.Decimal {
	d := ParseNullDecimal(s)
	if !d.Valid {
		return decimal.Zero
	}
	return d.Decimal
}

// ParseNullDecimal is ParseDecimal for nullable fields: blank or invalid text is null.
func ParseNullDecimal(s string) decimal.NullDecimal {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", "")
	if s == "" {
		return decimal.NullDecimal{}
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.NullDecimal{}
	}
	return decimal.NewNullDecimal(d)
}
