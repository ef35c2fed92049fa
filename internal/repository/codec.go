package repository

import (
	"strconv"
	"strings"
	"time"

	"tileledger/internal/model"

	"github.com/shopspring/decimal"
)

// TimeLayout is the on-sheet timestamp format: local time, second precision.
const TimeLayout = "2006-01-02T15:04:05"

// ── Cell parsing ──────────────────────────────────────────────────────────────
// Spreadsheet cells arrive as strings or float64 depending on how they were
// written. Everything is parsed here once; nothing past this file sees text.

func cellString(row []interface{}, i int) string {
	if i >= len(row) || row[i] == nil {
		return ""
	}
	switch v := row[i].(type) {
	case string:
		return strings.TrimSpace(v)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case int64:
		return strconv.FormatInt(v, 10)
	case int:
		return strconv.Itoa(v)
	case bool:
		return strconv.FormatBool(v)
	default:
		return ""
	}
}

func parseID(s string) int64 {
	return model.ParseDecimal(s).IntPart()
}

func parseOptionalID(s string) *int64 {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	d := model.ParseNullDecimal(s)
	if !d.Valid {
		return nil
	}
	id := d.Decimal.IntPart()
	return &id
}

// ParseTimestamp reads a stored timestamp as local time. A few legacy layouts
// are accepted; anything else yields the zero time.
func ParseTimestamp(s string) time.Time {
	s = strings.TrimSpace(s)
	for _, layout := range []string{TimeLayout, "2006-01-02 15:04:05", time.RFC3339, "2006-01-02"} {
		if t, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			return t
		}
	}
	return time.Time{}
}

// ── Cell encoding ─────────────────────────────────────────────────────────────

func numberCell(d decimal.Decimal) interface{} { return d.InexactFloat64() }

func nullNumberCell(d decimal.NullDecimal) interface{} {
	if !d.Valid {
		return ""
	}
	return d.Decimal.InexactFloat64()
}

func optionalIDCell(id *int64) interface{} {
	if id == nil {
		return ""
	}
	return *id
}

// ── Row codecs ────────────────────────────────────────────────────────────────

func productToRow(p model.Product) []interface{} {
	return []interface{}{p.ID, p.Name, p.Material, p.Size, p.Unit, numberCell(p.OpeningStock)}
}

func productFromRow(r []interface{}) model.Product {
	return model.Product{
		ID:           parseID(cellString(r, 0)),
		Name:         cellString(r, 1),
		Material:     cellString(r, 2),
		Size:         cellString(r, 3),
		Unit:         cellString(r, 4),
		OpeningStock: model.ParseDecimal(cellString(r, 5)),
	}
}

func customerToRow(c model.Customer) []interface{} {
	return []interface{}{c.ID, c.Name, c.Phone, c.Address}
}

func customerFromRow(r []interface{}) model.Customer {
	return model.Customer{
		ID:      parseID(cellString(r, 0)),
		Name:    cellString(r, 1),
		Phone:   cellString(r, 2),
		Address: cellString(r, 3),
	}
}

func supplierToRow(s model.Supplier) []interface{} {
	return []interface{}{s.ID, s.Name, s.Phone, s.Address}
}

func supplierFromRow(r []interface{}) model.Supplier {
	return model.Supplier{
		ID:      parseID(cellString(r, 0)),
		Name:    cellString(r, 1),
		Phone:   cellString(r, 2),
		Address: cellString(r, 3),
	}
}

func stockMoveToRow(m model.StockMove) []interface{} {
	return []interface{}{
		m.ID,
		m.TS.Format(TimeLayout),
		string(m.Kind),
		m.ProductID,
		numberCell(m.Qty),
		nullNumberCell(m.PricePerUnit),
		optionalIDCell(m.CustomerID),
		optionalIDCell(m.SupplierID),
		m.Notes,
	}
}

func stockMoveFromRow(r []interface{}) model.StockMove {
	return model.StockMove{
		ID:           parseID(cellString(r, 0)),
		TS:           ParseTimestamp(cellString(r, 1)),
		Kind:         model.MoveKind(strings.ToLower(cellString(r, 2))),
		ProductID:    parseID(cellString(r, 3)),
		Qty:          model.ParseDecimal(cellString(r, 4)),
		PricePerUnit: model.ParseNullDecimal(cellString(r, 5)),
		CustomerID:   parseOptionalID(cellString(r, 6)),
		SupplierID:   parseOptionalID(cellString(r, 7)),
		Notes:        cellString(r, 8),
	}
}

func paymentToRow(p model.Payment) []interface{} {
	return []interface{}{
		p.ID,
		p.TS.Format(TimeLayout),
		string(p.Kind),
		optionalIDCell(p.CustomerID),
		optionalIDCell(p.SupplierID),
		numberCell(p.Amount),
		p.Notes,
	}
}

func paymentFromRow(r []interface{}) model.Payment {
	return model.Payment{
		ID:         parseID(cellString(r, 0)),
		TS:         ParseTimestamp(cellString(r, 1)),
		Kind:       model.PaymentKind(strings.ToLower(cellString(r, 2))),
		CustomerID: parseOptionalID(cellString(r, 3)),
		SupplierID: parseOptionalID(cellString(r, 4)),
		Amount:     model.ParseDecimal(cellString(r, 5)),
		Notes:      cellString(r, 6),
	}
}

func userToRow(u model.User) []interface{} {
	return []interface{}{u.ID, u.Username, u.PasswordHash, u.Salt}
}

func userFromRow(r []interface{}) model.User {
	return model.User{
		ID:           parseID(cellString(r, 0)),
		Username:     cellString(r, 1),
		PasswordHash: cellString(r, 2),
		Salt:         cellString(r, 3),
	}
}
