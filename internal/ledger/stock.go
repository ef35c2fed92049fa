// Package ledger holds the pure read-time folds over the append-only move and
// payment rows: stock levels, party balances, the duplicate-submission guard,
// day windows and the daily report. Nothing here touches a store.
package ledger

import (
	"cmp"
	"slices"

	"tileledger/internal/model"

	"github.com/shopspring/decimal"
)

// StockLevel is a product with its folded stock. Negative stock is reported,
// never clamped.
type StockLevel struct {
	Product  model.Product   `json:"product"`
	Stock    decimal.Decimal `json:"stock"`
	Negative bool            `json:"negative"`
}

// StockOf returns opening_stock + Σ qty over the moves of p.
func StockOf(p model.Product, moves []model.StockMove) StockLevel {
	stock := p.OpeningStock
	for _, m := range moves {
		if m.ProductID == p.ID {
			stock = stock.Add(m.Qty)
		}
	}
	return StockLevel{Product: p, Stock: stock, Negative: stock.IsNegative()}
}

// StockLevels folds every product in one pass over moves and returns them
// sorted by (size, name), products without a size last.
func StockLevels(products []model.Product, moves []model.StockMove) []StockLevel {
	sums := make(map[int64]decimal.Decimal, len(products))
	for _, m := range moves {
		sums[m.ProductID] = sums[m.ProductID].Add(m.Qty)
	}
	out := make([]StockLevel, 0, len(products))
	for _, p := range products {
		stock := p.OpeningStock.Add(sums[p.ID])
		out = append(out, StockLevel{Product: p, Stock: stock, Negative: stock.IsNegative()})
	}
	SortBySizeName(out, func(l StockLevel) model.Product { return l.Product })
	return out
}

// LowStock keeps the levels strictly below threshold, preserving order.
func LowStock(levels []StockLevel, threshold decimal.Decimal) []StockLevel {
	out := make([]StockLevel, 0)
	for _, l := range levels {
		if l.Stock.LessThan(threshold) {
			out = append(out, l)
		}
	}
	return out
}

// SortBySizeName stable-sorts rows by their product's (size, name); an empty
// size or name sorts after every non-empty one.
func SortBySizeName[T any](rows []T, product func(T) model.Product) {
	slices.SortStableFunc(rows, func(a, b T) int {
		pa, pb := product(a), product(b)
		if c := compareBlankLast(pa.Size, pb.Size); c != 0 {
			return c
		}
		return compareBlankLast(pa.Name, pb.Name)
	})
}

func compareBlankLast(a, b string) int {
	switch {
	case a == b:
		return 0
	case a == "":
		return 1
	case b == "":
		return -1
	}
	return cmp.Compare(a, b)
}
