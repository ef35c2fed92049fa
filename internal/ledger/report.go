package ledger

import (
	"cmp"
	"slices"
	"time"

	"tileledger/internal/model"

	"github.com/shopspring/decimal"
)

// NotAvailable labels rows whose bill or party is missing.
const NotAvailable = "N/A"

// Catalog is the lookup side of a report: the rows moves and payments refer to.
type Catalog struct {
	Products  []model.Product
	Customers []model.Customer
	Suppliers []model.Supplier
}

type names struct {
	products  map[int64]model.Product
	customers map[int64]string
	suppliers map[int64]string
}

func (c Catalog) index() names {
	n := names{
		products:  make(map[int64]model.Product, len(c.Products)),
		customers: make(map[int64]string, len(c.Customers)),
		suppliers: make(map[int64]string, len(c.Suppliers)),
	}
	for _, p := range c.Products {
		n.products[p.ID] = p
	}
	for _, cu := range c.Customers {
		n.customers[cu.ID] = cu.Name
	}
	for _, s := range c.Suppliers {
		n.suppliers[s.ID] = s.Name
	}
	return n
}

func lookup(m map[int64]string, id *int64) string {
	if id == nil {
		return ""
	}
	return m[*id]
}

// MoveLine is a stock move left-joined with its product and party names.
type MoveLine struct {
	model.StockMove
	ProductName string          `json:"product_name"`
	Material    string          `json:"material"`
	Size        string          `json:"size"`
	Unit        string          `json:"unit"`
	PartyName   string          `json:"party_name"`
	Value       decimal.Decimal `json:"value"`
}

// PaymentLine is a payment left-joined with its party name.
type PaymentLine struct {
	model.Payment
	PartyType string `json:"party_type"` // customer | supplier
	PartyName string `json:"party_name"`
}

// JoinMoves attaches names and line values to moves, sorted by timestamp.
func JoinMoves(cat Catalog, moves []model.StockMove) []MoveLine {
	n := cat.index()
	out := make([]MoveLine, 0, len(moves))
	for _, m := range moves {
		p := n.products[m.ProductID]
		line := MoveLine{
			StockMove:   m,
			ProductName: p.Name,
			Material:    p.Material,
			Size:        p.Size,
			Unit:        p.Unit,
			Value:       m.Amount(),
		}
		if m.Kind == model.MoveSale {
			line.PartyName = lookup(n.customers, m.CustomerID)
		} else {
			line.PartyName = lookup(n.suppliers, m.SupplierID)
		}
		out = append(out, line)
	}
	slices.SortStableFunc(out, func(a, b MoveLine) int { return a.TS.Compare(b.TS) })
	return out
}

// JoinPayments attaches party names to payments, sorted by timestamp.
func JoinPayments(cat Catalog, payments []model.Payment) []PaymentLine {
	n := cat.index()
	out := make([]PaymentLine, 0, len(payments))
	for _, p := range payments {
		line := PaymentLine{Payment: p}
		switch {
		case p.CustomerID != nil:
			line.PartyType = "customer"
			line.PartyName = lookup(n.customers, p.CustomerID)
		case p.SupplierID != nil:
			line.PartyType = "supplier"
			line.PartyName = lookup(n.suppliers, p.SupplierID)
		}
		out = append(out, line)
	}
	slices.SortStableFunc(out, func(a, b PaymentLine) int { return a.TS.Compare(b.TS) })
	return out
}

// ByProduct orders move lines the way the stock view reads them:
// (size, name, ts).
func ByProduct(lines []MoveLine) []MoveLine {
	out := slices.Clone(lines)
	slices.SortStableFunc(out, func(a, b MoveLine) int { return a.TS.Compare(b.TS) })
	SortBySizeName(out, func(l MoveLine) model.Product {
		return model.Product{Name: l.ProductName, Size: l.Size}
	})
	return out
}

// BillTotal sums the lines of one bill, keyed by (kind, notes).
type BillTotal struct {
	Kind  model.MoveKind  `json:"kind"`
	Bill  string          `json:"bill"`
	Lines int             `json:"lines"`
	Qty   decimal.Decimal `json:"qty"`
	Value decimal.Decimal `json:"value"`
}

// PartyTotal sums the goods value per party: sales by customer, purchases by supplier.
type PartyTotal struct {
	Kind  model.MoveKind  `json:"kind"`
	Party string          `json:"party"`
	Value decimal.Decimal `json:"value"`
}

// Totals are the day's headline figures.
type Totals struct {
	Purchases        decimal.Decimal `json:"purchases"`
	Sales            decimal.Decimal `json:"sales"`
	ReceivedFromCust decimal.Decimal `json:"received_from_customers"`
	PaidToSuppliers  decimal.Decimal `json:"paid_to_suppliers"`
}

// DailyReport is everything shown for one calendar day.
type DailyReport struct {
	Date     string        `json:"date"`
	Moves    []MoveLine    `json:"moves"`
	Payments []PaymentLine `json:"payments"`
	Bills    []BillTotal   `json:"bills"`
	Parties  []PartyTotal  `json:"parties"`
	Totals   Totals        `json:"totals"`
	Closing  []StockLevel  `json:"closing_stock"`
}

// BuildDailyReport rolls up the moves and payments of day. allMoves is the
// full move history; the closing snapshot folds every move before the end of day.
func BuildDailyReport(day time.Time, cat Catalog, allMoves []model.StockMove, allPayments []model.Payment) DailyReport {
	start, end := DayBounds(day)
	lines := JoinMoves(cat, MovesOn(day, allMoves))
	pays := JoinPayments(cat, PaymentsOn(day, allPayments))

	r := DailyReport{
		Date:     start.Format(DateLayout),
		Moves:    lines,
		Payments: pays,
		Bills:    billTotals(lines),
		Parties:  partyTotals(lines),
	}

	for _, l := range lines {
		if l.Kind == model.MoveSale {
			r.Totals.Sales = r.Totals.Sales.Add(l.Value)
		} else {
			r.Totals.Purchases = r.Totals.Purchases.Add(l.Value)
		}
	}
	for _, p := range pays {
		if p.Kind == model.PaymentOpeningDue {
			continue
		}
		if p.CustomerID != nil {
			r.Totals.ReceivedFromCust = r.Totals.ReceivedFromCust.Add(p.Amount)
		} else if p.SupplierID != nil {
			r.Totals.PaidToSuppliers = r.Totals.PaidToSuppliers.Add(p.Amount)
		}
	}

	upToEnd := make([]model.StockMove, 0, len(allMoves))
	for _, m := range allMoves {
		if m.TS.Before(end) {
			upToEnd = append(upToEnd, m)
		}
	}
	r.Closing = StockLevels(cat.Products, upToEnd)
	return r
}

func billTotals(lines []MoveLine) []BillTotal {
	type key struct {
		kind model.MoveKind
		bill string
	}
	idx := make(map[key]int)
	out := make([]BillTotal, 0)
	for _, l := range lines {
		bill := l.Notes
		if bill == "" {
			bill = NotAvailable
		}
		k := key{l.Kind, bill}
		i, ok := idx[k]
		if !ok {
			i = len(out)
			idx[k] = i
			out = append(out, BillTotal{Kind: l.Kind, Bill: bill})
		}
		out[i].Lines++
		out[i].Qty = out[i].Qty.Add(l.Qty.Abs())
		out[i].Value = out[i].Value.Add(l.Value)
	}
	slices.SortStableFunc(out, func(a, b BillTotal) int {
		if c := cmp.Compare(a.Kind, b.Kind); c != 0 {
			return c
		}
		return compareBlankLast(a.Bill, b.Bill)
	})
	return out
}

func partyTotals(lines []MoveLine) []PartyTotal {
	type key struct {
		kind  model.MoveKind
		party string
	}
	idx := make(map[key]int)
	out := make([]PartyTotal, 0)
	for _, l := range lines {
		party := l.PartyName
		if party == "" {
			party = NotAvailable
		}
		k := key{l.Kind, party}
		i, ok := idx[k]
		if !ok {
			i = len(out)
			idx[k] = i
			out = append(out, PartyTotal{Kind: l.Kind, Party: party})
		}
		out[i].Value = out[i].Value.Add(l.Value)
	}
	slices.SortStableFunc(out, func(a, b PartyTotal) int {
		if c := cmp.Compare(a.Kind, b.Kind); c != 0 {
			return c
		}
		return cmp.Compare(a.Party, b.Party)
	})
	return out
}
