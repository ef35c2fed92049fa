package repository

import "fmt"

// Table names one of the fixed ledger tables.
type Table string

const (
	TableProducts   Table = "Products"
	TableCustomers  Table = "Customers"
	TableSuppliers  Table = "Suppliers"
	TableStockMoves Table = "StockMoves"
	TablePayments   Table = "Payments"
	TableUsers      Table = "Users"
)

// Tables lists every table in schema order.
var Tables = []Table{TableProducts, TableCustomers, TableSuppliers, TableStockMoves, TablePayments, TableUsers}

var columns = map[Table][]string{
	TableProducts:   {"id", "name", "material", "size", "unit", "opening_stock"},
	TableCustomers:  {"id", "name", "phone", "address"},
	TableSuppliers:  {"id", "name", "phone", "address"},
	TableStockMoves: {"id", "ts", "kind", "product_id", "qty", "price_per_unit", "customer_id", "supplier_id", "notes"},
	TablePayments:   {"id", "ts", "kind", "customer_id", "supplier_id", "amount", "notes"},
	TableUsers:      {"id", "username", "password_hash", "salt"},
}

// Columns returns the fixed column list of t.
func Columns(t Table) ([]string, error) {
	cols, ok := columns[t]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownTable, t)
	}
	out := make([]string, len(cols))
	copy(out, cols)
	return out, nil
}

// checkHeader compares an existing header row against the schema of t.
// An empty header is reported as (false, nil) so the caller can write it.
func checkHeader(t Table, header []string) (bool, error) {
	want, err := Columns(t)
	if err != nil {
		return false, err
	}
	if len(header) == 0 {
		return false, nil
	}
	if len(header) != len(want) {
		return false, fmt.Errorf("%w: %s has %v, want %v", ErrSchemaMismatch, t, header, want)
	}
	for i := range want {
		if header[i] != want[i] {
			return false, fmt.Errorf("%w: %s has %v, want %v", ErrSchemaMismatch, t, header, want)
		}
	}
	return true, nil
}
