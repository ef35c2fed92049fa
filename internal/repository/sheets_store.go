package repository

import (
	"context"
	"fmt"

	"tileledger/internal/model"

	"google.golang.org/api/sheets/v4"
)

// sheetsStore keeps each table in a tab of one Google spreadsheet. Row 1 of
// every tab is the header; data starts at row 2. IDs are max(id)+1.
type sheetsStore struct {
	svc           *sheets.Service
	spreadsheetID string
}

func NewSheetsStore(svc *sheets.Service, spreadsheetID string) Store {
	return &sheetsStore{svc: svc, spreadsheetID: spreadsheetID}
}

// EnsureSchema creates missing tabs with their header and verifies the header
// of existing ones. A mismatching header is an error, never overwritten.
func (s *sheetsStore) EnsureSchema(ctx context.Context) error {
	doc, err := s.svc.Spreadsheets.Get(s.spreadsheetID).
		Fields("sheets.properties.title").Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("get spreadsheet: %w", err)
	}
	existing := make(map[string]bool, len(doc.Sheets))
	for _, sh := range doc.Sheets {
		if sh.Properties != nil {
			existing[sh.Properties.Title] = true
		}
	}

	for _, t := range Tables {
		if !existing[string(t)] {
			_, err := s.svc.Spreadsheets.BatchUpdate(s.spreadsheetID, &sheets.BatchUpdateSpreadsheetRequest{
				Requests: []*sheets.Request{{
					AddSheet: &sheets.AddSheetRequest{Properties: &sheets.SheetProperties{Title: string(t)}},
				}},
			}).Context(ctx).Do()
			if err != nil {
				return fmt.Errorf("add tab %s: %w", t, err)
			}
			if err := s.writeHeader(ctx, t); err != nil {
				return err
			}
			continue
		}

		resp, err := s.svc.Spreadsheets.Values.Get(s.spreadsheetID, string(t)+"!1:1").Context(ctx).Do()
		if err != nil {
			return fmt.Errorf("read header %s: %w", t, err)
		}
		var header []string
		if len(resp.Values) > 0 {
			for i := range resp.Values[0] {
				header = append(header, cellString(resp.Values[0], i))
			}
		}
		ok, err := checkHeader(t, header)
		if err != nil {
			return err
		}
		if !ok {
			if err := s.writeHeader(ctx, t); err != nil {
				return err
			}
		}
	}
	return nil
}

func (s *sheetsStore) writeHeader(ctx context.Context, t Table) error {
	cols, err := Columns(t)
	if err != nil {
		return err
	}
	row := make([]interface{}, len(cols))
	for i, c := range cols {
		row[i] = c
	}
	_, err = s.svc.Spreadsheets.Values.Update(s.spreadsheetID, string(t)+"!A1", &sheets.ValueRange{
		Values: [][]interface{}{row},
	}).ValueInputOption("RAW").Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("write header %s: %w", t, err)
	}
	return nil
}

// rows returns the non-empty data rows of t.
func (s *sheetsStore) rows(ctx context.Context, t Table) ([][]interface{}, error) {
	resp, err := s.svc.Spreadsheets.Values.Get(s.spreadsheetID, string(t)+"!A2:Z").
		ValueRenderOption("UNFORMATTED_VALUE").
		DateTimeRenderOption("FORMATTED_STRING").
		Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", t, err)
	}
	out := make([][]interface{}, 0, len(resp.Values))
	for _, r := range resp.Values {
		if cellString(r, 0) == "" {
			continue
		}
		out = append(out, r)
	}
	return out, nil
}

// nextRowID scans the id column of t and returns max(id)+1.
func (s *sheetsStore) nextRowID(ctx context.Context, t Table) (int64, error) {
	rows, err := s.rows(ctx, t)
	if err != nil {
		return 0, err
	}
	return nextID(rows, func(r []interface{}) int64 { return parseID(cellString(r, 0)) }), nil
}

func (s *sheetsStore) appendRow(ctx context.Context, t Table, row []interface{}) error {
	_, err := s.svc.Spreadsheets.Values.Append(s.spreadsheetID, string(t)+"!A1", &sheets.ValueRange{
		Values: [][]interface{}{row},
	}).ValueInputOption("RAW").InsertDataOption("INSERT_ROWS").Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("append %s: %w", t, err)
	}
	return nil
}

func decodeRows[T any](ctx context.Context, s *sheetsStore, t Table, decode func([]interface{}) T) ([]T, error) {
	rows, err := s.rows(ctx, t)
	if err != nil {
		return nil, err
	}
	out := make([]T, 0, len(rows))
	for _, r := range rows {
		out = append(out, decode(r))
	}
	return out, nil
}

func (s *sheetsStore) Products(ctx context.Context) ([]model.Product, error) {
	return decodeRows(ctx, s, TableProducts, productFromRow)
}

func (s *sheetsStore) Customers(ctx context.Context) ([]model.Customer, error) {
	return decodeRows(ctx, s, TableCustomers, customerFromRow)
}

func (s *sheetsStore) Suppliers(ctx context.Context) ([]model.Supplier, error) {
	return decodeRows(ctx, s, TableSuppliers, supplierFromRow)
}

func (s *sheetsStore) StockMoves(ctx context.Context) ([]model.StockMove, error) {
	return decodeRows(ctx, s, TableStockMoves, stockMoveFromRow)
}

func (s *sheetsStore) Payments(ctx context.Context) ([]model.Payment, error) {
	return decodeRows(ctx, s, TablePayments, paymentFromRow)
}

func (s *sheetsStore) Users(ctx context.Context) ([]model.User, error) {
	return decodeRows(ctx, s, TableUsers, userFromRow)
}

func (s *sheetsStore) AppendProduct(ctx context.Context, p *model.Product) error {
	id, err := s.nextRowID(ctx, TableProducts)
	if err != nil {
		return err
	}
	p.ID = id
	return s.appendRow(ctx, TableProducts, productToRow(*p))
}

func (s *sheetsStore) AppendCustomer(ctx context.Context, c *model.Customer) error {
	id, err := s.nextRowID(ctx, TableCustomers)
	if err != nil {
		return err
	}
	c.ID = id
	return s.appendRow(ctx, TableCustomers, customerToRow(*c))
}

func (s *sheetsStore) AppendSupplier(ctx context.Context, sp *model.Supplier) error {
	id, err := s.nextRowID(ctx, TableSuppliers)
	if err != nil {
		return err
	}
	sp.ID = id
	return s.appendRow(ctx, TableSuppliers, supplierToRow(*sp))
}

func (s *sheetsStore) AppendStockMove(ctx context.Context, m *model.StockMove) error {
	id, err := s.nextRowID(ctx, TableStockMoves)
	if err != nil {
		return err
	}
	m.ID = id
	return s.appendRow(ctx, TableStockMoves, stockMoveToRow(*m))
}

func (s *sheetsStore) AppendPayment(ctx context.Context, p *model.Payment) error {
	id, err := s.nextRowID(ctx, TablePayments)
	if err != nil {
		return err
	}
	p.ID = id
	return s.appendRow(ctx, TablePayments, paymentToRow(*p))
}

func (s *sheetsStore) AppendUser(ctx context.Context, u *model.User) error {
	id, err := s.nextRowID(ctx, TableUsers)
	if err != nil {
		return err
	}
	u.ID = id
	return s.appendRow(ctx, TableUsers, userToRow(*u))
}

func (s *sheetsStore) Ping(ctx context.Context) error {
	_, err := s.svc.Spreadsheets.Get(s.spreadsheetID).Fields("spreadsheetId").Context(ctx).Do()
	return err
}

func (s *sheetsStore) Close() error { return nil }
