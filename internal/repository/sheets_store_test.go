package repository

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"tileledger/internal/model"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

const fakeSpreadsheetID = "ledger-test"

// fakeSheets serves the handful of Sheets v4 endpoints the store calls,
// keeping each tab as rows of JSON-decoded cells (row 0 is the header).
type fakeSheets struct {
	mu   sync.Mutex
	tabs map[string][][]interface{}
}

func (f *fakeSheets) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	path := strings.TrimPrefix(r.URL.Path, "/v4/spreadsheets/"+fakeSpreadsheetID)
	switch {
	case path == "" && r.Method == http.MethodGet:
		doc := &sheets.Spreadsheet{SpreadsheetId: fakeSpreadsheetID}
		for title := range f.tabs {
			doc.Sheets = append(doc.Sheets, &sheets.Sheet{Properties: &sheets.SheetProperties{Title: title}})
		}
		writeJSON(w, doc)

	case path == ":batchUpdate":
		var req sheets.BatchUpdateSpreadsheetRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		for _, rq := range req.Requests {
			if rq.AddSheet != nil {
				f.tabs[rq.AddSheet.Properties.Title] = nil
			}
		}
		writeJSON(w, &sheets.BatchUpdateSpreadsheetResponse{})

	case strings.HasPrefix(path, "/values/"):
		rng := strings.TrimPrefix(path, "/values/")
		isAppend := strings.HasSuffix(rng, ":append")
		tab, cells, _ := strings.Cut(strings.TrimSuffix(rng, ":append"), "!")
		rows, ok := f.tabs[tab]
		if !ok {
			http.Error(w, "no such tab", http.StatusNotFound)
			return
		}

		if r.Method == http.MethodGet {
			out := &sheets.ValueRange{Range: rng}
			switch {
			case cells == "1:1" && len(rows) > 0:
				out.Values = rows[:1]
			case cells != "1:1" && len(rows) > 1:
				out.Values = rows[1:]
			}
			writeJSON(w, out)
			return
		}

		var vr sheets.ValueRange
		if err := json.NewDecoder(r.Body).Decode(&vr); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		if isAppend {
			f.tabs[tab] = append(rows, vr.Values...)
			writeJSON(w, &sheets.AppendValuesResponse{})
			return
		}
		if len(rows) == 0 {
			rows = append(rows, nil)
		}
		rows[0] = vr.Values[0]
		f.tabs[tab] = rows
		writeJSON(w, &sheets.UpdateValuesResponse{})

	default:
		http.NotFound(w, r)
	}
}

func (f *fakeSheets) tab(name string) ([][]interface{}, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	rows, ok := f.tabs[name]
	return rows, ok
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

func newSheetsStore(t *testing.T, fake *fakeSheets) Store {
	t.Helper()
	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)

	svc, err := sheets.NewService(context.Background(),
		option.WithEndpoint(srv.URL+"/"),
		option.WithHTTPClient(srv.Client()),
	)
	require.NoError(t, err)
	return NewSheetsStore(svc, fakeSpreadsheetID)
}

func TestSheetsStore_EnsureSchemaCreatesTabsWithHeaders(t *testing.T) {
	ctx := context.Background()
	fake := &fakeSheets{tabs: map[string][][]interface{}{}}
	s := newSheetsStore(t, fake)

	require.NoError(t, s.EnsureSchema(ctx))
	require.NoError(t, s.EnsureSchema(ctx), "second run finds every header in place")

	for _, table := range Tables {
		rows, ok := fake.tab(string(table))
		require.True(t, ok, table)
		require.Len(t, rows, 1, table)
		cols, err := Columns(table)
		require.NoError(t, err)
		assert.Len(t, rows[0], len(cols), table)
	}
	assert.NoError(t, s.Ping(ctx))
}

func TestSheetsStore_HeaderMismatchIsNeverOverwritten(t *testing.T) {
	fake := &fakeSheets{tabs: map[string][][]interface{}{
		"Products": {{"id", "name"}},
	}}
	s := newSheetsStore(t, fake)

	err := s.EnsureSchema(context.Background())
	assert.ErrorIs(t, err, ErrSchemaMismatch)
	rows, _ := fake.tab("Products")
	assert.Equal(t, []interface{}{"id", "name"}, rows[0])
}

func TestSheetsStore_AppendAndReadBack(t *testing.T) {
	ctx := context.Background()
	fake := &fakeSheets{tabs: map[string][][]interface{}{}}
	s := newSheetsStore(t, fake)
	require.NoError(t, s.EnsureSchema(ctx))

	p := &model.Product{Name: "Kota Blue", Material: "Stone", Size: "2x2", Unit: "sqft", OpeningStock: decimal.NewFromInt(30)}
	require.NoError(t, s.AppendProduct(ctx, p))
	p2 := &model.Product{Name: "Jaisalmer", Size: "1x1"}
	require.NoError(t, s.AppendProduct(ctx, p2))
	assert.Equal(t, int64(1), p.ID)
	assert.Equal(t, int64(2), p2.ID)

	c := &model.Customer{Name: "Kumar", Phone: "98450"}
	require.NoError(t, s.AppendCustomer(ctx, c))

	ts := time.Date(2024, 3, 10, 15, 4, 5, 0, time.Local)
	m := &model.StockMove{
		TS: ts, Kind: model.MoveSale, ProductID: p.ID,
		Qty:        decimal.RequireFromString("-3.5"),
		CustomerID: &c.ID,
		Notes:      "Bill 7",
	}
	require.NoError(t, s.AppendStockMove(ctx, m))

	products, err := s.Products(ctx)
	require.NoError(t, err)
	require.Len(t, products, 2)
	assert.Equal(t, "Kota Blue", products[0].Name)
	assert.True(t, products[0].OpeningStock.Equal(decimal.NewFromInt(30)))

	moves, err := s.StockMoves(ctx)
	require.NoError(t, err)
	require.Len(t, moves, 1)
	got := moves[0]
	assert.Equal(t, int64(1), got.ID)
	assert.True(t, got.TS.Equal(ts))
	assert.Equal(t, model.MoveSale, got.Kind)
	assert.True(t, got.Qty.Equal(decimal.RequireFromString("-3.5")))
	assert.False(t, got.PricePerUnit.Valid)
	require.NotNil(t, got.CustomerID)
	assert.Equal(t, c.ID, *got.CustomerID)
	assert.Nil(t, got.SupplierID)
	assert.Equal(t, "Bill 7", got.Notes)
}
