package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"tileledger/internal/infra"
	"tileledger/internal/model"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ── Stubs ─────────────────────────────────────────────────────────────────────

// countingStore wraps a Store, counting product reads and failing the first
// failReads of them.
type countingStore struct {
	Store
	reads     int
	failReads int
	readErr   error
}

func (s *countingStore) Products(ctx context.Context) ([]model.Product, error) {
	s.reads++
	if s.reads <= s.failReads {
		return nil, s.readErr
	}
	return s.Store.Products(ctx)
}

func int64p(v int64) *int64 { return &v }

// ── Memory store ──────────────────────────────────────────────────────────────

func TestMemoryStore_AssignsMaxPlusOneIDs(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	a := &model.Product{Name: "A"}
	b := &model.Product{Name: "B"}
	require.NoError(t, s.AppendProduct(ctx, a))
	require.NoError(t, s.AppendProduct(ctx, b))
	assert.Equal(t, int64(1), a.ID)
	assert.Equal(t, int64(2), b.ID)

	c := &model.Customer{Name: "Ravi"}
	require.NoError(t, s.AppendCustomer(ctx, c))
	assert.Equal(t, int64(1), c.ID, "ids are per table")
}

func TestMemoryStore_ReadsAreCopies(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	require.NoError(t, s.AppendProduct(ctx, &model.Product{Name: "A"}))

	rows, err := s.Products(ctx)
	require.NoError(t, err)
	rows[0].Name = "mutated"

	again, err := s.Products(ctx)
	require.NoError(t, err)
	assert.Equal(t, "A", again[0].Name)
}

// ── Schema ────────────────────────────────────────────────────────────────────

func TestCheckHeader(t *testing.T) {
	ok, err := checkHeader(TableCustomers, []string{"id", "name", "phone", "address"})
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = checkHeader(TableCustomers, nil)
	require.NoError(t, err)
	assert.False(t, ok, "empty header is written, not rejected")

	_, err = checkHeader(TableCustomers, []string{"id", "name", "address", "phone"})
	assert.ErrorIs(t, err, ErrSchemaMismatch)

	_, err = checkHeader(Table("Nope"), []string{"id"})
	assert.ErrorIs(t, err, ErrUnknownTable)
}

func TestColumnsReturnsCopy(t *testing.T) {
	cols, err := Columns(TableProducts)
	require.NoError(t, err)
	cols[0] = "x"
	again, _ := Columns(TableProducts)
	assert.Equal(t, "id", again[0])
}

// ── Codec ─────────────────────────────────────────────────────────────────────

func TestStockMoveRowRoundTrip(t *testing.T) {
	ts := time.Date(2024, 5, 1, 9, 30, 15, 0, time.Local)
	in := model.StockMove{
		ID: 7, TS: ts, Kind: model.MoveSale, ProductID: 3,
		Qty:          decimal.RequireFromString("-4.5"),
		PricePerUnit: decimal.NewNullDecimal(decimal.RequireFromString("120.25")),
		CustomerID:   int64p(9),
		Notes:        "Bill 44",
	}
	out := stockMoveFromRow(stockMoveToRow(in))

	assert.Equal(t, in.ID, out.ID)
	assert.True(t, in.TS.Equal(out.TS))
	assert.Equal(t, in.Kind, out.Kind)
	assert.Equal(t, in.ProductID, out.ProductID)
	assert.True(t, in.Qty.Equal(out.Qty))
	require.True(t, out.PricePerUnit.Valid)
	assert.True(t, in.PricePerUnit.Decimal.Equal(out.PricePerUnit.Decimal))
	require.NotNil(t, out.CustomerID)
	assert.Equal(t, int64(9), *out.CustomerID)
	assert.Nil(t, out.SupplierID)
	assert.Equal(t, "Bill 44", out.Notes)
}

func TestPaymentRowFromSheetCells(t *testing.T) {
	// cells as the Sheets API returns them with UNFORMATTED_VALUE
	row := []interface{}{float64(2), "2024-05-01T10:00:00", "Advance", "", float64(4), float64(300), ""}
	p := paymentFromRow(row)
	assert.Equal(t, int64(2), p.ID)
	assert.Equal(t, model.PaymentAdvance, p.Kind)
	assert.Nil(t, p.CustomerID)
	require.NotNil(t, p.SupplierID)
	assert.Equal(t, int64(4), *p.SupplierID)
	assert.True(t, p.Amount.Equal(decimal.NewFromInt(300)))
}

func TestProductRowToleratesShortAndInvalidCells(t *testing.T) {
	p := productFromRow([]interface{}{"5", "Ivory", nil, "2x2", "box", "abc"})
	assert.Equal(t, int64(5), p.ID)
	assert.Equal(t, "", p.Material)
	assert.True(t, p.OpeningStock.IsZero(), "invalid numeric text is zero")

	short := productFromRow([]interface{}{float64(6), "Onyx"})
	assert.Equal(t, "Onyx", short.Name)
	assert.Equal(t, "", short.Unit)
}

func TestParseHelpers(t *testing.T) {
	assert.True(t, model.ParseDecimal(" 1,200.50 ").Equal(decimal.RequireFromString("1200.5")))
	assert.True(t, model.ParseDecimal("").IsZero())
	assert.False(t, model.ParseNullDecimal("x").Valid)
	assert.True(t, ParseTimestamp("garbage").IsZero())
	assert.Equal(t, 14, ParseTimestamp("2024-01-02 14:05:00").Hour())
}

// ── Cache decorator ───────────────────────────────────────────────────────────

func TestCachedStore_HitsCacheUntilAppend(t *testing.T) {
	ctx := context.Background()
	inner := &countingStore{Store: NewMemoryStore()}
	s := NewCachedStore(inner, infra.NewLRUCache(16, time.Minute))

	require.NoError(t, s.AppendProduct(ctx, &model.Product{Name: "A", OpeningStock: decimal.NewFromInt(3)}))

	first, err := s.Products(ctx)
	require.NoError(t, err)
	second, err := s.Products(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, inner.reads, "second read is served from cache")
	assert.Equal(t, first[0].Name, second[0].Name)
	assert.True(t, second[0].OpeningStock.Equal(decimal.NewFromInt(3)))

	require.NoError(t, s.AppendProduct(ctx, &model.Product{Name: "B"}))
	after, err := s.Products(ctx)
	require.NoError(t, err)
	assert.Len(t, after, 2, "append invalidates the table")
	assert.Equal(t, 2, inner.reads)
}

func TestCachedStore_ExpiresAfterTTL(t *testing.T) {
	ctx := context.Background()
	inner := &countingStore{Store: NewMemoryStore()}
	s := NewCachedStore(inner, infra.NewLRUCache(16, 20*time.Millisecond))

	_, err := s.Products(ctx)
	require.NoError(t, err)
	time.Sleep(60 * time.Millisecond)
	_, err = s.Products(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, inner.reads)
}

// ── Retry decorator ───────────────────────────────────────────────────────────

func fastRetrier() *infra.Retrier {
	return infra.NewRetrier(
		infra.RetryPolicy{Attempts: 4, InitialDelay: time.Millisecond, Multiplier: 1.6},
		infra.NewCircuitBreaker(infra.DefaultCBConfig()),
	)
}

func TestResilientStore_RetriesTransientErrors(t *testing.T) {
	inner := &countingStore{Store: NewMemoryStore(), failReads: 2, readErr: errors.New("503 backend")}
	s := NewResilientStore(inner, fastRetrier())

	_, err := s.Products(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, inner.reads)
}

func TestResilientStore_GivesUpAfterAttempts(t *testing.T) {
	inner := &countingStore{Store: NewMemoryStore(), failReads: 10, readErr: errors.New("quota exceeded")}
	s := NewResilientStore(inner, fastRetrier())

	_, err := s.Products(context.Background())
	assert.ErrorIs(t, err, infra.ErrUnavailable)
	assert.Equal(t, 4, inner.reads)
}

func TestResilientStore_SchemaMismatchIsNotRetried(t *testing.T) {
	inner := &countingStore{Store: NewMemoryStore(), failReads: 10, readErr: ErrSchemaMismatch}
	s := NewResilientStore(inner, fastRetrier())

	_, err := s.Products(context.Background())
	assert.ErrorIs(t, err, ErrSchemaMismatch)
	assert.Equal(t, 1, inner.reads)
}
