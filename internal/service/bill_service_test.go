package service

import (
	"testing"

	"tileledger/internal/dto"
	"tileledger/internal/ledger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSaveBill_Purchase(t *testing.T) {
	f := newFixture(t, ledger.DefaultDedupeWindow)
	req := dto.BillRequest{
		Kind:         "purchase",
		BillNo:       "12",
		PartyName:    "Stone Co",
		PartyPhone:   "080-555",
		PartyAddress: "Hosur Rd",
		Lines: []dto.BillLine{
			{ProductName: "Marble", Size: "2x2", Unit: "sqft", Qty: "10", Rate: "45"},
			{Material: "Granite", ProductName: "Black Galaxy", Size: "4x4", Qty: ""},
			{ProductName: "", Size: "1x1", Qty: "3"},
		},
	}

	resp, err := f.bills.SaveBill(f.ctx, req)
	require.NoError(t, err)
	assert.Equal(t, 1, resp.Saved)
	assert.Equal(t, 1, resp.CreatedOnly)
	require.NotNil(t, resp.PartyID)
	require.Len(t, resp.Lines, 3)
	assert.Equal(t, OutcomeSaved, resp.Lines[0].Outcome)
	assert.Equal(t, OutcomeCreatedOnly, resp.Lines[1].Outcome)
	assert.Equal(t, OutcomeSkipped, resp.Lines[2].Outcome)

	suppliers, err := f.catalog.ListSuppliers(f.ctx)
	require.NoError(t, err)
	require.Len(t, suppliers, 1)
	assert.Equal(t, "080-555", suppliers[0].Phone, "a party created by a bill keeps its contact details")
	assert.Equal(t, "Hosur Rd", suppliers[0].Address)

	products, err := f.catalog.ListProducts(f.ctx)
	require.NoError(t, err)
	require.Len(t, products, 2)
	for _, p := range products {
		assert.Equal(t, "sqft", p.Unit, "blank unit falls back to the first unit on the bill")
		if p.Name == "Marble" {
			assert.Equal(t, "Granite", p.Material, "blank material falls back to the first material on the bill")
		}
	}

	moves, err := f.store.StockMoves(f.ctx)
	require.NoError(t, err)
	require.Len(t, moves, 1)
	assert.Equal(t, "Bill 12", moves[0].Notes)
	require.NotNil(t, moves[0].SupplierID)
	assert.Equal(t, *resp.PartyID, *moves[0].SupplierID)

	again, err := f.bills.SaveBill(f.ctx, req)
	require.NoError(t, err)
	assert.Equal(t, 0, again.Saved)
	assert.Equal(t, 1, again.Duplicates)

	products, err = f.catalog.ListProducts(f.ctx)
	require.NoError(t, err)
	assert.Len(t, products, 2, "products are ensured, not duplicated")
}

func TestSaveBill_DefaultsWhenNoLineHasUnitOrMaterial(t *testing.T) {
	f := newFixture(t, ledger.DefaultDedupeWindow)
	_, err := f.bills.SaveBill(f.ctx, dto.BillRequest{
		Kind:  "purchase",
		Lines: []dto.BillLine{{ProductName: "Marble", Size: "2x2", Qty: "1"}},
	})
	require.NoError(t, err)

	products, err := f.catalog.ListProducts(f.ctx)
	require.NoError(t, err)
	require.Len(t, products, 1)
	assert.Equal(t, "box", products[0].Unit)
	assert.Equal(t, "Tiles", products[0].Material)

	moves, err := f.store.StockMoves(f.ctx)
	require.NoError(t, err)
	assert.Empty(t, moves[0].Notes)
	assert.Nil(t, moves[0].SupplierID)
}

func TestSaveBill_SaleSkipsLinesWithoutQty(t *testing.T) {
	f := newFixture(t, ledger.DefaultDedupeWindow)
	resp, err := f.bills.SaveBill(f.ctx, dto.BillRequest{
		Kind:      "sale",
		PartyName: "Ravi",
		Lines: []dto.BillLine{
			{ProductName: "Marble", Size: "2x2", Qty: "4", Rate: "50"},
			{ProductName: "Granite", Size: "4x4", Qty: "0"},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, resp.Saved)
	assert.Equal(t, OutcomeSkipped, resp.Lines[1].Outcome)

	products, err := f.catalog.ListProducts(f.ctx)
	require.NoError(t, err)
	assert.Len(t, products, 1, "skipped sale lines create nothing")

	moves, err := f.store.StockMoves(f.ctx)
	require.NoError(t, err)
	require.Len(t, moves, 1)
	assert.Equal(t, "-4", moves[0].Qty.String())
	require.NotNil(t, moves[0].CustomerID)

	b, err := f.reports.CustomerBalance(f.ctx, *moves[0].CustomerID)
	require.NoError(t, err)
	assert.Equal(t, "200", b.Balance.String())
}

func TestSaveBill_NothingToSave(t *testing.T) {
	f := newFixture(t, ledger.DefaultDedupeWindow)

	_, err := f.bills.SaveBill(f.ctx, dto.BillRequest{
		Kind:  "sale",
		Lines: []dto.BillLine{{ProductName: "Marble", Size: "2x2"}, {Qty: "3"}},
	})
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "fill at least product, size and qty", verr.Fields["lines"])

	_, err = f.bills.SaveBill(f.ctx, dto.BillRequest{
		Kind:  "purchase",
		Lines: []dto.BillLine{{ProductName: "Marble", Size: "2x2", Qty: "1", Rate: "-3"}},
	})
	assert.ErrorIs(t, err, ErrValidation)

	products, err := f.catalog.ListProducts(f.ctx)
	require.NoError(t, err)
	assert.Empty(t, products)
}
