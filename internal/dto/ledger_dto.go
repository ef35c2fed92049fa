package dto

import (
	"time"

	"tileledger/internal/ledger"

	"github.com/shopspring/decimal"
)

// ─── Request DTOs ────────────────────────────────────────────────────────────

// AddMoveRequest is one stock-in or stock-out line. Qty is always entered
// positive; sales are stored negative. PartyID is the customer of a sale or
// the supplier of a purchase.
type AddMoveRequest struct {
	Kind      string      `json:"kind"           validate:"required,oneof=purchase sale"`
	ProductID int64       `json:"product_id"     validate:"required,gt=0"`
	Qty       NumericText `json:"qty"`
	// Blank or 0 is stored as no price and reads back as null.
	Price     NumericText `json:"price_per_unit"`
	PartyID   *int64      `json:"party_id"`
	Notes     string      `json:"notes"          validate:"max=200"`
	TS        *time.Time  `json:"ts"`
}

// AddPaymentRequest records money against exactly one customer or supplier.
type AddPaymentRequest struct {
	Kind       string      `json:"kind"        validate:"required,oneof=payment opening_due advance"`
	CustomerID *int64      `json:"customer_id"`
	SupplierID *int64      `json:"supplier_id"`
	Amount     NumericText `json:"amount"`
	Notes      string      `json:"notes"       validate:"max=200"`
	TS         *time.Time  `json:"ts"`
}

// BillLine is one row of the quick bill grid.
type BillLine struct {
	Material    string      `json:"material"     validate:"max=60"`
	ProductName string      `json:"product_name" validate:"max=120"`
	Size        string      `json:"size"         validate:"max=40"`
	Unit        string      `json:"unit"         validate:"max=20"`
	Qty         NumericText `json:"qty"`
	Rate        NumericText `json:"rate"`
}

// BillRequest saves a whole purchase or sale bill in one go.
type BillRequest struct {
	Kind         string     `json:"kind"          validate:"required,oneof=purchase sale"`
	BillNo       string     `json:"bill_no"       validate:"max=40"`
	PartyName    string     `json:"party_name"    validate:"max=120"`
	// Contact details only fill a party created by this bill.
	PartyPhone   string     `json:"party_phone"   validate:"max=30"`
	PartyAddress string     `json:"party_address" validate:"max=250"`
	Lines        []BillLine `json:"lines"         validate:"required,min=1,max=200,dive"`
}

// ─── Filters ─────────────────────────────────────────────────────────────────

type MoveFilter struct {
	ProductID *int64
	Day       *time.Time
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

const (
	StatusSaved     = "saved"
	StatusDuplicate = "duplicate"
)

// MutationResponse is the outcome of a ledger append. A duplicate wrote nothing.
type MutationResponse struct {
	Status string `json:"status"`
	ID     int64  `json:"id,omitempty"`
}

func (r MutationResponse) Duplicate() bool { return r.Status == StatusDuplicate }

// BillLineResult is the outcome of one bill line.
type BillLineResult struct {
	Line      int    `json:"line"`
	ProductID int64  `json:"product_id,omitempty"`
	Outcome   string `json:"outcome"` // saved | duplicate | created_only | skipped
	MoveID    int64  `json:"move_id,omitempty"`
}

type BillResponse struct {
	Saved       int              `json:"saved"`
	Duplicates  int              `json:"duplicates"`
	CreatedOnly int              `json:"created_only"`
	PartyID     *int64           `json:"party_id"`
	Lines       []BillLineResult `json:"lines"`
}

// StockResponse is the stock view plus the products below the threshold.
type StockResponse struct {
	Threshold decimal.Decimal     `json:"threshold"`
	Levels    []ledger.StockLevel `json:"levels"`
	LowStock  []ledger.StockLevel `json:"low_stock"`
}
