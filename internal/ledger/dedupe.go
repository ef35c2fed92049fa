package ledger

import (
	"time"

	"tileledger/internal/model"

	"github.com/shopspring/decimal"
)

// DefaultDedupeWindow is how far back an identical submission is treated as
// an accidental resubmission.
const DefaultDedupeWindow = 120 * time.Second

// noParty stands in for a missing party id when comparing rows.
const noParty int64 = -1

// NormalizeQty applies the sign convention: sales are stored negative,
// purchases positive.
func NormalizeQty(kind model.MoveKind, qty decimal.Decimal) decimal.Decimal {
	if kind == model.MoveSale && qty.IsPositive() {
		return qty.Neg()
	}
	return qty
}

// IsDuplicateMove reports whether an existing row of the same product, kind,
// signed qty, price, party and notes was written in [candidate.TS − window,
// candidate.TS]. candidate.Qty must already be normalized. A non-positive
// window disables the check.
func IsDuplicateMove(candidate model.StockMove, existing []model.StockMove, window time.Duration) bool {
	if window <= 0 {
		return false
	}
	from := candidate.TS.Add(-window)
	price := priceOrZero(candidate.PricePerUnit)
	party := partyOrSentinel(candidate.PartyID())
	for _, m := range existing {
		if m.ProductID != candidate.ProductID || m.Kind != candidate.Kind {
			continue
		}
		if m.TS.Before(from) || m.TS.After(candidate.TS) {
			continue
		}
		if m.Qty.Equal(candidate.Qty) &&
			priceOrZero(m.PricePerUnit).Equal(price) &&
			partyOrSentinel(m.PartyID()) == party &&
			m.Notes == candidate.Notes {
			return true
		}
	}
	return false
}

// IsDuplicatePayment is the payment counterpart of IsDuplicateMove, matching
// kind, amount, customer, supplier and notes.
func IsDuplicatePayment(candidate model.Payment, existing []model.Payment, window time.Duration) bool {
	if window <= 0 {
		return false
	}
	from := candidate.TS.Add(-window)
	for _, p := range existing {
		if p.Kind != candidate.Kind || p.TS.Before(from) || p.TS.After(candidate.TS) {
			continue
		}
		if p.Amount.Equal(candidate.Amount) &&
			partyOrSentinel(p.CustomerID) == partyOrSentinel(candidate.CustomerID) &&
			partyOrSentinel(p.SupplierID) == partyOrSentinel(candidate.SupplierID) &&
			p.Notes == candidate.Notes {
			return true
		}
	}
	return false
}

func priceOrZero(d decimal.NullDecimal) decimal.Decimal {
	if !d.Valid {
		return decimal.Zero
	}
	return d.Decimal
}

func partyOrSentinel(id *int64) int64 {
	if id == nil {
		return noParty
	}
	return *id
}
