package ledger

import (
	"tileledger/internal/model"

	"github.com/shopspring/decimal"
)

// Balance is the amount a party owes (positive) or is owed (negative), with
// the component sums it was combined from.
//
//	balance = goods + opening_due − payments − advances
//
// Goods are sale amounts for a customer and purchase amounts for a supplier.
type Balance struct {
	PartyID    int64           `json:"party_id"`
	Goods      decimal.Decimal `json:"goods"`
	OpeningDue decimal.Decimal `json:"opening_due"`
	Payments   decimal.Decimal `json:"payments"`
	Advances   decimal.Decimal `json:"advances"`
	Balance    decimal.Decimal `json:"balance"`
}

// CustomerBalance folds the sales and payment rows of one customer.
func CustomerBalance(customerID int64, moves []model.StockMove, payments []model.Payment) Balance {
	b := Balance{PartyID: customerID}
	for _, m := range moves {
		if m.Kind == model.MoveSale && idEquals(m.CustomerID, customerID) {
			b.Goods = b.Goods.Add(m.Amount())
		}
	}
	for _, p := range payments {
		if idEquals(p.CustomerID, customerID) {
			b.addPayment(p)
		}
	}
	return b.settle()
}

// SupplierBalance folds the purchase and payment rows of one supplier.
func SupplierBalance(supplierID int64, moves []model.StockMove, payments []model.Payment) Balance {
	b := Balance{PartyID: supplierID}
	for _, m := range moves {
		if m.Kind == model.MovePurchase && idEquals(m.SupplierID, supplierID) {
			b.Goods = b.Goods.Add(m.Amount())
		}
	}
	for _, p := range payments {
		if idEquals(p.SupplierID, supplierID) {
			b.addPayment(p)
		}
	}
	return b.settle()
}

func (b *Balance) addPayment(p model.Payment) {
	switch p.Kind {
	case model.PaymentOpeningDue:
		b.OpeningDue = b.OpeningDue.Add(p.Amount)
	case model.PaymentPayment:
		b.Payments = b.Payments.Add(p.Amount)
	case model.PaymentAdvance:
		b.Advances = b.Advances.Add(p.Amount)
	}
}

func (b Balance) settle() Balance {
	b.Balance = b.Goods.Add(b.OpeningDue).Sub(b.Payments).Sub(b.Advances)
	return b
}

func idEquals(p *int64, id int64) bool { return p != nil && *p == id }
