package service

import (
	"context"
	"fmt"
	"time"

	"tileledger/internal/dto"
	"tileledger/internal/infra"
	"tileledger/internal/ledger"
	"tileledger/internal/model"
	"tileledger/internal/repository"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

// LedgerService appends stock moves and payments. Both are append-only and
// guarded against accidental resubmission.
type LedgerService interface {
	AddMove(ctx context.Context, req dto.AddMoveRequest) (*dto.MutationResponse, error)
	AddPayment(ctx context.Context, req dto.AddPaymentRequest) (*dto.MutationResponse, error)
	ListMoves(ctx context.Context, filter dto.MoveFilter) ([]ledger.MoveLine, error)
	ListPayments(ctx context.Context, day *time.Time) ([]ledger.PaymentLine, error)
}

// LedgerOptions tunes the duplicate guard. A nil Clock uses time.Now.
type LedgerOptions struct {
	DedupeWindow time.Duration
	Clock        func() time.Time
}

type ledgerService struct {
	store  repository.Store
	locker infra.Locker
	window time.Duration
	now    func() time.Time
}

func NewLedgerService(store repository.Store, locker infra.Locker, opts LedgerOptions) LedgerService {
	now := opts.Clock
	if now == nil {
		now = time.Now
	}
	return &ledgerService{store: store, locker: locker, window: opts.DedupeWindow, now: now}
}

func (s *ledgerService) timestamp(ts *time.Time) time.Time {
	t := s.now()
	if ts != nil && !ts.IsZero() {
		t = ts.In(time.Local)
	}
	return t.Truncate(time.Second)
}

func optionalParty(id *int64) *int64 {
	if id == nil || *id <= 0 {
		return nil
	}
	v := *id
	return &v
}

func (s *ledgerService) AddMove(ctx context.Context, req dto.AddMoveRequest) (*dto.MutationResponse, error) {
	kind := model.MoveKind(req.Kind)
	if !kind.Valid() {
		return nil, invalid("kind", "must be purchase or sale")
	}
	qty := model.RoundQty(req.Qty.Decimal())
	if !qty.IsPositive() {
		return nil, invalid("qty", "must be > 0")
	}
	price := req.Price.NullDecimal()
	if price.Valid {
		price.Decimal = model.RoundMoney(price.Decimal)
	}
	if price.Valid && price.Decimal.IsNegative() {
		return nil, invalid("price_per_unit", "must be >= 0")
	}
	if price.Valid && price.Decimal.IsZero() {
		price = decimal.NullDecimal{}
	}

	move := model.StockMove{
		TS:           s.timestamp(req.TS),
		Kind:         kind,
		ProductID:    req.ProductID,
		Qty:          ledger.NormalizeQty(kind, qty),
		PricePerUnit: price,
		Notes:        req.Notes,
	}
	party := optionalParty(req.PartyID)
	if kind == model.MoveSale {
		move.CustomerID = party
	} else {
		move.SupplierID = party
	}

	var resp dto.MutationResponse
	err := withLock(ctx, s.locker, func() error {
		if err := s.checkMoveRefs(ctx, move); err != nil {
			return err
		}
		existing, err := s.store.StockMoves(ctx)
		if err != nil {
			return fmt.Errorf("read stock moves: %w", err)
		}
		if ledger.IsDuplicateMove(move, existing, s.window) {
			resp = dto.MutationResponse{Status: dto.StatusDuplicate}
			return nil
		}
		if err := s.store.AppendStockMove(ctx, &move); err != nil {
			return fmt.Errorf("append stock move: %w", err)
		}
		resp = dto.MutationResponse{Status: dto.StatusSaved, ID: move.ID}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if resp.Duplicate() {
		log.Warn().Int64("product_id", move.ProductID).Str("kind", string(kind)).
			Str("qty", move.Qty.String()).Msg("duplicate stock move ignored")
	} else {
		log.Info().Int64("move_id", move.ID).Int64("product_id", move.ProductID).
			Str("kind", string(kind)).Str("qty", move.Qty.String()).Msg("stock move saved")
	}
	return &resp, nil
}

func (s *ledgerService) checkMoveRefs(ctx context.Context, m model.StockMove) error {
	products, err := s.store.Products(ctx)
	if err != nil {
		return fmt.Errorf("read products: %w", err)
	}
	if _, ok := findProduct(products, m.ProductID); !ok {
		return fmt.Errorf("product %d: %w", m.ProductID, ErrNotFound)
	}
	if m.CustomerID != nil {
		return s.checkCustomer(ctx, *m.CustomerID)
	}
	if m.SupplierID != nil {
		return s.checkSupplier(ctx, *m.SupplierID)
	}
	return nil
}

func (s *ledgerService) checkCustomer(ctx context.Context, id int64) error {
	customers, err := s.store.Customers(ctx)
	if err != nil {
		return fmt.Errorf("read customers: %w", err)
	}
	for _, c := range customers {
		if c.ID == id {
			return nil
		}
	}
	return fmt.Errorf("customer %d: %w", id, ErrNotFound)
}

func (s *ledgerService) checkSupplier(ctx context.Context, id int64) error {
	suppliers, err := s.store.Suppliers(ctx)
	if err != nil {
		return fmt.Errorf("read suppliers: %w", err)
	}
	for _, sp := range suppliers {
		if sp.ID == id {
			return nil
		}
	}
	return fmt.Errorf("supplier %d: %w", id, ErrNotFound)
}

func (s *ledgerService) AddPayment(ctx context.Context, req dto.AddPaymentRequest) (*dto.MutationResponse, error) {
	kind := model.PaymentKind(req.Kind)
	if !kind.Valid() {
		return nil, invalid("kind", "must be payment, opening_due or advance")
	}
	amount := model.RoundMoney(req.Amount.Decimal())
	if !amount.IsPositive() {
		return nil, invalid("amount", "must be > 0")
	}
	customer, supplier := optionalParty(req.CustomerID), optionalParty(req.SupplierID)
	if (customer == nil) == (supplier == nil) {
		return nil, invalid("party", "exactly one of customer_id or supplier_id is required")
	}

	pay := model.Payment{
		TS:         s.timestamp(req.TS),
		Kind:       kind,
		CustomerID: customer,
		SupplierID: supplier,
		Amount:     amount,
		Notes:      req.Notes,
	}

	var resp dto.MutationResponse
	err := withLock(ctx, s.locker, func() error {
		if customer != nil {
			if err := s.checkCustomer(ctx, *customer); err != nil {
				return err
			}
		} else if err := s.checkSupplier(ctx, *supplier); err != nil {
			return err
		}
		existing, err := s.store.Payments(ctx)
		if err != nil {
			return fmt.Errorf("read payments: %w", err)
		}
		if ledger.IsDuplicatePayment(pay, existing, s.window) {
			resp = dto.MutationResponse{Status: dto.StatusDuplicate}
			return nil
		}
		if err := s.store.AppendPayment(ctx, &pay); err != nil {
			return fmt.Errorf("append payment: %w", err)
		}
		resp = dto.MutationResponse{Status: dto.StatusSaved, ID: pay.ID}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if resp.Duplicate() {
		log.Warn().Str("kind", string(kind)).Str("amount", amount.String()).Msg("duplicate payment ignored")
	} else {
		log.Info().Int64("payment_id", pay.ID).Str("kind", string(kind)).Str("amount", amount.String()).Msg("payment saved")
	}
	return &resp, nil
}

func loadCatalog(ctx context.Context, store repository.Store) (ledger.Catalog, error) {
	var cat ledger.Catalog
	var err error
	if cat.Products, err = store.Products(ctx); err != nil {
		return cat, fmt.Errorf("read products: %w", err)
	}
	if cat.Customers, err = store.Customers(ctx); err != nil {
		return cat, fmt.Errorf("read customers: %w", err)
	}
	if cat.Suppliers, err = store.Suppliers(ctx); err != nil {
		return cat, fmt.Errorf("read suppliers: %w", err)
	}
	return cat, nil
}

// ListMoves returns joined move lines, optionally narrowed to one product
// and/or one calendar day, ordered by timestamp.
func (s *ledgerService) ListMoves(ctx context.Context, filter dto.MoveFilter) ([]ledger.MoveLine, error) {
	cat, err := loadCatalog(ctx, s.store)
	if err != nil {
		return nil, err
	}
	moves, err := s.store.StockMoves(ctx)
	if err != nil {
		return nil, fmt.Errorf("read stock moves: %w", err)
	}
	if filter.Day != nil {
		moves = ledger.MovesOn(*filter.Day, moves)
	}
	if filter.ProductID != nil {
		kept := moves[:0:0]
		for _, m := range moves {
			if m.ProductID == *filter.ProductID {
				kept = append(kept, m)
			}
		}
		moves = kept
	}
	return ledger.JoinMoves(cat, moves), nil
}

func (s *ledgerService) ListPayments(ctx context.Context, day *time.Time) ([]ledger.PaymentLine, error) {
	cat, err := loadCatalog(ctx, s.store)
	if err != nil {
		return nil, err
	}
	payments, err := s.store.Payments(ctx)
	if err != nil {
		return nil, fmt.Errorf("read payments: %w", err)
	}
	if day != nil {
		payments = ledger.PaymentsOn(*day, payments)
	}
	return ledger.JoinPayments(cat, payments), nil
}
