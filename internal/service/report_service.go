package service

import (
	"context"
	"fmt"
	"time"

	"tileledger/internal/dto"
	"tileledger/internal/ledger"
	"tileledger/internal/model"
	"tileledger/internal/repository"

	"github.com/shopspring/decimal"
)

// ReportService answers the read side: stock, balances and day views.
// Every figure is a full fold of the ledger at call time.
type ReportService interface {
	ProductStock(ctx context.Context, productID int64) (*ledger.StockLevel, error)
	StockLevels(ctx context.Context, threshold decimal.Decimal) (*dto.StockResponse, error)
	CustomerBalance(ctx context.Context, customerID int64) (*ledger.Balance, error)
	SupplierBalance(ctx context.Context, supplierID int64) (*ledger.Balance, error)
	MovesOnDay(ctx context.Context, day time.Time) ([]ledger.MoveLine, error)
	DailyReport(ctx context.Context, day time.Time) (*ledger.DailyReport, error)
}

type reportService struct {
	store repository.Store
}

func NewReportService(store repository.Store) ReportService {
	return &reportService{store: store}
}

func (s *reportService) ProductStock(ctx context.Context, productID int64) (*ledger.StockLevel, error) {
	products, err := s.store.Products(ctx)
	if err != nil {
		return nil, fmt.Errorf("read products: %w", err)
	}
	p, ok := findProduct(products, productID)
	if !ok {
		return nil, fmt.Errorf("product %d: %w", productID, ErrNotFound)
	}
	moves, err := s.store.StockMoves(ctx)
	if err != nil {
		return nil, fmt.Errorf("read stock moves: %w", err)
	}
	level := ledger.StockOf(p, moves)
	return &level, nil
}

func (s *reportService) StockLevels(ctx context.Context, threshold decimal.Decimal) (*dto.StockResponse, error) {
	products, err := s.store.Products(ctx)
	if err != nil {
		return nil, fmt.Errorf("read products: %w", err)
	}
	moves, err := s.store.StockMoves(ctx)
	if err != nil {
		return nil, fmt.Errorf("read stock moves: %w", err)
	}
	levels := ledger.StockLevels(products, moves)
	return &dto.StockResponse{
		Threshold: threshold,
		Levels:    levels,
		LowStock:  ledger.LowStock(levels, threshold),
	}, nil
}

func (s *reportService) CustomerBalance(ctx context.Context, customerID int64) (*ledger.Balance, error) {
	customers, err := s.store.Customers(ctx)
	if err != nil {
		return nil, fmt.Errorf("read customers: %w", err)
	}
	found := false
	for _, c := range customers {
		if c.ID == customerID {
			found = true
			break
		}
	}
	if !found {
		return nil, fmt.Errorf("customer %d: %w", customerID, ErrNotFound)
	}
	moves, payments, err := s.history(ctx)
	if err != nil {
		return nil, err
	}
	b := ledger.CustomerBalance(customerID, moves, payments)
	return &b, nil
}

func (s *reportService) SupplierBalance(ctx context.Context, supplierID int64) (*ledger.Balance, error) {
	suppliers, err := s.store.Suppliers(ctx)
	if err != nil {
		return nil, fmt.Errorf("read suppliers: %w", err)
	}
	found := false
	for _, sp := range suppliers {
		if sp.ID == supplierID {
			found = true
			break
		}
	}
	if !found {
		return nil, fmt.Errorf("supplier %d: %w", supplierID, ErrNotFound)
	}
	moves, payments, err := s.history(ctx)
	if err != nil {
		return nil, err
	}
	b := ledger.SupplierBalance(supplierID, moves, payments)
	return &b, nil
}

func (s *reportService) MovesOnDay(ctx context.Context, day time.Time) ([]ledger.MoveLine, error) {
	cat, err := loadCatalog(ctx, s.store)
	if err != nil {
		return nil, err
	}
	moves, err := s.store.StockMoves(ctx)
	if err != nil {
		return nil, fmt.Errorf("read stock moves: %w", err)
	}
	return ledger.JoinMoves(cat, ledger.MovesOn(day, moves)), nil
}

func (s *reportService) DailyReport(ctx context.Context, day time.Time) (*ledger.DailyReport, error) {
	cat, err := loadCatalog(ctx, s.store)
	if err != nil {
		return nil, err
	}
	moves, payments, err := s.history(ctx)
	if err != nil {
		return nil, err
	}
	r := ledger.BuildDailyReport(day, cat, moves, payments)
	return &r, nil
}

func (s *reportService) history(ctx context.Context) ([]model.StockMove, []model.Payment, error) {
	moves, err := s.store.StockMoves(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("read stock moves: %w", err)
	}
	payments, err := s.store.Payments(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("read payments: %w", err)
	}
	return moves, payments, nil
}
