package repository

import (
	"context"
	"sync"

	"tileledger/internal/model"
)

// memoryStore keeps every table in process memory. IDs follow the
// max(id)+1 rule used by the spreadsheet backend.
type memoryStore struct {
	mu        sync.RWMutex
	products  []model.Product
	customers []model.Customer
	suppliers []model.Supplier
	moves     []model.StockMove
	payments  []model.Payment
	users     []model.User
}

// NewMemoryStore returns an empty in-memory Store.
func NewMemoryStore() Store {
	return &memoryStore{}
}

func (s *memoryStore) EnsureSchema(context.Context) error { return nil }
func (s *memoryStore) Ping(context.Context) error         { return nil }
func (s *memoryStore) Close() error                       { return nil }

func (s *memoryStore) Products(context.Context) ([]model.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]model.Product(nil), s.products...), nil
}

func (s *memoryStore) Customers(context.Context) ([]model.Customer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]model.Customer(nil), s.customers...), nil
}

func (s *memoryStore) Suppliers(context.Context) ([]model.Supplier, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]model.Supplier(nil), s.suppliers...), nil
}

func (s *memoryStore) StockMoves(context.Context) ([]model.StockMove, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]model.StockMove(nil), s.moves...), nil
}

func (s *memoryStore) Payments(context.Context) ([]model.Payment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]model.Payment(nil), s.payments...), nil
}

func (s *memoryStore) Users(context.Context) ([]model.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]model.User(nil), s.users...), nil
}

func (s *memoryStore) AppendProduct(_ context.Context, p *model.Product) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p.ID = nextID(s.products, func(r model.Product) int64 { return r.ID })
	s.products = append(s.products, *p)
	return nil
}

func (s *memoryStore) AppendCustomer(_ context.Context, c *model.Customer) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c.ID = nextID(s.customers, func(r model.Customer) int64 { return r.ID })
	s.customers = append(s.customers, *c)
	return nil
}

func (s *memoryStore) AppendSupplier(_ context.Context, sp *model.Supplier) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	sp.ID = nextID(s.suppliers, func(r model.Supplier) int64 { return r.ID })
	s.suppliers = append(s.suppliers, *sp)
	return nil
}

func (s *memoryStore) AppendStockMove(_ context.Context, m *model.StockMove) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	m.ID = nextID(s.moves, func(r model.StockMove) int64 { return r.ID })
	s.moves = append(s.moves, *m)
	return nil
}

func (s *memoryStore) AppendPayment(_ context.Context, p *model.Payment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p.ID = nextID(s.payments, func(r model.Payment) int64 { return r.ID })
	s.payments = append(s.payments, *p)
	return nil
}

func (s *memoryStore) AppendUser(_ context.Context, u *model.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u.ID = nextID(s.users, func(r model.User) int64 { return r.ID })
	s.users = append(s.users, *u)
	return nil
}

// nextID returns max(id)+1, or 1 for an empty table.
func nextID[T any](rows []T, id func(T) int64) int64 {
	var top int64
	for _, r := range rows {
		if v := id(r); v > top {
			top = v
		}
	}
	return top + 1
}
