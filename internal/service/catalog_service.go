package service

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"strings"

	"tileledger/internal/dto"
	"tileledger/internal/infra"
	"tileledger/internal/model"
	"tileledger/internal/repository"

	"github.com/rs/zerolog/log"
)

// mutationLockKey serializes every read-check-append sequence of the ledger.
const mutationLockKey = "ledger"

// CatalogService manages products, customers and suppliers, including the
// find-or-create lookups used by quick bill entry.
type CatalogService interface {
	ListProducts(ctx context.Context) ([]model.Product, error)
	GetProduct(ctx context.Context, id int64) (*model.Product, error)
	AddProduct(ctx context.Context, req dto.ProductRequest) (*model.Product, error)
	EnsureProduct(ctx context.Context, req dto.ProductRequest) (*dto.EnsureResponse, error)

	ListCustomers(ctx context.Context) ([]model.Customer, error)
	AddCustomer(ctx context.Context, req dto.PartyRequest) (*model.Customer, error)
	EnsureCustomerByName(ctx context.Context, req dto.PartyRequest) (*dto.EnsureResponse, error)

	ListSuppliers(ctx context.Context) ([]model.Supplier, error)
	AddSupplier(ctx context.Context, req dto.PartyRequest) (*model.Supplier, error)
	EnsureSupplierByName(ctx context.Context, req dto.PartyRequest) (*dto.EnsureResponse, error)
}

type catalogService struct {
	store  repository.Store
	locker infra.Locker
}

func NewCatalogService(store repository.Store, locker infra.Locker) CatalogService {
	return &catalogService{store: store, locker: locker}
}

func withLock(ctx context.Context, l infra.Locker, fn func() error) error {
	release, err := l.Acquire(ctx, mutationLockKey)
	if err != nil {
		return err
	}
	defer release()
	return fn()
}

func sameText(a, b string) bool {
	return strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(b))
}

func byName(a, b string) int {
	return cmp.Compare(strings.ToLower(a), strings.ToLower(b))
}

// ── Products ──────────────────────────────────────────────────────────────────

func (s *catalogService) ListProducts(ctx context.Context) ([]model.Product, error) {
	products, err := s.store.Products(ctx)
	if err != nil {
		return nil, fmt.Errorf("read products: %w", err)
	}
	slices.SortStableFunc(products, func(a, b model.Product) int { return byName(a.Name, b.Name) })
	return products, nil
}

func (s *catalogService) GetProduct(ctx context.Context, id int64) (*model.Product, error) {
	products, err := s.store.Products(ctx)
	if err != nil {
		return nil, fmt.Errorf("read products: %w", err)
	}
	p, ok := findProduct(products, id)
	if !ok {
		return nil, fmt.Errorf("product %d: %w", id, ErrNotFound)
	}
	return &p, nil
}

func findProduct(products []model.Product, id int64) (model.Product, bool) {
	for _, p := range products {
		if p.ID == id {
			return p, true
		}
	}
	return model.Product{}, false
}

// matchProduct finds a product by (name, size, unit): name and size ignore
// case and surrounding space, unit only ignores surrounding space.
func matchProduct(products []model.Product, name, size, unit string) (model.Product, bool) {
	unit = strings.TrimSpace(unit)
	for _, p := range products {
		if sameText(p.Name, name) && sameText(p.Size, size) && strings.TrimSpace(p.Unit) == unit {
			return p, true
		}
	}
	return model.Product{}, false
}

func newProduct(req dto.ProductRequest) (model.Product, error) {
	p := model.Product{
		Name:         strings.TrimSpace(req.Name),
		Material:     strings.TrimSpace(req.Material),
		Size:         strings.TrimSpace(req.Size),
		Unit:         strings.TrimSpace(req.Unit),
		OpeningStock: model.RoundQty(req.OpeningStock.Decimal()),
	}
	if p.Name == "" {
		return p, invalid("name", "is required")
	}
	if p.OpeningStock.IsNegative() {
		return p, invalid("opening_stock", "must not be negative")
	}
	return p, nil
}

func (s *catalogService) AddProduct(ctx context.Context, req dto.ProductRequest) (*model.Product, error) {
	p, err := newProduct(req)
	if err != nil {
		return nil, err
	}
	err = withLock(ctx, s.locker, func() error {
		products, err := s.store.Products(ctx)
		if err != nil {
			return fmt.Errorf("read products: %w", err)
		}
		if existing, ok := matchProduct(products, p.Name, p.Size, p.Unit); ok {
			return fmt.Errorf("product %q %s %s (id %d): %w", existing.Name, existing.Size, existing.Unit, existing.ID, ErrConflict)
		}
		if err := s.store.AppendProduct(ctx, &p); err != nil {
			return fmt.Errorf("append product: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	log.Info().Int64("product_id", p.ID).Str("name", p.Name).Msg("product added")
	return &p, nil
}

func (s *catalogService) EnsureProduct(ctx context.Context, req dto.ProductRequest) (*dto.EnsureResponse, error) {
	p, err := newProduct(req)
	if err != nil {
		return nil, err
	}
	var resp dto.EnsureResponse
	err = withLock(ctx, s.locker, func() error {
		products, err := s.store.Products(ctx)
		if err != nil {
			return fmt.Errorf("read products: %w", err)
		}
		if existing, ok := matchProduct(products, p.Name, p.Size, p.Unit); ok {
			resp = dto.EnsureResponse{ID: existing.ID}
			return nil
		}
		if err := s.store.AppendProduct(ctx, &p); err != nil {
			return fmt.Errorf("append product: %w", err)
		}
		resp = dto.EnsureResponse{ID: p.ID, Created: true}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if resp.Created {
		log.Info().Int64("product_id", resp.ID).Str("name", p.Name).Msg("product created on ensure")
	}
	return &resp, nil
}

// ── Customers ─────────────────────────────────────────────────────────────────

func (s *catalogService) ListCustomers(ctx context.Context) ([]model.Customer, error) {
	customers, err := s.store.Customers(ctx)
	if err != nil {
		return nil, fmt.Errorf("read customers: %w", err)
	}
	slices.SortStableFunc(customers, func(a, b model.Customer) int { return byName(a.Name, b.Name) })
	return customers, nil
}

func (s *catalogService) AddCustomer(ctx context.Context, req dto.PartyRequest) (*model.Customer, error) {
	c := model.Customer{
		Name:    strings.TrimSpace(req.Name),
		Phone:   strings.TrimSpace(req.Phone),
		Address: strings.TrimSpace(req.Address),
	}
	if c.Name == "" {
		return nil, invalid("name", "is required")
	}
	err := withLock(ctx, s.locker, func() error {
		customers, err := s.store.Customers(ctx)
		if err != nil {
			return fmt.Errorf("read customers: %w", err)
		}
		for _, existing := range customers {
			if sameText(existing.Name, c.Name) {
				return fmt.Errorf("customer %q: %w", existing.Name, ErrConflict)
			}
		}
		if err := s.store.AppendCustomer(ctx, &c); err != nil {
			return fmt.Errorf("append customer: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	log.Info().Int64("customer_id", c.ID).Msg("customer added")
	return &c, nil
}

// EnsureCustomerByName resolves a customer by name only; phone and address
// are stored when the row is created and ignored otherwise.
func (s *catalogService) EnsureCustomerByName(ctx context.Context, req dto.PartyRequest) (*dto.EnsureResponse, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, invalid("name", "is required")
	}
	var resp dto.EnsureResponse
	err := withLock(ctx, s.locker, func() error {
		customers, err := s.store.Customers(ctx)
		if err != nil {
			return fmt.Errorf("read customers: %w", err)
		}
		for _, existing := range customers {
			if sameText(existing.Name, name) {
				resp = dto.EnsureResponse{ID: existing.ID}
				return nil
			}
		}
		c := model.Customer{
			Name:    name,
			Phone:   strings.TrimSpace(req.Phone),
			Address: strings.TrimSpace(req.Address),
		}
		if err := s.store.AppendCustomer(ctx, &c); err != nil {
			return fmt.Errorf("append customer: %w", err)
		}
		resp = dto.EnsureResponse{ID: c.ID, Created: true}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

// ── Suppliers ─────────────────────────────────────────────────────────────────

func (s *catalogService) ListSuppliers(ctx context.Context) ([]model.Supplier, error) {
	suppliers, err := s.store.Suppliers(ctx)
	if err != nil {
		return nil, fmt.Errorf("read suppliers: %w", err)
	}
	slices.SortStableFunc(suppliers, func(a, b model.Supplier) int { return byName(a.Name, b.Name) })
	return suppliers, nil
}

func (s *catalogService) AddSupplier(ctx context.Context, req dto.PartyRequest) (*model.Supplier, error) {
	sp := model.Supplier{
		Name:    strings.TrimSpace(req.Name),
		Phone:   strings.TrimSpace(req.Phone),
		Address: strings.TrimSpace(req.Address),
	}
	if sp.Name == "" {
		return nil, invalid("name", "is required")
	}
	err := withLock(ctx, s.locker, func() error {
		suppliers, err := s.store.Suppliers(ctx)
		if err != nil {
			return fmt.Errorf("read suppliers: %w", err)
		}
		for _, existing := range suppliers {
			if sameText(existing.Name, sp.Name) {
				return fmt.Errorf("supplier %q: %w", existing.Name, ErrConflict)
			}
		}
		if err := s.store.AppendSupplier(ctx, &sp); err != nil {
			return fmt.Errorf("append supplier: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	log.Info().Int64("supplier_id", sp.ID).Msg("supplier added")
	return &sp, nil
}

// EnsureSupplierByName resolves a supplier by name only; phone and address
// are stored when the row is created and ignored otherwise.
func (s *catalogService) EnsureSupplierByName(ctx context.Context, req dto.PartyRequest) (*dto.EnsureResponse, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, invalid("name", "is required")
	}
	var resp dto.EnsureResponse
	err := withLock(ctx, s.locker, func() error {
		suppliers, err := s.store.Suppliers(ctx)
		if err != nil {
			return fmt.Errorf("read suppliers: %w", err)
		}
		for _, existing := range suppliers {
			if sameText(existing.Name, name) {
				resp = dto.EnsureResponse{ID: existing.ID}
				return nil
			}
		}
		sp := model.Supplier{
			Name:    name,
			Phone:   strings.TrimSpace(req.Phone),
			Address: strings.TrimSpace(req.Address),
		}
		if err := s.store.AppendSupplier(ctx, &sp); err != nil {
			return fmt.Errorf("append supplier: %w", err)
		}
		resp = dto.EnsureResponse{ID: sp.ID, Created: true}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &resp, nil
}
