package repository

import (
	"context"

	"tileledger/internal/infra"
	"tileledger/internal/model"

	"github.com/rs/zerolog/log"
)

// cachedStore serves table reads from a short-TTL cache and drops a table's
// entry right after every append to it. Cache failures degrade to a direct
// read; they never fail the call.
type cachedStore struct {
	Store
	cache infra.Cache
}

// NewCachedStore wraps inner with read caching.
func NewCachedStore(inner Store, cache infra.Cache) Store {
	return &cachedStore{Store: inner, cache: cache}
}

func cacheKey(t Table) string { return "table:" + string(t) }

func cachedRead[T any](ctx context.Context, c *cachedStore, t Table, load func(context.Context) ([]T, error)) ([]T, error) {
	var rows []T
	hit, err := c.cache.Get(ctx, cacheKey(t), &rows)
	if err != nil {
		log.Warn().Err(err).Str("table", string(t)).Msg("cache read failed")
	}
	if hit && err == nil {
		return rows, nil
	}

	rows, err = load(ctx)
	if err != nil {
		return nil, err
	}
	if err := c.cache.Set(ctx, cacheKey(t), rows); err != nil {
		log.Warn().Err(err).Str("table", string(t)).Msg("cache write failed")
	}
	return rows, nil
}

// invalidate runs after a successful append. The row is already stored, so a
// failed delete is logged and the stale entry simply ages out.
func (c *cachedStore) invalidate(ctx context.Context, t Table) {
	if err := c.cache.Delete(ctx, cacheKey(t)); err != nil {
		log.Warn().Err(err).Str("table", string(t)).Msg("cache invalidation failed")
	}
}

func (c *cachedStore) Products(ctx context.Context) ([]model.Product, error) {
	return cachedRead(ctx, c, TableProducts, c.Store.Products)
}

func (c *cachedStore) Customers(ctx context.Context) ([]model.Customer, error) {
	return cachedRead(ctx, c, TableCustomers, c.Store.Customers)
}

func (c *cachedStore) Suppliers(ctx context.Context) ([]model.Supplier, error) {
	return cachedRead(ctx, c, TableSuppliers, c.Store.Suppliers)
}

func (c *cachedStore) StockMoves(ctx context.Context) ([]model.StockMove, error) {
	return cachedRead(ctx, c, TableStockMoves, c.Store.StockMoves)
}

func (c *cachedStore) Payments(ctx context.Context) ([]model.Payment, error) {
	return cachedRead(ctx, c, TablePayments, c.Store.Payments)
}

func (c *cachedStore) Users(ctx context.Context) ([]model.User, error) {
	return cachedRead(ctx, c, TableUsers, c.Store.Users)
}

func (c *cachedStore) AppendProduct(ctx context.Context, p *model.Product) error {
	if err := c.Store.AppendProduct(ctx, p); err != nil {
		return err
	}
	c.invalidate(ctx, TableProducts)
	return nil
}

func (c *cachedStore) AppendCustomer(ctx context.Context, cu *model.Customer) error {
	if err := c.Store.AppendCustomer(ctx, cu); err != nil {
		return err
	}
	c.invalidate(ctx, TableCustomers)
	return nil
}

func (c *cachedStore) AppendSupplier(ctx context.Context, s *model.Supplier) error {
	if err := c.Store.AppendSupplier(ctx, s); err != nil {
		return err
	}
	c.invalidate(ctx, TableSuppliers)
	return nil
}

func (c *cachedStore) AppendStockMove(ctx context.Context, m *model.StockMove) error {
	if err := c.Store.AppendStockMove(ctx, m); err != nil {
		return err
	}
	c.invalidate(ctx, TableStockMoves)
	return nil
}

func (c *cachedStore) AppendPayment(ctx context.Context, p *model.Payment) error {
	if err := c.Store.AppendPayment(ctx, p); err != nil {
		return err
	}
	c.invalidate(ctx, TablePayments)
	return nil
}

func (c *cachedStore) AppendUser(ctx context.Context, u *model.User) error {
	if err := c.Store.AppendUser(ctx, u); err != nil {
		return err
	}
	c.invalidate(ctx, TableUsers)
	return nil
}
