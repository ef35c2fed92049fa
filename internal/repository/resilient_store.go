package repository

import (
	"context"
	"errors"

	"tileledger/internal/infra"
	"tileledger/internal/model"
)

// resilientStore runs every call of the inner store through a Retrier
// (bounded exponential backoff behind a circuit breaker).
type resilientStore struct {
	inner   Store
	retrier *infra.Retrier
}

// NewResilientStore wraps inner with retries. Schema errors are not retried.
func NewResilientStore(inner Store, retrier *infra.Retrier) Store {
	retrier.Permanent = func(err error) bool {
		return errors.Is(err, ErrSchemaMismatch) || errors.Is(err, ErrUnknownTable)
	}
	return &resilientStore{inner: inner, retrier: retrier}
}

func retryRead[T any](ctx context.Context, r *resilientStore, op string, load func(context.Context) ([]T, error)) ([]T, error) {
	var rows []T
	err := r.retrier.Do(ctx, op, func() error {
		var err error
		rows, err = load(ctx)
		return err
	})
	return rows, err
}

func (r *resilientStore) EnsureSchema(ctx context.Context) error {
	return r.retrier.Do(ctx, "ensure_schema", func() error { return r.inner.EnsureSchema(ctx) })
}

func (r *resilientStore) Products(ctx context.Context) ([]model.Product, error) {
	return retryRead(ctx, r, "read_products", r.inner.Products)
}

func (r *resilientStore) Customers(ctx context.Context) ([]model.Customer, error) {
	return retryRead(ctx, r, "read_customers", r.inner.Customers)
}

func (r *resilientStore) Suppliers(ctx context.Context) ([]model.Supplier, error) {
	return retryRead(ctx, r, "read_suppliers", r.inner.Suppliers)
}

func (r *resilientStore) StockMoves(ctx context.Context) ([]model.StockMove, error) {
	return retryRead(ctx, r, "read_stock_moves", r.inner.StockMoves)
}

func (r *resilientStore) Payments(ctx context.Context) ([]model.Payment, error) {
	return retryRead(ctx, r, "read_payments", r.inner.Payments)
}

func (r *resilientStore) Users(ctx context.Context) ([]model.User, error) {
	return retryRead(ctx, r, "read_users", r.inner.Users)
}

func (r *resilientStore) AppendProduct(ctx context.Context, p *model.Product) error {
	return r.retrier.Do(ctx, "append_product", func() error { return r.inner.AppendProduct(ctx, p) })
}

func (r *resilientStore) AppendCustomer(ctx context.Context, c *model.Customer) error {
	return r.retrier.Do(ctx, "append_customer", func() error { return r.inner.AppendCustomer(ctx, c) })
}

func (r *resilientStore) AppendSupplier(ctx context.Context, s *model.Supplier) error {
	return r.retrier.Do(ctx, "append_supplier", func() error { return r.inner.AppendSupplier(ctx, s) })
}

func (r *resilientStore) AppendStockMove(ctx context.Context, m *model.StockMove) error {
	return r.retrier.Do(ctx, "append_stock_move", func() error { return r.inner.AppendStockMove(ctx, m) })
}

func (r *resilientStore) AppendPayment(ctx context.Context, p *model.Payment) error {
	return r.retrier.Do(ctx, "append_payment", func() error { return r.inner.AppendPayment(ctx, p) })
}

func (r *resilientStore) AppendUser(ctx context.Context, u *model.User) error {
	return r.retrier.Do(ctx, "append_user", func() error { return r.inner.AppendUser(ctx, u) })
}

// Ping is not retried: health checks report the state as it is.
func (r *resilientStore) Ping(ctx context.Context) error { return r.inner.Ping(ctx) }

func (r *resilientStore) Close() error { return r.inner.Close() }
