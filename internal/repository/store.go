package repository

import (
	"context"
	"errors"

	"tileledger/internal/model"
)

var (
	// ErrSchemaMismatch is returned by EnsureSchema when an existing table's
	// header does not match the expected column list. The table is never rewritten.
	ErrSchemaMismatch = errors.New("repository: table header mismatch")
	// ErrUnknownTable is returned when a table name is not part of the schema.
	ErrUnknownTable = errors.New("repository: unknown table")
)

// Store is the row store the ledger is folded from. Fetches return every row
// of a table in id order; appends assign the new row's ID before returning.
// Rows are never updated or deleted.
type Store interface {
	EnsureSchema(ctx context.Context) error

	Products(ctx context.Context) ([]model.Product, error)
	Customers(ctx context.Context) ([]model.Customer, error)
	Suppliers(ctx context.Context) ([]model.Supplier, error)
	StockMoves(ctx context.Context) ([]model.StockMove, error)
	Payments(ctx context.Context) ([]model.Payment, error)
	Users(ctx context.Context) ([]model.User, error)

	AppendProduct(ctx context.Context, p *model.Product) error
	AppendCustomer(ctx context.Context, c *model.Customer) error
	AppendSupplier(ctx context.Context, s *model.Supplier) error
	AppendStockMove(ctx context.Context, m *model.StockMove) error
	AppendPayment(ctx context.Context, p *model.Payment) error
	AppendUser(ctx context.Context, u *model.User) error

	Ping(ctx context.Context) error
	Close() error
}
