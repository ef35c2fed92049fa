package repository

import (
	"context"
	"fmt"

	"tileledger/internal/model"

	"gorm.io/gorm"
)

// gormStore backs the ledger with a SQL database (postgres or sqlite).
// IDs are assigned by the database.
type gormStore struct{ db *gorm.DB }

func NewGormStore(db *gorm.DB) Store {
	return &gormStore{db: db}
}

// EnsureSchema creates missing tables and columns. It is idempotent.
func (r *gormStore) EnsureSchema(ctx context.Context) error {
	if err := r.db.WithContext(ctx).AutoMigrate(
		&model.Product{},
		&model.Customer{},
		&model.Supplier{},
		&model.StockMove{},
		&model.Payment{},
		&model.User{},
	); err != nil {
		return fmt.Errorf("AutoMigrate: %w", err)
	}
	return nil
}

func (r *gormStore) Products(ctx context.Context) ([]model.Product, error) {
	var out []model.Product
	err := r.db.WithContext(ctx).Order("id").Find(&out).Error
	return out, err
}

func (r *gormStore) Customers(ctx context.Context) ([]model.Customer, error) {
	var out []model.Customer
	err := r.db.WithContext(ctx).Order("id").Find(&out).Error
	return out, err
}

func (r *gormStore) Suppliers(ctx context.Context) ([]model.Supplier, error) {
	var out []model.Supplier
	err := r.db.WithContext(ctx).Order("id").Find(&out).Error
	return out, err
}

func (r *gormStore) StockMoves(ctx context.Context) ([]model.StockMove, error) {
	var out []model.StockMove
	err := r.db.WithContext(ctx).Order("id").Find(&out).Error
	return out, err
}

func (r *gormStore) Payments(ctx context.Context) ([]model.Payment, error) {
	var out []model.Payment
	err := r.db.WithContext(ctx).Order("id").Find(&out).Error
	return out, err
}

func (r *gormStore) Users(ctx context.Context) ([]model.User, error) {
	var out []model.User
	err := r.db.WithContext(ctx).Order("id").Find(&out).Error
	return out, err
}

func (r *gormStore) AppendProduct(ctx context.Context, p *model.Product) error {
	p.ID = 0
	return r.db.WithContext(ctx).Create(p).Error
}

func (r *gormStore) AppendCustomer(ctx context.Context, c *model.Customer) error {
	c.ID = 0
	return r.db.WithContext(ctx).Create(c).Error
}

func (r *gormStore) AppendSupplier(ctx context.Context, s *model.Supplier) error {
	s.ID = 0
	return r.db.WithContext(ctx).Create(s).Error
}

func (r *gormStore) AppendStockMove(ctx context.Context, m *model.StockMove) error {
	m.ID = 0
	return r.db.WithContext(ctx).Create(m).Error
}

func (r *gormStore) AppendPayment(ctx context.Context, p *model.Payment) error {
	p.ID = 0
	return r.db.WithContext(ctx).Create(p).Error
}

func (r *gormStore) AppendUser(ctx context.Context, u *model.User) error {
	u.ID = 0
	return r.db.WithContext(ctx).Create(u).Error
}

func (r *gormStore) Ping(ctx context.Context) error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func (r *gormStore) Close() error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
