package transaction

import (
	"context"

	"gorm.io/gorm"
)

type TransactionContextKey struct{}

func WithTx(ctx context.Context, tx *gorm.DB) context.Context {
	return context.WithValue(ctx, TransactionContextKey{}, tx)
}

type Database struct {
	db *gorm.DB
}

func (t *Database) GetTx(ctx context.Context) *gorm.DB {
	if tx, ok := ctx.Value(TransactionContextKey{}).(*gorm.DB); ok {
		return tx
	}
	return t.db
}

// Transaction runs fn with a transactional gorm handle bound to the context,
// so nested repository calls join the same transaction.
func (t *Database) Transaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return t.GetTx(ctx).WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(WithTx(ctx, tx))
	})
}

func NewDatabase(db *gorm.DB) *Database {
	return &Database{db}
}
