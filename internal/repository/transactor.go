package repository

import (
	"context"

	"gorm.io/gorm"
)

// Transactor runs fn inside one database transaction. Returning an error from
// fn rolls back every write made through tx.
type Transactor interface {
	Transaction(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type gormTransactor struct{ db *gorm.DB }

func NewTransactor(db *gorm.DB) Transactor { return &gormTransactor{db: db} }

// Transaction executes fn inside a GORM transaction when db is available,
// or calls fn(nil) directly when db is nil (unit test mode).
func (t *gormTransactor) Transaction(ctx context.Context, fn func(tx *gorm.DB) error) error {
	if t.db == nil {
		return fn(nil)
	}
	return t.db.WithContext(ctx).Transaction(fn)
}
