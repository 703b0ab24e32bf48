package service

import (
	"context"

	"kitchenledger/internal/repository"

	"gorm.io/gorm"
)

// OrderSequence is the counter name used for order numbers.
const OrderSequence = "order_number"

// DefaultOrderNumberSeed is the first order number handed out on a fresh database.
const DefaultOrderNumberSeed int64 = 1001

// SequenceAllocator hands out strictly increasing numbers from one named counter.
type SequenceAllocator interface {
	// Next allocates in its own transaction.
	Next(ctx context.Context) (int64, error)
	// NextTx allocates inside the caller's transaction; the value is released
	// again if that transaction rolls back.
	NextTx(tx *gorm.DB) (int64, error)
}

type sequenceAllocator struct {
	repo repository.SequenceRepository
	txm  repository.Transactor
	name string
	seed int64
}

func NewSequenceAllocator(repo repository.SequenceRepository, txm repository.Transactor, name string, seed int64) SequenceAllocator {
	if seed <= 0 {
		seed = DefaultOrderNumberSeed
	}
	return &sequenceAllocator{repo: repo, txm: txm, name: name, seed: seed}
}

func (a *sequenceAllocator) Next(ctx context.Context) (int64, error) {
	var v int64
	err := a.txm.Transaction(ctx, func(tx *gorm.DB) error {
		var err error
		v, err = a.NextTx(tx)
		return err
	})
	return v, err
}

func (a *sequenceAllocator) NextTx(tx *gorm.DB) (int64, error) {
	return a.repo.NextTx(tx, a.name, a.seed)
}
