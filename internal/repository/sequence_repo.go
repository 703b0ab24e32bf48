package repository

import (
	"gorm.io/gorm"
)

type SequenceRepository interface {
	// NextTx increments the named counter and returns the new value. A counter
	// that does not exist yet is created holding seed, and seed is returned.
	NextTx(tx *gorm.DB, name string, seed int64) (int64, error)
}

type sequenceRepo struct{}

func NewSequenceRepository() SequenceRepository { return &sequenceRepo{} }

// Creation and increment are one statement, so two first allocations cannot
// both observe an empty table. The row lock taken by the upsert serialises
// callers until their transaction ends, and a rolled back transaction
// returns its value to the counter.
const nextValueSQL = `
INSERT INTO sequence_counters (name, value) VALUES (?, ?)
ON CONFLICT (name) DO UPDATE SET value = sequence_counters.value + 1
RETURNING value`

func (r *sequenceRepo) NextTx(tx *gorm.DB, name string, seed int64) (int64, error) {
	var value int64
	err := tx.Raw(nextValueSQL, name, seed).Scan(&value).Error
	return value, err
}
