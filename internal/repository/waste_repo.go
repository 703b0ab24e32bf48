package repository

import (
	"context"

	"kitchenledger/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type WasteRepository interface {
	CreateTx(tx *gorm.DB, w *model.WasteRecord) error
	// List returns the newest waste records, optionally for one item.
	List(ctx context.Context, itemID *uuid.UUID, limit int) ([]model.WasteRecord, error)
}

type wasteRepo struct{ db *gorm.DB }

func NewWasteRepository(db *gorm.DB) WasteRepository { return &wasteRepo{db: db} }

func (r *wasteRepo) CreateTx(tx *gorm.DB, w *model.WasteRecord) error {
	return tx.Create(w).Error
}

func (r *wasteRepo) List(ctx context.Context, itemID *uuid.UUID, limit int) ([]model.WasteRecord, error) {
	if limit < 1 || limit > 500 {
		limit = 100
	}
	q := r.db.WithContext(ctx).Model(&model.WasteRecord{})
	if itemID != nil {
		q = q.Where("inventory_item_id = ?", *itemID)
	}
	var records []model.WasteRecord
	err := q.Order("created_at DESC").Limit(limit).Find(&records).Error
	return records, err
}
