package repository

import (
	"context"
	"errors"

	"kitchenledger/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ErrStockChanged is returned by DeductTx when the guarded decrement matched no
// row, i.e. the item vanished or no longer holds the requested quantity.
var ErrStockChanged = errors.New("inventory item changed during deduction")

type InventoryRepository interface {
	Create(ctx context.Context, item *model.InventoryItem) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.InventoryItem, error)
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]model.InventoryItem, error)
	ListAll(ctx context.Context) ([]model.InventoryItem, error)

	// Used inside transactions: callers must pass the tx instance

	// LockByIDTx loads the item with SELECT ... FOR UPDATE.
	LockByIDTx(tx *gorm.DB, id uuid.UUID) (*model.InventoryItem, error)
	// DeductTx subtracts qty, refusing to drive quantity below zero.
	DeductTx(tx *gorm.DB, id uuid.UUID, qty float64) error
}

type inventoryRepo struct{ db *gorm.DB }

func NewInventoryRepository(db *gorm.DB) InventoryRepository { return &inventoryRepo{db: db} }

func (r *inventoryRepo) Create(ctx context.Context, item *model.InventoryItem) error {
	return r.db.WithContext(ctx).Create(item).Error
}

func (r *inventoryRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.InventoryItem, error) {
	var it model.InventoryItem
	err := r.db.WithContext(ctx).First(&it, "id = ?", id).Error
	return &it, err
}

func (r *inventoryRepo) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]model.InventoryItem, error) {
	var items []model.InventoryItem
	if len(ids) == 0 {
		return items, nil
	}
	err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&items).Error
	return items, err
}

func (r *inventoryRepo) ListAll(ctx context.Context) ([]model.InventoryItem, error) {
	var items []model.InventoryItem
	err := r.db.WithContext(ctx).Order("name ASC").Find(&items).Error
	return items, err
}

func (r *inventoryRepo) LockByIDTx(tx *gorm.DB, id uuid.UUID) (*model.InventoryItem, error) {
	var it model.InventoryItem
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&it, "id = ?", id).Error
	return &it, err
}

func (r *inventoryRepo) DeductTx(tx *gorm.DB, id uuid.UUID, qty float64) error {
	res := tx.Model(&model.InventoryItem{}).
		Where("id = ? AND quantity >= ?", id, qty).
		Updates(map[string]interface{}{
			"quantity":   gorm.Expr("quantity - ?", qty),
			"updated_at": gorm.Expr("NOW()"),
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrStockChanged
	}
	return nil
}
