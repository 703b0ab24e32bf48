package repository

import (
	"context"

	"kitchenledger/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type DishRepository interface {
	Create(ctx context.Context, d *model.Dish) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Dish, error)
	// FindByIDs returns the distinct dishes among ids; missing ids are simply absent.
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]model.Dish, error)
	// ListWithIngredients returns every dish with its recipe and the current
	// inventory row of each ingredient (nil when deleted).
	ListWithIngredients(ctx context.Context) ([]model.Dish, error)
}

type dishRepo struct{ db *gorm.DB }

func NewDishRepository(db *gorm.DB) DishRepository { return &dishRepo{db: db} }

func recipeInOrder(db *gorm.DB) *gorm.DB { return db.Order("position ASC") }

func (r *dishRepo) Create(ctx context.Context, d *model.Dish) error {
	return r.db.WithContext(ctx).Create(d).Error
}

func (r *dishRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Dish, error) {
	var d model.Dish
	err := r.db.WithContext(ctx).Preload("Recipe", recipeInOrder).First(&d, "id = ?", id).Error
	return &d, err
}

func (r *dishRepo) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]model.Dish, error) {
	var dishes []model.Dish
	if len(ids) == 0 {
		return dishes, nil
	}
	err := r.db.WithContext(ctx).Preload("Recipe", recipeInOrder).Where("id IN ?", ids).Find(&dishes).Error
	return dishes, err
}

func (r *dishRepo) ListWithIngredients(ctx context.Context) ([]model.Dish, error) {
	var dishes []model.Dish
	err := r.db.WithContext(ctx).
		Preload("Recipe", recipeInOrder).
		Preload("Recipe.InventoryItem").
		Order("name ASC").
		Find(&dishes).Error
	return dishes, err
}
