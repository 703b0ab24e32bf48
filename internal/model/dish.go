package model

import (
	"time"

	"kitchenledger/internal/units"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Dish is a sellable menu entry with its recipe.
type Dish struct {
	ID        uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Name      string          `gorm:"uniqueIndex;not null"`
	Category  string          `gorm:"index;not null"`
	Price     decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	CreatedAt time.Time
	UpdatedAt time.Time

	Recipe []RecipeLine `gorm:"foreignKey:DishID;constraint:OnDelete:CASCADE"`
}

func (Dish) TableName() string { return "dishes" }

// RecipeLine is the amount of one ingredient a single serving consumes.
// IngredientName is a snapshot taken when the recipe was written; the
// referenced InventoryItem may have been deleted since, in which case
// InventoryItem stays nil after preloading.
type RecipeLine struct {
	ID               uuid.UUID  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	DishID           uuid.UUID  `gorm:"type:uuid;not null;index"`
	InventoryItemID  uuid.UUID  `gorm:"type:uuid;not null;index"`
	QuantityRequired float64    `gorm:"not null"`
	Unit             units.Unit `gorm:"type:varchar(8);not null"`
	IngredientName   string     `gorm:"not null"`
	// Position keeps recipe order stable across loads.
	Position int `gorm:"not null;default:0"`

	InventoryItem *InventoryItem `gorm:"foreignKey:InventoryItemID;constraint:false"`
}

func (RecipeLine) TableName() string { return "recipe_lines" }
