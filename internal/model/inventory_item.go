package model

import (
	"time"

	"kitchenledger/internal/units"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// InventoryItem is one stocked ingredient.
// Quantity is expressed in Unit (the stocking unit) and never goes negative:
// it only changes through sale/waste deductions or restocks.
type InventoryItem struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Name        string    `gorm:"not null"`
	SKU         string    `gorm:"column:sku;uniqueIndex;not null"`
	Description *string
	Quantity    float64    `gorm:"not null;default:0;check:quantity >= 0"`
	Unit        units.Unit `gorm:"type:varchar(8);not null;default:'unit'"`
	// PurchasePrice is what PurchaseQuantity of PurchaseUnit costs. NULL = unknown.
	PurchasePrice    decimal.NullDecimal `gorm:"type:decimal(12,4)"`
	PurchaseUnit     units.Unit          `gorm:"type:varchar(8);not null;default:'unit'"`
	PurchaseQuantity float64             `gorm:"not null;default:1"`
	SupplierID       *uuid.UUID          `gorm:"type:uuid;index"`
	DateReceived     *time.Time
	// ExpiresInDays is the shelf life counted from DateReceived; nil = does not expire.
	ExpiresInDays *int
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// TableName keeps the table name stable regardless of GORM pluralization rules.
func (InventoryItem) TableName() string { return "inventory_items" }

// ExpiresAt returns the expiry instant, or false if the item has no shelf life.
func (i *InventoryItem) ExpiresAt() (time.Time, bool) {
	if i.ExpiresInDays == nil || *i.ExpiresInDays <= 0 || i.DateReceived == nil {
		return time.Time{}, false
	}
	return i.DateReceived.AddDate(0, 0, *i.ExpiresInDays), true
}
