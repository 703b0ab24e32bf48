package model

import (
	"time"

	"kitchenledger/internal/units"

	"github.com/google/uuid"
)

// Waste reasons accepted by the waste log.
const (
	WasteExpired     = "Expired"
	WasteDamaged     = "Damaged"
	WasteCookedWrong = "Cooked wrong"
	WasteDropped     = "Dropped"
	WasteOther       = "Other"
)

// WasteRecord records stock discarded outside of a sale. It is always written
// in the same transaction as the matching inventory deduction.
type WasteRecord struct {
	ID              uuid.UUID  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	InventoryItemID uuid.UUID  `gorm:"type:uuid;not null;index"`
	ItemName        string     `gorm:"not null"`
	Quantity        float64    `gorm:"not null"`
	Unit            units.Unit `gorm:"type:varchar(8);not null"`
	Reason          string     `gorm:"type:varchar(20);not null;default:'Other'"`
	LoggedBy        uuid.UUID  `gorm:"type:uuid;not null"`
	CreatedAt       time.Time
}

func (WasteRecord) TableName() string { return "waste_records" }
