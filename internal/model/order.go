package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Order is an immutable sale and the system of record for revenue.
type Order struct {
	ID          uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	OrderNumber int64           `gorm:"uniqueIndex;not null"`
	TotalAmount decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	SoldBy      uuid.UUID       `gorm:"type:uuid;not null;index"`
	CreatedAt   time.Time       `gorm:"index"`

	Lines []OrderLine `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
}

func (Order) TableName() string { return "orders" }

// OrderLine snapshots one sold unit of a dish. Price is copied at sale time
// and does not follow later menu price changes.
type OrderLine struct {
	ID       uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	OrderID  uuid.UUID       `gorm:"type:uuid;not null;index"`
	DishID   uuid.UUID       `gorm:"type:uuid;not null;index"`
	DishName string          `gorm:"not null"`
	Price    decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	Position int             `gorm:"not null;default:0"`
}

func (OrderLine) TableName() string { return "order_lines" }

// SequenceCounter holds the last value handed out for a named sequence.
type SequenceCounter struct {
	Name  string `gorm:"primaryKey"`
	Value int64  `gorm:"not null"`
}

func (SequenceCounter) TableName() string { return "sequence_counters" }
