package model

import (
	"time"

	"github.com/google/uuid"
)

// Notification types.
const (
	NotificationMarketingSuggestion = "marketing_suggestion"
	NotificationLowStock            = "low_stock"
	NotificationShiftUpdate         = "shift_update"
	NotificationSystem              = "system"
)

// Notification statuses.
const (
	NotificationUnread = "unread"
	NotificationRead   = "read"
)

// Notification is addressed to TargetID, or broadcast to everyone when TargetID is nil.
type Notification struct {
	ID        uuid.UUID  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Type      string     `gorm:"type:varchar(30);not null"`
	Title     string     `gorm:"not null;index:idx_notifications_title_created"`
	Message   string     `gorm:"type:text;not null"`
	TargetID  *uuid.UUID `gorm:"type:uuid;index"`
	Status    string     `gorm:"type:varchar(10);not null;default:'unread'"`
	CreatedAt time.Time  `gorm:"index:idx_notifications_title_created"`
}

func (Notification) TableName() string { return "notifications" }

// Broadcast reports whether every user can see n.
func (n *Notification) Broadcast() bool { return n.TargetID == nil }
