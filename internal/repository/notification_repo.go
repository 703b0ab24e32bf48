package repository

import (
	"context"
	"time"

	"kitchenledger/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type NotificationRepository interface {
	Create(ctx context.Context, n *model.Notification) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Notification, error)
	// ListFor returns notifications addressed to userID or broadcast,
	// unread first, then newest first.
	ListFor(ctx context.Context, userID uuid.UUID, limit int) ([]model.Notification, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status string) error
	Delete(ctx context.Context, id uuid.UUID) error
	ExistsWithTitleSince(ctx context.Context, title string, since time.Time) (bool, error)
}

type notificationRepo struct{ db *gorm.DB }

func NewNotificationRepository(db *gorm.DB) NotificationRepository {
	return &notificationRepo{db: db}
}

func (r *notificationRepo) Create(ctx context.Context, n *model.Notification) error {
	return r.db.WithContext(ctx).Create(n).Error
}

func (r *notificationRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Notification, error) {
	var n model.Notification
	err := r.db.WithContext(ctx).First(&n, "id = ?", id).Error
	return &n, err
}

func (r *notificationRepo) ListFor(ctx context.Context, userID uuid.UUID, limit int) ([]model.Notification, error) {
	var out []model.Notification
	err := r.db.WithContext(ctx).
		Where("target_id = ? OR target_id IS NULL", userID).
		Order("CASE WHEN status = 'unread' THEN 0 ELSE 1 END").
		Order("created_at DESC").
		Limit(limit).
		Find(&out).Error
	return out, err
}

func (r *notificationRepo) UpdateStatus(ctx context.Context, id uuid.UUID, status string) error {
	return r.db.WithContext(ctx).Model(&model.Notification{}).Where("id = ?", id).Update("status", status).Error
}

func (r *notificationRepo) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&model.Notification{}, "id = ?", id).Error
}

func (r *notificationRepo) ExistsWithTitleSince(ctx context.Context, title string, since time.Time) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.Notification{}).
		Where("title = ? AND created_at >= ?", title, since).
		Count(&count).Error
	return count > 0, err
}
