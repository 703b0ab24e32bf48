package service

import (
	"context"
	"errors"
	"time"

	"kitchenledger/internal/dto"
	"kitchenledger/internal/model"
	"kitchenledger/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// FeedLimit caps how many notifications a feed returns.
const FeedLimit = 20

// RoleAdmin may delete any notification.
const RoleAdmin = "admin"

// Requester is the caller identity injected by the auth middleware.
type Requester struct {
	ID   uuid.UUID
	Role string
}

// NotificationService persists notifications and manages their read/delete lifecycle.
type NotificationService interface {
	// Create stores an unread notification; a nil target broadcasts it.
	Create(ctx context.Context, kind, title, message string, target *uuid.UUID) (*model.Notification, error)
	ListFor(ctx context.Context, userID uuid.UUID) ([]dto.NotificationResponse, error)
	MarkRead(ctx context.Context, id, requesterID uuid.UUID) error
	Delete(ctx context.Context, id uuid.UUID, requester Requester) error
	// ExistsSince reports whether a notification titled title was created at or after since.
	ExistsSince(ctx context.Context, title string, since time.Time) (bool, error)
}

type notificationService struct {
	repo repository.NotificationRepository
}

func NewNotificationService(repo repository.NotificationRepository) NotificationService {
	return &notificationService{repo: repo}
}

func (s *notificationService) Create(ctx context.Context, kind, title, message string, target *uuid.UUID) (*model.Notification, error) {
	if title == "" || message == "" {
		return nil, validationf("notification title and message are required")
	}
	n := &model.Notification{
		Type:     kind,
		Title:    title,
		Message:  message,
		TargetID: target,
		Status:   model.NotificationUnread,
	}
	if err := s.repo.Create(ctx, n); err != nil {
		return nil, err
	}
	return n, nil
}

func (s *notificationService) ListFor(ctx context.Context, userID uuid.UUID) ([]dto.NotificationResponse, error) {
	rows, err := s.repo.ListFor(ctx, userID, FeedLimit)
	if err != nil {
		return nil, err
	}
	out := make([]dto.NotificationResponse, 0, len(rows))
	for i := range rows {
		out = append(out, notificationToResponse(&rows[i]))
	}
	return out, nil
}

func (s *notificationService) find(ctx context.Context, id uuid.UUID) (*model.Notification, error) {
	n, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFound(KindNotification, id)
		}
		return nil, err
	}
	return n, nil
}

func (s *notificationService) MarkRead(ctx context.Context, id, requesterID uuid.UUID) error {
	n, err := s.find(ctx, id)
	if err != nil {
		return err
	}
	if n.TargetID != nil && *n.TargetID != requesterID {
		return ErrForbidden
	}
	if n.Status == model.NotificationRead {
		return nil
	}
	return s.repo.UpdateStatus(ctx, id, model.NotificationRead)
}

func (s *notificationService) Delete(ctx context.Context, id uuid.UUID, requester Requester) error {
	n, err := s.find(ctx, id)
	if err != nil {
		return err
	}
	allowed := n.Broadcast() || *n.TargetID == requester.ID || requester.Role == RoleAdmin
	if !allowed {
		return ErrForbidden
	}
	return s.repo.Delete(ctx, id)
}

func (s *notificationService) ExistsSince(ctx context.Context, title string, since time.Time) (bool, error) {
	return s.repo.ExistsWithTitleSince(ctx, title, since)
}

func notificationToResponse(n *model.Notification) dto.NotificationResponse {
	var target *string
	if n.TargetID != nil {
		t := n.TargetID.String()
		target = &t
	}
	return dto.NotificationResponse{
		ID:        n.ID.String(),
		Type:      n.Type,
		Title:     n.Title,
		Message:   n.Message,
		TargetID:  target,
		Status:    n.Status,
		CreatedAt: n.CreatedAt.Format(time.RFC3339),
	}
}
