package service

import (
	"context"

	"github.com/google/uuid"

	"github.com/fairprice/fairprice-backend/internal/goroutine"
	"github.com/fairprice/fairprice-backend/internal/logger"
	"github.com/fairprice/fairprice-backend/internal/models"
	"github.com/fairprice/fairprice-backend/internal/pkg/apperror"
)

// NotificationRepository описывает взаимодействие сервиса с хранилищем уведомлений.
type NotificationRepository interface {
	Create(ctx context.Context, notification *models.Notification) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Notification, error)
	ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]models.Notification, error)
	MarkAsRead(ctx context.Context, id uuid.UUID, userID uuid.UUID) error
	MarkAllAsRead(ctx context.Context, userID uuid.UUID) error
	CountUnread(ctx context.Context, userID uuid.UUID) (int, error)
}

// Pusher доставляет сохранённые уведомления подключённым клиентам.
type Pusher interface {
	BroadcastToUser(userID uuid.UUID, event string, data any) error
	BroadcastToAll(event string, data any) error
}

// NotificationService содержит бизнес-логику работы с уведомлениями.
// Сначала запись в БД, затем живая доставка: пропавшее соединение не теряет
// уведомление, оно остаётся в списке непрочитанных.
type NotificationService struct {
	repo   NotificationRepository
	pusher Pusher
}

// NewNotificationService создаёт новый сервис уведомлений.
func NewNotificationService(repo NotificationRepository, pusher Pusher) *NotificationService {
	return &NotificationService{repo: repo, pusher: pusher}
}

// Notify сохраняет уведомление и доставляет его по WebSocket.
// userID == nil означает рассылку всем пользователям.
func (s *NotificationService) Notify(ctx context.Context, userID *uuid.UUID, notifType, message string, link *string) (*models.Notification, error) {
	notification := &models.Notification{
		UserID:  userID,
		Type:    notifType,
		Message: message,
		Link:    link,
	}

	if err := s.repo.Create(ctx, notification); err != nil {
		return nil, err
	}

	if s.pusher != nil {
		goroutine.SafeGo(func() {
			var err error
			if userID != nil {
				err = s.pusher.BroadcastToUser(*userID, notifType, notification)
			} else {
				err = s.pusher.BroadcastToAll(notifType, notification)
			}
			if err != nil {
				logger.Log.Errorf("notification service: не удалось доставить уведомление %s: %v", notification.ID, err)
			}
		})
	}

	return notification, nil
}

// ListNotifications возвращает уведомления пользователя вместе с общими рассылками.
func (s *NotificationService) ListNotifications(ctx context.Context, userID uuid.UUID, limit, offset int) ([]models.Notification, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	return s.repo.ListByUser(ctx, userID, limit, offset)
}

// MarkAsRead отмечает уведомление как прочитанное.
func (s *NotificationService) MarkAsRead(ctx context.Context, id uuid.UUID, userID uuid.UUID) error {
	notification, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if notification.UserID != nil && *notification.UserID != userID {
		return apperror.ErrForbidden
	}

	return s.repo.MarkAsRead(ctx, id, userID)
}

// MarkAllAsRead отмечает все уведомления пользователя как прочитанные.
// Повторный вызов проходит без ошибки и ничего не меняет.
func (s *NotificationService) MarkAllAsRead(ctx context.Context, userID uuid.UUID) error {
	return s.repo.MarkAllAsRead(ctx, userID)
}

// CountUnread возвращает количество непрочитанных уведомлений.
func (s *NotificationService) CountUnread(ctx context.Context, userID uuid.UUID) (int, error) {
	return s.repo.CountUnread(ctx, userID)
}
