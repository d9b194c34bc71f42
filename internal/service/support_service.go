package service

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/fairprice/fairprice-backend/internal/models"
	"github.com/fairprice/fairprice-backend/internal/pkg/apperror"
	"github.com/fairprice/fairprice-backend/internal/repository"
)

// SupportRepository описывает взаимодействие сервиса с входящими поддержки.
type SupportRepository interface {
	Create(ctx context.Context, m *models.SupportMessage) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.SupportMessage, error)
	List(ctx context.Context, status *string, limit, offset int) ([]models.SupportMessage, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status string) error
}

// SupportService содержит бизнес-логику входящих обращений.
type SupportService struct {
	repo     SupportRepository
	notifier Notifier
}

// NewSupportService создаёт сервис поддержки.
func NewSupportService(repo SupportRepository, notifier Notifier) *SupportService {
	return &SupportService{repo: repo, notifier: notifier}
}

// CreateMessage сохраняет обращение пользователя.
func (s *SupportService) CreateMessage(ctx context.Context, userID uuid.UUID, subject, body string, orderID *uuid.UUID) (*models.SupportMessage, error) {
	if subject == "" || body == "" {
		return nil, apperror.New(apperror.ErrCodeValidation, "тема и текст обращения обязательны")
	}

	msg := &models.SupportMessage{
		UserID:  userID,
		Subject: subject,
		Body:    body,
		OrderID: orderID,
		Status:  models.SupportStatusOpen,
	}
	if err := s.repo.Create(ctx, msg); err != nil {
		return nil, err
	}
	return msg, nil
}

// ListMessages возвращает обращения для панели администратора.
func (s *SupportService) ListMessages(ctx context.Context, status *string, limit, offset int) ([]models.SupportMessage, error) {
	if status != nil && *status != models.SupportStatusOpen && *status != models.SupportStatusClosed {
		return nil, apperror.New(apperror.ErrCodeValidation, "неизвестный статус обращения")
	}
	limit, offset = clampPage(limit, offset)
	return s.repo.List(ctx, status, limit, offset)
}

// CloseMessage закрывает обращение и уведомляет автора.
func (s *SupportService) CloseMessage(ctx context.Context, id uuid.UUID) (*models.SupportMessage, error) {
	msg, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrSupportMessageNotFound) {
			return nil, apperror.New(apperror.ErrCodeNotFound, "обращение не найдено")
		}
		return nil, err
	}
	if msg.Status == models.SupportStatusClosed {
		return msg, nil
	}

	if err := s.repo.UpdateStatus(ctx, id, models.SupportStatusClosed); err != nil {
		return nil, err
	}
	msg.Status = models.SupportStatusClosed

	if _, err := s.notifier.Notify(ctx, &msg.UserID, "support_closed",
		"Ваше обращение в поддержку закрыто: "+msg.Subject, nil); err != nil {
		return msg, nil
	}
	return msg, nil
}
