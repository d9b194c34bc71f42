package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/fairprice/fairprice-backend/internal/models"
	"github.com/fairprice/fairprice-backend/internal/repository/common"
)

var ErrSupportMessageNotFound = errors.New("support message not found")

// SupportRepository отвечает за входящие обращения в поддержку.
type SupportRepository struct {
	db *sqlx.DB
}

// NewSupportRepository создаёт экземпляр репозитория.
func NewSupportRepository(db *sqlx.DB) *SupportRepository {
	return &SupportRepository{db: db}
}

// Create сохраняет обращение.
func (r *SupportRepository) Create(ctx context.Context, m *models.SupportMessage) error {
	if err := r.db.QueryRowxContext(ctx, `
		INSERT INTO support_messages (user_id, subject, body, order_id, status)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at
	`, m.UserID, m.Subject, m.Body, m.OrderID, m.Status).Scan(&m.ID, &m.CreatedAt); err != nil {
		return fmt.Errorf("support repository: create %w", err)
	}
	return nil
}

// GetByID возвращает обращение по идентификатору.
func (r *SupportRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.SupportMessage, error) {
	return common.GetByID[models.SupportMessage](ctx, r.db, "support_messages", id, ErrSupportMessageNotFound)
}

// List возвращает обращения для панели администратора, опционально по статусу.
func (r *SupportRepository) List(ctx context.Context, status *string, limit, offset int) ([]models.SupportMessage, error) {
	var messages []models.SupportMessage
	var err error
	if status != nil {
		err = r.db.SelectContext(ctx, &messages, `
			SELECT * FROM support_messages WHERE status = $1
			ORDER BY created_at DESC LIMIT $2 OFFSET $3
		`, *status, limit, offset)
	} else {
		err = r.db.SelectContext(ctx, &messages, `
			SELECT * FROM support_messages
			ORDER BY created_at DESC LIMIT $1 OFFSET $2
		`, limit, offset)
	}
	if err != nil {
		return nil, fmt.Errorf("support repository: list %w", err)
	}
	return messages, nil
}

// UpdateStatus записывает новый статус обращения.
func (r *SupportRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status string) error {
	result, err := r.db.ExecContext(ctx, `
		UPDATE support_messages SET status = $2 WHERE id = $1
	`, id, status)
	if err != nil {
		return fmt.Errorf("support repository: update status %w", err)
	}
	return requireRow(result, ErrSupportMessageNotFound)
}
