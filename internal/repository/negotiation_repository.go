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

var ErrNegotiationNotFound = errors.New("negotiation not found")

// NegotiationRepository отвечает за торг по цене.
type NegotiationRepository struct {
	db *sqlx.DB
}

// NewNegotiationRepository создаёт экземпляр репозитория.
func NewNegotiationRepository(db *sqlx.DB) *NegotiationRepository {
	return &NegotiationRepository{db: db}
}

// Create создаёт предложение покупателя.
func (r *NegotiationRepository) Create(ctx context.Context, n *models.NegotiationRequest) error {
	if err := r.db.QueryRowxContext(ctx, `
		INSERT INTO negotiations (product_id, customer_id, customer_name, proposed_price, message, status)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at
	`, n.ProductID, n.CustomerID, n.CustomerName, n.ProposedPrice, n.Message, n.Status,
	).Scan(&n.ID, &n.CreatedAt); err != nil {
		return fmt.Errorf("negotiation repository: create %w", err)
	}
	return nil
}

// GetByID возвращает торг вместе с перепиской.
func (r *NegotiationRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.NegotiationRequest, error) {
	n, err := common.GetByID[models.NegotiationRequest](ctx, r.db, "negotiations", id, ErrNegotiationNotFound)
	if err != nil {
		return nil, err
	}

	if err := r.db.SelectContext(ctx, &n.Messages, `
		SELECT * FROM negotiation_messages WHERE negotiation_id = $1 ORDER BY created_at
	`, id); err != nil {
		return nil, fmt.Errorf("negotiation repository: messages %w", err)
	}

	return n, nil
}

// SetCounter сохраняет контрпредложение продавца, не меняя статус торга.
func (r *NegotiationRepository) SetCounter(ctx context.Context, id uuid.UUID, price float64, message *string) error {
	result, err := r.db.ExecContext(ctx, `
		UPDATE negotiations SET counter_price = $2, counter_message = $3 WHERE id = $1
	`, id, price, message)
	if err != nil {
		return fmt.Errorf("negotiation repository: set counter %w", err)
	}
	return requireRow(result, ErrNegotiationNotFound)
}

// UpdateStatus записывает новый статус торга.
func (r *NegotiationRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status string) error {
	result, err := r.db.ExecContext(ctx, `
		UPDATE negotiations SET status = $2 WHERE id = $1
	`, id, status)
	if err != nil {
		return fmt.Errorf("negotiation repository: update status %w", err)
	}
	return requireRow(result, ErrNegotiationNotFound)
}

// AppendMessage добавляет сообщение в чат торга.
func (r *NegotiationRepository) AppendMessage(ctx context.Context, msg *models.NegotiationMessage) error {
	if err := r.db.QueryRowxContext(ctx, `
		INSERT INTO negotiation_messages (negotiation_id, sender, text)
		VALUES ($1, $2, $3)
		RETURNING id, created_at
	`, msg.NegotiationID, msg.Sender, msg.Text).Scan(&msg.ID, &msg.CreatedAt); err != nil {
		return fmt.Errorf("negotiation repository: append message %w", err)
	}
	return nil
}

// ListByCustomer возвращает торги покупателя.
func (r *NegotiationRepository) ListByCustomer(ctx context.Context, customerID uuid.UUID, limit, offset int) ([]models.NegotiationRequest, error) {
	var negotiations []models.NegotiationRequest
	err := r.db.SelectContext(ctx, &negotiations, `
		SELECT * FROM negotiations WHERE customer_id = $1
		ORDER BY created_at DESC LIMIT $2 OFFSET $3
	`, customerID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("negotiation repository: list by customer %w", err)
	}
	return negotiations, nil
}

// ListBySeller возвращает торги по товарам продавца.
func (r *NegotiationRepository) ListBySeller(ctx context.Context, sellerID uuid.UUID, limit, offset int) ([]models.NegotiationRequest, error) {
	var negotiations []models.NegotiationRequest
	err := r.db.SelectContext(ctx, &negotiations, `
		SELECT n.* FROM negotiations n
		JOIN products p ON n.product_id = p.id
		WHERE p.seller_id = $1
		ORDER BY n.created_at DESC LIMIT $2 OFFSET $3
	`, sellerID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("negotiation repository: list by seller %w", err)
	}
	return negotiations, nil
}
