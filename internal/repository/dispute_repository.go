package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/fairprice/fairprice-backend/internal/models"
	"github.com/fairprice/fairprice-backend/internal/repository/common"
)

var ErrDisputeNotFound = errors.New("dispute not found")

// DisputeRepository отвечает за споры по заказам.
type DisputeRepository struct {
	db *sqlx.DB
}

// NewDisputeRepository создаёт экземпляр репозитория.
func NewDisputeRepository(db *sqlx.DB) *DisputeRepository {
	return &DisputeRepository{db: db}
}

// CreateWithFreeze создаёт спор, замораживает escrow родительского заказа и
// кладёт обращение во входящие администратора — всё одной транзакцией.
func (r *DisputeRepository) CreateWithFreeze(ctx context.Context, d *models.Dispute, inbox *models.SupportMessage) error {
	return common.WithTransaction(ctx, r.db, func(tx *sqlx.Tx) error {
		if err := tx.QueryRowxContext(ctx, `
			INSERT INTO disputes (order_id, buyer_id, buyer_name, buyer_email, seller_id, seller_name,
			                      product_name, amount, reason, description, status)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
			RETURNING id, created_at
		`, d.OrderID, d.BuyerID, d.BuyerName, d.BuyerEmail, d.SellerID, d.SellerName,
			d.ProductName, d.Amount, d.Reason, d.Description, d.Status,
		).Scan(&d.ID, &d.CreatedAt); err != nil {
			return fmt.Errorf("dispute repository: create %w", err)
		}

		result, err := tx.ExecContext(ctx, `
			UPDATE orders SET escrow_status = $2, updated_at = NOW() WHERE id = $1
		`, d.OrderID, models.EscrowStatusDisputed)
		if err != nil {
			return fmt.Errorf("dispute repository: freeze escrow %w", err)
		}
		if err := requireRow(result, ErrOrderNotFound); err != nil {
			return err
		}

		if err := tx.QueryRowxContext(ctx, `
			INSERT INTO support_messages (user_id, subject, body, order_id, status)
			VALUES ($1, $2, $3, $4, $5)
			RETURNING id, created_at
		`, inbox.UserID, inbox.Subject, inbox.Body, inbox.OrderID, inbox.Status,
		).Scan(&inbox.ID, &inbox.CreatedAt); err != nil {
			return fmt.Errorf("dispute repository: inbox entry %w", err)
		}

		return nil
	})
}

// ResolveWithEscrow закрывает спор и одной транзакцией выставляет итоговый
// статус escrow родительского заказа.
func (r *DisputeRepository) ResolveWithEscrow(ctx context.Context, id uuid.UUID, status string, adminNotes *string, escrowStatus string) (*models.Dispute, error) {
	var d models.Dispute
	err := common.WithTransaction(ctx, r.db, func(tx *sqlx.Tx) error {
		now := time.Now().UTC()
		if err := tx.QueryRowxContext(ctx, `
			UPDATE disputes
			SET status = $2, admin_notes = COALESCE($3, admin_notes), resolved_at = $4
			WHERE id = $1
			RETURNING id, order_id, buyer_id, buyer_name, buyer_email, seller_id, seller_name,
			          product_name, amount, reason, description, status, admin_notes, created_at, resolved_at
		`, id, status, adminNotes, now).StructScan(&d); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return ErrDisputeNotFound
			}
			return fmt.Errorf("dispute repository: resolve %w", err)
		}

		result, err := tx.ExecContext(ctx, `
			UPDATE orders SET escrow_status = $2, updated_at = NOW() WHERE id = $1
		`, d.OrderID, escrowStatus)
		if err != nil {
			return fmt.Errorf("dispute repository: escrow %w", err)
		}
		return requireRow(result, ErrOrderNotFound)
	})
	if err != nil {
		return nil, err
	}
	return &d, nil
}

// UpdateStatus переводит спор в промежуточный административный статус.
func (r *DisputeRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status string, adminNotes *string) error {
	result, err := r.db.ExecContext(ctx, `
		UPDATE disputes SET status = $2, admin_notes = COALESCE($3, admin_notes) WHERE id = $1
	`, id, status, adminNotes)
	if err != nil {
		return fmt.Errorf("dispute repository: update status %w", err)
	}
	return requireRow(result, ErrDisputeNotFound)
}

// GetByID возвращает спор по идентификатору.
func (r *DisputeRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Dispute, error) {
	return common.GetByID[models.Dispute](ctx, r.db, "disputes", id, ErrDisputeNotFound)
}

// GetOpenByOrderID возвращает незакрытый спор по заказу, если он есть.
func (r *DisputeRepository) GetOpenByOrderID(ctx context.Context, orderID uuid.UUID) (*models.Dispute, error) {
	var d models.Dispute
	err := r.db.GetContext(ctx, &d, `
		SELECT * FROM disputes
		WHERE order_id = $1 AND status NOT IN ($2, $3)
		ORDER BY created_at DESC LIMIT 1
	`, orderID, models.DisputeStatusResolvedRefund, models.DisputeStatusResolvedRelease)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrDisputeNotFound
		}
		return nil, fmt.Errorf("dispute repository: get open by order %w", err)
	}
	return &d, nil
}

// ListByBuyer возвращает споры покупателя.
func (r *DisputeRepository) ListByBuyer(ctx context.Context, buyerID uuid.UUID, limit, offset int) ([]models.Dispute, error) {
	var disputes []models.Dispute
	err := r.db.SelectContext(ctx, &disputes, `
		SELECT * FROM disputes WHERE buyer_id = $1
		ORDER BY created_at DESC LIMIT $2 OFFSET $3
	`, buyerID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("dispute repository: list by buyer %w", err)
	}
	return disputes, nil
}

// ListOpen возвращает незакрытые споры для панели администратора.
func (r *DisputeRepository) ListOpen(ctx context.Context, limit, offset int) ([]models.Dispute, error) {
	var disputes []models.Dispute
	err := r.db.SelectContext(ctx, &disputes, `
		SELECT * FROM disputes WHERE status NOT IN ($1, $2)
		ORDER BY created_at DESC LIMIT $3 OFFSET $4
	`, models.DisputeStatusResolvedRefund, models.DisputeStatusResolvedRelease, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("dispute repository: list open %w", err)
	}
	return disputes, nil
}
