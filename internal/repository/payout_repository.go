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

var ErrPayoutNotFound = errors.New("payout not found")

// PayoutRepository отвечает за выплаты продавцам после релиза escrow.
type PayoutRepository struct {
	db *sqlx.DB
}

// NewPayoutRepository создаёт экземпляр репозитория.
func NewPayoutRepository(db *sqlx.DB) *PayoutRepository {
	return &PayoutRepository{db: db}
}

// Create создаёт запись о выплате.
func (r *PayoutRepository) Create(ctx context.Context, p *models.Payout) error {
	if err := r.db.QueryRowxContext(ctx, `
		INSERT INTO payouts (seller_id, order_id, amount, status)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at
	`, p.SellerID, p.OrderID, p.Amount, p.Status).Scan(&p.ID, &p.CreatedAt); err != nil {
		return fmt.Errorf("payout repository: create %w", err)
	}
	return nil
}

// GetByID возвращает выплату по идентификатору.
func (r *PayoutRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Payout, error) {
	return common.GetByID[models.Payout](ctx, r.db, "payouts", id, ErrPayoutNotFound)
}

// ListBySeller возвращает выплаты продавца.
func (r *PayoutRepository) ListBySeller(ctx context.Context, sellerID uuid.UUID, limit, offset int) ([]models.Payout, error) {
	var payouts []models.Payout
	err := r.db.SelectContext(ctx, &payouts, `
		SELECT * FROM payouts WHERE seller_id = $1
		ORDER BY created_at DESC LIMIT $2 OFFSET $3
	`, sellerID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("payout repository: list by seller %w", err)
	}
	return payouts, nil
}

// UpdateStatus записывает новый статус выплаты.
func (r *PayoutRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status string) error {
	result, err := r.db.ExecContext(ctx, `
		UPDATE payouts SET status = $2 WHERE id = $1
	`, id, status)
	if err != nil {
		return fmt.Errorf("payout repository: update status %w", err)
	}
	return requireRow(result, ErrPayoutNotFound)
}

// TotalReleasedBySeller возвращает сумму всех выплат продавца.
func (r *PayoutRepository) TotalReleasedBySeller(ctx context.Context, sellerID uuid.UUID) (float64, error) {
	var total float64
	err := r.db.GetContext(ctx, &total, `
		SELECT COALESCE(SUM(amount), 0) FROM payouts WHERE seller_id = $1
	`, sellerID)
	if err != nil {
		return 0, fmt.Errorf("payout repository: total by seller %w", err)
	}
	return total, nil
}
