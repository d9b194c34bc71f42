package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/fairprice/fairprice-backend/internal/models"
	"github.com/fairprice/fairprice-backend/internal/repository/common"
)

var ErrReturnNotFound = errors.New("return request not found")

// ReturnRepository отвечает за запросы на возврат.
type ReturnRepository struct {
	db *sqlx.DB
}

// NewReturnRepository создаёт экземпляр репозитория.
func NewReturnRepository(db *sqlx.DB) *ReturnRepository {
	return &ReturnRepository{db: db}
}

// CreateWithOrderMark создаёт запрос на возврат и одной транзакцией переводит
// родительский заказ в return_requested.
func (r *ReturnRepository) CreateWithOrderMark(ctx context.Context, req *models.ReturnRequest) error {
	return common.WithTransaction(ctx, r.db, func(tx *sqlx.Tx) error {
		if err := tx.QueryRowxContext(ctx, `
			INSERT INTO return_requests (order_id, customer_id, seller_id, reason, description, images, status)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
			RETURNING id, created_at, updated_at
		`, req.OrderID, req.CustomerID, req.SellerID, req.Reason, req.Description,
			pq.StringArray(req.Images), req.Status,
		).Scan(&req.ID, &req.CreatedAt, &req.UpdatedAt); err != nil {
			return fmt.Errorf("return repository: create %w", err)
		}

		result, err := tx.ExecContext(ctx, `
			UPDATE orders SET status = $2, updated_at = NOW() WHERE id = $1
		`, req.OrderID, models.OrderStatusReturnRequested)
		if err != nil {
			return fmt.Errorf("return repository: mark order %w", err)
		}
		return requireRow(result, ErrOrderNotFound)
	})
}

// UpdateStatusWithOrder записывает статус возврата и одной транзакцией
// применяет побочные эффекты к родительскому заказу: новый статус заказа и,
// для refunded/item_received, возврат средств по escrow.
func (r *ReturnRepository) UpdateStatusWithOrder(ctx context.Context, req *models.ReturnRequest, orderStatus string, escrowStatus *string) error {
	return common.WithTransaction(ctx, r.db, func(tx *sqlx.Tx) error {
		result, err := tx.ExecContext(ctx, `
			UPDATE return_requests
			SET status = $2, seller_notes = $3, admin_notes = $4, updated_at = NOW()
			WHERE id = $1
		`, req.ID, req.Status, req.SellerNotes, req.AdminNotes)
		if err != nil {
			return fmt.Errorf("return repository: update status %w", err)
		}
		if err := requireRow(result, ErrReturnNotFound); err != nil {
			return err
		}

		query := `UPDATE orders SET status = $2, updated_at = NOW() WHERE id = $1`
		args := []interface{}{req.OrderID, orderStatus}
		if escrowStatus != nil {
			query = `UPDATE orders SET status = $2, escrow_status = $3, updated_at = NOW() WHERE id = $1`
			args = append(args, *escrowStatus)
		}

		result, err = tx.ExecContext(ctx, query, args...)
		if err != nil {
			return fmt.Errorf("return repository: mark order %w", err)
		}
		return requireRow(result, ErrOrderNotFound)
	})
}

// GetByID возвращает запрос на возврат по идентификатору.
func (r *ReturnRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.ReturnRequest, error) {
	return common.GetByID[models.ReturnRequest](ctx, r.db, "return_requests", id, ErrReturnNotFound)
}

// GetActiveByOrderID возвращает незавершённый возврат по заказу, если он есть.
func (r *ReturnRepository) GetActiveByOrderID(ctx context.Context, orderID uuid.UUID) (*models.ReturnRequest, error) {
	var req models.ReturnRequest
	err := r.db.GetContext(ctx, &req, `
		SELECT * FROM return_requests
		WHERE order_id = $1 AND status IN ($2, $3, $4)
		ORDER BY created_at DESC LIMIT 1
	`, orderID, models.ReturnStatusPending, models.ReturnStatusApproved, models.ReturnStatusItemReceived)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrReturnNotFound
		}
		return nil, fmt.Errorf("return repository: get active by order %w", err)
	}
	return &req, nil
}

// ListBySeller возвращает возвраты по товарам продавца.
func (r *ReturnRepository) ListBySeller(ctx context.Context, sellerID uuid.UUID, limit, offset int) ([]models.ReturnRequest, error) {
	var requests []models.ReturnRequest
	err := r.db.SelectContext(ctx, &requests, `
		SELECT * FROM return_requests WHERE seller_id = $1
		ORDER BY created_at DESC LIMIT $2 OFFSET $3
	`, sellerID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("return repository: list by seller %w", err)
	}
	return requests, nil
}

// ListByCustomer возвращает возвраты покупателя.
func (r *ReturnRepository) ListByCustomer(ctx context.Context, customerID uuid.UUID, limit, offset int) ([]models.ReturnRequest, error) {
	var requests []models.ReturnRequest
	err := r.db.SelectContext(ctx, &requests, `
		SELECT * FROM return_requests WHERE customer_id = $1
		ORDER BY created_at DESC LIMIT $2 OFFSET $3
	`, customerID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("return repository: list by customer %w", err)
	}
	return requests, nil
}
