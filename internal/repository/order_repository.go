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

// Ошибки уровня репозитория.
var (
	ErrOrderNotFound   = errors.New("order not found")
	ErrProductNotFound = errors.New("product not found")
)

// OrderRepository отвечает за работу с заказами и шагами трекинга.
type OrderRepository struct {
	db *sqlx.DB
}

// NewOrderRepository создаёт новый экземпляр.
func NewOrderRepository(db *sqlx.DB) *OrderRepository {
	return &OrderRepository{db: db}
}

// CreateAll создаёт пакет заказов вместе со стартовыми шагами трекинга одной
// транзакцией: либо сохраняются все позиции чекаута, либо ни одной.
func (r *OrderRepository) CreateAll(ctx context.Context, orders []*models.Order) error {
	return common.WithTransaction(ctx, r.db, func(tx *sqlx.Tx) error {
		const orderQuery = `
			INSERT INTO orders (number, product_id, product_name, product_image, unit_price, quantity,
			                    customer_id, seller_id, amount, shipping_address, payment_method,
			                    status, escrow_status, tracking_status)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
			RETURNING id, created_at, updated_at
		`

		for _, order := range orders {
			if err := tx.QueryRowxContext(ctx, orderQuery,
				order.Number, order.ProductID, order.ProductName, order.ProductImage,
				order.UnitPrice, order.Quantity, order.CustomerID, order.SellerID,
				order.Amount, order.ShippingAddress, order.PaymentMethod,
				order.Status, order.EscrowStatus, order.TrackingStatus,
			).Scan(&order.ID, &order.CreatedAt, &order.UpdatedAt); err != nil {
				return fmt.Errorf("order repository: create %w", err)
			}
		}

		inserter := common.NewBatchInserter(tx,
			`INSERT INTO order_tracking_steps (order_id, position, status, location, completed)`, 5, 100)
		for _, order := range orders {
			for i := range order.TrackingSteps {
				step := &order.TrackingSteps[i]
				step.OrderID = order.ID
				if err := inserter.Add(ctx, step.OrderID, step.Position, step.Status, step.Location, step.Completed); err != nil {
					return fmt.Errorf("order repository: tracking steps %w", err)
				}
			}
		}
		if err := inserter.Flush(ctx); err != nil {
			return fmt.Errorf("order repository: tracking steps %w", err)
		}

		return nil
	})
}

// GetByID возвращает заказ вместе с историей трекинга.
func (r *OrderRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	order, err := common.GetByID[models.Order](ctx, r.db, "orders", id, ErrOrderNotFound)
	if err != nil {
		return nil, err
	}

	if err := r.db.SelectContext(ctx, &order.TrackingSteps, `
		SELECT * FROM order_tracking_steps WHERE order_id = $1 ORDER BY position
	`, id); err != nil {
		return nil, fmt.Errorf("order repository: tracking steps %w", err)
	}

	return order, nil
}

// GetByNumber возвращает заказ по человекочитаемому номеру.
func (r *OrderRepository) GetByNumber(ctx context.Context, number string) (*models.Order, error) {
	return common.GetByField[models.Order](ctx, r.db, "orders", "number", number, ErrOrderNotFound)
}

// ListByCustomer возвращает заказы покупателя.
func (r *OrderRepository) ListByCustomer(ctx context.Context, customerID uuid.UUID, limit, offset int) ([]models.Order, error) {
	var orders []models.Order
	err := r.db.SelectContext(ctx, &orders, `
		SELECT * FROM orders WHERE customer_id = $1
		ORDER BY created_at DESC LIMIT $2 OFFSET $3
	`, customerID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("order repository: list by customer %w", err)
	}
	return orders, nil
}

// ListBySeller возвращает заказы продавца.
func (r *OrderRepository) ListBySeller(ctx context.Context, sellerID uuid.UUID, limit, offset int) ([]models.Order, error) {
	var orders []models.Order
	err := r.db.SelectContext(ctx, &orders, `
		SELECT * FROM orders WHERE seller_id = $1
		ORDER BY created_at DESC LIMIT $2 OFFSET $3
	`, sellerID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("order repository: list by seller %w", err)
	}
	return orders, nil
}

// UpdateStatus записывает новый статус заказа.
func (r *OrderRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status string) error {
	result, err := r.db.ExecContext(ctx, `
		UPDATE orders SET status = $2, updated_at = NOW() WHERE id = $1
	`, id, status)
	if err != nil {
		return fmt.Errorf("order repository: update status %w", err)
	}
	return requireRow(result, ErrOrderNotFound)
}

// UpdateEscrowStatus записывает новый статус escrow. При переходе в
// seller_confirmed фиксируется момент подтверждения — от него отсчитывается
// окно автоматического релиза.
func (r *OrderRepository) UpdateEscrowStatus(ctx context.Context, id uuid.UUID, escrowStatus string) error {
	var sellerConfirmedAt *time.Time
	if escrowStatus == models.EscrowStatusSellerConfirmed {
		now := time.Now().UTC()
		sellerConfirmedAt = &now
	}

	query := `UPDATE orders SET escrow_status = $2, updated_at = NOW() WHERE id = $1`
	args := []interface{}{id, escrowStatus}
	if sellerConfirmedAt != nil {
		query = `UPDATE orders SET escrow_status = $2, seller_confirmed_at = $3, updated_at = NOW() WHERE id = $1`
		args = append(args, sellerConfirmedAt)
	}

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("order repository: update escrow status %w", err)
	}
	return requireRow(result, ErrOrderNotFound)
}

// AppendTrackingStep добавляет завершённый шаг трекинга и одной транзакцией
// обновляет денормализованный текущий статус заказа.
func (r *OrderRepository) AppendTrackingStep(ctx context.Context, orderID uuid.UUID, step *models.TrackingStep, carrier, trackingID *string) error {
	return common.WithTransaction(ctx, r.db, func(tx *sqlx.Tx) error {
		if err := tx.QueryRowxContext(ctx, `
			INSERT INTO order_tracking_steps (order_id, position, status, location, completed)
			SELECT $1, COALESCE(MAX(position), 0) + 1, $2, $3, TRUE
			FROM order_tracking_steps WHERE order_id = $1
			RETURNING id, position, created_at
		`, orderID, step.Status, step.Location).Scan(&step.ID, &step.Position, &step.CreatedAt); err != nil {
			return fmt.Errorf("order repository: append tracking step %w", err)
		}
		step.OrderID = orderID
		step.Completed = true

		result, err := tx.ExecContext(ctx, `
			UPDATE orders
			SET tracking_status = $2,
			    carrier = COALESCE($3, carrier),
			    tracking_id = COALESCE($4, tracking_id),
			    updated_at = NOW()
			WHERE id = $1
		`, orderID, step.Status, carrier, trackingID)
		if err != nil {
			return fmt.Errorf("order repository: append tracking step %w", err)
		}
		return requireRow(result, ErrOrderNotFound)
	})
}

// ListAutoReleaseCandidates возвращает заказы, подтверждённые продавцом до
// указанного момента и всё ещё не закрытые покупателем.
func (r *OrderRepository) ListAutoReleaseCandidates(ctx context.Context, cutoff time.Time) ([]models.Order, error) {
	var orders []models.Order
	err := r.db.SelectContext(ctx, &orders, `
		SELECT * FROM orders
		WHERE escrow_status = $1 AND seller_confirmed_at <= $2
		ORDER BY seller_confirmed_at
	`, models.EscrowStatusSellerConfirmed, cutoff)
	if err != nil {
		return nil, fmt.Errorf("order repository: auto release candidates %w", err)
	}
	return orders, nil
}

// CountByCustomer возвращает количество заказов покупателя,
// когда-либо созданных на площадке (для реферальной награды за первый заказ).
func (r *OrderRepository) CountByCustomer(ctx context.Context, customerID uuid.UUID) (int, error) {
	var count int
	if err := r.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM orders WHERE customer_id = $1`, customerID); err != nil {
		return 0, fmt.Errorf("order repository: count by customer %w", err)
	}
	return count, nil
}

// requireRow превращает «0 затронутых строк» в notFound ошибку.
func requireRow(result sql.Result, notFound error) error {
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return notFound
	}
	return nil
}
