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

var (
	ErrCouponNotFound   = errors.New("coupon not found")
	ErrCouponTaken      = errors.New("coupon already used")
	ErrReferralNotFound = errors.New("referral not found")
)

// CouponRepository отвечает за купоны и реферальные записи.
type CouponRepository struct {
	db *sqlx.DB
}

// NewCouponRepository создаёт экземпляр репозитория.
func NewCouponRepository(db *sqlx.DB) *CouponRepository {
	return &CouponRepository{db: db}
}

// Create создаёт купон.
func (r *CouponRepository) Create(ctx context.Context, c *models.Coupon) error {
	if err := r.db.QueryRowxContext(ctx, `
		INSERT INTO coupons (code, amount, user_id, source, reason, expires_at, is_used)
		VALUES ($1, $2, $3, $4, $5, $6, FALSE)
		RETURNING id, created_at
	`, c.Code, c.Amount, c.UserID, c.Source, c.Reason, c.ExpiresAt,
	).Scan(&c.ID, &c.CreatedAt); err != nil {
		return fmt.Errorf("coupon repository: create %w", err)
	}
	return nil
}

// GetByCode возвращает купон по коду.
func (r *CouponRepository) GetByCode(ctx context.Context, code string) (*models.Coupon, error) {
	return common.GetByField[models.Coupon](ctx, r.db, "coupons", "code", code, ErrCouponNotFound)
}

// ListByUser возвращает купоны пользователя.
func (r *CouponRepository) ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]models.Coupon, error) {
	var coupons []models.Coupon
	err := r.db.SelectContext(ctx, &coupons, `
		SELECT * FROM coupons WHERE user_id = $1
		ORDER BY created_at DESC LIMIT $2 OFFSET $3
	`, userID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("coupon repository: list by user %w", err)
	}
	return coupons, nil
}

// MarkUsed помечает купон использованным. Условие is_used = FALSE в запросе
// гарантирует не более одного успешного погашения даже при гонке.
func (r *CouponRepository) MarkUsed(ctx context.Context, id uuid.UUID) (time.Time, error) {
	var usedAt time.Time
	err := r.db.QueryRowxContext(ctx, `
		UPDATE coupons SET is_used = TRUE, used_at = NOW()
		WHERE id = $1 AND is_used = FALSE AND revoked_at IS NULL
		RETURNING used_at
	`, id).Scan(&usedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return time.Time{}, ErrCouponTaken
		}
		return time.Time{}, fmt.Errorf("coupon repository: mark used %w", err)
	}
	return usedAt, nil
}

// Restore снимает отметку об использовании. Компенсация для чекаута,
// упавшего уже после погашения купона.
func (r *CouponRepository) Restore(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `
		UPDATE coupons SET is_used = FALSE, used_at = NULL WHERE id = $1 AND is_used = TRUE
	`, id)
	if err != nil {
		return fmt.Errorf("coupon repository: restore %w", err)
	}
	return requireRow(result, ErrCouponNotFound)
}

// Revoke отзывает купон, сохраняя запись для аудита.
func (r *CouponRepository) Revoke(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `
		UPDATE coupons SET revoked_at = NOW() WHERE id = $1 AND revoked_at IS NULL
	`, id)
	if err != nil {
		return fmt.Errorf("coupon repository: revoke %w", err)
	}
	return requireRow(result, ErrCouponNotFound)
}

// GetReferralByReferredUser возвращает реферальную запись приглашённого.
func (r *CouponRepository) GetReferralByReferredUser(ctx context.Context, referredUserID uuid.UUID) (*models.Referral, error) {
	return common.GetByField[models.Referral](ctx, r.db, "referrals", "referred_user_id", referredUserID, ErrReferralNotFound)
}

// CreateReferral создаёт реферальную связь.
func (r *CouponRepository) CreateReferral(ctx context.Context, ref *models.Referral) error {
	if err := r.db.QueryRowxContext(ctx, `
		INSERT INTO referrals (code, referrer_id, referred_user_id, coupon_issued)
		VALUES ($1, $2, $3, FALSE)
		RETURNING id, created_at
	`, ref.Code, ref.ReferrerID, ref.ReferredUserID).Scan(&ref.ID, &ref.CreatedAt); err != nil {
		return fmt.Errorf("coupon repository: create referral %w", err)
	}
	return nil
}

// MarkReferralRewarded помечает реферальную запись: награда уже выдана.
// Возвращает ErrReferralNotFound, если награда была выдана раньше.
func (r *CouponRepository) MarkReferralRewarded(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `
		UPDATE referrals SET coupon_issued = TRUE WHERE id = $1 AND coupon_issued = FALSE
	`, id)
	if err != nil {
		return fmt.Errorf("coupon repository: mark referral rewarded %w", err)
	}
	return requireRow(result, ErrReferralNotFound)
}
