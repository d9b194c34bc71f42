package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jaevor/go-nanoid"

	"github.com/fairprice/fairprice-backend/internal/events"
	"github.com/fairprice/fairprice-backend/internal/goroutine"
	"github.com/fairprice/fairprice-backend/internal/logger"
	"github.com/fairprice/fairprice-backend/internal/metrics"
	"github.com/fairprice/fairprice-backend/internal/models"
	"github.com/fairprice/fairprice-backend/internal/pkg/apperror"
	"github.com/fairprice/fairprice-backend/internal/repository"
)

// Размеры реферальной награды в зависимости от суммы первого заказа приглашённого.
const (
	referralRewardBase   = 1000
	referralRewardMid    = 3000
	referralRewardTop    = 5000
	referralMidThreshold = 150000
	referralTopThreshold = 500000
)

// Алфавит кодов купонов без визуально похожих символов.
const couponCodeAlphabet = "0123456789ABCDEFGHJKMNPQRSTUVWXYZ"

// CouponRepository описывает взаимодействие сервиса с хранилищем купонов.
type CouponRepository interface {
	Create(ctx context.Context, c *models.Coupon) error
	GetByCode(ctx context.Context, code string) (*models.Coupon, error)
	ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]models.Coupon, error)
	MarkUsed(ctx context.Context, id uuid.UUID) (time.Time, error)
	Restore(ctx context.Context, id uuid.UUID) error
	Revoke(ctx context.Context, id uuid.UUID) error
	GetReferralByReferredUser(ctx context.Context, referredUserID uuid.UUID) (*models.Referral, error)
	CreateReferral(ctx context.Context, ref *models.Referral) error
	MarkReferralRewarded(ctx context.Context, id uuid.UUID) error
}

// Notifier сохраняет и доставляет уведомление пользователю.
type Notifier interface {
	Notify(ctx context.Context, userID *uuid.UUID, notifType, message string, link *string) (*models.Notification, error)
}

// CouponService содержит бизнес-логику купонов и реферальных наград.
type CouponService struct {
	repo      CouponRepository
	notifier  Notifier
	publisher *events.Publisher
	couponTTL time.Duration
	newCode   func() string
}

// NewCouponService создаёт сервис купонов.
func NewCouponService(repo CouponRepository, notifier Notifier, publisher *events.Publisher, couponTTL time.Duration) (*CouponService, error) {
	newCode, err := nanoid.CustomASCII(couponCodeAlphabet, 10)
	if err != nil {
		return nil, fmt.Errorf("coupon service: генератор кодов %w", err)
	}

	return &CouponService{
		repo:      repo,
		notifier:  notifier,
		publisher: publisher,
		couponTTL: couponTTL,
		newCode:   newCode,
	}, nil
}

// Issue выдаёт пользователю новый купон.
func (s *CouponService) Issue(ctx context.Context, userID uuid.UUID, amount float64, source, reason string) (*models.Coupon, error) {
	if amount <= 0 {
		return nil, apperror.New(apperror.ErrCodeValidation, "сумма купона должна быть положительной")
	}

	coupon := &models.Coupon{
		Code:      s.newCode(),
		Amount:    amount,
		UserID:    userID,
		Source:    source,
		Reason:    reason,
		ExpiresAt: time.Now().UTC().Add(s.couponTTL),
	}
	if err := s.repo.Create(ctx, coupon); err != nil {
		return nil, err
	}

	s.publishIssued(coupon)

	if _, err := s.notifier.Notify(ctx, &userID, "coupon_issued",
		fmt.Sprintf("Вам выдан купон %s на %.0f: %s", coupon.Code, amount, reason), nil); err != nil {
		logger.Log.Errorf("coupon service: уведомление о купоне %s: %v", coupon.Code, err)
	}

	return coupon, nil
}

// Redeem погашает купон при оформлении заказа. Каждая причина отказа имеет
// собственный код, чтобы фронтенд показал точное сообщение.
func (s *CouponService) Redeem(ctx context.Context, userID uuid.UUID, code string) (*models.Coupon, error) {
	coupon, err := s.repo.GetByCode(ctx, code)
	if err != nil {
		if errors.Is(err, repository.ErrCouponNotFound) {
			metrics.CouponRedemption("invalid_code")
			return nil, apperror.ErrCouponNotFound
		}
		return nil, err
	}

	// Чужой купон неотличим от несуществующего, коды не перечисляемы.
	if coupon.UserID != userID {
		metrics.CouponRedemption("invalid_code")
		return nil, apperror.ErrCouponNotFound
	}
	if coupon.IsUsed {
		metrics.CouponRedemption("already_used")
		return nil, apperror.New(apperror.ErrCodeAlreadyUsed, "купон уже использован")
	}
	if coupon.RevokedAt != nil {
		metrics.CouponRedemption("revoked")
		return nil, apperror.New(apperror.ErrCodeRevoked, "купон отозван")
	}
	if time.Now().UTC().After(coupon.ExpiresAt) {
		metrics.CouponRedemption("expired")
		return nil, apperror.New(apperror.ErrCodeExpired, "срок действия купона истёк")
	}

	usedAt, err := s.repo.MarkUsed(ctx, coupon.ID)
	if err != nil {
		if errors.Is(err, repository.ErrCouponTaken) {
			metrics.CouponRedemption("already_used")
			return nil, apperror.New(apperror.ErrCodeAlreadyUsed, "купон уже использован")
		}
		return nil, err
	}

	coupon.IsUsed = true
	coupon.UsedAt = &usedAt
	metrics.CouponRedemption("success")
	return coupon, nil
}

// Restore возвращает погашенный купон в неиспользованное состояние.
// Вызывается чекаутом, если запись заказов не удалась после погашения.
func (s *CouponService) Restore(ctx context.Context, id uuid.UUID) error {
	return s.repo.Restore(ctx, id)
}

// Revoke отзывает купон. Операция администратора.
func (s *CouponService) Revoke(ctx context.Context, id uuid.UUID) error {
	return s.repo.Revoke(ctx, id)
}

// ListUserCoupons возвращает купоны пользователя.
func (s *CouponService) ListUserCoupons(ctx context.Context, userID uuid.UUID, limit, offset int) ([]models.Coupon, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	return s.repo.ListByUser(ctx, userID, limit, offset)
}

// RegisterReferral связывает приглашённого пользователя с пригласившим.
func (s *CouponService) RegisterReferral(ctx context.Context, referrerID, referredUserID uuid.UUID) (*models.Referral, error) {
	if referrerID == referredUserID {
		return nil, apperror.New(apperror.ErrCodeValidation, "нельзя пригласить самого себя")
	}

	ref := &models.Referral{
		Code:           s.newCode(),
		ReferrerID:     referrerID,
		ReferredUserID: referredUserID,
	}
	if err := s.repo.CreateReferral(ctx, ref); err != nil {
		return nil, err
	}
	return ref, nil
}

// RewardFirstOrder выдаёт пригласившему купон за первый заказ приглашённого.
// Размер зависит от суммы заказа, награда выдаётся не более одного раза.
func (s *CouponService) RewardFirstOrder(ctx context.Context, customerID uuid.UUID, orderTotal float64) error {
	ref, err := s.repo.GetReferralByReferredUser(ctx, customerID)
	if err != nil {
		if errors.Is(err, repository.ErrReferralNotFound) {
			return nil
		}
		return err
	}
	if ref.CouponIssued {
		return nil
	}

	// Условная пометка в БД выигрывает гонку между конкурентными заказами.
	if err := s.repo.MarkReferralRewarded(ctx, ref.ID); err != nil {
		if errors.Is(err, repository.ErrReferralNotFound) {
			return nil
		}
		return err
	}

	amount := referralRewardAmount(orderTotal)
	if _, err := s.Issue(ctx, ref.ReferrerID, amount, models.CouponSourceReferral,
		"Награда за первый заказ приглашённого пользователя"); err != nil {
		return fmt.Errorf("coupon service: реферальная награда %w", err)
	}

	return nil
}

// referralRewardAmount возвращает размер реферальной награды по сумме заказа.
func referralRewardAmount(orderTotal float64) float64 {
	switch {
	case orderTotal >= referralTopThreshold:
		return referralRewardTop
	case orderTotal >= referralMidThreshold:
		return referralRewardMid
	default:
		return referralRewardBase
	}
}

func (s *CouponService) publishIssued(coupon *models.Coupon) {
	event := events.CouponIssuedEvent{
		CouponID: coupon.ID,
		UserID:   coupon.UserID,
		Code:     coupon.Code,
		Amount:   coupon.Amount,
		Source:   coupon.Source,
		IssuedAt: coupon.CreatedAt,
	}
	goroutine.SafeGo(func() {
		if err := s.publisher.CouponIssued(context.Background(), event); err != nil {
			logger.Log.Errorf("coupon service: событие о выдаче купона %s: %v", coupon.Code, err)
		}
	})
}
