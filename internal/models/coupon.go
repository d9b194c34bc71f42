package models

import (
	"time"

	"github.com/google/uuid"
)

// Coupon одноразовая скидка, привязанная к пользователю.
type Coupon struct {
	ID        uuid.UUID  `db:"id" json:"id"`
	Code      string     `db:"code" json:"code"`
	Amount    float64    `db:"amount" json:"amount"`
	UserID    uuid.UUID  `db:"user_id" json:"user_id"`
	Source    string     `db:"source" json:"source"`
	Reason    string     `db:"reason" json:"reason"`
	ExpiresAt time.Time  `db:"expires_at" json:"expires_at"`
	IsUsed    bool       `db:"is_used" json:"is_used"`
	UsedAt    *time.Time `db:"used_at" json:"used_at,omitempty"`
	RevokedAt *time.Time `db:"revoked_at" json:"revoked_at,omitempty"`
	CreatedAt time.Time  `db:"created_at" json:"created_at"`
}

// Referral связь «пригласивший — приглашённый». CouponIssued гарантирует,
// что награда за реферала выдаётся не более одного раза.
type Referral struct {
	ID             uuid.UUID `db:"id" json:"id"`
	Code           string    `db:"code" json:"code"`
	ReferrerID     uuid.UUID `db:"referrer_id" json:"referrer_id"`
	ReferredUserID uuid.UUID `db:"referred_user_id" json:"referred_user_id"`
	CouponIssued   bool      `db:"coupon_issued" json:"coupon_issued"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
}
