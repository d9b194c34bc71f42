package models

import (
	"time"

	"github.com/google/uuid"
)

// Payout выплата продавцу, создаётся при релизе escrow.
type Payout struct {
	ID        uuid.UUID `db:"id" json:"id"`
	SellerID  uuid.UUID `db:"seller_id" json:"seller_id"`
	OrderID   uuid.UUID `db:"order_id" json:"order_id"`
	Amount    float64   `db:"amount" json:"amount"`
	Status    string    `db:"status" json:"status"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}
