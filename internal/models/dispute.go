package models

import (
	"time"

	"github.com/google/uuid"
)

// Dispute спор покупателя по заказу (недоставка, брак и т.п.).
// ProductName, SellerName и Amount — снимок на момент открытия спора.
type Dispute struct {
	ID          uuid.UUID  `db:"id" json:"id"`
	OrderID     uuid.UUID  `db:"order_id" json:"order_id"`
	BuyerID     uuid.UUID  `db:"buyer_id" json:"buyer_id"`
	BuyerName   string     `db:"buyer_name" json:"buyer_name"`
	BuyerEmail  string     `db:"buyer_email" json:"buyer_email"`
	SellerID    uuid.UUID  `db:"seller_id" json:"seller_id"`
	SellerName  string     `db:"seller_name" json:"seller_name"`
	ProductName string     `db:"product_name" json:"product_name"`
	Amount      float64    `db:"amount" json:"amount"`
	Reason      string     `db:"reason" json:"reason"`
	Description string     `db:"description" json:"description"`
	Status      string     `db:"status" json:"status"`
	AdminNotes  *string    `db:"admin_notes" json:"admin_notes,omitempty"`
	CreatedAt   time.Time  `db:"created_at" json:"created_at"`
	ResolvedAt  *time.Time `db:"resolved_at" json:"resolved_at,omitempty"`
}
