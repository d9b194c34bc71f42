package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// ReturnRequest претензия покупателя на возврат товара по конкретному заказу.
type ReturnRequest struct {
	ID          uuid.UUID      `db:"id" json:"id"`
	OrderID     uuid.UUID      `db:"order_id" json:"order_id"`
	CustomerID  uuid.UUID      `db:"customer_id" json:"customer_id"`
	SellerID    uuid.UUID      `db:"seller_id" json:"seller_id"`
	Reason      string         `db:"reason" json:"reason"`
	Description string         `db:"description" json:"description"`
	Images      pq.StringArray `db:"images" json:"images,omitempty"`
	Status      string         `db:"status" json:"status"`
	SellerNotes *string        `db:"seller_notes" json:"seller_notes,omitempty"`
	AdminNotes  *string        `db:"admin_notes" json:"admin_notes,omitempty"`
	CreatedAt   time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time      `db:"updated_at" json:"updated_at"`
}
