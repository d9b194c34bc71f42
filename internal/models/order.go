package models

import (
	"time"

	"github.com/google/uuid"
)

// Order описывает покупку одной товарной позиции у конкретного продавца.
// Поля ProductName/ProductImage/UnitPrice — снимок товара на момент оформления:
// они намеренно не обновляются при изменении каталога.
type Order struct {
	ID                uuid.UUID  `db:"id" json:"id"`
	Number            string     `db:"number" json:"number"`
	ProductID         uuid.UUID  `db:"product_id" json:"product_id"`
	ProductName       string     `db:"product_name" json:"product_name"`
	ProductImage      *string    `db:"product_image" json:"product_image,omitempty"`
	UnitPrice         float64    `db:"unit_price" json:"unit_price"`
	Quantity          int        `db:"quantity" json:"quantity"`
	CustomerID        uuid.UUID  `db:"customer_id" json:"customer_id"`
	SellerID          uuid.UUID  `db:"seller_id" json:"seller_id"`
	Amount            float64    `db:"amount" json:"amount"`
	ShippingAddress   string     `db:"shipping_address" json:"shipping_address"`
	PaymentMethod     string     `db:"payment_method" json:"payment_method"`
	Status            string     `db:"status" json:"status"`
	EscrowStatus      string     `db:"escrow_status" json:"escrow_status"`
	SellerConfirmedAt *time.Time `db:"seller_confirmed_at" json:"seller_confirmed_at,omitempty"`
	TrackingStatus    *string    `db:"tracking_status" json:"tracking_status,omitempty"`
	Carrier           *string    `db:"carrier" json:"carrier,omitempty"`
	TrackingID        *string    `db:"tracking_id" json:"tracking_id,omitempty"`
	CreatedAt         time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt         time.Time  `db:"updated_at" json:"updated_at"`

	TrackingSteps []TrackingStep `json:"tracking_steps,omitempty"`
}

// TrackingStep одна запись в истории доставки заказа (только добавление).
type TrackingStep struct {
	ID        uuid.UUID `db:"id" json:"id"`
	OrderID   uuid.UUID `db:"order_id" json:"order_id"`
	Position  int       `db:"position" json:"position"`
	Status    string    `db:"status" json:"status"`
	Location  string    `db:"location" json:"location"`
	Completed bool      `db:"completed" json:"completed"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}
