package events

import (
	"time"

	"github.com/google/uuid"
)

// Топики доменных событий.
const (
	TopicOrderCreated        = "order.created"
	TopicOrderStatusChanged  = "order.status_changed"
	TopicEscrowStatusChanged = "escrow.status_changed"
	TopicDisputeOpened       = "dispute.opened"
	TopicDisputeResolved     = "dispute.resolved"
	TopicReturnStatusChanged = "return.status_changed"
	TopicNegotiationCounter  = "negotiation.countered"
	TopicCouponIssued        = "coupon.issued"
	TopicEmailOutbox         = "email.outbox"
)

// OrderCreatedEvent публикуется при создании заказа из чекаута.
type OrderCreatedEvent struct {
	OrderID    uuid.UUID `json:"order_id"`
	Number     string    `json:"number"`
	CustomerID uuid.UUID `json:"customer_id"`
	SellerID   uuid.UUID `json:"seller_id"`
	Amount     float64   `json:"amount"`
	CreatedAt  time.Time `json:"created_at"`
}

// OrderStatusChangedEvent публикуется при каждом переходе статуса заказа.
type OrderStatusChangedEvent struct {
	OrderID    uuid.UUID `json:"order_id"`
	Number     string    `json:"number"`
	FromStatus string    `json:"from_status"`
	ToStatus   string    `json:"to_status"`
	ChangedAt  time.Time `json:"changed_at"`
}

// EscrowStatusChangedEvent публикуется при переходе статуса escrow.
type EscrowStatusChangedEvent struct {
	OrderID    uuid.UUID `json:"order_id"`
	Number     string    `json:"number"`
	FromStatus string    `json:"from_status"`
	ToStatus   string    `json:"to_status"`
	Amount     float64   `json:"amount"`
	ChangedAt  time.Time `json:"changed_at"`
}

// DisputeOpenedEvent публикуется при открытии спора.
type DisputeOpenedEvent struct {
	DisputeID uuid.UUID `json:"dispute_id"`
	OrderID   uuid.UUID `json:"order_id"`
	BuyerID   uuid.UUID `json:"buyer_id"`
	SellerID  uuid.UUID `json:"seller_id"`
	Reason    string    `json:"reason"`
	Amount    float64   `json:"amount"`
	OpenedAt  time.Time `json:"opened_at"`
}

// DisputeResolvedEvent публикуется при закрытии спора администратором.
type DisputeResolvedEvent struct {
	DisputeID  uuid.UUID `json:"dispute_id"`
	OrderID    uuid.UUID `json:"order_id"`
	Resolution string    `json:"resolution"`
	ResolvedAt time.Time `json:"resolved_at"`
}

// ReturnStatusChangedEvent публикуется при переходе статуса возврата.
type ReturnStatusChangedEvent struct {
	ReturnID   uuid.UUID `json:"return_id"`
	OrderID    uuid.UUID `json:"order_id"`
	FromStatus string    `json:"from_status"`
	ToStatus   string    `json:"to_status"`
	ChangedAt  time.Time `json:"changed_at"`
}

// NegotiationCounterEvent публикуется при контрпредложении продавца.
type NegotiationCounterEvent struct {
	NegotiationID uuid.UUID `json:"negotiation_id"`
	ProductID     uuid.UUID `json:"product_id"`
	CustomerID    uuid.UUID `json:"customer_id"`
	CounterPrice  float64   `json:"counter_price"`
	CounteredAt   time.Time `json:"countered_at"`
}

// CouponIssuedEvent публикуется при выдаче купона.
type CouponIssuedEvent struct {
	CouponID uuid.UUID `json:"coupon_id"`
	UserID   uuid.UUID `json:"user_id"`
	Code     string    `json:"code"`
	Amount   float64   `json:"amount"`
	Source   string    `json:"source"`
	IssuedAt time.Time `json:"issued_at"`
}

// EmailEvent кладётся в outbox-топик, откуда письма забирает внешний воркер.
type EmailEvent struct {
	To       string `json:"to"`
	Subject  string `json:"subject"`
	Body     string `json:"body"`
	Template string `json:"template,omitempty"`
}
