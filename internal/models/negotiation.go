package models

import (
	"time"

	"github.com/google/uuid"
)

// NegotiationRequest предложение покупателя о цене до покупки.
// Контрпредложение продавца хранится рядом с исходными полями и не меняет
// верхнеуровневый статус.
type NegotiationRequest struct {
	ID             uuid.UUID `db:"id" json:"id"`
	ProductID      uuid.UUID `db:"product_id" json:"product_id"`
	CustomerID     uuid.UUID `db:"customer_id" json:"customer_id"`
	CustomerName   string    `db:"customer_name" json:"customer_name"`
	ProposedPrice  float64   `db:"proposed_price" json:"proposed_price"`
	Message        *string   `db:"message" json:"message,omitempty"`
	CounterPrice   *float64  `db:"counter_price" json:"counter_price,omitempty"`
	CounterMessage *string   `db:"counter_message" json:"counter_message,omitempty"`
	Status         string    `db:"status" json:"status"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`

	Messages []NegotiationMessage `json:"messages,omitempty"`
}

// NegotiationMessage сообщение в чате торга.
type NegotiationMessage struct {
	ID            uuid.UUID `db:"id" json:"id"`
	NegotiationID uuid.UUID `db:"negotiation_id" json:"negotiation_id"`
	Sender        string    `db:"sender" json:"sender"`
	Text          string    `db:"text" json:"text"`
	CreatedAt     time.Time `db:"created_at" json:"created_at"`
}

// AgreedPrice возвращает цену, по которой заключается сделка:
// контрцена продавца, если она есть, иначе цена покупателя.
func (n *NegotiationRequest) AgreedPrice() float64 {
	if n.CounterPrice != nil {
		return *n.CounterPrice
	}
	return n.ProposedPrice
}
