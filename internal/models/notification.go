package models

import (
	"time"

	"github.com/google/uuid"
)

// Notification событие, отправленное пользователю. UserID == nil означает
// широковещательное уведомление для всех пользователей.
type Notification struct {
	ID        uuid.UUID  `db:"id" json:"id"`
	UserID    *uuid.UUID `db:"user_id" json:"user_id,omitempty"`
	Type      string     `db:"type" json:"type"`
	Message   string     `db:"message" json:"message"`
	Link      *string    `db:"link" json:"link,omitempty"`
	IsRead    bool       `db:"is_read" json:"is_read"`
	CreatedAt time.Time  `db:"created_at" json:"created_at"`
}

// SupportMessage обращение во входящие администратора.
type SupportMessage struct {
	ID        uuid.UUID  `db:"id" json:"id"`
	UserID    uuid.UUID  `db:"user_id" json:"user_id"`
	Subject   string     `db:"subject" json:"subject"`
	Body      string     `db:"body" json:"body"`
	OrderID   *uuid.UUID `db:"order_id" json:"order_id,omitempty"`
	Status    string     `db:"status" json:"status"`
	CreatedAt time.Time  `db:"created_at" json:"created_at"`
}
