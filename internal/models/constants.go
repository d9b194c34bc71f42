package models

// Роли пользователей площадки
const (
	RoleCustomer = "customer"
	RoleSeller   = "seller"
	RoleAdmin    = "admin"
	// RoleSystem используется фоновыми процессами, у них нет пользователя.
	RoleSystem = "system"
)

// OrderStatus константы статусов заказов
const (
	OrderStatusPending         = "pending"
	OrderStatusProcessing      = "processing"
	OrderStatusShipped         = "shipped"
	OrderStatusDelivered       = "delivered"
	OrderStatusReturnRequested = "return_requested"
	OrderStatusReturnApproved  = "return_approved"
	OrderStatusReturnRejected  = "return_rejected"
	OrderStatusReturned        = "returned"
)

// EscrowStatus константы статусов escrow
const (
	EscrowStatusHeld            = "held"
	EscrowStatusSellerConfirmed = "seller_confirmed"
	EscrowStatusBuyerConfirmed  = "buyer_confirmed"
	EscrowStatusReleased        = "released"
	EscrowStatusDisputed        = "disputed"
	EscrowStatusRefunded        = "refunded"
)

// ReturnStatus константы статусов возвратов
const (
	ReturnStatusPending      = "pending"
	ReturnStatusApproved     = "approved"
	ReturnStatusRejected     = "rejected"
	ReturnStatusItemReceived = "item_received"
	ReturnStatusRefunded     = "refunded"
)

// DisputeStatus константы статусов споров
const (
	DisputeStatusOpen            = "open"
	DisputeStatusUnderReview     = "under_review"
	DisputeStatusResolvedRefund  = "resolved_refund"
	DisputeStatusResolvedRelease = "resolved_release"
)

// DisputeReason причины открытия спора
const (
	DisputeReasonNotDelivered   = "not_delivered"
	DisputeReasonNotAsDescribed = "not_as_described"
	DisputeReasonDamaged        = "damaged"
	DisputeReasonOther          = "other"
)

// NegotiationStatus константы статусов торга
const (
	NegotiationStatusPending   = "pending"
	NegotiationStatusAccepted  = "accepted"
	NegotiationStatusRejected  = "rejected"
	NegotiationStatusPurchased = "purchased"
)

// CouponSource способ выдачи купона
const (
	CouponSourceManual   = "manual"
	CouponSourceReferral = "referral"
)

// PayoutStatus константы статусов выплат продавцам
const (
	PayoutStatusPending = "pending"
	PayoutStatusPaid    = "paid"
)

// SupportStatus константы статусов обращений в поддержку
const (
	SupportStatusOpen   = "open"
	SupportStatusClosed = "closed"
)

// Роли отправителей сообщений в чате торга
const (
	NegotiationSenderBuyer  = "buyer"
	NegotiationSenderSeller = "seller"
)

// ValidOrderStatuses список валидных статусов заказов
var ValidOrderStatuses = map[string]struct{}{
	OrderStatusPending:         {},
	OrderStatusProcessing:      {},
	OrderStatusShipped:         {},
	OrderStatusDelivered:       {},
	OrderStatusReturnRequested: {},
	OrderStatusReturnApproved:  {},
	OrderStatusReturnRejected:  {},
	OrderStatusReturned:        {},
}

// ValidEscrowStatuses список валидных статусов escrow
var ValidEscrowStatuses = map[string]struct{}{
	EscrowStatusHeld:            {},
	EscrowStatusSellerConfirmed: {},
	EscrowStatusBuyerConfirmed:  {},
	EscrowStatusReleased:        {},
	EscrowStatusDisputed:        {},
	EscrowStatusRefunded:        {},
}

// ValidReturnStatuses список валидных статусов возвратов
var ValidReturnStatuses = map[string]struct{}{
	ReturnStatusPending:      {},
	ReturnStatusApproved:     {},
	ReturnStatusRejected:     {},
	ReturnStatusItemReceived: {},
	ReturnStatusRefunded:     {},
}

// ValidDisputeReasons список валидных причин споров
var ValidDisputeReasons = map[string]struct{}{
	DisputeReasonNotDelivered:   {},
	DisputeReasonNotAsDescribed: {},
	DisputeReasonDamaged:        {},
	DisputeReasonOther:          {},
}

// ValidNegotiationStatuses список валидных статусов торга
var ValidNegotiationStatuses = map[string]struct{}{
	NegotiationStatusPending:   {},
	NegotiationStatusAccepted:  {},
	NegotiationStatusRejected:  {},
	NegotiationStatusPurchased: {},
}
