package models

// Таблицы допустимых переходов статусов. Исходное хранилище позволяло записать
// любой статус в любой момент — здесь каждый мутатор обязан сверяться с таблицей.

var orderStatusTransitions = map[string]map[string]struct{}{
	OrderStatusPending:         {OrderStatusProcessing: {}},
	OrderStatusProcessing:      {OrderStatusShipped: {}},
	OrderStatusShipped:         {OrderStatusDelivered: {}},
	OrderStatusDelivered:       {OrderStatusReturnRequested: {}},
	OrderStatusReturnRequested: {OrderStatusReturnApproved: {}, OrderStatusReturnRejected: {}},
	OrderStatusReturnApproved:  {OrderStatusReturned: {}},
	OrderStatusReturnRejected:  {},
	OrderStatusReturned:        {},
}

var escrowStatusTransitions = map[string]map[string]struct{}{
	EscrowStatusHeld: {
		EscrowStatusSellerConfirmed: {},
		EscrowStatusDisputed:        {},
		EscrowStatusRefunded:        {},
	},
	EscrowStatusSellerConfirmed: {
		EscrowStatusBuyerConfirmed: {},
		EscrowStatusReleased:       {},
		EscrowStatusDisputed:       {},
		EscrowStatusRefunded:       {},
	},
	EscrowStatusBuyerConfirmed: {
		EscrowStatusReleased: {},
		EscrowStatusDisputed: {},
		EscrowStatusRefunded: {},
	},
	EscrowStatusDisputed: {
		EscrowStatusReleased: {},
		EscrowStatusRefunded: {},
	},
	EscrowStatusReleased: {},
	EscrowStatusRefunded: {},
}

var returnStatusTransitions = map[string]map[string]struct{}{
	ReturnStatusPending:      {ReturnStatusApproved: {}, ReturnStatusRejected: {}},
	ReturnStatusApproved:     {ReturnStatusItemReceived: {}, ReturnStatusRefunded: {}},
	ReturnStatusItemReceived: {ReturnStatusRefunded: {}},
	ReturnStatusRejected:     {},
	ReturnStatusRefunded:     {},
}

var disputeStatusTransitions = map[string]map[string]struct{}{
	DisputeStatusOpen: {
		DisputeStatusUnderReview:     {},
		DisputeStatusResolvedRefund:  {},
		DisputeStatusResolvedRelease: {},
	},
	DisputeStatusUnderReview: {
		DisputeStatusResolvedRefund:  {},
		DisputeStatusResolvedRelease: {},
	},
	DisputeStatusResolvedRefund:  {},
	DisputeStatusResolvedRelease: {},
}

var negotiationStatusTransitions = map[string]map[string]struct{}{
	NegotiationStatusPending:   {NegotiationStatusAccepted: {}, NegotiationStatusRejected: {}, NegotiationStatusPurchased: {}},
	NegotiationStatusAccepted:  {NegotiationStatusPurchased: {}},
	NegotiationStatusRejected:  {},
	NegotiationStatusPurchased: {},
}

func canTransition(table map[string]map[string]struct{}, from, to string) bool {
	next, ok := table[from]
	if !ok {
		return false
	}
	_, ok = next[to]
	return ok
}

// CanTransitionOrderStatus проверяет переход статуса заказа.
func CanTransitionOrderStatus(from, to string) bool {
	return canTransition(orderStatusTransitions, from, to)
}

// CanTransitionEscrowStatus проверяет переход статуса escrow.
func CanTransitionEscrowStatus(from, to string) bool {
	return canTransition(escrowStatusTransitions, from, to)
}

// CanTransitionReturnStatus проверяет переход статуса возврата.
func CanTransitionReturnStatus(from, to string) bool {
	return canTransition(returnStatusTransitions, from, to)
}

// CanTransitionDisputeStatus проверяет переход статуса спора.
func CanTransitionDisputeStatus(from, to string) bool {
	return canTransition(disputeStatusTransitions, from, to)
}

// CanTransitionNegotiationStatus проверяет переход статуса торга.
func CanTransitionNegotiationStatus(from, to string) bool {
	return canTransition(negotiationStatusTransitions, from, to)
}

// IsTerminalDisputeStatus сообщает, закрыт ли спор.
func IsTerminalDisputeStatus(status string) bool {
	return status == DisputeStatusResolvedRefund || status == DisputeStatusResolvedRelease
}

// IsActiveReturnStatus сообщает, считается ли возврат ещё активным.
func IsActiveReturnStatus(status string) bool {
	return status == ReturnStatusPending || status == ReturnStatusApproved || status == ReturnStatusItemReceived
}
