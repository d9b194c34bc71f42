package models

import "testing"

func TestOrderStatusTransitions(t *testing.T) {
	cases := []struct {
		from, to string
		want     bool
	}{
		{OrderStatusPending, OrderStatusProcessing, true},
		{OrderStatusProcessing, OrderStatusShipped, true},
		{OrderStatusShipped, OrderStatusDelivered, true},
		{OrderStatusDelivered, OrderStatusReturnRequested, true},
		{OrderStatusReturnRequested, OrderStatusReturnApproved, true},
		{OrderStatusReturnRequested, OrderStatusReturnRejected, true},
		{OrderStatusReturnApproved, OrderStatusReturned, true},
		// Обратные и скачущие переходы запрещены.
		{OrderStatusShipped, OrderStatusProcessing, false},
		{OrderStatusPending, OrderStatusDelivered, false},
		{OrderStatusReturned, OrderStatusProcessing, false},
		{OrderStatusReturnRejected, OrderStatusReturnApproved, false},
		{"nonexistent", OrderStatusProcessing, false},
	}

	for _, c := range cases {
		if got := CanTransitionOrderStatus(c.from, c.to); got != c.want {
			t.Errorf("CanTransitionOrderStatus(%q, %q) = %v, ожидалось %v", c.from, c.to, got, c.want)
		}
	}
}

func TestEscrowStatusTransitions(t *testing.T) {
	cases := []struct {
		from, to string
		want     bool
	}{
		{EscrowStatusHeld, EscrowStatusSellerConfirmed, true},
		{EscrowStatusHeld, EscrowStatusDisputed, true},
		{EscrowStatusHeld, EscrowStatusRefunded, true},
		{EscrowStatusSellerConfirmed, EscrowStatusBuyerConfirmed, true},
		{EscrowStatusSellerConfirmed, EscrowStatusReleased, true},
		{EscrowStatusBuyerConfirmed, EscrowStatusReleased, true},
		{EscrowStatusDisputed, EscrowStatusReleased, true},
		{EscrowStatusDisputed, EscrowStatusRefunded, true},
		// Релиз минуя подтверждение продавца и любые переходы из финальных
		// статусов запрещены.
		{EscrowStatusHeld, EscrowStatusReleased, false},
		{EscrowStatusHeld, EscrowStatusBuyerConfirmed, false},
		{EscrowStatusReleased, EscrowStatusRefunded, false},
		{EscrowStatusRefunded, EscrowStatusHeld, false},
	}

	for _, c := range cases {
		if got := CanTransitionEscrowStatus(c.from, c.to); got != c.want {
			t.Errorf("CanTransitionEscrowStatus(%q, %q) = %v, ожидалось %v", c.from, c.to, got, c.want)
		}
	}
}

func TestReturnStatusTransitions(t *testing.T) {
	cases := []struct {
		from, to string
		want     bool
	}{
		{ReturnStatusPending, ReturnStatusApproved, true},
		{ReturnStatusPending, ReturnStatusRejected, true},
		{ReturnStatusApproved, ReturnStatusItemReceived, true},
		{ReturnStatusApproved, ReturnStatusRefunded, true},
		{ReturnStatusItemReceived, ReturnStatusRefunded, true},
		{ReturnStatusRejected, ReturnStatusApproved, false},
		{ReturnStatusRefunded, ReturnStatusPending, false},
		{ReturnStatusPending, ReturnStatusRefunded, false},
	}

	for _, c := range cases {
		if got := CanTransitionReturnStatus(c.from, c.to); got != c.want {
			t.Errorf("CanTransitionReturnStatus(%q, %q) = %v, ожидалось %v", c.from, c.to, got, c.want)
		}
	}
}

func TestDisputeStatusTransitions(t *testing.T) {
	if !CanTransitionDisputeStatus(DisputeStatusOpen, DisputeStatusUnderReview) {
		t.Error("открытый спор должен переходить в рассмотрение")
	}
	if !CanTransitionDisputeStatus(DisputeStatusOpen, DisputeStatusResolvedRelease) {
		t.Error("открытый спор должен закрываться сразу")
	}
	if !CanTransitionDisputeStatus(DisputeStatusUnderReview, DisputeStatusResolvedRefund) {
		t.Error("спор на рассмотрении должен закрываться возвратом")
	}
	if CanTransitionDisputeStatus(DisputeStatusResolvedRefund, DisputeStatusOpen) {
		t.Error("закрытый спор нельзя переоткрыть")
	}
}

func TestNegotiationStatusTransitions(t *testing.T) {
	if !CanTransitionNegotiationStatus(NegotiationStatusPending, NegotiationStatusAccepted) {
		t.Error("ожидающий торг должен приниматься")
	}
	if !CanTransitionNegotiationStatus(NegotiationStatusAccepted, NegotiationStatusPurchased) {
		t.Error("принятый торг должен закрываться покупкой")
	}
	if CanTransitionNegotiationStatus(NegotiationStatusRejected, NegotiationStatusPurchased) {
		t.Error("отклонённый торг нельзя купить")
	}
	if CanTransitionNegotiationStatus(NegotiationStatusPurchased, NegotiationStatusPending) {
		t.Error("купленный торг нельзя вернуть в ожидание")
	}
}

func TestTerminalHelpers(t *testing.T) {
	if !IsTerminalDisputeStatus(DisputeStatusResolvedRefund) || !IsTerminalDisputeStatus(DisputeStatusResolvedRelease) {
		t.Error("оба решения спора должны быть финальными")
	}
	if IsTerminalDisputeStatus(DisputeStatusUnderReview) {
		t.Error("рассмотрение не финальный статус")
	}

	for _, status := range []string{ReturnStatusPending, ReturnStatusApproved, ReturnStatusItemReceived} {
		if !IsActiveReturnStatus(status) {
			t.Errorf("статус %q должен считаться активным", status)
		}
	}
	if IsActiveReturnStatus(ReturnStatusRefunded) || IsActiveReturnStatus(ReturnStatusRejected) {
		t.Error("финальные статусы возврата не активны")
	}
}
