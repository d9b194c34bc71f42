package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/fairprice/fairprice-backend/internal/events"
	"github.com/fairprice/fairprice-backend/internal/models"
	"github.com/fairprice/fairprice-backend/internal/pkg/apperror"
	"github.com/fairprice/fairprice-backend/internal/repository"
)

// mockDisputeStore повторяет контракт репозитория споров вместе с
// транзакционными побочными эффектами к escrow заказа.
type mockDisputeStore struct {
	orders   *mockOrderStore
	disputes map[uuid.UUID]*models.Dispute
	inbox    []*models.SupportMessage
}

func newMockDisputeStore(orders *mockOrderStore) *mockDisputeStore {
	return &mockDisputeStore{orders: orders, disputes: make(map[uuid.UUID]*models.Dispute)}
}

func (m *mockDisputeStore) CreateWithFreeze(ctx context.Context, d *models.Dispute, inbox *models.SupportMessage) error {
	d.ID = uuid.New()
	d.CreatedAt = time.Now()
	m.disputes[d.ID] = d
	m.inbox = append(m.inbox, inbox)
	return m.orders.UpdateEscrowStatus(ctx, d.OrderID, models.EscrowStatusDisputed)
}

func (m *mockDisputeStore) ResolveWithEscrow(ctx context.Context, id uuid.UUID, status string, adminNotes *string, escrowStatus string) (*models.Dispute, error) {
	dispute, ok := m.disputes[id]
	if !ok {
		return nil, repository.ErrDisputeNotFound
	}
	now := time.Now()
	dispute.Status = status
	dispute.AdminNotes = adminNotes
	dispute.ResolvedAt = &now
	if err := m.orders.UpdateEscrowStatus(ctx, dispute.OrderID, escrowStatus); err != nil {
		return nil, err
	}
	copied := *dispute
	return &copied, nil
}

func (m *mockDisputeStore) UpdateStatus(ctx context.Context, id uuid.UUID, status string, adminNotes *string) error {
	dispute, ok := m.disputes[id]
	if !ok {
		return repository.ErrDisputeNotFound
	}
	dispute.Status = status
	if adminNotes != nil {
		dispute.AdminNotes = adminNotes
	}
	return nil
}

func (m *mockDisputeStore) GetByID(ctx context.Context, id uuid.UUID) (*models.Dispute, error) {
	if dispute, ok := m.disputes[id]; ok {
		copied := *dispute
		return &copied, nil
	}
	return nil, repository.ErrDisputeNotFound
}

func (m *mockDisputeStore) GetOpenByOrderID(ctx context.Context, orderID uuid.UUID) (*models.Dispute, error) {
	for _, dispute := range m.disputes {
		if dispute.OrderID == orderID && !models.IsTerminalDisputeStatus(dispute.Status) {
			copied := *dispute
			return &copied, nil
		}
	}
	return nil, repository.ErrDisputeNotFound
}

func (m *mockDisputeStore) ListByBuyer(ctx context.Context, buyerID uuid.UUID, limit, offset int) ([]models.Dispute, error) {
	var result []models.Dispute
	for _, dispute := range m.disputes {
		if dispute.BuyerID == buyerID {
			result = append(result, *dispute)
		}
	}
	return result, nil
}

func (m *mockDisputeStore) ListOpen(ctx context.Context, limit, offset int) ([]models.Dispute, error) {
	var result []models.Dispute
	for _, dispute := range m.disputes {
		if !models.IsTerminalDisputeStatus(dispute.Status) {
			result = append(result, *dispute)
		}
	}
	return result, nil
}

type disputeServiceFixture struct {
	svc      *DisputeService
	orders   *mockOrderStore
	disputes *mockDisputeStore
	payouts  *mockPayoutStore
	buyerID  uuid.UUID
	sellerID uuid.UUID
	orderID  uuid.UUID
}

func newDisputeServiceFixture(t *testing.T) *disputeServiceFixture {
	t.Helper()

	orders := newMockOrderStore()
	catalog := newMockCatalogStore()
	disputes := newMockDisputeStore(orders)
	payouts := &mockPayoutStore{}

	f := &disputeServiceFixture{
		orders:   orders,
		disputes: disputes,
		payouts:  payouts,
		buyerID:  uuid.New(),
		sellerID: uuid.New(),
	}

	catalog.sellers[f.sellerID] = &models.Seller{ID: f.sellerID, Name: "Abuja Electronics", Email: "abuja@example.com"}

	publisher := events.NewPublisher(nil)
	f.svc = NewDisputeService(disputes, orders, catalog, payouts, &mockNotifier{}, publisher, nil)

	order := &models.Order{
		Number:       "FP-DISP000001",
		ProductName:  "Блендер",
		CustomerID:   f.buyerID,
		SellerID:     f.sellerID,
		Amount:       25000,
		Status:       models.OrderStatusShipped,
		EscrowStatus: models.EscrowStatusSellerConfirmed,
	}
	if err := orders.CreateAll(context.Background(), []*models.Order{order}); err != nil {
		t.Fatalf("подготовка заказа: %v", err)
	}
	f.orderID = order.ID
	return f
}

func (f *disputeServiceFixture) raise(t *testing.T) *models.Dispute {
	t.Helper()
	dispute, err := f.svc.RaiseDispute(context.Background(), RaiseDisputeInput{
		OrderID:     f.orderID,
		BuyerID:     f.buyerID,
		BuyerName:   "Амина Белло",
		BuyerEmail:  "amina@example.com",
		Reason:      models.DisputeReasonNotDelivered,
		Description: "Заказ не пришёл за две недели",
	})
	if err != nil {
		t.Fatalf("открытие спора: %v", err)
	}
	return dispute
}

func TestDisputeService_RaiseDispute(t *testing.T) {
	f := newDisputeServiceFixture(t)
	ctx := context.Background()

	dispute := f.raise(t)
	if dispute.Status != models.DisputeStatusOpen {
		t.Errorf("новый спор должен быть open, получили %q", dispute.Status)
	}
	if dispute.SellerName != "Abuja Electronics" || dispute.Amount != 25000 {
		t.Error("спор должен снять снимок продавца и суммы заказа")
	}

	// Открытие спора замораживает средства и кладёт обращение в поддержку.
	order, _ := f.orders.GetByID(ctx, f.orderID)
	if order.EscrowStatus != models.EscrowStatusDisputed {
		t.Errorf("escrow должен быть disputed, получили %q", order.EscrowStatus)
	}
	if len(f.disputes.inbox) != 1 || f.disputes.inbox[0].Status != models.SupportStatusOpen {
		t.Error("обращение должно попасть во входящие администратора")
	}

	_, err := f.svc.RaiseDispute(ctx, RaiseDisputeInput{
		OrderID:    f.orderID,
		BuyerID:    f.buyerID,
		BuyerName:  "Амина Белло",
		BuyerEmail: "amina@example.com",
		Reason:     models.DisputeReasonDamaged,
	})
	if apperror.CodeOf(err) != apperror.ErrCodeInvalidState {
		t.Fatalf("второй спор по замороженному заказу должен отклоняться, получили %v", err)
	}
}

func TestDisputeService_RaiseDispute_Validation(t *testing.T) {
	f := newDisputeServiceFixture(t)
	ctx := context.Background()

	_, err := f.svc.RaiseDispute(ctx, RaiseDisputeInput{
		OrderID: f.orderID,
		BuyerID: f.buyerID,
		Reason:  "плохое настроение",
	})
	if apperror.CodeOf(err) != apperror.ErrCodeValidation {
		t.Errorf("произвольная причина должна отклоняться, получили %v", err)
	}

	_, err = f.svc.RaiseDispute(ctx, RaiseDisputeInput{
		OrderID: f.orderID,
		BuyerID: uuid.New(),
		Reason:  models.DisputeReasonNotDelivered,
	})
	if apperror.CodeOf(err) != apperror.ErrCodeForbidden {
		t.Errorf("спор по чужому заказу должен отклоняться, получили %v", err)
	}
}

func TestDisputeService_Resolve_Refund(t *testing.T) {
	f := newDisputeServiceFixture(t)
	ctx := context.Background()
	dispute := f.raise(t)

	notes := "Трек-номер не отслеживается"
	if _, err := f.svc.TakeUnderReview(ctx, dispute.ID, &notes); err != nil {
		t.Fatalf("взятие в рассмотрение: %v", err)
	}

	resolved, err := f.svc.Resolve(ctx, dispute.ID, models.DisputeStatusResolvedRefund, &notes)
	if err != nil {
		t.Fatalf("решение спора: %v", err)
	}
	if resolved.Status != models.DisputeStatusResolvedRefund {
		t.Errorf("спор должен закрыться возвратом, получили %q", resolved.Status)
	}
	if resolved.ResolvedAt == nil {
		t.Error("момент решения должен фиксироваться")
	}

	order, _ := f.orders.GetByID(ctx, f.orderID)
	if order.EscrowStatus != models.EscrowStatusRefunded {
		t.Errorf("escrow должен перейти в refunded, получили %q", order.EscrowStatus)
	}
	if len(f.payouts.payouts) != 0 {
		t.Error("при возврате покупателю выплат продавцу быть не должно")
	}
}

func TestDisputeService_Resolve_Release(t *testing.T) {
	f := newDisputeServiceFixture(t)
	ctx := context.Background()
	dispute := f.raise(t)

	resolved, err := f.svc.Resolve(ctx, dispute.ID, models.DisputeStatusResolvedRelease, nil)
	if err != nil {
		t.Fatalf("решение спора: %v", err)
	}
	if resolved.Status != models.DisputeStatusResolvedRelease {
		t.Errorf("спор должен закрыться релизом, получили %q", resolved.Status)
	}

	order, _ := f.orders.GetByID(ctx, f.orderID)
	if order.EscrowStatus != models.EscrowStatusReleased {
		t.Errorf("escrow должен перейти в released, получили %q", order.EscrowStatus)
	}
	if len(f.payouts.payouts) != 1 || f.payouts.payouts[0].Amount != 25000 {
		t.Fatalf("релиз по спору должен создать выплату продавцу, получили %v", f.payouts.payouts)
	}

	// Решённый спор нельзя решить повторно.
	_, err = f.svc.Resolve(ctx, dispute.ID, models.DisputeStatusResolvedRefund, nil)
	if apperror.CodeOf(err) != apperror.ErrCodeInvalidState {
		t.Errorf("повторное решение должно отклоняться, получили %v", err)
	}
}

func TestDisputeService_Resolve_UnknownResolution(t *testing.T) {
	f := newDisputeServiceFixture(t)
	dispute := f.raise(t)

	_, err := f.svc.Resolve(context.Background(), dispute.ID, models.DisputeStatusOpen, nil)
	if apperror.CodeOf(err) != apperror.ErrCodeValidation {
		t.Errorf("решением может быть только refund или release, получили %v", err)
	}
}

func TestDisputeService_ResolveByBuyer(t *testing.T) {
	f := newDisputeServiceFixture(t)
	ctx := context.Background()
	dispute := f.raise(t)

	// Закрыть спор может только сам покупатель.
	if _, err := f.svc.ResolveByBuyer(ctx, dispute.ID, uuid.New()); apperror.CodeOf(err) != apperror.ErrCodeForbidden {
		t.Fatalf("чужой спор закрывать нельзя, получили %v", err)
	}

	resolved, err := f.svc.ResolveByBuyer(ctx, dispute.ID, f.buyerID)
	if err != nil {
		t.Fatalf("закрытие спора покупателем: %v", err)
	}
	if resolved.Status != models.DisputeStatusResolvedRelease {
		t.Errorf("закрытие покупателем означает релиз продавцу, получили %q", resolved.Status)
	}

	order, _ := f.orders.GetByID(ctx, f.orderID)
	if order.EscrowStatus != models.EscrowStatusReleased {
		t.Errorf("escrow должен перейти в released, получили %q", order.EscrowStatus)
	}
}
