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

// mockReturnStore повторяет контракт репозитория возвратов, включая побочные
// эффекты к заказу, которые в продакшене идут одной транзакцией.
type mockReturnStore struct {
	orders  *mockOrderStore
	returns map[uuid.UUID]*models.ReturnRequest
}

func newMockReturnStore(orders *mockOrderStore) *mockReturnStore {
	return &mockReturnStore{orders: orders, returns: make(map[uuid.UUID]*models.ReturnRequest)}
}

func (m *mockReturnStore) CreateWithOrderMark(ctx context.Context, req *models.ReturnRequest) error {
	req.ID = uuid.New()
	req.CreatedAt = time.Now()
	m.returns[req.ID] = req
	return m.orders.UpdateStatus(ctx, req.OrderID, models.OrderStatusReturnRequested)
}

func (m *mockReturnStore) UpdateStatusWithOrder(ctx context.Context, req *models.ReturnRequest, orderStatus string, escrowStatus *string) error {
	stored, ok := m.returns[req.ID]
	if !ok {
		return repository.ErrReturnNotFound
	}
	*stored = *req
	if err := m.orders.UpdateStatus(ctx, req.OrderID, orderStatus); err != nil {
		return err
	}
	if escrowStatus != nil {
		return m.orders.UpdateEscrowStatus(ctx, req.OrderID, *escrowStatus)
	}
	return nil
}

func (m *mockReturnStore) GetByID(ctx context.Context, id uuid.UUID) (*models.ReturnRequest, error) {
	if req, ok := m.returns[id]; ok {
		copied := *req
		return &copied, nil
	}
	return nil, repository.ErrReturnNotFound
}

func (m *mockReturnStore) GetActiveByOrderID(ctx context.Context, orderID uuid.UUID) (*models.ReturnRequest, error) {
	for _, req := range m.returns {
		if req.OrderID == orderID && models.IsActiveReturnStatus(req.Status) {
			copied := *req
			return &copied, nil
		}
	}
	return nil, repository.ErrReturnNotFound
}

func (m *mockReturnStore) ListBySeller(ctx context.Context, sellerID uuid.UUID, limit, offset int) ([]models.ReturnRequest, error) {
	var result []models.ReturnRequest
	for _, req := range m.returns {
		if req.SellerID == sellerID {
			result = append(result, *req)
		}
	}
	return result, nil
}

func (m *mockReturnStore) ListByCustomer(ctx context.Context, customerID uuid.UUID, limit, offset int) ([]models.ReturnRequest, error) {
	var result []models.ReturnRequest
	for _, req := range m.returns {
		if req.CustomerID == customerID {
			result = append(result, *req)
		}
	}
	return result, nil
}

type returnServiceFixture struct {
	svc        *ReturnService
	orders     *mockOrderStore
	returns    *mockReturnStore
	customerID uuid.UUID
	sellerID   uuid.UUID
	orderID    uuid.UUID
}

// newReturnServiceFixture готовит доставленный заказ, по которому возможен возврат.
func newReturnServiceFixture(t *testing.T) *returnServiceFixture {
	t.Helper()

	orders := newMockOrderStore()
	returns := newMockReturnStore(orders)

	f := &returnServiceFixture{
		svc:        NewReturnService(returns, orders, &mockNotifier{}, events.NewPublisher(nil)),
		orders:     orders,
		returns:    returns,
		customerID: uuid.New(),
		sellerID:   uuid.New(),
	}

	order := &models.Order{
		Number:       "FP-TEST000001",
		CustomerID:   f.customerID,
		SellerID:     f.sellerID,
		Amount:       12000,
		Status:       models.OrderStatusDelivered,
		EscrowStatus: models.EscrowStatusSellerConfirmed,
	}
	if err := orders.CreateAll(context.Background(), []*models.Order{order}); err != nil {
		t.Fatalf("подготовка заказа: %v", err)
	}
	f.orderID = order.ID
	return f
}

func (f *returnServiceFixture) createReturn(t *testing.T) *models.ReturnRequest {
	t.Helper()
	req, err := f.svc.CreateReturn(context.Background(), CreateReturnInput{
		OrderID:    f.orderID,
		CustomerID: f.customerID,
		Reason:     "Товар не соответствует описанию",
		Images:     []string{"media/images/defect.jpg"},
	})
	if err != nil {
		t.Fatalf("создание возврата: %v", err)
	}
	return req
}

func TestReturnService_CreateReturn(t *testing.T) {
	f := newReturnServiceFixture(t)
	ctx := context.Background()

	req := f.createReturn(t)
	if req.Status != models.ReturnStatusPending {
		t.Errorf("новый возврат должен быть pending, получили %q", req.Status)
	}
	if req.SellerID != f.sellerID {
		t.Error("продавец возврата должен браться из заказа")
	}

	order, _ := f.orders.GetByID(ctx, f.orderID)
	if order.Status != models.OrderStatusReturnRequested {
		t.Errorf("заказ должен перейти в return_requested, получили %q", order.Status)
	}

	// Пока первый возврат активен, второй не создаётся.
	_, err := f.svc.CreateReturn(ctx, CreateReturnInput{
		OrderID:    f.orderID,
		CustomerID: f.customerID,
		Reason:     "Передумал",
	})
	if apperror.CodeOf(err) != apperror.ErrCodeConflict {
		t.Fatalf("повторный возврат должен давать CONFLICT, получили %v", err)
	}
}

func TestReturnService_CreateReturn_Validation(t *testing.T) {
	f := newReturnServiceFixture(t)
	ctx := context.Background()

	_, err := f.svc.CreateReturn(ctx, CreateReturnInput{OrderID: f.orderID, CustomerID: f.customerID})
	if apperror.CodeOf(err) != apperror.ErrCodeValidation {
		t.Errorf("возврат без причины должен отклоняться, получили %v", err)
	}

	_, err = f.svc.CreateReturn(ctx, CreateReturnInput{
		OrderID:    f.orderID,
		CustomerID: uuid.New(),
		Reason:     "Не мой заказ",
	})
	if apperror.CodeOf(err) != apperror.ErrCodeForbidden {
		t.Errorf("чужой заказ должен отклоняться, получили %v", err)
	}

	// До доставки возврат невозможен.
	if err := f.orders.UpdateStatus(ctx, f.orderID, models.OrderStatusShipped); err != nil {
		t.Fatalf("подготовка статуса: %v", err)
	}
	_, err = f.svc.CreateReturn(ctx, CreateReturnInput{
		OrderID:    f.orderID,
		CustomerID: f.customerID,
		Reason:     "Ещё не доставлен",
	})
	if apperror.CodeOf(err) != apperror.ErrCodeInvalidState {
		t.Errorf("возврат по недоставленному заказу должен давать INVALID_STATE, получили %v", err)
	}
}

func TestReturnService_RefundFlow(t *testing.T) {
	f := newReturnServiceFixture(t)
	ctx := context.Background()
	req := f.createReturn(t)

	notes := "Одобрено после фото"
	approved, err := f.svc.UpdateReturnStatus(ctx, req.ID, f.sellerID, models.RoleSeller, models.ReturnStatusApproved, &notes)
	if err != nil {
		t.Fatalf("одобрение возврата: %v", err)
	}
	if approved.SellerNotes == nil || *approved.SellerNotes != notes {
		t.Error("заметки продавца должны сохраняться")
	}

	order, _ := f.orders.GetByID(ctx, f.orderID)
	if order.Status != models.OrderStatusReturnApproved {
		t.Errorf("заказ должен перейти в return_approved, получили %q", order.Status)
	}

	if _, err := f.svc.UpdateReturnStatus(ctx, req.ID, f.sellerID, models.RoleSeller, models.ReturnStatusItemReceived, nil); err != nil {
		t.Fatalf("получение товара: %v", err)
	}
	if _, err := f.svc.UpdateReturnStatus(ctx, req.ID, f.sellerID, models.RoleSeller, models.ReturnStatusRefunded, nil); err != nil {
		t.Fatalf("возврат денег: %v", err)
	}

	// Возврат денег закрывает заказ и возвращает средства из escrow.
	order, _ = f.orders.GetByID(ctx, f.orderID)
	if order.Status != models.OrderStatusReturned {
		t.Errorf("заказ должен перейти в returned, получили %q", order.Status)
	}
	if order.EscrowStatus != models.EscrowStatusRefunded {
		t.Errorf("escrow должен перейти в refunded, получили %q", order.EscrowStatus)
	}
}

func TestReturnService_ItemReceivedRefundsEscrow(t *testing.T) {
	f := newReturnServiceFixture(t)
	ctx := context.Background()
	req := f.createReturn(t)

	if _, err := f.svc.UpdateReturnStatus(ctx, req.ID, f.sellerID, models.RoleSeller, models.ReturnStatusApproved, nil); err != nil {
		t.Fatalf("одобрение возврата: %v", err)
	}
	if _, err := f.svc.UpdateReturnStatus(ctx, req.ID, f.sellerID, models.RoleSeller, models.ReturnStatusItemReceived, nil); err != nil {
		t.Fatalf("получение товара: %v", err)
	}

	// Получение товара продавцом уже закрывает заказ и возвращает средства,
	// не дожидаясь отдельного шага refunded.
	order, _ := f.orders.GetByID(ctx, f.orderID)
	if order.Status != models.OrderStatusReturned {
		t.Errorf("после item_received заказ должен быть returned, получили %q", order.Status)
	}
	if order.EscrowStatus != models.EscrowStatusRefunded {
		t.Errorf("после item_received escrow должен быть refunded, получили %q", order.EscrowStatus)
	}
}

func TestReturnService_RejectedFlow(t *testing.T) {
	f := newReturnServiceFixture(t)
	ctx := context.Background()
	req := f.createReturn(t)

	if _, err := f.svc.UpdateReturnStatus(ctx, req.ID, f.sellerID, models.RoleSeller, models.ReturnStatusRejected, nil); err != nil {
		t.Fatalf("отклонение возврата: %v", err)
	}

	order, _ := f.orders.GetByID(ctx, f.orderID)
	if order.Status != models.OrderStatusReturnRejected {
		t.Errorf("заказ должен перейти в return_rejected, получили %q", order.Status)
	}
	if order.EscrowStatus != models.EscrowStatusSellerConfirmed {
		t.Errorf("escrow отклонённого возврата не меняется, получили %q", order.EscrowStatus)
	}

	// Отклонение финально.
	_, err := f.svc.UpdateReturnStatus(ctx, req.ID, f.sellerID, models.RoleSeller, models.ReturnStatusApproved, nil)
	if apperror.CodeOf(err) != apperror.ErrCodeInvalidState {
		t.Errorf("отклонённый возврат нельзя одобрить, получили %v", err)
	}
}

func TestReturnService_ActorChecks(t *testing.T) {
	f := newReturnServiceFixture(t)
	ctx := context.Background()
	req := f.createReturn(t)

	// Покупатель не решает судьбу собственного возврата.
	_, err := f.svc.UpdateReturnStatus(ctx, req.ID, f.customerID, models.RoleCustomer, models.ReturnStatusApproved, nil)
	if apperror.CodeOf(err) != apperror.ErrCodeForbidden {
		t.Errorf("покупатель не должен одобрять возврат, получили %v", err)
	}

	// Администратор может, его заметки уходят в admin_notes.
	notes := "Решение поддержки"
	updated, err := f.svc.UpdateReturnStatus(ctx, req.ID, uuid.New(), models.RoleAdmin, models.ReturnStatusApproved, &notes)
	if err != nil {
		t.Fatalf("одобрение администратором: %v", err)
	}
	if updated.AdminNotes == nil || *updated.AdminNotes != notes {
		t.Error("заметки администратора должны сохраняться в admin_notes")
	}

	// Доступ на чтение только у участников и администратора.
	if _, err := f.svc.GetReturn(ctx, req.ID, uuid.New(), models.RoleCustomer); apperror.CodeOf(err) != apperror.ErrCodeForbidden {
		t.Errorf("посторонний не должен видеть возврат, получили %v", err)
	}
}
