package service

import (
	"context"
	"errors"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/fairprice/fairprice-backend/internal/events"
	"github.com/fairprice/fairprice-backend/internal/logger"
	"github.com/fairprice/fairprice-backend/internal/mail"
	"github.com/fairprice/fairprice-backend/internal/models"
	"github.com/fairprice/fairprice-backend/internal/pkg/apperror"
	"github.com/fairprice/fairprice-backend/internal/repository"
)

func TestMain(m *testing.M) {
	logger.Init("error")
	os.Exit(m.Run())
}

// mockOrderStore хранит заказы в памяти и повторяет контракт репозитория,
// включая фиксацию seller_confirmed_at при подтверждении отправки.
type mockOrderStore struct {
	mu         sync.Mutex
	orders     map[uuid.UUID]*models.Order
	failCreate error
}

func newMockOrderStore() *mockOrderStore {
	return &mockOrderStore{orders: make(map[uuid.UUID]*models.Order)}
}

func (m *mockOrderStore) CreateAll(ctx context.Context, orders []*models.Order) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failCreate != nil {
		return m.failCreate
	}
	now := time.Now()
	for _, order := range orders {
		order.ID = uuid.New()
		order.CreatedAt = now
		order.UpdatedAt = now
		m.orders[order.ID] = order
	}
	return nil
}

func (m *mockOrderStore) GetByID(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if order, ok := m.orders[id]; ok {
		copied := *order
		return &copied, nil
	}
	return nil, repository.ErrOrderNotFound
}

func (m *mockOrderStore) GetByNumber(ctx context.Context, number string) (*models.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, order := range m.orders {
		if order.Number == number {
			copied := *order
			return &copied, nil
		}
	}
	return nil, repository.ErrOrderNotFound
}

func (m *mockOrderStore) ListByCustomer(ctx context.Context, customerID uuid.UUID, limit, offset int) ([]models.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var result []models.Order
	for _, order := range m.orders {
		if order.CustomerID == customerID {
			result = append(result, *order)
		}
	}
	return result, nil
}

func (m *mockOrderStore) ListBySeller(ctx context.Context, sellerID uuid.UUID, limit, offset int) ([]models.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var result []models.Order
	for _, order := range m.orders {
		if order.SellerID == sellerID {
			result = append(result, *order)
		}
	}
	return result, nil
}

func (m *mockOrderStore) UpdateStatus(ctx context.Context, id uuid.UUID, status string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	order, ok := m.orders[id]
	if !ok {
		return repository.ErrOrderNotFound
	}
	order.Status = status
	return nil
}

func (m *mockOrderStore) UpdateEscrowStatus(ctx context.Context, id uuid.UUID, escrowStatus string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	order, ok := m.orders[id]
	if !ok {
		return repository.ErrOrderNotFound
	}
	order.EscrowStatus = escrowStatus
	if escrowStatus == models.EscrowStatusSellerConfirmed {
		now := time.Now()
		order.SellerConfirmedAt = &now
	}
	return nil
}

func (m *mockOrderStore) AppendTrackingStep(ctx context.Context, orderID uuid.UUID, step *models.TrackingStep, carrier, trackingID *string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	order, ok := m.orders[orderID]
	if !ok {
		return repository.ErrOrderNotFound
	}
	step.ID = uuid.New()
	step.OrderID = orderID
	step.Position = len(order.TrackingSteps) + 1
	step.Completed = true
	order.TrackingSteps = append(order.TrackingSteps, *step)
	current := step.Status
	order.TrackingStatus = &current
	if carrier != nil {
		order.Carrier = carrier
	}
	if trackingID != nil {
		order.TrackingID = trackingID
	}
	return nil
}

func (m *mockOrderStore) ListAutoReleaseCandidates(ctx context.Context, cutoff time.Time) ([]models.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var result []models.Order
	for _, order := range m.orders {
		if order.EscrowStatus == models.EscrowStatusSellerConfirmed &&
			order.SellerConfirmedAt != nil && !order.SellerConfirmedAt.After(cutoff) {
			result = append(result, *order)
		}
	}
	return result, nil
}

func (m *mockOrderStore) CountByCustomer(ctx context.Context, customerID uuid.UUID) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	count := 0
	for _, order := range m.orders {
		if order.CustomerID == customerID {
			count++
		}
	}
	return count, nil
}

type mockCatalogStore struct {
	products map[uuid.UUID]*models.Product
	sellers  map[uuid.UUID]*models.Seller
}

func newMockCatalogStore() *mockCatalogStore {
	return &mockCatalogStore{
		products: make(map[uuid.UUID]*models.Product),
		sellers:  make(map[uuid.UUID]*models.Seller),
	}
}

func (m *mockCatalogStore) addProduct(sellerID uuid.UUID, price float64) *models.Product {
	product := &models.Product{
		ID:       uuid.New(),
		SellerID: sellerID,
		Name:     "Тестовый товар",
		Price:    price,
		InStock:  true,
	}
	m.products[product.ID] = product
	return product
}

func (m *mockCatalogStore) GetProductByID(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	if product, ok := m.products[id]; ok {
		return product, nil
	}
	return nil, repository.ErrProductNotFound
}

func (m *mockCatalogStore) GetSellerByID(ctx context.Context, id uuid.UUID) (*models.Seller, error) {
	if seller, ok := m.sellers[id]; ok {
		return seller, nil
	}
	return nil, repository.ErrSellerNotFound
}

type mockNegotiationStore struct {
	negotiations map[uuid.UUID]*models.NegotiationRequest
}

func (m *mockNegotiationStore) GetByID(ctx context.Context, id uuid.UUID) (*models.NegotiationRequest, error) {
	if n, ok := m.negotiations[id]; ok {
		return n, nil
	}
	return nil, repository.ErrNegotiationNotFound
}

func (m *mockNegotiationStore) UpdateStatus(ctx context.Context, id uuid.UUID, status string) error {
	if n, ok := m.negotiations[id]; ok {
		n.Status = status
		return nil
	}
	return repository.ErrNegotiationNotFound
}

type mockCouponRedeemer struct {
	coupons  map[string]*models.Coupon
	rewards  []float64
	restored []uuid.UUID
}

func (m *mockCouponRedeemer) Redeem(ctx context.Context, userID uuid.UUID, code string) (*models.Coupon, error) {
	if coupon, ok := m.coupons[code]; ok && coupon.UserID == userID {
		return coupon, nil
	}
	return nil, apperror.ErrCouponNotFound
}

func (m *mockCouponRedeemer) Restore(ctx context.Context, id uuid.UUID) error {
	m.restored = append(m.restored, id)
	return nil
}

func (m *mockCouponRedeemer) RewardFirstOrder(ctx context.Context, customerID uuid.UUID, orderTotal float64) error {
	m.rewards = append(m.rewards, orderTotal)
	return nil
}

type mockPayoutStore struct {
	mu      sync.Mutex
	payouts []*models.Payout
}

func (m *mockPayoutStore) Create(ctx context.Context, p *models.Payout) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p.ID = uuid.New()
	m.payouts = append(m.payouts, p)
	return nil
}

func (m *mockPayoutStore) ListBySeller(ctx context.Context, sellerID uuid.UUID, limit, offset int) ([]models.Payout, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var result []models.Payout
	for _, p := range m.payouts {
		if p.SellerID == sellerID {
			result = append(result, *p)
		}
	}
	return result, nil
}

type mockDisputeChecker struct {
	open map[uuid.UUID]*models.Dispute
}

func (m *mockDisputeChecker) GetOpenByOrderID(ctx context.Context, orderID uuid.UUID) (*models.Dispute, error) {
	if m.open != nil {
		if dispute, ok := m.open[orderID]; ok {
			return dispute, nil
		}
	}
	return nil, repository.ErrDisputeNotFound
}

type mockNotifier struct {
	mu            sync.Mutex
	notifications []models.Notification
}

func (m *mockNotifier) Notify(ctx context.Context, userID *uuid.UUID, notifType, message string, link *string) (*models.Notification, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	notification := models.Notification{ID: uuid.New(), UserID: userID, Type: notifType, Message: message, Link: link}
	m.notifications = append(m.notifications, notification)
	return &notification, nil
}

func (m *mockNotifier) countFor(userID uuid.UUID) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	count := 0
	for _, n := range m.notifications {
		if n.UserID != nil && *n.UserID == userID {
			count++
		}
	}
	return count
}

// waitFor дожидается уведомлений пользователя, рассылаемых в фоне.
func (m *mockNotifier) waitFor(t *testing.T, userID uuid.UUID, want int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if m.countFor(userID) >= want {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("не дождались %d уведомлений пользователя %s, есть %d", want, userID, m.countFor(userID))
}

type orderServiceFixture struct {
	svc      *OrderService
	orders   *mockOrderStore
	catalog  *mockCatalogStore
	coupons  *mockCouponRedeemer
	payouts  *mockPayoutStore
	disputes *mockDisputeChecker
	negs     *mockNegotiationStore
	notifier *mockNotifier
}

func newOrderServiceFixture(t *testing.T, releaseWindow time.Duration) *orderServiceFixture {
	t.Helper()

	f := &orderServiceFixture{
		orders:   newMockOrderStore(),
		catalog:  newMockCatalogStore(),
		coupons:  &mockCouponRedeemer{coupons: make(map[string]*models.Coupon)},
		payouts:  &mockPayoutStore{},
		disputes: &mockDisputeChecker{},
		negs:     &mockNegotiationStore{negotiations: make(map[uuid.UUID]*models.NegotiationRequest)},
		notifier: &mockNotifier{},
	}

	publisher := events.NewPublisher(nil)
	svc, err := NewOrderService(
		f.orders, f.catalog, f.negs, f.coupons, f.payouts, f.disputes,
		f.notifier, publisher, mail.NewOutbox(publisher), releaseWindow,
	)
	if err != nil {
		t.Fatalf("не удалось собрать сервис заказов: %v", err)
	}
	f.svc = svc
	return f
}

func TestOrderService_CreateOrders(t *testing.T) {
	f := newOrderServiceFixture(t, 72*time.Hour)
	ctx := context.Background()

	sellerID := uuid.New()
	customerID := uuid.New()
	first := f.catalog.addProduct(sellerID, 10000)
	second := f.catalog.addProduct(sellerID, 2500)

	orders, err := f.svc.CreateOrders(ctx, CreateOrderInput{
		CustomerID: customerID,
		Lines: []CheckoutLine{
			{ProductID: first.ID, Quantity: 2},
			{ProductID: second.ID, Quantity: 1},
		},
		ShippingAddress: "Лагос, ул. Рыночная 1",
		PaymentMethod:   "card",
	})
	if err != nil {
		t.Fatalf("оформление вернуло ошибку: %v", err)
	}
	if len(orders) != 2 {
		t.Fatalf("ожидалось 2 заказа по числу позиций, получили %d", len(orders))
	}

	for _, order := range orders {
		if order.Status != models.OrderStatusPending {
			t.Errorf("новый заказ должен быть pending, получили %q", order.Status)
		}
		if order.EscrowStatus != models.EscrowStatusHeld {
			t.Errorf("средства нового заказа должны быть held, получили %q", order.EscrowStatus)
		}
		if order.Number == "" || len(order.Number) != 13 {
			t.Errorf("номер заказа должен иметь формат FP-XXXXXXXXXX, получили %q", order.Number)
		}
		if len(order.TrackingSteps) != 5 {
			t.Fatalf("ожидалось 5 стартовых шагов трекинга, получили %d", len(order.TrackingSteps))
		}
		completed := 0
		for _, step := range order.TrackingSteps {
			if step.Completed {
				completed++
			}
		}
		if completed != 3 {
			t.Errorf("оформление, оплата и уведомление продавца должны быть завершены, завершено %d", completed)
		}
	}

	if orders[0].Amount != 20000 {
		t.Errorf("сумма первого заказа должна быть 20000, получили %.2f", orders[0].Amount)
	}

	// Первый заказ покупателя запускает реферальную награду с общей суммой чекаута.
	if len(f.coupons.rewards) != 1 || f.coupons.rewards[0] != 22500 {
		t.Errorf("ожидалась одна реферальная проверка на 22500, получили %v", f.coupons.rewards)
	}
}

func TestOrderService_CreateOrders_CouponDiscount(t *testing.T) {
	f := newOrderServiceFixture(t, 72*time.Hour)
	ctx := context.Background()

	customerID := uuid.New()
	product := f.catalog.addProduct(uuid.New(), 3000)
	code := "FPTEST12345"
	f.coupons.coupons[code] = &models.Coupon{ID: uuid.New(), Code: code, Amount: 5000, UserID: customerID}

	orders, err := f.svc.CreateOrders(ctx, CreateOrderInput{
		CustomerID:      customerID,
		Lines:           []CheckoutLine{{ProductID: product.ID, Quantity: 1}},
		ShippingAddress: "Абуджа",
		PaymentMethod:   "card",
		CouponCode:      &code,
	})
	if err != nil {
		t.Fatalf("оформление с купоном вернуло ошибку: %v", err)
	}

	// Скидка больше суммы заказа не уводит его в минус.
	if orders[0].Amount != 0 {
		t.Errorf("сумма заказа с купоном больше цены должна быть 0, получили %.2f", orders[0].Amount)
	}
}

func TestOrderService_CreateOrders_CouponRestoredOnFailure(t *testing.T) {
	f := newOrderServiceFixture(t, 72*time.Hour)
	ctx := context.Background()

	customerID := uuid.New()
	product := f.catalog.addProduct(uuid.New(), 3000)
	code := "FPTEST67890"
	coupon := &models.Coupon{ID: uuid.New(), Code: code, Amount: 1000, UserID: customerID}
	f.coupons.coupons[code] = coupon
	f.orders.failCreate = errors.New("обрыв соединения с базой")

	_, err := f.svc.CreateOrders(ctx, CreateOrderInput{
		CustomerID:      customerID,
		Lines:           []CheckoutLine{{ProductID: product.ID, Quantity: 1}},
		ShippingAddress: "Абуджа",
		PaymentMethod:   "card",
		CouponCode:      &code,
	})
	if err == nil {
		t.Fatal("оформление должно было упасть вместе с базой")
	}

	// Сорвавшийся чекаут не сжигает купон: погашение компенсируется.
	if len(f.coupons.restored) != 1 || f.coupons.restored[0] != coupon.ID {
		t.Fatalf("купон должен вернуться владельцу, restored = %v", f.coupons.restored)
	}
}

func TestOrderService_CreateOrders_NotifiesBothParties(t *testing.T) {
	f := newOrderServiceFixture(t, 72*time.Hour)
	ctx := context.Background()

	sellerID := uuid.New()
	customerID := uuid.New()
	product := f.catalog.addProduct(sellerID, 6000)

	orders, err := f.svc.CreateOrders(ctx, CreateOrderInput{
		CustomerID:      customerID,
		CustomerEmail:   "buyer@example.com",
		Lines:           []CheckoutLine{{ProductID: product.ID, Quantity: 1}},
		ShippingAddress: "Лагос",
		PaymentMethod:   "card",
	})
	if err != nil {
		t.Fatalf("оформление вернуло ошибку: %v", err)
	}
	if orders[0].TrackingStatus == nil || *orders[0].TrackingStatus != "Продавец уведомлён" {
		t.Errorf("текущий статус трекинга должен отражать последний завершённый шаг, получили %v", orders[0].TrackingStatus)
	}

	// Уведомления расходятся в фоне обеим сторонам сделки.
	f.notifier.waitFor(t, sellerID, 1)
	f.notifier.waitFor(t, customerID, 1)
}

func TestOrderService_CreateOrders_NegotiatedPrice(t *testing.T) {
	f := newOrderServiceFixture(t, 72*time.Hour)
	ctx := context.Background()

	customerID := uuid.New()
	product := f.catalog.addProduct(uuid.New(), 100000)

	counter := 80000.0
	negotiation := &models.NegotiationRequest{
		ID:            uuid.New(),
		ProductID:     product.ID,
		CustomerID:    customerID,
		ProposedPrice: 70000,
		CounterPrice:  &counter,
		Status:        models.NegotiationStatusAccepted,
	}
	f.negs.negotiations[negotiation.ID] = negotiation

	orders, err := f.svc.CreateOrders(ctx, CreateOrderInput{
		CustomerID:      customerID,
		Lines:           []CheckoutLine{{ProductID: product.ID, Quantity: 1}},
		ShippingAddress: "Кано",
		PaymentMethod:   "card",
		NegotiationID:   &negotiation.ID,
	})
	if err != nil {
		t.Fatalf("оформление по торгу вернуло ошибку: %v", err)
	}

	// Встречная цена продавца перекрывает и каталог, и предложение покупателя.
	if orders[0].UnitPrice != 80000 {
		t.Errorf("цена должна быть согласованной в торге 80000, получили %.2f", orders[0].UnitPrice)
	}
	if negotiation.Status != models.NegotiationStatusPurchased {
		t.Errorf("после покупки торг должен закрыться purchased, получили %q", negotiation.Status)
	}
}

func TestOrderService_StandardFlow(t *testing.T) {
	f := newOrderServiceFixture(t, 72*time.Hour)
	ctx := context.Background()

	sellerID := uuid.New()
	customerID := uuid.New()
	f.catalog.sellers[sellerID] = &models.Seller{ID: sellerID, Name: "Lagos Traders", Email: "seller@example.com"}
	product := f.catalog.addProduct(sellerID, 15000)

	orders, err := f.svc.CreateOrders(ctx, CreateOrderInput{
		CustomerID:      customerID,
		Lines:           []CheckoutLine{{ProductID: product.ID, Quantity: 1}},
		ShippingAddress: "Ибадан",
		PaymentMethod:   "card",
	})
	if err != nil {
		t.Fatalf("оформление вернуло ошибку: %v", err)
	}
	orderID := orders[0].ID

	if _, err := f.svc.UpdateOrderStatus(ctx, orderID, sellerID, models.RoleSeller, models.OrderStatusProcessing); err != nil {
		t.Fatalf("переход в processing: %v", err)
	}

	// Отправка продавцом двигает escrow в seller_confirmed и фиксирует момент.
	shipped, err := f.svc.UpdateOrderStatus(ctx, orderID, sellerID, models.RoleSeller, models.OrderStatusShipped)
	if err != nil {
		t.Fatalf("переход в shipped: %v", err)
	}
	if shipped.EscrowStatus != models.EscrowStatusSellerConfirmed {
		t.Fatalf("после отправки escrow должен быть seller_confirmed, получили %q", shipped.EscrowStatus)
	}
	if shipped.SellerConfirmedAt == nil {
		t.Fatal("seller_confirmed_at должен быть зафиксирован")
	}

	if _, err := f.svc.UpdateOrderStatus(ctx, orderID, sellerID, models.RoleSeller, models.OrderStatusDelivered); err != nil {
		t.Fatalf("переход в delivered: %v", err)
	}

	released, err := f.svc.ConfirmDelivery(ctx, orderID, customerID)
	if err != nil {
		t.Fatalf("подтверждение получения: %v", err)
	}
	if released.EscrowStatus != models.EscrowStatusReleased {
		t.Fatalf("после подтверждения покупателем escrow должен быть released, получили %q", released.EscrowStatus)
	}

	f.payouts.mu.Lock()
	defer f.payouts.mu.Unlock()
	if len(f.payouts.payouts) != 1 {
		t.Fatalf("релиз должен создать одну выплату, получили %d", len(f.payouts.payouts))
	}
	payout := f.payouts.payouts[0]
	if payout.SellerID != sellerID || payout.Amount != 15000 || payout.Status != models.PayoutStatusPending {
		t.Errorf("неожиданная выплата: %+v", payout)
	}
}

func TestOrderService_AppendTrackingStep(t *testing.T) {
	f := newOrderServiceFixture(t, 72*time.Hour)
	ctx := context.Background()

	sellerID := uuid.New()
	customerID := uuid.New()
	product := f.catalog.addProduct(sellerID, 8000)

	orders, err := f.svc.CreateOrders(ctx, CreateOrderInput{
		CustomerID:      customerID,
		Lines:           []CheckoutLine{{ProductID: product.ID, Quantity: 1}},
		ShippingAddress: "Порт-Харкорт",
		PaymentMethod:   "card",
	})
	if err != nil {
		t.Fatalf("оформление вернуло ошибку: %v", err)
	}
	orderID := orders[0].ID

	carrier := "DHL"
	trackingID := "DHL-123456"
	step, err := f.svc.AppendTrackingStep(ctx, orderID, sellerID, models.RoleSeller,
		"Прибыл в сортировочный центр", "Лагос", &carrier, &trackingID)
	if err != nil {
		t.Fatalf("добавление шага трекинга: %v", err)
	}
	if step.Position != 6 || !step.Completed {
		t.Errorf("шаг должен встать завершённым в конец истории, получили %+v", step)
	}

	order, _ := f.orders.GetByID(ctx, orderID)
	// Денормализованный статус заказа следует за последним шагом, сам
	// жизненный цикл заказа не трогается.
	if order.TrackingStatus == nil || *order.TrackingStatus != "Прибыл в сортировочный центр" {
		t.Errorf("текущий статус трекинга не обновился, получили %v", order.TrackingStatus)
	}
	if order.Status != models.OrderStatusPending {
		t.Errorf("статус заказа не должен меняться шагом трекинга, получили %q", order.Status)
	}
	if order.Carrier == nil || *order.Carrier != carrier || order.TrackingID == nil || *order.TrackingID != trackingID {
		t.Errorf("перевозчик и трек-номер должны сохраниться, получили %v %v", order.Carrier, order.TrackingID)
	}

	if _, err := f.svc.AppendTrackingStep(ctx, orderID, uuid.New(), models.RoleCustomer,
		"Подмена", "Нигде", nil, nil); apperror.CodeOf(err) != apperror.ErrCodeForbidden {
		t.Errorf("шаги трекинга добавляет только продавец или админ, получили %v", err)
	}
}

func TestOrderService_UpdateOrderStatus_InvalidTransition(t *testing.T) {
	f := newOrderServiceFixture(t, 72*time.Hour)
	ctx := context.Background()

	sellerID := uuid.New()
	product := f.catalog.addProduct(sellerID, 5000)

	orders, err := f.svc.CreateOrders(ctx, CreateOrderInput{
		CustomerID:      uuid.New(),
		Lines:           []CheckoutLine{{ProductID: product.ID, Quantity: 1}},
		ShippingAddress: "Энугу",
		PaymentMethod:   "card",
	})
	if err != nil {
		t.Fatalf("оформление вернуло ошибку: %v", err)
	}

	// Скачок pending -> delivered запрещён таблицей переходов.
	_, err = f.svc.UpdateOrderStatus(ctx, orders[0].ID, sellerID, models.RoleSeller, models.OrderStatusDelivered)
	if apperror.CodeOf(err) != apperror.ErrCodeInvalidState {
		t.Fatalf("ожидался код INVALID_STATE, получили %v", err)
	}
}

func TestOrderService_ReleaseBlockedByOpenDispute(t *testing.T) {
	f := newOrderServiceFixture(t, 72*time.Hour)
	ctx := context.Background()

	sellerID := uuid.New()
	customerID := uuid.New()
	product := f.catalog.addProduct(sellerID, 7000)

	orders, err := f.svc.CreateOrders(ctx, CreateOrderInput{
		CustomerID:      customerID,
		Lines:           []CheckoutLine{{ProductID: product.ID, Quantity: 1}},
		ShippingAddress: "Джос",
		PaymentMethod:   "card",
	})
	if err != nil {
		t.Fatalf("оформление вернуло ошибку: %v", err)
	}
	orderID := orders[0].ID

	if err := f.orders.UpdateEscrowStatus(ctx, orderID, models.EscrowStatusSellerConfirmed); err != nil {
		t.Fatalf("подготовка escrow: %v", err)
	}
	f.disputes.open = map[uuid.UUID]*models.Dispute{orderID: {ID: uuid.New(), OrderID: orderID}}

	_, err = f.svc.UpdateEscrowStatus(ctx, orderID, customerID, models.RoleCustomer, models.EscrowStatusReleased)
	if apperror.CodeOf(err) != apperror.ErrCodeDisputePending {
		t.Fatalf("релиз при открытом споре должен блокироваться кодом DISPUTE_PENDING, получили %v", err)
	}

	payoutsBefore := len(f.payouts.payouts)
	if payoutsBefore != 0 {
		t.Fatalf("выплат при заблокированном релизе быть не должно, получили %d", payoutsBefore)
	}
}

func TestOrderService_AutoRelease(t *testing.T) {
	window := 72 * time.Hour
	f := newOrderServiceFixture(t, window)
	ctx := context.Background()

	sellerID := uuid.New()
	f.catalog.sellers[sellerID] = &models.Seller{ID: sellerID, Name: "Kano Market", Email: "kano@example.com"}
	product := f.catalog.addProduct(sellerID, 9000)

	orders, err := f.svc.CreateOrders(ctx, CreateOrderInput{
		CustomerID:      uuid.New(),
		Lines:           []CheckoutLine{{ProductID: product.ID, Quantity: 1}},
		ShippingAddress: "Кано",
		PaymentMethod:   "card",
	})
	if err != nil {
		t.Fatalf("оформление вернуло ошибку: %v", err)
	}
	orderID := orders[0].ID

	if err := f.orders.UpdateEscrowStatus(ctx, orderID, models.EscrowStatusSellerConfirmed); err != nil {
		t.Fatalf("подготовка escrow: %v", err)
	}

	confirmedAt := time.Now().Add(-window + time.Hour)
	f.orders.orders[orderID].SellerConfirmedAt = &confirmedAt

	order, _ := f.orders.GetByID(ctx, orderID)
	if f.svc.AutoReleaseEligible(order, time.Now()) {
		t.Fatal("до истечения окна авторелиз не должен срабатывать")
	}

	released, err := f.svc.ReleaseDueEscrows(ctx, time.Now())
	if err != nil {
		t.Fatalf("проход авторелиза: %v", err)
	}
	if released != 0 {
		t.Fatalf("до истечения окна релизов быть не должно, получили %d", released)
	}

	// Сдвигаем подтверждение за границу окна.
	expired := time.Now().Add(-window - time.Minute)
	f.orders.orders[orderID].SellerConfirmedAt = &expired

	released, err = f.svc.ReleaseDueEscrows(ctx, time.Now())
	if err != nil {
		t.Fatalf("проход авторелиза: %v", err)
	}
	if released != 1 {
		t.Fatalf("ожидался один авторелиз, получили %d", released)
	}

	order, _ = f.orders.GetByID(ctx, orderID)
	if order.EscrowStatus != models.EscrowStatusReleased {
		t.Fatalf("после авторелиза escrow должен быть released, получили %q", order.EscrowStatus)
	}
}

func TestOrderService_GetOrder_Access(t *testing.T) {
	f := newOrderServiceFixture(t, 72*time.Hour)
	ctx := context.Background()

	sellerID := uuid.New()
	customerID := uuid.New()
	product := f.catalog.addProduct(sellerID, 4000)

	orders, err := f.svc.CreateOrders(ctx, CreateOrderInput{
		CustomerID:      customerID,
		Lines:           []CheckoutLine{{ProductID: product.ID, Quantity: 1}},
		ShippingAddress: "Лагос",
		PaymentMethod:   "card",
	})
	if err != nil {
		t.Fatalf("оформление вернуло ошибку: %v", err)
	}
	orderID := orders[0].ID

	if _, err := f.svc.GetOrder(ctx, orderID, customerID, models.RoleCustomer); err != nil {
		t.Errorf("покупатель должен видеть свой заказ: %v", err)
	}
	if _, err := f.svc.GetOrder(ctx, orderID, sellerID, models.RoleSeller); err != nil {
		t.Errorf("продавец должен видеть свой заказ: %v", err)
	}
	if _, err := f.svc.GetOrder(ctx, orderID, uuid.New(), models.RoleCustomer); apperror.CodeOf(err) != apperror.ErrCodeForbidden {
		t.Errorf("посторонний не должен видеть заказ, получили %v", err)
	}

	// Отслеживание по номеру публично.
	tracked, err := f.svc.TrackByNumber(ctx, orders[0].Number)
	if err != nil {
		t.Fatalf("отслеживание по номеру: %v", err)
	}
	if tracked.ID != orderID {
		t.Error("по номеру должен находиться тот же заказ")
	}
}
