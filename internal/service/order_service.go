package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jaevor/go-nanoid"

	"github.com/fairprice/fairprice-backend/internal/events"
	"github.com/fairprice/fairprice-backend/internal/goroutine"
	"github.com/fairprice/fairprice-backend/internal/logger"
	"github.com/fairprice/fairprice-backend/internal/mail"
	"github.com/fairprice/fairprice-backend/internal/metrics"
	"github.com/fairprice/fairprice-backend/internal/models"
	"github.com/fairprice/fairprice-backend/internal/pkg/apperror"
	"github.com/fairprice/fairprice-backend/internal/repository"
)

// Алфавит номеров заказов без визуально похожих символов.
const orderNumberAlphabet = "0123456789ABCDEFGHJKMNPQRSTUVWXYZ"

// OrderRepository описывает взаимодействие сервиса с хранилищем заказов.
type OrderRepository interface {
	CreateAll(ctx context.Context, orders []*models.Order) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Order, error)
	GetByNumber(ctx context.Context, number string) (*models.Order, error)
	ListByCustomer(ctx context.Context, customerID uuid.UUID, limit, offset int) ([]models.Order, error)
	ListBySeller(ctx context.Context, sellerID uuid.UUID, limit, offset int) ([]models.Order, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status string) error
	UpdateEscrowStatus(ctx context.Context, id uuid.UUID, escrowStatus string) error
	AppendTrackingStep(ctx context.Context, orderID uuid.UUID, step *models.TrackingStep, carrier, trackingID *string) error
	ListAutoReleaseCandidates(ctx context.Context, cutoff time.Time) ([]models.Order, error)
	CountByCustomer(ctx context.Context, customerID uuid.UUID) (int, error)
}

// ProductCatalog описывает доступ сервиса заказов к каталогу.
type ProductCatalog interface {
	GetProductByID(ctx context.Context, id uuid.UUID) (*models.Product, error)
	GetSellerByID(ctx context.Context, id uuid.UUID) (*models.Seller, error)
}

// NegotiationStore описывает доступ сервиса заказов к торгам.
type NegotiationStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.NegotiationRequest, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status string) error
}

// CouponRedeemer описывает купонные операции, нужные при оформлении заказа.
type CouponRedeemer interface {
	Redeem(ctx context.Context, userID uuid.UUID, code string) (*models.Coupon, error)
	Restore(ctx context.Context, id uuid.UUID) error
	RewardFirstOrder(ctx context.Context, customerID uuid.UUID, orderTotal float64) error
}

// PayoutStore описывает создание и чтение выплат продавцам.
type PayoutStore interface {
	Create(ctx context.Context, p *models.Payout) error
	ListBySeller(ctx context.Context, sellerID uuid.UUID, limit, offset int) ([]models.Payout, error)
}

// DisputeChecker сообщает, есть ли по заказу незакрытый спор.
type DisputeChecker interface {
	GetOpenByOrderID(ctx context.Context, orderID uuid.UUID) (*models.Dispute, error)
}

// CheckoutLine одна позиция чекаута.
type CheckoutLine struct {
	ProductID uuid.UUID `json:"product_id"`
	Quantity  int       `json:"quantity"`
}

// CreateOrderInput входные данные оформления заказа.
type CreateOrderInput struct {
	CustomerID      uuid.UUID
	CustomerEmail   string
	Lines           []CheckoutLine
	ShippingAddress string
	PaymentMethod   string
	CouponCode      *string
	NegotiationID   *uuid.UUID
}

// OrderService содержит бизнес-логику жизненного цикла заказов и escrow.
type OrderService struct {
	orders        OrderRepository
	catalog       ProductCatalog
	negotiations  NegotiationStore
	coupons       CouponRedeemer
	payouts       PayoutStore
	disputes      DisputeChecker
	notifier      Notifier
	publisher     *events.Publisher
	mailer        *mail.Outbox
	releaseWindow time.Duration
	newNumber     func() string
}

// NewOrderService создаёт сервис заказов.
func NewOrderService(
	orders OrderRepository,
	catalog ProductCatalog,
	negotiations NegotiationStore,
	coupons CouponRedeemer,
	payouts PayoutStore,
	disputes DisputeChecker,
	notifier Notifier,
	publisher *events.Publisher,
	mailer *mail.Outbox,
	releaseWindow time.Duration,
) (*OrderService, error) {
	gen, err := nanoid.CustomASCII(orderNumberAlphabet, 10)
	if err != nil {
		return nil, fmt.Errorf("order service: генератор номеров %w", err)
	}

	return &OrderService{
		orders:        orders,
		catalog:       catalog,
		negotiations:  negotiations,
		coupons:       coupons,
		payouts:       payouts,
		disputes:      disputes,
		notifier:      notifier,
		publisher:     publisher,
		mailer:        mailer,
		releaseWindow: releaseWindow,
		newNumber:     func() string { return "FP-" + gen() },
	}, nil
}

// CreateOrders оформляет чекаут: по одному заказу на каждую позицию. Все
// заказы и стартовые шаги трекинга записываются одной транзакцией.
func (s *OrderService) CreateOrders(ctx context.Context, input CreateOrderInput) ([]*models.Order, error) {
	if len(input.Lines) == 0 {
		return nil, apperror.New(apperror.ErrCodeValidation, "корзина пуста")
	}
	if input.ShippingAddress == "" {
		return nil, apperror.New(apperror.ErrCodeValidation, "не указан адрес доставки")
	}

	var negotiation *models.NegotiationRequest
	if input.NegotiationID != nil {
		var err error
		negotiation, err = s.loadNegotiation(ctx, *input.NegotiationID, input.CustomerID)
		if err != nil {
			return nil, err
		}
	}

	now := time.Now().UTC()
	orders := make([]*models.Order, 0, len(input.Lines))
	for _, line := range input.Lines {
		if line.Quantity <= 0 {
			return nil, apperror.New(apperror.ErrCodeValidation, "количество должно быть положительным")
		}

		product, err := s.catalog.GetProductByID(ctx, line.ProductID)
		if err != nil {
			if errors.Is(err, repository.ErrProductNotFound) {
				return nil, apperror.ErrProductNotFound
			}
			return nil, err
		}
		if !product.InStock {
			return nil, apperror.New(apperror.ErrCodeConflict, fmt.Sprintf("товара %q нет в наличии", product.Name))
		}

		unitPrice := product.Price
		if product.Promotion != nil && product.Promotion.ActiveAt(now) {
			unitPrice = product.Price * (1 - product.Promotion.PercentOff/100)
		}
		// Согласованная в торге цена заменяет цену каталога вместе со скидками.
		if negotiation != nil && negotiation.ProductID == product.ID {
			unitPrice = negotiation.AgreedPrice()
		}

		orders = append(orders, &models.Order{
			Number:          s.newNumber(),
			ProductID:       product.ID,
			ProductName:     product.Name,
			ProductImage:    product.ImageURL,
			UnitPrice:       unitPrice,
			Quantity:        line.Quantity,
			CustomerID:      input.CustomerID,
			SellerID:        product.SellerID,
			Amount:          unitPrice * float64(line.Quantity),
			ShippingAddress: input.ShippingAddress,
			PaymentMethod:   input.PaymentMethod,
			Status:          models.OrderStatusPending,
			EscrowStatus:    models.EscrowStatusHeld,
			TrackingSteps:   initialTrackingSteps(),
		})
		order := orders[len(orders)-1]
		order.TrackingStatus = currentTrackingStatus(order.TrackingSteps)
	}

	var redeemed *models.Coupon
	if input.CouponCode != nil && *input.CouponCode != "" {
		coupon, err := s.coupons.Redeem(ctx, input.CustomerID, *input.CouponCode)
		if err != nil {
			return nil, err
		}
		redeemed = coupon
		// Скидка применяется к первой позиции и не уводит сумму ниже нуля.
		first := orders[0]
		first.Amount = first.Amount - coupon.Amount
		if first.Amount < 0 {
			first.Amount = 0
		}
	}

	firstOrder := false
	if count, err := s.orders.CountByCustomer(ctx, input.CustomerID); err == nil {
		firstOrder = count == 0
	} else {
		logger.Log.Errorf("order service: подсчёт заказов покупателя %s: %v", input.CustomerID, err)
	}

	if err := s.orders.CreateAll(ctx, orders); err != nil {
		// Чекаут не состоялся, погашенный купон возвращается владельцу.
		if redeemed != nil {
			if restoreErr := s.coupons.Restore(ctx, redeemed.ID); restoreErr != nil {
				logger.Log.Errorf("order service: возврат купона %s после неудачного чекаута: %v", redeemed.Code, restoreErr)
			}
		}
		return nil, err
	}

	if negotiation != nil {
		s.markNegotiationPurchased(ctx, negotiation)
	}

	var total float64
	for _, order := range orders {
		total += order.Amount
		metrics.OrderCreated()
		s.afterOrderCreated(order, input.CustomerEmail)
	}

	if firstOrder {
		if err := s.coupons.RewardFirstOrder(ctx, input.CustomerID, total); err != nil {
			logger.Log.Errorf("order service: реферальная награда за заказ покупателя %s: %v", input.CustomerID, err)
		}
	}

	return orders, nil
}

// GetOrder возвращает заказ с проверкой доступа: видят только участники и администратор.
func (s *OrderService) GetOrder(ctx context.Context, id, actorID uuid.UUID, role string) (*models.Order, error) {
	order, err := s.orders.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrOrderNotFound) {
			return nil, apperror.ErrOrderNotFound
		}
		return nil, err
	}

	if role != models.RoleAdmin && order.CustomerID != actorID && order.SellerID != actorID {
		return nil, apperror.ErrForbidden
	}

	return order, nil
}

// TrackByNumber возвращает заказ по номеру. Публичная операция для страницы
// отслеживания, доступ по знанию номера.
func (s *OrderService) TrackByNumber(ctx context.Context, number string) (*models.Order, error) {
	order, err := s.orders.GetByNumber(ctx, number)
	if err != nil {
		if errors.Is(err, repository.ErrOrderNotFound) {
			return nil, apperror.ErrOrderNotFound
		}
		return nil, err
	}
	return s.orders.GetByID(ctx, order.ID)
}

// ListCustomerOrders возвращает заказы покупателя.
func (s *OrderService) ListCustomerOrders(ctx context.Context, customerID uuid.UUID, limit, offset int) ([]models.Order, error) {
	limit, offset = clampPage(limit, offset)
	return s.orders.ListByCustomer(ctx, customerID, limit, offset)
}

// ListSellerOrders возвращает заказы продавца.
func (s *OrderService) ListSellerOrders(ctx context.Context, sellerID uuid.UUID, limit, offset int) ([]models.Order, error) {
	limit, offset = clampPage(limit, offset)
	return s.orders.ListBySeller(ctx, sellerID, limit, offset)
}

// ListSellerPayouts возвращает выплаты продавца.
func (s *OrderService) ListSellerPayouts(ctx context.Context, sellerID uuid.UUID, limit, offset int) ([]models.Payout, error) {
	limit, offset = clampPage(limit, offset)
	return s.payouts.ListBySeller(ctx, sellerID, limit, offset)
}

// UpdateOrderStatus переводит заказ в новый статус. Переход сверяется с
// таблицей допустимых, произвольная перезапись статуса невозможна.
func (s *OrderService) UpdateOrderStatus(ctx context.Context, orderID, actorID uuid.UUID, role, newStatus string) (*models.Order, error) {
	if _, ok := models.ValidOrderStatuses[newStatus]; !ok {
		return nil, apperror.New(apperror.ErrCodeValidation, "неизвестный статус заказа")
	}

	order, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, repository.ErrOrderNotFound) {
			return nil, apperror.ErrOrderNotFound
		}
		return nil, err
	}

	if role != models.RoleAdmin && order.SellerID != actorID {
		return nil, apperror.ErrForbidden
	}

	if !models.CanTransitionOrderStatus(order.Status, newStatus) {
		return nil, apperror.New(apperror.ErrCodeInvalidState,
			fmt.Sprintf("переход заказа из %q в %q недопустим", order.Status, newStatus))
	}

	if err := s.orders.UpdateStatus(ctx, orderID, newStatus); err != nil {
		return nil, err
	}

	// Подтверждение отправки продавцом фиксирует момент, от которого
	// отсчитывается окно автоматического релиза escrow.
	if newStatus == models.OrderStatusShipped && order.EscrowStatus == models.EscrowStatusHeld {
		if err := s.orders.UpdateEscrowStatus(ctx, orderID, models.EscrowStatusSellerConfirmed); err != nil {
			return nil, err
		}
		metrics.EscrowTransition(models.EscrowStatusSellerConfirmed)
		s.publishEscrowChange(order, order.EscrowStatus, models.EscrowStatusSellerConfirmed)
	}

	s.publishStatusChange(order, order.Status, newStatus)
	s.notifyStatusChange(ctx, order, newStatus)

	return s.orders.GetByID(ctx, orderID)
}

// AppendTrackingStep добавляет шаг трекинга. Шаги только добавляются,
// история доставки никогда не переписывается.
func (s *OrderService) AppendTrackingStep(ctx context.Context, orderID, actorID uuid.UUID, role, status, location string, carrier, trackingID *string) (*models.TrackingStep, error) {
	order, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, repository.ErrOrderNotFound) {
			return nil, apperror.ErrOrderNotFound
		}
		return nil, err
	}

	if role != models.RoleAdmin && order.SellerID != actorID {
		return nil, apperror.ErrForbidden
	}

	step := &models.TrackingStep{Status: status, Location: location}
	if err := s.orders.AppendTrackingStep(ctx, orderID, step, carrier, trackingID); err != nil {
		return nil, err
	}

	link := "/orders/" + order.ID.String()
	if _, err := s.notifier.Notify(ctx, &order.CustomerID, "order_tracking",
		fmt.Sprintf("Заказ %s: %s (%s)", order.Number, status, location), &link); err != nil {
		logger.Log.Errorf("order service: уведомление о трекинге заказа %s: %v", order.Number, err)
	}

	return step, nil
}

// UpdateEscrowStatus переводит escrow заказа в новый статус. Релиз средств при
// незакрытом споре блокируется с кодом DISPUTE_PENDING.
func (s *OrderService) UpdateEscrowStatus(ctx context.Context, orderID, actorID uuid.UUID, role, newStatus string) (*models.Order, error) {
	if _, ok := models.ValidEscrowStatuses[newStatus]; !ok {
		return nil, apperror.New(apperror.ErrCodeValidation, "неизвестный статус escrow")
	}

	order, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, repository.ErrOrderNotFound) {
			return nil, apperror.ErrOrderNotFound
		}
		return nil, err
	}

	if err := s.checkEscrowActor(order, actorID, role, newStatus); err != nil {
		return nil, err
	}

	if !models.CanTransitionEscrowStatus(order.EscrowStatus, newStatus) {
		return nil, apperror.New(apperror.ErrCodeInvalidState,
			fmt.Sprintf("переход escrow из %q в %q недопустим", order.EscrowStatus, newStatus))
	}

	if newStatus == models.EscrowStatusReleased {
		if _, err := s.disputes.GetOpenByOrderID(ctx, orderID); err == nil {
			return nil, apperror.ErrDisputePending
		} else if !errors.Is(err, repository.ErrDisputeNotFound) {
			return nil, err
		}
	}

	if err := s.orders.UpdateEscrowStatus(ctx, orderID, newStatus); err != nil {
		return nil, err
	}

	metrics.EscrowTransition(newStatus)
	s.publishEscrowChange(order, order.EscrowStatus, newStatus)

	if newStatus == models.EscrowStatusReleased {
		s.settleRelease(ctx, order)
	}

	return s.orders.GetByID(ctx, orderID)
}

// ConfirmDelivery подтверждение получения покупателем: escrow переходит в
// buyer_confirmed и сразу в released, если нет открытого спора.
func (s *OrderService) ConfirmDelivery(ctx context.Context, orderID, customerID uuid.UUID) (*models.Order, error) {
	order, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, repository.ErrOrderNotFound) {
			return nil, apperror.ErrOrderNotFound
		}
		return nil, err
	}
	if order.CustomerID != customerID {
		return nil, apperror.ErrForbidden
	}

	if _, err := s.UpdateEscrowStatus(ctx, orderID, customerID, models.RoleCustomer, models.EscrowStatusBuyerConfirmed); err != nil {
		return nil, err
	}
	return s.UpdateEscrowStatus(ctx, orderID, customerID, models.RoleCustomer, models.EscrowStatusReleased)
}

// AutoReleaseEligible сообщает, пора ли автоматически релизить escrow заказа.
func (s *OrderService) AutoReleaseEligible(order *models.Order, now time.Time) bool {
	return order.EscrowStatus == models.EscrowStatusSellerConfirmed &&
		order.SellerConfirmedAt != nil &&
		!now.Before(order.SellerConfirmedAt.Add(s.releaseWindow))
}

// ReleaseDueEscrows релизит все заказы, у которых истекло окно подтверждения
// покупателем. Запускается фоновым тикером.
func (s *OrderService) ReleaseDueEscrows(ctx context.Context, now time.Time) (int, error) {
	candidates, err := s.orders.ListAutoReleaseCandidates(ctx, now.Add(-s.releaseWindow))
	if err != nil {
		return 0, err
	}

	released := 0
	for i := range candidates {
		order := &candidates[i]
		if !s.AutoReleaseEligible(order, now) {
			continue
		}
		if _, err := s.UpdateEscrowStatus(ctx, order.ID, order.CustomerID, models.RoleSystem, models.EscrowStatusReleased); err != nil {
			// Открытый спор здесь штатная ситуация, заказ подождёт решения.
			if apperror.CodeOf(err) == apperror.ErrCodeDisputePending {
				continue
			}
			logger.Log.Errorf("order service: авторелиз заказа %s: %v", order.Number, err)
			continue
		}
		released++
	}

	return released, nil
}

// checkEscrowActor проверяет, кто имеет право на конкретный переход escrow.
func (s *OrderService) checkEscrowActor(order *models.Order, actorID uuid.UUID, role, newStatus string) error {
	if role == models.RoleAdmin || role == models.RoleSystem {
		return nil
	}

	switch newStatus {
	case models.EscrowStatusSellerConfirmed:
		if order.SellerID != actorID {
			return apperror.ErrForbidden
		}
	case models.EscrowStatusBuyerConfirmed, models.EscrowStatusReleased:
		if order.CustomerID != actorID {
			return apperror.ErrForbidden
		}
	default:
		// Заморозка и возврат средств идут через споры и возвраты.
		return apperror.ErrForbidden
	}
	return nil
}

// settleRelease создаёт выплату продавцу и рассылает уведомления о релизе.
func (s *OrderService) settleRelease(ctx context.Context, order *models.Order) {
	payout := &models.Payout{
		SellerID: order.SellerID,
		OrderID:  order.ID,
		Amount:   order.Amount,
		Status:   models.PayoutStatusPending,
	}
	if err := s.payouts.Create(ctx, payout); err != nil {
		logger.Log.Errorf("order service: выплата по заказу %s: %v", order.Number, err)
	}

	link := "/orders/" + order.ID.String()
	if _, err := s.notifier.Notify(ctx, &order.SellerID, "escrow_released",
		fmt.Sprintf("Средства по заказу %s (%.2f) направлены к выплате", order.Number, order.Amount), &link); err != nil {
		logger.Log.Errorf("order service: уведомление о релизе заказа %s: %v", order.Number, err)
	}
	if _, err := s.notifier.Notify(ctx, &order.CustomerID, "order_completed",
		fmt.Sprintf("Заказ %s завершён, оцените покупку", order.Number), &link); err != nil {
		logger.Log.Errorf("order service: уведомление покупателя о заказе %s: %v", order.Number, err)
	}

	if s.mailer != nil {
		seller, err := s.catalog.GetSellerByID(ctx, order.SellerID)
		if err != nil {
			logger.Log.Errorf("order service: продавец заказа %s: %v", order.Number, err)
			return
		}
		s.mailer.SendEscrowReleased(seller.Email, order.Number, order.Amount)
	}
}

// loadNegotiation проверяет, что торг принадлежит покупателю и готов к покупке.
func (s *OrderService) loadNegotiation(ctx context.Context, id, customerID uuid.UUID) (*models.NegotiationRequest, error) {
	negotiation, err := s.negotiations.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNegotiationNotFound) {
			return nil, apperror.ErrNegotiationNotFound
		}
		return nil, err
	}
	if negotiation.CustomerID != customerID {
		return nil, apperror.ErrForbidden
	}
	if !models.CanTransitionNegotiationStatus(negotiation.Status, models.NegotiationStatusPurchased) {
		return nil, apperror.New(apperror.ErrCodeInvalidState, "торг уже закрыт")
	}
	return negotiation, nil
}

func (s *OrderService) markNegotiationPurchased(ctx context.Context, negotiation *models.NegotiationRequest) {
	if err := s.negotiations.UpdateStatus(ctx, negotiation.ID, models.NegotiationStatusPurchased); err != nil {
		logger.Log.Errorf("order service: закрытие торга %s после покупки: %v", negotiation.ID, err)
	}
}

func (s *OrderService) afterOrderCreated(order *models.Order, buyerEmail string) {
	event := events.OrderCreatedEvent{
		OrderID:    order.ID,
		Number:     order.Number,
		CustomerID: order.CustomerID,
		SellerID:   order.SellerID,
		Amount:     order.Amount,
		CreatedAt:  order.CreatedAt,
	}
	goroutine.SafeGo(func() {
		ctx := context.Background()
		if err := s.publisher.OrderCreated(ctx, event); err != nil {
			logger.Log.Errorf("order service: событие о создании заказа %s: %v", order.Number, err)
		}

		link := "/orders/" + order.ID.String()
		if _, err := s.notifier.Notify(ctx, &order.SellerID, "order_created",
			fmt.Sprintf("Новый заказ %s на %q", order.Number, order.ProductName), &link); err != nil {
			logger.Log.Errorf("order service: уведомление продавца о заказе %s: %v", order.Number, err)
		}
		if _, err := s.notifier.Notify(ctx, &order.CustomerID, "order_created",
			fmt.Sprintf("Заказ %s оформлен, средства удержаны в escrow до получения", order.Number), &link); err != nil {
			logger.Log.Errorf("order service: уведомление покупателя о заказе %s: %v", order.Number, err)
		}

		if buyerEmail != "" && s.mailer != nil {
			s.mailer.SendOrderConfirmation(buyerEmail, order.Number, order.Amount)
		}
	})
}

func (s *OrderService) publishStatusChange(order *models.Order, from, to string) {
	event := events.OrderStatusChangedEvent{
		OrderID:    order.ID,
		Number:     order.Number,
		FromStatus: from,
		ToStatus:   to,
		ChangedAt:  time.Now().UTC(),
	}
	goroutine.SafeGo(func() {
		if err := s.publisher.OrderStatusChanged(context.Background(), event); err != nil {
			logger.Log.Errorf("order service: событие о статусе заказа %s: %v", order.Number, err)
		}
	})
}

func (s *OrderService) publishEscrowChange(order *models.Order, from, to string) {
	event := events.EscrowStatusChangedEvent{
		OrderID:    order.ID,
		Number:     order.Number,
		FromStatus: from,
		ToStatus:   to,
		Amount:     order.Amount,
		ChangedAt:  time.Now().UTC(),
	}
	goroutine.SafeGo(func() {
		if err := s.publisher.EscrowStatusChanged(context.Background(), event); err != nil {
			logger.Log.Errorf("order service: событие о escrow заказа %s: %v", order.Number, err)
		}
	})
}

func (s *OrderService) notifyStatusChange(ctx context.Context, order *models.Order, newStatus string) {
	link := "/orders/" + order.ID.String()
	if _, err := s.notifier.Notify(ctx, &order.CustomerID, "order_status",
		fmt.Sprintf("Заказ %s перешёл в статус %q", order.Number, newStatus), &link); err != nil {
		logger.Log.Errorf("order service: уведомление о статусе заказа %s: %v", order.Number, err)
	}
}

// currentTrackingStatus возвращает статус последнего завершённого шага.
// Он денормализуется в заказ, чтобы списки не тянули историю трекинга.
func currentTrackingStatus(steps []models.TrackingStep) *string {
	var current *string
	for i := range steps {
		if steps[i].Completed {
			current = &steps[i].Status
		}
	}
	return current
}

// initialTrackingSteps стартовая история нового заказа: оформление, оплата и
// уведомление продавца уже произошли, доставка впереди.
func initialTrackingSteps() []models.TrackingStep {
	return []models.TrackingStep{
		{Position: 1, Status: "Заказ оформлен", Location: "FairPrice", Completed: true},
		{Position: 2, Status: "Оплата получена, средства в escrow", Location: "FairPrice", Completed: true},
		{Position: 3, Status: "Продавец уведомлён", Location: "FairPrice", Completed: true},
		{Position: 4, Status: "Передан в доставку", Location: "", Completed: false},
		{Position: 5, Status: "Доставлен", Location: "", Completed: false},
	}
}

// clampPage нормализует параметры пагинации.
func clampPage(limit, offset int) (int, int) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}
