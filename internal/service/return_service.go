package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/fairprice/fairprice-backend/internal/events"
	"github.com/fairprice/fairprice-backend/internal/goroutine"
	"github.com/fairprice/fairprice-backend/internal/logger"
	"github.com/fairprice/fairprice-backend/internal/metrics"
	"github.com/fairprice/fairprice-backend/internal/models"
	"github.com/fairprice/fairprice-backend/internal/pkg/apperror"
	"github.com/fairprice/fairprice-backend/internal/repository"
)

// ReturnRepository описывает взаимодействие сервиса с хранилищем возвратов.
type ReturnRepository interface {
	CreateWithOrderMark(ctx context.Context, req *models.ReturnRequest) error
	UpdateStatusWithOrder(ctx context.Context, req *models.ReturnRequest, orderStatus string, escrowStatus *string) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.ReturnRequest, error)
	GetActiveByOrderID(ctx context.Context, orderID uuid.UUID) (*models.ReturnRequest, error)
	ListBySeller(ctx context.Context, sellerID uuid.UUID, limit, offset int) ([]models.ReturnRequest, error)
	ListByCustomer(ctx context.Context, customerID uuid.UUID, limit, offset int) ([]models.ReturnRequest, error)
}

// ReturnOrderStore описывает доступ сервиса возвратов к заказам.
type ReturnOrderStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Order, error)
}

// CreateReturnInput входные данные запроса на возврат.
type CreateReturnInput struct {
	OrderID     uuid.UUID
	CustomerID  uuid.UUID
	Reason      string
	Description string
	Images      []string
}

// ReturnService содержит бизнес-логику возвратов.
type ReturnService struct {
	returns   ReturnRepository
	orders    ReturnOrderStore
	notifier  Notifier
	publisher *events.Publisher
}

// NewReturnService создаёт сервис возвратов.
func NewReturnService(returns ReturnRepository, orders ReturnOrderStore, notifier Notifier, publisher *events.Publisher) *ReturnService {
	return &ReturnService{
		returns:   returns,
		orders:    orders,
		notifier:  notifier,
		publisher: publisher,
	}
}

// CreateReturn создаёт запрос на возврат. Возврат возможен только по
// доставленному заказу и только один активный на заказ.
func (s *ReturnService) CreateReturn(ctx context.Context, input CreateReturnInput) (*models.ReturnRequest, error) {
	if input.Reason == "" {
		return nil, apperror.New(apperror.ErrCodeValidation, "не указана причина возврата")
	}

	order, err := s.orders.GetByID(ctx, input.OrderID)
	if err != nil {
		if errors.Is(err, repository.ErrOrderNotFound) {
			return nil, apperror.ErrOrderNotFound
		}
		return nil, err
	}
	if order.CustomerID != input.CustomerID {
		return nil, apperror.ErrForbidden
	}

	if !models.CanTransitionOrderStatus(order.Status, models.OrderStatusReturnRequested) {
		return nil, apperror.New(apperror.ErrCodeInvalidState,
			fmt.Sprintf("возврат по заказу в статусе %q невозможен", order.Status))
	}

	if _, err := s.returns.GetActiveByOrderID(ctx, input.OrderID); err == nil {
		return nil, apperror.New(apperror.ErrCodeConflict, "по заказу уже есть активный возврат")
	} else if !errors.Is(err, repository.ErrReturnNotFound) {
		return nil, err
	}

	req := &models.ReturnRequest{
		OrderID:     input.OrderID,
		CustomerID:  input.CustomerID,
		SellerID:    order.SellerID,
		Reason:      input.Reason,
		Description: input.Description,
		Images:      input.Images,
		Status:      models.ReturnStatusPending,
	}
	if err := s.returns.CreateWithOrderMark(ctx, req); err != nil {
		return nil, err
	}

	s.publishStatusChange(req, "", models.ReturnStatusPending)

	link := "/returns/" + req.ID.String()
	if _, err := s.notifier.Notify(ctx, &order.SellerID, "return_requested",
		fmt.Sprintf("Покупатель запросил возврат по заказу %s: %s", order.Number, input.Reason), &link); err != nil {
		logger.Log.Errorf("return service: уведомление о возврате %s: %v", req.ID, err)
	}

	return req, nil
}

// UpdateReturnStatus переводит возврат в новый статус и применяет побочные
// эффекты к заказу: статус и, при фактическом возврате денег, escrow.
func (s *ReturnService) UpdateReturnStatus(ctx context.Context, returnID, actorID uuid.UUID, role, newStatus string, notes *string) (*models.ReturnRequest, error) {
	if _, ok := models.ValidReturnStatuses[newStatus]; !ok {
		return nil, apperror.New(apperror.ErrCodeValidation, "неизвестный статус возврата")
	}

	req, err := s.returns.GetByID(ctx, returnID)
	if err != nil {
		if errors.Is(err, repository.ErrReturnNotFound) {
			return nil, apperror.ErrReturnNotFound
		}
		return nil, err
	}

	if err := checkReturnActor(req, actorID, role, newStatus); err != nil {
		return nil, err
	}

	if !models.CanTransitionReturnStatus(req.Status, newStatus) {
		return nil, apperror.New(apperror.ErrCodeInvalidState,
			fmt.Sprintf("переход возврата из %q в %q недопустим", req.Status, newStatus))
	}

	order, err := s.orders.GetByID(ctx, req.OrderID)
	if err != nil {
		return nil, err
	}

	oldStatus := req.Status
	req.Status = newStatus
	if notes != nil {
		if role == models.RoleAdmin {
			req.AdminNotes = notes
		} else {
			req.SellerNotes = notes
		}
	}

	orderStatus, escrowStatus := returnSideEffects(order, newStatus)
	if err := s.returns.UpdateStatusWithOrder(ctx, req, orderStatus, escrowStatus); err != nil {
		return nil, err
	}

	if escrowStatus != nil {
		metrics.EscrowTransition(*escrowStatus)
	}
	s.publishStatusChange(req, oldStatus, newStatus)
	s.notifyStatusChange(ctx, req, order, newStatus)

	return req, nil
}

// GetReturn возвращает запрос на возврат с проверкой доступа.
func (s *ReturnService) GetReturn(ctx context.Context, id, actorID uuid.UUID, role string) (*models.ReturnRequest, error) {
	req, err := s.returns.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrReturnNotFound) {
			return nil, apperror.ErrReturnNotFound
		}
		return nil, err
	}

	if role != models.RoleAdmin && req.CustomerID != actorID && req.SellerID != actorID {
		return nil, apperror.ErrForbidden
	}

	return req, nil
}

// ListCustomerReturns возвращает возвраты покупателя.
func (s *ReturnService) ListCustomerReturns(ctx context.Context, customerID uuid.UUID, limit, offset int) ([]models.ReturnRequest, error) {
	limit, offset = clampPage(limit, offset)
	return s.returns.ListByCustomer(ctx, customerID, limit, offset)
}

// ListSellerReturns возвращает возвраты по товарам продавца.
func (s *ReturnService) ListSellerReturns(ctx context.Context, sellerID uuid.UUID, limit, offset int) ([]models.ReturnRequest, error) {
	limit, offset = clampPage(limit, offset)
	return s.returns.ListBySeller(ctx, sellerID, limit, offset)
}

// returnSideEffects возвращает статус заказа и, если деньги возвращаются,
// новый статус escrow для каждого перехода возврата.
func returnSideEffects(order *models.Order, newStatus string) (string, *string) {
	switch newStatus {
	case models.ReturnStatusApproved:
		return models.OrderStatusReturnApproved, nil
	case models.ReturnStatusRejected:
		return models.OrderStatusReturnRejected, nil
	case models.ReturnStatusItemReceived, models.ReturnStatusRefunded:
		// Получение товара продавцом и возврат денег закрывают заказ одинаково:
		// заказ returned, средства покидают escrow в сторону покупателя.
		refunded := models.EscrowStatusRefunded
		return models.OrderStatusReturned, &refunded
	default:
		return order.Status, nil
	}
}

// checkReturnActor проверяет право на переход: продавец решает судьбу
// возврата, финальный возврат денег за администратором или продавцом.
func checkReturnActor(req *models.ReturnRequest, actorID uuid.UUID, role, newStatus string) error {
	if role == models.RoleAdmin {
		return nil
	}
	if req.SellerID != actorID {
		return apperror.ErrForbidden
	}
	switch newStatus {
	case models.ReturnStatusApproved, models.ReturnStatusRejected, models.ReturnStatusItemReceived, models.ReturnStatusRefunded:
		return nil
	default:
		return apperror.ErrForbidden
	}
}

func (s *ReturnService) publishStatusChange(req *models.ReturnRequest, from, to string) {
	event := events.ReturnStatusChangedEvent{
		ReturnID:   req.ID,
		OrderID:    req.OrderID,
		FromStatus: from,
		ToStatus:   to,
		ChangedAt:  time.Now().UTC(),
	}
	goroutine.SafeGo(func() {
		if err := s.publisher.ReturnStatusChanged(context.Background(), event); err != nil {
			logger.Log.Errorf("return service: событие о возврате %s: %v", req.ID, err)
		}
	})
}

func (s *ReturnService) notifyStatusChange(ctx context.Context, req *models.ReturnRequest, order *models.Order, newStatus string) {
	link := "/returns/" + req.ID.String()
	var text string
	switch newStatus {
	case models.ReturnStatusApproved:
		text = fmt.Sprintf("Возврат по заказу %s одобрен, отправьте товар продавцу", order.Number)
	case models.ReturnStatusRejected:
		text = fmt.Sprintf("Возврат по заказу %s отклонён", order.Number)
	case models.ReturnStatusItemReceived:
		text = fmt.Sprintf("Продавец получил товар по возврату заказа %s", order.Number)
	case models.ReturnStatusRefunded:
		text = fmt.Sprintf("Средства по заказу %s возвращены", order.Number)
	default:
		text = fmt.Sprintf("Возврат по заказу %s: статус %q", order.Number, newStatus)
	}

	if _, err := s.notifier.Notify(ctx, &req.CustomerID, "return_status", text, &link); err != nil {
		logger.Log.Errorf("return service: уведомление о возврате %s: %v", req.ID, err)
	}
}
