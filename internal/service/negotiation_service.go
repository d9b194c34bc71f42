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
	"github.com/fairprice/fairprice-backend/internal/models"
	"github.com/fairprice/fairprice-backend/internal/pkg/apperror"
	"github.com/fairprice/fairprice-backend/internal/repository"
)

// NegotiationRepository описывает взаимодействие сервиса с хранилищем торгов.
type NegotiationRepository interface {
	Create(ctx context.Context, n *models.NegotiationRequest) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.NegotiationRequest, error)
	SetCounter(ctx context.Context, id uuid.UUID, price float64, message *string) error
	UpdateStatus(ctx context.Context, id uuid.UUID, status string) error
	AppendMessage(ctx context.Context, msg *models.NegotiationMessage) error
	ListByCustomer(ctx context.Context, customerID uuid.UUID, limit, offset int) ([]models.NegotiationRequest, error)
	ListBySeller(ctx context.Context, sellerID uuid.UUID, limit, offset int) ([]models.NegotiationRequest, error)
}

// NegotiationService содержит бизнес-логику торга по цене.
type NegotiationService struct {
	negotiations NegotiationRepository
	catalog      ProductCatalog
	notifier     Notifier
	publisher    *events.Publisher
}

// NewNegotiationService создаёт сервис торга.
func NewNegotiationService(negotiations NegotiationRepository, catalog ProductCatalog, notifier Notifier, publisher *events.Publisher) *NegotiationService {
	return &NegotiationService{
		negotiations: negotiations,
		catalog:      catalog,
		notifier:     notifier,
		publisher:    publisher,
	}
}

// Propose создаёт предложение покупателя о цене.
func (s *NegotiationService) Propose(ctx context.Context, productID, customerID uuid.UUID, customerName string, price float64, message *string) (*models.NegotiationRequest, error) {
	if price <= 0 {
		return nil, apperror.New(apperror.ErrCodeValidation, "предлагаемая цена должна быть положительной")
	}

	product, err := s.catalog.GetProductByID(ctx, productID)
	if err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			return nil, apperror.ErrProductNotFound
		}
		return nil, err
	}
	if price >= product.Price {
		return nil, apperror.New(apperror.ErrCodeValidation, "предлагаемая цена должна быть ниже цены каталога")
	}

	negotiation := &models.NegotiationRequest{
		ProductID:     productID,
		CustomerID:    customerID,
		CustomerName:  customerName,
		ProposedPrice: price,
		Message:       message,
		Status:        models.NegotiationStatusPending,
	}
	if err := s.negotiations.Create(ctx, negotiation); err != nil {
		return nil, err
	}

	if message != nil && *message != "" {
		s.appendMessage(ctx, negotiation.ID, models.NegotiationSenderBuyer, *message)
	}

	link := "/negotiations/" + negotiation.ID.String()
	if _, err := s.notifier.Notify(ctx, &product.SellerID, "negotiation_proposed",
		fmt.Sprintf("Покупатель предложил %.2f за %q", price, product.Name), &link); err != nil {
		logger.Log.Errorf("negotiation service: уведомление о предложении %s: %v", negotiation.ID, err)
	}

	return negotiation, nil
}

// Counter сохраняет контрпредложение продавца. Статус торга остаётся pending:
// решение за покупателем.
func (s *NegotiationService) Counter(ctx context.Context, negotiationID, sellerID uuid.UUID, price float64, message *string) (*models.NegotiationRequest, error) {
	if price <= 0 {
		return nil, apperror.New(apperror.ErrCodeValidation, "контрцена должна быть положительной")
	}

	negotiation, product, err := s.loadForSeller(ctx, negotiationID, sellerID)
	if err != nil {
		return nil, err
	}
	if negotiation.Status != models.NegotiationStatusPending {
		return nil, apperror.New(apperror.ErrCodeInvalidState, "торг уже закрыт")
	}

	if err := s.negotiations.SetCounter(ctx, negotiationID, price, message); err != nil {
		return nil, err
	}

	if message != nil && *message != "" {
		s.appendMessage(ctx, negotiationID, models.NegotiationSenderSeller, *message)
	}

	s.publishCounter(negotiation, price)

	link := "/negotiations/" + negotiation.ID.String()
	if _, err := s.notifier.Notify(ctx, &negotiation.CustomerID, "negotiation_countered",
		fmt.Sprintf("Продавец предложил %.2f за %q", price, product.Name), &link); err != nil {
		logger.Log.Errorf("negotiation service: уведомление о контрцене %s: %v", negotiation.ID, err)
	}

	return s.negotiations.GetByID(ctx, negotiationID)
}

// Decide закрывает торг решением продавца: accepted или rejected.
func (s *NegotiationService) Decide(ctx context.Context, negotiationID, sellerID uuid.UUID, status string) (*models.NegotiationRequest, error) {
	if status != models.NegotiationStatusAccepted && status != models.NegotiationStatusRejected {
		return nil, apperror.New(apperror.ErrCodeValidation, "решение должно быть accepted или rejected")
	}

	negotiation, product, err := s.loadForSeller(ctx, negotiationID, sellerID)
	if err != nil {
		return nil, err
	}

	if !models.CanTransitionNegotiationStatus(negotiation.Status, status) {
		return nil, apperror.New(apperror.ErrCodeInvalidState,
			fmt.Sprintf("переход торга из %q в %q недопустим", negotiation.Status, status))
	}

	if err := s.negotiations.UpdateStatus(ctx, negotiationID, status); err != nil {
		return nil, err
	}

	text := fmt.Sprintf("Продавец принял вашу цену за %q", product.Name)
	if status == models.NegotiationStatusRejected {
		text = fmt.Sprintf("Продавец отклонил ваше предложение по %q", product.Name)
	}
	link := "/negotiations/" + negotiation.ID.String()
	if _, err := s.notifier.Notify(ctx, &negotiation.CustomerID, "negotiation_decided", text, &link); err != nil {
		logger.Log.Errorf("negotiation service: уведомление о решении %s: %v", negotiation.ID, err)
	}

	return s.negotiations.GetByID(ctx, negotiationID)
}

// AddMessage добавляет сообщение в чат торга от одного из участников.
func (s *NegotiationService) AddMessage(ctx context.Context, negotiationID, actorID uuid.UUID, text string) (*models.NegotiationMessage, error) {
	if text == "" {
		return nil, apperror.New(apperror.ErrCodeValidation, "пустое сообщение")
	}

	negotiation, err := s.negotiations.GetByID(ctx, negotiationID)
	if err != nil {
		if errors.Is(err, repository.ErrNegotiationNotFound) {
			return nil, apperror.ErrNegotiationNotFound
		}
		return nil, err
	}

	product, err := s.catalog.GetProductByID(ctx, negotiation.ProductID)
	if err != nil {
		return nil, err
	}

	var sender string
	var recipient uuid.UUID
	switch actorID {
	case negotiation.CustomerID:
		sender = models.NegotiationSenderBuyer
		recipient = product.SellerID
	case product.SellerID:
		sender = models.NegotiationSenderSeller
		recipient = negotiation.CustomerID
	default:
		return nil, apperror.ErrForbidden
	}

	msg := &models.NegotiationMessage{
		NegotiationID: negotiationID,
		Sender:        sender,
		Text:          text,
	}
	if err := s.negotiations.AppendMessage(ctx, msg); err != nil {
		return nil, err
	}

	link := "/negotiations/" + negotiationID.String()
	if _, err := s.notifier.Notify(ctx, &recipient, "negotiation_message",
		fmt.Sprintf("Новое сообщение в торге по %q", product.Name), &link); err != nil {
		logger.Log.Errorf("negotiation service: уведомление о сообщении %s: %v", negotiationID, err)
	}

	return msg, nil
}

// GetNegotiation возвращает торг с перепиской и проверкой доступа.
func (s *NegotiationService) GetNegotiation(ctx context.Context, id, actorID uuid.UUID, role string) (*models.NegotiationRequest, error) {
	negotiation, err := s.negotiations.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNegotiationNotFound) {
			return nil, apperror.ErrNegotiationNotFound
		}
		return nil, err
	}

	if role == models.RoleAdmin || negotiation.CustomerID == actorID {
		return negotiation, nil
	}

	product, err := s.catalog.GetProductByID(ctx, negotiation.ProductID)
	if err != nil {
		return nil, err
	}
	if product.SellerID != actorID {
		return nil, apperror.ErrForbidden
	}

	return negotiation, nil
}

// ListCustomerNegotiations возвращает торги покупателя.
func (s *NegotiationService) ListCustomerNegotiations(ctx context.Context, customerID uuid.UUID, limit, offset int) ([]models.NegotiationRequest, error) {
	limit, offset = clampPage(limit, offset)
	return s.negotiations.ListByCustomer(ctx, customerID, limit, offset)
}

// ListSellerNegotiations возвращает торги по товарам продавца.
func (s *NegotiationService) ListSellerNegotiations(ctx context.Context, sellerID uuid.UUID, limit, offset int) ([]models.NegotiationRequest, error) {
	limit, offset = clampPage(limit, offset)
	return s.negotiations.ListBySeller(ctx, sellerID, limit, offset)
}

// loadForSeller возвращает торг и его товар, проверив, что товар принадлежит продавцу.
func (s *NegotiationService) loadForSeller(ctx context.Context, negotiationID, sellerID uuid.UUID) (*models.NegotiationRequest, *models.Product, error) {
	negotiation, err := s.negotiations.GetByID(ctx, negotiationID)
	if err != nil {
		if errors.Is(err, repository.ErrNegotiationNotFound) {
			return nil, nil, apperror.ErrNegotiationNotFound
		}
		return nil, nil, err
	}

	product, err := s.catalog.GetProductByID(ctx, negotiation.ProductID)
	if err != nil {
		return nil, nil, err
	}
	if product.SellerID != sellerID {
		return nil, nil, apperror.ErrForbidden
	}

	return negotiation, product, nil
}

func (s *NegotiationService) appendMessage(ctx context.Context, negotiationID uuid.UUID, sender, text string) {
	msg := &models.NegotiationMessage{
		NegotiationID: negotiationID,
		Sender:        sender,
		Text:          text,
	}
	if err := s.negotiations.AppendMessage(ctx, msg); err != nil {
		logger.Log.Errorf("negotiation service: сообщение в торге %s: %v", negotiationID, err)
	}
}

func (s *NegotiationService) publishCounter(negotiation *models.NegotiationRequest, price float64) {
	event := events.NegotiationCounterEvent{
		NegotiationID: negotiation.ID,
		ProductID:     negotiation.ProductID,
		CustomerID:    negotiation.CustomerID,
		CounterPrice:  price,
		CounteredAt:   time.Now().UTC(),
	}
	goroutine.SafeGo(func() {
		if err := s.publisher.NegotiationCountered(context.Background(), event); err != nil {
			logger.Log.Errorf("negotiation service: событие о контрцене %s: %v", negotiation.ID, err)
		}
	})
}
