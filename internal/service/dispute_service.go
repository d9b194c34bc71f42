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
	"github.com/fairprice/fairprice-backend/internal/mail"
	"github.com/fairprice/fairprice-backend/internal/metrics"
	"github.com/fairprice/fairprice-backend/internal/models"
	"github.com/fairprice/fairprice-backend/internal/pkg/apperror"
	"github.com/fairprice/fairprice-backend/internal/repository"
)

// DisputeRepository описывает взаимодействие сервиса с хранилищем споров.
type DisputeRepository interface {
	CreateWithFreeze(ctx context.Context, d *models.Dispute, inbox *models.SupportMessage) error
	ResolveWithEscrow(ctx context.Context, id uuid.UUID, status string, adminNotes *string, escrowStatus string) (*models.Dispute, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status string, adminNotes *string) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Dispute, error)
	GetOpenByOrderID(ctx context.Context, orderID uuid.UUID) (*models.Dispute, error)
	ListByBuyer(ctx context.Context, buyerID uuid.UUID, limit, offset int) ([]models.Dispute, error)
	ListOpen(ctx context.Context, limit, offset int) ([]models.Dispute, error)
}

// RaiseDisputeInput входные данные открытия спора.
type RaiseDisputeInput struct {
	OrderID     uuid.UUID
	BuyerID     uuid.UUID
	BuyerName   string
	BuyerEmail  string
	Reason      string
	Description string
}

// DisputeService содержит бизнес-логику споров по заказам.
type DisputeService struct {
	disputes  DisputeRepository
	orders    ReturnOrderStore
	catalog   ProductCatalog
	payouts   PayoutStore
	notifier  Notifier
	publisher *events.Publisher
	mailer    *mail.Outbox
}

// NewDisputeService создаёт сервис споров.
func NewDisputeService(
	disputes DisputeRepository,
	orders ReturnOrderStore,
	catalog ProductCatalog,
	payouts PayoutStore,
	notifier Notifier,
	publisher *events.Publisher,
	mailer *mail.Outbox,
) *DisputeService {
	return &DisputeService{
		disputes:  disputes,
		orders:    orders,
		catalog:   catalog,
		payouts:   payouts,
		notifier:  notifier,
		publisher: publisher,
		mailer:    mailer,
	}
}

// RaiseDispute открывает спор: замораживает escrow заказа и кладёт обращение
// во входящие администратора одной транзакцией. Не более одного незакрытого
// спора на заказ.
func (s *DisputeService) RaiseDispute(ctx context.Context, input RaiseDisputeInput) (*models.Dispute, error) {
	if _, ok := models.ValidDisputeReasons[input.Reason]; !ok {
		return nil, apperror.New(apperror.ErrCodeValidation, "неизвестная причина спора")
	}

	order, err := s.orders.GetByID(ctx, input.OrderID)
	if err != nil {
		if errors.Is(err, repository.ErrOrderNotFound) {
			return nil, apperror.ErrOrderNotFound
		}
		return nil, err
	}
	if order.CustomerID != input.BuyerID {
		return nil, apperror.ErrForbidden
	}

	if !models.CanTransitionEscrowStatus(order.EscrowStatus, models.EscrowStatusDisputed) {
		return nil, apperror.New(apperror.ErrCodeInvalidState,
			fmt.Sprintf("спор по заказу с escrow в статусе %q невозможен", order.EscrowStatus))
	}

	if _, err := s.disputes.GetOpenByOrderID(ctx, input.OrderID); err == nil {
		return nil, apperror.New(apperror.ErrCodeConflict, "по заказу уже открыт спор")
	} else if !errors.Is(err, repository.ErrDisputeNotFound) {
		return nil, err
	}

	seller, err := s.catalog.GetSellerByID(ctx, order.SellerID)
	if err != nil {
		return nil, err
	}

	dispute := &models.Dispute{
		OrderID:     order.ID,
		BuyerID:     input.BuyerID,
		BuyerName:   input.BuyerName,
		BuyerEmail:  input.BuyerEmail,
		SellerID:    order.SellerID,
		SellerName:  seller.Name,
		ProductName: order.ProductName,
		Amount:      order.Amount,
		Reason:      input.Reason,
		Description: input.Description,
		Status:      models.DisputeStatusOpen,
	}
	inbox := &models.SupportMessage{
		UserID:  input.BuyerID,
		Subject: fmt.Sprintf("Спор по заказу %s", order.Number),
		Body:    fmt.Sprintf("Причина: %s. %s", input.Reason, input.Description),
		OrderID: &order.ID,
		Status:  models.SupportStatusOpen,
	}
	if err := s.disputes.CreateWithFreeze(ctx, dispute, inbox); err != nil {
		return nil, err
	}

	metrics.DisputeOpened()
	metrics.EscrowTransition(models.EscrowStatusDisputed)
	s.publishOpened(dispute)

	link := "/disputes/" + dispute.ID.String()
	if _, err := s.notifier.Notify(ctx, &order.SellerID, "dispute_opened",
		fmt.Sprintf("По заказу %s открыт спор, средства заморожены", order.Number), &link); err != nil {
		logger.Log.Errorf("dispute service: уведомление продавца о споре %s: %v", dispute.ID, err)
	}
	if s.mailer != nil {
		s.mailer.SendDisputeOpened(seller.Email, order.Number, input.Reason)
	}

	return dispute, nil
}

// TakeUnderReview переводит спор в рассмотрение администратором.
func (s *DisputeService) TakeUnderReview(ctx context.Context, disputeID uuid.UUID, adminNotes *string) (*models.Dispute, error) {
	dispute, err := s.getDispute(ctx, disputeID)
	if err != nil {
		return nil, err
	}

	if !models.CanTransitionDisputeStatus(dispute.Status, models.DisputeStatusUnderReview) {
		return nil, apperror.New(apperror.ErrCodeInvalidState,
			fmt.Sprintf("переход спора из %q в рассмотрение недопустим", dispute.Status))
	}

	if err := s.disputes.UpdateStatus(ctx, disputeID, models.DisputeStatusUnderReview, adminNotes); err != nil {
		return nil, err
	}
	return s.disputes.GetByID(ctx, disputeID)
}

// Resolve закрывает спор решением администратора: возврат денег покупателю
// или релиз продавцу. Итоговый статус escrow пишется той же транзакцией.
func (s *DisputeService) Resolve(ctx context.Context, disputeID uuid.UUID, resolution string, adminNotes *string) (*models.Dispute, error) {
	if resolution != models.DisputeStatusResolvedRefund && resolution != models.DisputeStatusResolvedRelease {
		return nil, apperror.New(apperror.ErrCodeValidation, "решение должно быть resolved_refund или resolved_release")
	}

	dispute, err := s.getDispute(ctx, disputeID)
	if err != nil {
		return nil, err
	}

	if !models.CanTransitionDisputeStatus(dispute.Status, resolution) {
		return nil, apperror.New(apperror.ErrCodeInvalidState,
			fmt.Sprintf("переход спора из %q в %q недопустим", dispute.Status, resolution))
	}

	escrowStatus := models.EscrowStatusRefunded
	if resolution == models.DisputeStatusResolvedRelease {
		escrowStatus = models.EscrowStatusReleased
	}

	resolved, err := s.disputes.ResolveWithEscrow(ctx, disputeID, resolution, adminNotes, escrowStatus)
	if err != nil {
		return nil, err
	}

	metrics.EscrowTransition(escrowStatus)
	s.publishResolved(resolved, resolution)

	if resolution == models.DisputeStatusResolvedRelease {
		s.settleRelease(ctx, resolved)
	}

	s.notifyResolved(ctx, resolved, resolution)
	return resolved, nil
}

// ResolveByBuyer закрывает спор самим покупателем: вопрос снят, средства
// уходят продавцу.
func (s *DisputeService) ResolveByBuyer(ctx context.Context, disputeID, buyerID uuid.UUID) (*models.Dispute, error) {
	dispute, err := s.getDispute(ctx, disputeID)
	if err != nil {
		return nil, err
	}
	if dispute.BuyerID != buyerID {
		return nil, apperror.ErrForbidden
	}

	note := "Закрыт покупателем"
	return s.Resolve(ctx, disputeID, models.DisputeStatusResolvedRelease, &note)
}

// GetDispute возвращает спор с проверкой доступа.
func (s *DisputeService) GetDispute(ctx context.Context, id, actorID uuid.UUID, role string) (*models.Dispute, error) {
	dispute, err := s.getDispute(ctx, id)
	if err != nil {
		return nil, err
	}

	if role != models.RoleAdmin && dispute.BuyerID != actorID && dispute.SellerID != actorID {
		return nil, apperror.ErrForbidden
	}

	return dispute, nil
}

// ListBuyerDisputes возвращает споры покупателя.
func (s *DisputeService) ListBuyerDisputes(ctx context.Context, buyerID uuid.UUID, limit, offset int) ([]models.Dispute, error) {
	limit, offset = clampPage(limit, offset)
	return s.disputes.ListByBuyer(ctx, buyerID, limit, offset)
}

// ListOpenDisputes возвращает незакрытые споры для панели администратора.
func (s *DisputeService) ListOpenDisputes(ctx context.Context, limit, offset int) ([]models.Dispute, error) {
	limit, offset = clampPage(limit, offset)
	return s.disputes.ListOpen(ctx, limit, offset)
}

func (s *DisputeService) getDispute(ctx context.Context, id uuid.UUID) (*models.Dispute, error) {
	dispute, err := s.disputes.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrDisputeNotFound) {
			return nil, apperror.ErrDisputeNotFound
		}
		return nil, err
	}
	return dispute, nil
}

// settleRelease создаёт выплату продавцу по решённому в его пользу спору.
func (s *DisputeService) settleRelease(ctx context.Context, dispute *models.Dispute) {
	payout := &models.Payout{
		SellerID: dispute.SellerID,
		OrderID:  dispute.OrderID,
		Amount:   dispute.Amount,
		Status:   models.PayoutStatusPending,
	}
	if err := s.payouts.Create(ctx, payout); err != nil {
		logger.Log.Errorf("dispute service: выплата по спору %s: %v", dispute.ID, err)
	}
}

func (s *DisputeService) publishOpened(dispute *models.Dispute) {
	event := events.DisputeOpenedEvent{
		DisputeID: dispute.ID,
		OrderID:   dispute.OrderID,
		BuyerID:   dispute.BuyerID,
		SellerID:  dispute.SellerID,
		Reason:    dispute.Reason,
		Amount:    dispute.Amount,
		OpenedAt:  dispute.CreatedAt,
	}
	goroutine.SafeGo(func() {
		if err := s.publisher.DisputeOpened(context.Background(), event); err != nil {
			logger.Log.Errorf("dispute service: событие об открытии спора %s: %v", dispute.ID, err)
		}
	})
}

func (s *DisputeService) publishResolved(dispute *models.Dispute, resolution string) {
	resolvedAt := time.Now().UTC()
	if dispute.ResolvedAt != nil {
		resolvedAt = *dispute.ResolvedAt
	}
	event := events.DisputeResolvedEvent{
		DisputeID:  dispute.ID,
		OrderID:    dispute.OrderID,
		Resolution: resolution,
		ResolvedAt: resolvedAt,
	}
	goroutine.SafeGo(func() {
		if err := s.publisher.DisputeResolved(context.Background(), event); err != nil {
			logger.Log.Errorf("dispute service: событие о решении спора %s: %v", dispute.ID, err)
		}
	})
}

func (s *DisputeService) notifyResolved(ctx context.Context, dispute *models.Dispute, resolution string) {
	link := "/disputes/" + dispute.ID.String()

	buyerText := "Спор решён в вашу пользу, средства будут возвращены"
	sellerText := "Спор по вашему заказу решён возвратом средств покупателю"
	if resolution == models.DisputeStatusResolvedRelease {
		buyerText = "Спор закрыт, средства направлены продавцу"
		sellerText = "Спор решён в вашу пользу, средства направлены к выплате"
	}

	if _, err := s.notifier.Notify(ctx, &dispute.BuyerID, "dispute_resolved", buyerText, &link); err != nil {
		logger.Log.Errorf("dispute service: уведомление покупателя о споре %s: %v", dispute.ID, err)
	}
	if _, err := s.notifier.Notify(ctx, &dispute.SellerID, "dispute_resolved", sellerText, &link); err != nil {
		logger.Log.Errorf("dispute service: уведомление продавца о споре %s: %v", dispute.ID, err)
	}
}
