package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/fairprice/fairprice-backend/internal/http/handlers/common"
	"github.com/fairprice/fairprice-backend/internal/service"
)

// OrderHandler обслуживает жизненный цикл заказов и escrow.
type OrderHandler struct {
	svc *service.OrderService
}

// NewOrderHandler создаёт новый хэндлер.
func NewOrderHandler(svc *service.OrderService) *OrderHandler {
	return &OrderHandler{svc: svc}
}

// CreateOrders обрабатывает POST /orders.
func (h *OrderHandler) CreateOrders(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, err.Error())
		return
	}

	var req struct {
		Lines []struct {
			ProductID uuid.UUID `json:"product_id" binding:"required"`
			Quantity  int       `json:"quantity" binding:"required"`
		} `json:"lines" binding:"required"`
		ShippingAddress string     `json:"shipping_address" binding:"required"`
		PaymentMethod   string     `json:"payment_method" binding:"required"`
		CustomerEmail   string     `json:"customer_email" binding:"omitempty,email"`
		CouponCode      *string    `json:"coupon_code"`
		NegotiationID   *uuid.UUID `json:"negotiation_id"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	input := service.CreateOrderInput{
		CustomerID:      userID,
		CustomerEmail:   req.CustomerEmail,
		ShippingAddress: req.ShippingAddress,
		PaymentMethod:   req.PaymentMethod,
		CouponCode:      req.CouponCode,
		NegotiationID:   req.NegotiationID,
	}
	for _, line := range req.Lines {
		input.Lines = append(input.Lines, service.CheckoutLine{ProductID: line.ProductID, Quantity: line.Quantity})
	}

	orders, err := h.svc.CreateOrders(c.Request.Context(), input)
	if err != nil {
		common.RespondAppError(c, err)
		return
	}
	common.RespondJSON(c, http.StatusCreated, orders)
}

// GetOrder обрабатывает GET /orders/:id.
func (h *OrderHandler) GetOrder(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, err.Error())
		return
	}
	role, _ := common.CurrentUserRole(c)

	orderID, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	order, err := h.svc.GetOrder(c.Request.Context(), orderID, userID, role)
	if err != nil {
		common.RespondAppError(c, err)
		return
	}
	common.RespondJSON(c, http.StatusOK, order)
}

// TrackByNumber обрабатывает GET /orders/track/:number. Публичный маршрут,
// доступ по знанию номера заказа.
func (h *OrderHandler) TrackByNumber(c *gin.Context) {
	number := c.Param("number")
	if number == "" {
		common.RespondBadRequest(c, "номер заказа обязателен")
		return
	}

	order, err := h.svc.TrackByNumber(c.Request.Context(), number)
	if err != nil {
		common.RespondAppError(c, err)
		return
	}
	common.RespondJSON(c, http.StatusOK, order)
}

// ListMyOrders обрабатывает GET /orders/my.
func (h *OrderHandler) ListMyOrders(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, err.Error())
		return
	}

	limit, offset := common.GetPagination(c)
	orders, err := h.svc.ListCustomerOrders(c.Request.Context(), userID, limit, offset)
	if err != nil {
		common.RespondAppError(c, err)
		return
	}
	common.RespondJSON(c, http.StatusOK, orders)
}

// ListSellerOrders обрабатывает GET /seller/orders.
func (h *OrderHandler) ListSellerOrders(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, err.Error())
		return
	}

	limit, offset := common.GetPagination(c)
	orders, err := h.svc.ListSellerOrders(c.Request.Context(), userID, limit, offset)
	if err != nil {
		common.RespondAppError(c, err)
		return
	}
	common.RespondJSON(c, http.StatusOK, orders)
}

// ListSellerPayouts обрабатывает GET /seller/payouts.
func (h *OrderHandler) ListSellerPayouts(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, err.Error())
		return
	}

	limit, offset := common.GetPagination(c)
	payouts, err := h.svc.ListSellerPayouts(c.Request.Context(), userID, limit, offset)
	if err != nil {
		common.RespondAppError(c, err)
		return
	}
	common.RespondJSON(c, http.StatusOK, payouts)
}

// UpdateStatus обрабатывает PUT /orders/:id/status.
func (h *OrderHandler) UpdateStatus(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, err.Error())
		return
	}
	role, _ := common.CurrentUserRole(c)

	orderID, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	var req struct {
		Status string `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	order, err := h.svc.UpdateOrderStatus(c.Request.Context(), orderID, userID, role, req.Status)
	if err != nil {
		common.RespondAppError(c, err)
		return
	}
	common.RespondJSON(c, http.StatusOK, order)
}

// UpdateEscrow обрабатывает PUT /orders/:id/escrow.
func (h *OrderHandler) UpdateEscrow(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, err.Error())
		return
	}
	role, _ := common.CurrentUserRole(c)

	orderID, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	var req struct {
		Status string `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	order, err := h.svc.UpdateEscrowStatus(c.Request.Context(), orderID, userID, role, req.Status)
	if err != nil {
		common.RespondAppError(c, err)
		return
	}
	common.RespondJSON(c, http.StatusOK, order)
}

// ConfirmDelivery обрабатывает POST /orders/:id/confirm-delivery.
func (h *OrderHandler) ConfirmDelivery(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, err.Error())
		return
	}

	orderID, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	order, err := h.svc.ConfirmDelivery(c.Request.Context(), orderID, userID)
	if err != nil {
		common.RespondAppError(c, err)
		return
	}
	common.RespondJSON(c, http.StatusOK, order)
}

// AppendTrackingStep обрабатывает POST /orders/:id/tracking.
func (h *OrderHandler) AppendTrackingStep(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, err.Error())
		return
	}
	role, _ := common.CurrentUserRole(c)

	orderID, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	var req struct {
		Status     string  `json:"status" binding:"required"`
		Location   string  `json:"location" binding:"required"`
		Carrier    *string `json:"carrier"`
		TrackingID *string `json:"tracking_id"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	step, err := h.svc.AppendTrackingStep(c.Request.Context(), orderID, userID, role, req.Status, req.Location, req.Carrier, req.TrackingID)
	if err != nil {
		common.RespondAppError(c, err)
		return
	}
	common.RespondJSON(c, http.StatusCreated, step)
}
