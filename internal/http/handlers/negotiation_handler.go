package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/fairprice/fairprice-backend/internal/http/handlers/common"
	"github.com/fairprice/fairprice-backend/internal/service"
)

// NegotiationHandler обслуживает торг по цене между покупателем и продавцом.
type NegotiationHandler struct {
	svc *service.NegotiationService
}

// NewNegotiationHandler создаёт новый хэндлер.
func NewNegotiationHandler(svc *service.NegotiationService) *NegotiationHandler {
	return &NegotiationHandler{svc: svc}
}

// Propose обрабатывает POST /negotiations. Покупатель предлагает свою цену.
func (h *NegotiationHandler) Propose(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, err.Error())
		return
	}

	var req struct {
		ProductID string  `json:"product_id" binding:"required,uuid"`
		Name      string  `json:"name" binding:"required"`
		Price     float64 `json:"price" binding:"required"`
		Message   *string `json:"message"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	productID, err := parseUUID(req.ProductID)
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	negotiation, err := h.svc.Propose(c.Request.Context(), productID, userID, req.Name, req.Price, req.Message)
	if err != nil {
		common.RespondAppError(c, err)
		return
	}
	common.RespondJSON(c, http.StatusCreated, negotiation)
}

// Counter обрабатывает POST /negotiations/:id/counter. Продавец отвечает
// встречной ценой, статус заявки остаётся pending.
func (h *NegotiationHandler) Counter(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, err.Error())
		return
	}

	negotiationID, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	var req struct {
		Price   float64 `json:"price" binding:"required"`
		Message *string `json:"message"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	negotiation, err := h.svc.Counter(c.Request.Context(), negotiationID, userID, req.Price, req.Message)
	if err != nil {
		common.RespondAppError(c, err)
		return
	}
	common.RespondJSON(c, http.StatusOK, negotiation)
}

// Decide обрабатывает PUT /negotiations/:id/status. Продавец принимает или
// отклоняет заявку.
func (h *NegotiationHandler) Decide(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, err.Error())
		return
	}

	negotiationID, err := common.ParseUUIDParam(c, "id")
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

	negotiation, err := h.svc.Decide(c.Request.Context(), negotiationID, userID, req.Status)
	if err != nil {
		common.RespondAppError(c, err)
		return
	}
	common.RespondJSON(c, http.StatusOK, negotiation)
}

// AddMessage обрабатывает POST /negotiations/:id/messages.
func (h *NegotiationHandler) AddMessage(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, err.Error())
		return
	}

	negotiationID, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	var req struct {
		Text string `json:"text" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	message, err := h.svc.AddMessage(c.Request.Context(), negotiationID, userID, req.Text)
	if err != nil {
		common.RespondAppError(c, err)
		return
	}
	common.RespondJSON(c, http.StatusCreated, message)
}

// GetNegotiation обрабатывает GET /negotiations/:id.
func (h *NegotiationHandler) GetNegotiation(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, err.Error())
		return
	}
	role, _ := common.CurrentUserRole(c)

	negotiationID, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	negotiation, err := h.svc.GetNegotiation(c.Request.Context(), negotiationID, userID, role)
	if err != nil {
		common.RespondAppError(c, err)
		return
	}
	common.RespondJSON(c, http.StatusOK, negotiation)
}

// ListMyNegotiations обрабатывает GET /negotiations/my.
func (h *NegotiationHandler) ListMyNegotiations(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, err.Error())
		return
	}

	limit, offset := common.GetPagination(c)
	negotiations, err := h.svc.ListCustomerNegotiations(c.Request.Context(), userID, limit, offset)
	if err != nil {
		common.RespondAppError(c, err)
		return
	}
	common.RespondJSON(c, http.StatusOK, negotiations)
}

// ListSellerNegotiations обрабатывает GET /seller/negotiations.
func (h *NegotiationHandler) ListSellerNegotiations(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, err.Error())
		return
	}

	limit, offset := common.GetPagination(c)
	negotiations, err := h.svc.ListSellerNegotiations(c.Request.Context(), userID, limit, offset)
	if err != nil {
		common.RespondAppError(c, err)
		return
	}
	common.RespondJSON(c, http.StatusOK, negotiations)
}
