package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/fairprice/fairprice-backend/internal/http/handlers/common"
	"github.com/fairprice/fairprice-backend/internal/service"
)

// SupportHandler обслуживает обращения в поддержку.
type SupportHandler struct {
	svc *service.SupportService
}

// NewSupportHandler создаёт новый хэндлер.
func NewSupportHandler(svc *service.SupportService) *SupportHandler {
	return &SupportHandler{svc: svc}
}

// CreateMessage обрабатывает POST /support.
func (h *SupportHandler) CreateMessage(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, err.Error())
		return
	}

	var req struct {
		Subject string  `json:"subject" binding:"required"`
		Body    string  `json:"body" binding:"required"`
		OrderID *string `json:"order_id"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	var orderID *uuid.UUID
	if req.OrderID != nil {
		parsed, err := parseUUID(*req.OrderID)
		if err != nil {
			common.RespondBadRequest(c, err.Error())
			return
		}
		orderID = &parsed
	}

	message, err := h.svc.CreateMessage(c.Request.Context(), userID, req.Subject, req.Body, orderID)
	if err != nil {
		common.RespondAppError(c, err)
		return
	}
	common.RespondJSON(c, http.StatusCreated, message)
}

// ListMessages обрабатывает GET /admin/support. Только для администраторов.
func (h *SupportHandler) ListMessages(c *gin.Context) {
	var status *string
	if raw := c.Query("status"); raw != "" {
		status = &raw
	}

	limit, offset := common.GetPagination(c)
	messages, err := h.svc.ListMessages(c.Request.Context(), status, limit, offset)
	if err != nil {
		common.RespondAppError(c, err)
		return
	}
	common.RespondJSON(c, http.StatusOK, messages)
}

// CloseMessage обрабатывает PUT /admin/support/:id/close.
func (h *SupportHandler) CloseMessage(c *gin.Context) {
	messageID, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	message, err := h.svc.CloseMessage(c.Request.Context(), messageID)
	if err != nil {
		common.RespondAppError(c, err)
		return
	}
	common.RespondJSON(c, http.StatusOK, message)
}
