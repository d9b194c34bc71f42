package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/fairprice/fairprice-backend/internal/http/handlers/common"
	"github.com/fairprice/fairprice-backend/internal/service"
)

// ReturnHandler обслуживает заявки на возврат.
type ReturnHandler struct {
	svc *service.ReturnService
}

// NewReturnHandler создаёт новый хэндлер.
func NewReturnHandler(svc *service.ReturnService) *ReturnHandler {
	return &ReturnHandler{svc: svc}
}

// CreateReturn обрабатывает POST /returns.
func (h *ReturnHandler) CreateReturn(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, err.Error())
		return
	}

	var req struct {
		OrderID     string   `json:"order_id" binding:"required,uuid"`
		Reason      string   `json:"reason" binding:"required"`
		Description string   `json:"description"`
		Images      []string `json:"images"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	orderID, err := parseUUID(req.OrderID)
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	ret, err := h.svc.CreateReturn(c.Request.Context(), service.CreateReturnInput{
		OrderID:     orderID,
		CustomerID:  userID,
		Reason:      req.Reason,
		Description: req.Description,
		Images:      req.Images,
	})
	if err != nil {
		common.RespondAppError(c, err)
		return
	}
	common.RespondJSON(c, http.StatusCreated, ret)
}

// GetReturn обрабатывает GET /returns/:id.
func (h *ReturnHandler) GetReturn(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, err.Error())
		return
	}
	role, _ := common.CurrentUserRole(c)

	returnID, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	ret, err := h.svc.GetReturn(c.Request.Context(), returnID, userID, role)
	if err != nil {
		common.RespondAppError(c, err)
		return
	}
	common.RespondJSON(c, http.StatusOK, ret)
}

// ListMyReturns обрабатывает GET /returns/my.
func (h *ReturnHandler) ListMyReturns(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, err.Error())
		return
	}

	limit, offset := common.GetPagination(c)
	returns, err := h.svc.ListCustomerReturns(c.Request.Context(), userID, limit, offset)
	if err != nil {
		common.RespondAppError(c, err)
		return
	}
	common.RespondJSON(c, http.StatusOK, returns)
}

// ListSellerReturns обрабатывает GET /seller/returns.
func (h *ReturnHandler) ListSellerReturns(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, err.Error())
		return
	}

	limit, offset := common.GetPagination(c)
	returns, err := h.svc.ListSellerReturns(c.Request.Context(), userID, limit, offset)
	if err != nil {
		common.RespondAppError(c, err)
		return
	}
	common.RespondJSON(c, http.StatusOK, returns)
}

// UpdateStatus обрабатывает PUT /returns/:id/status.
func (h *ReturnHandler) UpdateStatus(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, err.Error())
		return
	}
	role, _ := common.CurrentUserRole(c)

	returnID, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	var req struct {
		Status string  `json:"status" binding:"required"`
		Notes  *string `json:"notes"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	ret, err := h.svc.UpdateReturnStatus(c.Request.Context(), returnID, userID, role, req.Status, req.Notes)
	if err != nil {
		common.RespondAppError(c, err)
		return
	}
	common.RespondJSON(c, http.StatusOK, ret)
}
