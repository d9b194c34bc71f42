package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/fairprice/fairprice-backend/internal/http/handlers/common"
	"github.com/fairprice/fairprice-backend/internal/models"
	"github.com/fairprice/fairprice-backend/internal/service"
)

// CouponHandler обслуживает купоны и реферальную программу.
type CouponHandler struct {
	svc *service.CouponService
}

// NewCouponHandler создаёт новый хэндлер.
func NewCouponHandler(svc *service.CouponService) *CouponHandler {
	return &CouponHandler{svc: svc}
}

// ListMyCoupons обрабатывает GET /coupons/my.
func (h *CouponHandler) ListMyCoupons(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, err.Error())
		return
	}

	limit, offset := common.GetPagination(c)
	coupons, err := h.svc.ListUserCoupons(c.Request.Context(), userID, limit, offset)
	if err != nil {
		common.RespondAppError(c, err)
		return
	}
	common.RespondJSON(c, http.StatusOK, coupons)
}

// Redeem обрабатывает POST /coupons/redeem. Погашение купона без чекаута,
// например при оплате заказа менеджером по телефону.
func (h *CouponHandler) Redeem(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, err.Error())
		return
	}

	var req struct {
		Code string `json:"code" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	coupon, err := h.svc.Redeem(c.Request.Context(), userID, req.Code)
	if err != nil {
		common.RespondAppError(c, err)
		return
	}
	common.RespondJSON(c, http.StatusOK, coupon)
}

// Issue обрабатывает POST /admin/coupons. Ручная выдача купона администратором.
func (h *CouponHandler) Issue(c *gin.Context) {
	var req struct {
		UserID string  `json:"user_id" binding:"required,uuid"`
		Amount float64 `json:"amount" binding:"required"`
		Reason string  `json:"reason" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	userID, err := parseUUID(req.UserID)
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	coupon, err := h.svc.Issue(c.Request.Context(), userID, req.Amount, models.CouponSourceManual, req.Reason)
	if err != nil {
		common.RespondAppError(c, err)
		return
	}
	common.RespondJSON(c, http.StatusCreated, coupon)
}

// Revoke обрабатывает DELETE /admin/coupons/:id.
func (h *CouponHandler) Revoke(c *gin.Context) {
	couponID, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	if err := h.svc.Revoke(c.Request.Context(), couponID); err != nil {
		common.RespondAppError(c, err)
		return
	}
	common.RespondSuccess(c, http.StatusOK, "купон отозван", nil)
}

// RegisterReferral обрабатывает POST /referrals. Новый пользователь указывает,
// кто его пригласил.
func (h *CouponHandler) RegisterReferral(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, err.Error())
		return
	}

	var req struct {
		ReferrerID string `json:"referrer_id" binding:"required,uuid"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	referrerID, err := parseUUID(req.ReferrerID)
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	referral, err := h.svc.RegisterReferral(c.Request.Context(), referrerID, userID)
	if err != nil {
		common.RespondAppError(c, err)
		return
	}
	common.RespondJSON(c, http.StatusCreated, referral)
}
