package handlers

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/fairprice/fairprice-backend/internal/http/middleware"
	"github.com/fairprice/fairprice-backend/internal/models"
)

func setupCouponRouter(authenticated bool) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()

	if authenticated {
		router.Use(func(c *gin.Context) {
			c.Set(middleware.ContextUserIDKey, uuid.New())
			c.Set(middleware.ContextRoleKey, models.RoleCustomer)
			c.Next()
		})
	}

	h := NewCouponHandler(nil)
	router.POST("/coupons/redeem", h.Redeem)
	router.POST("/referrals", h.RegisterReferral)
	return router
}

func TestCouponHandler_Redeem_Unauthorized(t *testing.T) {
	router := setupCouponRouter(false)

	req := httptest.NewRequest(http.MethodPost, "/coupons/redeem", strings.NewReader(`{"code":"FP5K2N8X1R"}`))
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestCouponHandler_Redeem_MissingCode(t *testing.T) {
	router := setupCouponRouter(true)

	req := httptest.NewRequest(http.MethodPost, "/coupons/redeem", strings.NewReader(`{}`))
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCouponHandler_RegisterReferral_InvalidReferrer(t *testing.T) {
	router := setupCouponRouter(true)

	req := httptest.NewRequest(http.MethodPost, "/referrals", strings.NewReader(`{"referrer_id":"not-a-uuid"}`))
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}
