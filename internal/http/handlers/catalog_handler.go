package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/fairprice/fairprice-backend/internal/http/handlers/common"
	"github.com/fairprice/fairprice-backend/internal/service"
)

// CatalogHandler обслуживает каталог товаров и акции.
type CatalogHandler struct {
	svc *service.CatalogService
}

// NewCatalogHandler создаёт новый хэндлер.
func NewCatalogHandler(svc *service.CatalogService) *CatalogHandler {
	return &CatalogHandler{svc: svc}
}

// ListProducts обрабатывает GET /products. Публичный маршрут.
func (h *CatalogHandler) ListProducts(c *gin.Context) {
	var category *string
	if raw := c.Query("category"); raw != "" {
		category = &raw
	}

	limit, offset := common.GetPagination(c)
	products, err := h.svc.ListProducts(c.Request.Context(), category, limit, offset)
	if err != nil {
		common.RespondAppError(c, err)
		return
	}
	common.RespondJSON(c, http.StatusOK, products)
}

// GetProduct обрабатывает GET /products/:id. Публичный маршрут.
func (h *CatalogHandler) GetProduct(c *gin.Context) {
	productID, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	product, err := h.svc.GetProduct(c.Request.Context(), productID)
	if err != nil {
		common.RespondAppError(c, err)
		return
	}
	common.RespondJSON(c, http.StatusOK, product)
}

// ListSellers обрабатывает GET /sellers. Публичный маршрут.
func (h *CatalogHandler) ListSellers(c *gin.Context) {
	limit, offset := common.GetPagination(c)
	sellers, err := h.svc.ListSellers(c.Request.Context(), limit, offset)
	if err != nil {
		common.RespondAppError(c, err)
		return
	}
	common.RespondJSON(c, http.StatusOK, sellers)
}

// CreateProduct обрабатывает POST /seller/products.
func (h *CatalogHandler) CreateProduct(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, err.Error())
		return
	}

	var req struct {
		Name        string  `json:"name" binding:"required"`
		Description string  `json:"description"`
		Category    string  `json:"category" binding:"required"`
		Price       float64 `json:"price" binding:"required"`
		ImageURL    *string `json:"image_url"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	product, err := h.svc.CreateProduct(c.Request.Context(), userID, req.Name, req.Description, req.Category, req.Price, req.ImageURL)
	if err != nil {
		common.RespondAppError(c, err)
		return
	}
	common.RespondJSON(c, http.StatusCreated, product)
}

// CreatePromotion обрабатывает POST /seller/promotions.
func (h *CatalogHandler) CreatePromotion(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, err.Error())
		return
	}

	var req struct {
		ProductID  string    `json:"product_id" binding:"required,uuid"`
		PercentOff float64   `json:"percent_off" binding:"required"`
		StartsAt   time.Time `json:"starts_at" binding:"required"`
		EndsAt     time.Time `json:"ends_at" binding:"required"`
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

	promotion, err := h.svc.CreatePromotion(c.Request.Context(), userID, productID, req.PercentOff, req.StartsAt, req.EndsAt)
	if err != nil {
		common.RespondAppError(c, err)
		return
	}
	common.RespondJSON(c, http.StatusCreated, promotion)
}
