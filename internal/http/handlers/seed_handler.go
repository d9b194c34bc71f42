package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/fairprice/fairprice-backend/internal/http/handlers/common"
	"github.com/fairprice/fairprice-backend/internal/service"
)

// SeedHandler обрабатывает запросы для генерации фейковых данных каталога.
// Подключается только в development окружении.
type SeedHandler struct {
	seedService *service.SeedService
}

// NewSeedHandler создаёт новый seed handler.
func NewSeedHandler(seedService *service.SeedService) *SeedHandler {
	return &SeedHandler{seedService: seedService}
}

// Seed генерирует фейковых продавцов, товары и акции.
// POST /api/seed
func (h *SeedHandler) Seed(c *gin.Context) {
	numSellers := common.ParseIntQuery(c, "num_sellers", 5)
	productsPerSeller := common.ParseIntQuery(c, "products_per_seller", 4)

	if err := h.seedService.SeedData(c.Request.Context(), numSellers, productsPerSeller); err != nil {
		common.RespondAppError(c, err)
		return
	}

	common.RespondSuccess(c, http.StatusCreated, "каталог наполнен тестовыми данными", gin.H{
		"num_sellers":         numSellers,
		"products_per_seller": productsPerSeller,
	})
}
