package service

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/fairprice/fairprice-backend/internal/models"
)

// SeedService генерирует фейковые данные каталога для тестирования.
type SeedService struct {
	catalog CatalogRepository
}

// NewSeedService создаёт новый сервис для генерации данных.
func NewSeedService(catalog CatalogRepository) *SeedService {
	return &SeedService{catalog: catalog}
}

// SeedData наполняет каталог продавцами, товарами и акциями.
func (s *SeedService) SeedData(ctx context.Context, numSellers, productsPerSeller int) error {
	if numSellers <= 0 {
		numSellers = 5
	}
	if productsPerSeller <= 0 {
		productsPerSeller = 4
	}

	rng := rand.New(rand.NewSource(time.Now().UnixNano()))

	names := []string{"Lagos Traders", "Abuja Goods", "Kano Market", "Ibadan Store", "Enugu Shop", "Jos Outlet"}
	categories := []string{"electronics", "fashion", "home", "groceries", "beauty"}
	products := []string{"Телефон", "Наушники", "Кроссовки", "Чайник", "Рюкзак", "Лампа", "Часы", "Крем"}

	for i := 0; i < numSellers; i++ {
		seller := &models.Seller{
			Name:   fmt.Sprintf("%s %d", names[i%len(names)], i+1),
			Email:  fmt.Sprintf("seller%d@example.com", i+1),
			Rating: 3 + rng.Float64()*2,
		}
		if err := s.catalog.CreateSeller(ctx, seller); err != nil {
			return fmt.Errorf("seed service: продавец %d: %w", i+1, err)
		}

		for j := 0; j < productsPerSeller; j++ {
			product := &models.Product{
				SellerID:    seller.ID,
				Name:        fmt.Sprintf("%s %d-%d", products[rng.Intn(len(products))], i+1, j+1),
				Description: "Сгенерированный товар для тестового окружения",
				Price:       float64(1000 + rng.Intn(200000)),
				Category:    categories[rng.Intn(len(categories))],
				InStock:     true,
			}
			if err := s.catalog.CreateProduct(ctx, product); err != nil {
				return fmt.Errorf("seed service: товар %d-%d: %w", i+1, j+1, err)
			}

			// Примерно на четверть товаров вешаем действующую акцию.
			if rng.Intn(4) == 0 {
				promotion := &models.Promotion{
					ProductID:  product.ID,
					PercentOff: float64(5 + rng.Intn(40)),
					StartsAt:   time.Now().Add(-time.Hour),
					EndsAt:     time.Now().Add(7 * 24 * time.Hour),
				}
				if err := s.catalog.CreatePromotion(ctx, promotion); err != nil {
					return fmt.Errorf("seed service: акция на товар %s: %w", product.ID, err)
				}
			}
		}
	}

	return nil
}
