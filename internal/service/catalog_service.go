package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/fairprice/fairprice-backend/internal/models"
	"github.com/fairprice/fairprice-backend/internal/pkg/apperror"
	"github.com/fairprice/fairprice-backend/internal/repository"
)

// CatalogRepository описывает взаимодействие сервиса с хранилищем каталога.
type CatalogRepository interface {
	GetProductByID(ctx context.Context, id uuid.UUID) (*models.Product, error)
	ListProducts(ctx context.Context, category *string, limit, offset int) ([]models.Product, error)
	CreateProduct(ctx context.Context, p *models.Product) error
	GetSellerByID(ctx context.Context, id uuid.UUID) (*models.Seller, error)
	ListSellers(ctx context.Context, limit, offset int) ([]models.Seller, error)
	CreateSeller(ctx context.Context, s *models.Seller) error
	CreatePromotion(ctx context.Context, p *models.Promotion) error
}

// CatalogService содержит бизнес-логику каталога и акций.
type CatalogService struct {
	repo CatalogRepository
}

// NewCatalogService создаёт сервис каталога.
func NewCatalogService(repo CatalogRepository) *CatalogService {
	return &CatalogService{repo: repo}
}

// GetProduct возвращает товар с действующей акцией.
func (s *CatalogService) GetProduct(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	product, err := s.repo.GetProductByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			return nil, apperror.ErrProductNotFound
		}
		return nil, err
	}
	return product, nil
}

// ListProducts возвращает страницу каталога.
func (s *CatalogService) ListProducts(ctx context.Context, category *string, limit, offset int) ([]models.Product, error) {
	limit, offset = clampPage(limit, offset)
	return s.repo.ListProducts(ctx, category, limit, offset)
}

// ListSellers возвращает страницу продавцов, отсортированных по рейтингу.
func (s *CatalogService) ListSellers(ctx context.Context, limit, offset int) ([]models.Seller, error) {
	limit, offset = clampPage(limit, offset)
	return s.repo.ListSellers(ctx, limit, offset)
}

// CreateProduct добавляет товар продавца в каталог.
func (s *CatalogService) CreateProduct(ctx context.Context, sellerID uuid.UUID, name, description, category string, price float64, imageURL *string) (*models.Product, error) {
	if name == "" || price <= 0 {
		return nil, apperror.New(apperror.ErrCodeValidation, "название и положительная цена обязательны")
	}

	if _, err := s.repo.GetSellerByID(ctx, sellerID); err != nil {
		if errors.Is(err, repository.ErrSellerNotFound) {
			return nil, apperror.New(apperror.ErrCodeNotFound, "продавец не найден")
		}
		return nil, err
	}

	product := &models.Product{
		SellerID:    sellerID,
		Name:        name,
		Description: description,
		Price:       price,
		ImageURL:    imageURL,
		Category:    category,
		InStock:     true,
	}
	if err := s.repo.CreateProduct(ctx, product); err != nil {
		return nil, err
	}
	return product, nil
}

// CreatePromotion создаёт временную скидку на товар продавца.
func (s *CatalogService) CreatePromotion(ctx context.Context, sellerID, productID uuid.UUID, percentOff float64, startsAt, endsAt time.Time) (*models.Promotion, error) {
	if percentOff <= 0 || percentOff >= 100 {
		return nil, apperror.New(apperror.ErrCodeValidation, "скидка должна быть в пределах (0, 100) процентов")
	}
	if !endsAt.After(startsAt) {
		return nil, apperror.New(apperror.ErrCodeValidation, "окончание акции должно быть позже начала")
	}

	product, err := s.repo.GetProductByID(ctx, productID)
	if err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			return nil, apperror.ErrProductNotFound
		}
		return nil, err
	}
	if product.SellerID != sellerID {
		return nil, apperror.ErrForbidden
	}

	promotion := &models.Promotion{
		ProductID:  productID,
		PercentOff: percentOff,
		StartsAt:   startsAt,
		EndsAt:     endsAt,
	}
	if err := s.repo.CreatePromotion(ctx, promotion); err != nil {
		return nil, err
	}
	return promotion, nil
}
