package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/fairprice/fairprice-backend/internal/models"
	"github.com/fairprice/fairprice-backend/internal/repository/common"
)

var ErrSellerNotFound = errors.New("seller not found")

// CatalogRepository отвечает за товары, продавцов и акции.
type CatalogRepository struct {
	db *sqlx.DB
}

// NewCatalogRepository создаёт экземпляр репозитория.
func NewCatalogRepository(db *sqlx.DB) *CatalogRepository {
	return &CatalogRepository{db: db}
}

// GetProductByID возвращает товар вместе с действующей акцией.
func (r *CatalogRepository) GetProductByID(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	product, err := common.GetByID[models.Product](ctx, r.db, "products", id, ErrProductNotFound)
	if err != nil {
		return nil, err
	}

	var promo models.Promotion
	err = r.db.GetContext(ctx, &promo, `
		SELECT * FROM promotions
		WHERE product_id = $1 AND starts_at <= NOW() AND ends_at > NOW()
		ORDER BY starts_at DESC LIMIT 1
	`, id)
	switch {
	case err == nil:
		product.Promotion = &promo
	case errors.Is(err, sql.ErrNoRows):
	default:
		return nil, fmt.Errorf("catalog repository: promotion %w", err)
	}

	return product, nil
}

// ListProducts возвращает страницу каталога, опционально по категории.
func (r *CatalogRepository) ListProducts(ctx context.Context, category *string, limit, offset int) ([]models.Product, error) {
	var products []models.Product
	var err error
	if category != nil {
		err = r.db.SelectContext(ctx, &products, `
			SELECT * FROM products WHERE category = $1 AND in_stock = TRUE
			ORDER BY created_at DESC LIMIT $2 OFFSET $3
		`, *category, limit, offset)
	} else {
		err = r.db.SelectContext(ctx, &products, `
			SELECT * FROM products WHERE in_stock = TRUE
			ORDER BY created_at DESC LIMIT $1 OFFSET $2
		`, limit, offset)
	}
	if err != nil {
		return nil, fmt.Errorf("catalog repository: list products %w", err)
	}
	return products, nil
}

// CreateProduct сохраняет товар.
func (r *CatalogRepository) CreateProduct(ctx context.Context, p *models.Product) error {
	if err := r.db.QueryRowxContext(ctx, `
		INSERT INTO products (seller_id, name, description, price, image_url, category, in_stock)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at
	`, p.SellerID, p.Name, p.Description, p.Price, p.ImageURL, p.Category, p.InStock,
	).Scan(&p.ID, &p.CreatedAt); err != nil {
		return fmt.Errorf("catalog repository: create product %w", err)
	}
	return nil
}

// GetSellerByID возвращает продавца.
func (r *CatalogRepository) GetSellerByID(ctx context.Context, id uuid.UUID) (*models.Seller, error) {
	return common.GetByID[models.Seller](ctx, r.db, "sellers", id, ErrSellerNotFound)
}

// ListSellers возвращает страницу продавцов.
func (r *CatalogRepository) ListSellers(ctx context.Context, limit, offset int) ([]models.Seller, error) {
	var sellers []models.Seller
	err := r.db.SelectContext(ctx, &sellers, `
		SELECT * FROM sellers ORDER BY rating DESC, created_at DESC LIMIT $1 OFFSET $2
	`, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("catalog repository: list sellers %w", err)
	}
	return sellers, nil
}

// CreateSeller сохраняет продавца.
func (r *CatalogRepository) CreateSeller(ctx context.Context, s *models.Seller) error {
	if err := r.db.QueryRowxContext(ctx, `
		INSERT INTO sellers (name, email, rating)
		VALUES ($1, $2, $3)
		RETURNING id, created_at
	`, s.Name, s.Email, s.Rating).Scan(&s.ID, &s.CreatedAt); err != nil {
		return fmt.Errorf("catalog repository: create seller %w", err)
	}
	return nil
}

// CreatePromotion сохраняет акцию на товар.
func (r *CatalogRepository) CreatePromotion(ctx context.Context, p *models.Promotion) error {
	if err := r.db.QueryRowxContext(ctx, `
		INSERT INTO promotions (product_id, percent_off, starts_at, ends_at)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`, p.ProductID, p.PercentOff, p.StartsAt, p.EndsAt).Scan(&p.ID); err != nil {
		return fmt.Errorf("catalog repository: create promotion %w", err)
	}
	return nil
}

// ActivePromotions возвращает акции, действующие в указанный момент.
func (r *CatalogRepository) ActivePromotions(ctx context.Context, now time.Time) ([]models.Promotion, error) {
	var promotions []models.Promotion
	err := r.db.SelectContext(ctx, &promotions, `
		SELECT * FROM promotions WHERE starts_at <= $1 AND ends_at > $1
	`, now)
	if err != nil {
		return nil, fmt.Errorf("catalog repository: active promotions %w", err)
	}
	return promotions, nil
}
