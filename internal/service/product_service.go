package service

import (
	"context"
	"errors"
	"time"

	"github.com/gofrs/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"github.com/vasiliy-maslov/orders-service/internal/cache"
	"github.com/vasiliy-maslov/orders-service/internal/domain"
	"github.com/vasiliy-maslov/orders-service/internal/port"
)

const productCacheTTL = 5 * time.Minute

type CreateProductInput struct {
	Name          string
	SKU           string
	Price         decimal.Decimal
	StockQuantity int
	Description   string
}

type UpdateProductInput struct {
	Name          string
	Description   string
	Price         decimal.Decimal
	StockQuantity *int
	IsActive      *bool
}

// ProductPage is the cached shape for paged listings.
type ProductPage struct {
	Products   []domain.Product `json:"products"`
	TotalCount int              `json:"total_count"`
}

type ProductService interface {
	CreateProduct(ctx context.Context, input CreateProductInput) (*domain.Product, error)
	UpdateProduct(ctx context.Context, id uuid.UUID, input UpdateProductInput) (*domain.Product, error)
	GetProductByID(ctx context.Context, id uuid.UUID) (*domain.Product, error)
	GetProductBySKU(ctx context.Context, sku string) (*domain.Product, error)
	ListProducts(ctx context.Context, pageNumber, pageSize int, isActive *bool) (*ProductPage, error)
}

type productService struct {
	newUnitOfWork func() port.UnitOfWork
	cache         port.Cache
}

func NewProductService(newUnitOfWork func() port.UnitOfWork, readCache port.Cache) ProductService {
	return &productService{newUnitOfWork: newUnitOfWork, cache: readCache}
}

func (s *productService) CreateProduct(ctx context.Context, input CreateProductInput) (*domain.Product, error) {
	uow := s.newUnitOfWork()

	existing, err := uow.Products().GetBySKU(ctx, input.SKU)
	if err != nil && !errNotFound(err) {
		return nil, err
	}
	if err == nil {
		return nil, domain.NewDuplicateKey("a product with SKU '" + existing.SKU + "' already exists")
	}

	product, err := domain.NewProduct(input.Name, input.SKU, input.Price, input.StockQuantity, input.Description)
	if err != nil {
		return nil, err
	}

	if err := uow.Products().Add(ctx, product); err != nil {
		return nil, err
	}

	// Staleness window is acceptable; nuke every product key rather than
	// chase page/filter combinations.
	_ = s.cache.RemoveByPrefix(ctx, cache.ProductsPrefix)

	log.Info().
		Stringer("product_id", product.ID).
		Str("sku", product.SKU).
		Msg("service: product created")

	return product, nil
}

func (s *productService) UpdateProduct(ctx context.Context, id uuid.UUID, input UpdateProductInput) (*domain.Product, error) {
	uow := s.newUnitOfWork()

	product, err := uow.Products().GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := product.Update(input.Name, input.Description, input.Price); err != nil {
		return nil, err
	}

	if input.StockQuantity != nil {
		if err := product.UpdateStock(*input.StockQuantity); err != nil {
			return nil, err
		}
	}

	if input.IsActive != nil {
		if *input.IsActive {
			product.Activate()
		} else {
			product.Deactivate()
		}
	}

	if err := uow.Products().Update(ctx, product); err != nil {
		return nil, err
	}

	_ = s.cache.Remove(ctx, cache.ProductKey(product.ID))
	_ = s.cache.RemoveByPrefix(ctx, cache.ProductsAllPrefix)

	log.Info().Stringer("product_id", product.ID).Msg("service: product updated")

	return product, nil
}

func (s *productService) GetProductByID(ctx context.Context, id uuid.UUID) (*domain.Product, error) {
	key := cache.ProductKey(id)

	var cached domain.Product
	if hit, _ := s.cache.Get(ctx, key, &cached); hit {
		return &cached, nil
	}

	product, err := s.newUnitOfWork().Products().GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	_ = s.cache.Set(ctx, key, product, productCacheTTL)
	return product, nil
}

func (s *productService) GetProductBySKU(ctx context.Context, sku string) (*domain.Product, error) {
	return s.newUnitOfWork().Products().GetBySKU(ctx, sku)
}

func (s *productService) ListProducts(ctx context.Context, pageNumber, pageSize int, isActive *bool) (*ProductPage, error) {
	key := cache.ProductsAllKey(pageNumber, pageSize, isActive)

	var cached ProductPage
	if hit, _ := s.cache.Get(ctx, key, &cached); hit {
		return &cached, nil
	}

	uow := s.newUnitOfWork()

	products, err := uow.Products().GetAll(ctx, pageNumber, pageSize, isActive)
	if err != nil {
		return nil, err
	}

	total, err := uow.Products().GetTotalCount(ctx, isActive)
	if err != nil {
		return nil, err
	}

	page := &ProductPage{Products: products, TotalCount: total}
	_ = s.cache.Set(ctx, key, page, productCacheTTL)

	return page, nil
}

// errNotFound reports whether err is an entity-not-found domain error.
func errNotFound(err error) bool {
	var domainErr *domain.Error
	return errors.As(err, &domainErr) && domainErr.Code == domain.CodeEntityNotFound
}
