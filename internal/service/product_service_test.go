package service

import (
	"context"
	"testing"

	"github.com/gofrs/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vasiliy-maslov/orders-service/internal/domain"
	"github.com/vasiliy-maslov/orders-service/internal/port"
)

type productServiceFixture struct {
	uow   *mockUnitOfWork
	cache *mockCache

	svc ProductService
}

func newProductServiceFixture(t *testing.T) *productServiceFixture {
	t.Helper()

	f := &productServiceFixture{
		uow: &mockUnitOfWork{
			orders:    &mockOrderRepo{},
			products:  &mockProductRepo{},
			customers: &mockCustomerRepo{},
		},
		cache: &mockCache{},
	}
	f.svc = NewProductService(func() port.UnitOfWork { return f.uow }, f.cache)

	return f
}

func TestProductService_CreateProduct(t *testing.T) {
	f := newProductServiceFixture(t)

	f.uow.products.getBySKUFn = func(ctx context.Context, sku string) (*domain.Product, error) {
		return nil, domain.NewEntityNotFound("Product", sku)
	}

	var added *domain.Product
	f.uow.products.addFn = func(ctx context.Context, p *domain.Product) error {
		added = p
		return nil
	}

	product, err := f.svc.CreateProduct(context.Background(), CreateProductInput{
		Name:          "Widget",
		SKU:           "wid-1",
		Price:         decimal.RequireFromString("9.99"),
		StockQuantity: 5,
	})
	require.NoError(t, err)

	assert.Equal(t, "WID-1", product.SKU)
	require.NotNil(t, added)
	assert.Contains(t, f.cache.removedKeys, "products:", "listing cache must be invalidated")
}

func TestProductService_CreateProduct_DuplicateSKU(t *testing.T) {
	f := newProductServiceFixture(t)
	existing := testProduct(t, "9.99", 5)

	f.uow.products.getBySKUFn = func(ctx context.Context, sku string) (*domain.Product, error) {
		return existing, nil
	}
	f.uow.products.addFn = func(ctx context.Context, p *domain.Product) error {
		t.Fatal("duplicate SKU must not be persisted")
		return nil
	}

	_, err := f.svc.CreateProduct(context.Background(), CreateProductInput{
		Name:  "Widget",
		SKU:   existing.SKU,
		Price: decimal.RequireFromString("9.99"),
	})
	require.Error(t, err)
	assert.Equal(t, domain.CodeDuplicateKey, domain.CodeOf(err))
}

func TestProductService_UpdateProduct_InvalidatesCache(t *testing.T) {
	f := newProductServiceFixture(t)
	product := testProduct(t, "9.99", 5)

	f.uow.products.getByIDFn = func(ctx context.Context, id uuid.UUID) (*domain.Product, error) {
		return product, nil
	}
	f.uow.products.updateFn = func(ctx context.Context, p *domain.Product) error { return nil }

	stock := 12
	inactive := false
	updated, err := f.svc.UpdateProduct(context.Background(), product.ID, UpdateProductInput{
		Name:          "Widget v2",
		Price:         decimal.RequireFromString("12.50"),
		StockQuantity: &stock,
		IsActive:      &inactive,
	})
	require.NoError(t, err)

	assert.Equal(t, "Widget v2", updated.Name)
	assert.Equal(t, 12, updated.StockQuantity)
	assert.False(t, updated.IsActive)
	assert.Contains(t, f.cache.removedKeys, "products:"+product.ID.String())
	assert.Contains(t, f.cache.removedKeys, "products:all:")
}

func TestProductService_GetProductByID_CachesOnMiss(t *testing.T) {
	f := newProductServiceFixture(t)
	product := testProduct(t, "9.99", 5)

	repoCalls := 0
	f.uow.products.getByIDFn = func(ctx context.Context, id uuid.UUID) (*domain.Product, error) {
		repoCalls++
		return product, nil
	}

	got, err := f.svc.GetProductByID(context.Background(), product.ID)
	require.NoError(t, err)
	assert.Equal(t, product.ID, got.ID)
	assert.Equal(t, 1, repoCalls)
	assert.Contains(t, f.cache.setKeys, "products:"+product.ID.String())
}

func TestProductService_ListProducts(t *testing.T) {
	f := newProductServiceFixture(t)
	product := testProduct(t, "9.99", 5)

	f.uow.products.getAllFn = func(ctx context.Context, pageNumber, pageSize int, isActive *bool) ([]domain.Product, error) {
		assert.Equal(t, 2, pageNumber)
		assert.Equal(t, 10, pageSize)
		return []domain.Product{*product}, nil
	}
	f.uow.products.getTotalCountFn = func(ctx context.Context, isActive *bool) (int, error) {
		return 11, nil
	}

	page, err := f.svc.ListProducts(context.Background(), 2, 10, nil)
	require.NoError(t, err)

	assert.Len(t, page.Products, 1)
	assert.Equal(t, 11, page.TotalCount)
	assert.NotEmpty(t, f.cache.setKeys)
}
