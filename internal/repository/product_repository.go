package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/gofrs/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"github.com/vasiliy-maslov/orders-service/internal/domain"
	"golang.org/x/text/currency"
)

type productRepository struct {
	db *UnitOfWork
}

const productColumns = `
	id, name, description, sku, price, currency, stock_quantity, is_active, created_at, updated_at
`

func (r *productRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE id = $1`

	product, err := scanProduct(r.db.querier().QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.NewEntityNotFound("Product", id)
		}
		return nil, fmt.Errorf("repository: failed to select product by id %s: %w", id, err)
	}

	return product, nil
}

func (r *productRepository) GetBySKU(ctx context.Context, sku string) (*domain.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE sku = $1`

	product, err := scanProduct(r.db.querier().QueryRow(ctx, query, strings.ToUpper(strings.TrimSpace(sku))))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.NewEntityNotFound("Product", sku)
		}
		return nil, fmt.Errorf("repository: failed to select product by sku %s: %w", sku, err)
	}

	return product, nil
}

func (r *productRepository) GetByIDs(ctx context.Context, ids []uuid.UUID) ([]domain.Product, error) {
	if len(ids) == 0 {
		return []domain.Product{}, nil
	}

	query := `SELECT ` + productColumns + ` FROM products WHERE id = ANY($1)`

	rows, err := r.db.querier().Query(ctx, query, ids)
	if err != nil {
		return nil, fmt.Errorf("repository: failed to query products by ids: %w", err)
	}
	defer rows.Close()

	return collectProducts(rows)
}

func (r *productRepository) GetAll(ctx context.Context, pageNumber, pageSize int, isActive *bool) ([]domain.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products
		WHERE ($1::boolean IS NULL OR is_active = $1)
		ORDER BY name LIMIT $2 OFFSET $3`

	rows, err := r.db.querier().Query(ctx, query, isActive, pageSize, (pageNumber-1)*pageSize)
	if err != nil {
		return nil, fmt.Errorf("repository: failed to query products page %d: %w", pageNumber, err)
	}
	defer rows.Close()

	return collectProducts(rows)
}

func (r *productRepository) GetTotalCount(ctx context.Context, isActive *bool) (int, error) {
	query := `SELECT count(*) FROM products WHERE ($1::boolean IS NULL OR is_active = $1)`

	var count int
	if err := r.db.querier().QueryRow(ctx, query, isActive).Scan(&count); err != nil {
		return 0, fmt.Errorf("repository: failed to count products: %w", err)
	}

	return count, nil
}

func (r *productRepository) Add(ctx context.Context, product *domain.Product) error {
	query := `
		INSERT INTO products (` + productColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	_, err := r.db.querier().Exec(ctx, query,
		product.ID,
		product.Name,
		product.Description,
		product.SKU,
		product.Price.Amount,
		product.Price.Currency.String(),
		product.StockQuantity,
		product.IsActive,
		product.CreatedAt,
		product.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err, "products_sku_key") {
			return domain.NewDuplicateKey(fmt.Sprintf("a product with SKU '%s' already exists", product.SKU))
		}
		return fmt.Errorf("repository: failed to insert product: %w", err)
	}

	return nil
}

func (r *productRepository) Update(ctx context.Context, product *domain.Product) error {
	query := `
		UPDATE products
		SET name = $1, description = $2, price = $3, stock_quantity = $4, is_active = $5, updated_at = $6
		WHERE id = $7
	`

	cmdTag, err := r.db.querier().Exec(ctx, query,
		product.Name,
		product.Description,
		product.Price.Amount,
		product.StockQuantity,
		product.IsActive,
		product.UpdatedAt,
		product.ID,
	)
	if err != nil {
		return fmt.Errorf("repository: failed to update product %s: %w", product.ID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return domain.NewEntityNotFound("Product", product.ID)
	}

	return nil
}

func (r *productRepository) Delete(ctx context.Context, id uuid.UUID) error {
	cmdTag, err := r.db.querier().Exec(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("repository: failed to delete product %s: %w", id, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return domain.NewEntityNotFound("Product", id)
	}

	return nil
}

func scanProduct(row pgx.Row) (*domain.Product, error) {
	var (
		product      domain.Product
		price        decimal.Decimal
		currencyCode string
	)

	err := row.Scan(
		&product.ID,
		&product.Name,
		&product.Description,
		&product.SKU,
		&price,
		&currencyCode,
		&product.StockQuantity,
		&product.IsActive,
		&product.CreatedAt,
		&product.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	unit, err := currency.ParseISO(currencyCode)
	if err != nil {
		return nil, fmt.Errorf("currency[%s] is not valid: %w", currencyCode, err)
	}

	product.Price = domain.Money{Amount: price, Currency: unit}
	return &product, nil
}

func collectProducts(rows pgx.Rows) ([]domain.Product, error) {
	products := make([]domain.Product, 0)
	for rows.Next() {
		product, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("repository: failed to scan product: %w", err)
		}
		products = append(products, *product)
	}

	return products, rows.Err()
}
