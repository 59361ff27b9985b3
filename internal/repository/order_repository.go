package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/gofrs/uuid"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
	"github.com/vasiliy-maslov/orders-service/internal/domain"
	"golang.org/x/text/currency"
)

// ErrOrderNumberConflict signals a collision on the generated order number.
// The caller regenerates the number and retries; uniqueness is enforced by
// the database constraint, not by generation.
var ErrOrderNumberConflict = errors.New("order number already exists")

type orderRepository struct {
	db *UnitOfWork
}

const orderColumns = `
	id, order_number, customer_id, status,
	ship_street, ship_city, ship_state, ship_country, ship_zip,
	subtotal, tax, total, currency, notes, created_at, updated_at
`

const orderItemColumns = `
	id, order_id, product_id, product_name, product_sku,
	unit_price, quantity, created_at, updated_at
`

func (r *orderRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE id = $1`

	order, err := r.scanOrder(r.db.querier().QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.NewEntityNotFound("Order", id)
		}
		return nil, fmt.Errorf("repository: failed to select order by id %s: %w", id, err)
	}

	if err := r.loadItems(ctx, order); err != nil {
		return nil, err
	}

	return order, nil
}

func (r *orderRepository) GetByOrderNumber(ctx context.Context, orderNumber string) (*domain.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE order_number = $1`

	order, err := r.scanOrder(r.db.querier().QueryRow(ctx, query, orderNumber))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.NewEntityNotFound("Order", orderNumber)
		}
		return nil, fmt.Errorf("repository: failed to select order by number %s: %w", orderNumber, err)
	}

	if err := r.loadItems(ctx, order); err != nil {
		return nil, err
	}

	return order, nil
}

func (r *orderRepository) GetByCustomerID(ctx context.Context, customerID uuid.UUID) ([]domain.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE customer_id = $1 ORDER BY created_at DESC`

	rows, err := r.db.querier().Query(ctx, query, customerID)
	if err != nil {
		return nil, fmt.Errorf("repository: failed to query orders for customer %s: %w", customerID, err)
	}
	defer rows.Close()

	orders, err := r.collectOrders(rows)
	if err != nil {
		return nil, fmt.Errorf("repository: failed to scan orders for customer %s: %w", customerID, err)
	}

	if err := r.loadItemsForAll(ctx, orders); err != nil {
		return nil, err
	}

	return orders, nil
}

func (r *orderRepository) GetAll(ctx context.Context, pageNumber, pageSize int) ([]domain.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders ORDER BY created_at DESC LIMIT $1 OFFSET $2`

	rows, err := r.db.querier().Query(ctx, query, pageSize, (pageNumber-1)*pageSize)
	if err != nil {
		return nil, fmt.Errorf("repository: failed to query orders page %d: %w", pageNumber, err)
	}
	defer rows.Close()

	orders, err := r.collectOrders(rows)
	if err != nil {
		return nil, fmt.Errorf("repository: failed to scan orders page %d: %w", pageNumber, err)
	}

	if err := r.loadItemsForAll(ctx, orders); err != nil {
		return nil, err
	}

	return orders, nil
}

func (r *orderRepository) GetTotalCount(ctx context.Context) (int, error) {
	var count int
	if err := r.db.querier().QueryRow(ctx, `SELECT count(*) FROM orders`).Scan(&count); err != nil {
		return 0, fmt.Errorf("repository: failed to count orders: %w", err)
	}
	return count, nil
}

func (r *orderRepository) Add(ctx context.Context, order *domain.Order) error {
	query := `
		INSERT INTO orders (` + orderColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
	`

	_, err := r.db.querier().Exec(ctx, query,
		order.ID,
		order.OrderNumber,
		order.CustomerID,
		string(order.Status),
		order.ShippingAddress.Street,
		order.ShippingAddress.City,
		order.ShippingAddress.State,
		order.ShippingAddress.Country,
		order.ShippingAddress.ZipCode,
		order.Subtotal.Amount,
		order.Tax.Amount,
		order.Total.Amount,
		order.Total.Currency.String(),
		order.Notes,
		order.CreatedAt,
		order.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err, "orders_order_number_key") {
			return ErrOrderNumberConflict
		}
		return fmt.Errorf("repository: failed to insert order: %w", err)
	}

	itemQuery := `
		INSERT INTO order_items (` + orderItemColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	for _, item := range order.Items {
		_, err := r.db.querier().Exec(ctx, itemQuery,
			item.ID,
			order.ID,
			item.ProductID,
			item.ProductName,
			item.ProductSKU,
			item.UnitPrice.Amount,
			item.Quantity,
			item.CreatedAt,
			item.UpdatedAt,
		)
		if err != nil {
			return fmt.Errorf("repository: failed to insert order item for order %s: %w", order.ID, err)
		}
	}

	return nil
}

// Update persists the order row. Items are only mutated while an order is
// still pending and unpersisted, so they never change after Add.
func (r *orderRepository) Update(ctx context.Context, order *domain.Order) error {
	query := `
		UPDATE orders
		SET status = $1, subtotal = $2, tax = $3, total = $4, notes = $5, updated_at = $6
		WHERE id = $7
	`

	cmdTag, err := r.db.querier().Exec(ctx, query,
		string(order.Status),
		order.Subtotal.Amount,
		order.Tax.Amount,
		order.Total.Amount,
		order.Notes,
		order.UpdatedAt,
		order.ID,
	)
	if err != nil {
		return fmt.Errorf("repository: failed to update order %s: %w", order.ID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return domain.NewEntityNotFound("Order", order.ID)
	}

	return nil
}

func (r *orderRepository) Delete(ctx context.Context, id uuid.UUID) error {
	cmdTag, err := r.db.querier().Exec(ctx, `DELETE FROM orders WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("repository: failed to delete order %s: %w", id, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return domain.NewEntityNotFound("Order", id)
	}

	return nil
}

func (r *orderRepository) scanOrder(row pgx.Row) (*domain.Order, error) {
	var (
		order        domain.Order
		status       string
		subtotal     decimal.Decimal
		tax          decimal.Decimal
		total        decimal.Decimal
		currencyCode string
	)

	err := row.Scan(
		&order.ID,
		&order.OrderNumber,
		&order.CustomerID,
		&status,
		&order.ShippingAddress.Street,
		&order.ShippingAddress.City,
		&order.ShippingAddress.State,
		&order.ShippingAddress.Country,
		&order.ShippingAddress.ZipCode,
		&subtotal,
		&tax,
		&total,
		&currencyCode,
		&order.Notes,
		&order.CreatedAt,
		&order.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	unit, err := currency.ParseISO(currencyCode)
	if err != nil {
		return nil, fmt.Errorf("currency[%s] is not valid: %w", currencyCode, err)
	}

	order.Status = domain.OrderStatus(status)
	order.Subtotal = domain.Money{Amount: subtotal, Currency: unit}
	order.Tax = domain.Money{Amount: tax, Currency: unit}
	order.Total = domain.Money{Amount: total, Currency: unit}
	order.Items = make([]domain.OrderItem, 0)

	return &order, nil
}

func (r *orderRepository) collectOrders(rows pgx.Rows) ([]domain.Order, error) {
	orders := make([]domain.Order, 0)
	for rows.Next() {
		order, err := r.scanOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, *order)
	}

	return orders, rows.Err()
}

func (r *orderRepository) loadItems(ctx context.Context, order *domain.Order) error {
	query := `SELECT ` + orderItemColumns + ` FROM order_items WHERE order_id = $1 ORDER BY created_at`

	rows, err := r.db.querier().Query(ctx, query, order.ID)
	if err != nil {
		return fmt.Errorf("repository: failed to query order items for order %s: %w", order.ID, err)
	}
	defer rows.Close()

	items, err := r.collectItems(rows, order.Total.Currency)
	if err != nil {
		return fmt.Errorf("repository: failed to scan order items for order %s: %w", order.ID, err)
	}

	order.Items = items
	return nil
}

func (r *orderRepository) loadItemsForAll(ctx context.Context, orders []domain.Order) error {
	if len(orders) == 0 {
		return nil
	}

	orderIDs := lo.Map(orders, func(o domain.Order, _ int) uuid.UUID { return o.ID })
	byID := make(map[uuid.UUID]*domain.Order, len(orders))
	for i := range orders {
		byID[orders[i].ID] = &orders[i]
	}

	query := `SELECT ` + orderItemColumns + ` FROM order_items WHERE order_id = ANY($1) ORDER BY created_at`

	rows, err := r.db.querier().Query(ctx, query, orderIDs)
	if err != nil {
		return fmt.Errorf("repository: failed to query order items: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		item, err := scanOrderItem(rows, currency.USD)
		if err != nil {
			return fmt.Errorf("repository: failed to scan order item: %w", err)
		}
		if order, ok := byID[item.OrderID]; ok {
			item.UnitPrice.Currency = order.Total.Currency
			order.Items = append(order.Items, item)
		}
	}

	return rows.Err()
}

func (r *orderRepository) collectItems(rows pgx.Rows, unit currency.Unit) ([]domain.OrderItem, error) {
	items := make([]domain.OrderItem, 0)
	for rows.Next() {
		item, err := scanOrderItem(rows, unit)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}

	return items, rows.Err()
}

func scanOrderItem(row pgx.Row, unit currency.Unit) (domain.OrderItem, error) {
	var (
		item      domain.OrderItem
		unitPrice decimal.Decimal
	)

	err := row.Scan(
		&item.ID,
		&item.OrderID,
		&item.ProductID,
		&item.ProductName,
		&item.ProductSKU,
		&unitPrice,
		&item.Quantity,
		&item.CreatedAt,
		&item.UpdatedAt,
	)
	if err != nil {
		return domain.OrderItem{}, err
	}

	item.UnitPrice = domain.Money{Amount: unitPrice, Currency: unit}
	return item, nil
}

func isUniqueViolation(err error, constraint string) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == pgerrcode.UniqueViolation && pgErr.ConstraintName == constraint
	}
	return false
}
