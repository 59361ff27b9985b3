package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/gofrs/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/vasiliy-maslov/orders-service/internal/domain"
)

type customerRepository struct {
	db *UnitOfWork
}

const customerColumns = `
	id, email, first_name, last_name, phone,
	ship_street, ship_city, ship_state, ship_country, ship_zip,
	created_at, updated_at
`

func (r *customerRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Customer, error) {
	query := `SELECT ` + customerColumns + ` FROM customers WHERE id = $1`

	customer, err := scanCustomer(r.db.querier().QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.NewEntityNotFound("Customer", id)
		}
		return nil, fmt.Errorf("repository: failed to select customer by id %s: %w", id, err)
	}

	return customer, nil
}

func (r *customerRepository) GetByEmail(ctx context.Context, email string) (*domain.Customer, error) {
	query := `SELECT ` + customerColumns + ` FROM customers WHERE email = $1`

	customer, err := scanCustomer(r.db.querier().QueryRow(ctx, query, normalizeEmail(email)))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.NewEntityNotFound("Customer", email)
		}
		return nil, fmt.Errorf("repository: failed to select customer by email %s: %w", email, err)
	}

	return customer, nil
}

func (r *customerRepository) GetAll(ctx context.Context, pageNumber, pageSize int) ([]domain.Customer, error) {
	query := `SELECT ` + customerColumns + ` FROM customers ORDER BY created_at DESC LIMIT $1 OFFSET $2`

	rows, err := r.db.querier().Query(ctx, query, pageSize, (pageNumber-1)*pageSize)
	if err != nil {
		return nil, fmt.Errorf("repository: failed to query customers page %d: %w", pageNumber, err)
	}
	defer rows.Close()

	customers := make([]domain.Customer, 0)
	for rows.Next() {
		customer, err := scanCustomer(rows)
		if err != nil {
			return nil, fmt.Errorf("repository: failed to scan customer: %w", err)
		}
		customers = append(customers, *customer)
	}

	return customers, rows.Err()
}

func (r *customerRepository) GetTotalCount(ctx context.Context) (int, error) {
	var count int
	if err := r.db.querier().QueryRow(ctx, `SELECT count(*) FROM customers`).Scan(&count); err != nil {
		return 0, fmt.Errorf("repository: failed to count customers: %w", err)
	}
	return count, nil
}

func (r *customerRepository) Add(ctx context.Context, customer *domain.Customer) error {
	query := `
		INSERT INTO customers (` + customerColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`

	var street, city, state, country, zip *string
	if addr := customer.ShippingAddress; addr != nil {
		street, city, state, country, zip = &addr.Street, &addr.City, &addr.State, &addr.Country, &addr.ZipCode
	}

	_, err := r.db.querier().Exec(ctx, query,
		customer.ID,
		customer.Email,
		customer.FirstName,
		customer.LastName,
		customer.Phone,
		street, city, state, country, zip,
		customer.CreatedAt,
		customer.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err, "customers_email_key") {
			return domain.NewDuplicateKey(fmt.Sprintf("a customer with email '%s' already exists", customer.Email))
		}
		return fmt.Errorf("repository: failed to insert customer: %w", err)
	}

	return nil
}

func (r *customerRepository) Update(ctx context.Context, customer *domain.Customer) error {
	query := `
		UPDATE customers
		SET first_name = $1, last_name = $2, phone = $3,
			ship_street = $4, ship_city = $5, ship_state = $6, ship_country = $7, ship_zip = $8,
			updated_at = $9
		WHERE id = $10
	`

	var street, city, state, country, zip *string
	if addr := customer.ShippingAddress; addr != nil {
		street, city, state, country, zip = &addr.Street, &addr.City, &addr.State, &addr.Country, &addr.ZipCode
	}

	cmdTag, err := r.db.querier().Exec(ctx, query,
		customer.FirstName,
		customer.LastName,
		customer.Phone,
		street, city, state, country, zip,
		customer.UpdatedAt,
		customer.ID,
	)
	if err != nil {
		return fmt.Errorf("repository: failed to update customer %s: %w", customer.ID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return domain.NewEntityNotFound("Customer", customer.ID)
	}

	return nil
}

func (r *customerRepository) Delete(ctx context.Context, id uuid.UUID) error {
	cmdTag, err := r.db.querier().Exec(ctx, `DELETE FROM customers WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("repository: failed to delete customer %s: %w", id, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return domain.NewEntityNotFound("Customer", id)
	}

	return nil
}

func (r *customerRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	var exists bool
	err := r.db.querier().QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM customers WHERE email = $1)`, normalizeEmail(email)).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("repository: failed to check customer email %s: %w", email, err)
	}

	return exists, nil
}

func scanCustomer(row pgx.Row) (*domain.Customer, error) {
	var (
		customer domain.Customer
		street   *string
		city     *string
		state    *string
		country  *string
		zip      *string
	)

	err := row.Scan(
		&customer.ID,
		&customer.Email,
		&customer.FirstName,
		&customer.LastName,
		&customer.Phone,
		&street, &city, &state, &country, &zip,
		&customer.CreatedAt,
		&customer.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if street != nil {
		customer.ShippingAddress = &domain.Address{
			Street:  *street,
			City:    deref(city),
			State:   deref(state),
			Country: deref(country),
			ZipCode: deref(zip),
		}
	}

	return &customer, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
