package port

import (
	"context"

	"github.com/gofrs/uuid"
	"github.com/vasiliy-maslov/orders-service/internal/domain"
)

type OrderRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Order, error)
	GetByOrderNumber(ctx context.Context, orderNumber string) (*domain.Order, error)
	GetByCustomerID(ctx context.Context, customerID uuid.UUID) ([]domain.Order, error)
	GetAll(ctx context.Context, pageNumber, pageSize int) ([]domain.Order, error)
	GetTotalCount(ctx context.Context) (int, error)
	Add(ctx context.Context, order *domain.Order) error
	Update(ctx context.Context, order *domain.Order) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type ProductRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Product, error)
	GetBySKU(ctx context.Context, sku string) (*domain.Product, error)
	GetByIDs(ctx context.Context, ids []uuid.UUID) ([]domain.Product, error)
	GetAll(ctx context.Context, pageNumber, pageSize int, isActive *bool) ([]domain.Product, error)
	GetTotalCount(ctx context.Context, isActive *bool) (int, error)
	Add(ctx context.Context, product *domain.Product) error
	Update(ctx context.Context, product *domain.Product) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type CustomerRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Customer, error)
	GetByEmail(ctx context.Context, email string) (*domain.Customer, error)
	GetAll(ctx context.Context, pageNumber, pageSize int) ([]domain.Customer, error)
	GetTotalCount(ctx context.Context) (int, error)
	Add(ctx context.Context, customer *domain.Customer) error
	Update(ctx context.Context, customer *domain.Customer) error
	Delete(ctx context.Context, id uuid.UUID) error
	ExistsByEmail(ctx context.Context, email string) (bool, error)
}

// UnitOfWork exposes the three repositories over one shared transactional
// context. Outside a transaction repository calls run in auto-commit mode;
// between Begin and Commit all mutations are applied together or not at all.
type UnitOfWork interface {
	Orders() OrderRepository
	Products() ProductRepository
	Customers() CustomerRepository

	// Begin is a no-op when a transaction is already open.
	Begin(ctx context.Context) error
	// Commit performs the final flush of the open transaction. A flush
	// failure rolls back instead of committing partial state.
	Commit(ctx context.Context) error
	// Rollback is safe to call when no transaction is open, so it can be
	// deferred on every exit path.
	Rollback(ctx context.Context) error
}
