package service

import (
	"context"
	"time"

	"github.com/gofrs/uuid"
	"github.com/vasiliy-maslov/orders-service/internal/domain"
	"github.com/vasiliy-maslov/orders-service/internal/port"
)

type mockOrderRepo struct {
	getByIDFn          func(ctx context.Context, id uuid.UUID) (*domain.Order, error)
	getByOrderNumberFn func(ctx context.Context, orderNumber string) (*domain.Order, error)
	getByCustomerIDFn  func(ctx context.Context, customerID uuid.UUID) ([]domain.Order, error)
	getAllFn           func(ctx context.Context, pageNumber, pageSize int) ([]domain.Order, error)
	getTotalCountFn    func(ctx context.Context) (int, error)
	addFn              func(ctx context.Context, order *domain.Order) error
	updateFn           func(ctx context.Context, order *domain.Order) error
	deleteFn           func(ctx context.Context, id uuid.UUID) error
}

func (m *mockOrderRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Order, error) {
	return m.getByIDFn(ctx, id)
}

func (m *mockOrderRepo) GetByOrderNumber(ctx context.Context, orderNumber string) (*domain.Order, error) {
	return m.getByOrderNumberFn(ctx, orderNumber)
}

func (m *mockOrderRepo) GetByCustomerID(ctx context.Context, customerID uuid.UUID) ([]domain.Order, error) {
	return m.getByCustomerIDFn(ctx, customerID)
}

func (m *mockOrderRepo) GetAll(ctx context.Context, pageNumber, pageSize int) ([]domain.Order, error) {
	return m.getAllFn(ctx, pageNumber, pageSize)
}

func (m *mockOrderRepo) GetTotalCount(ctx context.Context) (int, error) {
	return m.getTotalCountFn(ctx)
}

func (m *mockOrderRepo) Add(ctx context.Context, order *domain.Order) error {
	return m.addFn(ctx, order)
}

func (m *mockOrderRepo) Update(ctx context.Context, order *domain.Order) error {
	return m.updateFn(ctx, order)
}

func (m *mockOrderRepo) Delete(ctx context.Context, id uuid.UUID) error {
	return m.deleteFn(ctx, id)
}

type mockProductRepo struct {
	getByIDFn       func(ctx context.Context, id uuid.UUID) (*domain.Product, error)
	getBySKUFn      func(ctx context.Context, sku string) (*domain.Product, error)
	getByIDsFn      func(ctx context.Context, ids []uuid.UUID) ([]domain.Product, error)
	getAllFn        func(ctx context.Context, pageNumber, pageSize int, isActive *bool) ([]domain.Product, error)
	getTotalCountFn func(ctx context.Context, isActive *bool) (int, error)
	addFn           func(ctx context.Context, product *domain.Product) error
	updateFn        func(ctx context.Context, product *domain.Product) error
	deleteFn        func(ctx context.Context, id uuid.UUID) error
}

func (m *mockProductRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Product, error) {
	return m.getByIDFn(ctx, id)
}

func (m *mockProductRepo) GetBySKU(ctx context.Context, sku string) (*domain.Product, error) {
	return m.getBySKUFn(ctx, sku)
}

func (m *mockProductRepo) GetByIDs(ctx context.Context, ids []uuid.UUID) ([]domain.Product, error) {
	return m.getByIDsFn(ctx, ids)
}

func (m *mockProductRepo) GetAll(ctx context.Context, pageNumber, pageSize int, isActive *bool) ([]domain.Product, error) {
	return m.getAllFn(ctx, pageNumber, pageSize, isActive)
}

func (m *mockProductRepo) GetTotalCount(ctx context.Context, isActive *bool) (int, error) {
	return m.getTotalCountFn(ctx, isActive)
}

func (m *mockProductRepo) Add(ctx context.Context, product *domain.Product) error {
	return m.addFn(ctx, product)
}

func (m *mockProductRepo) Update(ctx context.Context, product *domain.Product) error {
	return m.updateFn(ctx, product)
}

func (m *mockProductRepo) Delete(ctx context.Context, id uuid.UUID) error {
	return m.deleteFn(ctx, id)
}

type mockCustomerRepo struct {
	getByIDFn       func(ctx context.Context, id uuid.UUID) (*domain.Customer, error)
	getByEmailFn    func(ctx context.Context, email string) (*domain.Customer, error)
	getAllFn        func(ctx context.Context, pageNumber, pageSize int) ([]domain.Customer, error)
	getTotalCountFn func(ctx context.Context) (int, error)
	addFn           func(ctx context.Context, customer *domain.Customer) error
	updateFn        func(ctx context.Context, customer *domain.Customer) error
	deleteFn        func(ctx context.Context, id uuid.UUID) error
	existsByEmailFn func(ctx context.Context, email string) (bool, error)
}

func (m *mockCustomerRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Customer, error) {
	return m.getByIDFn(ctx, id)
}

func (m *mockCustomerRepo) GetByEmail(ctx context.Context, email string) (*domain.Customer, error) {
	return m.getByEmailFn(ctx, email)
}

func (m *mockCustomerRepo) GetAll(ctx context.Context, pageNumber, pageSize int) ([]domain.Customer, error) {
	return m.getAllFn(ctx, pageNumber, pageSize)
}

func (m *mockCustomerRepo) GetTotalCount(ctx context.Context) (int, error) {
	return m.getTotalCountFn(ctx)
}

func (m *mockCustomerRepo) Add(ctx context.Context, customer *domain.Customer) error {
	return m.addFn(ctx, customer)
}

func (m *mockCustomerRepo) Update(ctx context.Context, customer *domain.Customer) error {
	return m.updateFn(ctx, customer)
}

func (m *mockCustomerRepo) Delete(ctx context.Context, id uuid.UUID) error {
	return m.deleteFn(ctx, id)
}

func (m *mockCustomerRepo) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	return m.existsByEmailFn(ctx, email)
}

// mockUnitOfWork counts lifecycle calls so tests can assert commit/rollback
// behavior.
type mockUnitOfWork struct {
	orders    *mockOrderRepo
	products  *mockProductRepo
	customers *mockCustomerRepo

	beginCalls    int
	commitCalls   int
	rollbackCalls int

	commitErr error
}

func (m *mockUnitOfWork) Orders() port.OrderRepository       { return m.orders }
func (m *mockUnitOfWork) Products() port.ProductRepository   { return m.products }
func (m *mockUnitOfWork) Customers() port.CustomerRepository { return m.customers }

func (m *mockUnitOfWork) Begin(ctx context.Context) error {
	m.beginCalls++
	return nil
}

func (m *mockUnitOfWork) Commit(ctx context.Context) error {
	m.commitCalls++
	return m.commitErr
}

func (m *mockUnitOfWork) Rollback(ctx context.Context) error {
	m.rollbackCalls++
	return nil
}

type mockLock struct {
	releaseCalls int
}

func (m *mockLock) Release(ctx context.Context) error {
	m.releaseCalls++
	return nil
}

type mockLocker struct {
	acquireFn func(ctx context.Context, resource string, expiry time.Duration) (port.Lock, error)

	lastResource string
}

func (m *mockLocker) AcquireLock(ctx context.Context, resource string, expiry time.Duration) (port.Lock, error) {
	m.lastResource = resource
	return m.acquireFn(ctx, resource, expiry)
}

func (m *mockLocker) TryAcquireLock(ctx context.Context, resource string, expiry time.Duration) (bool, error) {
	lock, err := m.AcquireLock(ctx, resource, expiry)
	return lock != nil, err
}

// mockCache is a permissive in-memory stand-in; it never reports hits unless
// primed via the get function.
type mockCache struct {
	getFn func(ctx context.Context, key string, dest any) (bool, error)

	setKeys     []string
	removedKeys []string
}

func (m *mockCache) Get(ctx context.Context, key string, dest any) (bool, error) {
	if m.getFn != nil {
		return m.getFn(ctx, key, dest)
	}
	return false, nil
}

func (m *mockCache) Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	m.setKeys = append(m.setKeys, key)
	return nil
}

func (m *mockCache) Remove(ctx context.Context, key string) error {
	m.removedKeys = append(m.removedKeys, key)
	return nil
}

func (m *mockCache) RemoveByPrefix(ctx context.Context, prefix string) error {
	m.removedKeys = append(m.removedKeys, prefix)
	return nil
}
