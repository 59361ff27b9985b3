package service

import (
	"context"
	"testing"

	"github.com/gofrs/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vasiliy-maslov/orders-service/internal/domain"
	"github.com/vasiliy-maslov/orders-service/internal/port"
)

type stubTokenIssuer struct {
	token string
	err   error
}

func (s *stubTokenIssuer) GenerateToken(customer *domain.Customer) (string, error) {
	return s.token, s.err
}

func newCustomerServiceFixture(t *testing.T) (*mockUnitOfWork, CustomerService) {
	t.Helper()

	uow := &mockUnitOfWork{
		orders:    &mockOrderRepo{},
		products:  &mockProductRepo{},
		customers: &mockCustomerRepo{},
	}
	svc := NewCustomerService(func() port.UnitOfWork { return uow }, &stubTokenIssuer{token: "signed-token"})

	return uow, svc
}

func TestCustomerService_CreateCustomer(t *testing.T) {
	uow, svc := newCustomerServiceFixture(t)

	uow.customers.existsByEmailFn = func(ctx context.Context, email string) (bool, error) {
		return false, nil
	}

	var added *domain.Customer
	uow.customers.addFn = func(ctx context.Context, c *domain.Customer) error {
		added = c
		return nil
	}

	result, err := svc.CreateCustomer(context.Background(), CreateCustomerInput{
		Email:     "Buyer@Example.com",
		FirstName: "Buyer",
		LastName:  "One",
	})
	require.NoError(t, err)

	assert.Equal(t, "buyer@example.com", result.Customer.Email, "email must be normalized")
	assert.Equal(t, "signed-token", result.Token)
	require.NotNil(t, added)
}

func TestCustomerService_CreateCustomer_DuplicateEmail(t *testing.T) {
	uow, svc := newCustomerServiceFixture(t)

	uow.customers.existsByEmailFn = func(ctx context.Context, email string) (bool, error) {
		return true, nil
	}
	uow.customers.addFn = func(ctx context.Context, c *domain.Customer) error {
		t.Fatal("duplicate email must not be persisted")
		return nil
	}

	_, err := svc.CreateCustomer(context.Background(), CreateCustomerInput{
		Email:     "buyer@example.com",
		FirstName: "Buyer",
		LastName:  "One",
	})
	require.Error(t, err)
	assert.Equal(t, domain.CodeDuplicateKey, domain.CodeOf(err))
}

func TestCustomerService_UpdateCustomer(t *testing.T) {
	uow, svc := newCustomerServiceFixture(t)
	customer := testCustomer(t)

	uow.customers.getByIDFn = func(ctx context.Context, id uuid.UUID) (*domain.Customer, error) {
		return customer, nil
	}

	var updated *domain.Customer
	uow.customers.updateFn = func(ctx context.Context, c *domain.Customer) error {
		updated = c
		return nil
	}

	address := testAddress(t)
	got, err := svc.UpdateCustomer(context.Background(), customer.ID, UpdateCustomerInput{
		FirstName:       "Renamed",
		ShippingAddress: &address,
	})
	require.NoError(t, err)

	assert.Equal(t, "Renamed", got.FirstName)
	assert.Equal(t, "One", got.LastName, "blank fields keep current values")
	require.NotNil(t, got.ShippingAddress)
	assert.Equal(t, address, *got.ShippingAddress)
	require.NotNil(t, updated)
}
