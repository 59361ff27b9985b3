package service

import (
	"context"

	"github.com/gofrs/uuid"
	"github.com/rs/zerolog/log"
	"github.com/vasiliy-maslov/orders-service/internal/domain"
	"github.com/vasiliy-maslov/orders-service/internal/port"
)

type CreateCustomerInput struct {
	Email     string
	FirstName string
	LastName  string
	Phone     string
}

type UpdateCustomerInput struct {
	FirstName       string
	LastName        string
	Phone           string
	ShippingAddress *domain.Address
}

type CreateCustomerResult struct {
	Customer *domain.Customer `json:"customer"`
	Token    string           `json:"token"`
}

// tokenIssuer issues an access token for a newly registered customer.
type tokenIssuer interface {
	GenerateToken(customer *domain.Customer) (string, error)
}

type CustomerService interface {
	CreateCustomer(ctx context.Context, input CreateCustomerInput) (*CreateCustomerResult, error)
	UpdateCustomer(ctx context.Context, id uuid.UUID, input UpdateCustomerInput) (*domain.Customer, error)
	GetCustomerByID(ctx context.Context, id uuid.UUID) (*domain.Customer, error)
	GetCustomerByEmail(ctx context.Context, email string) (*domain.Customer, error)
}

type customerService struct {
	newUnitOfWork func() port.UnitOfWork
	tokens        tokenIssuer
}

func NewCustomerService(newUnitOfWork func() port.UnitOfWork, tokens tokenIssuer) CustomerService {
	return &customerService{newUnitOfWork: newUnitOfWork, tokens: tokens}
}

func (s *customerService) CreateCustomer(ctx context.Context, input CreateCustomerInput) (*CreateCustomerResult, error) {
	uow := s.newUnitOfWork()

	exists, err := uow.Customers().ExistsByEmail(ctx, input.Email)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, domain.NewDuplicateKey("a customer with email '" + input.Email + "' already exists")
	}

	customer, err := domain.NewCustomer(input.Email, input.FirstName, input.LastName, input.Phone)
	if err != nil {
		return nil, err
	}

	if err := uow.Customers().Add(ctx, customer); err != nil {
		return nil, err
	}

	token, err := s.tokens.GenerateToken(customer)
	if err != nil {
		return nil, err
	}

	log.Info().
		Stringer("customer_id", customer.ID).
		Str("email", customer.Email).
		Msg("service: customer created")

	return &CreateCustomerResult{Customer: customer, Token: token}, nil
}

func (s *customerService) UpdateCustomer(ctx context.Context, id uuid.UUID, input UpdateCustomerInput) (*domain.Customer, error) {
	uow := s.newUnitOfWork()

	customer, err := uow.Customers().GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	customer.UpdateProfile(input.FirstName, input.LastName, input.Phone)
	if input.ShippingAddress != nil {
		customer.SetShippingAddress(*input.ShippingAddress)
	}

	if err := uow.Customers().Update(ctx, customer); err != nil {
		return nil, err
	}

	log.Info().Stringer("customer_id", customer.ID).Msg("service: customer updated")

	return customer, nil
}

func (s *customerService) GetCustomerByID(ctx context.Context, id uuid.UUID) (*domain.Customer, error) {
	return s.newUnitOfWork().Customers().GetByID(ctx, id)
}

func (s *customerService) GetCustomerByEmail(ctx context.Context, email string) (*domain.Customer, error) {
	return s.newUnitOfWork().Customers().GetByEmail(ctx, email)
}
