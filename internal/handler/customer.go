package handler

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/vasiliy-maslov/orders-service/internal/domain"
	"github.com/vasiliy-maslov/orders-service/internal/service"
)

type CustomerHandler struct {
	customers service.CustomerService
	validate  *validator.Validate
}

func NewCustomerHandler(customers service.CustomerService) *CustomerHandler {
	return &CustomerHandler{
		customers: customers,
		validate:  validator.New(),
	}
}

// RegisterPublicRoutes mounts registration, which issues the access token.
func (h *CustomerHandler) RegisterPublicRoutes(router chi.Router) {
	router.Post("/customers", h.CreateCustomer)
}

func (h *CustomerHandler) RegisterRoutes(router chi.Router) {
	router.Get("/customers/{customerID}", h.GetCustomerByID)
	router.Put("/customers/{customerID}", h.UpdateCustomer)
}

type createCustomerRequest struct {
	Email     string `json:"email" validate:"required,email"`
	FirstName string `json:"first_name" validate:"required,min=1,max=100"`
	LastName  string `json:"last_name" validate:"required,min=1,max=100"`
	Phone     string `json:"phone" validate:"omitempty,e164"`
}

func (h *CustomerHandler) CreateCustomer(w http.ResponseWriter, r *http.Request) {
	var req createCustomerRequest
	if err := decodeAndValidate(r, h.validate, &req); err != nil {
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			respondWithValidationErrors(w, validationErrs)
			return
		}
		respondWithDomainError(w, err)
		return
	}

	result, err := h.customers.CreateCustomer(r.Context(), service.CreateCustomerInput{
		Email:     req.Email,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Phone:     req.Phone,
	})
	if err != nil {
		respondWithDomainError(w, err)
		return
	}

	respondWithJSON(w, http.StatusCreated, result)
}

type updateCustomerRequest struct {
	FirstName       string          `json:"first_name"`
	LastName        string          `json:"last_name"`
	Phone           string          `json:"phone" validate:"omitempty,e164"`
	ShippingAddress *addressRequest `json:"shipping_address"`
}

func (h *CustomerHandler) UpdateCustomer(w http.ResponseWriter, r *http.Request) {
	customerID, err := parseIDParam(r, "customerID")
	if err != nil {
		respondWithDomainError(w, err)
		return
	}

	var req updateCustomerRequest
	if err := decodeAndValidate(r, h.validate, &req); err != nil {
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			respondWithValidationErrors(w, validationErrs)
			return
		}
		respondWithDomainError(w, err)
		return
	}

	input := service.UpdateCustomerInput{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Phone:     req.Phone,
	}
	if req.ShippingAddress != nil {
		address, err := domain.NewAddress(req.ShippingAddress.Street, req.ShippingAddress.City,
			req.ShippingAddress.State, req.ShippingAddress.Country, req.ShippingAddress.ZipCode)
		if err != nil {
			respondWithDomainError(w, err)
			return
		}
		input.ShippingAddress = &address
	}

	customer, err := h.customers.UpdateCustomer(r.Context(), customerID, input)
	if err != nil {
		respondWithDomainError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, customer)
}

func (h *CustomerHandler) GetCustomerByID(w http.ResponseWriter, r *http.Request) {
	customerID, err := parseIDParam(r, "customerID")
	if err != nil {
		respondWithDomainError(w, err)
		return
	}

	customer, err := h.customers.GetCustomerByID(r.Context(), customerID)
	if err != nil {
		respondWithDomainError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, customer)
}
