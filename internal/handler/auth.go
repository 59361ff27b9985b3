package handler

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/vasiliy-maslov/orders-service/internal/domain"
	"github.com/vasiliy-maslov/orders-service/internal/service"
)

// tokenIssuer signs an access token for a resolved customer.
type tokenIssuer interface {
	GenerateToken(customer *domain.Customer) (string, error)
}

type AuthHandler struct {
	customers service.CustomerService
	tokens    tokenIssuer
	validate  *validator.Validate
}

func NewAuthHandler(customers service.CustomerService, tokens tokenIssuer) *AuthHandler {
	return &AuthHandler{
		customers: customers,
		tokens:    tokens,
		validate:  validator.New(),
	}
}

func (h *AuthHandler) RegisterRoutes(router chi.Router) {
	router.Post("/auth/token", h.IssueToken)
}

type issueTokenRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type issueTokenResponse struct {
	Token string `json:"token"`
}

// IssueToken exchanges a known customer email for a JWT. Unknown emails
// answer 401, not 404.
func (h *AuthHandler) IssueToken(w http.ResponseWriter, r *http.Request) {
	var req issueTokenRequest
	if err := decodeAndValidate(r, h.validate, &req); err != nil {
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			respondWithValidationErrors(w, validationErrs)
			return
		}
		respondWithDomainError(w, err)
		return
	}

	customer, err := h.customers.GetCustomerByEmail(r.Context(), req.Email)
	if err != nil {
		if domain.CodeOf(err) == domain.CodeEntityNotFound {
			respondWithDomainError(w, &domain.Error{Code: domain.CodeUnauthorized, Message: "invalid credentials"})
			return
		}
		respondWithDomainError(w, err)
		return
	}

	token, err := h.tokens.GenerateToken(customer)
	if err != nil {
		respondWithDomainError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, issueTokenResponse{Token: token})
}
