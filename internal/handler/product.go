package handler

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
	"github.com/vasiliy-maslov/orders-service/internal/service"
)

type ProductHandler struct {
	products service.ProductService
	validate *validator.Validate
}

func NewProductHandler(products service.ProductService) *ProductHandler {
	return &ProductHandler{
		products: products,
		validate: validator.New(),
	}
}

// RegisterPublicRoutes mounts the read-only catalog endpoints.
func (h *ProductHandler) RegisterPublicRoutes(router chi.Router) {
	router.Get("/products", h.ListProducts)
	router.Get("/products/{productID}", h.GetProductByID)
	router.Get("/products/sku/{sku}", h.GetProductBySKU)
}

// RegisterRoutes mounts the catalog mutations, which require authentication.
func (h *ProductHandler) RegisterRoutes(router chi.Router) {
	router.Post("/products", h.CreateProduct)
	router.Put("/products/{productID}", h.UpdateProduct)
}

type createProductRequest struct {
	Name          string          `json:"name" validate:"required,min=2,max=255"`
	SKU           string          `json:"sku" validate:"required,min=3,max=64"`
	Price         decimal.Decimal `json:"price" validate:"required"`
	StockQuantity int             `json:"stock_quantity" validate:"gte=0"`
	Description   string          `json:"description"`
}

func (h *ProductHandler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	var req createProductRequest
	if err := decodeAndValidate(r, h.validate, &req); err != nil {
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			respondWithValidationErrors(w, validationErrs)
			return
		}
		respondWithDomainError(w, err)
		return
	}

	product, err := h.products.CreateProduct(r.Context(), service.CreateProductInput{
		Name:          req.Name,
		SKU:           req.SKU,
		Price:         req.Price,
		StockQuantity: req.StockQuantity,
		Description:   req.Description,
	})
	if err != nil {
		respondWithDomainError(w, err)
		return
	}

	respondWithJSON(w, http.StatusCreated, product)
}

type updateProductRequest struct {
	Name          string          `json:"name" validate:"required,min=2,max=255"`
	Description   string          `json:"description"`
	Price         decimal.Decimal `json:"price" validate:"required"`
	StockQuantity *int            `json:"stock_quantity" validate:"omitempty,gte=0"`
	IsActive      *bool           `json:"is_active"`
}

func (h *ProductHandler) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	productID, err := parseIDParam(r, "productID")
	if err != nil {
		respondWithDomainError(w, err)
		return
	}

	var req updateProductRequest
	if err := decodeAndValidate(r, h.validate, &req); err != nil {
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			respondWithValidationErrors(w, validationErrs)
			return
		}
		respondWithDomainError(w, err)
		return
	}

	product, err := h.products.UpdateProduct(r.Context(), productID, service.UpdateProductInput{
		Name:          req.Name,
		Description:   req.Description,
		Price:         req.Price,
		StockQuantity: req.StockQuantity,
		IsActive:      req.IsActive,
	})
	if err != nil {
		respondWithDomainError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, product)
}

func (h *ProductHandler) GetProductByID(w http.ResponseWriter, r *http.Request) {
	productID, err := parseIDParam(r, "productID")
	if err != nil {
		respondWithDomainError(w, err)
		return
	}

	product, err := h.products.GetProductByID(r.Context(), productID)
	if err != nil {
		respondWithDomainError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, product)
}

func (h *ProductHandler) GetProductBySKU(w http.ResponseWriter, r *http.Request) {
	product, err := h.products.GetProductBySKU(r.Context(), chi.URLParam(r, "sku"))
	if err != nil {
		respondWithDomainError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, product)
}

func (h *ProductHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	pageNumber, pageSize := parsePagination(r)

	var isActive *bool
	switch r.URL.Query().Get("is_active") {
	case "true":
		v := true
		isActive = &v
	case "false":
		v := false
		isActive = &v
	}

	page, err := h.products.ListProducts(r.Context(), pageNumber, pageSize, isActive)
	if err != nil {
		respondWithDomainError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, page)
}
