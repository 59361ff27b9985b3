package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/gofrs/uuid"
	"github.com/vasiliy-maslov/orders-service/internal/domain"
	"github.com/vasiliy-maslov/orders-service/internal/handler/middleware"
	"github.com/vasiliy-maslov/orders-service/internal/service"
)

type OrderHandler struct {
	orders   service.OrderService
	validate *validator.Validate
}

func NewOrderHandler(orders service.OrderService) *OrderHandler {
	return &OrderHandler{
		orders:   orders,
		validate: validator.New(),
	}
}

// RegisterRoutes mounts order endpoints. All of them require an
// authenticated customer; the router applies the auth middleware.
func (h *OrderHandler) RegisterRoutes(router chi.Router) {
	router.Post("/orders", h.CreateOrder)
	router.Get("/orders", h.ListOrders)
	router.Get("/orders/{orderID}", h.GetOrderByID)
	router.Get("/orders/number/{orderNumber}", h.GetOrderByNumber)
	router.Post("/orders/{orderID}/cancel", h.CancelOrder)
	router.Patch("/orders/{orderID}/status", h.UpdateOrderStatus)
	router.Get("/customers/{customerID}/orders", h.GetOrdersByCustomer)
}

type addressRequest struct {
	Street  string `json:"street" validate:"required"`
	City    string `json:"city" validate:"required"`
	State   string `json:"state"`
	Country string `json:"country" validate:"required"`
	ZipCode string `json:"zip_code"`
}

type orderItemRequest struct {
	ProductID string `json:"product_id" validate:"required,uuid"`
	Quantity  int    `json:"quantity" validate:"required,gt=0"`
}

type createOrderRequest struct {
	Items           []orderItemRequest `json:"items" validate:"required,min=1,dive"`
	ShippingAddress addressRequest     `json:"shipping_address" validate:"required"`
	Notes           string             `json:"notes"`
}

func (h *OrderHandler) CreateOrder(w http.ResponseWriter, r *http.Request) {
	customerID, ok := middleware.CustomerIDFromContext(r.Context())
	if !ok {
		respondWithDomainError(w, &domain.Error{Code: domain.CodeUnauthorized, Message: "authentication required"})
		return
	}

	var req createOrderRequest
	if err := decodeAndValidate(r, h.validate, &req); err != nil {
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			respondWithValidationErrors(w, validationErrs)
			return
		}
		respondWithDomainError(w, err)
		return
	}

	address, err := domain.NewAddress(req.ShippingAddress.Street, req.ShippingAddress.City,
		req.ShippingAddress.State, req.ShippingAddress.Country, req.ShippingAddress.ZipCode)
	if err != nil {
		respondWithDomainError(w, err)
		return
	}

	items := make([]service.OrderItemInput, 0, len(req.Items))
	for _, item := range req.Items {
		productID, err := uuid.FromString(item.ProductID)
		if err != nil {
			respondWithDomainError(w, &domain.ValidationError{Fields: map[string]string{
				"product_id": "invalid product id format",
			}})
			return
		}
		items = append(items, service.OrderItemInput{ProductID: productID, Quantity: item.Quantity})
	}

	result, err := h.orders.CreateOrder(r.Context(), service.CreateOrderInput{
		CustomerID:      customerID,
		Items:           items,
		ShippingAddress: address,
		Notes:           req.Notes,
	})
	if err != nil {
		respondWithDomainError(w, err)
		return
	}

	respondWithJSON(w, http.StatusCreated, result)
}

func (h *OrderHandler) CancelOrder(w http.ResponseWriter, r *http.Request) {
	orderID, err := parseIDParam(r, "orderID")
	if err != nil {
		respondWithDomainError(w, err)
		return
	}

	result, err := h.orders.CancelOrder(r.Context(), orderID)
	if err != nil {
		respondWithDomainError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, result)
}

type updateOrderStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

func (h *OrderHandler) UpdateOrderStatus(w http.ResponseWriter, r *http.Request) {
	orderID, err := parseIDParam(r, "orderID")
	if err != nil {
		respondWithDomainError(w, err)
		return
	}

	var req updateOrderStatusRequest
	if err := decodeAndValidate(r, h.validate, &req); err != nil {
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			respondWithValidationErrors(w, validationErrs)
			return
		}
		respondWithDomainError(w, err)
		return
	}

	result, err := h.orders.UpdateOrderStatus(r.Context(), orderID, req.Status)
	if err != nil {
		respondWithDomainError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, result)
}

func (h *OrderHandler) GetOrderByID(w http.ResponseWriter, r *http.Request) {
	orderID, err := parseIDParam(r, "orderID")
	if err != nil {
		respondWithDomainError(w, err)
		return
	}

	order, err := h.orders.GetOrderByID(r.Context(), orderID)
	if err != nil {
		respondWithDomainError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, order)
}

func (h *OrderHandler) GetOrderByNumber(w http.ResponseWriter, r *http.Request) {
	orderNumber := chi.URLParam(r, "orderNumber")

	order, err := h.orders.GetOrderByNumber(r.Context(), orderNumber)
	if err != nil {
		respondWithDomainError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, order)
}

func (h *OrderHandler) GetOrdersByCustomer(w http.ResponseWriter, r *http.Request) {
	customerID, err := parseIDParam(r, "customerID")
	if err != nil {
		respondWithDomainError(w, err)
		return
	}

	orders, err := h.orders.GetOrdersByCustomer(r.Context(), customerID)
	if err != nil {
		respondWithDomainError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]any{"orders": orders})
}

type orderListResponse struct {
	Orders     []domain.Order `json:"orders"`
	TotalCount int            `json:"total_count"`
	PageNumber int            `json:"page_number"`
	PageSize   int            `json:"page_size"`
}

func (h *OrderHandler) ListOrders(w http.ResponseWriter, r *http.Request) {
	pageNumber, pageSize := parsePagination(r)

	orders, total, err := h.orders.ListOrders(r.Context(), pageNumber, pageSize)
	if err != nil {
		respondWithDomainError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, orderListResponse{
		Orders:     orders,
		TotalCount: total,
		PageNumber: pageNumber,
		PageSize:   pageSize,
	})
}

func parseIDParam(r *http.Request, name string) (uuid.UUID, error) {
	id, err := uuid.FromString(chi.URLParam(r, name))
	if err != nil {
		return uuid.Nil, &domain.ValidationError{Fields: map[string]string{
			name: "invalid UUID format",
		}}
	}
	return id, nil
}

func parsePagination(r *http.Request) (pageNumber, pageSize int) {
	pageNumber, pageSize = 1, 20

	if raw := r.URL.Query().Get("page"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
			pageNumber = parsed
		}
	}
	if raw := r.URL.Query().Get("page_size"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 && parsed <= 100 {
			pageSize = parsed
		}
	}

	return pageNumber, pageSize
}
