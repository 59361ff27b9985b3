package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gofrs/uuid"
	"github.com/rs/zerolog/log"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
	"github.com/vasiliy-maslov/orders-service/internal/cache"
	"github.com/vasiliy-maslov/orders-service/internal/domain"
	"github.com/vasiliy-maslov/orders-service/internal/port"
	"github.com/vasiliy-maslov/orders-service/internal/repository"
)

const (
	createOrderLockExpiry = 30 * time.Second
	orderCacheTTL         = 5 * time.Minute

	// Generated order numbers are best-effort unique; the database constraint
	// is the real guarantee and collisions are retried with a fresh number.
	maxOrderNumberAttempts = 3
)

type OrderItemInput struct {
	ProductID uuid.UUID
	Quantity  int
}

type CreateOrderInput struct {
	CustomerID      uuid.UUID
	Items           []OrderItemInput
	ShippingAddress domain.Address
	Notes           string
}

type CreateOrderResult struct {
	OrderID     uuid.UUID       `json:"order_id"`
	OrderNumber string          `json:"order_number"`
	Subtotal    decimal.Decimal `json:"subtotal"`
	Tax         decimal.Decimal `json:"tax"`
	Total       decimal.Decimal `json:"total"`
}

type CancelOrderResult struct {
	OrderID     uuid.UUID `json:"order_id"`
	OrderNumber string    `json:"order_number"`
}

type UpdateOrderStatusResult struct {
	OrderID        uuid.UUID `json:"order_id"`
	PreviousStatus string    `json:"previous_status"`
	NewStatus      string    `json:"new_status"`
}

type OrderService interface {
	CreateOrder(ctx context.Context, input CreateOrderInput) (*CreateOrderResult, error)
	CancelOrder(ctx context.Context, orderID uuid.UUID) (*CancelOrderResult, error)
	UpdateOrderStatus(ctx context.Context, orderID uuid.UUID, status string) (*UpdateOrderStatusResult, error)
	GetOrderByID(ctx context.Context, id uuid.UUID) (*domain.Order, error)
	GetOrderByNumber(ctx context.Context, orderNumber string) (*domain.Order, error)
	GetOrdersByCustomer(ctx context.Context, customerID uuid.UUID) ([]domain.Order, error)
	ListOrders(ctx context.Context, pageNumber, pageSize int) ([]domain.Order, int, error)
}

type orderService struct {
	newUnitOfWork func() port.UnitOfWork
	locker        port.Locker
	cache         port.Cache
}

func NewOrderService(newUnitOfWork func() port.UnitOfWork, locker port.Locker, readCache port.Cache) OrderService {
	return &orderService{
		newUnitOfWork: newUnitOfWork,
		locker:        locker,
		cache:         readCache,
	}
}

// CreateOrder reserves stock for every item and persists the confirmed order
// atomically. The per-customer lock serializes concurrent order creation for
// one customer; the no-oversell guarantee itself comes from the shared
// transaction around the stock updates.
func (s *orderService) CreateOrder(ctx context.Context, input CreateOrderInput) (*CreateOrderResult, error) {
	if err := validateCreateOrderInput(input); err != nil {
		return nil, err
	}

	uow := s.newUnitOfWork()

	customer, err := uow.Customers().GetByID(ctx, input.CustomerID)
	if err != nil {
		return nil, err
	}

	productIDs := lo.Map(input.Items, func(item OrderItemInput, _ int) uuid.UUID { return item.ProductID })
	products, err := uow.Products().GetByIDs(ctx, productIDs)
	if err != nil {
		return nil, err
	}
	if err := ensureAllProductsFound(productIDs, products); err != nil {
		return nil, err
	}

	lockResource := fmt.Sprintf("order:create:%s", input.CustomerID)
	orderLock, err := s.locker.AcquireLock(ctx, lockResource, createOrderLockExpiry)
	if err != nil {
		return nil, fmt.Errorf("service: failed to acquire creation lock: %w", err)
	}
	if orderLock == nil {
		return nil, domain.ErrLockUnavailable
	}
	defer func() {
		if releaseErr := orderLock.Release(ctx); releaseErr != nil {
			log.Warn().Err(releaseErr).Str("resource", lockResource).Msg("service: failed to release creation lock")
		}
	}()

	var result *CreateOrderResult
	for attempt := 1; attempt <= maxOrderNumberAttempts; attempt++ {
		result, err = s.createOrderTx(ctx, uow, customer, input)
		if errors.Is(err, repository.ErrOrderNumberConflict) {
			log.Warn().Int("attempt", attempt).Msg("service: order number collision, retrying with a fresh number")
			continue
		}
		break
	}
	if err != nil {
		return nil, err
	}

	log.Info().
		Stringer("order_id", result.OrderID).
		Str("order_number", result.OrderNumber).
		Stringer("customer_id", customer.ID).
		Msg("service: order created successfully")

	return result, nil
}

// createOrderTx runs one creation attempt inside its own transaction.
// Products are re-read inside the transaction so stock checks observe
// committed state under the store's isolation level.
func (s *orderService) createOrderTx(ctx context.Context, uow port.UnitOfWork, customer *domain.Customer, input CreateOrderInput) (_ *CreateOrderResult, err error) {
	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}
	defer func() {
		if err != nil {
			if rbErr := uow.Rollback(ctx); rbErr != nil {
				log.Error().Err(rbErr).Msg("service: failed to rollback order creation")
			}
		}
	}()

	productIDs := lo.Map(input.Items, func(item OrderItemInput, _ int) uuid.UUID { return item.ProductID })
	products, err := uow.Products().GetByIDs(ctx, productIDs)
	if err != nil {
		return nil, err
	}
	if err = ensureAllProductsFound(productIDs, products); err != nil {
		return nil, err
	}

	byID := make(map[uuid.UUID]*domain.Product, len(products))
	for i := range products {
		byID[products[i].ID] = &products[i]
	}

	order, err := domain.NewOrder(customer, input.ShippingAddress, input.Notes)
	if err != nil {
		return nil, err
	}

	for _, item := range input.Items {
		product := byID[item.ProductID]

		if !product.IsActive {
			return nil, &domain.Error{
				Code:    domain.CodeValidation,
				Message: fmt.Sprintf("product '%s' is not available", product.Name),
			}
		}

		if err = product.ReserveStock(item.Quantity); err != nil {
			return nil, err
		}
		if err = order.AddItem(product, item.Quantity); err != nil {
			return nil, err
		}
	}

	if err = order.Confirm(); err != nil {
		return nil, err
	}

	if err = uow.Orders().Add(ctx, order); err != nil {
		return nil, err
	}

	for i := range products {
		if err = uow.Products().Update(ctx, &products[i]); err != nil {
			return nil, err
		}
	}

	if err = uow.Commit(ctx); err != nil {
		return nil, err
	}

	s.publishEvents(order)

	return &CreateOrderResult{
		OrderID:     order.ID,
		OrderNumber: order.OrderNumber,
		Subtotal:    order.Subtotal.Amount,
		Tax:         order.Tax.Amount,
		Total:       order.Total.Amount,
	}, nil
}

// CancelOrder releases every reserved item back to stock and cancels the
// order inside one transaction. No lock is taken: cancellation races are
// resolved by the state machine plus the transaction.
func (s *orderService) CancelOrder(ctx context.Context, orderID uuid.UUID) (_ *CancelOrderResult, err error) {
	uow := s.newUnitOfWork()

	order, err := uow.Orders().GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}
	defer func() {
		if err != nil {
			if rbErr := uow.Rollback(ctx); rbErr != nil {
				log.Error().Err(rbErr).Stringer("order_id", orderID).Msg("service: failed to rollback order cancellation")
			}
		}
	}()

	if err = order.Cancel(); err != nil {
		return nil, err
	}

	productIDs := lo.Map(order.Items, func(item domain.OrderItem, _ int) uuid.UUID { return item.ProductID })
	products, err := uow.Products().GetByIDs(ctx, productIDs)
	if err != nil {
		return nil, err
	}

	byID := make(map[uuid.UUID]*domain.Product, len(products))
	for i := range products {
		byID[products[i].ID] = &products[i]
	}

	for _, item := range order.Items {
		product, ok := byID[item.ProductID]
		if !ok {
			// Product deleted since the order was placed; nothing to release.
			continue
		}

		product.ReleaseStock(item.Quantity)
		if err = uow.Products().Update(ctx, product); err != nil {
			return nil, err
		}
	}

	if err = uow.Orders().Update(ctx, order); err != nil {
		return nil, err
	}

	if err = uow.Commit(ctx); err != nil {
		return nil, err
	}

	s.publishEvents(order)
	_ = s.cache.Remove(ctx, cache.OrderKey(orderID))

	log.Info().Str("order_number", order.OrderNumber).Msg("service: order cancelled")

	return &CancelOrderResult{OrderID: order.ID, OrderNumber: order.OrderNumber}, nil
}

func (s *orderService) UpdateOrderStatus(ctx context.Context, orderID uuid.UUID, status string) (*UpdateOrderStatusResult, error) {
	newStatus, err := domain.ParseOrderStatus(status)
	if err != nil {
		return nil, err
	}

	uow := s.newUnitOfWork()

	order, err := uow.Orders().GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	previous := order.Status

	switch newStatus {
	case domain.StatusConfirmed:
		err = order.Confirm()
	case domain.StatusProcessing:
		err = order.Process()
	case domain.StatusShipped:
		err = order.Ship()
	case domain.StatusDelivered:
		err = order.Deliver()
	case domain.StatusCancelled:
		return nil, &domain.ValidationError{Fields: map[string]string{
			"status": "use the cancel operation to cancel an order",
		}}
	default:
		return nil, &domain.ValidationError{Fields: map[string]string{
			"status": fmt.Sprintf("cannot set status to %s", newStatus),
		}}
	}
	if err != nil {
		return nil, err
	}

	if err := uow.Orders().Update(ctx, order); err != nil {
		return nil, err
	}

	s.publishEvents(order)
	_ = s.cache.Remove(ctx, cache.OrderKey(orderID))

	log.Info().
		Stringer("order_id", orderID).
		Stringer("previous_status", previous).
		Stringer("new_status", order.Status).
		Msg("service: order status updated")

	return &UpdateOrderStatusResult{
		OrderID:        order.ID,
		PreviousStatus: previous.String(),
		NewStatus:      order.Status.String(),
	}, nil
}

func (s *orderService) GetOrderByID(ctx context.Context, id uuid.UUID) (*domain.Order, error) {
	key := cache.OrderKey(id)

	var cached domain.Order
	if hit, _ := s.cache.Get(ctx, key, &cached); hit {
		return &cached, nil
	}

	order, err := s.newUnitOfWork().Orders().GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	_ = s.cache.Set(ctx, key, order, orderCacheTTL)
	return order, nil
}

func (s *orderService) GetOrderByNumber(ctx context.Context, orderNumber string) (*domain.Order, error) {
	return s.newUnitOfWork().Orders().GetByOrderNumber(ctx, orderNumber)
}

func (s *orderService) GetOrdersByCustomer(ctx context.Context, customerID uuid.UUID) ([]domain.Order, error) {
	return s.newUnitOfWork().Orders().GetByCustomerID(ctx, customerID)
}

func (s *orderService) ListOrders(ctx context.Context, pageNumber, pageSize int) ([]domain.Order, int, error) {
	uow := s.newUnitOfWork()

	orders, err := uow.Orders().GetAll(ctx, pageNumber, pageSize)
	if err != nil {
		return nil, 0, err
	}

	total, err := uow.Orders().GetTotalCount(ctx)
	if err != nil {
		return nil, 0, err
	}

	return orders, total, nil
}

// publishEvents drains the aggregate's recorded events. Delivery to a broker
// is out of scope; events are observable through the log.
func (s *orderService) publishEvents(order *domain.Order) {
	for _, event := range order.Events() {
		log.Info().
			Str("event", event.EventName()).
			Stringer("order_id", order.ID).
			Time("occurred_at", event.OccurredAt()).
			Msg("service: domain event")
	}
	order.ClearEvents()
}

func validateCreateOrderInput(input CreateOrderInput) error {
	fields := map[string]string{}

	if input.CustomerID == uuid.Nil {
		fields["customer_id"] = "customer id is required"
	}
	if len(input.Items) == 0 {
		fields["items"] = "order must contain at least one item"
	}
	for i, item := range input.Items {
		if item.ProductID == uuid.Nil {
			fields[fmt.Sprintf("items[%d].product_id", i)] = "product id is required"
		}
		if item.Quantity <= 0 {
			fields[fmt.Sprintf("items[%d].quantity", i)] = "quantity must be greater than zero"
		}
	}

	if len(fields) > 0 {
		return &domain.ValidationError{Fields: fields}
	}
	return nil
}

func ensureAllProductsFound(requested []uuid.UUID, found []domain.Product) error {
	if len(found) == len(lo.Uniq(requested)) {
		return nil
	}

	foundIDs := lo.Map(found, func(p domain.Product, _ int) uuid.UUID { return p.ID })
	missing := lo.Without(lo.Uniq(requested), foundIDs...)

	return domain.NewEntityNotFound("Product", lo.Map(missing, func(id uuid.UUID, _ int) string { return id.String() }))
}
