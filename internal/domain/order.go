package domain

import (
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/gofrs/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/text/currency"
)

var taxRate = decimal.NewFromFloat(0.10)

type OrderItem struct {
	ID          uuid.UUID `json:"id"`
	OrderID     uuid.UUID `json:"order_id"`
	ProductID   uuid.UUID `json:"product_id"`
	ProductName string    `json:"product_name"`
	ProductSKU  string    `json:"product_sku"`
	UnitPrice   Money     `json:"unit_price"`
	Quantity    int       `json:"quantity"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// TotalPrice is derived, never stored.
func (i OrderItem) TotalPrice() Money {
	total, _ := i.UnitPrice.Multiply(i.Quantity)
	return total
}

// Order is the aggregate root owning its items. Items snapshot product
// name/SKU/price at the time of addition, so later product edits do not
// change a placed order.
type Order struct {
	ID              uuid.UUID   `json:"id"`
	OrderNumber     string      `json:"order_number"`
	CustomerID      uuid.UUID   `json:"customer_id"`
	Status          OrderStatus `json:"status"`
	ShippingAddress Address     `json:"shipping_address"`
	Items           []OrderItem `json:"items"`
	Subtotal        Money       `json:"subtotal"`
	Tax             Money       `json:"tax"`
	Total           Money       `json:"total"`
	Notes           string      `json:"notes,omitempty"`
	CreatedAt       time.Time   `json:"created_at"`
	UpdatedAt       time.Time   `json:"updated_at"`

	events []Event
}

func NewOrder(customer *Customer, shippingAddress Address, notes string) (*Order, error) {
	id, err := uuid.NewV4()
	if err != nil {
		return nil, fmt.Errorf("failed to generate order ID: %w", err)
	}

	now := time.Now().UTC()

	return &Order{
		ID:              id,
		OrderNumber:     GenerateOrderNumber(),
		CustomerID:      customer.ID,
		Status:          StatusPending,
		ShippingAddress: shippingAddress,
		Subtotal:        ZeroMoney(currency.USD),
		Tax:             ZeroMoney(currency.USD),
		Total:           ZeroMoney(currency.USD),
		Notes:           strings.TrimSpace(notes),
		CreatedAt:       now,
		UpdatedAt:       now,
	}, nil
}

// GenerateOrderNumber is best-effort unique: timestamp plus 4 random digits.
// The orders table carries a unique constraint and the caller retries on
// conflict.
func GenerateOrderNumber() string {
	timestamp := time.Now().UTC().Format("20060102150405")
	return fmt.Sprintf("ORD-%s-%04d", timestamp, rand.Intn(9000)+1000)
}

// RegenerateNumber supports the retry-on-conflict path for order numbers.
func (o *Order) RegenerateNumber() {
	o.OrderNumber = GenerateOrderNumber()
}

// AddItem merges quantities when the product is already present.
func (o *Order) AddItem(product *Product, quantity int) error {
	if o.Status != StatusPending {
		return NewInvalidOrderState("cannot add items to a non-pending order")
	}
	if quantity <= 0 {
		return &ValidationError{Fields: map[string]string{
			"quantity": "quantity must be greater than zero",
		}}
	}

	for i := range o.Items {
		if o.Items[i].ProductID == product.ID {
			o.Items[i].Quantity += quantity
			o.Items[i].UpdatedAt = time.Now().UTC()
			return o.recalculateTotals()
		}
	}

	itemID, err := uuid.NewV4()
	if err != nil {
		return fmt.Errorf("failed to generate order item ID: %w", err)
	}

	now := time.Now().UTC()
	o.Items = append(o.Items, OrderItem{
		ID:          itemID,
		OrderID:     o.ID,
		ProductID:   product.ID,
		ProductName: product.Name,
		ProductSKU:  product.SKU,
		UnitPrice:   product.Price,
		Quantity:    quantity,
		CreatedAt:   now,
		UpdatedAt:   now,
	})

	return o.recalculateTotals()
}

// RemoveItem is a no-op when the product is not present.
func (o *Order) RemoveItem(productID uuid.UUID) error {
	if o.Status != StatusPending {
		return NewInvalidOrderState("cannot remove items from a non-pending order")
	}

	for i := range o.Items {
		if o.Items[i].ProductID == productID {
			o.Items = append(o.Items[:i], o.Items[i+1:]...)
			return o.recalculateTotals()
		}
	}

	return nil
}

func (o *Order) UpdateItemQuantity(productID uuid.UUID, quantity int) error {
	if o.Status != StatusPending {
		return NewInvalidOrderState("cannot update items in a non-pending order")
	}
	if quantity <= 0 {
		return &ValidationError{Fields: map[string]string{
			"quantity": "quantity must be greater than zero",
		}}
	}

	for i := range o.Items {
		if o.Items[i].ProductID == productID {
			o.Items[i].Quantity = quantity
			o.Items[i].UpdatedAt = time.Now().UTC()
			return o.recalculateTotals()
		}
	}

	return NewEntityNotFound("OrderItem", productID)
}

func (o *Order) Confirm() error {
	if err := o.updateStatus(StatusConfirmed); err != nil {
		return err
	}

	o.events = append(o.events, OrderCreatedEvent{
		OrderID:    o.ID,
		CustomerID: o.CustomerID,
		Total:      o.Total.Amount,
		At:         time.Now().UTC(),
	})

	return nil
}

func (o *Order) Process() error {
	return o.updateStatus(StatusProcessing)
}

func (o *Order) Ship() error {
	return o.updateStatus(StatusShipped)
}

func (o *Order) Deliver() error {
	return o.updateStatus(StatusDelivered)
}

func (o *Order) Cancel() error {
	previous := o.Status
	if err := o.updateStatus(StatusCancelled); err != nil {
		return err
	}

	o.events = append(o.events, OrderStatusChangedEvent{
		OrderID:        o.ID,
		PreviousStatus: previous,
		NewStatus:      StatusCancelled,
		At:             time.Now().UTC(),
	})

	return nil
}

// Events returns events recorded since the last ClearEvents call.
func (o *Order) Events() []Event {
	return o.events
}

func (o *Order) ClearEvents() {
	o.events = nil
}

func (o *Order) updateStatus(newStatus OrderStatus) error {
	if !o.Status.CanTransitionTo(newStatus) {
		return NewInvalidOrderState(
			fmt.Sprintf("cannot transition order from '%s' to '%s'", o.Status, newStatus))
	}

	previous := o.Status
	o.Status = newStatus
	o.UpdatedAt = time.Now().UTC()

	// The transition into CANCELLED records its event in Cancel itself.
	if newStatus != StatusCancelled {
		o.events = append(o.events, OrderStatusChangedEvent{
			OrderID:        o.ID,
			PreviousStatus: previous,
			NewStatus:      newStatus,
			At:             time.Now().UTC(),
		})
	}

	return nil
}

func (o *Order) recalculateTotals() error {
	subtotal := ZeroMoney(currency.USD)
	for _, item := range o.Items {
		var err error
		subtotal, err = subtotal.Add(item.TotalPrice())
		if err != nil {
			return err
		}
	}

	tax, err := NewMoney(subtotal.Amount.Mul(taxRate), subtotal.Currency)
	if err != nil {
		return err
	}

	total, err := subtotal.Add(tax)
	if err != nil {
		return err
	}

	o.Subtotal = subtotal
	o.Tax = tax
	o.Total = total
	o.UpdatedAt = time.Now().UTC()

	return nil
}
