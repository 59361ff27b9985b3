package domain

import (
	"regexp"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCustomer(t *testing.T) *Customer {
	t.Helper()

	customer, err := NewCustomer("jane.doe@example.com", "Jane", "Doe", "")
	require.NoError(t, err)

	return customer
}

func newTestOrder(t *testing.T) *Order {
	t.Helper()

	address, err := NewAddress("1 Main St", "Springfield", "IL", "USA", "62701")
	require.NoError(t, err)

	order, err := NewOrder(newTestCustomer(t), address, "")
	require.NoError(t, err)

	return order
}

func newPricedProduct(t *testing.T, price string, stock int) *Product {
	t.Helper()

	product, err := NewProduct("Widget", "WID-100", decimal.RequireFromString(price), stock, "")
	require.NoError(t, err)

	return product
}

func TestGenerateOrderNumber_Format(t *testing.T) {
	pattern := regexp.MustCompile(`^ORD-\d{14}-\d{4}$`)

	for i := 0; i < 10; i++ {
		number := GenerateOrderNumber()
		assert.Regexp(t, pattern, number)
	}
}

func TestOrder_AddItem_CalculatesTotals(t *testing.T) {
	order := newTestOrder(t)
	product := newPricedProduct(t, "25.00", 10)

	require.NoError(t, order.AddItem(product, 2))

	assert.True(t, order.Subtotal.Amount.Equal(decimal.RequireFromString("50.00")), "subtotal: %s", order.Subtotal)
	assert.True(t, order.Tax.Amount.Equal(decimal.RequireFromString("5.00")), "tax: %s", order.Tax)
	assert.True(t, order.Total.Amount.Equal(decimal.RequireFromString("55.00")), "total: %s", order.Total)
}

func TestOrder_AddItem_RoundsTax(t *testing.T) {
	order := newTestOrder(t)
	product := newPricedProduct(t, "0.33", 10)

	require.NoError(t, order.AddItem(product, 1))

	// 10% of 0.33 is 0.033, rounded to 0.03.
	assert.True(t, order.Tax.Amount.Equal(decimal.RequireFromString("0.03")), "tax: %s", order.Tax)
	assert.True(t, order.Total.Amount.Equal(decimal.RequireFromString("0.36")), "total: %s", order.Total)
}

func TestOrder_AddItem_MergesQuantities(t *testing.T) {
	order := newTestOrder(t)
	product := newPricedProduct(t, "10.00", 10)

	require.NoError(t, order.AddItem(product, 1))
	require.NoError(t, order.AddItem(product, 2))

	require.Len(t, order.Items, 1)
	assert.Equal(t, 3, order.Items[0].Quantity)
	assert.True(t, order.Subtotal.Amount.Equal(decimal.RequireFromString("30.00")))
}

func TestOrder_AddItem_SnapshotsProduct(t *testing.T) {
	order := newTestOrder(t)
	product := newPricedProduct(t, "10.00", 10)

	require.NoError(t, order.AddItem(product, 1))

	require.NoError(t, product.Update("Renamed", "", decimal.RequireFromString("99.99")))

	assert.Equal(t, "Widget", order.Items[0].ProductName)
	assert.True(t, order.Items[0].UnitPrice.Amount.Equal(decimal.RequireFromString("10.00")))
}

func TestOrder_AddItem_NonPending(t *testing.T) {
	order := newTestOrder(t)
	product := newPricedProduct(t, "10.00", 10)
	require.NoError(t, order.AddItem(product, 1))
	require.NoError(t, order.Confirm())

	err := order.AddItem(product, 1)
	require.Error(t, err)
	assert.Equal(t, CodeInvalidOrderState, CodeOf(err))
}

func TestOrder_UpdateItemQuantity_NotFound(t *testing.T) {
	order := newTestOrder(t)
	product := newPricedProduct(t, "10.00", 10)

	err := order.UpdateItemQuantity(product.ID, 2)
	require.Error(t, err)
	assert.Equal(t, CodeEntityNotFound, CodeOf(err))
}

func TestOrder_RemoveItem_AbsentIsNoop(t *testing.T) {
	order := newTestOrder(t)
	product := newPricedProduct(t, "10.00", 10)

	require.NoError(t, order.RemoveItem(product.ID))
	assert.Empty(t, order.Items)
}

func TestOrderStatus_Transitions(t *testing.T) {
	tests := []struct {
		from    OrderStatus
		to      OrderStatus
		allowed bool
	}{
		{StatusPending, StatusConfirmed, true},
		{StatusPending, StatusCancelled, true},
		{StatusPending, StatusShipped, false},
		{StatusConfirmed, StatusProcessing, true},
		{StatusConfirmed, StatusCancelled, true},
		{StatusConfirmed, StatusDelivered, false},
		{StatusProcessing, StatusShipped, true},
		{StatusProcessing, StatusCancelled, false},
		{StatusShipped, StatusDelivered, true},
		{StatusShipped, StatusCancelled, false},
		{StatusDelivered, StatusConfirmed, false},
		{StatusCancelled, StatusPending, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.from)+"->"+string(tt.to), func(t *testing.T) {
			assert.Equal(t, tt.allowed, tt.from.CanTransitionTo(tt.to))
		})
	}
}

func TestParseOrderStatus(t *testing.T) {
	status, err := ParseOrderStatus("shipped")
	require.NoError(t, err)
	assert.Equal(t, StatusShipped, status)

	status, err = ParseOrderStatus("Delivered")
	require.NoError(t, err)
	assert.Equal(t, StatusDelivered, status)

	_, err = ParseOrderStatus("teleported")
	require.Error(t, err)
}

func TestOrder_Confirm_EmitsCreatedEvent(t *testing.T) {
	order := newTestOrder(t)
	product := newPricedProduct(t, "10.00", 10)
	require.NoError(t, order.AddItem(product, 1))

	require.NoError(t, order.Confirm())

	events := order.Events()
	require.Len(t, events, 2)

	changed, ok := events[0].(OrderStatusChangedEvent)
	require.True(t, ok)
	assert.Equal(t, StatusPending, changed.PreviousStatus)
	assert.Equal(t, StatusConfirmed, changed.NewStatus)

	assert.Equal(t, "order.created", events[1].EventName())

	order.ClearEvents()
	assert.Empty(t, order.Events())
}

func TestOrder_Cancel_EmitsStatusChangedEvent(t *testing.T) {
	order := newTestOrder(t)
	require.NoError(t, order.Confirm())
	order.ClearEvents()

	require.NoError(t, order.Cancel())

	events := order.Events()
	require.Len(t, events, 1)

	changed, ok := events[0].(OrderStatusChangedEvent)
	require.True(t, ok)
	assert.Equal(t, StatusConfirmed, changed.PreviousStatus)
	assert.Equal(t, StatusCancelled, changed.NewStatus)
}

func TestOrder_Cancel_TerminalStates(t *testing.T) {
	order := newTestOrder(t)
	require.NoError(t, order.Confirm())
	require.NoError(t, order.Process())
	require.NoError(t, order.Ship())

	err := order.Cancel()
	require.Error(t, err)
	assert.Equal(t, CodeInvalidOrderState, CodeOf(err))
	assert.Equal(t, StatusShipped, order.Status)
}
