package domain

import (
	"time"

	"github.com/gofrs/uuid"
	"github.com/shopspring/decimal"
)

// Event is a domain event raised by an aggregate. Events are collected on the
// aggregate and drained by the caller after a successful commit; delivery is
// out of scope.
type Event interface {
	EventName() string
	OccurredAt() time.Time
}

type OrderCreatedEvent struct {
	OrderID    uuid.UUID
	CustomerID uuid.UUID
	Total      decimal.Decimal
	At         time.Time
}

func (e OrderCreatedEvent) EventName() string     { return "order.created" }
func (e OrderCreatedEvent) OccurredAt() time.Time { return e.At }

type OrderStatusChangedEvent struct {
	OrderID        uuid.UUID
	PreviousStatus OrderStatus
	NewStatus      OrderStatus
	At             time.Time
}

func (e OrderStatusChangedEvent) EventName() string     { return "order.status_changed" }
func (e OrderStatusChangedEvent) OccurredAt() time.Time { return e.At }
