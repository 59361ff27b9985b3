package domain

import (
	"fmt"
	"strings"
)

type OrderStatus string

const (
	StatusPending    OrderStatus = "PENDING"
	StatusConfirmed  OrderStatus = "CONFIRMED"
	StatusProcessing OrderStatus = "PROCESSING"
	StatusShipped    OrderStatus = "SHIPPED"
	StatusDelivered  OrderStatus = "DELIVERED"
	StatusCancelled  OrderStatus = "CANCELLED"
)

func (s OrderStatus) String() string {
	return string(s)
}

// allowedTransitions is the single source of truth for the order lifecycle.
// DELIVERED and CANCELLED are terminal.
var allowedTransitions = map[OrderStatus]map[OrderStatus]bool{
	StatusPending: {
		StatusConfirmed: true,
		StatusCancelled: true,
	},
	StatusConfirmed: {
		StatusProcessing: true,
		StatusCancelled:  true,
	},
	StatusProcessing: {
		StatusShipped: true,
	},
	StatusShipped: {
		StatusDelivered: true,
	},
	StatusDelivered: {},
	StatusCancelled: {},
}

func (s OrderStatus) CanTransitionTo(target OrderStatus) bool {
	return allowedTransitions[s][target]
}

func ParseOrderStatus(raw string) (OrderStatus, error) {
	for status := range allowedTransitions {
		if strings.EqualFold(string(status), raw) {
			return status, nil
		}
	}

	return "", &ValidationError{Fields: map[string]string{
		"status": fmt.Sprintf("invalid order status: %s", raw),
	}}
}
