package cache

import (
	"fmt"

	"github.com/gofrs/uuid"
)

const (
	ProductsPrefix    = "products:"
	ProductsAllPrefix = "products:all:"
	OrdersPrefix      = "orders:"
	IdempotencyPrefix = "idempotency:"
)

func ProductKey(id uuid.UUID) string {
	return ProductsPrefix + id.String()
}

func ProductsAllKey(pageNumber, pageSize int, isActive *bool) string {
	active := "any"
	if isActive != nil {
		active = fmt.Sprintf("%t", *isActive)
	}
	return fmt.Sprintf("%s%d:%d:%s", ProductsAllPrefix, pageNumber, pageSize, active)
}

func OrderKey(id uuid.UUID) string {
	return OrdersPrefix + id.String()
}

func IdempotencyKey(token string) string {
	return IdempotencyPrefix + token
}
