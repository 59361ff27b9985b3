package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/gofrs/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/text/currency"
)

type Product struct {
	ID            uuid.UUID `json:"id"`
	Name          string    `json:"name"`
	Description   string    `json:"description,omitempty"`
	SKU           string    `json:"sku"`
	Price         Money     `json:"price"`
	StockQuantity int       `json:"stock_quantity"`
	IsActive      bool      `json:"is_active"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// NewProduct uppercases the SKU into its canonical form; uniqueness is
// enforced by the repository.
func NewProduct(name, sku string, price decimal.Decimal, stockQuantity int, description string) (*Product, error) {
	fields := map[string]string{}
	if strings.TrimSpace(name) == "" {
		fields["name"] = "name cannot be empty"
	}
	if strings.TrimSpace(sku) == "" {
		fields["sku"] = "sku cannot be empty"
	}
	if stockQuantity < 0 {
		fields["stock_quantity"] = "stock quantity cannot be negative"
	}
	if len(fields) > 0 {
		return nil, &ValidationError{Fields: fields}
	}

	money, err := NewMoney(price, currency.USD)
	if err != nil {
		return nil, err
	}

	id, err := uuid.NewV4()
	if err != nil {
		return nil, fmt.Errorf("failed to generate product ID: %w", err)
	}

	now := time.Now().UTC()

	return &Product{
		ID:            id,
		Name:          strings.TrimSpace(name),
		Description:   strings.TrimSpace(description),
		SKU:           strings.ToUpper(strings.TrimSpace(sku)),
		Price:         money,
		StockQuantity: stockQuantity,
		IsActive:      true,
		CreatedAt:     now,
		UpdatedAt:     now,
	}, nil
}

func (p *Product) Update(name, description string, price decimal.Decimal) error {
	money, err := NewMoney(price, p.Price.Currency)
	if err != nil {
		return err
	}

	if strings.TrimSpace(name) != "" {
		p.Name = strings.TrimSpace(name)
	}
	p.Description = strings.TrimSpace(description)
	p.Price = money
	p.UpdatedAt = time.Now().UTC()

	return nil
}

func (p *Product) UpdateStock(quantity int) error {
	if quantity < 0 {
		return &ValidationError{Fields: map[string]string{
			"stock_quantity": "stock quantity cannot be negative",
		}}
	}

	p.StockQuantity = quantity
	p.UpdatedAt = time.Now().UTC()

	return nil
}

// ReserveStock decrements stock, or fails leaving it unchanged. It does not
// check the active flag; callers must reject inactive products before
// reserving.
func (p *Product) ReserveStock(quantity int) error {
	if quantity > p.StockQuantity {
		return &InsufficientStockError{
			ProductName: p.Name,
			Requested:   quantity,
			Available:   p.StockQuantity,
		}
	}

	p.StockQuantity -= quantity
	p.UpdatedAt = time.Now().UTC()

	return nil
}

// ReleaseStock increments stock unconditionally. The engine does not track
// reservation provenance, so callers must only release what they reserved.
func (p *Product) ReleaseStock(quantity int) {
	p.StockQuantity += quantity
	p.UpdatedAt = time.Now().UTC()
}

func (p *Product) Activate() {
	p.IsActive = true
	p.UpdatedAt = time.Now().UTC()
}

// Deactivate blocks new reservations but does not alter stock.
func (p *Product) Deactivate() {
	p.IsActive = false
	p.UpdatedAt = time.Now().UTC()
}

func (p *Product) HasSufficientStock(quantity int) bool {
	return p.StockQuantity >= quantity
}
