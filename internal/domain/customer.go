package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/gofrs/uuid"
)

type Customer struct {
	ID              uuid.UUID `json:"id"`
	Email           string    `json:"email"`
	FirstName       string    `json:"first_name"`
	LastName        string    `json:"last_name"`
	Phone           string    `json:"phone,omitempty"`
	ShippingAddress *Address  `json:"shipping_address,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// NewCustomer normalizes the email to lower case; uniqueness is enforced by
// the repository.
func NewCustomer(email, firstName, lastName, phone string) (*Customer, error) {
	fields := map[string]string{}
	if strings.TrimSpace(email) == "" {
		fields["email"] = "email cannot be empty"
	}
	if strings.TrimSpace(firstName) == "" {
		fields["first_name"] = "first name cannot be empty"
	}
	if strings.TrimSpace(lastName) == "" {
		fields["last_name"] = "last name cannot be empty"
	}
	if len(fields) > 0 {
		return nil, &ValidationError{Fields: fields}
	}

	id, err := uuid.NewV4()
	if err != nil {
		return nil, fmt.Errorf("failed to generate customer ID: %w", err)
	}

	now := time.Now().UTC()

	return &Customer{
		ID:        id,
		Email:     strings.ToLower(strings.TrimSpace(email)),
		FirstName: strings.TrimSpace(firstName),
		LastName:  strings.TrimSpace(lastName),
		Phone:     strings.TrimSpace(phone),
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// UpdateProfile keeps the current value for any blank name field.
func (c *Customer) UpdateProfile(firstName, lastName, phone string) {
	if strings.TrimSpace(firstName) != "" {
		c.FirstName = strings.TrimSpace(firstName)
	}
	if strings.TrimSpace(lastName) != "" {
		c.LastName = strings.TrimSpace(lastName)
	}
	c.Phone = strings.TrimSpace(phone)
	c.UpdatedAt = time.Now().UTC()
}

func (c *Customer) SetShippingAddress(address Address) {
	c.ShippingAddress = &address
	c.UpdatedAt = time.Now().UTC()
}

func (c *Customer) FullName() string {
	return c.FirstName + " " + c.LastName
}
