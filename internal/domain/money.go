package domain

import (
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"
	"golang.org/x/text/currency"
)

// Money is an immutable amount tagged with an ISO 4217 currency.
// Amounts are kept rounded to 2 decimal places.
type Money struct {
	Amount   decimal.Decimal
	Currency currency.Unit
}

func NewMoney(amount decimal.Decimal, unit currency.Unit) (Money, error) {
	if amount.IsNegative() {
		return Money{}, &ValidationError{Fields: map[string]string{
			"amount": "amount cannot be negative",
		}}
	}

	return Money{Amount: amount.Round(2), Currency: unit}, nil
}

func ZeroMoney(unit currency.Unit) Money {
	return Money{Amount: decimal.Zero, Currency: unit}
}

func (m Money) Add(other Money) (Money, error) {
	if err := m.ensureSameCurrency(other); err != nil {
		return Money{}, err
	}

	return Money{Amount: m.Amount.Add(other.Amount), Currency: m.Currency}, nil
}

func (m Money) Subtract(other Money) (Money, error) {
	if err := m.ensureSameCurrency(other); err != nil {
		return Money{}, err
	}

	result := m.Amount.Sub(other.Amount)
	if result.IsNegative() {
		return Money{}, &ValidationError{Fields: map[string]string{
			"amount": "result cannot be negative",
		}}
	}

	return Money{Amount: result, Currency: m.Currency}, nil
}

func (m Money) Multiply(quantity int) (Money, error) {
	if quantity < 0 {
		return Money{}, &ValidationError{Fields: map[string]string{
			"quantity": "quantity cannot be negative",
		}}
	}

	return Money{Amount: m.Amount.Mul(decimal.NewFromInt(int64(quantity))), Currency: m.Currency}, nil
}

func (m Money) IsZero() bool {
	return m.Amount.IsZero()
}

func (m Money) String() string {
	return fmt.Sprintf("%s %s", m.Amount.StringFixed(2), m.Currency)
}

type moneyJSON struct {
	Amount   decimal.Decimal `json:"amount"`
	Currency string          `json:"currency"`
}

func (m Money) MarshalJSON() ([]byte, error) {
	return json.Marshal(moneyJSON{Amount: m.Amount, Currency: m.Currency.String()})
}

func (m *Money) UnmarshalJSON(data []byte) error {
	var raw moneyJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	unit, err := currency.ParseISO(raw.Currency)
	if err != nil {
		return fmt.Errorf("currency[%s] is not valid: %w", raw.Currency, err)
	}

	m.Amount = raw.Amount
	m.Currency = unit
	return nil
}

func (m Money) ensureSameCurrency(other Money) error {
	if m.Currency != other.Currency {
		return &Error{
			Code:    CodeValidation,
			Message: fmt.Sprintf("cannot operate on different currencies: %s and %s", m.Currency, other.Currency),
		}
	}

	return nil
}
