package valueobjects

import (
	"fmt"
	"strings"

	"github.com/SmartSplit/smart-split-backend/errors"
	"github.com/shopspring/decimal"
)

// Currency is an ISO 4217 currency code.
type Currency string

const (
	USD Currency = "USD"
	EUR Currency = "EUR"
	GBP Currency = "GBP"
	CHF Currency = "CHF"
)

var validCurrencies = map[Currency]bool{
	USD: true,
	EUR: true,
	GBP: true,
	CHF: true,
}

// Money is an expense or settlement amount in a specific currency. Amounts are
// non-negative and carry at most two decimal places; arithmetic runs on
// decimals so cents never drift the way float math would.
type Money struct {
	amount   decimal.Decimal
	currency Currency
}

// NewMoney validates and wraps an amount.
func NewMoney(amount decimal.Decimal, currency Currency) (*Money, error) {
	if !validCurrencies[currency] {
		return nil, errors.ValidationFailed(
			"invalid currency",
			fmt.Sprintf("currency %s is not supported", currency),
		)
	}
	if amount.LessThan(decimal.Zero) {
		return nil, errors.ValidationFailed(
			"invalid amount",
			"amount cannot be negative",
		)
	}
	if amount.Exponent() < -2 {
		return nil, errors.ValidationFailed(
			"invalid amount",
			"amount cannot have more than 2 decimal places",
		)
	}
	return &Money{amount: amount, currency: currency}, nil
}

// NewMoneyFromFloat validates a float amount as it arrives from a JSON body.
// The float is rounded to cents first, then rejected if the rounding moved it
// by more than a representation error.
func NewMoneyFromFloat(amount float64, currency string) (*Money, error) {
	d := decimal.NewFromFloat(amount)
	rounded := d.Round(2)
	if !d.Sub(rounded).Abs().LessThan(decimal.New(1, -6)) {
		return nil, errors.ValidationFailed(
			"invalid amount",
			"amount cannot have more than 2 decimal places",
		)
	}
	return NewMoney(rounded, Currency(strings.ToUpper(currency)))
}

// NewMoneyFromString parses a decimal string amount.
func NewMoneyFromString(amount string, currency string) (*Money, error) {
	d, err := decimal.NewFromString(amount)
	if err != nil {
		return nil, errors.ValidationFailed("invalid amount format", err.Error())
	}
	return NewMoney(d, Currency(strings.ToUpper(currency)))
}

func (m Money) Amount() decimal.Decimal { return m.amount }

func (m Money) Currency() Currency { return m.currency }

// Float64 returns the amount as a float for storage and transport.
func (m Money) Float64() float64 {
	f, _ := m.amount.Float64()
	return f
}

func (m Money) IsZero() bool { return m.amount.IsZero() }

func (m Money) IsPositive() bool { return m.amount.GreaterThan(decimal.Zero) }

// Add adds two amounts of the same currency.
func (m Money) Add(other Money) (*Money, error) {
	if m.currency != other.currency {
		return nil, errors.ValidationFailed(
			"currency mismatch",
			fmt.Sprintf("cannot add %s to %s", other.currency, m.currency),
		)
	}
	return &Money{amount: m.amount.Add(other.amount), currency: m.currency}, nil
}

// Equals reports value and currency equality.
func (m Money) Equals(other Money) bool {
	return m.currency == other.currency && m.amount.Equal(other.amount)
}

// Split divides the amount into n shares that sum exactly to the original.
// Work happens in integer cents; leftover cents go to the earliest shares, so
// 10.00 over 3 becomes 3.34, 3.33, 3.33.
func (m Money) Split(n int) ([]*Money, error) {
	if n <= 0 {
		return nil, errors.ValidationFailed(
			"invalid split",
			"number of parts must be positive",
		)
	}

	totalCents := m.amount.Mul(decimal.NewFromInt(100))
	base := totalCents.Div(decimal.NewFromInt(int64(n))).Floor()
	remainder := totalCents.Sub(base.Mul(decimal.NewFromInt(int64(n))))

	shares := make([]*Money, n)
	for i := 0; i < n; i++ {
		cents := base
		if remainder.GreaterThan(decimal.Zero) {
			cents = cents.Add(decimal.NewFromInt(1))
			remainder = remainder.Sub(decimal.NewFromInt(1))
		}
		shares[i] = &Money{
			amount:   cents.Div(decimal.NewFromInt(100)).Round(2),
			currency: m.currency,
		}
	}
	return shares, nil
}

func (m Money) String() string {
	return fmt.Sprintf("%s %s", m.amount.StringFixed(2), m.currency)
}
