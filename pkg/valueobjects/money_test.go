package valueobjects

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMoney(t *testing.T) {
	tests := []struct {
		name        string
		amount      decimal.Decimal
		currency    Currency
		shouldError bool
	}{
		{
			name:     "valid money",
			amount:   decimal.NewFromFloat(10.99),
			currency: EUR,
		},
		{
			name:        "negative amount",
			amount:      decimal.NewFromFloat(-10.99),
			currency:    EUR,
			shouldError: true,
		},
		{
			name:        "unsupported currency",
			amount:      decimal.NewFromFloat(10.99),
			currency:    "XXX",
			shouldError: true,
		},
		{
			name:        "too many decimal places",
			amount:      decimal.RequireFromString("10.999"),
			currency:    EUR,
			shouldError: true,
		},
		{
			name:     "zero is allowed",
			amount:   decimal.Zero,
			currency: USD,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			money, err := NewMoney(tt.amount, tt.currency)
			if tt.shouldError {
				assert.Error(t, err)
				assert.Nil(t, money)
			} else {
				require.NoError(t, err)
				assert.True(t, money.Amount().Equal(tt.amount))
				assert.Equal(t, tt.currency, money.Currency())
			}
		})
	}
}

func TestNewMoneyFromFloat(t *testing.T) {
	money, err := NewMoneyFromFloat(12.5, "eur")
	require.NoError(t, err)
	assert.Equal(t, EUR, money.Currency())
	assert.Equal(t, 12.5, money.Float64())

	_, err = NewMoneyFromFloat(12.505, "EUR")
	assert.Error(t, err)
}

func TestMoney_Split(t *testing.T) {
	t.Run("uneven split distributes leftover cents first", func(t *testing.T) {
		money, err := NewMoneyFromString("10.00", "EUR")
		require.NoError(t, err)

		shares, err := money.Split(3)
		require.NoError(t, err)
		require.Len(t, shares, 3)

		assert.Equal(t, "3.34 EUR", shares[0].String())
		assert.Equal(t, "3.33 EUR", shares[1].String())
		assert.Equal(t, "3.33 EUR", shares[2].String())

		sum := decimal.Zero
		for _, s := range shares {
			sum = sum.Add(s.Amount())
		}
		assert.True(t, sum.Equal(money.Amount()))
	})

	t.Run("even split", func(t *testing.T) {
		money, err := NewMoneyFromString("60.00", "EUR")
		require.NoError(t, err)

		shares, err := money.Split(4)
		require.NoError(t, err)
		for _, s := range shares {
			assert.Equal(t, "15.00 EUR", s.String())
		}
	})

	t.Run("zero parts rejected", func(t *testing.T) {
		money, err := NewMoneyFromString("10.00", "EUR")
		require.NoError(t, err)

		_, err = money.Split(0)
		assert.Error(t, err)
	})
}

func TestMoney_Add(t *testing.T) {
	a, err := NewMoneyFromString("10.50", "EUR")
	require.NoError(t, err)
	b, err := NewMoneyFromString("4.50", "EUR")
	require.NoError(t, err)

	sum, err := a.Add(*b)
	require.NoError(t, err)
	assert.Equal(t, "15.00 EUR", sum.String())

	usd, err := NewMoneyFromString("1.00", "USD")
	require.NoError(t, err)
	_, err = a.Add(*usd)
	assert.Error(t, err)
}
