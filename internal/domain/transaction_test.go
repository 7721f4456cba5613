package domain_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/rippleeffect/charity-service/internal/domain"
)

func TestRoundUp(t *testing.T) {
	tests := []struct {
		total string
		want  string
	}{
		{"4.23", "0.77"},
		{"12.60", "0.40"},
		{"0.01", "0.99"},
		{"5.00", "0"},
		{"0", "0"},
	}
	for _, tt := range tests {
		got := domain.RoundUp(decimal.RequireFromString(tt.total))
		assert.True(t, decimal.RequireFromString(tt.want).Equal(got), "total %s: got %s", tt.total, got)
	}
}

func TestPurchaseTotal(t *testing.T) {
	p := domain.Purchase{Title: "Coffee", Price: decimal.RequireFromString("3.25"), Quantity: 2}
	assert.True(t, decimal.RequireFromString("6.50").Equal(p.Total()))

	p.Quantity = 0
	assert.True(t, decimal.RequireFromString("3.25").Equal(p.Total()))
}

func TestCheckoutRequestAmountCents(t *testing.T) {
	r := domain.CheckoutRequest{Amount: decimal.RequireFromString("17.40")}
	assert.Equal(t, int64(1740), r.AmountCents())

	r.Amount = decimal.RequireFromString("0.505")
	assert.Equal(t, int64(51), r.AmountCents())
}
