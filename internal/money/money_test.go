package money

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestRound2(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{name: "Already two places", input: "10.00", expected: "10"},
		{name: "Half rounds up", input: "1.005", expected: "1.01"},
		{name: "Below half rounds down", input: "1.004", expected: "1"},
		{name: "Negative half rounds away from zero", input: "-1.005", expected: "-1.01"},
		{name: "Float-hostile value", input: "0.285", expected: "0.29"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Round2(decimal.RequireFromString(tt.input))
			assert.True(t, decimal.RequireFromString(tt.expected).Equal(got), "got %s", got)
		})
	}
}

func TestLineTotal(t *testing.T) {
	tests := []struct {
		name     string
		price    string
		quantity int
		expected string
	}{
		{name: "Single unit", price: "10.00", quantity: 1, expected: "10.00"},
		{name: "Multiple units", price: "4.35", quantity: 3, expected: "13.05"},
		{name: "Rounds the product", price: "0.335", quantity: 3, expected: "1.01"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := LineTotal(decimal.RequireFromString(tt.price), tt.quantity)
			assert.True(t, decimal.RequireFromString(tt.expected).Equal(got), "got %s", got)
		})
	}
}

func TestSum(t *testing.T) {
	got := Sum(
		decimal.RequireFromString("0.10"),
		decimal.RequireFromString("0.20"),
		decimal.RequireFromString("13.05"),
	)
	assert.True(t, decimal.RequireFromString("13.35").Equal(got))

	assert.True(t, Sum().IsZero())
}

func TestEqual(t *testing.T) {
	assert.True(t, Equal(decimal.RequireFromString("10"), decimal.RequireFromString("10.00")))
	assert.False(t, Equal(decimal.RequireFromString("9.99"), decimal.RequireFromString("10.00")))
}
