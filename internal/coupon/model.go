package coupon

import (
	"strings"

	"github.com/shopspring/decimal"
)

type DiscountType string

const (
	DiscountPercentage DiscountType = "percentage"
	DiscountFixed      DiscountType = "fixed"
)

func (t DiscountType) Valid() bool {
	return t == DiscountPercentage || t == DiscountFixed
}

type Coupon struct {
	Code         string          `json:"code"`
	DiscountType DiscountType    `json:"discountType"`
	Value        decimal.Decimal `json:"value"`
	IsActive     bool            `json:"isActive"`
}

var hundred = decimal.NewFromInt(100)

// Apply returns price after the discount, rounded half-up to whole units and never below zero.
//
//	percentage: price × (1 − value/100)
//	fixed:      max(0, price − value)
func (c Coupon) Apply(price int64) int64 {
	p := decimal.NewFromInt(price)

	var out decimal.Decimal
	switch c.DiscountType {
	case DiscountPercentage:
		out = p.Mul(decimal.NewFromInt(1).Sub(c.Value.Div(hundred)))
	case DiscountFixed:
		out = p.Sub(c.Value)
	default:
		return price
	}

	if out.IsNegative() {
		return 0
	}
	return out.Round(0).IntPart()
}

// NormalizeCode is the canonical stored form of a coupon code.
func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}
