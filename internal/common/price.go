package common

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Price is an exact decimal monetary value. Two prices are equal iff their
// underlying decimal values are equal; ordering is the natural decimal
// ordering. No float64 conversion ever happens on the matching path.
type Price struct {
	v decimal.Decimal
}

// NewPrice builds a Price from a decimal value.
func NewPrice(v decimal.Decimal) Price {
	return Price{v: v}
}

// ParsePrice parses a decimal string, e.g. from a wire request.
func ParsePrice(s string) (Price, error) {
	v, err := decimal.NewFromString(s)
	if err != nil {
		return Price{}, fmt.Errorf("parse price: %w", err)
	}
	return Price{v: v}, nil
}

func (p Price) Decimal() decimal.Decimal { return p.v }

func (p Price) String() string { return p.v.String() }

func (p Price) Equal(o Price) bool      { return p.v.Equal(o.v) }
func (p Price) LessThan(o Price) bool   { return p.v.LessThan(o.v) }
func (p Price) GreaterThan(o Price) bool { return p.v.GreaterThan(o.v) }
func (p Price) LessOrEqual(o Price) bool {
	return p.v.LessThanOrEqual(o.v)
}
func (p Price) GreaterOrEqual(o Price) bool {
	return p.v.GreaterThanOrEqual(o.v)
}

// OnTick reports whether p is an exact multiple of tick.
func (p Price) OnTick(tick Price) bool {
	if tick.v.IsZero() {
		return true
	}
	_, rem := p.v.QuoRem(tick.v, 0)
	return rem.IsZero()
}
