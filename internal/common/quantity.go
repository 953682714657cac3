package common

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Quantity is a non-negative exact decimal amount. Subtraction is only
// permitted when the minuend is greater than or equal to the subtrahend;
// Sub panics on a violation rather than returning a silently negative
// remainder.
type Quantity struct {
	v decimal.Decimal
}

var zeroQuantity = Quantity{v: decimal.Zero}

func ZeroQuantity() Quantity { return zeroQuantity }

// NewQuantity builds a Quantity from a decimal value. Negative inputs clamp
// to zero; callers validating admission should reject negatives before this
// point rather than rely on the clamp.
func NewQuantity(v decimal.Decimal) Quantity {
	if v.IsNegative() {
		v = decimal.Zero
	}
	return Quantity{v: v}
}

// ParseQuantity parses a decimal string, e.g. from a wire request.
func ParseQuantity(s string) (Quantity, error) {
	v, err := decimal.NewFromString(s)
	if err != nil {
		return Quantity{}, fmt.Errorf("parse quantity: %w", err)
	}
	return Quantity{v: v}, nil
}

func (q Quantity) Decimal() decimal.Decimal { return q.v }

func (q Quantity) String() string { return q.v.String() }

func (q Quantity) IsZero() bool     { return q.v.IsZero() }
func (q Quantity) IsPositive() bool { return q.v.IsPositive() }
func (q Quantity) IsNegative() bool { return q.v.IsNegative() }

func (q Quantity) Equal(o Quantity) bool      { return q.v.Equal(o.v) }
func (q Quantity) LessThan(o Quantity) bool   { return q.v.LessThan(o.v) }
func (q Quantity) GreaterThan(o Quantity) bool { return q.v.GreaterThan(o.v) }
func (q Quantity) GreaterOrEqual(o Quantity) bool {
	return q.v.GreaterThanOrEqual(o.v)
}

func (q Quantity) Add(o Quantity) Quantity {
	return Quantity{v: q.v.Add(o.v)}
}

// Sub subtracts o from q. Precondition: q >= o; violating this is an
// InternalInvariantViolation at the call site, not something Sub itself
// decides to tolerate.
func (q Quantity) Sub(o Quantity) Quantity {
	if q.v.LessThan(o.v) {
		panic(fmt.Sprintf("matchcore: quantity underflow: %s - %s", q.v, o.v))
	}
	return Quantity{v: q.v.Sub(o.v)}
}

// Min returns the smaller of q and o.
func Min(q, o Quantity) Quantity {
	if q.v.LessThan(o.v) {
		return q
	}
	return o
}

// OnLot reports whether q is an exact multiple of lot.
func (q Quantity) OnLot(lot Quantity) bool {
	if lot.v.IsZero() {
		return true
	}
	_, rem := q.v.QuoRem(lot.v, 0)
	return rem.IsZero()
}
