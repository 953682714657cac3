package common

import (
	"fmt"
	"time"
)

// Order is a single submission accepted by the engine. Price is present iff
// Type is Limit, IOC, or FOK; it is nil for Market orders. Remaining is
// mutated only by the matching core, by decrementing; it is never mutated
// by the façade once a submission has entered the per-symbol actor.
type Order struct {
	OrderID   string    // unique within the engine, assigned at admission
	Symbol    string    //
	Side      Side      //
	Type      OrderType //
	Price     *Price    // nil iff Type == Market
	Original  Quantity  // original requested quantity, > 0
	Remaining Quantity  // remaining quantity, mutated by the matching core

	Sequence uint64    // monotonic, assigned by the engine façade
	Arrival  time.Time // arrival timestamp, for reporting only
	Owner    string    // submitting client identifier, opaque to matching
}

// IsResting reports whether the order still has quantity left to trade or
// rest.
func (o *Order) IsResting() bool {
	return o.Remaining.IsPositive()
}

func (o Order) String() string {
	price := "market"
	if o.Price != nil {
		price = o.Price.String()
	}
	return fmt.Sprintf(
		"Order{id=%s symbol=%s side=%s type=%s price=%s remaining=%s/%s seq=%d}",
		o.OrderID, o.Symbol, o.Side, o.Type, price, o.Remaining, o.Original, o.Sequence,
	)
}
