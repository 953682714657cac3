package book

import (
	"matchcore/internal/common"
)

// Level is a FIFO queue of resting order remainders at a single price, with
// an incrementally maintained aggregate volume.
//
// Invariant L1: orders is ordered strictly by arrival sequence ascending.
// Invariant L2: every order in orders has Remaining > 0.
// Invariant L3: volume equals the sum of orders[i].Remaining.
type Level struct {
	Price  common.Price
	orders []*common.Order
	volume common.Quantity
}

// NewLevel creates an empty level at the given price.
func NewLevel(price common.Price) *Level {
	return &Level{Price: price, volume: common.ZeroQuantity()}
}

// Append places order at the tail of the FIFO. Precondition: order.Price
// equals the level's price and order.Remaining > 0.
func (l *Level) Append(order *common.Order) {
	l.orders = append(l.orders, order)
	l.volume = l.volume.Add(order.Remaining)
}

// Head returns the front order without removing it, or nil if empty.
func (l *Level) Head() *common.Order {
	if len(l.orders) == 0 {
		return nil
	}
	return l.orders[0]
}

// Consume decrements the head order's remaining quantity by q. q must not
// exceed the head's remaining quantity. If the head's remaining reaches
// zero it is popped off the front of the FIFO. There is no reordering:
// consumption always affects the head.
func (l *Level) Consume(q common.Quantity) {
	head := l.Head()
	if head == nil {
		return
	}
	head.Remaining = head.Remaining.Sub(q)
	l.volume = l.volume.Sub(q)
	if head.Remaining.IsZero() {
		l.orders = l.orders[1:]
	}
}

// IsEmpty reports whether the level has no resting orders.
func (l *Level) IsEmpty() bool {
	return len(l.orders) == 0
}

// Volume returns the level's cached aggregate remaining quantity.
func (l *Level) Volume() common.Quantity {
	return l.volume
}

// Orders returns the FIFO contents, best (earliest) first. Callers must
// treat the returned slice as read-only.
func (l *Level) Orders() []*common.Order {
	return l.orders
}
