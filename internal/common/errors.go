package common

import "fmt"

// ValidationError reports a malformed or inadmissible submission. No book
// mutation has occurred by the time this is returned.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error: %s", e.Reason)
}

func NewValidationError(reason string) *ValidationError {
	return &ValidationError{Reason: reason}
}

// Reason codes for ValidationError, reported on the submit response.
const (
	ReasonUnknownSymbol      = "unknown_symbol"
	ReasonNonPositiveQty     = "non_positive_quantity"
	ReasonPriceOffTick       = "price_off_tick"
	ReasonQuantityOffLot     = "quantity_off_lot"
	ReasonMissingPrice       = "missing_price"
	ReasonUnexpectedPrice    = "unexpected_price_for_market"
	ReasonSymbolCorrupted    = "symbol_book_corrupted"
	ReasonMalformedRequest   = "malformed_request"
)

// ErrFOKUnfillable names the case of a FOK order whose dry-run quantity
// falls short of its original quantity. Neither the matching core nor the
// façade returns it: that case is reported as a rejected result and response
// with reason "fok_unfillable", and the book is left unchanged (no trades,
// no resting order).
var ErrFOKUnfillable = fmt.Errorf("fok_unfillable")

// InvariantViolation marks a failed assertion on the book/level/trade
// invariants (B1-B3, L1-L3, T1-T2). It is fatal to the symbol whose book it
// was raised against: the façade must refuse further submissions for that
// symbol until operator intervention, and must never swallow it silently.
type InvariantViolation struct {
	Symbol string
	Detail string
}

func (e *InvariantViolation) Error() string {
	return fmt.Sprintf("internal invariant violation on %s: %s", e.Symbol, e.Detail)
}

func NewInvariantViolation(symbol, detail string) *InvariantViolation {
	return &InvariantViolation{Symbol: symbol, Detail: detail}
}
