package common

import (
	"fmt"
	"time"
)

// Trade records one execution formed by the matching core. Price is always
// the maker's resting price (price-time priority: the maker sets the trade
// price), never the taker's.
type Trade struct {
	TradeID       uint64
	Symbol        string
	Price         Price
	Quantity      Quantity
	AggressorSide Side // the side of the incoming (taker) order
	MakerOrderID  string
	TakerOrderID  string
	Timestamp     time.Time
	Sequence      uint64 // the engine sequence of the submission that produced it
}

func (t Trade) String() string {
	return fmt.Sprintf(
		"Trade{id=%d symbol=%s price=%s qty=%s aggressor=%s maker=%s taker=%s seq=%d}",
		t.TradeID, t.Symbol, t.Price, t.Quantity, t.AggressorSide,
		t.MakerOrderID, t.TakerOrderID, t.Sequence,
	)
}
