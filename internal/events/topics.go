package events

import "fmt"

// BookTopic returns the topic name for book-delta/BBO events on symbol.
func BookTopic(symbol string) string { return fmt.Sprintf("book:%s", symbol) }

// TradesTopic returns the topic name for trade events on symbol.
func TradesTopic(symbol string) string { return fmt.Sprintf("trades:%s", symbol) }

// BookDelta is the payload published on a BookTopic after a submission
// mutates (or fails to mutate) a symbol's book.
type BookDelta struct {
	Symbol    string
	Bid       *PriceQty
	Ask       *PriceQty
	Sequence  uint64
}

// PriceQty is a (price, aggregate quantity) pair, decimal-stringified for
// wire transport.
type PriceQty struct {
	Price    string
	Quantity string
}

// TradeEvent is the payload published on a TradesTopic for one execution.
type TradeEvent struct {
	TradeID       uint64
	Symbol        string
	Price         string
	Quantity      string
	AggressorSide string
	MakerOrderID  string
	TakerOrderID  string
	TimestampUnix int64
	Sequence      uint64
}
