package matching_test

import (
	"testing"
	"time"

	"matchcore/internal/book"
	"matchcore/internal/common"
	"matchcore/internal/matching"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustPrice(s string) common.Price {
	p, err := common.ParsePrice(s)
	if err != nil {
		panic(err)
	}
	return p
}

func mustQty(s string) common.Quantity {
	q, err := common.ParseQuantity(s)
	if err != nil {
		panic(err)
	}
	return q
}

func newTradeIDSource() matching.TradeIDFunc {
	var next uint64
	return func() uint64 {
		next++
		return next
	}
}

func restLimit(seq uint64, id string, side common.Side, price, qty string) *common.Order {
	p := mustPrice(price)
	return &common.Order{
		OrderID:   id,
		Symbol:    "AAPL",
		Side:      side,
		Type:      common.Limit,
		Price:     &p,
		Original:  mustQty(qty),
		Remaining: mustQty(qty),
		Sequence:  seq,
		Arrival:   time.Unix(int64(seq), 0),
	}
}

func incomingLimit(id string, side common.Side, price, qty string) *common.Order {
	o := restLimit(0, id, side, price, qty)
	return o
}

func incomingMarket(id string, side common.Side, qty string) *common.Order {
	return &common.Order{
		OrderID:   id,
		Symbol:    "AAPL",
		Side:      side,
		Type:      common.Market,
		Original:  mustQty(qty),
		Remaining: mustQty(qty),
	}
}

func incomingIOC(id string, side common.Side, price, qty string) *common.Order {
	o := incomingLimit(id, side, price, qty)
	o.Type = common.IOC
	return o
}

func incomingFOK(id string, side common.Side, price, qty string) *common.Order {
	o := incomingLimit(id, side, price, qty)
	o.Type = common.FOK
	return o
}

// Seeded asks, buy limit order sweeps across two price levels and rests the
// remainder at its own limit.
func TestBuyLimitSweepsAndRests(t *testing.T) {
	b := book.New("AAPL")
	b.InsertResting(restLimit(1, "ask1", common.Sell, "100.00", "10"))
	b.InsertResting(restLimit(2, "ask2", common.Sell, "101.00", "10"))

	incoming := incomingLimit("buy1", common.Buy, "101.00", "25")
	result := matching.Match(b, incoming, newTradeIDSource())

	require.Len(t, result.Trades, 2)
	assert.True(t, result.Trades[0].Price.Equal(mustPrice("100.00")))
	assert.True(t, result.Trades[0].Quantity.Equal(mustQty("10")))
	assert.True(t, result.Trades[1].Price.Equal(mustPrice("101.00")))
	assert.True(t, result.Trades[1].Quantity.Equal(mustQty("10")))
	assert.True(t, incoming.Remaining.Equal(mustQty("5")), "5 units should rest")

	lvl := b.Best(common.Buy)
	require.NotNil(t, lvl)
	assert.True(t, lvl.Volume().Equal(mustQty("5")))
	assert.Nil(t, b.Best(common.Sell), "both ask levels should be fully consumed")
}

// Seeded bids, sell market order partially fills then is cancelled (no
// resting residual for a non-resting type).
func TestSellMarketPartialFillThenCancelled(t *testing.T) {
	b := book.New("AAPL")
	b.InsertResting(restLimit(1, "bid1", common.Buy, "99.00", "10"))

	incoming := incomingMarket("sell1", common.Sell, "30")
	result := matching.Match(b, incoming, newTradeIDSource())

	require.Len(t, result.Trades, 1)
	assert.True(t, result.Trades[0].Quantity.Equal(mustQty("10")))
	assert.True(t, incoming.Remaining.Equal(mustQty("20")), "unfilled market residual is discarded, not rested")
	assert.Nil(t, b.Best(common.Buy))
	assert.Nil(t, b.Best(common.Sell), "market orders never rest")
}

// FOK exact fill: available liquidity equals the order quantity exactly.
func TestFOKExactFill(t *testing.T) {
	b := book.New("AAPL")
	b.InsertResting(restLimit(1, "ask1", common.Sell, "50.00", "10"))
	b.InsertResting(restLimit(2, "ask2", common.Sell, "50.00", "10"))

	incoming := incomingFOK("fok1", common.Buy, "50.00", "20")
	result := matching.Match(b, incoming, newTradeIDSource())

	assert.False(t, result.Rejected)
	require.Len(t, result.Trades, 2)
	assert.True(t, incoming.Remaining.IsZero())
	assert.Nil(t, b.Best(common.Sell))
}

// FOK rejected when available liquidity is one unit short of the requested
// quantity; the book must be left bit-for-bit unchanged.
func TestFOKRejectedLeavesBookUnchanged(t *testing.T) {
	b := book.New("AAPL")
	b.InsertResting(restLimit(1, "ask1", common.Sell, "50.00", "19"))

	incoming := incomingFOK("fok1", common.Buy, "50.00", "20")
	result := matching.Match(b, incoming, newTradeIDSource())

	assert.True(t, result.Rejected)
	assert.Equal(t, "fok_unfillable", result.Reason)
	assert.Empty(t, result.Trades)

	lvl := b.Best(common.Sell)
	require.NotNil(t, lvl)
	assert.True(t, lvl.Volume().Equal(mustQty("19")), "rejected FOK must not mutate the book")
	require.Len(t, lvl.Orders(), 1)
	assert.Equal(t, "ask1", lvl.Orders()[0].OrderID)
}

// Same-price resting orders are filled strictly in arrival order (FIFO).
func TestSamePriceFIFOPriority(t *testing.T) {
	b := book.New("AAPL")
	b.InsertResting(restLimit(1, "ask1", common.Sell, "100.00", "5"))
	b.InsertResting(restLimit(2, "ask2", common.Sell, "100.00", "5"))

	incoming := incomingLimit("buy1", common.Buy, "100.00", "5")
	result := matching.Match(b, incoming, newTradeIDSource())

	require.Len(t, result.Trades, 1)
	assert.Equal(t, "ask1", result.Trades[0].MakerOrderID, "earliest resting order at the price must trade first")

	lvl := b.Best(common.Sell)
	require.NotNil(t, lvl)
	require.Len(t, lvl.Orders(), 1)
	assert.Equal(t, "ask2", lvl.Orders()[0].OrderID)
}

// An empty book rests a limit order in full; a later IOC partially fills
// against it and discards the remainder instead of resting.
func TestEmptyBookRestsThenIOCPartialFill(t *testing.T) {
	b := book.New("AAPL")

	restingResult := matching.Match(b, incomingLimit("bid1", common.Buy, "10.00", "100"), newTradeIDSource())
	assert.Empty(t, restingResult.Trades)

	lvl := b.Best(common.Buy)
	require.NotNil(t, lvl)
	assert.True(t, lvl.Volume().Equal(mustQty("100")))

	ioc := incomingIOC("ioc1", common.Sell, "10.00", "150")
	result := matching.Match(b, ioc, newTradeIDSource())

	require.Len(t, result.Trades, 1)
	assert.True(t, result.Trades[0].Quantity.Equal(mustQty("100")))
	assert.True(t, ioc.Remaining.Equal(mustQty("50")), "unfilled IOC residual is discarded")
	assert.Nil(t, b.Best(common.Buy))
}

// No internal trade-through: a limit buy below the best ask must not trade
// and must rest instead.
func TestNoTradeThroughLimitBuyBelowBestAsk(t *testing.T) {
	b := book.New("AAPL")
	b.InsertResting(restLimit(1, "ask1", common.Sell, "100.00", "10"))

	incoming := incomingLimit("buy1", common.Buy, "99.00", "10")
	result := matching.Match(b, incoming, newTradeIDSource())

	assert.Empty(t, result.Trades)
	bidLvl := b.Best(common.Buy)
	require.NotNil(t, bidLvl)
	assert.True(t, bidLvl.Volume().Equal(mustQty("10")))
}
