package engine_test

import (
	"testing"

	"matchcore/internal/common"
	"matchcore/internal/engine"
	"matchcore/internal/events"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestEngine(t *testing.T) *engine.Engine {
	t.Helper()
	tick, err := common.ParsePrice("0.01")
	require.NoError(t, err)
	lot, err := common.ParseQuantity("1")
	require.NoError(t, err)

	specs := []engine.SymbolSpec{{Symbol: "AAPL", TickSize: tick, LotSize: lot}}
	eng, cancel := engine.New(specs, events.NewPublisher())
	t.Cleanup(cancel)
	return eng
}

func priceFor(t *testing.T, s string) *common.Price {
	t.Helper()
	p, err := common.ParsePrice(s)
	require.NoError(t, err)
	return &p
}

func qtyFor(t *testing.T, s string) common.Quantity {
	t.Helper()
	q, err := common.ParseQuantity(s)
	require.NoError(t, err)
	return q
}

func TestSubmitRejectsUnknownSymbol(t *testing.T) {
	eng := newTestEngine(t)

	resp, err := eng.Submit(engine.OrderRequest{
		Symbol:   "MSFT",
		Side:     common.Buy,
		Type:     common.Limit,
		Price:    priceFor(t, "10.00"),
		Quantity: qtyFor(t, "1"),
	})

	require.Error(t, err)
	assert.Equal(t, engine.StatusRejected, resp.Status)
	assert.Equal(t, common.ReasonUnknownSymbol, resp.Reason)
}

func TestSubmitRejectsPriceOffTick(t *testing.T) {
	eng := newTestEngine(t)

	resp, err := eng.Submit(engine.OrderRequest{
		Symbol:   "AAPL",
		Side:     common.Buy,
		Type:     common.Limit,
		Price:    priceFor(t, "10.005"),
		Quantity: qtyFor(t, "1"),
	})

	require.Error(t, err)
	assert.Equal(t, engine.StatusRejected, resp.Status)
	assert.Equal(t, common.ReasonPriceOffTick, resp.Reason)
}

func TestSubmitRejectsQuantityOffLot(t *testing.T) {
	eng := newTestEngine(t)

	resp, err := eng.Submit(engine.OrderRequest{
		Symbol:   "AAPL",
		Side:     common.Buy,
		Type:     common.Limit,
		Price:    priceFor(t, "10.00"),
		Quantity: qtyFor(t, "1.5"),
	})

	require.Error(t, err)
	assert.Equal(t, engine.StatusRejected, resp.Status)
	assert.Equal(t, common.ReasonQuantityOffLot, resp.Reason)
}

func TestSubmitRejectsMarketOrderWithPrice(t *testing.T) {
	eng := newTestEngine(t)

	resp, err := eng.Submit(engine.OrderRequest{
		Symbol:   "AAPL",
		Side:     common.Buy,
		Type:     common.Market,
		Price:    priceFor(t, "10.00"),
		Quantity: qtyFor(t, "1"),
	})

	require.Error(t, err)
	assert.Equal(t, engine.StatusRejected, resp.Status)
	assert.Equal(t, common.ReasonUnexpectedPrice, resp.Reason)
}

func TestSubmitRestsThenFills(t *testing.T) {
	eng := newTestEngine(t)

	restResp, err := eng.Submit(engine.OrderRequest{
		Symbol:   "AAPL",
		Side:     common.Sell,
		Type:     common.Limit,
		Price:    priceFor(t, "100.00"),
		Quantity: qtyFor(t, "10"),
	})
	require.NoError(t, err)
	assert.Equal(t, engine.StatusResting, restResp.Status)
	assert.Equal(t, uint64(1), restResp.Sequence)

	fillResp, err := eng.Submit(engine.OrderRequest{
		Symbol:   "AAPL",
		Side:     common.Buy,
		Type:     common.Limit,
		Price:    priceFor(t, "100.00"),
		Quantity: qtyFor(t, "10"),
	})
	require.NoError(t, err)
	assert.Equal(t, engine.StatusFilled, fillResp.Status)
	require.Len(t, fillResp.Trades, 1)
	assert.Equal(t, uint64(2), fillResp.Sequence, "sequence numbers are monotonic across submissions")
	assert.Equal(t, uint64(1), fillResp.Trades[0].TradeID)

	bids, asks, _, ok := eng.Snapshot("AAPL", 0)
	require.True(t, ok)
	assert.Empty(t, bids)
	assert.Empty(t, asks)
}

func TestSubmitFOKRejectionReportsReason(t *testing.T) {
	eng := newTestEngine(t)

	_, err := eng.Submit(engine.OrderRequest{
		Symbol:   "AAPL",
		Side:     common.Sell,
		Type:     common.Limit,
		Price:    priceFor(t, "50.00"),
		Quantity: qtyFor(t, "5"),
	})
	require.NoError(t, err)

	resp, err := eng.Submit(engine.OrderRequest{
		Symbol:   "AAPL",
		Side:     common.Buy,
		Type:     common.FOK,
		Price:    priceFor(t, "50.00"),
		Quantity: qtyFor(t, "10"),
	})
	require.NoError(t, err, "an unfillable FOK is a business rejection, not a transport error")
	assert.Equal(t, engine.StatusRejected, resp.Status)
	assert.Equal(t, "fok_unfillable", resp.Reason)

	bbo, ok := eng.BBO("AAPL")
	require.True(t, ok)
	require.NotNil(t, bbo.Ask)
	assert.True(t, bbo.Ask.Quantity.Equal(qtyFor(t, "5")), "rejected FOK must not mutate the book")

	stats := eng.Stats()
	assert.Equal(t, uint64(1), stats.TotalOrdersAccepted, "only the resting sell should count as accepted")
	assert.Equal(t, uint64(1), stats.TotalOrdersRejected, "a FOK that fails its dry-run must count as rejected, not accepted")
}

func TestStatsReflectAcceptedAndRejectedSubmissions(t *testing.T) {
	eng := newTestEngine(t)

	_, err := eng.Submit(engine.OrderRequest{
		Symbol:   "AAPL",
		Side:     common.Buy,
		Type:     common.Limit,
		Price:    priceFor(t, "10.00"),
		Quantity: qtyFor(t, "1"),
	})
	require.NoError(t, err)

	_, err = eng.Submit(engine.OrderRequest{
		Symbol: "NOPE",
	})
	require.Error(t, err)

	stats := eng.Stats()
	assert.Equal(t, uint64(1), stats.TotalOrdersAccepted)
	assert.Equal(t, uint64(1), stats.TotalOrdersRejected)
}
