// Package matching implements the matching core: a pure, synchronous
// transformation of one incoming order against a symbol's order book. It
// never suspends and never assigns sequence numbers — those are the
// façade's job (see package engine) — so that given a book state and a
// deterministic arrival sequence, the trade sequence and resulting book are
// uniquely determined.
package matching

import (
	"matchcore/internal/book"
	"matchcore/internal/common"
)

// TradeIDFunc allocates the next monotonic trade ID. Supplied by the
// façade so the core stays a pure function of (book, order, id source).
type TradeIDFunc func() uint64

// Result is everything the matching core produces for one submission.
type Result struct {
	Trades   []common.Trade
	Rejected bool   // true only for an unfillable FOK
	Reason   string // set iff Rejected
}

// Match runs incoming against b and mutates b in place (except for a
// rejected FOK, which leaves b bit-for-bit unchanged). incoming.Remaining
// is mutated to reflect what is left after the walk; callers should not
// reuse incoming.Remaining as "original" after calling Match.
func Match(b *book.Book, incoming *common.Order, nextTradeID TradeIDFunc) Result {
	if incoming.Type == common.FOK {
		return matchFOK(b, incoming, nextTradeID)
	}

	trades := walk(b, incoming, nextTradeID)

	if incoming.Type.RestsOnBook() && incoming.Remaining.IsPositive() {
		b.InsertResting(incoming)
	}
	// Market and IOC residuals are silently discarded: NoLiquidity is not
	// an error, it is the partially_filled_cancelled status at the façade.

	return Result{Trades: trades}
}

// tradable reports whether a resting order at makerPrice can trade against
// incoming, per §4.3: Market orders trade at any price; Limit/IOC/FOK never
// trade through their own limit price.
func tradable(incoming *common.Order, makerPrice common.Price) bool {
	if incoming.Type == common.Market {
		return true
	}
	if incoming.Side == common.Buy {
		return makerPrice.LessOrEqual(*incoming.Price)
	}
	return makerPrice.GreaterOrEqual(*incoming.Price)
}

// walk performs the opposite-side sweep, forming trades at the maker's
// price (trade-through protection: the aggressor never improves its own
// price) until incoming is filled or the opposite side is exhausted or no
// longer tradable.
func walk(b *book.Book, incoming *common.Order, nextTradeID TradeIDFunc) []common.Trade {
	opp := incoming.Side.Opposite()
	var trades []common.Trade

	for incoming.Remaining.IsPositive() {
		lvl := b.BestMut(opp)
		if lvl == nil {
			break
		}
		if !tradable(incoming, lvl.Price) {
			break
		}

		maker := lvl.Head()
		qty := common.Min(incoming.Remaining, maker.Remaining)
		price := lvl.Price

		lvl.Consume(qty)
		incoming.Remaining = incoming.Remaining.Sub(qty)
		b.RemoveIfEmpty(opp, price)

		trades = append(trades, common.Trade{
			TradeID:       nextTradeID(),
			Symbol:        incoming.Symbol,
			Price:         price,
			Quantity:      qty,
			AggressorSide: incoming.Side,
			MakerOrderID:  maker.OrderID,
			TakerOrderID:  incoming.OrderID,
			Timestamp:     incoming.Arrival,
			Sequence:      incoming.Sequence,
		})
	}
	return trades
}

// matchFOK implements the two-phase fill-or-kill protocol: a read-only
// dry-run decides admission before any mutation is attempted, so a
// rejected FOK leaves the book bit-for-bit unchanged.
func matchFOK(b *book.Book, incoming *common.Order, nextTradeID TradeIDFunc) Result {
	available := dryRunAvailable(b, incoming)
	if available.LessThan(incoming.Original) {
		return Result{Rejected: true, Reason: "fok_unfillable"}
	}

	trades := walk(b, incoming, nextTradeID)
	// The dry-run guarantees full fill; FOK never rests a residual.
	return Result{Trades: trades}
}

// dryRunAvailable sums, without mutating the book, the quantity fillable by
// walking the opposite side at tradable prices, stopping as soon as the sum
// covers incoming.Original (so the result can be less than the full
// tradable depth, but never less than Original when that depth suffices).
// It uses the same tradable predicate as the real walk, per §4.3.
func dryRunAvailable(b *book.Book, incoming *common.Order) common.Quantity {
	opp := incoming.Side.Opposite()
	levels := snapshotSide(b, opp)

	total := common.ZeroQuantity()
	for _, lvl := range levels {
		if !tradable(incoming, lvl.Price) {
			break
		}
		total = total.Add(lvl.Quantity)
		if total.GreaterOrEqual(incoming.Original) {
			break
		}
	}
	return total
}

func snapshotSide(b *book.Book, side common.Side) []book.LevelQuote {
	bids, asks := b.Snapshot(0)
	if side == common.Buy {
		return bids
	}
	return asks
}
