// Package engine implements the engine façade (spec.md §4.4): it owns the
// per-symbol books and actors, performs admission validation, assigns
// sequence numbers, invokes the matching core, and publishes events.
package engine

import (
	"sync/atomic"
	"time"

	"matchcore/internal/book"
	"matchcore/internal/common"
	"matchcore/internal/events"
	"matchcore/internal/matching"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	tomb "gopkg.in/tomb.v2"
)

// OrderRequest is the façade-level submission contract (spec.md §6).
type OrderRequest struct {
	Symbol    string
	Side      common.Side
	Type      common.OrderType
	Price     *common.Price // nil unless Type requires one
	Quantity  common.Quantity
	Owner     string
}

// Status is the outcome status reported on a submit response.
type Status string

const (
	StatusFilled                  Status = "filled"
	StatusPartiallyFilledResting  Status = "partially_filled_resting"
	StatusPartiallyFilledCancelled Status = "partially_filled_cancelled"
	StatusResting                 Status = "resting"
	StatusRejected                Status = "rejected"
)

// Response is the façade-level submission response (spec.md §6).
type Response struct {
	Status            Status
	OrderID           string
	Sequence          uint64
	Trades            []common.Trade
	RemainingQuantity common.Quantity
	Reason            string
}

// Engine owns every symbol's book and actor, and is the single entry point
// external façades (HTTP, websocket) talk to.
type Engine struct {
	symbols map[string]SymbolSpec
	books   map[string]*book.Book
	actors  map[string]*symbolActor

	tomb *tomb.Tomb

	sequence atomic.Uint64
	tradeID  atomic.Uint64

	counters  *Counters
	publisher *events.Publisher
}

// New builds an Engine for the given symbol specs, starting one supervised
// actor per symbol. The returned cancel func stops every actor.
func New(specs []SymbolSpec, publisher *events.Publisher) (*Engine, func()) {
	e := &Engine{
		symbols:   make(map[string]SymbolSpec, len(specs)),
		books:     make(map[string]*book.Book, len(specs)),
		actors:    make(map[string]*symbolActor, len(specs)),
		counters:  newCounters(),
		publisher: publisher,
	}

	t := &tomb.Tomb{}
	e.tomb = t

	for _, spec := range specs {
		e.symbols[spec.Symbol] = spec
		b := book.New(spec.Symbol)
		e.books[spec.Symbol] = b

		actor := newSymbolActor(spec.Symbol, b, e.nextTradeID, e.onMatchResult)
		e.actors[spec.Symbol] = actor
		t.Go(func() error { return actor.run(t) })
	}

	cancel := func() {
		t.Kill(nil)
		_ = t.Wait()
	}
	return e, cancel
}

func (e *Engine) nextTradeID() uint64 { return e.tradeID.Add(1) }

// onMatchResult is invoked by a symbol actor immediately after a match, and
// publishes trade/book events. It must never block: Publisher.Publish is
// non-blocking by construction (drop-oldest).
func (e *Engine) onMatchResult(symbol string, order *common.Order, result matching.Result) {
	e.counters.recordTrades(symbol, result.Trades)

	for _, tr := range result.Trades {
		e.publisher.Publish(events.Event{
			Topic:    events.TradesTopic(symbol),
			Sequence: order.Sequence,
			Payload: events.TradeEvent{
				TradeID:       tr.TradeID,
				Symbol:        tr.Symbol,
				Price:         tr.Price.String(),
				Quantity:      tr.Quantity.String(),
				AggressorSide: tr.AggressorSide.String(),
				MakerOrderID:  tr.MakerOrderID,
				TakerOrderID:  tr.TakerOrderID,
				TimestampUnix: tr.Timestamp.Unix(),
				Sequence:      tr.Sequence,
			},
		})
	}

	if len(result.Trades) == 0 && result.Rejected {
		return
	}

	b := e.books[symbol]
	quote := b.Quote()
	delta := events.BookDelta{Symbol: symbol, Sequence: order.Sequence}
	if quote.Bid != nil {
		delta.Bid = &events.PriceQty{Price: quote.Bid.Price.String(), Quantity: quote.Bid.Quantity.String()}
	}
	if quote.Ask != nil {
		delta.Ask = &events.PriceQty{Price: quote.Ask.Price.String(), Quantity: quote.Ask.Quantity.String()}
	}
	e.publisher.Publish(events.Event{
		Topic:    events.BookTopic(symbol),
		Sequence: order.Sequence,
		Payload:  delta,
	})
}

// Submit runs admission validation, then hands the order to its symbol's
// actor and blocks until that actor has run it to completion (spec.md §5:
// "a submission runs to completion").
func (e *Engine) Submit(req OrderRequest) (Response, error) {
	spec, ok := e.symbols[req.Symbol]
	if !ok {
		e.counters.recordRejected()
		return Response{Status: StatusRejected, Reason: common.ReasonUnknownSymbol},
			common.NewValidationError(common.ReasonUnknownSymbol)
	}

	if err := validate(req, spec); err != nil {
		e.counters.recordRejected()
		return Response{Status: StatusRejected, Reason: err.Reason}, err
	}

	order := &common.Order{
		OrderID:   uuid.New().String(),
		Symbol:    req.Symbol,
		Side:      req.Side,
		Type:      req.Type,
		Price:     req.Price,
		Original:  req.Quantity,
		Remaining: req.Quantity,
		Sequence:  e.sequence.Add(1),
		Arrival:   time.Now(),
		Owner:     req.Owner,
	}

	actor := e.actors[req.Symbol]
	reply := make(chan submissionOutcome, 1)
	actor.submissions <- submissionJob{order: order, reply: reply}
	outcome := <-reply

	if outcome.err != nil {
		e.counters.recordRejected()
		log.Error().Err(outcome.err).Str("symbol", req.Symbol).Msg("internal invariant violation")
		return Response{Status: StatusRejected, Reason: common.ReasonSymbolCorrupted}, outcome.err
	}

	// A FOK that fails its dry-run is admitted (it passed validate() and
	// reached the actor) but its response status is rejected (§7:
	// FOKUnfillable is "reported as status=rejected"). Count it against
	// ordersRejected, not ordersAccepted, so the counters track the
	// response the caller actually sees rather than bare admission.
	if outcome.result.Rejected {
		e.counters.recordRejected()
	} else {
		e.counters.recordAccepted()
	}
	return e.toResponse(order, outcome.result), nil
}

func (e *Engine) toResponse(order *common.Order, result matching.Result) Response {
	if result.Rejected {
		return Response{
			Status:            StatusRejected,
			OrderID:           order.OrderID,
			Sequence:          order.Sequence,
			RemainingQuantity: order.Original,
			Reason:            result.Reason,
		}
	}

	resp := Response{
		OrderID:           order.OrderID,
		Sequence:          order.Sequence,
		Trades:            result.Trades,
		RemainingQuantity: order.Remaining,
	}

	switch {
	case order.Remaining.IsZero():
		resp.Status = StatusFilled
	case order.Type.RestsOnBook():
		if len(result.Trades) > 0 {
			resp.Status = StatusPartiallyFilledResting
		} else {
			resp.Status = StatusResting
		}
	default:
		resp.Status = StatusPartiallyFilledCancelled
	}
	return resp
}

// snapshotResult bundles a Snapshot query's return values so they can
// travel through a single queryJob reply.
type snapshotResult struct {
	bids, asks []book.LevelQuote
}

// Snapshot returns the top-N levels per side for symbol, best first
// (spec.md §4.2, §6 book query contract). The read runs inside the
// symbol's own actor goroutine, the same serialization boundary Submit
// uses, so it can never race a concurrent Match mutating the book (§5:
// the per-symbol book is shared only via the façade's critical section).
func (e *Engine) Snapshot(symbol string, depth int) (bids, asks []book.LevelQuote, sequence uint64, ok bool) {
	actor, exists := e.actors[symbol]
	if !exists {
		return nil, nil, 0, false
	}
	raw := actor.query(func(b *book.Book) any {
		bids, asks := b.Snapshot(depth)
		return snapshotResult{bids: bids, asks: asks}
	}).(snapshotResult)
	return raw.bids, raw.asks, e.sequence.Load(), true
}

// BBO returns the current best-bid/best-offer for symbol, read through the
// symbol's actor goroutine for the same race-freedom reason as Snapshot.
func (e *Engine) BBO(symbol string) (book.BBO, bool) {
	actor, exists := e.actors[symbol]
	if !exists {
		return book.BBO{}, false
	}
	quote := actor.query(func(b *book.Book) any { return b.Quote() }).(book.BBO)
	return quote, true
}

// Stats returns a snapshot of the engine-wide counters (spec.md §6 stats
// contract).
func (e *Engine) Stats() Snapshot {
	return e.counters.snapshot()
}

// Publisher exposes the engine's event fan-out for transports that bridge
// it onto an external channel (websocket, etc).
func (e *Engine) Publisher() *events.Publisher { return e.publisher }

func validate(req OrderRequest, spec SymbolSpec) *common.ValidationError {
	if req.Quantity.IsZero() || req.Quantity.IsNegative() {
		return common.NewValidationError(common.ReasonNonPositiveQty)
	}
	if !req.Quantity.OnLot(spec.LotSize) {
		return common.NewValidationError(common.ReasonQuantityOffLot)
	}

	needsPrice := req.Type.HasPrice()
	switch {
	case needsPrice && req.Price == nil:
		return common.NewValidationError(common.ReasonMissingPrice)
	case !needsPrice && req.Price != nil:
		return common.NewValidationError(common.ReasonUnexpectedPrice)
	}
	if req.Price != nil && !req.Price.OnTick(spec.TickSize) {
		return common.NewValidationError(common.ReasonPriceOffTick)
	}
	return nil
}
