package engine

import (
	"fmt"

	"matchcore/internal/book"
	"matchcore/internal/common"
	"matchcore/internal/matching"

	"github.com/rs/zerolog/log"
	tomb "gopkg.in/tomb.v2"
)

// submissionJob carries one order through a symbol actor and a channel to
// deliver the outcome back to the façade's Submit call.
type submissionJob struct {
	order *common.Order
	reply chan submissionOutcome
}

type submissionOutcome struct {
	result matching.Result
	err    error // set only on InvariantViolation; the symbol is corrupted thereafter
}

// queryJob carries a read-only view request through the symbol actor so
// that Snapshot/BBO reads are serialized against Match the same way
// submissions are — the book is shared only via the actor's single
// goroutine (§5), and that applies to readers as much as writers.
type queryJob struct {
	fn    func(*book.Book) any
	reply chan any
}

// symbolActor is one long-lived goroutine owning exclusive access to a
// single symbol's book, supervised by a tomb.Tomb. This specializes the
// teacher's shared N-worker pool (internal/worker.go in the original
// teacher tree) down to one dedicated worker per symbol, which is what
// "exclusive critical section per symbol, parallel across symbols" (§5)
// requires: a shared pool provides no per-key ordering guarantee, a
// dedicated actor per symbol does.
type symbolActor struct {
	symbol      string
	book        *book.Book
	submissions chan submissionJob
	queries     chan queryJob
	corrupted   bool

	nextTradeID func() uint64
	onResult    func(symbol string, order *common.Order, result matching.Result)
}

func newSymbolActor(symbol string, b *book.Book, nextTradeID func() uint64, onResult func(string, *common.Order, matching.Result)) *symbolActor {
	return &symbolActor{
		symbol:      symbol,
		book:        b,
		submissions: make(chan submissionJob, 64),
		queries:     make(chan queryJob, 64),
		nextTradeID: nextTradeID,
		onResult:    onResult,
	}
}

// query runs fn against the actor's book from inside the actor's own
// goroutine and returns its result, so a read view can never observe a
// book mid-mutation by a concurrent Match.
func (a *symbolActor) query(fn func(*book.Book) any) any {
	reply := make(chan any, 1)
	a.queries <- queryJob{fn: fn, reply: reply}
	return <-reply
}

// run is the actor's supervised loop. It never suspends inside the
// matching core itself; only the channel receive suspends, and only
// between submissions.
func (a *symbolActor) run(t *tomb.Tomb) error {
	log.Debug().Str("symbol", a.symbol).Msg("symbol actor starting")
	for {
		select {
		case <-t.Dying():
			log.Debug().Str("symbol", a.symbol).Msg("symbol actor stopping")
			return nil
		case job := <-a.submissions:
			job.reply <- a.process(job.order)
		case job := <-a.queries:
			job.reply <- job.fn(a.book)
		}
	}
}

// process runs the matching core against the actor's book and recovers
// from an InvariantViolation rather than letting it escape the actor —
// the symbol is marked corrupted and all further submissions for it are
// refused, but other symbols' actors are unaffected (§7).
func (a *symbolActor) process(order *common.Order) (outcome submissionOutcome) {
	if a.corrupted {
		outcome.err = common.NewInvariantViolation(a.symbol, "book previously corrupted, refusing submission")
		return outcome
	}

	defer func() {
		if r := recover(); r != nil {
			a.corrupted = true
			detail := fmt.Sprintf("%v", r)
			log.Error().Str("symbol", a.symbol).Str("detail", detail).
				Msg("internal invariant violation: symbol book marked corrupted")
			outcome = submissionOutcome{err: common.NewInvariantViolation(a.symbol, detail)}
		}
	}()

	result := matching.Match(a.book, order, a.nextTradeID)
	if a.onResult != nil {
		a.onResult(a.symbol, order, result)
	}
	return submissionOutcome{result: result}
}
