package book

import (
	"matchcore/internal/common"

	"github.com/tidwall/btree"
)

// levels is the price-indexed collection backing one side of a Book. Bids
// are ordered with the best (highest) price first; asks are ordered with
// the best (lowest) price first. Either way "best" is the tree's Min, by
// construction of the less function passed to NewBTreeG.
type levels = btree.BTreeG[*Level]

// Book holds the two price-indexed collections (bids, asks) for one
// symbol.
//
// Invariant B1: no empty level is retained in either tree.
// Invariant B2: for any bid level Pb and ask level Pa present simultaneously,
// Pb < Pa — enforced by the matching core, which always walks the opposite
// side to exhaustion/untradability before a resting limit order can create
// a cross.
// Invariant B3: every order in the book rests on the side matching its
// Side field — enforced by InsertResting always indexing by order.Side.
type Book struct {
	Symbol string
	bids   *levels
	asks   *levels
}

// New creates an empty book for symbol.
func New(symbol string) *Book {
	bids := btree.NewBTreeG(func(a, b *Level) bool {
		return a.Price.GreaterThan(b.Price)
	})
	asks := btree.NewBTreeG(func(a, b *Level) bool {
		return a.Price.LessThan(b.Price)
	})
	return &Book{Symbol: symbol, bids: bids, asks: asks}
}

func (b *Book) side(side common.Side) *levels {
	if side == common.Buy {
		return b.bids
	}
	return b.asks
}

// Best returns the price level on `side` with the best price, or nil if
// that side has no resting volume. For bids, best is the maximum price;
// for asks, the minimum.
func (b *Book) Best(side common.Side) *Level {
	lvl, ok := b.side(side).Min()
	if !ok {
		return nil
	}
	return lvl
}

// BestMut is like Best but returns a handle suitable for in-place mutation
// via the matching core (consuming orders off its head).
func (b *Book) BestMut(side common.Side) *Level {
	lvl, ok := b.side(side).MinMut()
	if !ok {
		return nil
	}
	return lvl
}

// InsertResting locates or creates the level at order.Price on order.Side
// and appends order to its FIFO tail.
func (b *Book) InsertResting(order *common.Order) {
	tree := b.side(order.Side)
	key := &Level{Price: *order.Price}
	lvl, ok := tree.GetMut(key)
	if !ok {
		lvl = NewLevel(*order.Price)
		tree.Set(lvl)
	}
	lvl.Append(order)
}

// RemoveIfEmpty drops the level at price from side's index if its volume is
// zero. Safe to call unconditionally after any consumption.
func (b *Book) RemoveIfEmpty(side common.Side, price common.Price) {
	tree := b.side(side)
	key := &Level{Price: price}
	lvl, ok := tree.Get(key)
	if ok && lvl.IsEmpty() {
		tree.Delete(key)
	}
}

// LevelQuote is one (price, aggregate quantity) point in a book snapshot.
type LevelQuote struct {
	Price    common.Price
	Quantity common.Quantity
}

// Snapshot yields the top-N levels per side, best first. depth <= 0 means
// "all levels".
func (b *Book) Snapshot(depth int) (bids, asks []LevelQuote) {
	bids = collect(b.bids, depth)
	asks = collect(b.asks, depth)
	return bids, asks
}

func collect(tree *levels, depth int) []LevelQuote {
	out := make([]LevelQuote, 0)
	tree.Scan(func(lvl *Level) bool {
		if depth > 0 && len(out) >= depth {
			return false
		}
		out = append(out, LevelQuote{Price: lvl.Price, Quantity: lvl.Volume()})
		return true
	})
	return out
}

// BBO is a best-bid/best-offer snapshot. A nil pointer on either side means
// that side currently has no resting volume.
type BBO struct {
	Bid *LevelQuote
	Ask *LevelQuote
}

// Quote returns the current BBO for the book.
func (b *Book) Quote() BBO {
	var out BBO
	if lvl := b.Best(common.Buy); lvl != nil {
		out.Bid = &LevelQuote{Price: lvl.Price, Quantity: lvl.Volume()}
	}
	if lvl := b.Best(common.Sell); lvl != nil {
		out.Ask = &LevelQuote{Price: lvl.Price, Quantity: lvl.Volume()}
	}
	return out
}
