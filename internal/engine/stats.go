package engine

import (
	"sync"
	"sync/atomic"
	"time"

	"matchcore/internal/common"
)

// Counters is the mutable state behind the stats() contract (spec.md §6).
// Scalar counters are lock-free; the per-symbol matched-volume map is
// guarded by a mutex since it grows with the symbol set, not the hot path.
type Counters struct {
	startedAt time.Time

	ordersAccepted atomic.Uint64
	ordersRejected atomic.Uint64
	tradesTotal    atomic.Uint64

	mu            sync.Mutex
	matchedVolume map[string]common.Quantity
}

func newCounters() *Counters {
	return &Counters{
		startedAt:     time.Now(),
		matchedVolume: make(map[string]common.Quantity),
	}
}

func (c *Counters) recordAccepted() { c.ordersAccepted.Add(1) }
func (c *Counters) recordRejected() { c.ordersRejected.Add(1) }

func (c *Counters) recordTrades(symbol string, trades []common.Trade) {
	if len(trades) == 0 {
		return
	}
	c.tradesTotal.Add(uint64(len(trades)))

	total := common.ZeroQuantity()
	for _, t := range trades {
		total = total.Add(t.Quantity)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.matchedVolume[symbol] = c.matchedVolume[symbol].Add(total)
}

// Snapshot is a point-in-time, read-only copy of the counters (stats()
// contract, spec.md §6).
type Snapshot struct {
	TotalOrdersAccepted   uint64
	TotalOrdersRejected   uint64
	TotalTrades           uint64
	MatchedVolumePerSymbol map[string]common.Quantity
	Uptime                time.Duration
}

func (c *Counters) snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()

	volumes := make(map[string]common.Quantity, len(c.matchedVolume))
	for symbol, q := range c.matchedVolume {
		volumes[symbol] = q
	}

	return Snapshot{
		TotalOrdersAccepted:    c.ordersAccepted.Load(),
		TotalOrdersRejected:    c.ordersRejected.Load(),
		TotalTrades:            c.tradesTotal.Load(),
		MatchedVolumePerSymbol: volumes,
		Uptime:                 time.Since(c.startedAt),
	}
}
