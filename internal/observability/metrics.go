// Package observability exports the engine's counters as Prometheus
// metrics. It never sits on the matching path: all metrics are either
// updated from the façade's own counters (pull, via Stats) or incremented
// from event payloads already produced outside the critical section.
package observability

import (
	"matchcore/internal/engine"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus collectors the engine exposes.
type Metrics struct {
	ordersAccepted    prometheus.Counter
	ordersRejected    prometheus.Counter
	tradesTotal       prometheus.Counter
	matchedVolume     *prometheus.GaugeVec
	subscriberDrops   *prometheus.GaugeVec
	invariantFailures prometheus.Counter

	// lastAccepted/lastRejected/lastTrades track the last-observed
	// cumulative façade counters, so Sync can emit monotonic deltas to
	// prometheus.Counter, which only supports Add/Inc.
	lastAccepted uint64
	lastRejected uint64
	lastTrades   uint64
}

// NewMetrics constructs and registers the engine's collectors against reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		ordersAccepted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "matchcore_orders_accepted_total",
			Help: "Total submissions accepted by the engine façade.",
		}),
		ordersRejected: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "matchcore_orders_rejected_total",
			Help: "Total submissions rejected at admission or FOK dry-run.",
		}),
		tradesTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "matchcore_trades_total",
			Help: "Total trades emitted by the matching core.",
		}),
		matchedVolume: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "matchcore_matched_volume",
			Help: "Cumulative matched quantity per symbol.",
		}, []string{"symbol"}),
		subscriberDrops: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "matchcore_subscriber_dropped_events",
			Help: "Dropped events per fan-out subscriber due to queue overflow.",
		}, []string{"subscriber"}),
		invariantFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "matchcore_invariant_violations_total",
			Help: "Fatal internal invariant violations raised in symbol actors.",
		}),
	}

	reg.MustRegister(
		m.ordersAccepted,
		m.ordersRejected,
		m.tradesTotal,
		m.matchedVolume,
		m.subscriberDrops,
		m.invariantFailures,
	)
	return m
}

// Sync pulls the latest façade counters into the Prometheus collectors.
// Cheap enough to call on every scrape or on a short ticker; it never
// touches the matching path.
func (m *Metrics) Sync(eng *engine.Engine) {
	snap := eng.Stats()

	// Counters only move forward; Add the delta rather than re-setting,
	// since prometheus.Counter has no Set().
	if snap.TotalOrdersAccepted > m.lastAccepted {
		m.ordersAccepted.Add(float64(snap.TotalOrdersAccepted - m.lastAccepted))
		m.lastAccepted = snap.TotalOrdersAccepted
	}
	if snap.TotalOrdersRejected > m.lastRejected {
		m.ordersRejected.Add(float64(snap.TotalOrdersRejected - m.lastRejected))
		m.lastRejected = snap.TotalOrdersRejected
	}
	if snap.TotalTrades > m.lastTrades {
		m.tradesTotal.Add(float64(snap.TotalTrades - m.lastTrades))
		m.lastTrades = snap.TotalTrades
	}

	for symbol, qty := range snap.MatchedVolumePerSymbol {
		f, _ := qty.Decimal().Float64()
		m.matchedVolume.WithLabelValues(symbol).Set(f)
	}
}

// InvariantViolation increments the fatal invariant-violation counter.
func (m *Metrics) InvariantViolation() {
	m.invariantFailures.Inc()
}

// SubscriberDropped records the current dropped-event count for one
// fan-out subscriber, keyed by a caller-assigned label (e.g. connection
// ID).
func (m *Metrics) SubscriberDropped(label string, dropped uint64) {
	m.subscriberDrops.WithLabelValues(label).Set(float64(dropped))
}
