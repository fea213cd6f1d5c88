// Package metrics exposes the strategy execution core's Prometheus counters.
//
// Mirrors how chidi150c/coinbase's metrics.go registers a handful of
// prometheus.CounterVec/Gauge collectors in package scope and serves them via
// the standard /metrics handler; this package does the same for the
// lifecycle engine instead of for a single trading bot's PnL.
package metrics

import "github.com/prometheus/client_golang/prometheus"

// Collector holds every counter the strategy engine updates. The zero value
// is not usable; construct one with New and share it across every route's
// *strategy.Strategy that should report to the same registry.
type Collector struct {
	TicksTotal            prometheus.Counter
	ReconciliationsTotal  prometheus.Counter
	OrdersSubmittedTotal  *prometheus.CounterVec // label: role
	TradesClosedTotal     prometheus.Counter
	CancellationsTotal    prometheus.Counter
	FilterRejectionsTotal *prometheus.CounterVec // label: filter
}

// New creates a Collector and registers all of its collectors on reg.
func New(reg prometheus.Registerer) *Collector {
	c := &Collector{
		TicksTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "strategy_ticks_total",
			Help: "Number of Execute() calls that ran to completion.",
		}),
		ReconciliationsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "strategy_reconciliations_total",
			Help: "Number of reconcile passes run while a position was open.",
		}),
		OrdersSubmittedTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "strategy_orders_submitted_total",
			Help: "Positions opened, counted once per open under role open_position; individual broker submissions are not counted.",
		}, []string{"role"}),
		TradesClosedTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "strategy_trades_closed_total",
			Help: "Completed trades recorded (stop-loss or take-profit close).",
		}),
		CancellationsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "strategy_cancellations_total",
			Help: "Number of times executeCancel ran.",
		}),
		FilterRejectionsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "strategy_filter_rejections_total",
			Help: "Entry candidates abandoned by a filter, by filter name.",
		}, []string{"filter"}),
	}

	reg.MustRegister(
		c.TicksTotal,
		c.ReconciliationsTotal,
		c.OrdersSubmittedTotal,
		c.TradesClosedTotal,
		c.CancellationsTotal,
		c.FilterRejectionsTotal,
	)
	return c
}
