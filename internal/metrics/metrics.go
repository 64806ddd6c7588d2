package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// Registry holds all Prometheus metrics.
type Registry struct {
	*prometheus.Registry

	// HTTP metrics
	httpRequestsTotal    *prometheus.CounterVec
	httpRequestDuration  *prometheus.HistogramVec
	httpRequestsInFlight prometheus.Gauge

	// Journal metrics
	tradeOps       *prometheus.CounterVec
	journalTrades  *prometheus.GaugeVec
	reportsTotal   prometheus.Counter
	reportDuration prometheus.Histogram

	// Market metrics
	marketPolls        *prometheus.CounterVec
	marketPollDuration prometheus.Histogram
	quoteFetches       *prometheus.CounterVec
}

// NewRegistry creates a new metrics registry with all metrics registered.
func NewRegistry() *Registry {
	reg := prometheus.NewRegistry()

	// Register Go runtime metrics
	reg.MustRegister(collectors.NewGoCollector())
	reg.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	r := &Registry{
		Registry: reg,

		httpRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),

		httpRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),

		httpRequestsInFlight: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "http_requests_in_flight",
				Help: "Number of HTTP requests currently in flight",
			},
		),
	}

	reg.MustRegister(r.httpRequestsTotal)
	reg.MustRegister(r.httpRequestDuration)
	reg.MustRegister(r.httpRequestsInFlight)

	r.tradeOps = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cryptodash_trade_operations_total",
			Help: "Journal mutations by operation",
		},
		[]string{"op"},
	)
	r.journalTrades = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "cryptodash_journal_trades",
			Help: "Trades in the journal by state",
		},
		[]string{"state"},
	)
	r.reportsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "cryptodash_reports_total",
			Help: "Total number of analytics reports computed",
		},
	)
	r.reportDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "cryptodash_report_duration_seconds",
			Help:    "Analytics report computation time in seconds",
			Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1},
		},
	)
	r.marketPolls = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cryptodash_market_polls_total",
			Help: "Market overview refreshes by outcome",
		},
		[]string{"status"},
	)
	r.marketPollDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "cryptodash_market_poll_duration_seconds",
			Help:    "Market overview refresh duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)
	r.quoteFetches = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cryptodash_quote_fetches_total",
			Help: "Quote requests by provider and outcome",
		},
		[]string{"provider", "status"},
	)

	reg.MustRegister(r.tradeOps)
	reg.MustRegister(r.journalTrades)
	reg.MustRegister(r.reportsTotal)
	reg.MustRegister(r.reportDuration)
	reg.MustRegister(r.marketPolls)
	reg.MustRegister(r.marketPollDuration)
	reg.MustRegister(r.quoteFetches)

	return r
}

// RecordRequest records metrics for an HTTP request.
func (r *Registry) RecordRequest(method, path string, status int, duration float64) {
	statusStr := statusToString(status)
	r.httpRequestsTotal.WithLabelValues(method, path, statusStr).Inc()
	r.httpRequestDuration.WithLabelValues(method, path).Observe(duration)
}

// InFlightInc increments in-flight requests.
func (r *Registry) InFlightInc() {
	r.httpRequestsInFlight.Inc()
}

// InFlightDec decrements in-flight requests.
func (r *Registry) InFlightDec() {
	r.httpRequestsInFlight.Dec()
}

// RecordTradeOp counts a journal mutation ("create", "update", "delete", "import").
func (r *Registry) RecordTradeOp(op string) {
	r.tradeOps.WithLabelValues(op).Inc()
}

// SetJournalSize sets the open and closed trade gauges.
func (r *Registry) SetJournalSize(open, closed int) {
	r.journalTrades.WithLabelValues("open").Set(float64(open))
	r.journalTrades.WithLabelValues("closed").Set(float64(closed))
}

// RecordReport records an analytics report computation.
func (r *Registry) RecordReport(duration float64) {
	r.reportsTotal.Inc()
	r.reportDuration.Observe(duration)
}

// RecordMarketPoll records a market overview refresh.
func (r *Registry) RecordMarketPoll(status string, duration float64) {
	r.marketPolls.WithLabelValues(status).Inc()
	r.marketPollDuration.Observe(duration)
}

// ObserveQuoteFetch counts one provider attempt.
func (r *Registry) ObserveQuoteFetch(provider, status string) {
	r.quoteFetches.WithLabelValues(provider, status).Inc()
}

func statusToString(status int) string {
	switch {
	case status >= 500:
		return "5xx"
	case status >= 400:
		return "4xx"
	case status >= 300:
		return "3xx"
	case status >= 200:
		return "2xx"
	default:
		return "1xx"
	}
}
