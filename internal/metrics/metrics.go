package metrics

import (
	"encoding/json"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Registry struct {
	reg *prometheus.Registry

	// publisher
	OrdersNormalized prometheus.Counter
	OrdersMalformed  prometheus.Counter

	// validators
	CreditApproved     prometheus.Counter
	CreditRejected     prometheus.Counter
	StockApproved      prometheus.Counter
	StockRejected      prometheus.Counter
	StockPersistFailed prometheus.Counter

	// correlator
	ResultsCompleted prometheus.Counter
	ResultsTimedOut  prometheus.Counter
	ResultsDuplicate prometheus.Counter
	JoinLatencySec   prometheus.Histogram

	// router
	RoutedLarge prometheus.Counter
	RoutedSmall prometheus.Counter
	RoutedError prometheus.Counter
}

func NewRegistry() *Registry {
	r := prometheus.NewRegistry()
	normalized := prometheus.NewCounter(prometheus.CounterOpts{Name: "divesurf_orders_normalized_total"})
	malformed := prometheus.NewCounter(prometheus.CounterOpts{Name: "divesurf_orders_malformed_total"})
	creditOK := prometheus.NewCounter(prometheus.CounterOpts{Name: "divesurf_credit_approved_total"})
	creditNo := prometheus.NewCounter(prometheus.CounterOpts{Name: "divesurf_credit_rejected_total"})
	stockOK := prometheus.NewCounter(prometheus.CounterOpts{Name: "divesurf_stock_approved_total"})
	stockNo := prometheus.NewCounter(prometheus.CounterOpts{Name: "divesurf_stock_rejected_total"})
	stockPersist := prometheus.NewCounter(prometheus.CounterOpts{Name: "divesurf_stock_persist_failed_total"})
	completed := prometheus.NewCounter(prometheus.CounterOpts{Name: "divesurf_results_completed_total"})
	timedOut := prometheus.NewCounter(prometheus.CounterOpts{Name: "divesurf_results_timeout_total"})
	duplicate := prometheus.NewCounter(prometheus.CounterOpts{Name: "divesurf_results_duplicate_total"})
	joinLatency := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "divesurf_join_latency_seconds",
		Buckets: prometheus.DefBuckets,
	})
	routedLarge := prometheus.NewCounter(prometheus.CounterOpts{Name: "divesurf_routed_large_total"})
	routedSmall := prometheus.NewCounter(prometheus.CounterOpts{Name: "divesurf_routed_small_total"})
	routedError := prometheus.NewCounter(prometheus.CounterOpts{Name: "divesurf_routed_error_total"})

	r.MustRegister(normalized, malformed, creditOK, creditNo, stockOK, stockNo, stockPersist,
		completed, timedOut, duplicate, joinLatency, routedLarge, routedSmall, routedError)
	return &Registry{
		reg:                r,
		OrdersNormalized:   normalized,
		OrdersMalformed:    malformed,
		CreditApproved:     creditOK,
		CreditRejected:     creditNo,
		StockApproved:      stockOK,
		StockRejected:      stockNo,
		StockPersistFailed: stockPersist,
		ResultsCompleted:   completed,
		ResultsTimedOut:    timedOut,
		ResultsDuplicate:   duplicate,
		JoinLatencySec:     joinLatency,
		RoutedLarge:        routedLarge,
		RoutedSmall:        routedSmall,
		RoutedError:        routedError,
	}
}

func (r *Registry) Handler() http.Handler { return promhttp.HandlerFor(r.reg, promhttp.HandlerOpts{}) }

// Serve exposes /metrics and /healthz on addr. Blocks; run in a goroutine.
func (r *Registry) Serve(addr string) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", r.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, req *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{"status": "ok"})
	})
	return http.ListenAndServe(addr, mux)
}
