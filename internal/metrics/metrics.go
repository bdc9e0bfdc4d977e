package metrics

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector holds the counters of one process. A nil *Collector is valid and records nothing.
type Collector struct {
	registry *prometheus.Registry

	TrialsTotal        *prometheus.CounterVec
	TrialRetriesTotal  prometheus.Counter
	ChecksTotal        *prometheus.CounterVec
	ProviderCallsTotal *prometheus.CounterVec
	DecisionCacheTotal *prometheus.CounterVec
	SweepCandidates    *prometheus.CounterVec
	BacktestDuration   prometheus.Histogram
	MarketDataRequests *prometheus.CounterVec
}

// NewCollector registers every metric on a fresh registry.
func NewCollector() *Collector {
	c := &Collector{
		registry: prometheus.NewRegistry(),
		TrialsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{Name: "gate_trials_total", Help: "Gate trials by outcome"},
			[]string{"outcome"},
		),
		TrialRetriesTotal: prometheus.NewCounter(
			prometheus.CounterOpts{Name: "gate_trial_retries_total", Help: "Gate trial attempts beyond the first"},
		),
		ChecksTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{Name: "gate_checks_total", Help: "Profitability checks by kind and verdict"},
			[]string{"kind", "passed"},
		),
		ProviderCallsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{Name: "decision_provider_calls_total", Help: "External decision provider calls by result"},
			[]string{"result"},
		),
		DecisionCacheTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{Name: "decision_cache_total", Help: "Decision cache lookups by result"},
			[]string{"result"},
		),
		SweepCandidates: prometheus.NewCounterVec(
			prometheus.CounterOpts{Name: "sweep_candidates_total", Help: "Sweep candidates by result"},
			[]string{"result"},
		),
		BacktestDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "backtest_duration_seconds",
				Help:    "Wall time of single backtest runs",
				Buckets: prometheus.ExponentialBuckets(0.001, 4, 8),
			},
		),
		MarketDataRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{Name: "market_data_requests_total", Help: "Candle fetches by provider and result"},
			[]string{"provider", "result"},
		),
	}

	c.registry.MustRegister(
		c.TrialsTotal,
		c.TrialRetriesTotal,
		c.ChecksTotal,
		c.ProviderCallsTotal,
		c.DecisionCacheTotal,
		c.SweepCandidates,
		c.BacktestDuration,
		c.MarketDataRequests,
	)

	return c
}

func (c *Collector) Registry() *prometheus.Registry {
	if c == nil {
		return nil
	}

	return c.registry
}

func (c *Collector) ObserveTrial(outcome string, attempts int) {
	if c == nil {
		return
	}

	c.TrialsTotal.WithLabelValues(outcome).Inc()

	if attempts > 1 {
		c.TrialRetriesTotal.Add(float64(attempts - 1))
	}
}

func (c *Collector) ObserveCheck(kind string, passed bool) {
	if c == nil {
		return
	}

	label := "false"
	if passed {
		label = "true"
	}

	c.ChecksTotal.WithLabelValues(kind, label).Inc()
}

// ObserveProviderCall records one provider call; result is ok, error, timeout or skipped.
func (c *Collector) ObserveProviderCall(result string) {
	if c == nil {
		return
	}

	c.ProviderCallsTotal.WithLabelValues(result).Inc()
}

func (c *Collector) ObserveCache(hit bool) {
	if c == nil {
		return
	}

	result := "miss"
	if hit {
		result = "hit"
	}

	c.DecisionCacheTotal.WithLabelValues(result).Inc()
}

func (c *Collector) ObserveSweepCandidate(result string) {
	if c == nil {
		return
	}

	c.SweepCandidates.WithLabelValues(result).Inc()
}

func (c *Collector) ObserveBacktest(d time.Duration) {
	if c == nil {
		return
	}

	c.BacktestDuration.Observe(d.Seconds())
}

func (c *Collector) ObserveMarketData(provider string, err error) {
	if c == nil {
		return
	}

	result := "ok"
	if err != nil {
		result = "error"
	}

	c.MarketDataRequests.WithLabelValues(provider, result).Inc()
}

// Handler exposes /metrics and /healthz.
func (c *Collector) Handler() http.Handler {
	router := mux.NewRouter()
	router.Handle("/metrics", promhttp.HandlerFor(c.Registry(), promhttp.HandlerOpts{})).Methods(http.MethodGet)
	router.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	}).Methods(http.MethodGet)

	return router
}

// Serve starts the metrics endpoint in the background. Close the returned server to stop it.
func (c *Collector) Serve(addr string) *http.Server {
	srv := &http.Server{
		Addr:              addr,
		Handler:           c.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() { _ = srv.ListenAndServe() }()

	return srv
}
