package observability

import (
	"io"
	"net/http"
	"strconv"
	"sync"
	"time"
)

// Metrics is a small Prometheus text-format registry for the API and the
// generation pipeline.
type Metrics struct {
	apiRequests   *CounterVec
	apiLatency    *HistogramVec
	apiInflight   *Gauge
	llmRequests   *CounterVec
	llmLatency    *HistogramVec
	parseFailures *CounterVec
	plantsCreated *CounterVec
}

var (
	initOnce sync.Once
	instance *Metrics
)

// Current returns the process registry, or nil when metrics are disabled. All
// methods are nil-safe.
func Current() *Metrics {
	return instance
}

func Init(enabled bool) *Metrics {
	if !enabled {
		return nil
	}
	initOnce.Do(func() {
		instance = newMetrics()
	})
	return instance
}

func newMetrics() *Metrics {
	return &Metrics{
		apiRequests: NewCounterVec("sprout_api_requests_total", "Total API requests by method/route/status.", []string{"method", "route", "status"}),
		apiLatency: NewHistogramVec(
			"sprout_api_request_duration_seconds",
			"API request latency in seconds by method/route.",
			[]string{"method", "route"},
			[]float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10, 30, 60},
		),
		apiInflight: NewGauge("sprout_api_inflight_requests", "In-flight API requests."),
		llmRequests: NewCounterVec("sprout_llm_requests_total", "Generation calls by provider/kind/status.", []string{"provider", "kind", "status"}),
		llmLatency: NewHistogramVec(
			"sprout_llm_request_duration_seconds",
			"Generation latency in seconds by provider/kind.",
			[]string{"provider", "kind"},
			[]float64{0.5, 1, 2, 5, 10, 20, 30, 60, 120},
		),
		parseFailures: NewCounterVec("sprout_generator_parse_failures_total", "Unusable generator responses by failure kind.", []string{"kind"}),
		plantsCreated: NewCounterVec("sprout_plants_created_total", "Persisted plant plans by source.", []string{"source"}),
	}
}

func (m *Metrics) ObserveAPI(method, route string, status int, dur time.Duration) {
	if m == nil {
		return
	}
	if route == "" {
		route = "unknown"
	}
	m.apiRequests.Inc(method, route, strconv.Itoa(status))
	m.apiLatency.Observe(dur.Seconds(), method, route)
}

func (m *Metrics) APIInflightInc() {
	if m == nil {
		return
	}
	m.apiInflight.Inc()
}

func (m *Metrics) APIInflightDec() {
	if m == nil {
		return
	}
	m.apiInflight.Dec()
}

func (m *Metrics) ObserveLLM(provider, kind, status string, dur time.Duration) {
	if m == nil {
		return
	}
	m.llmRequests.Inc(provider, kind, status)
	m.llmLatency.Observe(dur.Seconds(), provider, kind)
}

func (m *Metrics) IncParseFailure(kind string) {
	if m == nil {
		return
	}
	m.parseFailures.Inc(kind)
}

func (m *Metrics) AddPlantsCreated(source string, n int) {
	if m == nil || n <= 0 {
		return
	}
	m.plantsCreated.Add(float64(n), source)
}

func (m *Metrics) WriteHTTP(w http.ResponseWriter, r *http.Request) {
	if m == nil {
		w.WriteHeader(http.StatusServiceUnavailable)
		return
	}
	w.Header().Set("Content-Type", "text/plain; version=0.0.4")
	_ = m.WritePrometheus(w)
}

func (m *Metrics) WritePrometheus(w io.Writer) error {
	if m == nil {
		return nil
	}
	writers := []interface{ WritePrometheus(io.Writer) error }{
		m.apiRequests, m.apiLatency, m.apiInflight,
		m.llmRequests, m.llmLatency, m.parseFailures, m.plantsCreated,
	}
	for _, wr := range writers {
		if err := wr.WritePrometheus(w); err != nil {
			return err
		}
	}
	return nil
}
