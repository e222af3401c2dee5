package telemetry

import (
	"bufio"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "nhl_companion"

// Exporter mirrors the atomic Metrics registry into Prometheus collectors
// and records per-route HTTP request counts and durations.
type Exporter struct {
	registry    *prometheus.Registry
	httpTotal   *prometheus.CounterVec
	httpLatency *prometheus.HistogramVec
}

func NewExporter() *Exporter {
	reg := prometheus.NewRegistry()
	e := &Exporter{
		registry: reg,
		httpTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total count of HTTP requests processed by route and status.",
		}, []string{"route", "status"}),
		httpLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "Histogram of HTTP request durations by route.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route"}),
	}

	counter := func(name, help string, c *Counter) prometheus.Collector {
		return prometheus.NewCounterFunc(prometheus.CounterOpts{
			Namespace: namespace, Name: name, Help: help,
		}, func() float64 { return float64(c.Value()) })
	}
	gauge := func(name, help string, fn func() float64) prometheus.Collector {
		return prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Namespace: namespace, Name: name, Help: help,
		}, fn)
	}

	reg.MustRegister(
		collectors.NewGoCollector(),
		e.httpTotal,
		e.httpLatency,
		counter("poll_cycles_total", "Completed poll cycles.", &Metrics.PollCycles),
		counter("poll_errors_total", "Poll cycles that failed to fetch.", &Metrics.PollErrors),
		counter("skipped_ticks_total", "Ticks skipped because a fetch was in flight.", &Metrics.SkippedTicks),
		counter("discarded_results_total", "Fetch results that arrived after stop.", &Metrics.DiscardedResults),
		counter("score_changes_total", "Detected score changes.", &Metrics.ScoreChanges),
		counter("new_major_plays_total", "Newly arrived major plays.", &Metrics.NewMajorPlays),
		counter("notifications_sent_total", "Notifications delivered by sinks.", &Metrics.NotificationsSent),
		counter("notifications_failed_total", "Notifications that a sink failed to deliver.", &Metrics.NotificationsFailed),
		counter("player_fetches_total", "Player lookups that reached the backend.", &Metrics.PlayerFetches),
		counter("player_fetch_errors_total", "Player lookups that failed.", &Metrics.PlayerFetchErrors),
		counter("player_cache_hits_total", "Player lookups served from cache.", &Metrics.PlayerCacheHits),
		counter("api_requests_total", "Requests sent to the NHL backend.", &Metrics.APIRequests),
		counter("api_errors_total", "Backend requests that failed.", &Metrics.APIErrors),
		counter("fanout_dropped_total", "WebSocket messages dropped for slow clients.", &Metrics.FanoutDropped),
		counter("inbox_overflows_total", "Session inbox sends dropped because the inbox was full.", &Metrics.InboxOverflows),
		gauge("active_sessions", "Live watch sessions.", func() float64 { return float64(Metrics.ActiveSessions.Value()) }),
		gauge("fanout_clients", "Connected WebSocket clients.", func() float64 { return float64(Metrics.FanoutClients.Value()) }),
		gauge("fetch_latency_p50_seconds", "Median game detail fetch latency.", func() float64 { return Metrics.FetchLatency.P50().Seconds() }),
		gauge("fetch_latency_p99_seconds", "p99 game detail fetch latency.", func() float64 { return Metrics.FetchLatency.P99().Seconds() }),
	)

	return e
}

func (e *Exporter) Registry() *prometheus.Registry { return e.registry }

func (e *Exporter) Handler() http.Handler {
	return promhttp.HandlerFor(e.registry, promhttp.HandlerOpts{})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(status int) {
	s.status = status
	s.ResponseWriter.WriteHeader(status)
}

// Unwrap lets http.ResponseController reach the underlying writer.
func (s *statusRecorder) Unwrap() http.ResponseWriter { return s.ResponseWriter }

// Hijack passes through so the WebSocket upgrade works behind the recorder.
func (s *statusRecorder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	h, ok := s.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, fmt.Errorf("telemetry: %T does not support hijacking", s.ResponseWriter)
	}
	s.status = http.StatusSwitchingProtocols
	return h.Hijack()
}

// WrapHandler records request count and latency under a fixed route label.
func (e *Exporter) WrapHandler(route string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		recorder := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		start := time.Now()

		next.ServeHTTP(recorder, r)

		if e != nil {
			e.httpTotal.WithLabelValues(route, strconv.Itoa(recorder.status)).Inc()
			e.httpLatency.WithLabelValues(route).Observe(time.Since(start).Seconds())
		}
	})
}
