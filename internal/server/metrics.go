package server

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/stupside/mp3relay/internal/media"
	"github.com/stupside/mp3relay/internal/stream"
)

var (
	_ prometheus.Collector = (*Metrics)(nil)
	_ stream.Observer      = (*Metrics)(nil)
)

// Metrics holds the Prometheus instruments of the service. It doubles as the
// download session observer.
type Metrics struct {
	Requests        *prometheus.CounterVec
	Downloads       *prometheus.CounterVec
	BytesStreamed   *prometheus.CounterVec
	ResolveDuration *prometheus.HistogramVec
}

func NewMetrics() *Metrics {
	return &Metrics{
		Requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "mp3relay",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests by route and status code",
		}, []string{"route", "code"}),
		Downloads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "mp3relay",
			Subsystem: "stream",
			Name:      "downloads_total",
			Help:      "Total number of download sessions by provider and final state",
		}, []string{"provider", "state"}),
		BytesStreamed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "mp3relay",
			Subsystem: "stream",
			Name:      "bytes_total",
			Help:      "Total number of audio bytes relayed to clients",
		}, []string{"provider"}),
		ResolveDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "mp3relay",
			Subsystem: "stream",
			Name:      "resolve_duration_seconds",
			Help:      "Time spent resolving a source URL",
			Buckets:   []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 20, 45},
		}, []string{"provider", "result"}),
	}
}

// Resolved implements stream.Observer.
func (m *Metrics) Resolved(provider media.Provider, elapsed time.Duration, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.ResolveDuration.WithLabelValues(string(provider), result).Observe(elapsed.Seconds())
}

// Finished implements stream.Observer.
func (m *Metrics) Finished(provider media.Provider, state stream.State, written int64) {
	m.Downloads.WithLabelValues(string(provider), state.String()).Inc()
	m.BytesStreamed.WithLabelValues(string(provider)).Add(float64(written))
}

func (m *Metrics) observeRequest(route string, status int) {
	m.Requests.WithLabelValues(route, strconv.Itoa(status)).Inc()
}

// Collect implements prometheus.Collector.
func (m *Metrics) Collect(c chan<- prometheus.Metric) {
	m.Requests.Collect(c)
	m.Downloads.Collect(c)
	m.BytesStreamed.Collect(c)
	m.ResolveDuration.Collect(c)
}

// Describe implements prometheus.Collector.
func (m *Metrics) Describe(d chan<- *prometheus.Desc) {
	prometheus.DescribeByCollect(m, d)
}
