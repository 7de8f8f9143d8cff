package server

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/julianstephens/orbitflow/internal/cache"
)

// Metrics holds the Prometheus collectors for one server. Each server has
// its own registry.
type Metrics struct {
	registry *prometheus.Registry
	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
	toggles  *prometheus.CounterVec
}

func NewMetrics(cacheStats func() cache.StatsSnapshot) *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		requests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "orbitflow_http_requests_total",
				Help: "HTTP requests by method, route and status code.",
			},
			[]string{"method", "route", "status"},
		),
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "orbitflow_http_request_duration_seconds",
				Help:    "HTTP request latency by method and route.",
				Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
			},
			[]string{"method", "route"},
		),
		toggles: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "orbitflow_habit_toggles_total",
				Help: "Habit completion toggles by resulting state.",
			},
			[]string{"completed"},
		),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.requests,
		m.duration,
		m.toggles,
	)

	if cacheStats != nil {
		m.registry.MustRegister(
			prometheus.NewCounterFunc(prometheus.CounterOpts{
				Name: "orbitflow_snapshot_cache_hits_total",
				Help: "Habit snapshot reads served from the cache.",
			}, func() float64 { return float64(cacheStats().Hits) }),
			prometheus.NewCounterFunc(prometheus.CounterOpts{
				Name: "orbitflow_snapshot_cache_misses_total",
				Help: "Habit snapshot reads that went to the store.",
			}, func() float64 { return float64(cacheStats().Misses) }),
			prometheus.NewCounterFunc(prometheus.CounterOpts{
				Name: "orbitflow_snapshot_cache_invalidations_total",
				Help: "Owner version bumps caused by habit mutations.",
			}, func() float64 { return float64(cacheStats().Bumps) }),
		)
	}
	return m
}

// Middleware records request counts and latency labeled by route template,
// so ids in the path do not create new series.
func (m *Metrics) Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)

			route := c.Path()
			if route == "" {
				route = "unmatched"
			}
			status := c.Response().Status
			if err != nil {
				status, _ = statusFor(err)
			}

			m.requests.WithLabelValues(c.Request().Method, route, strconv.Itoa(status)).Inc()
			m.duration.WithLabelValues(c.Request().Method, route).Observe(time.Since(start).Seconds())
			return err
		}
	}
}

func (m *Metrics) recordToggle(completed bool) {
	m.toggles.WithLabelValues(strconv.FormatBool(completed)).Inc()
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
