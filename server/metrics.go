package server

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/brettboylen/reddit-insights/models"
)

// Metrics are the Prometheus collectors exported on /metrics
type Metrics struct {
	registry       *prometheus.Registry
	requests       *prometheus.CounterVec
	upstreamErrors *prometheus.CounterVec
	attractiveness prometheus.Histogram
	tiers          *prometheus.CounterVec
}

// NewMetrics registers the collectors on a fresh registry
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "reddit_insights_http_requests_total",
			Help: "HTTP requests handled, by route and status code",
		}, []string{"route", "status"}),
		upstreamErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "reddit_insights_upstream_errors_total",
			Help: "Failed calls to the Reddit API, by operation",
		}, []string{"operation"}),
		attractiveness: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "reddit_insights_attractiveness_score",
			Help:    "Attractiveness scores computed for analysed posts",
			Buckets: []float64{10, 50, 100, 200, 350, 500, 1000, 2500, 5000},
		}),
		tiers: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "reddit_insights_tiers_total",
			Help: "Analysed posts by attractiveness tier",
		}, []string{"tier"}),
	}

	m.registry.MustRegister(m.requests, m.upstreamErrors, m.attractiveness, m.tiers)
	return m
}

// observeAnalysis records the score and tier of one analysed post
func (m *Metrics) observeAnalysis(result models.AttractivenessResult, tier models.Tier) {
	m.attractiveness.Observe(result.AttractivenessScore)
	m.tiers.WithLabelValues(tier.Tier).Inc()
}

func (m *Metrics) upstreamError(operation string) {
	m.upstreamErrors.WithLabelValues(operation).Inc()
}

// middleware counts every request once it has been handled
func (m *Metrics) middleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		err := next(c)

		status := c.Response().Status
		if err != nil {
			status = http.StatusInternalServerError
			if he, ok := err.(*echo.HTTPError); ok {
				status = he.Code
			}
		}

		route := c.Path()
		if route == "" {
			route = "unmatched"
		}
		m.requests.WithLabelValues(route, strconv.Itoa(status)).Inc()
		return err
	}
}

func (m *Metrics) handler() echo.HandlerFunc {
	return echo.WrapHandler(promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{}))
}
