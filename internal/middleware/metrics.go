package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the application counters exposed on /metrics.
type Metrics struct {
	registry *prometheus.Registry

	SuccessfulRequests *prometheus.CounterVec
	BadRequests        *prometheus.CounterVec
	MessagesSent       prometheus.Counter
	FollowRequests     prometheus.Counter
	UnfollowRequests   prometheus.Counter
	LikeToggles        prometheus.Counter
}

// NewMetrics creates and registers the counters on a private registry, so a
// test can build more than one server without colliding registrations.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		SuccessfulRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "warbler_successful_requests_total",
				Help: "Total number of successful (2xx/3xx) HTTP requests",
			},
			[]string{"path"},
		),
		BadRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "warbler_bad_requests_total",
				Help: "Total number of unsuccessful (4xx/5xx) HTTP requests",
			},
			[]string{"path"},
		),
		MessagesSent: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "warbler_messages_sent_total",
			Help: "Total number of messages posted",
		}),
		FollowRequests: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "warbler_follows_total",
			Help: "Total number of follow edges created",
		}),
		UnfollowRequests: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "warbler_unfollows_total",
			Help: "Total number of follow edges removed",
		}),
		LikeToggles: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "warbler_like_toggles_total",
			Help: "Total number of like toggles applied",
		}),
	}

	m.registry.MustRegister(
		m.SuccessfulRequests,
		m.BadRequests,
		m.MessagesSent,
		m.FollowRequests,
		m.UnfollowRequests,
		m.LikeToggles,
	)

	return m
}

// Handler serves the registry for Prometheus scrapes.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Count classifies each completed request by status code.
func (m *Metrics) Count() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()
		path := c.FullPath()
		if path == "" {
			path = c.Request.URL.Path
		}
		if c.Writer.Status() < 400 {
			m.SuccessfulRequests.WithLabelValues(path).Inc()
		} else {
			m.BadRequests.WithLabelValues(path).Inc()
		}
	}
}
