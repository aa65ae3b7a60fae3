package middleware

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"

	"smartrecruiter/internal/session"
)

// Metrics holds the Prometheus collectors for the web tier.
type Metrics struct {
	requestCount  *prometheus.CounterVec
	sessionEvents *prometheus.CounterVec
}

// NewMetrics registers the web-tier collectors on the given registerer.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		requestCount: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests processed.",
			},
			[]string{"method", "path", "status"},
		),
		sessionEvents: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "session_events_total",
				Help: "Total number of session login/logout events.",
			},
			[]string{"kind"},
		),
	}

	if err := reg.Register(m.requestCount); err != nil {
		return nil, err
	}
	if err := reg.Register(m.sessionEvents); err != nil {
		return nil, err
	}

	return m, nil
}

// Handler returns the request-counting middleware. /metrics itself is not counted.
func (m *Metrics) Handler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if c.Path() == "/metrics" {
			return c.Next()
		}

		err := c.Next()

		// Prefer the route pattern (e.g. /result) over the raw path so the
		// label set stays bounded.
		path := c.Route().Path
		if path == "" {
			path = c.Path()
		}

		status := c.Response().StatusCode()
		if err != nil {
			if fiberErr, ok := err.(*fiber.Error); ok {
				status = fiberErr.Code
			} else {
				status = fiber.StatusInternalServerError
			}
		}

		m.requestCount.WithLabelValues(
			c.Method(),
			path,
			strconv.Itoa(status),
		).Inc()

		return err
	}
}

// ObserveSessionEvents consumes session events from the channel and counts
// them by kind. It returns when the channel is closed.
func (m *Metrics) ObserveSessionEvents(events <-chan session.Event) {
	for ev := range events {
		m.sessionEvents.WithLabelValues(string(ev.Kind)).Inc()
	}
}
