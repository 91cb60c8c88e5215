package metrics

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	requestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "paygate_requests_total",
		Help: "Portal HTTP requests by route and status.",
	}, []string{"route", "status"})

	requestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "paygate_request_duration_seconds",
		Help:    "Portal HTTP request latency by route.",
		Buckets: prometheus.DefBuckets,
	}, []string{"route"})

	liveSessions = promauto.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "paygate_live_sessions",
		Help: "Currently tracked browser sessions.",
	}, func() float64 {
		if sessionCount == nil {
			return 0
		}
		return float64(sessionCount())
	})

	sessionCount func() int
)

// TrackSessions registers the source of the live-sessions gauge.
func TrackSessions(count func() int) {
	sessionCount = count
}

// Middleware records request counts and latency per route.
func Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)
			route := c.Path()

			// A returned error has not been through the error handler yet;
			// the committed status at this point is still the default 200.
			status := c.Response().Status
			if err != nil {
				status = http.StatusInternalServerError
				var httpErr *echo.HTTPError
				if errors.As(err, &httpErr) {
					status = httpErr.Code
				}
			}

			requestDuration.WithLabelValues(route).Observe(time.Since(start).Seconds())
			requestsTotal.WithLabelValues(route, strconv.Itoa(status)).Inc()
			return err
		}
	}
}
