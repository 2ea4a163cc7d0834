// Package metrics provides Prometheus metrics collection and exposure.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector gathers the application metrics: HTTP traffic and the
// authentication funnel. It satisfies the auth service's Metrics
// interface.
type Collector struct {
	httpStatus        *prometheus.CounterVec
	requestLatency    prometheus.Histogram
	loginSuccess      prometheus.Counter
	loginFailure      prometheus.Counter
	signups           prometheus.Counter
	resetIssued       prometheus.Counter
	resetConsumed     prometheus.Counter
	checkouts         prometheus.Counter
	checkoutRevenue   prometheus.Counter
}

// NewCollector creates a Collector and registers its metrics with reg.
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		httpStatus: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "ludo_http_status_total",
			Help: "Responses by HTTP status code.",
		}, []string{"status_code"}),
		requestLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "ludo_request_latency_seconds",
			Help:    "HTTP request latency in seconds.",
			Buckets: prometheus.DefBuckets,
		}),
		loginSuccess: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "ludo_login_success_total",
			Help: "Successful logins.",
		}),
		loginFailure: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "ludo_login_failure_total",
			Help: "Failed login attempts.",
		}),
		signups: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "ludo_signups_total",
			Help: "Completed signups.",
		}),
		resetIssued: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "ludo_reset_tokens_issued_total",
			Help: "Password reset tokens issued.",
		}),
		resetConsumed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "ludo_reset_tokens_consumed_total",
			Help: "Password reset tokens consumed.",
		}),
		checkouts: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "ludo_checkouts_total",
			Help: "Completed checkouts.",
		}),
		checkoutRevenue: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "ludo_checkout_revenue_cents_total",
			Help: "Total checkout revenue in cents.",
		}),
	}

	reg.MustRegister(
		c.httpStatus,
		c.requestLatency,
		c.loginSuccess,
		c.loginFailure,
		c.signups,
		c.resetIssued,
		c.resetConsumed,
		c.checkouts,
		c.checkoutRevenue,
	)

	return c
}

// RecordHTTPStatus records a response status code.
func (c *Collector) RecordHTTPStatus(statusCode int) {
	c.httpStatus.WithLabelValues(strconv.Itoa(statusCode)).Inc()
}

// RecordRequestLatency records one request's latency.
func (c *Collector) RecordRequestLatency(duration time.Duration) {
	c.requestLatency.Observe(duration.Seconds())
}

// RecordLoginSuccess records a successful login.
func (c *Collector) RecordLoginSuccess() {
	c.loginSuccess.Inc()
}

// RecordLoginFailure records a failed login attempt.
func (c *Collector) RecordLoginFailure() {
	c.loginFailure.Inc()
}

// RecordSignup records a completed signup.
func (c *Collector) RecordSignup() {
	c.signups.Inc()
}

// RecordResetTokenIssued records an issued password reset token.
func (c *Collector) RecordResetTokenIssued() {
	c.resetIssued.Inc()
}

// RecordResetTokenConsumed records a consumed password reset token.
func (c *Collector) RecordResetTokenConsumed() {
	c.resetConsumed.Inc()
}

// RecordCheckout records a completed checkout and its revenue.
func (c *Collector) RecordCheckout(totalCents int) {
	c.checkouts.Inc()
	c.checkoutRevenue.Add(float64(totalCents))
}

// HTTPMiddleware records status and latency for every request.
type statusWriter struct {
	http.ResponseWriter
	statusCode int
	written    bool
}

func (sw *statusWriter) WriteHeader(code int) {
	if !sw.written {
		sw.statusCode = code
		sw.written = true
	}
	sw.ResponseWriter.WriteHeader(code)
}

func (sw *statusWriter) Write(b []byte) (int, error) {
	if !sw.written {
		sw.statusCode = http.StatusOK
		sw.written = true
	}
	return sw.ResponseWriter.Write(b)
}

// HTTPMiddleware returns middleware that feeds the HTTP counters.
func (c *Collector) HTTPMiddleware() func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			sw := &statusWriter{ResponseWriter: w, statusCode: http.StatusOK}

			next.ServeHTTP(sw, r)

			c.RecordHTTPStatus(sw.statusCode)
			c.RecordRequestLatency(time.Since(start))
		})
	}
}

// Handler returns the HTTP handler for Prometheus scrapes.
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}
