package metrics

import (
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/fx"
)

// Metrics exposes application-level instruments.
type Metrics struct {
	httpRequests         *prometheus.CounterVec
	httpDuration         *prometheus.HistogramVec
	examCompletions      *prometheus.CounterVec
	creditsDebited       prometheus.Counter
	creditsPurchased     prometheus.Counter
	verificationRequests *prometheus.CounterVec
	certificatesRendered prometheus.Counter
}

// New registers the instruments on the default prometheus registry.
func New() *Metrics {
	return &Metrics{
		httpRequests: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "fleexpert_http_requests_total",
			Help: "HTTP requests by route, method and status.",
		}, []string{"route", "method", "status"}),
		httpDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "fleexpert_http_request_duration_seconds",
			Help:    "HTTP request latency by route.",
			Buckets: prometheus.DefBuckets,
		}, []string{"route"}),
		examCompletions: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "fleexpert_exam_completions_total",
			Help: "Exam completions by outcome.",
		}, []string{"outcome"}),
		creditsDebited: promauto.NewCounter(prometheus.CounterOpts{
			Name: "fleexpert_credits_debited_total",
			Help: "Credits debited from organization balances.",
		}),
		creditsPurchased: promauto.NewCounter(prometheus.CounterOpts{
			Name: "fleexpert_credits_purchased_total",
			Help: "Credits added to organization balances.",
		}),
		verificationRequests: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "fleexpert_verification_requests_total",
			Help: "Certificate verification requests by result.",
		}, []string{"result"}),
		certificatesRendered: promauto.NewCounter(prometheus.CounterOpts{
			Name: "fleexpert_certificates_rendered_total",
			Help: "Certificate PDFs rendered.",
		}),
	}
}

func (m *Metrics) RecordCompletion(outcome string) {
	if m == nil {
		return
	}
	m.examCompletions.WithLabelValues(outcome).Inc()
}

func (m *Metrics) RecordDebit(amount int64) {
	if m == nil {
		return
	}
	m.creditsDebited.Add(float64(amount))
}

func (m *Metrics) RecordPurchase(amount int64) {
	if m == nil {
		return
	}
	m.creditsPurchased.Add(float64(amount))
}

func (m *Metrics) RecordVerification(valid bool) {
	if m == nil {
		return
	}
	result := "invalid"
	if valid {
		result = "valid"
	}
	m.verificationRequests.WithLabelValues(result).Inc()
}

func (m *Metrics) RecordCertificateRendered() {
	if m == nil {
		return
	}
	m.certificatesRendered.Inc()
}

// GinMiddleware records request counts and latency per route.
func GinMiddleware(m *Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		if m == nil {
			return
		}
		route := c.FullPath()
		if strings.TrimSpace(route) == "" {
			route = "unknown"
		}
		m.httpRequests.WithLabelValues(route, c.Request.Method, statusClass(c.Writer.Status())).Inc()
		m.httpDuration.WithLabelValues(route).Observe(time.Since(start).Seconds())
	}
}

func statusClass(status int) string {
	switch {
	case status >= 500:
		return "5xx"
	case status >= 400:
		return "4xx"
	case status >= 300:
		return "3xx"
	default:
		return "2xx"
	}
}

var Module = fx.Module("metrics",
	fx.Provide(New),
)
