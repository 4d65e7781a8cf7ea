package jwtmiddleware

import (
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/contactbook/go-jwt-middleware/core"
	"github.com/contactbook/go-jwt-middleware/jwks"
)

// Outcomes reported to Metrics and set as the auth.outcome span attribute.
const (
	OutcomeAuthenticated = "authenticated"
	OutcomeAnonymous     = "anonymous"
	OutcomeMissing       = "missing"
	OutcomeInvalid       = "invalid"
	OutcomeKeyNotFound   = "key_not_found"
	OutcomeError         = "error"
)

// Outcome classifies the result of one authentication attempt.
func Outcome(claims any, err error) string {
	switch {
	case err == nil && claims == nil:
		return OutcomeAnonymous
	case err == nil:
		return OutcomeAuthenticated
	case errors.Is(err, core.ErrJWTMissing):
		return OutcomeMissing
	case errors.Is(err, core.ErrKeyNotFound):
		return OutcomeKeyNotFound
	case errors.Is(err, core.ErrJWTInvalid):
		return OutcomeInvalid
	default:
		return OutcomeError
	}
}

// Metrics receives one observation per request that reached token
// validation. Excluded URLs and skipped OPTIONS requests are not observed.
type Metrics interface {
	ObserveAuth(outcome string, duration time.Duration)
}

// NoopMetrics is a default metrics implementation that does nothing.
type NoopMetrics struct{}

func (NoopMetrics) ObserveAuth(string, time.Duration) {}

// PrometheusMetrics implements Metrics, and jwks.FetchObserver for the
// provider's discovery and key set fetches.
type PrometheusMetrics struct {
	requests      *prometheus.CounterVec
	duration      prometheus.Histogram
	fetches       *prometheus.CounterVec
	fetchDuration *prometheus.HistogramVec
}

var _ jwks.FetchObserver = (*PrometheusMetrics)(nil)

// NewPrometheusMetrics creates the collectors and registers them with reg.
func NewPrometheusMetrics(reg prometheus.Registerer) (*PrometheusMetrics, error) {
	m := &PrometheusMetrics{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "jwt_auth_requests_total",
			Help: "Requests that reached token validation, by outcome.",
		}, []string{"outcome"}),
		duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "jwt_auth_duration_seconds",
			Help:    "Time spent extracting and validating the bearer token.",
			Buckets: prometheus.DefBuckets,
		}),
		fetches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "oidc_fetch_total",
			Help: "Discovery and key set fetches, by target and result.",
		}, []string{"target", "result"}),
		fetchDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "oidc_fetch_duration_seconds",
			Help:    "Duration of discovery and key set fetches.",
			Buckets: prometheus.DefBuckets,
		}, []string{"target"}),
	}

	for _, c := range []prometheus.Collector{m.requests, m.duration, m.fetches, m.fetchDuration} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func (m *PrometheusMetrics) ObserveAuth(outcome string, duration time.Duration) {
	m.requests.WithLabelValues(outcome).Inc()
	m.duration.Observe(duration.Seconds())
}

func (m *PrometheusMetrics) ObserveFetch(target string, duration time.Duration, err error) {
	result := "success"
	if err != nil {
		result = "failure"
	}
	m.fetches.WithLabelValues(target, result).Inc()
	m.fetchDuration.WithLabelValues(target).Observe(duration.Seconds())
}
