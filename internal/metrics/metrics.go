package metrics

import (
	"errors"
	"strconv"
	"time"

	"github.com/indigo-web/httpfront/http/status"
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "httpfront"

// Metrics are the server's collectors. They're registered on their own registry, so that
// several servers may live in a single process (tests, in the first place).
type Metrics struct {
	Registry *prometheus.Registry

	accepted      prometheus.Counter
	rateLimited   prometheus.Counter
	parseFailures *prometheus.CounterVec
	responses     *prometheus.CounterVec
	parseDuration prometheus.Histogram
}

func New() *Metrics {
	m := &Metrics{
		Registry: prometheus.NewRegistry(),
		accepted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "connections_accepted_total",
			Help:      "Number of accepted connections.",
		}),
		rateLimited: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "connections_rate_limited_total",
			Help:      "Number of connections closed right after being accepted due to the rate limit.",
		}),
		parseFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "parse_failures_total",
			Help:      "Number of requests failed to be parsed, by reason.",
		}, []string{"reason"}),
		responses: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "responses_total",
			Help:      "Number of written responses, by status code.",
		}, []string{"code"}),
		parseDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "parse_duration_seconds",
			Help:      "Time spent on receiving and parsing the request head.",
			Buckets:   prometheus.ExponentialBuckets(0.0005, 4, 10),
		}),
	}

	m.Registry.MustRegister(m.accepted, m.rateLimited, m.parseFailures, m.responses, m.parseDuration)

	return m
}

func (m *Metrics) Accepted() {
	m.accepted.Inc()
}

func (m *Metrics) RateLimited() {
	m.rateLimited.Inc()
}

// ParseFailed counts the failure by the message of the sentinel it wraps. Unclassified
// errors are counted altogether, as their messages could blow up the cardinality.
func (m *Metrics) ParseFailed(err error) {
	m.parseFailures.WithLabelValues(Reason(err)).Inc()
}

func (m *Metrics) Responded(code status.Code) {
	m.responses.WithLabelValues(strconv.Itoa(int(code))).Inc()
}

func (m *Metrics) ObserveParse(d time.Duration) {
	m.parseDuration.Observe(d.Seconds())
}

// Reason returns the message of the HTTPError the err wraps. Wrapped causes are left out.
func Reason(err error) string {
	var httpErr status.HTTPError
	if errors.As(err, &httpErr) {
		return httpErr.Message
	}

	return "other"
}
