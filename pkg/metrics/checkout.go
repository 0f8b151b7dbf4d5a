package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// CheckoutMetrics records checkout and order lifecycle outcomes.
type CheckoutMetrics struct {
	duration    *prometheus.HistogramVec
	submissions *prometheus.CounterVec
	rejections  *prometheus.CounterVec
	transitions *prometheus.CounterVec
}

// NewCheckoutMetrics registers the checkout metrics on the provided registerer.
func NewCheckoutMetrics(reg prometheus.Registerer) *CheckoutMetrics {
	if reg == nil {
		return &CheckoutMetrics{}
	}
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "checkout_duration_seconds",
		Help:    "Duration of checkout submissions in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"method"})
	submissions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "checkout_submissions_total",
		Help: "Checkout submissions by delivery method and outcome.",
	}, []string{"method", "outcome"})
	rejections := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "eligibility_rejections_total",
		Help: "Slot eligibility rejections by reason.",
	}, []string{"reason"})
	transitions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "order_transitions_total",
		Help: "Order and lot state transitions by action.",
	}, []string{"action"})
	reg.MustRegister(duration, submissions, rejections, transitions)
	return &CheckoutMetrics{
		duration:    duration,
		submissions: submissions,
		rejections:  rejections,
		transitions: transitions,
	}
}

// ObserveCheckout records the duration for the given delivery method.
func (c *CheckoutMetrics) ObserveCheckout(method string, duration time.Duration) {
	if c == nil || c.duration == nil {
		return
	}
	c.duration.WithLabelValues(normalizeLabel(method)).Observe(duration.Seconds())
}

// IncSubmission counts a checkout attempt outcome ("accepted" or "rejected").
func (c *CheckoutMetrics) IncSubmission(method, outcome string) {
	if c == nil || c.submissions == nil {
		return
	}
	c.submissions.WithLabelValues(normalizeLabel(method), normalizeLabel(outcome)).Inc()
}

// IncRejection counts an eligibility rejection by reason code.
func (c *CheckoutMetrics) IncRejection(reason string) {
	if c == nil || c.rejections == nil {
		return
	}
	c.rejections.WithLabelValues(normalizeLabel(reason)).Inc()
}

// IncTransition counts a guarded state transition by action name.
func (c *CheckoutMetrics) IncTransition(action string) {
	if c == nil || c.transitions == nil {
		return
	}
	c.transitions.WithLabelValues(normalizeLabel(action)).Inc()
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
