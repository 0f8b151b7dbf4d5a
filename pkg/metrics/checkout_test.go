package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestCheckoutMetricsExportsCountersAndHistogram(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics := NewCheckoutMetrics(reg)

	metrics.ObserveCheckout("pickup", 120*time.Millisecond)
	metrics.IncSubmission("pickup", "accepted")
	metrics.IncRejection("MARKET_CLOSED")
	metrics.IncTransition("accept")

	if got := testutil.ToFloat64(metrics.submissions.WithLabelValues("pickup", "accepted")); got != 1 {
		t.Fatalf("expected submissions=1, got %f", got)
	}
	if got := testutil.ToFloat64(metrics.rejections.WithLabelValues("MARKET_CLOSED")); got != 1 {
		t.Fatalf("expected rejections=1, got %f", got)
	}
	if got := testutil.ToFloat64(metrics.transitions.WithLabelValues("accept")); got != 1 {
		t.Fatalf("expected transitions=1, got %f", got)
	}

	if count := testutil.CollectAndCount(metrics.duration); count != 1 {
		t.Fatalf("expected one histogram series, got %d", count)
	}
}

func TestCheckoutMetricsNilSafe(t *testing.T) {
	var metrics *CheckoutMetrics
	metrics.ObserveCheckout("pickup", time.Second)
	metrics.IncSubmission("pickup", "rejected")
	metrics.IncRejection("SHOP_CLOSED")
	metrics.IncTransition("cancel")

	empty := NewCheckoutMetrics(nil)
	empty.IncSubmission("", "")
}
