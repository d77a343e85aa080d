package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestObserveSubmission(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewIntakeMetrics(reg)

	m.ObserveSubmission("treepro", "accepted")
	m.ObserveSubmission("treepro", "accepted")
	m.ObserveSubmission("treepro", "spam")

	got := testutil.ToFloat64(m.submissionsTotal.WithLabelValues("treepro", "accepted"))
	if got != 2 {
		t.Errorf("accepted count = %v, want 2", got)
	}
	got = testutil.ToFloat64(m.submissionsTotal.WithLabelValues("treepro", "spam"))
	if got != 1 {
		t.Errorf("spam count = %v, want 1", got)
	}
}

func TestObserveSpam(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewIntakeMetrics(reg)

	m.ObserveSpam("lonestarfence", "honeypot")

	got := testutil.ToFloat64(m.spamTotal.WithLabelValues("lonestarfence", "honeypot"))
	if got != 1 {
		t.Errorf("spam count = %v, want 1", got)
	}
}

func TestObserveDispatchLatency(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewIntakeMetrics(reg)

	m.ObserveDispatchLatency("treepro", 0.25)

	count := testutil.CollectAndCount(m.dispatchLatency)
	if count != 1 {
		t.Errorf("histogram series = %d, want 1", count)
	}
}

func TestNilMetricsAreSafe(t *testing.T) {
	var m *IntakeMetrics
	m.ObserveSubmission("treepro", "accepted")
	m.ObserveSpam("treepro", "honeypot")
	m.ObserveDispatchLatency("treepro", 0.1)
}
