package metrics

import "github.com/prometheus/client_golang/prometheus"

// IntakeMetrics exposes counters/histograms for the lead-intake pipeline.
type IntakeMetrics struct {
	submissionsTotal *prometheus.CounterVec
	spamTotal        *prometheus.CounterVec
	dispatchLatency  *prometheus.HistogramVec
}

func NewIntakeMetrics(reg prometheus.Registerer) *IntakeMetrics {
	m := &IntakeMetrics{
		submissionsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "leadrelay",
			Subsystem: "intake",
			Name:      "submissions_total",
			Help:      "Total lead submissions by outcome",
		}, []string{"site", "outcome"}),
		spamTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "leadrelay",
			Subsystem: "intake",
			Name:      "spam_total",
			Help:      "Submissions discarded by the bot filter, by rule",
		}, []string{"site", "rule"}),
		dispatchLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "leadrelay",
			Subsystem: "intake",
			Name:      "dispatch_latency_seconds",
			Help:      "Latency of the email provider call",
			Buckets:   prometheus.DefBuckets,
		}, []string{"site"}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.submissionsTotal, m.spamTotal, m.dispatchLatency)
	return m
}

func (m *IntakeMetrics) ObserveSubmission(site, outcome string) {
	if m == nil {
		return
	}
	m.submissionsTotal.WithLabelValues(site, outcome).Inc()
}

func (m *IntakeMetrics) ObserveSpam(site, rule string) {
	if m == nil {
		return
	}
	m.spamTotal.WithLabelValues(site, rule).Inc()
}

func (m *IntakeMetrics) ObserveDispatchLatency(site string, seconds float64) {
	if m == nil {
		return
	}
	m.dispatchLatency.WithLabelValues(site).Observe(seconds)
}
