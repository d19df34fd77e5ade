package metrics

import (
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// MessageMetrics records metadata for the inbound message pipeline.
type MessageMetrics struct {
	processed     *prometheus.CounterVec
	duration      prometheus.Histogram
	repliesFailed *prometheus.CounterVec
}

// NewMessageMetrics registers the message pipeline metrics on the provided registerer.
func NewMessageMetrics(reg prometheus.Registerer) *MessageMetrics {
	if reg == nil {
		return &MessageMetrics{}
	}
	processed := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "messages_processed_total",
		Help: "Inbound messages processed, by classified intent and outcome.",
	}, []string{"intent", "outcome"})
	duration := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "message_processing_seconds",
		Help:    "End-to-end processing duration of an inbound message.",
		Buckets: prometheus.DefBuckets,
	})
	repliesFailed := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "replies_failed_total",
		Help: "Outbound replies that could not be delivered, by provider.",
	}, []string{"provider"})
	reg.MustRegister(processed, duration, repliesFailed)
	return &MessageMetrics{
		processed:     processed,
		duration:      duration,
		repliesFailed: repliesFailed,
	}
}

// IncProcessed counts one processed message.
func (m *MessageMetrics) IncProcessed(intent, outcome string) {
	if m == nil || m.processed == nil {
		return
	}
	m.processed.WithLabelValues(normalizeLabel(intent), normalizeLabel(outcome)).Inc()
}

// ObserveDuration records the pipeline duration for one message.
func (m *MessageMetrics) ObserveDuration(duration time.Duration) {
	if m == nil || m.duration == nil {
		return
	}
	m.duration.Observe(duration.Seconds())
}

// IncReplyFailed counts an outbound send failure for the given provider.
func (m *MessageMetrics) IncReplyFailed(provider string) {
	if m == nil || m.repliesFailed == nil {
		return
	}
	m.repliesFailed.WithLabelValues(normalizeLabel(provider)).Inc()
}

func normalizeLabel(value string) string {
	trimmed := strings.TrimSpace(strings.ToLower(value))
	if trimmed == "" {
		return "unknown"
	}
	return trimmed
}
