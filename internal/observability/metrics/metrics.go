package metrics

import "github.com/prometheus/client_golang/prometheus"

// ChatbotMetrics exposes counters/histograms for the conversation flow. All
// observe methods are nil-safe so callers never guard.
type ChatbotMetrics struct {
	inboundTotal     *prometheus.CounterVec
	outboundTotal    *prometheus.CounterVec
	completedTotal   *prometheus.CounterVec
	leadsTotal       *prometheus.CounterVec
	webhookLatency   *prometheus.HistogramVec
	calcFailureTotal prometheus.Counter
}

func NewChatbotMetrics(reg prometheus.Registerer) *ChatbotMetrics {
	m := &ChatbotMetrics{
		inboundTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "refibot",
			Subsystem: "chatbot",
			Name:      "inbound_messages_total",
			Help:      "Total inbound chat messages processed",
		}, []string{"phase"}),
		outboundTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "refibot",
			Subsystem: "chatbot",
			Name:      "outbound_messages_total",
			Help:      "Total outbound chat sends",
		}, []string{"status"}),
		completedTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "refibot",
			Subsystem: "chatbot",
			Name:      "conversations_completed_total",
			Help:      "Conversations that reached a terminal outcome",
		}, []string{"outcome"}),
		leadsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "refibot",
			Subsystem: "chatbot",
			Name:      "leads_submitted_total",
			Help:      "Lead submissions to the portal",
		}, []string{"status"}),
		webhookLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "refibot",
			Subsystem: "http",
			Name:      "webhook_latency_seconds",
			Help:      "Latency of inbound webhook processing",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method"}),
		calcFailureTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "refibot",
			Subsystem: "chatbot",
			Name:      "calculation_failures_total",
			Help:      "Refinance calculations that failed to produce a result",
		}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.inboundTotal, m.outboundTotal, m.completedTotal, m.leadsTotal, m.webhookLatency, m.calcFailureTotal)
	return m
}

func (m *ChatbotMetrics) ObserveInbound(phase string) {
	if m == nil {
		return
	}
	m.inboundTotal.WithLabelValues(phase).Inc()
}

func (m *ChatbotMetrics) ObserveOutbound(status string) {
	if m == nil {
		return
	}
	m.outboundTotal.WithLabelValues(status).Inc()
}

func (m *ChatbotMetrics) ObserveCompleted(outcome string) {
	if m == nil {
		return
	}
	m.completedTotal.WithLabelValues(outcome).Inc()
}

func (m *ChatbotMetrics) ObserveLead(status string) {
	if m == nil {
		return
	}
	m.leadsTotal.WithLabelValues(status).Inc()
}

func (m *ChatbotMetrics) ObserveWebhookLatency(method string, seconds float64) {
	if m == nil {
		return
	}
	m.webhookLatency.WithLabelValues(method).Observe(seconds)
}

func (m *ChatbotMetrics) ObserveCalcFailure() {
	if m == nil {
		return
	}
	m.calcFailureTotal.Inc()
}
